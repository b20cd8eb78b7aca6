package dispatch

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Extract pulls the first value found for any of the aliases out of the
// envelope. Locations are checked in fixed order: tools/call arguments,
// top-level keys, the body (JSON-decoded when it is a string; decode
// failures are tolerated and extraction moves on), query-string parameters,
// path parameters, then legacy intent slots. Within a location aliases are
// tried in the order given and the first match wins.
//
// A miss returns ok=false. That is a normal outcome, not a fault.
func Extract(env *Envelope, aliases []string) (string, bool) {
	for _, loc := range extractionSites(env) {
		if loc == nil {
			continue
		}
		for _, alias := range aliases {
			if raw, exists := loc[alias]; exists {
				if v, ok := coerceString(raw); ok {
					return v, true
				}
			}
		}
	}
	return "", false
}

// extractionSites returns the candidate argument locations in priority order
func extractionSites(env *Envelope) []map[string]interface{} {
	sites := make([]map[string]interface{}, 0, 6)

	if env.RPC != nil && env.RPC.Method == "tools/call" {
		sites = append(sites, rpcArguments(env.RPC.Params))
	}

	sites = append(sites, env.Fields)
	sites = append(sites, decodedBody(env.Fields["body"]))
	sites = append(sites, asObject(env.Fields["queryStringParameters"]))
	sites = append(sites, asObject(env.Fields["pathParameters"]))
	sites = append(sites, legacySlots(env.Fields["currentIntent"]))

	return sites
}

// rpcArguments pulls params.arguments from raw tools/call params
func rpcArguments(params json.RawMessage) map[string]interface{} {
	if len(params) == 0 {
		return nil
	}
	var p struct {
		Arguments map[string]interface{} `json:"arguments"`
	}
	if err := json.Unmarshal(params, &p); err != nil {
		return nil
	}
	return p.Arguments
}

// decodedBody decodes a gateway body, which arrives either as a JSON string
// or as an already-decoded object
func decodedBody(body interface{}) map[string]interface{} {
	switch b := body.(type) {
	case string:
		var decoded map[string]interface{}
		if err := json.Unmarshal([]byte(b), &decoded); err != nil {
			// Malformed body is tolerated; extraction continues elsewhere
			return nil
		}
		return decoded
	case map[string]interface{}:
		return b
	default:
		return nil
	}
}

// legacySlots pulls currentIntent.slots from a slot-filling envelope
func legacySlots(intent interface{}) map[string]interface{} {
	obj := asObject(intent)
	if obj == nil {
		return nil
	}
	return asObject(obj["slots"])
}

func asObject(v interface{}) map[string]interface{} {
	obj, _ := v.(map[string]interface{})
	return obj
}

// coerceString renders a scalar argument value as a string. Objects and
// arrays do not qualify as a business value.
func coerceString(v interface{}) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case float64:
		if s == float64(int64(s)) {
			return strconv.FormatInt(int64(s), 10), true
		}
		return fmt.Sprintf("%g", s), true
	case bool:
		return strconv.FormatBool(s), true
	default:
		return "", false
	}
}
