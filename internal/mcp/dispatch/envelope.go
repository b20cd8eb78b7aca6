package dispatch

import (
	"encoding/json"

	"github.com/jmertz88/agent_gateway/internal/mcp/protocol"
)

// Family identifies the protocol family of an inbound request, and therefore
// the shape of the response. The outbound family always matches the inbound
// one.
type Family string

const (
	// FamilyJSONRPC covers MCP JSON-RPC 2.0 envelopes
	FamilyJSONRPC Family = "jsonrpc"
	// FamilyHTTP covers direct params, API-gateway proxy events, and legacy
	// slot-filling envelopes, all of which expect {statusCode, body}
	FamilyHTTP Family = "http"
)

// EnvelopeKind identifies which of the admissible inbound shapes was
// recognized
type EnvelopeKind string

const (
	// KindJSONRPC is a JSON-RPC 2.0 envelope (jsonrpc key present)
	KindJSONRPC EnvelopeKind = "jsonrpc"
	// KindLegacySlot is a slot-filling bot envelope (currentIntent key present)
	KindLegacySlot EnvelopeKind = "legacy_slot"
	// KindHTTPGateway is an API-gateway proxy envelope (body key present)
	KindHTTPGateway EnvelopeKind = "http_gateway"
	// KindDirect is a flat mapping carrying the business key directly
	KindDirect EnvelopeKind = "direct"
)

// Envelope is the parsed inbound request. Exactly one kind is recognized per
// request, by presence of a discriminating key tested in fixed priority
// order: jsonrpc, currentIntent, body, then direct.
type Envelope struct {
	Kind   EnvelopeKind
	Fields map[string]interface{}

	// RPC is set only for KindJSONRPC
	RPC *protocol.JSONRPCRequest
}

// Family returns the protocol family the response must use
func (e *Envelope) Family() Family {
	if e.Kind == KindJSONRPC {
		return FamilyJSONRPC
	}
	return FamilyHTTP
}

// Detect parses a raw event into an Envelope. Input that is not a JSON
// object is treated as a direct envelope with no fields, so extraction
// misses and the caller reports missing input rather than failing the
// dispatch. Detect never returns an error for that reason.
func Detect(raw []byte) *Envelope {
	var fields map[string]interface{}
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return &Envelope{Kind: KindDirect, Fields: map[string]interface{}{}}
	}

	if _, ok := fields["jsonrpc"]; ok {
		env := &Envelope{Kind: KindJSONRPC, Fields: fields}
		var req protocol.JSONRPCRequest
		if err := json.Unmarshal(raw, &req); err == nil {
			env.RPC = &req
		}
		return env
	}

	if _, ok := fields["currentIntent"]; ok {
		return &Envelope{Kind: KindLegacySlot, Fields: fields}
	}

	if _, ok := fields["body"]; ok {
		return &Envelope{Kind: KindHTTPGateway, Fields: fields}
	}

	return &Envelope{Kind: KindDirect, Fields: fields}
}
