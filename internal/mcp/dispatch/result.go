package dispatch

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// ErrorKind classifies an invocation failure
type ErrorKind string

const (
	// ErrMissingInput indicates the required value was absent from every envelope location
	ErrMissingInput ErrorKind = "missing_input"
	// ErrNotFound indicates the business entity does not exist
	ErrNotFound ErrorKind = "not_found"
	// ErrUpstreamUnavailable indicates a backend network or service fault
	ErrUpstreamUnavailable ErrorKind = "upstream_unavailable"
	// ErrInternal indicates anything unanticipated
	ErrInternal ErrorKind = "internal"
)

// IsValid checks if the error kind value is valid
func (k ErrorKind) IsValid() bool {
	switch k {
	case ErrMissingInput, ErrNotFound, ErrUpstreamUnavailable, ErrInternal:
		return true
	default:
		return false
	}
}

// String returns the string representation of the error kind
func (k ErrorKind) String() string {
	return string(k)
}

// Result is the outcome of a backend invocation. Exactly one of the success
// value or the failure kind/message is meaningful, discriminated by OK.
type Result struct {
	OK      bool
	Value   interface{} // string or map[string]interface{}
	Kind    ErrorKind
	Message string
}

// Success creates a successful result carrying the backend's value
func Success(value interface{}) Result {
	return Result{OK: true, Value: value}
}

// Fail creates a failed result with the given kind and message
func Fail(kind ErrorKind, message string) Result {
	return Result{Kind: kind, Message: message}
}

// Failf creates a failed result with a formatted message
func Failf(kind ErrorKind, format string, args ...interface{}) Result {
	return Result{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Stringify renders a success value as text for a tool result. Strings pass
// through unchanged; structured values render one "key: value" line per
// field in sorted key order so output is stable.
func Stringify(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case map[string]interface{}:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		var sb strings.Builder
		for i, k := range keys {
			if i > 0 {
				sb.WriteString("\n")
			}
			sb.WriteString(fmt.Sprintf("%s: %s", k, renderScalar(v[k])))
		}
		return sb.String()
	default:
		return renderScalar(v)
	}
}

// renderScalar renders a single value compactly. Nested structures fall back
// to JSON so nothing is silently dropped.
func renderScalar(v interface{}) string {
	switch s := v.(type) {
	case string:
		return s
	case float64:
		// JSON numbers decode as float64; keep integers free of trailing zeros
		if s == float64(int64(s)) {
			return fmt.Sprintf("%d", int64(s))
		}
		return fmt.Sprintf("%g", s)
	case bool:
		return fmt.Sprintf("%t", s)
	case nil:
		return ""
	default:
		b, err := json.Marshal(s)
		if err != nil {
			return fmt.Sprintf("%v", s)
		}
		return string(b)
	}
}
