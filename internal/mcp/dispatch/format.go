package dispatch

import (
	"encoding/json"

	"github.com/jmertz88/agent_gateway/internal/mcp/protocol"
)

// HTTPResponse is the legacy HTTP-style outbound shape
type HTTPResponse struct {
	StatusCode int               `json:"statusCode"`
	Headers    map[string]string `json:"headers,omitempty"`
	Body       string            `json:"body"`
}

type httpSuccessBody struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
}

type httpFailureBody struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// FormatHTTP renders an invocation result as an HTTP-style response.
// Failure kinds map to status codes: missing input 400, not found 404,
// everything else 500.
func FormatHTTP(res Result) HTTPResponse {
	headers := map[string]string{"Content-Type": "application/json"}

	if res.OK {
		body, err := json.Marshal(httpSuccessBody{Success: true, Data: res.Value})
		if err != nil {
			return HTTPResponse{
				StatusCode: 500,
				Headers:    headers,
				Body:       `{"success": false, "message": "failed to encode response"}`,
			}
		}
		return HTTPResponse{StatusCode: 200, Headers: headers, Body: string(body)}
	}

	body, _ := json.Marshal(httpFailureBody{Success: false, Message: res.Message})
	return HTTPResponse{StatusCode: httpStatus(res.Kind), Headers: headers, Body: string(body)}
}

// httpStatus maps a failure kind to an HTTP status code
func httpStatus(kind ErrorKind) int {
	switch kind {
	case ErrMissingInput:
		return 400
	case ErrNotFound:
		return 404
	default:
		return 500
	}
}

// FormatJSONRPC renders an invocation result as a JSON-RPC tool-call
// response. Business failures stay inside the result envelope with
// isError=true; the top-level error object is reserved for protocol faults
// (see JSONRPCErrorResponse).
func FormatJSONRPC(res Result, id interface{}) protocol.JSONRPCResponse {
	result := protocol.ToolCallResult{
		Content: []protocol.Content{protocol.NewTextContent(Stringify(res.Value))},
		IsError: false,
	}
	if !res.OK {
		result.Content = []protocol.Content{protocol.NewTextContent(res.Message)}
		result.IsError = true
	}

	return protocol.JSONRPCResponse{
		JSONRPC: protocol.JSONRPCVersion,
		ID:      id,
		Result:  result,
	}
}

// JSONRPCResult wraps an arbitrary result payload in a JSON-RPC success
// response, used for initialize and tools/list
func JSONRPCResult(id interface{}, result interface{}) protocol.JSONRPCResponse {
	return protocol.JSONRPCResponse{
		JSONRPC: protocol.JSONRPCVersion,
		ID:      id,
		Result:  result,
	}
}

// JSONRPCErrorResponse renders a protocol-level error: unknown method,
// unknown tool name, or a malformed envelope
func JSONRPCErrorResponse(id interface{}, code int, message string) protocol.JSONRPCResponse {
	return protocol.JSONRPCResponse{
		JSONRPC: protocol.JSONRPCVersion,
		ID:      id,
		Error:   protocol.NewJSONRPCError(code, message, nil),
	}
}
