package dispatch

import (
	"encoding/json"
	"testing"

	"github.com/jmertz88/agent_gateway/internal/mcp/protocol"
)

func TestFormatHTTP_Success(t *testing.T) {
	resp := FormatHTTP(Success(map[string]interface{}{"ip": "93.184.216.34"}))

	if resp.StatusCode != 200 {
		t.Errorf("StatusCode = %d, want 200", resp.StatusCode)
	}
	if resp.Body != `{"success":true,"data":{"ip":"93.184.216.34"}}` {
		t.Errorf("Body = %s", resp.Body)
	}
}

func TestFormatHTTP_FailureStatusMapping(t *testing.T) {
	tests := []struct {
		kind ErrorKind
		want int
	}{
		{ErrMissingInput, 400},
		{ErrNotFound, 404},
		{ErrUpstreamUnavailable, 500},
		{ErrInternal, 500},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			resp := FormatHTTP(Fail(tt.kind, "boom"))
			if resp.StatusCode != tt.want {
				t.Errorf("StatusCode = %d, want %d", resp.StatusCode, tt.want)
			}

			var body struct {
				Success bool   `json:"success"`
				Message string `json:"message"`
			}
			if err := json.Unmarshal([]byte(resp.Body), &body); err != nil {
				t.Fatalf("invalid body: %v", err)
			}
			if body.Success {
				t.Error("failure body has success=true")
			}
			if body.Message != "boom" {
				t.Errorf("Message = %q, want boom", body.Message)
			}
		})
	}
}

func TestFormatJSONRPC_Success(t *testing.T) {
	resp := FormatJSONRPC(Success("4"), float64(1))

	if resp.JSONRPC != "2.0" {
		t.Errorf("JSONRPC = %q", resp.JSONRPC)
	}
	if resp.Error != nil {
		t.Fatalf("unexpected error: %v", resp.Error)
	}

	result, ok := resp.Result.(protocol.ToolCallResult)
	if !ok {
		t.Fatalf("Result type = %T", resp.Result)
	}
	if result.IsError {
		t.Error("IsError = true on success")
	}
	if len(result.Content) != 1 || result.Content[0].Text != "4" {
		t.Errorf("Content = %+v", result.Content)
	}
}

func TestFormatJSONRPC_FailureIsErrorNotTopLevelError(t *testing.T) {
	// Business failures ride inside the result with isError=true; the
	// top-level error object stays reserved for protocol faults.
	resp := FormatJSONRPC(Fail(ErrUpstreamUnavailable, "timeout"), float64(1))

	if resp.Error != nil {
		t.Fatalf("business failure rendered as protocol error: %v", resp.Error)
	}

	result, ok := resp.Result.(protocol.ToolCallResult)
	if !ok {
		t.Fatalf("Result type = %T", resp.Result)
	}
	if !result.IsError {
		t.Error("IsError = false on failure")
	}
	if len(result.Content) != 1 || result.Content[0].Text != "timeout" {
		t.Errorf("Content = %+v", result.Content)
	}
}

func TestFormatJSONRPC_WireShape(t *testing.T) {
	resp := FormatJSONRPC(Success("4"), float64(1))

	raw, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	want := `{"jsonrpc":"2.0","id":1,"result":{"content":[{"type":"text","text":"4"}],"isError":false}}`
	if string(raw) != want {
		t.Errorf("wire = %s\nwant = %s", raw, want)
	}
}

func TestJSONRPCErrorResponse(t *testing.T) {
	resp := JSONRPCErrorResponse(float64(7), protocol.ErrCodeMethodNotFound, "method not found: foo/bar")

	if resp.Error == nil {
		t.Fatal("Error is nil")
	}
	if resp.Error.Code != -32601 {
		t.Errorf("Code = %d, want -32601", resp.Error.Code)
	}
	if resp.Result != nil {
		t.Error("error response carries a result")
	}
}
