package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jmertz88/agent_gateway/internal/mcp/protocol"
)

// Invoker is the backend business capability behind a tool. It receives one
// extracted value and must report every failure as a Result, never as a
// panic; the dispatcher recovers regardless, but a recovered panic is
// reported as an internal fault rather than a named kind.
type Invoker interface {
	Invoke(ctx context.Context, value string) Result
}

// InvokerFunc adapts a function to the Invoker interface
type InvokerFunc func(ctx context.Context, value string) Result

// Invoke calls f
func (f InvokerFunc) Invoke(ctx context.Context, value string) Result {
	return f(ctx, value)
}

// ToolBinding ties a tool descriptor to the aliases its business key goes by
// and the backend that serves it
type ToolBinding struct {
	Tool    protocol.Tool
	Aliases []string
	Invoker Invoker
}

// AuditRecord describes one completed dispatch for the audit trail
type AuditRecord struct {
	ID         string
	Tool       string
	Family     Family
	OK         bool
	ErrorKind  ErrorKind
	DurationMS int64
	CreatedAt  time.Time
}

// Recorder receives audit records. Recording is best-effort; implementations
// must not fail the dispatch.
type Recorder interface {
	Record(ctx context.Context, rec AuditRecord)
}

// Dispatcher is the protocol adapter between inbound tool invocations and
// backend invokers. It detects the envelope shape, extracts the business
// argument, runs the backend, and renders the result in the protocol family
// the caller used. Every call yields a well-formed response; the dispatcher
// itself never returns an error.
type Dispatcher struct {
	serverName    string
	serverVersion string
	tools         map[string]ToolBinding
	toolOrder     []string
	defaultTool   string
	recorder      Recorder
	logger        *slog.Logger
}

// New creates a dispatcher with no tools registered
func New(serverName, serverVersion string, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		serverName:    serverName,
		serverVersion: serverVersion,
		tools:         make(map[string]ToolBinding),
		logger:        logger,
	}
}

// Register adds a tool binding. The first registered tool also serves
// direct (non-JSON-RPC) invocations.
func (d *Dispatcher) Register(binding ToolBinding) error {
	name := binding.Tool.Name
	if name == "" {
		return fmt.Errorf("tool name is required")
	}
	if binding.Invoker == nil {
		return fmt.Errorf("tool %s has no invoker", name)
	}
	if len(binding.Aliases) == 0 {
		return fmt.Errorf("tool %s has no argument aliases", name)
	}
	if _, exists := d.tools[name]; exists {
		return fmt.Errorf("tool already registered: %s", name)
	}

	d.tools[name] = binding
	d.toolOrder = append(d.toolOrder, name)
	if d.defaultTool == "" {
		d.defaultTool = name
	}

	d.logger.Info("registered tool",
		slog.String("tool_name", name),
		slog.String("description", binding.Tool.Description),
	)
	return nil
}

// SetRecorder attaches an audit recorder
func (d *Dispatcher) SetRecorder(r Recorder) {
	d.recorder = r
}

// Handle processes one raw inbound event and returns the outbound response:
// either an HTTPResponse or a protocol.JSONRPCResponse, matching the
// envelope family of the request. Handle never panics and never returns nil.
func (d *Dispatcher) Handle(ctx context.Context, raw json.RawMessage) (resp interface{}) {
	started := time.Now()
	invocationID := uuid.NewString()

	family := FamilyHTTP
	var requestID interface{}
	toolName := d.defaultTool
	outcome := Fail(ErrInternal, "dispatch did not complete")

	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("recovered panic during dispatch",
				slog.String("invocation_id", invocationID),
				slog.Any("panic", r),
			)
			outcome = Failf(ErrInternal, "%v", r)
			if family == FamilyJSONRPC {
				resp = FormatJSONRPC(outcome, requestID)
			} else {
				resp = FormatHTTP(outcome)
			}
		}
		d.record(ctx, AuditRecord{
			ID:         invocationID,
			Tool:       toolName,
			Family:     family,
			OK:         outcome.OK,
			ErrorKind:  outcome.Kind,
			DurationMS: time.Since(started).Milliseconds(),
			CreatedAt:  started,
		})
	}()

	env := Detect(raw)
	family = env.Family()

	d.logger.Info("dispatching request",
		slog.String("invocation_id", invocationID),
		slog.String("envelope_kind", string(env.Kind)),
	)

	if family == FamilyJSONRPC {
		var rpcResp protocol.JSONRPCResponse
		rpcResp, toolName, outcome = d.handleJSONRPC(ctx, env, &requestID)
		return rpcResp
	}

	outcome = d.invokeTool(ctx, env, toolName)
	return FormatHTTP(outcome)
}

// handleJSONRPC runs the JSON-RPC method states. It returns the response
// plus the tool name and outcome for the audit trail.
func (d *Dispatcher) handleJSONRPC(ctx context.Context, env *Envelope, requestID *interface{}) (protocol.JSONRPCResponse, string, Result) {
	rpc := env.RPC
	if rpc == nil || rpc.JSONRPC != protocol.JSONRPCVersion || rpc.Method == "" {
		resp := JSONRPCErrorResponse(rpcID(rpc), protocol.ErrCodeInvalidRequest, "invalid JSON-RPC envelope")
		return resp, "", Fail(ErrInternal, "invalid JSON-RPC envelope")
	}
	*requestID = rpc.ID

	switch rpc.Method {
	case "initialize":
		result := protocol.InitializeResult{
			ProtocolVersion: protocol.MCPVersion,
			ServerInfo: protocol.ServerInfo{
				Name:    d.serverName,
				Version: d.serverVersion,
			},
			Capabilities: protocol.ServerCapabilities{
				Tools: &protocol.ToolsCapability{ListChanged: false},
			},
		}
		return JSONRPCResult(rpc.ID, result), "", Success("initialized")

	case "tools/list":
		return JSONRPCResult(rpc.ID, protocol.ToolsListResult{Tools: d.descriptors()}), "", Success("listed")

	case "ping":
		return JSONRPCResult(rpc.ID, map[string]string{"status": "pong"}), "", Success("pong")

	case "tools/call":
		var params protocol.ToolCallParams
		if len(rpc.Params) > 0 {
			if err := json.Unmarshal(rpc.Params, &params); err != nil {
				resp := JSONRPCErrorResponse(rpc.ID, protocol.ErrCodeInvalidRequest, "invalid tools/call params")
				return resp, "", Fail(ErrInternal, "invalid tools/call params")
			}
		}
		if params.Name == "" {
			resp := JSONRPCErrorResponse(rpc.ID, protocol.ErrCodeInvalidRequest, "tool name is required")
			return resp, "", Fail(ErrInternal, "tool name is required")
		}

		name := stripTargetPrefix(params.Name)
		if _, known := d.tools[name]; !known {
			d.logger.Warn("unknown tool requested",
				slog.String("tool_name", params.Name),
			)
			resp := JSONRPCErrorResponse(rpc.ID, protocol.ErrCodeMethodNotFound,
				fmt.Sprintf("tool not found: %s", params.Name))
			return resp, name, Fail(ErrNotFound, "tool not found")
		}

		outcome := d.invokeTool(ctx, env, name)
		return FormatJSONRPC(outcome, rpc.ID), name, outcome

	default:
		d.logger.Warn("unknown method requested",
			slog.String("method", rpc.Method),
		)
		resp := JSONRPCErrorResponse(rpc.ID, protocol.ErrCodeMethodNotFound,
			fmt.Sprintf("method not found: %s", rpc.Method))
		return resp, "", Fail(ErrNotFound, "method not found")
	}
}

// invokeTool extracts the tool's argument and runs its backend. A missing
// argument short-circuits to a missing-input failure without touching the
// backend.
func (d *Dispatcher) invokeTool(ctx context.Context, env *Envelope, name string) Result {
	binding, exists := d.tools[name]
	if !exists {
		return Failf(ErrInternal, "no tool configured for %q", name)
	}

	value, found := Extract(env, binding.Aliases)
	if !found {
		return Failf(ErrMissingInput, "missing required argument: %s", binding.Aliases[0])
	}

	outcome := binding.Invoker.Invoke(ctx, value)
	if !outcome.OK {
		d.logger.Warn("backend invocation failed",
			slog.String("tool_name", name),
			slog.String("error_kind", outcome.Kind.String()),
			slog.String("error", outcome.Message),
		)
	}
	return outcome
}

// descriptors returns tool definitions in registration order
func (d *Dispatcher) descriptors() []protocol.Tool {
	tools := make([]protocol.Tool, 0, len(d.toolOrder))
	for _, name := range d.toolOrder {
		tools = append(tools, d.tools[name].Tool)
	}
	return tools
}

func (d *Dispatcher) record(ctx context.Context, rec AuditRecord) {
	if d.recorder == nil {
		return
	}
	d.recorder.Record(ctx, rec)
}

// stripTargetPrefix removes a multi-target gateway routing prefix of the
// form <target>___<tool>, keeping the segment after the last separator.
// Bare names pass through untouched.
func stripTargetPrefix(name string) string {
	if idx := strings.LastIndex(name, "___"); idx >= 0 {
		return name[idx+len("___"):]
	}
	return name
}

func rpcID(rpc *protocol.JSONRPCRequest) interface{} {
	if rpc == nil {
		return nil
	}
	return rpc.ID
}
