package backends

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/cel-go/cel"

	"github.com/jmertz88/agent_gateway/internal/mcp/dispatch"
	"github.com/jmertz88/agent_gateway/internal/mcp/protocol"
)

// Calculator evaluates arithmetic expressions with CEL
type Calculator struct {
	env    *cel.Env
	logger *slog.Logger
}

// NewCalculator creates a calculator backend. The CEL environment is built
// once and reused across invocations.
func NewCalculator(logger *slog.Logger) (*Calculator, error) {
	env, err := cel.NewEnv()
	if err != nil {
		return nil, fmt.Errorf("error creating CEL environment: %w", err)
	}
	return &Calculator{env: env, logger: logger}, nil
}

// Binding returns the tool binding for the calculator
func (c *Calculator) Binding() dispatch.ToolBinding {
	return dispatch.ToolBinding{
		Tool: protocol.Tool{
			Name:        "calculate",
			Description: "Evaluate an arithmetic expression and return the numeric result",
			InputSchema: protocol.InputSchema{
				Type: "object",
				Properties: map[string]protocol.Property{
					"expression": {
						Type:        "string",
						Description: "Arithmetic expression to evaluate (e.g. (2 + 3) * 4)",
					},
				},
				Required: []string{"expression"},
			},
		},
		Aliases: []string{"expression", "query"},
		Invoker: c,
	}
}

// Invoke compiles and evaluates the expression
func (c *Calculator) Invoke(ctx context.Context, value string) dispatch.Result {
	expression := strings.TrimSpace(value)
	if expression == "" {
		return dispatch.Fail(dispatch.ErrMissingInput, "expression is empty")
	}

	ast, issues := c.env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return dispatch.Failf(dispatch.ErrInternal, "invalid expression: %v", issues.Err())
	}

	program, err := c.env.Program(ast)
	if err != nil {
		return dispatch.Failf(dispatch.ErrInternal, "failed to build program: %v", err)
	}

	out, _, err := program.ContextEval(ctx, cel.NoVars())
	if err != nil {
		return dispatch.Failf(dispatch.ErrInternal, "evaluation failed: %v", err)
	}

	c.logger.Debug("expression evaluated",
		slog.String("expression", expression),
	)

	return dispatch.Success(renderCELValue(out.Value()))
}

// renderCELValue renders a CEL evaluation result as text
func renderCELValue(v interface{}) string {
	switch n := v.(type) {
	case int64:
		return fmt.Sprintf("%d", n)
	case uint64:
		return fmt.Sprintf("%d", n)
	case float64:
		if n == float64(int64(n)) {
			return fmt.Sprintf("%d", int64(n))
		}
		return fmt.Sprintf("%g", n)
	case bool:
		return fmt.Sprintf("%t", n)
	case string:
		return n
	default:
		return fmt.Sprintf("%v", v)
	}
}
