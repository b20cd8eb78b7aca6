package backends

import (
	"context"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	brtypes "github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"

	"github.com/jmertz88/agent_gateway/internal/mcp/dispatch"
	"github.com/jmertz88/agent_gateway/internal/mcp/protocol"
)

const aiCalcSystemPrompt = "You are a calculator. Solve the mathematical question you are given " +
	"and reply with only the final answer, no explanation."

// ConverseAPI is the subset of the Bedrock runtime client the AI calculator
// needs
type ConverseAPI interface {
	Converse(ctx context.Context, params *bedrockruntime.ConverseInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error)
}

// AICalculator answers calculation questions by delegating to a hosted model
// via the Bedrock Converse API
type AICalculator struct {
	client  ConverseAPI
	modelID string
	logger  *slog.Logger
}

// NewAICalculator creates an AI calculator backend
func NewAICalculator(client ConverseAPI, modelID string, logger *slog.Logger) *AICalculator {
	return &AICalculator{
		client:  client,
		modelID: modelID,
		logger:  logger,
	}
}

// Binding returns the tool binding for the AI calculator
func (a *AICalculator) Binding() dispatch.ToolBinding {
	return dispatch.ToolBinding{
		Tool: protocol.Tool{
			Name:        "ai_calculate",
			Description: "Answer a natural-language math question using a hosted language model",
			InputSchema: protocol.InputSchema{
				Type: "object",
				Properties: map[string]protocol.Property{
					"query": {
						Type:        "string",
						Description: "Math question in plain language (e.g. What is 2+2?)",
					},
				},
				Required: []string{"query"},
			},
		},
		Aliases: []string{"query", "question", "expression"},
		Invoker: a,
	}
}

// Invoke asks the model and returns its text answer
func (a *AICalculator) Invoke(ctx context.Context, value string) dispatch.Result {
	query := strings.TrimSpace(value)
	if query == "" {
		return dispatch.Fail(dispatch.ErrMissingInput, "query is empty")
	}

	input := &bedrockruntime.ConverseInput{
		ModelId: aws.String(a.modelID),
		System: []brtypes.SystemContentBlock{
			&brtypes.SystemContentBlockMemberText{Value: aiCalcSystemPrompt},
		},
		Messages: []brtypes.Message{
			{
				Role: brtypes.ConversationRoleUser,
				Content: []brtypes.ContentBlock{
					&brtypes.ContentBlockMemberText{Value: query},
				},
			},
		},
		InferenceConfig: &brtypes.InferenceConfiguration{
			MaxTokens:   aws.Int32(256),
			Temperature: aws.Float32(0),
		},
	}

	output, err := a.client.Converse(ctx, input)
	if err != nil {
		a.logger.Error("model invocation failed",
			slog.String("model_id", a.modelID),
			slog.String("error", err.Error()),
		)
		return dispatch.Failf(dispatch.ErrUpstreamUnavailable, "model invocation failed: %v", err)
	}

	answer := extractConverseText(output)
	if answer == "" {
		return dispatch.Fail(dispatch.ErrInternal, "model returned no text content")
	}

	a.logger.Info("model answered",
		slog.String("model_id", a.modelID),
	)

	return dispatch.Success(answer)
}

// extractConverseText pulls the first text block out of a Converse response
func extractConverseText(output *bedrockruntime.ConverseOutput) string {
	msg, ok := output.Output.(*brtypes.ConverseOutputMemberMessage)
	if !ok {
		return ""
	}
	for _, block := range msg.Value.Content {
		if text, ok := block.(*brtypes.ContentBlockMemberText); ok {
			return strings.TrimSpace(text.Value)
		}
	}
	return ""
}
