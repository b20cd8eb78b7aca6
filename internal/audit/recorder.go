package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/jmertz88/agent_gateway/internal/mcp/dispatch"
)

// invocationItem is the DynamoDB row shape for one dispatched invocation
type invocationItem struct {
	ID         string `dynamodbav:"id"`
	Tool       string `dynamodbav:"tool"`
	Family     string `dynamodbav:"family"`
	OK         bool   `dynamodbav:"ok"`
	ErrorKind  string `dynamodbav:"error_kind,omitempty"`
	DurationMS int64  `dynamodbav:"duration_ms"`
	CreatedAt  string `dynamodbav:"created_at"`
}

// DynamoDBRecorder writes invocation audit records to DynamoDB. Writes are
// best-effort: failures are logged and never surfaced to the caller.
type DynamoDBRecorder struct {
	client    *dynamodb.Client
	tableName string
	logger    *slog.Logger
}

// NewDynamoDBRecorder creates an audit recorder for the given table
func NewDynamoDBRecorder(client *dynamodb.Client, tableName string, logger *slog.Logger) *DynamoDBRecorder {
	return &DynamoDBRecorder{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

// Record writes one audit record
func (r *DynamoDBRecorder) Record(ctx context.Context, rec dispatch.AuditRecord) {
	item := invocationItem{
		ID:         rec.ID,
		Tool:       rec.Tool,
		Family:     string(rec.Family),
		OK:         rec.OK,
		DurationMS: rec.DurationMS,
		CreatedAt:  rec.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
	if !rec.OK {
		item.ErrorKind = rec.ErrorKind.String()
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		r.logger.Warn("failed to marshal audit record",
			slog.String("invocation_id", rec.ID),
			slog.String("error", err.Error()),
		)
		return
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      av,
	})
	if err != nil {
		r.logger.Warn("failed to write audit record",
			slog.String("invocation_id", rec.ID),
			slog.String("error", err.Error()),
		)
	}
}
