package main

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/aws/aws-lambda-go/lambda"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/jmertz88/agent_gateway/internal/audit"
	"github.com/jmertz88/agent_gateway/internal/auth"
	"github.com/jmertz88/agent_gateway/internal/backends"
	"github.com/jmertz88/agent_gateway/internal/httpclient"
	"github.com/jmertz88/agent_gateway/internal/logging"
	"github.com/jmertz88/agent_gateway/internal/mcp/dispatch"
	"github.com/jmertz88/agent_gateway/internal/secrets"
	"github.com/jmertz88/agent_gateway/pkg/apps"
	"github.com/jmertz88/agent_gateway/pkg/config"
)

type handler struct {
	dispatcher *dispatch.Dispatcher
	gate       *auth.Gate
	logger     *slog.Logger
}

func main() {
	logger := logging.New()
	logger.Info("application details Lambda starting")

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.String("error", err.Error()))
		panic(err)
	}

	awsCfg, err := awsConfig.LoadDefaultConfig(context.Background(),
		awsConfig.WithRegion(cfg.AWSRegion),
	)
	if err != nil {
		logger.Error("failed to load AWS config", slog.String("error", err.Error()))
		panic(err)
	}

	registry, err := apps.Load()
	if err != nil {
		logger.Error("failed to load application registry", slog.String("error", err.Error()))
		panic(err)
	}

	dispatcher := dispatch.New(cfg.ServerName, cfg.ServerVersion, logger)

	appDetails := backends.NewAppDetails(backends.AppDetailsConfig{
		Registry:   registry,
		HTTPClient: httpclient.NewClient(logger),
		Secrets:    secrets.NewManager(awsCfg, logger),
		BackendURL: cfg.AppBackendURL,
		SecretName: cfg.AppSecretName,
		Logger:     logger,
	})
	if err := dispatcher.Register(appDetails.Binding()); err != nil {
		logger.Error("failed to register get_application_details tool", slog.String("error", err.Error()))
		panic(err)
	}

	if cfg.AuditTableName != "" {
		dispatcher.SetRecorder(audit.NewDynamoDBRecorder(
			dynamodb.NewFromConfig(awsCfg), cfg.AuditTableName, logger))
	}

	logger.Info("application details initialized",
		slog.Int("registry_size", len(registry.Applications)),
		slog.Bool("backend_enabled", cfg.AppBackendURL != ""),
	)

	h := &handler{
		dispatcher: dispatcher,
		gate:       auth.NewGate(cfg.AuthSecret, logger),
		logger:     logger,
	}

	lambda.Start(h.handle)
}

func (h *handler) handle(ctx context.Context, raw json.RawMessage) (interface{}, error) {
	token := auth.TokenFromEvent(raw)
	if token != "" {
		if err := h.gate.Verify(token); err != nil {
			h.logger.Warn("rejected request with invalid bearer token",
				slog.String("error", err.Error()),
			)
			return dispatch.HTTPResponse{
				StatusCode: 401,
				Headers:    map[string]string{"Content-Type": "application/json"},
				Body:       `{"success": false, "message": "unauthorized"}`,
			}, nil
		}
	}
	return h.dispatcher.Handle(ctx, raw), nil
}
