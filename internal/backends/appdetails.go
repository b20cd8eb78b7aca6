package backends

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/jmertz88/agent_gateway/internal/httpclient"
	"github.com/jmertz88/agent_gateway/internal/mcp/dispatch"
	"github.com/jmertz88/agent_gateway/internal/mcp/protocol"
	"github.com/jmertz88/agent_gateway/internal/secrets"
	"github.com/jmertz88/agent_gateway/pkg/apps"
)

// CredentialsAPI is the subset of the secrets manager this backend needs
type CredentialsAPI interface {
	GetAPICredentials(ctx context.Context, secretName string) (*secrets.APICredentials, error)
}

// AppDetails looks up application metadata by asset id. The embedded
// registry is consulted first; when a backend URL is configured, misses fall
// through to the REST backend with credentials from Secrets Manager.
type AppDetails struct {
	registry   *apps.Registry
	httpClient *httpclient.Client
	secrets    CredentialsAPI
	backendURL string
	secretName string
	logger     *slog.Logger
}

// AppDetailsConfig configures the application-details backend
type AppDetailsConfig struct {
	Registry   *apps.Registry
	HTTPClient *httpclient.Client
	Secrets    CredentialsAPI
	BackendURL string
	SecretName string
	Logger     *slog.Logger
}

// NewAppDetails creates an application-details backend
func NewAppDetails(cfg AppDetailsConfig) *AppDetails {
	return &AppDetails{
		registry:   cfg.Registry,
		httpClient: cfg.HTTPClient,
		secrets:    cfg.Secrets,
		backendURL: strings.TrimRight(cfg.BackendURL, "/"),
		secretName: cfg.SecretName,
		logger:     cfg.Logger,
	}
}

// Binding returns the tool binding for application lookups
func (b *AppDetails) Binding() dispatch.ToolBinding {
	return dispatch.ToolBinding{
		Tool: protocol.Tool{
			Name:        "get_application_details",
			Description: "Look up application metadata (owner, environment, endpoints) by asset id",
			InputSchema: protocol.InputSchema{
				Type: "object",
				Properties: map[string]protocol.Property{
					"asset_id": {
						Type:        "string",
						Description: "Application asset id (e.g. APP-10021)",
					},
				},
				Required: []string{"asset_id"},
			},
		},
		Aliases: []string{"asset_id", "application_id", "app_id"},
		Invoker: b,
	}
}

// Invoke resolves the asset id to application details
func (b *AppDetails) Invoke(ctx context.Context, value string) dispatch.Result {
	assetID := strings.TrimSpace(value)
	if assetID == "" {
		return dispatch.Fail(dispatch.ErrMissingInput, "asset id is empty")
	}

	if b.registry != nil {
		if app, err := b.registry.GetByAssetID(assetID); err == nil {
			b.logger.Debug("application found in registry",
				slog.String("asset_id", assetID),
			)
			return dispatch.Success(app.Fields())
		}
	}

	if b.backendURL == "" {
		return dispatch.Failf(dispatch.ErrNotFound, "application not found: %s", assetID)
	}

	return b.fetchFromBackend(ctx, assetID)
}

// fetchFromBackend queries the REST backend for an application record
func (b *AppDetails) fetchFromBackend(ctx context.Context, assetID string) dispatch.Result {
	creds, err := b.secrets.GetAPICredentials(ctx, b.secretName)
	if err != nil {
		return dispatch.Failf(dispatch.ErrUpstreamUnavailable, "failed to load backend credentials: %v", err)
	}

	headers := map[string]string{"Accept": "application/json"}
	if creds.APIKey != "" {
		headers["x-api-key"] = creds.APIKey
	}
	if creds.AuthToken != "" {
		headers["Authorization"] = fmt.Sprintf("Bearer %s", creds.AuthToken)
	}

	resp, err := b.httpClient.Do(ctx, httpclient.RequestConfig{
		Method:  "GET",
		URL:     fmt.Sprintf("%s/applications/%s", b.backendURL, url.PathEscape(assetID)),
		Headers: headers,
		Timeout: 15 * time.Second,
	})
	if err != nil {
		return dispatch.Failf(dispatch.ErrUpstreamUnavailable, "backend request failed: %v", err)
	}

	switch {
	case resp.StatusCode == 404:
		return dispatch.Failf(dispatch.ErrNotFound, "application not found: %s", assetID)
	case resp.StatusCode != 200:
		return dispatch.Failf(dispatch.ErrUpstreamUnavailable, "backend returned status %d", resp.StatusCode)
	}

	var details map[string]interface{}
	if err := json.Unmarshal([]byte(resp.Body), &details); err != nil {
		return dispatch.Failf(dispatch.ErrUpstreamUnavailable, "failed to parse backend response: %v", err)
	}
	if len(details) == 0 {
		return dispatch.Failf(dispatch.ErrNotFound, "application not found: %s", assetID)
	}

	b.logger.Info("application found via backend",
		slog.String("asset_id", assetID),
	)

	return dispatch.Success(details)
}
