package backends

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jmertz88/agent_gateway/internal/httpclient"
	"github.com/jmertz88/agent_gateway/internal/mcp/dispatch"
	"github.com/jmertz88/agent_gateway/internal/secrets"
	"github.com/jmertz88/agent_gateway/pkg/apps"
)

type fakeCredentials struct {
	creds *secrets.APICredentials
	err   error
}

func (f *fakeCredentials) GetAPICredentials(ctx context.Context, secretName string) (*secrets.APICredentials, error) {
	return f.creds, f.err
}

func testRegistry() *apps.Registry {
	return &apps.Registry{
		Applications: []apps.Application{
			{
				AssetID:     "APP-10021",
				Name:        "Customer Portal",
				Owner:       "platform-team",
				Environment: "prod",
			},
		},
	}
}

func TestAppDetails_RegistryHit(t *testing.T) {
	backend := NewAppDetails(AppDetailsConfig{
		Registry: testRegistry(),
		Logger:   testLogger(),
	})

	result := backend.Invoke(context.Background(), "app-10021")

	if !result.OK {
		t.Fatalf("Invoke() failed: %s", result.Message)
	}
	details := result.Value.(map[string]interface{})
	if details["name"] != "Customer Portal" {
		t.Errorf("name = %v", details["name"])
	}
	if details["owner"] != "platform-team" {
		t.Errorf("owner = %v", details["owner"])
	}
}

func TestAppDetails_MissWithoutBackend(t *testing.T) {
	backend := NewAppDetails(AppDetailsConfig{
		Registry: testRegistry(),
		Logger:   testLogger(),
	})

	result := backend.Invoke(context.Background(), "APP-99999")

	if result.OK {
		t.Fatalf("Invoke() succeeded with %v", result.Value)
	}
	if result.Kind != dispatch.ErrNotFound {
		t.Errorf("Kind = %v, want %v", result.Kind, dispatch.ErrNotFound)
	}
}

func TestAppDetails_EmptyAssetID(t *testing.T) {
	backend := NewAppDetails(AppDetailsConfig{
		Registry: testRegistry(),
		Logger:   testLogger(),
	})

	result := backend.Invoke(context.Background(), "  ")
	if result.Kind != dispatch.ErrMissingInput {
		t.Errorf("Kind = %v, want %v", result.Kind, dispatch.ErrMissingInput)
	}
}

func TestAppDetails_BackendFallback(t *testing.T) {
	var gotAPIKey string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAPIKey = r.Header.Get("x-api-key")
		switch r.URL.Path {
		case "/applications/APP-42":
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"asset_id":"APP-42","name":"Legacy Reports","owner":"bi-team"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	backend := NewAppDetails(AppDetailsConfig{
		Registry:   testRegistry(),
		HTTPClient: httpclient.NewClient(testLogger()),
		Secrets:    &fakeCredentials{creds: &secrets.APICredentials{APIKey: "test-key"}},
		BackendURL: server.URL,
		SecretName: "test-secret",
		Logger:     testLogger(),
	})

	t.Run("found via backend", func(t *testing.T) {
		result := backend.Invoke(context.Background(), "APP-42")
		if !result.OK {
			t.Fatalf("Invoke() failed: %s", result.Message)
		}
		details := result.Value.(map[string]interface{})
		if details["name"] != "Legacy Reports" {
			t.Errorf("name = %v", details["name"])
		}
		if gotAPIKey != "test-key" {
			t.Errorf("api key header = %q", gotAPIKey)
		}
	})

	t.Run("backend 404", func(t *testing.T) {
		result := backend.Invoke(context.Background(), "APP-404")
		if result.Kind != dispatch.ErrNotFound {
			t.Errorf("Kind = %v, want %v", result.Kind, dispatch.ErrNotFound)
		}
	})
}

func TestAppDetails_BackendUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	server.Close() // closed server: connection refused

	backend := NewAppDetails(AppDetailsConfig{
		Registry:   testRegistry(),
		HTTPClient: httpclient.NewClient(testLogger()),
		Secrets:    &fakeCredentials{creds: &secrets.APICredentials{APIKey: "test-key"}},
		BackendURL: server.URL,
		SecretName: "test-secret",
		Logger:     testLogger(),
	})

	result := backend.Invoke(context.Background(), "APP-42")
	if result.OK {
		t.Fatalf("Invoke() succeeded with %v", result.Value)
	}
	if result.Kind != dispatch.ErrUpstreamUnavailable {
		t.Errorf("Kind = %v, want %v", result.Kind, dispatch.ErrUpstreamUnavailable)
	}
}
