package secrets

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

// SecretValue represents a generic secret value
type SecretValue map[string]string

// APICredentials represents credentials for the application-details backend
type APICredentials struct {
	APIKey    string `json:"api_key"`
	APIKeyID  string `json:"api_key_id"`
	AuthToken string `json:"auth_token"`
}

// cachedSecret represents a cached secret with TTL
type cachedSecret struct {
	Value     SecretValue
	ExpiresAt time.Time
}

// Manager handles AWS Secrets Manager operations with caching. Construct it
// once per process in main and inject it; it is not a global.
type Manager struct {
	client    *secretsmanager.Client
	logger    *slog.Logger
	cache     map[string]*cachedSecret
	cacheLock sync.RWMutex
	cacheTTL  time.Duration
}

// NewManager creates a new secrets manager with caching
func NewManager(cfg aws.Config, logger *slog.Logger) *Manager {
	return &Manager{
		client:   secretsmanager.NewFromConfig(cfg),
		logger:   logger,
		cache:    make(map[string]*cachedSecret),
		cacheTTL: 5 * time.Minute,
	}
}

// GetSecret retrieves a secret from AWS Secrets Manager with caching
func (m *Manager) GetSecret(ctx context.Context, secretName string) (SecretValue, error) {
	if cached := m.getFromCache(secretName); cached != nil {
		m.logger.Debug("secret cache hit", slog.String("secret_name", "[REDACTED]"))
		return cached.Value, nil
	}

	m.logger.Debug("secret cache miss, fetching from AWS", slog.String("secret_name", "[REDACTED]"))

	input := &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(secretName),
	}

	result, err := m.client.GetSecretValue(ctx, input)
	if err != nil {
		m.logger.Error("failed to retrieve secret",
			slog.String("error", err.Error()),
			// SECURITY: never log secret names in production
			slog.String("secret_name", "[REDACTED]"),
		)
		return nil, fmt.Errorf("failed to retrieve secret: %w", err)
	}

	if result.SecretString == nil {
		return nil, fmt.Errorf("secret has no string value")
	}

	var secretValue SecretValue
	if err := json.Unmarshal([]byte(*result.SecretString), &secretValue); err != nil {
		return nil, fmt.Errorf("failed to parse secret JSON: %w", err)
	}

	m.putInCache(secretName, secretValue)

	return secretValue, nil
}

// GetAPICredentials retrieves backend API credentials from a secret
func (m *Manager) GetAPICredentials(ctx context.Context, secretName string) (*APICredentials, error) {
	secretValue, err := m.GetSecret(ctx, secretName)
	if err != nil {
		return nil, err
	}

	creds := &APICredentials{
		APIKey:    secretValue["api_key"],
		APIKeyID:  secretValue["api_key_id"],
		AuthToken: secretValue["auth_token"],
	}

	if creds.APIKey == "" && creds.AuthToken == "" {
		return nil, fmt.Errorf("secret missing required credential fields (api_key or auth_token)")
	}

	// SECURITY: never log credentials
	m.logger.Debug("API credentials retrieved",
		slog.String("secret_name", "[REDACTED]"),
	)

	return creds, nil
}

// getFromCache retrieves a secret from cache if not expired
func (m *Manager) getFromCache(secretName string) *cachedSecret {
	m.cacheLock.RLock()
	defer m.cacheLock.RUnlock()

	cached, exists := m.cache[secretName]
	if !exists {
		return nil
	}

	if time.Now().After(cached.ExpiresAt) {
		return nil
	}

	return cached
}

// putInCache stores a secret in cache with TTL
func (m *Manager) putInCache(secretName string, value SecretValue) {
	m.cacheLock.Lock()
	defer m.cacheLock.Unlock()

	m.cache[secretName] = &cachedSecret{
		Value:     value,
		ExpiresAt: time.Now().Add(m.cacheTTL),
	}
}

// ClearCache clears all cached secrets
func (m *Manager) ClearCache() {
	m.cacheLock.Lock()
	defer m.cacheLock.Unlock()

	m.cache = make(map[string]*cachedSecret)
	m.logger.Debug("secret cache cleared")
}
