package config

import (
	"fmt"
	"os"
)

// Stage represents the deployment environment
type Stage string

const (
	// StageDev represents the development environment
	StageDev Stage = "dev"
	// StageStage represents the staging environment
	StageStage Stage = "stage"
	// StageProd represents the production environment
	StageProd Stage = "prod"
)

// IsValid checks if the stage value is valid
func (s Stage) IsValid() bool {
	switch s {
	case StageDev, StageStage, StageProd:
		return true
	default:
		return false
	}
}

// String returns the string representation of the stage
func (s Stage) String() string {
	return string(s)
}

// Config holds all configuration for the gateway Lambda functions
type Config struct {
	// Stage is the deployment environment (dev, stage, prod)
	Stage Stage

	// AWS Configuration
	AWSRegion string

	// MCP server identity reported on initialize
	ServerName    string
	ServerVersion string

	// Bedrock Configuration
	BedrockModelID string

	// Application-details backend (optional REST fallback)
	AppBackendURL string
	AppSecretName string

	// DynamoDB invocation audit table (optional; empty disables auditing)
	AuditTableName string

	// Gateway auth: HMAC secret for bearer-token verification (optional;
	// empty means claims are inspected but signatures are not verified)
	AuthSecret string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	stage := os.Getenv("STAGE")
	if stage == "" {
		stage = "dev"
	}

	stageEnum := Stage(stage)
	if !stageEnum.IsValid() {
		return nil, fmt.Errorf("invalid STAGE value: %s (must be dev, stage, or prod)", stage)
	}

	awsRegion := os.Getenv("AWS_REGION")
	if awsRegion == "" {
		awsRegion = "us-east-1"
	}

	serverName := os.Getenv("MCP_SERVER_NAME")
	if serverName == "" {
		serverName = "agent-gateway"
	}

	serverVersion := os.Getenv("MCP_SERVER_VERSION")
	if serverVersion == "" {
		serverVersion = "1.0.0"
	}

	modelID := os.Getenv("BEDROCK_MODEL_ID")
	if modelID == "" {
		modelID = "anthropic.claude-3-5-sonnet-20241022-v2:0"
	}

	appBackendURL := os.Getenv("APP_BACKEND_URL")

	appSecretName := os.Getenv("APP_SECRET_NAME")
	if appSecretName == "" && appBackendURL != "" {
		appSecretName = fmt.Sprintf("agent-gateway/app-backend/credentials-%s", stage)
	}

	auditTableName := os.Getenv("AUDIT_TABLE_NAME")

	authSecret := os.Getenv("GATEWAY_AUTH_SECRET")

	return &Config{
		Stage:          stageEnum,
		AWSRegion:      awsRegion,
		ServerName:     serverName,
		ServerVersion:  serverVersion,
		BedrockModelID: modelID,
		AppBackendURL:  appBackendURL,
		AppSecretName:  appSecretName,
		AuditTableName: auditTableName,
		AuthSecret:     authSecret,
	}, nil
}

// MustLoad loads configuration and panics if there's an error.
// This is useful for Lambda handlers where configuration errors should
// prevent startup.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}
	return cfg
}

// Validate checks that all required configuration is present
func (c *Config) Validate() error {
	if !c.Stage.IsValid() {
		return fmt.Errorf("invalid stage: %s", c.Stage)
	}

	if c.AWSRegion == "" {
		return fmt.Errorf("AWS region is required")
	}

	if c.ServerName == "" {
		return fmt.Errorf("server name is required")
	}

	if c.AppBackendURL != "" && c.AppSecretName == "" {
		return fmt.Errorf("app secret name is required when a backend URL is configured")
	}

	return nil
}

// IsProduction returns true if the stage is production
func (c *Config) IsProduction() bool {
	return c.Stage == StageProd
}
