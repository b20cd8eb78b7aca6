package config

import (
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("STAGE", "")
	t.Setenv("AWS_REGION", "")
	t.Setenv("MCP_SERVER_NAME", "")
	t.Setenv("BEDROCK_MODEL_ID", "")
	t.Setenv("APP_BACKEND_URL", "")
	t.Setenv("APP_SECRET_NAME", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Stage != StageDev {
		t.Errorf("Stage = %v, want dev", cfg.Stage)
	}
	if cfg.AWSRegion != "us-east-1" {
		t.Errorf("AWSRegion = %v", cfg.AWSRegion)
	}
	if cfg.ServerName != "agent-gateway" {
		t.Errorf("ServerName = %v", cfg.ServerName)
	}
	if cfg.BedrockModelID == "" {
		t.Error("BedrockModelID is empty")
	}
	if cfg.AppSecretName != "" {
		t.Errorf("AppSecretName = %q, want empty without a backend URL", cfg.AppSecretName)
	}
}

func TestLoad_InvalidStage(t *testing.T) {
	t.Setenv("STAGE", "production")

	if _, err := Load(); err == nil {
		t.Error("Load() accepted invalid stage")
	}
}

func TestLoad_BackendSecretDefault(t *testing.T) {
	t.Setenv("STAGE", "prod")
	t.Setenv("APP_BACKEND_URL", "https://appregistry.internal.example.com")
	t.Setenv("APP_SECRET_NAME", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := "agent-gateway/app-backend/credentials-prod"
	if cfg.AppSecretName != want {
		t.Errorf("AppSecretName = %q, want %q", cfg.AppSecretName, want)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "bad stage", mutate: func(c *Config) { c.Stage = "qa" }, wantErr: true},
		{name: "missing region", mutate: func(c *Config) { c.AWSRegion = "" }, wantErr: true},
		{name: "missing server name", mutate: func(c *Config) { c.ServerName = "" }, wantErr: true},
		{
			name: "backend without secret",
			mutate: func(c *Config) {
				c.AppBackendURL = "https://x"
				c.AppSecretName = ""
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				Stage:         StageDev,
				AWSRegion:     "us-east-1",
				ServerName:    "agent-gateway",
				ServerVersion: "1.0.0",
			}
			tt.mutate(cfg)

			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestStage(t *testing.T) {
	if !StageDev.IsValid() || !StageStage.IsValid() || !StageProd.IsValid() {
		t.Error("valid stages reported invalid")
	}
	if Stage("qa").IsValid() {
		t.Error("invalid stage reported valid")
	}
	if (&Config{Stage: StageProd}).IsProduction() != true {
		t.Error("IsProduction() = false for prod")
	}
}
