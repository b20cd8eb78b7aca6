package apps

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed applications.yaml
var applicationsYAML []byte

// Application represents one registered application
type Application struct {
	AssetID     string `yaml:"assetId"`
	Name        string `yaml:"name"`
	Owner       string `yaml:"owner"`
	Environment string `yaml:"environment"`
	Repository  string `yaml:"repository,omitempty"`
	Endpoint    string `yaml:"endpoint,omitempty"`
	Description string `yaml:"description,omitempty"`
}

// Registry is the loaded application catalog
type Registry struct {
	Applications []Application `yaml:"applications"`
}

// Load parses the embedded application catalog
func Load() (*Registry, error) {
	var registry Registry
	if err := yaml.Unmarshal(applicationsYAML, &registry); err != nil {
		return nil, fmt.Errorf("failed to parse applications.yaml: %w", err)
	}
	return &registry, nil
}

// GetByAssetID finds an application by its asset id (case-insensitive)
func (r *Registry) GetByAssetID(assetID string) (*Application, error) {
	want := strings.ToLower(strings.TrimSpace(assetID))
	for i := range r.Applications {
		if strings.ToLower(r.Applications[i].AssetID) == want {
			return &r.Applications[i], nil
		}
	}
	return nil, fmt.Errorf("application not found: %s", assetID)
}

// Fields renders an application as a flat field map for tool results
func (a *Application) Fields() map[string]interface{} {
	fields := map[string]interface{}{
		"asset_id":    a.AssetID,
		"name":        a.Name,
		"owner":       a.Owner,
		"environment": a.Environment,
	}
	if a.Repository != "" {
		fields["repository"] = a.Repository
	}
	if a.Endpoint != "" {
		fields["endpoint"] = a.Endpoint
	}
	if a.Description != "" {
		fields["description"] = a.Description
	}
	return fields
}
