package apps

import (
	"testing"
)

func TestLoad(t *testing.T) {
	registry, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(registry.Applications) == 0 {
		t.Fatal("Load() returned empty registry")
	}

	for _, app := range registry.Applications {
		if app.AssetID == "" {
			t.Errorf("application %q has no asset id", app.Name)
		}
		if app.Name == "" || app.Owner == "" || app.Environment == "" {
			t.Errorf("application %s missing required fields: %+v", app.AssetID, app)
		}
	}
}

func TestGetByAssetID(t *testing.T) {
	registry, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	tests := []struct {
		name    string
		assetID string
		wantErr bool
	}{
		{name: "exact match", assetID: "APP-10021"},
		{name: "case insensitive", assetID: "app-10021"},
		{name: "surrounding whitespace", assetID: "  APP-10021  "},
		{name: "unknown id", assetID: "APP-00000", wantErr: true},
		{name: "empty id", assetID: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, err := registry.GetByAssetID(tt.assetID)
			if (err != nil) != tt.wantErr {
				t.Fatalf("GetByAssetID() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && app.AssetID != "APP-10021" {
				t.Errorf("AssetID = %q", app.AssetID)
			}
		})
	}
}

func TestApplication_Fields(t *testing.T) {
	app := Application{
		AssetID:     "APP-1",
		Name:        "Thing",
		Owner:       "team",
		Environment: "dev",
		Endpoint:    "https://thing.example.com",
	}

	fields := app.Fields()

	if fields["asset_id"] != "APP-1" || fields["name"] != "Thing" {
		t.Errorf("Fields() = %v", fields)
	}
	if fields["endpoint"] != "https://thing.example.com" {
		t.Errorf("endpoint = %v", fields["endpoint"])
	}
	if _, present := fields["repository"]; present {
		t.Error("empty repository should be omitted")
	}
}
