package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func withTempConfig(t *testing.T) string {
	t.Helper()
	orig := ConfigPath
	ConfigPath = filepath.Join(t.TempDir(), "config.json")
	t.Cleanup(func() { ConfigPath = orig })
	t.Setenv("PREPRINT_BASE_URL", "")
	t.Setenv("PREPRINT_API_KEY", "")
	return ConfigPath
}

// TestLoadConfig_MissingFile tests that a missing file yields the plugin defaults.
func TestLoadConfig_MissingFile(t *testing.T) {
	withTempConfig(t)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if cfg.ServiceURL != DefaultServiceURL {
		t.Errorf("ServiceURL = %q, want %q", cfg.ServiceURL, DefaultServiceURL)
	}
	if cfg.BaseURL != DefaultBaseURL {
		t.Errorf("BaseURL = %q, want %q", cfg.BaseURL, DefaultBaseURL)
	}
	if cfg.ProfileDir != filepath.Join(Dir(), "profiles") {
		t.Errorf("ProfileDir = %q", cfg.ProfileDir)
	}
	if cfg.DebugLogging {
		t.Error("DebugLogging should default to false")
	}
}

func TestSaveAndLoadConfig(t *testing.T) {
	path := withTempConfig(t)

	cfg := &Config{
		BaseURL:    "http://printer.local",
		APIKey:     "secret",
		EnginePath: "/usr/bin/prusa-slicer",
	}
	if err := SaveConfig(cfg); err != nil {
		t.Fatalf("SaveConfig() error: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config file not written: %v", err)
	}

	loaded, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if loaded.BaseURL != "http://printer.local" || loaded.APIKey != "secret" {
		t.Errorf("unexpected config: %+v", loaded)
	}
	if got := GetEnginePath(); got != "/usr/bin/prusa-slicer" {
		t.Errorf("GetEnginePath() = %q", got)
	}
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	withTempConfig(t)
	t.Setenv("PREPRINT_BASE_URL", "http://octopi:80")
	t.Setenv("PREPRINT_API_KEY", "from-env")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if cfg.BaseURL != "http://octopi:80" {
		t.Errorf("BaseURL = %q", cfg.BaseURL)
	}
	if cfg.APIKey != "from-env" {
		t.Errorf("APIKey = %q", cfg.APIKey)
	}
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	path := withTempConfig(t)
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(); err == nil {
		t.Error("expected parse error")
	}
}

func TestConfig_GetSet(t *testing.T) {
	tests := []struct {
		key     string
		value   string
		want    string
		wantErr bool
	}{
		{"url", "http://tweak:2304/", "http://tweak:2304/", false},
		{"baseUrl", "http://octopi/", "http://octopi", false},
		{"slic3rEngine", "/opt/slic3r", "/opt/slic3r", false},
		{"debugLogging", "true", "true", false},
		{"debugLogging", "maybe", "", true},
		{"nope", "x", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			cfg := &Config{}
			err := cfg.Set(tt.key, tt.value)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Set(%q, %q) expected error", tt.key, tt.value)
				}
				return
			}
			if err != nil {
				t.Fatalf("Set(%q, %q) error: %v", tt.key, tt.value, err)
			}
			got, err := cfg.Get(tt.key)
			if err != nil {
				t.Fatalf("Get(%q) error: %v", tt.key, err)
			}
			if got != tt.want {
				t.Errorf("Get(%q) = %q, want %q", tt.key, got, tt.want)
			}
		})
	}
}

func TestUpdateConfig_KeepsEnvAndDefaultsOutOfFile(t *testing.T) {
	path := withTempConfig(t)
	if err := SaveConfig(&Config{APIKey: "stored"}); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PREPRINT_API_KEY", "env-secret")
	t.Setenv("PREPRINT_BASE_URL", "http://env-host:9")

	err := UpdateConfig(func(cfg *Config) error {
		return cfg.Set("slic3rEngine", "/usr/bin/slic3r")
	})
	if err != nil {
		t.Fatalf("UpdateConfig() error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var stored map[string]any
	if err := json.Unmarshal(data, &stored); err != nil {
		t.Fatal(err)
	}
	if stored["apiKey"] != "stored" {
		t.Errorf("apiKey = %v, want stored", stored["apiKey"])
	}
	if stored["slic3rEngine"] != "/usr/bin/slic3r" {
		t.Errorf("slic3rEngine = %v", stored["slic3rEngine"])
	}
	for _, k := range []string{"baseUrl", "url", "bind", "profileDir"} {
		if v, ok := stored[k]; ok {
			t.Errorf("%s = %v written to file", k, v)
		}
	}

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.APIKey != "env-secret" {
		t.Errorf("loaded APIKey = %q, want env override", cfg.APIKey)
	}
}
