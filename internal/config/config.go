package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	DefaultServiceURL = "http://localhost:2304/"
	DefaultBaseURL    = "http://localhost:5000"
	DefaultBind       = ":5000"
)

// Config mirrors the plugin settings plus the connection details the client
// and the standalone profile service need.
type Config struct {
	ServiceURL     string   `json:"url,omitempty"`     // PrePrintService slicing backend
	BaseURL        string   `json:"baseUrl,omitempty"` // host application API root
	APIKey         string   `json:"apiKey,omitempty"`
	EnginePath     string   `json:"slic3rEngine,omitempty"`
	DefaultProfile string   `json:"defaultProfile,omitempty"`
	DebugLogging   bool     `json:"debugLogging,omitempty"`
	ProfileDir     string   `json:"profileDir,omitempty"` // serve: profile folder
	Bind           string   `json:"bind,omitempty"`       // serve: listen address
	Tokens         []string `json:"tokens,omitempty"`     // serve: accepted API keys
}

var ConfigPath string

func init() {
	// A config.json in the working directory wins over the per-user one.
	pwd, _ := os.Getwd()
	projectConfig := filepath.Join(pwd, "config.json")
	if _, err := os.Stat(projectConfig); err == nil {
		ConfigPath = projectConfig
	} else {
		homeDir, _ := os.UserHomeDir()
		ConfigPath = filepath.Join(homeDir, ".preprint", "config.json")
	}
}

// Dir returns the directory holding the config file.
func Dir() string {
	return filepath.Dir(ConfigPath)
}

// LoadConfig reads the config file with defaults and environment overrides
// applied. The result is for reading; persist changes with UpdateConfig.
func LoadConfig() (*Config, error) {
	cfg, err := loadFile()
	if err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	cfg.applyEnv()
	return cfg, nil
}

// loadFile reads the config file as stored. A missing file is empty.
func loadFile() (*Config, error) {
	cfg := &Config{}
	data, err := os.ReadFile(ConfigPath)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	if err == nil {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", ConfigPath, err)
		}
	}
	return cfg, nil
}

// UpdateConfig applies fn to the stored config and saves it. Defaults and
// PREPRINT_* overrides never reach the file.
func UpdateConfig(fn func(*Config) error) error {
	cfg, err := loadFile()
	if err != nil {
		return err
	}
	if err := fn(cfg); err != nil {
		return err
	}
	return SaveConfig(cfg)
}

func SaveConfig(cfg *Config) error {
	data, err := json.MarshalIndent(cfg, "", "    ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(Dir(), 0755); err != nil {
		return err
	}
	return os.WriteFile(ConfigPath, data, 0600)
}

func (c *Config) applyDefaults() {
	if c.ServiceURL == "" {
		c.ServiceURL = DefaultServiceURL
	}
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Bind == "" {
		c.Bind = DefaultBind
	}
	if c.ProfileDir == "" {
		c.ProfileDir = filepath.Join(Dir(), "profiles")
	}
}

func (c *Config) applyEnv() {
	if v := os.Getenv("PREPRINT_BASE_URL"); v != "" {
		c.BaseURL = v
	}
	if v := os.Getenv("PREPRINT_API_KEY"); v != "" {
		c.APIKey = v
	}
}

// Keys lists the settings accepted by Get and Set.
func Keys() []string {
	return []string{"url", "baseUrl", "apiKey", "slic3rEngine", "defaultProfile", "debugLogging", "profileDir", "bind"}
}

// Get returns a setting by key.
func (c *Config) Get(key string) (string, error) {
	switch key {
	case "url":
		return c.ServiceURL, nil
	case "baseUrl":
		return c.BaseURL, nil
	case "apiKey":
		return c.APIKey, nil
	case "slic3rEngine":
		return c.EnginePath, nil
	case "defaultProfile":
		return c.DefaultProfile, nil
	case "debugLogging":
		return strconv.FormatBool(c.DebugLogging), nil
	case "profileDir":
		return c.ProfileDir, nil
	case "bind":
		return c.Bind, nil
	}
	return "", fmt.Errorf("unknown setting %q (valid: %s)", key, strings.Join(Keys(), ", "))
}

// Set updates a setting by key.
func (c *Config) Set(key, value string) error {
	switch key {
	case "url":
		c.ServiceURL = value
	case "baseUrl":
		c.BaseURL = strings.TrimRight(value, "/")
	case "apiKey":
		c.APIKey = value
	case "slic3rEngine":
		c.EnginePath = value
	case "defaultProfile":
		c.DefaultProfile = value
	case "debugLogging":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("debugLogging: %w", err)
		}
		c.DebugLogging = b
	case "profileDir":
		c.ProfileDir = value
	case "bind":
		c.Bind = value
	default:
		return fmt.Errorf("unknown setting %q (valid: %s)", key, strings.Join(Keys(), ", "))
	}
	return nil
}

// GetEnginePath returns the configured slicing engine executable.
func GetEnginePath() string {
	cfg, err := LoadConfig()
	if err != nil {
		return ""
	}
	return cfg.EnginePath
}

// SetEnginePath stores the slicing engine executable path.
func SetEnginePath(path string) error {
	return UpdateConfig(func(cfg *Config) error {
		cfg.EnginePath = path
		return nil
	})
}
