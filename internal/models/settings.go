// Package models contains data structures used throughout the application
package models

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
)

// Settings contains all application settings. Credentials are never
// compiled in; they come from the settings file, the environment, or flags.
type Settings struct {
	// Connection settings
	NightscoutURL string `json:"nightscoutUrl"`
	APISecret     string `json:"apiSecret"` // Plain API secret (will be hashed)
	APIToken      string `json:"apiToken"`  // Token-based auth
	UseToken      bool   `json:"useToken"`  // Use token instead of secret

	// Report settings
	Timezone   string `json:"timezone"`   // IANA zone for display formatting
	ListenAddr string `json:"listenAddr"` // Web server bind address
	FetchCount int    `json:"fetchCount"` // Max records per upstream query
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	return &Settings{
		Timezone:   "Asia/Tokyo",
		ListenAddr: ":5000",
		FetchCount: 2000,
	}
}

// GetConfigDir returns the configuration directory path
func GetConfigDir() (string, error) {
	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configDir = filepath.Join(home, "Library", "Application Support")
	default: // Linux and others
		configDir = os.Getenv("XDG_CONFIG_HOME")
		if configDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			configDir = filepath.Join(home, ".config")
		}
	}

	appDir := filepath.Join(configDir, "nightscout-report")
	if err := os.MkdirAll(appDir, 0750); err != nil {
		return "", err
	}

	return appDir, nil
}

// GetConfigPath returns the full path to the config file
func GetConfigPath() (string, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "settings.json"), nil
}

// Load reads settings from path, or from the default config file when path
// is empty. A missing file leaves the defaults in place.
func (s *Settings) Load(path string) error {
	if path == "" {
		var err error
		path, err = GetConfigPath()
		if err != nil {
			return err
		}
	}

	data, err := os.ReadFile(path) //nolint:gosec // Config path is controlled by the app, not user input
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	return json.Unmarshal(data, s)
}

// Save saves settings to disk
func (s *Settings) Save() error {
	path, err := GetConfigPath()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600)
}

// ApplyEnv overlays environment variables on the loaded settings. The
// environment wins over the file so deployments never need credentials on
// disk.
func (s *Settings) ApplyEnv() {
	if v := os.Getenv("NIGHTSCOUT_URL"); v != "" {
		s.NightscoutURL = v
	}
	if v := os.Getenv("API_SECRET"); v != "" {
		s.APISecret = v
	}
	if v := os.Getenv("API_TOKEN"); v != "" {
		s.APIToken = v
		s.UseToken = true
	}
	if v := os.Getenv("REPORT_TIMEZONE"); v != "" {
		s.Timezone = v
	}
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		s.ListenAddr = v
	}
}

// IsConfigured returns true if minimum required settings are set
func (s *Settings) IsConfigured() bool {
	return s.NightscoutURL != ""
}
