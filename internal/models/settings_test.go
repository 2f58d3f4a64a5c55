package models

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultSettings(t *testing.T) {
	settings := DefaultSettings()

	if settings.Timezone != "Asia/Tokyo" {
		t.Errorf("Default timezone = %s, want Asia/Tokyo", settings.Timezone)
	}
	if settings.ListenAddr != ":5000" {
		t.Errorf("Default listen addr = %s, want :5000", settings.ListenAddr)
	}
	if settings.FetchCount != 2000 {
		t.Errorf("Default fetch count = %d, want 2000", settings.FetchCount)
	}
	if settings.NightscoutURL != "" {
		t.Errorf("Default URL should be empty, got %s", settings.NightscoutURL)
	}
}

func TestSettings_IsConfigured(t *testing.T) {
	settings := DefaultSettings()

	if settings.IsConfigured() {
		t.Error("Empty settings should not be configured")
	}

	settings.NightscoutURL = "https://test.example.com"
	if !settings.IsConfigured() {
		t.Error("Settings with URL should be configured")
	}
}

func TestSettings_Load(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.json")
	data := `{"nightscoutUrl": "https://cgm.example.com", "timezone": "UTC"}`
	if err := os.WriteFile(path, []byte(data), 0600); err != nil {
		t.Fatal(err)
	}

	settings := DefaultSettings()
	if err := settings.Load(path); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if settings.NightscoutURL != "https://cgm.example.com" {
		t.Errorf("NightscoutURL = %s, want https://cgm.example.com", settings.NightscoutURL)
	}
	if settings.Timezone != "UTC" {
		t.Errorf("Timezone = %s, want UTC", settings.Timezone)
	}
	// Fields absent from the file keep their defaults
	if settings.ListenAddr != ":5000" {
		t.Errorf("ListenAddr = %s, want default :5000", settings.ListenAddr)
	}
}

func TestSettings_Load_MissingFileKeepsDefaults(t *testing.T) {
	settings := DefaultSettings()
	if err := settings.Load(filepath.Join(t.TempDir(), "nope.json")); err != nil {
		t.Fatalf("Load() on missing file should not error, got %v", err)
	}
	if settings.Timezone != "Asia/Tokyo" {
		t.Errorf("Timezone = %s, want default Asia/Tokyo", settings.Timezone)
	}
}

func TestSettings_ApplyEnv(t *testing.T) {
	t.Setenv("NIGHTSCOUT_URL", "https://env.example.com")
	t.Setenv("API_SECRET", "hunter2")
	t.Setenv("API_TOKEN", "tok123")
	t.Setenv("REPORT_TIMEZONE", "UTC")

	settings := DefaultSettings()
	settings.ApplyEnv()

	if settings.NightscoutURL != "https://env.example.com" {
		t.Errorf("NightscoutURL = %s, want env value", settings.NightscoutURL)
	}
	if settings.APISecret != "hunter2" {
		t.Errorf("APISecret = %s, want hunter2", settings.APISecret)
	}
	if settings.APIToken != "tok123" || !settings.UseToken {
		t.Errorf("APIToken = %s useToken = %v, want tok123/true", settings.APIToken, settings.UseToken)
	}
	if settings.Timezone != "UTC" {
		t.Errorf("Timezone = %s, want UTC", settings.Timezone)
	}
}
