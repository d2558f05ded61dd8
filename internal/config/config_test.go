package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const sampleConfig = `
application_id: amzn1.ask.skill.test
device_id: device-1234
key_file: testdata/passthrough.key
timeout: 20s
babies:
  - name: Alice
    object_id: baby-obj-1
    dob: "2025-01-02"
    due_day: "2025-01-01"
    gender: "1"
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0600); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleConfig))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.DeviceID != "device-1234" {
		t.Fatalf("DeviceID = %q", cfg.DeviceID)
	}
	if cfg.BaseURL != DefaultBaseURL {
		t.Fatalf("BaseURL = %q, want default", cfg.BaseURL)
	}
	if cfg.RequestTimeout() != 20*time.Second {
		t.Fatalf("RequestTimeout = %v, want 20s", cfg.RequestTimeout())
	}
	if len(cfg.Babies) != 1 || cfg.Babies[0].Name != "Alice" {
		t.Fatalf("unexpected roster: %+v", cfg.Babies)
	}
	if cfg.HasStaticCredentials() {
		t.Fatal("HasStaticCredentials should be false without email/password")
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("BABYTRACK_DEVICE_ID", "device-env")
	t.Setenv("BABYTRACK_BASE_URL", "https://localhost:8443")

	cfg, err := Load(writeConfig(t, sampleConfig))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.DeviceID != "device-env" {
		t.Fatalf("DeviceID = %q, want env override", cfg.DeviceID)
	}
	if cfg.BaseURL != "https://localhost:8443" {
		t.Fatalf("BaseURL = %q, want env override", cfg.BaseURL)
	}
}

func TestLoad_MissingDeviceID(t *testing.T) {
	_, err := Load(writeConfig(t, "babies: []\n"))
	if err == nil || !strings.Contains(err.Error(), "DeviceID") {
		t.Fatalf("expected DeviceID validation error, got %v", err)
	}
}

func TestLoad_UnnamedBaby(t *testing.T) {
	_, err := Load(writeConfig(t, "device_id: d\nbabies:\n  - object_id: x\n"))
	if err == nil || !strings.Contains(err.Error(), "no name") {
		t.Fatalf("expected unnamed baby error, got %v", err)
	}
}

func TestLoad_BadTimeout(t *testing.T) {
	_, err := Load(writeConfig(t, "device_id: d\ntimeout: never\n"))
	if err == nil || !strings.Contains(err.Error(), "timeout") {
		t.Fatalf("expected timeout error, got %v", err)
	}
}

func TestRequestTimeout_Default(t *testing.T) {
	if (Config{}).RequestTimeout() != 15*time.Second {
		t.Fatal("default timeout should be 15s")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
