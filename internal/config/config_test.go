package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Addr != ":8080" {
		t.Errorf("Server.Addr = %q, want :8080", cfg.Server.Addr)
	}
	if cfg.Storage.Driver != StorageMemory {
		t.Errorf("Storage.Driver = %q, want %q", cfg.Storage.Driver, StorageMemory)
	}
	if cfg.Form.MinAmountCents != 100 {
		t.Errorf("Form.MinAmountCents = %d, want 100", cfg.Form.MinAmountCents)
	}
	if cfg.UI.SuccessBannerTimeout != 5*time.Second {
		t.Errorf("UI.SuccessBannerTimeout = %v, want 5s", cfg.UI.SuccessBannerTimeout)
	}
	if len(cfg.Providers) != len(KnownProviders) {
		t.Errorf("len(Providers) = %d, want %d", len(cfg.Providers), len(KnownProviders))
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  addr: ":9999"
  session_ttl: 10m
export:
  format: xlsx
  dir: /tmp/payments
form:
  matter_types: ["Litigation", "Other"]
  min_amount_cents: 500
providers:
  - id: paypal
    enabled: true
  - id: venmo
    enabled: false
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Addr != ":9999" {
		t.Errorf("Server.Addr = %q", cfg.Server.Addr)
	}
	if cfg.Server.SessionTTL != 10*time.Minute {
		t.Errorf("Server.SessionTTL = %v", cfg.Server.SessionTTL)
	}
	if cfg.Server.SessionCookie != "portal_session" {
		t.Errorf("Server.SessionCookie = %q, want default", cfg.Server.SessionCookie)
	}
	if cfg.Export.Format != FormatXLSX || cfg.Export.Dir != "/tmp/payments" {
		t.Errorf("Export = %+v", cfg.Export)
	}
	if got := strings.Join(cfg.Form.MatterTypes, ","); got != "Litigation,Other" {
		t.Errorf("Form.MatterTypes = %q", got)
	}
	if cfg.Form.MinAmountCents != 500 {
		t.Errorf("Form.MinAmountCents = %d", cfg.Form.MinAmountCents)
	}
	if len(cfg.Providers) != 2 || cfg.Providers[1].ID != "venmo" || cfg.Providers[1].Enabled {
		t.Errorf("Providers = %+v", cfg.Providers)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("PORTAL_SERVER_ADDR", ":7070")
	t.Setenv("PORTAL_LOG_LEVEL", "debug")
	t.Setenv("PORTAL_EXPORT_DATE_SUBDIRS", "true")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Addr != ":7070" {
		t.Errorf("Server.Addr = %q, want :7070", cfg.Server.Addr)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want debug", cfg.Log.Level)
	}
	if !cfg.Export.DateSubdirs {
		t.Error("Export.DateSubdirs = false, want true")
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"unknown provider", "providers:\n  - id: bitcoin\n    enabled: true\n", "unknown provider id"},
		{"duplicate provider", "providers:\n  - id: paypal\n  - id: paypal\n", "duplicate provider id"},
		{"redis without url", "storage:\n  driver: redis\n", "redis_url is required"},
		{"bad driver", "storage:\n  driver: sqlite\n", "storage.driver"},
		{"bad format", "export:\n  format: pdf\n", "export.format"},
		{"s3 without bucket", "export:\n  delivery: s3\n", "s3_bucket"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}
			_, err := Load(path)
			if err == nil {
				t.Fatal("Load() error = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Load() error = %q, want it to contain %q", err, tt.want)
			}
		})
	}
}

func TestWriteDefaultRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := WriteDefault(path); err != nil {
		t.Fatalf("WriteDefault() error = %v", err)
	}
	if err := WriteDefault(path); err == nil {
		t.Error("second WriteDefault() error = nil, want already exists")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"session_ttl: 30m0s", "retain_for: 720h0m0s", "success_banner_timeout: 5s"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("default config missing %q", want)
		}
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Providers[0].DisplayName != "PayPal" {
		t.Errorf("Providers[0].DisplayName = %q", cfg.Providers[0].DisplayName)
	}
}
