// internal/appconfig/appconfig_test.go
package appconfig

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

// TestDefaultsAndAccessors verifies the built-in defaults and that each
// accessor falls back to its default when the field is unset.
func TestDefaultsAndAccessors(t *testing.T) {
	cfg := Default()
	if cfg.BackendBaseURL() != "http://localhost:8000" {
		t.Fatalf("expected default backend URL, got %q", cfg.BackendBaseURL())
	}
	if cfg.RequestTimeout() != 600*time.Second {
		t.Fatalf("expected default request timeout of 600s, got %v", cfg.RequestTimeout())
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}

	var empty Config
	if empty.Listen() != "127.0.0.1:5173" {
		t.Fatalf("expected default listen address, got %q", empty.Listen())
	}
	if empty.LogFilePath() != "evalboard.log" {
		t.Fatalf("expected default log file, got %q", empty.LogFilePath())
	}
	if empty.UploadLimit() != 10<<20 {
		t.Fatalf("expected default upload limit, got %d", empty.UploadLimit())
	}
	if empty.RequestTimeout() != 600*time.Second {
		t.Fatalf("expected fallback timeout, got %v", empty.RequestTimeout())
	}

	custom := Config{BackendURL: "http://backend:9000/", TimeoutSeconds: 5}
	if custom.BackendBaseURL() != "http://backend:9000" {
		t.Fatalf("expected trailing slash trimmed, got %q", custom.BackendBaseURL())
	}
	if custom.RequestTimeout() != 5*time.Second {
		t.Fatalf("expected 5s timeout, got %v", custom.RequestTimeout())
	}
}

func TestValidateRejectsBadBackend(t *testing.T) {
	for _, raw := range []string{"ftp://host", "http://", "://nope"} {
		cfg := Config{BackendURL: raw}
		if err := cfg.Validate(); err == nil {
			t.Fatalf("expected error for backend URL %q", raw)
		}
	}
	if err := (Config{TimeoutSeconds: -1}).Validate(); err == nil {
		t.Fatal("expected error for negative timeout")
	}
}

func TestShowConfig(t *testing.T) {
	var buf bytes.Buffer
	ShowConfig(&buf, "", Default(), false)
	out := buf.String()
	if !strings.Contains(out, "No config file loaded") {
		t.Fatalf("expected defaults notice, got: %s", out)
	}
	if !strings.Contains(out, "http://localhost:8000") {
		t.Fatalf("expected backend URL in output, got: %s", out)
	}

	buf.Reset()
	ShowConfig(&buf, "config/config.json", Default(), true)
	out = buf.String()
	if !strings.Contains(out, "Config file: config/config.json") {
		t.Fatalf("expected config file line, got: %s", out)
	}
	if !strings.Contains(out, "BackendURL") {
		t.Fatalf("expected verbose dump to include field names, got: %s", out)
	}
}
