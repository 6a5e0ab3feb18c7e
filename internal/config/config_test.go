package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfigFromYAML(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
  read_timeout: 5s
database:
  url: postgres://localhost/taskboard
auth:
  jwt_secret: s3cret
analytics:
  timezone: UTC
log:
  format: json
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Port != 9090 || cfg.Server.ReadTimeout != 5*time.Second {
		t.Fatalf("server = %+v", cfg.Server)
	}
	if cfg.Auth.TokenTTL != 24*time.Hour || cfg.Uploads.MaxAvatarBytes != 5<<20 {
		t.Fatal("defaults not applied")
	}
	if cfg.Email.Enabled() {
		t.Fatal("email should be disabled without host")
	}
}

func TestEnvOverrides(t *testing.T) {
	path := writeConfig(t, "database:\n  url: from-file\n")
	t.Setenv("DATABASE_URL", "from-env")
	t.Setenv("JWT_SECRET", "env-secret")
	t.Setenv("TASKBOARD_PORT", "7000")
	t.Setenv("UPLOADS_DIR", "/tmp/up")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Database.DSN != "from-env" || cfg.Auth.JWTSecret != "env-secret" ||
		cfg.Server.Port != 7000 || cfg.Uploads.Dir != "/tmp/up" {
		t.Fatalf("env not applied: %+v", cfg)
	}
}

func TestMissingFileUsesEnv(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://x")
	t.Setenv("JWT_SECRET", "k")
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml")); err != nil {
		t.Fatal(err)
	}
}

func TestValidateRejects(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "")
	path := writeConfig(t, "log:\n  format: xml\nanalytics:\n  timezone: Mars/Base\n")
	_, err := LoadConfig(path)
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"database.url", "jwt_secret", "log.format", "analytics.timezone"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %s", err, want)
		}
	}
}

func TestBadPortEnv(t *testing.T) {
	t.Setenv("TASKBOARD_PORT", "eighty")
	if _, err := LoadConfig(writeConfig(t, "")); err == nil {
		t.Fatal("expected error for non-numeric port")
	}
}
