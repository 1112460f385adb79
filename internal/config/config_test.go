package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if errWrite := os.WriteFile(path, []byte(body), 0o600); errWrite != nil {
		t.Fatalf("write config: %v", errWrite)
	}
	return path
}

func TestLoadParsesFileAndDefaults(t *testing.T) {
	path := writeConfig(t, `
database:
  dsn: "file:itm.db"
jwt:
  secret: "s3cret"
  ticket-expiry: 10m
saml:
  base-url: "https://itm.example.com/"
  attributes:
    login-id: "employeeId"
access:
  admin-groups: ["itm-admins"]
  fail-closed: true
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Listen != ":3000" {
		t.Fatalf("Listen = %q", cfg.Listen)
	}
	if cfg.JWT.Expiry != 12*time.Hour || cfg.JWT.TicketExpiry != 10*time.Minute {
		t.Fatalf("unexpected jwt durations %+v", cfg.JWT)
	}
	if cfg.SAML.BaseURL != "https://itm.example.com" {
		t.Fatalf("BaseURL = %q", cfg.SAML.BaseURL)
	}
	if cfg.SAML.Attributes.LoginID != "employeeId" {
		t.Fatalf("attribute override lost: %+v", cfg.SAML.Attributes)
	}
	if !cfg.Access.FailClosed || len(cfg.Access.AdminGroups) != 1 {
		t.Fatalf("unexpected access config %+v", cfg.Access)
	}
	if cfg.SAMLEnabled() {
		t.Fatalf("SAML must be disabled without sso-url and certificate")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv(EnvDatabaseDSN, "postgres://itm@db/itm")
	t.Setenv(EnvJWTSecret, "from-env")
	path := writeConfig(t, "database:\n  dsn: file:ignored.db\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Database.DSN != "postgres://itm@db/itm" || cfg.JWT.Secret != "from-env" {
		t.Fatalf("env overrides not applied: %+v", cfg)
	}
}

func TestLoadMissingFileUsesEnv(t *testing.T) {
	t.Setenv(EnvDatabaseDSN, "file:itm.db")
	t.Setenv(EnvJWTSecret, "x")
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err != nil {
		t.Fatalf("load: %v", err)
	}
}

func TestLoadRequiresSecret(t *testing.T) {
	t.Setenv(EnvJWTSecret, "")
	path := writeConfig(t, "database:\n  dsn: file:itm.db\n")
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error without jwt secret")
	}
}

func TestLoadRejectsUnknownLogFormat(t *testing.T) {
	path := writeConfig(t, "database:\n  dsn: file:itm.db\njwt:\n  secret: x\nlogging:\n  format: xml\n")
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for logging.format xml")
	}
}

func TestResolveConfigPath(t *testing.T) {
	t.Setenv(EnvConfigPath, "")
	if got := ResolveConfigPath(""); got != DefaultConfigPath {
		t.Fatalf("ResolveConfigPath() = %q", got)
	}
	t.Setenv(EnvConfigPath, "/etc/itm/config.yaml")
	if got := ResolveConfigPath(""); got != "/etc/itm/config.yaml" {
		t.Fatalf("ResolveConfigPath() = %q", got)
	}
	if got := ResolveConfigPath("local.yaml"); got != "local.yaml" {
		t.Fatalf("ResolveConfigPath(flag) = %q", got)
	}
}

func TestLoadDatabaseDSN(t *testing.T) {
	t.Setenv(EnvDatabaseDSN, "")
	path := writeConfig(t, "database:\n  dsn: file:only.db\n")
	dsn, err := LoadDatabaseDSN(path)
	if err != nil || dsn != "file:only.db" {
		t.Fatalf("dsn=%q err=%v", dsn, err)
	}
}
