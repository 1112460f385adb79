// Package config loads the YAML configuration file and its environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variables consulted by the loader.
const (
	EnvConfigPath  = "ITM_CONFIG"
	EnvDatabaseDSN = "ITM_DATABASE_DSN"
	EnvJWTSecret   = "ITM_JWT_SECRET"
)

// DefaultConfigPath is used when neither a flag nor ITM_CONFIG names a file.
const DefaultConfigPath = "config.yaml"

// AppConfig carries command-line level options.
type AppConfig struct {
	ConfigPath string
}

// Config is the full service configuration.
type Config struct {
	Listen      string          `yaml:"listen"`
	FrontendURL string          `yaml:"frontend-url"`
	Database    DatabaseConfig  `yaml:"database"`
	JWT         JWTConfig       `yaml:"jwt"`
	SAML        SAMLConfig      `yaml:"saml"`
	Access      AccessConfig    `yaml:"access"`
	Logging     LoggingConfig   `yaml:"logging"`
	CORS        CORSConfig      `yaml:"cors"`
	RateLimit   RateLimitConfig `yaml:"rate-limit"`
}

// DatabaseConfig selects the relational store.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// JWTConfig configures token signing.
type JWTConfig struct {
	Secret       string        `yaml:"secret"`
	Expiry       time.Duration `yaml:"expiry"`
	TicketExpiry time.Duration `yaml:"ticket-expiry"`
}

// SAMLConfig configures the SAML service provider.
type SAMLConfig struct {
	EntityID       string               `yaml:"entity-id"`
	SSOURL         string               `yaml:"sso-url"`
	IDPCertificate string               `yaml:"idp-certificate"`
	SPCertificate  string               `yaml:"sp-certificate"`
	SPPrivateKey   string               `yaml:"sp-private-key"`
	BaseURL        string               `yaml:"base-url"`
	SignRequests   bool                 `yaml:"sign-requests"`
	NameIDFormat   string               `yaml:"name-id-format"`
	Attributes     SAMLAttributesConfig `yaml:"attributes"`
}

// SAMLAttributesConfig overrides the assertion attribute consulted for each field.
type SAMLAttributesConfig struct {
	LoginID        string `yaml:"login-id"`
	Email          string `yaml:"email"`
	DisplayName    string `yaml:"display-name"`
	Groups         string `yaml:"groups"`
	DepartmentCode string `yaml:"department-code"`
	DepartmentName string `yaml:"department-name"`
	CompanyCode    string `yaml:"company-code"`
	CompanyName    string `yaml:"company-name"`
}

// AccessConfig tunes the session resolver.
type AccessConfig struct {
	AdminGroups []string `yaml:"admin-groups"`
	FailClosed  bool     `yaml:"fail-closed"`
}

// LoggingConfig configures logrus output and file rotation.
type LoggingConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max-size-mb"`
	MaxBackups int    `yaml:"max-backups"`
	MaxAgeDays int    `yaml:"max-age-days"`
	Compress   bool   `yaml:"compress"`
}

// CORSConfig lists browser origins allowed to call the API.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed-origins"`
}

// RateLimitConfig bounds requests per client IP on the public auth endpoints.
type RateLimitConfig struct {
	PerSecond float64 `yaml:"per-second"`
	Burst     int     `yaml:"burst"`
}

// ResolveConfigPath returns path, or ITM_CONFIG, or the default.
func ResolveConfigPath(path string) string {
	if p := strings.TrimSpace(path); p != "" {
		return p
	}
	if p := strings.TrimSpace(os.Getenv(EnvConfigPath)); p != "" {
		return p
	}
	return DefaultConfigPath
}

// ConfigExists reports whether a regular file exists at path.
func ConfigExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Load reads the file at path, applies environment overrides and defaults, and validates.
// A missing file is allowed when the environment supplies the required values.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	raw, errRead := os.ReadFile(path)
	switch {
	case errRead == nil:
		if errUnmarshal := yaml.Unmarshal(raw, cfg); errUnmarshal != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, errUnmarshal)
		}
	case errors.Is(errRead, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("config: read %s: %w", path, errRead)
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	if errValidate := cfg.Validate(); errValidate != nil {
		return nil, errValidate
	}
	return cfg, nil
}

// LoadDatabaseDSN loads only what is needed to reach the database.
func LoadDatabaseDSN(path string) (string, error) {
	cfg := &Config{}
	raw, errRead := os.ReadFile(path)
	if errRead != nil && !errors.Is(errRead, os.ErrNotExist) {
		return "", fmt.Errorf("config: read %s: %w", path, errRead)
	}
	if errRead == nil {
		if errUnmarshal := yaml.Unmarshal(raw, cfg); errUnmarshal != nil {
			return "", fmt.Errorf("config: parse %s: %w", path, errUnmarshal)
		}
	}
	cfg.applyEnv()
	if strings.TrimSpace(cfg.Database.DSN) == "" {
		return "", fmt.Errorf("config: database.dsn is required")
	}
	return cfg.Database.DSN, nil
}

func (c *Config) applyEnv() {
	if v := strings.TrimSpace(os.Getenv(EnvDatabaseDSN)); v != "" {
		c.Database.DSN = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvJWTSecret)); v != "" {
		c.JWT.Secret = v
	}
}

func (c *Config) applyDefaults() {
	if strings.TrimSpace(c.Listen) == "" {
		c.Listen = ":3000"
	}
	if c.JWT.Expiry <= 0 {
		c.JWT.Expiry = 12 * time.Hour
	}
	if c.JWT.TicketExpiry <= 0 {
		c.JWT.TicketExpiry = 30 * time.Minute
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
	if c.Logging.MaxSizeMB <= 0 {
		c.Logging.MaxSizeMB = 100
	}
	if c.RateLimit.PerSecond <= 0 {
		c.RateLimit.PerSecond = 5
	}
	if c.RateLimit.Burst <= 0 {
		c.RateLimit.Burst = 20
	}
	c.SAML.BaseURL = strings.TrimRight(strings.TrimSpace(c.SAML.BaseURL), "/")
	c.FrontendURL = strings.TrimSpace(c.FrontendURL)
}

// Validate reports the first missing required value.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Database.DSN) == "" {
		return fmt.Errorf("config: database.dsn is required")
	}
	if strings.TrimSpace(c.JWT.Secret) == "" {
		return fmt.Errorf("config: jwt.secret is required")
	}
	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("config: logging.format must be text or json")
	}
	return nil
}

// SAMLEnabled reports whether enough SAML settings are present to build a service provider.
func (c *Config) SAMLEnabled() bool {
	return c.SAML.SSOURL != "" && c.SAML.IDPCertificate != "" && c.SAML.BaseURL != ""
}
