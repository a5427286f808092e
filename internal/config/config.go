// Package config loads application configuration from an optional TOML file,
// a .env file and environment variables.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// DefaultReferenceOrg is used when no reference organization is configured.
const DefaultReferenceOrg = "MicrosoftEdge"

// Config holds the application configuration.
type Config struct {
	// Token authenticates GitHub requests. Empty means anonymous access.
	Token string `toml:"token"`
	// Accounts are the allow-listed GitHub logins. Nil means not configured.
	Accounts []string `toml:"accounts"`
	// ReferenceOrg's members are merged into Accounts.
	ReferenceOrg string `toml:"reference_org"`
	// Concurrency bounds in-flight API requests. Zero means unbounded.
	Concurrency int `toml:"concurrency"`
}

// Load reads configuration from path, then applies environment overrides. An
// empty path skips the file; a non-empty path must exist. A .env file in the working directory is loaded first
// when it exists; variables already set in the environment win over it.
//   - GITHUB_TOKEN           overrides token
//   - CONTRIBS_ACCOUNTS      overrides accounts (comma separated)
//   - CONTRIBS_REFERENCE_ORG overrides reference_org
func Load(path string) (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{ReferenceOrg: DefaultReferenceOrg}
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("decoding config file %s: %w", path, err)
		}
	}
	applyEnvOverrides(cfg)
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("GITHUB_TOKEN"); v != "" {
		cfg.Token = v
	}
	if v, ok := os.LookupEnv("CONTRIBS_ACCOUNTS"); ok {
		cfg.Accounts = SplitList(v)
	}
	if v, ok := os.LookupEnv("CONTRIBS_REFERENCE_ORG"); ok {
		cfg.ReferenceOrg = strings.TrimSpace(v)
	}
}

// SplitList splits a comma separated list, dropping blanks. It never returns nil.
func SplitList(s string) []string {
	out := []string{}
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Accounts == nil {
		return &Error{Field: "accounts", Message: "allow-listed accounts are required"}
	}
	if len(c.Accounts) == 0 && c.ReferenceOrg == "" {
		return &Error{Field: "accounts", Message: "at least one account or a reference organization is required"}
	}
	if c.Concurrency < 0 {
		return &Error{Field: "concurrency", Message: "must not be negative"}
	}
	return nil
}

// Error represents a configuration error.
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string {
	return e.Field + ": " + e.Message
}
