// Package config loads application configuration from an optional JSON file
// and the environment, environment winning.
package config

import (
	"fmt"
	"os"

	kjson "github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Defaults applied when neither file nor environment sets a value.
const (
	DefaultCredentialsFile = "data/client_secret.json"
	DefaultTokenFile       = "data/token.json"
	DefaultOutputDir       = "output"
	DefaultMaxResults      = 500
)

// Config holds the application configuration. Koanf tags double as the
// environment variable names.
type Config struct {
	// CredentialsFile is the Google OAuth client secret JSON.
	CredentialsFile string `koanf:"GOOGLE_CREDENTIALS_FILE"`
	// TokenFile is where the OAuth token is cached between runs.
	TokenFile string `koanf:"GOOGLE_TOKEN_FILE"`

	// OutputDir receives the generated CSV reports.
	OutputDir string `koanf:"OUTPUT_DIR"`
	// MaxResults caps how many notification emails one run fetches.
	MaxResults int `koanf:"MAX_RESULTS"`
	// Query overrides the Gmail search query. Leave empty for the
	// standard debit-card notification subject.
	Query string `koanf:"GMAIL_QUERY"`

	// Postgres archival is enabled by setting POSTGRES_HOST.
	PostgresHost     string `koanf:"POSTGRES_HOST"`
	PostgresPort     int    `koanf:"POSTGRES_PORT"`
	PostgresDatabase string `koanf:"POSTGRES_DB"`
	PostgresUser     string `koanf:"POSTGRES_USER"`
	PostgresPassword string `koanf:"POSTGRES_PASSWORD"`
	PostgresSSLMode  string `koanf:"POSTGRES_SSLMODE"`
}

// Load reads configPath (if it exists) and then the environment. A missing
// file is not an error; a malformed one is.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			if err := k.Load(file.Provider(configPath), kjson.Parser()); err != nil {
				return nil, fmt.Errorf("loading config file %s: %w", configPath, err)
			}
		}
	}

	if err := k.Load(env.Provider("", ".", nil), nil); err != nil {
		return nil, fmt.Errorf("loading config from environment: %w", err)
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf", FlatPaths: true}); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.CredentialsFile == "" {
		c.CredentialsFile = DefaultCredentialsFile
	}
	if c.TokenFile == "" {
		c.TokenFile = DefaultTokenFile
	}
	if c.OutputDir == "" {
		c.OutputDir = DefaultOutputDir
	}
	if c.MaxResults <= 0 {
		c.MaxResults = DefaultMaxResults
	}
}

// PostgresEnabled reports whether archival to PostgreSQL is configured.
func (c *Config) PostgresEnabled() bool {
	return c.PostgresHost != ""
}
