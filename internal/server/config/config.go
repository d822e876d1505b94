// Package config handles configuration for the server component: defaults,
// a JSON overlay, environment variables (optionally from a .env file) and
// command-line flags, applied in that order.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

const (
	DriverAuto     = "auto"
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"

	DefaultDatabaseName = "tax_portal"
)

// Config holds runtime settings for the portal server.
//
// Storage is selected by DBDriver; "auto" resolves to mongo when MongoURL is
// set, postgres when PostgresDSN is set and the in-memory store otherwise.
// The S3 fields are optional; image upload reports itself unavailable when
// S3Bucket is empty.
type Config struct {
	HTTPAddr        string        `envconfig:"HTTP_ADDR"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT"`

	DBDriver     string `envconfig:"DB_DRIVER"`
	MongoURL     string `envconfig:"MONGO_URL"`
	DatabaseName string `envconfig:"DATABASE_NAME"`
	PostgresDSN  string `envconfig:"POSTGRES_DSN"`

	LogLevel   string `envconfig:"LOG_LEVEL"`
	LogBackend string `envconfig:"LOG_BACKEND"`

	PublicBaseURL string `envconfig:"PUBLIC_BASE_URL"`

	AdminEmail             string `envconfig:"ADMIN_EMAIL"`
	AdminPassword          string `envconfig:"ADMIN_PASSWORD"`
	AdminName              string `envconfig:"ADMIN_NAME"`
	UpgradeLegacyPasswords bool   `envconfig:"UPGRADE_LEGACY_PASSWORDS"`

	MaxUploadSize     int64  `envconfig:"MAX_UPLOAD_SIZE"`
	S3AccessKeyID     string `envconfig:"AWS_ACCESS_KEY_ID"`
	S3SecretAccessKey string `envconfig:"AWS_SECRET_ACCESS_KEY"`
	S3Bucket          string `envconfig:"AWS_S3_BUCKET_NAME"`
	S3Region          string `envconfig:"AWS_S3_REGION"`
	S3BaseEndpoint    string `envconfig:"AWS_S3_ENDPOINT"`
	S3PublicURL       string `envconfig:"AWS_S3_CUSTOM_DOMAIN"`
	S3Folder          string `envconfig:"AWS_S3_FOLDER"`
}

// LoadDefaults populates Config with development defaults.
func (c *Config) LoadDefaults() {
	c.HTTPAddr = ":8000"
	c.ShutdownTimeout = 10 * time.Second
	c.DBDriver = DriverAuto
	c.LogLevel = "info"
	c.LogBackend = "zerolog"
	c.PublicBaseURL = "https://taxemployee.com"
	c.AdminName = "Administrator"
	c.UpgradeLegacyPasswords = true
	c.MaxUploadSize = 5 << 20
	c.S3Region = "us-east-1"
	c.S3Folder = "articles"
}

// ResolveDefaults derives DBDriver when it is "auto" or empty and the
// database name from the Mongo URL path when none was given.
func (c *Config) ResolveDefaults() error {
	if c.DBDriver == "" || c.DBDriver == DriverAuto {
		switch {
		case c.MongoURL != "":
			c.DBDriver = DriverMongo
		case c.PostgresDSN != "":
			c.DBDriver = DriverPostgres
		default:
			c.DBDriver = DriverMemory
		}
	}

	switch c.DBDriver {
	case DriverMongo:
		if c.MongoURL == "" {
			return fmt.Errorf("DB_DRIVER=%s requires MONGO_URL", c.DBDriver)
		}
	case DriverPostgres:
		if c.PostgresDSN == "" {
			return fmt.Errorf("DB_DRIVER=%s requires POSTGRES_DSN", c.DBDriver)
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unsupported DB_DRIVER: %s", c.DBDriver)
	}

	if c.DatabaseName == "" {
		c.DatabaseName = databaseFromMongoURL(c.MongoURL)
	}
	if c.DatabaseName == "" {
		c.DatabaseName = DefaultDatabaseName
	}

	c.PublicBaseURL = strings.TrimRight(c.PublicBaseURL, "/")
	return nil
}

// S3Enabled reports whether object storage settings are present.
func (c *Config) S3Enabled() bool {
	return c.S3Bucket != ""
}

// AdminConfigured reports whether a bootstrap administrator was supplied.
func (c *Config) AdminConfigured() bool {
	return c.AdminEmail != "" && c.AdminPassword != ""
}

// databaseFromMongoURL returns the first path segment of a mongodb:// or
// mongodb+srv:// URL, or "" when there is none.
func databaseFromMongoURL(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	name, _, _ := strings.Cut(strings.TrimPrefix(u.Path, "/"), "/")
	return name
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file, the environment and finally command-line
// flags. A malformed JSON file or flag set panics, as does a malformed
// environment value.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	if err := cfg.ResolveDefaults(); err != nil {
		return nil, err
	}
	return cfg, nil
}
