package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/taxportal/internal/flagx"
	"github.com/dmitrijs2005/taxportal/internal/timex"
)

// JsonConfig is the on-disk shape of the optional config file. Pointer
// fields distinguish "absent" from "zero", so a file only overrides the
// keys it names.
type JsonConfig struct {
	HTTPAddr        *string         `json:"http_addr"`
	ShutdownTimeout *timex.Duration `json:"shutdown_timeout"`

	DBDriver     *string `json:"db_driver"`
	MongoURL     *string `json:"mongo_url"`
	DatabaseName *string `json:"database_name"`
	PostgresDSN  *string `json:"postgres_dsn"`

	LogLevel   *string `json:"log_level"`
	LogBackend *string `json:"log_backend"`

	PublicBaseURL *string `json:"public_base_url"`

	AdminEmail             *string `json:"admin_email"`
	AdminName              *string `json:"admin_name"`
	UpgradeLegacyPasswords *bool   `json:"upgrade_legacy_passwords"`

	MaxUploadSize  *int64  `json:"max_upload_size"`
	S3Bucket       *string `json:"s3_bucket"`
	S3Region       *string `json:"s3_region"`
	S3BaseEndpoint *string `json:"s3_base_endpoint"`
	S3PublicURL    *string `json:"s3_public_url"`
	S3Folder       *string `json:"s3_folder"`
}

// parseJson overlays values from the file named by -c/-config (or the CONFIG
// environment variable). Passwords and S3 keys come from the environment only.
// It panics if the file cannot be read or parsed.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	c.apply(config)
}

func (c *JsonConfig) apply(config *Config) {
	setString(&config.HTTPAddr, c.HTTPAddr)
	if c.ShutdownTimeout != nil {
		config.ShutdownTimeout = c.ShutdownTimeout.Duration
	}
	setString(&config.DBDriver, c.DBDriver)
	setString(&config.MongoURL, c.MongoURL)
	setString(&config.DatabaseName, c.DatabaseName)
	setString(&config.PostgresDSN, c.PostgresDSN)
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.LogBackend, c.LogBackend)
	setString(&config.PublicBaseURL, c.PublicBaseURL)
	setString(&config.AdminEmail, c.AdminEmail)
	setString(&config.AdminName, c.AdminName)
	if c.UpgradeLegacyPasswords != nil {
		config.UpgradeLegacyPasswords = *c.UpgradeLegacyPasswords
	}
	if c.MaxUploadSize != nil {
		config.MaxUploadSize = *c.MaxUploadSize
	}
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.S3PublicURL, c.S3PublicURL)
	setString(&config.S3Folder, c.S3Folder)
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
