package config

import (
	"errors"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// DotEnvFile is loaded into the process environment, if present, before
// environment variables are read. Variables already set are not replaced.
var DotEnvFile = ".env"

// parseEnv overlays values from environment variables. Only variables that
// are set change the config. It panics on a malformed .env file or value.
func parseEnv(config *Config) {
	if err := godotenv.Load(DotEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic(err)
	}

	if err := envconfig.Process("", config); err != nil {
		panic(err)
	}
}
