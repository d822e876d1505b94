package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withDotEnv(t *testing.T, path string) {
	t.Helper()
	prev := DotEnvFile
	DotEnvFile = path
	t.Cleanup(func() { DotEnvFile = prev })
}

func TestParseEnv_OverlaysSetVariablesOnly(t *testing.T) {
	withDotEnv(t, filepath.Join(t.TempDir(), "missing.env"))

	t.Setenv("MONGO_URL", "mongodb://env:27017/envdb")
	t.Setenv("ADMIN_EMAIL", "root@example.com")
	t.Setenv("ADMIN_PASSWORD", "s3cret")
	t.Setenv("SHUTDOWN_TIMEOUT", "2s")
	t.Setenv("AWS_S3_BUCKET_NAME", "media")

	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)

	assert.Equal(t, "mongodb://env:27017/envdb", cfg.MongoURL)
	assert.Equal(t, "root@example.com", cfg.AdminEmail)
	assert.Equal(t, 2*time.Second, cfg.ShutdownTimeout)
	assert.True(t, cfg.AdminConfigured())
	assert.True(t, cfg.S3Enabled())
	assert.Equal(t, "us-east-1", cfg.S3Region)
}

func TestParseEnv_ReadsDotEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("PUBLIC_BASE_URL=https://dotenv.example\n"), 0o600))
	withDotEnv(t, path)

	// registered so the value loaded by godotenv is removed afterwards
	t.Setenv("PUBLIC_BASE_URL", "")
	require.NoError(t, os.Unsetenv("PUBLIC_BASE_URL"))

	cfg := &Config{}
	parseEnv(cfg)

	assert.Equal(t, "https://dotenv.example", cfg.PublicBaseURL)
}

func TestParseEnv_BadValuePanics(t *testing.T) {
	withDotEnv(t, filepath.Join(t.TempDir(), "missing.env"))
	t.Setenv("MAX_UPLOAD_SIZE", "five megabytes")

	cfg := &Config{}
	require.Panics(t, func() { parseEnv(cfg) })
}
