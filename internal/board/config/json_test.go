package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, dir, name string, data map[string]any) string {
	t.Helper()
	if dir == "" {
		dir = t.TempDir()
	}
	if name == "" {
		name = "cfg.json"
	}
	path := filepath.Join(dir, name)
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson_SourcesAndPrecedence(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	dir := t.TempDir()
	pathFlag := writeTempJSON(t, dir, "flag.json", map[string]any{
		"store_backend":    "memory",
		"database_dsn":     "postgres://example/board",
		"auth_secret":      "my_secret_key",
		"submit_timeout":   "45s",
		"s3_access_key":    "user",
		"s3_secret_key":    "password",
		"s3_bucket":        "bucket",
		"s3_region":        "region",
		"s3_base_endpoint": "base_endpoint",
	})

	t.Run("loads from json", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", pathFlag}

		cfg := &Config{}
		parseJson(cfg)

		assert.Equal(t, "memory", cfg.StoreBackend)
		assert.Equal(t, "postgres://example/board", cfg.DatabaseDSN)
		assert.Equal(t, "my_secret_key", cfg.AuthSecret)
		assert.Equal(t, 45*time.Second, cfg.SubmitTimeout)
		assert.Equal(t, "user", cfg.S3AccessKey)
		assert.Equal(t, "password", cfg.S3SecretKey)
		assert.Equal(t, "bucket", cfg.S3Bucket)
		assert.Equal(t, "region", cfg.S3Region)
		assert.Equal(t, "base_endpoint", cfg.S3BaseEndpoint)
	})

	t.Run("no config flag means no changes", func(t *testing.T) {
		os.Args = []string{"testbin"}

		cfg := &Config{
			StoreBackend:   "postgres",
			DatabaseDSN:    "keep_dsn",
			AuthSecret:     "keep_key",
			SubmitTimeout:  time.Minute,
			S3AccessKey:    "keep_user",
			S3SecretKey:    "keep_password",
			S3Bucket:       "keep_bucket",
			S3Region:       "keep_region",
			S3BaseEndpoint: "keep_endpoint",
		}
		parseJson(cfg)

		assert.Equal(t, "postgres", cfg.StoreBackend)
		assert.Equal(t, "keep_dsn", cfg.DatabaseDSN)
		assert.Equal(t, "keep_key", cfg.AuthSecret)
		assert.Equal(t, time.Minute, cfg.SubmitTimeout)
		assert.Equal(t, "keep_user", cfg.S3AccessKey)
		assert.Equal(t, "keep_password", cfg.S3SecretKey)
		assert.Equal(t, "keep_bucket", cfg.S3Bucket)
		assert.Equal(t, "keep_region", cfg.S3Region)
		assert.Equal(t, "keep_endpoint", cfg.S3BaseEndpoint)
	})

	t.Run("invalid JSON panics", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))

		os.Args = []string{"testbin", "-config", bad}

		cfg := &Config{}
		require.Panics(t, func() { parseJson(cfg) })
	})
}
