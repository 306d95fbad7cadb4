package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalConfig = `
service_name = "ecommerce"

[database]
dsn = "root:root@tcp(localhost:3306)/ecommerce"

[jwt]
secret = "file-secret"
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig))
	require.NoError(t, err)

	assert.Equal(t, "ecommerce", cfg.ServiceName)
	assert.Equal(t, "dev", cfg.Environment)
	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, 30, cfg.JWT.ExpireMinutes)
	assert.Equal(t, 100, cfg.RateLimit.Burst)
	assert.Equal(t, 300, cfg.Redis.ProductCacheTTL)
	assert.False(t, cfg.Kafka.Enabled)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	t.Setenv("APP_JWT_SECRET", "env-secret")
	t.Setenv("APP_HTTP_PORT", "9000")

	cfg, err := Load(writeConfig(t, minimalConfig))
	require.NoError(t, err)

	assert.Equal(t, "env-secret", cfg.JWT.Secret)
	assert.Equal(t, 9000, cfg.HTTP.Port)
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			"missing dsn",
			"service_name = \"ecommerce\"\n[jwt]\nsecret = \"s\"\n",
			"database DSN is required",
		},
		{
			"missing jwt secret",
			"service_name = \"ecommerce\"\n[database]\ndsn = \"x\"\n",
			"jwt secret is required",
		},
		{
			"missing service name",
			"[database]\ndsn = \"x\"\n[jwt]\nsecret = \"s\"\n",
			"service_name is required",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
