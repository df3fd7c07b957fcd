package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Primary.Env)
	assert.Equal(t, "5000", cfg.Server.Port)
	assert.Equal(t, defaultCORSOrigins, cfg.Server.CORSAllowedOrigins)
	assert.Contains(t, cfg.Database.URL, "localhost:5432")
	assert.Equal(t, 5*time.Second, cfg.Database.RetryDelay())
	assert.True(t, cfg.Database.MigrateOnStart)
	assert.Equal(t, "spotq", cfg.Observability.ServiceName)
	assert.Equal(t, "development", cfg.Observability.Environment)
	assert.False(t, cfg.Observability.NewRelicEnabled())
	assert.Nil(t, cfg.Storage)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SPOTQ_PRIMARY__ENV", "production")
	t.Setenv("SPOTQ_SERVER__PORT", "8080")
	t.Setenv("SPOTQ_SERVER__CORS_ALLOWED_ORIGINS", "https://qa.example.com, https://app.example.com")
	t.Setenv("SPOTQ_DATABASE__URL", "postgres://qms@db:5432/qms")
	t.Setenv("SPOTQ_DATABASE__MAX_CONNS", "25")
	t.Setenv("SPOTQ_DATABASE__MIGRATE_ON_START", "false")
	t.Setenv("SPOTQ_OBSERVABILITY__LOGGING__LEVEL", "debug")
	t.Setenv("SPOTQ_STORAGE__BACKUP__BUCKET", "qms-backups")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, []string{"https://qa.example.com", "https://app.example.com"}, cfg.Server.CORSAllowedOrigins)
	assert.Equal(t, "postgres://qms@db:5432/qms", cfg.Database.URL)
	assert.Equal(t, int32(25), cfg.Database.MaxConns)
	assert.False(t, cfg.Database.MigrateOnStart)
	assert.Equal(t, "debug", cfg.Observability.Logging.Level)
	assert.Equal(t, "console", cfg.Observability.Logging.Format, "unset nested keys keep their default")
	assert.True(t, cfg.Observability.IsProduction())
	require.NotNil(t, cfg.Storage)
	require.NotNil(t, cfg.Storage.Backup)
	assert.Equal(t, "qms-backups", cfg.Storage.Backup.Bucket)
}

func TestLoadConfig_Invalid(t *testing.T) {
	t.Chdir(t.TempDir())

	t.Run("unknown env", func(t *testing.T) {
		t.Setenv("SPOTQ_PRIMARY__ENV", "qa")
		_, err := LoadConfig()
		assert.ErrorContains(t, err, "validate config")
	})

	t.Run("short jwt secret", func(t *testing.T) {
		t.Setenv("SPOTQ_AUTH__JWT_SECRET", "short")
		_, err := LoadConfig()
		assert.ErrorContains(t, err, "JWTSecret")
	})

	t.Run("bad log format", func(t *testing.T) {
		t.Setenv("SPOTQ_OBSERVABILITY__LOGGING__FORMAT", "xml")
		_, err := LoadConfig()
		assert.ErrorContains(t, err, "invalid logging format")
	})
}
