package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configEnvKeys = []string{
	"ERP_APP_NAME",
	"ERP_APP_ENV",
	"ERP_APP_PORT",
	"ERP_DATABASE_DRIVER",
	"ERP_DATABASE_PATH",
	"ERP_DATABASE_HOST",
	"ERP_DATABASE_PORT",
	"ERP_DATABASE_PASSWORD",
	"ERP_DATABASE_SSLMODE",
	"ERP_DATABASE_MAX_OPEN_CONNS",
	"ERP_DATABASE_MAX_IDLE_CONNS",
	"ERP_PROCUREMENT_GROUP_BY_DATE",
	"ERP_PROCUREMENT_LOCK_TTL",
	"ERP_IDEMPOTENCY_ENABLED",
	"ERP_IDEMPOTENCY_BACKEND",
	"ERP_TELEMETRY_SAMPLING_RATIO",
}

// clearEnv blanks every key; viper ignores empty env values
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range configEnvKeys {
		t.Setenv(k, "")
	}
}

func TestLoad(t *testing.T) {
	t.Run("loads default values when env vars not set", func(t *testing.T) {
		clearEnv(t)

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "erp-purchase", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, DriverPostgres, cfg.Database.Driver)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "erp_purchase", cfg.Database.DBName)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, 5, cfg.Database.MaxIdleConns)
		assert.True(t, cfg.Procurement.GroupByDate)
		assert.Equal(t, 30*time.Second, cfg.Procurement.LockTTL)
		assert.False(t, cfg.Idempotency.Enabled)
		assert.Equal(t, IdempotencyBackendMemory, cfg.Idempotency.Backend)
		assert.Equal(t, 24*time.Hour, cfg.Idempotency.TTL)
		assert.Equal(t, "erp-purchase", cfg.Telemetry.ServiceName)
	})

	t.Run("loads values from environment variables with ERP prefix", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("ERP_APP_NAME", "purchase-test")
		t.Setenv("ERP_APP_PORT", "9000")
		t.Setenv("ERP_DATABASE_HOST", "testdb.local")
		t.Setenv("ERP_DATABASE_PORT", "5433")
		t.Setenv("ERP_PROCUREMENT_GROUP_BY_DATE", "false")
		t.Setenv("ERP_PROCUREMENT_LOCK_TTL", "5s")
		t.Setenv("ERP_IDEMPOTENCY_ENABLED", "true")
		t.Setenv("ERP_IDEMPOTENCY_BACKEND", "redis")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "purchase-test", cfg.App.Name)
		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, "testdb.local", cfg.Database.Host)
		assert.Equal(t, 5433, cfg.Database.Port)
		assert.False(t, cfg.Procurement.GroupByDate)
		assert.Equal(t, 5*time.Second, cfg.Procurement.LockTTL)
		assert.True(t, cfg.Idempotency.Enabled)
		assert.Equal(t, IdempotencyBackendRedis, cfg.Idempotency.Backend)
	})

	t.Run("sqlite driver defaults its path", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("ERP_DATABASE_DRIVER", "sqlite")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "purchase.db", cfg.Database.Path)
		assert.Equal(t, "purchase.db", cfg.Database.DSN())
	})

	t.Run("rejects unknown driver", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("ERP_DATABASE_DRIVER", "mysql")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.driver")
	})

	t.Run("rejects unknown idempotency backend", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("ERP_IDEMPOTENCY_BACKEND", "memcached")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "idempotency.backend")
	})

	t.Run("validates MaxIdleConns cannot exceed MaxOpenConns", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("ERP_DATABASE_MAX_OPEN_CONNS", "10")
		t.Setenv("ERP_DATABASE_MAX_IDLE_CONNS", "20")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot exceed")
	})

	t.Run("validates MaxIdleConns cannot be negative", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("ERP_DATABASE_MAX_IDLE_CONNS", "-1")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot be negative")
	})

	t.Run("validates sampling ratio range", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("ERP_TELEMETRY_SAMPLING_RATIO", "1.5")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sampling_ratio")
	})
}

func TestLoad_Production(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "sqlite is rejected",
			env:     map[string]string{"ERP_DATABASE_DRIVER": "sqlite"},
			wantErr: "sqlite in production",
		},
		{
			name:    "password required",
			env:     map[string]string{"ERP_DATABASE_SSLMODE": "require"},
			wantErr: "database.password",
		},
		{
			name:    "ssl required",
			env:     map[string]string{"ERP_DATABASE_PASSWORD": "secret"},
			wantErr: "sslmode",
		},
		{
			name: "valid production config",
			env: map[string]string{
				"ERP_DATABASE_PASSWORD": "secret",
				"ERP_DATABASE_SSLMODE":  "require",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("ERP_APP_ENV", "production")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[app]
port = "7070"

[database]
driver = "sqlite"
path = ":memory:"

[procurement]
group_by_date = false
lock_ttl = "10s"

[idempotency]
enabled = true
ttl = "1h"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "7070", cfg.App.Port)
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, ":memory:", cfg.Database.DSN())
	assert.False(t, cfg.Procurement.GroupByDate)
	assert.Equal(t, 10*time.Second, cfg.Procurement.LockTTL)
	assert.True(t, cfg.Idempotency.Enabled)
	assert.Equal(t, time.Hour, cfg.Idempotency.TTL)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := DatabaseConfig{
		Driver:   DriverPostgres,
		Host:     "db",
		Port:     5432,
		User:     "erp",
		Password: "p@ss word",
		DBName:   "purchase",
		SSLMode:  "disable",
	}
	assert.Equal(t, "postgres://erp:p%40ss%20word@db:5432/purchase?sslmode=disable", d.DSN())
}
