package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	// Save original env vars and restore after tests
	originalEnv := map[string]string{
		"INVOICE_APP_NAME":                os.Getenv("INVOICE_APP_NAME"),
		"INVOICE_APP_ENV":                 os.Getenv("INVOICE_APP_ENV"),
		"INVOICE_APP_PORT":                os.Getenv("INVOICE_APP_PORT"),
		"INVOICE_DATABASE_HOST":           os.Getenv("INVOICE_DATABASE_HOST"),
		"INVOICE_DATABASE_PORT":           os.Getenv("INVOICE_DATABASE_PORT"),
		"INVOICE_DATABASE_USER":           os.Getenv("INVOICE_DATABASE_USER"),
		"INVOICE_DATABASE_PASSWORD":       os.Getenv("INVOICE_DATABASE_PASSWORD"),
		"INVOICE_DATABASE_DBNAME":         os.Getenv("INVOICE_DATABASE_DBNAME"),
		"INVOICE_DATABASE_SSLMODE":        os.Getenv("INVOICE_DATABASE_SSLMODE"),
		"INVOICE_DATABASE_MAX_OPEN_CONNS": os.Getenv("INVOICE_DATABASE_MAX_OPEN_CONNS"),
		"INVOICE_DATABASE_MAX_IDLE_CONNS": os.Getenv("INVOICE_DATABASE_MAX_IDLE_CONNS"),
		"INVOICE_JWT_SECRET":              os.Getenv("INVOICE_JWT_SECRET"),
		"INVOICE_INGEST_DATA_PATH":        os.Getenv("INVOICE_INGEST_DATA_PATH"),
	}

	defer func() {
		for k, v := range originalEnv {
			if v == "" {
				os.Unsetenv(k)
			} else {
				os.Setenv(k, v)
			}
		}
	}()

	clearEnv := func() {
		for k := range originalEnv {
			os.Unsetenv(k)
		}
	}

	t.Run("loads default values when env vars not set", func(t *testing.T) {
		clearEnv()

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "invoiceflow-backend", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "postgres", cfg.Database.User)
		assert.Equal(t, "", cfg.Database.Password)
		assert.Equal(t, "invoiceflow", cfg.Database.DBName)
		assert.Equal(t, "disable", cfg.Database.SSLMode)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, 5, cfg.Database.MaxIdleConns)
		assert.Equal(t, "data/analytics_data.json", cfg.Ingest.DataPath)
	})

	t.Run("loads values from environment variables with INVOICE prefix", func(t *testing.T) {
		clearEnv()
		os.Setenv("INVOICE_APP_NAME", "test-app")
		os.Setenv("INVOICE_APP_ENV", "testing")
		os.Setenv("INVOICE_APP_PORT", "9000")
		os.Setenv("INVOICE_DATABASE_HOST", "testdb.local")
		os.Setenv("INVOICE_DATABASE_PORT", "5433")
		os.Setenv("INVOICE_DATABASE_USER", "testuser")
		os.Setenv("INVOICE_DATABASE_PASSWORD", "testpass")
		os.Setenv("INVOICE_DATABASE_DBNAME", "testdb")
		os.Setenv("INVOICE_DATABASE_SSLMODE", "require")
		os.Setenv("INVOICE_DATABASE_MAX_OPEN_CONNS", "50")
		os.Setenv("INVOICE_DATABASE_MAX_IDLE_CONNS", "10")
		os.Setenv("INVOICE_INGEST_DATA_PATH", "/tmp/records.json")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "test-app", cfg.App.Name)
		assert.Equal(t, "testing", cfg.App.Env)
		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, "testdb.local", cfg.Database.Host)
		assert.Equal(t, 5433, cfg.Database.Port)
		assert.Equal(t, "testuser", cfg.Database.User)
		assert.Equal(t, "testpass", cfg.Database.Password)
		assert.Equal(t, "testdb", cfg.Database.DBName)
		assert.Equal(t, "require", cfg.Database.SSLMode)
		assert.Equal(t, 50, cfg.Database.MaxOpenConns)
		assert.Equal(t, 10, cfg.Database.MaxIdleConns)
		assert.Equal(t, "/tmp/records.json", cfg.Ingest.DataPath)
	})

	t.Run("validates MaxIdleConns cannot exceed MaxOpenConns", func(t *testing.T) {
		clearEnv()
		os.Setenv("INVOICE_DATABASE_MAX_OPEN_CONNS", "10")
		os.Setenv("INVOICE_DATABASE_MAX_IDLE_CONNS", "20")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "max_idle_conns")
		assert.Contains(t, err.Error(), "cannot exceed")
	})

	t.Run("zero MaxOpenConns uses default", func(t *testing.T) {
		clearEnv()
		os.Setenv("INVOICE_DATABASE_MAX_OPEN_CONNS", "0")

		cfg, err := Load()
		require.NoError(t, err)
		// 0 is treated as "not set", so default (25) is used
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
	})

	t.Run("validates MaxIdleConns cannot be negative", func(t *testing.T) {
		clearEnv()
		os.Setenv("INVOICE_DATABASE_MAX_IDLE_CONNS", "-1")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot be negative")
	})

	t.Run("production requires a strong jwt secret", func(t *testing.T) {
		clearEnv()
		os.Setenv("INVOICE_APP_ENV", "production")
		os.Setenv("INVOICE_DATABASE_PASSWORD", "secret")
		os.Setenv("INVOICE_DATABASE_SSLMODE", "require")
		os.Setenv("INVOICE_JWT_SECRET", "short")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "jwt.secret")
	})
}

func TestDatabaseConfigDSN(t *testing.T) {
	d := DatabaseConfig{
		Host:     "db.local",
		Port:     5432,
		User:     "app",
		Password: "p@ss/word",
		DBName:   "invoiceflow",
		SSLMode:  "require",
	}

	dsn := d.DSN()

	assert.Contains(t, dsn, "postgres://")
	assert.Contains(t, dsn, "db.local:5432")
	assert.Contains(t, dsn, "sslmode=require")
	// Special characters in the password must be escaped
	assert.NotContains(t, dsn, "p@ss/word")
}
