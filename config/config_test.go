package config

import (
	"bytes"
	"testing"

	"documerge-backend/models"
	"documerge-backend/storage"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "DB_TYPE", "STORAGE_TYPE", "FETCH_CONCURRENCY", "LOG_LEVEL", "MINIO_USE_SSL", "STORAGE_FALLBACK_LOCAL"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, DBTypePostgres, cfg.DBType)
	assert.Equal(t, storage.StorageTypeLocal, cfg.Storage.Type)
	assert.Equal(t, "./storage/files", cfg.Storage.LocalPath)
	assert.Equal(t, 4, cfg.FetchConcurrency)
	assert.False(t, cfg.Storage.FallbackLocal)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DB_TYPE", "SQLite")
	t.Setenv("SQLITE_PATH", "/tmp/x.db")
	t.Setenv("STORAGE_TYPE", "minio")
	t.Setenv("MINIO_ENDPOINT", "localhost:9000")
	t.Setenv("MINIO_BUCKET", "documents")
	t.Setenv("MINIO_USE_SSL", "true")
	t.Setenv("STORAGE_FALLBACK_LOCAL", "1")
	t.Setenv("FETCH_CONCURRENCY", "8")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, DBTypeSQLite, cfg.DBType)
	assert.Equal(t, "/tmp/x.db", cfg.SQLitePath)
	assert.Equal(t, storage.StorageTypeMinio, cfg.Storage.Type)
	assert.Equal(t, "localhost:9000", cfg.Storage.MinioEndpoint)
	assert.Equal(t, "documents", cfg.Storage.MinioBucket)
	assert.True(t, cfg.Storage.MinioUseSSL)
	assert.True(t, cfg.Storage.FallbackLocal)
	assert.Equal(t, 8, cfg.FetchConcurrency)
}

func TestLoadRejectsUnknownValues(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"DB_TYPE", "oracle"},
		{"STORAGE_TYPE", "gcs"},
		{"FETCH_CONCURRENCY", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := Config{LogLevel: "warn", LogFormat: "json"}.NewLogger(&buf)

	logger.Info().Msg("hidden")
	logger.Warn().Str("k", "v").Msg("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"k":"v"`)
	assert.Equal(t, zerolog.WarnLevel, logger.GetLevel())

	fallback := Config{LogLevel: "nonsense"}.NewLogger(&buf)
	assert.Equal(t, zerolog.InfoLevel, fallback.GetLevel())
}

func TestParseRole(t *testing.T) {
	tests := []struct {
		in      string
		want    models.Role
		wantErr bool
	}{
		{"", models.RoleDrafter, false},
		{"drafter", models.RoleDrafter, false},
		{" Administrator ", models.RoleAdministrator, false},
		{"DEVELOPER", models.RoleDeveloper, false},
		{"intern", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRole(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
