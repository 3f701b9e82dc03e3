package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DEBUG", "")
	t.Setenv("S3_PUBLIC_ENDPOINT", "")
	t.Setenv("CORS_ALLOWED_ORIGINS", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, DriverSQLite, cfg.DatabaseDriver)
	assert.Equal(t, "labelloop.db", cfg.DSN())
	assert.False(t, cfg.Debug)
	assert.True(t, cfg.AutoMigrate)
	assert.Equal(t, "us-east-1", cfg.MinioRegion)
	assert.Equal(t, []string{"http://localhost:5173", "http://localhost:3000"}, cfg.CORSAllowedOrigins)
}

func TestLoadConfigRejectsUnknownDriver(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", "oracle")

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestLoadConfigRejectsRelativePublicEndpoint(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", "")
	t.Setenv("S3_PUBLIC_ENDPOINT", "minio.local:9000")

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestDSNFromDiscreteFields(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("S3_PUBLIC_ENDPOINT", "")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_PORT", "")
	t.Setenv("DB_NAME", "labels")
	t.Setenv("DB_USER", "app")
	t.Setenv("DB_PASSWORD", "secret")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "host=db port=5432 user=app password=secret dbname=labels sslmode=disable TimeZone=UTC", cfg.DSN())

	cfg.DatabaseDriver = DriverMySQL
	cfg.DBPort = 3306
	assert.Equal(t, "app:secret@tcp(db:3306)/labels?charset=utf8mb4&parseTime=True&loc=UTC", cfg.DSN())

	cfg.DatabaseURL = "postgres://override"
	assert.Equal(t, "postgres://override", cfg.DSN())
}

func TestS3EndpointURL(t *testing.T) {
	cfg := Config{MinioEndpoint: "minio:9000"}
	assert.Equal(t, "http://minio:9000", cfg.S3EndpointURL())
	cfg.MinioSecure = true
	assert.Equal(t, "https://minio:9000", cfg.S3EndpointURL())
}
