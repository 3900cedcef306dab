package config_test

import (
	"testing"
	"time"

	"github.com/UnknownOlympus/quizmap/internal/config"
	"github.com/stretchr/testify/assert"
)

func Test_MustLoadFromEnv(t *testing.T) {
	t.Setenv("QUIZMAP_ENV", "local")
	t.Setenv("QUIZMAP_PORT", "9090")
	t.Setenv("QUIZMAP_STORAGE_TYPE", "Postgres")
	t.Setenv("QUIZMAP_MAP_LAT", "38.84")
	t.Setenv("QUIZMAP_MAP_LNG", "0.1")
	t.Setenv("QUIZMAP_GEOCODER_TYPE", "google")
	t.Setenv("QUIZMAP_GEOCODER_KEY", "testAPIKey")
	t.Setenv("QUIZMAP_GEOCODER_RATE", "25")
	t.Setenv("DB_HOST", "testHost")
	t.Setenv("DB_PORT", "12345")
	t.Setenv("DB_USERNAME", "admin")
	t.Setenv("DB_PASSWORD", "adminpass")
	t.Setenv("DB_NAME", "testName")
	t.Setenv("MINIO_USE_SSL", "true")

	cfg := config.MustLoad()

	assert.Equal(t, "local", cfg.Env)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "postgres", cfg.Storage.Type)
	assert.InDelta(t, 38.84, cfg.Map.Lat, 0)
	assert.InDelta(t, 0.1, cfg.Map.Lng, 0)
	assert.Equal(t, "google", cfg.Geocoder.Type)
	assert.Equal(t, "testAPIKey", cfg.Geocoder.APIKey)
	assert.Equal(t, 25, cfg.Geocoder.RateLimit)
	assert.Equal(t, "testHost", cfg.Database.Host)
	assert.Equal(t, "12345", cfg.Database.Port)
	assert.Equal(t, "admin", cfg.Database.User)
	assert.Equal(t, "adminpass", cfg.Database.Password)
	assert.Equal(t, "testName", cfg.Database.Name)
	assert.True(t, cfg.S3.UseSSL)
}

func TestMustLoad_Defaults(t *testing.T) {
	cfg := config.MustLoad()

	assert.Equal(t, "production", cfg.Env)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "file", cfg.Storage.Type)
	assert.Equal(t, "json", cfg.Storage.Dir)
	assert.InDelta(t, 38.7926, cfg.Map.Lat, 0)
	assert.InDelta(t, 0.1631, cfg.Map.Lng, 0)
	assert.Equal(t, 14, cfg.Map.Zoom)
	assert.Equal(t, "nominatim", cfg.Geocoder.Type)
	assert.Equal(t, "5432", cfg.Database.Port)
	assert.Equal(t, "quizmap", cfg.S3.Bucket)
	assert.False(t, cfg.S3.UseSSL)
}

func TestMustLoad_UseSSLValues(t *testing.T) {
	for _, value := range []string{"TRUE", "1", "t", "True"} {
		t.Run(value, func(t *testing.T) {
			t.Setenv("MINIO_USE_SSL", value)

			assert.True(t, config.MustLoad().S3.UseSSL)
		})
	}
}

func TestMustLoad_PortError(t *testing.T) {
	t.Setenv("QUIZMAP_PORT", "error_value")

	assert.PanicsWithValue(t, "failed to parse port for the HTTP server from configuration", func() {
		config.MustLoad()
	})
}

func TestMustLoad_ShutdownTimeoutError(t *testing.T) {
	t.Setenv("QUIZMAP_SHUTDOWN_TIMEOUT", "soon")

	assert.PanicsWithValue(t, "failed to parse shutdown timeout from configuration", func() {
		config.MustLoad()
	})
}

func TestMustLoad_MapError(t *testing.T) {
	t.Setenv("QUIZMAP_MAP_LAT", "north")

	assert.PanicsWithValue(t, "failed to parse map latitude from configuration", func() {
		config.MustLoad()
	})
}

func TestMustLoad_GeocoderRateError(t *testing.T) {
	t.Setenv("QUIZMAP_GEOCODER_RATE", "fast")

	assert.PanicsWithValue(t, "failed to parse geocoder rate limit, must be an integer", func() {
		config.MustLoad()
	})
}
