package config

import (
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the configuration settings for the marker editor service.
//
// Fields:
// - Env: The current environment (e.g., local, development, production).
// - Port: The port of the HTTP server.
// - Storage: Which document store to use and how to reach it.
// - Map: The initial map centre and zoom.
// - Geocoder: The town locator settings.
type Config struct {
	Env             string         // Env is the current environment: local, development, production.
	Port            int            // Port is the HTTP server port.
	ShutdownTimeout time.Duration  // Time allowed for in-flight requests on shutdown.
	Storage         StorageConfig  // Storage holds the document store configuration.
	Map             MapConfig      // Map holds the initial map view.
	Geocoder        GeocoderConfig // Geocoder holds the town locator configuration.
	Database        PostgresConfig // Database holds the postgres database configuration.
	S3              S3Config       // S3 holds the object storage configuration.
}

// StorageConfig selects the document store.
type StorageConfig struct {
	Type string // Type is one of file, postgres, s3.
	Dir  string // Dir is the document directory of the file store.
}

// MapConfig is the map view shown at start.
type MapConfig struct {
	Lat  float64
	Lng  float64
	Zoom int
}

// GeocoderConfig configures the town locator.
type GeocoderConfig struct {
	Type      string // Type is one of nominatim, google, none.
	APIKey    string // APIKey is required by the google locator.
	RateLimit int    // RateLimit is requests per second for the google locator.
}

// PostgresConfig struct holds the configuration details for connecting to a PostgreSQL database.
type PostgresConfig struct {
	Host     string // Host is the database server address.
	Port     string // Port is the database server port.
	User     string // User is the database user.
	Password string // Password is the database user's password.
	Name     string // Name is the name of the database.
}

// S3Config holds the S3-compatible storage settings.
type S3Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
	Prefix    string
}

// envBindings maps configuration keys to the environment variables they are read from.
var envBindings = map[string]string{
	"env":                 "QUIZMAP_ENV",
	"port":                "QUIZMAP_PORT",
	"shutdown_timeout":    "QUIZMAP_SHUTDOWN_TIMEOUT",
	"storage.type":        "QUIZMAP_STORAGE_TYPE",
	"storage.dir":         "QUIZMAP_STORAGE_DIR",
	"map.lat":             "QUIZMAP_MAP_LAT",
	"map.lng":             "QUIZMAP_MAP_LNG",
	"map.zoom":            "QUIZMAP_MAP_ZOOM",
	"geocoder.type":       "QUIZMAP_GEOCODER_TYPE",
	"geocoder.api_key":    "QUIZMAP_GEOCODER_KEY",
	"geocoder.rate_limit": "QUIZMAP_GEOCODER_RATE",
	"postgres.host":       "DB_HOST",
	"postgres.port":       "DB_PORT",
	"postgres.user":       "DB_USERNAME",
	"postgres.password":   "DB_PASSWORD",
	"postgres.db_name":    "DB_NAME",
	"s3.endpoint":         "MINIO_ENDPOINT",
	"s3.access_key":       "MINIO_ACCESS_KEY",
	"s3.secret_key":       "MINIO_SECRET_KEY",
	"s3.use_ssl":          "MINIO_USE_SSL",
	"s3.bucket":           "MINIO_BUCKET",
	"s3.prefix":           "MINIO_PREFIX",
}

// MustLoad reads the configuration from the environment (and a .env file, if present).
// It panics when a value cannot be parsed.
func MustLoad() *Config {
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("env", "production")
	v.SetDefault("port", "8080")
	v.SetDefault("shutdown_timeout", "10s")
	v.SetDefault("storage.type", "file")
	v.SetDefault("storage.dir", "json")
	v.SetDefault("map.lat", "38.7926")
	v.SetDefault("map.lng", "0.1631")
	v.SetDefault("map.zoom", "14")
	v.SetDefault("geocoder.type", "nominatim")
	v.SetDefault("geocoder.rate_limit", "0")
	v.SetDefault("postgres.port", "5432")
	v.SetDefault("s3.bucket", "quizmap")

	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	return &Config{
		Env:             v.GetString("env"),
		Port:            mustInt(v, "port", "failed to parse port for the HTTP server from configuration"),
		ShutdownTimeout: mustDuration(v, "shutdown_timeout", "failed to parse shutdown timeout from configuration"),
		Storage: StorageConfig{
			Type: strings.ToLower(v.GetString("storage.type")),
			Dir:  v.GetString("storage.dir"),
		},
		Map: MapConfig{
			Lat:  mustFloat(v, "map.lat", "failed to parse map latitude from configuration"),
			Lng:  mustFloat(v, "map.lng", "failed to parse map longitude from configuration"),
			Zoom: mustInt(v, "map.zoom", "failed to parse map zoom from configuration"),
		},
		Geocoder: GeocoderConfig{
			Type:      strings.ToLower(v.GetString("geocoder.type")),
			APIKey:    v.GetString("geocoder.api_key"),
			RateLimit: mustInt(v, "geocoder.rate_limit", "failed to parse geocoder rate limit, must be an integer"),
		},
		Database: PostgresConfig{
			Host:     v.GetString("postgres.host"),
			Port:     v.GetString("postgres.port"),
			User:     v.GetString("postgres.user"),
			Password: v.GetString("postgres.password"),
			Name:     v.GetString("postgres.db_name"),
		},
		S3: S3Config{
			Endpoint:  v.GetString("s3.endpoint"),
			AccessKey: v.GetString("s3.access_key"),
			SecretKey: v.GetString("s3.secret_key"),
			UseSSL:    v.GetBool("s3.use_ssl"),
			Bucket:    v.GetString("s3.bucket"),
			Prefix:    v.GetString("s3.prefix"),
		},
	}
}

func mustInt(v *viper.Viper, key, msg string) int {
	value, err := strconv.Atoi(v.GetString(key))
	if err != nil {
		panic(msg)
	}

	return value
}

func mustFloat(v *viper.Viper, key, msg string) float64 {
	value, err := strconv.ParseFloat(v.GetString(key), 64)
	if err != nil {
		panic(msg)
	}

	return value
}

func mustDuration(v *viper.Viper, key, msg string) time.Duration {
	value, err := time.ParseDuration(v.GetString(key))
	if err != nil {
		panic(msg)
	}

	return value
}
