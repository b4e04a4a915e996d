package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	Typesense   TypesenseConfig
	Geolocation GeolocationConfig
	Storage     StorageConfig
	Auth        AuthConfig
	Discovery   DiscoveryConfig
	Booking     BookingConfig
	Cache       CacheConfig
	OTEL        OTELConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host           string
	Port           int
	Env            string
	AllowedOrigins []string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// TypesenseConfig holds Typesense configuration
type TypesenseConfig struct {
	Enabled bool
	URL     string
	APIKey  string
}

// GeolocationConfig holds geolocation provider configuration
type GeolocationConfig struct {
	Provider string
	APIKey   string
}

// StorageConfig selects where uploaded prescriptions are kept.
type StorageConfig struct {
	Provider       string
	CloudName      string
	APIKey         string
	APISecret      string
	Folder         string
	MaxUploadBytes int64
	PublicBaseURL  string
}

// AuthConfig holds bearer token settings
type AuthConfig struct {
	JWTSecret string
	Issuer    string
	TokenTTL  time.Duration
}

// DiscoveryConfig tunes lab and test discovery
type DiscoveryConfig struct {
	RequireVerified bool
	DefaultRadiusKm float64
}

// BookingConfig tunes the booking lifecycle
type BookingConfig struct {
	StrictTransitions bool
}

// CacheConfig holds cache sizes and lifetimes
type CacheConfig struct {
	LabTTL            time.Duration
	LocationTTL       time.Duration
	LocationCacheSize int
}

// OTELConfig holds OpenTelemetry configuration
type OTELConfig struct {
	ServiceName    string
	ServiceVersion string
	Endpoint       string
	Enabled        bool
}

var defaults = map[string]any{
	"SERVER_HOST":          "0.0.0.0",
	"SERVER_PORT":          8080,
	"APP_ENV":              "development",
	"ALLOWED_ORIGINS":      "",
	"SERVER_READ_TIMEOUT":  "15s",
	"SERVER_WRITE_TIMEOUT": "15s",

	"DB_HOST":     "localhost",
	"DB_PORT":     5432,
	"DB_USER":     "postgres",
	"DB_PASSWORD": "",
	"DB_NAME":     "medical_lab_booking",
	"DB_SSLMODE":  "disable",

	"REDIS_ENABLED":  true,
	"REDIS_HOST":     "localhost",
	"REDIS_PORT":     6379,
	"REDIS_PASSWORD": "",
	"REDIS_DB":       0,

	"TYPESENSE_ENABLED": false,
	"TYPESENSE_URL":     "http://localhost:8108",
	"TYPESENSE_API_KEY": "xyz",

	"GEOLOCATION_PROVIDER": "mock",
	"GEOLOCATION_API_KEY":  "",

	"STORAGE_PROVIDER":         "memory",
	"CLOUDINARY_CLOUD_NAME":    "",
	"CLOUDINARY_API_KEY":       "",
	"CLOUDINARY_API_SECRET":    "",
	"STORAGE_FOLDER":           "prescriptions",
	"STORAGE_MAX_UPLOAD_BYTES": 5 * 1024 * 1024,
	"STORAGE_PUBLIC_BASE_URL":  "http://localhost:8080",

	"JWT_SECRET":    "",
	"JWT_ISSUER":    "medical-lab-booking",
	"JWT_TOKEN_TTL": "24h",

	"DISCOVERY_REQUIRE_VERIFIED":  false,
	"DISCOVERY_DEFAULT_RADIUS_KM": 30.0,

	"BOOKING_STRICT_TRANSITIONS": false,

	"CACHE_LAB_TTL":             "5m",
	"CACHE_LOCATION_TTL":        "30m",
	"CACHE_LOCATION_CACHE_SIZE": 10000,

	"OTEL_SERVICE_NAME":    "medical-lab-booking",
	"OTEL_SERVICE_VERSION": "1.0.0",
	"OTEL_ENDPOINT":        "",
	"OTEL_ENABLED":         false,
}

// Load loads configuration from environment variables. A .env file in the
// working directory (or the file named by ENV_FILE) is applied first when
// present; variables already set in the environment win.
func Load() (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, err
	}

	v := viper.New()
	v.AutomaticEnv()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:           v.GetString("SERVER_HOST"),
			Port:           v.GetInt("SERVER_PORT"),
			Env:            v.GetString("APP_ENV"),
			AllowedOrigins: splitList(v.GetString("ALLOWED_ORIGINS")),
			ReadTimeout:    v.GetDuration("SERVER_READ_TIMEOUT"),
			WriteTimeout:   v.GetDuration("SERVER_WRITE_TIMEOUT"),
		},
		Database: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetInt("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			Database: v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
		},
		Redis: RedisConfig{
			Enabled:  v.GetBool("REDIS_ENABLED"),
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetInt("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		Typesense: TypesenseConfig{
			Enabled: v.GetBool("TYPESENSE_ENABLED"),
			URL:     v.GetString("TYPESENSE_URL"),
			APIKey:  v.GetString("TYPESENSE_API_KEY"),
		},
		Geolocation: GeolocationConfig{
			Provider: v.GetString("GEOLOCATION_PROVIDER"),
			APIKey:   v.GetString("GEOLOCATION_API_KEY"),
		},
		Storage: StorageConfig{
			Provider:       v.GetString("STORAGE_PROVIDER"),
			CloudName:      v.GetString("CLOUDINARY_CLOUD_NAME"),
			APIKey:         v.GetString("CLOUDINARY_API_KEY"),
			APISecret:      v.GetString("CLOUDINARY_API_SECRET"),
			Folder:         v.GetString("STORAGE_FOLDER"),
			MaxUploadBytes: v.GetInt64("STORAGE_MAX_UPLOAD_BYTES"),
			PublicBaseURL:  strings.TrimRight(v.GetString("STORAGE_PUBLIC_BASE_URL"), "/"),
		},
		Auth: AuthConfig{
			JWTSecret: v.GetString("JWT_SECRET"),
			Issuer:    v.GetString("JWT_ISSUER"),
			TokenTTL:  v.GetDuration("JWT_TOKEN_TTL"),
		},
		Discovery: DiscoveryConfig{
			RequireVerified: v.GetBool("DISCOVERY_REQUIRE_VERIFIED"),
			DefaultRadiusKm: v.GetFloat64("DISCOVERY_DEFAULT_RADIUS_KM"),
		},
		Booking: BookingConfig{
			StrictTransitions: v.GetBool("BOOKING_STRICT_TRANSITIONS"),
		},
		Cache: CacheConfig{
			LabTTL:            v.GetDuration("CACHE_LAB_TTL"),
			LocationTTL:       v.GetDuration("CACHE_LOCATION_TTL"),
			LocationCacheSize: v.GetInt("CACHE_LOCATION_CACHE_SIZE"),
		},
		OTEL: OTELConfig{
			ServiceName:    v.GetString("OTEL_SERVICE_NAME"),
			ServiceVersion: v.GetString("OTEL_SERVICE_VERSION"),
			Endpoint:       v.GetString("OTEL_ENDPOINT"),
			Enabled:        v.GetBool("OTEL_ENABLED"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks settings that have no safe default.
func (c *Config) Validate() error {
	if c.Discovery.DefaultRadiusKm <= 0 {
		return fmt.Errorf("DISCOVERY_DEFAULT_RADIUS_KM must be positive, got %v", c.Discovery.DefaultRadiusKm)
	}
	if c.Storage.MaxUploadBytes <= 0 {
		return fmt.Errorf("STORAGE_MAX_UPLOAD_BYTES must be positive, got %d", c.Storage.MaxUploadBytes)
	}
	switch c.Storage.Provider {
	case "memory":
	case "cloudinary":
		if c.Storage.CloudName == "" || c.Storage.APIKey == "" || c.Storage.APISecret == "" {
			return errors.New("cloudinary storage requires CLOUDINARY_CLOUD_NAME, CLOUDINARY_API_KEY and CLOUDINARY_API_SECRET")
		}
	default:
		return fmt.Errorf("unknown STORAGE_PROVIDER %q", c.Storage.Provider)
	}
	if c.Server.Env == "production" && c.Auth.JWTSecret == "" {
		return errors.New("JWT_SECRET is required in production")
	}
	return nil
}

// DatabaseDSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// RedisAddr returns the Redis address
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func loadEnvFile() error {
	file := ".env"
	if custom := os.Getenv("ENV_FILE"); custom != "" {
		file = custom
	}
	if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", file, err)
	}
	return nil
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
