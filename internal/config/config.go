package config

import (
	"os"
	"strconv"
	"time"
)

// Supported DB_DRIVER values.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Supported STORAGE_DRIVER values.
const (
	StorageMinIO = "minio"
	StorageFS    = "fs"
)

// DatabaseConfig holds metadata database connection settings.
type DatabaseConfig struct {
	Driver             string
	SQLitePath         string
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// MinIOConfig is read only when STORAGE_DRIVER is minio.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// StorageConfig selects where archived exports are kept.
type StorageConfig struct {
	Driver string
	// Dir is the root directory for the fs driver.
	Dir   string
	MinIO MinIOConfig
}

// RetentionConfig controls the scheduled purge of archived exports.
type RetentionConfig struct {
	// Schedule is a standard 5-field cron expression; empty disables purging.
	Schedule string
	MaxAge   time.Duration
}

// AppConfig is everything cmd/api needs to start.
type AppConfig struct {
	AppHost   string
	Port      string
	Timezone  string
	BodyLimit int
	Database  DatabaseConfig
	Storage   StorageConfig
	Retention RetentionConfig
}

// Load reads the environment. Unset or unparsable values fall back to defaults.
// cmd/api imports godotenv/autoload, so a local .env file is merged in first.
func Load() *AppConfig {
	return &AppConfig{
		AppHost:   getEnv("APP_HOST", "localhost:8080"),
		Port:      getEnv("PORT", "8080"),
		Timezone:  getEnv("APP_TIMEZONE", "UTC"),
		BodyLimit: getEnvInt("BODY_LIMIT_BYTES", 8*1024*1024),
		Database: DatabaseConfig{
			Driver:             getEnv("DB_DRIVER", DriverPostgres),
			SQLitePath:         getEnv("SQLITE_PATH", "csvexport.db"),
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
		},
		Storage: StorageConfig{
			Driver: getEnv("STORAGE_DRIVER", StorageMinIO),
			Dir:    getEnv("STORAGE_DIR", "exports"),
			MinIO: MinIOConfig{
				Endpoint:  getEnv("MINIO_ENDPOINT", ""),
				AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
				SecretKey: getEnv("MINIO_SECRET_KEY", ""),
				Bucket:    getEnv("MINIO_BUCKET", ""),
				UseSSL:    getEnvBool("MINIO_USE_SSL", false),
			},
		},
		Retention: RetentionConfig{
			Schedule: getEnv("RETENTION_SCHEDULE", ""),
			MaxAge:   getEnvDuration("RETENTION_MAX_AGE", 30*24*time.Hour),
		},
	}
}

// Location resolves Timezone, falling back to UTC when it is unknown.
func (c *AppConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err == nil && d > 0 {
			return d
		}
	}
	return def
}
