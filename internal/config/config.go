package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	Port        string

	OTLPEndpoint string

	// BasicAuthPassword or BasicAuthPasswordHash enables basic auth on /api.
	BasicAuthUser         string
	BasicAuthPassword     string
	BasicAuthPasswordHash string

	ClientOrigin      string
	DefaultArrhesRate float64

	DataDir   string
	PDFSubdir string

	RenderingConfigPath string

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int
	DBConnMaxIdleTime int
	DBAutoMigrate     bool

	Redis RedisConfig

	PreviewCacheTTL time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Enabled reports whether a Redis address was configured.
func (c RedisConfig) Enabled() bool {
	return strings.TrimSpace(c.Addr) != ""
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		AppName:               getenv("APP_SERVICE", "rentaldocs"),
		AppVersion:            getenv("APP_VERSION", "0.1.0"),
		Environment:           getenv("ENVIRONMENT", "development"),
		Port:                  getenv("PORT", "4000"),
		OTLPEndpoint:          strings.TrimSpace(getenv("OTLP_ENDPOINT", "")),
		BasicAuthUser:         getenv("BASIC_AUTH_USER", "admin"),
		BasicAuthPassword:     getenv("BASIC_AUTH_PASSWORD", ""),
		BasicAuthPasswordHash: strings.TrimSpace(getenv("BASIC_AUTH_PASSWORD_HASH", "")),
		ClientOrigin:          getenv("CLIENT_ORIGIN", "http://localhost:5173"),
		DefaultArrhesRate:     getenvRate("DEFAULT_ARRHES_RATE", 0.2),
		DataDir:               getenv("DATA_DIR", "data"),
		PDFSubdir:             getenv("PDF_SUBDIR", "pdfs"),
		RenderingConfigPath:   strings.TrimSpace(getenv("RENDERING_CONFIG_PATH", "")),
		DBType:                getenv("DATABASE_TYPE", "postgres"),
		DBHost:                getenv("DATABASE_HOST", "localhost"),
		DBPort:                getenv("DATABASE_PORT", "5432"),
		DBName:                getenv("DATABASE_NAME", "rentaldocs"),
		DBUser:                getenv("DATABASE_USER", "postgres"),
		DBPassword:            getenv("DATABASE_PASSWORD", ""),
		DBSSLMode:             getenv("DATABASE_SSLMODE", "disable"),
		DBMaxIdleConn:         getenvInt("DATABASE_MAX_IDLE_CONN", 5),
		DBMaxOpenConn:         getenvInt("DATABASE_MAX_OPEN_CONN", 20),
		DBConnMaxLifetime:     getenvInt("DATABASE_CONN_MAX_LIFETIME", 300),
		DBConnMaxIdleTime:     getenvInt("DATABASE_CONN_MAX_IDLE_TIME", 60),
		DBAutoMigrate:         getenvBool("DATABASE_AUTO_MIGRATE", true),
		Redis: RedisConfig{
			Addr:     strings.TrimSpace(getenv("REDIS_ADDR", "")),
			Password: getenv("REDIS_PASSWORD", ""),
			DB:       getenvInt("REDIS_DB", 0),
		},
		PreviewCacheTTL: getenvDuration("PREVIEW_CACHE_TTL", 10*time.Minute),
	}

	return cfg
}

// PDFDir is the root directory for generated artifacts.
func (c Config) PDFDir() string {
	return filepath.Join(c.DataDir, c.PDFSubdir)
}

// BasicAuthEnabled reports whether /api requires credentials.
func (c Config) BasicAuthEnabled() bool {
	return c.BasicAuthPassword != "" || c.BasicAuthPasswordHash != ""
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if value == "" {
		return def
	}
	switch value {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

func getenvInt(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}

func getenvFloat(key string, def float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return def
	}
	return parsed
}

// getenvRate keeps values in [0, 1].
func getenvRate(key string, def float64) float64 {
	rate := getenvFloat(key, def)
	if rate != rate || rate < 0 || rate > 1 {
		return def
	}
	return rate
}

func getenvDuration(key string, def time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	if parsed, err := time.ParseDuration(value); err == nil {
		return parsed
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}
	return def
}
