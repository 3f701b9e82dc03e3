package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/camden-git/labelloopbackend/logging"
)

const (
	DriverSQLite   = "sqlite"
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

const (
	defaultPort         = "8000"
	defaultDatabasePath = "labelloop.db"
	defaultMySQLPort    = 3306
	defaultPostgresPort = 5432
	defaultRegion       = "us-east-1" // MinIO ignores the region but the signer needs one
)

type Config struct {
	AppName    string
	AppVersion string
	Port       string

	// echo internal error details in health responses
	Debug bool

	// database
	DatabaseDriver string
	DatabaseURL    string // full DSN; takes precedence over the discrete fields below
	DatabasePath   string // sqlite only
	DBHost         string
	DBPort         int
	DBName         string
	DBUser         string
	DBPassword     string
	AutoMigrate    bool

	// object storage (S3 compatible)
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioSecure    bool
	MinioRegion    string
	// optional public host used to rewrite presigned URLs for browsers behind NAT/proxy
	S3PublicEndpoint string

	CORSAllowedOrigins []string
}

func getEnvOrDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvIntOrDefault(envVar string, defaultVal int) int {
	valStr := os.Getenv(envVar)
	if valStr == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(valStr)
	if err != nil || val <= 0 {
		logging.L().Warnf("Invalid %s '%s'. Using default %d. Error: %v", envVar, valStr, defaultVal, err)
		return defaultVal
	}
	return val
}

func getEnvBool(key string, defaultVal bool) bool {
	valStr := os.Getenv(key)
	if valStr == "" {
		return defaultVal
	}
	return strings.EqualFold(strings.TrimSpace(valStr), "true")
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func LoadConfig() (Config, error) {
	driver := strings.ToLower(getEnvOrDefault("DATABASE_DRIVER", DriverSQLite))
	switch driver {
	case DriverSQLite, DriverMySQL, DriverPostgres:
	default:
		return Config{}, fmt.Errorf("unsupported DATABASE_DRIVER '%s' (expected sqlite, mysql or postgres)", driver)
	}

	defaultDBPort := defaultPostgresPort
	if driver == DriverMySQL {
		defaultDBPort = defaultMySQLPort
	}

	publicEndpoint := strings.TrimSpace(os.Getenv("S3_PUBLIC_ENDPOINT"))
	if publicEndpoint != "" {
		u, err := url.Parse(publicEndpoint)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return Config{}, fmt.Errorf("S3_PUBLIC_ENDPOINT must be an absolute URL like https://cdn.example.com, got '%s'", publicEndpoint)
		}
	}

	cfg := Config{
		AppName:            "LabelLoop API",
		AppVersion:         "1.0.0",
		Port:               getEnvOrDefault("PORT", defaultPort),
		Debug:              getEnvBool("DEBUG", false),
		DatabaseDriver:     driver,
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		DatabasePath:       getEnvOrDefault("DATABASE_PATH", defaultDatabasePath),
		DBHost:             getEnvOrDefault("DB_HOST", "localhost"),
		DBPort:             getEnvIntOrDefault("DB_PORT", defaultDBPort),
		DBName:             getEnvOrDefault("DB_NAME", "labelloop"),
		DBUser:             os.Getenv("DB_USER"),
		DBPassword:         os.Getenv("DB_PASSWORD"),
		AutoMigrate:        getEnvBool("AUTO_MIGRATE", true),
		MinioEndpoint:      os.Getenv("MINIO_ENDPOINT"),
		MinioAccessKey:     os.Getenv("MINIO_ACCESS_KEY"),
		MinioSecretKey:     os.Getenv("MINIO_SECRET_KEY"),
		MinioBucket:        os.Getenv("MINIO_BUCKET"),
		MinioSecure:        getEnvBool("MINIO_SECURE", false),
		MinioRegion:        getEnvOrDefault("MINIO_REGION", defaultRegion),
		S3PublicEndpoint:   publicEndpoint,
		CORSAllowedOrigins: splitList(getEnvOrDefault("CORS_ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000")),
	}

	return cfg, nil
}

// DSN returns the connection string for the configured driver
func (c Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	switch c.DatabaseDriver {
	case DriverMySQL:
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
	case DriverPostgres:
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable TimeZone=UTC",
			c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName)
	default:
		return c.DatabasePath
	}
}

// S3EndpointURL is the scheme-qualified endpoint, mostly useful for logs
func (c Config) S3EndpointURL() string {
	scheme := "http"
	if c.MinioSecure {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s", scheme, c.MinioEndpoint)
}
