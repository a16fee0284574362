package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type DB struct {
	DbHOST     string
	DbPORT     string
	DbUSER     string
	DbPASSWORD string
	DbNAME     string
	DbSSLMODE  string
}

type MinIO struct {
	Endpoint   string
	AccessKey  string
	SecretKey  string
	BucketName string
	UseSSL     bool
	Region     string
	// PublicURL is the base the stored objects are served from,
	// e.g. http://localhost:9000
	PublicURL string
}

// Federated describes the identity provider whose ID tokens are trusted
// by the federated sign-in flow.
type Federated struct {
	Issuer string
	Secret string
}

type Guest struct {
	Email    string
	Password string
}

type Upload struct {
	MaxPostImageSize int64
	MaxIconSize      int64
	// MaxRequestSize bounds the whole multipart body
	MaxRequestSize int64
}

type Config struct {
	ServerPort           int
	DB                   DB
	MinIO                MinIO
	Federated            Federated
	Guest                Guest
	Upload               Upload
	JWTSecretKey         string
	AccessTokenDuration  time.Duration
	RefreshTokenDuration time.Duration
	CORSOrigin           string
	SessionCookieSecure  bool
	LogLevel             string
	Development          bool
	MigrationsPath       string
	DisplayLocation      *time.Location
	// Warnings collects problems found while loading; they are logged once
	// the logger exists.
	Warnings []string
}

func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return fallback
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func parseDuration(value string, fallback time.Duration) time.Duration {
	duration, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return duration
}

func parseLocation(name string) (*time.Location, error) {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC, fmt.Errorf("unknown time zone %q, using UTC", name)
	}
	return loc, nil
}

func LoadDB() DB {
	return DB{
		DbHOST:     getEnv("DB_HOST", "localhost"),
		DbPORT:     getEnv("DB_PORT", "5432"),
		DbUSER:     getEnv("DB_USER", "postgres"),
		DbPASSWORD: getEnv("DB_PASSWORD", "password"),
		DbNAME:     getEnv("DB_NAME", "sharefolio"),
		DbSSLMODE:  getEnv("DB_SSLMODE", "disable"),
	}
}

func LoadMinIO() MinIO {
	endpoint := getEnv("MINIO_ENDPOINT", "localhost:9000")
	useSSL := getEnvBool("MINIO_USE_SSL", false)

	scheme := "http://"
	if useSSL {
		scheme = "https://"
	}

	return MinIO{
		Endpoint:   endpoint,
		AccessKey:  getEnv("MINIO_ACCESS_KEY", "minioadmin"),
		SecretKey:  getEnv("MINIO_SECRET_KEY", "minioadmin"),
		BucketName: getEnv("MINIO_BUCKET_NAME", "sharefolio"),
		UseSSL:     useSSL,
		Region:     getEnv("MINIO_REGION", "us-east-1"),
		PublicURL:  strings.TrimSuffix(getEnv("MINIO_PUBLIC_URL", scheme+endpoint), "/"),
	}
}

func LoadUpload() Upload {
	return Upload{
		MaxPostImageSize: getEnvAsInt64("MAX_POST_IMAGE_SIZE", 3*1024*1024),
		MaxIconSize:      getEnvAsInt64("MAX_ICON_SIZE", 5*1024*1024),
		MaxRequestSize:   getEnvAsInt64("MAX_UPLOAD_SIZE", 10*1024*1024),
	}
}

func LoadConfig() *Config {
	var warnings []string

	if err := godotenv.Load(); err != nil {
		warnings = append(warnings, ".env file not found, using environment variables")
	}

	loc, err := parseLocation(getEnv("DISPLAY_TIMEZONE", "UTC"))
	if err != nil {
		warnings = append(warnings, err.Error())
	}

	return &Config{
		ServerPort: getEnvAsInt("SERVER_PORT", 8080),
		DB:         LoadDB(),
		MinIO:      LoadMinIO(),
		Federated: Federated{
			Issuer: getEnv("FEDERATED_ISSUER", "https://accounts.google.com"),
			Secret: getEnv("FEDERATED_SECRET", ""),
		},
		Guest: Guest{
			Email:    getEnv("GUEST_EMAIL", "guest@test.com"),
			Password: getEnv("GUEST_PASSWORD", "guestuser"),
		},
		Upload:               LoadUpload(),
		JWTSecretKey:         getEnv("JWT_SECRET_KEY", ""),
		AccessTokenDuration:  parseDuration(getEnv("ACCESS_TOKEN_DURATION", "2h"), 2*time.Hour),
		RefreshTokenDuration: parseDuration(getEnv("REFRESH_TOKEN_DURATION", "168h"), 168*time.Hour),
		CORSOrigin:           getEnv("CORS_ORIGIN", "*"),
		SessionCookieSecure:  getEnvBool("SESSION_COOKIE_SECURE", false),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		Development:          getEnvBool("APP_DEV", false),
		MigrationsPath:       getEnv("MIGRATIONS_PATH", "migrations/001_create_tables.sql"),
		DisplayLocation:      loc,
		Warnings:             warnings,
	}
}
