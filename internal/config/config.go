package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Config holds all application configuration
type Config struct {
	// Server
	Port        string
	Environment string
	LogLevel    string

	// Database
	DatabaseURL string

	// JWT issued by the user picker
	JWTSecret          string
	JWTExpirationHours int

	// Storage for archived receipts
	StoragePath string

	// Background Workers
	WorkerCount int

	// CORS
	AllowedOrigins []string

	// Sentry
	SentryDSN string

	// Commission defaults applied at vendor onboarding
	DefaultSellerCommission decimal.Decimal

	// Company data printed on receipts and statements
	Company CompanyInfo
}

// CompanyInfo is the header block used by exported documents
type CompanyInfo struct {
	Name    string `json:"razon_social"`
	RUT     string `json:"rut"`
	Address string `json:"direccion"`
	Phone   string `json:"telefono"`
	Email   string `json:"email"`
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Port:                    getEnv("PORT", "5000"),
		Environment:             getEnv("ENVIRONMENT", "development"),
		LogLevel:                getEnv("LOG_LEVEL", "info"),
		DatabaseURL:             getEnv("DATABASE_URL", ""),
		JWTSecret:               getEnv("JWT_SECRET", ""),
		JWTExpirationHours:      getEnvAsInt("JWT_EXPIRATION_HOURS", 12),
		StoragePath:             getEnv("STORAGE_PATH", "./storage"),
		WorkerCount:             getEnvAsInt("WORKER_COUNT", 2),
		AllowedOrigins:          getEnvAsSlice("ALLOWED_ORIGINS", []string{"*"}),
		SentryDSN:               getEnv("SENTRY_DSN", ""),
		DefaultSellerCommission: getEnvAsDecimal("DEFAULT_SELLER_COMMISSION_PCT", decimal.NewFromInt(10)),
		Company: CompanyInfo{
			Name:    getEnv("COMPANY_NAME", "Feraben SRL"),
			RUT:     getEnv("COMPANY_RUT", ""),
			Address: getEnv("COMPANY_ADDRESS", "Montevideo, Uruguay"),
			Phone:   getEnv("COMPANY_PHONE", ""),
			Email:   getEnv("COMPANY_EMAIL", ""),
		},
	}

	// Validate required configuration
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.JWTSecret == "" && cfg.Environment == "production" {
		return nil, fmt.Errorf("JWT_SECRET is required in production")
	}

	if cfg.DefaultSellerCommission.IsNegative() || cfg.DefaultSellerCommission.GreaterThan(decimal.NewFromInt(100)) {
		return nil, fmt.Errorf("DEFAULT_SELLER_COMMISSION_PCT must be between 0 and 100")
	}

	// Set default JWT secret for development
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "dev-secret-change-in-production"
	}

	return cfg, nil
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt reads an environment variable as integer
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDecimal(key string, defaultValue decimal.Decimal) decimal.Decimal {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := decimal.NewFromString(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsSlice reads an environment variable as comma-separated slice
func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	parts := strings.Split(valueStr, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
