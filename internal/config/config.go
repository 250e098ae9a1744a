package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the application.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	NewRelic NewRelicConfig
	Fare     FareConfig
	Booking  BookingConfig
	Geo      GeoConfig
	Sweep    SweepConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DatabaseConfig holds PostgreSQL configuration.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfig holds Redis configuration.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRelicConfig holds New Relic configuration.
type NewRelicConfig struct {
	AppName    string
	LicenseKey string
	Enabled    bool
}

// FareConfig holds the fare rate parameters.
type FareConfig struct {
	Base      float64
	RatePerKm float64
	Currency  string
}

// BookingConfig selects the booking workflow variant.
type BookingConfig struct {
	// ApprovalRequired gates bookings behind driver approval: bookings
	// start PENDING and move to APPROVED/REJECTED before payment. When
	// false, bookings are CONFIRMED at creation.
	ApprovalRequired bool
	// SettleOnPayment settles the driver's wallet as soon as a payment is
	// confirmed instead of waiting for ride completion. Settlement is
	// idempotent either way.
	SettleOnPayment bool
}

// GeoConfig holds routing/geocoding service configuration.
type GeoConfig struct {
	APIKey        string
	DirectionsURL string
	GeocodeURL    string
	Timeout       time.Duration
}

// SweepConfig holds the departed-ride sweep configuration.
type SweepConfig struct {
	Interval time.Duration
	Enabled  bool
}

// Load loads configuration from environment variables.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 10*time.Second),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "carpool"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
		},
		NewRelic: NewRelicConfig{
			AppName:    getEnv("NEW_RELIC_APP_NAME", "carpool-backend"),
			LicenseKey: getEnv("NEW_RELIC_LICENSE_KEY", ""),
			Enabled:    getBoolEnv("NEW_RELIC_ENABLED", false),
		},
		Fare: FareConfig{
			Base:      getFloatEnv("FARE_BASE", 50.0),
			RatePerKm: getFloatEnv("FARE_RATE_PER_KM", 8.0),
			Currency:  getEnv("FARE_CURRENCY", "inr"),
		},
		Booking: BookingConfig{
			ApprovalRequired: getBoolEnv("BOOKING_APPROVAL_REQUIRED", false),
			SettleOnPayment:  getBoolEnv("BOOKING_SETTLE_ON_PAYMENT", false),
		},
		Geo: GeoConfig{
			APIKey:        getEnv("OPENROUTE_API_KEY", ""),
			DirectionsURL: getEnv("OPENROUTE_DIRECTIONS_URL", ""),
			GeocodeURL:    getEnv("GEOCODE_URL", ""),
			Timeout:       getDurationEnv("GEO_TIMEOUT", 5*time.Second),
		},
		Sweep: SweepConfig{
			Interval: getDurationEnv("RIDE_SWEEP_INTERVAL", time.Minute),
			Enabled:  getBoolEnv("RIDE_SWEEP_ENABLED", true),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
