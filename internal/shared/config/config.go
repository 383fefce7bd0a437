package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for our application
type Config struct {
	// Server configuration
	Port           string
	GinMode        string
	APIVersion     string
	APIPrefix      string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxHeaderBytes int

	// Database configuration
	Database DatabaseConfig

	// Redis configuration
	Redis RedisConfig

	// JWT configuration (provisioning endpoints)
	JWT JWTConfig

	// Seat hold behaviour
	Holds HoldConfig

	// Expired-hold janitor
	Janitor JanitorConfig

	// Payment provider boundary
	Payments PaymentConfig

	// Kafka ticket events
	Kafka KafkaConfig

	// Rate limiting
	RateLimit RateLimitConfig

	// Logging
	LogLevel string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
	DSN      string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Addr     string

	// How long a stale in-memory projection may still be served when the
	// store is unreachable.
	StaleWindow time.Duration
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret    string
	ExpiresIn time.Duration
}

// HoldConfig bounds the TTL a caller may request for a seat hold.
type HoldConfig struct {
	DefaultTTL time.Duration
	MinTTL     time.Duration
	MaxTTL     time.Duration
}

// JanitorConfig controls the hygiene sweep of expired holds. Correctness never
// depends on the sweep; reads and the hold predicate treat expired holds as
// available on their own.
type JanitorConfig struct {
	Enabled       bool
	SweepInterval time.Duration
}

// PaymentConfig holds the payment-confirmation provider boundary. An empty
// ProviderURL selects the in-process provider that trusts PENDING intents,
// which is only meant for development.
type PaymentConfig struct {
	ProviderURL string
	Timeout     time.Duration
}

// KafkaConfig holds the ticket-event stream configuration.
type KafkaConfig struct {
	Enabled     bool
	Brokers     []string
	TicketTopic string
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled          bool          `json:"enabled"`
	WindowDuration   time.Duration `json:"window_duration"`
	DefaultRequests  int           `json:"default_requests"`
	PublicRequests   int           `json:"public_requests"`
	HoldRequests     int           `json:"hold_requests"`
	CheckoutRequests int           `json:"checkout_requests"`
	AdminRequests    int           `json:"admin_requests"`
	HealthRequests   int           `json:"health_requests"`
	WhitelistedIPs   []string      `json:"whitelisted_ips"`
}

// Load loads configuration from environment variables
func Load() *Config {
	cfg := &Config{
		// Server configuration
		Port:           getEnv("PORT", "8080"),
		GinMode:        getEnv("GIN_MODE", "debug"),
		APIVersion:     getEnv("API_VERSION", "v1"),
		APIPrefix:      getEnv("API_PREFIX", "/api"),
		ReadTimeout:    getDurationEnv("READ_TIMEOUT", 15*time.Second),
		WriteTimeout:   getDurationEnv("WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:    getDurationEnv("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes: getIntEnv("MAX_HEADER_BYTES", 1<<20), // 1 MB

		// Database configuration
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			Name:     getEnv("DB_NAME", "cineseat_db"),
			User:     getEnv("DB_USER", "cineseat_user"),
			Password: getEnv("DB_PASSWORD", "cineseat_password"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},

		// Redis configuration
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),

			StaleWindow: getDurationEnv("PROJECTION_STALE_WINDOW", 2*time.Minute),
		},

		// JWT configuration
		JWT: JWTConfig{
			Secret:    getEnv("JWT_SECRET", "your-super-secret-jwt-key"),
			ExpiresIn: getDurationEnvSeconds("JWT_EXPIRES_IN", 15*time.Minute),
		},

		Holds: HoldConfig{
			DefaultTTL: getDurationEnv("HOLD_DEFAULT_TTL", 10*time.Minute),
			MinTTL:     getDurationEnv("HOLD_MIN_TTL", 1*time.Minute),
			MaxTTL:     getDurationEnv("HOLD_MAX_TTL", 30*time.Minute),
		},

		Janitor: JanitorConfig{
			Enabled:       getBoolEnv("JANITOR_ENABLED", true),
			SweepInterval: getDurationEnv("JANITOR_SWEEP_INTERVAL", 1*time.Minute),
		},

		Payments: PaymentConfig{
			ProviderURL: getEnv("PAYMENT_PROVIDER_URL", ""),
			Timeout:     getDurationEnv("PAYMENT_PROVIDER_TIMEOUT", 5*time.Second),
		},

		Kafka: KafkaConfig{
			Enabled:     getBoolEnv("KAFKA_ENABLED", false),
			Brokers:     getStringSliceEnv("KAFKA_BROKERS", []string{"localhost:9092"}),
			TicketTopic: getEnv("KAFKA_TICKET_TOPIC", "tickets-issued"),
		},

		// Rate limiting
		RateLimit: RateLimitConfig{
			Enabled:          getBoolEnv("RATE_LIMIT_ENABLED", true),
			WindowDuration:   getDurationEnv("RATE_LIMIT_WINDOW_DURATION", 60*time.Second),
			DefaultRequests:  getIntEnv("RATE_LIMIT_DEFAULT_REQUESTS", 60),
			PublicRequests:   getIntEnv("RATE_LIMIT_PUBLIC_REQUESTS", 100),
			HoldRequests:     getIntEnv("RATE_LIMIT_HOLD_REQUESTS", 20),
			CheckoutRequests: getIntEnv("RATE_LIMIT_CHECKOUT_REQUESTS", 20),
			AdminRequests:    getIntEnv("RATE_LIMIT_ADMIN_REQUESTS", 200),
			HealthRequests:   getIntEnv("RATE_LIMIT_HEALTH_REQUESTS", 120),
			WhitelistedIPs:   getStringSliceEnv("RATE_LIMIT_WHITELISTED_IPS", []string{}),
		},

		// Logging
		LogLevel: getEnv("LOG_LEVEL", "debug"),
	}

	// Build composite values
	cfg.Database.DSN = buildDatabaseDSN(cfg.Database)
	cfg.Redis.Addr = cfg.Redis.Host + ":" + cfg.Redis.Port

	return cfg
}

// buildDatabaseDSN builds the database connection string
func buildDatabaseDSN(db DatabaseConfig) string {
	return "host=" + db.Host +
		" port=" + db.Port +
		" user=" + db.User +
		" password=" + db.Password +
		" dbname=" + db.Name +
		" sslmode=" + db.SSLMode
}

// getEnv gets an environment variable with a fallback value
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// getIntEnv gets an integer environment variable with a fallback value
func getIntEnv(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return fallback
}

// getDurationEnv gets a duration environment variable with a fallback value
func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return fallback
}

// getDurationEnvSeconds gets an environment variable as seconds (int) and converts to time.Duration
func getDurationEnvSeconds(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if seconds, err := strconv.Atoi(value); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return fallback
}

// getBoolEnv gets a boolean environment variable with a fallback value
func getBoolEnv(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return fallback
}

// getStringSliceEnv gets a comma-separated string environment variable as a slice
func getStringSliceEnv(key string, fallback []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		var result []string
		for _, part := range parts {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return fallback
}

// IsProduction returns true if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.GinMode == "release"
}

// IsDevelopment returns true if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.GinMode == "debug"
}

// GetServerAddress returns the full server address
func (c *Config) GetServerAddress() string {
	return ":" + c.Port
}

// GetAPIBasePath returns the API base path
func (c *Config) GetAPIBasePath() string {
	return c.APIPrefix + "/" + c.APIVersion
}
