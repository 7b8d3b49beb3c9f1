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
	MaxBodyBytes   int64
	AllowedOrigins []string

	// Redis configuration
	Redis RedisConfig

	// Rate limiting
	RateLimit RateLimitConfig

	// Logging
	LogLevel string

	// External services
	Sheets        SheetsConfig
	Email         EmailConfig
	Wedding       WeddingConfig
	Notifications NotificationsConfig

	// Path to the YAML event registry; empty means built-in events
	EventsFile string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Addr     string
}

// Enabled reports whether a Redis host was configured
func (r RedisConfig) Enabled() bool {
	return r.Host != ""
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled         bool          `json:"enabled"`
	WindowDuration  time.Duration `json:"window_duration"`
	DefaultRequests int           `json:"default_requests"`
	PublicRequests  int           `json:"public_requests"`
	RSVPRequests    int           `json:"rsvp_requests"`
	HealthRequests  int           `json:"health_requests"`
	WhitelistedIPs  []string      `json:"whitelisted_ips"`
}

// SheetsConfig holds the spreadsheet store (Apps Script web app) configuration
type SheetsConfig struct {
	AppsScriptURL string
	Timeout       time.Duration
}

// EmailConfig holds email configuration.
// Username/Password are the Gmail account and app password used for SMTP auth.
type EmailConfig struct {
	SMTPHost  string
	SMTPPort  int
	Username  string
	Password  string
	FromName  string
	Timeout   time.Duration
	LogoURL   string
	FooterTag string
}

// Configured reports whether mail credentials are present
func (e EmailConfig) Configured() bool {
	return e.Username != "" && e.Password != ""
}

// WeddingConfig holds the couple-level details shared by all events
type WeddingConfig struct {
	Name             string
	CalendarTimezone string
}

// NotificationsConfig selects how confirmation emails leave the request path
type NotificationsConfig struct {
	KafkaBrokers       []string
	Topic              string
	ConsumerGroupID    string
	NumConsumerWorkers int
}

// UseKafka reports whether confirmation jobs go through Kafka
func (n NotificationsConfig) UseKafka() bool {
	return len(n.KafkaBrokers) > 0
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
		WriteTimeout:   getDurationEnv("WRITE_TIMEOUT", 30*time.Second),
		IdleTimeout:    getDurationEnv("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes: getIntEnv("MAX_HEADER_BYTES", 1<<20), // 1 MB
		MaxBodyBytes:   getInt64Env("MAX_BODY_BYTES", 64*1024),
		AllowedOrigins: getStringSliceEnv("CORS_ALLOWED_ORIGINS", []string{}),

		// Redis is optional; an empty host disables it
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", ""),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
		},

		// Rate limiting
		RateLimit: RateLimitConfig{
			Enabled:         getBoolEnv("RATE_LIMIT_ENABLED", true),
			WindowDuration:  getDurationEnv("RATE_LIMIT_WINDOW_DURATION", 60*time.Second),
			DefaultRequests: getIntEnv("RATE_LIMIT_DEFAULT_REQUESTS", 60),
			PublicRequests:  getIntEnv("RATE_LIMIT_PUBLIC_REQUESTS", 120),
			RSVPRequests:    getIntEnv("RATE_LIMIT_RSVP_REQUESTS", 10),
			HealthRequests:  getIntEnv("RATE_LIMIT_HEALTH_REQUESTS", 300),
			WhitelistedIPs:  getStringSliceEnv("RATE_LIMIT_WHITELISTED_IPS", []string{}),
		},

		// Logging
		LogLevel: getEnv("LOG_LEVEL", "info"),

		Sheets: SheetsConfig{
			AppsScriptURL: getEnv("GOOGLE_APPS_SCRIPT_URL", ""),
			Timeout:       getDurationEnv("SHEETS_TIMEOUT", 15*time.Second),
		},

		Email: EmailConfig{
			SMTPHost:  getEnv("SMTP_HOST", "smtp.gmail.com"),
			SMTPPort:  getIntEnv("SMTP_PORT", 587),
			Username:  getEnv("GMAIL_USER", ""),
			Password:  getEnv("GMAIL_APP_PASSWORD", ""),
			FromName:  getEnv("EMAIL_FROM_NAME", ""),
			Timeout:   getDurationEnv("SMTP_TIMEOUT", 30*time.Second),
			LogoURL:   getEnv("EMAIL_LOGO_URL", "https://wedding-five-self-14.vercel.app/assets/images/pelli/logo.jpeg"),
			FooterTag: getEnv("EMAIL_FOOTER_LINE", "April 2026 · Atlanta, Georgia"),
		},

		Wedding: WeddingConfig{
			Name:             getEnv("WEDDING_NAME", "Neelu & Aditya"),
			CalendarTimezone: getEnv("CALENDAR_TIMEZONE", "America/New_York"),
		},

		Notifications: NotificationsConfig{
			KafkaBrokers:       getStringSliceEnv("KAFKA_BROKERS", []string{}),
			Topic:              getEnv("NOTIFICATION_TOPIC", "rsvp-confirmations"),
			ConsumerGroupID:    getEnv("CONSUMER_GROUP_ID", "rsvp-confirmation-workers"),
			NumConsumerWorkers: getIntEnv("NUM_CONSUMER_WORKERS", 2),
		},

		EventsFile: getEnv("EVENTS_FILE", ""),
	}

	// Build composite values
	cfg.Redis.Addr = cfg.Redis.Host + ":" + cfg.Redis.Port
	if cfg.Email.FromName == "" {
		cfg.Email.FromName = cfg.Wedding.Name + "'s Wedding"
	}

	return cfg
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

// getInt64Env gets an int64 environment variable with a fallback value
func getInt64Env(key string, fallback int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
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
