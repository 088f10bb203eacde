package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port               string
	Env                string
	LogLevel           string
	CORSAllowedOrigins []string
	RateLimitPerSecond float64
	RateLimitBurst     int

	// Google Sheets (primary lead store)
	SheetID                  string
	SheetName                string
	WorksheetName            string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string
	RemoteRetryPolicy        string
	RemoteWriteTimeout       time.Duration

	// Local fallback store
	FallbackCSVPath   string
	FallbackS3Bucket  string
	FallbackS3Key     string
	FallbackS3Enabled bool

	// Form catalog overrides (comma separated)
	LicensedStates []string
	InsuranceTypes []string

	// Session handling
	SessionStore      string
	SessionTTL        time.Duration
	SessionCookieName string
	CookieSecure      bool
	CountdownTick     time.Duration
	RedisAddr         string
	RedisPassword     string
	RedisTLS          bool

	// New-lead notifications
	NotifyEmailTo     string
	SendGridAPIKey    string
	SendGridFromEmail string
	SendGridFromName  string
	SESFromEmail      string
	SESEnabled        bool

	// AWS
	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string
}

// Load reads configuration from environment variables. A .env file in the
// working directory is applied first when present; real env vars win.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:               getEnv("PORT", "8080"),
		Env:                getEnv("ENV", "development"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", nil),
		RateLimitPerSecond: getEnvAsFloat("RATE_LIMIT_PER_SECOND", 2),
		RateLimitBurst:     getEnvAsInt("RATE_LIMIT_BURST", 10),

		SheetID:                  getEnv("SHEET_ID", ""),
		SheetName:                getEnv("SHEET_NAME", "Insurance Leads"),
		WorksheetName:            getEnv("WORKSHEET_NAME", "Sheet1"),
		GoogleServiceAccountJSON: getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),
		GoogleServiceAccountFile: getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", ""),
		RemoteRetryPolicy:        strings.ToLower(strings.TrimSpace(getEnv("REMOTE_RETRY_POLICY", "never"))),
		RemoteWriteTimeout:       getEnvAsDuration("REMOTE_WRITE_TIMEOUT", 10*time.Second),

		FallbackCSVPath:   getEnv("FALLBACK_CSV_PATH", "insurance_leads_backup.csv"),
		FallbackS3Bucket:  getEnv("FALLBACK_S3_BUCKET", ""),
		FallbackS3Key:     getEnv("FALLBACK_S3_KEY", "leads/insurance_leads_backup.csv"),
		FallbackS3Enabled: getEnvAsBool("FALLBACK_S3_ENABLED", false),

		LicensedStates: getEnvAsList("LICENSED_STATES", nil),
		InsuranceTypes: getEnvAsList("INSURANCE_TYPES", nil),

		SessionStore:      strings.ToLower(strings.TrimSpace(getEnv("SESSION_STORE", "memory"))),
		SessionTTL:        getEnvAsDuration("SESSION_TTL", 2*time.Hour),
		SessionCookieName: getEnv("SESSION_COOKIE_NAME", "leadform_session"),
		CookieSecure:      getEnvAsBool("COOKIE_SECURE", false),
		CountdownTick:     getEnvAsDuration("COUNTDOWN_TICK", time.Second),
		RedisAddr:         getEnv("REDIS_ADDR", "redis:6379"),
		RedisPassword:     getEnv("REDIS_PASSWORD", ""),
		RedisTLS:          getEnvAsBool("REDIS_TLS", false),

		NotifyEmailTo:     getEnv("NOTIFY_EMAIL_TO", ""),
		SendGridAPIKey:    getEnv("SENDGRID_API_KEY", ""),
		SendGridFromEmail: getEnv("SENDGRID_FROM_EMAIL", ""),
		SendGridFromName:  getEnv("SENDGRID_FROM_NAME", "Universal Insurance Solutions"),
		SESFromEmail:      getEnv("SES_FROM_EMAIL", ""),
		SESEnabled:        getEnvAsBool("SES_ENABLED", false),

		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),
	}
}

// ServiceAccountJSON returns the Google service credential, reading the file
// variant when the inline JSON is not set.
func (c *Config) ServiceAccountJSON() ([]byte, error) {
	if strings.TrimSpace(c.GoogleServiceAccountJSON) != "" {
		return []byte(c.GoogleServiceAccountJSON), nil
	}
	if strings.TrimSpace(c.GoogleServiceAccountFile) == "" {
		return nil, nil
	}
	return os.ReadFile(c.GoogleServiceAccountFile)
}

// NeedsAWS reports whether any AWS-backed component is enabled.
func (c *Config) NeedsAWS() bool {
	return (c.FallbackS3Enabled && c.FallbackS3Bucket != "") || (c.SESEnabled && c.SESFromEmail != "")
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
