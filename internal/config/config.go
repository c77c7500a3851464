package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port          string
	Env           string
	LogLevel      string
	DatabaseURL   string
	PublicBaseURL string

	// Dialogue / matching
	CountryCallingCode string
	BookingBaseURL     string
	FallbackExpertise  string
	DefaultPhotoURL    string

	// AiSensy WhatsApp campaign gateway
	AiSensyURL      string
	AiSensyAPIKey   string
	AiSensySender   string
	AiSensyTimeout  time.Duration
	WhatsAppEnabled bool

	// Razorpay marketplace payments
	RazorpayKeyID        string
	RazorpayKeySecret    string
	RazorpayTransferPct  int
	RazorpayBaseURL      string
	RazorpayOrderTimeout time.Duration

	// Redis (OTP store)
	RedisAddr     string
	RedisPassword string
	RedisTLS      bool
	OTPTTL        time.Duration

	// Auth
	AuthJWTSecret string

	// Email
	EmailProvider     string
	SendGridAPIKey    string
	SendGridFromEmail string
	SendGridFromName  string
	SESFromEmail      string
	SESFromName       string

	// AWS (SES email)
	AWSRegion          string
	AWSAccessKeyID     string
	AWSSecretAccessKey string

	CORSAllowedOrigins []string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:          getEnv("PORT", "3000"),
		Env:           getEnv("ENV", "development"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		DatabaseURL:   getEnv("DATABASE_URL", ""),
		PublicBaseURL: getEnv("PUBLIC_BASE_URL", ""),

		CountryCallingCode: getEnv("COUNTRY_CALLING_CODE", "91"),
		BookingBaseURL:     getEnv("BOOKING_BASE_URL", "https://sereneminds.life/book"),
		FallbackExpertise:  getEnv("FALLBACK_EXPERTISE", "Wellness Buddy"),
		DefaultPhotoURL:    getEnv("DEFAULT_PHOTO_URL", "https://assets.sereneminds.life/img/professional-default.png"),

		AiSensyURL:      getEnv("AISENSY_URL", "https://backend.aisensy.com/campaign/t1/api/v2"),
		AiSensyAPIKey:   strings.TrimSpace(getEnv("AISENSY_API_KEY", "")),
		AiSensySender:   getEnv("AISENSY_SENDER_NAME", "Serene MINDS"),
		AiSensyTimeout:  getEnvAsDuration("AISENSY_TIMEOUT", 10*time.Second),
		WhatsAppEnabled: getEnvAsBool("WHATSAPP_ENABLED", true),

		RazorpayKeyID:        getEnv("RAZORPAY_KEY_ID", ""),
		RazorpayKeySecret:    getEnv("RAZORPAY_KEY_SECRET", ""),
		RazorpayTransferPct:  getEnvAsInt("RAZORPAY_TRANSFER_PCT", 75),
		RazorpayBaseURL:      getEnv("RAZORPAY_BASE_URL", "https://api.razorpay.com"),
		RazorpayOrderTimeout: getEnvAsDuration("RAZORPAY_ORDER_TIMEOUT", 15*time.Second),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),
		OTPTTL:        getEnvAsDuration("OTP_TTL", 5*time.Minute),

		AuthJWTSecret: getEnv("AUTH_JWT_SECRET", ""),

		EmailProvider:     strings.ToLower(strings.TrimSpace(getEnv("EMAIL_PROVIDER", "sendgrid"))),
		SendGridAPIKey:    getEnv("SENDGRID_API_KEY", ""),
		SendGridFromEmail: getEnv("SENDGRID_FROM_EMAIL", ""),
		SendGridFromName:  getEnv("SENDGRID_FROM_NAME", "Serene MINDS"),
		SESFromEmail:      getEnv("SES_FROM_EMAIL", ""),
		SESFromName:       getEnv("SES_FROM_NAME", "Serene MINDS"),

		AWSRegion:          getEnv("AWS_REGION", "ap-south-1"),
		AWSAccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),

		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
	}
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

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
