package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreMemory   = "memory"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
)

type Config struct {
	HTTPPort    string
	CORSOrigins []string
	LogLevel    string
	LogFormat   string

	StoreBackend    string
	DatabaseURL     string
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	RedisLeadsKey   string
	ConflictPolicy  string
	ConflictRetries int

	RabbitMQURL string

	MailHost string
	MailPort int
	MailUser string
	MailPass string
	MailFrom string

	SalesEmail    string
	SalesWhatsApp string

	WhatsAppAccessToken string
	WhatsAppPhoneID     string
	WhatsAppAPIURL      string
	WhatsAppVerifyToken string
	WhatsAppAppSecret   string

	StripeSecretKey     string
	StripeWebhookSecret string
	StripeAPIURL        string
	CheckoutSuccessURL  string
	CheckoutCancelURL   string

	GeminiAPIKey string
	GeminiModel  string

	SheetsCredentialsFile string
	SheetsSpreadsheetID   string
	SheetsRange           string

	AdminJWTSecret string

	TemplatesFile string
	PlansFile     string
	DemoURL       string

	ContactWhatsApp string
	ContactEmail    string
	ContactPhone    string

	PositiveResponseMode string
	LanguageFallback     string
	TypingDelay          time.Duration

	StaleOutreachWindow   time.Duration
	StaleOutreachInterval time.Duration
}

// Load reads .env (when present) and the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		HTTPPort:    getEnv("HTTP_PORT", "8080"),
		CORSOrigins: splitList(getEnv("CORS_ORIGINS", "http://localhost:5173")),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFormat:   getEnv("LOG_FORMAT", "json"),

		StoreBackend:    getEnv("STORE_BACKEND", StoreMemory),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:   os.Getenv("REDIS_PASSWORD"),
		RedisDB:         getEnvInt("REDIS_DB", 0),
		RedisLeadsKey:   getEnv("REDIS_LEADS_KEY", "leadfunnel:leads"),
		ConflictPolicy:  getEnv("CONFLICT_POLICY", "retry"),
		ConflictRetries: getEnvInt("CONFLICT_RETRIES", 3),

		RabbitMQURL: os.Getenv("RABBITMQ_URL"),

		MailHost: os.Getenv("MAIL_HOST"),
		MailPort: getEnvInt("MAIL_PORT", 587),
		MailUser: os.Getenv("MAIL_USER"),
		MailPass: os.Getenv("MAIL_PASS"),
		MailFrom: getEnv("MAIL_FROM", "no-reply@leadfunnel.app"),

		SalesEmail:    os.Getenv("SALES_EMAIL"),
		SalesWhatsApp: os.Getenv("SALES_WHATSAPP"),

		WhatsAppAccessToken: os.Getenv("WHATSAPP_ACCESS_TOKEN"),
		WhatsAppPhoneID:     os.Getenv("WHATSAPP_PHONE_ID"),
		WhatsAppAPIURL:      getEnv("WHATSAPP_API_URL", "https://graph.facebook.com/v20.0"),
		WhatsAppVerifyToken: os.Getenv("WHATSAPP_VERIFY_TOKEN"),
		WhatsAppAppSecret:   os.Getenv("WHATSAPP_APP_SECRET"),

		StripeSecretKey:     os.Getenv("STRIPE_SECRET_KEY"),
		StripeWebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
		StripeAPIURL:        getEnv("STRIPE_API_URL", "https://api.stripe.com"),
		CheckoutSuccessURL:  getEnv("CHECKOUT_SUCCESS_URL", "http://localhost:5173/checkout/success"),
		CheckoutCancelURL:   getEnv("CHECKOUT_CANCEL_URL", "http://localhost:5173/pricing"),

		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.0-flash"),

		SheetsCredentialsFile: os.Getenv("SHEETS_CREDENTIALS_FILE"),
		SheetsSpreadsheetID:   os.Getenv("SHEETS_SPREADSHEET_ID"),
		SheetsRange:           getEnv("SHEETS_RANGE", "Leads!A1"),

		AdminJWTSecret: os.Getenv("ADMIN_JWT_SECRET"),

		TemplatesFile: os.Getenv("TEMPLATES_FILE"),
		PlansFile:     os.Getenv("PLANS_FILE"),
		DemoURL:       getEnv("DEMO_URL", "https://leadfunnel.app/demo"),

		ContactWhatsApp: os.Getenv("CONTACT_WHATSAPP"),
		ContactEmail:    os.Getenv("CONTACT_EMAIL"),
		ContactPhone:    os.Getenv("CONTACT_PHONE"),

		PositiveResponseMode: getEnv("POSITIVE_RESPONSE_MODE", "direct_demo"),
		LanguageFallback:     getEnv("LANGUAGE_FALLBACK", "city_heuristic"),
		TypingDelay:          getEnvDuration("FLOW_TYPING_DELAY", 800*time.Millisecond),

		StaleOutreachWindow:   getEnvDuration("STALE_OUTREACH_WINDOW", 72*time.Hour),
		StaleOutreachInterval: getEnvDuration("STALE_OUTREACH_INTERVAL", 10*time.Minute),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.StoreBackend {
	case StoreMemory, StoreRedis:
	case StorePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres store")
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend)
	}

	switch c.ConflictPolicy {
	case "retry", "fail", "last_writer_wins":
	default:
		return fmt.Errorf("unknown CONFLICT_POLICY %q", c.ConflictPolicy)
	}

	switch c.PositiveResponseMode {
	case "direct_demo", "via_replied":
	default:
		return fmt.Errorf("unknown POSITIVE_RESPONSE_MODE %q", c.PositiveResponseMode)
	}

	switch c.LanguageFallback {
	case "city_heuristic", "english":
	default:
		return fmt.Errorf("unknown LANGUAGE_FALLBACK %q", c.LanguageFallback)
	}

	return nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
