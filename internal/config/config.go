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
	DefaultPort             = "5000"
	DefaultGreeting         = "Hello, please hold while we connect you."
	DefaultCallSessionTTL   = 4 * time.Hour
	DefaultCallLogRetention = 30 * 24 * time.Hour
	DefaultMailPort         = 587
)

type Twilio struct {
	AccountSID  string
	AuthToken   string
	PhoneNumber string
	Greeting    string
}

type Google struct {
	SheetID             string
	ServiceAccountEmail string
	PrivateKey          string
	BackfillIDs         bool
}

type Mail struct {
	Host      string
	Port      int
	User      string
	Password  string
	From      string
	SummaryTo string
}

// Enabled reports whether call summaries should be mailed.
func (m Mail) Enabled() bool {
	return m.Host != "" && m.SummaryTo != ""
}

type Config struct {
	Port         string
	BaseURL      string
	LogLevel     string
	AllowOrigins []string

	Twilio       Twilio
	Google       Google
	OpenAIAPIKey string

	CallSessionTTL   time.Duration
	DatabaseURL      string
	CallLogRetention time.Duration
	RabbitMQURL      string
	Mail             Mail
}

// Load reads .env (when present) and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function, mainly so tests don't touch the real environment.
func FromEnv(getenv func(string) string) (*Config, error) {
	cfg := &Config{
		Port:         orDefault(getenv("PORT"), DefaultPort),
		BaseURL:      strings.TrimRight(getenv("BASE_URL"), "/"),
		LogLevel:     orDefault(getenv("LOG_LEVEL"), "info"),
		AllowOrigins: splitList(orDefault(getenv("CORS_ALLOWED_ORIGINS"), "*")),
		Twilio: Twilio{
			AccountSID:  getenv("TWILIO_ACCOUNT_SID"),
			AuthToken:   getenv("TWILIO_AUTH_TOKEN"),
			PhoneNumber: getenv("TWILIO_PHONE_NUMBER"),
			Greeting:    orDefault(getenv("CALL_GREETING"), DefaultGreeting),
		},
		Google: Google{
			SheetID:             getenv("GOOGLE_SHEET_ID"),
			ServiceAccountEmail: getenv("GOOGLE_SERVICE_ACCOUNT_EMAIL"),
			// keys pasted into .env keep their newlines escaped
			PrivateKey: strings.ReplaceAll(getenv("GOOGLE_PRIVATE_KEY"), `\n`, "\n"),
		},
		OpenAIAPIKey: getenv("OPENAI_API_KEY"),
		DatabaseURL:  getenv("DATABASE_URL"),
		RabbitMQURL:  getenv("RABBITMQ_URL"),
		Mail: Mail{
			Host:      getenv("MAIL_HOST"),
			User:      getenv("MAIL_USER"),
			Password:  getenv("MAIL_PASS"),
			From:      getenv("MAIL_FROM"),
			SummaryTo: getenv("CALL_SUMMARY_TO"),
		},
	}

	var err error
	if cfg.Google.BackfillIDs, err = parseBool(getenv("SHEET_BACKFILL_IDS"), false); err != nil {
		return nil, fmt.Errorf("SHEET_BACKFILL_IDS: %w", err)
	}
	if cfg.CallSessionTTL, err = parseDuration(getenv("CALL_SESSION_TTL"), DefaultCallSessionTTL); err != nil {
		return nil, fmt.Errorf("CALL_SESSION_TTL: %w", err)
	}
	if cfg.CallLogRetention, err = parseDuration(getenv("CALL_LOG_RETENTION"), DefaultCallLogRetention); err != nil {
		return nil, fmt.Errorf("CALL_LOG_RETENTION: %w", err)
	}
	if cfg.Mail.Port, err = parseInt(getenv("MAIL_PORT"), DefaultMailPort); err != nil {
		return nil, fmt.Errorf("MAIL_PORT: %w", err)
	}
	if _, err := strconv.Atoi(cfg.Port); err != nil {
		return nil, fmt.Errorf("PORT: %w", err)
	}

	return cfg, nil
}

// Validate reports every key the API server cannot start without.
func (c *Config) Validate() error {
	var missing []string
	check := func(key, value string) {
		if value == "" {
			missing = append(missing, key)
		}
	}

	check("GOOGLE_SHEET_ID", c.Google.SheetID)
	check("GOOGLE_SERVICE_ACCOUNT_EMAIL", c.Google.ServiceAccountEmail)
	check("GOOGLE_PRIVATE_KEY", c.Google.PrivateKey)
	check("TWILIO_ACCOUNT_SID", c.Twilio.AccountSID)
	check("TWILIO_AUTH_TOKEN", c.Twilio.AuthToken)
	check("TWILIO_PHONE_NUMBER", c.Twilio.PhoneNumber)
	check("BASE_URL", c.BaseURL)

	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + c.Port
}

// CallbackURL is where the telephony provider fetches call instructions.
func (c *Config) CallbackURL() string {
	return c.BaseURL + "/api/calls/twiml"
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseBool(v string, def bool) (bool, error) {
	if v == "" {
		return def, nil
	}
	return strconv.ParseBool(v)
}

func parseDuration(v string, def time.Duration) (time.Duration, error) {
	if v == "" {
		return def, nil
	}
	return time.ParseDuration(v)
}

func parseInt(v string, def int) (int, error) {
	if v == "" {
		return def, nil
	}
	return strconv.Atoi(v)
}
