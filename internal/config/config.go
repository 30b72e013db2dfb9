package config

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
)

const (
	ModePolling = "polling"
	ModeWebhook = "webhook"
)

type Config struct {
	BotToken          string        `envconfig:"BOT_TOKEN"`
	AdminIDsRaw       string        `envconfig:"ADMIN_IDS"`
	SheetID           string        `envconfig:"SHEET_ID"`
	ServiceAccountRaw string        `envconfig:"GOOGLE_SERVICE_ACCOUNT_JSON"`
	GroupIDRaw        string        `envconfig:"GROUP_ID"`
	MeetLink          string        `envconfig:"MEET_LINK"`
	CardNumber        string        `envconfig:"CARD_NUMBER"`
	TimeZone          string        `envconfig:"TZ" default:"Asia/Tokyo"`
	AppEnv            string        `envconfig:"APP_ENV" default:"production"`
	HTTPPort          int           `envconfig:"HTTP_PORT" default:"8080"`
	BotMode           string        `envconfig:"BOT_MODE" default:"polling"`
	WebhookURL        string        `envconfig:"WEBHOOK_URL"`
	WebhookSecret     string        `envconfig:"WEBHOOK_SECRET"`
	RedisAddr         string        `envconfig:"REDIS_ADDR"`
	AMQPURL           string        `envconfig:"AMQP_URL"`
	SMTPHost          string        `envconfig:"SMTP_HOST"`
	SMTPPort          int           `envconfig:"SMTP_PORT" default:"587"`
	SMTPUser          string        `envconfig:"SMTP_USER"`
	SMTPPass          string        `envconfig:"SMTP_PASS"`
	SMTPFrom          string        `envconfig:"SMTP_FROM"`
	AdminEmailsRaw    string        `envconfig:"ADMIN_EMAILS"`
	PaymentAmount     int64         `envconfig:"PAYMENT_AMOUNT" default:"990000"`
	TrialWeekdayRaw   string        `envconfig:"TRIAL_WEEKDAY" default:"Saturday"`
	TrialHour         int           `envconfig:"TRIAL_HOUR" default:"20"`
	RateLimit         int           `envconfig:"RATE_LIMIT" default:"6"`
	RateWindow        time.Duration `envconfig:"RATE_WINDOW" default:"10s"`
	ReminderTick      time.Duration `envconfig:"REMINDER_TICK" default:"60s"`
	BroadcastDelay    time.Duration `envconfig:"BROADCAST_DELAY" default:"100ms"`
	SessionTTL        time.Duration `envconfig:"SESSION_TTL" default:"24h"`

	// Filled by Validate.
	AdminIDs       []int64        `ignored:"true"`
	GroupID        int64          `ignored:"true"`
	ServiceAccount []byte         `ignored:"true"`
	Location       *time.Location `ignored:"true"`
	TrialWeekday   time.Weekday   `ignored:"true"`
	AdminEmails    []string       `ignored:"true"`
}

// Load reads .env when present, then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return nil, errors.Wrap(err, "read environment")
	}
	if err := c.Validate(); err != nil {
		return nil, errors.WithStack(err)
	}
	return &c, nil
}

// ValidationError lists every invalid variable at once.
type ValidationError []fieldError

type fieldError struct {
	Key     string
	Message string
}

func (v ValidationError) Error() string {
	var b strings.Builder
	b.WriteString("config errors:")
	for _, fe := range v {
		fmt.Fprintf(&b, "\n- %s: %s", fe.Key, fe.Message)
	}
	return b.String()
}

func (v ValidationError) Has(key string) bool {
	for _, fe := range v {
		if fe.Key == key {
			return true
		}
	}
	return false
}

func (c *Config) Validate() error {
	var errs ValidationError
	fail := func(key, format string, args ...any) {
		errs = append(errs, fieldError{Key: key, Message: fmt.Sprintf(format, args...)})
	}
	required := func(key, value string) bool {
		if strings.TrimSpace(value) == "" {
			fail(key, "is required")
			return false
		}
		return true
	}

	required("BOT_TOKEN", c.BotToken)
	required("SHEET_ID", c.SheetID)
	required("CARD_NUMBER", c.CardNumber)

	if required("ADMIN_IDS", c.AdminIDsRaw) {
		ids, err := parseIDs(c.AdminIDsRaw)
		switch {
		case err != nil:
			fail("ADMIN_IDS", "must be a comma-separated list of numbers")
		case len(ids) == 0:
			fail("ADMIN_IDS", "must contain at least one id")
		default:
			c.AdminIDs = ids
		}
	}

	if required("GROUP_ID", c.GroupIDRaw) {
		id, err := strconv.ParseInt(strings.TrimSpace(c.GroupIDRaw), 10, 64)
		if err != nil {
			fail("GROUP_ID", "must be a numeric chat id")
		} else {
			c.GroupID = id
		}
	}

	if required("GOOGLE_SERVICE_ACCOUNT_JSON", c.ServiceAccountRaw) {
		raw, err := decodeServiceAccount(c.ServiceAccountRaw)
		if err != nil {
			fail("GOOGLE_SERVICE_ACCOUNT_JSON", "must be JSON or base64 encoded JSON")
		} else {
			c.ServiceAccount = raw
		}
	}

	if required("MEET_LINK", c.MeetLink) && !isHTTPURL(c.MeetLink) {
		fail("MEET_LINK", "must be an http(s) URL")
	}

	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		fail("TZ", "unknown time zone %q", c.TimeZone)
	} else {
		c.Location = loc
	}

	if wd, ok := parseWeekday(c.TrialWeekdayRaw); ok {
		c.TrialWeekday = wd
	} else {
		fail("TRIAL_WEEKDAY", "must be a weekday name, got %q", c.TrialWeekdayRaw)
	}
	if c.TrialHour < 0 || c.TrialHour > 23 {
		fail("TRIAL_HOUR", "must be between 0 and 23")
	}
	if c.PaymentAmount <= 0 {
		fail("PAYMENT_AMOUNT", "must be positive")
	}
	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		fail("HTTP_PORT", "must be a valid port")
	}
	if c.RateLimit <= 0 {
		fail("RATE_LIMIT", "must be positive")
	}
	if c.RateWindow <= 0 {
		fail("RATE_WINDOW", "must be positive")
	}
	if c.ReminderTick <= 0 {
		fail("REMINDER_TICK", "must be positive")
	}
	if c.BroadcastDelay < 0 {
		fail("BROADCAST_DELAY", "must not be negative")
	}
	if c.SessionTTL <= 0 {
		fail("SESSION_TTL", "must be positive")
	}

	switch c.BotMode {
	case ModePolling:
	case ModeWebhook:
		if !isHTTPURL(c.WebhookURL) || !strings.HasPrefix(c.WebhookURL, "https://") {
			fail("WEBHOOK_URL", "must be an https URL when BOT_MODE=webhook")
		}
		if c.WebhookSecret == "" {
			c.WebhookSecret = uuid.NewString()
		}
	default:
		fail("BOT_MODE", "must be %q or %q", ModePolling, ModeWebhook)
	}

	c.AdminEmails = splitList(c.AdminEmailsRaw)
	for _, addr := range c.AdminEmails {
		if !strings.Contains(addr, "@") {
			fail("ADMIN_EMAILS", "invalid address %q", addr)
		}
	}
	if len(c.AdminEmails) > 0 && c.SMTPHost == "" {
		fail("SMTP_HOST", "is required when ADMIN_EMAILS is set")
	}
	if c.SMTPFrom == "" {
		c.SMTPFrom = c.SMTPUser
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (c *Config) EmailEnabled() bool {
	return c.SMTPHost != "" && len(c.AdminEmails) > 0
}

func (c *Config) IsLocal() bool {
	return c.AppEnv == "local" || c.AppEnv == "development"
}

func parseIDs(raw string) ([]int64, error) {
	var ids []int64
	for _, part := range splitList(raw) {
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
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

// decodeServiceAccount accepts the key file as is or base64 encoded.
func decodeServiceAccount(raw string) ([]byte, error) {
	raw = strings.TrimSpace(raw)
	data := []byte(raw)
	if !strings.HasPrefix(raw, "{") {
		decoded, err := base64.StdEncoding.DecodeString(raw)
		if err != nil {
			return nil, err
		}
		data = decoded
	}

	var probe map[string]any
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, err
	}
	return data, nil
}

func isHTTPURL(s string) bool {
	u, err := url.ParseRequestURI(strings.TrimSpace(s))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func parseWeekday(s string) (time.Weekday, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for d := time.Sunday; d <= time.Saturday; d++ {
		name := strings.ToLower(d.String())
		if s == name || s == name[:3] {
			return d, true
		}
	}
	return 0, false
}
