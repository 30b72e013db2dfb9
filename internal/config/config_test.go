package config

import (
	"encoding/base64"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const serviceAccount = `{"type":"service_account","client_email":"bot@project.iam.gserviceaccount.com"}`

func setBase(t *testing.T) {
	t.Helper()
	t.Setenv("BOT_TOKEN", "123:abc")
	t.Setenv("ADMIN_IDS", "42, 43")
	t.Setenv("SHEET_ID", "sheet-1")
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_JSON", base64.StdEncoding.EncodeToString([]byte(serviceAccount)))
	t.Setenv("GROUP_ID", "-100500")
	t.Setenv("MEET_LINK", "https://meet.google.com/abc-defg-hij")
	t.Setenv("CARD_NUMBER", "8600 1234 5678 9012")
}

func TestLoadDefaults(t *testing.T) {
	setBase(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []int64{42, 43}, cfg.AdminIDs)
	assert.Equal(t, int64(-100500), cfg.GroupID)
	assert.JSONEq(t, serviceAccount, string(cfg.ServiceAccount))
	assert.Equal(t, "Asia/Tokyo", cfg.Location.String())
	assert.Equal(t, time.Saturday, cfg.TrialWeekday)
	assert.Equal(t, 20, cfg.TrialHour)
	assert.Equal(t, int64(990000), cfg.PaymentAmount)
	assert.Equal(t, 6, cfg.RateLimit)
	assert.Equal(t, 10*time.Second, cfg.RateWindow)
	assert.Equal(t, time.Minute, cfg.ReminderTick)
	assert.Equal(t, 100*time.Millisecond, cfg.BroadcastDelay)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, ModePolling, cfg.BotMode)
	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.False(t, cfg.EmailEnabled())
}

func TestLoadAcceptsRawServiceAccountJSON(t *testing.T) {
	setBase(t)
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_JSON", serviceAccount)
	t.Setenv("TRIAL_WEEKDAY", "sun")

	cfg, err := Load()
	require.NoError(t, err)
	assert.JSONEq(t, serviceAccount, string(cfg.ServiceAccount))
	assert.Equal(t, time.Sunday, cfg.TrialWeekday)
}

func TestLoadAggregatesErrors(t *testing.T) {
	setBase(t)
	t.Setenv("BOT_TOKEN", "")
	t.Setenv("ADMIN_IDS", "42,abc")
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_JSON", "not-base64!")
	t.Setenv("MEET_LINK", "meet")
	t.Setenv("TZ", "Mars/Olympus")

	_, err := Load()
	require.Error(t, err)

	var verr ValidationError
	require.True(t, errors.As(err, &verr))
	for _, key := range []string{"BOT_TOKEN", "ADMIN_IDS", "GOOGLE_SERVICE_ACCOUNT_JSON", "MEET_LINK", "TZ"} {
		assert.True(t, verr.Has(key), key)
	}
	assert.Contains(t, err.Error(), "config errors:\n- BOT_TOKEN: is required")
	assert.Contains(t, err.Error(), "- ADMIN_IDS: must be a comma-separated list of numbers")
}

func TestValidateWebhookMode(t *testing.T) {
	setBase(t)
	t.Setenv("BOT_MODE", ModeWebhook)
	t.Setenv("WEBHOOK_URL", "http://insecure.example/hook")

	_, err := Load()
	var verr ValidationError
	require.True(t, errors.As(err, &verr))
	assert.True(t, verr.Has("WEBHOOK_URL"))

	t.Setenv("WEBHOOK_URL", "https://bot.example/telegram/webhook")
	cfg, err := Load()
	require.NoError(t, err)
	assert.NotEmpty(t, cfg.WebhookSecret, "a secret is generated when none is configured")
}

func TestValidateEmailSettings(t *testing.T) {
	setBase(t)
	t.Setenv("ADMIN_EMAILS", "ops@academy.uz, owner@academy.uz")

	_, err := Load()
	var verr ValidationError
	require.True(t, errors.As(err, &verr))
	assert.True(t, verr.Has("SMTP_HOST"))

	t.Setenv("SMTP_HOST", "smtp.academy.uz")
	t.Setenv("SMTP_USER", "bot@academy.uz")
	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.EmailEnabled())
	assert.Equal(t, []string{"ops@academy.uz", "owner@academy.uz"}, cfg.AdminEmails)
	assert.Equal(t, "bot@academy.uz", cfg.SMTPFrom)
}
