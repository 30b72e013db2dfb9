package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/lead-engine/internal/bot"
)

func TestHealthHandlerHealthy(t *testing.T) {
	h := NewHealthHandler("1.2.0", map[string]Check{
		"storage":  func(context.Context) error { return nil },
		"rabbitmq": nil,
	})

	rec := httptest.NewRecorder()
	h.Handle(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	var body HealthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "healthy", body.Status)
	assert.Equal(t, "1.2.0", body.Version)
	assert.Equal(t, map[string]string{"storage": "healthy", "rabbitmq": "not configured"}, body.Dependencies)
}

func TestHealthHandlerDegraded(t *testing.T) {
	h := NewHealthHandler("1.2.0", map[string]Check{
		"storage": func(context.Context) error { return nil },
		"redis":   func(context.Context) error { return errors.New("connection refused") },
	})

	rec := httptest.NewRecorder()
	h.Handle(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var body HealthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "degraded", body.Status)
	assert.Equal(t, "unhealthy: connection refused", body.Dependencies["redis"])
}

type dispatchRecorder struct {
	updates []bot.Update
	accept  bool
}

func (d *dispatchRecorder) dispatch(_ context.Context, u bot.Update) bool {
	d.updates = append(d.updates, u)
	return d.accept
}

const messageUpdate = `{"update_id":77,"message":{"message_id":1,"date":0,"from":{"id":1001,"is_bot":false,"first_name":"Aziz"},"chat":{"id":1001,"type":"private"},"text":"/start"}}`

func TestWebhookHandlerDispatchesUpdate(t *testing.T) {
	d := &dispatchRecorder{accept: true}
	h := NewWebhookHandler("s3cret", d.dispatch, nil)

	req := httptest.NewRequest(http.MethodPost, "/telegram/webhook", strings.NewReader(messageUpdate))
	req.Header.Set(SecretTokenHeader, "s3cret")
	rec := httptest.NewRecorder()
	h.Handle(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, d.updates, 1)
	assert.Equal(t, 77, d.updates[0].ID)
	assert.Equal(t, int64(1001), d.updates[0].UserID)
	assert.Equal(t, "/start", d.updates[0].Text)
}

func TestWebhookHandlerRejectsBadSecret(t *testing.T) {
	d := &dispatchRecorder{accept: true}
	h := NewWebhookHandler("s3cret", d.dispatch, nil)

	req := httptest.NewRequest(http.MethodPost, "/telegram/webhook", strings.NewReader(messageUpdate))
	req.Header.Set(SecretTokenHeader, "guess")
	rec := httptest.NewRecorder()
	h.Handle(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, d.updates)
}

func TestWebhookHandlerAcknowledgesDroppedAndUnsupported(t *testing.T) {
	d := &dispatchRecorder{accept: false}
	h := NewWebhookHandler("", d.dispatch, nil)

	rec := httptest.NewRecorder()
	h.Handle(rec, httptest.NewRequest(http.MethodPost, "/telegram/webhook", strings.NewReader(messageUpdate)))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, d.updates, 1)

	rec = httptest.NewRecorder()
	h.Handle(rec, httptest.NewRequest(http.MethodPost, "/telegram/webhook", strings.NewReader(`{"update_id":78,"poll":{"id":"p"}}`)))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, d.updates, 1)

	rec = httptest.NewRecorder()
	h.Handle(rec, httptest.NewRequest(http.MethodPost, "/telegram/webhook", strings.NewReader(`{`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
