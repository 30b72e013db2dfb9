package handlers

import (
	"crypto/subtle"
	"encoding/json"
	"log/slog"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/xavierca1/lead-engine/internal/infra/integration/telegram"
)

const SecretTokenHeader = "X-Telegram-Bot-Api-Secret-Token"

// WebhookHandler accepts updates pushed by Telegram and hands them to the
// dispatcher. Processing is asynchronous; the response only acknowledges receipt.
type WebhookHandler struct {
	Secret   string
	Dispatch telegram.DispatchFunc
	Logger   *slog.Logger
}

func NewWebhookHandler(secret string, dispatch telegram.DispatchFunc, logger *slog.Logger) *WebhookHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &WebhookHandler{Secret: secret, Dispatch: dispatch, Logger: logger}
}

func (h *WebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	if h.Secret != "" {
		got := r.Header.Get(SecretTokenHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(h.Secret)) != 1 {
			h.Logger.Warn("webhook call with bad secret token", "remote", r.RemoteAddr)
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
	}

	var update tgbotapi.Update
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&update); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}

	u, ok := telegram.ConvertUpdate(update)
	if !ok {
		w.WriteHeader(http.StatusOK)
		return
	}

	// Telegram retries non-2xx responses, so a dropped update is still acknowledged.
	if !h.Dispatch(r.Context(), u) {
		h.Logger.Debug("webhook update not queued", "update_id", u.ID, "user_id", u.UserID)
	}
	w.WriteHeader(http.StatusOK)
}
