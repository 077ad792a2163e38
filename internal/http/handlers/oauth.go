package handlers

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"gastobot/internal/googleauth"
	"gastobot/internal/storage"
)

// LinkCompleter completes the account-linking round trip against the
// identity provider.
type LinkCompleter interface {
	CompleteLink(ctx context.Context, code, state string) ([]byte, error)
}

// OAuthCallbackHandler handles the provider's redirect after the user
// grants spreadsheet access.
type OAuthCallbackHandler struct {
	linker LinkCompleter
	logger *zap.Logger
}

// NewOAuthCallbackHandler constructs the handler.
func NewOAuthCallbackHandler(linker LinkCompleter, logger *zap.Logger) *OAuthCallbackHandler {
	return &OAuthCallbackHandler{linker: linker, logger: logger}
}

// Register attaches the callback route to the mux.
func (h *OAuthCallbackHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/oauth2callback", h.handle)
}

func (h *OAuthCallbackHandler) handle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	q := r.URL.Query()
	body, err := h.linker.CompleteLink(r.Context(), q.Get("code"), q.Get("state"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		h.logger.Warn("write callback response", zap.Error(err))
	}
}

func (h *OAuthCallbackHandler) writeError(w http.ResponseWriter, err error) {
	var xerr *googleauth.ExchangeError
	switch {
	case errors.Is(err, googleauth.ErrMissingCode),
		errors.Is(err, googleauth.ErrInvalidState),
		errors.Is(err, googleauth.ErrNoRefreshToken):
		h.logger.Warn("link rejected", zap.Error(err))
		w.WriteHeader(http.StatusBadRequest)
	case errors.As(err, &xerr):
		h.logger.Error("token exchange failed", zap.Int("upstream_status", xerr.StatusCode))
		if xerr.StatusCode > 0 {
			w.WriteHeader(xerr.StatusCode)
		} else {
			w.WriteHeader(http.StatusBadGateway)
		}
	case errors.Is(err, storage.ErrNotFound):
		h.logger.Warn("link for unknown account", zap.Error(err))
		w.WriteHeader(http.StatusNotFound)
	default:
		h.logger.Error("link failed", zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
	}
}
