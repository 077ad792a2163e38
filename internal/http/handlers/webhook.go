package handlers

import (
	"context"
	"encoding/xml"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// ExpenseRecorder turns one inbound message into a user-facing reply.
type ExpenseRecorder interface {
	RecordExpense(ctx context.Context, rawText, senderPhone string) string
}

// WebhookHandler handles inbound messaging-provider webhooks.
type WebhookHandler struct {
	recorder ExpenseRecorder
	logger   *zap.Logger
}

// NewWebhookHandler constructs the handler.
func NewWebhookHandler(recorder ExpenseRecorder, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{recorder: recorder, logger: logger}
}

// Register attaches the webhook route to the mux.
func (h *WebhookHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/whatsapp", h.handle)
}

// twimlResponse is the XML envelope the messaging provider expects.
type twimlResponse struct {
	XMLName xml.Name `xml:"Response"`
	Message string   `xml:"Message"`
}

func (h *WebhookHandler) handle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form payload", http.StatusBadRequest)
		return
	}

	body := strings.TrimSpace(r.FormValue("Body"))
	phone := barePhone(strings.TrimSpace(r.FormValue("From")))

	reply := h.recorder.RecordExpense(r.Context(), body, phone)
	h.writeTwiML(w, reply)
}

// barePhone strips the provider prefix ("whatsapp:+5511...") down to the
// phone number.
func barePhone(from string) string {
	if i := strings.LastIndex(from, ":"); i >= 0 {
		return from[i+1:]
	}
	return from
}

func (h *WebhookHandler) writeTwiML(w http.ResponseWriter, message string) {
	out, err := xml.Marshal(twimlResponse{Message: message})
	if err != nil {
		h.logger.Error("marshal twiml response", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(append([]byte(xml.Header), out...)); err != nil {
		h.logger.Warn("write webhook response", zap.Error(err))
	}
}
