package handlers

import (
	"net/http"

	"gastobot/internal/http/respond"
)

// HealthHandler reports service liveness. No side effects.
type HealthHandler struct{}

// NewHealthHandler creates a health endpoint handler.
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// Register wires the handler into a ServeMux.
func (h *HealthHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/health", h.handle)
}

func (h *HealthHandler) handle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
