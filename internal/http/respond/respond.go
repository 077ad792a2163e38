// Package respond centralizes JSON response writing for the HTTP handlers.
package respond

import (
	"encoding/json"
	"log"
	"net/http"
)

// Envelope is the standard API response wrapper used across handlers.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// JSON writes an arbitrary payload with the given status.
func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("respond: encode payload failed: %v", err)
	}
}

// Error writes a failure response with the shared envelope structure.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, Envelope{Success: false, Message: message})
}
