package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/openvisage/facegate/internal/audit"
	"github.com/openvisage/facegate/internal/matcher"
	"github.com/openvisage/facegate/internal/store"
)

// errInvalidRequestBody is a shared error message for invalid JSON request bodies.
const errInvalidRequestBody = "invalid request body"

// UserStore is the enrollment repository surface the handlers need.
type UserStore interface {
	Insert(ctx context.Context, name, email, password, image string) (int64, error)
	ListAll(ctx context.Context) ([]store.User, error)
	DeleteByID(ctx context.Context, id int64) error
}

// History is the read side of the login history.
type History interface {
	ReadRecent(limit int) ([]audit.Entry, error)
	LastLogins() map[string]string
}

// Identifier runs the identification scan for a probe image.
type Identifier interface {
	Identify(ctx context.Context, probeImage []byte) (matcher.Result, error)
}

// sanitizeForLog removes newlines and carriage returns to prevent log injection.
func sanitizeForLog(s string) string {
	return strings.NewReplacer("\n", "", "\r", "").Replace(s)
}

// respondJSON sends a JSON response.
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// respondError sends an error response.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// HealthCheck handles the health check endpoint.
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}
