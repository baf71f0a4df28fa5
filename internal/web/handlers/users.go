package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/openvisage/facegate/internal/face"
)

// UsersHandler serves registration and user administration.
type UsersHandler struct {
	users   UserStore
	history History
}

// NewUsersHandler creates a new users handler.
func NewUsersHandler(users UserStore, history History) *UsersHandler {
	return &UsersHandler{users: users, history: history}
}

// registerRequest is the enrollment request body.
type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Image    string `json:"image"`
}

// userResponse is one row of the user listing, enrollment data joined
// with the last-seen timestamp derived from the login history.
type userResponse struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	Email     string  `json:"email"`
	Image     string  `json:"image"`
	LastLogin *string `json:"lastLogin"`
}

// Register enrolls a new user with a reference face image.
// The image is stored exactly as submitted; encodings are computed from it
// on every later match attempt.
func (h *UsersHandler) Register(w http.ResponseWriter, r *http.Request) {
	slog.Info("register endpoint called")

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if req.Username == "" || req.Password == "" || req.Image == "" {
		respondError(w, http.StatusBadRequest, "Username, password, and image required")
		return
	}
	if _, err := face.DecodePayload(req.Image); err != nil {
		respondError(w, http.StatusBadRequest, "Image must be base64 encoded")
		return
	}

	if _, err := h.users.Insert(r.Context(), req.Username, req.Email, req.Password, req.Image); err != nil {
		slog.Error("failed to register user", "error", err, "user", sanitizeForLog(req.Username))
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	slog.Info("user registered", "user", sanitizeForLog(req.Username))
	respondJSON(w, http.StatusCreated, map[string]string{"status": "success"})
}

// List returns all enrolled users with their last login time.
// Presence data comes from the login history and degrades to null when the
// history cannot be read; a store failure yields an empty list with the
// error message attached.
func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.ListAll(r.Context())
	if err != nil {
		slog.Error("failed to list users", "error", err)
		respondJSON(w, http.StatusOK, map[string]any{
			"users": []userResponse{},
			"error": err.Error(),
		})
		return
	}

	lastLogins := h.history.LastLogins()

	resp := make([]userResponse, 0, len(users))
	for _, u := range users {
		row := userResponse{
			ID:    u.ID,
			Name:  u.Name,
			Email: u.Email,
			Image: u.Image,
		}
		if ts, ok := lastLogins[u.Name]; ok {
			row.LastLogin = &ts
		}
		resp = append(resp, row)
	}

	respondJSON(w, http.StatusOK, map[string]any{"users": resp})
}

// Delete removes a user by id. Deleting an id that does not exist succeeds.
func (h *UsersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	if err := h.users.DeleteByID(r.Context(), id); err != nil {
		slog.Error("failed to delete user", "error", err, "id", id)
		respondJSON(w, http.StatusInternalServerError, map[string]string{
			"status": "error",
			"error":  err.Error(),
		})
		return
	}

	slog.Info("user deleted", "id", id)
	respondJSON(w, http.StatusOK, map[string]any{
		"status":  "success",
		"deleted": id,
	})
}
