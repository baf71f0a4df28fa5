package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/openvisage/facegate/internal/face"
	"github.com/openvisage/facegate/internal/matcher"
)

// RecognizeHandler serves the identification endpoint.
type RecognizeHandler struct {
	engine Identifier
}

// NewRecognizeHandler creates a new recognize handler.
func NewRecognizeHandler(engine Identifier) *RecognizeHandler {
	return &RecognizeHandler{engine: engine}
}

// recognizeRequest is the identification request body.
type recognizeRequest struct {
	Image string `json:"image"`
}

// Recognize identifies the face in the submitted image against all
// enrolled users and reports the matched username, if any.
func (h *RecognizeHandler) Recognize(w http.ResponseWriter, r *http.Request) {
	slog.Info("recognize endpoint called")

	var req recognizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if req.Image == "" {
		respondError(w, http.StatusBadRequest, "Image required")
		return
	}

	probe, err := face.DecodePayload(req.Image)
	if err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("Error processing image: %v", err))
		return
	}

	result, err := h.engine.Identify(r.Context(), probe)
	switch {
	case errors.Is(err, matcher.ErrNoFace):
		respondJSON(w, http.StatusNotFound, map[string]string{
			"status": "fail",
			"error":  "No face detected",
		})
		return
	case errors.Is(err, face.ErrDecode):
		respondError(w, http.StatusBadRequest, fmt.Sprintf("Error processing image: %v", err))
		return
	case err != nil:
		slog.Error("identification scan failed", "error", err)
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if !result.Matched {
		respondJSON(w, http.StatusNotFound, map[string]string{
			"status": "fail",
			"error":  "User not recognized",
		})
		return
	}

	slog.Info("user recognized", "user", sanitizeForLog(result.UserName))
	respondJSON(w, http.StatusOK, map[string]string{
		"status":   "success",
		"userName": result.UserName,
	})
}
