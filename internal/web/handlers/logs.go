package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/openvisage/facegate/internal/audit"
	"github.com/openvisage/facegate/internal/logging"
)

// diagnosticTail caps how many lines/entries the diagnostic endpoints return.
const diagnosticTail = 100

// LogsHandler serves the read-only diagnostics endpoints.
type LogsHandler struct {
	history History
	logPath string
}

// NewLogsHandler creates a new logs handler reading the login history and
// the process log at logPath.
func NewLogsHandler(history History, logPath string) *LogsHandler {
	return &LogsHandler{history: history, logPath: logPath}
}

// LoginLogs returns up to the last 100 login history entries.
func (h *LogsHandler) LoginLogs(w http.ResponseWriter, r *http.Request) {
	entries, err := h.history.ReadRecent(diagnosticTail)
	if err != nil {
		respondJSON(w, http.StatusOK, map[string]any{
			"logs":  []audit.Entry{},
			"error": err.Error(),
		})
		return
	}
	if entries == nil {
		entries = []audit.Entry{}
	}
	respondJSON(w, http.StatusOK, map[string]any{"logs": entries})
}

// ServerLogs returns up to the last 100 lines of the process log.
func (h *LogsHandler) ServerLogs(w http.ResponseWriter, r *http.Request) {
	lines, err := logging.Tail(h.logPath, diagnosticTail)
	if err != nil {
		respondJSON(w, http.StatusOK, map[string]string{
			"logs": fmt.Sprintf("Error reading log file: %v", err),
		})
		return
	}
	if len(lines) == 0 {
		respondJSON(w, http.StatusOK, map[string]string{"logs": "No logs found."})
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"logs": strings.Join(lines, "\n")})
}
