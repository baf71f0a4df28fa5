// Package audit keeps the append-only record of login attempts.
//
// The log is a plain text file with one JSON object per line. Lines are
// only ever appended; a single O_APPEND write per entry is what keeps
// concurrent appends intact, no locking is involved.
package audit

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"
)

// Attempt outcomes.
const (
	StatusSuccess = "success"
	StatusFail    = "fail"
)

// UnknownUser is the username recorded for attempts that matched nobody.
const UnknownUser = "unknown"

// Entry is a single login attempt. Entries are immutable once written.
type Entry struct {
	Username  string `json:"username"`
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// NewEntry stamps an attempt with the current time in RFC 3339 UTC,
// which sorts lexicographically in chronological order.
func NewEntry(username, status string) Entry {
	return Entry{
		Username:  username,
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// Log is an append-only login history file.
type Log struct {
	path string
}

// NewLog creates a log backed by the file at path.
// The file is created on first append.
func NewLog(path string) *Log {
	return &Log{path: path}
}

// Append writes one entry to the end of the log. Failures are logged and
// swallowed: losing an audit line must never fail the login attempt that
// produced it.
func (l *Log) Append(e Entry) {
	if err := l.append(e); err != nil {
		slog.Error("failed to write login history", "error", err, "username", e.Username)
	}
}

func (l *Log) append(e Entry) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshaling entry: %w", err)
	}

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening login history: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("appending login history: %w", err)
	}
	return nil
}

// ReadAll returns every well-formed entry in file order.
// Malformed lines are skipped; a missing file yields an empty slice.
func (l *Log) ReadAll() ([]Entry, error) {
	f, err := os.Open(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening login history: %w", err)
	}
	defer f.Close()

	var entries []Entry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var e Entry
		if err := json.Unmarshal(line, &e); err != nil {
			continue // skip malformed lines rather than failing the read
		}
		entries = append(entries, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading login history: %w", err)
	}
	return entries, nil
}

// ReadRecent returns at most the last limit entries in file order.
func (l *Log) ReadRecent(limit int) ([]Entry, error) {
	entries, err := l.ReadAll()
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}
	return entries, nil
}

// LastLogins folds the whole log into a map of username to the latest
// timestamp seen for that username. Failed attempts count too; they only
// accumulate under the literal "unknown" username. On read failure the
// map is empty rather than the error propagating: presence data degrades
// gracefully instead of blocking the user list.
func (l *Log) LastLogins() map[string]string {
	lastLogins := make(map[string]string)

	entries, err := l.ReadAll()
	if err != nil {
		slog.Error("failed to read login history", "error", err)
		return lastLogins
	}

	for _, e := range entries {
		if e.Username == "" || e.Timestamp == "" {
			continue
		}
		// RFC 3339 timestamps sort lexicographically, no parsing needed.
		if prev, ok := lastLogins[e.Username]; !ok || e.Timestamp > prev {
			lastLogins[e.Username] = e.Timestamp
		}
	}
	return lastLogins
}
