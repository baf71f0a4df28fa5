package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/openvisage/facegate/internal/audit"
	"github.com/openvisage/facegate/internal/matcher"
	"github.com/openvisage/facegate/internal/store"
)

// mockUserStore is an in-memory UserStore with error injection.
type mockUserStore struct {
	users  []store.User
	nextID int64

	InsertError error
	ListError   error
	DeleteError error
}

func newMockUserStore() *mockUserStore {
	return &mockUserStore{nextID: 1}
}

func (m *mockUserStore) Insert(_ context.Context, name, email, password, image string) (int64, error) {
	if m.InsertError != nil {
		return 0, m.InsertError
	}
	id := m.nextID
	m.nextID++
	m.users = append(m.users, store.User{ID: id, Name: name, Email: email, Password: password, Image: image})
	return id, nil
}

func (m *mockUserStore) ListAll(context.Context) ([]store.User, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	return m.users, nil
}

func (m *mockUserStore) DeleteByID(_ context.Context, id int64) error {
	if m.DeleteError != nil {
		return m.DeleteError
	}
	for i, u := range m.users {
		if u.ID == id {
			m.users = append(m.users[:i], m.users[i+1:]...)
			return nil
		}
	}
	return nil
}

// mockHistory is an in-memory History with error injection.
type mockHistory struct {
	entries    []audit.Entry
	lastLogins map[string]string

	ReadError error
}

func newMockHistory() *mockHistory {
	return &mockHistory{lastLogins: make(map[string]string)}
}

func (m *mockHistory) ReadRecent(limit int) ([]audit.Entry, error) {
	if m.ReadError != nil {
		return nil, m.ReadError
	}
	entries := m.entries
	if limit > 0 && len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}
	return entries, nil
}

func (m *mockHistory) LastLogins() map[string]string {
	return m.lastLogins
}

// mockIdentifier returns a fixed result or error.
type mockIdentifier struct {
	result matcher.Result
	err    error
}

func (m *mockIdentifier) Identify(context.Context, []byte) (matcher.Result, error) {
	return m.result, m.err
}

// requestWithChiParams creates a request with chi URL parameters.
func requestWithChiParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// parseJSONResponse parses a JSON response body into the target type.
func parseJSONResponse(t *testing.T, recorder *httptest.ResponseRecorder, target any) {
	t.Helper()
	if err := json.Unmarshal(recorder.Body.Bytes(), target); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nBody: %s", err, recorder.Body.String())
	}
}

// assertStatusCode checks if the response has the expected status code.
func assertStatusCode(t *testing.T, recorder *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if recorder.Code != expected {
		t.Errorf("expected status %d, got %d\nBody: %s", expected, recorder.Code, recorder.Body.String())
	}
}

// assertJSONError checks if the response is a JSON error with the expected message.
func assertJSONError(t *testing.T, recorder *httptest.ResponseRecorder, expectedMessage string) {
	t.Helper()
	var result map[string]string
	if err := json.Unmarshal(recorder.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse error response: %v\nBody: %s", err, recorder.Body.String())
	}
	if result["error"] != expectedMessage {
		t.Errorf("expected error '%s', got '%s'", expectedMessage, result["error"])
	}
}
