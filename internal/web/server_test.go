package web

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/color"
	"image/jpeg"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/openvisage/facegate/internal/audit"
	"github.com/openvisage/facegate/internal/config"
	"github.com/openvisage/facegate/internal/face"
	"github.com/openvisage/facegate/internal/matcher"
	"github.com/openvisage/facegate/internal/store"
)

// testImage renders a distinct tiny JPEG per color.
func testImage(t *testing.T, c color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

// fakeExtractorServer answers /embed/face with canned encodings per image.
func fakeExtractorServer(t *testing.T, encodings map[string][]float32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		file, _, err := r.FormFile("file")
		if err != nil {
			http.Error(w, "missing file", http.StatusBadRequest)
			return
		}
		data, err := io.ReadAll(file)
		if err != nil {
			http.Error(w, "read failed", http.StatusInternalServerError)
			return
		}

		var faces []map[string]any
		if enc, ok := encodings[string(data)]; ok {
			faces = append(faces, map[string]any{
				"face_index": 0, "dim": len(enc), "embedding": enc, "det_score": 0.99,
			})
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"faces_count": len(faces), "faces": faces, "model": "buffalo_l",
		})
	}))
}

type testEnv struct {
	server  *Server
	users   *store.Users
	history *audit.Log
}

func setupEnv(t *testing.T, encodings map[string][]float32) *testEnv {
	t.Helper()

	extractor := fakeExtractorServer(t, encodings)
	t.Cleanup(extractor.Close)

	dir := t.TempDir()
	cfg := config.Load()
	cfg.Audit.Path = filepath.Join(dir, "login_history.log")
	cfg.Log.Path = filepath.Join(dir, "server.log")

	db, err := store.Open(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	users := store.NewUsers(db)
	history := audit.NewLog(cfg.Audit.Path)
	engine := matcher.NewEngine(users, face.NewClient(extractor.URL), history, cfg.Tuning.Recognition.DistanceThreshold)

	return &testEnv{
		server:  NewServer(cfg, engine, users, history),
		users:   users,
		history: history,
	}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	recorder := httptest.NewRecorder()
	e.server.Router().ServeHTTP(recorder, req)
	return recorder
}

func TestRegisterThenRecognize(t *testing.T) {
	aliceImg := testImage(t, color.White)
	encodings := map[string][]float32{
		string(aliceImg): {1, 0, 0},
	}
	env := setupEnv(t, encodings)

	payload := base64.StdEncoding.EncodeToString(aliceImg)
	recorder := env.do(t, "POST", "/api/register", map[string]string{
		"username": "alice", "password": "pw", "image": payload,
	})
	if recorder.Code != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d: %s", recorder.Code, recorder.Body.String())
	}

	recorder = env.do(t, "POST", "/api/recognize", map[string]string{"image": payload})
	if recorder.Code != http.StatusOK {
		t.Fatalf("recognize: expected 200, got %d: %s", recorder.Code, recorder.Body.String())
	}
	var resp map[string]string
	if err := json.Unmarshal(recorder.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp["status"] != "success" || resp["userName"] != "alice" {
		t.Errorf("unexpected recognize response: %v", resp)
	}

	entries, err := env.history.ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Username != "alice" || entries[0].Status != audit.StatusSuccess {
		t.Errorf("expected one success entry for alice, got %+v", entries)
	}
}

func TestRecognize_NoFace_NoAuditEntry(t *testing.T) {
	nofaceImg := testImage(t, color.Black)
	env := setupEnv(t, map[string][]float32{}) // extractor finds no faces anywhere

	recorder := env.do(t, "POST", "/api/recognize", map[string]string{
		"image": base64.StdEncoding.EncodeToString(nofaceImg),
	})
	if recorder.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", recorder.Code, recorder.Body.String())
	}
	var resp map[string]string
	if err := json.Unmarshal(recorder.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp["error"] != "No face detected" {
		t.Errorf("unexpected response: %v", resp)
	}

	entries, err := env.history.ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("no-face probe must not be audited, got %+v", entries)
	}
}

func TestRecognize_Stranger_AuditedAsUnknown(t *testing.T) {
	aliceImg := testImage(t, color.White)
	strangerImg := testImage(t, color.Black)
	encodings := map[string][]float32{
		string(aliceImg):    {1, 0, 0},
		string(strangerImg): {0, 1, 0},
	}
	env := setupEnv(t, encodings)

	env.do(t, "POST", "/api/register", map[string]string{
		"username": "alice", "password": "pw",
		"image": base64.StdEncoding.EncodeToString(aliceImg),
	})

	recorder := env.do(t, "POST", "/api/recognize", map[string]string{
		"image": base64.StdEncoding.EncodeToString(strangerImg),
	})
	if recorder.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", recorder.Code, recorder.Body.String())
	}

	entries, err := env.history.ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Username != audit.UnknownUser || entries[0].Status != audit.StatusFail {
		t.Errorf("expected one fail entry for unknown, got %+v", entries)
	}
}

func TestUsersList_IncludesLastLogin(t *testing.T) {
	aliceImg := testImage(t, color.White)
	encodings := map[string][]float32{
		string(aliceImg): {1, 0, 0},
	}
	env := setupEnv(t, encodings)

	payload := base64.StdEncoding.EncodeToString(aliceImg)
	env.do(t, "POST", "/api/register", map[string]string{
		"username": "alice", "password": "pw", "image": payload,
	})
	env.do(t, "POST", "/api/recognize", map[string]string{"image": payload})

	recorder := env.do(t, "GET", "/api/users", nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}
	var resp struct {
		Users []struct {
			ID        int64   `json:"id"`
			Name      string  `json:"name"`
			LastLogin *string `json:"lastLogin"`
		} `json:"users"`
	}
	if err := json.Unmarshal(recorder.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Users) != 1 || resp.Users[0].Name != "alice" {
		t.Fatalf("unexpected users: %+v", resp.Users)
	}
	if resp.Users[0].LastLogin == nil {
		t.Error("expected lastLogin to be set after a successful recognition")
	}
}

func TestDeleteUser_EndToEnd(t *testing.T) {
	env := setupEnv(t, map[string][]float32{})

	id, err := env.users.Insert(context.Background(), "alice", "", "pw", "aW1n")
	if err != nil {
		t.Fatal(err)
	}

	recorder := env.do(t, "DELETE", "/api/users/1", nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", recorder.Code, recorder.Body.String())
	}

	all, err := env.users.ListAll(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	for _, u := range all {
		if u.ID == id {
			t.Errorf("user %d should have been deleted", id)
		}
	}
}

func TestLoginLogsEndpoint(t *testing.T) {
	env := setupEnv(t, map[string][]float32{})
	env.history.Append(audit.NewEntry("alice", audit.StatusSuccess))

	recorder := env.do(t, "GET", "/api/login-logs", nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}
	var resp struct {
		Logs []audit.Entry `json:"logs"`
	}
	if err := json.Unmarshal(recorder.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Logs) != 1 || resp.Logs[0].Username != "alice" {
		t.Errorf("unexpected logs: %+v", resp.Logs)
	}
}
