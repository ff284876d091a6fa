package request

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/notekit/notekit/internal/fhirconfig"
)

// newProjectRoot lays out a temp project root with one saved configuration
// pointing at the given base URL.
func newProjectRoot(t *testing.T, baseURL, mode, token string) string {
	t.Helper()
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, fhirconfig.DefaultDirName), 0o755); err != nil {
		t.Fatal(err)
	}
	store := fhirconfig.NewStore(root, fhirconfig.DefaultDirName)
	raw := map[string]interface{}{
		"name":        "test",
		"fhirBaseUrl": baseURL,
		"mode":        mode,
	}
	if token != "" {
		raw["accessToken"] = token
	}
	if _, err := store.Save(raw); err != nil {
		t.Fatalf("save config: %v", err)
	}
	return root
}

func newExecutor() *Executor {
	return &Executor{Logger: zerolog.Nop()}
}

func TestExecute_SuccessWritesArtifacts(t *testing.T) {
	var gotAuth, gotAccept, gotRequestID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotAccept = r.Header.Get("Accept")
		gotRequestID = r.Header.Get("X-Request-ID")
		w.Header().Set("Content-Type", "application/fhir+json")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"resourceType":"DocumentReference","id":"created-1"}`))
	}))
	defer srv.Close()

	root := newProjectRoot(t, srv.URL, fhirconfig.ModeManualToken, "secret-token")
	outDir := t.TempDir()

	result, err := newExecutor().Execute(context.Background(), Spec{
		Method:   "POST",
		Path:     "/DocumentReference",
		Purpose:  "create note",
		OutDir:   outDir,
		StartDir: root,
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result.Status != http.StatusCreated {
		t.Errorf("status = %d", result.Status)
	}
	if gotAuth != "Bearer secret-token" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotAccept != "application/fhir+json" {
		t.Errorf("Accept = %q", gotAccept)
	}
	if gotRequestID == "" || gotRequestID != result.RequestID {
		t.Errorf("X-Request-ID = %q, result = %q", gotRequestID, result.RequestID)
	}

	if filepath.Base(result.BodyPath) != "response-body.json" {
		t.Errorf("body artifact = %s", result.BodyPath)
	}
	body, err := os.ReadFile(result.BodyPath)
	if err != nil {
		t.Fatalf("read body artifact: %v", err)
	}
	var parsed map[string]interface{}
	if err := json.Unmarshal(body, &parsed); err != nil {
		t.Fatalf("body artifact is not valid JSON: %v", err)
	}
	if parsed["id"] != "created-1" {
		t.Errorf("body artifact id = %v", parsed["id"])
	}

	meta, err := os.ReadFile(result.MetadataPath)
	if err != nil {
		t.Fatalf("read metadata artifact: %v", err)
	}
	var m map[string]interface{}
	if err := json.Unmarshal(meta, &m); err != nil {
		t.Fatalf("metadata artifact is not valid JSON: %v", err)
	}
	if m["method"] != "POST" || m["status"] != float64(http.StatusCreated) {
		t.Errorf("metadata method/status = %v/%v", m["method"], m["status"])
	}
	if m["purpose"] != "create note" {
		t.Errorf("metadata purpose = %v", m["purpose"])
	}
	if m["requestId"] != result.RequestID {
		t.Errorf("metadata requestId = %v", m["requestId"])
	}
	timing, ok := m["timing"].(map[string]interface{})
	if !ok || timing["startedAt"] == "" || timing["completedAt"] == "" {
		t.Errorf("metadata timing = %v", m["timing"])
	}
}

func TestExecute_ErrorStatusStillWritesArtifacts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/fhir+json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"resourceType":"OperationOutcome","issue":[{"severity":"error","code":"not-found","diagnostics":"Patient/none is unknown"}]}`))
	}))
	defer srv.Close()

	root := newProjectRoot(t, srv.URL, fhirconfig.ModeOpen, "")
	outDir := t.TempDir()

	result, err := newExecutor().Execute(context.Background(), Spec{
		Method:   "GET",
		Path:     "Patient/none",
		OutDir:   outDir,
		StartDir: root,
	})
	if err == nil {
		t.Fatal("expected RemoteError for 404")
	}
	var remote *RemoteError
	if !errors.As(err, &remote) {
		t.Fatalf("expected *RemoteError, got %T: %v", err, err)
	}
	if remote.Status != http.StatusNotFound {
		t.Errorf("RemoteError status = %d", remote.Status)
	}
	if result == nil {
		t.Fatal("result must accompany a RemoteError")
	}
	for _, path := range []string{result.BodyPath, result.MetadataPath} {
		if _, statErr := os.Stat(path); statErr != nil {
			t.Errorf("artifact %s missing: %v", path, statErr)
		}
	}
}

func TestExecute_NonJSONBodyWritesTxt(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("plain text, not JSON"))
	}))
	defer srv.Close()

	root := newProjectRoot(t, srv.URL, fhirconfig.ModeOpen, "")
	result, err := newExecutor().Execute(context.Background(), Spec{
		Method:   "GET",
		Path:     "metadata",
		OutDir:   t.TempDir(),
		StartDir: root,
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if filepath.Base(result.BodyPath) != "response-body.txt" {
		t.Errorf("body artifact = %s", result.BodyPath)
	}
	data, err := os.ReadFile(result.BodyPath)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "plain text, not JSON" {
		t.Errorf("body artifact = %q", data)
	}
}

func TestExecute_OpenModeSendsNoAuthorization(t *testing.T) {
	var gotAuth string
	sawRequest := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawRequest = true
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	// Token present but mode open: the header must still be omitted.
	root := newProjectRoot(t, srv.URL, fhirconfig.ModeOpen, "ignored-token")
	if _, err := newExecutor().Execute(context.Background(), Spec{
		Method:   "GET",
		Path:     "metadata",
		OutDir:   t.TempDir(),
		StartDir: root,
	}); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !sawRequest {
		t.Fatal("server never saw the request")
	}
	if gotAuth != "" {
		t.Errorf("Authorization sent in open mode: %q", gotAuth)
	}
}

func TestExecute_BodyFileSentWithContentType(t *testing.T) {
	var gotContentType, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		data, _ := io.ReadAll(r.Body)
		gotBody = string(data)
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	root := newProjectRoot(t, srv.URL, fhirconfig.ModeOpen, "")
	bodyPath := filepath.Join(root, "doc.json")
	payload := `{"resourceType":"DocumentReference","status":"current"}`
	if err := os.WriteFile(bodyPath, []byte(payload), 0o644); err != nil {
		t.Fatal(err)
	}

	// Relative body paths resolve against the project root.
	if _, err := newExecutor().Execute(context.Background(), Spec{
		Method:   "POST",
		Path:     "DocumentReference",
		BodyFile: "doc.json",
		OutDir:   t.TempDir(),
		StartDir: root,
	}); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if gotContentType != "application/fhir+json" {
		t.Errorf("Content-Type = %q", gotContentType)
	}
	if gotBody != payload {
		t.Errorf("body = %q", gotBody)
	}
}

func TestExecute_InvalidBodyFileFailsBeforeHTTP(t *testing.T) {
	sawRequest := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawRequest = true
	}))
	defer srv.Close()

	root := newProjectRoot(t, srv.URL, fhirconfig.ModeOpen, "")
	bodyPath := filepath.Join(root, "broken.json")
	if err := os.WriteFile(bodyPath, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := newExecutor().Execute(context.Background(), Spec{
		Method:   "POST",
		Path:     "DocumentReference",
		BodyFile: "broken.json",
		OutDir:   t.TempDir(),
		StartDir: root,
	})
	if err == nil || !strings.Contains(err.Error(), "not valid JSON") {
		t.Fatalf("expected invalid-JSON error, got %v", err)
	}
	if sawRequest {
		t.Error("request was sent despite invalid body file")
	}
}

func TestExecute_AmbiguousConfigFails(t *testing.T) {
	root := newProjectRoot(t, "https://one.example.org/fhir", fhirconfig.ModeOpen, "")
	store := fhirconfig.NewStore(root, fhirconfig.DefaultDirName)
	if _, err := store.Save(map[string]interface{}{
		"name":        "second",
		"fhirBaseUrl": "https://two.example.org/fhir",
		"mode":        fhirconfig.ModeOpen,
	}); err != nil {
		t.Fatal(err)
	}

	_, err := newExecutor().Execute(context.Background(), Spec{
		Method:   "GET",
		Path:     "metadata",
		OutDir:   t.TempDir(),
		StartDir: root,
	})
	if !errors.Is(err, fhirconfig.ErrAmbiguousConfig) {
		t.Fatalf("expected ErrAmbiguousConfig, got %v", err)
	}
}

func TestExecute_ExplicitConfigName(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	root := newProjectRoot(t, "https://unreachable.example.org/fhir", fhirconfig.ModeOpen, "")
	store := fhirconfig.NewStore(root, fhirconfig.DefaultDirName)
	if _, err := store.Save(map[string]interface{}{
		"name":        "live",
		"fhirBaseUrl": srv.URL,
		"mode":        fhirconfig.ModeOpen,
	}); err != nil {
		t.Fatal(err)
	}

	result, err := newExecutor().Execute(context.Background(), Spec{
		Method:     "GET",
		Path:       "metadata",
		ConfigName: "live",
		OutDir:     t.TempDir(),
		StartDir:   root,
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result.Config.Name != "live" {
		t.Errorf("selected config = %s", result.Config.Name)
	}
}

func TestExecute_RequiresMethodAndPath(t *testing.T) {
	if _, err := newExecutor().Execute(context.Background(), Spec{Path: "metadata"}); err == nil {
		t.Error("expected error for missing method")
	}
	if _, err := newExecutor().Execute(context.Background(), Spec{Method: "GET"}); err == nil {
		t.Error("expected error for missing path")
	}
}
