// Package request issues HTTP calls against a configured FHIR base URL and
// persists response metadata and body to disk so request/response pairs can
// be inspected after a connectathon run.
package request

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/samply/golang-fhir-models/fhir-models/fhir"

	"github.com/notekit/notekit/internal/fhirconfig"
	"github.com/notekit/notekit/pkg/fhirmodels"
)

// Spec describes one HTTP call. It exists only for the duration of one
// Execute invocation.
type Spec struct {
	Method   string
	Path     string
	BodyFile string
	Headers  map[string]string
	Purpose  string
	// ConfigName picks a stored server configuration by name; empty means
	// auto-select per the store's selection rules.
	ConfigName string
	// OutDir receives response-metadata.json and response-body.*; empty
	// means the current working directory.
	OutDir string
	// StartDir is where project-root discovery begins; empty means the
	// current working directory.
	StartDir string
}

// Result reports a completed call and where its artifacts were written.
type Result struct {
	Config         *fhirconfig.Config
	URL            string
	Status         int
	RequestID      string
	DurationMillis int64
	MetadataPath   string
	BodyPath       string
}

// RemoteError signals that the request was executed but the server rejected
// it. The response artifacts are already on disk when it is returned, so
// operators can inspect the failure.
type RemoteError struct {
	Status int
	URL    string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("server returned %d %s for %s", e.Status, http.StatusText(e.Status), e.URL)
}

// Executor issues requests using stored server configurations.
type Executor struct {
	// Client is used as-is. The zero value enforces no timeout: a hung
	// server blocks the executor, which is the documented behavior of this
	// harness (no timeouts, no retries).
	Client *http.Client
	// ConfigDirName is the project-root sentinel; empty means
	// fhirconfig.DefaultDirName.
	ConfigDirName string
	Logger        zerolog.Logger
}

type metadataTiming struct {
	StartedAt      string `json:"startedAt"`
	CompletedAt    string `json:"completedAt"`
	DurationMillis int64  `json:"durationMillis"`
}

type metadataFile struct {
	Timestamp  string            `json:"timestamp"`
	Method     string            `json:"method"`
	URL        string            `json:"url"`
	Status     int               `json:"status"`
	StatusText string            `json:"statusText"`
	RequestID  string            `json:"requestId"`
	Purpose    string            `json:"purpose,omitempty"`
	Headers    map[string]string `json:"headers"`
	Timing     metadataTiming    `json:"timing"`
}

// Execute locates the project root, selects a configuration, performs the
// call and writes response-metadata.json plus response-body.json (or .txt
// when the body is not JSON). A status >= 400 still writes both artifacts
// before returning a *RemoteError.
func (x *Executor) Execute(ctx context.Context, spec Spec) (*Result, error) {
	if spec.Method == "" {
		return nil, fmt.Errorf("method is required")
	}
	if spec.Path == "" {
		return nil, fmt.Errorf("path is required")
	}

	startDir := spec.StartDir
	if startDir == "" {
		startDir = "."
	}
	dirName := x.ConfigDirName
	if dirName == "" {
		dirName = fhirconfig.DefaultDirName
	}
	root, err := fhirconfig.FindProjectRoot(startDir, dirName)
	if err != nil {
		return nil, err
	}
	cfg, err := fhirconfig.NewStore(root, dirName).Select(spec.ConfigName)
	if err != nil {
		return nil, err
	}
	x.Logger.Info().Str("config", cfg.Name).Str("fhirBaseUrl", cfg.FHIRBaseURL).Msg("using server configuration")

	var body io.Reader
	if spec.BodyFile != "" {
		path := spec.BodyFile
		if !filepath.IsAbs(path) {
			path = filepath.Join(root, path)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read body file: %w", err)
		}
		if !json.Valid(data) {
			return nil, fmt.Errorf("body file %s is not valid JSON", path)
		}
		body = bytes.NewReader(data)
	}

	url := strings.TrimRight(cfg.FHIRBaseURL, "/") + "/" + strings.TrimLeft(spec.Path, "/")
	req, err := http.NewRequestWithContext(ctx, strings.ToUpper(spec.Method), url, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	requestID := uuid.New().String()
	req.Header.Set("Accept", fhirmodels.MimeFHIRJSON)
	req.Header.Set("X-Request-ID", requestID)
	for k, v := range spec.Headers {
		req.Header.Set(k, v)
	}
	if body != nil {
		req.Header.Set("Content-Type", fhirmodels.MimeFHIRJSON)
	}
	if cfg.Mode != fhirconfig.ModeOpen && cfg.AccessToken != "" {
		if info := fhirconfig.InspectToken(cfg.AccessToken); info.Expired {
			x.Logger.Warn().Time("expiredAt", info.ExpiresAt).Msg("access token is expired; the server will likely reject this request")
		}
		req.Header.Set("Authorization", "Bearer "+cfg.AccessToken)
	}

	client := x.Client
	if client == nil {
		client = &http.Client{}
	}

	started := time.Now()
	resp, err := client.Do(req)
	completed := time.Now()
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	outDir := spec.OutDir
	if outDir == "" {
		outDir = "."
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory %s: %w", outDir, err)
	}

	result := &Result{
		Config:         cfg,
		URL:            url,
		Status:         resp.StatusCode,
		RequestID:      requestID,
		DurationMillis: completed.Sub(started).Milliseconds(),
	}

	bodyPath, bodyOut := renderBody(outDir, respBody)
	if err := os.WriteFile(bodyPath, bodyOut, 0o644); err != nil {
		return nil, fmt.Errorf("write response body: %w", err)
	}
	result.BodyPath = bodyPath

	headers := make(map[string]string, len(resp.Header))
	for k, vals := range resp.Header {
		headers[k] = strings.Join(vals, ", ")
	}
	meta := metadataFile{
		Timestamp:  completed.Format(time.RFC3339),
		Method:     req.Method,
		URL:        url,
		Status:     resp.StatusCode,
		StatusText: http.StatusText(resp.StatusCode),
		RequestID:  requestID,
		Purpose:    spec.Purpose,
		Headers:    headers,
		Timing: metadataTiming{
			StartedAt:      started.Format(time.RFC3339Nano),
			CompletedAt:    completed.Format(time.RFC3339Nano),
			DurationMillis: result.DurationMillis,
		},
	}
	metaOut, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal response metadata: %w", err)
	}
	result.MetadataPath = filepath.Join(outDir, "response-metadata.json")
	if err := os.WriteFile(result.MetadataPath, append(metaOut, '\n'), 0o644); err != nil {
		return nil, fmt.Errorf("write response metadata: %w", err)
	}

	x.Logger.Info().
		Str("method", req.Method).
		Str("url", url).
		Int("status", resp.StatusCode).
		Int64("durationMillis", result.DurationMillis).
		Str("requestId", requestID).
		Msg("request executed")

	if resp.StatusCode >= 400 {
		x.logOperationOutcome(respBody)
		return result, &RemoteError{Status: resp.StatusCode, URL: url}
	}
	return result, nil
}

// renderBody decides the body artifact path and contents: pretty-printed
// JSON when the body parses, the opaque bytes with a .txt extension when it
// does not.
func renderBody(outDir string, body []byte) (string, []byte) {
	var parsed interface{}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return filepath.Join(outDir, "response-body.txt"), body
	}
	pretty, err := json.MarshalIndent(parsed, "", "  ")
	if err != nil {
		return filepath.Join(outDir, "response-body.txt"), body
	}
	return filepath.Join(outDir, "response-body.json"), append(pretty, '\n')
}

// logOperationOutcome surfaces FHIR OperationOutcome diagnostics from error
// responses; anything else is left to the body artifact.
func (x *Executor) logOperationOutcome(body []byte) {
	outcome, err := fhir.UnmarshalOperationOutcome(body)
	if err != nil {
		return
	}
	for _, issue := range outcome.Issue {
		evt := x.Logger.Error().Str("severity", issue.Severity.String()).Str("code", issue.Code.String())
		if issue.Diagnostics != nil {
			evt = evt.Str("diagnostics", *issue.Diagnostics)
		}
		evt.Msg("server reported issue")
	}
}
