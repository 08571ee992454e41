package endpoints

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pdfstruct/pdfstruct/internal/fetch"
	"github.com/pdfstruct/pdfstruct/internal/remoteparse"
	"github.com/pdfstruct/pdfstruct/internal/svcctx"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// do runs a handler against a request carrying the given services.
func do(t *testing.T, handler http.HandlerFunc, method, target, body string, services *svcctx.Services) *httptest.ResponseRecorder {
	t.Helper()

	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rdr)
	if services != nil {
		req = req.WithContext(svcctx.WithServices(req.Context(), services))
	}

	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var er ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&er); err != nil {
		t.Fatalf("failed to decode error body: %v", err)
	}
	return er
}

func TestHealthEndpoint(t *testing.T) {
	ep := &HealthEndpoint{}

	t.Run("no_services", func(t *testing.T) {
		rec := do(t, ep.handler, "GET", "/health", "", nil)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
		}

		var resp HealthResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp.Status != "ok" {
			t.Errorf("Status = %q, want %q", resp.Status, "ok")
		}
		if !resp.Capabilities["text_layer"] {
			t.Error("text_layer should always be available")
		}
		if !resp.Capabilities["whitespace"] {
			t.Error("whitespace should always be available")
		}
		if resp.Capabilities["layout_detector"] {
			t.Error("layout_detector should be unavailable without services")
		}
		if resp.Capabilities["remote_parser"] {
			t.Error("remote_parser should be unavailable without services")
		}
	})

	t.Run("remote_parser_configured", func(t *testing.T) {
		services := &svcctx.Services{
			RemoteParser: remoteparse.New(remoteparse.Config{APIKey: "sk-test"}, testLogger()),
		}
		rec := do(t, ep.handler, "GET", "/health", "", services)

		var resp HealthResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if !resp.Capabilities["remote_parser"] {
			t.Error("remote_parser should be available with an API key")
		}
	})
}

func TestExtractStructureEndpoint_Validation(t *testing.T) {
	ep := &ExtractStructureEndpoint{}

	t.Run("missing_url", func(t *testing.T) {
		rec := do(t, ep.handler, "POST", "/api/pdf/extract-structure", `{}`, nil)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
		}
		er := decodeError(t, rec)
		if er.Status != http.StatusBadRequest {
			t.Errorf("body status = %d, want %d", er.Status, http.StatusBadRequest)
		}
		if er.Error == "" {
			t.Error("error message should not be empty")
		}
	})

	t.Run("malformed_body", func(t *testing.T) {
		rec := do(t, ep.handler, "POST", "/api/pdf/extract-structure", `{not json`, nil)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
		}
	})
}

func TestExtractHeadingsEndpoint_Validation(t *testing.T) {
	ep := &ExtractHeadingsEndpoint{}

	rec := do(t, ep.handler, "POST", "/api/pdf/extract-headings", `{"reference":{"page":0}}`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestExtractHeadingsEndpoint_FetchFailure(t *testing.T) {
	// Server that always 404s: the download fails before the pipeline runs.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	services := &svcctx.Services{
		Fetcher: fetch.New(5*time.Second, testLogger()),
	}

	ep := &ExtractHeadingsEndpoint{}
	rec := do(t, ep.handler, "POST", "/api/pdf/extract-headings",
		`{"url":"`+srv.URL+`/missing.pdf"}`, services)

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadGateway)
	}
	er := decodeError(t, rec)
	if er.Status != http.StatusBadGateway {
		t.Errorf("body status = %d, want %d", er.Status, http.StatusBadGateway)
	}
}

func TestDebugSpansEndpoint_Validation(t *testing.T) {
	ep := &DebugSpansEndpoint{}

	rec := do(t, ep.handler, "POST", "/api/pdf/debug-spans", `{}`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestParseRemoteEndpoint_NotConfigured(t *testing.T) {
	ep := &ParseRemoteEndpoint{}

	t.Run("no_parser", func(t *testing.T) {
		rec := do(t, ep.handler, "POST", "/api/pdf/parse-remote",
			`{"url":"http://example.com/doc.pdf"}`, &svcctx.Services{})

		if rec.Code != http.StatusNotImplemented {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotImplemented)
		}
	})

	t.Run("parser_without_key", func(t *testing.T) {
		services := &svcctx.Services{
			RemoteParser: remoteparse.New(remoteparse.Config{}, testLogger()),
		}
		rec := do(t, ep.handler, "POST", "/api/pdf/parse-remote",
			`{"url":"http://example.com/doc.pdf"}`, services)

		if rec.Code != http.StatusNotImplemented {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotImplemented)
		}
	})

	t.Run("missing_url", func(t *testing.T) {
		rec := do(t, ep.handler, "POST", "/api/pdf/parse-remote", `{}`, nil)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
		}
	})
}

func TestSwaggerSpecEndpoint(t *testing.T) {
	t.Run("missing_spec", func(t *testing.T) {
		ep := &SwaggerSpecEndpoint{SpecPath: filepath.Join(t.TempDir(), "nope.json")}
		rec := do(t, ep.handler, "GET", "/swagger.json", "", nil)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
		}
	})

	t.Run("serves_spec", func(t *testing.T) {
		specPath := filepath.Join(t.TempDir(), "swagger.json")
		if err := os.WriteFile(specPath, []byte(`{"openapi":"3.0.0"}`), 0o644); err != nil {
			t.Fatal(err)
		}

		ep := &SwaggerSpecEndpoint{SpecPath: specPath}
		rec := do(t, ep.handler, "GET", "/swagger.json", "", nil)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
		}
		if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q, want application/json", ct)
		}
		if cors := rec.Header().Get("Access-Control-Allow-Origin"); cors != "*" {
			t.Errorf("Access-Control-Allow-Origin = %q, want *", cors)
		}
		if !strings.Contains(rec.Body.String(), "openapi") {
			t.Error("response should contain the spec content")
		}
	})
}

func TestSwaggerUIEndpoint(t *testing.T) {
	ep := &SwaggerUIEndpoint{}
	rec := do(t, ep.handler, "GET", "/swagger", "", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/html" {
		t.Errorf("Content-Type = %q, want text/html", ct)
	}
	if !strings.Contains(rec.Body.String(), "swagger-ui") {
		t.Error("response should embed the UI")
	}
}

func TestAll_RoutesUnique(t *testing.T) {
	seen := make(map[string]bool)
	for _, ep := range All() {
		method, path, handler := ep.Route()
		if handler == nil {
			t.Errorf("%s %s has a nil handler", method, path)
		}
		key := method + " " + path
		if seen[key] {
			t.Errorf("duplicate route %s", key)
		}
		seen[key] = true
	}
	if len(seen) != 7 {
		t.Errorf("route count = %d, want 7", len(seen))
	}
}

func TestAll_CommandsHaveUse(t *testing.T) {
	for _, ep := range All() {
		cmd := ep.Command(func() string { return "http://localhost:8080" })
		if cmd == nil {
			t.Fatal("Command() returned nil")
		}
		if cmd.Use == "" {
			t.Error("command has empty Use")
		}
	}
}
