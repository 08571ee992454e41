// Package endpoints implements the HTTP API surface. Each endpoint is both
// a route and a CLI command, registered through the api.Registry.
package endpoints

import (
	"encoding/json"
	"net/http"

	"github.com/pdfstruct/pdfstruct/internal/api"
	"github.com/pdfstruct/pdfstruct/internal/extract"
)

// All returns every endpoint the server exposes.
func All() []api.Endpoint {
	return []api.Endpoint{
		&HealthEndpoint{},
		&ExtractStructureEndpoint{},
		&ExtractHeadingsEndpoint{},
		&DebugSpansEndpoint{},
		&ParseRemoteEndpoint{},
		&SwaggerSpecEndpoint{},
		&SwaggerUIEndpoint{},
	}
}

// ErrorResponse is the standard error body.
type ErrorResponse struct {
	Error  string `json:"error"`
	Status int    `json:"status"`
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg, Status: status})
}

// writePipelineError classifies a pipeline error into its HTTP status and
// public message.
func writePipelineError(w http.ResponseWriter, err error) {
	status, msg := extract.HTTPStatus(err)
	writeError(w, status, msg)
}

// decodeJSON reads a JSON request body into v.
func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}
