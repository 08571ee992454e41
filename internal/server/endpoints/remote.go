package endpoints

import (
	"encoding/json"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdfstruct/pdfstruct/internal/api"
	"github.com/pdfstruct/pdfstruct/internal/extract"
	"github.com/pdfstruct/pdfstruct/internal/svcctx"
)

// ParseRemoteRequest is the body of POST /api/pdf/parse-remote.
type ParseRemoteRequest struct {
	URL    string `json:"url"`
	Prompt string `json:"prompt,omitempty"`
}

// ParseRemoteResponse carries the model's JSON output verbatim.
type ParseRemoteResponse struct {
	Result json.RawMessage `json:"result"`
}

// ParseRemoteEndpoint handles POST /api/pdf/parse-remote: the document goes
// to the remote multimodal parser as-is and its JSON comes back as-is.
type ParseRemoteEndpoint struct{}

func (e *ParseRemoteEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/pdf/parse-remote", e.handler
}

func (e *ParseRemoteEndpoint) RequiresPipeline() bool { return true }

// handler godoc
//
//	@Summary		Parse via the remote multimodal model
//	@Description	Uploads the document to the configured model and returns its structured JSON
//	@Tags			pdf
//	@Accept			json
//	@Produce		json
//	@Param			request	body		ParseRemoteRequest	true	"Remote parse request"
//	@Success		200		{object}	ParseRemoteResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		501		{object}	ErrorResponse
//	@Failure		502		{object}	ErrorResponse
//	@Router			/api/pdf/parse-remote [post]
func (e *ParseRemoteEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	var req ParseRemoteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.URL == "" {
		writeError(w, http.StatusBadRequest, "url is required")
		return
	}

	ctx := r.Context()
	parser := svcctx.RemoteParserFrom(ctx)
	if parser == nil || !parser.Available() {
		writePipelineError(w, &extract.ConfigurationError{Capability: "remote parser"})
		return
	}

	path, err := svcctx.FetcherFrom(ctx).Download(ctx, req.URL)
	if err != nil {
		writePipelineError(w, &extract.ResourceFetchError{URL: req.URL, Err: err})
		return
	}
	defer os.Remove(path)

	out, err := parser.Parse(ctx, path, req.Prompt)
	if err != nil {
		writePipelineError(w, &extract.ExtractionEngineError{Stage: "remote parse", Err: err})
		return
	}

	// Pass valid JSON through untouched; wrap anything else as a string.
	raw := json.RawMessage(out)
	if !json.Valid(raw) {
		raw, _ = json.Marshal(out)
	}
	writeJSON(w, http.StatusOK, ParseRemoteResponse{Result: raw})
}

func (e *ParseRemoteEndpoint) Command(getServerURL func() string) *cobra.Command {
	var req ParseRemoteRequest

	cmd := &cobra.Command{
		Use:   "parse-remote",
		Short: "Parse a PDF with the remote multimodal model",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp ParseRemoteResponse
			if err := client.Post(cmd.Context(), "/api/pdf/parse-remote", req, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}

	cmd.Flags().StringVar(&req.URL, "url", "", "URL of the PDF (required)")
	cmd.Flags().StringVar(&req.Prompt, "prompt", "", "Override the default structure prompt")
	cmd.MarkFlagRequired("url")

	return cmd
}
