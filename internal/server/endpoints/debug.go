package endpoints

import (
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdfstruct/pdfstruct/internal/api"
	"github.com/pdfstruct/pdfstruct/internal/extract"
	"github.com/pdfstruct/pdfstruct/internal/svcctx"
)

// Span dump limits: enough to see what the classifier sees without paging
// through a whole book.
const (
	debugDefaultPages = 2
	debugDefaultSpans = 50
)

// DebugSpansRequest is the body of POST /api/pdf/debug-spans.
type DebugSpansRequest struct {
	URL      string `json:"url"`
	MaxPages int    `json:"maxPages"`
	MaxSpans int    `json:"maxSpans"`
}

// DebugSpansResponse lists raw spans for threshold tuning.
type DebugSpansResponse struct {
	Spans []extract.SpanDebug `json:"spans"`
}

// DebugSpansEndpoint handles POST /api/pdf/debug-spans. Not intended for
// production traffic.
type DebugSpansEndpoint struct{}

func (e *DebugSpansEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/pdf/debug-spans", e.handler
}

func (e *DebugSpansEndpoint) RequiresPipeline() bool { return true }

// handler godoc
//
//	@Summary		Dump raw text spans
//	@Description	Returns span text, font, size, and position for the first pages, for threshold tuning
//	@Tags			pdf
//	@Accept			json
//	@Produce		json
//	@Param			request	body		DebugSpansRequest	true	"Debug request"
//	@Success		200		{object}	DebugSpansResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		415		{object}	ErrorResponse
//	@Failure		502		{object}	ErrorResponse
//	@Router			/api/pdf/debug-spans [post]
func (e *DebugSpansEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	var req DebugSpansRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.URL == "" {
		writeError(w, http.StatusBadRequest, "url is required")
		return
	}
	if req.MaxPages <= 0 {
		req.MaxPages = debugDefaultPages
	}
	if req.MaxSpans <= 0 {
		req.MaxSpans = debugDefaultSpans
	}

	ctx := r.Context()
	path, err := svcctx.FetcherFrom(ctx).Download(ctx, req.URL)
	if err != nil {
		writePipelineError(w, &extract.ResourceFetchError{URL: req.URL, Err: err})
		return
	}
	defer os.Remove(path)

	spans, err := svcctx.PipelineFrom(ctx).DebugSpans(path, req.MaxPages, req.MaxSpans)
	if err != nil {
		writePipelineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, DebugSpansResponse{Spans: spans})
}

func (e *DebugSpansEndpoint) Command(getServerURL func() string) *cobra.Command {
	var req DebugSpansRequest

	cmd := &cobra.Command{
		Use:   "debug-spans",
		Short: "Dump raw text spans for threshold tuning",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp DebugSpansResponse
			if err := client.Post(cmd.Context(), "/api/pdf/debug-spans", req, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}

	cmd.Flags().StringVar(&req.URL, "url", "", "URL of the PDF (required)")
	cmd.Flags().IntVar(&req.MaxPages, "pages", debugDefaultPages, "Pages to dump")
	cmd.Flags().IntVar(&req.MaxSpans, "spans", debugDefaultSpans, "Spans per page")
	cmd.MarkFlagRequired("url")

	return cmd
}
