package endpoints

import (
	"net/http"

	"github.com/spf13/cobra"

	"github.com/pdfstruct/pdfstruct/internal/api"
	"github.com/pdfstruct/pdfstruct/internal/extract"
	"github.com/pdfstruct/pdfstruct/internal/svcctx"
)

// ExtractStructureRequest is the body of POST /api/pdf/extract-structure.
type ExtractStructureRequest struct {
	URL                string `json:"url"`
	UseOCR             bool   `json:"useOcr"`
	ExtractTables      bool   `json:"extractTables"`
	AddTableOfContents bool   `json:"addTableOfContents"`
	TOCStartPage       int    `json:"tocStartPage"`
	TOCEndPage         int    `json:"tocEndPage"`
}

// ExtractStructureEndpoint handles POST /api/pdf/extract-structure.
type ExtractStructureEndpoint struct{}

func (e *ExtractStructureEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/pdf/extract-structure", e.handler
}

func (e *ExtractStructureEndpoint) RequiresPipeline() bool { return true }

// handler godoc
//
//	@Summary		Extract document structure
//	@Description	Runs the full pipeline: headings, reading order, tables, and the assembled content tree
//	@Tags			pdf
//	@Accept			json
//	@Produce		json
//	@Param			request	body		ExtractStructureRequest	true	"Extraction request"
//	@Success		200		{object}	extract.Result
//	@Failure		400		{object}	ErrorResponse
//	@Failure		415		{object}	ErrorResponse
//	@Failure		502		{object}	ErrorResponse
//	@Failure		500		{object}	ErrorResponse
//	@Router			/api/pdf/extract-structure [post]
func (e *ExtractStructureEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	var req ExtractStructureRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.URL == "" {
		writeError(w, http.StatusBadRequest, "url is required")
		return
	}

	pipeline := svcctx.PipelineFrom(r.Context())
	res, err := pipeline.ExtractFromURL(r.Context(), req.URL, extract.Options{
		UseOCR:             req.UseOCR,
		ExtractTables:      req.ExtractTables,
		AddTableOfContents: req.AddTableOfContents,
		TOCStartPage:       req.TOCStartPage,
		TOCEndPage:         req.TOCEndPage,
	})
	if err != nil {
		writePipelineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

func (e *ExtractStructureEndpoint) Command(getServerURL func() string) *cobra.Command {
	var req ExtractStructureRequest

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract the full structure of a PDF",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var res extract.Result
			if err := client.Post(cmd.Context(), "/api/pdf/extract-structure", req, &res); err != nil {
				return err
			}
			return api.Output(res)
		},
	}

	cmd.Flags().StringVar(&req.URL, "url", "", "URL of the PDF to extract (required)")
	cmd.Flags().BoolVar(&req.UseOCR, "ocr", false, "Force the layout-detector path")
	cmd.Flags().BoolVar(&req.ExtractTables, "tables", false, "Extract tables")
	cmd.Flags().BoolVar(&req.AddTableOfContents, "toc", false, "Prepend a table of contents")
	cmd.Flags().IntVar(&req.TOCStartPage, "toc-start", 0, "First zero-based page for TOC headings")
	cmd.Flags().IntVar(&req.TOCEndPage, "toc-end", 0, "Last zero-based page for TOC headings (0 = unbounded)")
	cmd.MarkFlagRequired("url")

	return cmd
}
