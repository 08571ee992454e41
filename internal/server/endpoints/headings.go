package endpoints

import (
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdfstruct/pdfstruct/internal/api"
	"github.com/pdfstruct/pdfstruct/internal/extract"
	"github.com/pdfstruct/pdfstruct/internal/headings"
	"github.com/pdfstruct/pdfstruct/internal/svcctx"
)

// ExtractHeadingsRequest is the body of POST /api/pdf/extract-headings.
// When Reference is set, the reference-position strategy replaces the
// ratio strategy.
type ExtractHeadingsRequest struct {
	URL       string               `json:"url"`
	Reference *ReferenceWindowSpec `json:"reference,omitempty"`
}

// ReferenceWindowSpec is a vertical window known to contain headings;
// matching spans are collected from every page.
type ReferenceWindowSpec struct {
	YMin float64 `json:"yMin"`
	YMax float64 `json:"yMax"`
}

// ExtractHeadingsResponse is the headings-only result.
type ExtractHeadingsResponse struct {
	Headings []headings.Heading  `json:"headings"`
	TOC      []headings.TOCEntry `json:"toc"`
	Metadata extract.Metadata    `json:"metadata"`
}

// ExtractHeadingsEndpoint handles POST /api/pdf/extract-headings.
type ExtractHeadingsEndpoint struct{}

func (e *ExtractHeadingsEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/pdf/extract-headings", e.handler
}

func (e *ExtractHeadingsEndpoint) RequiresPipeline() bool { return true }

// handler godoc
//
//	@Summary		Extract headings only
//	@Description	Faster than full extraction; optionally uses a reference window instead of font-size ratios
//	@Tags			pdf
//	@Accept			json
//	@Produce		json
//	@Param			request	body		ExtractHeadingsRequest	true	"Headings request"
//	@Success		200		{object}	ExtractHeadingsResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		415		{object}	ErrorResponse
//	@Failure		502		{object}	ErrorResponse
//	@Router			/api/pdf/extract-headings [post]
func (e *ExtractHeadingsEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	var req ExtractHeadingsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.URL == "" {
		writeError(w, http.StatusBadRequest, "url is required")
		return
	}

	ctx := r.Context()
	path, err := svcctx.FetcherFrom(ctx).Download(ctx, req.URL)
	if err != nil {
		writePipelineError(w, &extract.ResourceFetchError{URL: req.URL, Err: err})
		return
	}
	defer os.Remove(path)

	pipeline := svcctx.PipelineFrom(ctx)

	var resp ExtractHeadingsResponse
	if req.Reference != nil {
		hs, err := pipeline.HeadingsWithReference(ctx, path,
			req.Reference.YMin, req.Reference.YMax)
		if err != nil {
			writePipelineError(w, err)
			return
		}
		resp.Headings = hs
		resp.Metadata.HeadingCount = len(hs)
	} else {
		hs, md, err := pipeline.Headings(ctx, path)
		if err != nil {
			writePipelineError(w, err)
			return
		}
		resp.Headings = hs
		resp.Metadata = md
	}
	resp.TOC = headings.BuildTOC(resp.Headings)

	writeJSON(w, http.StatusOK, resp)
}

func (e *ExtractHeadingsEndpoint) Command(getServerURL func() string) *cobra.Command {
	var (
		req ExtractHeadingsRequest
		ref ReferenceWindowSpec
	)

	cmd := &cobra.Command{
		Use:   "headings",
		Short: "Extract the headings of a PDF",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("ref-ymin") || cmd.Flags().Changed("ref-ymax") {
				req.Reference = &ref
			}
			client := api.NewClient(getServerURL())
			var resp ExtractHeadingsResponse
			if err := client.Post(cmd.Context(), "/api/pdf/extract-headings", req, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}

	cmd.Flags().StringVar(&req.URL, "url", "", "URL of the PDF (required)")
	cmd.Flags().Float64Var(&ref.YMin, "ref-ymin", 0, "Top of the reference heading window")
	cmd.Flags().Float64Var(&ref.YMax, "ref-ymax", 0, "Bottom of the reference heading window")
	cmd.MarkFlagRequired("url")

	return cmd
}
