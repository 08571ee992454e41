package endpoints

import (
	"fmt"
	"net/http"
	"sort"

	"github.com/spf13/cobra"

	"github.com/pdfstruct/pdfstruct/internal/api"
	"github.com/pdfstruct/pdfstruct/internal/svcctx"
)

// HealthResponse is the response for the health check endpoint.
type HealthResponse struct {
	Status       string          `json:"status"`
	Capabilities map[string]bool `json:"capabilities"`
}

// HealthEndpoint handles GET /health.
type HealthEndpoint struct{}

func (e *HealthEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/health", e.handler
}

func (e *HealthEndpoint) RequiresPipeline() bool { return false }

// handler godoc
//
//	@Summary		Check server health
//	@Description	Reports server status and per-capability availability
//	@Tags			health
//	@Produce		json
//	@Success		200	{object}	HealthResponse
//	@Router			/health [get]
func (e *HealthEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status: "ok",
		Capabilities: map[string]bool{
			"text_layer":      true,
			"whitespace":      true,
			"layout_detector": false,
			"grid_engine":     false,
			"remote_parser":   false,
		},
	}

	ctx := r.Context()
	if d := svcctx.DetectorFrom(ctx); d != nil {
		resp.Capabilities["layout_detector"] = d.Available(ctx)
	}
	if g := svcctx.GridEngineFrom(ctx); g != nil {
		resp.Capabilities["grid_engine"] = g.Available(ctx)
	}
	if p := svcctx.RemoteParserFrom(ctx); p != nil {
		resp.Capabilities["remote_parser"] = p.Available()
	}

	writeJSON(w, http.StatusOK, resp)
}

func (e *HealthEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check server health",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp HealthResponse
			if err := client.Get(cmd.Context(), "/health", &resp); err != nil {
				return err
			}
			fmt.Printf("Status: %s\n", resp.Status)
			names := make([]string, 0, len(resp.Capabilities))
			for name := range resp.Capabilities {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				fmt.Printf("  %-16s %v\n", name, resp.Capabilities[name])
			}
			return nil
		},
	}
}
