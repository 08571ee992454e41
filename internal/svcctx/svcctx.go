// Package svcctx provides service context for dependency injection via context.
// This package is separate from server to avoid import cycles with endpoints.
package svcctx

import (
	"context"
	"log/slog"

	"github.com/pdfstruct/pdfstruct/internal/config"
	"github.com/pdfstruct/pdfstruct/internal/extract"
	"github.com/pdfstruct/pdfstruct/internal/fetch"
	"github.com/pdfstruct/pdfstruct/internal/layout"
	"github.com/pdfstruct/pdfstruct/internal/remoteparse"
	"github.com/pdfstruct/pdfstruct/internal/tables"
)

// Services holds all core services that flow through context.
// Components extract what they need via the individual extractors.
type Services struct {
	Pipeline      *extract.Pipeline
	Fetcher       *fetch.Fetcher
	Detector      *layout.Detector
	GridEngine    *tables.GridEngine
	RemoteParser  *remoteparse.Parser
	ConfigManager *config.Manager
	Logger        *slog.Logger
}

type servicesKey struct{}

// WithServices returns a new context with services attached.
func WithServices(ctx context.Context, s *Services) context.Context {
	return context.WithValue(ctx, servicesKey{}, s)
}

// ServicesFrom extracts the full Services struct from context.
// Returns nil if not present.
func ServicesFrom(ctx context.Context) *Services {
	s, _ := ctx.Value(servicesKey{}).(*Services)
	return s
}

// PipelineFrom extracts the extraction pipeline from context.
func PipelineFrom(ctx context.Context) *extract.Pipeline {
	if s := ServicesFrom(ctx); s != nil {
		return s.Pipeline
	}
	return nil
}

// FetcherFrom extracts the document fetcher from context.
func FetcherFrom(ctx context.Context) *fetch.Fetcher {
	if s := ServicesFrom(ctx); s != nil {
		return s.Fetcher
	}
	return nil
}

// DetectorFrom extracts the layout detector client from context.
func DetectorFrom(ctx context.Context) *layout.Detector {
	if s := ServicesFrom(ctx); s != nil {
		return s.Detector
	}
	return nil
}

// GridEngineFrom extracts the grid table engine from context.
func GridEngineFrom(ctx context.Context) *tables.GridEngine {
	if s := ServicesFrom(ctx); s != nil {
		return s.GridEngine
	}
	return nil
}

// RemoteParserFrom extracts the remote multimodal parser from context.
func RemoteParserFrom(ctx context.Context) *remoteparse.Parser {
	if s := ServicesFrom(ctx); s != nil {
		return s.RemoteParser
	}
	return nil
}

// ConfigManagerFrom extracts the config manager from context.
func ConfigManagerFrom(ctx context.Context) *config.Manager {
	if s := ServicesFrom(ctx); s != nil {
		return s.ConfigManager
	}
	return nil
}

// LoggerFrom extracts the logger from context.
func LoggerFrom(ctx context.Context) *slog.Logger {
	if s := ServicesFrom(ctx); s != nil {
		return s.Logger
	}
	return nil
}
