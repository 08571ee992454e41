package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Headings.H1Ratio != 1.8 || cfg.Headings.H2Ratio != 1.4 || cfg.Headings.H3Ratio != 1.2 {
		t.Errorf("heading ratios = %v/%v/%v",
			cfg.Headings.H1Ratio, cfg.Headings.H2Ratio, cfg.Headings.H3Ratio)
	}
	if cfg.ReadingOrder.ColumnEps != 50 {
		t.Errorf("column eps = %v, want 50", cfg.ReadingOrder.ColumnEps)
	}
	if cfg.Fetch.TimeoutSeconds != 300 {
		t.Errorf("fetch timeout = %d, want 300", cfg.Fetch.TimeoutSeconds)
	}
	if cfg.Tables.LatticeMinAccuracy != 0.5 || cfg.Tables.StreamMinAccuracy != 0.4 {
		t.Errorf("accuracy floors = %v/%v",
			cfg.Tables.LatticeMinAccuracy, cfg.Tables.StreamMinAccuracy)
	}
}

func TestResolveEnvVars(t *testing.T) {
	t.Setenv("PDFSTRUCT_TEST_KEY", "secret")
	tests := []struct{ in, want string }{
		{"${PDFSTRUCT_TEST_KEY}", "secret"},
		{"prefix-${PDFSTRUCT_TEST_KEY}", "prefix-secret"},
		{"no refs", "no refs"},
		{"", ""},
		{"${UNSET_VAR_FOR_TEST}", ""},
	}
	for _, tt := range tests {
		if got := ResolveEnvVars(tt.in); got != tt.want {
			t.Errorf("ResolveEnvVars(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestConversions(t *testing.T) {
	cfg := DefaultConfig()

	th := cfg.HeadingThresholds()
	if th.H1Ratio != cfg.Headings.H1Ratio || th.MinConfidence != cfg.Headings.MinConfidence {
		t.Errorf("thresholds = %+v", th)
	}

	oe := cfg.OrderEngine()
	if oe.ColumnEps != 50 || oe.HeaderMargin != 50 || oe.FooterMargin != 50 {
		t.Errorf("order engine = %+v", oe)
	}

	if cfg.FetchTimeout() != 300*time.Second {
		t.Errorf("fetch timeout = %v", cfg.FetchTimeout())
	}
}

func TestRemoteParserConfigResolvesKey(t *testing.T) {
	t.Setenv("PDFSTRUCT_TEST_REMOTE_KEY", "sk-abc")
	cfg := DefaultConfig()
	cfg.Remote.APIKey = "${PDFSTRUCT_TEST_REMOTE_KEY}"
	if got := cfg.RemoteParserConfig().APIKey; got != "sk-abc" {
		t.Errorf("resolved key = %q", got)
	}
}

func TestWriteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := WriteDefault(path); err != nil {
		t.Fatalf("WriteDefault: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) == 0 {
		t.Fatal("config file is empty")
	}
	for _, want := range []string{"headings", "h1_ratio", "reading_order", "timeout_seconds"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("config file missing %q", want)
		}
	}
}
