package main

import (
	"github.com/spf13/cobra"

	"github.com/pdfstruct/pdfstruct/internal/api"
	"github.com/pdfstruct/pdfstruct/internal/config"
	"github.com/pdfstruct/pdfstruct/version"
)

var (
	cfgFile      string
	outputFormat string
)

var rootCmd = &cobra.Command{
	Use:   "pdfstruct",
	Short: "PDF structure inference service",
	Long: `pdfstruct infers document structure from PDFs: headings, reading
order, tables, and an assembled content tree.

The pipeline includes:
  - Font-statistics heading classification with an optional reference window
  - Column-aware reading order with caption merging
  - Cascading table extraction (lattice, stream, whitespace fallback)
  - Editor-compatible content tree assembly with optional table of contents`,
	Version: version.GitRelease,
}

var initConfigCmd = &cobra.Command{
	Use:   "init-config [path]",
	Short: "Write a default config file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "config.yaml"
		if len(args) == 1 {
			path = args[0]
		}
		if err := config.WriteDefault(path); err != nil {
			return err
		}
		cmd.Println("wrote", path)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.pdfstruct/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVarP(
		&outputFormat, "output", "o", "yaml", "output format: yaml or json",
	)

	// Set output format before any command runs
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		api.SetOutputFormat(outputFormat)
	}

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initConfigCmd)
}
