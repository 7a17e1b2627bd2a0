// Package cli implements the lightway command line.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/lightway-xas/lightway/internal/logger"
)

// version is set at build time.
var version = "dev"

// Persistent flags.
var (
	verbose    bool
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "lightway",
	Short: "Ingest and post-process ISS XAS scans",
	Long: `Lightway reads ISS beamline scan files, derives transmission,
fluorescence and reference spectra, validates them and writes them to a
record store. Stored spectra can then be regridded, edge-normalised and
labelled by operator pipelines.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print progress and warnings")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Config file (default ~/.lightway/config.toml)")
}

// Execute runs the root command. An empty buildVersion keeps "dev".
func Execute(ctx context.Context, buildVersion string) error {
	if buildVersion != "" {
		version = buildVersion
	}
	return rootCmd.ExecuteContext(ctx)
}
