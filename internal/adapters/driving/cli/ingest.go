package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lightway-xas/lightway/internal/core/domain"
	"github.com/lightway-xas/lightway/internal/core/ports/driving"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [root]",
	Short: "Ingest scan files from a directory tree",
	Long: `Walks the directory tree under root and ingests every scan file with
the configured extension. Each file yields transmission, fluorescence and
reference records. Files that fail to parse and channels that fail
validation are reported and skipped; the rest are written.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

// Ingest flags.
var (
	ingestExtension string
	ingestFailFast  bool
	ingestDryRun    bool
	ingestNoSchema  bool
)

func init() {
	ingestCmd.Flags().StringVarP(&ingestExtension, "extension", "e", "", "Scan file extension (default from config, .dat)")
	ingestCmd.Flags().BoolVar(&ingestFailFast, "fail-fast", false, "Stop at the first failed file")
	ingestCmd.Flags().BoolVar(&ingestDryRun, "dry-run", false, "Parse, derive and validate without writing")
	ingestCmd.Flags().BoolVar(&ingestNoSchema, "no-schema", false, "Only check record structure, not metadata")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	a, err := openApp(ingestDryRun)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.acquireLock(); err != nil {
		return err
	}

	cfg := a.config
	if ingestNoSchema {
		cfg.Validation.Schema = false
	}
	extension := cfg.Ingest.Extension
	if ingestExtension != "" {
		extension = ingestExtension
	}

	svc, err := a.ingestService(driving.IngestOptions{
		FailFast: cfg.Ingest.FailFast || ingestFailFast,
	})
	if err != nil {
		return err
	}

	report, runErr := svc.IngestTree(cmd.Context(), args[0], extension)
	if report != nil {
		printIngestReport(cmd, report, ingestDryRun)
	}
	if runErr != nil {
		return fmt.Errorf("ingest failed: %w", runErr)
	}
	if err := report.Err(); err != nil {
		return fmt.Errorf("%d of %d files had failures: %w", report.FailedFiles(), report.Scanned, err)
	}
	return nil
}

func printIngestReport(cmd *cobra.Command, report *domain.IngestReport, dryRun bool) {
	out := cmd.OutOrStdout()

	verb := "Wrote"
	if dryRun {
		verb = "Validated"
	}
	cmd.Printf("Scanned %d files. %s %d records. %d files with failures.\n",
		report.Scanned, verb, len(report.Written), report.FailedFiles())

	if len(report.Written) > 0 && !dryRun {
		rows := make([][]string, len(report.Written))
		for i, w := range report.Written {
			rows[i] = []string{w.RecordID, w.Channel.String(), w.Identifier, w.URI}
		}
		cmd.Println()
		printTable(out, []string{"RECORD", "CHANNEL", "SCAN", "SOURCE"}, rows)
	}

	printFailures(out, report.Failures)
}
