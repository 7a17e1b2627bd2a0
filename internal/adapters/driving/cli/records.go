package cli

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lightway-xas/lightway/internal/core/domain"
	"github.com/lightway-xas/lightway/internal/core/ports/driving"
	"github.com/lightway-xas/lightway/internal/postprocessors/quality"
)

var recordsCmd = &cobra.Command{
	Use:   "records",
	Short: "Inspect and manage stored records",
}

var recordsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored records",
	Args:  cobra.NoArgs,
	RunE:  runRecordsList,
}

var recordsShowCmd = &cobra.Command{
	Use:   "show [record-id]",
	Short: "Show a record's metadata and columns",
	Args:  cobra.ExactArgs(1),
	RunE:  runRecordsShow,
}

var recordsQualityCmd = &cobra.Command{
	Use:   "quality [record-id]",
	Short: "Label a record good or ugly",
	Long: `Labels a stored spectrum "ugly" when too many mu values are negative or
too many points in the last quarter exceed 1.5, and "good" otherwise. The
label is written to the record's "quality" metadata key.`,
	Args: cobra.ExactArgs(1),
	RunE: runRecordsQuality,
}

var recordsDeleteCmd = &cobra.Command{
	Use:   "delete [record-id]",
	Short: "Delete a record",
	Args:  cobra.ExactArgs(1),
	RunE:  runRecordsDelete,
}

var (
	recordsQuery    queryFlags
	qualityNegative float64
	qualityTail     float64
)

func init() {
	recordsQuery.bind(recordsListCmd)
	recordsQualityCmd.Flags().Float64Var(&qualityNegative, "negative", quality.DefaultNegativeThreshold,
		"Tolerated fraction of negative mu values")
	recordsQualityCmd.Flags().Float64Var(&qualityTail, "tail", quality.DefaultTailPositiveThreshold,
		"Tolerated fraction of tail points above 1.5")

	recordsCmd.AddCommand(recordsListCmd)
	recordsCmd.AddCommand(recordsShowCmd)
	recordsCmd.AddCommand(recordsQualityCmd)
	recordsCmd.AddCommand(recordsDeleteCmd)
	rootCmd.AddCommand(recordsCmd)
}

func runRecordsList(cmd *cobra.Command, _ []string) error {
	a, err := openApp(false)
	if err != nil {
		return err
	}
	defer a.Close()

	query := recordsQuery.query()
	records, err := a.recordService().List(cmd.Context(), query)
	if err != nil {
		return fmt.Errorf("failed to list records: %w", err)
	}
	if len(records) == 0 {
		if query.IsEmpty() {
			cmd.Println("No records found.")
		} else {
			cmd.Println("No records match the filters.")
		}
		return nil
	}

	rows := make([][]string, len(records))
	for i := range records {
		md := records[i].Metadata
		rows[i] = []string{
			records[i].ID,
			metadataString(md, "sample_metadata", "element"),
			metadataString(md, "sample_metadata", "edge"),
			metadataString(md, domain.ChannelKey),
			metadataString(md, domain.DatasetKey),
			metadataString(md, "experiment_metadata", "sample_id"),
			strconv.Itoa(records[i].Data.Len()),
		}
	}
	printTable(cmd.OutOrStdout(),
		[]string{"ID", "ELEMENT", "EDGE", "CHANNEL", "DATASET", "SAMPLE", "ROWS"}, rows)
	cmd.Printf("\nTotal: %d records\n", len(records))
	return nil
}

func runRecordsShow(cmd *cobra.Command, args []string) error {
	a, err := openApp(false)
	if err != nil {
		return err
	}
	defer a.Close()

	rec, err := a.recordService().Get(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get record: %w", err)
	}

	cmd.Printf("Record: %s\n\n", rec.Label())
	cmd.Printf("  Structure: %s\n", rec.StructureFamily)
	cmd.Printf("  Specs:     %s\n", strings.Join(domain.SpecNames(rec.Specs), ", "))
	cmd.Printf("  Columns:   %s\n", strings.Join(rec.Data.Columns(), ", "))
	cmd.Printf("  Rows:      %d\n", rec.Data.Len())
	cmd.Printf("  Created:   %s\n", rec.CreatedAt.Format(domain.ProvenanceTimeFormat))
	cmd.Printf("  Updated:   %s\n", rec.UpdatedAt.Format(domain.ProvenanceTimeFormat))

	md, err := json.MarshalIndent(rec.Metadata, "  ", "  ")
	if err != nil {
		return fmt.Errorf("render metadata: %w", err)
	}
	cmd.Printf("\n  Metadata:\n  %s\n", md)
	return nil
}

func runRecordsQuality(cmd *cobra.Command, args []string) error {
	a, err := openApp(false)
	if err != nil {
		return err
	}
	defer a.Close()

	var thresholds driving.QualityThresholds
	if cmd.Flags().Changed("negative") {
		thresholds.Negative = &qualityNegative
	}
	if cmd.Flags().Changed("tail") {
		thresholds.TailPositive = &qualityTail
	}

	label, err := a.recordService().CheckQuality(cmd.Context(), args[0], thresholds)
	if err != nil {
		return fmt.Errorf("quality check failed: %w", err)
	}
	cmd.Printf("%s: %s\n", args[0], label)
	return nil
}

func runRecordsDelete(cmd *cobra.Command, args []string) error {
	a, err := openApp(false)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.recordService().Delete(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}
	cmd.Printf("Record %s deleted.\n", args[0])
	return nil
}
