package cli

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lightway-xas/lightway/internal/core/domain"
	"github.com/lightway-xas/lightway/internal/postprocessors"
)

var postprocessCmd = &cobra.Command{
	Use:   "postprocess",
	Short: "Run an operator pipeline over stored records",
	Long: `Applies an operator pipeline to every stored record matching the
query flags and writes each result as a new record. The pipeline comes from
--op flags, in order, or from [[postprocess.operators]] in the config file.

Operators: StandardizeGrid, NormalizeEdge, DataQualityLabel.

  lightway postprocess --element Cu \
    --op StandardizeGrid:x0=8900,xf=9200,nx=301 \
    --op NormalizeEdge \
    --op DataQualityLabel`,
	Args: cobra.NoArgs,
	RunE: runPostprocess,
}

var (
	postprocessOps   []string
	postprocessQuery queryFlags
)

func init() {
	postprocessCmd.Flags().StringArrayVar(&postprocessOps, "op", nil,
		"Operator as Name or Name:key=value,... (repeatable)")
	postprocessQuery.bind(postprocessCmd)
	rootCmd.AddCommand(postprocessCmd)
}

func runPostprocess(cmd *cobra.Command, _ []string) error {
	a, err := openApp(false)
	if err != nil {
		return err
	}
	defer a.Close()

	entries := a.config.Postprocess.Operators
	if len(postprocessOps) > 0 {
		if entries, err = parseOperators(postprocessOps); err != nil {
			return err
		}
	}
	pipeline, err := postprocessors.DefaultRegistry().BuildPipeline(entries)
	if err != nil {
		return fmt.Errorf("build pipeline: %w", err)
	}

	if err := a.acquireLock(); err != nil {
		return err
	}

	report, runErr := a.postprocessService().Postprocess(cmd.Context(), pipeline, postprocessQuery.query())
	if report != nil {
		printPostprocessReport(cmd, report)
	}
	if runErr != nil {
		return fmt.Errorf("postprocess failed: %w", runErr)
	}
	if err := report.Err(); err != nil {
		return fmt.Errorf("%d of %d records failed: %w", len(report.Failures), report.Processed, err)
	}
	return nil
}

func printPostprocessReport(cmd *cobra.Command, report *domain.PostprocessReport) {
	cmd.Printf("Pipeline %s: %d records processed, %d written, %d failed.\n",
		report.Pipeline, report.Processed, len(report.Written), len(report.Failures))

	if len(report.Written) > 0 {
		parents := make([]string, 0, len(report.Written))
		for parent := range report.Written {
			parents = append(parents, parent)
		}
		sort.Strings(parents)

		rows := make([][]string, len(parents))
		for i, parent := range parents {
			rows[i] = []string{parent, report.Written[parent]}
		}
		cmd.Println()
		printTable(cmd.OutOrStdout(), []string{"PARENT", "RESULT"}, rows)
	}

	printFailures(cmd.OutOrStdout(), report.Failures)
}

// parseOperators turns --op values into pipeline config entries.
func parseOperators(specs []string) ([]map[string]any, error) {
	entries := make([]map[string]any, 0, len(specs))
	for _, spec := range specs {
		entry, err := parseOperator(spec)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// parseOperator parses "Name" or "Name:key=value,key=value". Numeric
// values become numbers; values containing "|" become string lists.
func parseOperator(spec string) (map[string]any, error) {
	name, params, _ := strings.Cut(spec, ":")
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: operator %q has no name", domain.ErrInvalidInput, spec)
	}

	entry := map[string]any{postprocessors.NameKey: name}
	if strings.TrimSpace(params) == "" {
		return entry, nil
	}

	for _, pair := range strings.Split(params, ",") {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("%w: operator %s: parameter %q is not key=value",
				domain.ErrInvalidInput, name, pair)
		}
		entry[key] = parseValue(strings.TrimSpace(value))
	}
	return entry, nil
}

func parseValue(s string) any {
	if strings.Contains(s, "|") {
		parts := strings.Split(s, "|")
		out := make([]any, len(parts))
		for i, p := range parts {
			out[i] = strings.TrimSpace(p)
		}
		return out
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	return s
}

// queryFlags binds record query flags to a command.
type queryFlags struct {
	element  string
	edge     string
	dataset  string
	sampleID string
	channel  string
}

func (q *queryFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&q.element, "element", "", "Only records of this element (e.g. Cu)")
	cmd.Flags().StringVar(&q.edge, "edge", "", "Only records of this absorption edge (e.g. K)")
	cmd.Flags().StringVar(&q.dataset, "dataset", "", "Only records of this dataset (raw or a pipeline label)")
	cmd.Flags().StringVar(&q.sampleID, "sample-id", "", "Only records of this sample")
	cmd.Flags().StringVar(&q.channel, "channel", "", "Only records of this channel")
}

func (q *queryFlags) query() domain.RecordQuery {
	return domain.RecordQuery{
		Element:  q.element,
		Edge:     q.edge,
		Dataset:  q.dataset,
		SampleID: q.sampleID,
		Channel:  q.channel,
	}
}
