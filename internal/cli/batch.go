package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ppiankov/evitrend/internal/pipeline"
	"github.com/ppiankov/evitrend/internal/worker"
)

var batchFlags runFlags

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <corpus.json> <triples.tsv>",
	Short: "Analyze several triples against one corpus",
	Long: `Batch runs the analyze workflow for every triple listed in a file, one
after another. Each line holds a tab-separated type, subject and object;
blank lines and lines starting with # are skipped.

Labels written by one triple are visible to the next, so evidence shared
between triples is checked once.

Example:
  evitrend batch statements.json triples.tsv
  evitrend batch statements.json triples.tsv --no-story --output-dir ./reports`,
	Args: cobra.ExactArgs(2),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)
	batchFlags.register(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	corpusPath, triplesPath := args[0], args[1]

	p, cfg, err := batchFlags.buildPipeline()
	if err != nil {
		return err
	}

	ctx, cancel := batchFlags.newContext()
	defer cancel()

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Evitrend Batch Processing\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Corpus:       %s\n", corpusPath)
	fmt.Fprintf(os.Stderr, "  Triples:      %s\n", triplesPath)
	fmt.Fprintf(os.Stderr, "  Output dir:   %s\n", cfg.Output.Dir)
	fmt.Fprintf(os.Stderr, "  LLM:          %s/%s\n", cfg.LLM.Provider, cfg.LLM.Model)
	fmt.Fprintf(os.Stderr, "\n")

	analyzer := pipeline.NewBatchAnalyzer(p, pipeline.Request{
		CorpusPath: corpusPath,
		NoStory:    batchFlags.noStory,
		DryRun:     batchFlags.dryRun,
	}, func(result *pipeline.Result) error {
		files, err := p.RenderReport(result.Report, cfg.Output.Dir)
		if err != nil {
			return fmt.Errorf("render failed: %w", err)
		}
		result.Files = append(result.Files, files...)
		if verbose {
			p.Renderer().RenderSummary(os.Stderr, result)
		}
		return nil
	})

	results, err := worker.NewBatchProcessor(analyzer).ProcessFile(ctx, triplesPath)
	if err != nil {
		return fmt.Errorf("process file: %w", err)
	}

	successCount := 0
	failureCount := 0
	for _, result := range results {
		if result.Error != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", result.Triple.String(), result.Error)
			continue
		}
		successCount++

		trend := "no validated evidence"
		if !result.Report.Trend.Empty {
			trend = fmt.Sprintf("peak %d", result.Report.Trend.PeakYear)
		}
		fmt.Fprintf(os.Stderr, "✓ %s (%s, %d conflict type(s))\n",
			result.Triple.String(), trend, len(result.Report.Conflicts.Groups))
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Batch Complete\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Total:     %d triples\n", len(results))
	fmt.Fprintf(os.Stderr, "  Success:   %d\n", successCount)
	fmt.Fprintf(os.Stderr, "  Failures:  %d\n", failureCount)
	fmt.Fprintf(os.Stderr, "  Output:    %s\n", cfg.Output.Dir)
	fmt.Fprintf(os.Stderr, "\n")

	if failureCount > 0 && successCount == 0 {
		return fmt.Errorf("all %d triples failed", failureCount)
	}
	return nil
}
