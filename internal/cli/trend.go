package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ppiankov/evitrend/internal/analysis"
	"github.com/ppiankov/evitrend/internal/corpus"
	"github.com/ppiankov/evitrend/internal/pipeline"
)

var (
	trendTriple    tripleFlags
	trendMode      string
	trendOutputDir string
	trendNoFiles   bool
)

// trendCmd represents the trend command
var trendCmd = &cobra.Command{
	Use:   "trend <corpus.json>",
	Short: "Report trend, conflicts and interest shift from an already labeled corpus",
	Long: `Trend runs only the analysis. No LLM is contacted: evidence must already
carry correctness labels, for example from a previous 'evitrend analyze' run.
Unlabeled evidence is ignored.

Example:
  evitrend trend statements.json --type Activation --subj CDK12 --obj BRCA1
  evitrend trend statements.json --type Activation --subj CDK12 --obj BRCA1 --mode target`,
	Args: cobra.ExactArgs(1),
	RunE: runTrend,
}

func init() {
	rootCmd.AddCommand(trendCmd)
	trendTriple.register(trendCmd)
	trendCmd.Flags().StringVar(&trendMode, "mode", "", "trend counting mode: pooled or target")
	trendCmd.Flags().StringVar(&trendOutputDir, "output-dir", "", "directory for report files (default: output.dir)")
	trendCmd.Flags().BoolVar(&trendNoFiles, "no-files", false, "print the report only, write no files")
}

func runTrend(cmd *cobra.Command, args []string) error {
	triple, err := trendTriple.resolve(cmd.InOrStdin(), os.Stderr)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if trendOutputDir != "" {
		cfg.Output.Dir = trendOutputDir
	}

	statements, err := corpus.Load(args[0])
	if err != nil {
		return err
	}

	p := pipeline.New(cfg, nil, nil)
	report, err := p.Analyze(statements, triple, trendMode)
	if err != nil {
		return err
	}

	target, conflicting := pipeline.Select(statements, triple)
	result := &pipeline.Result{Report: report, Targets: len(target), Conflicts: len(conflicting)}

	if !trendNoFiles {
		files, err := p.RenderReport(report, cfg.Output.Dir)
		if err != nil {
			return fmt.Errorf("render failed: %w", err)
		}
		result.Files = files
	}

	printReport(cmd.OutOrStdout(), analysis.Render(report), report)
	if verbose {
		p.Renderer().RenderSummary(os.Stderr, result)
	}
	return nil
}
