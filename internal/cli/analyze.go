package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/evitrend/internal/model"
	"github.com/ppiankov/evitrend/internal/pipeline"
)

// runFlags are shared by analyze and batch
type runFlags struct {
	llmProvider string
	llmModel    string
	mode        string
	outputDir   string
	noStory     bool
	noCache     bool
	dryRun      bool
	timeout     time.Duration
}

func (f *runFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.llmProvider, "llm-provider", "", "LLM provider (openai, anthropic, ollama); overrides llm.provider")
	cmd.Flags().StringVar(&f.llmModel, "llm-model", "", "LLM model name; overrides llm.model")
	cmd.Flags().StringVar(&f.mode, "mode", "", "trend counting mode: pooled or target")
	cmd.Flags().StringVar(&f.outputDir, "output-dir", "", "directory for exported files (default: output.dir)")
	cmd.Flags().BoolVar(&f.noStory, "no-story", false, "skip story generation")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable the verdict cache")
	cmd.Flags().BoolVar(&f.dryRun, "dry-run", false, "do not write correctness labels back to the corpus")
	cmd.Flags().DurationVar(&f.timeout, "timeout", 30*time.Minute, "overall run timeout")
}

// apply overrides cfg with the flags that were set
func (f *runFlags) apply(cfg *model.Config) {
	if f.llmProvider != "" && f.llmProvider != cfg.LLM.Provider {
		cfg.LLM.Provider = f.llmProvider
		// A key for one provider is useless for another
		cfg.LLM.APIKey = ""
	}
	if f.llmModel != "" {
		cfg.LLM.Model = f.llmModel
	}
	if f.mode != "" {
		cfg.Analysis.Mode = f.mode
	}
	if f.outputDir != "" {
		cfg.Output.Dir = f.outputDir
	}
	if f.noStory {
		cfg.Story.Enabled = false
	}
	if f.noCache {
		cfg.Cache.Enabled = false
	}
	cfg.Output.Verbose = cfg.Output.Verbose || verbose
}

// buildPipeline loads config, applies flags and creates an LLM-backed pipeline
func (f *runFlags) buildPipeline() (*pipeline.Pipeline, *model.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	f.apply(cfg)
	if cfg.LLM.Provider == "" {
		return nil, nil, fmt.Errorf("no LLM provider configured: use --llm-provider or set llm.provider")
	}
	if err := resolveAPIKey(cfg); err != nil {
		return nil, nil, err
	}

	p, err := pipeline.NewFromConfig(cfg)
	if err != nil {
		return nil, nil, err
	}
	return p, cfg, nil
}

func (f *runFlags) newContext() (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	return ctx, func() {
		cancel()
		stop()
	}
}

var (
	analyzeFlags  runFlags
	analyzeTriple tripleFlags
)

// tripleFlags holds --type, --subj and --obj
type tripleFlags struct {
	relType string
	subject string
	object  string
}

func (t *tripleFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&t.relType, "type", "", "relationship type, e.g. Activation")
	cmd.Flags().StringVar(&t.subject, "subj", "", "subject name, e.g. CDK12")
	cmd.Flags().StringVar(&t.object, "obj", "", "object name, e.g. BRCA1")
}

// resolve fills missing parts by prompting on in
func (t *tripleFlags) resolve(in io.Reader, prompt io.Writer) (model.Triple, error) {
	triple := model.Triple{
		Type:    strings.TrimSpace(t.relType),
		Subject: strings.TrimSpace(t.subject),
		Object:  strings.TrimSpace(t.object),
	}
	if triple.Valid() {
		return triple, nil
	}

	reader := bufio.NewReader(in)
	ask := func(label string, dst *string) error {
		if *dst != "" {
			return nil
		}
		fmt.Fprintf(prompt, "Please enter the %s: ", label)
		line, err := reader.ReadString('\n')
		if err != nil && (err != io.EOF || line == "") {
			return fmt.Errorf("read %s: %w", label, err)
		}
		*dst = strings.TrimSpace(line)
		return nil
	}
	if err := ask("relationship type (e.g., Activation)", &triple.Type); err != nil {
		return triple, err
	}
	if err := ask("subject name (e.g., CDK12)", &triple.Subject); err != nil {
		return triple, err
	}
	if err := ask("object name (e.g., BRCA1)", &triple.Object); err != nil {
		return triple, err
	}

	if !triple.Valid() {
		return triple, fmt.Errorf("type, subject and object are all required")
	}
	return triple, nil
}

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze <corpus.json>",
	Short: "Label evidence for one triple and report trend, conflicts and interest shift",
	Long: `Analyze runs the full workflow for one (subject, type, object) triple:
- Select statements matching the triple and those conflicting with it
- Check every evidence sentence with the LLM (correctness 1 or 0)
- Export validated evidence and yearly publication counts
- Report the publication trend, conflicts and interest shift
- Optionally generate a narrative story
- Write the labels back into the corpus (previous file kept as .bak)

Missing --type, --subj or --obj are asked for interactively.

Example:
  evitrend analyze statements.json --type Activation --subj CDK12 --obj BRCA1
  evitrend analyze statements.json --llm-provider anthropic --no-story
  evitrend analyze statements.json --mode target --dry-run`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeFlags.register(analyzeCmd)
	analyzeTriple.register(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	triple, err := analyzeTriple.resolve(cmd.InOrStdin(), os.Stderr)
	if err != nil {
		return err
	}

	p, cfg, err := analyzeFlags.buildPipeline()
	if err != nil {
		return err
	}

	ctx, cancel := analyzeFlags.newContext()
	defer cancel()

	if verbose {
		fmt.Fprintf(os.Stderr, "Analyzing: %s\n", triple.String())
		fmt.Fprintf(os.Stderr, "Corpus: %s\n", args[0])
		fmt.Fprintf(os.Stderr, "LLM: %s/%s\n", cfg.LLM.Provider, cfg.LLM.Model)
		fmt.Fprintln(os.Stderr)
	}

	result, err := p.Run(ctx, pipeline.Request{
		CorpusPath: args[0],
		Triple:     triple,
		NoStory:    analyzeFlags.noStory,
		DryRun:     analyzeFlags.dryRun,
	})
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	files, err := p.RenderReport(result.Report, cfg.Output.Dir)
	if err != nil {
		return fmt.Errorf("render failed: %w", err)
	}
	result.Files = append(result.Files, files...)

	printReport(cmd.OutOrStdout(), result.Text, result.Report)
	p.Renderer().RenderSummary(os.Stderr, result)
	return nil
}

func printReport(w io.Writer, text string, report *model.Report) {
	fmt.Fprint(w, text)
	if s := report.Story; s != nil && s.Story != "" {
		fmt.Fprintf(w, "\n=== Generated Story ===\n%s\n", s.Story)
	}
	if s := report.Story; s != nil {
		for _, warning := range s.Warnings {
			fmt.Fprintf(os.Stderr, "⚠️  %s\n", warning)
		}
	}
}
