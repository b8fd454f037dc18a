package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/ppiankov/evitrend/internal/analysis"
	"github.com/ppiankov/evitrend/internal/cache"
	"github.com/ppiankov/evitrend/internal/classify"
	"github.com/ppiankov/evitrend/internal/corpus"
	"github.com/ppiankov/evitrend/internal/llm"
	"github.com/ppiankov/evitrend/internal/logging"
	"github.com/ppiankov/evitrend/internal/model"
	"github.com/ppiankov/evitrend/internal/worker"
)

// Pipeline orchestrates classification, analysis, export and narrative
type Pipeline struct {
	classifier *classify.Classifier // nil when no LLM provider is configured
	story      *llm.StoryGenerator  // nil or disabled when stories are off
	renderer   *Renderer
	config     *model.Config
	logger     *log.Logger
}

// New assembles a pipeline from ready-made collaborators
func New(cfg *model.Config, classifier *classify.Classifier, story *llm.StoryGenerator) *Pipeline {
	return &Pipeline{
		classifier: classifier,
		story:      story,
		renderer:   NewRenderer(),
		config:     cfg,
		logger:     logging.WithPrefix("pipeline"),
	}
}

// NewFromConfig builds the LLM provider, verdict cache and rate limiter
// described by cfg. Without a provider the pipeline can still run Analyze.
func NewFromConfig(cfg *model.Config) (*Pipeline, error) {
	if _, err := analysis.ParseMode(cfg.Analysis.Mode); err != nil {
		return nil, err
	}

	provider, err := llm.NewProvider(llm.ConfigFromModel(cfg.LLM))
	if err != nil {
		return nil, fmt.Errorf("initialize LLM provider: %w", err)
	}
	if provider == nil {
		return New(cfg, nil, nil), nil
	}

	judgeModel := cfg.Classifier.Model
	if judgeModel == "" {
		judgeModel = cfg.LLM.Model
	}

	limiter := worker.NewLimiterFromConfig(cfg.RateLimiting)
	opts := []classify.Option{classify.WithLimiter(limiter, provider.Name())}
	if c := cache.New(cfg.Cache); c != nil {
		opts = append(opts, classify.WithCache(c, provider.Name()+"/"+judgeModel, cfg.Cache.DiskTTL))
	}
	classifier := classify.NewClassifier(classify.NewLLMJudge(provider, cfg.Classifier), opts...)

	var story *llm.StoryGenerator
	if cfg.Story.Enabled {
		storyCfg := llm.StoryConfigFromModel(cfg.Story)
		if storyCfg.Model == "" {
			storyCfg.Model = cfg.LLM.Model
		}
		story = llm.NewStoryGenerator(provider, storyCfg)
	}

	return New(cfg, classifier, story), nil
}

// Request describes one analysis run
type Request struct {
	CorpusPath string
	Triple     model.Triple
	Mode       string // Overrides config when set
	OutputDir  string // Overrides config when set
	NoStory    bool
	DryRun     bool // Do not write labels back to the corpus
	NoBackup   bool // Keep an existing .bak instead of replacing it
}

// Result contains everything a run produced
type Result struct {
	Report    *model.Report
	Text      string   // Trend & conflicts text, as fed to the story
	Files     []string // Exported artifacts
	Targets   int      // Statements matching the triple
	Conflicts int      // Same subject and object, other type
	Saved     bool     // Corpus rewritten with labels
}

// Run classifies the target and conflicting statements of req.Triple,
// analyzes the validated evidence and exports the results.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Result, error) {
	if !req.Triple.Valid() {
		return nil, fmt.Errorf("incomplete triple %q: type, subject and object are required", req.Triple.String())
	}
	if p.classifier == nil {
		return nil, fmt.Errorf("no LLM provider configured (set llm.provider)")
	}
	mode, err := p.mode(req.Mode)
	if err != nil {
		return nil, err
	}
	outDir := p.outputDir(req.OutputDir)

	// 1. Load
	all, err := corpus.Load(req.CorpusPath)
	if err != nil {
		return nil, err
	}

	// 2. Select
	targetPos, conflictPos := Select(all, req.Triple)
	p.logger.Info("selected statements", "triple", req.Triple.String(), "target", len(targetPos), "conflicting", len(conflictPos))

	// 3. Classify both groups
	labeledTarget, stats := p.classifier.Classify(ctx, pick(all, targetPos))
	labeledConflict, conflictStats := p.classifier.Classify(ctx, pick(all, conflictPos))
	stats.Add(conflictStats)
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("classification interrupted: %w", err)
	}

	if err := corpus.Apply(all, targetPos, labeledTarget); err != nil {
		return nil, err
	}
	if err := corpus.Apply(all, conflictPos, labeledConflict); err != nil {
		return nil, err
	}

	// 4. Prune
	prunedTarget := classify.Prune(labeledTarget)
	prunedConflict := classify.Prune(labeledConflict)

	result := &Result{Targets: len(targetPos), Conflicts: len(conflictPos)}

	// 5. Export validated evidence
	files, err := p.exportValidated(outDir, req.Triple, prunedTarget, prunedConflict)
	if err != nil {
		return nil, err
	}
	result.Files = append(result.Files, files...)

	// 6. Analyze
	selected := append(append([]model.Statement{}, prunedTarget...), prunedConflict...)
	report := p.buildReport(analysisInput(all, selected, mode), req.Triple, mode)
	setTotals(report, append(append([]model.Statement{}, labeledTarget...), labeledConflict...))
	report.Classification = &stats
	result.Report = report
	result.Text = analysis.Render(report)

	files, err = p.exportCounts(outDir, report)
	if err != nil {
		return nil, err
	}
	result.Files = append(result.Files, files...)

	// 7. Story (never fails the run)
	if !req.NoStory && p.story.IsEnabled() {
		p.logger.Info("generating story", "provider", p.story.ProviderName())
		story, err := p.story.Generate(ctx, selected, result.Text)
		if err != nil {
			p.logger.Warn("story generation failed", "err", err)
		} else {
			report.Story = story
		}
	}

	// 8. Save labels
	if !req.DryRun {
		var opts []corpus.SaveOption
		if req.NoBackup {
			opts = append(opts, corpus.WithoutBackup())
		}
		if err := corpus.Save(req.CorpusPath, all, opts...); err != nil {
			return nil, err
		}
		result.Saved = true
		p.logger.Info("saved labeled corpus", "path", req.CorpusPath, "backup", req.CorpusPath+corpus.BackupSuffix)
	}

	return result, nil
}

// Analyze runs the analysis alone over an already labeled corpus
func (p *Pipeline) Analyze(statements []model.Statement, t model.Triple, modeOverride string) (*model.Report, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("incomplete triple %q: type, subject and object are required", t.String())
	}
	mode, err := p.mode(modeOverride)
	if err != nil {
		return nil, err
	}

	targetPos, conflictPos := Select(statements, t)
	selected := append(pick(statements, targetPos), pick(statements, conflictPos)...)
	report := p.buildReport(analysisInput(statements, selected, mode), t, mode)
	setTotals(report, selected)
	return report, nil
}

// BatchAnalyzer runs the pipeline for one triple at a time against the same
// corpus. It implements worker.Analyzer. Each run reloads the corpus, so
// labels saved by one triple are visible to the next. The corpus is backed
// up once, before the first save, so the .bak holds the corpus as it was
// when the batch started.
type BatchAnalyzer struct {
	pipeline *Pipeline
	template Request
	onResult func(*Result) error
	backedUp bool
}

var _ worker.Analyzer = (*BatchAnalyzer)(nil)

// NewBatchAnalyzer creates an analyzer; template supplies everything but the
// triple. onResult, if set, is called after each successful run.
func NewBatchAnalyzer(p *Pipeline, template Request, onResult func(*Result) error) *BatchAnalyzer {
	return &BatchAnalyzer{pipeline: p, template: template, onResult: onResult}
}

// AnalyzeTriple runs the pipeline for t
func (b *BatchAnalyzer) AnalyzeTriple(ctx context.Context, t model.Triple) (*model.Report, error) {
	req := b.template
	req.Triple = t

	if !req.DryRun {
		if !b.backedUp {
			if err := corpus.Backup(req.CorpusPath); err != nil {
				return nil, err
			}
			b.backedUp = true
		}
		req.NoBackup = true
	}

	result, err := b.pipeline.Run(ctx, req)
	if err != nil {
		return nil, err
	}
	if b.onResult != nil {
		if err := b.onResult(result); err != nil {
			return result.Report, err
		}
	}
	return result.Report, nil
}

// Select returns the corpus positions of statements matching t and of those
// conflicting with it, each in corpus order.
func Select(statements []model.Statement, t model.Triple) (target, conflicting []int) {
	for i, stmt := range statements {
		switch analysis.Relation(stmt, t) {
		case analysis.Target:
			target = append(target, i)
		case analysis.Conflicting:
			conflicting = append(conflicting, i)
		}
	}
	return target, conflicting
}

func pick(statements []model.Statement, positions []int) []model.Statement {
	out := make([]model.Statement, len(positions))
	for i, pos := range positions {
		out[i] = statements[pos]
	}
	return out
}

// analysisInput chooses the collection handed to BuildReport. Pooled mode
// counts every statement it is given, so it only sees the target and its
// conflicts. Target mode filters counts itself and gets the whole corpus,
// which lets shift detection compare against other objects.
func analysisInput(all, selected []model.Statement, mode analysis.Mode) []model.Statement {
	if mode == analysis.ModeTargetOnly {
		return all
	}
	return selected
}

// setTotals counts the target and conflict statements of the triple and
// their evidence, labeled but not pruned.
func setTotals(report *model.Report, selected []model.Statement) {
	report.Statements = len(selected)
	report.TotalEvidence = 0
	report.ValidatedEvidence = 0
	for _, stmt := range selected {
		report.TotalEvidence += len(stmt.Evidence)
		report.ValidatedEvidence += stmt.ValidatedCount()
	}
}

func (p *Pipeline) buildReport(statements []model.Statement, t model.Triple, mode analysis.Mode) *model.Report {
	report := analysis.BuildReport(statements,
		analysis.WithTriple(t),
		analysis.WithMode(mode),
		analysis.WithShiftLimit(p.config.Analysis.ShiftDisplayLimit))
	report.RunID = uuid.NewString()
	report.GeneratedAt = time.Now().UTC()
	return report
}

func (p *Pipeline) mode(override string) (analysis.Mode, error) {
	if override != "" {
		return analysis.ParseMode(override)
	}
	return analysis.ParseMode(p.config.Analysis.Mode)
}

func (p *Pipeline) outputDir(override string) string {
	switch {
	case override != "":
		return override
	case p.config.Output.Dir != "":
		return p.config.Output.Dir
	default:
		return "./results"
	}
}

func (p *Pipeline) exportValidated(dir string, t model.Triple, target, conflicting []model.Statement) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	var files []string
	path := filepath.Join(dir, corpus.ValidatedFileName(t))
	n, err := corpus.ExportValidated(target, path)
	if err != nil {
		return nil, err
	}
	p.logger.Info("exported validated evidence", "path", path, "records", n)
	files = append(files, path)

	if len(conflicting) == 0 {
		p.logger.Info("no conflicting statements to export")
		return files, nil
	}

	path = filepath.Join(dir, corpus.ConflictFileName(t))
	n, err = corpus.ExportValidated(conflicting, path)
	if err != nil {
		return nil, err
	}
	p.logger.Info("exported validated conflict evidence", "path", path, "records", n)
	return append(files, path), nil
}

func (p *Pipeline) exportCounts(dir string, report *model.Report) ([]string, error) {
	if report.Trend.Empty {
		return nil, nil
	}
	counts := report.Trend.Counts()

	var files []string
	if p.config.Output.WriteTSV {
		path, err := corpus.ExportYearlyCountsTSV(counts, dir, report.Triple)
		if err != nil {
			return nil, err
		}
		p.logger.Info("exported yearly counts", "path", path)
		files = append(files, path)
	}
	if p.config.Output.WriteXLSX {
		path, err := corpus.ExportYearlyCountsXLSX(counts, dir, report.Triple)
		if err != nil {
			return nil, err
		}
		p.logger.Info("exported yearly counts", "path", path)
		files = append(files, path)
	}
	return files, nil
}
