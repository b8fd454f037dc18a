package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"github.com/ppiankov/evitrend/internal/analysis"
	"github.com/ppiankov/evitrend/internal/model"
)

// Renderer writes reports to disk and summaries to the terminal
type Renderer struct{}

// NewRenderer creates a new renderer
func NewRenderer() *Renderer {
	return &Renderer{}
}

// RenderJSON writes the report as indented JSON
func (r *Renderer) RenderJSON(report *model.Report, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	return writeFile(path, append(data, '\n'))
}

// RenderMarkdown writes MarkdownReport to path
func (r *Renderer) RenderMarkdown(report *model.Report, path string) error {
	return writeFile(path, []byte(MarkdownReport(report)))
}

// RenderHTML converts MarkdownReport to a standalone HTML page
func (r *Renderer) RenderHTML(report *model.Report, path string) error {
	return writeFile(path, HTMLReport(report))
}

// HTMLReport renders the markdown report as a complete HTML document
func HTMLReport(report *model.Report) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	doc := p.Parse([]byte(MarkdownReport(report)))

	renderer := mdhtml.NewRenderer(mdhtml.RendererOptions{
		Flags: mdhtml.CommonFlags | mdhtml.CompletePage | mdhtml.HrefTargetBlank,
		Title: "evitrend: " + report.Triple.String(),
	})
	return markdown.Render(doc, renderer)
}

// MarkdownReport formats the report for humans. Sections keep the fixed
// order trend, conflicts, shift; the story comes last and is marked as
// generated text.
func MarkdownReport(report *model.Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Trend report: %s\n\n", report.Triple.String())
	if report.RunID != "" {
		fmt.Fprintf(&b, "- **Run ID:** %s\n", report.RunID)
	}
	if !report.GeneratedAt.IsZero() {
		fmt.Fprintf(&b, "- **Generated:** %s\n", report.GeneratedAt.Format("2006-01-02 15:04:05 MST"))
	}
	fmt.Fprintf(&b, "- **Mode:** %s\n", report.Mode)
	fmt.Fprintf(&b, "- **Statements analyzed:** %d\n", report.Statements)
	fmt.Fprintf(&b, "- **Validated evidence:** %d of %d\n\n", report.ValidatedEvidence, report.TotalEvidence)

	if c := report.Classification; c != nil {
		b.WriteString("## Classification\n\n")
		b.WriteString("| Statements | Evidence | Supported | Not supported | Failures | Cache hits |\n")
		b.WriteString("|---:|---:|---:|---:|---:|---:|\n")
		fmt.Fprintf(&b, "| %d | %d | %d | %d | %d | %d |\n\n",
			c.Statements, c.Evidence, c.Supported, c.NotSupported, c.Failures, c.CacheHits)
	}

	b.WriteString("## Trend summary\n\n")
	if report.Trend.Empty {
		b.WriteString("No correct evidence available for trend analysis.\n\n")
	} else {
		b.WriteString("| Year | Publications |\n|---:|---:|\n")
		for _, yc := range report.Trend.Yearly {
			fmt.Fprintf(&b, "| %d | %d |\n", yc.Year, yc.Count)
		}
		fmt.Fprintf(&b, "\nPeak publication year: **%d** (%d publications).  \n", report.Trend.PeakYear, report.Trend.PeakCount)
		fmt.Fprintf(&b, "Lowest publication year: **%d** (%d publications).\n\n", report.Trend.MinYear, report.Trend.MinCount)
	}

	b.WriteString("## Conflict summary\n\n")
	if len(report.Conflicts.Groups) == 0 {
		b.WriteString("No validated conflicting statements.\n\n")
	} else {
		for _, g := range report.Conflicts.Groups {
			fmt.Fprintf(&b, "- %s\n", analysis.FormatConflictGroup(g))
		}
		b.WriteString("\n")
	}

	b.WriteString("## Interest shift\n\n")
	b.WriteString(analysis.RenderShift(report.Shift))
	b.WriteString("\n")

	if s := report.Story; s != nil && (s.Story != "" || len(s.Warnings) > 0) {
		b.WriteString("## Story\n\n")
		fmt.Fprintf(&b, "> Generated by %s", s.Provider)
		if s.Model != "" {
			fmt.Fprintf(&b, " (%s)", s.Model)
		}
		b.WriteString(". The analysis above does not depend on it.\n\n")
		if s.Story != "" {
			b.WriteString(s.Story)
			b.WriteString("\n\n")
		}
		if len(s.Warnings) > 0 {
			b.WriteString("### Notes\n\n")
			for _, w := range s.Warnings {
				fmt.Fprintf(&b, "- %s\n", w)
			}
			b.WriteString("\n")
		}
	}

	return b.String()
}

// RenderSummary prints a short run summary to w
func (r *Renderer) RenderSummary(w io.Writer, result *Result) {
	report := result.Report
	fmt.Fprintf(w, "\n%s\n", strings.Repeat("=", 60))
	fmt.Fprintf(w, "Triple: %s\n", report.Triple.String())
	fmt.Fprintf(w, "Statements: %d target, %d conflicting\n", result.Targets, result.Conflicts)
	if c := report.Classification; c != nil {
		fmt.Fprintf(w, "Evidence: %d checked, %d supported, %d failures, %d from cache\n",
			c.Evidence, c.Supported, c.Failures, c.CacheHits)
	}
	if report.Trend.Empty {
		fmt.Fprintf(w, "Trend: no validated evidence with a year\n")
	} else {
		fmt.Fprintf(w, "Trend: %d years, peak %d (%d)\n", len(report.Trend.Yearly), report.Trend.PeakYear, report.Trend.PeakCount)
	}
	fmt.Fprintf(w, "Conflicts: %d type(s)\n", len(report.Conflicts.Groups))
	if len(report.Shift.Objects) > 0 {
		fmt.Fprintf(w, "Shift: %d rising object(s)\n", len(report.Shift.Objects))
	}
	for _, f := range result.Files {
		fmt.Fprintf(w, "  wrote %s\n", f)
	}
	fmt.Fprintf(w, "%s\n", strings.Repeat("=", 60))
}

// ReportBaseName is the file stem for a triple's report files
func ReportBaseName(t model.Triple) string {
	name := fmt.Sprintf("report_%s_%s_%s", t.Type, t.Subject, t.Object)
	return strings.NewReplacer("/", "_", "\\", "_", " ", "_").Replace(name)
}

// RenderReport writes the JSON and Markdown reports (and HTML when
// configured) into dir and returns the written paths.
func (p *Pipeline) RenderReport(report *model.Report, dir string) ([]string, error) {
	if dir == "" {
		dir = p.outputDir("")
	}
	base := filepath.Join(dir, ReportBaseName(report.Triple))

	var files []string
	if err := p.renderer.RenderJSON(report, base+".json"); err != nil {
		return files, fmt.Errorf("render JSON: %w", err)
	}
	files = append(files, base+".json")

	if err := p.renderer.RenderMarkdown(report, base+".md"); err != nil {
		return files, fmt.Errorf("render markdown: %w", err)
	}
	files = append(files, base+".md")

	if p.config.Output.WriteHTML {
		if err := p.renderer.RenderHTML(report, base+".html"); err != nil {
			return files, fmt.Errorf("render HTML: %w", err)
		}
		files = append(files, base+".html")
	}

	for _, f := range files {
		p.logger.Debug("wrote report", "path", f)
	}
	return files, nil
}

// Renderer returns the pipeline's renderer
func (p *Pipeline) Renderer() *Renderer {
	return p.renderer
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
