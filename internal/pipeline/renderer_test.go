package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/evitrend/internal/model"
)

func sampleReport() *model.Report {
	return &model.Report{
		RunID:             "run-1",
		Triple:            target,
		Mode:              "pooled",
		Statements:        2,
		TotalEvidence:     4,
		ValidatedEvidence: 3,
		Trend: model.TrendSummary{
			Yearly:    []model.YearCount{{Year: 2019, Count: 1}, {Year: 2020, Count: 2}},
			PeakYear:  2020,
			PeakCount: 2,
			MinYear:   2019,
			MinCount:  1,
		},
		Conflicts: model.ConflictSummary{Groups: []model.ConflictGroup{
			{Type: "Inhibition", Statements: 2, HasYears: true, FirstYear: 2018, LastYear: 2022},
		}},
		Shift:          model.ShiftSummary{HasPeak: true, PeakYear: 2020, Declining: true, Objects: []string{"C"}, Shown: []string{"C"}},
		Classification: &model.ClassificationStats{Statements: 2, Evidence: 4, Supported: 3, NotSupported: 1},
		Story: &model.StoryResult{
			Enabled:  true,
			Provider: "openai",
			Model:    "gpt-4o-mini",
			Story:    "A story & more.",
			Warnings: []string{"Tokens used: 12"},
		},
	}
}

func TestMarkdownReport_SectionOrder(t *testing.T) {
	md := MarkdownReport(sampleReport())

	order := []string{
		"# Trend report: A Activation B",
		"## Classification",
		"## Trend summary",
		"| 2020 | 2 |",
		"Peak publication year: **2020** (2 publications).",
		"## Conflict summary",
		"- Inhibition (2 statements) ~2018–2022",
		"## Interest shift",
		"Potential interest shift after the 2020 peak, rising: C",
		"## Story",
		"A story & more.",
		"- Tokens used: 12",
	}
	last := -1
	for _, want := range order {
		i := strings.Index(md, want)
		require.GreaterOrEqual(t, i, 0, "missing %q in:\n%s", want, md)
		assert.Greater(t, i, last, "%q out of order", want)
		last = i
	}
}

func TestMarkdownReport_Empty(t *testing.T) {
	md := MarkdownReport(&model.Report{Triple: target, Mode: "pooled", Trend: model.TrendSummary{Empty: true}})

	assert.Contains(t, md, "No correct evidence available for trend analysis.")
	assert.Contains(t, md, "No validated conflicting statements.")
	assert.Contains(t, md, "No clear indication of interest shift.")
	assert.NotContains(t, md, "## Classification")
	assert.NotContains(t, md, "## Story")
}

func TestHTMLReport(t *testing.T) {
	html := string(HTMLReport(sampleReport()))

	assert.Contains(t, html, "<html")
	assert.Contains(t, html, "<title>evitrend: A Activation B</title>")
	assert.Contains(t, html, "<table>")
	assert.Contains(t, html, "A story &amp; more.")
}

func TestRenderReport_WritesFiles(t *testing.T) {
	_, outDir := setup(t)
	p := newTestPipeline(testConfig(outDir), nil)

	files, err := p.RenderReport(sampleReport(), outDir)
	require.NoError(t, err)
	require.Len(t, files, 3)
	for _, f := range files {
		assert.FileExists(t, f)
	}

	data, err := os.ReadFile(files[0])
	require.NoError(t, err)
	var decoded model.Report
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "run-1", decoded.RunID)
	assert.Equal(t, "A story & more.", decoded.Story.Story)
}

func TestRenderSummary(t *testing.T) {
	corpusPath, outDir := setup(t)
	p := newTestPipeline(testConfig(outDir), nil)
	result, err := p.Run(context.Background(), Request{CorpusPath: corpusPath, Triple: target, DryRun: true})
	require.NoError(t, err)

	var buf bytes.Buffer
	p.Renderer().RenderSummary(&buf, result)

	out := buf.String()
	assert.Contains(t, out, "Triple: A Activation B")
	assert.Contains(t, out, "1 target, 1 conflicting")
	assert.Contains(t, out, "Trend: 3 years, peak 2019 (1)")
	assert.Contains(t, out, "wrote ")
}

func TestReportBaseName(t *testing.T) {
	assert.Equal(t, "report_Activation_A_B_1_2", ReportBaseName(model.Triple{Subject: "A", Type: "Activation", Object: "B 1/2"}))
}
