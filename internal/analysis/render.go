package analysis

import (
	"fmt"
	"strings"

	"github.com/ppiankov/evitrend/internal/model"
)

// Render formats a report as the plain-text block quoted in the narrative
// prompt: trend, conflicts and interest shift, always in that order
func Render(r *model.Report) string {
	var b strings.Builder

	b.WriteString("\n=== Trend & Conflicts (validated evidence) ===\n")

	if r.Statements == 0 {
		b.WriteString("No statements provided for trend analysis.\n")
		b.WriteString("==============================================\n")
		return b.String()
	}
	if r.Trend.Empty {
		b.WriteString("No correct evidence available for trend analysis.\n")
		b.WriteString("==============================================\n")
		return b.String()
	}

	b.WriteString("\n## Trend summary\n")
	b.WriteString(RenderTrend(r.Trend))

	b.WriteString("\n## Conflict summary\n")
	b.WriteString(RenderConflicts(r.Triple, r.Conflicts))

	b.WriteString("\n## Interest shift\n")
	b.WriteString(RenderShift(r.Shift))

	b.WriteString("==============================================\n")
	return b.String()
}

// RenderTrend formats the yearly series with its peak and lowest year
func RenderTrend(t model.TrendSummary) string {
	if t.Empty {
		return "No correct evidence available for trend analysis.\n"
	}
	var b strings.Builder
	b.WriteString("Publication trend (validated evidence):\n")
	for _, yc := range t.Yearly {
		fmt.Fprintf(&b, "Year %d: %d publication(s)\n", yc.Year, yc.Count)
	}
	fmt.Fprintf(&b, "Peak publication year: %d (%d publications).\n", t.PeakYear, t.PeakCount)
	fmt.Fprintf(&b, "Lowest publication year: %d (%d publications).\n", t.MinYear, t.MinCount)
	return b.String()
}

// RenderConflicts formats conflict groups as "Type (N statements) ~first–last"
func RenderConflicts(t model.Triple, c model.ConflictSummary) string {
	if len(c.Groups) == 0 {
		return "No conflicting statements found.\n"
	}
	parts := make([]string, 0, len(c.Groups))
	for _, g := range c.Groups {
		parts = append(parts, FormatConflictGroup(g))
	}
	return fmt.Sprintf("Conflicts for (subj=%s, obj=%s):\n%s\n", t.Subject, t.Object, strings.Join(parts, "; "))
}

// FormatConflictGroup formats a single conflict group
func FormatConflictGroup(g model.ConflictGroup) string {
	noun := "statements"
	if g.Statements == 1 {
		noun = "statement"
	}
	if !g.HasYears {
		return fmt.Sprintf("%s (%d %s) - no validated evidence with a publication year", g.Type, g.Statements, noun)
	}
	return fmt.Sprintf("%s (%d %s) ~%d–%d", g.Type, g.Statements, noun, g.FirstYear, g.LastYear)
}

// RenderShift formats the shown shifted-to objects plus the overflow marker
func RenderShift(s model.ShiftSummary) string {
	if len(s.Objects) == 0 {
		return "No clear indication of interest shift.\n"
	}
	list := strings.Join(s.Shown, ", ")
	if s.More > 0 {
		list += fmt.Sprintf(" (+%d more)", s.More)
	}
	return fmt.Sprintf("Potential interest shift after the %d peak, rising: %s\n", s.PeakYear, list)
}
