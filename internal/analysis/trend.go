package analysis

import (
	"fmt"

	"github.com/ppiankov/evitrend/internal/model"
)

// Mode selects which statements feed the yearly trend
type Mode string

const (
	// ModePooled counts validated evidence of every statement in the
	// collection, target and conflicts alike
	ModePooled Mode = "pooled"
	// ModeTargetOnly counts only statements matching the current triple
	ModeTargetOnly Mode = "target"
)

// DefaultShiftLimit is how many shifted-to objects a report shows
const DefaultShiftLimit = 5

// ParseMode parses a mode name; the empty string selects ModePooled
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModePooled:
		return ModePooled, nil
	case ModeTargetOnly:
		return ModeTargetOnly, nil
	default:
		return "", fmt.Errorf("unknown analysis mode: %s (supported: pooled, target)", s)
	}
}

type options struct {
	mode       Mode
	triple     *model.Triple
	shiftLimit int
}

// Option customizes BuildReport
type Option func(*options)

// WithMode selects pooled or target-only trend counting
func WithMode(m Mode) Option {
	return func(o *options) { o.mode = m }
}

// WithTriple fixes the analyzed triple instead of taking it from the first
// statement of the collection
func WithTriple(t model.Triple) Option {
	return func(o *options) { o.triple = &t }
}

// WithShiftLimit sets how many shifted-to objects the report shows
func WithShiftLimit(n int) Option {
	return func(o *options) { o.shiftLimit = n }
}

// BuildReport runs trend, conflict and shift analysis over a labeled
// statement collection. Only evidence labeled Supported contributes. The
// collection is expected to hold one triple plus its conflicts; without
// WithTriple the first statement decides which triple is analyzed.
//
// Empty input and input without validated evidence both produce a report
// with Trend.Empty set rather than an error.
func BuildReport(statements []model.Statement, opts ...Option) *model.Report {
	o := options{mode: ModePooled, shiftLimit: DefaultShiftLimit}
	for _, opt := range opts {
		opt(&o)
	}

	report := &model.Report{
		Mode:       string(o.mode),
		Statements: len(statements),
		Trend:      model.TrendSummary{Empty: true},
	}

	switch {
	case o.triple != nil:
		report.Triple = *o.triple
	case len(statements) > 0:
		report.Triple = statements[0].Triple()
	default:
		return report
	}
	current := report.Triple

	for _, stmt := range statements {
		report.TotalEvidence += len(stmt.Evidence)
		report.ValidatedEvidence += stmt.ValidatedCount()
	}

	counts := yearlyCounts(statements, current, o.mode)
	if len(counts) == 0 {
		return report
	}
	report.Trend = summarizeTrend(counts)

	_, conflicting := Partition(statements, current)
	report.Conflicts.Groups = GroupConflicts(ValidatedConflicts(conflicting))

	idx := BuildIndex(statements, true)
	target := FindPeakAndDecline(idx.Counts(current))
	report.Shift = summarizeShift(target, DetectShift(idx, current), o.shiftLimit)

	return report
}

// yearlyCounts counts validated evidence with a year. Statements missing a
// subject, type or object still count in pooled mode: only the index requires
// a complete triple.
func yearlyCounts(statements []model.Statement, current model.Triple, mode Mode) model.YearlyCounts {
	counts := make(model.YearlyCounts)
	for _, stmt := range statements {
		if mode == ModeTargetOnly && Relation(stmt, current) != Target {
			continue
		}
		for _, ev := range stmt.Evidence {
			if ev.IsValidated() && ev.HasYear() {
				counts[*ev.Year]++
			}
		}
	}
	return counts
}

func summarizeTrend(counts model.YearlyCounts) model.TrendSummary {
	t := model.TrendSummary{}
	for _, y := range counts.Years() {
		t.Yearly = append(t.Yearly, model.YearCount{Year: y, Count: counts[y]})
	}
	t.PeakYear, t.PeakCount, _ = PeakYear(counts)
	t.MinYear, t.MinCount, _ = MinYear(counts)
	return t
}
