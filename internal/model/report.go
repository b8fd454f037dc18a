package model

import (
	"sort"
	"time"
)

// YearlyCounts maps a publication year to the number of validated evidence
// items published that year
type YearlyCounts map[int]int

// Years returns the years in ascending order
func (c YearlyCounts) Years() []int {
	years := make([]int, 0, len(c))
	for y := range c {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

// Total returns the sum of all counts
func (c YearlyCounts) Total() int {
	total := 0
	for _, n := range c {
		total += n
	}
	return total
}

// YearCount is one point of a publication trend
type YearCount struct {
	Year  int `json:"year"`
	Count int `json:"count"`
}

// Report is the complete trend / conflict / shift analysis for one triple.
// Sections always appear in this order: trend, conflicts, shift.
type Report struct {
	RunID       string    `json:"run_id,omitempty"`
	GeneratedAt time.Time `json:"generated_at,omitempty"`
	Triple      Triple    `json:"triple"`
	Mode        string    `json:"mode"` // pooled or target

	Statements        int `json:"statements"`         // Statements in the analyzed collection
	TotalEvidence     int `json:"total_evidence"`     // Every evidence item in the analyzed collection
	ValidatedEvidence int `json:"validated_evidence"` // Items labeled Supported, with or without a year

	Trend     TrendSummary    `json:"trend"`
	Conflicts ConflictSummary `json:"conflicts"`
	Shift     ShiftSummary    `json:"shift"`

	Classification *ClassificationStats `json:"classification,omitempty"`
	Story          *StoryResult         `json:"story,omitempty"` // Optional narrative (separate, never feeds the analysis)
}

// TrendSummary describes validated evidence by publication year
type TrendSummary struct {
	Empty     bool        `json:"empty"` // No validated evidence with a year
	Yearly    []YearCount `json:"yearly,omitempty"`
	PeakYear  int         `json:"peak_year,omitempty"`
	PeakCount int         `json:"peak_count,omitempty"`
	MinYear   int         `json:"min_year,omitempty"`
	MinCount  int         `json:"min_count,omitempty"`
}

// Counts rebuilds the year->count mapping from the series
func (t TrendSummary) Counts() YearlyCounts {
	c := make(YearlyCounts, len(t.Yearly))
	for _, yc := range t.Yearly {
		c[yc.Year] = yc.Count
	}
	return c
}

// ConflictSummary lists competing relationship types for the same subject and object
type ConflictSummary struct {
	Groups []ConflictGroup `json:"groups,omitempty"`
}

// ConflictGroup aggregates conflicting statements of one relationship type
type ConflictGroup struct {
	Type       string `json:"type"`
	Statements int    `json:"statements"`
	HasYears   bool   `json:"has_years"` // false when no validated evidence carries a year
	FirstYear  int    `json:"first_year,omitempty"`
	LastYear   int    `json:"last_year,omitempty"`
}

// ShiftSummary reports objects whose interest peaked after the target declined
type ShiftSummary struct {
	HasPeak   bool     `json:"has_peak"`
	PeakYear  int      `json:"peak_year,omitempty"`
	Declining bool     `json:"declining"`
	Objects   []string `json:"objects,omitempty"` // Full detection result
	Shown     []string `json:"shown,omitempty"`   // Objects rendered in the report
	More      int      `json:"more,omitempty"`    // Objects left out of Shown
}

// ClassificationStats counts outcomes of a labeling pass
type ClassificationStats struct {
	Statements   int `json:"statements"`
	Evidence     int `json:"evidence"`
	Supported    int `json:"supported"`
	NotSupported int `json:"not_supported"`
	Failures     int `json:"failures"`   // Judge errors, resolved to NotSupported
	CacheHits    int `json:"cache_hits"` // Verdicts served from cache
}

// Add accumulates another pass into s
func (s *ClassificationStats) Add(o ClassificationStats) {
	s.Statements += o.Statements
	s.Evidence += o.Evidence
	s.Supported += o.Supported
	s.NotSupported += o.NotSupported
	s.Failures += o.Failures
	s.CacheHits += o.CacheHits
}

// StoryResult contains the optional LLM-written narrative
type StoryResult struct {
	Enabled    bool     `json:"enabled"`
	Provider   string   `json:"provider,omitempty"`
	Model      string   `json:"model,omitempty"`
	Story      string   `json:"story,omitempty"`
	TokensUsed int      `json:"tokens_used,omitempty"`
	Warnings   []string `json:"warnings,omitempty"`
}
