package analysis

import (
	"github.com/montanaflynn/stats"

	"github.com/ppiankov/evitrend/internal/model"
)

// DeclineRatio is the fixed threshold: activity after the peak declines when
// its mean falls below this fraction of the peak count
const DeclineRatio = 0.5

// Peak is the result of peak and decline detection on one distribution
type Peak struct {
	Found     bool // false for an empty distribution
	Year      int
	Count     int
	Declining bool
}

// FindPeakAndDecline finds the year with the highest count (earliest year on
// ties) and whether the mean count of the years after it drops below
// DeclineRatio of the peak. A peak with no later years never declines.
func FindPeakAndDecline(counts model.YearlyCounts) Peak {
	year, count, ok := PeakYear(counts)
	if !ok {
		return Peak{}
	}
	p := Peak{Found: true, Year: year, Count: count}

	var after stats.Float64Data
	for _, y := range counts.Years() {
		if y > year {
			after = append(after, float64(counts[y]))
		}
	}
	if len(after) == 0 {
		return p
	}

	avgAfter, err := stats.Mean(after)
	if err != nil {
		return p
	}
	p.Declining = avgAfter < float64(count)*DeclineRatio
	return p
}

// PeakYear returns the year with the maximum count; ties go to the earliest year
func PeakYear(counts model.YearlyCounts) (year, count int, ok bool) {
	return extreme(counts, func(n, best int) bool { return n > best })
}

// MinYear returns the year with the minimum count; ties go to the earliest year
func MinYear(counts model.YearlyCounts) (year, count int, ok bool) {
	return extreme(counts, func(n, best int) bool { return n < best })
}

// extreme scans years in ascending order and only replaces the current pick
// on a strict improvement, which keeps the earliest year on ties
func extreme(counts model.YearlyCounts, better func(n, best int) bool) (int, int, bool) {
	years := counts.Years()
	if len(years) == 0 {
		return 0, 0, false
	}
	year, count := years[0], counts[years[0]]
	for _, y := range years[1:] {
		if better(counts[y], count) {
			year, count = y, counts[y]
		}
	}
	return year, count, true
}
