package analysis

import "github.com/ppiankov/evitrend/internal/model"

// DetectShift reports a shift of interest away from t: when t's trend has
// declined after its peak, it returns every other object under the same
// subject and relationship type whose own peak is later. Objects come back in
// the order they first appeared in the index.
func DetectShift(idx *Index, t model.Triple) []string {
	target := FindPeakAndDecline(idx.Counts(t))
	if !target.Found || !target.Declining {
		return nil
	}

	var shifted []string
	for _, obj := range idx.Objects(t.Subject, t.Type) {
		if obj == t.Object {
			continue
		}
		other := FindPeakAndDecline(idx.Counts(model.Triple{Subject: t.Subject, Type: t.Type, Object: obj}))
		if other.Found && other.Year > target.Year {
			shifted = append(shifted, obj)
		}
	}
	return shifted
}

// summarizeShift splits a detection result into the shown head and an
// overflow count
func summarizeShift(target Peak, objects []string, limit int) model.ShiftSummary {
	s := model.ShiftSummary{
		HasPeak:   target.Found,
		PeakYear:  target.Year,
		Declining: target.Declining,
		Objects:   objects,
	}
	if limit <= 0 {
		limit = DefaultShiftLimit
	}
	if len(objects) > limit {
		s.Shown = objects[:limit]
		s.More = len(objects) - limit
	} else {
		s.Shown = objects
	}
	return s
}
