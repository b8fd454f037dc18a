package analysis

import "github.com/ppiankov/evitrend/internal/model"

// Index aggregates evidence counts by subject, relationship type, object and
// publication year. A cell exists only once a count has been written to it.
type Index struct {
	cells   map[model.Triple]model.YearlyCounts
	objects map[relKey][]string // First-appearance order of objects per (subject, type)
}

type relKey struct {
	subject string
	relType string
}

// BuildIndex builds the index from a statement collection. Statements missing
// a subject, type or object are skipped, as is evidence without an integer
// year. With validatedOnly, only evidence labeled Supported is counted.
func BuildIndex(statements []model.Statement, validatedOnly bool) *Index {
	idx := &Index{
		cells:   make(map[model.Triple]model.YearlyCounts),
		objects: make(map[relKey][]string),
	}

	for _, stmt := range statements {
		t := stmt.Triple()
		if !t.Valid() {
			continue
		}
		for _, ev := range stmt.Evidence {
			if validatedOnly && !ev.IsValidated() {
				continue
			}
			if !ev.HasYear() {
				continue
			}
			idx.add(t, *ev.Year)
		}
	}

	return idx
}

func (idx *Index) add(t model.Triple, year int) {
	cell, ok := idx.cells[t]
	if !ok {
		cell = make(model.YearlyCounts)
		idx.cells[t] = cell
		key := relKey{subject: t.Subject, relType: t.Type}
		idx.objects[key] = append(idx.objects[key], t.Object)
	}
	cell[year]++
}

// Counts returns the year counts for a triple, or nil if nothing was indexed
// for it. The returned map must not be modified.
func (idx *Index) Counts(t model.Triple) model.YearlyCounts {
	return idx.cells[t]
}

// Objects returns the objects indexed under (subject, relType) in the order
// they first appeared in the input
func (idx *Index) Objects(subject, relType string) []string {
	objs := idx.objects[relKey{subject: subject, relType: relType}]
	out := make([]string, len(objs))
	copy(out, objs)
	return out
}

// Len returns the number of populated cells
func (idx *Index) Len() int {
	return len(idx.cells)
}
