package analysis

import "github.com/ppiankov/evitrend/internal/model"

// RelationKind classifies a statement relative to a target triple
type RelationKind int

const (
	Unrelated   RelationKind = iota // Different subject or object
	Target                          // Same subject, object and type
	Conflicting                     // Same subject and object, different type
)

func (k RelationKind) String() string {
	switch k {
	case Target:
		return "target"
	case Conflicting:
		return "conflicting"
	default:
		return "unrelated"
	}
}

// Relation classifies stmt against t. Names and types are compared with exact
// string equality: "CDK12" and "cdk12" are different entities.
func Relation(stmt model.Statement, t model.Triple) RelationKind {
	if stmt.Subj.Name != t.Subject || stmt.Obj.Name != t.Object {
		return Unrelated
	}
	if stmt.Type == t.Type {
		return Target
	}
	return Conflicting
}

// Partition splits statements into those matching t and those sharing its
// subject and object under a different relationship type. Input order is kept.
func Partition(statements []model.Statement, t model.Triple) (target, conflicting []model.Statement) {
	for _, stmt := range statements {
		switch Relation(stmt, t) {
		case Target:
			target = append(target, stmt)
		case Conflicting:
			conflicting = append(conflicting, stmt)
		}
	}
	return target, conflicting
}

// ValidatedConflicts keeps the statements with at least one Supported evidence
// item. Unvalidated conflicts never reach the report.
func ValidatedConflicts(conflicting []model.Statement) []model.Statement {
	var out []model.Statement
	for _, stmt := range conflicting {
		if stmt.HasValidated() {
			out = append(out, stmt)
		}
	}
	return out
}

// GroupConflicts aggregates conflicting statements by relationship type, in
// order of first appearance, with the year span of their validated evidence
func GroupConflicts(conflicting []model.Statement) []model.ConflictGroup {
	var groups []model.ConflictGroup
	pos := make(map[string]int)

	for _, stmt := range conflicting {
		i, ok := pos[stmt.Type]
		if !ok {
			i = len(groups)
			pos[stmt.Type] = i
			groups = append(groups, model.ConflictGroup{Type: stmt.Type})
		}
		g := &groups[i]
		g.Statements++

		for _, ev := range stmt.Evidence {
			if !ev.IsValidated() || !ev.HasYear() {
				continue
			}
			y := *ev.Year
			if !g.HasYears {
				g.HasYears = true
				g.FirstYear, g.LastYear = y, y
				continue
			}
			if y < g.FirstYear {
				g.FirstYear = y
			}
			if y > g.LastYear {
				g.LastYear = y
			}
		}
	}
	return groups
}
