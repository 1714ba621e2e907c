package model

import (
	"strings"

	"github.com/samber/lo"
)

// Requirement is a disjunction of conjunctions: the requirement holds if every atom of at
// least one inner slice holds. Atoms are course codes or elective group codes.
//
// Example:
//
//	Requirement{{"MAT1161", "MAT1200"}, {"MAT1157"}} // (MAT1161 AND MAT1200) OR MAT1157
type Requirement [][]string

// IsEmpty reports whether the requirement is the "no requirement" sentinel: no
// alternatives at all, or exactly one alternative without atoms
func (requirement Requirement) IsEmpty() bool {
	return len(requirement) == 0 || (len(requirement) == 1 && len(requirement[0]) == 0)
}

// Clone returns a deep copy, so that substitution on the copy never reaches the original
func (requirement Requirement) Clone() Requirement {
	if requirement == nil {
		return nil
	}
	return lo.Map(requirement, func(alternative []string, _ int) []string {
		return append(make([]string, 0, len(alternative)), alternative...)
	})
}

// Atoms returns every distinct atom in order of first appearance
func (requirement Requirement) Atoms() []string {
	return lo.Uniq(lo.Flatten(requirement))
}

// GroupAtoms returns the distinct atoms that follow the elective group code convention
func (requirement Requirement) GroupAtoms() []string {
	return lo.Filter(requirement.Atoms(), func(atom string, _ int) bool {
		return IsGroupCode(atom)
	})
}

// String renders the requirement as "A AND B OR C", or "none" when empty
func (requirement Requirement) String() string {
	if requirement.IsEmpty() {
		return "none"
	}
	alternatives := lo.Map(requirement, func(alternative []string, _ int) string {
		return strings.Join(alternative, " AND ")
	})
	return strings.Join(alternatives, " OR ")
}
