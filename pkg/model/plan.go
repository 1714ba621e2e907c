package model

import (
	"slices"

	"github.com/samber/lo"
)

// Plan is the ordered sequence of terms. Terms are addressed 1-indexed by every method;
// a course code appears in at most one term.
type Plan struct {
	Terms [][]string `json:"terms"`
}

func NewPlan(terms int) Plan {
	plan := Plan{Terms: make([][]string, terms)}
	for i := range plan.Terms {
		plan.Terms[i] = []string{}
	}
	return plan
}

func (plan Plan) Clone() Plan {
	return Plan{Terms: lo.Map(plan.Terms, func(term []string, _ int) []string {
		return append(make([]string, 0, len(term)), term...)
	})}
}

func (plan Plan) TermCount() int {
	return len(plan.Terms)
}

func (plan Plan) ValidTerm(term int) bool {
	return term >= 1 && term <= len(plan.Terms)
}

// TermOf returns the term holding code, or 0 when it is not placed
func (plan Plan) TermOf(code string) int {
	for i, term := range plan.Terms {
		if slices.Contains(term, code) {
			return i + 1
		}
	}
	return 0
}

// In returns the codes placed in term
func (plan Plan) In(term int) []string {
	if !plan.ValidTerm(term) {
		return nil
	}
	return plan.Terms[term-1]
}

// Before returns the codes placed in every term strictly before term
func (plan Plan) Before(term int) []string {
	limit := min(max(term-1, 0), len(plan.Terms))
	return lo.Flatten(plan.Terms[:limit])
}

// Placed returns every placed code, term by term
func (plan Plan) Placed() []string {
	return lo.Flatten(plan.Terms)
}

func (plan Plan) PlacedSet() map[string]bool {
	return codeSet(plan.Placed())
}

// Add places code into term, taking it out of any other term first
func (plan *Plan) Add(code string, term int) {
	if !plan.ValidTerm(term) {
		return
	}
	if current := plan.TermOf(code); current == term {
		return
	}
	plan.Remove(code)
	plan.Terms[term-1] = append(plan.Terms[term-1], code)
}

// Remove takes code out of the plan, reporting whether it was placed
func (plan *Plan) Remove(code string) bool {
	term := plan.TermOf(code)
	if term == 0 {
		return false
	}
	plan.Terms[term-1] = slices.DeleteFunc(plan.Terms[term-1], func(placed string) bool {
		return placed == code
	})
	return true
}

// AddTerm appends an empty term and returns its index
func (plan *Plan) AddTerm() int {
	plan.Terms = append(plan.Terms, []string{})
	return len(plan.Terms)
}

// RemoveTerm deletes term, shifting later terms down so indices stay contiguous, and
// returns the codes that were placed in it
func (plan *Plan) RemoveTerm(term int) []string {
	if !plan.ValidTerm(term) {
		return nil
	}
	removed := plan.Terms[term-1]
	plan.Terms = slices.Delete(plan.Terms, term-1, term)
	return removed
}
