package model

import (
	"slices"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
)

// DefaultMaxTermCredits is the credit ceiling of a single term
const DefaultMaxTermCredits = 30

// ResolutionContext is the state threaded through every engine call during one refresh:
// the universe of working course clones, the elective group table, the plan snapshot and
// the term credit ceiling. It is built once per refresh and discarded afterwards, so
// substitution on the universe never reaches the service output it was cloned from.
type ResolutionContext struct {
	Universe       map[string]*Course
	Groups         Groups
	Plan           Plan
	MaxTermCredits int
}

// NewResolutionContext clones the obligatory courses (tagged Required) and the elected
// electives (tagged Elective) into a fresh universe. A code listed in both keeps the
// Required tag.
func NewResolutionContext(obligatory, elected []Course, groups Groups, plan Plan) *ResolutionContext {
	universe := make(map[string]*Course, len(obligatory)+len(elected))

	for _, course := range obligatory {
		clone := course.Clone()
		clone.Kind = Required
		universe[clone.Code] = clone
	}
	for _, course := range elected {
		if _, ok := universe[course.Code]; ok {
			continue
		}
		clone := course.Clone()
		clone.Kind = Elective
		universe[clone.Code] = clone
	}

	if groups == nil {
		groups = Groups{}
	}

	return &ResolutionContext{
		Universe:       universe,
		Groups:         groups,
		Plan:           plan.Clone(),
		MaxTermCredits: DefaultMaxTermCredits,
	}
}

// Course looks a code up in the universe
func (resolution *ResolutionContext) Course(code string) (*Course, bool) {
	course, ok := resolution.Universe[code]
	return course, ok
}

// Credits sums the credits of the given codes; codes outside the universe count as zero
func (resolution *ResolutionContext) Credits(codes []string) int {
	return lo.SumBy(codes, func(code string) int {
		course, ok := resolution.Universe[code]
		if !ok {
			log.Debug().Str("course", code).Msg("credits requested for a course outside the universe")
			return 0
		}
		return course.Credits
	})
}

// TermCredits returns the credit total of every term of plan
func (resolution *ResolutionContext) TermCredits(plan Plan) []int {
	return lo.Map(plan.Terms, func(term []string, _ int) int {
		return resolution.Credits(term)
	})
}

// sortedCourses returns the universe ordered by code, which fixes iteration order
func (resolution *ResolutionContext) sortedCourses() []*Course {
	courses := lo.Values(resolution.Universe)
	slices.SortFunc(courses, func(a, b *Course) int {
		return strings.Compare(a.Code, b.Code)
	})
	return courses
}
