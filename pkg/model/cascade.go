package model

import (
	"slices"

	"github.com/rs/zerolog/log"
)

// Ejection records a course that repair took out of the plan
type Ejection struct {
	Code       string     `json:"code"`
	Name       string     `json:"name"`
	Term       int        `json:"term"`
	Validation Validation `json:"validation"`
}

// Repair re-validates every placed course where it sits, term by term, and removes the
// ones that fail. Removing a course can break the courses relying on it, so scans repeat
// until one finds nothing to remove. Codes outside the universe are left in place.
func (resolution *ResolutionContext) Repair(plan Plan) (Plan, []Ejection) {
	repaired := plan.Clone()
	var ejected []Ejection

	for changed := true; changed; {
		changed = false

		for term := 1; term <= repaired.TermCount(); term++ {
			for _, code := range slices.Clone(repaired.In(term)) {
				course, ok := resolution.Course(code)
				if !ok {
					log.Debug().Str("course", code).Int("term", term).Msg("placed course outside the universe skipped by repair")
					continue
				}

				validation := resolution.ValidatePlacement(course, term, repaired)
				if validation.OK {
					continue
				}

				repaired.Remove(code)
				ejected = append(ejected, Ejection{
					Code:       code,
					Name:       course.Name,
					Term:       term,
					Validation: validation,
				})
				changed = true
			}
		}
	}

	return repaired, ejected
}
