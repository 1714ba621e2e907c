package model

import (
	"fmt"
	"slices"
)

// Reason names the rule a course fails
type Reason string

const (
	ReasonNone     Reason = ""
	ReasonCredits  Reason = "credits"
	ReasonPrereq   Reason = "prereq"
	ReasonCoreq    Reason = "coreq"
	ReasonCapacity Reason = "capacity"
	ReasonGroup    Reason = "group"
	ReasonTerm     Reason = "term"
)

// Validation is the result of checking one placement. Reason and Message describe the
// first failing gate; Failures lists every gate that failed.
type Validation struct {
	OK       bool     `json:"ok"`
	Reason   Reason   `json:"reason,omitempty"`
	Message  string   `json:"message,omitempty"`
	Failures []Reason `json:"failures,omitempty"`
}

// OnlyCorequisites reports whether the corequisite gate is the sole failure, which an
// auto-pull placement may tolerate
func (validation Validation) OnlyCorequisites() bool {
	return !validation.OK && len(validation.Failures) == 1 && validation.Failures[0] == ReasonCoreq
}

func (validation *Validation) fail(reason Reason, message string) {
	if validation.OK {
		validation.OK = false
		validation.Reason = reason
		validation.Message = message
	}
	validation.Failures = append(validation.Failures, reason)
}

// ValidatePlacement checks whether course may sit in term of plan:
//   - the credits accumulated in earlier terms reach the course's minimum
//   - the prerequisites hold against courses of strictly earlier terms
//   - the corequisites hold against earlier terms plus the other courses of the same term
//
// Every gate is evaluated even after a failure.
func (resolution *ResolutionContext) ValidatePlacement(course *Course, term int, plan Plan) Validation {
	prior := plan.Before(term)
	priorCredits := resolution.Credits(prior)
	sameTerm := slices.DeleteFunc(slices.Clone(plan.In(term)), func(code string) bool {
		return code == course.Code
	})

	validation := Validation{OK: true}

	if course.MinAccumulatedCredits > priorCredits {
		validation.fail(ReasonCredits, fmt.Sprintf("%s requires %d accumulated credits before term %d (found %d)", course.Code, course.MinAccumulatedCredits, term, priorCredits))
	}

	priorSet := codeSet(prior)
	if !IsSatisfied(course.Prerequisites, priorSet, resolution.Groups) {
		validation.fail(ReasonPrereq, fmt.Sprintf("%s prerequisites not met before term %d: %v", course.Code, term, course.Prerequisites))
	}

	if !IsSatisfied(course.Corequisites, codeSet(prior, sameTerm), resolution.Groups) {
		validation.fail(ReasonCoreq, fmt.Sprintf("%s must be taken with or after: %v", course.Code, course.Corequisites))
	}

	return validation
}
