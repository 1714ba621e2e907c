package model

import (
	"fmt"
	"slices"
	"strings"

	"github.com/samber/lo"
)

// Placement is the outcome of planning a compound placement
type Placement struct {
	Plan       Plan       `json:"plan"`
	Course     string     `json:"course"`
	Term       int        `json:"term"`
	Pulled     []string   `json:"pulled,omitempty"`
	Validation Validation `json:"validation"`
}

// PlanPlacement computes the plan obtained by placing course into term, pulling along
// the corequisites it is missing there. Nothing in plan is modified; when the returned
// validation fails, Placement.Plan is the unchanged input.
//
// Corequisites to pull come from the first alternative of the corequisite requirement
// with the fewest missing atoms among those whose missing atoms are all courses of the
// universe. Group references resolve to their first listed option that is placed or
// part of the universe before counting. The whole compound placement is rejected when it would push the term over
// the credit ceiling, or when any of its members fails validation once all are placed.
func (resolution *ResolutionContext) PlanPlacement(course *Course, term int, plan Plan) Placement {
	placement := Placement{Plan: plan, Course: course.Code, Term: term}

	if !plan.ValidTerm(term) {
		placement.Validation = Validation{
			Reason:   ReasonTerm,
			Message:  fmt.Sprintf("term %d is outside the plan of %d terms", term, len(plan.Terms)),
			Failures: []Reason{ReasonTerm},
		}
		return placement
	}

	//** Corequisites to pull along
	pulled, validation := resolution.corequisitesToPull(course, term, plan)
	if !validation.OK {
		placement.Validation = validation
		return placement
	}
	placement.Pulled = pulled

	//** Term capacity
	members := append([]string{course.Code}, pulled...)
	remaining := lo.Filter(plan.In(term), func(code string, _ int) bool {
		return !slices.Contains(members, code)
	})
	total := resolution.Credits(remaining) + resolution.Credits(members)
	if total > resolution.MaxTermCredits {
		placement.Validation = Validation{
			Reason:   ReasonCapacity,
			Message:  fmt.Sprintf("term %d would hold %d credits, above the limit of %d", term, total, resolution.MaxTermCredits),
			Failures: []Reason{ReasonCapacity},
		}
		return placement
	}

	//** Every member validated on the tentative plan
	tentative := plan.Clone()
	for _, code := range members {
		tentative.Add(code, term)
	}
	for _, code := range members {
		member, _ := resolution.Course(code)
		if member == nil {
			member = course
		}
		validation := resolution.ValidatePlacement(member, term, tentative)
		if !validation.OK {
			if code != course.Code {
				validation.Message = fmt.Sprintf("corequisite %s of %s cannot join term %d: %s", code, course.Code, term, validation.Message)
			}
			placement.Validation = validation
			return placement
		}
	}

	placement.Plan = tentative
	placement.Validation = Validation{OK: true}
	return placement
}

func (resolution *ResolutionContext) corequisitesToPull(course *Course, term int, plan Plan) ([]string, Validation) {
	available := codeSet(plan.Before(term), lo.Without(plan.In(term), course.Code))
	if IsSatisfied(course.Corequisites, available, resolution.Groups) {
		return nil, Validation{OK: true}
	}

	known := codeSet(plan.Placed(), lo.Keys(resolution.Universe))
	var best []string
	var groups []string
	for _, alternative := range course.Corequisites {
		resolved := lo.Map(alternative, func(atom string, _ int) string {
			if !IsGroupCode(atom) {
				return atom
			}
			if option, ok := resolution.Groups.Choose(atom, known); ok {
				return option
			}
			return atom
		})
		missing := lo.Uniq(Missing(resolved, available, resolution.Groups))
		completable := lo.EveryBy(missing, func(atom string) bool {
			_, ok := resolution.Course(atom)
			return ok && atom != course.Code
		})
		if !completable {
			groups = append(groups, lo.Filter(missing, func(atom string, _ int) bool { return IsGroupCode(atom) })...)
			continue
		}
		if best == nil || len(missing) < len(best) {
			best = missing
		}
	}

	if best == nil {
		message := fmt.Sprintf("%s corequisites cannot be pulled into term %d: %v", course.Code, term, course.Corequisites)
		if len(groups) > 0 {
			message = fmt.Sprintf("%s needs a choice in elective group %s first", course.Code, strings.Join(lo.Uniq(groups), ", "))
		}
		return nil, Validation{Reason: ReasonCoreq, Message: message, Failures: []Reason{ReasonCoreq}}
	}
	return best, Validation{OK: true}
}
