package model

import (
	"fmt"
	"slices"
	"strings"

	"github.com/rs/zerolog/log"
)

type Class int

const (
	Open               Class = iota // A: can be placed now
	GroupBlocked                    // B: waits on an elective group choice
	RequirementBlocked              // C: waits on courses, corequisites or credits
)

func (class Class) String() string {
	switch class {
	case Open:
		return "open"
	case GroupBlocked:
		return "group-blocked"
	case RequirementBlocked:
		return "requirement-blocked"
	}
	return "unknown"
}

func (class Class) MarshalText() ([]byte, error) {
	return []byte(class.String()), nil
}

func (class *Class) UnmarshalText(text []byte) error {
	for _, candidate := range []Class{Open, GroupBlocked, RequirementBlocked} {
		if candidate.String() == string(text) {
			*class = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown course class %q", string(text))
}

// ClassifiedCourse is one entry of the displayable list
type ClassifiedCourse struct {
	*Course
	Class  Class  `json:"class"`
	Locked bool   `json:"locked"`
	Term   int    `json:"term,omitempty"` // 0 when not placed
	Reason Reason `json:"reason,omitempty"`
	Lock   string `json:"lockMessage,omitempty"`
}

// Resolution is the outcome of the fixed-point loop
type Resolution struct {
	Courses       []ClassifiedCourse `json:"courses"`
	Passes        int                `json:"passes"`
	PlacedCredits int                `json:"placedCredits"`
}

// Class returns the class assigned to code, if it belongs to the resolution
func (resolution Resolution) Class(code string) (Class, bool) {
	for _, course := range resolution.Courses {
		if course.Code == code {
			return course.Class, true
		}
	}
	return 0, false
}

// Classes maps every code to its class
func (resolution Resolution) Classes() map[string]Class {
	classes := make(map[string]Class, len(resolution.Courses))
	for _, course := range resolution.Courses {
		classes[course.Code] = course.Class
	}
	return classes
}

type partition struct {
	open, groupBlocked, blocked []*Course
}

// classify performs the initial single-pass distribution of the universe. The credit
// gate comes first: a course short of accumulated credits is blocked whatever its
// requirements look like.
func (resolution *ResolutionContext) classify(placedCredits int) partition {
	var result partition

	for _, course := range resolution.sortedCourses() {
		hasPrerequisites := !course.Prerequisites.IsEmpty()
		hasCorequisites := !course.Corequisites.IsEmpty()

		switch {
		case course.MinAccumulatedCredits > placedCredits:
			result.blocked = append(result.blocked, course)
		case !hasPrerequisites && !hasCorequisites:
			result.open = append(result.open, course)
		case !hasPrerequisites:
			result.blocked = append(result.blocked, course)
		case course.DependsOnGroup():
			result.groupBlocked = append(result.groupBlocked, course)
		default:
			result.blocked = append(result.blocked, course)
		}
	}

	return result
}

// Resolve partitions the universe into open, group-blocked and requirement-blocked
// courses, iterating substitution and reclassification until a full pass moves nothing.
//
// Prerequisites are checked against placed courses only. Corequisites are checked
// against placed courses plus everything currently open. Courses that become open during
// the loop never count as completed prerequisites for other courses.
//
// Courses left group-blocked when the loop settles stay locked.
func (resolution *ResolutionContext) Resolve() Resolution {
	placed := resolution.Plan.PlacedSet()
	placedCredits := resolution.Credits(resolution.Plan.Placed())

	//** Initial distribution
	result := resolution.classify(placedCredits)

	known := codeSet(resolution.Plan.Placed())
	for _, course := range result.open {
		known[course.Code] = true
	}

	//** Fixed-point loop
	passes := 0
	for changed := true; changed; {
		changed = false
		passes++

		// B -> C once the prerequisites no longer reference a group
		for i := len(result.groupBlocked) - 1; i >= 0; i-- {
			course := result.groupBlocked[i]
			resolution.Substitute(course, known)
			if !course.DependsOnGroup() {
				result.groupBlocked = slices.Delete(result.groupBlocked, i, i+1)
				result.blocked = append(result.blocked, course)
				changed = true
			}
		}

		// C -> A once credits, strict prerequisites and flexible corequisites all hold
		for i := len(result.blocked) - 1; i >= 0; i-- {
			course := result.blocked[i]
			resolution.Substitute(course, known)

			creditsOk := course.MinAccumulatedCredits <= placedCredits
			prerequisitesOk := IsSatisfied(course.Prerequisites, placed, resolution.Groups)
			corequisitesOk := IsSatisfied(course.Corequisites, known, resolution.Groups)

			if creditsOk && prerequisitesOk && corequisitesOk {
				result.blocked = slices.Delete(result.blocked, i, i+1)
				result.open = append(result.open, course)
				known[course.Code] = true
				changed = true
			}
		}
	}

	log.Debug().
		Int("passes", passes).
		Int("open", len(result.open)).
		Int("groupBlocked", len(result.groupBlocked)).
		Int("blocked", len(result.blocked)).
		Msg("resolution settled")

	//** Final list
	courses := make([]ClassifiedCourse, 0, len(resolution.Universe))
	for _, course := range result.open {
		courses = append(courses, ClassifiedCourse{Course: course, Class: Open})
	}
	for _, course := range result.groupBlocked {
		courses = append(courses, ClassifiedCourse{
			Course: course,
			Class:  GroupBlocked,
			Locked: true,
			Reason: ReasonGroup,
			Lock:   fmt.Sprintf("waiting for a choice in elective group %s", strings.Join(course.Prerequisites.GroupAtoms(), ", ")),
		})
	}
	for _, course := range result.blocked {
		reason, message := resolution.lockReason(course, placed, known, placedCredits)
		courses = append(courses, ClassifiedCourse{
			Course: course,
			Class:  RequirementBlocked,
			Locked: true,
			Reason: reason,
			Lock:   message,
		})
	}
	for i := range courses {
		courses[i].Term = resolution.Plan.TermOf(courses[i].Code)
	}

	slices.SortStableFunc(courses, compareForDisplay)

	return Resolution{
		Courses:       courses,
		Passes:        passes,
		PlacedCredits: placedCredits,
	}
}

func (resolution *ResolutionContext) lockReason(course *Course, placed, known map[string]bool, placedCredits int) (Reason, string) {
	switch {
	case course.MinAccumulatedCredits > placedCredits:
		return ReasonCredits, fmt.Sprintf("requires %d accumulated credits (plan has %d)", course.MinAccumulatedCredits, placedCredits)
	case !IsSatisfied(course.Prerequisites, placed, resolution.Groups):
		return ReasonPrereq, fmt.Sprintf("prerequisites pending: %v", course.Prerequisites)
	case !IsSatisfied(course.Corequisites, known, resolution.Groups):
		return ReasonCoreq, fmt.Sprintf("corequisites pending: %v", course.Corequisites)
	}
	return ReasonGroup, fmt.Sprintf("waiting for a choice in elective group %s", strings.Join(course.unresolvedGroups(), ", "))
}

// compareForDisplay puts unlocked before locked, required before elective, then code order
func compareForDisplay(a, b ClassifiedCourse) int {
	if a.Locked != b.Locked {
		if a.Locked {
			return 1
		}
		return -1
	}
	if a.Kind != b.Kind {
		if a.Kind == Required {
			return -1
		}
		return 1
	}
	return strings.Compare(a.Code, b.Code)
}
