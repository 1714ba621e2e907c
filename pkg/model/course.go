package model

import "fmt"

type Kind int

const (
	Required Kind = iota
	Elective
)

func (kind Kind) String() string {
	switch kind {
	case Required:
		return "required"
	case Elective:
		return "elective"
	}
	return "unknown"
}

func (kind Kind) MarshalText() ([]byte, error) {
	return []byte(kind.String()), nil
}

func (kind *Kind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "required", "":
		*kind = Required
	case "elective":
		*kind = Elective
	default:
		return fmt.Errorf("unknown course kind %q", string(text))
	}
	return nil
}

type Course struct {
	Code                  string      `json:"code"`
	Name                  string      `json:"name"`
	Credits               int         `json:"credits"`
	Prerequisites         Requirement `json:"prerequisites"`
	Corequisites          Requirement `json:"corequisites"`
	MinAccumulatedCredits int         `json:"minAccumulatedCredits"`
	Kind                  Kind        `json:"kind"`
}

// Clone returns a copy of the course whose requirements can be rewritten freely
func (course Course) Clone() *Course {
	clone := course
	clone.Prerequisites = course.Prerequisites.Clone()
	clone.Corequisites = course.Corequisites.Clone()
	return &clone
}

// DependsOnGroup reports whether the prerequisites still reference an elective group
func (course *Course) DependsOnGroup() bool {
	return len(course.Prerequisites.GroupAtoms()) > 0
}

// unresolvedGroups lists group references left in either requirement
func (course *Course) unresolvedGroups() []string {
	return append(course.Prerequisites.GroupAtoms(), course.Corequisites.GroupAtoms()...)
}
