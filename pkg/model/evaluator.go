package model

import "github.com/samber/lo"

// IsSatisfied checks whether requirement holds against the available course codes.
// An atom holds if its code is available, or if it is a group reference and one of the
// group's options is available. Unknown groups only ever match by their own code.
func IsSatisfied(requirement Requirement, available map[string]bool, groups Groups) bool {
	if requirement.IsEmpty() {
		return true
	}
	return lo.SomeBy(requirement, func(alternative []string) bool {
		return lo.EveryBy(alternative, func(atom string) bool {
			return atomSatisfied(atom, available, groups)
		})
	})
}

// Missing returns the atoms of an alternative that do not hold against available
func Missing(alternative []string, available map[string]bool, groups Groups) []string {
	return lo.Filter(alternative, func(atom string, _ int) bool {
		return !atomSatisfied(atom, available, groups)
	})
}

func atomSatisfied(atom string, available map[string]bool, groups Groups) bool {
	if available[atom] {
		return true
	}
	if !IsGroupCode(atom) {
		return false
	}
	_, ok := groups.Choose(atom, available)
	return ok
}

// codeSet builds a membership set out of any number of code slices
func codeSet(codes ...[]string) map[string]bool {
	set := make(map[string]bool)
	for _, slice := range codes {
		for _, code := range slice {
			set[code] = true
		}
	}
	return set
}
