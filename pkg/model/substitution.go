package model

import "github.com/rs/zerolog/log"

// Substitute rewrites in place every group reference of the course's prerequisites and
// corequisites for which some option is present in known. The option chosen is the
// first one in the group's listed order that is present in known, so the outcome is
// deterministic but depends on how the catalog orders options.
//
// It returns whether the course still references an unresolved group afterwards.
// Calling it again with an unchanged known set changes nothing.
func (resolution *ResolutionContext) Substitute(course *Course, known map[string]bool) bool {
	resolution.substituteRequirement(course.Code, course.Prerequisites, known)
	resolution.substituteRequirement(course.Code, course.Corequisites, known)
	return len(course.unresolvedGroups()) > 0
}

func (resolution *ResolutionContext) substituteRequirement(code string, requirement Requirement, known map[string]bool) {
	for _, alternative := range requirement {
		for i, atom := range alternative {
			if !IsGroupCode(atom) {
				continue
			}
			option, ok := resolution.Groups.Choose(atom, known)
			if !ok {
				continue
			}
			log.Debug().Str("course", code).Str("group", atom).Str("option", option).Msg("group reference substituted")
			alternative[i] = option
		}
	}
}
