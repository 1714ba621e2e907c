package model

import (
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
)

// IsGroupCode reports whether code names an elective group rather than a course. The
// catalog marks group codes with the digit '0' as fourth character (e.g. "CRE0712");
// this check is the only place that convention lives.
func IsGroupCode(code string) bool {
	return len(code) >= 4 && code[3] == '0'
}

// Groups maps an elective group code to its ordered option course codes
type Groups map[string][]string

// Options returns the registered options of a group, or nil for an unknown group
func (groups Groups) Options(code string) []string {
	options, ok := groups[code]
	if !ok {
		log.Debug().Str("group", code).Msg("unknown elective group reference")
	}
	return options
}

// Choose returns the first listed option of the group present in available
func (groups Groups) Choose(code string, available map[string]bool) (string, bool) {
	return lo.Find(groups.Options(code), func(option string) bool {
		return available[option]
	})
}

// Clone returns a deep copy of the group table
func (groups Groups) Clone() Groups {
	clone := make(Groups, len(groups))
	for code, options := range groups {
		clone[code] = append([]string(nil), options...)
	}
	return clone
}
