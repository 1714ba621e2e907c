package catalog

import (
	"context"
	"errors"
	"slices"
	"strings"

	"github.com/onsi/gomega/matchers/support/goraph/bipartitegraph"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"github.com/thadeu-ct/Mentor-Gradus/pkg/model"
)

// Suggestion proposes one option to close a pending group
type Suggestion struct {
	GroupCode string       `json:"groupCode"`
	Course    model.Course `json:"course"`
}

// SuggestResolutions computes the requirements of request and suggests options for the
// groups left pending, taking everything the student already has into account:
// obligatory courses, elected electives and the selection. Groups left without a
// distinct option are absent from the result.
func (service *Service) SuggestResolutions(ctx context.Context, request RequirementsRequest) ([]Suggestion, error) {
	response, err := service.Requirements(ctx, request)
	if err != nil {
		return nil, err
	}

	taken := lo.Uniq(slices.Concat(
		lo.Map(response.Obligatory, func(course model.Course, _ int) string { return course.Code }),
		lo.Map(response.ElectedElectives, func(course model.Course, _ int) string { return course.Code }),
		request.Selected,
	))
	return service.Suggest(ctx, response.PendingGroups, taken)
}

// Suggest matches the pending groups to distinct options among their GroupOptions
// against taken, covering as many groups as possible
func (service *Service) Suggest(ctx context.Context, pendingGroups []PendingGroup, taken []string) ([]Suggestion, error) {
	//** Candidates per pending group
	groups := make([]string, 0, len(pendingGroups))
	candidates := make(map[string]map[string]bool)
	courses := make(map[string]model.Course)
	for _, pending := range pendingGroups {
		if candidates[pending.GroupCode] != nil {
			continue
		}
		options, err := service.GroupOptions(ctx, pending.GroupCode, taken)
		if errors.Is(err, ErrUnknownGroup) {
			log.Warn().Str("group", pending.GroupCode).Msg("pending group missing from the catalog")
			continue
		}
		if err != nil {
			return nil, err
		}
		groups = append(groups, pending.GroupCode)
		candidates[pending.GroupCode] = make(map[string]bool, len(options))
		for _, option := range options {
			candidates[pending.GroupCode][option.Code] = true
			courses[option.Code] = option
		}
	}

	options := lo.Keys(courses)
	slices.Sort(options)
	if len(groups) == 0 || len(options) == 0 {
		return []Suggestion{}, nil
	}

	//** Distinct options through a maximum matching
	matching, err := matchOptions(groups, options, candidates)
	if err != nil {
		return nil, err
	}

	suggestions := lo.MapToSlice(matching, func(group, option string) Suggestion {
		return Suggestion{GroupCode: group, Course: courses[option]}
	})
	slices.SortFunc(suggestions, func(a, b Suggestion) int {
		return strings.Compare(a.GroupCode, b.GroupCode)
	})
	return suggestions, nil
}

func matchOptions(groups, options []string, candidates map[string]map[string]bool) (map[string]string, error) {
	neighbors := func(groupAny any, optionAny any) (bool, error) {
		return candidates[groupAny.(string)][optionAny.(string)], nil
	}

	groupsAny, optionsAny := lo.Map(groups, func(group string, _ int) any { return group }), lo.Map(options, func(option string, _ int) any { return option })

	graph, err := bipartitegraph.NewBipartiteGraph(groupsAny, optionsAny, neighbors)
	if err != nil {
		return nil, err
	}

	matching := make(map[string]string)
	for _, edge := range graph.LargestMatching() {
		groupIndex, optionIndex := edge.Node1, edge.Node2-len(groups)
		matching[groups[groupIndex]] = options[optionIndex]
	}
	return matching, nil
}
