package catalog

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"github.com/thadeu-ct/Mentor-Gradus/pkg/model"
)

type RequirementsRequest struct {
	Programs []string `json:"programs"`
	Domains  []string `json:"domains"`
	Emphasis string   `json:"emphasis,omitempty"`
	Selected []string `json:"selected"` // placed and chosen course codes
}

type PendingGroup struct {
	GroupCode      string `json:"groupCode"`
	MissingCredits int    `json:"missingCredits"`
	Source         string `json:"sourceLabel"`
}

type RequirementsResponse struct {
	Obligatory       []model.Course `json:"obligatory"`
	ElectedElectives []model.Course `json:"electedElectives"`
	PendingGroups    []PendingGroup `json:"pendingGroups"`
}

// Service answers requirements and group options queries from an in-memory catalog
type Service struct {
	catalog *Catalog
}

func NewService(catalog *Catalog) *Service {
	return &Service{catalog: catalog}
}

func (service *Service) Catalog() *Catalog {
	return service.catalog
}

// Groups returns a copy of the elective group table
func (service *Service) Groups(ctx context.Context) (model.Groups, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return service.catalog.Groups.Clone(), nil
}

// groupProgress tracks the credits a group has collected so far
type groupProgress struct {
	required int
	current  int
	counted  map[string]bool
	source   string
}

// Requirements computes the obligatory courses of the selected programs, emphasis and
// domains, the electives elected for the student, and the elective groups still short
// of credits.
//
// Selected courses outside the obligatory set are kept as manual electives. Options
// shared by more than one pending group are then picked automatically, one at a time,
// preferring the option that closes the most groups, then the one that appears in the
// most groups, then the cheapest one.
func (service *Service) Requirements(ctx context.Context, request RequirementsRequest) (RequirementsResponse, error) {
	if err := ctx.Err(); err != nil {
		return RequirementsResponse{}, err
	}

	//** Obligatory courses and group requirements
	obligatory, progress, err := service.collect(request)
	if err != nil {
		return RequirementsResponse{}, err
	}

	taken := make(map[string]bool, len(obligatory)+len(request.Selected))
	for code := range obligatory {
		taken[code] = true
	}
	var elected []string
	for _, code := range lo.Uniq(request.Selected) {
		taken[code] = true
		if !obligatory[code] {
			elected = append(elected, code)
		}
	}

	//** Credits already covered by taken options
	for group, info := range progress {
		for _, option := range service.catalog.Groups.Options(group) {
			if taken[option] {
				info.count(option, service.credits(option))
			}
		}
	}

	//** Greedy pick of shared options
	for {
		pending := pendingCodes(progress)
		if len(pending) == 0 {
			break
		}

		appearances := make(map[string]int)
		for _, group := range pending {
			for _, option := range service.catalog.Groups.Options(group) {
				if !taken[option] && service.unlocked(option, taken) {
					appearances[option]++
				}
			}
		}

		type candidate struct {
			code    string
			credits int
			appears int
			closes  int
			groups  []string
		}
		var candidates []candidate
		for option, appears := range appearances {
			if appears < 2 {
				continue
			}
			course, ok := service.catalog.Course(option)
			if !ok {
				continue
			}
			entry := candidate{code: option, credits: course.Credits, appears: appears}
			for _, group := range pending {
				if !slices.Contains(service.catalog.Groups.Options(group), option) {
					continue
				}
				entry.groups = append(entry.groups, group)
				if course.Credits >= progress[group].missing() {
					entry.closes++
				}
			}
			candidates = append(candidates, entry)
		}
		if len(candidates) == 0 {
			break
		}

		slices.SortFunc(candidates, func(a, b candidate) int {
			return cmp.Or(
				cmp.Compare(b.closes, a.closes),
				cmp.Compare(b.appears, a.appears),
				cmp.Compare(a.credits, b.credits),
				strings.Compare(a.code, b.code),
			)
		})
		pick := candidates[0]

		log.Debug().Str("course", pick.code).Strs("groups", pick.groups).Int("closes", pick.closes).Msg("shared option picked")
		elected = append(elected, pick.code)
		taken[pick.code] = true
		for _, group := range pick.groups {
			progress[group].count(pick.code, pick.credits)
		}
	}

	//** Response
	pendingGroups := lo.Map(pendingCodes(progress), func(group string, _ int) PendingGroup {
		return PendingGroup{
			GroupCode:      group,
			MissingCredits: progress[group].missing(),
			Source:         progress[group].source,
		}
	})

	obligatoryCodes := lo.Keys(obligatory)
	slices.Sort(obligatoryCodes)
	slices.Sort(elected)

	return RequirementsResponse{
		Obligatory:       withKind(service.catalog.CoursesOf(obligatoryCodes), model.Required),
		ElectedElectives: withKind(service.catalog.CoursesOf(elected), model.Elective),
		PendingGroups:    pendingGroups,
	}, nil
}

// collect unites the obligatory lists and gathers the group requirements of the
// selection. A group required by several tracks keeps the largest credit count, and the
// source of the first track asking for it.
func (service *Service) collect(request RequirementsRequest) (map[string]bool, map[string]*groupProgress, error) {
	obligatory := make(map[string]bool)
	progress := make(map[string]*groupProgress)

	require := func(requirements []GroupRequirement, source string) {
		for _, requirement := range requirements {
			info, ok := progress[requirement.Group]
			if ok && info.required >= requirement.Credits {
				continue
			}
			progress[requirement.Group] = &groupProgress{
				required: requirement.Credits,
				counted:  make(map[string]bool),
				source:   source,
			}
		}
	}
	take := func(codes []string) {
		for _, code := range codes {
			obligatory[code] = true
		}
	}

	emphasisFound := request.Emphasis == ""
	for _, name := range request.Programs {
		program, ok := service.catalog.Programs[name]
		if !ok {
			return nil, nil, fmt.Errorf("%w: program %q", ErrUnknownTrack, name)
		}
		take(program.Obligatory)
		require(program.Optional, "Optativa de "+name)
		require(program.Elective, "Eletiva de "+name)

		if emphasis, ok := program.Emphases[request.Emphasis]; ok && request.Emphasis != "" {
			emphasisFound = true
			take(emphasis.Obligatory)
			require(emphasis.Optional, "Optativa de "+request.Emphasis)
			require(emphasis.Elective, "Eletiva de "+request.Emphasis)
		}
	}
	if !emphasisFound {
		return nil, nil, fmt.Errorf("%w: emphasis %q", ErrUnknownTrack, request.Emphasis)
	}

	for _, name := range request.Domains {
		domain, ok := service.catalog.Domains[name]
		if !ok {
			return nil, nil, fmt.Errorf("%w: domain %q", ErrUnknownTrack, name)
		}
		take(domain.Obligatory)
		require(domain.Optional, "Optativa de "+name)
	}

	return obligatory, progress, nil
}

func (info *groupProgress) count(code string, credits int) {
	if info.counted[code] {
		return
	}
	info.counted[code] = true
	info.current += credits
}

func (info *groupProgress) missing() int {
	return max(info.required-info.current, 0)
}

func pendingCodes(progress map[string]*groupProgress) []string {
	pending := lo.Filter(lo.Keys(progress), func(group string, _ int) bool {
		return progress[group].current < progress[group].required
	})
	slices.Sort(pending)
	return pending
}

func (service *Service) credits(code string) int {
	course, ok := service.catalog.Course(code)
	if !ok {
		return 0
	}
	return course.Credits
}

// unlocked reports whether the prerequisites of code hold against taken
func (service *Service) unlocked(code string, taken map[string]bool) bool {
	course, ok := service.catalog.Course(code)
	if !ok {
		return false
	}
	return model.IsSatisfied(course.Prerequisites, taken, service.catalog.Groups)
}

func withKind(courses []model.Course, kind model.Kind) []model.Course {
	return lo.Map(courses, func(course model.Course, _ int) model.Course {
		course.Kind = kind
		return course
	})
}

// GroupOptions lists the options of group the student can still choose: options not
// taken yet whose prerequisites hold against taken, sorted by name.
func (service *Service) GroupOptions(ctx context.Context, group string, taken []string) ([]model.Course, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	options, ok := service.catalog.Groups[group]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownGroup, group)
	}

	takenSet := lo.SliceToMap(taken, func(code string) (string, bool) { return code, true })
	courses := lo.FilterMap(options, func(option string, _ int) (model.Course, bool) {
		if takenSet[option] || !service.unlocked(option, takenSet) {
			return model.Course{}, false
		}
		return service.catalog.Course(option)
	})

	slices.SortStableFunc(courses, func(a, b model.Course) int {
		return cmp.Or(strings.Compare(a.Name, b.Name), strings.Compare(a.Code, b.Code))
	})
	return withKind(courses, model.Elective), nil
}
