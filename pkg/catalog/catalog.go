package catalog

import (
	"errors"
	"slices"
	"strings"

	"github.com/samber/lo"
	"github.com/thadeu-ct/Mentor-Gradus/pkg/model"
)

var (
	ErrUnknownGroup   = errors.New("unknown elective group")
	ErrCatalogInvalid = errors.New("invalid catalog")
	ErrUnknownTrack   = errors.New("unknown program, emphasis or domain")
)

// GroupRequirement asks for a number of credits taken among the options of a group
type GroupRequirement struct {
	Group   string `json:"group" validate:"required"`
	Credits int    `json:"credits" validate:"gte=0"`
}

// Track is the requirement set of a program, of one of its emphases, or of a domain
type Track struct {
	Obligatory []string           `json:"obligatory"`
	Optional   []GroupRequirement `json:"optional"`
	Elective   []GroupRequirement `json:"elective,omitempty"`
}

type Program struct {
	Name string `json:"name"`
	Track
	Emphases map[string]Track `json:"emphases,omitempty"`
}

type Domain struct {
	Name string `json:"name"`
	Track
}

// Catalog is the curriculum data behind the requirements and group options services
type Catalog struct {
	Courses  map[string]model.Course `json:"courses"`
	Groups   model.Groups            `json:"groups"`
	Programs map[string]Program      `json:"programs"`
	Domains  map[string]Domain       `json:"domains"`
}

func New() *Catalog {
	return &Catalog{
		Courses:  make(map[string]model.Course),
		Groups:   make(model.Groups),
		Programs: make(map[string]Program),
		Domains:  make(map[string]Domain),
	}
}

func (catalog *Catalog) Course(code string) (model.Course, bool) {
	course, ok := catalog.Courses[code]
	return course, ok
}

// CoursesOf returns the catalog records of the given codes, skipping unknown ones
func (catalog *Catalog) CoursesOf(codes []string) []model.Course {
	return lo.FilterMap(codes, func(code string, _ int) (model.Course, bool) {
		return catalog.Course(code)
	})
}

// SortedCourses lists every course ordered by code
func (catalog *Catalog) SortedCourses() []model.Course {
	courses := lo.Values(catalog.Courses)
	slices.SortFunc(courses, func(a, b model.Course) int {
		return strings.Compare(a.Code, b.Code)
	})
	return courses
}

func (catalog *Catalog) ProgramNames() []string {
	names := lo.Keys(catalog.Programs)
	slices.Sort(names)
	return names
}

func (catalog *Catalog) DomainNames() []string {
	names := lo.Keys(catalog.Domains)
	slices.Sort(names)
	return names
}
