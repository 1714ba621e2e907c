package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"github.com/thadeu-ct/Mentor-Gradus/pkg/model"
)

// File names of a catalog directory
const (
	CoursesFile  = "materias.json"
	GroupsFile   = "optativas.json"
	ProgramsFile = "formacoes.json"
	DomainsFile  = "dominios.json"
)

type RawCourse struct {
	Code          string     `mapstructure:"codigo" validate:"required"`
	Name          string     `mapstructure:"nome"`
	Credits       int        `mapstructure:"creditos" validate:"gte=0"`
	Prerequisites [][]string `mapstructure:"prereqs"`
	Corequisites  [][]string `mapstructure:"correq"`
	MinCredits    int        `mapstructure:"min-cred" validate:"gte=0"`
}

type RawGroup struct {
	Options []string `mapstructure:"Opções"`
}

// RawTrack lists group requirements as [code, credits] pairs
type RawTrack struct {
	Obligatory []string            `mapstructure:"obrigatórias"`
	Optional   [][]any             `mapstructure:"optativas"`
	Elective   [][]any             `mapstructure:"eletivas"`
	Emphases   map[string]RawTrack `mapstructure:"enfase"`
}

type RawCatalog struct {
	Courses  []RawCourse
	Groups   map[string]RawGroup
	Programs map[string]RawTrack
	Domains  map[string]RawTrack
}

// LoadDir reads the four catalog files of dir
func LoadDir(dir string) (*Catalog, error) {
	var raw RawCatalog

	sources := []struct {
		file   string
		target any
	}{
		{CoursesFile, &raw.Courses},
		{GroupsFile, &raw.Groups},
		{ProgramsFile, &raw.Programs},
		{DomainsFile, &raw.Domains},
	}
	for _, source := range sources {
		if err := decodeFile(filepath.Join(dir, source.file), source.target); err != nil {
			return nil, err
		}
	}

	catalog, err := ProcessRawCatalog(raw)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("dir", dir).
		Int("courses", len(catalog.Courses)).
		Int("groups", len(catalog.Groups)).
		Int("programs", len(catalog.Programs)).
		Int("domains", len(catalog.Domains)).
		Msg("catalog loaded")
	return catalog, nil
}

func decodeFile(path string, target any) error {
	bytes, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	var input any
	if err := json.Unmarshal(bytes, &input); err != nil {
		return fmt.Errorf("%w: parsing %s: %v", ErrCatalogInvalid, path, err)
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           target,
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(input); err != nil {
		return fmt.Errorf("%w: decoding %s: %v", ErrCatalogInvalid, path, err)
	}
	return nil
}

func ProcessRawCatalog(raw RawCatalog) (*Catalog, error) {
	validate := validator.New()
	catalog := New()

	//** Courses
	for _, rawCourse := range raw.Courses {
		if err := validate.Struct(rawCourse); err != nil {
			return nil, fmt.Errorf("%w: course %q: %v", ErrCatalogInvalid, rawCourse.Code, err)
		}
		if model.IsGroupCode(rawCourse.Code) {
			return nil, fmt.Errorf("%w: course code %q follows the elective group convention", ErrCatalogInvalid, rawCourse.Code)
		}
		if _, ok := catalog.Courses[rawCourse.Code]; ok {
			return nil, fmt.Errorf("%w: duplicate course %q", ErrCatalogInvalid, rawCourse.Code)
		}

		catalog.Courses[rawCourse.Code] = model.Course{
			Code:                  rawCourse.Code,
			Name:                  rawCourse.Name,
			Credits:               rawCourse.Credits,
			Prerequisites:         normalize(rawCourse.Prerequisites),
			Corequisites:          normalize(rawCourse.Corequisites),
			MinAccumulatedCredits: rawCourse.MinCredits,
		}
	}

	//** Elective groups
	for code, rawGroup := range raw.Groups {
		if !model.IsGroupCode(code) {
			return nil, fmt.Errorf("%w: group code %q does not follow the elective group convention", ErrCatalogInvalid, code)
		}
		options := lo.Uniq(rawGroup.Options)
		for _, option := range options {
			if _, ok := catalog.Courses[option]; !ok {
				log.Warn().Str("group", code).Str("course", option).Msg("group option missing from the course list")
			}
		}
		catalog.Groups[code] = options
	}

	//** Programs and domains
	for name, rawTrack := range raw.Programs {
		track, err := processRawTrack(validate, name, rawTrack)
		if err != nil {
			return nil, err
		}
		program := Program{Name: name, Track: track, Emphases: make(map[string]Track, len(rawTrack.Emphases))}
		for emphasis, rawEmphasis := range rawTrack.Emphases {
			if program.Emphases[emphasis], err = processRawTrack(validate, emphasis, rawEmphasis); err != nil {
				return nil, err
			}
		}
		catalog.Programs[name] = program
	}
	for name, rawTrack := range raw.Domains {
		track, err := processRawTrack(validate, name, rawTrack)
		if err != nil {
			return nil, err
		}
		catalog.Domains[name] = Domain{Name: name, Track: track}
	}

	return catalog, nil
}

func processRawTrack(validate *validator.Validate, name string, rawTrack RawTrack) (Track, error) {
	optional, err := groupRequirements(validate, name, rawTrack.Optional)
	if err != nil {
		return Track{}, err
	}
	elective, err := groupRequirements(validate, name, rawTrack.Elective)
	if err != nil {
		return Track{}, err
	}
	return Track{
		Obligatory: lo.Uniq(rawTrack.Obligatory),
		Optional:   optional,
		Elective:   elective,
	}, nil
}

func groupRequirements(validate *validator.Validate, owner string, pairs [][]any) ([]GroupRequirement, error) {
	requirements := make([]GroupRequirement, 0, len(pairs))

	for _, pair := range pairs {
		if len(pair) != 2 {
			return nil, fmt.Errorf("%w: %s: group requirement %v is not a [code, credits] pair", ErrCatalogInvalid, owner, pair)
		}

		var requirement GroupRequirement
		if err := mapstructure.WeakDecode(map[string]any{"group": pair[0], "credits": pair[1]}, &requirement); err != nil {
			return nil, fmt.Errorf("%w: %s: group requirement %v: %v", ErrCatalogInvalid, owner, pair, err)
		}
		if err := validate.Struct(requirement); err != nil {
			return nil, fmt.Errorf("%w: %s: group requirement %v: %v", ErrCatalogInvalid, owner, pair, err)
		}
		requirements = append(requirements, requirement)
	}

	return requirements, nil
}

// normalize folds every "no requirement" spelling into nil
func normalize(requirement model.Requirement) model.Requirement {
	if requirement.IsEmpty() {
		return nil
	}
	return requirement
}
