package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"slices"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"
	"github.com/thadeu-ct/Mentor-Gradus/pkg/model"
)

const (
	programTrack = "program"
	domainTrack  = "domain"

	optionalCategory = "optional"
	electiveCategory = "elective"

	prerequisiteKind = "prerequisite"
	corequisiteKind  = "corequisite"
)

const schema = `
CREATE TABLE IF NOT EXISTS courses (
	code        TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	credits     INTEGER NOT NULL,
	min_credits INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS requirements (
	course      TEXT NOT NULL,
	kind        TEXT NOT NULL,
	alternative INTEGER NOT NULL,
	position    INTEGER NOT NULL,
	atom        TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS group_options (
	group_code TEXT NOT NULL,
	position   INTEGER NOT NULL,
	course     TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS tracks (
	track_kind TEXT NOT NULL,
	track      TEXT NOT NULL,
	emphasis   TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS track_courses (
	track_kind TEXT NOT NULL,
	track      TEXT NOT NULL,
	emphasis   TEXT NOT NULL DEFAULT '',
	position   INTEGER NOT NULL,
	course     TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS track_groups (
	track_kind TEXT NOT NULL,
	track      TEXT NOT NULL,
	emphasis   TEXT NOT NULL DEFAULT '',
	category   TEXT NOT NULL,
	position   INTEGER NOT NULL,
	group_code TEXT NOT NULL,
	credits    INTEGER NOT NULL
);`

// LoadSQLite reads a catalog from the SQLite database at path
func LoadSQLite(ctx context.Context, path string) (*Catalog, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	catalog := New()

	//** Courses
	rows, err := db.QueryContext(ctx, `SELECT code, name, credits, min_credits FROM courses ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("%w: reading courses: %v", ErrCatalogInvalid, err)
	}
	defer rows.Close()
	for rows.Next() {
		var course model.Course
		if err := rows.Scan(&course.Code, &course.Name, &course.Credits, &course.MinAccumulatedCredits); err != nil {
			return nil, err
		}
		catalog.Courses[course.Code] = course
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	//** Requirements
	rows, err = db.QueryContext(ctx, `SELECT course, kind, alternative, atom FROM requirements ORDER BY course, kind, alternative, position`)
	if err != nil {
		return nil, fmt.Errorf("%w: reading requirements: %v", ErrCatalogInvalid, err)
	}
	defer rows.Close()
	for rows.Next() {
		var code, kind, atom string
		var alternative int
		if err := rows.Scan(&code, &kind, &alternative, &atom); err != nil {
			return nil, err
		}
		course, ok := catalog.Courses[code]
		if !ok {
			log.Warn().Str("course", code).Msg("requirement row for an unknown course")
			continue
		}
		var target *model.Requirement
		switch kind {
		case prerequisiteKind:
			target = &course.Prerequisites
		case corequisiteKind:
			target = &course.Corequisites
		default:
			return nil, fmt.Errorf("%w: requirement kind %q of %s", ErrCatalogInvalid, kind, code)
		}
		if *target, err = appendAtom(*target, alternative, atom); err != nil {
			return nil, fmt.Errorf("%s of %s: %w", kind, code, err)
		}
		catalog.Courses[code] = course
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	//** Elective groups
	rows, err = db.QueryContext(ctx, `SELECT group_code, course FROM group_options ORDER BY group_code, position`)
	if err != nil {
		return nil, fmt.Errorf("%w: reading group options: %v", ErrCatalogInvalid, err)
	}
	defer rows.Close()
	for rows.Next() {
		var group, course string
		if err := rows.Scan(&group, &course); err != nil {
			return nil, err
		}
		catalog.Groups[group] = append(catalog.Groups[group], course)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	//** Programs and domains
	tracks := make(map[[3]string]*Track)
	rows, err = db.QueryContext(ctx, `SELECT track_kind, track, emphasis FROM tracks`)
	if err != nil {
		return nil, fmt.Errorf("%w: reading tracks: %v", ErrCatalogInvalid, err)
	}
	defer rows.Close()
	for rows.Next() {
		var key [3]string
		if err := rows.Scan(&key[0], &key[1], &key[2]); err != nil {
			return nil, err
		}
		tracks[key] = &Track{Obligatory: []string{}, Optional: []GroupRequirement{}, Elective: []GroupRequirement{}}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = db.QueryContext(ctx, `SELECT track_kind, track, emphasis, course FROM track_courses ORDER BY track_kind, track, emphasis, position`)
	if err != nil {
		return nil, fmt.Errorf("%w: reading track courses: %v", ErrCatalogInvalid, err)
	}
	defer rows.Close()
	for rows.Next() {
		var key [3]string
		var course string
		if err := rows.Scan(&key[0], &key[1], &key[2], &course); err != nil {
			return nil, err
		}
		track, ok := tracks[key]
		if !ok {
			return nil, fmt.Errorf("%w: course %s listed for undeclared track %v", ErrCatalogInvalid, course, key)
		}
		track.Obligatory = append(track.Obligatory, course)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = db.QueryContext(ctx, `SELECT track_kind, track, emphasis, category, group_code, credits FROM track_groups ORDER BY track_kind, track, emphasis, category, position`)
	if err != nil {
		return nil, fmt.Errorf("%w: reading track groups: %v", ErrCatalogInvalid, err)
	}
	defer rows.Close()
	for rows.Next() {
		var key [3]string
		var category string
		var requirement GroupRequirement
		if err := rows.Scan(&key[0], &key[1], &key[2], &category, &requirement.Group, &requirement.Credits); err != nil {
			return nil, err
		}
		track, ok := tracks[key]
		if !ok {
			return nil, fmt.Errorf("%w: group %s listed for undeclared track %v", ErrCatalogInvalid, requirement.Group, key)
		}
		switch category {
		case optionalCategory:
			track.Optional = append(track.Optional, requirement)
		case electiveCategory:
			track.Elective = append(track.Elective, requirement)
		default:
			return nil, fmt.Errorf("%w: group category %q", ErrCatalogInvalid, category)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Base tracks first, so emphases always find their program
	for key, track := range tracks {
		kind, name, emphasis := key[0], key[1], key[2]
		if emphasis != "" {
			continue
		}
		switch kind {
		case programTrack:
			catalog.Programs[name] = Program{Name: name, Track: *track, Emphases: make(map[string]Track)}
		case domainTrack:
			catalog.Domains[name] = Domain{Name: name, Track: *track}
		default:
			return nil, fmt.Errorf("%w: track kind %q", ErrCatalogInvalid, kind)
		}
	}
	for key, track := range tracks {
		kind, name, emphasis := key[0], key[1], key[2]
		if emphasis == "" {
			continue
		}
		program, ok := catalog.Programs[name]
		if kind != programTrack || !ok {
			return nil, fmt.Errorf("%w: emphasis %q of unknown program %q", ErrCatalogInvalid, emphasis, name)
		}
		program.Emphases[emphasis] = *track
	}

	log.Info().
		Str("path", path).
		Int("courses", len(catalog.Courses)).
		Int("groups", len(catalog.Groups)).
		Msg("catalog loaded from sqlite")
	return catalog, nil
}

// appendAtom adds atom to an alternative of requirement. Rows arrive ordered by
// alternative, so an alternative is either the last one or the next one.
func appendAtom(requirement model.Requirement, alternative int, atom string) (model.Requirement, error) {
	switch {
	case alternative < 0 || alternative > len(requirement):
		return nil, fmt.Errorf("%w: alternative %d after %d alternatives", ErrCatalogInvalid, alternative, len(requirement))
	case alternative == len(requirement):
		requirement = append(requirement, []string{})
	}
	requirement[alternative] = append(requirement[alternative], atom)
	return requirement, nil
}

// SaveSQLite writes catalog into the SQLite database at path, replacing its content.
// A requirement holding an empty alternative is always satisfied and is written as no
// requirement at all.
func SaveSQLite(ctx context.Context, path string, catalog *Catalog) error {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return err
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range []string{"courses", "requirements", "group_options", "tracks", "track_courses", "track_groups"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}

	//** Courses
	for _, course := range catalog.SortedCourses() {
		if _, err := tx.ExecContext(ctx, `INSERT INTO courses (code, name, credits, min_credits) VALUES (?, ?, ?, ?)`,
			course.Code, course.Name, course.Credits, course.MinAccumulatedCredits); err != nil {
			return fmt.Errorf("inserting course %s: %w", course.Code, err)
		}
		for kind, requirement := range map[string]model.Requirement{prerequisiteKind: course.Prerequisites, corequisiteKind: course.Corequisites} {
			if slices.ContainsFunc(requirement, func(atoms []string) bool { return len(atoms) == 0 }) {
				continue
			}
			for alternative, atoms := range requirement {
				for position, atom := range atoms {
					if _, err := tx.ExecContext(ctx, `INSERT INTO requirements (course, kind, alternative, position, atom) VALUES (?, ?, ?, ?, ?)`,
						course.Code, kind, alternative, position, atom); err != nil {
						return fmt.Errorf("inserting requirement of %s: %w", course.Code, err)
					}
				}
			}
		}
	}

	//** Elective groups
	for group, options := range catalog.Groups {
		for position, option := range options {
			if _, err := tx.ExecContext(ctx, `INSERT INTO group_options (group_code, position, course) VALUES (?, ?, ?)`,
				group, position, option); err != nil {
				return fmt.Errorf("inserting option of %s: %w", group, err)
			}
		}
	}

	//** Programs and domains
	for name, program := range catalog.Programs {
		if err := insertTrack(ctx, tx, programTrack, name, "", program.Track); err != nil {
			return err
		}
		for emphasis, track := range program.Emphases {
			if err := insertTrack(ctx, tx, programTrack, name, emphasis, track); err != nil {
				return err
			}
		}
	}
	for name, domain := range catalog.Domains {
		if err := insertTrack(ctx, tx, domainTrack, name, "", domain.Track); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func insertTrack(ctx context.Context, tx *sql.Tx, kind, name, emphasis string, track Track) error {
	if _, err := tx.ExecContext(ctx, `INSERT INTO tracks (track_kind, track, emphasis) VALUES (?, ?, ?)`, kind, name, emphasis); err != nil {
		return fmt.Errorf("inserting track %s: %w", name, err)
	}
	for position, course := range track.Obligatory {
		if _, err := tx.ExecContext(ctx, `INSERT INTO track_courses (track_kind, track, emphasis, position, course) VALUES (?, ?, ?, ?, ?)`,
			kind, name, emphasis, position, course); err != nil {
			return fmt.Errorf("inserting course of track %s: %w", name, err)
		}
	}
	for category, requirements := range map[string][]GroupRequirement{optionalCategory: track.Optional, electiveCategory: track.Elective} {
		for position, requirement := range requirements {
			if _, err := tx.ExecContext(ctx, `INSERT INTO track_groups (track_kind, track, emphasis, category, position, group_code, credits) VALUES (?, ?, ?, ?, ?, ?, ?)`,
				kind, name, emphasis, category, position, requirement.Group, requirement.Credits); err != nil {
				return fmt.Errorf("inserting group of track %s: %w", name, err)
			}
		}
	}
	return nil
}
