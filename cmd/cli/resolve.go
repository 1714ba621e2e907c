package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/thadeu-ct/Mentor-Gradus/pkg/catalog"
	"github.com/thadeu-ct/Mentor-Gradus/pkg/model"
	"github.com/thadeu-ct/Mentor-Gradus/pkg/planner"
)

// planFlags select a catalog, the student's tracks and a plan file
type planFlags struct {
	dir      string
	sqlite   string
	programs []string
	domains  []string
	emphasis string
	chosen   []string
	planPath string
	out      string
}

func (flags *planFlags) register(command *cobra.Command) {
	command.Flags().StringVar(&flags.dir, "catalog", "", "Directory holding the catalog JSON files")
	command.Flags().StringVar(&flags.sqlite, "sqlite", "", "SQLite catalog database, used when --catalog is empty")
	command.Flags().StringSliceVarP(&flags.programs, "program", "p", nil, "Program the student follows (repeatable)")
	command.Flags().StringSliceVarP(&flags.domains, "domain", "d", nil, "Domain the student follows (repeatable)")
	command.Flags().StringVarP(&flags.emphasis, "emphasis", "e", "", "Emphasis within the program")
	command.Flags().StringSliceVar(&flags.chosen, "chosen", nil, "Options chosen for elective groups")
	command.Flags().StringVar(&flags.planPath, "plan", "", `Plan file, {"terms": [["INF1007"], ["INF1010"]]}`)
	command.Flags().StringVarP(&flags.out, "out", "o", "", "Output file; standard output when empty")
}

func (flags *planFlags) selection() planner.Selection {
	return planner.Selection{Programs: flags.programs, Domains: flags.domains, Emphasis: flags.emphasis, Chosen: flags.chosen}
}

func (flags *planFlags) plan() (model.Plan, error) {
	if flags.planPath == "" {
		return model.NewPlan(1), nil
	}
	content, err := os.ReadFile(flags.planPath)
	if err != nil {
		return model.Plan{}, fmt.Errorf("cannot read plan file: %w", err)
	}
	var plan model.Plan
	if err := json.Unmarshal(content, &plan); err != nil {
		return model.Plan{}, fmt.Errorf("cannot parse plan file: %w", err)
	}
	return plan, nil
}

func (flags *planFlags) write(command *cobra.Command, value any) error {
	content, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	if flags.out == "" {
		_, err = fmt.Fprintln(command.OutOrStdout(), string(content))
		return err
	}
	return os.WriteFile(flags.out, content, 0o644)
}

func newResolveCommand() *cobra.Command {
	flags := &planFlags{}
	command := &cobra.Command{
		Use:   "resolve",
		Short: "Classify every course of the plan universe as placed, open or locked",
		RunE: func(cmd *cobra.Command, _ []string) error {
			loaded, err := loadCatalog(cmd.Context(), flags.dir, flags.sqlite)
			if err != nil {
				return err
			}
			plan, err := flags.plan()
			if err != nil {
				return err
			}

			session := planner.RestoreSession(catalog.NewService(loaded), nil, planner.State{
				ID:        "cli",
				Plan:      plan,
				Selection: flags.selection(),
			}, planner.Options{})
			view, err := session.Refresh(cmd.Context())
			if err != nil {
				return err
			}
			return flags.write(cmd, view)
		},
	}
	flags.register(command)
	return command
}

type checkReport struct {
	Plan    model.Plan             `json:"plan"`
	Ejected []model.Ejection       `json:"ejected"`
	Courses []string               `json:"unknownCourses,omitempty"`
	Pending []catalog.PendingGroup `json:"pendingGroups"`
}

func newCheckCommand() *cobra.Command {
	flags := &planFlags{}
	command := &cobra.Command{
		Use:   "check",
		Short: "Validate a plan and list the courses that cannot stay where they are",
		RunE: func(cmd *cobra.Command, _ []string) error {
			loaded, err := loadCatalog(cmd.Context(), flags.dir, flags.sqlite)
			if err != nil {
				return err
			}
			plan, err := flags.plan()
			if err != nil {
				return err
			}

			service := catalog.NewService(loaded)
			request := catalog.RequirementsRequest{
				Programs: flags.programs,
				Domains:  flags.domains,
				Emphasis: flags.emphasis,
				Selected: append(plan.Placed(), flags.chosen...),
			}
			response, err := service.Requirements(cmd.Context(), request)
			if err != nil {
				return err
			}
			groups, err := service.Groups(cmd.Context())
			if err != nil {
				return err
			}

			resolution := model.NewResolutionContext(response.Obligatory, response.ElectedElectives, groups, plan)
			repaired, ejected := resolution.Repair(plan)
			report := checkReport{Plan: repaired, Ejected: ejected, Pending: response.PendingGroups}
			for _, code := range plan.Placed() {
				if _, ok := resolution.Course(code); !ok {
					report.Courses = append(report.Courses, code)
				}
			}

			if err := flags.write(cmd, report); err != nil {
				return err
			}
			if len(ejected) > 0 {
				return &exitError{code: exitEjected, err: fmt.Errorf("%d course(s) cannot stay in the plan", len(ejected))}
			}
			return nil
		},
	}
	flags.register(command)
	return command
}

func newImportCommand() *cobra.Command {
	var dir, out string
	command := &cobra.Command{
		Use:   "import",
		Short: "Copy a JSON catalog directory into a SQLite database",
		RunE: func(cmd *cobra.Command, _ []string) error {
			loaded, err := catalog.LoadDir(dir)
			if err != nil {
				return err
			}
			if err := catalog.SaveSQLite(cmd.Context(), out, loaded); err != nil {
				return err
			}
			_, err = io.WriteString(cmd.OutOrStdout(), fmt.Sprintf("%d courses, %d groups, %d programs, %d domains imported into %s\n",
				len(loaded.Courses), len(loaded.Groups), len(loaded.Programs), len(loaded.Domains), out))
			return err
		},
	}
	command.Flags().StringVar(&dir, "catalog", "", "Directory holding the catalog JSON files")
	command.Flags().StringVar(&out, "out", "catalog.db", "SQLite database to write")
	_ = command.MarkFlagRequired("catalog")
	return command
}
