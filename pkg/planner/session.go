package planner

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"github.com/thadeu-ct/Mentor-Gradus/pkg/catalog"
	"github.com/thadeu-ct/Mentor-Gradus/pkg/model"
	"golang.org/x/sync/semaphore"
)

type Options struct {
	MaxTermCredits int
	InitialTerms   int
}

func (options Options) withDefaults() Options {
	if options.MaxTermCredits <= 0 {
		options.MaxTermCredits = model.DefaultMaxTermCredits
	}
	if options.InitialTerms <= 0 {
		options.InitialTerms = 1
	}
	return options
}

// Session owns one student's plan and selection. Every mutation runs the whole pipeline
// (validation, mutation, cascade repair, requirements refresh, resolution) on copies and
// commits them only when the pipeline succeeds, so a failed refresh leaves the previous
// state untouched. Mutations are serialized.
type Session struct {
	id      string
	service RequirementsService
	store   Store
	options Options

	semaphore *semaphore.Weighted

	mutex    sync.RWMutex
	state    State
	snapshot *snapshot // nil until the first successful refresh
}

// snapshot is the outcome of one refresh
type snapshot struct {
	plan        model.Plan
	selection   Selection
	response    catalog.RequirementsResponse
	groups      model.Groups
	resolution  model.Resolution
	termCredits []int
	ejected     []model.Ejection
	pruned      []string
}

// mutation changes plan or selection. resolution is built from the last refresh and
// holds a snapshot of the plan before the mutation.
type mutation func(resolution *model.ResolutionContext, plan *model.Plan, selection *Selection) error

func NewSession(service RequirementsService, store Store, selection Selection, options Options) *Session {
	options = options.withDefaults()
	return RestoreSession(service, store, State{
		ID:        uuid.NewString(),
		Plan:      model.NewPlan(options.InitialTerms),
		Selection: selection,
		UpdatedAt: time.Now().UTC(),
	}, options)
}

// RestoreSession resumes a persisted state. The session is resolved on its first refresh.
func RestoreSession(service RequirementsService, store Store, state State, options Options) *Session {
	return &Session{
		id:        state.ID,
		service:   service,
		store:     store,
		options:   options.withDefaults(),
		semaphore: semaphore.NewWeighted(1),
		state:     State{ID: state.ID, Plan: state.Plan.Clone(), Selection: state.Selection.Clone(), UpdatedAt: state.UpdatedAt},
	}
}

func (session *Session) ID() string {
	return session.id
}

// Resolved reports whether the session went through a successful refresh
func (session *Session) Resolved() bool {
	session.mutex.RLock()
	defer session.mutex.RUnlock()
	return session.snapshot != nil
}

func (session *Session) State() State {
	session.mutex.RLock()
	defer session.mutex.RUnlock()
	return State{
		ID:        session.state.ID,
		Plan:      session.state.Plan.Clone(),
		Selection: session.state.Selection.Clone(),
		UpdatedAt: session.state.UpdatedAt,
	}
}

func (session *Session) View() View {
	session.mutex.RLock()
	defer session.mutex.RUnlock()
	return session.view()
}

//** Mutations

func (session *Session) Refresh(ctx context.Context) (View, error) {
	return session.mutate(ctx, "refresh", nil)
}

// Place puts code into term, pulling along the corequisites it is missing there
func (session *Session) Place(ctx context.Context, code string, term int) (View, error) {
	return session.mutate(ctx, "place", func(resolution *model.ResolutionContext, plan *model.Plan, _ *Selection) error {
		course, ok := resolution.Course(code)
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownCourse, code)
		}
		if !plan.ValidTerm(term) {
			return fmt.Errorf("%w: %d", ErrInvalidTerm, term)
		}

		placement := resolution.PlanPlacement(course, term, *plan)
		if !placement.Validation.OK {
			placementTotal.WithLabelValues("rejected").Inc()
			return &PlacementError{Course: code, Term: term, Validation: placement.Validation}
		}

		placementTotal.WithLabelValues("ok").Inc()
		if len(placement.Pulled) > 0 {
			log.Info().Str("session", session.id).Str("course", code).Strs("pulled", placement.Pulled).Msg("corequisites pulled along")
		}
		*plan = placement.Plan
		return nil
	})
}

// Remove takes code off the board, or drops the choice of an option that is not placed
func (session *Session) Remove(ctx context.Context, code string) (View, error) {
	return session.mutate(ctx, "remove", func(_ *model.ResolutionContext, plan *model.Plan, selection *Selection) error {
		if plan.Remove(code) {
			return nil
		}
		if slices.Contains(selection.Chosen, code) {
			selection.Chosen = lo.Without(selection.Chosen, code)
			return nil
		}
		return fmt.Errorf("%w: %s is neither placed nor chosen", ErrUnknownCourse, code)
	})
}

func (session *Session) AddTerm(ctx context.Context) (View, error) {
	return session.mutate(ctx, "add-term", func(_ *model.ResolutionContext, plan *model.Plan, _ *Selection) error {
		plan.AddTerm()
		return nil
	})
}

// RemoveTerm deletes term with its courses; later terms shift down
func (session *Session) RemoveTerm(ctx context.Context, term int) (View, error) {
	return session.mutate(ctx, "remove-term", func(_ *model.ResolutionContext, plan *model.Plan, _ *Selection) error {
		if !plan.ValidTerm(term) {
			return fmt.Errorf("%w: %d", ErrInvalidTerm, term)
		}
		plan.RemoveTerm(term)
		return nil
	})
}

// ChooseGroupOption elects code as a concrete option of group. Only options the
// service still offers for the plan are accepted: not taken yet, prerequisites met.
func (session *Session) ChooseGroupOption(ctx context.Context, group, code string) (View, error) {
	return session.mutate(ctx, "choose", func(resolution *model.ResolutionContext, plan *model.Plan, selection *Selection) error {
		if !slices.Contains(resolution.Groups.Options(group), code) {
			return fmt.Errorf("%w: %s of %s", ErrInvalidChoice, code, group)
		}
		if slices.Contains(selection.Chosen, code) {
			return nil
		}

		taken := lo.Uniq(append(plan.Placed(), selection.Chosen...))
		options, err := session.service.GroupOptions(ctx, group, taken)
		switch {
		case errors.Is(err, catalog.ErrUnknownGroup):
			return fmt.Errorf("%w: %w", ErrInvalidChoice, err)
		case err != nil:
			return fmt.Errorf("%w: %w", ErrServiceUnavailable, err)
		}
		if !slices.ContainsFunc(options, func(option model.Course) bool { return option.Code == code }) {
			return fmt.Errorf("%w: %s of %s is taken or its prerequisites are not met", ErrInvalidChoice, code, group)
		}

		selection.Chosen = append(selection.Chosen, code)
		return nil
	})
}

// SetSelection replaces the selected programs, domains and emphasis. Chosen options stay.
func (session *Session) SetSelection(ctx context.Context, programs, domains []string, emphasis string) (View, error) {
	return session.mutate(ctx, "select", func(_ *model.ResolutionContext, _ *model.Plan, selection *Selection) error {
		selection.Programs = slices.Clone(programs)
		selection.Domains = slices.Clone(domains)
		selection.Emphasis = emphasis
		return nil
	})
}

// GroupOptions lists the options the student can still choose for group
func (session *Session) GroupOptions(ctx context.Context, group string) ([]model.Course, error) {
	state := session.State()
	taken := lo.Uniq(append(state.Plan.Placed(), state.Selection.Chosen...))

	options, err := session.service.GroupOptions(ctx, group, taken)
	if err != nil {
		if errors.Is(err, catalog.ErrUnknownGroup) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrServiceUnavailable, err)
	}
	return options, nil
}

//** Pipeline

func (session *Session) mutate(ctx context.Context, operation string, apply mutation) (View, error) {
	if err := session.semaphore.Acquire(ctx, 1); err != nil {
		return View{}, err
	}
	defer session.semaphore.Release(1)

	session.mutex.RLock()
	plan := session.state.Plan.Clone()
	selection := session.state.Selection.Clone()
	current := session.snapshot
	session.mutex.RUnlock()

	// Mutations are validated against the last refresh
	if current == nil && apply != nil {
		refreshed, err := session.refreshAndResolve(ctx, plan, selection, nil)
		if err != nil {
			return View{}, err
		}
		session.commit(ctx, refreshed)
		plan, selection, current = refreshed.plan.Clone(), refreshed.selection.Clone(), refreshed
	}

	var ejected []model.Ejection
	if apply != nil {
		resolution := session.resolutionContext(current.response, current.groups, plan)
		if err := apply(resolution, &plan, &selection); err != nil {
			log.Debug().Err(err).Str("session", session.id).Str("operation", operation).Msg("mutation refused")
			return View{}, err
		}
		plan, ejected = resolution.Repair(plan)
		removedCourses.WithLabelValues("repair").Add(float64(len(ejected)))
	}

	next, err := session.refreshAndResolve(ctx, plan, selection, current)
	if err != nil {
		return View{}, err
	}
	next.ejected = append(ejected, next.ejected...)

	if len(next.ejected) > 0 {
		log.Info().
			Str("session", session.id).
			Str("operation", operation).
			Strs("ejected", lo.Map(next.ejected, func(ejection model.Ejection, _ int) string { return ejection.Code })).
			Msg("courses ejected from the plan")
	}

	return session.commit(ctx, next), nil
}

// refreshAndResolve fetches the universe of plan and selection, prunes stale courses from
// the plan, and resolves the result. Nothing is committed.
func (session *Session) refreshAndResolve(ctx context.Context, plan model.Plan, selection Selection, previous *snapshot) (*snapshot, error) {
	start := time.Now()
	defer func() { refreshDuration.Observe(time.Since(start).Seconds()) }()

	result := &snapshot{}

	//** Group table
	if previous != nil {
		result.groups = previous.groups
	} else {
		groups, err := session.service.Groups(ctx)
		if err != nil {
			return nil, session.fetchFailed(err)
		}
		result.groups = groups
	}

	requiredBefore := make(map[string]bool)
	if previous != nil {
		for _, course := range previous.response.Obligatory {
			requiredBefore[course.Code] = true
		}
	}

	//** Requirements, fetched again once the plan loses courses
	for attempt := 0; attempt < 2; attempt++ {
		response, err := session.service.Requirements(ctx, selection.request(plan))
		if err != nil {
			return nil, session.fetchFailed(err)
		}
		result.response = response

		resolution := session.resolutionContext(response, result.groups, plan)
		stale := staleCourses(resolution, plan, requiredBefore)
		if len(stale) == 0 {
			break
		}

		for _, code := range stale {
			plan.Remove(code)
		}
		result.pruned = append(result.pruned, stale...)
		removedCourses.WithLabelValues("prune").Add(float64(len(stale)))
		log.Info().Str("session", session.id).Strs("courses", stale).Msg("stale courses pruned from the plan")

		var ejected []model.Ejection
		plan, ejected = resolution.Repair(plan)
		result.ejected = append(result.ejected, ejected...)
		removedCourses.WithLabelValues("repair").Add(float64(len(ejected)))
	}

	//** Resolution
	resolution := session.resolutionContext(result.response, result.groups, plan)
	selection.Chosen = lo.Filter(selection.Chosen, func(code string, _ int) bool {
		_, ok := resolution.Course(code)
		return ok
	})

	result.plan = plan
	result.selection = selection
	result.resolution = resolution.Resolve()
	result.termCredits = resolution.TermCredits(plan)

	refreshTotal.WithLabelValues("ok").Inc()
	resolutionPasses.Observe(float64(result.resolution.Passes))
	log.Debug().
		Str("session", session.id).
		Int("universe", len(resolution.Universe)).
		Int("pending", len(result.response.PendingGroups)).
		Int("passes", result.resolution.Passes).
		Dur("elapsed", time.Since(start)).
		Msg("session refreshed")

	return result, nil
}

func (session *Session) fetchFailed(err error) error {
	refreshTotal.WithLabelValues("error").Inc()
	log.Error().Err(err).Str("session", session.id).Msg("requirements fetch failed")
	if errors.Is(err, catalog.ErrUnknownTrack) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrServiceUnavailable, err)
}

// staleCourses lists placed courses the requirements no longer justify: codes outside
// the universe, and courses that were required by the previous refresh but are not
// required anymore
func staleCourses(resolution *model.ResolutionContext, plan model.Plan, requiredBefore map[string]bool) []string {
	return lo.Filter(plan.Placed(), func(code string, _ int) bool {
		course, ok := resolution.Course(code)
		if !ok {
			return true
		}
		return requiredBefore[code] && course.Kind != model.Required
	})
}

func (session *Session) resolutionContext(response catalog.RequirementsResponse, groups model.Groups, plan model.Plan) *model.ResolutionContext {
	resolution := model.NewResolutionContext(response.Obligatory, response.ElectedElectives, groups, plan)
	resolution.MaxTermCredits = session.options.MaxTermCredits
	return resolution
}

func (session *Session) commit(ctx context.Context, result *snapshot) View {
	session.mutex.Lock()
	session.snapshot = result
	session.state.Plan = result.plan.Clone()
	session.state.Selection = result.selection.Clone()
	session.state.UpdatedAt = time.Now().UTC()
	state := State{
		ID:        session.state.ID,
		Plan:      session.state.Plan.Clone(),
		Selection: session.state.Selection.Clone(),
		UpdatedAt: session.state.UpdatedAt,
	}
	view := session.view()
	session.mutex.Unlock()

	if session.store != nil {
		if err := session.store.Save(ctx, state); err != nil {
			log.Error().Err(err).Str("session", session.id).Msg("session state not persisted")
		}
	}
	return view
}

// view assembles the board view; the caller holds the mutex
func (session *Session) view() View {
	view := View{
		ID:             session.id,
		Plan:           session.state.Plan.Clone(),
		Selection:      session.state.Selection.Clone(),
		MaxTermCredits: session.options.MaxTermCredits,
		UpdatedAt:      session.state.UpdatedAt,
	}
	if session.snapshot == nil {
		return view
	}

	result := session.snapshot
	view.Courses = result.resolution.Courses
	view.PendingGroups = result.response.PendingGroups
	view.TermCredits = result.termCredits
	view.Ejected = result.ejected
	view.Pruned = result.pruned

	view.PlannedCredits = lo.Sum(result.termCredits)
	view.RequiredCredits = lo.SumBy(result.response.Obligatory, func(course model.Course) int { return course.Credits }) +
		lo.SumBy(result.response.ElectedElectives, func(course model.Course) int { return course.Credits }) +
		lo.SumBy(result.response.PendingGroups, func(group catalog.PendingGroup) int { return group.MissingCredits })
	view.Completed = view.RequiredCredits > 0 && view.PlannedCredits >= view.RequiredCredits

	return view
}
