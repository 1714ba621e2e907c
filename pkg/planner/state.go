package planner

import (
	"slices"
	"time"

	"github.com/samber/lo"
	"github.com/thadeu-ct/Mentor-Gradus/pkg/catalog"
	"github.com/thadeu-ct/Mentor-Gradus/pkg/model"
)

// Selection is what the student picked outside the board: degree tracks and the
// options chosen for elective groups
type Selection struct {
	Programs []string `json:"programs"`
	Domains  []string `json:"domains"`
	Emphasis string   `json:"emphasis,omitempty"`
	Chosen   []string `json:"chosen"`
}

func (selection Selection) Clone() Selection {
	return Selection{
		Programs: slices.Clone(selection.Programs),
		Domains:  slices.Clone(selection.Domains),
		Emphasis: selection.Emphasis,
		Chosen:   slices.Clone(selection.Chosen),
	}
}

func (selection Selection) request(plan model.Plan) catalog.RequirementsRequest {
	return catalog.RequirementsRequest{
		Programs: selection.Programs,
		Domains:  selection.Domains,
		Emphasis: selection.Emphasis,
		Selected: lo.Uniq(append(plan.Placed(), selection.Chosen...)),
	}
}

// State is the persisted part of a session
type State struct {
	ID        string     `json:"id"`
	Plan      model.Plan `json:"plan"`
	Selection Selection  `json:"selection"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// View is everything a board needs to render a session
type View struct {
	ID              string                   `json:"id"`
	Plan            model.Plan               `json:"plan"`
	Selection       Selection                `json:"selection"`
	Courses         []model.ClassifiedCourse `json:"courses"`
	PendingGroups   []catalog.PendingGroup   `json:"pendingGroups"`
	TermCredits     []int                    `json:"termCredits"`
	MaxTermCredits  int                      `json:"maxTermCredits"`
	PlannedCredits  int                      `json:"plannedCredits"`
	RequiredCredits int                      `json:"requiredCredits"`
	Completed       bool                     `json:"completed"`
	Ejected         []model.Ejection         `json:"ejected,omitempty"`
	Pruned          []string                 `json:"pruned,omitempty"`
	UpdatedAt       time.Time                `json:"updatedAt"`
}
