package planner

import (
	"context"

	"github.com/thadeu-ct/Mentor-Gradus/pkg/catalog"
	"github.com/thadeu-ct/Mentor-Gradus/pkg/model"
)

// RequirementsService supplies the course universe of a selection and the options of
// elective groups. catalog.Service implements it in-process, HTTPClient remotely.
type RequirementsService interface {
	Requirements(ctx context.Context, request catalog.RequirementsRequest) (catalog.RequirementsResponse, error)
	GroupOptions(ctx context.Context, group string, taken []string) ([]model.Course, error)
	Groups(ctx context.Context) (model.Groups, error)
}

// Store persists session states. Load returns ErrSessionNotFound for unknown ids.
type Store interface {
	Save(ctx context.Context, state State) error
	Load(ctx context.Context, id string) (State, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]string, error)
}
