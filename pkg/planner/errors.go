package planner

import (
	"errors"
	"fmt"

	"github.com/thadeu-ct/Mentor-Gradus/pkg/model"
)

var (
	ErrUnknownCourse      = errors.New("course not in the plan universe")
	ErrInvalidTerm        = errors.New("invalid term")
	ErrInvalidChoice      = errors.New("course is not an option of the group")
	ErrPlacementRejected  = errors.New("placement rejected")
	ErrServiceUnavailable = errors.New("requirements service unavailable")
	ErrSessionNotFound    = errors.New("session not found")
)

// PlacementError explains why a placement was rejected
type PlacementError struct {
	Course     string
	Term       int
	Validation model.Validation
}

func (err *PlacementError) Error() string {
	return fmt.Sprintf("cannot place %s in term %d: %s", err.Course, err.Term, err.Validation.Message)
}

func (err *PlacementError) Unwrap() error {
	return ErrPlacementRejected
}
