package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/thadeu-ct/Mentor-Gradus/pkg/catalog"
	"github.com/thadeu-ct/Mentor-Gradus/pkg/planner"
)

// handleError writes the response matching err
func handleError(c *gin.Context, err error) {
	var placementError *planner.PlacementError
	if errors.As(err, &placementError) {
		validation := placementError.Validation
		c.JSON(http.StatusUnprocessableEntity, planner.ErrorBody{
			Error:      err.Error(),
			Code:       planner.CodePlacementRejected,
			Validation: &validation,
		})
		return
	}

	status, code := http.StatusInternalServerError, planner.CodeInternal
	switch {
	case errors.Is(err, planner.ErrUnknownCourse):
		status, code = http.StatusNotFound, planner.CodeUnknownCourse
	case errors.Is(err, planner.ErrInvalidTerm):
		status, code = http.StatusBadRequest, planner.CodeInvalidTerm
	case errors.Is(err, planner.ErrInvalidChoice):
		status, code = http.StatusBadRequest, planner.CodeInvalidChoice
	case errors.Is(err, planner.ErrSessionNotFound):
		status, code = http.StatusNotFound, planner.CodeSessionNotFound
	case errors.Is(err, catalog.ErrUnknownGroup):
		status, code = http.StatusNotFound, planner.CodeUnknownGroup
	case errors.Is(err, catalog.ErrUnknownTrack):
		status, code = http.StatusNotFound, planner.CodeUnknownTrack
	case errors.Is(err, planner.ErrServiceUnavailable):
		status, code = http.StatusServiceUnavailable, planner.CodeServiceUnavailable
	}

	if status == http.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
	}
	c.JSON(status, planner.ErrorBody{Error: err.Error(), Code: code})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, planner.ErrorBody{Error: err.Error(), Code: planner.CodeBadRequest})
}
