package planner

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thadeu-ct/Mentor-Gradus/pkg/catalog"
	"github.com/thadeu-ct/Mentor-Gradus/pkg/model"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// newRequirementsServer serves service the way the HTTP API does
func newRequirementsServer(t *testing.T, service *fakeService) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/v1/requirements", func(w http.ResponseWriter, r *http.Request) {
		var request catalog.RequirementsRequest
		if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
			writeJSON(w, http.StatusBadRequest, ErrorBody{Error: err.Error(), Code: CodeBadRequest})
			return
		}
		response, err := service.Requirements(r.Context(), request)
		if err != nil {
			writeJSON(w, http.StatusNotFound, ErrorBody{Error: err.Error(), Code: CodeUnknownTrack})
			return
		}
		writeJSON(w, http.StatusOK, response)
	})

	mux.HandleFunc("POST /api/v1/groups/{code}/options", func(w http.ResponseWriter, r *http.Request) {
		var request GroupOptionsRequest
		if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
			writeJSON(w, http.StatusBadRequest, ErrorBody{Error: err.Error(), Code: CodeBadRequest})
			return
		}
		options, err := service.GroupOptions(r.Context(), r.PathValue("code"), request.Taken)
		if err != nil {
			writeJSON(w, http.StatusNotFound, ErrorBody{Error: err.Error(), Code: CodeUnknownGroup})
			return
		}
		writeJSON(w, http.StatusOK, options)
	})

	mux.HandleFunc("GET /api/v1/catalog/groups", func(w http.ResponseWriter, r *http.Request) {
		groups, err := service.Groups(r.Context())
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, ErrorBody{Error: err.Error(), Code: CodeInternal})
			return
		}
		writeJSON(w, http.StatusOK, groups)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestHTTPClient(t *testing.T) {
	ctx := context.Background()
	service := newFakeService(t)
	server := newRequirementsServer(t, service)
	client := NewHTTPClient(server.URL+"/", time.Second)

	t.Run("Requirements", func(t *testing.T) {
		//** Arrange
		request := catalog.RequirementsRequest{Programs: []string{"Engenharia"}}
		expected, err := service.Service.Requirements(ctx, request)
		require.NoError(t, err)

		//** Act
		response, err := client.Requirements(ctx, request)

		//** Assert
		require.NoError(t, err)
		assert.Equal(t, expected, response)
	})

	t.Run("Group options", func(t *testing.T) {
		//** Act
		options, err := client.GroupOptions(ctx, "CRE0712", []string{"CRE1212"})

		//** Assert
		require.NoError(t, err)
		require.NotEmpty(t, options)
		for _, option := range options {
			assert.NotEqual(t, "CRE1212", option.Code)
			assert.Equal(t, model.Elective, option.Kind)
		}
	})

	t.Run("Groups", func(t *testing.T) {
		//** Act
		groups, err := client.Groups(ctx)

		//** Assert
		require.NoError(t, err)
		assert.Contains(t, groups.Options("CRE0712"), "CRE1212")
	})

	t.Run("Error codes map to sentinels", func(t *testing.T) {
		//** Act
		_, groupErr := client.GroupOptions(ctx, "XYZ0999", nil)
		_, trackErr := client.Requirements(ctx, catalog.RequirementsRequest{Programs: []string{"Medicina"}})

		//** Assert
		assert.ErrorIs(t, groupErr, catalog.ErrUnknownGroup)
		assert.ErrorIs(t, trackErr, catalog.ErrUnknownTrack)
		assert.NotErrorIs(t, trackErr, ErrServiceUnavailable)
	})

	t.Run("Server failures", func(t *testing.T) {
		//** Arrange
		service.failWith(assert.AnError)
		defer service.failWith(nil)

		//** Act
		_, err := client.Groups(ctx)

		//** Assert
		assert.ErrorIs(t, err, ErrServiceUnavailable)
	})

	t.Run("Unreachable server", func(t *testing.T) {
		//** Arrange
		closed := httptest.NewServer(http.NotFoundHandler())
		closed.Close()
		unreachable := NewHTTPClient(closed.URL, time.Second)

		//** Act
		_, err := unreachable.Groups(ctx)

		//** Assert
		assert.ErrorIs(t, err, ErrServiceUnavailable)
	})

	t.Run("Sessions over the client", func(t *testing.T) {
		//** Arrange
		session := NewSession(client, nil, Selection{Programs: []string{"Engenharia"}}, Options{})

		//** Act
		view, err := session.Place(ctx, "FIS1033", 1)

		//** Assert
		require.NoError(t, err)
		assert.Equal(t, []string{"FIS1033", "FIS1034"}, view.Plan.In(1))
	})
}
