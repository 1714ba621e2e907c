package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thadeu-ct/Mentor-Gradus/pkg/catalog"
	"github.com/thadeu-ct/Mentor-Gradus/pkg/model"
	"github.com/thadeu-ct/Mentor-Gradus/pkg/planner"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	loaded, err := catalog.LoadDir("../../pkg/catalog/testdata/catalog")
	require.NoError(t, err)
	service := catalog.NewService(loaded)
	return New(service, planner.NewManager(service, nil, planner.Options{}))
}

func serve(server *Server, method, path string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		payload, _ := json.Marshal(body)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	request := httptest.NewRequest(method, path, reader)
	request.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	server.Handler().ServeHTTP(recorder, request)
	return recorder
}

func decode[T any](t *testing.T, recorder *httptest.ResponseRecorder) T {
	t.Helper()
	var value T
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &value), recorder.Body.String())
	return value
}

func TestCatalogRoutes(t *testing.T) {
	server := newTestServer(t)

	t.Run("Health", func(t *testing.T) {
		//** Act
		recorder := serve(server, http.MethodGet, "/healthz", nil)

		//** Assert
		assert.Equal(t, http.StatusOK, recorder.Code)
	})

	t.Run("Programs", func(t *testing.T) {
		//** Act
		recorder := serve(server, http.MethodGet, "/api/v1/catalog/programs", nil)

		//** Assert
		require.Equal(t, http.StatusOK, recorder.Code)
		assert.Equal(t, []string{"Ciência da Computação", "Engenharia"}, decode[[]string](t, recorder))
	})

	t.Run("Courses", func(t *testing.T) {
		//** Act
		recorder := serve(server, http.MethodGet, "/api/v1/catalog/courses", nil)

		//** Assert
		require.Equal(t, http.StatusOK, recorder.Code)
		assert.Len(t, decode[[]model.Course](t, recorder), 15)
	})

	t.Run("Requirements", func(t *testing.T) {
		//** Act
		recorder := serve(server, http.MethodPost, "/api/v1/requirements", catalog.RequirementsRequest{Programs: []string{"Engenharia"}})

		//** Assert
		require.Equal(t, http.StatusOK, recorder.Code)
		response := decode[catalog.RequirementsResponse](t, recorder)
		assert.ElementsMatch(t, []string{"FIS1033", "FIS1034", "MAT1161"}, lo.Map(response.Obligatory, func(course model.Course, _ int) string { return course.Code }))
		assert.Len(t, response.PendingGroups, 1)
	})

	t.Run("Unknown program", func(t *testing.T) {
		//** Act
		recorder := serve(server, http.MethodPost, "/api/v1/requirements", catalog.RequirementsRequest{Programs: []string{"Medicina"}})

		//** Assert
		assert.Equal(t, http.StatusNotFound, recorder.Code)
		assert.Equal(t, planner.CodeUnknownTrack, decode[planner.ErrorBody](t, recorder).Code)
	})

	t.Run("Unknown group", func(t *testing.T) {
		//** Act
		recorder := serve(server, http.MethodPost, "/api/v1/groups/XYZ0999/options", planner.GroupOptionsRequest{})

		//** Assert
		assert.Equal(t, http.StatusNotFound, recorder.Code)
		assert.Equal(t, planner.CodeUnknownGroup, decode[planner.ErrorBody](t, recorder).Code)
	})

	t.Run("Malformed body", func(t *testing.T) {
		//** Act
		recorder := serve(server, http.MethodPost, "/api/v1/requirements", "not an object")

		//** Assert
		assert.Equal(t, http.StatusBadRequest, recorder.Code)
		assert.Equal(t, planner.CodeBadRequest, decode[planner.ErrorBody](t, recorder).Code)
	})

	t.Run("Catalog routes without a local catalog", func(t *testing.T) {
		//** Arrange
		remote := New(nil, planner.NewManager(server.catalog, nil, planner.Options{}))

		//** Act
		recorder := serve(remote, http.MethodGet, "/api/v1/catalog/groups", nil)

		//** Assert
		assert.Equal(t, http.StatusServiceUnavailable, recorder.Code)
	})

	t.Run("Metrics", func(t *testing.T) {
		//** Act
		recorder := serve(server, http.MethodGet, "/metrics", nil)

		//** Assert
		assert.Equal(t, http.StatusOK, recorder.Code)
	})
}

func TestSessionRoutes(t *testing.T) {
	server := newTestServer(t)

	//** Arrange
	created := serve(server, http.MethodPost, "/api/v1/sessions", planner.Selection{Programs: []string{"Ciência da Computação"}})
	require.Equal(t, http.StatusCreated, created.Code, created.Body.String())
	id := decode[planner.View](t, created).ID
	base := "/api/v1/sessions/" + id

	t.Run("Place", func(t *testing.T) {
		//** Act
		recorder := serve(server, http.MethodPost, base+"/place", placeRequest{Course: "INF1007", Term: 1})

		//** Assert
		require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())
		assert.Equal(t, []string{"INF1007"}, decode[planner.View](t, recorder).Plan.In(1))
	})

	t.Run("Rejected placement carries the validation", func(t *testing.T) {
		//** Act
		recorder := serve(server, http.MethodPost, base+"/place", placeRequest{Course: "INF1301", Term: 1})

		//** Assert
		require.Equal(t, http.StatusUnprocessableEntity, recorder.Code)
		body := decode[planner.ErrorBody](t, recorder)
		assert.Equal(t, planner.CodePlacementRejected, body.Code)
		require.NotNil(t, body.Validation)
		assert.Equal(t, model.ReasonPrereq, body.Validation.Reason)
	})

	t.Run("Terms", func(t *testing.T) {
		//** Act
		added := serve(server, http.MethodPost, base+"/terms", nil)
		invalid := serve(server, http.MethodDelete, base+"/terms/9", nil)
		malformed := serve(server, http.MethodDelete, base+"/terms/last", nil)
		removed := serve(server, http.MethodDelete, base+"/terms/2", nil)

		//** Assert
		require.Equal(t, http.StatusOK, added.Code)
		assert.Equal(t, 2, decode[planner.View](t, added).Plan.TermCount())
		assert.Equal(t, http.StatusBadRequest, invalid.Code)
		assert.Equal(t, planner.CodeInvalidTerm, decode[planner.ErrorBody](t, invalid).Code)
		assert.Equal(t, http.StatusBadRequest, malformed.Code)
		require.Equal(t, http.StatusOK, removed.Code)
		assert.Equal(t, 1, decode[planner.View](t, removed).Plan.TermCount())
	})

	t.Run("Choose", func(t *testing.T) {
		//** Act
		invalid := serve(server, http.MethodPost, base+"/choose", chooseRequest{Group: "CRE0712", Course: "INF1007"})
		locked := serve(server, http.MethodPost, base+"/choose", chooseRequest{Group: "INF0307", Course: "INF1036"})
		recorder := serve(server, http.MethodPost, base+"/choose", chooseRequest{Group: "CRE0712", Course: "CRE1212"})

		//** Assert
		assert.Equal(t, http.StatusBadRequest, invalid.Code)
		assert.Equal(t, planner.CodeInvalidChoice, decode[planner.ErrorBody](t, invalid).Code)
		assert.Equal(t, http.StatusBadRequest, locked.Code)
		assert.Equal(t, planner.CodeInvalidChoice, decode[planner.ErrorBody](t, locked).Code)
		require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())
		assert.Contains(t, decode[planner.View](t, recorder).Selection.Chosen, "CRE1212")
	})

	t.Run("Remove", func(t *testing.T) {
		//** Act
		recorder := serve(server, http.MethodPost, base+"/remove", removeRequest{Course: "INF1007"})
		unknown := serve(server, http.MethodPost, base+"/remove", removeRequest{Course: "INF1007"})

		//** Assert
		require.Equal(t, http.StatusOK, recorder.Code)
		assert.Empty(t, decode[planner.View](t, recorder).Plan.Placed())
		assert.Equal(t, http.StatusNotFound, unknown.Code)
		assert.Equal(t, planner.CodeUnknownCourse, decode[planner.ErrorBody](t, unknown).Code)
	})

	t.Run("Selection", func(t *testing.T) {
		//** Act
		recorder := serve(server, http.MethodPut, base+"/selection", selectionRequest{Programs: []string{"Engenharia"}})

		//** Assert
		require.Equal(t, http.StatusOK, recorder.Code)
		assert.Equal(t, []string{"Engenharia"}, decode[planner.View](t, recorder).Selection.Programs)
	})

	t.Run("Get and list", func(t *testing.T) {
		//** Act
		view := serve(server, http.MethodGet, base, nil)
		list := serve(server, http.MethodGet, "/api/v1/sessions", nil)

		//** Assert
		require.Equal(t, http.StatusOK, view.Code)
		assert.Equal(t, id, decode[planner.View](t, view).ID)
		assert.Equal(t, map[string][]string{"sessions": {id}}, decode[map[string][]string](t, list))
	})

	t.Run("Delete", func(t *testing.T) {
		//** Act
		deleted := serve(server, http.MethodDelete, base, nil)
		missing := serve(server, http.MethodGet, base, nil)

		//** Assert
		assert.Equal(t, http.StatusNoContent, deleted.Code)
		assert.Equal(t, http.StatusNotFound, missing.Code)
		assert.Equal(t, planner.CodeSessionNotFound, decode[planner.ErrorBody](t, missing).Code)
	})
}

func TestRemoteRequirements(t *testing.T) {
	//** Arrange
	local := httptest.NewServer(newTestServer(t).Handler())
	defer local.Close()
	client := planner.NewHTTPClient(local.URL, time.Second)
	remote := New(nil, planner.NewManager(client, nil, planner.Options{}))

	//** Act
	created := serve(remote, http.MethodPost, "/api/v1/sessions", planner.Selection{Programs: []string{"Engenharia"}})
	id := decode[planner.View](t, created).ID
	placed := serve(remote, http.MethodPost, "/api/v1/sessions/"+id+"/place", placeRequest{Course: "FIS1033", Term: 1})
	options := serve(remote, http.MethodGet, "/api/v1/sessions/"+id+"/groups/CRE0712/options", nil)
	_, err := client.Requirements(context.Background(), catalog.RequirementsRequest{Programs: []string{"Medicina"}})

	//** Assert
	require.Equal(t, http.StatusCreated, created.Code, created.Body.String())
	require.Equal(t, http.StatusOK, placed.Code, placed.Body.String())
	assert.Equal(t, []string{"FIS1033", "FIS1034"}, decode[planner.View](t, placed).Plan.In(1))
	require.Equal(t, http.StatusOK, options.Code)
	assert.NotEmpty(t, decode[[]model.Course](t, options))
	assert.ErrorIs(t, err, catalog.ErrUnknownTrack)
}
