package catalog

import (
	"context"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thadeu-ct/Mentor-Gradus/pkg/model"
)

func TestSuggest(t *testing.T) {
	ctx := context.Background()

	catalog := New()
	for _, code := range []string{"ART1001", "ART1002", "ART1003", "MUS1001"} {
		catalog.Courses[code] = model.Course{Code: code, Name: "Course " + code, Credits: 2}
	}
	catalog.Groups["ART0101"] = []string{"ART1001"}
	catalog.Groups["ART0102"] = []string{"ART1001", "ART1002"}
	catalog.Groups["ART0103"] = []string{"ART1002", "ART1003"}
	catalog.Groups["MUS0101"] = []string{"MUS1001"}
	service := NewService(catalog)

	pending := func(groups ...string) []PendingGroup {
		return lo.Map(groups, func(group string, _ int) PendingGroup {
			return PendingGroup{GroupCode: group, MissingCredits: 2}
		})
	}

	t.Run("Every group gets a distinct option", func(t *testing.T) {
		//** Act
		suggestions, err := service.Suggest(ctx, pending("ART0101", "ART0102", "ART0103"), nil)

		//** Assert
		require.NoError(t, err)
		assert.Equal(t, []Suggestion{
			{GroupCode: "ART0101", Course: catalog.Courses["ART1001"]},
			{GroupCode: "ART0102", Course: catalog.Courses["ART1002"]},
			{GroupCode: "ART0103", Course: catalog.Courses["ART1003"]},
		}, suggestions)
	})

	t.Run("Taken options are not suggested", func(t *testing.T) {
		//** Act
		suggestions, err := service.Suggest(ctx, pending("ART0101", "ART0102", "MUS0101"), []string{"ART1002", "MUS1001"})

		//** Assert
		require.NoError(t, err)
		assert.Len(t, suggestions, 1)
		assert.Equal(t, "ART1001", suggestions[0].Course.Code)
	})

	t.Run("Unknown groups are skipped", func(t *testing.T) {
		//** Act
		suggestions, err := service.Suggest(ctx, pending("XYZ0999"), nil)

		//** Assert
		require.NoError(t, err)
		assert.Empty(t, suggestions)
	})

	t.Run("From a requirements request", func(t *testing.T) {
		//** Arrange
		service := NewService(loadTestCatalog(t))

		//** Act
		suggestions, err := service.SuggestResolutions(ctx, RequirementsRequest{Programs: []string{"Ciência da Computação"}})

		//** Assert
		require.NoError(t, err)
		assert.Len(t, suggestions, 1)
		assert.Equal(t, "INF0307", suggestions[0].GroupCode)
		assert.Contains(t, []string{"INF1036", "INF1037"}, suggestions[0].Course.Code)
	})
}
