package model

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
)

func TestResolve(t *testing.T) {
	groups := Groups{"CRE0712": {"CRE1212", "CRE1215"}}

	t.Run("Course without requirements is open", func(t *testing.T) {
		//** Arrange
		resolution := NewResolutionContext([]Course{newCourse("INF1007", 4, nil, nil)}, nil, nil, NewPlan(1))

		//** Act
		result := resolution.Resolve()

		//** Assert
		assert.Len(t, result.Courses, 1)
		assert.Equal(t, Open, result.Courses[0].Class)
		assert.False(t, result.Courses[0].Locked)
		assert.Equal(t, Required, result.Courses[0].Kind)
	})

	t.Run("Group reference resolves as the elective is chosen and placed", func(t *testing.T) {
		course := newCourse("ENG1705", 4, Requirement{{"CRE0712"}}, nil)
		option := newCourse("CRE1212", 4, nil, nil)

		// No option chosen yet
		//** Arrange
		resolution := NewResolutionContext([]Course{course}, nil, groups, NewPlan(2))

		//** Act
		result := resolution.Resolve()

		//** Assert
		assert.Equal(t, GroupBlocked, result.Courses[0].Class)
		assert.True(t, result.Courses[0].Locked)
		assert.Equal(t, ReasonGroup, result.Courses[0].Reason)
		assert.Contains(t, result.Courses[0].Lock, "CRE0712")

		// Option elected but not placed
		//** Arrange
		resolution = NewResolutionContext([]Course{course}, []Course{option}, groups, NewPlan(2))

		//** Act
		result = resolution.Resolve()

		//** Assert
		classes := result.Classes()
		assert.Equal(t, Open, classes["CRE1212"])
		assert.Equal(t, RequirementBlocked, classes["ENG1705"])
		assert.Empty(t, cmp.Diff(Requirement{{"CRE1212"}}, resolution.Universe["ENG1705"].Prerequisites))
		assert.Empty(t, cmp.Diff(Requirement{{"CRE0712"}}, course.Prerequisites))

		// Option placed in the first term
		//** Arrange
		resolution = NewResolutionContext([]Course{course}, []Course{option}, groups, planOf([]string{"CRE1212"}, nil))

		//** Act
		result = resolution.Resolve()

		//** Assert
		classes = result.Classes()
		assert.Equal(t, Open, classes["ENG1705"])
		assert.Equal(t, Open, classes["CRE1212"])
	})

	t.Run("Promoted courses never count as completed prerequisites", func(t *testing.T) {
		//** Arrange
		resolution := NewResolutionContext([]Course{
			newCourse("INF1007", 4, nil, nil),
			newCourse("INF1010", 4, Requirement{{"INF1007"}}, nil),
			newCourse("INF1301", 4, Requirement{{"INF1010"}}, nil),
		}, nil, nil, NewPlan(1))

		//** Act
		result := resolution.Resolve()

		//** Assert
		classes := result.Classes()
		assert.Equal(t, Open, classes["INF1007"])
		assert.Equal(t, RequirementBlocked, classes["INF1010"])
		assert.Equal(t, RequirementBlocked, classes["INF1301"])
		course, _ := lo.Find(result.Courses, func(course ClassifiedCourse) bool { return course.Code == "INF1010" })
		assert.Equal(t, ReasonPrereq, course.Reason)
	})

	t.Run("Corequisites accept open courses", func(t *testing.T) {
		//** Arrange
		resolution := NewResolutionContext([]Course{
			newCourse("FIS1033", 4, nil, Requirement{{"FIS1034"}}),
			newCourse("FIS1034", 1, nil, nil),
		}, nil, nil, NewPlan(1))

		//** Act
		result := resolution.Resolve()

		//** Assert
		classes := result.Classes()
		assert.Equal(t, Open, classes["FIS1033"])
		assert.Equal(t, Open, classes["FIS1034"])
		assert.Equal(t, 2, result.Passes)
	})

	t.Run("Credit gate takes precedence over structure", func(t *testing.T) {
		//** Arrange
		plain := newCourse("ENG1800", 4, nil, nil)
		plain.MinAccumulatedCredits = 20
		grouped := newCourse("ENG1801", 4, Requirement{{"CRE0712"}}, nil)
		grouped.MinAccumulatedCredits = 20
		resolution := NewResolutionContext([]Course{plain, grouped}, nil, groups, NewPlan(1))

		//** Act
		result := resolution.Resolve()

		//** Assert
		for _, course := range result.Courses {
			assert.Equal(t, RequirementBlocked, course.Class, course.Code)
			assert.Equal(t, ReasonCredits, course.Reason, course.Code)
		}
	})

	t.Run("Credit gate opens with placed credits", func(t *testing.T) {
		//** Arrange
		course := newCourse("ENG1800", 4, nil, nil)
		course.MinAccumulatedCredits = 8
		resolution := NewResolutionContext([]Course{
			course,
			newCourse("MAT1161", 4, nil, nil),
			newCourse("MAT1162", 4, nil, nil),
		}, nil, nil, planOf([]string{"MAT1161", "MAT1162"}, nil))

		//** Act
		result := resolution.Resolve()

		//** Assert
		assert.Equal(t, 8, result.PlacedCredits)
		assert.Equal(t, Open, result.Classes()["ENG1800"])
	})

	t.Run("Display order", func(t *testing.T) {
		//** Arrange
		resolution := NewResolutionContext(
			[]Course{
				newCourse("ADM1001", 4, Requirement{{"ZZZ9999"}}, nil),
				newCourse("INF1007", 4, nil, nil),
			},
			[]Course{newCourse("ART1001", 2, nil, nil)},
			nil,
			planOf([]string{"INF1007"}),
		)

		//** Act
		result := resolution.Resolve()

		//** Assert
		codes := lo.Map(result.Courses, func(course ClassifiedCourse, _ int) string { return course.Code })
		assert.Equal(t, []string{"INF1007", "ART1001", "ADM1001"}, codes)
		assert.Equal(t, 1, result.Courses[0].Term)
		assert.Equal(t, 0, result.Courses[1].Term)
		assert.Equal(t, Elective, result.Courses[1].Kind)
	})

	t.Run("Idempotent on an unchanged context", func(t *testing.T) {
		//** Arrange
		resolution := NewResolutionContext(
			[]Course{
				newCourse("ENG1705", 4, Requirement{{"CRE0712"}}, nil),
				newCourse("ENG1706", 4, Requirement{{"ENG1705"}}, Requirement{{"CRE0712"}}),
				newCourse("INF1007", 4, nil, nil),
			},
			[]Course{newCourse("CRE1215", 4, nil, nil)},
			groups,
			planOf([]string{"CRE1215"}, nil),
		)

		//** Act
		first := resolution.Resolve()
		second := resolution.Resolve()

		//** Assert
		assert.Equal(t, first.Classes(), second.Classes())
	})
}
