package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequirement(t *testing.T) {
	t.Run("Empty sentinels", func(t *testing.T) {
		assert.True(t, Requirement(nil).IsEmpty())
		assert.True(t, Requirement{}.IsEmpty())
		assert.True(t, Requirement{{}}.IsEmpty())
		assert.False(t, Requirement{{}, {}}.IsEmpty())
		assert.False(t, Requirement{{"MAT1161"}}.IsEmpty())
	})

	t.Run("Clone is deep", func(t *testing.T) {
		//** Arrange
		original := Requirement{{"CRE0712", "MAT1161"}, {"MAT1157"}}

		//** Act
		clone := original.Clone()
		clone[0][0] = "CRE1212"

		//** Assert
		assert.Equal(t, "CRE0712", original[0][0])
		assert.Nil(t, Requirement(nil).Clone())
	})

	t.Run("Atoms", func(t *testing.T) {
		requirement := Requirement{{"CRE0712", "MAT1161"}, {"MAT1161", "INF0307"}}

		assert.Equal(t, []string{"CRE0712", "MAT1161", "INF0307"}, requirement.Atoms())
		assert.Equal(t, []string{"CRE0712", "INF0307"}, requirement.GroupAtoms())
	})

	t.Run("String", func(t *testing.T) {
		assert.Equal(t, "none", Requirement{{}}.String())
		assert.Equal(t, "MAT1161 AND FIS1033 OR MAT1157", Requirement{{"MAT1161", "FIS1033"}, {"MAT1157"}}.String())
	})
}
