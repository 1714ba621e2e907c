package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thadeu-ct/Mentor-Gradus/pkg/model"
	"github.com/thadeu-ct/Mentor-Gradus/pkg/planner"
)

func sampleState(id string) planner.State {
	plan := model.NewPlan(2)
	plan.Add("INF1007", 1)
	plan.Add("INF1010", 2)
	return planner.State{
		ID:        id,
		Plan:      plan,
		Selection: planner.Selection{Programs: []string{"Ciência da Computação"}, Chosen: []string{"CRE1212"}},
		UpdatedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestBadgerStore(t *testing.T) {
	ctx := context.Background()

	t.Run("Save and load", func(t *testing.T) {
		//** Arrange
		store, err := OpenInMemory()
		require.NoError(t, err)
		defer store.Close()
		state := sampleState("a")

		//** Act
		require.NoError(t, store.Save(ctx, state))
		loaded, err := store.Load(ctx, "a")

		//** Assert
		require.NoError(t, err)
		assert.Equal(t, state, loaded)
	})

	t.Run("Missing sessions", func(t *testing.T) {
		//** Arrange
		store, err := OpenInMemory()
		require.NoError(t, err)
		defer store.Close()

		//** Act
		_, loadErr := store.Load(ctx, "missing")
		deleteErr := store.Delete(ctx, "missing")

		//** Assert
		assert.ErrorIs(t, loadErr, planner.ErrSessionNotFound)
		assert.ErrorIs(t, deleteErr, planner.ErrSessionNotFound)
	})

	t.Run("List and delete", func(t *testing.T) {
		//** Arrange
		store, err := OpenInMemory()
		require.NoError(t, err)
		defer store.Close()
		for _, id := range []string{"b", "a", "c"} {
			require.NoError(t, store.Save(ctx, sampleState(id)))
		}

		//** Act
		require.NoError(t, store.Delete(ctx, "b"))
		ids, err := store.List(ctx)

		//** Assert
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "c"}, ids)
	})

	t.Run("States survive a reopen", func(t *testing.T) {
		//** Arrange
		config := DefaultConfig(t.TempDir())
		config.GCInterval = time.Hour
		store, err := Open(config)
		require.NoError(t, err)
		require.NoError(t, store.Save(ctx, sampleState("kept")))
		require.NoError(t, store.Close())

		//** Act
		reopened, err := Open(config)
		require.NoError(t, err)
		defer reopened.Close()
		loaded, err := reopened.Load(ctx, "kept")

		//** Assert
		require.NoError(t, err)
		assert.Equal(t, sampleState("kept"), loaded)
	})

	t.Run("State without id", func(t *testing.T) {
		//** Arrange
		store, err := OpenInMemory()
		require.NoError(t, err)
		defer store.Close()

		//** Act
		err = store.Save(ctx, planner.State{})

		//** Assert
		assert.Error(t, err)
	})
}
