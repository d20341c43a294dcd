package repository

import (
	"testing"
	"time"

	"github.com/rocketscienceinc/morpx-backend/internal/entity"
	"github.com/rocketscienceinc/morpx-backend/testing/suite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryRepository(t *testing.T) {
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	t.Run("FindByPlayer returns newest first", func(t *testing.T) {
		ctx, st := suite.NewSQLite(t)

		historyRepo := NewHistoryRepository(st.Connection)

		// Given: three finished games, two of them with p1
		results := []*entity.Result{
			{GameID: "g1", PlayerX: "p1", PlayerO: "p2", Winner: entity.PlayerX, Moves: 30, FinishedAt: base},
			{GameID: "g2", PlayerX: "p3", PlayerO: "p1", Winner: entity.PlayerTie, Moves: 81, FinishedAt: base.Add(time.Hour)},
			{GameID: "g3", PlayerX: "p2", PlayerO: "p3", Winner: entity.PlayerO, Moves: 25, FinishedAt: base.Add(2 * time.Hour)},
		}
		for _, result := range results {
			require.NoError(t, historyRepo.Save(ctx, result))
		}

		// When: p1's history is requested
		found, err := historyRepo.FindByPlayer(ctx, "p1", 10)

		// Then: both of p1's games come back, latest first
		require.NoError(t, err)
		require.Len(t, found, 2)
		assert.Equal(t, results[1], found[0])
		assert.Equal(t, results[0], found[1])
	})

	t.Run("FindByPlayer honours the limit", func(t *testing.T) {
		ctx, st := suite.NewSQLite(t)

		historyRepo := NewHistoryRepository(st.Connection)

		for i, id := range []string{"g1", "g2", "g3"} {
			result := &entity.Result{GameID: id, PlayerX: "p1", PlayerO: "p2", Winner: entity.PlayerX, FinishedAt: base.Add(time.Duration(i) * time.Minute)}
			require.NoError(t, historyRepo.Save(ctx, result))
		}

		found, err := historyRepo.FindByPlayer(ctx, "p2", 2)

		require.NoError(t, err)
		require.Len(t, found, 2)
		assert.Equal(t, "g3", found[0].GameID)
		assert.Equal(t, "g2", found[1].GameID)
	})

	t.Run("Unknown player has no history", func(t *testing.T) {
		ctx, st := suite.NewSQLite(t)

		historyRepo := NewHistoryRepository(st.Connection)

		found, err := historyRepo.FindByPlayer(ctx, "nobody", 10)

		require.NoError(t, err)
		assert.Empty(t, found)
	})

	t.Run("Saving the same game twice keeps one row", func(t *testing.T) {
		ctx, st := suite.NewSQLite(t)

		historyRepo := NewHistoryRepository(st.Connection)
		result := &entity.Result{GameID: "g1", PlayerX: "p1", PlayerO: "p2", Winner: entity.PlayerO, FinishedAt: base}

		require.NoError(t, historyRepo.Save(ctx, result))
		require.NoError(t, historyRepo.Save(ctx, result))

		found, err := historyRepo.FindByPlayer(ctx, "p1", 10)
		require.NoError(t, err)
		assert.Len(t, found, 1)
	})
}
