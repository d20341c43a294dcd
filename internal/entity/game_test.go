package entity

import (
	"testing"
	"time"

	"github.com/rocketscienceinc/morpx-backend/internal/apperror"
	"github.com/rocketscienceinc/morpx-backend/internal/morpx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOngoingGame() *Game {
	game := NewGame("123", PrivateType)
	game.Status = StatusOngoing
	game.Players = []*Player{
		{ID: "p1", Mark: PlayerX, GameID: "123"},
		{ID: "p2", Mark: PlayerO, GameID: "123"},
	}

	return game
}

func TestNewGame(t *testing.T) {
	// When: a new game is created
	game := NewGame("123", PublicType)

	// Then: it waits for players with an empty board and X to move
	require.Equal(t, "123", game.ID)
	require.Equal(t, StatusWaiting, game.Status)
	require.Equal(t, PublicType, game.Type)
	require.Equal(t, PlayerX, game.Turn())
	require.Equal(t, *morpx.New(), game.State)
	require.Zero(t, game.Moves)
}

func TestGameStatusMethods(t *testing.T) {
	t.Run("IsFinished returns true when game status is finished", func(t *testing.T) {
		// Given: a game with StatusFinished
		game := &Game{Status: StatusFinished}

		// Then: it should be finished
		assert.True(t, game.IsFinished())
	})

	t.Run("IsOngoing returns true when game status is ongoing", func(t *testing.T) {
		game := &Game{Status: StatusOngoing}

		assert.True(t, game.IsOngoing())
	})

	t.Run("IsWaiting returns true when game status is waiting", func(t *testing.T) {
		game := &Game{Status: StatusWaiting}

		assert.True(t, game.IsWaiting())
	})

	t.Run("IsPublic and IsFull", func(t *testing.T) {
		game := newOngoingGame()

		assert.False(t, game.IsPublic())
		assert.True(t, game.IsFull())
	})
}

func TestGame_ConfirmOngoingState(t *testing.T) {
	t.Run("Returns nil when game is ongoing", func(t *testing.T) {
		game := &Game{Status: StatusOngoing}

		assert.NoError(t, game.ConfirmOngoingState())
	})

	t.Run("Returns ErrGameIsNotStarted when game is waiting", func(t *testing.T) {
		game := &Game{Status: StatusWaiting}

		assert.ErrorIs(t, game.ConfirmOngoingState(), apperror.ErrGameIsNotStarted)
	})

	t.Run("Returns ErrGameFinished when game is finished", func(t *testing.T) {
		game := &Game{Status: StatusFinished}

		assert.ErrorIs(t, game.ConfirmOngoingState(), apperror.ErrGameFinished)
	})

	t.Run("Returns error for unknown game status", func(t *testing.T) {
		game := &Game{Status: "unknown"}

		assert.ErrorIs(t, game.ConfirmOngoingState(), ErrUnknownGameStatus)
	})
}

func TestGame_MakeTurn(t *testing.T) {
	t.Run("MakeTurn", func(t *testing.T) {
		// Given: an ongoing game
		game := newOngoingGame()

		// When: X plays
		changes, err := game.MakeTurn(PlayerX, Move{X1: 1, Y1: 1, X2: 0, Y2: 2})

		// Then: the cell is written and O is to move
		require.NoError(t, err)
		assert.Equal(t, morpx.NoChanges, changes)
		assert.Equal(t, morpx.PlayerOne, game.State.GetBoard(1, 1, 0, 2))
		assert.Equal(t, PlayerO, game.Turn())
		assert.Equal(t, 1, game.Moves)
		assert.Equal(t, StatusOngoing, game.Status)
	})

	t.Run("Error on playing out of turn", func(t *testing.T) {
		game := newOngoingGame()

		_, err := game.MakeTurn(PlayerO, Move{})

		require.ErrorIs(t, err, apperror.ErrNotYourTurn)
		assert.Zero(t, game.Moves)
	})

	t.Run("Error on cell already occupied", func(t *testing.T) {
		// Given: X has played the corner of sub-board (0,0)
		game := newOngoingGame()
		_, err := game.MakeTurn(PlayerX, Move{})
		require.NoError(t, err)
		before := game.State

		// When: O plays the same cell
		_, err = game.MakeTurn(PlayerO, Move{})

		// Then: the move is rejected and nothing changes
		require.ErrorIs(t, err, apperror.ErrCellOccupied)
		assert.Equal(t, before, game.State)
	})

	t.Run("Error on decided sub-board", func(t *testing.T) {
		game := newOngoingGame()
		game.State.SetGrid(2, 0, morpx.Unreachable)

		_, err := game.MakeTurn(PlayerX, Move{X1: 2, Y1: 0, X2: 1, Y2: 1})

		require.ErrorIs(t, err, apperror.ErrSubBoardClosed)
	})

	t.Run("Invalid coordinates", func(t *testing.T) {
		game := newOngoingGame()

		for _, move := range []Move{{X1: 3}, {Y1: -1}, {X2: 9}, {Y2: 3}} {
			_, err := game.MakeTurn(PlayerX, move)

			assert.ErrorIs(t, err, apperror.ErrInvalidMove, "move %+v", move)
		}
	})

	t.Run("Move after game finished", func(t *testing.T) {
		game := newOngoingGame()
		game.Status = StatusFinished

		_, err := game.MakeTurn(PlayerX, Move{})

		assert.ErrorIs(t, err, apperror.ErrGameFinished)
	})

	t.Run("Win finishes the game", func(t *testing.T) {
		// Given: X owns sub-boards (0,0) and (0,1) and two cells of (0,2)
		game := newOngoingGame()
		game.State.SetGrid(0, 0, morpx.PlayerOne)
		game.State.SetGrid(0, 1, morpx.PlayerOne)
		game.State.SetBoard(0, 2, 1, 0, morpx.PlayerOne)
		game.State.SetBoard(0, 2, 1, 1, morpx.PlayerOne)

		// When: X completes the row in sub-board (0,2)
		changes, err := game.MakeTurn(PlayerX, Move{X1: 0, Y1: 2, X2: 1, Y2: 2})

		// Then: X wins the game
		require.NoError(t, err)
		assert.Equal(t, morpx.CellChange|morpx.StatusChange, changes)
		assert.Equal(t, changes, game.LastChanges)
		assert.Equal(t, StatusFinished, game.Status)
		assert.Equal(t, PlayerX, game.Winner)
	})

	t.Run("Draw finishes the game", func(t *testing.T) {
		// Given: every sub-board but (2,2) decided without a line, and (2,2) one cell from full
		game := newOngoingGame()
		grid := [8]morpx.Value{
			morpx.PlayerOne, morpx.PlayerTwo, morpx.PlayerOne,
			morpx.PlayerOne, morpx.PlayerTwo, morpx.PlayerTwo,
			morpx.PlayerTwo, morpx.PlayerOne,
		}
		for i, value := range grid {
			game.State.SetGrid(i/3, i%3, value)
			game.State.SetBoard(2, 2, i/3, i%3, value)
		}

		// When: X fills the last cell without a line
		changes, err := game.MakeTurn(PlayerX, Move{X1: 2, Y1: 2, X2: 2, Y2: 2})

		// Then: the game is a draw
		require.NoError(t, err)
		assert.Equal(t, morpx.CellChange|morpx.StatusChange, changes)
		assert.Equal(t, StatusFinished, game.Status)
		assert.Equal(t, PlayerTie, game.Winner)
	})
}

func TestGame_PreviewTurn(t *testing.T) {
	t.Run("Game is not modified", func(t *testing.T) {
		// Given: O is one move away from sub-board (1,1)
		game := newOngoingGame()
		game.State.Player = morpx.PlayerTwo
		game.State.SetBoard(1, 1, 0, 0, morpx.PlayerTwo)
		game.State.SetBoard(1, 1, 1, 1, morpx.PlayerTwo)
		before := *game

		// When: O previews the winning cell
		preview, changes, err := game.PreviewTurn(PlayerO, Move{X1: 1, Y1: 1, X2: 2, Y2: 2})

		// Then: the preview shows the win and the game stays as it was
		require.NoError(t, err)
		assert.Equal(t, morpx.CellChange, changes)
		assert.Equal(t, morpx.PlayerTwo, preview.GetGrid(1, 1))
		assert.Equal(t, morpx.PlayerOne, preview.Player)
		assert.Equal(t, before.State, game.State)
		assert.Equal(t, before.Moves, game.Moves)
	})

	t.Run("Rejects illegal moves", func(t *testing.T) {
		game := newOngoingGame()

		_, _, err := game.PreviewTurn(PlayerO, Move{})

		assert.ErrorIs(t, err, apperror.ErrNotYourTurn)
	})
}

func TestGame_Players(t *testing.T) {
	game := newOngoingGame()

	assert.Equal(t, "p1", game.PlayerByMark(PlayerX).ID)
	assert.Equal(t, "p2", game.Opponent("p1").ID)
	assert.Nil(t, NewGame("1", PublicType).Opponent("p1"))
}

func TestMarks(t *testing.T) {
	assert.Equal(t, morpx.PlayerOne, MarkValue(PlayerX))
	assert.Equal(t, morpx.PlayerTwo, MarkValue(PlayerO))
	assert.Equal(t, morpx.None, MarkValue(""))
	assert.Equal(t, PlayerTie, ValueMark(morpx.Unreachable))
	assert.Equal(t, "", ValueMark(morpx.None))
}

func TestNewResult(t *testing.T) {
	game := newOngoingGame()
	game.Winner = PlayerO
	game.Moves = 42
	finishedAt := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	result := NewResult(game, finishedAt)

	assert.Equal(t, &Result{
		GameID:     "123",
		PlayerX:    "p1",
		PlayerO:    "p2",
		Winner:     PlayerO,
		Moves:      42,
		FinishedAt: finishedAt,
	}, result)
}
