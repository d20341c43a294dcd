package entity

import (
	"errors"
	"fmt"

	"github.com/rocketscienceinc/morpx-backend/internal/apperror"
	"github.com/rocketscienceinc/morpx-backend/internal/morpx"
)

const (
	StatusFinished = "finished"
	StatusOngoing  = "ongoing"
	StatusWaiting  = "waiting"

	PlayerX   = "X"
	PlayerO   = "O"
	PlayerTie = "-"
)

const (
	PublicType  = "public"
	PrivateType = "private"
)

var ErrUnknownGameStatus = errors.New("unknown game status")

// Move addresses one of the 81 cells: sub-board (X1, Y1), cell (X2, Y2).
type Move struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

func (that Move) Validate() error {
	for _, coordinate := range [4]int{that.X1, that.Y1, that.X2, that.Y2} {
		if coordinate < 0 || coordinate > 2 {
			return fmt.Errorf("%w: %d,%d,%d,%d", apperror.ErrInvalidMove, that.X1, that.Y1, that.X2, that.Y2)
		}
	}

	return nil
}

// Game is a match around one engine state. Version is bumped by every stored
// update so that a stale copy cannot overwrite a newer one.
type Game struct {
	ID          string          `json:"id"`
	State       morpx.State     `json:"state"`
	Winner      string          `json:"winner"`
	Status      string          `json:"status"`
	Players     []*Player       `json:"players,omitempty"`
	Type        string          `json:"type,omitempty"`
	Moves       int             `json:"moves"`
	LastChanges morpx.ChangeSet `json:"last_changes"`
	Version     int64           `json:"version"`
}

func NewGame(id, gameType string) *Game {
	return &Game{
		ID:     id,
		State:  *morpx.New(),
		Status: StatusWaiting,
		Type:   gameType,
	}
}

// Turn returns the mark of the player to move.
func (that *Game) Turn() string {
	return ValueMark(that.State.Player)
}

// MakeTurn plays move for mark and updates the game status from the engine state.
func (that *Game) MakeTurn(mark string, move Move) (morpx.ChangeSet, error) {
	if err := that.validateTurn(mark, move); err != nil {
		return morpx.NoChanges, err
	}

	changes := that.State.Play(move.X1, move.Y1, move.X2, move.Y2)
	that.Moves++
	that.LastChanges = changes

	if changes.Has(morpx.StatusChange) {
		that.UpdateGameState()
	}

	return changes, nil
}

// PreviewTurn plays move on a copy of the state. The game is left unchanged.
func (that *Game) PreviewTurn(mark string, move Move) (morpx.State, morpx.ChangeSet, error) {
	if err := that.validateTurn(mark, move); err != nil {
		return morpx.State{}, morpx.NoChanges, err
	}

	preview := morpx.State{Player: that.State.Player}
	changes := that.State.CopyAndPlay(&preview, move.X1, move.Y1, move.X2, move.Y2)

	return preview, changes, nil
}

func (that *Game) validateTurn(mark string, move Move) error {
	if err := move.Validate(); err != nil {
		return err
	}

	if that.IsFinished() || that.State.Status != morpx.None {
		return apperror.ErrGameFinished
	}

	if MarkValue(mark) != that.State.Player {
		return apperror.ErrNotYourTurn
	}

	if that.State.GetGrid(move.X1, move.Y1) != morpx.None {
		return fmt.Errorf("%w: %d,%d", apperror.ErrSubBoardClosed, move.X1, move.Y1)
	}

	if that.State.GetBoard(move.X1, move.Y1, move.X2, move.Y2) != morpx.None {
		return apperror.ErrCellOccupied
	}

	return nil
}

// UpdateGameState finishes the game once the engine has decided it.
func (that *Game) UpdateGameState() {
	if that.State.Status == morpx.None {
		return
	}

	that.Winner = ValueMark(that.State.Status)
	that.Status = StatusFinished
}

func (that *Game) IsFinished() bool {
	return that.Status == StatusFinished
}

func (that *Game) IsOngoing() bool {
	return that.Status == StatusOngoing
}

func (that *Game) IsWaiting() bool {
	return that.Status == StatusWaiting
}

func (that *Game) IsPublic() bool {
	return that.Type == PublicType
}

func (that *Game) IsFull() bool {
	return len(that.Players) >= 2
}

func (that *Game) ConfirmOngoingState() error {
	switch {
	case that.IsWaiting():
		return apperror.ErrGameIsNotStarted
	case that.IsFinished():
		return apperror.ErrGameFinished
	case that.IsOngoing():
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnknownGameStatus, that.Status)
	}
}

// PlayerByMark returns the seated player holding mark, or nil.
func (that *Game) PlayerByMark(mark string) *Player {
	for _, player := range that.Players {
		if player.Mark == mark {
			return player
		}
	}

	return nil
}

// Opponent returns the other seated player, or nil.
func (that *Game) Opponent(playerID string) *Player {
	for _, player := range that.Players {
		if player.ID != playerID {
			return player
		}
	}

	return nil
}
