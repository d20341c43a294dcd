package entity

import "github.com/rocketscienceinc/morpx-backend/internal/morpx"

type Player struct {
	ID     string `json:"id"`
	Mark   string `json:"mark,omitempty"`
	GameID string `json:"game_id,omitempty"`
}

// InGame reports whether the player holds a seat.
func (that *Player) InGame() bool {
	return that.GameID != ""
}

// LeaveGame clears the player's seat.
func (that *Player) LeaveGame() {
	that.GameID = ""
	that.Mark = ""
}

// MarkValue maps a player mark to the engine value it plays with.
func MarkValue(mark string) morpx.Value {
	switch mark {
	case PlayerX:
		return morpx.PlayerOne
	case PlayerO:
		return morpx.PlayerTwo
	default:
		return morpx.None
	}
}

// ValueMark maps an engine value back to a mark; a draw maps to PlayerTie.
func ValueMark(value morpx.Value) string {
	switch value {
	case morpx.PlayerOne:
		return PlayerX
	case morpx.PlayerTwo:
		return PlayerO
	case morpx.Unreachable:
		return PlayerTie
	default:
		return ""
	}
}
