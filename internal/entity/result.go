package entity

import "time"

// Result is the record kept for a finished game.
type Result struct {
	GameID     string    `json:"game_id"`
	PlayerX    string    `json:"player_x"`
	PlayerO    string    `json:"player_o"`
	Winner     string    `json:"winner"`
	Moves      int       `json:"moves"`
	FinishedAt time.Time `json:"finished_at"`
}

// NewResult summarises a finished game.
func NewResult(game *Game, finishedAt time.Time) *Result {
	result := &Result{
		GameID:     game.ID,
		Winner:     game.Winner,
		Moves:      game.Moves,
		FinishedAt: finishedAt.UTC(),
	}

	if player := game.PlayerByMark(PlayerX); player != nil {
		result.PlayerX = player.ID
	}

	if player := game.PlayerByMark(PlayerO); player != nil {
		result.PlayerO = player.ID
	}

	return result
}
