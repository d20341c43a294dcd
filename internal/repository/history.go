package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rocketscienceinc/morpx-backend/internal/entity"
)

type HistoryRepository interface {
	Save(ctx context.Context, result *entity.Result) error
	FindByPlayer(ctx context.Context, playerID string, limit int) ([]*entity.Result, error)
}

type historyRepository struct {
	conn *sql.DB
}

func NewHistoryRepository(conn *sql.DB) HistoryRepository {
	return &historyRepository{
		conn: conn,
	}
}

func (that *historyRepository) Save(ctx context.Context, result *entity.Result) error {
	query := `INSERT OR REPLACE INTO results (game_id, player_x, player_o, winner, moves, finished_at)
		VALUES (?, ?, ?, ?, ?, ?)`

	_, err := that.conn.ExecContext(ctx, query,
		result.GameID, result.PlayerX, result.PlayerO, result.Winner, result.Moves, result.FinishedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("can't save result: %w", err)
	}

	return nil
}

// FindByPlayer returns the player's results, newest first.
func (that *historyRepository) FindByPlayer(ctx context.Context, playerID string, limit int) ([]*entity.Result, error) {
	query := `SELECT game_id, player_x, player_o, winner, moves, finished_at FROM results
		WHERE player_x = ? OR player_o = ?
		ORDER BY finished_at DESC, game_id
		LIMIT ?`

	rows, err := that.conn.QueryContext(ctx, query, playerID, playerID, limit)
	if err != nil {
		return nil, fmt.Errorf("can't find results: %w", err)
	}
	defer rows.Close()

	results := make([]*entity.Result, 0, limit)
	for rows.Next() {
		var (
			result     entity.Result
			finishedAt int64
		)

		if err = rows.Scan(&result.GameID, &result.PlayerX, &result.PlayerO, &result.Winner, &result.Moves, &finishedAt); err != nil {
			return nil, fmt.Errorf("can't scan result: %w", err)
		}

		result.FinishedAt = time.UnixMilli(finishedAt).UTC()
		results = append(results, &result)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("can't read results: %w", err)
	}

	return results, nil
}
