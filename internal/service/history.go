package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rocketscienceinc/morpx-backend/internal/entity"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

var ErrGameNotFinished = errors.New("game is not finished")

type HistoryService interface {
	RecordGame(ctx context.Context, game *entity.Game) (*entity.Result, error)
	ListForPlayer(ctx context.Context, playerID string, limit int) ([]*entity.Result, error)
}

type historyRepo interface {
	Save(ctx context.Context, result *entity.Result) error
	FindByPlayer(ctx context.Context, playerID string, limit int) ([]*entity.Result, error)
}

type historyService struct {
	historyRepo historyRepo
	now         func() time.Time
}

func NewHistoryService(historyRepo historyRepo) HistoryService {
	return &historyService{
		historyRepo: historyRepo,
		now:         time.Now,
	}
}

func (that *historyService) RecordGame(ctx context.Context, game *entity.Game) (*entity.Result, error) {
	if !game.IsFinished() {
		return nil, fmt.Errorf("record game %s: %w", game.ID, ErrGameNotFinished)
	}

	result := entity.NewResult(game, that.now())
	if err := that.historyRepo.Save(ctx, result); err != nil {
		return nil, fmt.Errorf("failed to save result: %w", err)
	}

	return result, nil
}

// ListForPlayer - limit outside (0, maxHistoryLimit] falls back to a sane value.
func (that *historyService) ListForPlayer(ctx context.Context, playerID string, limit int) ([]*entity.Result, error) {
	switch {
	case limit <= 0:
		limit = defaultHistoryLimit
	case limit > maxHistoryLimit:
		limit = maxHistoryLimit
	}

	results, err := that.historyRepo.FindByPlayer(ctx, playerID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to find results: %w", err)
	}

	return results, nil
}
