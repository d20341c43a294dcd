package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rocketscienceinc/morpx-backend/internal/entity"
	"github.com/rocketscienceinc/morpx-backend/internal/pkg"
	"github.com/rocketscienceinc/morpx-backend/internal/repository"
)

const maxCreateAttempts = 5

type GameService interface {
	CreateGame(ctx context.Context, player *entity.Player, gameType string) (*entity.Game, error)
	UpdateGame(ctx context.Context, game *entity.Game) error
	DeleteGame(ctx context.Context, gameID string) error

	GetGameByID(ctx context.Context, id string) (*entity.Game, error)
	GetWaitingPublicGame(ctx context.Context) (*entity.Game, error)
}

type gameRepo interface {
	Create(ctx context.Context, game *entity.Game) error
	Update(ctx context.Context, game *entity.Game) error

	GetByID(ctx context.Context, id string) (*entity.Game, error)
	GetWaitingPublicGame(ctx context.Context) (*entity.Game, error)

	DeleteByID(ctx context.Context, id string) error
}

type gameService struct {
	gameRepo gameRepo
}

func NewGameService(gameRepo gameRepo) GameService {
	return &gameService{
		gameRepo: gameRepo,
	}
}

// CreateGame - creates a game seating player as X. The player is updated in place.
// A generated id that is already taken is replaced, up to maxCreateAttempts times.
func (that *gameService) CreateGame(ctx context.Context, player *entity.Player, gameType string) (*entity.Game, error) {
	for attempt := 1; ; attempt++ {
		gameID, err := pkg.GenerateGameID()
		if err != nil {
			return nil, fmt.Errorf("error generating game ID: %w", err)
		}

		game := entity.NewGame(gameID, gameType)

		player.GameID = gameID
		player.Mark = entity.PlayerX

		game.Players = []*entity.Player{player}

		err = that.gameRepo.Create(ctx, game)
		if err == nil {
			return game, nil
		}

		if !errors.Is(err, repository.ErrGameExists) || attempt == maxCreateAttempts {
			player.LeaveGame()
			return nil, fmt.Errorf("failed to create game in storage: %w", err)
		}
	}
}

func (that *gameService) GetGameByID(ctx context.Context, id string) (*entity.Game, error) {
	game, err := that.gameRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve game from storage: %w", err)
	}

	return game, nil
}

func (that *gameService) GetWaitingPublicGame(ctx context.Context) (*entity.Game, error) {
	game, err := that.gameRepo.GetWaitingPublicGame(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve waiting public game from storage: %w", err)
	}

	return game, nil
}

func (that *gameService) UpdateGame(ctx context.Context, game *entity.Game) error {
	if err := that.gameRepo.Update(ctx, game); err != nil {
		return fmt.Errorf("failed to update game: %w", err)
	}

	return nil
}

func (that *gameService) DeleteGame(ctx context.Context, gameID string) error {
	if err := that.gameRepo.DeleteByID(ctx, gameID); err != nil {
		return fmt.Errorf("failed to delete game: %w", err)
	}

	return nil
}
