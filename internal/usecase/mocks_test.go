package usecase

import (
	"context"

	"github.com/rocketscienceinc/morpx-backend/internal/entity"
	"github.com/stretchr/testify/mock"
)

type mockPlayerService struct {
	mock.Mock
}

func (that *mockPlayerService) CreatePlayer(ctx context.Context) (*entity.Player, error) {
	args := that.Called(ctx)
	player, _ := args.Get(0).(*entity.Player)
	return player, args.Error(1)
}

func (that *mockPlayerService) GetPlayerByID(ctx context.Context, id string) (*entity.Player, error) {
	args := that.Called(ctx, id)
	player, _ := args.Get(0).(*entity.Player)
	return player, args.Error(1)
}

func (that *mockPlayerService) UpdatePlayer(ctx context.Context, player *entity.Player) error {
	args := that.Called(ctx, player)
	return args.Error(0)
}

type mockGameService struct {
	mock.Mock
}

func (that *mockGameService) CreateGame(ctx context.Context, player *entity.Player, gameType string) (*entity.Game, error) {
	args := that.Called(ctx, player, gameType)
	game, _ := args.Get(0).(*entity.Game)
	return game, args.Error(1)
}

func (that *mockGameService) GetGameByID(ctx context.Context, id string) (*entity.Game, error) {
	args := that.Called(ctx, id)
	game, _ := args.Get(0).(*entity.Game)
	return game, args.Error(1)
}

func (that *mockGameService) GetWaitingPublicGame(ctx context.Context) (*entity.Game, error) {
	args := that.Called(ctx)
	game, _ := args.Get(0).(*entity.Game)
	return game, args.Error(1)
}

func (that *mockGameService) UpdateGame(ctx context.Context, game *entity.Game) error {
	args := that.Called(ctx, game)
	return args.Error(0)
}

func (that *mockGameService) DeleteGame(ctx context.Context, gameID string) error {
	args := that.Called(ctx, gameID)
	return args.Error(0)
}

type mockHistoryService struct {
	mock.Mock
}

func (that *mockHistoryService) RecordGame(ctx context.Context, game *entity.Game) (*entity.Result, error) {
	args := that.Called(ctx, game)
	result, _ := args.Get(0).(*entity.Result)
	return result, args.Error(1)
}

func (that *mockHistoryService) ListForPlayer(ctx context.Context, playerID string, limit int) ([]*entity.Result, error) {
	args := that.Called(ctx, playerID, limit)
	results, _ := args.Get(0).([]*entity.Result)
	return results, args.Error(1)
}
