package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/rocketscienceinc/morpx-backend/internal/apperror"
	"github.com/rocketscienceinc/morpx-backend/internal/entity"
	"github.com/rocketscienceinc/morpx-backend/internal/morpx"
	"github.com/rocketscienceinc/morpx-backend/internal/repository"
)

type GameUseCase interface {
	GetOrCreatePlayer(ctx context.Context, playerID string) (*entity.Player, error)

	GetOrCreateGame(ctx context.Context, playerID, gameType string) (*entity.Game, error)
	JoinGame(ctx context.Context, gameID, playerID string) (*entity.Game, error)
	GetGameByID(ctx context.Context, gameID string) (*entity.Game, error)
	GetGameByPlayerID(ctx context.Context, playerID string) (*entity.Game, error)
	LeaveGame(ctx context.Context, playerID string) (*entity.Game, error)

	MakeTurn(ctx context.Context, playerID string, move entity.Move) (*entity.Game, morpx.ChangeSet, error)
	PreviewTurn(ctx context.Context, playerID string, move entity.Move) (*morpx.State, morpx.ChangeSet, error)

	History(ctx context.Context, playerID string, limit int) ([]*entity.Result, error)
}

type playerService interface {
	CreatePlayer(ctx context.Context) (*entity.Player, error)
	GetPlayerByID(ctx context.Context, id string) (*entity.Player, error)
	UpdatePlayer(ctx context.Context, player *entity.Player) error
}

type gameService interface {
	CreateGame(ctx context.Context, player *entity.Player, gameType string) (*entity.Game, error)
	GetGameByID(ctx context.Context, id string) (*entity.Game, error)
	GetWaitingPublicGame(ctx context.Context) (*entity.Game, error)
	UpdateGame(ctx context.Context, game *entity.Game) error
	DeleteGame(ctx context.Context, gameID string) error
}

type historyService interface {
	RecordGame(ctx context.Context, game *entity.Game) (*entity.Result, error)
	ListForPlayer(ctx context.Context, playerID string, limit int) ([]*entity.Result, error)
}

type gameUseCase struct {
	logger *slog.Logger

	playerService  playerService
	gameService    gameService
	historyService historyService
}

func NewGameUseCase(logger *slog.Logger, playerService playerService, gameService gameService, historyService historyService) GameUseCase {
	return &gameUseCase{
		logger: logger.With("component", "gameUseCase"),

		playerService:  playerService,
		gameService:    gameService,
		historyService: historyService,
	}
}

// GetOrCreatePlayer - an empty or unknown playerID gets a fresh player.
func (that *gameUseCase) GetOrCreatePlayer(ctx context.Context, playerID string) (*entity.Player, error) {
	if playerID != "" {
		player, err := that.playerService.GetPlayerByID(ctx, playerID)
		if err == nil {
			return player, nil
		}

		if !errors.Is(err, repository.ErrPlayerNotFound) {
			return nil, fmt.Errorf("failed to get player by id: %w", err)
		}
	}

	player, err := that.playerService.CreatePlayer(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create new player: %w", err)
	}

	return player, nil
}

// GetOrCreateGame - returns the player's current game. A player without one joins a
// waiting public game when asking for a public game, otherwise a new game is created.
func (that *gameUseCase) GetOrCreateGame(ctx context.Context, playerID, gameType string) (*entity.Game, error) {
	player, err := that.playerService.GetPlayerByID(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get player by id: %w", err)
	}

	game, err := that.currentGame(ctx, player)
	if err == nil {
		return game, nil
	}

	if !errors.Is(err, apperror.ErrNotInGame) {
		return nil, err
	}

	if gameType == entity.PublicType {
		game, err := that.joinWaitingPublicGame(ctx, player)
		if err == nil {
			return game, nil
		}

		if !errors.Is(err, repository.ErrGameNotFound) {
			return nil, err
		}
	}

	game, err = that.gameService.CreateGame(ctx, player, gameType)
	if err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}

	if err = that.playerService.UpdatePlayer(ctx, player); err != nil {
		return nil, fmt.Errorf("failed to update player: %w", err)
	}

	return game, nil
}

func (that *gameUseCase) joinWaitingPublicGame(ctx context.Context, player *entity.Player) (*entity.Game, error) {
	game, err := that.gameService.GetWaitingPublicGame(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get waiting public game: %w", err)
	}

	return that.seatPlayer(ctx, game, player)
}

func (that *gameUseCase) JoinGame(ctx context.Context, gameID, playerID string) (*entity.Game, error) {
	game, err := that.gameService.GetGameByID(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get game by id: %w", err)
	}

	player, err := that.playerService.GetPlayerByID(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get player by id: %w", err)
	}

	if player.GameID == game.ID {
		return game, nil
	}

	if _, err = that.currentGame(ctx, player); err == nil {
		return nil, fmt.Errorf("%w: player %s is in game %s", apperror.ErrGameAlreadyExists, player.ID, player.GameID)
	}

	if !errors.Is(err, apperror.ErrNotInGame) {
		return nil, err
	}

	return that.seatPlayer(ctx, game, player)
}

// seatPlayer - gives player the O seat and starts the game. The game is saved
// first so a lost race for the seat leaves the player record untouched.
func (that *gameUseCase) seatPlayer(ctx context.Context, game *entity.Game, player *entity.Player) (*entity.Game, error) {
	if game.IsFull() {
		return nil, fmt.Errorf("%w: game id %s", apperror.ErrGameIsFull, game.ID)
	}

	player.GameID = game.ID
	player.Mark = entity.PlayerO

	game.Status = entity.StatusOngoing
	game.Players = append(game.Players, player)
	if err := that.gameService.UpdateGame(ctx, game); err != nil {
		player.LeaveGame()
		return nil, fmt.Errorf("failed to update game: %w", err)
	}

	if err := that.playerService.UpdatePlayer(ctx, player); err != nil {
		return nil, fmt.Errorf("failed to update player: %w", err)
	}

	that.logger.Info("game started", "gameID", game.ID, "playerID", player.ID)

	return game, nil
}

func (that *gameUseCase) GetGameByID(ctx context.Context, gameID string) (*entity.Game, error) {
	game, err := that.gameService.GetGameByID(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get game by id: %w", err)
	}

	return game, nil
}

func (that *gameUseCase) GetGameByPlayerID(ctx context.Context, playerID string) (*entity.Game, error) {
	_, game, err := that.seatedPlayer(ctx, playerID)
	if err != nil {
		return nil, err
	}

	return game, nil
}

func (that *gameUseCase) seatedPlayer(ctx context.Context, playerID string) (*entity.Player, *entity.Game, error) {
	player, err := that.playerService.GetPlayerByID(ctx, playerID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get player by id: %w", err)
	}

	game, err := that.currentGame(ctx, player)
	if err != nil {
		return nil, nil, err
	}

	return player, game, nil
}

// currentGame - loads the player's game. Games expire while player records do not,
// so a seat in a game that is gone is cleared and reported as ErrNotInGame.
func (that *gameUseCase) currentGame(ctx context.Context, player *entity.Player) (*entity.Game, error) {
	if !player.InGame() {
		return nil, apperror.ErrNotInGame
	}

	game, err := that.gameService.GetGameByID(ctx, player.GameID)
	if errors.Is(err, repository.ErrGameNotFound) {
		that.logger.Info("clearing seat in expired game", "playerID", player.ID, "gameID", player.GameID)

		player.LeaveGame()
		if err = that.playerService.UpdatePlayer(ctx, player); err != nil {
			return nil, fmt.Errorf("failed to update player: %w", err)
		}

		return nil, apperror.ErrNotInGame
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get game by id: %w", err)
	}

	return game, nil
}

// MakeTurn - plays move for the player. The move is lost if another request changed the
// game since it was loaded. A finished game is recorded and cleaned up; it is still
// returned together with the change flags so both players can be told.
func (that *gameUseCase) MakeTurn(ctx context.Context, playerID string, move entity.Move) (*entity.Game, morpx.ChangeSet, error) {
	player, game, err := that.seatedPlayer(ctx, playerID)
	if err != nil {
		return nil, morpx.NoChanges, err
	}

	if err = game.ConfirmOngoingState(); err != nil {
		return game, morpx.NoChanges, err
	}

	changes, err := game.MakeTurn(player.Mark, move)
	if err != nil {
		return game, morpx.NoChanges, fmt.Errorf("failed to make turn: %w", err)
	}

	if err = that.gameService.UpdateGame(ctx, game); err != nil {
		return nil, morpx.NoChanges, fmt.Errorf("failed to update game: %w", err)
	}

	if game.IsFinished() {
		that.finishGame(ctx, game)
	}

	return game, changes, nil
}

func (that *gameUseCase) PreviewTurn(ctx context.Context, playerID string, move entity.Move) (*morpx.State, morpx.ChangeSet, error) {
	player, game, err := that.seatedPlayer(ctx, playerID)
	if err != nil {
		return nil, morpx.NoChanges, err
	}

	if err = game.ConfirmOngoingState(); err != nil {
		return nil, morpx.NoChanges, err
	}

	preview, changes, err := game.PreviewTurn(player.Mark, move)
	if err != nil {
		return nil, morpx.NoChanges, fmt.Errorf("failed to preview turn: %w", err)
	}

	return &preview, changes, nil
}

// LeaveGame - removes the game the player is in. The opponent wins a started game.
func (that *gameUseCase) LeaveGame(ctx context.Context, playerID string) (*entity.Game, error) {
	player, game, err := that.seatedPlayer(ctx, playerID)
	if err != nil {
		return nil, err
	}

	if game.IsOngoing() {
		if opponent := game.Opponent(player.ID); opponent != nil {
			game.Winner = opponent.Mark
			game.Status = entity.StatusFinished
			that.finishGame(ctx, game)

			return game, nil
		}
	}

	that.cleanupGame(ctx, game)

	return game, nil
}

func (that *gameUseCase) History(ctx context.Context, playerID string, limit int) ([]*entity.Result, error) {
	results, err := that.historyService.ListForPlayer(ctx, playerID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}

	return results, nil
}

func (that *gameUseCase) finishGame(ctx context.Context, game *entity.Game) {
	log := that.logger.With("method", "finishGame", "gameID", game.ID)

	if _, err := that.historyService.RecordGame(ctx, game); err != nil {
		log.Error("failed to record game", "error", err)
	}

	log.Info("game finished", "winner", game.Winner, "moves", game.Moves)

	that.cleanupGame(ctx, game)
}

// cleanupGame - deletes the game and frees the players' seats. The game keeps its
// players and marks so the caller can still notify them.
func (that *gameUseCase) cleanupGame(ctx context.Context, game *entity.Game) {
	log := that.logger.With("method", "cleanupGame", "gameID", game.ID)

	if err := that.gameService.DeleteGame(ctx, game.ID); err != nil {
		log.Error("failed to delete game", "error", err)
	}

	for _, player := range game.Players {
		freed := *player
		freed.LeaveGame()

		if err := that.playerService.UpdatePlayer(ctx, &freed); err != nil {
			log.Error("failed to update", "player", player.ID, "error", err)
		}
	}
}
