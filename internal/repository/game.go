package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rocketscienceinc/morpx-backend/internal/entity"
)

const waitingPublicGamesKey = "games:public:waiting"

var (
	ErrGameNotFound = errors.New("game not found")
	ErrGameExists   = errors.New("game id already taken")
	ErrGameConflict = errors.New("game was changed by another request")
)

type GameRepository interface {
	Create(ctx context.Context, game *entity.Game) error
	Update(ctx context.Context, game *entity.Game) error
	GetByID(ctx context.Context, id string) (*entity.Game, error)
	GetWaitingPublicGame(ctx context.Context) (*entity.Game, error)
	DeleteByID(ctx context.Context, id string) error
}

type dbGame struct {
	client *redis.Client
	ttl    time.Duration
}

// NewGameRepository - games expire after ttl without updates; zero keeps them forever.
func NewGameRepository(client *redis.Client, ttl time.Duration) GameRepository {
	return &dbGame{
		client: client,
		ttl:    ttl,
	}
}

func gameKey(id string) string {
	return "game:" + id
}

// Create - stores a new game. An id that is already in use yields ErrGameExists.
func (that *dbGame) Create(ctx context.Context, game *entity.Game) error {
	gameJSON, err := json.Marshal(game)
	if err != nil {
		return fmt.Errorf("could not marshal game: %w", err)
	}

	created, err := that.client.SetNX(ctx, gameKey(game.ID), gameJSON, that.ttl).Result()
	if err != nil {
		return fmt.Errorf("failed to create game: %w", err)
	}

	if !created {
		return fmt.Errorf("%w: %s", ErrGameExists, game.ID)
	}

	if game.IsPublic() && game.IsWaiting() {
		if err = that.client.SAdd(ctx, waitingPublicGamesKey, game.ID).Err(); err != nil {
			return fmt.Errorf("failed to queue public game: %w", err)
		}
	}

	return nil
}

// Update - replaces the stored game if it still has game.Version, then bumps game.Version.
// A newer stored version yields ErrGameConflict, a missing one ErrGameNotFound.
func (that *dbGame) Update(ctx context.Context, game *entity.Game) error {
	key := gameKey(game.ID)

	next := *game
	next.Version++

	gameJSON, err := json.Marshal(&next)
	if err != nil {
		return fmt.Errorf("could not marshal game: %w", err)
	}

	err = that.client.Watch(ctx, func(tx *redis.Tx) error {
		stored, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return ErrGameNotFound
		}

		if err != nil {
			return fmt.Errorf("failed to get game: %w", err)
		}

		var current struct {
			Version int64 `json:"version"`
		}
		if err = json.Unmarshal(stored, &current); err != nil {
			return fmt.Errorf("failed to unmarshal game: %w", err)
		}

		if current.Version != game.Version {
			return ErrGameConflict
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, gameJSON, that.ttl)

			if game.IsPublic() && game.IsWaiting() {
				pipe.SAdd(ctx, waitingPublicGamesKey, game.ID)
			} else {
				pipe.SRem(ctx, waitingPublicGamesKey, game.ID)
			}

			return nil
		})

		return err
	}, key)

	if errors.Is(err, redis.TxFailedErr) {
		return fmt.Errorf("%w: %s", ErrGameConflict, game.ID)
	}

	if err != nil {
		return fmt.Errorf("failed to update game %s: %w", game.ID, err)
	}

	game.Version = next.Version

	return nil
}

func (that *dbGame) GetByID(ctx context.Context, id string) (*entity.Game, error) {
	response, err := that.client.Get(ctx, gameKey(id)).Result()
	if errors.Is(err, redis.Nil) {
		return &entity.Game{}, ErrGameNotFound
	}

	if err != nil {
		return &entity.Game{}, fmt.Errorf("failed to get game by id: %w", err)
	}

	var existingGame entity.Game
	if err = json.Unmarshal([]byte(response), &existingGame); err != nil {
		return &entity.Game{}, fmt.Errorf("failed to unmarshal game: %w", err)
	}

	return &existingGame, nil
}

// GetWaitingPublicGame - returns any public game waiting for a second player.
// Entries whose game has expired are dropped from the waiting set on the way.
func (that *dbGame) GetWaitingPublicGame(ctx context.Context) (*entity.Game, error) {
	for {
		id, err := that.client.SRandMember(ctx, waitingPublicGamesKey).Result()
		if errors.Is(err, redis.Nil) {
			return nil, ErrGameNotFound
		}

		if err != nil {
			return nil, fmt.Errorf("failed to get waiting public game: %w", err)
		}

		game, err := that.GetByID(ctx, id)
		if errors.Is(err, ErrGameNotFound) {
			if err = that.client.SRem(ctx, waitingPublicGamesKey, id).Err(); err != nil {
				return nil, fmt.Errorf("failed to drop expired public game: %w", err)
			}

			continue
		}

		if err != nil {
			return nil, err
		}

		return game, nil
	}
}

func (that *dbGame) DeleteByID(ctx context.Context, id string) error {
	var deleted *redis.IntCmd

	_, err := that.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		deleted = pipe.Del(ctx, gameKey(id))
		pipe.SRem(ctx, waitingPublicGamesKey, id)

		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete game by ID: %w", err)
	}

	if deleted.Val() == 0 {
		return ErrGameNotFound
	}

	return nil
}
