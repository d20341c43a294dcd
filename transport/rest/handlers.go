package rest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rocketscienceinc/morpx-backend/internal/entity"
	"github.com/rocketscienceinc/morpx-backend/internal/repository"
)

type gameUseCase interface {
	GetGameByID(ctx context.Context, gameID string) (*entity.Game, error)
	History(ctx context.Context, playerID string, limit int) ([]*entity.Result, error)
}

type handlers struct {
	logger      *slog.Logger
	gameUseCase gameUseCase
}

// NewRouter wires routes and returns an http.Handler.
func NewRouter(logger *slog.Logger, gameUseCase gameUseCase) http.Handler {
	h := &handlers{
		logger:      logger.With("component", "rest"),
		gameUseCase: gameUseCase,
	}

	r := chi.NewRouter()
	r.Get("/ping", h.ping)
	r.Get("/games/{id}", h.game)
	r.Get("/players/{id}/history", h.history)

	return r
}

func (that *handlers) ping(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("pong")); err != nil {
		that.logger.Error("failed to write pong", "error", err)
	}
}

func (that *handlers) game(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	game, err := that.gameUseCase.GetGameByID(r.Context(), id)
	if errors.Is(err, repository.ErrGameNotFound) {
		http.Error(w, "game not found", http.StatusNotFound)
		return
	}

	if err != nil {
		that.logger.Error("failed to get game", "gameID", id, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	masked := *game
	masked.Players = nil

	that.writeJSON(w, &masked)
}

func (that *handlers) history(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var limit int
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			http.Error(w, "limit must be a number", http.StatusBadRequest)
			return
		}

		limit = parsed
	}

	results, err := that.gameUseCase.History(r.Context(), id, limit)
	if err != nil {
		that.logger.Error("failed to list history", "playerID", id, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if results == nil {
		results = []*entity.Result{}
	}

	that.writeJSON(w, results)
}

func (that *handlers) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(v); err != nil {
		that.logger.Error("failed to encode response", "error", err)
	}
}
