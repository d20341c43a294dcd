package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rocketscienceinc/morpx-backend/internal/apperror"
	"github.com/rocketscienceinc/morpx-backend/internal/entity"
)

const gameStatusLeave = "leave"

func (that *Server) handleConnect(ctx context.Context, msg *Message, sender *client) error {
	log := that.logger.With("method", "handleConnect")

	payloadReq, err := decodePayload(msg)
	if err != nil {
		return sender.sendError(msg.Action, "malformed payload")
	}

	if payloadReq.Player == nil {
		log.Error("Player is missing in payload")
		return sender.sendError(msg.Action, "Player is required")
	}

	player, err := that.gameUseCase.GetOrCreatePlayer(ctx, payloadReq.Player.ID)
	if err != nil {
		log.Error("failed to create or get", "player", err)
		return sender.sendError(msg.Action, "failed to create a new player")
	}

	that.register(player.ID, sender)

	payloadResp := Payload{Player: player}

	if player.InGame() {
		game, err := that.gameUseCase.GetGameByPlayerID(ctx, player.ID)
		switch {
		case errors.Is(err, apperror.ErrNotInGame):
			// the game expired and the seat was released
			player.LeaveGame()
		case err != nil:
			log.Error("failed to get game", "gameID", player.GameID, "error", err)
			return sender.sendError(msg.Action, "failed to get the game")
		default:
			payloadResp.Game = maskGameDetails(game)
		}
	}

	if err = sender.sendMessage(msg.Action, payloadResp); err != nil {
		return fmt.Errorf("failed to send response: %w", err)
	}

	log.Info("successfully connected player", "playerID", player.ID)

	return nil
}

func (that *Server) handleNewGame(ctx context.Context, msg *Message, sender *client) error {
	log := that.logger.With("method", "handleNewGame")

	payloadReq, err := decodePayload(msg)
	if err != nil {
		return sender.sendError(msg.Action, "malformed payload")
	}

	if payloadReq.Player == nil {
		return sender.sendError(msg.Action, "Player is required")
	}

	if payloadReq.Game == nil {
		return sender.sendError(msg.Action, "Game is required")
	}

	that.register(payloadReq.Player.ID, sender)

	game, err := that.gameUseCase.GetOrCreateGame(ctx, payloadReq.Player.ID, payloadReq.Game.Type)
	if err != nil {
		log.Error("failed to create or get game", "error", err)
		return sender.sendError(msg.Action, "failed to create a new game")
	}

	that.broadcast(msg.Action, game, Payload{})

	log.Info("game ready", "gameID", game.ID)

	return nil
}

func (that *Server) handleJoinGame(ctx context.Context, msg *Message, sender *client) error {
	log := that.logger.With("method", "handleJoinGame")

	payloadReq, err := decodePayload(msg)
	if err != nil {
		return sender.sendError(msg.Action, "malformed payload")
	}

	if payloadReq.Player == nil {
		return sender.sendError(msg.Action, "Player is required")
	}

	if payloadReq.Game == nil {
		return sender.sendError(msg.Action, "Game is required")
	}

	that.register(payloadReq.Player.ID, sender)

	game, err := that.gameUseCase.JoinGame(ctx, payloadReq.Game.ID, payloadReq.Player.ID)
	if err != nil {
		log.Error("failed to join game", "error", err)
		return sender.sendError(msg.Action, fmt.Sprintf("game %s: %v", payloadReq.Game.ID, err))
	}

	that.broadcast(msg.Action, game, Payload{})

	log.Info("Player joined game", "playerID", payloadReq.Player.ID, "gameID", game.ID)

	return nil
}

func (that *Server) handleGameTurn(ctx context.Context, msg *Message, sender *client) error {
	log := that.logger.With("method", "handleGameTurn")

	payloadReq, err := decodePayload(msg)
	if err != nil {
		return sender.sendError(msg.Action, "malformed payload")
	}

	if payloadReq.Player == nil {
		return sender.sendError(msg.Action, "Player is required")
	}

	if payloadReq.Move == nil {
		return sender.sendError(msg.Action, "Move is required")
	}

	that.register(payloadReq.Player.ID, sender)

	game, changes, err := that.gameUseCase.MakeTurn(ctx, payloadReq.Player.ID, *payloadReq.Move)
	if err != nil {
		log.Info("turn rejected", "playerID", payloadReq.Player.ID, "error", err)
		return sender.sendError(msg.Action, err.Error())
	}

	that.broadcast(msg.Action, game, Payload{Move: payloadReq.Move, Changes: &changes})

	log.Info("Player made a turn", "playerID", payloadReq.Player.ID, "gameID", game.ID)

	return nil
}

// handleGamePreview - answers the sender only; nothing is saved.
func (that *Server) handleGamePreview(ctx context.Context, msg *Message, sender *client) error {
	payloadReq, err := decodePayload(msg)
	if err != nil {
		return sender.sendError(msg.Action, "malformed payload")
	}

	if payloadReq.Player == nil {
		return sender.sendError(msg.Action, "Player is required")
	}

	if payloadReq.Move == nil {
		return sender.sendError(msg.Action, "Move is required")
	}

	preview, changes, err := that.gameUseCase.PreviewTurn(ctx, payloadReq.Player.ID, *payloadReq.Move)
	if err != nil {
		return sender.sendError(msg.Action, err.Error())
	}

	return sender.sendMessage(msg.Action, Payload{Move: payloadReq.Move, Preview: preview, Changes: &changes})
}

func (that *Server) handleGameLeave(ctx context.Context, msg *Message, sender *client) error {
	log := that.logger.With("method", "handleGameLeave")

	payloadReq, err := decodePayload(msg)
	if err != nil {
		return sender.sendError(msg.Action, "malformed payload")
	}

	if payloadReq.Player == nil {
		return sender.sendError(msg.Action, "Player is required")
	}

	that.register(payloadReq.Player.ID, sender)

	game, err := that.gameUseCase.LeaveGame(ctx, payloadReq.Player.ID)
	if err != nil {
		log.Error("failed to leave game", "error", err)
		return sender.sendError(msg.Action, "game doesn't exist")
	}

	if !game.IsFinished() {
		game.Status = gameStatusLeave
	}

	that.broadcast(msg.Action, game, Payload{})

	log.Info("Player leaving", "playerID", payloadReq.Player.ID, "gameID", game.ID)

	return nil
}

// broadcast - sends the game to every seated player that has a connection.
func (that *Server) broadcast(action string, game *entity.Game, extra Payload) {
	log := that.logger.With("method", "broadcast", "gameID", game.ID)

	masked := maskGameDetails(game)

	for _, player := range game.Players {
		conn, ok := that.connection(player.ID)
		if !ok {
			log.Warn("connection not found for player", "playerID", player.ID)
			continue
		}

		payloadResp := extra
		payloadResp.Player = player
		payloadResp.Game = masked

		if err := conn.sendMessage(action, payloadResp); err != nil {
			log.Error("failed to send game update", "playerID", player.ID, "error", err)
		}
	}
}

func decodePayload(msg *Message) (*Payload, error) {
	var payload Payload

	if len(msg.Payload) == 0 {
		return &payload, nil
	}

	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return nil, fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	return &payload, nil
}
