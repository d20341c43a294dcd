package websocket

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rocketscienceinc/morpx-backend/internal/entity"
	"github.com/rocketscienceinc/morpx-backend/internal/morpx"
)

// Message represents a WebSocket message with an action type and a payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type Payload struct {
	Player  *entity.Player   `json:"player,omitempty"`
	Game    *entity.Game     `json:"game,omitempty"`
	Move    *entity.Move     `json:"move,omitempty"`
	Preview *morpx.State     `json:"preview,omitempty"`
	Changes *morpx.ChangeSet `json:"changes,omitempty"`
	Error   string           `json:"error,omitempty"`
}

// client wraps a connection; gorilla allows one concurrent writer only.
type client struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

func (that *client) sendMessage(action string, payload Payload) error {
	rawPayload, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	response, err := json.Marshal(Message{Action: action, Payload: rawPayload})
	if err != nil {
		return fmt.Errorf("failed to marshal response: %w", err)
	}

	that.writeMu.Lock()
	defer that.writeMu.Unlock()

	if err = that.conn.WriteMessage(websocket.TextMessage, response); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}

	return nil
}

func (that *client) sendError(action, errorMsg string) error {
	if err := that.sendMessage(action, Payload{Error: errorMsg}); err != nil {
		return fmt.Errorf("failed to send error response: %w", err)
	}

	return nil
}

// maskGameDetails returns a copy of game without seat details.
func maskGameDetails(game *entity.Game) *entity.Game {
	masked := *game
	masked.Players = nil
	masked.Type = ""

	return &masked
}
