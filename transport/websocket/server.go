package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rocketscienceinc/morpx-backend/internal/entity"
	"github.com/rocketscienceinc/morpx-backend/internal/morpx"
	"github.com/rocketscienceinc/morpx-backend/internal/pkg"
)

const (
	sessionCookieName = "user_session"
	sessionTTL        = 24 * time.Hour
	shutdownTimeout   = 5 * time.Second

	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
	writeWait  = 10 * time.Second
)

type gameUseCase interface {
	GetOrCreatePlayer(ctx context.Context, playerID string) (*entity.Player, error)

	GetOrCreateGame(ctx context.Context, playerID, gameType string) (*entity.Game, error)
	JoinGame(ctx context.Context, gameID, playerID string) (*entity.Game, error)
	GetGameByPlayerID(ctx context.Context, playerID string) (*entity.Game, error)
	LeaveGame(ctx context.Context, playerID string) (*entity.Game, error)

	MakeTurn(ctx context.Context, playerID string, move entity.Move) (*entity.Game, morpx.ChangeSet, error)
	PreviewTurn(ctx context.Context, playerID string, move entity.Move) (*morpx.State, morpx.ChangeSet, error)
}

type handlerFunc func(ctx context.Context, message *Message, sender *client) error

type Server struct {
	logger      *slog.Logger
	gameUseCase gameUseCase
	upgrader    websocket.Upgrader

	connections      map[string]*client
	connectionsMutex sync.RWMutex

	handlers map[string]handlerFunc

	// a peer that sends nothing, not even a pong, for pongWait is dropped
	pongWait   time.Duration
	pingPeriod time.Duration
}

func New(logger *slog.Logger, gameUseCase gameUseCase) *Server {
	server := &Server{
		logger:      logger.With("component", "websocket"),
		gameUseCase: gameUseCase,
		upgrader:    websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }},

		connections: make(map[string]*client),
		handlers:    make(map[string]handlerFunc),

		pongWait:   pongWait,
		pingPeriod: pingPeriod,
	}

	server.handlers["connect"] = server.handleConnect
	server.handlers["game:new"] = server.handleNewGame
	server.handlers["game:join"] = server.handleJoinGame
	server.handlers["game:turn"] = server.handleGameTurn
	server.handlers["game:preview"] = server.handleGamePreview
	server.handlers["game:leave"] = server.handleGameLeave

	return server
}

// Handler - routes /ws to the upgrader.
func (that *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", that.serveWS)

	return mux
}

// Start - starts WebSocket server and shuts it down when ctx is done.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           that.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}

		return fmt.Errorf("failed to start server: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shutdown server: %w", err)
		}

		return nil
	}
}

// serveWS - upgrades the connection to WebSocket and reads messages until it closes.
func (that *Server) serveWS(writer http.ResponseWriter, req *http.Request) {
	log := that.logger.With("method", "serveWS")

	conn, err := that.upgrader.Upgrade(writer, req, that.sessionHeader(req))
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	defer conn.Close()

	log.Info("WebSocket connection established")

	if err = conn.SetReadDeadline(time.Now().Add(that.pongWait)); err != nil {
		log.Error("failed to set read deadline", "error", err)
		return
	}

	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(that.pongWait))
	})

	done := make(chan struct{})
	defer close(done)

	go that.keepAlive(conn, done)

	sender := &client{conn: conn}
	that.handleMessages(req.Context(), sender)
	that.handleDisconnect(sender)
}

// keepAlive - pings the peer every pingPeriod until done is closed or a ping fails.
func (that *Server) keepAlive(conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(that.pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				that.logger.Debug("failed to ping peer", "error", err)
				return
			}
		}
	}
}

// handleMessages - processes messages from the client.
func (that *Server) handleMessages(ctx context.Context, sender *client) {
	log := that.logger.With("method", "handleMessages")

	for {
		_, data, err := sender.conn.ReadMessage()
		if err == nil {
			err = sender.conn.SetReadDeadline(time.Now().Add(that.pongWait))
		}

		if err != nil {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				log.Info("peer stopped responding")
			} else if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Error("error reading message", "error", err)
			}

			return
		}

		var message Message
		if err = json.Unmarshal(data, &message); err != nil {
			log.Error("failed to unmarshal message", "error", err)
			_ = sender.sendError("", "malformed message")
			continue
		}

		handler, ok := that.handlers[message.Action]
		if !ok {
			log.Warn("unknown action", "action", message.Action)
			_ = sender.sendError(message.Action, "unknown action")
			continue
		}

		if err = handler(ctx, &message, sender); err != nil {
			log.Error("error processing message", "action", message.Action, "error", err)
		}
	}
}

// sessionHeader - sets the user session cookie when the client has none.
func (that *Server) sessionHeader(req *http.Request) http.Header {
	log := that.logger.With("method", "sessionHeader")

	if cookie, err := req.Cookie(sessionCookieName); err == nil {
		log.Info("session cookie found", "cookie", cookie.Value)
		return nil
	}

	cookie := &http.Cookie{
		Name:    sessionCookieName,
		Value:   pkg.GenerateNewSessionID(),
		Expires: time.Now().Add(sessionTTL),
		Path:    "/ws",
	}

	log.Info("session cookie not found, new one created", "cookie", cookie.Value)

	return http.Header{"Set-Cookie": []string{cookie.String()}}
}

func (that *Server) register(playerID string, sender *client) {
	that.connectionsMutex.Lock()
	that.connections[playerID] = sender
	that.connectionsMutex.Unlock()
}

func (that *Server) connection(playerID string) (*client, bool) {
	that.connectionsMutex.RLock()
	defer that.connectionsMutex.RUnlock()

	conn, ok := that.connections[playerID]

	return conn, ok
}

func (that *Server) handleDisconnect(sender *client) {
	that.connectionsMutex.Lock()
	defer that.connectionsMutex.Unlock()

	for playerID, conn := range that.connections {
		if conn == sender {
			delete(that.connections, playerID)
			that.logger.Info("player disconnected", "playerID", playerID)
		}
	}
}
