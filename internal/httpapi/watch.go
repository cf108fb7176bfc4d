package httpapi

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"
)

const (
	defaultWatchEvery = time.Second
	watchWriteTimeout = 5 * time.Second
)

func (s *Server) requireUpgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	return c.Next()
}

// watch pushes the game state to a spectator every time the stored game
// changes, and closes once the game is over or the peer goes away.
func (s *Server) watch(conn *websocket.Conn) {
	id := conn.Params("id")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Spectators never send anything; reading only detects the close.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	t := time.NewTicker(s.watchEvery)
	defer t.Stop()

	var seen time.Time
	for {
		g, err := s.games.Load(ctx, id)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			s.logger.Error("http_watch_error", zap.String("id", id), zap.Error(err))
			s.closeWatch(conn, websocket.CloseInternalServerErr, "failed to fetch game state")
			return
		}
		if g == nil {
			s.closeWatch(conn, websocket.ClosePolicyViolation, "game not found")
			return
		}

		if !g.UpdatedAt.Equal(seen) {
			seen = g.UpdatedAt
			state, err := s.games.ToDTO(ctx, g)
			if err != nil {
				s.logger.Error("http_watch_error", zap.String("id", id), zap.Error(err))
				s.closeWatch(conn, websocket.CloseInternalServerErr, "failed to render game state")
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(watchWriteTimeout))
			if err := conn.WriteJSON(stateBody(state)); err != nil {
				s.logger.Debug("http_watch_write", zap.String("id", id), zap.Error(err))
				return
			}
			if !g.Active() {
				s.closeWatch(conn, websocket.CloseNormalClosure, "game over")
				return
			}
		}

		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
	}
}

func (s *Server) closeWatch(conn *websocket.Conn, code int, reason string) {
	msg := websocket.FormatCloseMessage(code, reason)
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(watchWriteTimeout))
}
