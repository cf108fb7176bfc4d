// Package httpapi exposes health, read-only game endpoints and a spectator
// stream next to the chat bot.
package httpapi

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
	"github.com/park285/cheese-checkers-bot/internal/match"
	"github.com/park285/cheese-checkers-bot/pkg/checkersdto"
	"go.uber.org/zap"
)

const requestTimeout = 10 * time.Second

// Games is the part of match.Manager the API reads from.
type Games interface {
	Load(ctx context.Context, id string) (*match.Game, error)
	ToDTO(ctx context.Context, g *match.Game) (*checkersdto.BoardState, error)
	Replay(ctx context.Context, text string) (*checkersdto.ReplaySummary, error)
}

// Health reports whether the chat transport is up.
type Health interface {
	Connected() bool
}

type Server struct {
	app    *fiber.App
	games  Games
	health Health
	logger *zap.Logger

	watchEvery time.Duration
}

func New(games Games, health Health, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		app:    fiber.New(fiber.Config{DisableStartupMessage: true, BodyLimit: 256 << 10}),
		games:  games,
		health: health,
		logger: logger,

		watchEvery: defaultWatchEvery,
	}
	s.app.Use(recover.New())
	s.app.Use(s.accessLog)

	s.app.Get("/healthz", s.healthz)
	api := s.app.Group("/api")
	api.Post("/replay", s.replay)
	api.Get("/games/:id", s.game)
	api.Get("/games/:id/board.png", s.board)
	s.app.Get("/ws/games/:id", s.requireUpgrade, websocket.New(s.watch))
	return s
}

func (s *Server) App() *fiber.App { return s.app }

func (s *Server) Listen(addr string) error { return s.app.Listen(addr) }

func (s *Server) Shutdown(ctx context.Context) error { return s.app.ShutdownWithContext(ctx) }

func (s *Server) accessLog(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	s.logger.Debug("http_request",
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Int("status", c.Response().StatusCode()),
		zap.Duration("took", time.Since(start)),
	)
	return err
}

func (s *Server) healthz(c *fiber.Ctx) error {
	connected := s.health == nil || s.health.Connected()
	status := fiber.StatusOK
	if !connected {
		status = fiber.StatusServiceUnavailable
	}
	return c.Status(status).JSON(fiber.Map{"ok": connected})
}

// replay validates the request body as a transcript.
func (s *Server) replay(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), requestTimeout)
	defer cancel()
	sum, err := s.games.Replay(ctx, string(c.Body()))
	if err != nil {
		s.logger.Error("http_replay_error", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "replay failed"})
	}
	status := fiber.StatusOK
	if sum.Failed() {
		status = fiber.StatusUnprocessableEntity
	}
	return c.Status(status).JSON(replayBody(sum))
}

func (s *Server) game(c *fiber.Ctx) error {
	state, ok, err := s.state(c)
	if !ok {
		return err
	}
	return c.JSON(stateBody(state))
}

func (s *Server) board(c *fiber.Ctx) error {
	state, ok, err := s.state(c)
	if !ok {
		return err
	}
	c.Set(fiber.HeaderContentType, "image/png")
	return c.Send(state.BoardImage)
}

// state loads and renders the game named in the path; ok is false when a
// response has already been written.
func (s *Server) state(c *fiber.Ctx) (*checkersdto.BoardState, bool, error) {
	ctx, cancel := context.WithTimeout(c.UserContext(), requestTimeout)
	defer cancel()

	g, err := s.games.Load(ctx, c.Params("id"))
	if err == nil && g == nil {
		return nil, false, c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "game not found"})
	}
	var state *checkersdto.BoardState
	if err == nil {
		state, err = s.games.ToDTO(ctx, g)
	}
	if err != nil {
		s.logger.Error("http_game_error", zap.String("id", c.Params("id")), zap.Error(err))
		return nil, false, c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch game state"})
	}
	return state, true, nil
}

type replayJSON struct {
	Applied    int      `json:"applied"`
	Moves      []string `json:"moves"`
	Next       string   `json:"next,omitempty"`
	Winner     string   `json:"winner,omitempty"`
	FailedLine int      `json:"failed_line,omitempty"`
	FailedMove string   `json:"failed_move,omitempty"`
	Reason     string   `json:"reason,omitempty"`
}

func replayBody(sum *checkersdto.ReplaySummary) replayJSON {
	return replayJSON{
		Applied:    sum.Applied,
		Moves:      append([]string{}, sum.Moves...),
		Next:       sum.Next,
		Winner:     sum.Winner,
		FailedLine: sum.FailedLine,
		FailedMove: sum.FailedMove,
		Reason:     sum.Reason,
	}
}

type stateJSON struct {
	ID      string   `json:"id"`
	White   string   `json:"white"`
	Black   string   `json:"black"`
	Moves   []string `json:"moves"`
	Turn    string   `json:"turn"`
	Status  string   `json:"status"`
	Winner  string   `json:"winner,omitempty"`
	InChain bool     `json:"in_chain"`
	Pieces  [2]int   `json:"pieces"`
}

func stateBody(st *checkersdto.BoardState) stateJSON {
	return stateJSON{
		ID:      st.GameID,
		White:   st.White,
		Black:   st.Black,
		Moves:   append([]string{}, st.Moves...),
		Turn:    st.Turn,
		Status:  st.Status,
		Winner:  st.Winner,
		InChain: st.InChain,
		Pieces:  [2]int{st.WhiteCount, st.BlackCount},
	}
}
