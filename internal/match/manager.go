// Package match keeps player-vs-player checkers games in Redis.
package match

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/park285/cheese-checkers-bot/internal/checkers"
	"github.com/park285/cheese-checkers-bot/internal/msgcat"
	"github.com/park285/cheese-checkers-bot/internal/obslog"
	"github.com/park285/cheese-checkers-bot/internal/render"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const defaultTTL = 24 * time.Hour

var (
	ErrNotInitialized = errors.New("match manager not initialized")
	ErrAlreadyPlaying = errors.New("player already has an active game in this room")
	ErrGameNotFound   = errors.New("game not found")
	ErrNotActive      = errors.New("game no longer active")
	ErrSamePlayer     = errors.New("cannot play against yourself")

	errNotYourTurn = errors.New("not_your_turn")
	errIllegalMove = errors.New("illegal_move")
)

type Option func(*Manager)

// WithTTL sets how long an untouched game stays in Redis.
func WithTTL(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.ttl = d
		}
	}
}

func WithCatalog(c *msgcat.Catalog) Option {
	return func(m *Manager) { m.cat = c }
}

func WithSquarePx(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.squarePx = n
		}
	}
}

type Manager struct {
	rdb      *redis.Client
	repo     *Repository
	cat      *msgcat.Catalog
	ttl      time.Duration
	squarePx int
}

func NewManager(redisURL string, opts ...Option) (*Manager, error) {
	if strings.TrimSpace(redisURL) == "" {
		return nil, fmt.Errorf("REDIS_URL required for match manager")
	}
	ropts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(ropts)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	m := &Manager{rdb: rdb, ttl: defaultTTL, squarePx: render.DefaultSquarePx}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

func (m *Manager) Close() error {
	if m == nil || m.rdb == nil {
		return nil
	}
	return m.rdb.Close()
}

// AttachRepository wires the archive finished games are written to.
func (m *Manager) AttachRepository(r *Repository) {
	if m != nil {
		m.repo = r
	}
}

// Create starts a game in room. colorChoice is the challenger's side
// (white, black or anything else for random); layout is LayoutStandard or LayoutExample.
func (m *Manager) Create(ctx context.Context, room, challengerID, challengerName, targetID, targetName, colorChoice, layout string) (*Game, error) {
	if m == nil || m.rdb == nil {
		return nil, ErrNotInitialized
	}
	challengerID, targetID = strings.TrimSpace(challengerID), strings.TrimSpace(targetID)
	if challengerID == "" || targetID == "" {
		return nil, fmt.Errorf("invalid participants")
	}
	if challengerID == targetID {
		return nil, ErrSamePlayer
	}
	for _, id := range []string{challengerID, targetID} {
		existing, err := m.GetActiveByUserInRoom(ctx, id, room)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, fmt.Errorf("%w: %s", ErrAlreadyPlaying, id)
		}
	}

	whiteID, whiteName := challengerID, challengerName
	blackID, blackName := targetID, targetName
	swap := false
	switch c, ok := checkers.ParseColor(colorChoice); {
	case ok && c == checkers.Black:
		swap = true
	case !ok:
		if n, _ := rand.Int(rand.Reader, big.NewInt(2)); n != nil && n.Int64() == 0 {
			swap = true
		}
	}
	if swap {
		whiteID, whiteName, blackID, blackName = targetID, targetName, challengerID, challengerName
	}
	if layout != LayoutExample {
		layout = LayoutStandard
	}

	now := time.Now()
	g := &Game{
		ID:        uuid.NewString(),
		Layout:    layout,
		Moves:     []string{},
		Turn:      checkers.White.String(),
		Status:    StatusActive,
		WhiteID:   whiteID,
		WhiteName: strings.TrimSpace(whiteName),
		BlackID:   blackID,
		BlackName: strings.TrimSpace(blackName),
		Room:      strings.TrimSpace(room),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := m.save(ctx, g); err != nil {
		return nil, err
	}
	if err := m.indexParticipants(ctx, g.ID, g.WhiteID, g.BlackID); err != nil {
		return nil, err
	}
	obslog.L().Info("match_create",
		zap.String("game_id", g.ID),
		zap.String("room", g.Room),
		zap.String("white_id", g.WhiteID),
		zap.String("black_id", g.BlackID),
		zap.String("layout", g.Layout),
	)
	return g, nil
}

// GetActiveByUser returns the most recently updated active game of userID.
func (m *Manager) GetActiveByUser(ctx context.Context, userID string) (*Game, error) {
	return m.findActive(ctx, userID, func(*Game) bool { return true })
}

// GetActiveByUserInRoom limits the lookup to games started in room.
func (m *Manager) GetActiveByUserInRoom(ctx context.Context, userID, room string) (*Game, error) {
	room = strings.TrimSpace(room)
	if room == "" {
		return nil, nil
	}
	return m.findActive(ctx, userID, func(g *Game) bool { return g.Room == room })
}

func (m *Manager) findActive(ctx context.Context, userID string, keep func(*Game) bool) (*Game, error) {
	if m == nil || m.rdb == nil {
		return nil, ErrNotInitialized
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, nil
	}
	ids, err := m.rdb.SMembers(ctx, idxUserKey(userID)).Result()
	if err != nil {
		return nil, err
	}
	var list []*Game
	for _, id := range ids {
		g, gerr := m.get(ctx, id)
		if gerr != nil || g == nil || !g.Active() || !keep(g) {
			continue
		}
		list = append(list, g)
	}
	if len(list) == 0 {
		return nil, nil
	}
	sort.Slice(list, func(i, j int) bool { return list[i].UpdatedAt.After(list[j].UpdatedAt) })
	return list[0], nil
}

// Load returns the game by ID, or nil when it expired.
func (m *Manager) Load(ctx context.Context, id string) (*Game, error) {
	if m == nil || m.rdb == nil {
		return nil, ErrNotInitialized
	}
	return m.get(ctx, id)
}

func (m *Manager) activeGame(ctx context.Context, userID, room string) (*Game, error) {
	if strings.TrimSpace(room) == "" {
		return m.GetActiveByUser(ctx, userID)
	}
	return m.GetActiveByUserInRoom(ctx, userID, room)
}

// Play applies one move line for userID. Refusals (wrong turn, illegal move,
// concurrent update, no game) come back as user-facing text with a nil error.
func (m *Manager) Play(ctx context.Context, userID, room, line string) (*Game, string, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, "", fmt.Errorf("invalid user")
	}
	g, err := m.activeGame(ctx, userID, room)
	if err != nil {
		return nil, "", err
	}
	if g == nil {
		return nil, m.text("match.no_game", nil, "No active game."), nil
	}

	gameK := gameKey(g.ID)
	oldLen := len(g.Moves)
	var resultText string

	err = m.rdb.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := loadTx(ctx, tx, gameK)
		if err != nil {
			return err
		}
		if !cur.Active() || len(cur.Moves) != oldLen {
			return redis.TxFailedErr
		}
		player := cur.PlayerColor(userID)
		if player == checkers.NoColor {
			return fmt.Errorf("user not in game")
		}
		if player != cur.TurnColor() {
			return errNotYourTurn
		}

		ann := &announcer{}
		hist := &checkers.MemoryHistory{}
		v, err := rebuild(cur, checkers.WithNotifier(ann), checkers.WithHistory(hist))
		if err != nil {
			return err
		}
		ann.reset()

		res, err := v.Step(line)
		if err != nil {
			resultText = m.illegalText(line, err)
			return errIllegalMove
		}

		s := v.Session()
		cur.Moves = hist.Entries()
		cur.InChain = res.Chained
		cur.UpdatedAt = time.Now()
		if res.Winner != checkers.NoColor {
			cur.Status = StatusFinished
			cur.Winner = cur.PlayerID(res.Winner)
			cur.Outcome = res.Winner.String()
			cur.Method = "capture"
		} else {
			cur.Turn = s.ActiveColor().String()
		}

		if err := m.saveTx(ctx, tx, gameK, cur); err != nil {
			return err
		}
		g = cur
		resultText = m.moveText(cur, player, res, ann)
		return nil
	}, gameK)

	if err != nil {
		switch {
		case errors.Is(err, redis.TxFailedErr):
			return g, m.text("match.concurrent", nil, "Concurrent update, please retry."), nil
		case errors.Is(err, errIllegalMove):
			return g, resultText, nil
		case errors.Is(err, errNotYourTurn):
			return g, m.text("match.not_your_turn", nil, "It is not your turn."), nil
		}
		return nil, "", err
	}

	obslog.L().Info("match_move",
		zap.String("game_id", g.ID),
		zap.String("user_id", strings.TrimSpace(userID)),
		zap.String("move", lastMove(g)),
		zap.String("turn", g.Turn),
		zap.Bool("in_chain", g.InChain),
		zap.String("status", string(g.Status)),
		zap.String("outcome", g.Outcome),
	)
	if g.Status == StatusFinished {
		_ = m.persistIfFinal(ctx, g)
	}
	return g, resultText, nil
}

// Resign ends userID's game in the opponent's favour.
func (m *Manager) Resign(ctx context.Context, userID, room string) (*Game, string, error) {
	g, err := m.activeGame(ctx, userID, room)
	if err != nil {
		return nil, "", err
	}
	if g == nil {
		return nil, m.text("match.no_game", nil, "No active game."), nil
	}
	gameK := gameKey(g.ID)
	err = m.rdb.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := loadTx(ctx, tx, gameK)
		if err != nil {
			return err
		}
		if !cur.Active() {
			return redis.TxFailedErr
		}
		player := cur.PlayerColor(userID)
		if player == checkers.NoColor {
			return fmt.Errorf("user not in game")
		}
		winner := player.Opponent()
		cur.Status = StatusResigned
		cur.Winner = cur.PlayerID(winner)
		cur.Outcome = winner.String()
		cur.Method = "resignation"
		cur.UpdatedAt = time.Now()
		if err := m.saveTx(ctx, tx, gameK, cur); err != nil {
			return err
		}
		g = cur
		return nil
	}, gameK)
	if err != nil {
		if errors.Is(err, redis.TxFailedErr) {
			return nil, "", ErrNotActive
		}
		return nil, "", err
	}
	obslog.L().Info("match_resign",
		zap.String("game_id", g.ID),
		zap.String("resigner", strings.TrimSpace(userID)),
		zap.String("winner", g.Winner),
	)
	_ = m.persistIfFinal(ctx, g)

	loser := g.PlayerColor(userID)
	text := m.text("match.resigned", map[string]any{
		"Name":   g.PlayerName(loser),
		"Winner": g.PlayerName(loser.Opponent()),
	}, "Resigned.")
	return g, text, nil
}

// rebuild replays the stored moves on a fresh session positioned after the last one.
func rebuild(g *Game, opts ...checkers.Option) (*checkers.Validator, error) {
	opts = append(opts, checkers.WithLogger(obslog.L()))
	var v *checkers.Validator
	if g.Layout == LayoutExample {
		v = checkers.NewValidatorFrom(checkers.ExampleLayout(), checkers.White, opts...)
	} else {
		v = checkers.NewValidator(opts...)
	}
	for _, mv := range g.Moves {
		if _, err := v.Step(mv); err != nil {
			return nil, fmt.Errorf("rebuild game %s: %w", g.ID, err)
		}
	}
	return v, nil
}

// announcer keeps the last announcement the session made.
type announcer struct {
	turn checkers.Color
	win  checkers.Color
}

func (a *announcer) Turn(c checkers.Color) { a.turn = c }
func (a *announcer) Win(c checkers.Color)  { a.win = c }
func (a *announcer) reset()                { a.turn, a.win = checkers.NoColor, checkers.NoColor }

func (m *Manager) moveText(g *Game, player checkers.Color, res checkers.TurnResult, ann *announcer) string {
	lines := []string{m.text("match.moved", map[string]any{
		"Name": g.PlayerName(player),
		"Move": res.Notation,
	}, res.Notation)}
	switch {
	case res.Chained:
		to := ""
		if len(res.Notation) == 5 {
			to = res.Notation[3:]
		}
		lines = append(lines, m.text("announce.chain", map[string]any{
			"Name":   g.PlayerName(player),
			"Square": to,
		}, "Keep capturing."))
	case ann.win != checkers.NoColor:
		lines = append(lines, m.text("announce.win", map[string]any{
			"Color": m.colorName(ann.win),
			"Name":  g.PlayerName(ann.win),
		}, "Game over."))
	case ann.turn != checkers.NoColor:
		lines = append(lines, m.text("announce.turn", map[string]any{
			"Color": m.colorName(ann.turn),
		}, ""))
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func (m *Manager) illegalText(line string, err error) string {
	return m.text("match.illegal", map[string]any{
		"Move":   strings.TrimSpace(line),
		"Reason": m.Reason(err),
	}, "Illegal move.")
}

// Reason renders a replay violation for players.
func (m *Manager) Reason(err error) string {
	return ReasonText(m.cat, err)
}

// ReasonText maps a checkers replay error to its catalog message.
func ReasonText(cat *msgcat.Catalog, err error) string {
	key := "reason.illegal"
	switch {
	case errors.Is(err, checkers.ErrMalformedField):
		key = "reason.malformed"
	case errors.Is(err, checkers.ErrWrongTurn):
		key = "reason.wrong_turn"
	case errors.Is(err, checkers.ErrUnknownSeparator):
		key = "reason.separator"
	case errors.Is(err, checkers.ErrChainBroken):
		key = "reason.chain"
	case errors.Is(err, checkers.ErrNotationMismatch):
		key = "reason.mismatch"
	case errors.Is(err, checkers.ErrGameOver):
		key = "reason.game_over"
	case errors.Is(err, checkers.ErrEmptyTranscript):
		key = "reason.empty"
	}
	return cat.Text(key, nil, err.Error())
}

func (m *Manager) colorName(c checkers.Color) string {
	return m.text("color."+c.String(), nil, c.String())
}

func (m *Manager) text(key string, data any, fallback string) string {
	return m.cat.Text(key, data, fallback)
}

func lastMove(g *Game) string {
	if n := len(g.Moves); n > 0 {
		return g.Moves[n-1]
	}
	return ""
}

func loadTx(ctx context.Context, tx *redis.Tx, key string) (*Game, error) {
	raw, err := tx.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrGameNotFound
	}
	if err != nil {
		return nil, err
	}
	var g Game
	if err := json.Unmarshal(raw, &g); err != nil {
		return nil, err
	}
	return &g, nil
}

func (m *Manager) saveTx(ctx context.Context, tx *redis.Tx, key string, g *Game) error {
	raw, err := json.Marshal(g)
	if err != nil {
		return err
	}
	_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, key, raw, m.ttl)
		return nil
	})
	return err
}

func (m *Manager) save(ctx context.Context, g *Game) error {
	raw, err := json.Marshal(g)
	if err != nil {
		return err
	}
	return m.rdb.Set(ctx, gameKey(g.ID), raw, m.ttl).Err()
}

func (m *Manager) get(ctx context.Context, id string) (*Game, error) {
	raw, err := m.rdb.Get(ctx, gameKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var g Game
	if err := json.Unmarshal(raw, &g); err != nil {
		return nil, err
	}
	return &g, nil
}

func (m *Manager) indexParticipants(ctx context.Context, id string, userIDs ...string) error {
	for _, u := range userIDs {
		if strings.TrimSpace(u) == "" {
			continue
		}
		key := idxUserKey(u)
		if err := m.rdb.SAdd(ctx, key, id).Err(); err != nil {
			return err
		}
		// Index lives as long as the newest game.
		_ = m.rdb.Expire(ctx, key, m.ttl).Err()
	}
	return nil
}

func gameKey(id string) string        { return "checkers:game:" + strings.TrimSpace(id) }
func idxUserKey(userID string) string { return "checkers:index:user:" + strings.TrimSpace(userID) }

// persistIfFinal archives a finished game when a repository is attached.
func (m *Manager) persistIfFinal(ctx context.Context, g *Game) error {
	if m == nil || m.repo == nil || g == nil || g.Active() {
		return nil
	}
	if err := m.repo.SaveResult(ctx, g); err != nil {
		obslog.L().Error("match_result_persist_error", zap.String("game_id", g.ID), zap.String("outcome", g.Outcome), zap.Error(err))
		return err
	}
	obslog.L().Info("match_result_persist", zap.String("game_id", g.ID), zap.String("outcome", g.Outcome), zap.String("method", g.Method))
	return nil
}
