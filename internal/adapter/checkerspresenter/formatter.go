package checkerspresenter

import (
	"errors"
	"fmt"
	"strings"

	"github.com/park285/cheese-checkers-bot/internal/checkers"
	"github.com/park285/cheese-checkers-bot/internal/lobby"
	"github.com/park285/cheese-checkers-bot/internal/match"
	"github.com/park285/cheese-checkers-bot/internal/msgcat"
	"github.com/park285/cheese-checkers-bot/internal/util"
	"github.com/park285/cheese-checkers-bot/pkg/checkersdto"
)

const (
	recentMovesLimit = 6
	foldAfterLines   = 10
)

// PrefixProvider exposes the command prefix replies should mention.
type PrefixProvider interface {
	Prefix() string
}

// Formatter renders checkers DTOs into chat-friendly text blocks.
type Formatter struct {
	prefixProvider PrefixProvider
	cat            *msgcat.Catalog
}

func NewFormatter(provider PrefixProvider, cat *msgcat.Catalog) *Formatter {
	return &Formatter{prefixProvider: provider, cat: cat}
}

func (f *Formatter) Prefix() string {
	if f == nil || f.prefixProvider == nil {
		return ""
	}
	return strings.TrimSpace(f.prefixProvider.Prefix())
}

func (f *Formatter) Help() string {
	return f.text("help.usage", map[string]any{"Prefix": f.Prefix()}, f.Prefix()+"checkers help")
}

func (f *Formatter) Created(state *checkersdto.BoardState) string {
	if state == nil {
		return ""
	}
	return f.text("match.created", map[string]any{"White": state.White, "Black": state.Black}, state.White+" vs "+state.Black)
}

func (f *Formatter) Status(state *checkersdto.BoardState) string {
	if state == nil {
		return f.text("match.no_game", nil, "No active game.")
	}

	lines := []string{
		f.text("status.header", map[string]any{"White": state.White, "Black": state.Black}, state.White+" vs "+state.Black),
		f.text("status.moves", map[string]any{"Count": state.MoveCount}, fmt.Sprintf("%d", state.MoveCount)),
	}
	if recent := formatRecentMoves(state.Moves, recentMovesLimit); recent != "" {
		lines = append(lines, f.text("status.recent", map[string]any{"Moves": recent}, recent))
	}
	lines = append(lines, f.text("status.pieces", map[string]any{"White": state.WhiteCount, "Black": state.BlackCount}, ""))

	switch {
	case state.Status != string(match.StatusActive):
		lines = append(lines, f.text("status.finished", map[string]any{"Color": f.colorName(state.Winner)}, state.Winner))
	case state.InChain:
		lines = append(lines, f.text("status.chain", map[string]any{"Color": f.colorName(state.Turn)}, state.Turn))
	default:
		lines = append(lines, f.text("status.turn", map[string]any{"Color": f.colorName(state.Turn)}, state.Turn))
	}
	return joinNonEmpty(lines)
}

// Moves shows the full record of g, folded behind "see more" when long.
func (f *Formatter) Moves(g *match.Game) string {
	if g == nil {
		return f.text("match.no_game", nil, "No active game.")
	}
	header := f.text("moves.header", nil, "Game record")
	return util.FoldLongReply(header+"\n"+strings.TrimSpace(match.BuildTranscript(g)), header, foldAfterLines)
}

func (f *Formatter) Replay(sum *checkersdto.ReplaySummary) string {
	return match.ReplayText(f.cat, sum)
}

func (f *Formatter) Opened(ch *lobby.Challenge) string {
	return f.text("lobby.opened", map[string]any{
		"Name":   ch.CreatorName,
		"Prefix": f.Prefix(),
		"Code":   ch.Code,
	}, ch.Code)
}

func (f *Formatter) Lobby(list []*lobby.Challenge) string {
	if len(list) == 0 {
		return f.text("lobby.empty", nil, "No open challenges.")
	}
	lines := []string{f.text("lobby.list", nil, "Open challenges:")}
	for _, ch := range list {
		lines = append(lines, "- "+f.text("lobby.entry", map[string]any{"Code": ch.Code, "Name": ch.CreatorName}, ch.Code))
	}
	return util.FoldLongReply(strings.Join(lines, "\n"), lines[0], foldAfterLines)
}

func (f *Formatter) Cancelled(ch *lobby.Challenge) string {
	return f.text("lobby.cancelled", map[string]any{"Code": ch.Code}, ch.Code)
}

// LobbyError maps lobby refusals to replies; ok is false for unexpected errors.
func (f *Formatter) LobbyError(err error) (string, bool) {
	key := ""
	switch {
	case errors.Is(err, lobby.ErrChallengeGone), errors.Is(err, lobby.ErrInvalidArgs):
		key = "lobby.gone"
	case errors.Is(err, lobby.ErrTaken):
		key = "lobby.taken"
	case errors.Is(err, lobby.ErrOwnChallenge):
		key = "lobby.own"
	case errors.Is(err, lobby.ErrPlayerBusy), errors.Is(err, match.ErrAlreadyPlaying):
		key = "lobby.busy"
	case errors.Is(err, lobby.ErrCreatorHasOpen):
		key = "lobby.has_open"
	case errors.Is(err, lobby.ErrNoOpenChallenge):
		key = "lobby.none"
	default:
		return "", false
	}
	return f.text(key, nil, err.Error()), true
}

func (f *Formatter) NoUser() string {
	return f.text("bot.no_user", nil, "Could not identify the sender.")
}

func (f *Formatter) BadTarget() string {
	return f.text("bot.bad_target", map[string]any{"Prefix": f.Prefix()}, "Mention the opponent.")
}

func (f *Formatter) AlreadyPlaying(name string) string {
	return f.text("match.already_playing", map[string]any{"Name": name}, "Already playing.")
}

func (f *Formatter) Failed() string {
	return f.text("bot.failed", nil, "Something went wrong.")
}

func (f *Formatter) ReplayUsage() string {
	return f.text("bot.replay_usage", map[string]any{"Prefix": f.Prefix()}, "Put one move per line.")
}

func (f *Formatter) colorName(s string) string {
	c, ok := checkers.ParseColor(s)
	if !ok {
		return s
	}
	return f.text("color."+c.String(), nil, c.String())
}

func (f *Formatter) text(key string, data any, fallback string) string {
	if f == nil {
		return fallback
	}
	return f.cat.Text(key, data, fallback)
}

// formatRecentMoves numbers the last limit moves by their ply.
func formatRecentMoves(moves []string, limit int) string {
	if len(moves) == 0 {
		return ""
	}
	start := 0
	if len(moves) > limit {
		start = len(moves) - limit
	}
	parts := make([]string, 0, len(moves)-start)
	for i := start; i < len(moves); i++ {
		parts = append(parts, fmt.Sprintf("%d.%s", i+1, moves[i]))
	}
	return strings.Join(parts, " ")
}

func joinNonEmpty(lines []string) string {
	out := lines[:0]
	for _, l := range lines {
		if strings.TrimSpace(l) != "" {
			out = append(out, l)
		}
	}
	return strings.Join(out, "\n")
}
