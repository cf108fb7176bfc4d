package match

import (
	"context"
	"errors"
	"strings"

	"github.com/park285/cheese-checkers-bot/internal/checkers"
	"github.com/park285/cheese-checkers-bot/internal/msgcat"
	"github.com/park285/cheese-checkers-bot/internal/obslog"
	"github.com/park285/cheese-checkers-bot/internal/render"
	"github.com/park285/cheese-checkers-bot/pkg/checkersdto"
	"go.uber.org/zap"
)

// Replay validates a transcript outside of any stored game. Leading tag lines
// are honoured for the setup ([Setup "example"]). A board image of the last
// valid position is attached when squarePx is positive.
func Replay(ctx context.Context, text string, cat *msgcat.Catalog, squarePx int) (*checkersdto.ReplaySummary, error) {
	tags, lines := checkers.SplitTranscript(text)

	var canvas *render.Canvas
	opts := []checkers.Option{checkers.WithLogger(obslog.L())}
	if squarePx > 0 {
		canvas = render.NewCanvas(squarePx)
		opts = append(opts, checkers.WithRenderer(canvas))
	}

	var v *checkers.Validator
	if strings.EqualFold(tags["Setup"], LayoutExample) {
		v = checkers.NewValidatorFrom(checkers.ExampleLayout(), checkers.White, opts...)
	} else {
		v = checkers.NewValidator(opts...)
	}

	res, err := v.Replay(lines)
	sum := &checkersdto.ReplaySummary{
		Applied: res.Applied,
		Moves:   res.Notations,
	}
	if res.Winner != checkers.NoColor {
		sum.Winner = res.Winner.String()
	} else {
		sum.Next = res.Next.String()
	}

	if err != nil {
		var rerr *checkers.ReplayError
		if !errors.As(err, &rerr) {
			return nil, err
		}
		sum.FailedLine = rerr.Line
		sum.FailedMove = rerr.Notation
		sum.Reason = ReasonText(cat, err)
		obslog.L().Debug("replay_rejected",
			zap.Int("line", rerr.Line),
			zap.String("move", rerr.Notation),
			zap.Error(rerr.Err),
		)
	}

	if canvas != nil {
		var hl *render.Highlight
		if n := len(res.Notations); n > 0 {
			hl = lastHighlight(&Game{Moves: res.Notations[n-1:]})
		}
		header := "Replay"
		if tags["White"] != "" || tags["Black"] != "" {
			header = tags["White"] + " vs " + tags["Black"]
		}
		png, perr := canvas.PNG(ctx, render.Options{
			HUDHeader: header,
			HUDTurn:   replayState(cat, sum),
			Highlight: hl,
			HideHints: true,
		})
		if perr != nil {
			return nil, perr
		}
		sum.BoardImage = png
	}
	return sum, nil
}

// Replay validates text with the manager's catalog and board size.
func (m *Manager) Replay(ctx context.Context, text string) (*checkersdto.ReplaySummary, error) {
	return Replay(ctx, text, m.cat, m.squarePx)
}

// ReplayText renders the one-line outcome of a replay.
func ReplayText(cat *msgcat.Catalog, sum *checkersdto.ReplaySummary) string {
	if sum == nil {
		return ""
	}
	if sum.Failed() {
		return cat.Text("replay.failed", map[string]any{
			"Line":   sum.FailedLine,
			"Move":   sum.FailedMove,
			"Reason": sum.Reason,
		}, sum.Reason)
	}
	return cat.Text("replay.ok", map[string]any{
		"Applied": sum.Applied,
		"State":   replayState(cat, sum),
	}, "OK")
}

func replayState(cat *msgcat.Catalog, sum *checkersdto.ReplaySummary) string {
	if sum.Winner != "" {
		c, _ := checkers.ParseColor(sum.Winner)
		return cat.Text("replay.state_win", map[string]any{"Color": cat.Text("color."+c.String(), nil, sum.Winner)}, sum.Winner)
	}
	c, _ := checkers.ParseColor(sum.Next)
	return cat.Text("replay.state_turn", map[string]any{"Color": cat.Text("color."+c.String(), nil, sum.Next)}, sum.Next)
}
