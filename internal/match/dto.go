package match

import (
	"context"
	"strings"

	"github.com/park285/cheese-checkers-bot/internal/checkers"
	"github.com/park285/cheese-checkers-bot/internal/render"
	"github.com/park285/cheese-checkers-bot/pkg/checkersdto"
)

// ToDTO rebuilds the position of g and renders it for presenters. During a
// chain capture the overlay shows the squares the capturing piece can reach.
func (m *Manager) ToDTO(ctx context.Context, g *Game) (*checkersdto.BoardState, error) {
	if m == nil || g == nil {
		return nil, nil
	}
	canvas := render.NewCanvas(m.squarePx)
	v, err := rebuild(g, checkers.WithRenderer(canvas))
	if err != nil {
		return nil, err
	}
	return m.renderState(ctx, g, v.Session(), canvas)
}

// Hint shows the legal destinations of the piece on field in userID's game.
func (m *Manager) Hint(ctx context.Context, userID, room, field string) (*checkersdto.BoardState, string, error) {
	g, err := m.activeGame(ctx, userID, room)
	if err != nil {
		return nil, "", err
	}
	if g == nil {
		return nil, m.text("match.no_game", nil, "No active game."), nil
	}
	sq, err := checkers.ParseField(field, checkers.DefaultSize)
	if err != nil {
		return nil, m.illegalText(field, err), nil
	}

	canvas := render.NewCanvas(m.squarePx)
	v, err := rebuild(g, checkers.WithRenderer(canvas))
	if err != nil {
		return nil, "", err
	}
	s := v.Session()

	var text string
	switch cur, _ := s.Selected(); {
	case s.InChain() && cur != sq:
		text = m.text("announce.chain", map[string]any{
			"Name":   g.PlayerName(s.ActiveColor()),
			"Square": cur.Field(),
		}, "Keep capturing.")
	case s.InChain() || s.Select(sq):
		text = m.text("match.hint_list", map[string]any{
			"Square": sq.Field(),
			"Moves":  formatMoves(sq, s.Moves()),
		}, formatMoves(sq, s.Moves()))
	default:
		text = m.text("match.hint_none", map[string]any{"Square": sq.Field()}, "No moves.")
	}

	state, err := m.renderState(ctx, g, s, canvas)
	if err != nil {
		return nil, "", err
	}
	return state, text, nil
}

func (m *Manager) renderState(ctx context.Context, g *Game, s *checkers.Session, canvas *render.Canvas) (*checkersdto.BoardState, error) {
	png, err := canvas.PNG(ctx, render.Options{
		HUDHeader: m.text("hud.header", map[string]any{"White": g.WhiteName, "Black": g.BlackName}, g.WhiteName+" vs "+g.BlackName),
		HUDTurn:   m.hudTurn(g, s),
		Highlight: lastHighlight(g),
	})
	if err != nil {
		return nil, err
	}
	counts := s.Counts()
	return &checkersdto.BoardState{
		GameID:     g.ID,
		White:      g.WhiteName,
		Black:      g.BlackName,
		Moves:      append([]string(nil), g.Moves...),
		MoveCount:  len(g.Moves),
		Turn:       g.Turn,
		Status:     string(g.Status),
		Winner:     g.Outcome,
		InChain:    s.InChain(),
		WhiteCount: counts.White,
		BlackCount: counts.Black,
		BoardImage: png,
	}, nil
}

func (m *Manager) hudTurn(g *Game, s *checkers.Session) string {
	if !g.Active() {
		winner, _ := checkers.ParseColor(g.Outcome)
		return m.text("hud.finished", map[string]any{"Color": m.colorName(winner)}, "Game over")
	}
	return m.text("hud.turn", map[string]any{
		"Color": m.colorName(s.ActiveColor()),
		"Move":  len(g.Moves) + 1,
	}, s.ActiveColor().String())
}

// lastHighlight parses the last stored notation into an arrow.
func lastHighlight(g *Game) *render.Highlight {
	last := lastMove(g)
	if len(last) != 5 {
		return nil
	}
	from, err := checkers.ParseField(last[:2], checkers.DefaultSize)
	if err != nil {
		return nil
	}
	to, err := checkers.ParseField(last[3:], checkers.DefaultSize)
	if err != nil {
		return nil
	}
	return &render.Highlight{From: from, To: to}
}

func formatMoves(from checkers.Square, moves checkers.MoveSet) string {
	parts := make([]string, 0, len(moves))
	for _, mv := range moves.Sorted() {
		parts = append(parts, checkers.FormatNotation(from, mv.To, mv.Capture))
	}
	return strings.Join(parts, ", ")
}
