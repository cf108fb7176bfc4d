package checkerspresenter

import (
	"context"
	"encoding/base64"
	"strings"

	"github.com/park285/cheese-checkers-bot/internal/irisfast"
	"github.com/park285/cheese-checkers-bot/pkg/checkersdto"
)

// Presenter delivers replies and board images without coupling to the command layer.
type Presenter struct {
	out irisfast.Egress
}

func NewPresenter(out irisfast.Egress) *Presenter {
	return &Presenter{out: out}
}

// Text sends message to room; blank messages are dropped.
func (p *Presenter) Text(ctx context.Context, room, message string) error {
	if p == nil || p.out == nil || strings.TrimSpace(message) == "" {
		return nil
	}
	return p.out.SendText(ctx, room, message)
}

// Board sends the optional message first, then the board image.
func (p *Presenter) Board(ctx context.Context, room, message string, state *checkersdto.BoardState) error {
	if err := p.Text(ctx, room, message); err != nil {
		return err
	}
	if state == nil {
		return nil
	}
	return p.image(ctx, room, state.BoardImage)
}

// Replay sends the replay verdict and, when rendered, the final position.
func (p *Presenter) Replay(ctx context.Context, room, message string, sum *checkersdto.ReplaySummary) error {
	if err := p.Text(ctx, room, message); err != nil {
		return err
	}
	if sum == nil {
		return nil
	}
	return p.image(ctx, room, sum.BoardImage)
}

func (p *Presenter) image(ctx context.Context, room string, png []byte) error {
	if p == nil || p.out == nil || len(png) == 0 {
		return nil
	}
	return p.out.SendImage(ctx, room, base64.StdEncoding.EncodeToString(png))
}
