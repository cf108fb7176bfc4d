// Package render draws checkers positions as PNG images.
package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"sync"

	"github.com/park285/cheese-checkers-bot/internal/checkers"
)

// DefaultSquarePx is the edge of one board square in pixels.
const DefaultSquarePx = 64

var ErrNothingDrawn = errors.New("render: no board drawn yet")

// Highlight marks the last move with an arrow.
type Highlight struct {
	From checkers.Square
	To   checkers.Square
}

type Options struct {
	SquarePx  int
	Highlight *Highlight
	HUDHeader string
	HUDTurn   string
	HideHints bool
}

// Canvas is a checkers.Renderer that remembers the last board and hint overlay
// it was given and turns them into a PNG on demand.
type Canvas struct {
	mu       sync.Mutex
	snap     checkers.Snapshot
	drawn    bool
	origin   checkers.Square
	hints    checkers.MoveSet
	hasHints bool
	squarePx int
}

func NewCanvas(squarePx int) *Canvas {
	if squarePx <= 0 {
		squarePx = DefaultSquarePx
	}
	return &Canvas{squarePx: squarePx}
}

func (c *Canvas) DrawBoard(snap checkers.Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snap = snap
	c.drawn = true
}

func (c *Canvas) DrawHints(origin checkers.Square, moves checkers.MoveSet) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.origin = origin
	c.hints = moves
	c.hasHints = true
}

// Refresh drops the hint overlay; the board stays.
func (c *Canvas) Refresh() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.origin = checkers.Square{}
	c.hints = nil
	c.hasHints = false
}

// Hints returns the current overlay, if any.
func (c *Canvas) Hints() (checkers.Square, checkers.MoveSet, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.origin, c.hints, c.hasHints
}

// Snapshot returns the last board drawn.
func (c *Canvas) Snapshot() (checkers.Snapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snap, c.drawn
}

// PNG renders the last drawn board with its overlays.
func (c *Canvas) PNG(ctx context.Context, opts Options) ([]byte, error) {
	c.mu.Lock()
	snap, drawn := c.snap, c.drawn
	origin, hints, hasHints := c.origin, c.hints, c.hasHints
	if opts.SquarePx <= 0 {
		opts.SquarePx = c.squarePx
	}
	c.mu.Unlock()

	if !drawn {
		return nil, ErrNothingDrawn
	}
	var overlay *hintOverlay
	if hasHints && !opts.HideHints {
		overlay = &hintOverlay{origin: origin, moves: hints}
	}
	return renderPNG(ctx, snap, overlay, opts)
}

type hintOverlay struct {
	origin checkers.Square
	moves  checkers.MoveSet
}

func renderPNG(ctx context.Context, snap checkers.Snapshot, hints *hintOverlay, opts Options) ([]byte, error) {
	size := snap.Size
	if size <= 0 {
		size = checkers.DefaultSize
	}
	squarePx := opts.SquarePx
	if squarePx <= 0 {
		squarePx = DefaultSquarePx
	}

	const (
		topMargin     = 72
		titleHeight   = 30
		panelRadius   = 8
		panelPaddingX = 16
		shadowOffsetY = 4
	)
	sideMargin := squarePx / 2
	bottomMargin := squarePx / 2
	boardPx := squarePx * size

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	img := image.NewRGBA(image.Rect(0, 0, boardPx+sideMargin*2, boardPx+topMargin+bottomMargin))
	fillBackground(img)

	g := geometry{size: size, squarePx: squarePx, origin: image.Point{X: sideMargin, Y: topMargin}}
	boardRect := image.Rect(g.origin.X, g.origin.Y, g.origin.X+boardPx, g.origin.Y+boardPx)

	drawHUD(img, opts, snap.Counts, boardRect, hudLayout{
		panelHeight: titleHeight,
		radius:      panelRadius,
		paddingX:    panelPaddingX,
		gapToBoard:  (topMargin - titleHeight) / 2,
		shadowY:     shadowOffsetY,
	})
	drawBoardShadow(img, boardRect)
	drawSquares(img, g)
	if hints != nil {
		drawHints(img, g, hints.origin, hints.moves)
	}
	if err := drawPieces(img, g, snap); err != nil {
		return nil, err
	}
	if opts.Highlight != nil {
		drawArrow(img, g, opts.Highlight.From, opts.Highlight.To, lastMoveArrow)
	}
	drawCoordinates(img, g, sideMargin)

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	var pngBuf bytes.Buffer
	if err := png.Encode(&pngBuf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return pngBuf.Bytes(), nil
}
