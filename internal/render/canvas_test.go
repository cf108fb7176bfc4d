package render

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"testing"

	"github.com/park285/cheese-checkers-bot/internal/checkers"
)

func decodePNG(t *testing.T, data []byte) image.Image {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("png.Decode: %v", err)
	}
	return img
}

func TestCanvasPNGBeforeDraw(t *testing.T) {
	if _, err := NewCanvas(0).PNG(context.Background(), Options{}); !errors.Is(err, ErrNothingDrawn) {
		t.Fatalf("want ErrNothingDrawn, got %v", err)
	}
}

func TestCanvasRendersSessionBoard(t *testing.T) {
	c := NewCanvas(32)
	s := checkers.NewSession(checkers.WithRenderer(c))
	s.StartGame()

	data, err := c.PNG(context.Background(), Options{HUDHeader: "alice vs bob", HUDTurn: "white to move"})
	if err != nil {
		t.Fatalf("PNG: %v", err)
	}
	img := decodePNG(t, data)
	b := img.Bounds()
	if b.Dx() != 32*8+32 || b.Dy() != 32*8+72+16 {
		t.Fatalf("unexpected size %v", b)
	}
	snap, ok := c.Snapshot()
	if !ok || snap.Counts.White != 12 || snap.Counts.Black != 12 {
		t.Fatalf("canvas snapshot %+v", snap.Counts)
	}
}

func TestCanvasHintOverlay(t *testing.T) {
	c := NewCanvas(32)
	s := checkers.NewSession(checkers.WithRenderer(c))
	s.StartGame()
	origin := checkers.Square{Row: 2, Col: 2}
	if !s.Select(origin) {
		t.Fatalf("select C3 refused")
	}
	got, moves, ok := c.Hints()
	if !ok || got != origin || len(moves) != 2 {
		t.Fatalf("hints %v %v %v", got, moves, ok)
	}

	ctx := context.Background()
	withHints, err := c.PNG(ctx, Options{})
	if err != nil {
		t.Fatalf("PNG: %v", err)
	}
	plain, err := c.PNG(ctx, Options{HideHints: true})
	if err != nil {
		t.Fatalf("PNG: %v", err)
	}
	g := geometry{size: 8, squarePx: 32, origin: image.Point{X: 16, Y: 72}}
	corner := g.rect(origin).Min.Add(image.Pt(1, 1))
	a := decodePNG(t, withHints).At(corner.X, corner.Y)
	b := decodePNG(t, plain).At(corner.X, corner.Y)
	if a == b {
		t.Fatalf("origin square not tinted: %v", a)
	}

	s.Deselect(origin)
	if _, _, ok := c.Hints(); ok {
		t.Fatalf("refresh should drop hints")
	}
}

func TestCanvasHonoursContext(t *testing.T) {
	c := NewCanvas(16)
	c.DrawBoard(checkers.NewBoard(8).Snapshot())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := c.PNG(ctx, Options{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("want context.Canceled, got %v", err)
	}
}

func TestPieceImageCached(t *testing.T) {
	for _, p := range []checkers.Piece{checkers.Man(checkers.White), checkers.KingOf(checkers.White), checkers.Man(checkers.Black), checkers.KingOf(checkers.Black)} {
		a, err := renderPieceImage(p, 24)
		if err != nil {
			t.Fatalf("%v: %v", p, err)
		}
		b, _ := renderPieceImage(p, 24)
		if a != b {
			t.Fatalf("%v: cache miss on second render", p)
		}
		if a.Bounds().Dx() != 24 {
			t.Fatalf("%v: size %v", p, a.Bounds())
		}
	}
}
