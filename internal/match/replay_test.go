package match

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/park285/cheese-checkers-bot/internal/msgcat"
)

func testCatalog(t *testing.T) *msgcat.Catalog {
	t.Helper()
	cat, err := msgcat.New("")
	if err != nil {
		t.Fatalf("msgcat.New: %v", err)
	}
	return cat
}

func TestReplayValidTranscript(t *testing.T) {
	cat := testCatalog(t)
	sum, err := Replay(context.Background(), "C3-D4\n\nF6-E5\n", cat, 24)
	if err != nil {
		t.Fatalf("Replay: %v", err)
	}
	if sum.Failed() || sum.Applied != 2 || sum.Next != "white" || sum.Winner != "" {
		t.Fatalf("unexpected summary %+v", sum)
	}
	if !bytes.HasPrefix(sum.BoardImage, []byte("\x89PNG")) {
		t.Fatalf("expected a PNG board image")
	}
	if got := ReplayText(cat, sum); got != "Transcript valid: 2 moves. White to move." {
		t.Fatalf("ReplayText = %q", got)
	}
}

func TestReplayReportsFirstViolation(t *testing.T) {
	cat := testCatalog(t)
	sum, err := Replay(context.Background(), "C3-D4\nD4-E5\nF6-E5\n", cat, 0)
	if err != nil {
		t.Fatalf("Replay: %v", err)
	}
	if !sum.Failed() || sum.FailedLine != 2 || sum.FailedMove != "D4-E5" || sum.Applied != 1 {
		t.Fatalf("unexpected summary %+v", sum)
	}
	if sum.BoardImage != nil {
		t.Fatalf("image must be skipped when squarePx is 0")
	}
	got := ReplayText(cat, sum)
	if !strings.HasPrefix(got, "Line 2 (D4-E5): ") {
		t.Fatalf("ReplayText = %q", got)
	}
}

func TestReplayEmptyTranscript(t *testing.T) {
	cat := testCatalog(t)
	sum, err := Replay(context.Background(), "[Event \"x\"]\n\n  \n", cat, 0)
	if err != nil {
		t.Fatalf("Replay: %v", err)
	}
	if !sum.Failed() || sum.FailedLine != 0 || sum.Reason != "the transcript is empty" {
		t.Fatalf("unexpected summary %+v", sum)
	}
}

func TestReplayHonoursSetupTag(t *testing.T) {
	cat := testCatalog(t)
	text := "[White \"alice\"]\n[Black \"bob\"]\n[Setup \"example\"]\n\nF4-E5\nH6-G5\nH4:F6\nF6:D8\nD8:B6\nB6:D4\n"
	sum, err := Replay(context.Background(), text, cat, 24)
	if err != nil {
		t.Fatalf("Replay: %v", err)
	}
	if sum.Failed() || sum.Applied != 6 || sum.Next != "black" {
		t.Fatalf("unexpected summary %+v", sum)
	}

	// without the tag the first move is not even a white piece
	sum, err = Replay(context.Background(), "F4-E5\n", cat, 0)
	if err != nil {
		t.Fatalf("Replay: %v", err)
	}
	if !sum.Failed() || sum.FailedLine != 1 {
		t.Fatalf("expected failure on line 1, got %+v", sum)
	}
}
