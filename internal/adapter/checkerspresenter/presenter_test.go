package checkerspresenter

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/park285/cheese-checkers-bot/internal/irisfast"
	"github.com/park285/cheese-checkers-bot/internal/lobby"
	"github.com/park285/cheese-checkers-bot/internal/match"
	"github.com/park285/cheese-checkers-bot/internal/msgcat"
	"github.com/park285/cheese-checkers-bot/internal/util"
	"github.com/park285/cheese-checkers-bot/pkg/checkersdto"
)

type sent struct {
	kind, room, data string
}

type recordingEgress struct {
	sent []sent
	err  error
}

func (r *recordingEgress) SendText(_ context.Context, room, message string) error {
	r.sent = append(r.sent, sent{"text", room, message})
	return r.err
}

func (r *recordingEgress) SendImage(_ context.Context, room, imageBase64 string) error {
	r.sent = append(r.sent, sent{"image", room, imageBase64})
	return r.err
}

type staticPrefix string

func (p staticPrefix) Prefix() string { return string(p) }

func newFormatter(t *testing.T) *Formatter {
	t.Helper()
	cat, err := msgcat.New("")
	if err != nil {
		t.Fatalf("msgcat.New: %v", err)
	}
	return NewFormatter(staticPrefix("!"), cat)
}

func TestBoardSendsTextThenImage(t *testing.T) {
	out := &recordingEgress{}
	p := NewPresenter(out)
	state := &checkersdto.BoardState{BoardImage: []byte("png")}

	if err := p.Board(context.Background(), "r1", "hello", state); err != nil {
		t.Fatalf("Board: %v", err)
	}
	if len(out.sent) != 2 || out.sent[0].kind != "text" || out.sent[1].kind != "image" {
		t.Fatalf("unexpected sends %+v", out.sent)
	}
	if out.sent[1].data != base64.StdEncoding.EncodeToString([]byte("png")) {
		t.Fatalf("image not base64 encoded: %q", out.sent[1].data)
	}

	out.sent = nil
	if err := p.Board(context.Background(), "r1", "  ", &checkersdto.BoardState{}); err != nil {
		t.Fatalf("Board: %v", err)
	}
	if len(out.sent) != 0 {
		t.Fatalf("blank text and empty image must be skipped: %+v", out.sent)
	}
}

func TestBoardStopsOnTextError(t *testing.T) {
	out := &recordingEgress{err: errors.New("down")}
	err := NewPresenter(out).Board(context.Background(), "r", "x", &checkersdto.BoardState{BoardImage: []byte("png")})
	if err == nil || len(out.sent) != 1 {
		t.Fatalf("expected a single failed send, got %v %+v", err, out.sent)
	}
}

func TestNilPresenterIsSilent(t *testing.T) {
	var p *Presenter
	if err := p.Replay(context.Background(), "r", "x", &checkersdto.ReplaySummary{BoardImage: []byte("x")}); err != nil {
		t.Fatalf("nil presenter: %v", err)
	}
}

func TestFormatterStatus(t *testing.T) {
	f := newFormatter(t)
	state := &checkersdto.BoardState{
		White:      "alice",
		Black:      "bob",
		Moves:      []string{"C3-D4", "F6-E5", "D4:F6", "G7:E5", "A3-B4", "E5-D4", "B4-C5"},
		MoveCount:  7,
		Turn:       "black",
		Status:     "ACTIVE",
		WhiteCount: 11,
		BlackCount: 11,
	}
	got := f.Status(state)
	for _, want := range []string{
		"Checkers: alice (White) vs bob (Black)",
		"Moves played: 7",
		"Recent: 2.F6-E5 3.D4:F6",
		"Pieces: White 11 / Black 11",
		"Black to move.",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("status missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "1.C3-D4") {
		t.Errorf("recent moves not limited:\n%s", got)
	}

	state.Status, state.Winner = "FINISHED", "white"
	if got := f.Status(state); !strings.Contains(got, "Finished: White won.") {
		t.Errorf("finished status:\n%s", got)
	}
	if got := f.Status(nil); got != "You have no active checkers game in this room." {
		t.Errorf("nil status = %q", got)
	}
}

func TestFormatterHelpAndReplay(t *testing.T) {
	f := newFormatter(t)
	if help := f.Help(); !strings.Contains(help, "!checkers hint C3") {
		t.Fatalf("help missing prefix:\n%s", help)
	}
	sum := &checkersdto.ReplaySummary{Applied: 1, FailedLine: 2, FailedMove: "D4-E5", Reason: "that square does not hold one of your pieces"}
	if got := f.Replay(sum); got != "Line 2 (D4-E5): that square does not hold one of your pieces" {
		t.Fatalf("Replay = %q", got)
	}
}

func TestMetaFromMessage(t *testing.T) {
	name := "Alice"
	meta := MetaFromMessage(&irisfast.Message{Room: " r1 ", Sender: &name, JSON: &irisfast.MessageJSON{UserID: "42"}})
	if meta.Room != "r1" || meta.Sender != "42" || meta.Name != "Alice" {
		t.Fatalf("unexpected meta %+v", meta)
	}
	meta = MetaFromMessage(&irisfast.Message{Room: "r", JSON: &irisfast.MessageJSON{UserID: "42"}})
	if meta.Name != "42" {
		t.Fatalf("name fallback = %q", meta.Name)
	}
	if SanitizeUserArg(" @bob ") != "bob" {
		t.Fatalf("SanitizeUserArg")
	}
}

func TestFormatterMovesFoldsLongRecords(t *testing.T) {
	f := newFormatter(t)
	g := &match.Game{WhiteName: "alice", BlackName: "bob", Moves: []string{"C3-D4"}}
	short := f.Moves(g)
	if strings.Contains(short, util.KakaoZeroWidthSpace) || !strings.HasPrefix(short, "Game record\n[Event") {
		t.Fatalf("short record folded or malformed:\n%s", short)
	}
	if !strings.HasSuffix(short, "C3-D4") {
		t.Fatalf("record misses the move:\n%s", short)
	}

	g.Moves = []string{"C3-D4", "F6-E5", "D4:F6", "G7:E5", "B2-C3", "H6-G5", "A3-B4"}
	long := f.Moves(g)
	if !strings.HasPrefix(long, "Game record"+util.KakaoZeroWidthSpace) {
		t.Fatalf("long record not folded")
	}
	if f.Moves(nil) != "You have no active checkers game in this room." {
		t.Fatalf("nil game")
	}
}

func TestFormatterLobby(t *testing.T) {
	f := newFormatter(t)
	ch := &lobby.Challenge{Code: "CK-AB2CD", CreatorName: "alice"}
	if got := f.Opened(ch); got != "alice is looking for an opponent. Reply !checkers join CK-AB2CD to play." {
		t.Fatalf("Opened = %q", got)
	}
	if got := f.Lobby([]*lobby.Challenge{ch}); got != "Open challenges:\n- CK-AB2CD by alice" {
		t.Fatalf("Lobby = %q", got)
	}
	if got := f.Lobby(nil); got != "No open challenges in this room." {
		t.Fatalf("empty Lobby = %q", got)
	}
	if got, ok := f.LobbyError(fmt.Errorf("join: %w", lobby.ErrTaken)); !ok || got != "Someone else already accepted that challenge." {
		t.Fatalf("LobbyError = %q %v", got, ok)
	}
	if _, ok := f.LobbyError(errors.New("redis down")); ok {
		t.Fatalf("unexpected errors must not be mapped")
	}
}
