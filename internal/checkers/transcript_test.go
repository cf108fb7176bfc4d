package checkers

import (
	"errors"
	"strings"
	"testing"
)

func replayErr(t *testing.T, err error) *ReplayError {
	t.Helper()
	var re *ReplayError
	if !errors.As(err, &re) {
		t.Fatalf("want *ReplayError, got %T %v", err, err)
	}
	return re
}

func TestReplayValidGame(t *testing.T) {
	v := NewValidator()
	res, err := v.ReplayText("C3-D4\nF6-E5\nD4:F6\nG7:E5\n")
	if err != nil {
		t.Fatalf("Replay: %v", err)
	}
	if res.Applied != 4 || res.Next != White || res.Winner != NoColor {
		t.Fatalf("result %+v", res)
	}
	if strings.Join(res.Notations, " ") != "C3-D4 F6-E5 D4:F6 G7:E5" {
		t.Fatalf("notations %v", res.Notations)
	}
	if c := v.Session().Counts(); c.White != 11 || c.Black != 11 {
		t.Fatalf("counts %+v", c)
	}
}

func TestReplayRejectsMalformedOriginWithoutMutation(t *testing.T) {
	v := NewValidator()
	before := v.Session().Snapshot()
	_, err := v.Replay([]string{"Z9-A1"})
	re := replayErr(t, err)
	if re.Line != 1 || !errors.Is(err, ErrMalformedField) {
		t.Fatalf("got line %d err %v", re.Line, err)
	}
	after := v.Session().Snapshot()
	if after.Counts != before.Counts || len(after.Pieces) != len(before.Pieces) {
		t.Fatalf("board mutated")
	}
	for sq, p := range before.Pieces {
		if q, ok := after.Piece(sq); !ok || q != p {
			t.Fatalf("square %v changed", sq)
		}
	}
	if v.Session().ActiveColor() != White {
		t.Fatalf("turn changed")
	}
}

func TestReplayViolations(t *testing.T) {
	cases := []struct {
		name string
		text string
		line int
		want error
	}{
		{"wrong color", "F6-E5", 1, ErrWrongTurn},
		{"empty origin", "D4-E5", 1, ErrWrongTurn},
		{"separator", "C3xD4", 1, ErrUnknownSeparator},
		{"bad destination", "C3-Z4", 1, ErrMalformedField},
		{"too long", "C3-D4x", 1, ErrMalformedField},
		{"not diagonal", "C3-C4", 1, ErrIllegalMove},
		{"slide when capture is due", "C3-D4\nF6-E5\nD4-C5", 3, ErrIllegalMove},
		{"capture notation on a slide", "C3:D4", 1, ErrNotationMismatch},
		{"blank lines are not counted", "\nC3-D4\n\n   \nF6-F5\n", 2, ErrIllegalMove},
		{"lower case ok then wrong turn", "c3-d4\nc5-d6", 2, ErrWrongTurn},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewValidator().ReplayText(tc.text)
			re := replayErr(t, err)
			if re.Line != tc.line || !errors.Is(err, tc.want) {
				t.Fatalf("got line %d err %v; want line %d %v", re.Line, err, tc.line, tc.want)
			}
		})
	}
}

func TestReplayNotationMismatchRollsBack(t *testing.T) {
	v := NewValidator()
	if _, err := v.Replay([]string{"C3:D4"}); !errors.Is(err, ErrNotationMismatch) {
		t.Fatalf("want mismatch, got %v", err)
	}
	s := v.Session()
	if _, ok := s.PieceAt(sq("C3")); !ok {
		t.Fatalf("C3 not restored")
	}
	if _, ok := s.PieceAt(sq("D4")); ok {
		t.Fatalf("D4 not emptied")
	}
	if _, ok := s.Selected(); ok {
		t.Fatalf("selection left behind")
	}
	if _, err := v.Step("C3-D4"); err != nil {
		t.Fatalf("validator unusable after mismatch: %v", err)
	}
}

func TestReplayChain(t *testing.T) {
	layout := []Placement{
		at(2, 2, Man(White)),
		at(1, 5, Man(White)),
		at(3, 3, Man(Black)),
		at(5, 5, Man(Black)),
		at(7, 1, Man(Black)),
	}
	_, err := NewValidatorFrom(layout, White).ReplayText("C3:E5\nF2-G3")
	if re := replayErr(t, err); re.Line != 2 || !errors.Is(err, ErrChainBroken) {
		t.Fatalf("got line %d err %v", re.Line, err)
	}

	v := NewValidatorFrom(layout, White)
	res, err := v.ReplayText("C3:E5\nE5:G7\nB8-A7")
	if err != nil {
		t.Fatalf("Replay: %v", err)
	}
	if res.Applied != 3 || res.Next != White {
		t.Fatalf("result %+v", res)
	}
}

func TestReplayGameOver(t *testing.T) {
	v := NewValidatorFrom([]Placement{at(2, 2, Man(White)), at(3, 3, Man(Black))}, White)
	res, err := v.ReplayText("C3:E5\nE5-F6")
	if re := replayErr(t, err); re.Line != 2 || !errors.Is(err, ErrGameOver) {
		t.Fatalf("got line %d err %v", re.Line, err)
	}
	if res.Winner != White || res.Applied != 1 || res.Next != NoColor {
		t.Fatalf("result %+v", res)
	}
	if p, ok := v.Session().PieceAt(sq("E5")); !ok || p.Color != White {
		t.Fatalf("final position lost after replay")
	}
}

func TestReplayEmpty(t *testing.T) {
	for _, text := range []string{"", "\n  \n\r\n"} {
		_, err := NewValidator().ReplayText(text)
		re := replayErr(t, err)
		if re.Line != 0 || !errors.Is(err, ErrEmptyTranscript) {
			t.Fatalf("%q: got line %d err %v", text, re.Line, err)
		}
	}
}

func TestReplayErrorMessage(t *testing.T) {
	_, err := NewValidator().ReplayText("C3-D4\nF6-F5")
	if got := err.Error(); !strings.HasPrefix(got, `line 2 "F6-F5": illegal move`) {
		t.Fatalf("message %q", got)
	}
}

func TestExampleLayout(t *testing.T) {
	v := NewValidatorFrom(ExampleLayout(), White)
	c := v.Session().Counts()
	if c.White != 2 || c.Black != 6 {
		t.Fatalf("counts %+v", c)
	}
	if p, _ := v.Session().PieceAt(sq("C1")); p != KingOf(Black) {
		t.Fatalf("C1 = %v", p)
	}
	if _, err := v.Step("F4-E5"); err != nil {
		t.Fatalf("Step: %v", err)
	}
}

func TestReplayExampleChainPromotes(t *testing.T) {
	v := NewValidatorFrom(ExampleLayout(), White)
	res, err := v.ReplayText("F4-E5\nH6-G5\nH4:F6\nF6:D8\nD8:B6\nB6:D4")
	if err != nil {
		t.Fatalf("Replay: %v", err)
	}
	if res.Next != Black || res.InChain {
		t.Fatalf("result %+v", res)
	}
	s := v.Session()
	if p, _ := s.PieceAt(sq("D4")); p != KingOf(White) {
		t.Fatalf("D4 = %v; the man promoted mid-chain should keep capturing as a king", p)
	}
	if c := s.Counts(); c.White != 2 || c.Black != 2 {
		t.Fatalf("counts %+v", c)
	}
}

func TestSplitTranscript(t *testing.T) {
	text := "[Event \"KakaoCheckers\"]\n[Setup \"example\"]\n\nF4-E5\nH6-G5\n"
	tags, moves := SplitTranscript(text)
	if tags["Event"] != "KakaoCheckers" || tags["Setup"] != "example" {
		t.Fatalf("tags %v", tags)
	}
	res, err := NewValidatorFrom(ExampleLayout(), White).Replay(moves)
	if err != nil || res.Applied != 2 {
		t.Fatalf("replay of split moves: %+v %v", res, err)
	}
	if tags, moves := SplitTranscript("C3-D4"); len(tags) != 0 || len(moves) != 1 {
		t.Fatalf("no header: %v %v", tags, moves)
	}
}
