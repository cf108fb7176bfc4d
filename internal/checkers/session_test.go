package checkers

import (
	"math/rand"
	"testing"
)

type recordingNotifier struct {
	turns []Color
	wins  []Color
}

func (n *recordingNotifier) Turn(c Color) { n.turns = append(n.turns, c) }
func (n *recordingNotifier) Win(c Color)  { n.wins = append(n.wins, c) }

type recordingRenderer struct {
	boards  int
	hints   []Square
	last    Snapshot
	refresh int
}

func (r *recordingRenderer) DrawBoard(s Snapshot) {
	r.boards++
	r.last = s
}

func (r *recordingRenderer) DrawHints(origin Square, _ MoveSet) {
	r.hints = append(r.hints, origin)
}

func (r *recordingRenderer) Refresh() { r.refresh++ }

func sq(field string) Square {
	s, err := ParseField(field, DefaultSize)
	if err != nil {
		panic(err)
	}
	return s
}

func playMove(t *testing.T, s *Session, from, to string) TurnResult {
	t.Helper()
	if !s.Select(sq(from)) {
		if cur, ok := s.Selected(); !ok || cur != sq(from) {
			t.Fatalf("select %s refused", from)
		}
	}
	if !s.Apply(sq(to)) {
		t.Fatalf("apply %s-%s refused", from, to)
	}
	res, ok := s.Commit()
	if !ok {
		t.Fatalf("commit %s-%s refused", from, to)
	}
	return res
}

func TestSessionOpeningSlide(t *testing.T) {
	hist := &MemoryHistory{}
	note := &recordingNotifier{}
	s := NewSession(WithHistory(hist), WithNotifier(note))
	s.StartGame()

	res := playMove(t, s, "C3", "D4")
	if res.Notation != "C3-D4" || res.Capture || res.Chained || res.Next != Black {
		t.Fatalf("unexpected result %+v", res)
	}
	if _, ok := s.PieceAt(sq("C3")); ok {
		t.Fatalf("C3 should be empty")
	}
	if p, ok := s.PieceAt(sq("D4")); !ok || p != Man(White) {
		t.Fatalf("D4 = %v, %v", p, ok)
	}
	if s.ActiveColor() != Black {
		t.Fatalf("active = %v", s.ActiveColor())
	}
	if e := hist.Entries(); len(e) != 1 || e[0] != "C3-D4" {
		t.Fatalf("history %v", e)
	}
	if len(note.turns) != 2 || note.turns[0] != White || note.turns[1] != Black {
		t.Fatalf("turn announcements %v", note.turns)
	}
}

func TestSessionSelectRefusals(t *testing.T) {
	s := NewSession()
	if s.Select(sq("C3")) {
		t.Fatalf("select before start must be a no-op")
	}
	s.StartGame()
	if s.Select(sq("F6")) {
		t.Fatalf("selected a black piece on white's turn")
	}
	if s.Select(sq("A1")) {
		t.Fatalf("selected an immobile piece")
	}
	if s.Select(sq("D4")) {
		t.Fatalf("selected an empty square")
	}
	if s.Select(Square{Row: 9, Col: 0}) {
		t.Fatalf("selected off the board")
	}
	if !s.Select(sq("C3")) {
		t.Fatalf("C3 should be selectable")
	}
	if s.Apply(sq("C4")) {
		t.Fatalf("applied a destination outside the legal set")
	}
	if _, ok := s.Commit(); ok {
		t.Fatalf("commit without pending move")
	}
	if s.Rollback() {
		t.Fatalf("rollback without pending move")
	}
}

func TestSessionRollbackRestores(t *testing.T) {
	s := NewSession()
	s.StartFrom([]Placement{at(6, 2, Man(White)), at(5, 7, Man(Black))}, White)
	before := s.Counts()

	if !s.Select(sq("C7")) || !s.Apply(sq("D8")) {
		t.Fatalf("select/apply refused")
	}
	if p, _ := s.PieceAt(sq("D8")); !p.King {
		t.Fatalf("man on the last row should be promoted, got %v", p)
	}
	if got := s.PendingNotation(); got != "C7-D8" {
		t.Fatalf("pending notation %q", got)
	}
	if !s.Rollback() {
		t.Fatalf("rollback refused")
	}
	if p, ok := s.PieceAt(sq("C7")); !ok || p.King {
		t.Fatalf("rollback must restore the unpromoted man, got %v", p)
	}
	if _, ok := s.PieceAt(sq("D8")); ok {
		t.Fatalf("destination not emptied")
	}
	if _, ok := s.Selected(); ok {
		t.Fatalf("rollback outside a chain returns to idle")
	}
	if s.Counts() != before {
		t.Fatalf("counts %+v, want %+v", s.Counts(), before)
	}
}

func TestSessionPromotionSticks(t *testing.T) {
	s := NewSession()
	s.StartFrom([]Placement{at(6, 2, Man(White)), at(5, 7, Man(Black))}, White)
	playMove(t, s, "C7", "D8")
	if p, _ := s.PieceAt(sq("D8")); p != KingOf(White) {
		t.Fatalf("D8 = %v", p)
	}

	s.StartFrom([]Placement{at(1, 1, Man(Black)), at(5, 7, Man(White))}, Black)
	playMove(t, s, "B2", "A1")
	if p, _ := s.PieceAt(sq("A1")); p != KingOf(Black) {
		t.Fatalf("A1 = %v", p)
	}
}

func TestSessionSingleCaptureIsLazy(t *testing.T) {
	s := NewSession()
	s.StartFrom([]Placement{at(2, 2, Man(White)), at(3, 3, Man(Black)), at(7, 1, Man(Black))}, White)

	if !s.Select(sq("C3")) || !s.Apply(sq("E5")) {
		t.Fatalf("capture refused")
	}
	if _, ok := s.PieceAt(sq("D4")); !ok || s.Counts().Black != 2 {
		t.Fatalf("captured piece must stay until commit")
	}
	res, _ := s.Commit()
	if res.Notation != "C3:E5" || !res.Capture || res.Chained {
		t.Fatalf("result %+v", res)
	}
	if _, ok := s.PieceAt(sq("D4")); ok || s.Counts().Black != 1 {
		t.Fatalf("captured piece not removed, counts %+v", s.Counts())
	}
	if s.ActiveColor() != Black {
		t.Fatalf("turn did not pass")
	}
}

func TestSessionChainCapture(t *testing.T) {
	r := &recordingRenderer{}
	s := NewSession(WithRenderer(r))
	s.StartFrom([]Placement{
		at(2, 2, Man(White)),
		at(3, 3, Man(Black)),
		at(5, 5, Man(Black)),
		at(7, 1, Man(Black)),
	}, White)

	res := playMove(t, s, "C3", "E5")
	if !res.Chained || res.Next != White {
		t.Fatalf("first jump %+v", res)
	}
	if !s.InChain() || s.ActiveColor() != White {
		t.Fatalf("chain state lost")
	}
	if cur, ok := s.Selected(); !ok || cur != sq("E5") {
		t.Fatalf("chain square %v %v", cur, ok)
	}
	if s.Deselect(sq("E5")) {
		t.Fatalf("deselect during a chain must be refused")
	}
	if n := len(r.hints); n == 0 || r.hints[n-1] != sq("E5") {
		t.Fatalf("renderer did not get chain hints: %v", r.hints)
	}

	// A rolled back continuation keeps the chain square selected.
	if !s.Apply(sq("G7")) || !s.Rollback() {
		t.Fatalf("apply/rollback in chain refused")
	}
	if cur, ok := s.Selected(); !ok || cur != sq("E5") || !s.InChain() {
		t.Fatalf("rollback dropped the chain")
	}

	res = playMove(t, s, "E5", "G7")
	if res.Chained || res.Notation != "E5:G7" || res.Next != Black {
		t.Fatalf("second jump %+v", res)
	}
	if c := s.Counts(); c.White != 1 || c.Black != 1 {
		t.Fatalf("counts %+v", c)
	}
	if r.last.Counts != s.Counts() {
		t.Fatalf("renderer snapshot is stale")
	}
}

func TestSessionWinResets(t *testing.T) {
	hist := &MemoryHistory{}
	note := &recordingNotifier{}
	s := NewSession(WithHistory(hist), WithNotifier(note))
	s.StartFrom([]Placement{at(2, 2, Man(White)), at(3, 3, Man(Black))}, White)

	res := playMove(t, s, "C3", "E5")
	if res.Winner != White || res.Next != NoColor {
		t.Fatalf("result %+v", res)
	}
	if len(note.wins) != 1 || note.wins[0] != White {
		t.Fatalf("win announcements %v", note.wins)
	}
	if s.Started() || s.Winner() != White {
		t.Fatalf("session still running")
	}
	if c := s.Counts(); c != (Counts{}) {
		t.Fatalf("board not cleared: %+v", c)
	}
	if len(hist.Entries()) != 0 {
		t.Fatalf("history not cleared: %v", hist.Entries())
	}
	if s.Select(sq("E5")) {
		t.Fatalf("select after the game ended")
	}
}

func TestSessionWinWithoutReset(t *testing.T) {
	s := NewSession(WithoutAutoReset())
	s.StartFrom([]Placement{at(4, 4, Man(Black)), at(3, 3, Man(White))}, Black)
	res := playMove(t, s, "E5", "C3")
	if res.Winner != Black {
		t.Fatalf("winner %v", res.Winner)
	}
	if p, ok := s.PieceAt(sq("C3")); !ok || p.Color != Black {
		t.Fatalf("final position lost")
	}
}

func TestSessionSelectOrMove(t *testing.T) {
	s := NewSession()
	s.StartGame()
	if s.SelectOrMove(sq("C3")) {
		t.Fatalf("first click only selects")
	}
	if s.SelectOrMove(sq("C3")) {
		t.Fatalf("second click on the same square deselects")
	}
	if _, ok := s.Selected(); ok {
		t.Fatalf("still selected")
	}
	s.SelectOrMove(sq("C3"))
	if !s.SelectOrMove(sq("B4")) {
		t.Fatalf("click on a destination should apply")
	}
	if s.SelectOrMove(sq("C3")) {
		t.Fatalf("clicks are ignored while a move is pending")
	}
	res, ok := s.EndTurn()
	if !ok || res.Notation != "C3-B4" {
		t.Fatalf("end turn %+v %v", res, ok)
	}
	if s.UndoTurn() {
		t.Fatalf("nothing to undo")
	}
}

func TestSessionRandomPlayKeepsCounts(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for game := 0; game < 20; game++ {
		s := NewSession(WithoutAutoReset())
		s.StartGame()
		for ply := 0; ply < 300 && s.Started(); ply++ {
			origin, ok := s.Selected()
			if !ok {
				var candidates []Square
				for from, p := range s.Snapshot().Pieces {
					if p.Color != s.ActiveColor() {
						continue
					}
					if ms, _ := s.Hint(from); len(ms) > 0 {
						candidates = append(candidates, from)
					}
				}
				if len(candidates) == 0 {
					break
				}
				origin = candidates[rng.Intn(len(candidates))]
				if !s.Select(origin) {
					t.Fatalf("game %d: select %v refused", game, origin)
				}
			}
			moves := s.Moves().Sorted()
			if !s.Apply(moves[rng.Intn(len(moves))].To) {
				t.Fatalf("game %d: apply refused", game)
			}
			if _, ok := s.Commit(); !ok {
				t.Fatalf("game %d: commit refused", game)
			}
			snap := s.Snapshot()
			if len(snap.Pieces) != snap.Counts.White+snap.Counts.Black {
				t.Fatalf("game %d ply %d: %d pieces, counts %+v", game, ply, len(snap.Pieces), snap.Counts)
			}
		}
	}
}
