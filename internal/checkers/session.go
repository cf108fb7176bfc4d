package checkers

import "go.uber.org/zap"

// TurnResult describes what a commit did.
type TurnResult struct {
	Notation string
	Capture  bool

	// Chained is set when the same piece must keep capturing; the turn did not pass.
	Chained bool

	// Next is the side to move after the commit. NoColor once the game is won.
	Next   Color
	Winner Color
}

// Option configures a Session.
type Option func(*Session)

func WithRenderer(r Renderer) Option {
	return func(s *Session) {
		if r != nil {
			s.renderer = r
		}
	}
}

func WithHistory(h HistorySink) Option {
	return func(s *Session) {
		if h != nil {
			s.history = h
		}
	}
}

func WithNotifier(n Notifier) Option {
	return func(s *Session) {
		if n != nil {
			s.notifier = n
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

func WithBoardSize(n int) Option {
	return func(s *Session) { s.board = NewBoard(n) }
}

// WithoutAutoReset keeps the final position on the board when a side wins.
func WithoutAutoReset() Option {
	return func(s *Session) { s.autoReset = false }
}

// Session runs one game: selection, move application, commit/rollback, chained
// captures, turn order and the win check. It is not safe for concurrent use;
// callers issue select → apply → commit-or-rollback strictly in sequence.
type Session struct {
	board    *Board
	recorder Recorder

	active   Color
	selected Square
	hasSel   bool
	moves    MoveSet
	started  bool
	chain    bool
	winner   Color

	autoReset bool

	renderer Renderer
	history  HistorySink
	notifier Notifier
	logger   *zap.Logger
}

func NewSession(opts ...Option) *Session {
	s := &Session{
		board:     NewBoard(DefaultSize),
		active:    White,
		autoReset: true,
		renderer:  nopRenderer{},
		history:   nopHistory{},
		notifier:  nopNotifier{},
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// StartGame sets up the standard layout with white to move.
func (s *Session) StartGame() {
	s.StartFrom(StandardLayout(s.board.Size()), White)
}

// StartFrom starts a game from an arbitrary position. Placements outside the
// board are ignored.
func (s *Session) StartFrom(layout []Placement, first Color) {
	s.board.Clear()
	for _, pl := range layout {
		if s.board.InRange(pl.Square) {
			s.board.Place(pl.Square, pl.Piece)
		}
	}
	if first != Black {
		first = White
	}
	s.active = first
	s.started = true
	s.winner = NoColor
	s.chain = false
	s.clearSelection()
	s.recorder.Clear()
	s.history.Clear()
	s.redraw()
	s.logger.Debug("checkers_start",
		zap.String("first", first.String()),
		zap.Int("white", s.board.Count(White)),
		zap.Int("black", s.board.Count(Black)),
	)
	s.notifier.Turn(s.active)
}

// Select enters selection mode on sq. It succeeds only for a piece of the side
// to move that has at least one legal destination.
func (s *Session) Select(sq Square) bool {
	if !s.started || s.hasSel || !s.board.InRange(sq) {
		return false
	}
	if !s.board.HasColorAt(sq, s.active) {
		return false
	}
	moves, _ := LegalMoves(s.board, sq)
	if len(moves) == 0 {
		return false
	}
	s.selected, s.hasSel, s.moves = sq, true, moves
	s.renderer.DrawHints(sq, moves.clone())
	return true
}

// Deselect leaves selection mode when sq is the selected square. A chain capture
// in progress cannot be deselected.
func (s *Session) Deselect(sq Square) bool {
	if !s.hasSel || sq != s.selected || s.chain || !s.recorder.IsEmpty() {
		return false
	}
	s.clearSelection()
	s.renderer.Refresh()
	return true
}

// Apply moves the selected piece to dest and stages the move. A captured piece is
// only removed on Commit, so Rollback has nothing to restore.
func (s *Session) Apply(dest Square) bool {
	if !s.hasSel || !s.recorder.IsEmpty() {
		return false
	}
	mv, ok := s.moves[dest]
	if !ok {
		return false
	}
	piece, _ := s.board.Get(s.selected)
	s.recorder.Record(PendingMove{
		From:     s.selected,
		To:       dest,
		Capture:  mv.Capture,
		Captured: mv.Captured,
		Piece:    piece,
	})
	placed := piece
	if !piece.King && dest.Row == s.promotionRow(piece.Color) {
		placed = piece.Promoted()
	}
	s.board.Remove(s.selected)
	s.board.Place(dest, placed)
	s.redraw()
	return true
}

// Commit finalizes the staged move. ok is false when nothing was staged.
func (s *Session) Commit() (TurnResult, bool) {
	pm, ok := s.recorder.Pending()
	if !ok {
		return TurnResult{}, false
	}
	res := TurnResult{Notation: pm.Notation(), Capture: pm.Capture}
	s.history.Append(res.Notation)
	s.recorder.Clear()

	if pm.Capture {
		s.board.Remove(pm.Captured)
		if moves, ok := LegalMoves(s.board, pm.To); ok && moves.HasCapture() {
			s.selected, s.hasSel, s.moves, s.chain = pm.To, true, moves, true
			s.redraw()
			s.renderer.DrawHints(pm.To, moves.clone())
			res.Chained = true
			res.Next = s.active
			s.logger.Debug("checkers_commit", zap.String("move", res.Notation), zap.Bool("chained", true))
			return res, true
		}
	}

	s.chain = false
	s.clearSelection()
	s.active = s.active.Opponent()
	s.redraw()
	s.logger.Debug("checkers_commit", zap.String("move", res.Notation), zap.String("next", s.active.String()))

	if w := s.winnerByCount(); w != NoColor {
		res.Winner = w
		s.finish(w)
		return res, true
	}
	res.Next = s.active
	s.notifier.Turn(s.active)
	return res, true
}

// Rollback undoes the staged move. During a chain capture the chain square stays
// selected; otherwise the session returns to idle.
func (s *Session) Rollback() bool {
	pm, ok := s.recorder.Pending()
	if !ok {
		return false
	}
	s.board.Place(pm.From, pm.Piece)
	s.board.Remove(pm.To)
	s.recorder.Clear()
	s.redraw()
	if s.chain {
		s.moves, _ = LegalMoves(s.board, pm.From)
		s.renderer.DrawHints(pm.From, s.moves.clone())
	} else {
		s.clearSelection()
	}
	s.logger.Debug("checkers_rollback", zap.String("move", pm.Notation()))
	return true
}

// SelectOrMove is the click handler: it selects when idle, deselects when the
// selected square is clicked again and otherwise treats sq as a destination.
// It reports whether a move was applied.
func (s *Session) SelectOrMove(sq Square) bool {
	if !s.started {
		return false
	}
	if !s.hasSel {
		s.Select(sq)
		return false
	}
	if sq == s.selected {
		s.Deselect(sq)
		return false
	}
	return s.Apply(sq)
}

// EndTurn commits when a move is staged in a running game.
func (s *Session) EndTurn() (TurnResult, bool) {
	if !s.started || !s.hasSel {
		return TurnResult{}, false
	}
	return s.Commit()
}

// UndoTurn rolls back a staged move in a running game.
func (s *Session) UndoTurn() bool {
	if !s.started || !s.hasSel {
		return false
	}
	return s.Rollback()
}

func (s *Session) Started() bool      { return s.started }
func (s *Session) ActiveColor() Color { return s.active }
func (s *Session) InChain() bool      { return s.chain }
func (s *Session) Winner() Color      { return s.winner }
func (s *Session) Size() int          { return s.board.Size() }
func (s *Session) Counts() Counts     { return s.board.Counts() }
func (s *Session) Snapshot() Snapshot { return s.board.Snapshot() }

// Selected returns the square in selection mode, if any.
func (s *Session) Selected() (Square, bool) { return s.selected, s.hasSel }

// Moves returns a copy of the legal set of the selected piece.
func (s *Session) Moves() MoveSet { return s.moves.clone() }

func (s *Session) Pending() (PendingMove, bool) { return s.recorder.Pending() }

// PendingNotation returns the notation of the staged move, or "".
func (s *Session) PendingNotation() string { return s.recorder.Notation() }

// PieceAt reports the piece on sq; out-of-range squares are empty.
func (s *Session) PieceAt(sq Square) (Piece, bool) {
	if !s.board.InRange(sq) {
		return Piece{}, false
	}
	return s.board.Get(sq)
}

// Hint returns the legal destinations of the piece on sq without selecting it.
func (s *Session) Hint(sq Square) (MoveSet, bool) {
	return LegalMoves(s.board, sq)
}

func (s *Session) promotionRow(c Color) int {
	if c == Black {
		return 0
	}
	return s.board.Size() - 1
}

func (s *Session) winnerByCount() Color {
	switch {
	case s.board.Count(Black) == 0:
		return White
	case s.board.Count(White) == 0:
		return Black
	default:
		return NoColor
	}
}

func (s *Session) finish(w Color) {
	s.winner = w
	s.started = false
	s.chain = false
	s.clearSelection()
	s.recorder.Clear()
	s.logger.Debug("checkers_win", zap.String("winner", w.String()), zap.Bool("reset", s.autoReset))
	if s.autoReset {
		s.board.Clear()
		s.history.Clear()
		s.redraw()
	}
	s.notifier.Win(w)
}

func (s *Session) clearSelection() {
	s.selected, s.hasSel, s.moves = Square{}, false, nil
}

func (s *Session) redraw() {
	s.renderer.Refresh()
	s.renderer.DrawBoard(s.board.Snapshot())
}
