package checkers

const (
	SlideSep   = '-'
	CaptureSep = ':'
)

// PendingMove is a move applied to the board but not yet committed.
type PendingMove struct {
	From     Square
	To       Square
	Capture  bool
	Captured Square
	Piece    Piece // the piece as it stood on From, before any promotion
}

// Notation renders the move as "C3-D4" or "C3:E5".
func (m PendingMove) Notation() string {
	return FormatNotation(m.From, m.To, m.Capture)
}

// FormatNotation renders a move in transcript notation.
func FormatNotation(from, to Square, capture bool) string {
	sep := SlideSep
	if capture {
		sep = CaptureSep
	}
	return from.Field() + string(sep) + to.Field()
}

// Recorder holds at most one staged move.
type Recorder struct {
	pending PendingMove
	staged  bool
}

func (r *Recorder) Record(m PendingMove) {
	r.pending = m
	r.staged = true
}

func (r *Recorder) Clear() {
	r.pending = PendingMove{}
	r.staged = false
}

func (r *Recorder) IsEmpty() bool { return !r.staged }

func (r *Recorder) Pending() (PendingMove, bool) {
	return r.pending, r.staged
}

// Notation returns the staged move's notation, or "" when nothing is staged.
func (r *Recorder) Notation() string {
	if !r.staged {
		return ""
	}
	return r.pending.Notation()
}
