package checkers

import "sort"

// Move is one legal destination. Captured is meaningful only when Capture is set.
type Move struct {
	To       Square
	Capture  bool
	Captured Square
}

// MoveSet maps a destination to the move reaching it.
type MoveSet map[Square]Move

func (m MoveSet) HasCapture() bool {
	for _, mv := range m {
		if mv.Capture {
			return true
		}
	}
	return false
}

// Captured returns the square jumped when moving to dest.
func (m MoveSet) Captured(dest Square) (Square, bool) {
	mv, ok := m[dest]
	if !ok || !mv.Capture {
		return Square{}, false
	}
	return mv.Captured, true
}

// Sorted lists the moves by row, then column.
func (m MoveSet) Sorted() []Move {
	out := make([]Move, 0, len(m))
	for _, mv := range m {
		out = append(out, mv)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].To.Row != out[j].To.Row {
			return out[i].To.Row < out[j].To.Row
		}
		return out[i].To.Col < out[j].To.Col
	})
	return out
}

func (m MoveSet) clone() MoveSet {
	if m == nil {
		return nil
	}
	out := make(MoveSet, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

var diagonals = [4][2]int{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}

// LegalMoves returns the destinations of the piece on from. ok is false when the
// square is empty; a piece with no moves yields an empty set.
//
// Men move one step along the two forward diagonals. A man that can capture
// forward may also capture backward; slides are never backward. Kings slide along
// all four diagonals up to the first obstruction and may jump an enemy directly
// followed by an empty cell. Whenever a capture exists, slides are dropped.
func LegalMoves(b *Board, from Square) (MoveSet, bool) {
	if !b.InRange(from) {
		return nil, false
	}
	p, ok := b.Get(from)
	if !ok {
		return nil, false
	}
	moves := make(MoveSet)
	if p.King {
		for _, d := range diagonals {
			scanKing(b, from, p.Color, d[0], d[1], moves)
		}
	} else {
		fwd := p.Color.forward()
		captured := false
		for _, dc := range [2]int{1, -1} {
			if stepMan(b, from, p.Color, fwd, dc, moves, true) {
				captured = true
			}
		}
		if captured {
			for _, dc := range [2]int{1, -1} {
				stepMan(b, from, p.Color, -fwd, dc, moves, false)
			}
		}
	}
	if moves.HasCapture() {
		for sq, mv := range moves {
			if !mv.Capture {
				delete(moves, sq)
			}
		}
	}
	return moves, true
}

// stepMan probes one diagonal neighbour of a man and reports whether it found a capture.
func stepMan(b *Board, from Square, own Color, dr, dc int, moves MoveSet, allowSlide bool) bool {
	next := from.offset(dr, dc)
	if !b.InRange(next) {
		return false
	}
	occupant, occupied := b.Get(next)
	if !occupied {
		if allowSlide {
			addMove(moves, Move{To: next})
		}
		return false
	}
	if occupant.Color == own {
		return false
	}
	landing := next.offset(dr, dc)
	if !b.InRange(landing) || b.Occupied(landing) {
		return false
	}
	addMove(moves, Move{To: landing, Capture: true, Captured: next})
	return true
}

func scanKing(b *Board, from Square, own Color, dr, dc int, moves MoveSet) {
	for sq := from.offset(dr, dc); b.InRange(sq); sq = sq.offset(dr, dc) {
		occupant, occupied := b.Get(sq)
		if !occupied {
			addMove(moves, Move{To: sq})
			continue
		}
		if occupant.Color != own {
			landing := sq.offset(dr, dc)
			if b.InRange(landing) && !b.Occupied(landing) {
				addMove(moves, Move{To: landing, Capture: true, Captured: sq})
			}
		}
		return
	}
}

// addMove keeps the first move found for a destination.
func addMove(moves MoveSet, mv Move) {
	if _, exists := moves[mv.To]; !exists {
		moves[mv.To] = mv
	}
}
