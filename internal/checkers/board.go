package checkers

// Counts holds the number of pieces per color.
type Counts struct {
	White int
	Black int
}

// Of returns the count for one color.
func (c Counts) Of(color Color) int {
	switch color {
	case White:
		return c.White
	case Black:
		return c.Black
	default:
		return 0
	}
}

// Board is the authoritative grid of pieces. Cell access is not bounds-checked;
// callers validate squares with InRange first.
type Board struct {
	size   int
	cells  []Piece
	counts Counts
}

func NewBoard(size int) *Board {
	if size <= 0 {
		size = DefaultSize
	}
	return &Board{size: size, cells: make([]Piece, size*size)}
}

func (b *Board) Size() int { return b.size }

func (b *Board) InRange(sq Square) bool {
	return sq.Row >= 0 && sq.Row < b.size && sq.Col >= 0 && sq.Col < b.size
}

func (b *Board) index(sq Square) int { return sq.Row*b.size + sq.Col }

// Place puts p on sq, replacing any occupant. Placing the zero Piece empties the cell.
func (b *Board) Place(sq Square, p Piece) {
	i := b.index(sq)
	b.adjust(b.cells[i].Color, -1)
	b.adjust(p.Color, 1)
	b.cells[i] = p
}

func (b *Board) Remove(sq Square) {
	b.Place(sq, Piece{})
}

func (b *Board) Get(sq Square) (Piece, bool) {
	p := b.cells[b.index(sq)]
	return p, !p.IsZero()
}

func (b *Board) Occupied(sq Square) bool {
	return !b.cells[b.index(sq)].IsZero()
}

func (b *Board) HasColorAt(sq Square, c Color) bool {
	p := b.cells[b.index(sq)]
	return !p.IsZero() && p.Color == c
}

func (b *Board) Clear() {
	for i := range b.cells {
		b.cells[i] = Piece{}
	}
	b.counts = Counts{}
}

func (b *Board) Counts() Counts { return b.counts }

func (b *Board) Count(c Color) int { return b.counts.Of(c) }

func (b *Board) adjust(c Color, delta int) {
	switch c {
	case White:
		b.counts.White += delta
	case Black:
		b.counts.Black += delta
	}
}

// Snapshot is a read-only copy of the board handed to renderers.
type Snapshot struct {
	Size   int
	Pieces map[Square]Piece
	Counts Counts
}

// Piece reports the piece on sq in the snapshot.
func (s Snapshot) Piece(sq Square) (Piece, bool) {
	p, ok := s.Pieces[sq]
	return p, ok
}

func (b *Board) Snapshot() Snapshot {
	snap := Snapshot{Size: b.size, Pieces: make(map[Square]Piece, b.counts.White+b.counts.Black), Counts: b.counts}
	for i, p := range b.cells {
		if p.IsZero() {
			continue
		}
		snap.Pieces[Square{Row: i / b.size, Col: i % b.size}] = p
	}
	return snap
}
