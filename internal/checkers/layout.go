package checkers

// Placement puts one piece on one square when a game starts.
type Placement struct {
	Square Square
	Piece  Piece
}

// StandardLayout fills the dark squares of the first (size-2)/2 rows on each side:
// white from row 0 upward, black from the last row downward.
func StandardLayout(size int) []Placement {
	if size <= 0 {
		size = DefaultSize
	}
	rows := (size - 2) / 2
	out := make([]Placement, 0, rows*size)
	for row := 0; row < rows; row++ {
		for col := 0; col < size; col++ {
			if (row+col)%2 == 0 {
				out = append(out, Placement{Square: Square{Row: row, Col: col}, Piece: Man(White)})
			}
		}
	}
	for row := size - 1; row > size-1-rows; row-- {
		for col := 0; col < size; col++ {
			if (row+col)%2 == 0 {
				out = append(out, Placement{Square: Square{Row: row, Col: col}, Piece: Man(Black)})
			}
		}
	}
	return out
}

// ExampleLayout is a short demonstration position on an 8×8 board: two white men
// facing a black king and a row of black men that allow chained captures.
func ExampleLayout() []Placement {
	return []Placement{
		{Square: Square{Row: 3, Col: 5}, Piece: Man(White)},
		{Square: Square{Row: 3, Col: 7}, Piece: Man(White)},
		{Square: Square{Row: 7, Col: 1}, Piece: Man(Black)},
		{Square: Square{Row: 0, Col: 2}, Piece: KingOf(Black)},
		{Square: Square{Row: 4, Col: 2}, Piece: Man(Black)},
		{Square: Square{Row: 6, Col: 2}, Piece: Man(Black)},
		{Square: Square{Row: 6, Col: 4}, Piece: Man(Black)},
		{Square: Square{Row: 5, Col: 7}, Piece: Man(Black)},
	}
}
