package checkers

import "strings"

// Color identifies a side.
type Color uint8

const (
	NoColor Color = iota
	White
	Black
)

func (c Color) String() string {
	switch c {
	case White:
		return "white"
	case Black:
		return "black"
	default:
		return "none"
	}
}

// Opponent returns the other side. NoColor has no opponent.
func (c Color) Opponent() Color {
	switch c {
	case White:
		return Black
	case Black:
		return White
	default:
		return NoColor
	}
}

// forward is the row step a man of this color advances by.
func (c Color) forward() int {
	if c == Black {
		return -1
	}
	return 1
}

// ParseColor accepts "white"/"w" and "black"/"b" in any case.
func ParseColor(s string) (Color, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "white", "w":
		return White, true
	case "black", "b":
		return Black, true
	default:
		return NoColor, false
	}
}

// Piece is a checker: a color and a rank. The zero Piece means "no piece".
type Piece struct {
	Color Color
	King  bool
}

// Man returns an unpromoted piece.
func Man(c Color) Piece { return Piece{Color: c} }

// KingOf returns a promoted piece.
func KingOf(c Color) Piece { return Piece{Color: c, King: true} }

func (p Piece) IsZero() bool { return p.Color == NoColor }

// Promoted returns the king of the same color.
func (p Piece) Promoted() Piece {
	return Piece{Color: p.Color, King: true}
}

func (p Piece) String() string {
	if p.IsZero() {
		return "empty"
	}
	if p.King {
		return p.Color.String() + " king"
	}
	return p.Color.String() + " man"
}
