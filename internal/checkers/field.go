package checkers

import (
	"fmt"
	"strconv"
	"strings"
)

// DefaultSize is the only board size the game is played on.
const DefaultSize = 8

// Square is a 0-indexed board coordinate.
type Square struct {
	Row int
	Col int
}

func (s Square) offset(dr, dc int) Square {
	return Square{Row: s.Row + dr, Col: s.Col + dc}
}

// Field formats the square as a field id: column letter then 1-based row ("C4").
func (s Square) Field() string {
	return string(rune('A'+s.Col)) + strconv.Itoa(s.Row+1)
}

func (s Square) String() string { return s.Field() }

// ParseField converts a field id into a square of a size×size board.
// The column letter is case-insensitive.
func ParseField(id string, size int) (Square, error) {
	id = strings.TrimSpace(id)
	if len(id) < 2 {
		return Square{}, fmt.Errorf("%w %q", ErrMalformedField, id)
	}
	letter := id[0]
	if letter >= 'a' && letter <= 'z' {
		letter -= 'a' - 'A'
	}
	col := int(letter) - 'A'
	if col < 0 || col >= size {
		return Square{}, fmt.Errorf("%w %q: column out of range", ErrMalformedField, id)
	}
	digits := id[1:]
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return Square{}, fmt.Errorf("%w %q", ErrMalformedField, id)
		}
	}
	n, err := strconv.Atoi(digits)
	if err != nil || n < 1 || n > size {
		return Square{}, fmt.Errorf("%w %q: row out of range", ErrMalformedField, id)
	}
	return Square{Row: n - 1, Col: col}, nil
}
