package match

import (
	"strings"
	"time"

	"github.com/park285/cheese-checkers-bot/internal/checkers"
)

// Status represents a match lifecycle state.
type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusFinished Status = "FINISHED"
	StatusResigned Status = "RESIGNED"
)

// Starting positions a match can use.
const (
	LayoutStandard = "standard"
	LayoutExample  = "example"
)

// Game is the persisted state of a match. The position is never stored; it is
// rebuilt by replaying Moves.
type Game struct {
	ID        string    `json:"id"`
	Layout    string    `json:"layout"`
	Moves     []string  `json:"moves"`
	Turn      string    `json:"turn"`
	InChain   bool      `json:"in_chain"`
	Status    Status    `json:"status"`
	WhiteID   string    `json:"white_id"`
	WhiteName string    `json:"white_name"`
	BlackID   string    `json:"black_id"`
	BlackName string    `json:"black_name"`
	Room      string    `json:"room"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Winner    string    `json:"winner,omitempty"`
	Outcome   string    `json:"outcome,omitempty"`
	Method    string    `json:"method,omitempty"`
}

// TurnColor is the side to move.
func (g *Game) TurnColor() checkers.Color {
	c, _ := checkers.ParseColor(g.Turn)
	return c
}

// PlayerColor returns the side userID plays, or NoColor.
func (g *Game) PlayerColor(userID string) checkers.Color {
	switch strings.TrimSpace(userID) {
	case "":
		return checkers.NoColor
	case g.WhiteID:
		return checkers.White
	case g.BlackID:
		return checkers.Black
	default:
		return checkers.NoColor
	}
}

func (g *Game) PlayerName(c checkers.Color) string {
	switch c {
	case checkers.White:
		return g.WhiteName
	case checkers.Black:
		return g.BlackName
	default:
		return ""
	}
}

func (g *Game) PlayerID(c checkers.Color) string {
	switch c {
	case checkers.White:
		return g.WhiteID
	case checkers.Black:
		return g.BlackID
	default:
		return ""
	}
}

func (g *Game) Active() bool { return g.Status == StatusActive }
