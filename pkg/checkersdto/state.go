// Package checkersdto carries game state between the match layer and presenters.
package checkersdto

type RequestMeta struct {
	Room   string
	Sender string
	Name   string
}

// BoardState is a rendered snapshot of one game.
type BoardState struct {
	GameID     string
	White      string
	Black      string
	Moves      []string
	MoveCount  int
	Turn       string
	Status     string
	Winner     string
	InChain    bool
	WhiteCount int
	BlackCount int
	BoardImage []byte
}

// ReplaySummary describes a validated transcript.
type ReplaySummary struct {
	Applied    int
	Moves      []string
	Next       string
	Winner     string
	FailedLine int
	FailedMove string
	Reason     string
	BoardImage []byte
}

func (s *ReplaySummary) Failed() bool { return s != nil && s.Reason != "" }
