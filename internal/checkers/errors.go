package checkers

import (
	"errors"
	"fmt"
)

var (
	ErrMalformedField   = errors.New("malformed field id")
	ErrWrongTurn        = errors.New("origin does not hold a piece of the side to move")
	ErrUnknownSeparator = errors.New("unknown move separator")
	ErrIllegalMove      = errors.New("illegal move")
	ErrChainBroken      = errors.New("capture chain must continue with the same piece")
	ErrNotationMismatch = errors.New("notation does not match the move played")
	ErrGameOver         = errors.New("game is already over")
	ErrEmptyTranscript  = errors.New("empty transcript")
)

// ReplayError reports the first transcript entry that could not be applied.
// Line counts non-blank entries from 1; it is 0 for an empty transcript.
type ReplayError struct {
	Line     int
	Notation string
	Err      error
}

func (e *ReplayError) Error() string {
	if e.Line == 0 {
		return e.Err.Error()
	}
	return fmt.Sprintf("line %d %q: %v", e.Line, e.Notation, e.Err)
}

func (e *ReplayError) Unwrap() error { return e.Err }
