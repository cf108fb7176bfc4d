package checkers

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// notationLen is the length of "C3-D4".
const notationLen = 5

// ReplayResult summarizes the moves a Validator applied so far.
type ReplayResult struct {
	Applied   int
	Notations []string
	InChain   bool

	// Next is the side to move, NoColor once the game has been won.
	Next   Color
	Winner Color
}

// Validator replays a transcript on its own session. The session never resets on
// a win, so the final position stays available for inspection.
type Validator struct {
	session   *Session
	line      int
	notations []string
	logger    *zap.Logger
}

// NewValidator starts a standard game with white to move.
func NewValidator(opts ...Option) *Validator {
	v := newValidator(opts)
	v.session.StartGame()
	return v
}

// NewValidatorFrom starts from an arbitrary position.
func NewValidatorFrom(layout []Placement, first Color, opts ...Option) *Validator {
	v := newValidator(opts)
	v.session.StartFrom(layout, first)
	return v
}

func newValidator(opts []Option) *Validator {
	s := NewSession(append(append([]Option(nil), opts...), WithoutAutoReset())...)
	return &Validator{session: s, logger: s.logger}
}

// Session exposes the replay session, positioned after the last applied move.
func (v *Validator) Session() *Session { return v.session }

// Result reports what has been applied so far.
func (v *Validator) Result() ReplayResult {
	res := ReplayResult{
		Applied:   len(v.notations),
		Notations: append([]string(nil), v.notations...),
		Winner:    v.session.Winner(),
		InChain:   v.session.InChain(),
	}
	if res.Winner == NoColor {
		res.Next = v.session.ActiveColor()
	}
	return res
}

// Replay applies every non-blank line in order and stops at the first violation.
// Moves applied before the violation stay applied.
func (v *Validator) Replay(lines []string) (ReplayResult, error) {
	seen := false
	for _, raw := range lines {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		seen = true
		if _, err := v.Step(raw); err != nil {
			return v.Result(), err
		}
	}
	if !seen {
		return v.Result(), &ReplayError{Err: ErrEmptyTranscript}
	}
	return v.Result(), nil
}

// ReplayText splits text into lines and replays them.
func (v *Validator) ReplayText(text string) (ReplayResult, error) {
	return v.Replay(SplitLines(text))
}

// Step applies one transcript entry.
func (v *Validator) Step(raw string) (TurnResult, error) {
	entry := strings.TrimSpace(raw)
	if entry == "" {
		return TurnResult{}, &ReplayError{Line: v.line, Err: ErrEmptyTranscript}
	}
	v.line++
	fail := func(err error) (TurnResult, error) {
		v.logger.Debug("checkers_replay_reject",
			zap.Int("line", v.line),
			zap.String("move", entry),
			zap.Error(err),
		)
		return TurnResult{}, &ReplayError{Line: v.line, Notation: entry, Err: err}
	}

	s := v.session
	if !s.Started() {
		return fail(ErrGameOver)
	}
	size := s.Size()
	if len(entry) != notationLen {
		return fail(fmt.Errorf("%w %q: want <field><separator><field>", ErrMalformedField, entry))
	}
	from, err := ParseField(entry[:2], size)
	if err != nil {
		return fail(err)
	}
	if !s.board.HasColorAt(from, s.ActiveColor()) {
		return fail(ErrWrongTurn)
	}
	sep := entry[2]
	if sep != SlideSep && sep != CaptureSep {
		return fail(fmt.Errorf("%w %q", ErrUnknownSeparator, string(sep)))
	}
	to, err := ParseField(entry[3:], size)
	if err != nil {
		return fail(err)
	}
	moves, _ := s.Hint(from)
	if _, ok := moves[to]; !ok {
		return fail(ErrIllegalMove)
	}
	if s.InChain() {
		if chainSq, _ := s.Selected(); chainSq != from {
			return fail(ErrChainBroken)
		}
	} else if !s.Select(from) {
		return fail(ErrIllegalMove)
	}
	if !s.Apply(to) {
		return fail(ErrIllegalMove)
	}
	want := FormatNotation(from, to, sep == CaptureSep)
	if got := s.PendingNotation(); got != want {
		s.Rollback()
		return fail(fmt.Errorf("%w: played %s", ErrNotationMismatch, got))
	}
	res, _ := s.Commit()
	v.notations = append(v.notations, res.Notation)
	return res, nil
}

// SplitLines splits a transcript on line breaks, tolerating CRLF.
func SplitLines(text string) []string {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	for i := range lines {
		lines[i] = strings.TrimRight(lines[i], "\r")
	}
	return lines
}

// SplitTranscript separates the leading tag lines (`[Key "value"]`) of an
// archived transcript from its move lines.
func SplitTranscript(text string) (map[string]string, []string) {
	tags := make(map[string]string)
	lines := SplitLines(text)
	i := 0
	for ; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}
		if !strings.HasPrefix(line, "[") || !strings.HasSuffix(line, "]") {
			break
		}
		key, value, _ := strings.Cut(strings.TrimSuffix(strings.TrimPrefix(line, "["), "]"), " ")
		tags[key] = strings.Trim(strings.TrimSpace(value), `"`)
	}
	return tags, lines[i:]
}
