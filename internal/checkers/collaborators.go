package checkers

// Renderer draws the board. It only ever receives copies of game state.
type Renderer interface {
	DrawBoard(snap Snapshot)
	DrawHints(origin Square, moves MoveSet)
	Refresh()
}

// HistorySink receives one notation per committed move.
type HistorySink interface {
	Append(notation string)
	Clear()
}

// Notifier receives user-facing announcements.
type Notifier interface {
	Turn(c Color)
	Win(c Color)
}

type nopRenderer struct{}

func (nopRenderer) DrawBoard(Snapshot)        {}
func (nopRenderer) DrawHints(Square, MoveSet) {}
func (nopRenderer) Refresh()                  {}

type nopHistory struct{}

func (nopHistory) Append(string) {}
func (nopHistory) Clear()        {}

type nopNotifier struct{}

func (nopNotifier) Turn(Color) {}
func (nopNotifier) Win(Color)  {}

// MemoryHistory is a HistorySink that keeps notations in memory.
type MemoryHistory struct {
	entries []string
}

func (h *MemoryHistory) Append(notation string) { h.entries = append(h.entries, notation) }
func (h *MemoryHistory) Clear()                 { h.entries = nil }

// Entries returns a copy of the recorded notations.
func (h *MemoryHistory) Entries() []string {
	return append([]string(nil), h.entries...)
}
