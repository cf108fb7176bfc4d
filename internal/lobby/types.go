package lobby

import "time"

// State is the lifecycle of an open challenge.
type State string

const (
	StateOpen      State = "OPEN"
	StateStarted   State = "STARTED"
	StateCancelled State = "CANCELLED"
)

// Challenge is stored as JSON in Redis under lobby:ch:<code>.
type Challenge struct {
	Code      string    `json:"code"`
	State     State     `json:"state"`
	Room      string    `json:"room"`
	CreatedAt time.Time `json:"created_at"`

	CreatorID   string `json:"creator_id"`
	CreatorName string `json:"creator_name"`
	Color       string `json:"color"`
	Layout      string `json:"layout"`

	JoinerID   string `json:"joiner_id,omitempty"`
	JoinerName string `json:"joiner_name,omitempty"`
	GameID     string `json:"game_id,omitempty"`
}

var (
	ErrInvalidArgs     = errf("invalid arguments")
	ErrChallengeGone   = errf("challenge not found or expired")
	ErrTaken           = errf("challenge already taken")
	ErrOwnChallenge    = errf("cannot join your own challenge")
	ErrPlayerBusy      = errf("player has an active game in this room")
	ErrCreatorHasOpen  = errf("user already has an open challenge")
	ErrNoOpenChallenge = errf("user has no open challenge")
)

type staticErr string

func (e staticErr) Error() string { return string(e) }

func errf(s string) error { return staticErr(s) }
