package match

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
)

const schema = `CREATE TABLE IF NOT EXISTS checkers_games (
    game_id       TEXT PRIMARY KEY,
    white_id      TEXT NOT NULL,
    white_name    TEXT NOT NULL,
    black_id      TEXT NOT NULL,
    black_name    TEXT NOT NULL,
    room          TEXT NOT NULL,
    layout        TEXT NOT NULL,
    result        TEXT NOT NULL,
    result_method TEXT NOT NULL,
    moves         JSONB NOT NULL,
    transcript    TEXT NOT NULL,
    started_at    TIMESTAMPTZ NOT NULL,
    ended_at      TIMESTAMPTZ NOT NULL,
    duration_ms   BIGINT NOT NULL
)`

// Repository archives finished games in Postgres.
type Repository struct {
	db *sql.DB
}

func NewRepository(databaseURL string) (*Repository, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(16)
	db.SetMaxIdleConns(8)
	db.SetConnMaxLifetime(30 * time.Minute)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

// EnsureSchema creates the archive table when it is missing.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if r == nil || r.db == nil {
		return nil
	}
	_, err := r.db.ExecContext(ctx, schema)
	return err
}

// SaveResult upserts a finished game.
func (r *Repository) SaveResult(ctx context.Context, g *Game) error {
	if r == nil || r.db == nil || g == nil {
		return nil
	}
	result := resultToken(g.Outcome)
	movesRaw, err := json.Marshal(g.Moves)
	if err != nil {
		return err
	}
	duration := g.UpdatedAt.Sub(g.CreatedAt).Milliseconds()
	if duration < 0 {
		duration = 0
	}

	q := `INSERT INTO checkers_games (
        game_id, white_id, white_name, black_id, black_name,
        room, layout, result, result_method, moves, transcript,
        started_at, ended_at, duration_ms
      ) VALUES (
        $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14
      ) ON CONFLICT (game_id) DO UPDATE SET
        white_id=EXCLUDED.white_id,
        white_name=EXCLUDED.white_name,
        black_id=EXCLUDED.black_id,
        black_name=EXCLUDED.black_name,
        room=EXCLUDED.room,
        layout=EXCLUDED.layout,
        result=EXCLUDED.result,
        result_method=EXCLUDED.result_method,
        moves=EXCLUDED.moves,
        transcript=EXCLUDED.transcript,
        started_at=EXCLUDED.started_at,
        ended_at=EXCLUDED.ended_at,
        duration_ms=EXCLUDED.duration_ms`

	_, err = r.db.ExecContext(ctx, q,
		g.ID,
		g.WhiteID, g.WhiteName,
		g.BlackID, g.BlackName,
		g.Room, g.Layout, result, strings.TrimSpace(g.Method),
		string(movesRaw), BuildTranscript(g),
		g.CreatedAt, g.UpdatedAt, duration,
	)
	return err
}

// resultToken maps the winning color to the score notation used in transcripts.
func resultToken(outcome string) string {
	switch strings.ToLower(strings.TrimSpace(outcome)) {
	case "white":
		return "1-0"
	case "black":
		return "0-1"
	default:
		return "*"
	}
}

// BuildTranscript renders g as tag lines followed by one move per line, the
// format checkers.SplitTranscript and the replay tool read back.
func BuildTranscript(g *Game) string {
	if g == nil {
		return ""
	}
	date := g.UpdatedAt
	if date.IsZero() {
		date = time.Now()
	}
	var b strings.Builder
	tag := func(k, v string) { fmt.Fprintf(&b, "[%s \"%s\"]\n", k, sanitizeTag(v)) }
	tag("Event", "KakaoCheckers")
	tag("Site", "Iris")
	tag("Date", fmt.Sprintf("%04d.%02d.%02d", date.Year(), int(date.Month()), date.Day()))
	tag("White", g.WhiteName)
	tag("Black", g.BlackName)
	if g.Layout == LayoutExample {
		tag("Setup", LayoutExample)
	}
	if strings.TrimSpace(g.Method) != "" {
		tag("Termination", strings.ToLower(g.Method))
	}
	tag("Result", resultToken(g.Outcome))
	b.WriteString("\n")
	for _, mv := range g.Moves {
		b.WriteString(strings.TrimSpace(mv))
		b.WriteString("\n")
	}
	return b.String()
}

func sanitizeTag(s string) string {
	s = strings.ReplaceAll(s, "\\", " ")
	s = strings.ReplaceAll(s, "\"", "'")
	return strings.TrimSpace(s)
}
