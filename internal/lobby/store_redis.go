package lobby

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const ttlChallenge = 24 * time.Hour

type Store struct{ rdb *redis.Client }

func NewStore(rdb *redis.Client) *Store { return &Store{rdb: rdb} }

func (s *Store) keyChallenge(code string) string { return "lobby:ch:" + strings.ToUpper(strings.TrimSpace(code)) }
func (s *Store) keyRoom(room string) string      { return "lobby:room:" + strings.TrimSpace(room) }
func (s *Store) keyOpenBy(userID string) string  { return "lobby:open:" + strings.TrimSpace(userID) }

func (s *Store) Load(ctx context.Context, code string) (*Challenge, error) {
	return decode(s.rdb.Get(ctx, s.keyChallenge(code)).Bytes())
}

func (s *Store) save(ctx context.Context, pipe redis.Pipeliner, ch *Challenge) error {
	raw, err := json.Marshal(ch)
	if err != nil {
		return err
	}
	pipe.Set(ctx, s.keyChallenge(ch.Code), raw, ttlChallenge)
	return nil
}

// List returns the open challenges of room, oldest first. Expired codes are
// pruned from the room index as a side effect.
func (s *Store) List(ctx context.Context, room string) ([]*Challenge, error) {
	codes, err := s.rdb.SMembers(ctx, s.keyRoom(room)).Result()
	if err != nil {
		return nil, err
	}
	var out []*Challenge
	for _, c := range codes {
		ch, err := s.Load(ctx, c)
		if err != nil {
			return nil, err
		}
		if ch == nil || ch.State != StateOpen {
			_ = s.rdb.SRem(ctx, s.keyRoom(room), c).Err()
			continue
		}
		out = append(out, ch)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func decode(raw []byte, err error) (*Challenge, error) {
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var ch Challenge
	if err := json.Unmarshal(raw, &ch); err != nil {
		return nil, err
	}
	return &ch, nil
}

// codeGen returns "CK-" followed by 5 characters without look-alikes (0/O, 1/I).
func codeGen() (string, error) {
	const letters = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	b := make([]byte, 5)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	for i := range b {
		b[i] = letters[int(b[i])%len(letters)]
	}
	return fmt.Sprintf("CK-%s", string(b)), nil
}
