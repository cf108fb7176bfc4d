// Package lobby keeps open challenges that any player in the same room can
// accept with "join <code>", so a game can start without a mention.
package lobby

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/park285/cheese-checkers-bot/internal/match"
	"github.com/park285/cheese-checkers-bot/internal/obslog"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Games is the part of match.Manager the lobby starts games through.
type Games interface {
	Create(ctx context.Context, room, challengerID, challengerName, targetID, targetName, colorChoice, layout string) (*match.Game, error)
	GetActiveByUserInRoom(ctx context.Context, userID, room string) (*match.Game, error)
}

type Manager struct {
	rdb   *redis.Client
	store *Store
	games Games
}

func NewManager(rdb *redis.Client, games Games) *Manager {
	return &Manager{rdb: rdb, store: NewStore(rdb), games: games}
}

// Open posts a challenge in room. color is the creator's side, as for match.Manager.Create.
func (m *Manager) Open(ctx context.Context, room, userID, userName, color, layout string) (*Challenge, error) {
	room, userID = strings.TrimSpace(room), strings.TrimSpace(userID)
	if room == "" || userID == "" {
		return nil, ErrInvalidArgs
	}
	if g, err := m.games.GetActiveByUserInRoom(ctx, userID, room); err != nil {
		return nil, err
	} else if g != nil {
		return nil, ErrPlayerBusy
	}
	if prev, err := m.openBy(ctx, userID); err != nil {
		return nil, err
	} else if prev != nil {
		return nil, ErrCreatorHasOpen
	}

	for i := 0; i < 5; i++ {
		code, err := codeGen()
		if err != nil {
			return nil, err
		}
		ok, err := m.rdb.SetNX(ctx, m.store.keyChallenge(code), "{}", ttlChallenge).Result()
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		ch := &Challenge{
			Code:        code,
			State:       StateOpen,
			Room:        room,
			CreatedAt:   time.Now(),
			CreatorID:   userID,
			CreatorName: userName,
			Color:       color,
			Layout:      layout,
		}
		_, err = m.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			if err := m.store.save(ctx, pipe, ch); err != nil {
				return err
			}
			pipe.SAdd(ctx, m.store.keyRoom(room), code)
			pipe.Expire(ctx, m.store.keyRoom(room), ttlChallenge)
			pipe.Set(ctx, m.store.keyOpenBy(userID), code, ttlChallenge)
			return nil
		})
		if err != nil {
			return nil, err
		}
		obslog.L().Info("lobby_open",
			zap.String("code", code),
			zap.String("room", room),
			zap.String("creator_id", userID),
			zap.String("layout", layout),
		)
		return ch, nil
	}
	return nil, fmt.Errorf("failed to allocate challenge code")
}

// Join accepts the challenge code in room and starts the game.
func (m *Manager) Join(ctx context.Context, room, code, userID, userName string) (*match.Game, *Challenge, error) {
	room, code, userID = strings.TrimSpace(room), strings.ToUpper(strings.TrimSpace(code)), strings.TrimSpace(userID)
	if room == "" || code == "" || userID == "" {
		return nil, nil, ErrInvalidArgs
	}
	if g, err := m.games.GetActiveByUserInRoom(ctx, userID, room); err != nil {
		return nil, nil, err
	} else if g != nil {
		return nil, nil, ErrPlayerBusy
	}

	key := m.store.keyChallenge(code)
	var ch *Challenge
	err := m.rdb.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := decode(tx.Get(ctx, key).Bytes())
		if err != nil {
			return err
		}
		switch {
		case cur == nil || cur.Room != room || cur.State == StateCancelled:
			return ErrChallengeGone
		case cur.State != StateOpen:
			return ErrTaken
		case cur.CreatorID == userID:
			return ErrOwnChallenge
		}
		cur.State = StateStarted
		cur.JoinerID, cur.JoinerName = userID, userName
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			if err := m.store.save(ctx, pipe, cur); err != nil {
				return err
			}
			pipe.SRem(ctx, m.store.keyRoom(room), code)
			pipe.Del(ctx, m.store.keyOpenBy(cur.CreatorID))
			return nil
		})
		ch = cur
		return err
	}, key)
	if errors.Is(err, redis.TxFailedErr) {
		err = ErrTaken
	}
	if err != nil {
		obslog.L().Warn("lobby_join_error", zap.String("code", code), zap.String("user_id", userID), zap.Error(err))
		return nil, nil, err
	}

	g, err := m.games.Create(ctx, room, ch.CreatorID, ch.CreatorName, userID, userName, ch.Color, ch.Layout)
	if err != nil {
		m.reopen(ctx, ch)
		return nil, nil, err
	}
	ch.GameID = g.ID
	if err := m.put(ctx, ch); err != nil {
		obslog.L().Warn("lobby_save_error", zap.String("code", code), zap.Error(err))
	}
	obslog.L().Info("lobby_start_game",
		zap.String("code", code),
		zap.String("game_id", g.ID),
		zap.String("white_id", g.WhiteID),
		zap.String("black_id", g.BlackID),
	)
	return g, ch, nil
}

// Cancel withdraws userID's open challenge.
func (m *Manager) Cancel(ctx context.Context, userID string) (*Challenge, error) {
	ch, err := m.openBy(ctx, strings.TrimSpace(userID))
	if err != nil {
		return nil, err
	}
	if ch == nil {
		return nil, ErrNoOpenChallenge
	}
	key := m.store.keyChallenge(ch.Code)
	err = m.rdb.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := decode(tx.Get(ctx, key).Bytes())
		if err != nil {
			return err
		}
		if cur == nil || cur.State != StateOpen {
			return ErrNoOpenChallenge
		}
		cur.State = StateCancelled
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			if err := m.store.save(ctx, pipe, cur); err != nil {
				return err
			}
			pipe.SRem(ctx, m.store.keyRoom(cur.Room), cur.Code)
			pipe.Del(ctx, m.store.keyOpenBy(cur.CreatorID))
			return nil
		})
		ch = cur
		return err
	}, key)
	if errors.Is(err, redis.TxFailedErr) {
		err = ErrNoOpenChallenge
	}
	if err != nil {
		return nil, err
	}
	obslog.L().Info("lobby_cancel", zap.String("code", ch.Code), zap.String("creator_id", ch.CreatorID))
	return ch, nil
}

// List returns the open challenges of room.
func (m *Manager) List(ctx context.Context, room string) ([]*Challenge, error) {
	return m.store.List(ctx, room)
}

// openBy returns the creator's challenge while it is still open.
func (m *Manager) openBy(ctx context.Context, userID string) (*Challenge, error) {
	code, err := m.rdb.Get(ctx, m.store.keyOpenBy(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	ch, err := m.store.Load(ctx, code)
	if err != nil || ch == nil || ch.State != StateOpen {
		return nil, err
	}
	return ch, nil
}

func (m *Manager) put(ctx context.Context, ch *Challenge) error {
	_, err := m.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		return m.store.save(ctx, pipe, ch)
	})
	return err
}

// reopen puts a challenge back after the game could not be created.
func (m *Manager) reopen(ctx context.Context, ch *Challenge) {
	ch.State = StateOpen
	ch.JoinerID, ch.JoinerName = "", ""
	_, err := m.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		if err := m.store.save(ctx, pipe, ch); err != nil {
			return err
		}
		pipe.SAdd(ctx, m.store.keyRoom(ch.Room), ch.Code)
		pipe.Set(ctx, m.store.keyOpenBy(ch.CreatorID), ch.Code, ttlChallenge)
		return nil
	})
	if err != nil {
		obslog.L().Warn("lobby_reopen_error", zap.String("code", ch.Code), zap.Error(err))
	}
}
