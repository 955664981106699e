package scoring

import (
	"context"
	"encoding/json"
	"fmt"

	"cribscore/internal/kv"

	"github.com/sirupsen/logrus"
)

// Keys used by KVPersistence. Floating scores are not keyed
// per game: they form one scratch pad shared by every record.
const (
	KeyGames           = "games"
	KeyActiveGameID    = "activeGameID"
	KeyPlayer1Floating = "player1FloatingScore"
	KeyPlayer2Floating = "player2FloatingScore"
)

// Snapshot is everything that survives a restart.
type Snapshot struct {
	Games        []GameRecord
	ActiveGameID string
	Floating     [2]int
}

func (s Snapshot) clone() Snapshot {
	out := s
	out.Games = make([]GameRecord, len(s.Games))
	copy(out.Games, s.Games)
	return out
}

// Persistence loads and saves the whole Snapshot.
type Persistence interface {
	Load(ctx context.Context) (Snapshot, error)
	Save(ctx context.Context, snap Snapshot) error
}

// KVPersistence lays a Snapshot out over a key-value store.
type KVPersistence struct {
	store  kv.Store
	logger logrus.FieldLogger
}

func NewKVPersistence(store kv.Store, logger logrus.FieldLogger) *KVPersistence {
	return &KVPersistence{
		store:  store,
		logger: logger.WithField("component", "persistence"),
	}
}

// Load never fails on bad data: an undecodable games value loads as an
// empty collection and an undecodable floating score loads as 0. Only
// store errors are returned.
func (p *KVPersistence) Load(ctx context.Context) (Snapshot, error) {
	var snap Snapshot

	raw, ok, err := p.store.Get(ctx, KeyGames)
	if err != nil {
		return Snapshot{}, fmt.Errorf("reading %s: %w", KeyGames, err)
	}
	if ok {
		if err := json.Unmarshal(raw, &snap.Games); err != nil {
			p.logger.WithError(err).Warn("discarding undecodable games")
			snap.Games = nil
		}
	}

	raw, ok, err = p.store.Get(ctx, KeyActiveGameID)
	if err != nil {
		return Snapshot{}, fmt.Errorf("reading %s: %w", KeyActiveGameID, err)
	}
	if ok {
		if err := json.Unmarshal(raw, &snap.ActiveGameID); err != nil {
			p.logger.WithError(err).Warn("discarding undecodable active game id")
			snap.ActiveGameID = ""
		}
	}

	for i, key := range []string{KeyPlayer1Floating, KeyPlayer2Floating} {
		raw, ok, err := p.store.Get(ctx, key)
		if err != nil {
			return Snapshot{}, fmt.Errorf("reading %s: %w", key, err)
		}
		if !ok {
			continue
		}
		if err := json.Unmarshal(raw, &snap.Floating[i]); err != nil {
			p.logger.WithError(err).WithField("key", key).Warn("discarding undecodable floating score")
			snap.Floating[i] = 0
		}
	}
	return snap, nil
}

func (p *KVPersistence) Save(ctx context.Context, snap Snapshot) error {
	games := snap.Games
	if games == nil {
		games = []GameRecord{}
	}
	data, err := json.Marshal(games)
	if err != nil {
		return fmt.Errorf("encoding games: %w", err)
	}
	if err := p.store.Set(ctx, KeyGames, data); err != nil {
		return fmt.Errorf("writing %s: %w", KeyGames, err)
	}

	if snap.ActiveGameID == "" {
		if err := p.store.Remove(ctx, KeyActiveGameID); err != nil {
			return fmt.Errorf("removing %s: %w", KeyActiveGameID, err)
		}
	} else {
		data, _ := json.Marshal(snap.ActiveGameID)
		if err := p.store.Set(ctx, KeyActiveGameID, data); err != nil {
			return fmt.Errorf("writing %s: %w", KeyActiveGameID, err)
		}
	}

	for i, key := range []string{KeyPlayer1Floating, KeyPlayer2Floating} {
		data, _ := json.Marshal(snap.Floating[i])
		if err := p.store.Set(ctx, key, data); err != nil {
			return fmt.Errorf("writing %s: %w", key, err)
		}
	}
	return nil
}
