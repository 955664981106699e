package scoring

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
)

// Store owns the ordered game records, the active record pointer and the
// shared floating scores. Every mutation is saved before it returns.
//
// Lookups by an unknown id are no-ops reported through a false result,
// never as errors. Returned errors come from the Persistence only; when
// one is returned the in-memory change has already been applied.
type Store struct {
	mu       sync.Mutex
	p        Persistence
	logger   logrus.FieldLogger
	games    []GameRecord
	activeID string
	floating [2]int
}

// NewStore loads the persisted snapshot. A failed or empty load seeds a
// single default record and makes it active.
func NewStore(ctx context.Context, p Persistence, logger logrus.FieldLogger) (*Store, error) {
	s := &Store{
		p:      p,
		logger: logger.WithField("component", "store"),
	}

	snap, err := p.Load(ctx)
	if err != nil {
		s.logger.WithError(err).Warn("loading games failed, starting fresh")
		snap = Snapshot{}
	}
	s.games = snap.Games
	s.activeID = snap.ActiveGameID
	s.floating = snap.Floating

	switch {
	case len(s.games) == 0:
		rec := NewGameRecord("")
		s.games = []GameRecord{rec}
		s.activeID = rec.ID
		s.logger.WithField("id", rec.ID).Info("seeded default game")
	case s.indexOf(s.activeID) < 0:
		s.activeID = s.games[0].ID
	default:
		return s, nil
	}

	if err := s.save(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) indexOf(id string) int {
	if id == "" {
		return -1
	}
	for i := range s.games {
		if s.games[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) save(ctx context.Context) error {
	snap := Snapshot{
		Games:        s.games,
		ActiveGameID: s.activeID,
		Floating:     s.floating,
	}.clone()
	if err := s.p.Save(ctx, snap); err != nil {
		return fmt.Errorf("saving games: %w", err)
	}
	return nil
}

// Games returns a copy of the records in insertion order.
func (s *Store) Games() []GameRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]GameRecord, len(s.games))
	copy(out, s.games)
	return out
}

func (s *Store) Get(id string) (GameRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(id); i >= 0 {
		return s.games[i], true
	}
	return GameRecord{}, false
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.games)
}

func (s *Store) ActiveID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeID
}

func (s *Store) Active() (GameRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(s.activeID); i >= 0 {
		return s.games[i], true
	}
	return GameRecord{}, false
}

func (s *Store) Floating() [2]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.floating
}

// Create appends a fresh record and makes it active.
func (s *Store) Create(ctx context.Context, name string) (GameRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := NewGameRecord(name)
	s.games = append(s.games, rec)
	s.activeID = rec.ID
	return rec, s.save(ctx)
}

// Switch makes id active. Floating scores are left as they are.
func (s *Store) Switch(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexOf(id) < 0 {
		return false, nil
	}
	s.activeID = id
	return true, s.save(ctx)
}

// Delete removes id unless it is the last record. Deleting the active
// record activates the first remaining one and zeroes the floating scores.
func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.games) <= 1 {
		return false, nil
	}
	i := s.indexOf(id)
	if i < 0 {
		return false, nil
	}
	s.games = append(s.games[:i], s.games[i+1:]...)
	if id == s.activeID {
		s.activeID = s.games[0].ID
		s.floating = [2]int{}
	}
	return true, s.save(ctx)
}

func (s *Store) Rename(ctx context.Context, id, name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return false, nil
	}
	s.games[i].Name = name
	return true, s.save(ctx)
}

// Update overwrites the name and both win tallies of id.
func (s *Store) Update(ctx context.Context, id, name string, player1GamesWon, player2GamesWon int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return false, nil
	}
	s.games[i].Name = name
	s.games[i].Player1GamesWon = player1GamesWon
	s.games[i].Player2GamesWon = player2GamesWon
	return true, s.save(ctx)
}

// UpdateActive applies fn to the active record and the floating scores
// under one lock and one save. If no record is active fn receives a
// throwaway record, so floating changes still land.
func (s *Store) UpdateActive(ctx context.Context, fn func(rec *GameRecord, floating *[2]int)) (GameRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var rec *GameRecord
	if i := s.indexOf(s.activeID); i >= 0 {
		rec = &s.games[i]
	} else {
		rec = &GameRecord{}
	}
	fn(rec, &s.floating)
	return *rec, s.save(ctx)
}
