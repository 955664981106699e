package scoring

import (
	"context"
	"errors"
	"sync"

	"cribscore/internal/events"
)

var ErrInvalidPlayer = errors.New("player must be 1 or 2")

type Action string

const (
	ActionAdd       = Action("add")
	ActionCommit    = Action("commit")
	ActionReset     = Action("reset")
	ActionResetWins = Action("resetWins")
	ActionCreate    = Action("create")
	ActionSwitch    = Action("switch")
	ActionDelete    = Action("delete")
	ActionRename    = Action("rename")
	ActionUpdate    = Action("update")
)

// Win describes the match that a commit just ended.
type Win struct {
	Winner        Player `json:"winner"`
	Loser         Player `json:"loser"`
	Margin        int    `json:"margin"`
	Skunked       bool   `json:"skunked"`
	SkunkedPlayer Player `json:"skunkedPlayer,omitempty"`
}

// Change is published on the bus after every state-changing operation.
// Win is set only by the commit that declared it.
type Change struct {
	Action Action `json:"action"`
	Player Player `json:"player,omitempty"`
	State  State  `json:"state"`
	Win    *Win   `json:"win,omitempty"`
}

// State is the read-only view of the active game handed to presentation.
type State struct {
	ActiveGameID string `json:"activeGameId"`
	GameName     string `json:"gameName"`
	GameCount    int    `json:"gameCount"`

	Player1MainScore     int `json:"player1MainScore"`
	Player2MainScore     int `json:"player2MainScore"`
	Player1FloatingScore int `json:"player1FloatingScore"`
	Player2FloatingScore int `json:"player2FloatingScore"`
	Player1GamesWon      int `json:"player1GamesWon"`
	Player2GamesWon      int `json:"player2GamesWon"`

	ShowWinnerModal bool   `json:"showWinnerModal"`
	ShowConfetti    bool   `json:"showConfetti"`
	ShowSkunk       bool   `json:"showSkunk"`
	Winner          Player `json:"winner"`
	SkunkedPlayer   Player `json:"skunkedPlayer"`

	Player1InDanger bool    `json:"player1InDanger"`
	Player2InDanger bool    `json:"player2InDanger"`
	Player1Progress float64 `json:"player1Progress"`
	Player2Progress float64 `json:"player2Progress"`
}

func (st State) MainScore(p Player) int {
	if p == Player1 {
		return st.Player1MainScore
	}
	return st.Player2MainScore
}

func (st State) FloatingScore(p Player) int {
	if p == Player1 {
		return st.Player1FloatingScore
	}
	return st.Player2FloatingScore
}

func (st State) GamesWon(p Player) int {
	if p == Player1 {
		return st.Player1GamesWon
	}
	return st.Player2GamesWon
}

func (st State) InDanger(p Player) bool {
	if p == Player1 {
		return st.Player1InDanger
	}
	return st.Player2InDanger
}

func (st State) Progress(p Player) float64 {
	if p == Player1 {
		return st.Player1Progress
	}
	return st.Player2Progress
}

type celebration struct {
	showWinnerModal bool
	showConfetti    bool
	showSkunk       bool
	winner          Player
	skunkedPlayer   Player
}

// Session applies scoring rules to the store's active game and keeps the
// celebration flags, which are never persisted. Operations are serialised
// so each one is applied and saved before the next starts.
type Session struct {
	mu    sync.Mutex
	store *Store
	bus   *events.Bus[Change]
	cel   celebration
}

// NewSession wraps store. bus may be nil.
func NewSession(store *Store, bus *events.Bus[Change]) *Session {
	return &Session{
		store: store,
		bus:   bus,
	}
}

func (s *Session) Store() *Store {
	return s.store
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

func (s *Session) Games() []GameRecord {
	return s.store.Games()
}

func (s *Session) Game(id string) (GameRecord, bool) {
	return s.store.Get(id)
}

func (s *Session) stateLocked() State {
	rec, _ := s.store.Active()
	floating := s.store.Floating()
	st := State{
		ActiveGameID:         rec.ID,
		GameName:             rec.Name,
		GameCount:            s.store.Len(),
		Player1MainScore:     rec.Player1MainScore,
		Player2MainScore:     rec.Player2MainScore,
		Player1FloatingScore: floating[0],
		Player2FloatingScore: floating[1],
		Player1GamesWon:      rec.Player1GamesWon,
		Player2GamesWon:      rec.Player2GamesWon,
		ShowWinnerModal:      s.cel.showWinnerModal,
		ShowConfetti:         s.cel.showConfetti,
		ShowSkunk:            s.cel.showSkunk,
		Winner:               s.cel.winner,
		SkunkedPlayer:        s.cel.skunkedPlayer,
		Player1InDanger:      rec.Player2MainScore-rec.Player1MainScore >= DangerDifference,
		Player2InDanger:      rec.Player1MainScore-rec.Player2MainScore >= DangerDifference,
		Player1Progress:      progress(rec.Player1MainScore),
		Player2Progress:      progress(rec.Player2MainScore),
	}
	return st
}

func progress(score int) float64 {
	score = max(0, min(score, WinningScore))
	return float64(score) / float64(WinningScore)
}

func (s *Session) publish(action Action, p Player, win *Win) State {
	st := s.stateLocked()
	if s.bus != nil {
		s.bus.Publish(Change{Action: action, Player: p, State: st, Win: win})
	}
	return st
}

func (s *Session) clearCelebration() {
	s.cel = celebration{}
}

// AddFloatingScore adds delta to p's pending points. Any integer is
// accepted and the result may go negative.
func (s *Session) AddFloatingScore(ctx context.Context, p Player, delta int) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !p.Valid() {
		return s.stateLocked(), ErrInvalidPlayer
	}
	_, err := s.store.UpdateActive(ctx, func(_ *GameRecord, floating *[2]int) {
		floating[p.index()] += delta
	})
	return s.publish(ActionAdd, p, nil), err
}

// CommitFloatingScore folds p's floating score into p's main score, zeroes
// the floating score and then checks p, and only p, for a win.
func (s *Session) CommitFloatingScore(ctx context.Context, p Player) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !p.Valid() {
		return s.stateLocked(), ErrInvalidPlayer
	}
	var win *Win
	_, err := s.store.UpdateActive(ctx, func(rec *GameRecord, floating *[2]int) {
		rec.addMainScore(p, floating[p.index()])
		floating[p.index()] = 0
		win = s.checkForWinner(rec, p)
	})
	return s.publish(ActionCommit, p, win), err
}

// checkForWinner declares a win for p when p has reached WinningScore,
// bumping p's tally on rec and raising the celebration flags. A margin
// strictly greater than SkunkDifference is a skunk.
func (s *Session) checkForWinner(rec *GameRecord, p Player) *Win {
	winnerScore := rec.MainScore(p)
	loserScore := rec.MainScore(p.Other())
	if winnerScore < WinningScore {
		return nil
	}

	rec.addGameWon(p)
	win := &Win{
		Winner: p,
		Loser:  p.Other(),
		Margin: winnerScore - loserScore,
	}

	s.cel.winner = p
	if win.Margin > SkunkDifference {
		win.Skunked = true
		win.SkunkedPlayer = p.Other()
		s.cel.showSkunk = true
		s.cel.showConfetti = false
		s.cel.skunkedPlayer = p.Other()
	} else {
		s.cel.showSkunk = false
		s.cel.showConfetti = true
		s.cel.skunkedPlayer = NoPlayer
	}
	s.cel.showWinnerModal = true
	return win
}

// ResetGame zeroes both main and floating scores and clears the
// celebration. Win tallies are kept.
func (s *Session) ResetGame(ctx context.Context) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.store.UpdateActive(ctx, func(rec *GameRecord, floating *[2]int) {
		rec.Player1MainScore = 0
		rec.Player2MainScore = 0
		*floating = [2]int{}
	})
	s.clearCelebration()
	return s.publish(ActionReset, NoPlayer, nil), err
}

// ResetGamesWon zeroes the active record's win tallies only.
func (s *Session) ResetGamesWon(ctx context.Context) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.store.UpdateActive(ctx, func(rec *GameRecord, _ *[2]int) {
		rec.Player1GamesWon = 0
		rec.Player2GamesWon = 0
	})
	return s.publish(ActionResetWins, NoPlayer, nil), err
}

// CreateGame appends a record, activates it and clears the celebration.
func (s *Session) CreateGame(ctx context.Context, name string) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.store.Create(ctx, name)
	s.clearCelebration()
	return s.publish(ActionCreate, NoPlayer, nil), err
}

// SwitchToGame activates id and clears the celebration. Unknown ids are
// ignored. Floating scores carry over unchanged.
func (s *Session) SwitchToGame(ctx context.Context, id string) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ok, err := s.store.Switch(ctx, id)
	if !ok {
		return s.stateLocked(), nil
	}
	s.clearCelebration()
	return s.publish(ActionSwitch, NoPlayer, nil), err
}

// DeleteGame removes id. It is refused for the last record and ignored
// for unknown ids.
func (s *Session) DeleteGame(ctx context.Context, id string) (State, error) {
	st, _, err := s.TryDeleteGame(ctx, id)
	return st, err
}

// TryDeleteGame is DeleteGame that also reports whether a record was
// removed. The check and the removal happen under one lock.
func (s *Session) TryDeleteGame(ctx context.Context, id string) (State, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ok, err := s.store.Delete(ctx, id)
	if !ok {
		return s.stateLocked(), false, nil
	}
	return s.publish(ActionDelete, NoPlayer, nil), true, err
}

func (s *Session) RenameGame(ctx context.Context, id, name string) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ok, err := s.store.Rename(ctx, id, name)
	if !ok {
		return s.stateLocked(), nil
	}
	return s.publish(ActionRename, NoPlayer, nil), err
}

// UpdateGame overwrites a record's name and both win tallies.
func (s *Session) UpdateGame(ctx context.Context, id, name string, player1GamesWon, player2GamesWon int) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ok, err := s.store.Update(ctx, id, name, player1GamesWon, player2GamesWon)
	if !ok {
		return s.stateLocked(), nil
	}
	return s.publish(ActionUpdate, NoPlayer, nil), err
}
