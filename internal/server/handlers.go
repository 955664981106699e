package server

import (
	"errors"
	"io"
	"net/http"

	"cribscore/internal/analytics"
	"cribscore/internal/broadcast"
	"cribscore/internal/events"
	"cribscore/internal/metrics"
	"cribscore/internal/scoring"
	"cribscore/internal/wshub"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

type Server struct {
	Session     *scoring.Session
	Broadcaster *broadcast.Broadcaster
	Hub         *wshub.Hub
	Metrics     *metrics.Collector
	Registry    *prometheus.Registry
	Checks      map[string]CheckFunc
	Logger      *logrus.Logger
}

// New wires the broadcaster, websocket hub and metrics to the session's bus.
func New(session *scoring.Session, bus *events.Bus[scoring.Change], logger *logrus.Logger) *Server {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	m.Games.Set(float64(session.Store().Len()))
	m.Watch(bus)

	hub := wshub.NewHub(logger)
	hub.Relay(bus)

	return &Server{
		Session:     session,
		Broadcaster: broadcast.NewBroadcaster(bus, logger),
		Hub:         hub,
		Metrics:     m,
		Registry:    reg,
		Checks:      map[string]CheckFunc{},
		Logger:      logger,
	}
}

type floatingRequest struct {
	Delta int `json:"delta"`
}

type gameRequest struct {
	Name            string `json:"name"`
	Player1GamesWon int    `json:"player1GamesWon"`
	Player2GamesWon int    `json:"player2GamesWon"`
}

type gamesResponse struct {
	ActiveGameID string               `json:"activeGameId"`
	Games        []scoring.GameRecord `json:"games"`
}

// respond writes the post-operation state. A persistence failure still
// returns the state, which is already applied in memory.
func (s *Server) respond(w http.ResponseWriter, status int, st scoring.State, err error) {
	if err != nil {
		s.Logger.WithError(err).Error("persisting game state")
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error(), "state": st})
		return
	}
	writeJSON(w, status, st)
}

func (s *Server) playerParam(w http.ResponseWriter, r *http.Request) (scoring.Player, bool) {
	p, err := scoring.ParsePlayer(chi.URLParam(r, "player"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return scoring.NoPlayer, false
	}
	return p, true
}

// gameParam resolves {id} to a known record or writes a 404.
func (s *Server) gameParam(w http.ResponseWriter, r *http.Request) (scoring.GameRecord, bool) {
	rec, ok := s.Session.Game(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "game not found")
	}
	return rec, ok
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Session.State())
}

func (s *Server) handleAddFloating(w http.ResponseWriter, r *http.Request) {
	p, ok := s.playerParam(w, r)
	if !ok {
		return
	}
	var req floatingRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	st, err := s.Session.AddFloatingScore(r.Context(), p, req.Delta)
	s.respond(w, http.StatusOK, st, err)
}

func (s *Server) handleCommit(w http.ResponseWriter, r *http.Request) {
	p, ok := s.playerParam(w, r)
	if !ok {
		return
	}
	st, err := s.Session.CommitFloatingScore(r.Context(), p)
	s.respond(w, http.StatusOK, st, err)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	st, err := s.Session.ResetGame(r.Context())
	s.respond(w, http.StatusOK, st, err)
}

func (s *Server) handleResetWins(w http.ResponseWriter, r *http.Request) {
	st, err := s.Session.ResetGamesWon(r.Context())
	s.respond(w, http.StatusOK, st, err)
}

func (s *Server) handleListGames(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, gamesResponse{
		ActiveGameID: s.Session.State().ActiveGameID,
		Games:        s.Session.Games(),
	})
}

func (s *Server) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	var req gameRequest
	// The name is optional, so an empty body is allowed.
	if err := readJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	st, err := s.Session.CreateGame(r.Context(), req.Name)
	s.respond(w, http.StatusCreated, st, err)
}

func (s *Server) handleActivateGame(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.gameParam(w, r)
	if !ok {
		return
	}
	st, err := s.Session.SwitchToGame(r.Context(), rec.ID)
	s.respond(w, http.StatusOK, st, err)
}

func (s *Server) handleUpdateGame(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.gameParam(w, r)
	if !ok {
		return
	}
	var req gameRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validateGame(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	st, err := s.Session.UpdateGame(r.Context(), rec.ID, req.Name, req.Player1GamesWon, req.Player2GamesWon)
	s.respond(w, http.StatusOK, st, err)
}

func (s *Server) handleRenameGame(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.gameParam(w, r)
	if !ok {
		return
	}
	var req gameRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	st, err := s.Session.RenameGame(r.Context(), rec.ID, req.Name)
	s.respond(w, http.StatusOK, st, err)
}

func (s *Server) handleDeleteGame(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.gameParam(w, r)
	if !ok {
		return
	}
	st, ok, err := s.Session.TryDeleteGame(r.Context(), rec.ID)
	if !ok {
		if _, exists := s.Session.Game(rec.ID); !exists {
			writeError(w, http.StatusNotFound, "game not found")
			return
		}
		writeError(w, http.StatusConflict, "cannot delete the last game")
		return
	}
	s.respond(w, http.StatusOK, st, err)
}

func (s *Server) handleStandings(w http.ResponseWriter, r *http.Request) {
	st := s.Session.State()
	writeJSON(w, http.StatusOK, analytics.Summarize(s.Session.Games(), st.ActiveGameID))
}

func validateGame(req gameRequest) error {
	if req.Name == "" {
		return errors.New("name is required")
	}
	if req.Player1GamesWon < 0 || req.Player2GamesWon < 0 {
		return errors.New("games won cannot be negative")
	}
	return nil
}
