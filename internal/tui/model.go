package tui

import (
	"context"
	"fmt"

	"cribscore/internal/scoring"

	tea "github.com/charmbracelet/bubbletea"
)

type confirmAction int

const (
	confirmNone confirmAction = iota
	confirmReset
	confirmResetWins
	confirmDelete
)

func (c confirmAction) prompt() string {
	switch c {
	case confirmReset:
		return "Reset both scores?"
	case confirmResetWins:
		return "Reset games won?"
	case confirmDelete:
		return "Delete this game?"
	}
	return ""
}

// Model is the two-player scoreboard. Every key runs straight against the
// session and the view is rebuilt from the returned state.
type Model struct {
	ctx     context.Context
	session *scoring.Session
	state   scoring.State
	side    scoring.Player
	confirm confirmAction
	status  string
	width   int
}

func New(ctx context.Context, session *scoring.Session) Model {
	return Model{
		ctx:     ctx,
		session: session,
		state:   session.State(),
		side:    scoring.Player1,
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case tea.KeyMsg:
		if m.confirm != confirmNone {
			return m.updateConfirm(msg)
		}
		return m.updateMain(msg)
	}
	return m, nil
}

func (m Model) updateMain(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.status = ""
	switch key := msg.String(); key {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "1", "2", "3", "4":
		return m.apply(m.session.AddFloatingScore(m.ctx, m.side, int(key[0]-'0')))
	case "-":
		return m.apply(m.session.AddFloatingScore(m.ctx, m.side, -1))
	case "tab":
		m.side = m.side.Other()
	case "enter":
		return m.apply(m.session.CommitFloatingScore(m.ctx, m.side))
	case "r":
		m.confirm = confirmReset
	case "W":
		m.confirm = confirmResetWins
	case "x":
		if len(m.session.Games()) <= 1 {
			m.status = "cannot delete the last game"
			return m, nil
		}
		m.confirm = confirmDelete
	case "n":
		return m.apply(m.session.CreateGame(m.ctx, ""))
	case "[":
		return m.cycle(-1)
	case "]":
		return m.cycle(1)
	}
	return m, nil
}

func (m Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	action := m.confirm
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "y", "Y", "enter":
		m.confirm = confirmNone
		switch action {
		case confirmReset:
			return m.apply(m.session.ResetGame(m.ctx))
		case confirmResetWins:
			return m.apply(m.session.ResetGamesWon(m.ctx))
		case confirmDelete:
			return m.apply(m.session.DeleteGame(m.ctx, m.state.ActiveGameID))
		}
	case "n", "N", "esc":
		m.confirm = confirmNone
	}
	return m, nil
}

// cycle activates the game step places away from the active one, wrapping
// at either end.
func (m Model) cycle(step int) (tea.Model, tea.Cmd) {
	games := m.session.Games()
	if len(games) < 2 {
		return m, nil
	}
	cur := 0
	for i, g := range games {
		if g.ID == m.state.ActiveGameID {
			cur = i
			break
		}
	}
	next := (cur + step + len(games)) % len(games)
	return m.apply(m.session.SwitchToGame(m.ctx, games[next].ID))
}

func (m Model) apply(st scoring.State, err error) (tea.Model, tea.Cmd) {
	m.state = st
	if err != nil {
		m.status = fmt.Sprintf("not saved: %v", err)
	}
	return m, nil
}

// activeIndex is the 1-based position of the active game.
func (m Model) activeIndex() int {
	for i, g := range m.session.Games() {
		if g.ID == m.state.ActiveGameID {
			return i + 1
		}
	}
	return 0
}
