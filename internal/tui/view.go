package tui

import (
	"fmt"
	"strings"

	"cribscore/internal/scoring"

	"github.com/charmbracelet/lipgloss"
)

const barWidth = 24

func (m Model) View() string {
	st := m.state
	header := titleStyle.Render(st.GameName) + mutedStyle.Render(fmt.Sprintf("  game %d of %d", m.activeIndex(), st.GameCount))

	board := lipgloss.JoinHorizontal(lipgloss.Top,
		m.renderPlayer(scoring.Player1),
		" ",
		m.renderPlayer(scoring.Player2),
	)

	parts := []string{header, "", board}
	if st.ShowWinnerModal {
		parts = append(parts, "", renderWinner(st))
	}
	if m.confirm != confirmNone {
		parts = append(parts, "", bannerStyle.Render(m.confirm.prompt()+"  (y/n)"))
	}
	if m.status != "" {
		parts = append(parts, "", statusStyle.Render(m.status))
	}
	parts = append(parts, "", helpStyle.Render("1-4 add  - subtract  tab side  enter commit  r reset  W reset wins  n new  [ ] games  x delete  q quit"))
	return lipgloss.JoinVertical(lipgloss.Left, parts...) + "\n"
}

func (m Model) renderPlayer(p scoring.Player) string {
	st := m.state
	style := panelStyle
	if p == m.side {
		style = selectedPanelStyle
	}

	score := scoreStyle
	if st.InDanger(p) {
		score = dangerStyle
	}

	floating := ""
	if f := st.FloatingScore(p); f != 0 {
		floating = floatingStyle.Render(fmt.Sprintf(" %+d", f))
	}

	lines := []string{
		titleStyle.Render(p.String()),
		score.Render(fmt.Sprintf("%d", st.MainScore(p))) + floating,
		renderBar(st.Progress(p)),
		mutedStyle.Render(fmt.Sprintf("games won: %d", st.GamesWon(p))),
	}
	return style.Render(strings.Join(lines, "\n"))
}

func renderBar(progress float64) string {
	filled := int(progress * barWidth)
	return barStyle.Render(strings.Repeat("█", filled)) + mutedStyle.Render(strings.Repeat("░", barWidth-filled))
}

func renderWinner(st scoring.State) string {
	msg := fmt.Sprintf("%s wins!", st.Winner)
	if st.ShowSkunk {
		msg += fmt.Sprintf("  %s got skunked", st.SkunkedPlayer)
	}
	return bannerStyle.Render(msg)
}
