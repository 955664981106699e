package analytics

import "cribscore/internal/scoring"

// Standing summarises the win tallies of one game record.
type Standing struct {
	GameID          string         `json:"gameId"`
	Name            string         `json:"name"`
	Active          bool           `json:"active"`
	Player1GamesWon int            `json:"player1GamesWon"`
	Player2GamesWon int            `json:"player2GamesWon"`
	Played          int            `json:"played"`
	Leader          scoring.Player `json:"leader"` // 0 when level
	LeadBy          int            `json:"leadBy"`
	Player1Share    float64        `json:"player1Share"` // 0 when nothing played
}

type Totals struct {
	Games           int `json:"games"`
	Played          int `json:"played"`
	Player1GamesWon int `json:"player1GamesWon"`
	Player2GamesWon int `json:"player2GamesWon"`
}

type Report struct {
	Standings []Standing `json:"standings"`
	Totals    Totals     `json:"totals"`
}
