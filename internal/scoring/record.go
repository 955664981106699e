package scoring

import "github.com/google/uuid"

const DefaultGameName = "Player 1 vs Player 2"

// GameRecord is one named pairing: an in-progress match plus the running
// count of matches each side has won.
type GameRecord struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Player1MainScore int    `json:"player1MainScore"`
	Player2MainScore int    `json:"player2MainScore"`
	Player1GamesWon  int    `json:"player1GamesWon"`
	Player2GamesWon  int    `json:"player2GamesWon"`
}

// NewGameRecord returns a zeroed record with a fresh id. An empty name
// falls back to DefaultGameName.
func NewGameRecord(name string) GameRecord {
	if name == "" {
		name = DefaultGameName
	}
	return GameRecord{
		ID:   uuid.New().String(),
		Name: name,
	}
}

func (g *GameRecord) MainScore(p Player) int {
	if p == Player1 {
		return g.Player1MainScore
	}
	return g.Player2MainScore
}

func (g *GameRecord) addMainScore(p Player, points int) {
	if p == Player1 {
		g.Player1MainScore += points
	} else {
		g.Player2MainScore += points
	}
}

func (g *GameRecord) GamesWon(p Player) int {
	if p == Player1 {
		return g.Player1GamesWon
	}
	return g.Player2GamesWon
}

func (g *GameRecord) addGameWon(p Player) {
	if p == Player1 {
		g.Player1GamesWon++
	} else {
		g.Player2GamesWon++
	}
}
