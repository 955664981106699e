package scoring

import (
	"fmt"
	"strconv"
)

const (
	WinningScore    = 121
	SkunkDifference = 30
	// DangerDifference is the deficit at which a trailing player is flagged
	// as at risk of a skunk. Unlike the skunk rule this is inclusive.
	DangerDifference = 30
)

// ScoreButtons are the peg increments offered on each side of the board.
var ScoreButtons = []int{1, 2, 3, 4, -1}

type Player int

const (
	NoPlayer Player = 0
	Player1  Player = 1
	Player2  Player = 2
)

func (p Player) Valid() bool {
	return p == Player1 || p == Player2
}

func (p Player) Other() Player {
	if p == Player1 {
		return Player2
	}
	return Player1
}

func (p Player) index() int {
	return int(p) - 1
}

func (p Player) String() string {
	if !p.Valid() {
		return "none"
	}
	return "Player " + strconv.Itoa(int(p))
}

// ParsePlayer accepts "1" or "2".
func ParsePlayer(s string) (Player, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return NoPlayer, fmt.Errorf("parsing player %q: %w", s, err)
	}
	p := Player(n)
	if !p.Valid() {
		return NoPlayer, fmt.Errorf("player %d out of range", n)
	}
	return p, nil
}
