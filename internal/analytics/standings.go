package analytics

import (
	"cmp"
	"slices"

	"cribscore/internal/scoring"
)

func NewStanding(rec scoring.GameRecord, activeID string) Standing {
	st := Standing{
		GameID:          rec.ID,
		Name:            rec.Name,
		Active:          rec.ID == activeID,
		Player1GamesWon: rec.Player1GamesWon,
		Player2GamesWon: rec.Player2GamesWon,
		Played:          rec.Player1GamesWon + rec.Player2GamesWon,
	}
	switch diff := rec.Player1GamesWon - rec.Player2GamesWon; {
	case diff > 0:
		st.Leader, st.LeadBy = scoring.Player1, diff
	case diff < 0:
		st.Leader, st.LeadBy = scoring.Player2, -diff
	}
	if st.Played > 0 {
		st.Player1Share = float64(rec.Player1GamesWon) / float64(st.Played)
	}
	return st
}

// Summarize ranks records by matches played, most first, then by name.
// Records with equal keys keep their collection order.
func Summarize(records []scoring.GameRecord, activeID string) Report {
	rep := Report{
		Standings: make([]Standing, 0, len(records)),
		Totals:    Totals{Games: len(records)},
	}
	for _, rec := range records {
		st := NewStanding(rec, activeID)
		rep.Standings = append(rep.Standings, st)
		rep.Totals.Played += st.Played
		rep.Totals.Player1GamesWon += st.Player1GamesWon
		rep.Totals.Player2GamesWon += st.Player2GamesWon
	}
	slices.SortStableFunc(rep.Standings, func(a, b Standing) int {
		if c := cmp.Compare(b.Played, a.Played); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	return rep
}
