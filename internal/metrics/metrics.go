package metrics

import (
	"strconv"

	"cribscore/internal/events"
	"cribscore/internal/scoring"

	"github.com/prometheus/client_golang/prometheus"
)

type Collector struct {
	Commits *prometheus.CounterVec
	Wins    *prometheus.CounterVec
	Resets  *prometheus.CounterVec
	Games   prometheus.Gauge
}

// New builds the collector and registers it with reg.
func New(reg prometheus.Registerer) *Collector {
	c := &Collector{
		Commits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cribscore_commits_total",
			Help: "Floating scores committed to a main score.",
		}, []string{"player"}),
		Wins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cribscore_wins_total",
			Help: "Matches won, split into ordinary wins and skunks.",
		}, []string{"player", "kind"}),
		Resets: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cribscore_resets_total",
			Help: "Game and tally resets.",
		}, []string{"kind"}),
		Games: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "cribscore_games",
			Help: "Game records in the collection.",
		}),
	}
	reg.MustRegister(c.Commits, c.Wins, c.Resets, c.Games)
	return c
}

// Watch feeds every change on bus into the collector until the
// subscription is closed.
func (c *Collector) Watch(bus *events.Bus[scoring.Change]) {
	changes := bus.Subscribe()
	go func() {
		for ch := range changes {
			c.Observe(ch)
		}
	}()
}

func (c *Collector) Observe(ch scoring.Change) {
	c.Games.Set(float64(ch.State.GameCount))
	switch ch.Action {
	case scoring.ActionCommit:
		c.Commits.WithLabelValues(strconv.Itoa(int(ch.Player))).Inc()
		if ch.Win != nil {
			kind := "win"
			if ch.Win.Skunked {
				kind = "skunk"
			}
			c.Wins.WithLabelValues(strconv.Itoa(int(ch.Win.Winner)), kind).Inc()
		}
	case scoring.ActionReset:
		c.Resets.WithLabelValues("game").Inc()
	case scoring.ActionResetWins:
		c.Resets.WithLabelValues("wins").Inc()
	}
}
