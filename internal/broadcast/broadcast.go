package broadcast

import (
	"encoding/json"
	"sync"

	"cribscore/internal/events"
	"cribscore/internal/scoring"

	"github.com/sirupsen/logrus"
)

const (
	EventState = "state"
	EventWin   = "win"
)

// Message is one server-sent event.
type Message struct {
	Event string
	Data  string
}

type Broadcaster struct {
	mu      sync.Mutex
	clients map[chan Message]bool
	logger  logrus.FieldLogger
}

// NewBroadcaster relays every change on bus to SSE clients until the bus
// subscription is closed. A client whose buffer is full misses a change
// and sees the full state again with the next one.
func NewBroadcaster(bus *events.Bus[scoring.Change], logger logrus.FieldLogger) *Broadcaster {
	b := &Broadcaster{
		clients: make(map[chan Message]bool),
		logger:  logger.WithField("component", "broadcast"),
	}
	changes := bus.Subscribe()
	go func() {
		for ch := range changes {
			b.Relay(ch)
		}
	}()
	return b
}

// Relay sends the change's state, followed by a win event when the change
// ended a match.
func (b *Broadcaster) Relay(ch scoring.Change) {
	data, err := json.Marshal(ch)
	if err != nil {
		b.logger.WithError(err).Error("encoding change")
		return
	}
	b.Broadcast(EventState, string(data))
	if ch.Win != nil {
		win, _ := json.Marshal(ch.Win)
		b.Broadcast(EventWin, string(win))
	}
}

func (b *Broadcaster) Subscribe() chan Message {
	ch := make(chan Message, 10)
	b.mu.Lock()
	b.clients[ch] = true
	b.mu.Unlock()
	return ch
}

func (b *Broadcaster) Unsubscribe(ch chan Message) {
	b.mu.Lock()
	delete(b.clients, ch)
	b.mu.Unlock()
	close(ch)
}

func (b *Broadcaster) Clients() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.clients)
}

func (b *Broadcaster) Broadcast(event string, data string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.clients {
		select {
		case ch <- Message{Event: event, Data: data}:
		default:
			// skip clients with full data channels
		}
	}
}
