package wshub

import (
	"context"
	"encoding/json"
	"io"
	"testing"
	"time"

	"cribscore/internal/events"
	"cribscore/internal/kv"
	"cribscore/internal/scoring"

	"github.com/sirupsen/logrus"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newTestSession(t *testing.T, bus *events.Bus[scoring.Change]) *scoring.Session {
	t.Helper()
	store, err := scoring.NewStore(context.Background(), scoring.NewKVPersistence(kv.NewMemory(), quietLogger()), quietLogger())
	if err != nil {
		t.Fatalf("NewStore() error: %v", err)
	}
	return scoring.NewSession(store, bus)
}

func recv(t *testing.T, c *Client) ServerMessage {
	t.Helper()
	select {
	case data := <-c.Send:
		var got ServerMessage
		if err := json.Unmarshal(data, &got); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		return got
	case <-time.After(time.Second):
		t.Fatalf("client %s did not receive message", c.ID)
	}
	return ServerMessage{}
}

func TestRegisterAndBroadcast(t *testing.T) {
	h := NewHub(quietLogger())

	c1 := &Client{ID: "c1", Send: make(chan []byte, 16)}
	c2 := &Client{ID: "c2", Send: make(chan []byte, 16)}
	h.Register(c1)
	h.Register(c2)

	h.Broadcast(ServerMessage{Type: TypeState, State: &scoring.State{Player1MainScore: 12}})

	for _, c := range []*Client{c1, c2} {
		got := recv(t, c)
		if got.Type != TypeState || got.State == nil || got.State.Player1MainScore != 12 {
			t.Fatalf("unexpected message: %+v", got)
		}
	}
}

func TestUnregisterClosesSend(t *testing.T) {
	h := NewHub(quietLogger())
	c1 := &Client{ID: "c1", Send: make(chan []byte, 16)}
	h.Register(c1)

	h.Unregister("c1")

	if _, ok := <-c1.Send; ok {
		t.Fatal("c1.Send should be closed")
	}
	if h.Len() != 0 {
		t.Errorf("Len = %d, want 0", h.Len())
	}
}

func TestUnregisterNonexistent(t *testing.T) {
	h := NewHub(quietLogger())
	// Should not panic
	h.Unregister("nonexistent")
}

func TestBroadcastDropsWhenFull(t *testing.T) {
	h := NewHub(quietLogger())

	// Channel with capacity 1
	c := &Client{ID: "c1", Send: make(chan []byte, 1)}
	h.Register(c)
	c.Send <- []byte("filler")

	// This should not block, message dropped
	h.Broadcast(ServerMessage{Type: TypeState})

	data := <-c.Send
	if string(data) != "filler" {
		t.Fatalf("expected filler, got: %s", data)
	}
	select {
	case <-c.Send:
		t.Fatal("should be empty after draining filler")
	default:
	}
}

func TestSendTo(t *testing.T) {
	h := NewHub(quietLogger())
	c1 := &Client{ID: "c1", Send: make(chan []byte, 4)}
	c2 := &Client{ID: "c2", Send: make(chan []byte, 4)}
	h.Register(c1)
	h.Register(c2)

	h.SendTo("c2", ServerMessage{Type: TypeError, Error: "bad"})

	got := recv(t, c2)
	if got.Type != TypeError || got.Error != "bad" {
		t.Fatalf("unexpected message: %+v", got)
	}
	select {
	case <-c1.Send:
		t.Fatal("c1 should not receive a targeted message")
	default:
	}
}

func TestRelayPushesSessionChanges(t *testing.T) {
	bus := events.NewBus[scoring.Change](16)
	h := NewHub(quietLogger())
	h.Relay(bus)
	c := &Client{ID: "c1", Send: make(chan []byte, 16)}
	h.Register(c)
	s := newTestSession(t, bus)
	ctx := context.Background()

	if _, err := Apply(ctx, s, ClientMessage{Type: TypeAdd, Player: 1, Delta: 4}); err != nil {
		t.Fatalf("Apply(add) error: %v", err)
	}
	if _, err := Apply(ctx, s, ClientMessage{Type: TypeCommit, Player: 1}); err != nil {
		t.Fatalf("Apply(commit) error: %v", err)
	}

	add := recv(t, c)
	if add.Action != string(scoring.ActionAdd) || add.State.Player1FloatingScore != 4 {
		t.Errorf("unexpected add push: %+v", add)
	}
	commit := recv(t, c)
	if commit.Action != string(scoring.ActionCommit) || commit.State.Player1MainScore != 4 {
		t.Errorf("unexpected commit push: %+v", commit)
	}
}

func TestApply(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(t, nil)

	st, err := Apply(ctx, s, ClientMessage{Type: TypeCreate, Name: "A vs B"})
	if err != nil {
		t.Fatalf("Apply(create) error: %v", err)
	}
	if st.GameName != "A vs B" {
		t.Errorf("GameName = %q, want %q", st.GameName, "A vs B")
	}
	created := st.ActiveGameID

	first := s.Games()[0].ID
	st, _ = Apply(ctx, s, ClientMessage{Type: TypeSwitch, GameID: first})
	if st.ActiveGameID != first {
		t.Errorf("ActiveGameID = %q, want %q", st.ActiveGameID, first)
	}
	if st.ActiveGameID == created {
		t.Error("switch did not change the active game")
	}

	Apply(ctx, s, ClientMessage{Type: TypeAdd, Player: 2, Delta: 3})
	st, _ = Apply(ctx, s, ClientMessage{Type: TypeReset})
	if st.Player2FloatingScore != 0 {
		t.Errorf("Player2FloatingScore = %d after reset, want 0", st.Player2FloatingScore)
	}

	if _, err := Apply(ctx, s, ClientMessage{Type: TypeResetWins}); err != nil {
		t.Errorf("Apply(resetWins) error: %v", err)
	}
	if _, err := Apply(ctx, s, ClientMessage{Type: TypeAdd, Player: 5, Delta: 1}); err == nil {
		t.Error("Apply should reject an invalid player")
	}
	if _, err := Apply(ctx, s, ClientMessage{Type: "peg"}); err == nil {
		t.Error("Apply should reject an unknown type")
	}
}

func TestLaggingClientCatchesUpOnNextPush(t *testing.T) {
	h := NewHub(quietLogger())
	c := &Client{ID: "c1", Send: make(chan []byte, 1)}
	h.Register(c)
	c.Send <- []byte("filler")

	h.Broadcast(ServerMessage{Type: TypeState, State: &scoring.State{Player1FloatingScore: 4}})
	<-c.Send
	h.Broadcast(ServerMessage{Type: TypeState, State: &scoring.State{Player1FloatingScore: 5, Player2MainScore: 9}})

	got := recv(t, c)
	if got.State == nil || got.State.Player1FloatingScore != 5 || got.State.Player2MainScore != 9 {
		t.Fatalf("expected the latest full state, got %+v", got.State)
	}
}
