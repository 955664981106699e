package server

import (
	"encoding/json"
	"net/http"

	"cribscore/internal/wshub"

	"github.com/coder/websocket"
	"github.com/google/uuid"
)

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		s.Logger.WithError(err).Warn("websocket accept")
		return
	}
	defer conn.CloseNow()

	ctx := r.Context()
	client := &wshub.Client{
		ID:   uuid.NewString(),
		Conn: conn,
		Send: make(chan []byte, 32),
	}
	s.Hub.Register(client)
	defer s.Hub.Unregister(client.ID)

	st := s.Session.State()
	s.Hub.SendTo(client.ID, wshub.ServerMessage{Type: wshub.TypeState, State: &st})

	go client.WritePump(ctx)

	log := s.Logger.WithField("client", client.ID)
	log.Debug("websocket connected")

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			log.WithError(err).Debug("websocket closed")
			return
		}

		var msg wshub.ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			s.Hub.SendTo(client.ID, wshub.ServerMessage{Type: wshub.TypeError, Error: "invalid message"})
			continue
		}
		if _, err := wshub.Apply(ctx, s.Session, msg); err != nil {
			log.WithError(err).WithField("type", msg.Type).Warn("websocket message failed")
			s.Hub.SendTo(client.ID, wshub.ServerMessage{Type: wshub.TypeError, Error: err.Error()})
		}
	}
}
