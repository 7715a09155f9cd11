package api

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"scenicnav/internal/model"
	"scenicnav/internal/planner"
)

// WebSocket plan stream: candidates are pushed as they are scored, followed
// by the ranked response.

var upgrader = websocket.Upgrader{CheckOrigin: func(_ *http.Request) bool { return true }}

type wsMessage struct {
	Type    string          `json:"type"`
	ID      string          `json:"id,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// PlanStreamHandler handles /v1/plans/stream.
//
// Protocol (graphql-transport-ws shaped): the client sends connection_init,
// then any number of plan.request messages carrying a PlanRequest payload.
// For each request the server emits plan.candidate messages as candidates
// are scored, one plan.done with the ranked response, and a final complete.
// Events travel through the broker, so with the Redis broker a plan computed
// on another node still reaches this socket.
func (s *Server) PlanStreamHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer func() { _ = conn.Close() }()

	conn.SetReadLimit(1 << 20)
	_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error { _ = conn.SetReadDeadline(time.Now().Add(60 * time.Second)); return nil })

	// gorilla allows one concurrent writer; keepalive and fanout share.
	var writeMu sync.Mutex
	write := func(v any) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		return conn.WriteJSON(v)
	}

	type stream struct {
		topic string
		ch    chan StreamEvent
	}
	var streamsMu sync.Mutex
	streams := map[string]stream{}
	drop := func(id, topic string) {
		streamsMu.Lock()
		defer streamsMu.Unlock()
		if st, ok := streams[id]; ok && (topic == "" || st.topic == topic) {
			s.Broker.Unsubscribe(st.topic, st.ch)
			delete(streams, id)
		}
	}

	for {
		var msg wsMessage
		if err := conn.ReadJSON(&msg); err != nil {
			break
		}
		switch msg.Type {
		case "connection_init":
			_ = write(wsMessage{Type: "connection_ack"})
			go func() {
				ticker := time.NewTicker(20 * time.Second)
				defer ticker.Stop()
				for range ticker.C {
					if err := write(wsMessage{Type: "ping"}); err != nil {
						return
					}
				}
			}()
		case "ping":
			_ = write(wsMessage{Type: "pong"})
		case "plan.request":
			var req model.PlanRequest
			if err := json.Unmarshal(msg.Payload, &req); err != nil {
				_ = write(errMessage(msg.ID, "invalid plan request payload"))
				_ = write(wsMessage{Type: "complete", ID: msg.ID})
				continue
			}
			topic := uuid.NewString()
			ch := s.Broker.Subscribe(topic)
			streamsMu.Lock()
			streams[msg.ID] = stream{topic: topic, ch: ch}
			streamsMu.Unlock()

			// Fanout: broker events -> socket.
			go func(id string, c chan StreamEvent) {
				for evt := range c {
					_ = write(wsMessage{Type: evt.Type, ID: id, Payload: evt.Payload})
				}
				_ = write(wsMessage{Type: "complete", ID: id})
			}(msg.ID, ch)

			// Compute off the read loop so the socket stays responsive.
			go func(id, topic string, req model.PlanRequest) {
				_, err := s.Planner.Plan(r.Context(), req, func(e planner.Event) {
					s.publishEvent(topic, e)
				})
				if err != nil {
					payload, _ := json.Marshal(map[string]string{"message": err.Error()})
					s.Broker.Publish(topic, StreamEvent{Type: "error", Payload: payload})
				}
				drop(id, topic)
			}(msg.ID, topic, req)
		case "complete":
			drop(msg.ID, "")
		default:
			// ignore
		}
	}
	streamsMu.Lock()
	for id, st := range streams {
		s.Broker.Unsubscribe(st.topic, st.ch)
		delete(streams, id)
	}
	streamsMu.Unlock()
}

func (s *Server) publishEvent(topic string, e planner.Event) {
	var payload []byte
	switch {
	case e.Candidate != nil:
		payload, _ = json.Marshal(e.Candidate)
	case e.Response != nil:
		payload, _ = json.Marshal(e.Response)
	}
	s.Broker.Publish(topic, StreamEvent{Type: e.Type, Payload: payload})
}

func errMessage(id, detail string) wsMessage {
	payload, _ := json.Marshal(map[string]string{"message": detail})
	return wsMessage{Type: "error", ID: id, Payload: payload}
}
