package events

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"demystifier-backend/internal/shared/telemetry"
)

const (
	sendBuffer = 32
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
)

// Event is one status transition of a session.
type Event struct {
	SessionID  string    `json:"sessionId"`
	Generation uint64    `json:"generation"`
	State      string    `json:"state"`
	Status     string    `json:"status"`
	CanAnalyze bool      `json:"canAnalyze"`
	Code       string    `json:"code,omitempty"`
	At         time.Time `json:"at"`
}

// Hub fans events out to subscribers by session id. A subscriber whose
// buffer is full is dropped rather than blocking the publisher.
type Hub struct {
	mu     sync.RWMutex
	topics map[string]map[*subscriber]struct{}
	seq    uint64
}

type subscriber struct {
	send chan []byte
	once sync.Once
}

func (s *subscriber) close() {
	s.once.Do(func() { close(s.send) })
}

// NewHub constructs an empty Hub.
func NewHub() *Hub {
	return &Hub{topics: make(map[string]map[*subscriber]struct{})}
}

// Publish serializes ev and delivers it to every subscriber of topic.
func (h *Hub) Publish(topic string, ev Event) {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	data, err := json.Marshal(ev)
	if err != nil {
		telemetry.Error("events.serialize_failed", map[string]any{"error": err})
		return
	}

	var dropped []*subscriber
	h.mu.RLock()
	for sub := range h.topics[topic] {
		select {
		case sub.send <- data:
		default:
			dropped = append(dropped, sub)
		}
	}
	h.mu.RUnlock()

	h.mu.Lock()
	h.seq++
	for _, sub := range dropped {
		h.removeLocked(topic, sub)
	}
	h.mu.Unlock()
	if len(dropped) > 0 {
		telemetry.Warn("events.subscriber_dropped", map[string]any{"sessionId": topic, "count": len(dropped)})
	}
}

// Subscribe registers a subscriber for topic. The returned channel is closed
// by cancel or when the subscriber falls behind.
func (h *Hub) Subscribe(topic string) (<-chan []byte, func()) {
	sub := &subscriber{send: make(chan []byte, sendBuffer)}
	h.mu.Lock()
	subs, ok := h.topics[topic]
	if !ok {
		subs = make(map[*subscriber]struct{})
		h.topics[topic] = subs
	}
	subs[sub] = struct{}{}
	h.mu.Unlock()
	return sub.send, func() {
		h.mu.Lock()
		h.removeLocked(topic, sub)
		h.mu.Unlock()
	}
}

func (h *Hub) removeLocked(topic string, sub *subscriber) {
	subs := h.topics[topic]
	if _, ok := subs[sub]; !ok {
		return
	}
	delete(subs, sub)
	sub.close()
	if len(subs) == 0 {
		delete(h.topics, topic)
	}
}

// Close drops every subscriber of topic.
func (h *Hub) Close(topic string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.topics[topic] {
		h.removeLocked(topic, sub)
	}
}

// Subscribers returns the number of subscribers of topic.
func (h *Hub) Subscribers(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topics[topic])
}

// Published returns the number of Publish calls.
func (h *Hub) Published() uint64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.seq
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Serve upgrades the request and streams topic's events until the client
// disconnects. initial, when non-nil, is sent first.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, topic string, initial *Event) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	ch, cancel := h.Subscribe(topic)
	if initial != nil {
		if data, err := json.Marshal(initial); err == nil {
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = conn.WriteMessage(websocket.TextMessage, data)
		}
	}
	go readPump(conn, cancel)
	go writePump(conn, ch)
	return nil
}

// readPump discards client messages and unsubscribes on disconnect.
func readPump(conn *websocket.Conn, cancel func()) {
	defer func() {
		cancel()
		_ = conn.Close()
	}()
	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				telemetry.Warn("events.read_failed", map[string]any{"error": err})
			}
			return
		}
	}
}

func writePump(conn *websocket.Conn, ch <-chan []byte) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = conn.Close()
	}()
	for {
		select {
		case msg, ok := <-ch:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
