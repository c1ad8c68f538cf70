package events

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, data []byte) Event {
	t.Helper()
	var ev Event
	require.NoError(t, json.Unmarshal(data, &ev))
	return ev
}

func TestPublishDeliversToTopicOnly(t *testing.T) {
	h := NewHub()
	a, cancelA := h.Subscribe("a")
	defer cancelA()
	b, cancelB := h.Subscribe("b")
	defer cancelB()

	h.Publish("a", Event{SessionID: "a", State: "analyzing", Status: "Analyzing..."})

	select {
	case msg := <-a:
		ev := decode(t, msg)
		assert.Equal(t, "Analyzing...", ev.Status)
		assert.False(t, ev.At.IsZero())
	case <-time.After(time.Second):
		t.Fatal("no event delivered")
	}
	select {
	case <-b:
		t.Fatal("event leaked to another topic")
	default:
	}
	assert.Equal(t, uint64(1), h.Published())
}

func TestSlowSubscriberIsDropped(t *testing.T) {
	h := NewHub()
	ch, cancel := h.Subscribe("s")
	defer cancel()

	for i := 0; i < sendBuffer+1; i++ {
		h.Publish("s", Event{SessionID: "s"})
	}
	assert.Equal(t, 0, h.Subscribers("s"))

	n := 0
	for range ch {
		n++
	}
	assert.Equal(t, sendBuffer, n)
}

func TestCancelClosesChannel(t *testing.T) {
	h := NewHub()
	ch, cancel := h.Subscribe("s")
	cancel()
	cancel()
	_, ok := <-ch
	assert.False(t, ok)
	assert.Equal(t, 0, h.Subscribers("s"))
}

func TestServeStreamsEvents(t *testing.T) {
	h := NewHub()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = h.Serve(w, r, "sess", &Event{SessionID: "sess", State: "idle"})
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, first, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, "idle", decode(t, first).State)

	require.Eventually(t, func() bool { return h.Subscribers("sess") == 1 }, time.Second, 10*time.Millisecond)
	h.Publish("sess", Event{SessionID: "sess", State: "done", Status: "Done"})

	_, next, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, "Done", decode(t, next).Status)
}
