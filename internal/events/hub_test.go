package events

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mmynk/splitchat/internal/models"
)

// dialHub spins up a test server that subscribes every connection to the
// given group and returns a connected client.
func dialHub(t *testing.T, hub *Hub, groupID string) *websocket.Conn {
	t.Helper()

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		sub := hub.Subscribe(groupID, conn)
		defer sub.Close()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

// waitForSubscriber blocks until the server goroutine has registered the
// connection with the hub.
func waitForSubscriber(t *testing.T, hub *Hub, groupID string) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for {
		hub.mu.RLock()
		n := len(hub.subs[groupID])
		hub.mu.RUnlock()
		if n == 1 {
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("subscription never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestHubDeliversEventsInOrder(t *testing.T) {
	hub := NewHub()
	conn := dialHub(t, hub, "g1")

	waitForSubscriber(t, hub, "g1")

	for seq := int64(1); seq <= 3; seq++ {
		hub.Publish(Event{
			Type:        TypeMessage,
			GroupID:     "g1",
			Seq:         seq,
			Transaction: &models.Transaction{ID: "t", GroupID: "g1", Seq: seq},
		})
	}

	_ = conn.SetReadDeadline(time.Now().Add(time.Second))
	for want := int64(1); want <= 3; want++ {
		var ev Event
		if err := conn.ReadJSON(&ev); err != nil {
			t.Fatalf("read failed at seq %d: %v", want, err)
		}
		if ev.Seq != want {
			t.Errorf("seq = %d, want %d", ev.Seq, want)
		}
		if ev.Type != TypeMessage {
			t.Errorf("type = %q, want %q", ev.Type, TypeMessage)
		}
	}
}

func TestHubScopesEventsToGroup(t *testing.T) {
	hub := NewHub()
	conn := dialHub(t, hub, "g1")

	waitForSubscriber(t, hub, "g1")

	hub.Publish(Event{Type: TypeExpense, GroupID: "g2", Seq: 1})
	hub.Publish(Event{Type: TypeExpense, GroupID: "g1", Seq: 2})

	_ = conn.SetReadDeadline(time.Now().Add(time.Second))
	var ev Event
	if err := conn.ReadJSON(&ev); err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if ev.GroupID != "g1" || ev.Seq != 2 {
		t.Errorf("got event for %s/%d, want g1/2", ev.GroupID, ev.Seq)
	}
}

func TestHubDropsClosedSubscribers(t *testing.T) {
	hub := NewHub()
	conn := dialHub(t, hub, "g1")

	waitForSubscriber(t, hub, "g1")

	conn.Close()

	// Publishing to a closed connection eventually evicts it.
	deadline := time.Now().Add(2 * time.Second)
	for {
		hub.Publish(Event{Type: TypeMessage, GroupID: "g1", Seq: 1})
		hub.mu.RLock()
		n := len(hub.subs["g1"])
		hub.mu.RUnlock()
		if n == 0 {
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("closed subscriber never dropped")
		}
		time.Sleep(10 * time.Millisecond)
	}
}
