package websocket

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/huggnote/api/internal/model"
)

func receive(t *testing.T, c *Client) []byte {
	t.Helper()
	select {
	case msg := <-c.Send:
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("no message received")
	}
	return nil
}

func TestHubRoutesByOwner(t *testing.T) {
	h := NewHub()
	go h.Run()

	mine := &Client{Owner: "user-1", Send: make(chan []byte, 4)}
	other := &Client{Owner: "user-2", Send: make(chan []byte, 4)}
	h.Register(mine)
	h.Register(other)

	h.StateChanged("user-1", model.DashboardView{Credits: 3, CanCreate: true})

	var msg model.WSDashboardMessage
	if err := json.Unmarshal(receive(t, mine), &msg); err != nil {
		t.Fatal(err)
	}
	if msg.Type != model.WSMessageTypeDashboard || msg.View.Credits != 3 {
		t.Errorf("unexpected message %+v", msg)
	}

	select {
	case m := <-other.Send:
		t.Errorf("other owner received %s", m)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubSongFinished(t *testing.T) {
	h := NewHub()
	go h.Run()

	c := &Client{Owner: "user-1", Send: make(chan []byte, 4)}
	h.Register(c)
	h.SongFinished("user-1", model.Song{ID: "s1", Status: model.SongStatusReady})

	var msg model.WSSongMessage
	if err := json.Unmarshal(receive(t, c), &msg); err != nil {
		t.Fatal(err)
	}
	if msg.Type != model.WSMessageTypeSong || msg.Song.ID != "s1" {
		t.Errorf("unexpected message %+v", msg)
	}
}

func TestHubSongFailedSendsError(t *testing.T) {
	h := NewHub()
	go h.Run()

	c := &Client{Owner: "user-1", Send: make(chan []byte, 4)}
	h.Register(c)
	h.SongFinished("user-1", model.Song{ID: "s1", Title: "Song for Mia", Status: model.SongStatusFailedTimeout})

	receive(t, c) // song message

	var msg model.WSErrorMessage
	if err := json.Unmarshal(receive(t, c), &msg); err != nil {
		t.Fatal(err)
	}
	if msg.Type != model.WSMessageTypeError || msg.Error.Code != "GENERATION_FAILED" {
		t.Errorf("unexpected message %+v", msg)
	}
	if msg.Error.Message != "Song for Mia: Failed (Timeout)" {
		t.Errorf("unexpected error message %q", msg.Error.Message)
	}
}

func TestHubUnregisterClosesSend(t *testing.T) {
	h := NewHub()
	go h.Run()

	c := &Client{Owner: "user-1", Send: make(chan []byte, 1)}
	h.Register(c)
	waitConnected(t, h, "user-1", 1)
	h.Unregister(c)

	if _, ok := <-c.Send; ok {
		t.Error("expected send channel closed")
	}
	waitConnected(t, h, "user-1", 0)
}

func waitConnected(t *testing.T, h *Hub, owner string, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for h.Connected(owner) != want {
		if time.Now().After(deadline) {
			t.Fatalf("expected %d clients for %s, got %d", want, owner, h.Connected(owner))
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestReplyAfterEviction(t *testing.T) {
	h := NewHub()
	go h.Run()

	c := &Client{Owner: "user-1", Send: make(chan []byte, 1)}
	h.Register(c)
	waitConnected(t, h, "user-1", 1)

	if !h.reply(c, []byte(`{"type":"pong"}`)) {
		t.Fatal("expected reply to a registered client")
	}
	if got := string(receive(t, c)); got != `{"type":"pong"}` {
		t.Errorf("unexpected reply %s", got)
	}

	// slow consumer eviction closes Send
	h.mu.Lock()
	h.remove(c)
	h.mu.Unlock()

	if h.reply(c, []byte(`{"type":"pong"}`)) {
		t.Error("expected reply to report an evicted client")
	}
}
