package websocket

import (
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/AlekseevDev/tapper-game/internal/domain"
)

func newTestHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)))
	go hub.Run()
	t.Cleanup(hub.Stop)
	return hub
}

func newTestClient() *Client {
	return &Client{
		id:   "test-client",
		send: make(chan []byte, 64),
	}
}

func TestRegisterUnregister(t *testing.T) {
	hub := newTestHub(t)

	if hub.SubscriberCount() != 0 {
		t.Errorf("fresh hub count = %d, want 0", hub.SubscriberCount())
	}

	client := newTestClient()
	hub.Register(client)
	waitForCount(t, hub, 1)

	hub.Unregister(client)
	waitForCount(t, hub, 0)

	// The hub closes the send channel on unregister
	select {
	case _, ok := <-client.send:
		if ok {
			t.Error("send channel delivered a frame after unregister")
		}
	case <-time.After(time.Second):
		t.Error("send channel not closed after unregister")
	}
}

func TestBroadcastLeaderboard(t *testing.T) {
	hub := newTestHub(t)

	client := newTestClient()
	hub.Register(client)
	waitForCount(t, hub, 1)

	entries := []domain.LeaderboardEntry{
		{UserID: 2, Nickname: "B", TapsPerMinute: 200, TotalTaps: 50},
		{UserID: 1, Nickname: "A", TapsPerMinute: 100, TotalTaps: 10},
	}
	hub.BroadcastLeaderboard(entries)

	select {
	case frame := <-client.send:
		var msg Message
		if err := json.Unmarshal(frame, &msg); err != nil {
			t.Fatalf("decoding frame: %v", err)
		}
		if msg.Type != MessageTypeLeaderboard {
			t.Errorf("type = %q, want %q", msg.Type, MessageTypeLeaderboard)
		}
		if msg.Timestamp.IsZero() {
			t.Error("frame missing timestamp")
		}
		raw, _ := json.Marshal(msg.Data)
		var got []domain.LeaderboardEntry
		if err := json.Unmarshal(raw, &got); err != nil {
			t.Fatalf("decoding entries: %v", err)
		}
		if len(got) != 2 || got[0].UserID != 2 {
			t.Errorf("entries = %+v", got)
		}
	case <-time.After(time.Second):
		t.Fatal("no frame delivered to client")
	}
}

func waitForCount(t *testing.T, hub *Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if hub.SubscriberCount() == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("subscriber count = %d, want %d", hub.SubscriberCount(), want)
}
