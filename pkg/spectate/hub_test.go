package spectate

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/QYUbit/Tickline/pkg/protocol"
)

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func testSnapshot() *protocol.GameStateMessage {
	snap := &protocol.GameStateMessage{CountdownTimer: 1.5, CurrentWave: 2, WaveActive: true}

	cs := protocol.ClientState{ClientID: 1, X: 100, Y: 200}
	cs.AddMissile(protocol.Missile{Position: protocol.Vector2{X: 150, Y: 210}, CurrentFrame: 3})
	snap.AddClient(cs)
	snap.AddClient(protocol.ClientState{ClientID: 2, X: 300, Y: 400})

	snap.AddMob(protocol.MobState{ID: 7, X: 500, Y: 80, Active: true})
	snap.AddMob(protocol.MobState{ID: 8, Active: false})
	return snap
}

func TestPublishReachesSpectators(t *testing.T) {
	hub := NewHub(Config{})
	srv := httptest.NewServer(hub)
	defer srv.Close()
	defer hub.Close()

	a := dial(t, srv)
	b := dial(t, srv)
	waitFor(t, func() bool { return hub.Count() == 2 })

	hub.Publish(42, testSnapshot())

	for _, conn := range []*websocket.Conn{a, b} {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		typ, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatal(err)
		}
		if typ != websocket.BinaryMessage {
			t.Errorf("expected binary frame, got %d", typ)
		}

		var f Frame
		if err := msgpack.Unmarshal(data, &f); err != nil {
			t.Fatal(err)
		}

		if f.Tick != 42 || f.Wave != 2 || !f.WaveActive || f.Countdown != 1.5 {
			t.Errorf("unexpected header %+v", f)
		}
		if len(f.Players) != 2 || f.Players[0].ID != 1 || f.Players[1].X != 300 {
			t.Errorf("unexpected players %+v", f.Players)
		}
		if len(f.Players[0].Missiles) != 1 || f.Players[0].Missiles[0].Frame != 3 {
			t.Errorf("unexpected missiles %+v", f.Players[0].Missiles)
		}
		if len(f.Mobs) != 1 || f.Mobs[0].ID != 7 {
			t.Errorf("expected only the active mob, got %+v", f.Mobs)
		}
	}
}

func TestSpectatorLeaves(t *testing.T) {
	hub := NewHub(Config{})
	srv := httptest.NewServer(hub)
	defer srv.Close()
	defer hub.Close()

	conn := dial(t, srv)
	waitFor(t, func() bool { return hub.Count() == 1 })

	conn.Close()
	waitFor(t, func() bool { return hub.Count() == 0 })

	hub.Publish(1, testSnapshot())
}

func TestPublishDropsWhenQueueFull(t *testing.T) {
	hub := NewHub(Config{QueueSize: 1})
	sub := &subscriber{send: make(chan []byte, 1), done: make(chan struct{})}
	hub.add(sub)

	hub.Publish(1, testSnapshot())
	hub.Publish(2, testSnapshot())
	hub.Publish(3, testSnapshot())

	if got := hub.Dropped(); got != 2 {
		t.Errorf("expected 2 dropped frames, got %d", got)
	}
	if len(sub.send) != 1 {
		t.Errorf("expected one queued frame, got %d", len(sub.send))
	}
}

func TestCloseDisconnectsSpectators(t *testing.T) {
	hub := NewHub(Config{})
	srv := httptest.NewServer(hub)
	defer srv.Close()

	conn := dial(t, srv)
	waitFor(t, func() bool { return hub.Count() == 1 })

	hub.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := conn.ReadMessage()
	if !websocket.IsCloseError(err, websocket.CloseGoingAway) {
		t.Errorf("expected going-away close, got %v", err)
	}

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("expected 503 after close, got %d", resp.StatusCode)
	}
}
