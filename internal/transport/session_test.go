package transport

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/glassdash/livesync/internal/backoff"
	"github.com/glassdash/livesync/internal/protocol"
	"github.com/glassdash/livesync/internal/stream"
	"github.com/glassdash/livesync/internal/subscription"
)

func testSessionConfig(url string) SessionConfig {
	cfg := DefaultSessionConfig()
	cfg.URL = url
	cfg.FlushInterval = 10 * time.Millisecond
	return cfg
}

func fastPolicy() backoff.Policy {
	return backoff.Policy{
		Enabled:      true,
		InitialDelay: 10 * time.Millisecond,
		MaxDelay:     50 * time.Millisecond,
		Multiplier:   2.0,
	}
}

// collect decodes every inbound message on a server connection into ch.
func collect(conn *websocket.Conn, ch chan<- protocol.Message) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if msg, err := protocol.Decode(data); err == nil {
			ch <- msg
		}
	}
}

func waitFor(t *testing.T, ch <-chan protocol.Message, want protocol.Type) protocol.Message {
	t.Helper()
	deadline := time.After(3 * time.Second)
	for {
		select {
		case msg := <-ch:
			if msg.Type == want {
				return msg
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %s message", want)
		}
	}
}

func TestSession_StartFailure(t *testing.T) {
	ds := stream.New(fastPolicy())
	s := NewSession(testSessionConfig("ws://127.0.0.1:1/stream"), ds, nil)

	if err := s.Start(context.Background()); err == nil {
		t.Fatal("Start against dead address succeeded")
	}
	if ds.State() != stream.Disconnected {
		t.Errorf("State() = %s, want disconnected", ds.State())
	}
}

func TestSession_SubscribeReachesServer(t *testing.T) {
	inbound := make(chan protocol.Message, 64)
	server := mockServer(t, func(conn *websocket.Conn) {
		collect(conn, inbound)
	})
	defer server.Close()

	ds := stream.New(fastPolicy())
	s := NewSession(testSessionConfig(wsURL(server)), ds, nil)

	id := ds.Subscribe(subscription.New("metrics/cpu"))

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer s.Stop(context.Background())

	if ds.State() != stream.Connected {
		t.Errorf("State() = %s, want connected", ds.State())
	}

	msg := waitFor(t, inbound, protocol.TypeSubscribe)
	if msg.ID != id || msg.Source != "metrics/cpu" {
		t.Errorf("subscribe on wire = %+v", msg)
	}
}

func TestSession_PingGetsPong(t *testing.T) {
	inbound := make(chan protocol.Message, 64)
	server := mockServer(t, func(conn *websocket.Conn) {
		ping, _ := protocol.Encode(protocol.Ping(424242))
		conn.WriteMessage(websocket.TextMessage, ping)
		collect(conn, inbound)
	})
	defer server.Close()

	ds := stream.New(fastPolicy())
	s := NewSession(testSessionConfig(wsURL(server)), ds, nil)
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer s.Stop(context.Background())

	pong := waitFor(t, inbound, protocol.TypePong)
	if pong.Timestamp != 424242 {
		t.Errorf("pong timestamp = %d, want 424242", pong.Timestamp)
	}
}

func TestSession_DataReachesCache(t *testing.T) {
	sub := subscription.New("metrics/cpu")

	server := mockServer(t, func(conn *websocket.Conn) {
		data, _ := protocol.Encode(protocol.Data(sub.ID, json.RawMessage(`{"load":0.7}`), 1))
		conn.WriteMessage(websocket.TextMessage, data)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})
	defer server.Close()

	ds := stream.New(fastPolicy())
	s := NewSession(testSessionConfig(wsURL(server)), ds, nil)
	ds.Subscribe(sub)

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer s.Stop(context.Background())

	deadline := time.Now().Add(3 * time.Second)
	for {
		if payload, ok := ds.GetData(sub.ID); ok {
			if string(payload) != `{"load":0.7}` {
				t.Errorf("cached payload = %s", payload)
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("data never reached cache")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestSession_MalformedFrameIgnored(t *testing.T) {
	sub := subscription.New("metrics/cpu")

	server := mockServer(t, func(conn *websocket.Conn) {
		conn.WriteMessage(websocket.TextMessage, []byte("not json"))
		data, _ := protocol.Encode(protocol.Data(sub.ID, json.RawMessage(`1`), 1))
		conn.WriteMessage(websocket.TextMessage, data)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})
	defer server.Close()

	ds := stream.New(fastPolicy())
	s := NewSession(testSessionConfig(wsURL(server)), ds, nil)
	ds.Subscribe(sub)

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer s.Stop(context.Background())

	deadline := time.Now().Add(3 * time.Second)
	for {
		if _, ok := ds.GetData(sub.ID); ok {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("valid frame after garbage never applied")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestSession_ReconnectResubscribes(t *testing.T) {
	var conns atomic.Int32
	inbound := make(chan protocol.Message, 64)

	server := mockServer(t, func(conn *websocket.Conn) {
		n := conns.Add(1)
		if n == 1 {
			// Accept the first subscribe, then drop the link.
			conn.ReadMessage()
			return
		}
		collect(conn, inbound)
	})
	defer server.Close()

	ds := stream.New(fastPolicy())
	s := NewSession(testSessionConfig(wsURL(server)), ds, nil)
	id := ds.Subscribe(subscription.New("metrics/cpu"))

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer s.Stop(context.Background())

	// The second connection must see a fresh subscribe: the server
	// forgot everything when the first link dropped.
	msg := waitFor(t, inbound, protocol.TypeSubscribe)
	if msg.ID != id {
		t.Errorf("resubscribe id = %s, want %s", msg.ID, id)
	}
	if conns.Load() < 2 {
		t.Errorf("connection count = %d, want >= 2", conns.Load())
	}
	if ds.State() != stream.Connected {
		t.Errorf("State() = %s, want connected after reconnect", ds.State())
	}
}

func TestSession_StopDisconnects(t *testing.T) {
	server := mockServer(t, func(conn *websocket.Conn) {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})
	defer server.Close()

	ds := stream.New(fastPolicy())
	s := NewSession(testSessionConfig(wsURL(server)), ds, nil)
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.Stop(ctx); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if ds.State() != stream.Disconnected {
		t.Errorf("State() = %s, want disconnected", ds.State())
	}
}
