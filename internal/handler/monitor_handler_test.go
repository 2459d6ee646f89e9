package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	ws "github.com/notsocj/SmartExam/internal/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Pings arriving mid-stream must not write to the connection from the
// reader goroutine: pong replies and relayed events both go out through
// the relay loop. This hammers both paths at once; run with -race.
func TestMonitorServeInterleavedPingsAndEvents(t *testing.T) {
	const eventCount = 50

	h := &MonitorHandler{
		log:      zerolog.Nop(),
		upgrader: buildUpgrader(nil),
	}

	events := make(chan *redis.Message)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	serverDone := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := h.upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()
		h.serve(ctx, conn, events)
		close(serverDone)
	}))
	defer srv.Close()

	client, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer client.Close()

	// Pump events while the client floods pings from its own goroutine.
	go func() {
		for i := 0; i < eventCount; i++ {
			payload, _ := json.Marshal(ws.ProctorEvent{
				Event:  ws.EventViolation,
				TestID: 1,
				UserID: i,
			})
			events <- &redis.Message{Payload: string(payload)}
		}
	}()
	go func() {
		for i := 0; i < eventCount; i++ {
			_ = client.WriteJSON(ws.RequestEnvelope{Action: ws.ActionPing})
		}
	}()

	gotEvents := 0
	gotPongs := 0
	for gotEvents < eventCount {
		client.SetReadDeadline(time.Now().Add(5 * time.Second))
		var frame struct {
			Event string `json:"event"`
		}
		if err := client.ReadJSON(&frame); err != nil {
			t.Fatalf("read after %d events, %d pongs: %v", gotEvents, gotPongs, err)
		}
		switch frame.Event {
		case string(ws.EventViolation):
			gotEvents++
		case string(ws.EventPong):
			gotPongs++
		default:
			t.Fatalf("unexpected frame event %q", frame.Event)
		}
	}

	cancel()
	select {
	case <-serverDone:
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not return after context cancel")
	}
}

// A malformed payload on the channel is logged and skipped, not fatal to
// the stream.
func TestMonitorServeSkipsMalformedEvents(t *testing.T) {
	h := &MonitorHandler{
		log:      zerolog.Nop(),
		upgrader: buildUpgrader(nil),
	}

	events := make(chan *redis.Message)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := h.upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()
		h.serve(ctx, conn, events)
	}))
	defer srv.Close()

	client, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer client.Close()

	go func() {
		events <- &redis.Message{Payload: "{not json"}
		payload, _ := json.Marshal(ws.ProctorEvent{Event: ws.EventTestSubmitted, TestID: 7, UserID: 3})
		events <- &redis.Message{Payload: string(payload)}
	}()

	client.SetReadDeadline(time.Now().Add(5 * time.Second))
	var got ws.ProctorEvent
	if err := client.ReadJSON(&got); err != nil {
		t.Fatalf("read: %v", err)
	}
	if got.Event != ws.EventTestSubmitted {
		t.Errorf("event = %q, want %q", got.Event, ws.EventTestSubmitted)
	}
	if got.TestID != 7 || got.UserID != 3 {
		t.Errorf("got %+v, want test 7 user 3", got)
	}
}
