// MapAdmin - Map Configuration Backend and Live Admin Presence
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mapadmin

package websocket

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	"github.com/tomtom215/mapadmin/internal/config"
	"github.com/tomtom215/mapadmin/internal/models"
	"github.com/tomtom215/mapadmin/internal/presence"
)

const testGreeting = "Connected to MapAdmin presence socket"

type wireFrame struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func testWebSocketConfig() config.WebSocketConfig {
	return config.WebSocketConfig{
		SendBuffer:        64,
		MaxMessageSize:    64 * 1024,
		MessagesPerSecond: 1000,
		Burst:             1000,
		Greeting:          testGreeting,
		StatsInterval:     time.Hour,
	}
}

// setupHubServer serves hub.Accept behind an httptest server.
func setupHubServer(t *testing.T, store ResourceStore, cfg config.WebSocketConfig) (*Hub, *httptest.Server) {
	t.Helper()

	registry := presence.NewRegistry()
	hub := NewHub(registry, NewRouter(registry, store, false), cfg)
	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		_, _ = hub.Accept(conn) //nolint:errcheck // Accept closes conn on failure
	}))
	t.Cleanup(server.Close)
	return hub, server
}

// dialAdmin connects and consumes the greeting.
func dialAdmin(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("failed to dial: %v", err)
	}
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	messageType, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("failed to read greeting: %v", err)
	}
	if messageType != websocket.TextMessage || string(data) != testGreeting {
		t.Fatalf("greeting = %q, want %q", data, testGreeting)
	}
	return conn
}

func sendFrame(t *testing.T, conn *websocket.Conn, frame string) {
	t.Helper()
	if err := conn.WriteMessage(websocket.TextMessage, []byte(frame)); err != nil {
		t.Fatalf("failed to write frame: %v", err)
	}
}

func readFrame(t *testing.T, conn *websocket.Conn) wireFrame {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("failed to read frame: %v", err)
	}
	var f wireFrame
	if err := json.Unmarshal(data, &f); err != nil {
		t.Fatalf("frame is not JSON: %q", data)
	}
	return f
}

func register(t *testing.T, conn *websocket.Conn, userID, userName string) string {
	t.Helper()
	sendFrame(t, conn, `{"type":"register","payload":{"userId":"`+userID+`","userName":"`+userName+`"}}`)
	if f := readFrame(t, conn); f.Type != models.MessageTypeAdminSync {
		t.Fatalf("first frame after register = %q, want admin-sync", f.Type)
	}
	f := readFrame(t, conn)
	if f.Type != models.MessageTypeRegistered {
		t.Fatalf("second frame after register = %q, want registered", f.Type)
	}
	var ack models.Registered
	if err := json.Unmarshal(f.Payload, &ack); err != nil {
		t.Fatalf("bad registered payload: %v", err)
	}
	if ack.ConnectionID == "" {
		t.Fatal("registered without a connection id")
	}
	return ack.ConnectionID
}

// expectPong sends a ping and requires the very next frame to be pong.
// Frames are written in order, so nothing else was queued before it.
func expectPong(t *testing.T, conn *websocket.Conn) {
	t.Helper()
	sendFrame(t, conn, `{"type":"ping"}`)
	if f := readFrame(t, conn); f.Type != models.MessageTypePong {
		t.Fatalf("expected pong, got %q (%s)", f.Type, f.Payload)
	}
}

func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal(msg)
}

func TestHub_AcceptGreetsAndTracks(t *testing.T) {
	hub, server := setupHubServer(t, nil, testWebSocketConfig())

	dialAdmin(t, server)
	waitFor(t, func() bool { return hub.ClientCount() == 1 }, "client was not tracked")
	if hub.Registry().ConnectionCount() != 1 {
		t.Errorf("registry connections = %d, want 1", hub.Registry().ConnectionCount())
	}
}

func TestHub_RegisterAndJoinAcrossSockets(t *testing.T) {
	_, server := setupHubServer(t, nil, testWebSocketConfig())

	a := dialAdmin(t, server)
	b := dialAdmin(t, server)
	register(t, a, "u1", "Alice")
	register(t, b, "u2", "Bob")

	sendFrame(t, a, `{"type":"presence-update","payload":{"resourceType":"map","resourceId":"42"}}`)

	f := readFrame(t, b)
	if f.Type != models.MessageTypePresenceJoin {
		t.Fatalf("B got %q, want presence-join", f.Type)
	}
	var claim models.PresenceClaim
	if err := json.Unmarshal(f.Payload, &claim); err != nil {
		t.Fatalf("bad join payload: %v", err)
	}
	if claim.Resource != "map:42" || claim.UserName != "Alice" {
		t.Errorf("unexpected claim %+v", claim)
	}

	expectPong(t, a)
	expectPong(t, b)
}

func TestHub_DisconnectReleasesClaim(t *testing.T) {
	hub, server := setupHubServer(t, nil, testWebSocketConfig())

	a := dialAdmin(t, server)
	b := dialAdmin(t, server)
	register(t, a, "u1", "Alice")
	register(t, b, "u2", "Bob")

	sendFrame(t, a, `{"type":"presence-update","payload":{"resourceType":"tool","resourceId":"buffer"}}`)
	var claim models.PresenceClaim
	if err := json.Unmarshal(readFrame(t, b).Payload, &claim); err != nil {
		t.Fatalf("bad join payload: %v", err)
	}

	if err := a.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	f := readFrame(t, b)
	if f.Type != models.MessageTypePresenceLeave {
		t.Fatalf("B got %q, want presence-leave", f.Type)
	}
	var leave models.PresenceLeave
	if err := json.Unmarshal(f.Payload, &leave); err != nil {
		t.Fatalf("bad leave payload: %v", err)
	}
	if leave.ID != claim.ID || leave.UserID != "u1" {
		t.Errorf("leave = %+v, want id %s", leave, claim.ID)
	}

	waitFor(t, func() bool { return hub.ClientCount() == 1 }, "disconnected client still tracked")
	for _, c := range hub.Registry().AllPresences() {
		if c.UserID == "u1" {
			t.Errorf("claim for disconnected admin survived: %+v", c)
		}
	}
}

func TestHub_FramesFromOneConnectionAreSequential(t *testing.T) {
	store := demoStore()
	store.delay = 150 * time.Millisecond
	_, server := setupHubServer(t, store, testWebSocketConfig())

	a := dialAdmin(t, server)
	sendFrame(t, a, `{"type":"list-resources","payload":{"resourceType":"layer"}}`)
	sendFrame(t, a, `{"type":"ping"}`)

	if f := readFrame(t, a); f.Type != models.MessageTypeResources {
		t.Fatalf("first reply = %q, want resources before pong", f.Type)
	}
	if f := readFrame(t, a); f.Type != models.MessageTypePong {
		t.Fatalf("second reply = %q, want pong", f.Type)
	}
}

func TestHub_InvalidFrameKeepsSocketOpen(t *testing.T) {
	_, server := setupHubServer(t, nil, testWebSocketConfig())

	a := dialAdmin(t, server)
	sendFrame(t, a, `this is not json`)

	f := readFrame(t, a)
	if f.Type != models.MessageTypeError {
		t.Fatalf("got %q, want error", f.Type)
	}
	var reason string
	if err := json.Unmarshal(f.Payload, &reason); err != nil || !strings.HasPrefix(reason, "invalid JSON") {
		t.Errorf("error payload = %s", f.Payload)
	}
	expectPong(t, a)
}

func TestHub_RateLimit(t *testing.T) {
	cfg := testWebSocketConfig()
	cfg.MessagesPerSecond = 0.5
	cfg.Burst = 1
	_, server := setupHubServer(t, nil, cfg)

	a := dialAdmin(t, server)
	sendFrame(t, a, `{"type":"ping"}`)
	sendFrame(t, a, `{"type":"ping"}`)

	if f := readFrame(t, a); f.Type != models.MessageTypePong {
		t.Fatalf("first reply = %q, want pong", f.Type)
	}
	f := readFrame(t, a)
	var reason string
	_ = json.Unmarshal(f.Payload, &reason)
	if f.Type != models.MessageTypeError || reason != "rate limit exceeded" {
		t.Errorf("second reply = %q %q, want rate limit error", f.Type, reason)
	}
}

func TestHub_RunWithContextClosesClients(t *testing.T) {
	hub, server := setupHubServer(t, nil, testWebSocketConfig())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- hub.RunWithContext(ctx) }()

	a := dialAdmin(t, server)
	register(t, a, "u1", "Alice")
	sendFrame(t, a, `{"type":"presence-update","payload":{"resourceType":"map","resourceId":"1"}}`)
	waitFor(t, func() bool { return hub.Registry().PresenceCount() == 1 }, "claim not recorded")

	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("RunWithContext returned %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("RunWithContext did not return")
	}

	_ = a.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := a.ReadMessage()
	if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
		t.Errorf("expected normal close frame, got %v", err)
	}
	if hub.ClientCount() != 0 {
		t.Errorf("ClientCount = %d after shutdown", hub.ClientCount())
	}
	if hub.Registry().PresenceCount() != 0 {
		t.Errorf("PresenceCount = %d after shutdown", hub.Registry().PresenceCount())
	}
}

func TestHub_AcceptAfterShutdown(t *testing.T) {
	hub, server := setupHubServer(t, nil, testWebSocketConfig())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := hub.RunWithContext(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("RunWithContext returned %v", err)
	}

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("failed to dial: %v", err)
	}
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	defer conn.Close()

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Error("expected stopped hub to drop the connection without a greeting")
	}
	if hub.ClientCount() != 0 {
		t.Errorf("ClientCount = %d, want 0", hub.ClientCount())
	}
}

func TestGetShutdownReason(t *testing.T) {
	t.Parallel()

	canceled, cancel := context.WithCancel(context.Background())
	cancel()
	if got := getShutdownReason(canceled); got != ShutdownReasonContextCanceled {
		t.Errorf("canceled: got %q", got)
	}

	expired, cancel2 := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel2()
	if got := getShutdownReason(expired); got != ShutdownReasonContextDeadline {
		t.Errorf("deadline: got %q", got)
	}
}
