// MapAdmin - Map Configuration Backend and Live Admin Presence
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mapadmin

package websocket

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tomtom215/mapadmin/internal/config"
	"github.com/tomtom215/mapadmin/internal/logging"
	"github.com/tomtom215/mapadmin/internal/presence"
)

// ShutdownReason identifies why the hub stopped.
type ShutdownReason string

const (
	// ShutdownReasonContextCanceled is the normal graceful path (SIGTERM).
	ShutdownReasonContextCanceled ShutdownReason = "context_canceled"

	// ShutdownReasonContextDeadline may indicate a hung operation during shutdown.
	ShutdownReasonContextDeadline ShutdownReason = "context_deadline"
)

const defaultStatsInterval = 30 * time.Second

// ErrHubStopped is returned by Accept after the hub has shut down.
var ErrHubStopped = errors.New("websocket: hub stopped")

// Hub owns the live admin sockets. Each accepted socket gets a read pump
// that feeds the Router and a write pump that drains the client's buffer.
type Hub struct {
	registry *presence.Registry
	router   *Router
	cfg      config.WebSocketConfig

	mu      sync.RWMutex
	clients map[string]*Client
	stopped bool
}

// NewHub creates a hub that tracks connections in registry and dispatches
// frames through router.
func NewHub(registry *presence.Registry, router *Router, cfg config.WebSocketConfig) *Hub {
	return &Hub{
		registry: registry,
		router:   router,
		cfg:      cfg,
		clients:  make(map[string]*Client),
	}
}

// Registry returns the presence registry the hub tracks connections in.
func (h *Hub) Registry() *presence.Registry {
	return h.registry
}

// Accept takes ownership of an upgraded connection: it assigns a
// connection id, tracks it in the registry, queues the greeting and starts
// the pumps.
func (h *Hub) Accept(conn *websocket.Conn) (*Client, error) {
	client := newClient(h, conn)

	h.mu.Lock()
	if h.stopped {
		h.mu.Unlock()
		_ = conn.Close()
		return nil, ErrHubStopped
	}
	h.clients[client.id] = client
	h.mu.Unlock()

	if err := h.registry.Track(client); err != nil {
		h.mu.Lock()
		delete(h.clients, client.id)
		h.mu.Unlock()
		_ = conn.Close()
		return nil, err
	}

	if h.cfg.Greeting != "" {
		client.sendText(h.cfg.Greeting)
	}
	client.start()

	logging.Info().
		Str("connection_id", client.id).
		Str("remote_addr", conn.RemoteAddr().String()).
		Int("total_clients", h.ClientCount()).
		Msg("websocket client connected")
	return client, nil
}

// unregister forgets c and releases its presence claim. Idempotent.
func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	_, ok := h.clients[c.id]
	delete(h.clients, c.id)
	h.mu.Unlock()

	h.registry.UnregisterConnection(c.id)
	c.close()

	if ok {
		logging.Info().
			Str("connection_id", c.id).
			Int("total_clients", h.ClientCount()).
			Msg("websocket client disconnected")
	}
}

// ClientCount returns the number of open sockets.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// RunWithContext logs connection statistics until ctx is cancelled, then
// closes every client and returns ctx.Err(). Designed for suture
// supervision.
func (h *Hub) RunWithContext(ctx context.Context) error {
	h.mu.Lock()
	h.stopped = false
	h.mu.Unlock()

	interval := h.cfg.StatsInterval
	if interval <= 0 {
		interval = defaultStatsInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.logGracefulShutdown(ctx)
			return ctx.Err()
		case <-ticker.C:
			logging.Debug().
				Int("clients", h.ClientCount()).
				Int("presences", h.registry.PresenceCount()).
				Msg("websocket hub stats")
		}
	}
}

// logGracefulShutdown closes all clients and logs the shutdown. ctx.Err()
// is not logged as an error because cancellation is the expected path.
func (h *Hub) logGracefulShutdown(ctx context.Context) {
	closed := h.closeAllClients()
	logging.Info().
		Str("component", "websocket-hub").
		Str("reason", string(getShutdownReason(ctx))).
		Int("clients_closed", closed).
		Msg("websocket hub stopped")
}

func getShutdownReason(ctx context.Context) ShutdownReason {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return ShutdownReasonContextDeadline
	}
	return ShutdownReasonContextCanceled
}

// closeAllClients marks the hub stopped and closes every client in id
// order. Returns how many were closed.
func (h *Hub) closeAllClients() int {
	h.mu.Lock()
	h.stopped = true
	clients := make([]*Client, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	h.clients = make(map[string]*Client)
	h.mu.Unlock()

	sort.Slice(clients, func(i, j int) bool { return clients[i].id < clients[j].id })
	for _, c := range clients {
		h.registry.UnregisterConnection(c.id)
		c.close()
	}
	return len(clients)
}
