// MapAdmin - Map Configuration Backend and Live Admin Presence
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mapadmin

package presence

import (
	"errors"
	"sync"
	"time"

	"github.com/tomtom215/mapadmin/internal/logging"
	"github.com/tomtom215/mapadmin/internal/metrics"
	"github.com/tomtom215/mapadmin/internal/models"
)

var (
	// ErrUnknownConnection is returned for a connection ID that is not tracked.
	ErrUnknownConnection = errors.New("presence: unknown connection")

	// ErrNotRegistered is returned when a presence update arrives before register.
	ErrNotRegistered = errors.New("presence: connection not registered")

	// ErrDuplicateConnection is returned when Track sees an ID twice.
	ErrDuplicateConnection = errors.New("presence: connection already tracked")

	// ErrInvalidResourceType is returned for a resource type outside models.ResourceTypes.
	ErrInvalidResourceType = errors.New("presence: invalid resource type")
)

// Connection is the registry's borrowed handle to one live socket.
// Send must not block and must drop silently once the socket is closed.
type Connection interface {
	ID() string
	Send(env models.Envelope) bool
}

type entry struct {
	conn       Connection
	userID     string
	userName   string
	registered bool
	claim      *models.PresenceClaim
}

// Registry is the in-memory table of live admin connections and their
// presence claims.
//
// All fan-out happens while mu is held, so every recipient observes frames
// in the same order the state changes were applied (a replaced claim's
// leave always precedes the new join).
type Registry struct {
	mu      sync.Mutex
	entries map[string]*entry
	order   []string
	now     func() time.Time
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[string]*entry),
		now:     time.Now,
	}
}

// Track adds an anonymous connection. It must be called before any other
// operation that names the connection.
func (r *Registry) Track(conn Connection) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := conn.ID()
	if _, ok := r.entries[id]; ok {
		return ErrDuplicateConnection
	}
	r.entries[id] = &entry{conn: conn}
	r.order = append(r.order, id)
	r.publishGaugesLocked()
	return nil
}

// RegisterConnection binds user identity to a tracked connection, then sends
// it the full admin-sync snapshot followed by the registered acknowledgement.
// Calling it again overwrites the identity.
func (r *Registry) RegisterConnection(connID, userID, userName string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[connID]
	if !ok {
		return ErrUnknownConnection
	}
	e.userID = userID
	e.userName = userName
	e.registered = true

	r.deliver(e.conn, models.Envelope{
		Type:    models.MessageTypeAdminSync,
		Payload: models.AdminSync{Admins: r.claimsLocked(nil)},
	})
	r.deliver(e.conn, models.Envelope{
		Type:    models.MessageTypeRegistered,
		Payload: models.Registered{ConnectionID: connID},
	})

	logging.Info().
		Str("connection_id", connID).
		Str("user_id", logging.SanitizeValue(userID)).
		Msg("admin registered")
	return nil
}

// UpdatePresence replaces the connection's claim with one on
// resourceType/resourceID. Any previous claim is announced as a leave
// before the new join; neither frame is sent back to connID.
func (r *Registry) UpdatePresence(connID string, resourceType models.ResourceType, resourceID string) (models.PresenceClaim, error) {
	if !resourceType.Valid() {
		return models.PresenceClaim{}, ErrInvalidResourceType
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[connID]
	if !ok {
		return models.PresenceClaim{}, ErrUnknownConnection
	}
	if !e.registered {
		return models.PresenceClaim{}, ErrNotRegistered
	}

	if e.claim != nil {
		r.broadcastLeaveLocked(connID, e.claim)
	}

	claim := models.NewPresenceClaim(connID, e.userID, e.userName, resourceType, resourceID, r.now())
	e.claim = &claim
	r.broadcastExceptLocked(connID, models.Envelope{Type: models.MessageTypePresenceJoin, Payload: claim})
	r.publishGaugesLocked()
	return claim, nil
}

// ClearPresence releases the connection's claim, if any, announcing the
// leave to every other connection. It reports whether a claim was released.
func (r *Registry) ClearPresence(connID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[connID]
	if !ok {
		return false, ErrUnknownConnection
	}
	if e.claim == nil {
		return false, nil
	}
	r.broadcastLeaveLocked(connID, e.claim)
	e.claim = nil
	r.publishGaugesLocked()
	return true, nil
}

// UnregisterConnection releases any claim and forgets the connection.
// Unknown IDs are ignored so close paths can call it unconditionally.
func (r *Registry) UnregisterConnection(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[connID]
	if !ok {
		return
	}
	if e.claim != nil {
		r.broadcastLeaveLocked(connID, e.claim)
	}
	delete(r.entries, connID)
	for i, id := range r.order {
		if id == connID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	r.publishGaugesLocked()
}

// AllPresences returns a copy of every active claim in connection insertion order.
func (r *Registry) AllPresences() []models.PresenceClaim {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.claimsLocked(nil)
}

// AdminsOnResource returns the active claims on exactly resourceType/resourceID.
func (r *Registry) AdminsOnResource(resourceType models.ResourceType, resourceID string) []models.PresenceClaim {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.claimsLocked(func(c *models.PresenceClaim) bool {
		return c.Matches(resourceType, resourceID)
	})
}

// Broadcast sends env to every tracked connection and returns how many
// accepted it.
func (r *Registry) Broadcast(env models.Envelope) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.broadcastExceptLocked("", env)
}

// ConnectionCount returns the number of tracked connections.
func (r *Registry) ConnectionCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// PresenceCount returns the number of active claims.
func (r *Registry) PresenceCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.presenceCountLocked()
}

func (r *Registry) presenceCountLocked() int {
	n := 0
	for _, e := range r.entries {
		if e.claim != nil {
			n++
		}
	}
	return n
}

// claimsLocked copies the active claims, optionally filtered. It never
// returns nil so the JSON form is always an array.
func (r *Registry) claimsLocked(keep func(*models.PresenceClaim) bool) []models.PresenceClaim {
	claims := make([]models.PresenceClaim, 0, len(r.order))
	for _, id := range r.order {
		e := r.entries[id]
		if e.claim == nil {
			continue
		}
		if keep != nil && !keep(e.claim) {
			continue
		}
		claims = append(claims, *e.claim)
	}
	return claims
}

func (r *Registry) broadcastLeaveLocked(originID string, claim *models.PresenceClaim) {
	r.broadcastExceptLocked(originID, models.Envelope{
		Type:    models.MessageTypePresenceLeave,
		Payload: models.PresenceLeave{ID: claim.ID, UserID: claim.UserID},
	})
}

// broadcastExceptLocked fans env out in insertion order, skipping excludeID.
func (r *Registry) broadcastExceptLocked(excludeID string, env models.Envelope) int {
	delivered := 0
	for _, id := range r.order {
		if id == excludeID {
			continue
		}
		if r.deliver(r.entries[id].conn, env) {
			delivered++
		}
	}
	return delivered
}

func (r *Registry) deliver(conn Connection, env models.Envelope) bool {
	if conn.Send(env) {
		metrics.WSFramesSent.WithLabelValues(env.Type).Inc()
		return true
	}
	metrics.WSFramesDropped.WithLabelValues(env.Type).Inc()
	return false
}

func (r *Registry) publishGaugesLocked() {
	metrics.WSConnections.Set(float64(len(r.entries)))
	metrics.PresenceClaims.Set(float64(r.presenceCountLocked()))
}
