// MapAdmin - Map Configuration Backend and Live Admin Presence
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mapadmin

package websocket

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/mapadmin/internal/database"
	"github.com/tomtom215/mapadmin/internal/logging"
	"github.com/tomtom215/mapadmin/internal/metrics"
	"github.com/tomtom215/mapadmin/internal/models"
	"github.com/tomtom215/mapadmin/internal/presence"
)

// storeTimeout bounds one config store lookup made on behalf of a frame.
const storeTimeout = 10 * time.Second

// ResourceStore is the read-only slice of the config store the router uses.
// *database.DB implements it.
type ResourceStore interface {
	ListResources(ctx context.Context, filter database.ResourceFilter) ([]models.ResourceSummary, error)
	ResourceExists(ctx context.Context, resourceType models.ResourceType, id string) (bool, error)
}

// Router decodes inbound frames and applies them to the presence registry.
// Handle is called sequentially per connection, so frames from one
// connection are applied in arrival order.
type Router struct {
	registry        *presence.Registry
	resources       ResourceStore
	verifyResources bool
}

// NewRouter creates a router. resources may be nil, in which case
// list-resources answers with an error frame and claims are not verified.
func NewRouter(registry *presence.Registry, resources ResourceStore, verifyResources bool) *Router {
	return &Router{
		registry:        registry,
		resources:       resources,
		verifyResources: verifyResources && resources != nil,
	}
}

// Handle processes one frame from conn. It never panics.
func (rt *Router) Handle(ctx context.Context, conn presence.Connection, data []byte) {
	defer func() {
		if rec := recover(); rec != nil {
			metrics.WSErrors.WithLabelValues("panic").Inc()
			logging.Error().
				Str("connection_id", conn.ID()).
				Interface("panic", rec).
				Msg("recovered from panic in websocket frame handler")
			conn.Send(models.NewErrorEnvelope("internal error"))
		}
	}()

	msg, err := DecodeMessage(data)
	if err != nil {
		kind := "invalid"
		var perr *ProtocolError
		if errors.As(err, &perr) {
			kind = perr.Kind
		}
		metrics.WSFramesReceived.WithLabelValues("invalid").Inc()
		metrics.WSErrors.WithLabelValues(kind).Inc()
		logging.Debug().
			Str("connection_id", conn.ID()).
			Str("reason", logging.SanitizeValue(err.Error())).
			Msg("rejected websocket frame")
		conn.Send(models.NewErrorEnvelope(err.Error()))
		return
	}
	metrics.WSFramesReceived.WithLabelValues(msg.messageType()).Inc()

	switch m := msg.(type) {
	case RegisterMessage:
		rt.logRegistryError(conn, m.messageType(), rt.registry.RegisterConnection(conn.ID(), m.UserID, m.UserName))

	case PresenceUpdateMessage:
		rt.handlePresenceUpdate(ctx, conn, m)

	case PresenceLeaveMessage:
		_, err := rt.registry.ClearPresence(conn.ID())
		rt.logRegistryError(conn, m.messageType(), err)

	case ListResourcesMessage:
		rt.handleListResources(ctx, conn, m)

	case GetPresencesMessage:
		conn.Send(models.Envelope{
			Type: models.MessageTypeResourcePresences,
			Payload: models.ResourcePresences{
				ResourceType: m.ResourceType,
				ResourceID:   m.ResourceID,
				Admins:       rt.registry.AdminsOnResource(m.ResourceType, m.ResourceID),
			},
		})

	case PingMessage:
		conn.Send(models.Envelope{Type: models.MessageTypePong, Payload: nil})

	default:
		conn.Send(models.NewErrorEnvelope(fmt.Sprintf("unsupported message type: %s", msg.messageType())))
	}
}

func (rt *Router) handlePresenceUpdate(ctx context.Context, conn presence.Connection, m PresenceUpdateMessage) {
	if rt.verifyResources {
		lookupCtx, cancel := context.WithTimeout(ctx, storeTimeout)
		exists, err := rt.resources.ResourceExists(lookupCtx, m.ResourceType, m.ResourceID)
		cancel()
		if err != nil {
			rt.sendStoreError(conn, "failed to verify resource", err)
			return
		}
		if !exists {
			conn.Send(models.NewErrorEnvelope(fmt.Sprintf("unknown %s: %s", m.ResourceType, m.ResourceID)))
			return
		}
	}

	_, err := rt.registry.UpdatePresence(conn.ID(), m.ResourceType, m.ResourceID)
	rt.logRegistryError(conn, m.messageType(), err)
}

func (rt *Router) handleListResources(ctx context.Context, conn presence.Connection, m ListResourcesMessage) {
	if rt.resources == nil {
		conn.Send(models.NewErrorEnvelope("resource listing is not available"))
		return
	}

	lookupCtx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	items, err := rt.resources.ListResources(lookupCtx, database.ResourceFilter{
		Type:   m.ResourceType,
		Search: m.Search,
		Limit:  m.Limit,
	})
	if err != nil {
		rt.sendStoreError(conn, "failed to list resources", err)
		return
	}

	conn.Send(models.Envelope{
		Type:    models.MessageTypeResources,
		Payload: models.ResourceList{ResourceType: m.ResourceType, Items: items},
	})
}

// sendStoreError logs err under a fresh correlation id and tells the client
// only the id.
func (rt *Router) sendStoreError(conn presence.Connection, msg string, err error) {
	errorID := logging.GenerateCorrelationID()
	metrics.WSErrors.WithLabelValues("store").Inc()
	logging.Error().
		Err(err).
		Str("error_id", errorID).
		Str("connection_id", conn.ID()).
		Msg(msg)
	conn.Send(models.NewErrorEnvelope(fmt.Sprintf("%s (errorId: %s)", msg, errorID)))
}

// logRegistryError records registry failures. They are never reported to
// the client.
func (rt *Router) logRegistryError(conn presence.Connection, msgType string, err error) {
	if err == nil {
		return
	}
	label := "registry"
	if errors.Is(err, presence.ErrNotRegistered) {
		label = "not_registered"
	}
	metrics.WSErrors.WithLabelValues(label).Inc()
	logging.Warn().
		Err(err).
		Str("connection_id", conn.ID()).
		Str("message_type", msgType).
		Msg("presence update ignored")
}
