// MapAdmin - Map Configuration Backend and Live Admin Presence
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mapadmin

package models

// Outbound frame types.
const (
	MessageTypeAdminSync         = "admin-sync"
	MessageTypePresenceJoin      = "presence-join"
	MessageTypePresenceLeave     = "presence-leave"
	MessageTypeRegistered        = "registered"
	MessageTypeError             = "error"
	MessageTypeResources         = "resources"
	MessageTypeResourcePresences = "resource-presences"
	MessageTypePong              = "pong"
)

// Envelope is one JSON frame on the admin websocket: {"type": ..., "payload": ...}.
type Envelope struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// NewErrorEnvelope builds an error frame. The payload is a plain string.
func NewErrorEnvelope(message string) Envelope {
	return Envelope{Type: MessageTypeError, Payload: message}
}
