// MapAdmin - Map Configuration Backend and Live Admin Presence
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mapadmin

package websocket

import (
	"bytes"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/tomtom215/mapadmin/internal/models"
	"github.com/tomtom215/mapadmin/internal/validation"
)

// Inbound message types
const (
	MessageTypeRegister       = "register"
	MessageTypePresenceUpdate = "presence-update"
	MessageTypePresenceLeave  = "presence-leave"
	MessageTypeListResources  = "list-resources"
	MessageTypeGetPresences   = "get-presences"
	MessageTypePing           = "ping"
)

// Message is one decoded inbound frame. The concrete types below are the
// complete set; Router.Handle switches over them.
type Message interface {
	messageType() string
}

// RegisterMessage binds an admin identity to the connection.
type RegisterMessage struct {
	UserID   string `json:"userId" validate:"required,max=128"`
	UserName string `json:"userName" validate:"max=256"`
}

// PresenceUpdateMessage claims a resource, replacing any previous claim.
type PresenceUpdateMessage struct {
	ResourceType models.ResourceType `json:"resourceType" validate:"required,resource_type"`
	ResourceID   string              `json:"resourceId" validate:"required,max=128"`
}

// PresenceLeaveMessage releases the current claim.
type PresenceLeaveMessage struct{}

// ListResourcesMessage asks for the records of one type in the config store.
type ListResourcesMessage struct {
	ResourceType models.ResourceType `json:"resourceType" validate:"required,resource_type"`
	Search       string              `json:"search" validate:"max=128"`
	Limit        int                 `json:"limit" validate:"gte=0,lte=500"`
}

// GetPresencesMessage asks who is on one resource.
type GetPresencesMessage struct {
	ResourceType models.ResourceType `json:"resourceType" validate:"required,resource_type"`
	ResourceID   string              `json:"resourceId" validate:"required,max=128"`
}

// PingMessage is answered with pong.
type PingMessage struct{}

func (RegisterMessage) messageType() string       { return MessageTypeRegister }
func (PresenceUpdateMessage) messageType() string { return MessageTypePresenceUpdate }
func (PresenceLeaveMessage) messageType() string  { return MessageTypePresenceLeave }
func (ListResourcesMessage) messageType() string  { return MessageTypeListResources }
func (GetPresencesMessage) messageType() string   { return MessageTypeGetPresences }
func (PingMessage) messageType() string           { return MessageTypePing }

// ProtocolError describes a frame that could not be turned into a Message.
// Its text is sent back to the client verbatim.
type ProtocolError struct {
	Kind   string // metrics label: invalid_json, missing_type, unknown_type, invalid_payload
	Reason string
}

func (e *ProtocolError) Error() string {
	return e.Reason
}

type inboundFrame struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// DecodeMessage parses and validates one inbound frame.
func DecodeMessage(data []byte) (Message, error) {
	var frame inboundFrame
	if err := json.Unmarshal(data, &frame); err != nil {
		return nil, &ProtocolError{Kind: "invalid_json", Reason: fmt.Sprintf("invalid JSON: %v", err)}
	}

	switch frame.Type {
	case "":
		return nil, &ProtocolError{Kind: "missing_type", Reason: "missing message type"}
	case MessageTypeRegister:
		return decodePayload[RegisterMessage](frame)
	case MessageTypePresenceUpdate:
		return decodePayload[PresenceUpdateMessage](frame)
	case MessageTypePresenceLeave:
		return PresenceLeaveMessage{}, nil
	case MessageTypeListResources:
		return decodePayload[ListResourcesMessage](frame)
	case MessageTypeGetPresences:
		return decodePayload[GetPresencesMessage](frame)
	case MessageTypePing:
		return PingMessage{}, nil
	default:
		return nil, &ProtocolError{Kind: "unknown_type", Reason: "unsupported message type: " + frame.Type}
	}
}

func decodePayload[T Message](frame inboundFrame) (Message, error) {
	var msg T
	if len(frame.Payload) > 0 && !bytes.Equal(frame.Payload, []byte("null")) {
		if err := json.Unmarshal(frame.Payload, &msg); err != nil {
			return nil, &ProtocolError{Kind: "invalid_payload", Reason: fmt.Sprintf("invalid %s payload: %v", frame.Type, err)}
		}
	}
	if verr := validation.ValidateStruct(msg); verr != nil {
		return nil, &ProtocolError{Kind: "invalid_payload", Reason: fmt.Sprintf("invalid %s payload: %s", frame.Type, verr.Error())}
	}
	return msg, nil
}
