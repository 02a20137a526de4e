// MapAdmin - Map Configuration Backend and Live Admin Presence
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mapadmin

package models

import (
	"strconv"
	"time"
)

// ResourceType is the kind of addressable resource an admin can claim.
type ResourceType string

// Resource types understood by the admin client.
const (
	ResourceMap     ResourceType = "map"
	ResourceLayer   ResourceType = "layer"
	ResourceTool    ResourceType = "tool"
	ResourceGroup   ResourceType = "group"
	ResourceService ResourceType = "service"
)

// ResourceTypes lists every valid ResourceType in a stable order.
var ResourceTypes = []ResourceType{
	ResourceMap,
	ResourceLayer,
	ResourceTool,
	ResourceGroup,
	ResourceService,
}

// Valid reports whether t is one of the known resource types.
func (t ResourceType) Valid() bool {
	switch t {
	case ResourceMap, ResourceLayer, ResourceTool, ResourceGroup, ResourceService:
		return true
	}
	return false
}

// PresenceClaim records that one user, on one connection, is currently
// viewing or editing one resource. A connection holds at most one claim.
//
// Example:
//
//	{
//	  "id": "u1-1760871234567",
//	  "userId": "u1",
//	  "userName": "Alice",
//	  "resourceType": "map",
//	  "resourceId": "42",
//	  "resource": "map:42",
//	  "timestamp": "2026-10-19T11:07:14Z",
//	  "connectionId": "5f0c..."
//	}
type PresenceClaim struct {
	ID           string       `json:"id"`
	UserID       string       `json:"userId"`
	UserName     string       `json:"userName"`
	ResourceType ResourceType `json:"resourceType"`
	ResourceID   string       `json:"resourceId"`
	Resource     string       `json:"resource"`
	Timestamp    time.Time    `json:"timestamp"`
	ConnectionID string       `json:"connectionId"`
}

// NewPresenceClaim builds a claim stamped with now. The claim ID is the user
// ID joined with the creation time in Unix milliseconds; it is only unique
// enough to match a later leave against its join.
func NewPresenceClaim(connectionID, userID, userName string, resourceType ResourceType, resourceID string, now time.Time) PresenceClaim {
	return PresenceClaim{
		ID:           userID + "-" + strconv.FormatInt(now.UnixMilli(), 10),
		UserID:       userID,
		UserName:     userName,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Resource:     ResourceKey(resourceType, resourceID),
		Timestamp:    now.UTC(),
		ConnectionID: connectionID,
	}
}

// ResourceKey returns the "type:id" form used in presence-join payloads.
func ResourceKey(resourceType ResourceType, resourceID string) string {
	return string(resourceType) + ":" + resourceID
}

// Matches reports whether the claim targets exactly resourceType/resourceID.
func (c *PresenceClaim) Matches(resourceType ResourceType, resourceID string) bool {
	return c.ResourceType == resourceType && c.ResourceID == resourceID
}

// PresenceLeave is the payload of a presence-leave frame.
type PresenceLeave struct {
	ID     string `json:"id"`
	UserID string `json:"userId"`
}

// AdminSync is the payload of the admin-sync frame sent to a newly
// registered connection.
type AdminSync struct {
	Admins []PresenceClaim `json:"admins"`
}

// Registered is the payload of the registration acknowledgement.
type Registered struct {
	ConnectionID string `json:"connectionId"`
}

// ResourcePresences is the reply to a get-presences query.
type ResourcePresences struct {
	ResourceType ResourceType    `json:"resourceType"`
	ResourceID   string          `json:"resourceId"`
	Admins       []PresenceClaim `json:"admins"`
}
