// MapAdmin - Map Configuration Backend and Live Admin Presence
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mapadmin

package services

import (
	"context"
	"fmt"
)

// ContextHub is satisfied by *websocket.Hub. Declaring it here keeps this
// package free of the websocket import.
type ContextHub interface {
	RunWithContext(ctx context.Context) error
}

// PresenceHubService supervises the presence socket hub.
type PresenceHubService struct {
	hub  ContextHub
	name string
}

// NewPresenceHubService wraps hub.
func NewPresenceHubService(hub ContextHub) *PresenceHubService {
	return &PresenceHubService{
		hub:  hub,
		name: "presence-hub",
	}
}

// Serve implements suture.Service.
func (p *PresenceHubService) Serve(ctx context.Context) error {
	err := p.hub.RunWithContext(ctx)
	if err != nil && ctx.Err() == nil {
		return fmt.Errorf("presence hub stopped: %w", err)
	}
	return err
}

func (p *PresenceHubService) String() string {
	return p.name
}
