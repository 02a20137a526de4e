// MapAdmin - Map Configuration Backend and Live Admin Presence
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mapadmin

package services

import (
	"context"
	"time"

	"github.com/tomtom215/mapadmin/internal/logging"
	"github.com/tomtom215/mapadmin/internal/metrics"
)

// Pinger is satisfied by the config store and the GIS pool adapter.
type Pinger interface {
	Ping(ctx context.Context) error
}

// StoreMonitorService pings a store on an interval and publishes the result
// as the store_up gauge. State changes are logged once, not on every tick.
type StoreMonitorService struct {
	store    string
	pinger   Pinger
	interval time.Duration
	timeout  time.Duration
	name     string

	up    bool
	known bool
}

// NewStoreMonitorService monitors pinger under the store label. Zero
// interval and timeout default to 30s and 5s.
func NewStoreMonitorService(store string, pinger Pinger, interval, timeout time.Duration) *StoreMonitorService {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &StoreMonitorService{
		store:    store,
		pinger:   pinger,
		interval: interval,
		timeout:  timeout,
		name:     "store-monitor-" + store,
	}
}

// Serve implements suture.Service. The first check runs immediately.
func (s *StoreMonitorService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		s.check(ctx)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (s *StoreMonitorService) check(ctx context.Context) {
	pingCtx, cancel := context.WithTimeout(ctx, s.timeout)
	err := s.pinger.Ping(pingCtx)
	cancel()

	if ctx.Err() != nil {
		return
	}

	up := err == nil
	if up {
		metrics.StoreUp.WithLabelValues(s.store).Set(1)
	} else {
		metrics.StoreUp.WithLabelValues(s.store).Set(0)
	}

	if s.known && up == s.up {
		return
	}
	switch {
	case up && s.known:
		logging.Info().Str("store", s.store).Msg("store reachable again")
	case !up:
		logging.Warn().Err(err).Str("store", s.store).Msg("store unreachable")
	}
	s.up = up
	s.known = true
}

func (s *StoreMonitorService) String() string {
	return s.name
}
