// MapAdmin - Map Configuration Backend and Live Admin Presence
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mapadmin

package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tomtom215/mapadmin/internal/metrics"
)

// scriptedPinger returns errs in order, then nil forever.
type scriptedPinger struct {
	mu    sync.Mutex
	errs  []error
	calls int
}

func (p *scriptedPinger) Ping(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if len(p.errs) == 0 {
		return nil
	}
	err := p.errs[0]
	p.errs = p.errs[1:]
	return err
}

func (p *scriptedPinger) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

func TestNewStoreMonitorService_Defaults(t *testing.T) {
	t.Parallel()

	svc := NewStoreMonitorService("config", &scriptedPinger{}, 0, 0)
	if svc.interval != 30*time.Second || svc.timeout != 5*time.Second {
		t.Errorf("defaults = %v/%v, want 30s/5s", svc.interval, svc.timeout)
	}
	if svc.String() != "store-monitor-config" {
		t.Errorf("String() = %q", svc.String())
	}
}

func TestStoreMonitorService_PublishesGauge(t *testing.T) {
	t.Parallel()

	gauge := metrics.StoreUp.WithLabelValues("monitor-test-down")
	svc := NewStoreMonitorService("monitor-test-down", &scriptedPinger{errs: []error{errors.New("refused")}}, time.Hour, time.Second)

	svc.check(context.Background())
	if got := testutil.ToFloat64(gauge); got != 0 {
		t.Errorf("store_up = %v after failed ping, want 0", got)
	}

	svc.check(context.Background())
	if got := testutil.ToFloat64(gauge); got != 1 {
		t.Errorf("store_up = %v after recovery, want 1", got)
	}
	if !svc.up || !svc.known {
		t.Error("expected monitor to record the store as up")
	}
}

func TestStoreMonitorService_ServePingsUntilCanceled(t *testing.T) {
	t.Parallel()

	pinger := &scriptedPinger{}
	svc := NewStoreMonitorService("monitor-test-loop", pinger, 10*time.Millisecond, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for pinger.callCount() < 3 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	cancel()

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Serve did not return")
	}
	if pinger.callCount() < 3 {
		t.Errorf("expected repeated pings, got %d", pinger.callCount())
	}
}
