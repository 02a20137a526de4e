// MapAdmin - Map Configuration Backend and Live Admin Presence
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mapadmin

package websocket

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/tomtom215/mapadmin/internal/cache"
	"github.com/tomtom215/mapadmin/internal/database"
	"github.com/tomtom215/mapadmin/internal/metrics"
	"github.com/tomtom215/mapadmin/internal/models"
)

// cachedResourceStore fronts a ResourceStore with short-lived LRU caches.
// Only positive existence answers are cached, so a resource created in the
// config store is claimable immediately.
type cachedResourceStore struct {
	next   ResourceStore
	lists  *cache.LRU[string, []models.ResourceSummary]
	exists *cache.LRU[string, bool]
}

// NewCachedResourceStore wraps next. A non-positive ttl or a nil next
// returns next unchanged.
func NewCachedResourceStore(next ResourceStore, ttl time.Duration, size int) ResourceStore {
	if next == nil || ttl <= 0 {
		return next
	}
	return &cachedResourceStore{
		next:   next,
		lists:  cache.NewLRU[string, []models.ResourceSummary](size, ttl),
		exists: cache.NewLRU[string, bool](size, ttl),
	}
}

func (s *cachedResourceStore) ListResources(ctx context.Context, filter database.ResourceFilter) ([]models.ResourceSummary, error) {
	key := filterKey(filter)
	if items, ok := s.lists.Get(key); ok {
		metrics.ResourceCacheLookups.WithLabelValues("list", "hit").Inc()
		return cloneSummaries(items), nil
	}
	metrics.ResourceCacheLookups.WithLabelValues("list", "miss").Inc()

	items, err := s.next.ListResources(ctx, filter)
	if err != nil {
		return nil, err
	}
	s.lists.Add(key, cloneSummaries(items))
	return items, nil
}

func (s *cachedResourceStore) ResourceExists(ctx context.Context, resourceType models.ResourceType, id string) (bool, error) {
	key := string(resourceType) + ":" + id
	if _, ok := s.exists.Get(key); ok {
		metrics.ResourceCacheLookups.WithLabelValues("exists", "hit").Inc()
		return true, nil
	}
	metrics.ResourceCacheLookups.WithLabelValues("exists", "miss").Inc()

	ok, err := s.next.ResourceExists(ctx, resourceType, id)
	if err != nil {
		return false, err
	}
	if ok {
		s.exists.Add(key, true)
	}
	return ok, nil
}

// filterKey renders every field of f into a NUL-separated cache key.
func filterKey(f database.ResourceFilter) string {
	var b strings.Builder
	b.WriteString(string(f.Type))
	b.WriteByte(0)
	b.WriteString(strings.Join(f.IDs, "\x01"))
	b.WriteByte(0)
	b.WriteString(f.Search)
	b.WriteByte(0)
	if f.Since != nil {
		b.WriteString(strconv.FormatInt(f.Since.UnixNano(), 10))
	}
	b.WriteByte(0)
	b.WriteString(strconv.Itoa(f.Limit))
	return b.String()
}

// cloneSummaries keeps callers from mutating cached slices.
func cloneSummaries(items []models.ResourceSummary) []models.ResourceSummary {
	if items == nil {
		return nil
	}
	out := make([]models.ResourceSummary, len(items))
	copy(out, items)
	return out
}
