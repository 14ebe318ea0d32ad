// Copyright © 2025 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package registry

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/go-core-stack/mcp-registry-proxy/pkg/endpoint"
	"github.com/go-core-stack/mcp-registry-proxy/pkg/metrics"
)

// Cache is the in-memory, authoritative (name -> tag -> BackendInfo) map.
// Readers never observe a torn inner map: updates replace or insert one
// (name, tag) entry atomically with respect to readers, and the inner map
// for a name is swapped wholesale rather than mutated in place.
type Cache struct {
	mu      sync.RWMutex
	data    map[string]map[string]endpoint.BackendInfo
	logger  zerolog.Logger
	metrics *metrics.Metrics
}

// New constructs an empty cache. metrics may be nil if instrumentation is
// not wired up (e.g. in unit tests).
func New(logger zerolog.Logger, m *metrics.Metrics) *Cache {
	return &Cache{
		data:    make(map[string]map[string]endpoint.BackendInfo),
		logger:  logger.With().Str("component", "registry").Logger(),
		metrics: m,
	}
}

// Lookup returns a snapshot copy of the cached BackendInfo for (name, tag),
// or false if absent.
func (c *Cache) Lookup(name, tag string) (endpoint.BackendInfo, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	tags, ok := c.data[name]
	if !ok {
		return endpoint.BackendInfo{}, false
	}
	info, ok := tags[tag]
	return info, ok
}

// upsert inserts or replaces the (name, tag) entry. The inner map for name
// is copied and swapped rather than mutated in place so any reader holding
// a previously-read reference never sees a half-written map.
func (c *Cache) upsert(name, tag string, info endpoint.BackendInfo) {
	c.mu.Lock()
	defer c.mu.Unlock()

	existing := c.data[name]
	next := make(map[string]endpoint.BackendInfo, len(existing)+1)
	for k, v := range existing {
		next[k] = v
	}
	next[tag] = info
	c.data[name] = next
}

// delete removes tag from name's bucket, if present. It never removes the
// outer name entry itself, even when it becomes empty.
func (c *Cache) delete(name, tag string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	existing, ok := c.data[name]
	if !ok {
		return
	}
	if _, ok := existing[tag]; !ok {
		return
	}
	next := make(map[string]endpoint.BackendInfo, len(existing))
	for k, v := range existing {
		if k == tag {
			continue
		}
		next[k] = v
	}
	c.data[name] = next
}

// sameTriple reports whether the cached entry at (name, tag) already has
// the same (host, port, path) as candidate, under a read lock only.
func (c *Cache) sameTriple(name, tag string, candidate endpoint.BackendInfo) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	tags, ok := c.data[name]
	if !ok {
		return false
	}
	existing, ok := tags[tag]
	if !ok {
		return false
	}
	return existing.Equal(candidate)
}

// StartRefresher spawns a background goroutine that calls source.List every
// period and merges the result into the cache. It runs until ctx is
// cancelled. period has no default inside the cache — callers must supply
// one explicitly.
func (c *Cache) StartRefresher(ctx context.Context, period time.Duration, source BackendSource) {
	go func() {
		ticker := time.NewTicker(period)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.refreshOnce(ctx, source)
			}
		}
	}()
}

func (c *Cache) refreshOnce(ctx context.Context, source BackendSource) {
	entries, err := source.List(ctx)
	if err != nil {
		c.logger.Error().Err(err).Msg("backend source list failed; skipping tick")
		if c.metrics != nil {
			c.metrics.ObserveRefreshError()
		}
		return
	}

	var updated, unchanged, skipped int

	for _, entry := range entries {
		tag := entry.ResolveTag()

		info, err := endpoint.Parse(entry.Endpoint)
		if err != nil {
			c.logger.Error().Err(err).Str("name", entry.Name).Str("tag", tag).Msg("skipping unparsable registry entry")
			skipped++
			continue
		}

		if c.sameTriple(entry.Name, tag, info) {
			unchanged++
			continue
		}

		c.upsert(entry.Name, tag, info)
		updated++
	}

	c.logger.Info().Int("updated", updated).Int("unchanged", unchanged).Int("skipped", skipped).Msg("registry refresh tick complete")
	if c.metrics != nil {
		c.metrics.ObserveRefreshTick(updated, unchanged, skipped)
	}
}

// AttachEvents subscribes to bus and applies every event it receives until
// ctx is cancelled, at which point it unsubscribes.
func (c *Cache) AttachEvents(ctx context.Context, bus *EventBus) {
	ch := bus.Subscribe()

	go func() {
		defer bus.Unsubscribe(ch)

		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-ch:
				if !ok {
					return
				}
				c.applyEvent(ev)
			}
		}
	}()
}

func (c *Cache) applyEvent(ev Event) {
	switch ev.Kind {
	case EventDelete:
		c.delete(ev.Name, ev.Tag)
		c.logger.Info().Str("name", ev.Name).Str("tag", ev.Tag).Msg("removed backend from cache")
		if c.metrics != nil {
			c.metrics.ObserveEventApplied(ev.Kind.String(), "applied")
		}
	case EventCreateOrUpdate:
		info, err := endpoint.Parse(ev.Endpoint)
		if err != nil {
			c.logger.Error().Err(err).Str("name", ev.Name).Str("tag", ev.Tag).Msg("dropping unparsable create_or_update event")
			if c.metrics != nil {
				c.metrics.ObserveEventApplied(ev.Kind.String(), "dropped")
			}
			return
		}
		c.upsert(ev.Name, ev.Tag, info)
		c.logger.Info().Str("name", ev.Name).Str("tag", ev.Tag).Msg("updated backend in cache")
		if c.metrics != nil {
			c.metrics.ObserveEventApplied(ev.Kind.String(), "applied")
		}
	}
}
