// Copyright © 2025 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package registry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	entries []Entry
	err     error
}

func (f *fakeSource) List(ctx context.Context) ([]Entry, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.entries, nil
}

func newTestCache() *Cache {
	return New(zerolog.Nop(), nil)
}

// P2: a fresh cache reports every lookup as a miss.
func TestLookupMissOnEmptyCache(t *testing.T) {
	c := newTestCache()
	_, ok := c.Lookup("search", "default")
	assert.False(t, ok)
}

// P3: refreshOnce populates the cache from a source's entries, resolving the
// tag fallback chain (Tag, then Version, then "default").
func TestRefreshOncePopulatesCache(t *testing.T) {
	c := newTestCache()
	source := &fakeSource{entries: []Entry{
		{Name: "search", Tag: "v1", Endpoint: "http://search-v1:8080/mcp"},
		{Name: "search", Version: "v2", Endpoint: "http://search-v2:8080/mcp"},
		{Name: "docs", Endpoint: "http://docs:9000/mcp"},
	}}

	c.refreshOnce(context.Background(), source)

	info, ok := c.Lookup("search", "v1")
	require.True(t, ok)
	assert.Equal(t, "search-v1", info.Host)

	info, ok = c.Lookup("search", "v2")
	require.True(t, ok)
	assert.Equal(t, "search-v2", info.Host)

	info, ok = c.Lookup("docs", "default")
	require.True(t, ok)
	assert.Equal(t, "docs", info.Host)
}

// P4: a failing source leaves the cache exactly as it was.
func TestRefreshOnceSourceErrorLeavesCacheUnchanged(t *testing.T) {
	c := newTestCache()
	good := &fakeSource{entries: []Entry{
		{Name: "search", Endpoint: "http://search:8080/mcp"},
	}}
	c.refreshOnce(context.Background(), good)

	before, ok := c.Lookup("search", "default")
	require.True(t, ok)

	failing := &fakeSource{err: errors.New("upstream unavailable")}
	c.refreshOnce(context.Background(), failing)

	after, ok := c.Lookup("search", "default")
	require.True(t, ok)
	assert.Equal(t, before, after)
}

// P5: one unparsable entry is skipped without affecting the rest of the
// batch.
func TestRefreshOnceSkipsOnlyUnparsableEntry(t *testing.T) {
	c := newTestCache()
	source := &fakeSource{entries: []Entry{
		{Name: "search", Endpoint: "http://search:8080/mcp"},
		{Name: "broken", Endpoint: "ftp://nope"},
	}}

	c.refreshOnce(context.Background(), source)

	_, ok := c.Lookup("search", "default")
	assert.True(t, ok)

	_, ok = c.Lookup("broken", "default")
	assert.False(t, ok)
}

// refreshOnce is idempotent: a second tick over identical entries reports
// them all as unchanged and does not alter the cached values.
func TestRefreshOnceSecondTickIsUnchanged(t *testing.T) {
	c := newTestCache()
	source := &fakeSource{entries: []Entry{
		{Name: "search", Endpoint: "http://search:8080/mcp"},
	}}

	c.refreshOnce(context.Background(), source)
	before, _ := c.Lookup("search", "default")

	c.refreshOnce(context.Background(), source)
	after, _ := c.Lookup("search", "default")

	assert.Equal(t, before, after)
}

// Scenario: a CreateOrUpdate event followed by a Delete event leaves the
// entry absent again.
func TestAttachEventsAppliesCreateThenDelete(t *testing.T) {
	c := newTestCache()
	bus := NewEventBus(DefaultEventBusCapacity)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	c.AttachEvents(ctx, bus)

	bus.Publish(NewCreateOrUpdateEvent("search", "default", "http://search:8080/mcp"))
	require.Eventually(t, func() bool {
		_, ok := c.Lookup("search", "default")
		return ok
	}, time.Second, 5*time.Millisecond)

	bus.Publish(NewDeleteEvent("search", "default"))
	require.Eventually(t, func() bool {
		_, ok := c.Lookup("search", "default")
		return !ok
	}, time.Second, 5*time.Millisecond)
}

// A CreateOrUpdate event with an unparsable endpoint is dropped rather than
// poisoning the cache with a zero-value BackendInfo.
func TestAttachEventsDropsUnparsableCreateOrUpdate(t *testing.T) {
	c := newTestCache()
	bus := NewEventBus(DefaultEventBusCapacity)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	c.AttachEvents(ctx, bus)

	bus.Publish(NewCreateOrUpdateEvent("broken", "default", "not-a-url"))

	time.Sleep(20 * time.Millisecond)
	_, ok := c.Lookup("broken", "default")
	assert.False(t, ok)
}

// Deleting a (name, tag) pair that was never present is a harmless no-op.
func TestDeleteMissingEntryIsNoop(t *testing.T) {
	c := newTestCache()
	c.delete("nope", "default")
	_, ok := c.Lookup("nope", "default")
	assert.False(t, ok)
}
