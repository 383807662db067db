// Package privcache implements the Privilege Cache (spec.md §4.3): a
// per-process, per-(principal, class) cache of effective privilege
// bits, sharded by the principal's cache index so that principals in
// different shards never contend for the same lock.
//
// No third-party dependency fits an in-memory sharded map better than
// the standard library's sync primitives (see DESIGN.md); the only
// non-stdlib import is github.com/google/uuid for keys.
package privcache

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/CUBRID/cubrid-sub018/sql/privilege"
)

const shardCount = 16

// IndexAllocator hands out the stable small integer cache_index_of
// expects at login, and never reuses one while the principal's session
// is registered.
type IndexAllocator struct {
	mu     sync.Mutex
	byID   map[uuid.UUID]int
	next   int64
}

func NewIndexAllocator() *IndexAllocator {
	return &IndexAllocator{byID: make(map[uuid.UUID]int)}
}

// IndexOf returns the cache index for principal, allocating one on
// first use.
func (a *IndexAllocator) IndexOf(principal uuid.UUID) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	if idx, ok := a.byID[principal]; ok {
		return idx
	}
	idx := int(atomic.AddInt64(&a.next, 1)) - 1
	a.byID[principal] = idx
	return idx
}

// Release forgets a principal's cache index, called from
// RemoveUserCacheReferences on user drop.
func (a *IndexAllocator) Release(principal uuid.UUID) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.byID, principal)
}

// Key identifies one cache slot.
type Key struct {
	Principal uuid.UUID
	Class     uuid.UUID
}

type slotState int

const (
	stateInvalid slotState = iota
	stateValid
)

type slot struct {
	bits  privilege.CacheBits
	state slotState
}

type shard struct {
	mu      sync.RWMutex
	entries map[Key]slot
}

// Cache is the sharded privilege-cache store.
type Cache struct {
	shards  [shardCount]*shard
	indexes *IndexAllocator
}

// New constructs an empty cache backed by the given index allocator.
func New(indexes *IndexAllocator) *Cache {
	c := &Cache{indexes: indexes}
	for i := range c.shards {
		c.shards[i] = &shard{entries: make(map[Key]slot)}
	}
	return c
}

func (c *Cache) shardFor(principal uuid.UUID) *shard {
	idx := c.indexes.IndexOf(principal)
	return c.shards[idx%shardCount]
}

// GetCacheBits returns the current word for (principal, class). ok is
// false when the slot is missing or has been invalidated; callers must
// then call UpdateCache to repopulate it.
func (c *Cache) GetCacheBits(principal, class uuid.UUID) (bits privilege.CacheBits, ok bool) {
	sh := c.shardFor(principal)
	sh.mu.RLock()
	defer sh.mu.RUnlock()
	s, found := sh.entries[Key{Principal: principal, Class: class}]
	if !found || s.state != stateValid {
		return privilege.Invalid, false
	}
	return s.bits, true
}

// Compute recomputes the cache-bits word for one (principal, class)
// slot, typically by ORing contributions across the grantee's
// authorization object and every transitively-included group — the
// caller (sql/grantgraph) supplies that computation, keeping this
// package free of a dependency on the grant graph's in-memory model.
type Compute func() (privilege.CacheBits, error)

// UpdateCache recomputes and stores the cache-bits word for
// (principal, class), overwriting any stale or missing entry. A single
// writer is expected per slot; concurrent updates to the same slot
// serialize on the shard lock, matching "single writer per cache slot"
// from spec.md §4.3.
func (c *Cache) UpdateCache(principal, class uuid.UUID, compute Compute) (privilege.CacheBits, error) {
	bits, err := compute()
	if err != nil {
		return privilege.Invalid, err
	}
	sh := c.shardFor(principal)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	sh.entries[Key{Principal: principal, Class: class}] = slot{bits: bits, state: stateValid}
	return bits, nil
}

// ResetCacheForClass marks every entry referencing class as stale,
// across every principal's shard, without removing the slot (the next
// GetCacheBits reports ok=false and the next UpdateCache repopulates
// it).
func (c *Cache) ResetCacheForClass(class uuid.UUID) {
	for _, sh := range c.shards {
		sh.mu.Lock()
		for key, s := range sh.entries {
			if key.Class == class {
				s.state = stateInvalid
				sh.entries[key] = s
			}
		}
		sh.mu.Unlock()
	}
}

// RemoveUserCacheReferences drops every entry for principal and
// releases its cache index, per spec.md §8 invariant (F): after a user
// is dropped, no privilege-cache entry may reference it.
func (c *Cache) RemoveUserCacheReferences(principal uuid.UUID) {
	sh := c.shardFor(principal)
	sh.mu.Lock()
	for key := range sh.entries {
		if key.Principal == principal {
			delete(sh.entries, key)
		}
	}
	sh.mu.Unlock()
	c.indexes.Release(principal)
}
