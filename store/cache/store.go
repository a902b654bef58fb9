package cache

import (
	"container/list"
	"strings"
	"sync"
	"time"
)

// Store is a capacity-bounded in-memory key-value store with per-entry TTL.
// Entries expire strictly after their TTL elapses: a read at exactly the
// expiry instant still returns the value. Expired entries are discarded
// lazily on read and in bulk by the owning handle's sweep loop.
//
// When inserting a new key would exceed MaxEntries, the store first reclaims
// expired entries and then removes the oldest-inserted live entries until
// there is room. Insertion order is the only eviction criterion; reads do not
// reorder entries. Replacing an existing key counts as a fresh insertion.
type Store struct {
	mu       sync.RWMutex
	entries  map[string]*list.Element
	order    *list.List // front = newest insertion, back = oldest
	capacity int

	hits   int64
	misses int64

	now func() time.Time
}

type entry struct {
	key       string
	value     any
	expiresAt time.Time
}

// Stats is a snapshot of the store's cumulative counters. Size counts live
// (non-expired) entries only.
type Stats struct {
	Hits   int64
	Misses int64
	Size   int
}

// NewStore creates a store holding at most capacity entries. A capacity of
// zero or less falls back to DefaultMaxEntries.
func NewStore(capacity int) *Store {
	if capacity <= 0 {
		capacity = DefaultMaxEntries
	}
	return &Store{
		entries:  make(map[string]*list.Element),
		order:    list.New(),
		capacity: capacity,
		now:      time.Now,
	}
}

// Get returns the value stored under key. An expired entry behaves as absent
// and is physically removed. Every call counts as a hit or a miss.
func (s *Store) Get(key string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	el, ok := s.entries[key]
	if !ok {
		s.misses++
		return nil, false
	}

	e := el.Value.(*entry)
	if s.expired(e, s.now()) {
		s.removeElement(el)
		s.misses++
		return nil, false
	}

	s.hits++
	return e.value, true
}

// Set inserts or replaces the value under key with the given TTL. A TTL of
// zero or less means "never cache": nothing is stored and any previous value
// under the key is removed, so a stale predecessor cannot be served.
// Replacing an existing key refreshes its insertion position.
func (s *Store) Set(key string, value any, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()

	if ttl <= 0 {
		if el, ok := s.entries[key]; ok {
			s.removeElement(el)
		}
		return
	}

	if el, ok := s.entries[key]; ok {
		e := el.Value.(*entry)
		e.value = value
		e.expiresAt = now.Add(ttl)
		s.order.MoveToFront(el)
		return
	}

	if len(s.entries) >= s.capacity {
		s.evictLocked(now)
	}

	e := &entry{
		key:       key,
		value:     value,
		expiresAt: now.Add(ttl),
	}
	s.entries[key] = s.order.PushFront(e)
}

// Delete removes key if present and reports whether it did.
func (s *Store) Delete(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	el, ok := s.entries[key]
	if !ok {
		return false
	}
	s.removeElement(el)
	return true
}

// DeleteByPrefix removes every key starting with prefix and returns the
// number of entries removed.
func (s *Store) DeleteByPrefix(prefix string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	var doomed []*list.Element
	for key, el := range s.entries {
		if strings.HasPrefix(key, prefix) {
			doomed = append(doomed, el)
		}
	}
	for _, el := range doomed {
		s.removeElement(el)
	}
	return len(doomed)
}

// Keys returns a snapshot of all live key names. Entries that have expired
// but not yet been swept are excluded. Order is unspecified.
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := s.now()
	keys := make([]string, 0, len(s.entries))
	for key, el := range s.entries {
		if s.expired(el.Value.(*entry), now) {
			continue
		}
		keys = append(keys, key)
	}
	return keys
}

// FlushAll removes every entry. Cumulative hit/miss counters are preserved;
// they track the process lifetime, not the store content.
func (s *Store) FlushAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = make(map[string]*list.Element)
	s.order.Init()
}

// Stats returns the cumulative hit/miss counters and the live entry count.
func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := s.now()
	size := 0
	for _, el := range s.entries {
		if !s.expired(el.Value.(*entry), now) {
			size++
		}
	}
	return Stats{Hits: s.hits, Misses: s.misses, Size: size}
}

// CleanupExpired removes every expired entry and returns the number removed.
// The sweep loop calls this on a fixed interval so memory stays bounded even
// without reads.
func (s *Store) CleanupExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.removeExpiredLocked(s.now())
}

// expired reports whether e is past its lifetime at now. The comparison is
// strict: an entry at exactly its expiry instant is still valid.
func (s *Store) expired(e *entry, now time.Time) bool {
	return now.After(e.expiresAt)
}

// evictLocked makes room for one new entry: reclaim expired entries first,
// then drop oldest-inserted live entries. Must be called with the lock held.
func (s *Store) evictLocked(now time.Time) {
	s.removeExpiredLocked(now)

	for len(s.entries) >= s.capacity {
		oldest := s.order.Back()
		if oldest == nil {
			return
		}
		s.removeElement(oldest)
	}
}

// removeExpiredLocked removes all expired entries. Must be called with the
// lock held.
func (s *Store) removeExpiredLocked(now time.Time) int {
	var doomed []*list.Element
	for _, el := range s.entries {
		if s.expired(el.Value.(*entry), now) {
			doomed = append(doomed, el)
		}
	}
	for _, el := range doomed {
		s.removeElement(el)
	}
	return len(doomed)
}

// removeElement unlinks an entry from both indexes. Must be called with the
// lock held.
func (s *Store) removeElement(el *list.Element) {
	e := el.Value.(*entry)
	delete(s.entries, e.key)
	s.order.Remove(el)
}
