package cache

import (
	"log/slog"
	"strings"
)

// Invalidate purges every cached entry for the (type, user, school) scope of
// primaryType and each related type, regardless of any extra parameters in
// the key suffix. It returns the number of entries removed.
//
// The purge is deliberately coarse: one extra recomputation is far cheaper
// than serving a stale aggregate after a write. If a scope segment cannot be
// used in a key, the router degrades to purging the whole type rather than
// leaving stale entries behind.
func (c *Cache) Invalidate(primaryType, userID, schoolID string, relatedTypes ...string) int {
	removed := 0
	for _, typeName := range append([]string{primaryType}, relatedTypes...) {
		scope, err := BuildKey(typeName, userID, schoolID)
		if err != nil {
			slog.Warn("cache scope rejected, flushing whole type",
				"type", typeName,
				"user", userID,
				"school", schoolID,
				"error", err,
				"instance", c.instance)
			removed += c.FlushType(typeName)
			continue
		}
		n := c.deleteScope(scope)
		removed += n
		slog.Debug("cache scope invalidated",
			"scope", scope,
			"removed", n,
			"instance", c.instance)
	}
	return removed
}

// InvalidateByEntityID removes every live key of the listed types that
// contains entityID anywhere in its parameters. It exists for entities, like
// a course, whose identifier is buried in many differently scoped keys. The
// scan is O(n) in live keys, which the capacity cap keeps acceptable.
func (c *Cache) InvalidateByEntityID(typeNames []string, entityID string) int {
	if entityID == "" || len(typeNames) == 0 {
		return 0
	}

	types := make(map[string]struct{}, len(typeNames))
	for _, t := range typeNames {
		types[t] = struct{}{}
	}

	removed := 0
	for _, key := range c.store.Keys() {
		if _, ok := types[TypeOf(key)]; !ok {
			continue
		}
		if !strings.Contains(key, entityID) {
			continue
		}
		if c.store.Delete(key) {
			removed++
		}
	}

	slog.Debug("cache entity invalidation",
		"entity", entityID,
		"types", typeNames,
		"removed", removed,
		"instance", c.instance)
	return removed
}

// FlushType removes every live entry of the given types, regardless of user
// or school. Used for bulk resets such as closing an academic period.
func (c *Cache) FlushType(typeNames ...string) int {
	removed := 0
	for _, typeName := range typeNames {
		removed += c.deleteScope(typeName)
	}
	slog.Info("cache types flushed",
		"types", typeNames,
		"removed", removed,
		"instance", c.instance)
	return removed
}

// FlushAll empties the store. Hit/miss counters keep accumulating across the
// flush.
func (c *Cache) FlushAll() {
	c.store.FlushAll()
	slog.Info("cache flushed", "instance", c.instance)
}

// deleteScope removes the exact scope key plus every key under it. Matching
// on the delimiter boundary keeps sibling scopes intact: purging user "u1"
// must not touch "u10".
func (c *Cache) deleteScope(scope string) int {
	n := c.store.DeleteByPrefix(scope + KeyDelimiter)
	if c.store.Delete(scope) {
		n++
	}
	return n
}
