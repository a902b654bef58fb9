// Package messaging serves the recipient directory through the shared cache:
// who a given user may address, resolved from roles, courses, and school
// membership.
package messaging

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/aiobandojss-lgtm/Educanexo360Back/store/cache"
)

// Recipient is one addressable user in the directory.
type Recipient struct {
	UserID   string `json:"user_id"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	CourseID string `json:"course_id,omitempty"`
}

// Filter narrows the directory to a role or a name search. The zero filter
// means everyone the user may address.
type Filter struct {
	Role  string `json:"role,omitempty"`
	Query string `json:"query,omitempty"`
}

// Source resolves the recipient directory from memberships and rosters.
type Source interface {
	LoadRecipients(ctx context.Context, userID, schoolID, courseID string, filter *Filter) ([]Recipient, error)
}

// Service answers directory reads through the cache and owns the
// invalidation hooks the roster write paths call after committing.
type Service struct {
	source Source
	cache  *cache.Cache
}

// NewService creates a messaging service backed by source and c.
func NewService(source Source, c *cache.Cache) *Service {
	return &Service{source: source, cache: c}
}

// GetRecipients returns the users userID may message at a school, narrowed
// to one course when courseID is non-empty. The course ID rides in the key
// unhashed so roster invalidation can find it; free-form filters are hashed.
// Cache trouble degrades to a direct load.
func (s *Service) GetRecipients(ctx context.Context, userID, schoolID, courseID string, filter *Filter) ([]Recipient, error) {
	params := []string{userID, schoolID}
	if courseID != "" {
		params = append(params, courseID)
	}
	if filter != nil && *filter != (Filter{}) {
		raw, _ := json.Marshal(filter)
		params = append(params, cache.SafeParam(string(raw)))
	}

	key, err := cache.BuildKey(cache.TypeRecipients, params...)
	if err != nil {
		slog.Warn("recipient cache key rejected, loading directly",
			"user", userID,
			"school", schoolID,
			"error", err)
		return s.source.LoadRecipients(ctx, userID, schoolID, courseID, filter)
	}

	return cache.Fetch(ctx, s.cache, key, cache.TypeRecipients, func(ctx context.Context) ([]Recipient, error) {
		return s.source.LoadRecipients(ctx, userID, schoolID, courseID, filter)
	})
}

// RosterChanged purges the directory scope of every affected user after a
// membership write: the users added or removed, plus anyone whose visible
// directory shrinks or grows with them.
func (s *Service) RosterChanged(schoolID string, userIDs ...string) int {
	removed := 0
	for _, id := range userIDs {
		removed += s.cache.Invalidate(cache.TypeRecipients, id, schoolID)
	}
	return removed
}

// CourseRosterChanged drops every cached directory that mentions the course,
// whoever it belongs to. Used when a whole course is reassigned and the
// affected user list is not at hand.
func (s *Service) CourseRosterChanged(courseID string) int {
	return s.cache.InvalidateByEntityID([]string{cache.TypeRecipients}, courseID)
}
