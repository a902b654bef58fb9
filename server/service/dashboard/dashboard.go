// Package dashboard serves the per-user dashboard aggregates (pending tasks,
// unread messages, upcoming events) through the shared cache.
package dashboard

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/aiobandojss-lgtm/Educanexo360Back/store/cache"
)

// Overview is the aggregate a user's dashboard renders from.
type Overview struct {
	PendingTasks   int       `json:"pending_tasks"`
	UnreadMessages int       `json:"unread_messages"`
	UpcomingEvents int       `json:"upcoming_events"`
	GeneratedAt    time.Time `json:"generated_at"`
}

// Filter narrows the overview to a search query or a single course. The zero
// filter means the whole dashboard.
type Filter struct {
	Query  string `json:"query,omitempty"`
	Course string `json:"course,omitempty"`
}

// Source computes the overview from the backing services. Implementations
// typically aggregate several database queries.
type Source interface {
	LoadOverview(ctx context.Context, userID, schoolID string, filter *Filter) (*Overview, error)
}

// Service answers dashboard reads through the cache and owns the
// invalidation hooks the write paths call after committing.
type Service struct {
	source Source
	cache  *cache.Cache
}

// NewService creates a dashboard service backed by source and c.
func NewService(source Source, c *cache.Cache) *Service {
	return &Service{source: source, cache: c}
}

// GetOverview returns the dashboard overview for a user at a school,
// computing it through the source on a cache miss. A filter becomes an extra
// key parameter, so differently filtered views cache independently. If the
// key cannot be built the service falls back to a direct source call; the
// request never fails on cache trouble.
func (s *Service) GetOverview(ctx context.Context, userID, schoolID string, filter *Filter) (*Overview, error) {
	params := []string{userID, schoolID}
	if filter != nil && *filter != (Filter{}) {
		raw, _ := json.Marshal(filter)
		params = append(params, cache.SafeParam(string(raw)))
	}

	key, err := cache.BuildKey(cache.TypeDashboard, params...)
	if err != nil {
		slog.Warn("dashboard cache key rejected, loading directly",
			"user", userID,
			"school", schoolID,
			"error", err)
		return s.source.LoadOverview(ctx, userID, schoolID, filter)
	}

	return cache.Fetch(ctx, s.cache, key, cache.TypeDashboard, func(ctx context.Context) (*Overview, error) {
		return s.source.LoadOverview(ctx, userID, schoolID, filter)
	})
}

// TaskAssigned purges the user's dashboard scope after a task write lands,
// including every filtered variant. Call it after the transaction commits.
func (s *Service) TaskAssigned(userID, schoolID string) int {
	return s.cache.Invalidate(cache.TypeDashboard, userID, schoolID)
}

// MessageDelivered purges the dashboard scope of every recipient of a new
// message; their unread counters just changed.
func (s *Service) MessageDelivered(schoolID string, recipientIDs ...string) int {
	removed := 0
	for _, id := range recipientIDs {
		removed += s.cache.Invalidate(cache.TypeDashboard, id, schoolID)
	}
	return removed
}
