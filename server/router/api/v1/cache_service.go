package v1

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
)

// FlushCacheResponse confirms a full flush and names the instance that
// performed it, so operators notice when a restart swapped the process.
type FlushCacheResponse struct {
	Instance string `json:"instance"`
	Flushed  bool   `json:"flushed"`
}

// FlushCacheTypesRequest lists the cache types to flush.
type FlushCacheTypesRequest struct {
	Types []string `json:"types"`
}

// InvalidateEntityRequest asks for every key of the listed types mentioning
// the entity to be dropped.
type InvalidateEntityRequest struct {
	Types    []string `json:"types"`
	EntityID string   `json:"entity_id"`
}

// InvalidationResponse reports how many entries a purge removed.
type InvalidationResponse struct {
	Removed int `json:"removed"`
}

// GetCacheStats returns the live cache report.
// GET /api/v1/cache/stats
func (s *APIV1Service) GetCacheStats(c echo.Context) error {
	return c.JSON(http.StatusOK, s.Cache.Report())
}

// FlushCache empties the whole cache.
// POST /api/v1/cache/flush
func (s *APIV1Service) FlushCache(c echo.Context) error {
	s.Cache.FlushAll()
	slog.Info("cache flushed via admin endpoint",
		"request_id", c.Response().Header().Get(echo.HeaderXRequestID))
	return c.JSON(http.StatusOK, FlushCacheResponse{
		Instance: s.Cache.InstanceID(),
		Flushed:  true,
	})
}

// FlushCacheTypes flushes every entry of the listed cache types.
// POST /api/v1/cache/flush/types
func (s *APIV1Service) FlushCacheTypes(c echo.Context) error {
	var req FlushCacheTypesRequest
	if err := c.Bind(&req); err != nil {
		slog.Warn("invalid flush types request", "error", err)
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if len(req.Types) == 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "types must not be empty"})
	}

	removed := s.Cache.FlushType(req.Types...)
	return c.JSON(http.StatusOK, InvalidationResponse{Removed: removed})
}

// InvalidateEntity drops every key of the listed types that mentions the
// entity ID, for cleanups where the affected users are not known.
// POST /api/v1/cache/invalidate/entity
func (s *APIV1Service) InvalidateEntity(c echo.Context) error {
	var req InvalidateEntityRequest
	if err := c.Bind(&req); err != nil {
		slog.Warn("invalid entity invalidation request", "error", err)
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if req.EntityID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "entity_id must not be empty"})
	}
	if len(req.Types) == 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "types must not be empty"})
	}

	removed := s.Cache.InvalidateByEntityID(req.Types, req.EntityID)
	return c.JSON(http.StatusOK, InvalidationResponse{Removed: removed})
}
