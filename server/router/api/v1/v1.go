// Package v1 exposes the administrative HTTP surface of the cache: a stats
// report for dashboards and explicit flush/invalidate operations for
// operators. The application CRUD API lives in the main backend, not here.
package v1

import (
	"github.com/labstack/echo/v4"

	"github.com/aiobandojss-lgtm/Educanexo360Back/internal/profile"
	"github.com/aiobandojss-lgtm/Educanexo360Back/server/middleware"
	"github.com/aiobandojss-lgtm/Educanexo360Back/store/cache"
)

type APIV1Service struct {
	Profile *profile.Profile
	Cache   *cache.Cache
}

func NewAPIV1Service(profile *profile.Profile, cacheHandle *cache.Cache) *APIV1Service {
	return &APIV1Service{
		Profile: profile,
		Cache:   cacheHandle,
	}
}

// RegisterRoutes mounts the cache administration endpoints. Reads are open;
// the mutating endpoints sit behind the per-client rate limiter.
func (s *APIV1Service) RegisterRoutes(echoServer *echo.Echo, limiter *middleware.RateLimiter) {
	apiGroup := echoServer.Group("/api/v1")
	apiGroup.GET("/cache/stats", s.GetCacheStats)

	adminGroup := apiGroup.Group("/cache", limiter.Middleware())
	adminGroup.POST("/flush", s.FlushCache)
	adminGroup.POST("/flush/types", s.FlushCacheTypes)
	adminGroup.POST("/invalidate/entity", s.InvalidateEntity)
}
