package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/aiobandojss-lgtm/Educanexo360Back/internal/profile"
	"github.com/aiobandojss-lgtm/Educanexo360Back/server/middleware"
	apiv1 "github.com/aiobandojss-lgtm/Educanexo360Back/server/router/api/v1"
	"github.com/aiobandojss-lgtm/Educanexo360Back/store/cache"
)

// Server hosts the cache administration API. It owns the echo instance and
// shuts the cache down with it.
type Server struct {
	Profile *profile.Profile

	echoServer *echo.Echo
	cache      *cache.Cache
}

func NewServer(ctx context.Context, profile *profile.Profile, cacheHandle *cache.Cache) (*Server, error) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echomw.Recover())
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{
		Generator: func() string {
			return uuid.New().String()
		},
	}))

	s := &Server{
		Profile:    profile,
		echoServer: e,
		cache:      cacheHandle,
	}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "Service ready.")
	})

	limiter := middleware.NewRateLimiter(10, 20)
	apiV1Service := apiv1.NewAPIV1Service(profile, cacheHandle)
	apiV1Service.RegisterRoutes(e, limiter)

	return s, nil
}

func (s *Server) Start(ctx context.Context) error {
	address := fmt.Sprintf("%s:%d", s.Profile.Addr, s.Profile.Port)
	slog.Info("server started",
		"address", address,
		"mode", s.Profile.Mode,
		"version", s.Profile.Version,
		"cache_instance", s.cache.InstanceID())
	return s.echoServer.Start(address)
}

func (s *Server) Shutdown(ctx context.Context) {
	// The caller's context is usually already canceled by the signal that
	// started the shutdown; give the drain its own deadline.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.echoServer.Shutdown(ctx); err != nil {
		slog.Error("failed to shutdown server", slog.String("error", err.Error()))
	}

	s.cache.Close()
	slog.Info("server shutdown")
}
