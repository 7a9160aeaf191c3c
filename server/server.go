// Package server exposes the HTTP surface: the lookup endpoint plus
// read-only health and stats introspection.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/unkn0wn-root/placegate"
	"github.com/unkn0wn-root/placegate/reqlog"
	"github.com/unkn0wn-root/placegate/service"
	"github.com/unkn0wn-root/placegate/upstream"
)

// StatsSource serves aggregate request counters. *reqlog.Store satisfies it.
type StatsSource interface {
	Aggregates(ctx context.Context, windows []reqlog.Window) (map[string]reqlog.Stats, error)
}

type Server struct {
	echo    *echo.Echo
	svc     *service.Service
	cache   placegate.Cache
	stats   StatsSource
	log     *zap.Logger
	backend string
	started time.Time
}

type Options struct {
	Service *service.Service
	Cache   placegate.Cache
	Stats   StatsSource // nil disables /stats
	Log     *zap.Logger // nil => zap.NewNop()
	Backend string      // snapshot backend name, reported by /health
}

func New(opts Options) *Server {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		echo:    e,
		svc:     opts.Service,
		cache:   opts.Cache,
		stats:   opts.Stats,
		log:     log,
		backend: opts.Backend,
		started: time.Now(),
	}

	e.Use(s.requestLogger)
	e.GET("/places/:placeID", s.handleLookup)
	e.GET("/health", s.handleHealth)
	if s.stats != nil {
		e.GET("/stats", s.handleStats)
	}
	return s
}

// Handler returns the root http.Handler (tests drive it via httptest).
func (s *Server) Handler() http.Handler { return s.echo }

func (s *Server) Start(addr string) error { return s.echo.Start(addr) }

func (s *Server) Shutdown(ctx context.Context) error { return s.echo.Shutdown(ctx) }

func (s *Server) handleLookup(c echo.Context) error {
	itemID := c.Param("placeID")
	tenantKey := c.QueryParam("key")
	includeNext := c.QueryParam("next") != ""

	res, apiErr := s.svc.Lookup(c.Request().Context(), tenantKey, itemID, includeNext)
	if apiErr != nil {
		return c.JSON(httpStatus(apiErr), echo.Map{"error": apiErr})
	}

	c.Set(cacheHitKey, res.CacheHit)

	if includeNext {
		return c.JSON(http.StatusOK, echo.Map{
			"result":           res.Record,
			"nextRelevantTime": res.Next,
		})
	}
	return c.JSON(http.StatusOK, res.Record)
}

// httpStatus maps a normalized code onto a valid HTTP response status.
// Some embedded tokens map to codes that make no sense as a response to this
// request (204 for ZERO_RESULTS, 304 for NOT_MODIFIED); those still carry a
// JSON error body, so anything outside 4xx/5xx is surfaced as-is only when
// legal, else as 502.
func httpStatus(e *upstream.APIError) int {
	if e.Code >= 400 && e.Code < 600 {
		return e.Code
	}
	if e.Code == http.StatusNoContent || e.Code == http.StatusNotModified {
		return http.StatusNotFound
	}
	return http.StatusBadGateway
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"status": "ok",
		"cache": echo.Map{
			"tenants": s.cache.Tenants(),
			"entries": s.cache.Len(),
			"ttl_ms":  s.cache.DefaultTTL().Milliseconds(),
			"backend": s.backend,
		},
		"uptime_s": int64(time.Since(s.started).Seconds()),
	})
}

func (s *Server) handleStats(c echo.Context) error {
	stats, err := s.stats.Aggregates(c.Request().Context(), nil)
	if err != nil {
		s.log.Error("stats aggregation failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "stats unavailable"})
	}
	return c.JSON(http.StatusOK, stats)
}
