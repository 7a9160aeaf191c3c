package server

import (
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// cacheHitKey is set by the lookup handler so the access log can annotate
// hit/miss; requests that never consult the cache log neither.
const cacheHitKey = "placegate.cache_hit"

func (s *Server) requestLogger(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		req := c.Request()

		s.log.Debug("→ request",
			zap.String("method", req.Method),
			zap.String("uri", req.RequestURI),
		)

		err := next(c)
		if err != nil {
			c.Error(err)
		}

		fields := []zap.Field{
			zap.String("method", req.Method),
			zap.String("uri", req.RequestURI),
			zap.Int("status", c.Response().Status),
			zap.Duration("latency", time.Since(start)),
		}
		if hit, ok := c.Get(cacheHitKey).(bool); ok {
			fields = append(fields, zap.Bool("cache_hit", hit))
		}

		if c.Response().Status >= 500 {
			s.log.Error("← request", fields...)
		} else if c.Response().Status >= 400 {
			s.log.Warn("← request", fields...)
		} else {
			s.log.Info("← request", fields...)
		}
		return nil
	}
}
