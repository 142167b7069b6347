package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/nyayamitra/nyaya-mitra/internal/config"
)

type cachedPayload struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

// captureWriter tees the response body so a successful reply can be stored
// after the handler runs.
type captureWriter struct {
	http.ResponseWriter
	buf    *bytes.Buffer
	status int
}

func (w *captureWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *captureWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}

// NewRedisCache returns a read-through response cache for idempotent public
// endpoints. Only 200 responses within the size limit are stored; anything
// else flows through untouched. With no Redis client the middleware is a
// pass-through.
func NewRedisCache(cfg config.CacheConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error { return next(c) }
		}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if !cfg.Methods[req.Method] {
				return next(c)
			}

			key := buildCacheKey(cfg, c)
			ctx := req.Context()

			if raw, err := rdb.Get(ctx, key).Bytes(); err == nil {
				var payload cachedPayload
				if jsonErr := json.Unmarshal(raw, &payload); jsonErr == nil {
					c.Response().Header().Set("X-Cache", "HIT")
					return c.Blob(payload.Status, payload.ContentType, payload.Body)
				}
				// Corrupt entries are dropped rather than served.
				rdb.Del(ctx, key)
			} else if err != redis.Nil {
				c.Logger().Warnf("[cache] redis get failed for key=%s: %v", key, err)
				return next(c)
			}

			c.Response().Header().Set("X-Cache", "MISS")
			cw := &captureWriter{ResponseWriter: c.Response().Writer, buf: &bytes.Buffer{}}
			c.Response().Writer = cw

			if err := next(c); err != nil {
				return err
			}

			if cw.status == http.StatusOK && cw.buf.Len() <= cfg.MaxBodyBytes {
				payload := cachedPayload{
					Status:      cw.status,
					ContentType: c.Response().Header().Get(echo.HeaderContentType),
					Body:        cw.buf.Bytes(),
				}
				if raw, err := json.Marshal(payload); err == nil {
					// The request context may already be done by the time the
					// body is flushed; store with a detached short deadline.
					storeCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
					defer cancel()
					if err := rdb.Set(storeCtx, key, raw, cfg.TTL).Err(); err != nil {
						c.Logger().Warnf("[cache] redis set failed for key=%s: %v", key, err)
					}
				}
			}
			return nil
		}
	}
}

func buildCacheKey(cfg config.CacheConfig, c echo.Context) string {
	req := c.Request()
	key := cfg.Prefix + ":" + req.Method + ":" + req.URL.Path
	if cfg.KeyStrategy == "route_query" && req.URL.RawQuery != "" {
		key += "?" + req.URL.RawQuery
	}
	return key
}
