package middleware

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/restaurant-pos/internal/config"
	"github.com/iliyamo/restaurant-pos/internal/logger"
)

// cachedResponse is what a cache entry holds.  Catalog reads are plain JSON,
// so the content type is the only header worth keeping.
type cachedResponse struct {
	Status      int             `json:"status"`
	ContentType string          `json:"content_type"`
	Body        json.RawMessage `json:"body"`
}

// teeWriter forwards the response and keeps a copy of up to limit bytes.
// overflow is set when the body did not fit, and such responses are not cached.
type teeWriter struct {
	http.ResponseWriter
	status   int
	buf      bytes.Buffer
	limit    int
	overflow bool
}

func (w *teeWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *teeWriter) Write(b []byte) (int, error) {
	if !w.overflow {
		if w.limit > 0 && w.buf.Len()+len(b) > w.limit {
			w.overflow = true
			w.buf.Reset()
		} else {
			w.buf.Write(b)
		}
	}
	return w.ResponseWriter.Write(b)
}

// cacheKey is "<prefix>:<route>:<sha1 of the normalized query>".  The route
// stays readable so InvalidateCache can drop a route with one SCAN pattern;
// url.Values.Encode sorts the parameters so ?a=1&b=2 and ?b=2&a=1 share a key.
func cacheKey(prefix string, c echo.Context) string {
	q, err := url.ParseQuery(c.Request().URL.RawQuery)
	raw := c.Request().URL.RawQuery
	if err == nil {
		raw = q.Encode()
	}
	sum := sha1.Sum([]byte(raw))
	return fmt.Sprintf("%s:%s:%x", prefix, c.Path(), sum[:8])
}

// NewRedisCache serves catalog GETs from Redis.  Misses are captured and
// stored for cfg.TTL when the handler answers 200 with JSON.  Redis failures
// fall through to the handler.
func NewRedisCache(cfg config.CacheConfig, rdb *redis.Client, log *logger.Logger) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().Method != http.MethodGet {
				return next(c)
			}
			ctx := c.Request().Context()
			key := cacheKey(cfg.Prefix, c)

			if raw, err := rdb.Get(ctx, key).Bytes(); err == nil {
				var hit cachedResponse
				if json.Unmarshal(raw, &hit) == nil {
					c.Response().Header().Set("X-Cache", "HIT")
					return c.Blob(hit.Status, hit.ContentType, hit.Body)
				}
				log.Warn("cache_entry_corrupt", map[string]any{"key": key})
			} else if !errors.Is(err, redis.Nil) {
				log.Error("cache_get", err, map[string]any{"key": key})
			}

			tw := &teeWriter{ResponseWriter: c.Response().Writer, status: http.StatusOK, limit: cfg.MaxBodyBytes}
			c.Response().Writer = tw
			c.Response().Header().Set("X-Cache", "MISS")
			if err := next(c); err != nil {
				return err
			}

			ct := c.Response().Header().Get(echo.HeaderContentType)
			if tw.status != http.StatusOK || tw.overflow || !strings.HasPrefix(ct, echo.MIMEApplicationJSON) {
				return nil
			}
			entry, err := json.Marshal(cachedResponse{Status: tw.status, ContentType: ct, Body: tw.buf.Bytes()})
			if err != nil {
				return nil
			}
			if err := rdb.Set(context.WithoutCancel(ctx), key, entry, cfg.TTL).Err(); err != nil {
				log.Error("cache_set", err, map[string]any{"key": key})
			}
			return nil
		}
	}
}

// InvalidateCache drops the cached responses of routes after a successful
// write (2xx) so catalog edits show up before the TTL expires.
func InvalidateCache(cfg config.CacheConfig, rdb *redis.Client, routes ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)
			if !cfg.Enabled || rdb == nil || err != nil {
				return err
			}
			if st := c.Response().Status; st < 200 || st >= 300 {
				return nil
			}
			ctx := context.WithoutCancel(c.Request().Context())
			for _, route := range routes {
				iter := rdb.Scan(ctx, 0, cfg.Prefix+":"+route+":*", 100).Iterator()
				for iter.Next(ctx) {
					_ = rdb.Del(ctx, iter.Val()).Err()
				}
			}
			return nil
		}
	}
}
