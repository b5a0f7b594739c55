package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/restaurant-pos/internal/config"
	"github.com/iliyamo/restaurant-pos/internal/model"
)

func TestParseBucket(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want bucketResult
		err  bool
	}{
		{"allowed", []any{int64(1), int64(41), int64(0)}, bucketResult{allowed: true, remaining: 41}, false},
		{"blocked", []any{int64(0), int64(0), int64(750)}, bucketResult{retry: 750 * time.Millisecond}, false},
		{"string fields", []any{"1", "3", "0"}, bucketResult{allowed: true, remaining: 3}, false},
		{"short", []any{int64(1)}, bucketResult{}, true},
		{"not a list", "OK", bucketResult{}, true},
		{"float field", []any{int64(1), 2.5, int64(0)}, bucketResult{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseBucket(tt.in)
			if tt.err {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBucketFor(t *testing.T) {
	cfg := config.RateLimitConfig{Capacity: 120, TableCapacity: 30, Prefix: "pos:rl"}
	ctx := func(a *model.Actor) echo.Context {
		req := httptest.NewRequest(http.MethodGet, "/v1/dishes", nil)
		req.RemoteAddr = "10.0.0.5:5555"
		c := echo.New().NewContext(req, httptest.NewRecorder())
		if a != nil {
			SetActor(c, *a)
		}
		return c
	}

	key, capacity := bucketFor(cfg, ctx(&model.Actor{UserID: 9, Role: model.RoleTable}))
	assert.Equal(t, "pos:rl:user:9", key)
	assert.Equal(t, 30, capacity)

	key, capacity = bucketFor(cfg, ctx(&model.Actor{UserID: 4, Role: model.RoleCashier}))
	assert.Equal(t, "pos:rl:user:4", key)
	assert.Equal(t, 120, capacity)

	key, capacity = bucketFor(cfg, ctx(nil))
	assert.Equal(t, "pos:rl:ip:10.0.0.5", key)
	assert.Equal(t, 120, capacity)
}

func TestNewTokenBucketDisabled(t *testing.T) {
	e := echo.New()
	e.GET("/x", func(c echo.Context) error { return c.NoContent(http.StatusOK) },
		NewTokenBucket(config.RateLimitConfig{Enabled: true}, nil, nil))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
