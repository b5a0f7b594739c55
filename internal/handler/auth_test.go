package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/restaurant-pos/internal/config"
	"github.com/iliyamo/restaurant-pos/internal/model"
	"github.com/iliyamo/restaurant-pos/internal/repository/memory"
	"github.com/iliyamo/restaurant-pos/internal/service"
)

type authEnv struct {
	store  *memory.Store
	users  *service.UserService
	routes func(e *echo.Echo)
}

func newAuthEnv(t *testing.T) authEnv {
	t.Helper()
	store := memory.New()
	users := service.NewUserService(service.Deps{Store: store}, 4)
	_, err := users.Create(context.Background(), "caisse@pos.test", "caisse-secret", model.RoleCashier)
	require.NoError(t, err)

	cfg := config.Config{JWTSecret: "test-secret", AccessTTLMin: 15, RefreshTTLDays: 7}
	h := NewAuthHandler(cfg, users, memory.NewTokenStore())
	return authEnv{
		store: store,
		users: users,
		routes: func(e *echo.Echo) {
			e.POST("/auth/login", h.Login)
			e.POST("/auth/refresh", h.Refresh)
			e.POST("/auth/refresh-access", h.RefreshAccess)
			e.POST("/auth/logout", h.Logout)
		},
	}
}

func login(t *testing.T, env authEnv) (access, refresh string) {
	t.Helper()
	rec := serve(t, nil, env.routes, http.MethodPost, "/auth/login", `{"email":"Caisse@pos.test","password":"caisse-secret"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	user := body["user"].(map[string]any)
	assert.Equal(t, "CASHIER", user["role"])
	return body["access"].(map[string]any)["token"].(string), body["refresh"].(map[string]any)["token"].(string)
}

func TestLogin(t *testing.T) {
	env := newAuthEnv(t)
	access, refresh := login(t, env)
	assert.NotEmpty(t, access)
	assert.NotEmpty(t, refresh)

	tests := []struct {
		name string
		body string
		code int
	}{
		{"wrong password", `{"email":"caisse@pos.test","password":"nope-nope"}`, http.StatusUnauthorized},
		{"unknown email", `{"email":"ghost@pos.test","password":"caisse-secret"}`, http.StatusUnauthorized},
		{"missing fields", `{"email":""}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, serve(t, nil, env.routes, http.MethodPost, "/auth/login", tt.body).Code)
		})
	}
}

func TestLoginRefusesInactiveAccount(t *testing.T) {
	env := newAuthEnv(t)
	u, err := env.users.ByEmail(context.Background(), "caisse@pos.test")
	require.NoError(t, err)
	require.NoError(t, env.store.SetUserActive(u.ID, false))

	rec := serve(t, nil, env.routes, http.MethodPost, "/auth/login", `{"email":"caisse@pos.test","password":"caisse-secret"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRefreshRotates(t *testing.T) {
	env := newAuthEnv(t)
	_, refresh := login(t, env)
	body := `{"refresh_token":"` + refresh + `"}`

	rec := serve(t, nil, env.routes, http.MethodPost, "/auth/refresh-access", body)
	require.Equal(t, http.StatusOK, rec.Code, "refresh-access keeps the refresh token")

	rec = serve(t, nil, env.routes, http.MethodPost, "/auth/refresh", body)
	require.Equal(t, http.StatusOK, rec.Code)
	next := decode(t, rec)["refresh"].(map[string]any)["token"].(string)
	assert.NotEqual(t, refresh, next)

	assert.Equal(t, http.StatusUnauthorized, serve(t, nil, env.routes, http.MethodPost, "/auth/refresh", body).Code, "the rotated token is revoked")
	assert.Equal(t, http.StatusBadRequest, serve(t, nil, env.routes, http.MethodPost, "/auth/refresh", `{}`).Code)
}

func TestLogout(t *testing.T) {
	env := newAuthEnv(t)

	t.Run("one session", func(t *testing.T) {
		_, refresh := login(t, env)
		body := `{"refresh_token":"` + refresh + `"}`
		assert.Equal(t, http.StatusNoContent, serve(t, nil, env.routes, http.MethodPost, "/auth/logout", body).Code)
		assert.Equal(t, http.StatusUnauthorized, serve(t, nil, env.routes, http.MethodPost, "/auth/refresh", body).Code)
	})

	t.Run("every session of the bearer", func(t *testing.T) {
		access, refresh := login(t, env)
		e := echo.New()
		env.routes(e)
		req := newJSONRequest(http.MethodPost, "/auth/logout", "")
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+access)
		rec := record(e, req)
		assert.Equal(t, http.StatusNoContent, rec.Code)

		body := `{"refresh_token":"` + refresh + `"}`
		assert.Equal(t, http.StatusUnauthorized, serve(t, nil, env.routes, http.MethodPost, "/auth/refresh", body).Code)
	})

	t.Run("nothing to revoke", func(t *testing.T) {
		assert.Equal(t, http.StatusBadRequest, serve(t, nil, env.routes, http.MethodPost, "/auth/logout", "").Code)
	})
}
