package middleware

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-pos/internal/model"
)

// Actor returns the authenticated caller.  ok is false on routes that are
// not behind JWTAuth.
func Actor(c echo.Context) (model.Actor, bool) {
	id, ok := c.Get(ctxUserID).(uint64)
	if !ok || id == 0 {
		return model.Actor{}, false
	}
	role, _ := c.Get(ctxRole).(model.Role)
	return model.Actor{UserID: id, Role: role}, true
}

// SetActor is what JWTAuth does after verifying a token.  Tests use it to
// skip token signing.
func SetActor(c echo.Context, a model.Actor) {
	c.Set(ctxUserID, a.UserID)
	c.Set(ctxRole, a.Role)
}

// userKey identifies the caller in rate-limit keys; "anon" when unknown.
func userKey(c echo.Context) string {
	if a, ok := Actor(c); ok {
		return strconv.FormatUint(a.UserID, 10)
	}
	return "anon"
}
