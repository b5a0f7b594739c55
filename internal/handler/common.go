package handler // handler defines http handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-pos/internal/logger"
	"github.com/iliyamo/restaurant-pos/internal/middleware"
	"github.com/iliyamo/restaurant-pos/internal/model"
	"github.com/iliyamo/restaurant-pos/internal/repository"
	"github.com/iliyamo/restaurant-pos/internal/service"
)

const dateLayout = "2006-01-02"

// errUnauthorized is returned when a protected handler runs without an
// authenticated caller.
var errUnauthorized = errors.New("unauthorized")

var errBadTable = errors.New("invalid table id")

// actor extracts the authenticated caller set by JWTAuth.
func actor(c echo.Context) (model.Actor, error) {
	a, ok := middleware.Actor(c)
	if !ok {
		return model.Actor{}, errUnauthorized
	}
	return a, nil
}

// pathID parses a positive numeric path parameter.
func pathID(c echo.Context, name string) (uint64, bool) {
	n, err := strconv.ParseUint(strings.TrimSpace(c.Param(name)), 10, 64)
	if err != nil || n == 0 {
		return 0, false
	}
	return n, true
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
}

// statusFor maps service and repository errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrValidation), errors.Is(err, service.ErrEmptyCart):
		return http.StatusBadRequest
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, repository.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, service.ErrAlreadyPaid),
		errors.Is(err, service.ErrInsufficientFunds),
		errors.Is(err, service.ErrOrderClosed),
		errors.Is(err, service.ErrDishUnavailable),
		errors.Is(err, repository.ErrDuplicate),
		errors.Is(err, repository.ErrEmailExists),
		errors.Is(err, repository.ErrConflict):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

var fallbackLog = logger.New("pos-api")

// fail writes the error response for err. Unexpected errors are logged and
// hidden behind a generic message.
func fail(c echo.Context, err error) error {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		middleware.Logger(c, fallbackLog).Error("request_failed", err, map[string]any{"route": c.Path()})
		return c.JSON(code, echo.Map{"error": "internal error"})
	}
	return c.JSON(code, echo.Map{"error": err.Error()})
}

// parseDate reads a YYYY-MM-DD query parameter. An empty value yields def.
func parseDate(c echo.Context, name string, def time.Time) (time.Time, error) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return def, nil
	}
	t, err := time.ParseInLocation(dateLayout, raw, time.UTC)
	if err != nil {
		return time.Time{}, errors.New(name + " must be YYYY-MM-DD")
	}
	return t, nil
}

// parsePeriod reads ?from=&to= as inclusive calendar dates. Missing bounds
// stay open.
func parsePeriod(c echo.Context) (model.Period, error) {
	var p model.Period
	from, err := parseDate(c, "from", time.Time{})
	if err != nil {
		return p, err
	}
	to, err := parseDate(c, "to", time.Time{})
	if err != nil {
		return p, err
	}
	p.From = from
	if !to.IsZero() {
		p.To = to.AddDate(0, 0, 1)
	}
	if !p.From.IsZero() && !p.To.IsZero() && !p.From.Before(p.To) {
		return p, errors.New("from must not be after to")
	}
	return p, nil
}

func today() time.Time { return time.Now().UTC() }
