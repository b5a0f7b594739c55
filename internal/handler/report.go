package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-pos/internal/model"
)

// Reports is implemented by *service.ReportService.
type Reports interface {
	Payments(ctx context.Context, p model.Period) (model.PaymentReport, error)
	Dashboard(ctx context.Context, day time.Time) (model.CashDashboard, error)
	OrderStats(ctx context.Context, day time.Time) (model.OrderStats, error)
	DailyBalance(ctx context.Context, date time.Time) (model.DailyBalance, error)
}

// BalanceJob is implemented by *service.BalanceService.
type BalanceJob interface {
	Run(ctx context.Context, date time.Time, testMode bool) (model.DailyBalanceRun, error)
}

type ReportHandler struct {
	Reports Reports
	Balance BalanceJob
}

func NewReportHandler(r Reports, b BalanceJob) *ReportHandler {
	return &ReportHandler{Reports: r, Balance: b}
}

// Payments handles GET /v1/reports/payments?from=&to=.
func (h *ReportHandler) Payments(c echo.Context) error {
	p, err := parsePeriod(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	r, err := h.Reports.Payments(c.Request().Context(), p)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, r)
}

// Dashboard handles GET /v1/reports/dashboard?date=.
func (h *ReportHandler) Dashboard(c echo.Context) error {
	day, err := parseDate(c, "date", today())
	if err != nil {
		return badRequest(c, err.Error())
	}
	d, err := h.Reports.Dashboard(c.Request().Context(), day)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, d)
}

// Orders handles GET /v1/reports/orders?date=.
func (h *ReportHandler) Orders(c echo.Context) error {
	day, err := parseDate(c, "date", today())
	if err != nil {
		return badRequest(c, err.Error())
	}
	st, err := h.Reports.OrderStats(c.Request().Context(), day)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, st)
}

// DailyBalance handles GET /v1/reports/daily-balance?date=.
func (h *ReportHandler) DailyBalance(c echo.Context) error {
	day, err := parseDate(c, "date", today())
	if err != nil {
		return badRequest(c, err.Error())
	}
	b, err := h.Reports.DailyBalance(c.Request().Context(), day)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, b)
}

// RunDailyBalance handles POST /v1/reports/daily-balance/run?date=&test=.
func (h *ReportHandler) RunDailyBalance(c echo.Context) error {
	day, err := parseDate(c, "date", today())
	if err != nil {
		return badRequest(c, err.Error())
	}
	testMode := false
	if raw := c.QueryParam("test"); raw != "" {
		if testMode, err = strconv.ParseBool(raw); err != nil {
			return badRequest(c, "test must be a boolean")
		}
	}
	run, err := h.Balance.Run(c.Request().Context(), day, testMode)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, run)
}
