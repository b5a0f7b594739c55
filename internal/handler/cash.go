package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/iliyamo/restaurant-pos/internal/model"
)

// Cash is implemented by *service.CashService.
type Cash interface {
	GetInstance(ctx context.Context) (model.CashRegister, error)
	Deposit(ctx context.Context, actor model.Actor, amount decimal.Decimal, note string) (model.CashMovement, error)
	Withdraw(ctx context.Context, actor model.Actor, amount decimal.Decimal, note string) (model.CashMovement, error)
	Reset(ctx context.Context, actor model.Actor) (model.CashMovement, error)
	Movements(ctx context.Context, p model.Period, limit int) ([]model.CashMovement, error)
}

type CashHandler struct {
	Cash Cash
}

func NewCashHandler(s Cash) *CashHandler { return &CashHandler{Cash: s} }

// Get handles GET /v1/cash.
func (h *CashHandler) Get(c echo.Context) error {
	reg, err := h.Cash.GetInstance(c.Request().Context())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, reg)
}

// Movements handles GET /v1/cash/movements?from=&to=&limit=.
func (h *CashHandler) Movements(c echo.Context) error {
	p, err := parsePeriod(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	limit := 100
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return badRequest(c, "invalid limit")
		}
		limit = n
	}
	out, err := h.Cash.Movements(c.Request().Context(), p, limit)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

type cashBody struct {
	Amount decimal.Decimal `json:"amount"`
	Note   string          `json:"note"`
}

// Deposit handles POST /v1/cash/deposit.
func (h *CashHandler) Deposit(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return fail(c, err)
	}
	var body cashBody
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	mv, err := h.Cash.Deposit(c.Request().Context(), a, body.Amount, body.Note)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, mv)
}

// Withdraw handles POST /v1/cash/withdraw; it refuses to overdraw.
func (h *CashHandler) Withdraw(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return fail(c, err)
	}
	var body cashBody
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	mv, err := h.Cash.Withdraw(c.Request().Context(), a, body.Amount, body.Note)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, mv)
}

// Reset handles POST /v1/cash/reset.
func (h *CashHandler) Reset(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return fail(c, err)
	}
	mv, err := h.Cash.Reset(c.Request().Context(), a)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, mv)
}
