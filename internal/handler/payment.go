package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/iliyamo/restaurant-pos/internal/model"
	"github.com/iliyamo/restaurant-pos/internal/service"
)

// Payments is implemented by *service.PaymentService.
type Payments interface {
	Record(ctx context.Context, actor model.Actor, in service.PaymentInput) (model.Payment, error)
	Delete(ctx context.Context, actor model.Actor, paymentID uint64) error
	GetByOrder(ctx context.Context, orderID uint64) (model.Payment, error)
	List(ctx context.Context, p model.Period) ([]model.Payment, error)
}

type PaymentHandler struct {
	Payments Payments
}

func NewPaymentHandler(p Payments) *PaymentHandler { return &PaymentHandler{Payments: p} }

// Record handles POST /v1/orders/:id/payment. amount defaults to the order
// total.
func (h *PaymentHandler) Record(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return fail(c, err)
	}
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid order id")
	}
	var body struct {
		Method string           `json:"method"`
		Amount *decimal.Decimal `json:"amount"`
	}
	if err := c.Bind(&body); err != nil || strings.TrimSpace(body.Method) == "" {
		return badRequest(c, "method is required")
	}
	p, err := h.Payments.Record(c.Request().Context(), a, service.PaymentInput{
		OrderID: id,
		Method:  model.PaymentMethod(body.Method),
		Amount:  body.Amount,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, p)
}

// GetForOrder handles GET /v1/orders/:id/payment.
func (h *PaymentHandler) GetForOrder(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid order id")
	}
	p, err := h.Payments.GetByOrder(c.Request().Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

// List handles GET /v1/payments?from=&to=.
func (h *PaymentHandler) List(c echo.Context) error {
	p, err := parsePeriod(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	out, err := h.Payments.List(c.Request().Context(), p)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// Delete handles DELETE /v1/payments/:id.
func (h *PaymentHandler) Delete(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return fail(c, err)
	}
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid payment id")
	}
	if err := h.Payments.Delete(c.Request().Context(), a, id); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
