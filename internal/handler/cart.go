package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-pos/internal/model"
	"github.com/iliyamo/restaurant-pos/internal/service"
)

// Carts is implemented by *service.CartService.
type Carts interface {
	SetItem(ctx context.Context, actor model.Actor, tableID, dishID uint64, qty int) ([]service.CartItem, error)
	Get(ctx context.Context, actor model.Actor, tableID uint64) ([]service.CartItem, error)
	Clear(ctx context.Context, actor model.Actor, tableID uint64) error
	Checkout(ctx context.Context, actor model.Actor, tableID uint64) (model.Order, error)
}

// CartHandler serves the self-ordering flow of a table.
type CartHandler struct {
	Carts Carts
}

func NewCartHandler(s Carts) *CartHandler { return &CartHandler{Carts: s} }

func (h *CartHandler) target(c echo.Context) (model.Actor, uint64, error) {
	a, err := actor(c)
	if err != nil {
		return a, 0, err
	}
	id, ok := pathID(c, "id")
	if !ok {
		return a, 0, errBadTable
	}
	return a, id, nil
}

// Get handles GET /v1/tables/:id/cart.
func (h *CartHandler) Get(c echo.Context) error {
	a, id, err := h.target(c)
	if err != nil {
		return h.targetErr(c, err)
	}
	items, err := h.Carts.Get(c.Request().Context(), a, id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"table_id": id, "items": items})
}

// SetItem handles PUT /v1/tables/:id/cart/items. A quantity of zero or less
// removes the dish.
func (h *CartHandler) SetItem(c echo.Context) error {
	a, id, err := h.target(c)
	if err != nil {
		return h.targetErr(c, err)
	}
	var body service.CartItem
	if err := c.Bind(&body); err != nil || body.DishID == 0 {
		return badRequest(c, "dish_id is required")
	}
	items, err := h.Carts.SetItem(c.Request().Context(), a, id, body.DishID, body.Quantity)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"table_id": id, "items": items})
}

// Clear handles DELETE /v1/tables/:id/cart.
func (h *CartHandler) Clear(c echo.Context) error {
	a, id, err := h.target(c)
	if err != nil {
		return h.targetErr(c, err)
	}
	if err := h.Carts.Clear(c.Request().Context(), a, id); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Checkout handles POST /v1/tables/:id/cart/checkout.
func (h *CartHandler) Checkout(c echo.Context) error {
	a, id, err := h.target(c)
	if err != nil {
		return h.targetErr(c, err)
	}
	o, err := h.Carts.Checkout(c.Request().Context(), a, id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, o)
}

func (h *CartHandler) targetErr(c echo.Context, err error) error {
	if err == errBadTable {
		return badRequest(c, "invalid table id")
	}
	return fail(c, err)
}
