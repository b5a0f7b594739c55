package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/iliyamo/restaurant-pos/internal/model"
	"github.com/iliyamo/restaurant-pos/internal/service"
)

// Orders is implemented by *service.OrderService.
type Orders interface {
	Create(ctx context.Context, actor model.Actor, in service.CreateOrderInput) (model.Order, error)
	AddLine(ctx context.Context, actor model.Actor, orderID uint64, in service.LineInput) (model.Order, error)
	RemoveLine(ctx context.Context, actor model.Actor, orderID, dishID uint64) (model.Order, error)
	Transition(ctx context.Context, actor model.Actor, orderID uint64, to model.OrderStatus) (model.Order, error)
	Get(ctx context.Context, orderID uint64) (model.Order, error)
	List(ctx context.Context, f model.OrderFilter) ([]model.Order, error)
	History(ctx context.Context, orderID uint64) ([]model.OrderStatusLog, error)
}

type OrderHandler struct {
	Orders Orders
}

func NewOrderHandler(o Orders) *OrderHandler { return &OrderHandler{Orders: o} }

type lineBody struct {
	DishID    uint64           `json:"dish_id"`
	Quantity  int              `json:"quantity"`
	UnitPrice *decimal.Decimal `json:"unit_price"`
}

func (b lineBody) input() service.LineInput {
	return service.LineInput{DishID: b.DishID, Quantity: b.Quantity, UnitPrice: b.UnitPrice}
}

// Create handles POST /v1/orders.
func (h *OrderHandler) Create(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return fail(c, err)
	}
	var body struct {
		TableID  uint64     `json:"table_id"`
		WaiterID *uint64    `json:"waiter_id"`
		Assisted bool       `json:"assisted"`
		Lines    []lineBody `json:"lines"`
	}
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	if body.TableID == 0 {
		return badRequest(c, "table_id is required")
	}
	in := service.CreateOrderInput{TableID: body.TableID, WaiterID: body.WaiterID, Assisted: body.Assisted}
	for _, l := range body.Lines {
		in.Lines = append(in.Lines, l.input())
	}
	o, err := h.Orders.Create(c.Request().Context(), a, in)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, o)
}

// List handles GET /v1/orders?table_id=&status=A,B&from=&to=&limit=.
// ?queue=kitchen is a shortcut for the kitchen statuses.
func (h *OrderHandler) List(c echo.Context) error {
	var f model.OrderFilter
	if raw := c.QueryParam("table_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return badRequest(c, "invalid table_id")
		}
		f.TableID = id
	}
	if c.QueryParam("queue") == "kitchen" {
		f.Statuses = model.KitchenQueue
	}
	if raw := c.QueryParam("status"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			f.Statuses = append(f.Statuses, model.OrderStatus(strings.ToUpper(strings.TrimSpace(s))))
		}
	}
	p, err := parsePeriod(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	f.Period = p
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return badRequest(c, "invalid limit")
		}
		f.Limit = n
	}
	out, err := h.Orders.List(c.Request().Context(), f)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// Get handles GET /v1/orders/:id.
func (h *OrderHandler) Get(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid order id")
	}
	o, err := h.Orders.Get(c.Request().Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, o)
}

// History handles GET /v1/orders/:id/history.
func (h *OrderHandler) History(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid order id")
	}
	out, err := h.Orders.History(c.Request().Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// AddLine handles POST /v1/orders/:id/lines.
func (h *OrderHandler) AddLine(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return fail(c, err)
	}
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid order id")
	}
	var body lineBody
	if err := c.Bind(&body); err != nil || body.DishID == 0 {
		return badRequest(c, "dish_id and quantity are required")
	}
	o, err := h.Orders.AddLine(c.Request().Context(), a, id, body.input())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, o)
}

// RemoveLine handles DELETE /v1/orders/:id/lines/:dish_id.
func (h *OrderHandler) RemoveLine(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return fail(c, err)
	}
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid order id")
	}
	dishID, ok := pathID(c, "dish_id")
	if !ok {
		return badRequest(c, "invalid dish id")
	}
	o, err := h.Orders.RemoveLine(c.Request().Context(), a, id, dishID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, o)
}

// Transition handles POST /v1/orders/:id/status with {"status": "..."}.
func (h *OrderHandler) Transition(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return fail(c, err)
	}
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid order id")
	}
	var body struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&body); err != nil || strings.TrimSpace(body.Status) == "" {
		return badRequest(c, "status is required")
	}
	to := model.OrderStatus(strings.ToUpper(strings.TrimSpace(body.Status)))
	o, err := h.Orders.Transition(c.Request().Context(), a, id, to)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, o)
}
