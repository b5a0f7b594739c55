package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-pos/internal/handler"
	"github.com/iliyamo/restaurant-pos/internal/middleware"
	"github.com/iliyamo/restaurant-pos/internal/model"
)

// RegisterOrders registers the table carts, the order engine and order
// payment.  Each route checks one capability before the handler runs.
func RegisterOrders(e *echo.Echo, carts *handler.CartHandler, orders *handler.OrderHandler, pay *handler.PaymentHandler, o Options) {
	g := protected(e, o)
	can := middleware.RequireCapability

	// ---- Carts ----
	g.GET("/tables/:id/cart", carts.Get, can(model.CapPlaceTableOrders))
	g.PUT("/tables/:id/cart/items", carts.SetItem, can(model.CapPlaceTableOrders))
	g.DELETE("/tables/:id/cart", carts.Clear, can(model.CapPlaceTableOrders))
	g.POST("/tables/:id/cart/checkout", carts.Checkout, can(model.CapPlaceTableOrders))

	// ---- Orders ----
	g.POST("/orders", orders.Create, can(model.CapTakeOrders))
	g.GET("/orders", orders.List, can(model.CapViewOrders))
	g.GET("/orders/:id", orders.Get, can(model.CapViewOrders))
	g.GET("/orders/:id/history", orders.History, can(model.CapViewOrders))
	g.POST("/orders/:id/lines", orders.AddLine, can(model.CapTakeOrders))
	g.DELETE("/orders/:id/lines/:dish_id", orders.RemoveLine, can(model.CapTakeOrders))
	g.POST("/orders/:id/status", orders.Transition, can(model.CapUpdateOrderStatus))

	// ---- Payment of an order ----
	g.POST("/orders/:id/payment", pay.Record, can(model.CapCollectPayments))
	g.GET("/orders/:id/payment", pay.GetForOrder, can(model.CapViewOrders))
}
