package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-pos/internal/handler"
	"github.com/iliyamo/restaurant-pos/internal/middleware"
	"github.com/iliyamo/restaurant-pos/internal/model"
)

// LedgerHandlers groups the money-side handlers.
type LedgerHandlers struct {
	Payments *handler.PaymentHandler
	Expenses *handler.ExpenseHandler
	Cash     *handler.CashHandler
	Reports  *handler.ReportHandler
}

// RegisterLedger registers payments, expenses, the cash register and the
// reports.
func RegisterLedger(e *echo.Echo, h LedgerHandlers, o Options) {
	g := protected(e, o)
	can := middleware.RequireCapability

	// ---- Payments ----
	g.GET("/payments", h.Payments.List, can(model.CapViewReports))
	g.DELETE("/payments/:id", h.Payments.Delete, can(model.CapManageCash))

	// ---- Expenses ----
	g.GET("/expense-categories", h.Expenses.ListCategories, can(model.CapManageExpenses))
	g.POST("/expense-categories", h.Expenses.CreateCategory, can(model.CapManageExpenses))
	g.GET("/expenses", h.Expenses.List, can(model.CapManageExpenses))
	g.POST("/expenses", h.Expenses.Record, can(model.CapManageExpenses))
	g.DELETE("/expenses/:id", h.Expenses.Delete, can(model.CapManageExpenses))

	// ---- Cash register ----
	g.GET("/cash", h.Cash.Get, can(model.CapManageCash))
	g.GET("/cash/movements", h.Cash.Movements, can(model.CapManageCash))
	g.POST("/cash/deposit", h.Cash.Deposit, can(model.CapManageCash))
	g.POST("/cash/withdraw", h.Cash.Withdraw, can(model.CapManageCash))
	g.POST("/cash/reset", h.Cash.Reset, can(model.CapResetCash))

	// ---- Reports ----
	g.GET("/reports/payments", h.Reports.Payments, can(model.CapViewReports))
	g.GET("/reports/dashboard", h.Reports.Dashboard, can(model.CapViewReports))
	g.GET("/reports/orders", h.Reports.Orders, can(model.CapViewReports))
	g.GET("/reports/daily-balance", h.Reports.DailyBalance, can(model.CapViewReports))
	g.POST("/reports/daily-balance/run", h.Reports.RunDailyBalance, can(model.CapRunDailyBalance))
}
