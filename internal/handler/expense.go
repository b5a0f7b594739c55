package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/iliyamo/restaurant-pos/internal/model"
	"github.com/iliyamo/restaurant-pos/internal/service"
)

// Expenses is implemented by *service.ExpenseService.
type Expenses interface {
	CreateCategory(ctx context.Context, name, description string) (model.ExpenseCategory, error)
	ListCategories(ctx context.Context) ([]model.ExpenseCategory, error)
	Record(ctx context.Context, actor model.Actor, in service.ExpenseInput) (model.Expense, error)
	Delete(ctx context.Context, actor model.Actor, expenseID uint64) error
	List(ctx context.Context, p model.Period) ([]model.Expense, error)
}

type ExpenseHandler struct {
	Expenses Expenses
}

func NewExpenseHandler(e Expenses) *ExpenseHandler { return &ExpenseHandler{Expenses: e} }

func (h *ExpenseHandler) ListCategories(c echo.Context) error {
	out, err := h.Expenses.ListCategories(c.Request().Context())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

func (h *ExpenseHandler) CreateCategory(c echo.Context) error {
	var body struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	cat, err := h.Expenses.CreateCategory(c.Request().Context(), body.Name, body.Description)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, cat)
}

// Record handles POST /v1/expenses. spent_on is YYYY-MM-DD and defaults to
// today.
func (h *ExpenseHandler) Record(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return fail(c, err)
	}
	var body struct {
		Description string          `json:"description"`
		Amount      decimal.Decimal `json:"amount"`
		CategoryID  *uint64         `json:"category_id"`
		SpentOn     string          `json:"spent_on"`
	}
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	in := service.ExpenseInput{Description: body.Description, Amount: body.Amount, CategoryID: body.CategoryID}
	if body.SpentOn != "" {
		t, err := time.ParseInLocation(dateLayout, body.SpentOn, time.UTC)
		if err != nil {
			return badRequest(c, "spent_on must be YYYY-MM-DD")
		}
		in.SpentOn = t
	}
	e, err := h.Expenses.Record(c.Request().Context(), a, in)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, e)
}

func (h *ExpenseHandler) List(c echo.Context) error {
	p, err := parsePeriod(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	out, err := h.Expenses.List(c.Request().Context(), p)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

func (h *ExpenseHandler) Delete(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return fail(c, err)
	}
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid expense id")
	}
	if err := h.Expenses.Delete(c.Request().Context(), a, id); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
