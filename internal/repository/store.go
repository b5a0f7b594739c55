package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/restaurant-pos/internal/model"
)

// Querier is everything the services read or write. *Queries implements it
// over MySQL; the memory package implements it for tests and local runs.
type Querier interface {
	CreateTable(ctx context.Context, t *model.Table) error
	GetTable(ctx context.Context, id uint64) (model.Table, error)
	ListTables(ctx context.Context) ([]model.Table, error)
	SetTableOccupied(ctx context.Context, id uint64, occupied bool) error

	CreateCategory(ctx context.Context, c *model.Category) error
	ListCategories(ctx context.Context) ([]model.Category, error)
	CreateDish(ctx context.Context, d *model.Dish) error
	UpdateDish(ctx context.Context, d *model.Dish) error
	GetDish(ctx context.Context, id uint64) (model.Dish, error)
	ListDishes(ctx context.Context, onlyAvailable bool) ([]model.Dish, error)

	InsertOrder(ctx context.Context, o *model.Order) error
	GetOrder(ctx context.Context, id uint64) (model.Order, error)
	LockOrder(ctx context.Context, id uint64) (model.Order, error)
	ListOrders(ctx context.Context, f model.OrderFilter) ([]model.Order, error)
	UpdateOrderStatus(ctx context.Context, id uint64, status model.OrderStatus) error
	UpdateOrderTotal(ctx context.Context, id uint64, total decimal.Decimal) error
	InsertStatusLog(ctx context.Context, l *model.OrderStatusLog) error
	ListStatusLog(ctx context.Context, orderID uint64) ([]model.OrderStatusLog, error)

	GetLine(ctx context.Context, orderID, dishID uint64) (model.OrderLine, error)
	InsertLine(ctx context.Context, l *model.OrderLine) error
	UpdateLineQuantity(ctx context.Context, lineID uint64, quantity int) error
	DeleteLine(ctx context.Context, lineID uint64) error
	ListLines(ctx context.Context, orderID uint64) ([]model.OrderLine, error)

	InsertPayment(ctx context.Context, p *model.Payment) error
	GetPayment(ctx context.Context, id uint64) (model.Payment, error)
	GetPaymentByOrder(ctx context.Context, orderID uint64) (model.Payment, error)
	DeletePayment(ctx context.Context, id uint64) error
	ListPayments(ctx context.Context, p model.Period) ([]model.Payment, error)

	CreateExpenseCategory(ctx context.Context, c *model.ExpenseCategory) error
	ListExpenseCategories(ctx context.Context) ([]model.ExpenseCategory, error)
	InsertExpense(ctx context.Context, e *model.Expense) error
	GetExpense(ctx context.Context, id uint64) (model.Expense, error)
	DeleteExpense(ctx context.Context, id uint64) error
	ListExpenses(ctx context.Context, p model.Period) ([]model.Expense, error)

	EnsureCashRegister(ctx context.Context) error
	GetCashRegister(ctx context.Context) (model.CashRegister, error)
	LockCashRegister(ctx context.Context) (model.CashRegister, error)
	SetCashBalance(ctx context.Context, balance decimal.Decimal) error
	InsertCashMovement(ctx context.Context, m *model.CashMovement) error
	ListCashMovements(ctx context.Context, p model.Period, limit int) ([]model.CashMovement, error)

	CreateUser(ctx context.Context, email, password string, role model.Role, cost int) (uint64, error)
	GetUser(ctx context.Context, id uint64) (model.User, error)
	GetUserByEmail(ctx context.Context, email string) (model.User, error)
	ListActiveUsersByRole(ctx context.Context, role model.Role) ([]model.User, error)

	PaymentTotals(ctx context.Context, p model.Period) (int, decimal.Decimal, error)
	PaymentStatsByMethod(ctx context.Context, p model.Period) ([]model.MethodStat, error)
	ExpenseTotals(ctx context.Context, p model.Period) (int, decimal.Decimal, error)
	OrderTotals(ctx context.Context, p model.Period) (int, decimal.Decimal, error)
	PopularDishes(ctx context.Context, p model.Period, limit int) ([]model.DishStat, error)
}

// Queries bundles every repository over one DBTX. Methods are promoted from
// the embedded repositories.
type Queries struct {
	*TableRepo
	*DishRepo
	*OrderRepo
	*PaymentRepo
	*ExpenseRepo
	*CashRegisterRepo
	*UserRepo
	*ReportRepo
}

// NewQueries binds all repositories to db, which may be a *sql.DB or *sql.Tx.
func NewQueries(db DBTX) *Queries {
	return &Queries{
		TableRepo:        NewTableRepo(db),
		DishRepo:         NewDishRepo(db),
		OrderRepo:        NewOrderRepo(db),
		PaymentRepo:      NewPaymentRepo(db),
		ExpenseRepo:      NewExpenseRepo(db),
		CashRegisterRepo: NewCashRegisterRepo(db),
		UserRepo:         NewUserRepo(db),
		ReportRepo:       NewReportRepo(db),
	}
}

var _ Querier = (*Queries)(nil)

// Store runs units of work against MySQL.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// DB exposes the underlying pool for repositories that live outside
// Queries, such as refresh tokens.
func (s *Store) DB() *sql.DB { return s.db }

// WithinTx runs fn inside one transaction. The transaction commits when fn
// returns nil and rolls back otherwise, so a primary write and its derived
// effects are never observed separately.
func (s *Store) WithinTx(ctx context.Context, fn func(q Querier) error) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := fn(NewQueries(tx)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	committed = true
	return nil
}
