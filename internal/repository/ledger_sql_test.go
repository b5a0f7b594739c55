package repository_test

import (
	"context"
	"database/sql/driver"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/restaurant-pos/internal/model"
	"github.com/iliyamo/restaurant-pos/internal/repository"
	"github.com/iliyamo/restaurant-pos/internal/service"
)

var (
	sqlNow        = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	cashierOnDuty = model.Actor{UserID: 4, Role: model.RoleCashier}
	moneyOf       = decimal.RequireFromString

	lockOrderSQL   = regexp.QuoteMeta(`FROM orders WHERE id = ? FOR UPDATE`)
	paymentByOrder = regexp.QuoteMeta(`FROM payments WHERE order_id = ?`)
	insertPayment  = regexp.QuoteMeta(`INSERT INTO payments`)
	ensureRegister = regexp.QuoteMeta(`INSERT INTO cash_register (id, balance) VALUES (?, 0) ON DUPLICATE KEY UPDATE id = id`)
	lockRegister   = regexp.QuoteMeta(`FROM cash_register WHERE id = ? FOR UPDATE`)
	updateRegister = regexp.QuoteMeta(`UPDATE cash_register SET balance = ? WHERE id = ?`)
	insertMovement = regexp.QuoteMeta(`INSERT INTO cash_movements`)

	orderCols    = []string{"id", "table_id", "waiter_id", "status", "total", "created_at", "updated_at"}
	paymentCols  = []string{"id", "order_id", "method", "amount", "operator_id", "paid_at"}
	registerCols = []string{"id", "balance", "created_at", "updated_at"}
)

// amount matches a decimal argument by value.
type amount string

func (a amount) Match(v driver.Value) bool {
	s, ok := v.(string)
	if !ok {
		return false
	}
	got, err := decimal.NewFromString(s)
	return err == nil && got.Equal(moneyOf(string(a)))
}

func mockStore(t *testing.T) (*repository.Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return repository.NewStore(db), mock
}

func deps(store *repository.Store) service.Deps {
	return service.Deps{Store: store, Now: func() time.Time { return sqlNow }}
}

func TestPaymentRaceLosesToUniqueKey(t *testing.T) {
	store, mock := mockStore(t)
	mock.ExpectBegin()
	mock.ExpectQuery(lockOrderSQL).WithArgs(7).
		WillReturnRows(sqlmock.NewRows(orderCols).AddRow(7, 5, 2, "EN_COURS", "45000.00", sqlNow, sqlNow))
	mock.ExpectQuery(paymentByOrder).WithArgs(7).WillReturnRows(sqlmock.NewRows(paymentCols))
	mock.ExpectExec(insertPayment).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry '7' for key 'payments.order_id'"})
	mock.ExpectRollback()

	_, err := service.NewPaymentService(deps(store)).Record(context.Background(), cashierOnDuty,
		service.PaymentInput{OrderID: 7, Method: model.MethodCash})
	assert.ErrorIs(t, err, service.ErrAlreadyPaid)
}

func TestPaymentCreditsRegisterInSameTx(t *testing.T) {
	store, mock := mockStore(t)
	mock.ExpectBegin()
	mock.ExpectQuery(lockOrderSQL).WithArgs(7).
		WillReturnRows(sqlmock.NewRows(orderCols).AddRow(7, 5, 2, "EN_COURS", "45000.00", sqlNow, sqlNow))
	mock.ExpectQuery(paymentByOrder).WithArgs(7).WillReturnRows(sqlmock.NewRows(paymentCols))
	mock.ExpectExec(insertPayment).WithArgs(7, "CASH", amount("45000"), 4, sqlNow).
		WillReturnResult(sqlmock.NewResult(21, 1))
	mock.ExpectExec(ensureRegister).WithArgs(1).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(lockRegister).WithArgs(1).
		WillReturnRows(sqlmock.NewRows(registerCols).AddRow(1, "5000.00", sqlNow, sqlNow))
	mock.ExpectExec(updateRegister).WithArgs(amount("50000"), 1).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(insertMovement).
		WithArgs("PAYMENT", amount("45000"), amount("50000"), 21, "", 4, sqlNow).
		WillReturnResult(sqlmock.NewResult(3, 1))
	mock.ExpectCommit()

	p, err := service.NewPaymentService(deps(store)).Record(context.Background(), cashierOnDuty,
		service.PaymentInput{OrderID: 7, Method: model.MethodCash})
	require.NoError(t, err)
	assert.Equal(t, uint64(21), p.ID)
	assert.True(t, moneyOf("45000").Equal(p.Amount))
}

func TestCashMovementFailureRollsBackBalance(t *testing.T) {
	store, mock := mockStore(t)
	mock.ExpectBegin()
	mock.ExpectExec(ensureRegister).WithArgs(1).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery(lockRegister).WithArgs(1).
		WillReturnRows(sqlmock.NewRows(registerCols).AddRow(1, "0.00", sqlNow, sqlNow))
	mock.ExpectExec(updateRegister).WithArgs(amount("3000"), 1).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(insertMovement).WillReturnError(&mysql.MySQLError{Number: 1205, Message: "Lock wait timeout exceeded"})
	mock.ExpectRollback()

	_, err := service.NewCashService(deps(store)).Deposit(context.Background(), cashierOnDuty, moneyOf("3000"), "fond de caisse")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert cash movement")
}

func TestMoneyScaleCheckedBeforeSQL(t *testing.T) {
	store, _ := mockStore(t)
	_, err := service.NewCashService(deps(store)).Deposit(context.Background(), cashierOnDuty, moneyOf("0.001"), "")
	assert.ErrorIs(t, err, service.ErrValidation)
}
