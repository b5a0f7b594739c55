package service

import (
	"context"
	"time"

	"github.com/iliyamo/restaurant-pos/internal/model"
	"github.com/iliyamo/restaurant-pos/internal/repository"
)

const (
	dashboardMovements = 20
	popularDishesLimit = 10
)

// ReportService computes read-only aggregates. Each report is read in one
// transaction so its figures are mutually consistent.
type ReportService struct {
	base
}

func NewReportService(d Deps) *ReportService { return &ReportService{base: newBase(d)} }

func (s *ReportService) read(ctx context.Context, fn func(q repository.Querier) error) error {
	return s.store.WithinTx(ctx, fn)
}

// Payments reports count and total for p, overall and per method.
func (s *ReportService) Payments(ctx context.Context, p model.Period) (model.PaymentReport, error) {
	r := model.PaymentReport{From: p.From, To: p.To}
	err := s.read(ctx, func(q repository.Querier) error {
		var err error
		if r.Count, r.Total, err = q.PaymentTotals(ctx, p); err != nil {
			return err
		}
		if r.ByMethod, err = q.PaymentStatsByMethod(ctx, p); err != nil {
			return err
		}
		r.Payments, err = q.ListPayments(ctx, p)
		return err
	})
	return r, err
}

// Dashboard summarizes the register for the UTC day of day.
func (s *ReportService) Dashboard(ctx context.Context, day time.Time) (model.CashDashboard, error) {
	p := model.Day(day.UTC())
	d := model.CashDashboard{Date: p.From}
	err := s.read(ctx, func(q repository.Querier) error {
		if err := q.EnsureCashRegister(ctx); err != nil {
			return err
		}
		reg, err := q.GetCashRegister(ctx)
		if err != nil {
			return err
		}
		d.Balance = reg.Balance
		if _, d.DayIn, err = q.PaymentTotals(ctx, p); err != nil {
			return err
		}
		if _, d.DayOut, err = q.ExpenseTotals(ctx, p); err != nil {
			return err
		}
		d.Movements, err = q.ListCashMovements(ctx, model.Period{}, dashboardMovements)
		return err
	})
	return d, err
}

// OrderStats counts non-cancelled orders for the day and the month to date
// and ranks the day's dishes.
func (s *ReportService) OrderStats(ctx context.Context, day time.Time) (model.OrderStats, error) {
	dayP := model.Day(day.UTC())
	monthP := model.MonthToDate(day.UTC())
	st := model.OrderStats{Date: dayP.From}
	err := s.read(ctx, func(q repository.Querier) error {
		var err error
		if st.DayCount, st.DayTotal, err = q.OrderTotals(ctx, dayP); err != nil {
			return err
		}
		if st.MonthCount, st.MonthTotal, err = q.OrderTotals(ctx, monthP); err != nil {
			return err
		}
		st.PopularDishes, err = q.PopularDishes(ctx, dayP, popularDishesLimit)
		return err
	})
	return st, err
}

// DailyBalance computes the day's entries and exits and the cumulative
// figures for all history up to the end of that day.
func (s *ReportService) DailyBalance(ctx context.Context, date time.Time) (model.DailyBalance, error) {
	var b model.DailyBalance
	err := s.read(ctx, func(q repository.Querier) error {
		var err error
		b, err = dailyBalance(ctx, q, date)
		return err
	})
	return b, err
}

func dailyBalance(ctx context.Context, q repository.Querier, date time.Time) (model.DailyBalance, error) {
	day := model.Day(date.UTC())
	upTo := model.Period{To: day.To}
	b := model.DailyBalance{Date: day.From}

	var err error
	if b.PaymentCount, b.TotalIn, err = q.PaymentTotals(ctx, day); err != nil {
		return b, err
	}
	if b.ExpenseCount, b.TotalOut, err = q.ExpenseTotals(ctx, day); err != nil {
		return b, err
	}
	if _, b.CumulativeIn, err = q.PaymentTotals(ctx, upTo); err != nil {
		return b, err
	}
	if _, b.CumulativeOut, err = q.ExpenseTotals(ctx, upTo); err != nil {
		return b, err
	}
	b.DayBalance = b.TotalIn.Sub(b.TotalOut)
	b.CumulativeBalance = b.CumulativeIn.Sub(b.CumulativeOut)
	return b, nil
}
