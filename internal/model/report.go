package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// MethodStat aggregates payments for one method.
type MethodStat struct {
	Method PaymentMethod   `json:"method"`
	Count  int             `json:"count"`
	Total  decimal.Decimal `json:"total"`
}

type PaymentReport struct {
	From     time.Time       `json:"from"`
	To       time.Time       `json:"to"`
	Count    int             `json:"count"`
	Total    decimal.Decimal `json:"total"`
	ByMethod []MethodStat    `json:"by_method"`
	Payments []Payment       `json:"payments"`
}

type CashDashboard struct {
	Date      time.Time       `json:"date"`
	Balance   decimal.Decimal `json:"balance"`
	DayIn     decimal.Decimal `json:"day_in"`
	DayOut    decimal.Decimal `json:"day_out"`
	Movements []CashMovement  `json:"recent_movements"`
}

type DishStat struct {
	DishID   uint64          `json:"dish_id"`
	DishName string          `json:"dish_name"`
	Quantity int             `json:"quantity"`
	Revenue  decimal.Decimal `json:"revenue"`
}

type OrderStats struct {
	Date          time.Time       `json:"date"`
	DayCount      int             `json:"day_count"`
	DayTotal      decimal.Decimal `json:"day_total"`
	MonthCount    int             `json:"month_count"`
	MonthTotal    decimal.Decimal `json:"month_total"`
	PopularDishes []DishStat      `json:"popular_dishes"`
}

// DailyBalance is the outcome of the end-of-day computation. Cumulative
// figures cover all history up to now.
type DailyBalance struct {
	Date              time.Time       `json:"date"`
	TotalIn           decimal.Decimal `json:"total_in"`
	TotalOut          decimal.Decimal `json:"total_out"`
	DayBalance        decimal.Decimal `json:"day_balance"`
	CumulativeIn      decimal.Decimal `json:"cumulative_in"`
	CumulativeOut     decimal.Decimal `json:"cumulative_out"`
	CumulativeBalance decimal.Decimal `json:"cumulative_balance"`
	PaymentCount      int             `json:"payment_count"`
	ExpenseCount      int             `json:"expense_count"`
}

// DailyBalanceRun adds delivery outcomes to a DailyBalance.
type DailyBalanceRun struct {
	DailyBalance
	Threshold  decimal.Decimal `json:"threshold"`
	ReportSent bool            `json:"report_sent"`
	AlertSent  bool            `json:"alert_sent"`
}
