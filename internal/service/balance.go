package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/restaurant-pos/internal/model"
	"github.com/iliyamo/restaurant-pos/internal/repository"
)

// DefaultAlertThreshold applies when no threshold is configured.
var DefaultAlertThreshold = decimal.NewFromInt(100000)

// Notifier delivers the end-of-day report and the low-balance alert.
// *notify.Notifier implements it.
type Notifier interface {
	SendDailyReport(ctx context.Context, recipients []string, b model.DailyBalance) error
	SendLowBalanceAlert(ctx context.Context, recipients []string, b model.DailyBalance, threshold decimal.Decimal) error
}

// BalanceService is the daily balance job.
type BalanceService struct {
	base
	notifier  Notifier
	threshold decimal.Decimal
}

// NewBalanceService uses DefaultAlertThreshold when threshold is not
// positive.
func NewBalanceService(d Deps, n Notifier, threshold decimal.Decimal) *BalanceService {
	if !threshold.IsPositive() {
		threshold = DefaultAlertThreshold
	}
	return &BalanceService{base: newBase(d), notifier: n, threshold: threshold}
}

func (s *BalanceService) Threshold() decimal.Decimal { return s.threshold }

// Run computes the balance for date and notifies the active administrators.
// In test mode only the first administrator is notified. Delivery failures
// are logged and reported through ReportSent and AlertSent; only a failed
// computation returns an error.
func (s *BalanceService) Run(ctx context.Context, date time.Time, testMode bool) (model.DailyBalanceRun, error) {
	var (
		b      model.DailyBalance
		admins []model.User
	)
	err := s.store.WithinTx(ctx, func(q repository.Querier) error {
		var err error
		if b, err = dailyBalance(ctx, q, date); err != nil {
			return err
		}
		admins, err = q.ListActiveUsersByRole(ctx, model.RoleAdmin)
		return err
	})
	if err != nil {
		return model.DailyBalanceRun{}, err
	}
	if testMode && len(admins) > 1 {
		admins = admins[:1]
	}
	recipients := make([]string, 0, len(admins))
	for _, a := range admins {
		recipients = append(recipients, a.Email)
	}

	run := model.DailyBalanceRun{DailyBalance: b, Threshold: s.threshold}
	fields := map[string]any{
		"date":               b.Date.Format("2006-01-02"),
		"day_balance":        b.DayBalance.String(),
		"cumulative_balance": b.CumulativeBalance.String(),
		"recipients":         len(recipients),
		"test_mode":          testMode,
	}
	if len(recipients) == 0 {
		s.log.Warn("daily_balance_no_recipients", fields)
		return run, nil
	}

	if err := s.notifier.SendDailyReport(ctx, recipients, b); err != nil {
		s.log.Error("daily_report_send_failed", err, fields)
	} else {
		run.ReportSent = true
	}
	if b.CumulativeBalance.LessThan(s.threshold) {
		if err := s.notifier.SendLowBalanceAlert(ctx, recipients, b, s.threshold); err != nil {
			s.log.Error("low_balance_alert_failed", err, fields)
		} else {
			run.AlertSent = true
		}
	}
	fields["report_sent"] = run.ReportSent
	fields["alert_sent"] = run.AlertSent
	s.log.Info("daily_balance_run", fields)
	return run, nil
}
