// Package notify delivers the daily report and the low-balance alert to
// administrators.  Delivery is a broker message; the mail gateway consumes
// report.daily and alert.low_balance and renders the emails.
package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/restaurant-pos/internal/model"
	"github.com/iliyamo/restaurant-pos/internal/queue"
)

// ErrNoTransport is returned when no broker is configured.
var ErrNoTransport = errors.New("notify: no transport configured")

type Notifier struct {
	pub      queue.Publisher
	currency string
}

// New returns a Notifier publishing through pub.  pub may be nil, in which
// case every send fails with ErrNoTransport.
func New(pub queue.Publisher, currency string) *Notifier {
	return &Notifier{pub: pub, currency: currency}
}

const dateLayout = "2006-01-02"

func (n *Notifier) SendDailyReport(ctx context.Context, recipients []string, b model.DailyBalance) error {
	data := queue.DailyReportData{
		Date:              b.Date.Format(dateLayout),
		Currency:          n.currency,
		Recipients:        recipients,
		TotalIn:           b.TotalIn,
		TotalOut:          b.TotalOut,
		DayBalance:        b.DayBalance,
		CumulativeIn:      b.CumulativeIn,
		CumulativeOut:     b.CumulativeOut,
		CumulativeBalance: b.CumulativeBalance,
		PaymentCount:      b.PaymentCount,
		ExpenseCount:      b.ExpenseCount,
	}
	return n.send(ctx, queue.ReportDaily, data.Date, data)
}

func (n *Notifier) SendLowBalanceAlert(ctx context.Context, recipients []string, b model.DailyBalance, threshold decimal.Decimal) error {
	data := queue.LowBalanceAlertData{
		Date:              b.Date.Format(dateLayout),
		Currency:          n.currency,
		Recipients:        recipients,
		CumulativeBalance: b.CumulativeBalance,
		Threshold:         threshold,
	}
	return n.send(ctx, queue.AlertLowBalance, data.Date, data)
}

func (n *Notifier) send(ctx context.Context, typ queue.EventType, key string, data any) error {
	if n.pub == nil {
		return ErrNoTransport
	}
	ev, err := queue.NewEvent(typ, key, data)
	if err != nil {
		return err
	}
	if err := n.pub.Publish(ctx, ev); err != nil {
		return fmt.Errorf("notify %s: %w", typ, err)
	}
	return nil
}
