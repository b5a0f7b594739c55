package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/restaurant-pos/internal/model"
	"github.com/iliyamo/restaurant-pos/internal/queue"
)

type capture struct {
	events []queue.Event
	err    error
}

func (c *capture) Publish(_ context.Context, ev queue.Event) error {
	c.events = append(c.events, ev)
	return c.err
}

func (c *capture) Close() error { return nil }

var balance = model.DailyBalance{
	Date:              time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
	TotalIn:           decimal.NewFromInt(45000),
	TotalOut:          decimal.NewFromInt(10000),
	DayBalance:        decimal.NewFromInt(35000),
	CumulativeBalance: decimal.NewFromInt(35000),
}

func TestSendDailyReport(t *testing.T) {
	pub := &capture{}
	n := New(pub, "XAF")

	require.NoError(t, n.SendDailyReport(context.Background(), []string{"admin@pos.test"}, balance))
	require.Len(t, pub.events, 1)
	ev := pub.events[0]
	assert.Equal(t, queue.ReportDaily, ev.Type)
	assert.Equal(t, "2026-03-10", ev.AggregateID)

	var data queue.DailyReportData
	require.NoError(t, json.Unmarshal(ev.Data, &data))
	assert.Equal(t, "XAF", data.Currency)
	assert.Equal(t, []string{"admin@pos.test"}, data.Recipients)
	assert.True(t, balance.DayBalance.Equal(data.DayBalance))
}

func TestSendLowBalanceAlert(t *testing.T) {
	pub := &capture{}
	n := New(pub, "XAF")

	require.NoError(t, n.SendLowBalanceAlert(context.Background(), []string{"admin@pos.test"}, balance, decimal.NewFromInt(100000)))
	require.Len(t, pub.events, 1)
	assert.Equal(t, queue.AlertLowBalance, pub.events[0].Type)

	var data queue.LowBalanceAlertData
	require.NoError(t, json.Unmarshal(pub.events[0].Data, &data))
	assert.True(t, decimal.NewFromInt(100000).Equal(data.Threshold))
}

func TestNotifierErrors(t *testing.T) {
	err := New(nil, "XAF").SendDailyReport(context.Background(), nil, balance)
	assert.ErrorIs(t, err, ErrNoTransport)

	down := errors.New("broker down")
	err = New(&capture{err: down}, "XAF").SendDailyReport(context.Background(), nil, balance)
	assert.ErrorIs(t, err, down)
}
