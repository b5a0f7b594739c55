// Command dailybalance computes the end-of-day balance, sends the report to
// the active administrators and raises the low-balance alert. It is meant to
// run from cron once a day.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/iliyamo/restaurant-pos/internal/config"
	"github.com/iliyamo/restaurant-pos/internal/database"
	"github.com/iliyamo/restaurant-pos/internal/logger"
	"github.com/iliyamo/restaurant-pos/internal/model"
	"github.com/iliyamo/restaurant-pos/internal/notify"
	"github.com/iliyamo/restaurant-pos/internal/queue"
	"github.com/iliyamo/restaurant-pos/internal/repository"
	"github.com/iliyamo/restaurant-pos/internal/service"
)

func main() {
	var (
		dateFlag = flag.String("date", "", "day to report, YYYY-MM-DD (default: today, UTC)")
		testMode = flag.Bool("test", false, "notify only the first administrator")
	)
	flag.Parse()

	log := logger.New("pos-dailybalance")
	cfg := config.Load()

	date := time.Now().UTC()
	if *dateFlag != "" {
		d, err := time.ParseInLocation("2006-01-02", *dateFlag, time.UTC)
		if err != nil {
			log.Fatal("invalid_date", err, map[string]any{"date": *dateFlag})
		}
		date = d
	}

	run, err := runJob(cfg, log, date, *testMode)
	if err != nil {
		log.Fatal("daily_balance_failed", err, map[string]any{"date": date.Format("2006-01-02")})
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(run)
}

// runJob opens what the job needs and closes it before returning.
func runJob(cfg config.Config, log *logger.Logger, date time.Time, testMode bool) (model.DailyBalanceRun, error) {
	evCfg, err := config.LoadEventsConfig()
	if err != nil {
		return model.DailyBalanceRun{}, fmt.Errorf("events config: %w", err)
	}
	db, err := database.Open(context.Background(), cfg)
	if err != nil {
		return model.DailyBalanceRun{}, fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	var pub queue.Publisher
	if evCfg.RabbitMQ.Enabled || evCfg.Kafka.Enabled {
		p, err := queue.FromConfig(evCfg)
		if err != nil {
			return model.DailyBalanceRun{}, fmt.Errorf("events publisher: %w", err)
		}
		defer p.Close()
		pub = p
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	job := service.NewBalanceService(
		service.Deps{Store: repository.NewStore(db), Log: log},
		notify.New(pub, cfg.Currency),
		cfg.CashAlertThreshold,
	)
	return job.Run(ctx, date, testMode)
}
