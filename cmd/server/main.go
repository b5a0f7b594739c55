package main // Entry point package

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/iliyamo/restaurant-pos/internal/config" // Internal config loader
	"github.com/iliyamo/restaurant-pos/internal/database"
	"github.com/iliyamo/restaurant-pos/internal/handler"
	"github.com/iliyamo/restaurant-pos/internal/logger"
	"github.com/iliyamo/restaurant-pos/internal/middleware"
	"github.com/iliyamo/restaurant-pos/internal/notify"
	"github.com/iliyamo/restaurant-pos/internal/queue"
	"github.com/iliyamo/restaurant-pos/internal/repository"
	"github.com/iliyamo/restaurant-pos/internal/repository/memory"
	"github.com/iliyamo/restaurant-pos/internal/router" // Internal router setup
	"github.com/iliyamo/restaurant-pos/internal/service"
)

func main() {
	cfg := config.Load() // Load environment config
	log := logger.New("pos-api")
	if err := run(cfg, log); err != nil {
		log.Fatal("server_failed", err, nil)
	}
}

// run owns every resource it opens, so its deferred Close calls always run
// before main exits.
func run(cfg config.Config, log *logger.Logger) error {
	evCfg, err := config.LoadEventsConfig()
	if err != nil {
		return fmt.Errorf("events config: %w", err)
	}

	db, err := database.Open(context.Background(), cfg)
	if err != nil {
		return fmt.Errorf("open %s on %s: %w", cfg.DBName, cfg.DBHost, err)
	}
	defer db.Close()
	if cfg.DBMigrate {
		if err := database.Migrate(context.Background(), db); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	rdb := config.NewRedisClient(config.LoadRedisConfig())
	var carts repository.CartStore
	if rdb != nil {
		defer rdb.Close()
		carts = repository.NewRedisCartStore(rdb, evCfg.CartTTL)
	} else {
		log.Warn("redis_unavailable", map[string]any{"fallback": "memory carts, no cache, no rate limit"})
		carts = memory.NewCartStore()
	}

	events, err := queue.FromConfig(evCfg)
	if err != nil {
		return fmt.Errorf("events publisher: %w", err)
	}
	defer events.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if evCfg.RabbitMQ.Enabled {
		go func() {
			if err := queue.StartAuditConsumer(ctx, evCfg.RabbitMQ, log); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("audit_consumer_stopped", err, nil)
			}
		}()
	}

	deps := service.Deps{Store: repository.NewStore(db), Events: events, Log: log}
	users := service.NewUserService(deps, cfg.BcryptCost)
	if created, err := users.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		return fmt.Errorf("bootstrap admin: %w", err)
	} else if created {
		log.Info("bootstrap_admin_created", map[string]any{"email": cfg.AdminEmail})
	}

	var notifier service.Notifier = notify.New(nil, cfg.Currency)
	if evCfg.RabbitMQ.Enabled || evCfg.Kafka.Enabled {
		notifier = notify.New(events, cfg.Currency)
	}

	opts := router.Options{
		JWTSecret: cfg.JWTSecret,
		Cache:     config.LoadCacheConfig(),
		Redis:     rdb,
		RateLimit: middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, log),
		Log:       log,
	}

	e := echo.New() // Create Echo instance
	e.HideBanner = true
	e.Use(middleware.RequestLogger(log))

	health := map[string]handler.Pinger{"mysql": handler.PingFunc(db.PingContext)}
	if rdb != nil {
		health["redis"] = handler.PingFunc(func(ctx context.Context) error { return rdb.Ping(ctx).Err() })
	}
	router.RegisterRoutes(e, health)
	router.RegisterAuth(e,
		handler.NewAuthHandler(cfg, users, repository.NewTokenRepo(db)),
		handler.NewUserHandler(users),
		opts)
	router.RegisterCatalog(e, handler.NewCatalogHandler(service.NewCatalogService(deps)), opts)
	payments := handler.NewPaymentHandler(service.NewPaymentService(deps))
	router.RegisterOrders(e,
		handler.NewCartHandler(service.NewCartService(deps, carts)),
		handler.NewOrderHandler(service.NewOrderService(deps)),
		payments,
		opts)
	router.RegisterLedger(e, router.LedgerHandlers{
		Payments: payments,
		Expenses: handler.NewExpenseHandler(service.NewExpenseService(deps)),
		Cash:     handler.NewCashHandler(service.NewCashService(deps)),
		Reports: handler.NewReportHandler(
			service.NewReportService(deps),
			service.NewBalanceService(deps, notifier, cfg.CashAlertThreshold)),
	}, opts)

	addr := ":" + cfg.Port // Address string with port
	serveErr := make(chan error, 1)
	go func() {
		log.Info("server_listening", map[string]any{"addr": addr, "env": cfg.Env})
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case err := <-serveErr:
		return fmt.Errorf("listen %s: %w", addr, err)
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("server_shutdown_failed", err, nil)
	}
	log.Info("server_stopped", nil)
	return nil
}
