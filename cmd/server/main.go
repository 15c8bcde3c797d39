package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	syncapp "github.com/erp/shipsync/internal/application/sync"
	"github.com/erp/shipsync/internal/domain/carrier"
	"github.com/erp/shipsync/internal/domain/catalog"
	"github.com/erp/shipsync/internal/domain/integration"
	"github.com/erp/shipsync/internal/domain/trade"
	"github.com/erp/shipsync/internal/infrastructure/carrierhttp"
	"github.com/erp/shipsync/internal/infrastructure/config"
	"github.com/erp/shipsync/internal/infrastructure/logger"
	"github.com/erp/shipsync/internal/infrastructure/persistence"
	"github.com/erp/shipsync/internal/infrastructure/scheduler"
	"github.com/erp/shipsync/internal/interfaces/http/handler"
	"github.com/erp/shipsync/internal/interfaces/http/router"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting ShipSync",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	if err := db.Migrate(); err != nil {
		log.Fatal("Failed to run migrations", zap.Error(err))
	}

	// Initialize repositories
	customerRepo := persistence.NewGormCustomerRepository(db.DB)
	contactRepo := persistence.NewGormContactRepository(db.DB)
	addressRepo := persistence.NewGormAddressRepository(db.DB)
	salesOrderRepo := persistence.NewGormSalesOrderRepository(db.DB)
	itemRepo := persistence.NewGormItemRepository(db.DB)
	uomConverter := persistence.NewGormUOMConverter(db.DB)
	settingsRepo := persistence.NewGormSettingsRepository(db.DB)
	requestRepo := persistence.NewGormIntegrationRequestRepository(db.DB)

	// One carrier client per settings record; credentials live on the
	// record, transport knobs come from config
	clientFactory := func(settings *integration.CarrierSettings) carrier.Client {
		s := *settings
		if s.BaseURL == "" {
			s.BaseURL = cfg.Carrier.BaseURL
		}
		if s.Timeout <= 0 {
			s.Timeout = cfg.Carrier.RequestTimeout
		}
		return carrierhttp.NewClient(&s, carrierhttp.WithMaxResponseSize(cfg.Carrier.MaxResponseSize))
	}

	// Initialize application services
	contactResolver := syncapp.NewContactResolver(contactRepo, log)
	addressResolver := syncapp.NewAddressResolver(addressRepo, log)
	customerResolver := syncapp.NewCustomerResolver(customerRepo, contactResolver, addressResolver, log)

	commissionEvaluator, err := syncapp.NewCommissionEvaluator(catalogLookup(itemRepo), log)
	if err != nil {
		log.Fatal("Failed to build commission evaluator", zap.Error(err))
	}

	statusReconciler := syncapp.NewStatusReconciler(settingsRepo, addressRepo, requestRepo, clientFactory, log)

	// Newly submitted orders are pushed back to the carrier; the
	// reconciler skips stores with outbound sync disabled
	hooks := integration.NewHooks()
	hooks.PostSubmit = func(ctx context.Context, store *integration.CarrierStore, order *carrier.Order, salesOrder *trade.SalesOrder) error {
		return statusReconciler.OnOrderStatusChanged(ctx, salesOrder)
	}

	ingestionService := syncapp.NewOrderIngestionService(
		settingsRepo,
		salesOrderRepo,
		itemRepo,
		uomConverter,
		customerResolver,
		contactResolver,
		addressResolver,
		commissionEvaluator,
		clientFactory,
		hooks,
		log,
		cfg.Sync.Lookback,
		cfg.Sync.PageSize,
	)

	// Periodic ingestion trigger
	trigger := scheduler.NewIngestTrigger(ingestionService, cfg.Scheduler.Interval, log)
	if cfg.Scheduler.Enabled {
		if err := trigger.Start(context.Background()); err != nil {
			log.Fatal("Failed to start ingestion trigger", zap.Error(err))
		}
		log.Info("Ingestion trigger started", zap.Duration("interval", cfg.Scheduler.Interval))
	}

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := router.New(log, handler.NewHealthHandler(db)).
		Register(handler.NewSyncHandler(ingestionService, requestRepo, log)).
		Setup()

	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if cfg.Scheduler.Enabled {
		if err := trigger.Stop(ctx); err != nil {
			log.Error("Ingestion trigger did not stop cleanly", zap.Error(err))
		}
	}
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// catalogLookup exposes read-only catalog fields to commission formulas
func catalogLookup(items catalog.ItemRepository) syncapp.LookupFunc {
	return func(doctype, name, field string) (any, error) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if doctype != "Item" {
			return nil, fmt.Errorf("lookup: unsupported doctype %q", doctype)
		}
		item, err := items.FindByCode(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("lookup item %q: %w", name, err)
		}
		switch field {
		case "item_name":
			return item.Name, nil
		case "sku":
			return item.SKU, nil
		case "stock_uom":
			return item.StockUOM, nil
		case "sales_uom":
			return item.OrderUOM(), nil
		default:
			return nil, fmt.Errorf("lookup: unknown item field %q", field)
		}
	}
}
