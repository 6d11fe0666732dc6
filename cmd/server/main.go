package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	inventoryapp "github.com/dukapos/backend/internal/application/inventory"
	orderapp "github.com/dukapos/backend/internal/application/order"
	paymentapp "github.com/dukapos/backend/internal/application/payment"
	"github.com/dukapos/backend/internal/infrastructure/cache"
	"github.com/dukapos/backend/internal/infrastructure/config"
	"github.com/dukapos/backend/internal/infrastructure/event"
	"github.com/dukapos/backend/internal/infrastructure/logger"
	mpesa "github.com/dukapos/backend/internal/infrastructure/payment"
	"github.com/dukapos/backend/internal/infrastructure/persistence"
	"github.com/dukapos/backend/internal/interfaces/http/handler"
	"github.com/dukapos/backend/internal/interfaces/http/middleware"
	"github.com/dukapos/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting DukaPOS backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Initialize database connection
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, logger.MapGormLogLevel(cfg.Log.Level))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Schema sync runs in-process outside production; production deploys use
	// the migrate binary so the server never alters the schema on boot.
	if cfg.App.Env != "production" {
		if err := db.Migrate(); err != nil {
			log.Fatal("Failed to run schema migration", zap.Error(err))
		}
		log.Info("Schema migration complete")
	}

	// Initialize repositories and transaction scopes
	productRepo := persistence.NewGormProductRepository(db.DB)
	movementRepo := persistence.NewGormStockMovementRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	paymentRepo := persistence.NewGormPaymentRepository(db.DB)

	inventoryScope := persistence.NewGormInventoryTransactionScope(db.DB)
	orderScope := persistence.NewGormOrderTransactionScope(db.DB)
	paymentScope := persistence.NewGormPaymentTransactionScope(db.DB)

	// Initialize event bus
	eventBus := event.NewInMemoryEventBus(log)

	lowStockHandler := inventoryapp.NewLowStockAlertHandler(log)
	eventBus.Subscribe(lowStockHandler)
	log.Info("Event handlers registered",
		zap.Strings("low_stock_events", lowStockHandler.EventTypes()),
	)

	// Idempotency store for gateway callback replays. Redis when reachable,
	// in-memory otherwise.
	storeFactory := cache.NewIdempotencyStoreFactory(cfg.Redis, cache.WithLogger(log))
	idempotencyStore, err := storeFactory.CreateStore()
	if err != nil {
		log.Fatal("Failed to create idempotency store", zap.Error(err))
	}
	defer func() {
		if err := idempotencyStore.Close(); err != nil {
			log.Error("Error closing idempotency store", zap.Error(err))
		}
	}()

	// Payment gateway adapter
	gateway, err := mpesa.NewMpesaAdapter(&mpesa.MpesaConfig{
		BaseURL:        cfg.Mpesa.BaseURL,
		ConsumerKey:    cfg.Mpesa.ConsumerKey,
		ConsumerSecret: cfg.Mpesa.ConsumerSecret,
		ShortCode:      cfg.Mpesa.ShortCode,
		Passkey:        cfg.Mpesa.Passkey,
		CallbackURL:    cfg.Mpesa.CallbackURL,
		Timeout:        cfg.Mpesa.Timeout,
		QueryRetries:   cfg.Mpesa.QueryRetries,
	})
	if err != nil {
		log.Fatal("Failed to configure payment gateway", zap.Error(err))
	}

	// Initialize application services
	ledgerService := inventoryapp.NewLedgerService(inventoryScope, productRepo, movementRepo)
	ledgerService.SetEventPublisher(eventBus)

	orderService := orderapp.NewOrderService(orderScope, orderRepo)
	orderService.SetEventPublisher(eventBus)
	orderService.SetDefaultTaxRate(decimal.NewFromFloat(cfg.Order.TaxRate))

	reconService := paymentapp.NewReconciliationService(paymentScope, paymentRepo, orderRepo, gateway, log)
	reconService.SetEventPublisher(eventBus)
	reconService.SetIdempotencyStore(idempotencyStore)
	reconService.SetStaleAfter(cfg.Recon.StaleAfter)

	// Initialize HTTP handlers
	inventoryHandler := handler.NewInventoryHandler(ledgerService)
	orderHandler := handler.NewOrderHandler(orderService)
	paymentHandler := handler.NewPaymentHandler(reconService)
	callbackHandler := handler.NewPaymentCallbackHandler(reconService)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Register custom binding validations (msisdn)
	middleware.SetupValidator()

	engine := gin.New()

	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))

	r := router.NewRouter(engine,
		router.WithAPIVersion("v1"),
		router.WithHealthChecker(db),
	)
	r.Register(inventoryHandler).
		Register(orderHandler).
		Register(paymentHandler).
		Register(callbackHandler)
	r.Setup()

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Background sweep polls stale PENDING mobile payments so a lost
	// callback cannot strand a payment forever
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	if cfg.Recon.SweepEnabled {
		go runSweepLoop(sweepCtx, reconService, cfg.Recon, log)
		log.Info("Stale payment sweep enabled",
			zap.Duration("interval", cfg.Recon.SweepInterval),
			zap.Duration("stale_after", cfg.Recon.StaleAfter),
			zap.Int("limit", cfg.Recon.SweepLimit),
		)
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
	stopSweep()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// runSweepLoop periodically reconciles stale pending payments against the
// gateway until ctx is cancelled
func runSweepLoop(ctx context.Context, svc *paymentapp.ReconciliationService, cfg config.ReconConfig, log *zap.Logger) {
	ticker := time.NewTicker(cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			result, err := svc.SweepStale(ctx, cfg.SweepLimit)
			if err != nil {
				log.Error("Stale payment sweep failed", zap.Error(err))
				continue
			}
			if result.Scanned > 0 {
				log.Info("Stale payment sweep complete",
					zap.Int("scanned", result.Scanned),
					zap.Int("settled", result.Settled),
					zap.Int("failed", result.Failed),
					zap.Int("cancelled", result.Cancelled),
					zap.Int("still_pending", result.StillPend),
				)
			}
		}
	}
}
