package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	catalogapp "github.com/erp/pricesync/internal/application/catalog"
	partnerapp "github.com/erp/pricesync/internal/application/partner"
	tradeapp "github.com/erp/pricesync/internal/application/trade"
	"github.com/erp/pricesync/internal/infrastructure/cache"
	"github.com/erp/pricesync/internal/infrastructure/config"
	"github.com/erp/pricesync/internal/infrastructure/event"
	"github.com/erp/pricesync/internal/infrastructure/logger"
	"github.com/erp/pricesync/internal/infrastructure/migration"
	"github.com/erp/pricesync/internal/infrastructure/persistence"
	"github.com/erp/pricesync/internal/infrastructure/telemetry"
	"github.com/erp/pricesync/internal/interfaces/http/middleware"
	"github.com/erp/pricesync/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	exitCode := 0
	defer func() {
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	}()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(logger.Config{
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

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Telemetry providers are no-ops unless telemetry.enabled is set
	tp, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	mp, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	lp, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize logger provider", zap.Error(err))
	}
	log = lp.Bridge(log, logger.ParseLevel(cfg.Log.Level))

	log.Info("Starting price service",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("database_driver", cfg.Database.Driver),
	)

	// Database with zap-backed GORM logger
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabase(&cfg.Database, persistence.WithLogger(gormLog))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	var tracerProvider trace.TracerProvider
	if tp.IsEnabled() {
		tracerProvider = otel.GetTracerProvider()
	}
	dbSystem := "postgresql"
	if cfg.Database.Driver == config.DriverSQLite {
		dbSystem = "sqlite"
	}
	if err := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
		Enabled:        cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		LogFullSQL:     cfg.Telemetry.DBLogFullSQL,
		DBSystem:       dbSystem,
		TracerProvider: tracerProvider,
	}, log).Register(db.DB); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}

	if cfg.Database.AutoMigrate {
		if err := migrateUp(db, cfg.Database.Driver, log); err != nil {
			log.Fatal("Failed to apply migrations", zap.Error(err))
		}
	}

	// Price cache: Redis, in-memory or none depending on configuration
	priceCache, err := cache.NewPriceCacheFactory(cfg.Redis, cfg.PriceCache, cache.WithLogger(log)).CreateCache(ctx)
	if err != nil {
		log.Fatal("Failed to create price cache", zap.Error(err))
	}
	defer func() {
		if err := priceCache.Close(); err != nil {
			log.Error("Error closing price cache", zap.Error(err))
		}
	}()

	// Event bus evicts cached quotes when a product's price or stock changes
	eventBus := event.NewInMemoryEventBus(log)
	eventBus.Subscribe(catalogapp.NewPriceCacheInvalidator(priceCache, log))
	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}

	// Services
	productRepo := persistence.NewGormProductRepository(db.DB)
	productService := catalogapp.NewProductService(productRepo, eventBus, log)
	customerService := partnerapp.NewCustomerService(persistence.NewGormCustomerRepository(db.DB), log)
	invoiceService := tradeapp.NewInvoiceService(
		persistence.StoresFor(db.DB), persistence.NewGormTransactor(db), eventBus, log)

	priceOpts := []catalogapp.PriceServiceOption{
		catalogapp.WithPriceCache(priceCache, cfg.PriceCache.TTL),
		catalogapp.WithPriceLogger(log),
	}
	meter := mp.Meter("pricesync")
	if mp.IsEnabled() {
		lookupMetrics, err := telemetry.NewPriceLookupMetrics(meter)
		if err != nil {
			log.Fatal("Failed to create price lookup metrics", zap.Error(err))
		}
		priceOpts = append(priceOpts, catalogapp.WithPriceMetrics(lookupMetrics))
	} else {
		meter = nil
	}
	priceService := catalogapp.NewPriceService(productRepo, priceOpts...)

	// HTTP engine
	cors := middleware.DefaultCORSConfig()
	cors.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	cors.AllowMethods = cfg.HTTP.CORSAllowMethods
	cors.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	security := middleware.DefaultSecurityConfig()
	security.HSTSEnabled = cfg.App.Env == "production"

	engine, err := router.NewEngine(router.Config{
		ServiceName:     cfg.Telemetry.ServiceName,
		ProductService:  productService,
		CustomerService: customerService,
		InvoiceService:  invoiceService,
		PriceService:    priceService,
		Health:          db,
		Logger:          log,
		CORS:            cors,
		Security:        security,
		MaxBodySize:     cfg.HTTP.MaxBodySize,
		TrustedProxies:  cfg.HTTP.TrustedProxies,
		TracerProvider:  tracerProvider,
		Meter:           meter,
	})
	if err != nil {
		log.Fatal("Failed to build HTTP engine", zap.Error(err))
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := eventBus.Stop(shutdownCtx); err != nil {
			log.Warn("Error stopping event bus", zap.Error(err))
		}
		return errors.Join(
			tp.Shutdown(shutdownCtx),
			mp.Shutdown(shutdownCtx),
			lp.Shutdown(shutdownCtx),
		)
	})

	if err := g.Wait(); err != nil {
		log.Error("Server stopped with error", zap.Error(err))
		exitCode = 1
		return
	}
	log.Info("Server exited gracefully")
}

func migrateUp(db *persistence.Database, driver string, log *zap.Logger) error {
	sqlDB, err := db.SQLDB()
	if err != nil {
		return err
	}
	m, err := migration.New(sqlDB, driver, log)
	if err != nil {
		return err
	}
	// Closing the migrator would close the shared *sql.DB.
	return m.Up()
}
