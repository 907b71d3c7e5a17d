package router

import (
	"net/http"

	catalogapp "github.com/erp/pricesync/internal/application/catalog"
	partnerapp "github.com/erp/pricesync/internal/application/partner"
	tradeapp "github.com/erp/pricesync/internal/application/trade"
	"github.com/erp/pricesync/internal/infrastructure/logger"
	"github.com/erp/pricesync/internal/interfaces/http/dto"
	"github.com/erp/pricesync/internal/interfaces/http/handler"
	"github.com/erp/pricesync/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Config carries the services and settings the HTTP surface is built from
type Config struct {
	ServiceName     string
	ProductService  *catalogapp.ProductService
	CustomerService *partnerapp.CustomerService
	InvoiceService  *tradeapp.InvoiceService
	PriceService    handler.PriceGetter
	Health          handler.Pinger
	Logger          *zap.Logger

	CORS           middleware.CORSConfig
	Security       middleware.SecurityConfig
	MaxBodySize    int64
	TrustedProxies []string

	// Tracing is enabled when TracerProvider is set; metrics when Meter is.
	TracerProvider trace.TracerProvider
	Meter          metric.Meter
}

// NewEngine assembles the gin engine: middleware chain, the price lookup
// route, the unpaid invoices route, /health and the versioned API.
func NewEngine(cfg Config) (*gin.Engine, error) {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	middleware.SetupValidator()

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, err
	}
	engine.HandleMethodNotAllowed = true
	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, dto.NewErrorResponseWithRequestID(
			dto.ErrCodeNotFound, "Route not found", middleware.GetRequestID(c)))
	})
	engine.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, dto.NewErrorResponseWithRequestID(
			dto.ErrCodeMethodNotAllowed, "Method not allowed", middleware.GetRequestID(c)))
	})

	// Order matters: the request id must exist before logging and tracing
	// read it, and recovery must wrap everything after it.
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName:    cfg.ServiceName,
		Enabled:        cfg.TracerProvider != nil,
		TracerProvider: cfg.TracerProvider,
	}))
	engine.Use(middleware.SpanRequestID())
	engine.Use(middleware.HTTPMetrics(cfg.Meter))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.SecureWithConfig(cfg.Security))
	engine.Use(middleware.CORSWithConfig(cfg.CORS))
	engine.Use(middleware.BodyLimit(cfg.MaxBodySize))

	systemHandler := handler.NewSystemHandler(cfg.ServiceName, cfg.Health)
	engine.GET("/health", systemHandler.Health)

	priceHandler := handler.NewPriceHandler(cfg.PriceService)
	engine.GET(handler.PriceLookupPath, priceHandler.GetPrice)

	r := NewRouter(engine, WithAPIVersion("v1"))
	r.Register(systemHandler).Register(priceHandler)
	if cfg.ProductService != nil {
		r.Register(handler.NewProductHandler(cfg.ProductService))
	}
	if cfg.CustomerService != nil {
		r.Register(handler.NewCustomerHandler(cfg.CustomerService))
	}
	if cfg.InvoiceService != nil {
		invoiceHandler := handler.NewInvoiceHandler(cfg.InvoiceService)
		engine.GET(handler.CustomerInvoicesPath, invoiceHandler.UnpaidInvoices)
		r.Register(invoiceHandler)
	}
	r.Setup()

	return engine, nil
}
