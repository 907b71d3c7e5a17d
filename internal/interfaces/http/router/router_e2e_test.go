package router_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	catalogapp "github.com/erp/pricesync/internal/application/catalog"
	partnerapp "github.com/erp/pricesync/internal/application/partner"
	tradeapp "github.com/erp/pricesync/internal/application/trade"
	"github.com/erp/pricesync/internal/fieldsync"
	"github.com/erp/pricesync/internal/infrastructure/cache"
	"github.com/erp/pricesync/internal/infrastructure/config"
	"github.com/erp/pricesync/internal/infrastructure/event"
	"github.com/erp/pricesync/internal/infrastructure/migration"
	"github.com/erp/pricesync/internal/infrastructure/persistence"
	"github.com/erp/pricesync/internal/infrastructure/pricelookup"
	"github.com/erp/pricesync/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stack struct {
	server    *httptest.Server
	products  *catalogapp.ProductService
	customers *partnerapp.CustomerService
	invoices  *tradeapp.InvoiceService
}

func newStack(t *testing.T) *stack {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := persistence.NewDatabase(&config.DatabaseConfig{
		Driver: config.DriverSQLite,
		Path:   ":memory:",
	}, persistence.WithPreparedStatements(false))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	sqlDB, err := db.SQLDB()
	require.NoError(t, err)
	m, err := migration.New(sqlDB, config.DriverSQLite, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, m.Up())

	priceCache := cache.NewInMemoryPriceCache(time.Minute)
	t.Cleanup(func() { _ = priceCache.Close() })

	bus := event.NewInMemoryEventBus(zap.NewNop())
	bus.Subscribe(catalogapp.NewPriceCacheInvalidator(priceCache, zap.NewNop()))
	require.NoError(t, bus.Start(context.Background()))
	t.Cleanup(func() { _ = bus.Stop(context.Background()) })

	repo := persistence.NewGormProductRepository(db.DB)
	products := catalogapp.NewProductService(repo, bus, zap.NewNop())
	prices := catalogapp.NewPriceService(repo, catalogapp.WithPriceCache(priceCache, time.Minute))

	customers := partnerapp.NewCustomerService(persistence.NewGormCustomerRepository(db.DB), zap.NewNop())
	invoices := tradeapp.NewInvoiceService(persistence.StoresFor(db.DB), persistence.NewGormTransactor(db), bus, zap.NewNop())

	engine, err := router.NewEngine(router.Config{
		ServiceName:     "pricesync",
		ProductService:  products,
		CustomerService: customers,
		InvoiceService:  invoices,
		PriceService:    prices,
		Health:          db,
	})
	require.NoError(t, err)

	server := httptest.NewServer(engine)
	t.Cleanup(server.Close)
	return &stack{server: server, products: products, customers: customers, invoices: invoices}
}

func (s *stack) createProduct(t *testing.T, name, price string, quantity int) string {
	t.Helper()
	p := decimal.RequireFromString(price)
	created, err := s.products.Create(context.Background(), catalogapp.CreateProductRequest{
		Name:     name,
		Price:    &p,
		Quantity: &quantity,
	})
	require.NoError(t, err)
	return strconv.FormatInt(created.ID, 10)
}

func (s *stack) client(t *testing.T) *pricelookup.Client {
	t.Helper()
	c, err := pricelookup.NewClient(pricelookup.Config{BaseURL: s.server.URL, Timeout: 5 * time.Second})
	require.NoError(t, err)
	return c
}

type outcomes struct {
	mu   sync.Mutex
	list []fieldsync.Outcome
}

func (o *outcomes) record(out fieldsync.Outcome) {
	o.mu.Lock()
	o.list = append(o.list, out)
	o.mu.Unlock()
}

func (o *outcomes) all() []fieldsync.Outcome {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]fieldsync.Outcome(nil), o.list...)
}

func bindForm(t *testing.T, lookup fieldsync.Lookup, productIDs ...string) (*fieldsync.SelectField, *fieldsync.InputField, *fieldsync.Handler, *outcomes) {
	t.Helper()
	form := fieldsync.NewForm()
	product := form.AddSelect(fieldsync.ProductElementID, productIDs...)
	price := form.AddInput(fieldsync.PriceElementID, "")

	seen := &outcomes{}
	ready := fieldsync.NewReadySignal()
	binding := fieldsync.BindOnReady(ready, form, lookup, fieldsync.WithOutcomeHook(seen.record))
	ready.Fire()
	<-binding.Bound()

	h := binding.Handler()
	require.NotNil(t, h)
	return product, price, h, seen
}

func TestEndToEnd_SelectionFillsPrice(t *testing.T) {
	s := newStack(t)
	widget := s.createProduct(t, "Widget", "15.50", 7)
	gadget := s.createProduct(t, "Gadget", "3", 0)

	product, price, h, seen := bindForm(t, s.client(t), widget, gadget)

	require.NoError(t, product.Select(widget))
	h.Wait()
	assert.Equal(t, "15.50", price.Value())

	require.NoError(t, product.Select(gadget))
	h.Wait()
	assert.Equal(t, "3.00", price.Value())

	got := seen.all()
	require.Len(t, got, 2)
	assert.True(t, got[0].Applied)
	require.NotNil(t, got[0].Quote.Quantity)
	assert.Equal(t, 7, *got[0].Quote.Quantity)
	assert.Equal(t, fieldsync.Idle, h.State())
}

func TestEndToEnd_PlaceholderLeavesPriceUntouched(t *testing.T) {
	s := newStack(t)
	widget := s.createProduct(t, "Widget", "15.50", 7)

	product, price, h, seen := bindForm(t, s.client(t), widget)
	price.SetValue("9.99")

	require.NoError(t, product.Select(""))
	h.Wait()

	assert.Equal(t, "9.99", price.Value())
	assert.Empty(t, seen.all())
}

func TestEndToEnd_UnknownProductKeepsPrice(t *testing.T) {
	s := newStack(t)
	widget := s.createProduct(t, "Widget", "15.50", 7)

	product, price, h, seen := bindForm(t, s.client(t), widget, "9999")
	price.SetValue("1.00")

	require.NoError(t, product.Select("9999"))
	h.Wait()

	assert.Equal(t, "1.00", price.Value())
	got := seen.all()
	require.Len(t, got, 1)
	assert.False(t, got[0].Applied)
	var statusErr *pricelookup.StatusError
	require.True(t, errors.As(got[0].Err, &statusErr))
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
}

func TestEndToEnd_PriceChangeInvalidatesCache(t *testing.T) {
	s := newStack(t)
	widget := s.createProduct(t, "Widget", "15.50", 7)
	id, err := strconv.ParseInt(widget, 10, 64)
	require.NoError(t, err)

	product, price, h, _ := bindForm(t, s.client(t), widget)

	require.NoError(t, product.Select(widget))
	h.Wait()
	require.Equal(t, "15.50", price.Value())

	newPrice := decimal.RequireFromString("17.25")
	_, err = s.products.UpdatePrice(context.Background(), id, catalogapp.UpdatePriceRequest{Price: &newPrice})
	require.NoError(t, err)

	require.NoError(t, product.Select(widget))
	h.Wait()
	assert.Equal(t, "17.25", price.Value())
}

func TestEndToEnd_HealthReportsDatabase(t *testing.T) {
	s := newStack(t)

	resp, err := http.Get(s.server.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func (s *stack) unpaidInvoices(t *testing.T, customerID int64) []tradeapp.InvoiceSummary {
	t.Helper()
	resp, err := http.Get(fmt.Sprintf("%s/api/customers/%d/invoices/", s.server.URL, customerID))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var list []tradeapp.InvoiceSummary
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	return list
}

func TestEndToEnd_InvoiceDeductsStockAndListsUnpaid(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()
	widget := s.createProduct(t, "Widget", "15.50", 7)
	productID, err := strconv.ParseInt(widget, 10, 64)
	require.NoError(t, err)

	product, price, h, seen := bindForm(t, s.client(t), widget)
	require.NoError(t, product.Select(widget))
	h.Wait()
	require.Equal(t, "15.50", price.Value())

	acme, err := s.customers.Create(ctx, partnerapp.CreateCustomerRequest{Name: "Acme LLC", IsCompany: true})
	require.NoError(t, err)
	assert.Empty(t, s.unpaidInvoices(t, acme.ID))

	invoice, err := s.invoices.Create(ctx, tradeapp.CreateInvoiceRequest{
		CustomerID: acme.ID,
		Items:      []tradeapp.InvoiceItemRequest{{ProductID: productID, Quantity: 2}},
	})
	require.NoError(t, err)
	assert.Equal(t, "31.00", invoice.Total)

	// the stock change evicts the cached quote
	require.NoError(t, product.Select(widget))
	h.Wait()
	got := seen.all()
	require.Len(t, got, 2)
	require.NotNil(t, got[1].Quote.Quantity)
	assert.Equal(t, 5, *got[1].Quote.Quantity)

	assert.Equal(t, []tradeapp.InvoiceSummary{{ID: invoice.ID, Number: invoice.Number, Total: "31.00"}},
		s.unpaidInvoices(t, acme.ID))

	resp, err := http.Post(fmt.Sprintf("%s/api/v1/invoices/%d/pay", s.server.URL, invoice.ID), "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Empty(t, s.unpaidInvoices(t, acme.ID))
}

func TestEndToEnd_UnpaidInvoicesUnknownCustomer(t *testing.T) {
	s := newStack(t)

	resp, err := http.Get(s.server.URL + "/api/customers/999/invoices/")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
