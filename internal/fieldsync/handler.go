package fieldsync

import (
	"context"
	"errors"
	"reflect"
	"sync"

	"go.uber.org/zap"
)

// State of a Handler
type State int

const (
	// Idle means no lookup is in flight
	Idle State = iota
	// AwaitingPrice means at least one lookup is in flight
	AwaitingPrice
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case AwaitingPrice:
		return "awaiting_price"
	default:
		return "unknown"
	}
}

// Handler copies the selected product's price into the price input
type Handler struct {
	product SelectControl
	price   InputControl
	lookup  Lookup
	opts    options

	// writeMu serializes writes to the price input
	writeMu sync.Mutex

	mu       sync.Mutex
	latest   *Pending
	inFlight int
	wg       sync.WaitGroup
}

// Initialize binds a Handler to the product selector and price input and
// subscribes it to selection changes. It returns nil and subscribes
// nothing when either control or lookup is nil.
func Initialize(product SelectControl, price InputControl, lookup Lookup, opts ...Option) *Handler {
	if isNil(product) || isNil(price) || isNil(lookup) {
		return nil
	}

	h := &Handler{
		product: product,
		price:   price,
		lookup:  lookup,
		opts:    defaultOptions(),
	}
	for _, opt := range opts {
		opt(&h.opts)
	}

	product.OnChange(func() {
		h.OnSelectionChange(context.Background())
	})
	return h
}

// OnSelectionChange reads the current selection and, unless it is the
// empty placeholder, starts one price lookup on its own goroutine. The
// value is passed to the lookup as read. It returns nil when no lookup was
// started.
func (h *Handler) OnSelectionChange(ctx context.Context) *Pending {
	id := ProductID(h.product.Value())
	if id == "" {
		h.opts.logger.Debug("empty product selection, price left unchanged")
		return nil
	}

	var lookupCtx context.Context
	var cancel context.CancelFunc
	if h.opts.timeout > 0 {
		lookupCtx, cancel = context.WithTimeout(ctx, h.opts.timeout)
	} else {
		lookupCtx, cancel = context.WithCancel(ctx)
	}
	p := newPending(id, cancel, &h.writeMu)

	h.mu.Lock()
	previous := h.latest
	h.latest = p
	h.inFlight++
	h.wg.Add(1)
	h.mu.Unlock()

	if h.opts.cancelSuperseded && previous != nil {
		previous.supersede()
	}

	go h.run(lookupCtx, p)
	return p
}

func (h *Handler) run(ctx context.Context, p *Pending) {
	defer h.wg.Done()
	defer p.cancel()

	quote, err := h.lookup.LookupPrice(ctx, p.id)
	outcome := h.apply(p, quote, err)

	h.mu.Lock()
	h.inFlight--
	if h.latest == p {
		h.latest = nil
	}
	h.mu.Unlock()

	h.report(outcome)
	if h.opts.onOutcome != nil {
		h.opts.onOutcome(outcome)
	}
	p.finish(outcome)
}

func (h *Handler) apply(p *Pending, quote Quote, err error) Outcome {
	outcome := Outcome{ProductID: p.id, Quote: quote, Err: err}

	h.writeMu.Lock()
	defer h.writeMu.Unlock()

	outcome.Superseded = p.superseded.Load()
	switch {
	case err != nil, outcome.Superseded:
	case p.cancelled.Load():
		outcome.Err = context.Canceled
	default:
		h.price.SetValue(quote.Price)
		outcome.Applied = true
	}
	return outcome
}

func (h *Handler) report(o Outcome) {
	fields := []zap.Field{zap.String("product_id", string(o.ProductID))}
	switch {
	case o.Applied:
		h.opts.logger.Debug("price applied", append(fields, zap.String("price", o.Quote.Price))...)
	case o.Superseded:
		h.opts.logger.Debug("price lookup superseded", fields...)
	case errors.Is(o.Err, context.Canceled):
		h.opts.logger.Debug("price lookup cancelled", fields...)
	default:
		h.opts.logger.Debug("price lookup failed", append(fields, zap.Error(o.Err))...)
	}
}

// State reports whether any lookup is in flight. A failed or cancelled
// lookup also returns the handler to Idle once it finishes; the price is
// left as it was.
func (h *Handler) State() State {
	if h.InFlight() > 0 {
		return AwaitingPrice
	}
	return Idle
}

// InFlight returns the number of lookups that have not finished
func (h *Handler) InFlight() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.inFlight
}

// Wait blocks until every started lookup has finished
func (h *Handler) Wait() {
	h.wg.Wait()
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Func, reflect.Map, reflect.Interface, reflect.Slice, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
