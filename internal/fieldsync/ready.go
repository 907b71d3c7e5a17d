package fieldsync

import "sync"

// ReadySignal is a one-shot "document ready" notification
type ReadySignal struct {
	mu        sync.Mutex
	fired     bool
	callbacks []func()
}

// NewReadySignal creates a signal that has not fired
func NewReadySignal() *ReadySignal {
	return &ReadySignal{}
}

// OnReady runs fn when the signal fires, or immediately if it already has
func (r *ReadySignal) OnReady(fn func()) {
	r.mu.Lock()
	if !r.fired {
		r.callbacks = append(r.callbacks, fn)
		r.mu.Unlock()
		return
	}
	r.mu.Unlock()
	fn()
}

// Fire runs the registered callbacks in order. Only the first call has
// any effect.
func (r *ReadySignal) Fire() {
	r.mu.Lock()
	if r.fired {
		r.mu.Unlock()
		return
	}
	r.fired = true
	callbacks := r.callbacks
	r.callbacks = nil
	r.mu.Unlock()

	for _, fn := range callbacks {
		fn()
	}
}

// Fired reports whether Fire has been called
func (r *ReadySignal) Fired() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.fired
}

// Binding is the result of BindOnReady
type Binding struct {
	bound   chan struct{}
	handler *Handler
}

// Bound is closed once the ready signal has fired and binding was attempted
func (b *Binding) Bound() <-chan struct{} {
	return b.bound
}

// Handler returns the bound handler. It is nil before Bound is closed and
// when either control was missing from the document.
func (b *Binding) Handler() *Handler {
	select {
	case <-b.bound:
		return b.handler
	default:
		return nil
	}
}

// BindOnReady initializes a Handler from the document's id_product and
// id_price controls once ready fires. A missing control, or one of the
// wrong kind, leaves the page unbound without error.
func BindOnReady(ready *ReadySignal, doc Document, lookup Lookup, opts ...Option) *Binding {
	b := &Binding{bound: make(chan struct{})}
	ready.OnReady(func() {
		defer close(b.bound)
		product, _ := doc.ElementByID(ProductElementID).(SelectControl)
		price, _ := doc.ElementByID(PriceElementID).(InputControl)
		b.handler = Initialize(product, price, lookup, opts...)
	})
	return b
}
