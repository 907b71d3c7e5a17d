package fieldsync

import (
	"context"
	"sync"
	"sync/atomic"
)

// Outcome describes how one lookup ended
type Outcome struct {
	ProductID ProductID
	Quote     Quote
	// Err is the lookup error, or context.Canceled when the lookup
	// succeeded after Cancel.
	Err error
	// Applied is true when Quote.Price was written to the price input
	Applied bool
	// Superseded is true when a newer selection cancelled this lookup
	Superseded bool
}

// Pending is a lookup in flight
type Pending struct {
	id     ProductID
	cancel context.CancelFunc
	gate   *sync.Mutex

	cancelled  atomic.Bool
	superseded atomic.Bool

	done    chan struct{}
	outcome Outcome
}

func newPending(id ProductID, cancel context.CancelFunc, gate *sync.Mutex) *Pending {
	return &Pending{
		id:     id,
		cancel: cancel,
		gate:   gate,
		done:   make(chan struct{}),
	}
}

// ProductID returns the product being looked up
func (p *Pending) ProductID() ProductID {
	return p.id
}

// Done is closed when the lookup has finished and its outcome is final
func (p *Pending) Done() <-chan struct{} {
	return p.done
}

// Wait blocks until the lookup finishes or ctx is done
func (p *Pending) Wait(ctx context.Context) (Outcome, error) {
	select {
	case <-p.done:
		return p.outcome, nil
	case <-ctx.Done():
		return Outcome{}, ctx.Err()
	}
}

// Outcome returns the final outcome; ok is false while the lookup runs
func (p *Pending) Outcome() (outcome Outcome, ok bool) {
	select {
	case <-p.done:
		return p.outcome, true
	default:
		return Outcome{}, false
	}
}

// Cancel aborts the lookup. Once Cancel returns the price input will not
// be written by this lookup.
func (p *Pending) Cancel() {
	p.gate.Lock()
	p.cancelled.Store(true)
	p.gate.Unlock()
	p.cancel()
}

func (p *Pending) supersede() {
	p.gate.Lock()
	p.superseded.Store(true)
	p.gate.Unlock()
	p.cancel()
}

func (p *Pending) finish(outcome Outcome) {
	p.outcome = outcome
	close(p.done)
}
