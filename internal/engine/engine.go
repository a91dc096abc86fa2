package engine

import (
	"errors"
	"sync"
	"time"

	tomb "gopkg.in/tomb.v2"

	"kestrel/internal/common"
)

// This is the main matching engine.

var ErrInvalidQuantity = errors.New("invalid quantity")

// TradeReporter receives every trade the engine prints, in match order.
// It is invoked outside the engine lock.
type TradeReporter interface {
	ReportTrade(trade common.Trade)
}

// Cutoff is the wall-clock time of day at which good-for-day orders are
// cancelled.
type Cutoff struct {
	Hour   int
	Minute int
}

type Config struct {
	// Cutoff defaults to 16:00.
	Cutoff *Cutoff
	// Location is the timezone the cutoff is read in. Defaults to the
	// system location.
	Location *time.Location
	Reporter TradeReporter
}

// Engine is the public face of the book. One mutex serializes every
// operation, including the background day-order expiry; nothing blocks
// while holding it.
type Engine struct {
	mu   sync.Mutex
	book *book

	reporterMu sync.Mutex
	reporter   TradeReporter

	cutoff   Cutoff
	location *time.Location
	t        tomb.Tomb
}

// New builds an engine and starts its day-order expirer.
func New(cfg Config) *Engine {
	engine := &Engine{
		book:     newBook(),
		reporter: cfg.Reporter,
		cutoff:   Cutoff{Hour: 16},
		location: time.Local,
	}
	if cfg.Cutoff != nil {
		engine.cutoff = *cfg.Cutoff
	}
	if cfg.Location != nil {
		engine.location = cfg.Location
	}
	engine.t.Go(engine.expireLoop)
	return engine
}

// Close signals the expirer to stop and waits for it to exit.
func (e *Engine) Close() error {
	e.t.Kill(nil)
	return e.t.Wait()
}

func (e *Engine) SetReporter(reporter TradeReporter) {
	e.reporterMu.Lock()
	defer e.reporterMu.Unlock()
	e.reporter = reporter
}

// AddOrder submits an order and returns the trades it produced.
// Structural rejections (duplicate id, market with an empty opposite
// side, fill-or-kill that cannot fully fill) return an empty slice and
// no error; the book is untouched.
func (e *Engine) AddOrder(order common.Order) ([]common.Trade, error) {
	if order.InitialQuantity == 0 {
		return nil, ErrInvalidQuantity
	}

	e.mu.Lock()
	trades := e.book.add(&order)
	e.mu.Unlock()

	e.report(trades)
	return trades, nil
}

// CancelOrder removes a resting order. Unknown ids are a silent no-op.
func (e *Engine) CancelOrder(id common.OrderID) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.book.cancel(id)
}

// CancelOrders cancels a batch under a single lock acquisition.
func (e *Engine) CancelOrders(ids []common.OrderID) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, id := range ids {
		e.book.cancel(id)
	}
}

// ModifyOrder cancels and re-adds the order under its original type,
// forfeiting time priority. Unknown ids return an empty slice.
func (e *Engine) ModifyOrder(id common.OrderID, side common.Side, price common.Price, quantity common.Quantity) ([]common.Trade, error) {
	if quantity == 0 {
		return nil, ErrInvalidQuantity
	}

	e.mu.Lock()
	trades := e.book.modify(id, side, price, quantity)
	e.mu.Unlock()

	e.report(trades)
	return trades, nil
}

// Snapshot returns the aggregated depth of both sides.
func (e *Engine) Snapshot() Depth {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.book.depth()
}

// Size is the number of resting orders.
func (e *Engine) Size() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.book.size()
}

func (e *Engine) report(trades []common.Trade) {
	e.reporterMu.Lock()
	reporter := e.reporter
	e.reporterMu.Unlock()
	if reporter == nil {
		return
	}
	for _, trade := range trades {
		reporter.ReportTrade(trade)
	}
}
