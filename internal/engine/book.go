package engine

import (
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/btree"

	"kestrel/internal/common"
)

type priceLevels = btree.BTreeG[*priceLevel]

// book is the matching core: two price-ordered trees of FIFO levels
// plus a directory from order id to queue position. Every mutation
// keeps tree, queues and directory coherent; the book itself does no
// locking, that is the engine's job.
type book struct {
	// Price levels to orders sat on the price level, sorted by time
	// added as they are appended at the tail.
	bids *priceLevels
	asks *priceLevels

	// orders is the single source of truth for which ids exist. An id
	// in the map is in exactly one level queue and vice versa.
	orders map[common.OrderID]*bookOrder

	nextSeq uint64
	now     func() time.Time
}

func newBook() *book {
	// Sorted greatest first.
	bids := btree.NewBTreeG(func(a, b *priceLevel) bool {
		return a.price > b.price
	})
	// Sorted least first.
	asks := btree.NewBTreeG(func(a, b *priceLevel) bool {
		return a.price < b.price
	})
	return &book{
		bids:   bids,
		asks:   asks,
		orders: make(map[common.OrderID]*bookOrder),
		now:    time.Now,
	}
}

func (b *book) levels(side common.Side) *priceLevels {
	if side == common.Buy {
		return b.bids
	}
	return b.asks
}

func (b *book) size() int {
	return len(b.orders)
}

// add runs the full submission protocol: order-type pre-checks, insert,
// match, and residual cleanup for the non-resting types. A nil or empty
// trade slice with no side effects means the order was rejected.
func (b *book) add(order *common.Order) []common.Trade {
	if _, ok := b.orders[order.ID]; ok {
		return nil
	}

	switch order.Type {
	case common.Market:
		// Re-price against the worst opposing level so the match loop
		// crosses every level without a market special case. No
		// opposite liquidity at all means an outright reject.
		worst, ok := b.worstPrice(order.Side.Opposite())
		if !ok {
			return nil
		}
		order.Price = worst
	case common.FillOrKill:
		if b.matchableQuantity(order) < order.RemainingQuantity {
			return nil
		}
	}

	node := b.insert(order)
	trades := b.match()

	// FillAndKill, FillOrKill and Market never rest: discard whatever
	// the matching attempt left behind.
	if !order.Type.Rests() && !order.IsFilled() {
		if _, ok := b.orders[order.ID]; ok {
			b.remove(node)
		}
	}
	return trades
}

// cancel removes a resting order. Unknown ids are a benign no-op: in a
// live feed a cancel routinely races the fill that just consumed it.
func (b *book) cancel(id common.OrderID) {
	node, ok := b.orders[id]
	if !ok {
		return
	}
	b.remove(node)
}

// modify is cancel-then-readd under the same id, keeping the original
// order type. The order goes to the tail of its new level: a modify
// always gives up time priority.
func (b *book) modify(id common.OrderID, side common.Side, price common.Price, quantity common.Quantity) []common.Trade {
	node, ok := b.orders[id]
	if !ok {
		return nil
	}
	orderType := node.order.Type
	b.remove(node)

	order := common.NewOrder(orderType, id, side, price, quantity)
	return b.add(&order)
}

// dayOrderIDs snapshots the ids of all resting good-for-day orders.
func (b *book) dayOrderIDs() []common.OrderID {
	var ids []common.OrderID
	for id, node := range b.orders {
		if node.order.Type == common.GoodForDay {
			ids = append(ids, id)
		}
	}
	return ids
}

// insert places the order at the tail of its level, creating the level
// if absent, and registers it in the directory.
func (b *book) insert(order *common.Order) *bookOrder {
	b.nextSeq++
	node := &bookOrder{order: order, seq: b.nextSeq}

	levels := b.levels(order.Side)
	// The comparator only looks at prices, so a throwaway level works
	// as the search key.
	level, ok := levels.GetMut(&priceLevel{price: order.Price})
	if !ok {
		level = &priceLevel{price: order.Price, side: order.Side}
		levels.Set(level)
	}
	level.enqueue(node)
	b.orders[order.ID] = node
	return node
}

// remove unlinks the order from its level, drops the level if that
// emptied it, and erases the directory entry.
func (b *book) remove(node *bookOrder) {
	level := node.level
	level.unlink(node)
	if level.empty() {
		b.levels(level.side).Delete(level)
	}
	delete(b.orders, node.order.ID)
}

// match consumes the top of book while the sides cross (bid >= ask).
// Trades print at the resting order's limit price; the resting side is
// the one that arrived first.
func (b *book) match() []common.Trade {
	var trades []common.Trade
	for {
		bestBid, bidOk := b.bids.MinMut()
		bestAsk, askOk := b.asks.MinMut()

		// If either side is empty, or prices don't cross, we are done.
		if !bidOk || !askOk || bestBid.price < bestAsk.price {
			break
		}

		bid := bestBid.head
		ask := bestAsk.head

		quantity := min(bid.order.RemainingQuantity, ask.order.RemainingQuantity)
		price := bid.order.Price
		if ask.seq < bid.seq {
			price = ask.order.Price
		}

		if err := bid.order.Fill(quantity); err != nil {
			panic(err)
		}
		if err := ask.order.Fill(quantity); err != nil {
			panic(err)
		}
		bestBid.reduce(quantity)
		bestAsk.reduce(quantity)

		trades = append(trades, common.Trade{
			ID:        uuid.NewString(),
			BuyID:     bid.order.ID,
			SellID:    ask.order.ID,
			Price:     price,
			Quantity:  quantity,
			Timestamp: b.now(),
		})

		if bid.order.IsFilled() {
			b.remove(bid)
		}
		if ask.order.IsFilled() {
			b.remove(ask)
		}
	}
	return trades
}

// matchableQuantity sums the opposite-side liquidity the order could
// cross at its limit, walking levels best-first and stopping as soon as
// the order is covered.
func (b *book) matchableQuantity(order *common.Order) common.Quantity {
	var matchable common.Quantity
	b.levels(order.Side.Opposite()).Scan(func(level *priceLevel) bool {
		if order.Side == common.Buy && level.price > order.Price {
			return false
		}
		if order.Side == common.Sell && level.price < order.Price {
			return false
		}
		matchable += level.totalQty
		return matchable < order.RemainingQuantity
	})
	return matchable
}

// worstPrice is the last price in the side's priority ordering: the
// lowest bid or the highest ask.
func (b *book) worstPrice(side common.Side) (common.Price, bool) {
	level, ok := b.levels(side).Max()
	if !ok {
		return 0, false
	}
	return level.price, true
}
