package engine

import "kestrel/internal/common"

// bookOrder is the resting form of an order: the order itself plus its
// position in the book. Orders at a price level form an intrusive
// doubly-linked FIFO, so a node stays a valid handle while neighbours
// are unlinked around it.
type bookOrder struct {
	order *common.Order
	level *priceLevel
	// seq is the arrival sequence. The earlier of two matched orders is
	// the resting one and its price prints.
	seq  uint64
	prev *bookOrder
	next *bookOrder
}

// priceLevel is the FIFO queue of orders resting at one price on one
// side. totalQty tracks the summed remaining quantity so depth
// snapshots and fill-or-kill pre-checks need no queue walk.
type priceLevel struct {
	price    common.Price
	side     common.Side
	head     *bookOrder
	tail     *bookOrder
	totalQty common.Quantity
	count    int
}

func (l *priceLevel) enqueue(n *bookOrder) {
	n.level = l
	if l.head == nil {
		l.head = n
		l.tail = n
	} else {
		l.tail.next = n
		n.prev = l.tail
		l.tail = n
	}
	l.totalQty += n.order.RemainingQuantity
	l.count++
}

// unlink removes n from the queue. The level's aggregate drops by the
// order's remaining quantity, so a fully-filled order must be reduced
// before it is unlinked.
func (l *priceLevel) unlink(n *bookOrder) {
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		l.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		l.tail = n.prev
	}
	n.prev = nil
	n.next = nil
	n.level = nil
	l.totalQty -= n.order.RemainingQuantity
	l.count--
}

// reduce records a partial or full fill of one queued order.
func (l *priceLevel) reduce(quantity common.Quantity) {
	l.totalQty -= quantity
}

func (l *priceLevel) empty() bool {
	return l.head == nil
}
