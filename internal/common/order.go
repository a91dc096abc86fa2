package common

import (
	"errors"
	"fmt"
)

var ErrOverfill = errors.New("fill exceeds remaining quantity")

// Order is a request to trade. Once accepted it doubles as the resting
// state: RemainingQuantity is drawn down as fills occur. ID, Side and
// InitialQuantity never change while resting; Price changes only for a
// Market order, which is re-priced before it enters the book.
type Order struct {
	Type              OrderType
	ID                OrderID
	Side              Side
	Price             Price
	InitialQuantity   Quantity
	RemainingQuantity Quantity
}

func NewOrder(orderType OrderType, id OrderID, side Side, price Price, quantity Quantity) Order {
	return Order{
		Type:              orderType,
		ID:                id,
		Side:              side,
		Price:             price,
		InitialQuantity:   quantity,
		RemainingQuantity: quantity,
	}
}

// NewMarketOrder builds a Market order. It carries no price of its own;
// the engine re-prices it against the opposite side on submission.
func NewMarketOrder(id OrderID, side Side, quantity Quantity) Order {
	return NewOrder(Market, id, side, 0, quantity)
}

func (o *Order) FilledQuantity() Quantity {
	return o.InitialQuantity - o.RemainingQuantity
}

func (o *Order) IsFilled() bool {
	return o.RemainingQuantity == 0
}

// Fill draws down the remaining quantity. Overfilling an order means
// the matcher has lost track of its own state, so it is never tolerated.
func (o *Order) Fill(quantity Quantity) error {
	if quantity > o.RemainingQuantity {
		return fmt.Errorf("order %d: %w", o.ID, ErrOverfill)
	}
	o.RemainingQuantity -= quantity
	return nil
}

func (o Order) String() string {
	return fmt.Sprintf("%s %s #%d %d@%d (remaining %d)",
		o.Type, o.Side, o.ID, o.InitialQuantity, o.Price, o.RemainingQuantity)
}
