package common

import (
	"fmt"
	"time"
)

// Trade records one match between a buy and a sell order. It is a value
// copy: it never aliases book state and is safe to hand out or retain.
type Trade struct {
	// ID is assigned by the exchange at match time.
	ID        string
	BuyID     OrderID
	SellID    OrderID
	Price     Price
	Quantity  Quantity
	Timestamp time.Time
}

func (t Trade) String() string {
	return fmt.Sprintf("trade %s: buy #%d x sell #%d %d@%d",
		t.ID, t.BuyID, t.SellID, t.Quantity, t.Price)
}
