package engine

import "kestrel/internal/common"

// LevelDepth is one price level's aggregate: the summed remaining
// quantity of every order queued at that price.
type LevelDepth struct {
	Price    common.Price
	Quantity common.Quantity
}

// Depth is a point-in-time aggregated view of the book, both sides in
// priority order (bids best-first descending, asks best-first
// ascending). It is a value copy and stays valid while the book moves.
type Depth struct {
	Bids []LevelDepth
	Asks []LevelDepth
}

func (b *book) depth() Depth {
	collect := func(levels *priceLevels) []LevelDepth {
		out := make([]LevelDepth, 0, levels.Len())
		levels.Scan(func(level *priceLevel) bool {
			out = append(out, LevelDepth{Price: level.price, Quantity: level.totalQty})
			return true
		})
		return out
	}
	return Depth{
		Bids: collect(b.bids),
		Asks: collect(b.asks),
	}
}
