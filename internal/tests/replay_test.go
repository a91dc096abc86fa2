package tests

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kestrel/internal/common"
	"kestrel/internal/engine"
	"kestrel/internal/script"
)

var scriptFiles = []string{
	"Match_GoodTillCancel.txt",
	"Match_FillAndKill.txt",
	"Match_FillOrKill_Hit.txt",
	"Match_FillOrKill_Miss.txt",
	"Cancel_Success.txt",
	"Modify_Side.txt",
	"Match_Market.txt",
	"MarketOrder_FullyMatches_LimitOrder.txt",
	"Large_Orders.txt",
	"Empty_Orderbook.txt",
	"MarketOrder_PartialFill.txt",
	"MultipleLimitOrders_SamePrice.txt",
	"Modify_OrderPriceIncrease.txt",
	"MultipleMarketOrders_SequentialMatch.txt",
}

// TestScriptedSuite replays every scripted scenario and checks the
// book's final shape against the script's terminal assertion.
func TestScriptedSuite(t *testing.T) {
	for _, file := range scriptFiles {
		t.Run(file, func(t *testing.T) {
			actions, result, err := script.ParseFile(filepath.Join("testdata", file))
			require.NoError(t, err)

			eng := engine.New(engine.Config{Location: time.UTC})
			defer func() {
				assert.NoError(t, eng.Close())
			}()

			for _, action := range actions {
				switch action.Type {
				case script.Add:
					_, err := eng.AddOrder(common.NewOrder(
						action.OrderType, action.OrderID, action.Side,
						action.Price, action.Quantity,
					))
					require.NoError(t, err)
				case script.Modify:
					_, err := eng.ModifyOrder(action.OrderID, action.Side, action.Price, action.Quantity)
					require.NoError(t, err)
				case script.Cancel:
					eng.CancelOrder(action.OrderID)
				}
			}

			depth := eng.Snapshot()
			assert.Equal(t, result.Total, eng.Size())
			assert.Equal(t, result.BidLevels, len(depth.Bids))
			assert.Equal(t, result.AskLevels, len(depth.Asks))
		})
	}
}
