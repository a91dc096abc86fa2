package script

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kestrel/internal/common"
)

func TestParse_AllRecordShapes(t *testing.T) {
	input := strings.Join([]string{
		"A B GoodTillCancel 100 10 1",
		"A S FillOrKill 105 5 2",
		"M 1 B 101 8",
		"C 2",
		"R 1 1 0",
	}, "\n")

	actions, result, err := Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, actions, 4)

	assert.Equal(t, Action{
		Type:      Add,
		OrderType: common.GoodTillCancel,
		Side:      common.Buy,
		Price:     100,
		Quantity:  10,
		OrderID:   1,
	}, actions[0])
	assert.Equal(t, Action{
		Type:      Add,
		OrderType: common.FillOrKill,
		Side:      common.Sell,
		Price:     105,
		Quantity:  5,
		OrderID:   2,
	}, actions[1])
	assert.Equal(t, Action{
		Type:     Modify,
		Side:     common.Buy,
		Price:    101,
		Quantity: 8,
		OrderID:  1,
	}, actions[2])
	assert.Equal(t, Action{Type: Cancel, OrderID: 2}, actions[3])

	assert.Equal(t, Result{Total: 1, BidLevels: 1, AskLevels: 0}, result)
}

func TestParse_SkipsUnparsableActions(t *testing.T) {
	input := strings.Join([]string{
		"A B GoodTillCancel 100 10 1",
		"garbage line",
		"A B NotAType 100 10 2",
		"A B GoodTillCancel 100",
		"X 1 2 3",
		"R 1 1 0",
	}, "\n")

	actions, result, err := Parse(strings.NewReader(input))
	require.NoError(t, err)
	assert.Len(t, actions, 1)
	assert.Equal(t, Result{Total: 1, BidLevels: 1, AskLevels: 0}, result)
}

func TestParse_MissingResult(t *testing.T) {
	_, _, err := Parse(strings.NewReader("A B GoodTillCancel 100 10 1\n"))
	assert.ErrorIs(t, err, ErrMissingResult)
}

func TestParse_ResultMustBeLast(t *testing.T) {
	input := strings.Join([]string{
		"A B GoodTillCancel 100 10 1",
		"R 1 1 0",
		"C 1",
	}, "\n")

	_, _, err := Parse(strings.NewReader(input))
	assert.ErrorIs(t, err, ErrResultNotLast)
}

func TestParse_AllOrderTypeSpellings(t *testing.T) {
	for _, name := range []string{
		"GoodTillCancel", "GoodForDay", "FillAndKill", "FillOrKill", "Market",
	} {
		orderType, err := common.ParseOrderType(name)
		require.NoError(t, err)
		assert.Equal(t, name, orderType.String())
	}
}

func TestParse_EmptyInput(t *testing.T) {
	_, _, err := Parse(strings.NewReader(""))
	assert.ErrorIs(t, err, ErrMissingResult)
}
