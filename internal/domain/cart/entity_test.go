package cart

import (
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestItemValidate(t *testing.T) {
	assert.NoError(t, Item{ID: 1, StockID: 42, Quantity: 1}.Validate())
	assert.IsError(t, Item{ID: 1, StockID: 42, Quantity: 0}.Validate(), ErrInvalidQuantity)
	assert.IsError(t, Item{ID: 0, StockID: 42, Quantity: 1}.Validate(), ErrInvalidItem)
}

func TestCanDecrease(t *testing.T) {
	assert.False(t, Item{Quantity: 1}.CanDecrease())
	assert.True(t, Item{Quantity: 2}.CanDecrease())
}

func TestStateTotals(t *testing.T) {
	st := State{Items: []Item{
		{ID: 1, StockID: 42, Price: 2.5, SumPrice: LineTotal(2.5, 2), Quantity: 2},
		{ID: 2, StockID: 7, Price: 10, SumPrice: 10, Quantity: 1},
	}}
	assert.Equal(t, 15.0, st.Total())
	assert.Equal(t, 3, st.Count())

	it, ok := st.Find(2)
	assert.True(t, ok)
	assert.Equal(t, int64(7), it.StockID)

	_, ok = st.Find(99)
	assert.False(t, ok)
}

func TestCloneDoesNotShareItems(t *testing.T) {
	st := State{Items: []Item{{ID: 1, StockID: 1, Quantity: 1}}}
	cp := st.Clone()
	cp.Items[0].Quantity = 5
	assert.Equal(t, 1, st.Items[0].Quantity)

	assert.Equal(t, []Item{}, State{}.Clone().Items)
}

func TestNewAddRequestFixedFields(t *testing.T) {
	req := NewAddRequest(1700000000000, 42, 2)
	assert.Equal(t, AddRequest{
		SessionID:   1700000000000,
		StockID:     42,
		Quantity:    2,
		Information: "",
		Additions:   []int64{},
		IsEshop:     true,
	}, req)
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Mouse", Item{Name: " Mouse "}.DisplayName())
	assert.Equal(t, "#42", Item{StockID: 42}.DisplayName())
}
