// internal/domain/cart/entity.go
package cart

import (
	"errors"
	"strconv"
	"strings"
)

var (
	ErrInvalidItem     = errors.New("cart: invalid item")
	ErrInvalidQuantity = errors.New("cart: quantity must be >= 1")
)

// Item is one server-sourced line item.
// ID (kasbuf_id) identifies the line, not the product: the same product may
// appear on several lines with different option sets.
type Item struct {
	ID       int64   `json:"kasbuf_id"`
	StockID  int64   `json:"stock_id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	SumPrice float64 `json:"sum_price"`
	Quantity int     `json:"quantity"`
	MoreInfo string  `json:"more_info,omitempty"`
	Image    string  `json:"image,omitempty"`
}

// Validate checks a line as returned by the server.
func (it Item) Validate() error {
	if it.ID <= 0 || it.StockID <= 0 {
		return ErrInvalidItem
	}
	if it.Quantity < 1 {
		return ErrInvalidQuantity
	}
	return nil
}

// CanDecrease reports whether the decrease control may act on this line.
// A line is never taken to 0 by decreasing; it must be removed instead.
func (it Item) CanDecrease() bool {
	return it.Quantity > 1
}

// DisplayName falls back to the stock id when the server sends no name.
func (it Item) DisplayName() string {
	if n := strings.TrimSpace(it.Name); n != "" {
		return n
	}
	return "#" + strconv.FormatInt(it.StockID, 10)
}

// State is the cart container's published state.
// Items keep server response order.
type State struct {
	Items   []Item
	Loading bool
	Error   string
}

// Empty is the state at container creation.
func Empty() State {
	return State{Items: []Item{}}
}

// Clone returns a copy whose Items slice is not shared.
func (s State) Clone() State {
	cp := s
	cp.Items = append([]Item(nil), s.Items...)
	if cp.Items == nil {
		cp.Items = []Item{}
	}
	return cp
}

// Find returns the line with the given line-item id.
func (s State) Find(lineID int64) (Item, bool) {
	for _, it := range s.Items {
		if it.ID == lineID {
			return it, true
		}
	}
	return Item{}, false
}

// Total sums line totals as reported by the server.
func (s State) Total() float64 {
	var sum float64
	for _, it := range s.Items {
		sum += it.SumPrice
	}
	return sum
}

// Count is the number of units across all lines.
func (s State) Count() int {
	n := 0
	for _, it := range s.Items {
		n += it.Quantity
	}
	return n
}

// LineTotal is price × quantity, used where the server omits sum_price.
func LineTotal(price float64, qty int) float64 {
	return price * float64(qty)
}
