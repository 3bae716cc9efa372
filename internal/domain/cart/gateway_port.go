// internal/domain/cart/gateway_port.go
package cart

import "context"

// AddRequest is the POST /cart body.
// The auxiliary fields are fixed by the client: no notes, no option additions,
// app-channel origin.
type AddRequest struct {
	SessionID   int64   `json:"sessionID"`
	StockID     int64   `json:"stockID"`
	CustomerID  int64   `json:"customerID"`
	Quantity    int     `json:"quantity"`
	Information string  `json:"information"`
	Additions   []int64 `json:"additions"`
	IsEshop     bool    `json:"is_eshop"`
	RootStockID int64   `json:"rootStockID"`
}

// NewAddRequest fills the fixed auxiliary fields.
func NewAddRequest(sessionID, stockID int64, qty int) AddRequest {
	return AddRequest{
		SessionID:   sessionID,
		StockID:     stockID,
		CustomerID:  0,
		Quantity:    qty,
		Information: "",
		Additions:   []int64{},
		IsEshop:     true,
		RootStockID: 0,
	}
}

// UpdateRequest is the PUT /cart body.
type UpdateRequest struct {
	ID       int64 `json:"id"`
	Quantity int   `json:"quantity"`
}

// DeleteRequest is the DELETE /cart body.
type DeleteRequest struct {
	ID int64 `json:"id"`
}

// Gateway is the outbound port to the server-held cart.
type Gateway interface {
	Cart(ctx context.Context, sessionID, customerID int64) ([]Item, error)
	AddCartItem(ctx context.Context, req AddRequest) error
	UpdateCartItem(ctx context.Context, req UpdateRequest) error
	DeleteCartItem(ctx context.Context, req DeleteRequest) error
}
