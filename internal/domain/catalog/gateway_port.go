package catalog

import "context"

// StocksQuery is the POST /getstockslite body.
type StocksQuery struct {
	IncludePriceList bool    `json:"includepricelist"`
	LastChangeDate   string  `json:"last_change_date"`
	StockList        []int64 `json:"stock_list"`
	CustomerID       int64   `json:"customerID"`
	WarehouseID      int64   `json:"warehouse_id"`
}

// DefaultStocksQuery requests the full list with prices.
func DefaultStocksQuery() StocksQuery {
	return StocksQuery{
		IncludePriceList: true,
		LastChangeDate:   "",
		StockList:        []int64{},
	}
}

// Gateway is the outbound port to the remote catalog.
type Gateway interface {
	Groups(ctx context.Context) ([]Group, error)
	Products(ctx context.Context, q StocksQuery) ([]Stock, error)
}
