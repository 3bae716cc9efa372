// internal/application/usecase/catalog_usecase.go
package usecase

import (
	"context"
	"fmt"
	"log"

	catalogdom "storefront/internal/domain/catalog"
)

const MsgCatalogLoadFailed = "Could not load products."

// Catalog is one loaded snapshot of groups and their products.
type Catalog struct {
	Groups   []catalogdom.Group
	Products []catalogdom.Product
}

// Filter narrows the snapshot's products.
func (c Catalog) Filter(f catalogdom.Filter) []catalogdom.Product {
	return f.Apply(c.Products, c.Groups)
}

// MaxPrice is the slider ceiling for this snapshot.
func (c Catalog) MaxPrice() float64 {
	return catalogdom.MaxPrice(c.Products)
}

type CatalogUsecase struct {
	gw catalogdom.Gateway
}

func NewCatalogUsecase(gw catalogdom.Gateway) *CatalogUsecase {
	return &CatalogUsecase{gw: gw}
}

// Load fetches groups first (products reference them for their category) and then
// the full stock list.
func (uc *CatalogUsecase) Load(ctx context.Context) (Catalog, error) {
	groups, err := uc.gw.Groups(ctx)
	if err != nil {
		log.Printf("[catalog] groups failed: %v", err)
		return Catalog{}, fmt.Errorf("catalog_usecase: groups: %w", err)
	}

	stocks, err := uc.gw.Products(ctx, catalogdom.DefaultStocksQuery())
	if err != nil {
		log.Printf("[catalog] products failed: %v", err)
		return Catalog{}, fmt.Errorf("catalog_usecase: products: %w", err)
	}

	return Catalog{
		Groups:   groups,
		Products: catalogdom.Project(stocks, groups),
	}, nil
}
