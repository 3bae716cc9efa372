package usecase

import (
	"context"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/alecthomas/types/optional"

	catalogdom "storefront/internal/domain/catalog"
)

func TestCatalogLoad(t *testing.T) {
	gw := &fakeCatalog{
		groups: []catalogdom.Group{{ID: 1, Name: "Shoes"}, {ID: 2, Name: "Hats"}},
		stocks: []catalogdom.Stock{
			{ID: 10, Name: "Runner", Price: 80, GroupID: 1},
			{ID: 11, Name: "Cap", Price: 15, GroupID: 2},
			{ID: 12, Name: "Loose", Price: 5},
		},
	}
	uc := NewCatalogUsecase(gw)

	c, err := uc.Load(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, []string{"groups", "products"}, gw.order)
	assert.True(t, gw.lastQuery.IncludePriceList)
	assert.Equal(t, 3, len(c.Products))
	assert.Equal(t, "Shoes", c.Products[0].Category)
	assert.Equal(t, 80.0, c.MaxPrice())

	hats := c.Filter(catalogdom.Filter{GroupID: optional.Some[int64](2)})
	assert.Equal(t, 1, len(hats))
	assert.Equal(t, "Cap", hats[0].Name)

	cheap := c.Filter(catalogdom.Filter{MaxPrice: optional.Some(20.0)})
	assert.Equal(t, 2, len(cheap))
}

func TestCatalogLoadGroupFailure(t *testing.T) {
	gw := &fakeCatalog{failGroup: true}
	_, err := NewCatalogUsecase(gw).Load(context.Background())
	assert.IsError(t, err, errBoom)
	assert.Equal(t, []string{"groups"}, gw.order)
}
