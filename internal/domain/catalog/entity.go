// internal/domain/catalog/entity.go
package catalog

import (
	"strings"

	"github.com/alecthomas/types/optional"
)

// Group is a catalog category as returned by GET /groups.
type Group struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	ParentID int64  `json:"parentID"`
}

// Stock is a product row as returned by POST /getstockslite.
type Stock struct {
	ID          int64   `json:"stk_idnumb"`
	Name        string  `json:"stk_name"`
	BasicPrice  float64 `json:"basic_price"`
	Price       float64 `json:"price"`
	Description string  `json:"description,omitempty"`
	Image       string  `json:"image,omitempty"`
	GroupID     int64   `json:"gr_id,omitempty"`
	Code        string  `json:"code,omitempty"`
}

// Product is the display projection of a Stock.
// Category is resolved against the group list at projection time and never persisted.
type Product struct {
	ID          int64
	StockID     int64
	Name        string
	Price       float64
	Description string
	ImageURL    string
	GroupID     optional.Option[int64]
	Category    string
}

// Project maps stocks to products, resolving category names from groups.
func Project(stocks []Stock, groups []Group) []Product {
	names := make(map[int64]string, len(groups))
	for _, g := range groups {
		names[g.ID] = strings.TrimSpace(g.Name)
	}

	out := make([]Product, 0, len(stocks))
	for _, s := range stocks {
		p := Product{
			ID:          s.ID,
			StockID:     s.ID,
			Name:        strings.TrimSpace(s.Name),
			Price:       s.Price,
			Description: strings.TrimSpace(s.Description),
			ImageURL:    strings.TrimSpace(s.Image),
		}
		if s.GroupID != 0 {
			p.GroupID = optional.Some(s.GroupID)
			p.Category = names[s.GroupID]
		}
		out = append(out, p)
	}
	return out
}

// Filter mirrors the storefront home screen: optional group selection plus a price ceiling.
type Filter struct {
	GroupID  optional.Option[int64]
	MaxPrice optional.Option[float64]
}

// Apply returns the products matching f, preserving order.
// A group filter matches on the resolved category name, like the screen does.
func (f Filter) Apply(products []Product, groups []Group) []Product {
	wantCategory := ""
	gid, byGroup := f.GroupID.Get()
	if byGroup {
		for _, g := range groups {
			if g.ID == gid {
				wantCategory = strings.TrimSpace(g.Name)
				break
			}
		}
	}
	maxPrice, byPrice := f.MaxPrice.Get()

	out := make([]Product, 0, len(products))
	for _, p := range products {
		if byGroup && (wantCategory == "" || p.Category != wantCategory) {
			continue
		}
		if byPrice && p.Price > maxPrice {
			continue
		}
		out = append(out, p)
	}
	return out
}

// FindGroupByName is a case-insensitive lookup used by front ends that take a name.
func FindGroupByName(groups []Group, name string) (Group, bool) {
	n := strings.TrimSpace(name)
	for _, g := range groups {
		if strings.EqualFold(strings.TrimSpace(g.Name), n) {
			return g, true
		}
	}
	return Group{}, false
}

// MaxPrice returns the highest product price, used to size a price slider.
func MaxPrice(products []Product) float64 {
	var m float64
	for _, p := range products {
		if p.Price > m {
			m = p.Price
		}
	}
	return m
}
