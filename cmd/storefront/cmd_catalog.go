// cmd/storefront/cmd_catalog.go
package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/alecthomas/types/optional"

	"storefront/internal/application/usecase"
	catalogdom "storefront/internal/domain/catalog"
	"storefront/internal/platform/di"
)

type groupsCmd struct{}

func (c *groupsCmd) Run(ctx context.Context, cont *di.Container) error {
	cat, err := cont.Catalog.Load(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", usecase.MsgCatalogLoadFailed, err)
	}
	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME")
	for _, g := range cat.Groups {
		fmt.Fprintf(tw, "%d\t%s\n", g.ID, g.Name)
	}
	return tw.Flush()
}

type productsCmd struct {
	Group    string  `short:"g" help:"Only products of this group (name)."`
	MaxPrice float64 `name:"max-price" help:"Hide products above this price."`
}

func (c *productsCmd) Run(ctx context.Context, cont *di.Container) error {
	cat, err := cont.Catalog.Load(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", usecase.MsgCatalogLoadFailed, err)
	}
	f, err := c.filter(cat.Groups)
	if err != nil {
		return err
	}
	printProducts(cat.Filter(f))
	return nil
}

func (c *productsCmd) filter(groups []catalogdom.Group) (catalogdom.Filter, error) {
	var f catalogdom.Filter
	if c.Group != "" {
		g, ok := catalogdom.FindGroupByName(groups, c.Group)
		if !ok {
			return f, fmt.Errorf("unknown group %q", c.Group)
		}
		f.GroupID = optional.Some(g.ID)
	}
	if c.MaxPrice > 0 {
		f.MaxPrice = optional.Some(c.MaxPrice)
	}
	return f, nil
}

func printProducts(products []catalogdom.Product) {
	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "STOCK\tNAME\tCATEGORY\tPRICE")
	for _, p := range products {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%.2f\n", p.StockID, p.Name, p.Category, p.Price)
	}
	_ = tw.Flush()
}
