// cmd/storefront/cmd_cart.go
package main

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"

	cartdom "storefront/internal/domain/cart"
	"storefront/internal/platform/di"
)

var (
	errNoSession      = errors.New("no cart session; run `storefront login` first")
	errQuantityTooLow = errors.New("quantity must be at least 1; use `storefront cart remove` to drop a line")
)

type cartCmd struct {
	List     cartListCmd     `cmd:"" default:"1" help:"Show the cart."`
	Add      cartAddCmd      `cmd:"" help:"Add a product."`
	Set      cartSetCmd      `cmd:"" help:"Set a line's quantity."`
	Inc      cartIncCmd      `cmd:"" help:"Increase a line by one."`
	Dec      cartDecCmd      `cmd:"" help:"Decrease a line by one (never below 1)."`
	Remove   cartRemoveCmd   `cmd:"" help:"Remove a line."`
	Checkout cartCheckoutCmd `cmd:"" help:"Clear the cart."`
}

type cartListCmd struct{}

func (c *cartListCmd) Run(ctx context.Context, cont *di.Container) error {
	if err := loadCart(ctx, cont); err != nil {
		return err
	}
	return printCart(cont.Cart.State())
}

type cartAddCmd struct {
	StockID  int64 `arg:"" help:"Stock id (see products)."`
	Quantity int   `short:"q" default:"1" help:"Quantity."`
}

func (c *cartAddCmd) Run(ctx context.Context, cont *di.Container) error {
	if err := requireSession(cont); err != nil {
		return err
	}
	if err := cont.Cart.AddToCart(ctx, c.StockID, c.Quantity); err != nil {
		return err
	}
	return printCart(cont.Cart.State())
}

type cartSetCmd struct {
	LineID   int64 `arg:"" help:"Cart line id."`
	Quantity int   `arg:"" help:"New quantity."`
}

func (c *cartSetCmd) Run(ctx context.Context, cont *di.Container) error {
	if c.Quantity < 1 {
		return errQuantityTooLow
	}
	if err := requireSession(cont); err != nil {
		return err
	}
	if err := cont.Cart.UpdateQuantity(ctx, c.LineID, c.Quantity); err != nil {
		return err
	}
	return printCart(cont.Cart.State())
}

type cartIncCmd struct {
	LineID int64 `arg:"" help:"Cart line id."`
}

func (c *cartIncCmd) Run(ctx context.Context, cont *di.Container) error {
	if err := loadCart(ctx, cont); err != nil {
		return err
	}
	if err := cont.Cart.IncreaseQuantity(ctx, c.LineID); err != nil {
		return err
	}
	return printCart(cont.Cart.State())
}

type cartDecCmd struct {
	LineID int64 `arg:"" help:"Cart line id."`
}

func (c *cartDecCmd) Run(ctx context.Context, cont *di.Container) error {
	if err := loadCart(ctx, cont); err != nil {
		return err
	}
	if err := cont.Cart.DecreaseQuantity(ctx, c.LineID); err != nil {
		return err
	}
	return printCart(cont.Cart.State())
}

type cartRemoveCmd struct {
	LineID int64 `arg:"" help:"Cart line id."`
}

func (c *cartRemoveCmd) Run(ctx context.Context, cont *di.Container) error {
	if err := requireSession(cont); err != nil {
		return err
	}
	if err := cont.Cart.RemoveItem(ctx, c.LineID); err != nil {
		return err
	}
	return printCart(cont.Cart.State())
}

type cartCheckoutCmd struct{}

func (c *cartCheckoutCmd) Run(ctx context.Context, cont *di.Container) error {
	if err := loadCart(ctx, cont); err != nil {
		return err
	}
	total := cont.Cart.Total()
	if err := cont.Cart.Checkout(ctx); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "checked out, total %.2f\n", total)
	return nil
}

func requireSession(cont *di.Container) error {
	if _, ok := cont.Session.SessionID(); !ok {
		return errNoSession
	}
	return nil
}

// loadCart fetches the server cart and surfaces a load failure as an error.
func loadCart(ctx context.Context, cont *di.Container) error {
	if err := requireSession(cont); err != nil {
		return err
	}
	if err := cont.Cart.FetchCart(ctx); err != nil {
		return err
	}
	if msg := cont.Cart.State().Error; msg != "" {
		return errors.New(msg)
	}
	return nil
}

func printCart(st cartdom.State) error {
	if len(st.Items) == 0 {
		fmt.Fprintln(stdout, "cart is empty")
		return nil
	}
	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "LINE\tNAME\tQTY\tPRICE\tSUM")
	for _, it := range st.Items {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%.2f\t%.2f\n", it.ID, it.DisplayName(), it.Quantity, it.Price, it.SumPrice)
	}
	fmt.Fprintf(tw, "\t\t%d\t\t%.2f\n", st.Count(), st.Total())
	return tw.Flush()
}
