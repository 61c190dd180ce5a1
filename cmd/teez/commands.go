package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/SanathKumar1997/teez/internal/cart"
	"github.com/SanathKumar1997/teez/internal/client"
	"github.com/SanathKumar1997/teez/internal/domain/order"
	"github.com/SanathKumar1997/teez/internal/domain/product"
)

type cli struct {
	api     *client.Client
	storage cart.Storage
	out     io.Writer
}

func (c *cli) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("no command given")
	}
	cmd, args := args[0], args[1:]
	switch cmd {
	case "products":
		return c.products(ctx, args)
	case "product":
		return c.product(ctx, args)
	case "cart":
		return c.showCart(ctx)
	case "add":
		return c.add(ctx, args)
	case "remove":
		return c.changeLine(ctx, args, 0)
	case "inc":
		return c.changeLine(ctx, args, 1)
	case "dec":
		return c.changeLine(ctx, args, -1)
	case "clear":
		return c.clearCart(ctx)
	case "intent":
		return c.intent(ctx, args)
	case "checkout":
		return c.checkout(ctx, args)
	case "orders":
		return c.orders(ctx, args)
	case "register":
		return c.register(ctx, args)
	case "login":
		return c.login(ctx, args)
	case "discount":
		return c.discount(ctx, args)
	case "delete":
		return c.deleteProduct(ctx, args)
	default:
		return errors.Errorf("unknown command %q", cmd)
	}
}

func (c *cli) products(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("products", flag.ContinueOnError)
	category := fs.String("category", "", "category to filter by")
	search := fs.String("search", "", "title search")
	if err := fs.Parse(args); err != nil {
		return err
	}

	products, err := c.api.Products(ctx, *category, *search)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tCATEGORY\tPRICE\tDISCOUNT")
	for _, p := range products {
		discount := ""
		if p.OriginalPrice != nil {
			discount = fmt.Sprintf("%s%% off %s", p.DiscountPercentage, p.OriginalPrice.StringFixed(2))
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", p.ID, p.Title, p.Category, p.Price.StringFixed(2), discount)
	}
	return tw.Flush()
}

func (c *cli) product(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: product <id>")
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	p, err := c.api.Product(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "%s (#%d)\n", p.Title, p.ID)
	fmt.Fprintf(c.out, "  price:    %s\n", p.Price.StringFixed(2))
	fmt.Fprintf(c.out, "  category: %s\n", p.Category)
	fmt.Fprintf(c.out, "  rating:   %.1f (%d reviews)\n", p.Rating, p.Reviews)
	fmt.Fprintf(c.out, "  colors:   %v\n", p.Colors)
	fmt.Fprintf(c.out, "  sizes:    %v\n", p.Sizes)
	if p.Description != "" {
		fmt.Fprintf(c.out, "\n%s\n", p.Description)
	}
	return nil
}

func (c *cli) showCart(ctx context.Context) error {
	cr, err := cart.Open(ctx, c.storage)
	if err != nil {
		return err
	}
	if cr.Count() == 0 {
		fmt.Fprintln(c.out, "cart is empty")
		return nil
	}
	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tSIZE\tCOLOR\tQTY\tPRICE")
	for _, it := range cr.Items() {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\t%s\n", it.ProductID, it.Title, it.Size, it.Color, it.Quantity, it.Price.StringFixed(2))
	}
	fmt.Fprintf(tw, "\t\t\t\t%d\t%s\n", cr.Count(), cr.Total().StringFixed(2))
	return tw.Flush()
}

func (c *cli) add(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: add <id> [-qty n] [-size s] [-color c]")
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	qty := fs.Int("qty", 1, "quantity")
	size := fs.String("size", "", "size")
	color := fs.String("color", "", "color")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}

	p, err := c.api.Product(ctx, id)
	if err != nil {
		return err
	}
	cr, err := cart.Open(ctx, c.storage)
	if err != nil {
		return err
	}
	if err := cr.Add(ctx, product.Product{
		ID:      p.ID,
		Title:   p.Title,
		Image:   p.Image,
		Pricing: product.Pricing{Price: p.Price},
	}, *qty, *size, *color); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "added %d x %s, cart total %s\n", *qty, p.Title, cr.Total().StringFixed(2))
	return nil
}

// changeLine removes the line when delta is zero and adjusts its quantity
// otherwise.
func (c *cli) changeLine(ctx context.Context, args []string, delta int) error {
	if len(args) == 0 {
		return errors.New("usage: remove|inc|dec <id> [-size s] [-color c]")
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	fs := flag.NewFlagSet("line", flag.ContinueOnError)
	size := fs.String("size", "", "size")
	color := fs.String("color", "", "color")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}

	cr, err := cart.Open(ctx, c.storage)
	if err != nil {
		return err
	}
	key := cart.Key{ProductID: id, Size: *size, Color: *color}
	if delta == 0 {
		err = cr.Remove(ctx, key)
	} else {
		err = cr.UpdateQuantity(ctx, key, delta)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "cart: %d items, total %s\n", cr.Count(), cr.Total().StringFixed(2))
	return nil
}

func (c *cli) clearCart(ctx context.Context) error {
	cr, err := cart.Open(ctx, c.storage)
	if err != nil {
		return err
	}
	if err := cr.Clear(ctx); err != nil {
		return err
	}
	fmt.Fprintln(c.out, "cart cleared")
	return nil
}

// intent creates a provider payment order for amount, or for the cart
// total when no amount is given. The shopper pays against the printed
// order id and passes it back to checkout with -order-id.
func (c *cli) intent(ctx context.Context, args []string) error {
	var amount decimal.Decimal
	switch len(args) {
	case 0:
		cr, err := cart.Open(ctx, c.storage)
		if err != nil {
			return err
		}
		if cr.Count() == 0 {
			return errors.New("intent: cart is empty")
		}
		amount = cr.Total()
	case 1:
		v, err := decimal.NewFromString(args[0])
		if err != nil {
			return errors.Wrapf(err, "parse amount %q", args[0])
		}
		amount = v
	default:
		return errors.New("usage: intent [amount]")
	}

	in, err := c.api.CreatePaymentIntent(ctx, amount)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "order_id: %s\n", in.OrderID)
	fmt.Fprintf(c.out, "amount:   %d %s\n", in.Amount, in.Currency)
	if in.KeyID != "" {
		fmt.Fprintf(c.out, "key_id:   %s\n", in.KeyID)
	}
	return nil
}

func (c *cli) checkout(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("checkout", flag.ContinueOnError)
	var (
		email     = fs.String("email", "", "customer email")
		orderID   = fs.String("order-id", "", "provider order id from the intent command")
		paymentID = fs.String("payment-id", "", "provider payment id of the completed payment")
		signature = fs.String("signature", "", "provider payment signature")
		addr      order.Address
	)
	fs.StringVar(&addr.FirstName, "first-name", "", "first name")
	fs.StringVar(&addr.LastName, "last-name", "", "last name")
	fs.StringVar(&addr.Address, "address", "", "street address")
	fs.StringVar(&addr.City, "city", "", "city")
	fs.StringVar(&addr.State, "state", "", "state")
	fs.StringVar(&addr.Zip, "zip", "", "zip code")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" {
		return errors.New("checkout: -email is required")
	}
	if *paymentID != "" && *orderID == "" {
		return errors.New("checkout: -payment-id needs the -order-id it was paid against")
	}

	cr, err := cart.Open(ctx, c.storage)
	if err != nil {
		return err
	}
	if cr.Count() == 0 {
		return errors.New("checkout: cart is empty")
	}

	id, err := c.api.CreateOrder(ctx, client.OrderRequest{
		CustomerEmail:   *email,
		TotalAmount:     cr.Total(),
		Items:           cr.LineItems(),
		ShippingAddress: addr,
		OrderID:         *orderID,
		PaymentID:       *paymentID,
		Signature:       *signature,
	})
	if err != nil {
		return err
	}
	total := cr.Total()
	if err := cr.Clear(ctx); err != nil {
		return errors.Wrap(err, "order placed but cart not cleared")
	}
	fmt.Fprintf(c.out, "order %s placed, total %s\n", id, total.StringFixed(2))
	return nil
}

func (c *cli) orders(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: orders <email>")
	}
	orders, err := c.api.Orders(ctx, args[0])
	if err != nil {
		return err
	}
	if len(orders) == 0 {
		fmt.Fprintln(c.out, "no orders")
		return nil
	}
	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tPLACED\tITEMS\tTOTAL")
	for _, o := range orders {
		var n int
		for _, it := range o.Items {
			n += it.Quantity
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", o.ID, o.CreatedAt.Format("2006-01-02 15:04"), n, o.TotalAmount.StringFixed(2))
	}
	return tw.Flush()
}

func (c *cli) register(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("register", flag.ContinueOnError)
	name := fs.String("name", "", "display name")
	email := fs.String("email", "", "email")
	password := fs.String("password", "", "password")
	if err := fs.Parse(args); err != nil {
		return err
	}
	s, err := c.api.Register(ctx, *name, *email, *password)
	if err != nil {
		return err
	}
	c.printSession(s)
	return nil
}

func (c *cli) login(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	email := fs.String("email", "", "email")
	password := fs.String("password", "", "password")
	if err := fs.Parse(args); err != nil {
		return err
	}
	s, err := c.api.Login(ctx, *email, *password)
	if err != nil {
		return err
	}
	c.printSession(s)
	return nil
}

func (c *cli) printSession(s *client.Session) {
	role := "customer"
	if s.User.IsAdmin {
		role = "admin"
	}
	fmt.Fprintf(c.out, "signed in as %s (%s) until %s\n", s.User.Email, role, s.ExpiresAt.Format("2006-01-02 15:04"))
	fmt.Fprintf(c.out, "export TEEZ_TOKEN=%s\n", s.Token)
}

func (c *cli) discount(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errors.New("usage: discount <id> <percent>")
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	pct, err := decimal.NewFromString(args[1])
	if err != nil {
		return errors.Wrapf(err, "parse percent %q", args[1])
	}
	d, err := c.api.ApplyDiscount(ctx, id, pct)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "product %d: %s -> %s (%s%% off)\n",
		d.ID, d.OriginalPrice.StringFixed(2), d.NewPrice.StringFixed(2), d.DiscountPercentage)
	return nil
}

func (c *cli) deleteProduct(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: delete <id>")
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	if err := c.api.DeleteProduct(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "product %d deleted\n", id)
	return nil
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.Errorf("invalid product id %q", s)
	}
	return id, nil
}
