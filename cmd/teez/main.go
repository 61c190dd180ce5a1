// Command teez is a terminal storefront. It browses the catalog, keeps the
// shopping cart in a local file and places orders through the API.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/SanathKumar1997/teez/internal/cart"
	"github.com/SanathKumar1997/teez/internal/client"
)

const usage = `usage: teez [flags] <command> [args]

commands:
  products [-category c] [-search s]   list the catalog
  product <id>                         show one product
  cart                                 show the cart
  add <id> [-qty n] [-size s] [-color c]
  remove <id> [-size s] [-color c]
  inc <id> [-size s] [-color c]        increase a line quantity by one
  dec <id> [-size s] [-color c]        decrease a line quantity by one
  clear                                empty the cart
  intent [amount]                      create a payment order for the cart total
  checkout -email e -address a -city c -zip z [-order-id o -payment-id p -signature s]
  orders <email>                       list orders placed with email
  register -name n -email e -password p
  login -email e -password p
  discount <id> <percent>              admin: set a product discount
  delete <id>                          admin: remove a product

flags:
`

func main() {
	var (
		apiURL   string
		token    string
		cartPath string
	)
	flag.StringVar(&apiURL, "api", envOr("TEEZ_API_URL", client.DefaultBaseURL), "API base URL (or TEEZ_API_URL env)")
	flag.StringVar(&token, "token", os.Getenv("TEEZ_TOKEN"), "session token for admin commands (or TEEZ_TOKEN env)")
	flag.StringVar(&cartPath, "cart", "", "cart file (default: user config dir)")
	flag.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(apiURL, token, cartPath); err != nil {
		fmt.Fprintln(os.Stderr, "teez:", err)
		os.Exit(1)
	}
}

func run(apiURL, token, cartPath string) error {
	if cartPath == "" {
		p, err := cart.DefaultPath()
		if err != nil {
			return err
		}
		cartPath = p
	}

	api, err := client.New(apiURL, client.WithToken(token))
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	c := &cli{
		api:     api,
		storage: cart.NewFileStorage(cartPath),
		out:     os.Stdout,
	}
	return c.run(ctx, flag.Args())
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
