package main

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"flag"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/go-faster/errors"
	"github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/SanathKumar1997/teez/internal/domain/auth"
	"github.com/SanathKumar1997/teez/internal/domain/product"
	"github.com/SanathKumar1997/teez/internal/storage/postgres"
)

type productJSON struct {
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	Image         string          `json:"image"`
	Category      string          `json:"category"`
	Price         decimal.Decimal `json:"price"`
	Rating        float64         `json:"rating"`
	Reviews       int             `json:"reviews"`
	Colors        []string        `json:"colors"`
	Sizes         []string        `json:"sizes"`
	StockQuantity *int            `json:"stock_quantity"`
}

func (p productJSON) fields() product.Fields {
	return product.Fields{
		Title:         p.Title,
		Description:   p.Description,
		Image:         p.Image,
		Category:      p.Category,
		Price:         p.Price,
		Rating:        p.Rating,
		Reviews:       p.Reviews,
		Colors:        p.Colors,
		Sizes:         p.Sizes,
		StockQuantity: p.StockQuantity,
	}
}

type options struct {
	databaseURL   string
	productsFile  string
	force         bool
	adminName     string
	adminEmail    string
	adminPassword string
}

func main() {
	var opts options

	flag.StringVar(&opts.databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&opts.productsFile, "products-file", "db/seed/products.json", "path to products JSON file, optionally gzipped (.gz)")
	flag.BoolVar(&opts.force, "force", false, "insert products even when the catalog is not empty")
	flag.StringVar(&opts.adminName, "admin-name", "Admin", "name of the seeded admin account")
	flag.StringVar(&opts.adminEmail, "admin-email", "admin@teez.com", "email of the seeded admin account")
	flag.StringVar(&opts.adminPassword, "admin-password", "", "password of the seeded admin account (or TEEZ_SEED_ADMIN_PASSWORD env); empty skips it")
	flag.Parse()

	if opts.databaseURL == "" {
		opts.databaseURL = os.Getenv("DATABASE_URL")
	}
	if opts.databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	if opts.adminPassword == "" {
		opts.adminPassword = os.Getenv("TEEZ_SEED_ADMIN_PASSWORD")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, opts); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, opts options) error {
	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, opts.databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	if err := seedProducts(ctx, postgres.NewProductRepository(pool), opts); err != nil {
		return errors.Wrap(err, "seed products")
	}

	if opts.adminPassword == "" {
		slog.Info("no admin password given, skipping admin account")
		return nil
	}
	if err := seedAdmin(ctx, postgres.NewUserRepository(pool), opts); err != nil {
		return errors.Wrap(err, "seed admin")
	}

	return nil
}

func seedProducts(ctx context.Context, store product.Store, opts options) error {
	existing, err := store.List(ctx, product.Filter{})
	if err != nil {
		return errors.Wrap(err, "list products")
	}
	if len(existing) > 0 && !opts.force {
		slog.Info("catalog already populated, skipping products", slog.Int("count", len(existing)))
		return nil
	}

	slog.Info("reading products file", slog.String("path", opts.productsFile))

	f, err := os.Open(opts.productsFile)
	if err != nil {
		return errors.Wrap(err, "open products file")
	}
	defer func() { _ = f.Close() }()

	var r io.Reader = f
	if strings.HasSuffix(opts.productsFile, ".gz") {
		zr, err := pgzip.NewReader(f)
		if err != nil {
			return errors.Wrap(err, "open gzip stream")
		}
		defer func() { _ = zr.Close() }()
		r = zr
	}

	// Decode and insert concurrently so large catalogs stream from disk.
	products := make(chan productJSON)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(products)
		return decodeProducts(gctx, r, products)
	})
	g.Go(func() error {
		var count int
		for p := range products {
			created, err := store.Create(gctx, p.fields().Normalize())
			if err != nil {
				return errors.Wrapf(err, "insert product %q", p.Title)
			}
			count++
			slog.Info("inserted product", slog.Int64("id", created.ID), slog.String("title", created.Title))
		}
		slog.Info("products seeded", slog.Int("count", count))
		return nil
	})
	return g.Wait()
}

// decodeProducts streams the elements of a JSON array of products to out.
func decodeProducts(ctx context.Context, r io.Reader, out chan<- productJSON) error {
	dec := json.NewDecoder(r)
	if _, err := dec.Token(); err != nil {
		return errors.Wrap(err, "read array start")
	}
	for dec.More() {
		var p productJSON
		if err := dec.Decode(&p); err != nil {
			return errors.Wrap(err, "parse product")
		}
		if err := p.fields().Normalize().Validate(); err != nil {
			return errors.Wrapf(err, "product %q", p.Title)
		}
		select {
		case out <- p:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if _, err := dec.Token(); err != nil {
		return errors.Wrap(err, "read array end")
	}
	return nil
}

func seedAdmin(ctx context.Context, users auth.Repository, opts options) error {
	slog.Info("seeding admin account", slog.String("email", opts.adminEmail))

	// Tokens issued here are discarded; any secret will do.
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return errors.Wrap(err, "generate secret")
	}
	tokens, err := auth.NewTokens(secret, auth.DefaultTokenTTL)
	if err != nil {
		return errors.Wrap(err, "create token issuer")
	}
	passwords, err := auth.NewPasswords(0)
	if err != nil {
		return errors.Wrap(err, "create password hasher")
	}
	svc := auth.NewService(users, tokens, passwords, auth.AdminPolicy{
		ReservedEmails: []string{opts.adminEmail},
	})

	res, err := svc.Register(ctx, auth.RegisterRequest{
		Name:     opts.adminName,
		Email:    opts.adminEmail,
		Password: opts.adminPassword,
	})
	switch {
	case errors.Is(err, auth.ErrDuplicateEmail):
		slog.Info("admin account already exists", slog.String("email", opts.adminEmail))
		return nil
	case err != nil:
		return err
	}

	slog.Info("created admin account",
		slog.String("id", res.User.ID),
		slog.String("email", res.User.Email),
		slog.Bool("is_admin", res.User.IsAdmin),
	)
	return nil
}
