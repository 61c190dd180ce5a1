// Package admin implements the privileged catalog mutations.
//
// Every operation takes the caller's session explicitly and refuses to run
// unless the session carries the admin flag.
package admin

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/SanathKumar1997/teez/internal/domain/auth"
	"github.com/SanathKumar1997/teez/internal/domain/product"
)

// DiscountResult reports the pricing after a discount was applied.
type DiscountResult struct {
	ProductID          int64
	OriginalPrice      decimal.Decimal
	NewPrice           decimal.Decimal
	DiscountPercentage decimal.Decimal
}

// Service performs admin-only catalog writes.
type Service struct {
	products  product.Store
	mutations metric.Int64Counter
}

// NewService creates an admin Service.
func NewService(products product.Store, mp metric.MeterProvider) (*Service, error) {
	mutations, err := mp.Meter("teez/admin").Int64Counter("teez.admin.mutations",
		metric.WithDescription("Number of admin catalog mutations"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "mutations counter")
	}
	return &Service{products: products, mutations: mutations}, nil
}

// CreateProduct adds a product to the catalog. Rating and reviews default to
// zero and stock to product.DefaultStockQuantity.
func (s *Service) CreateProduct(ctx context.Context, session *auth.Session, f product.Fields) (*product.Product, error) {
	if err := auth.RequireAdmin(session); err != nil {
		return nil, err
	}
	f = f.Normalize()
	if err := f.Validate(); err != nil {
		return nil, err
	}

	p, err := s.products.Create(ctx, f)
	if err != nil {
		return nil, errors.Wrap(err, "create product")
	}
	s.record(ctx, session, "create", p.ID)
	return p, nil
}

// UpdateProduct overwrites every field of the product with f.
func (s *Service) UpdateProduct(ctx context.Context, session *auth.Session, id int64, f product.Fields) (*product.Product, error) {
	if err := auth.RequireAdmin(session); err != nil {
		return nil, err
	}
	f = f.Normalize()
	if err := f.Validate(); err != nil {
		return nil, err
	}

	p, err := s.products.Update(ctx, id, f)
	if err != nil {
		return nil, errors.Wrap(err, "update product")
	}
	s.record(ctx, session, "update", id)
	return p, nil
}

// DeleteProduct removes the product. Orders keep their own snapshot.
func (s *Service) DeleteProduct(ctx context.Context, session *auth.Session, id int64) error {
	if err := auth.RequireAdmin(session); err != nil {
		return err
	}
	if err := s.products.Delete(ctx, id); err != nil {
		return errors.Wrap(err, "delete product")
	}
	s.record(ctx, session, "delete", id)
	return nil
}

// ApplyDiscount sets the product price to pct percent off its original
// price. Discounts replace each other and never compound.
func (s *Service) ApplyDiscount(ctx context.Context, session *auth.Session, id int64, pct decimal.Decimal) (*DiscountResult, error) {
	if err := auth.RequireAdmin(session); err != nil {
		return nil, err
	}

	p, err := s.products.UpdatePricing(ctx, id, product.DiscountFunc(pct))
	if err != nil {
		return nil, errors.Wrap(err, "apply discount")
	}
	s.record(ctx, session, "discount", id)

	res := &DiscountResult{
		ProductID:          p.ID,
		OriginalPrice:      p.Price,
		NewPrice:           p.Price,
		DiscountPercentage: p.DiscountPercentage,
	}
	if p.OriginalPrice != nil {
		res.OriginalPrice = *p.OriginalPrice
	}
	return res, nil
}

func (s *Service) record(ctx context.Context, session *auth.Session, op string, id int64) {
	s.mutations.Add(ctx, 1, metric.WithAttributes(attribute.String("op", op)))
	zctx.From(ctx).Info("Catalog mutation",
		zap.String("op", op),
		zap.Int64("product_id", id),
		zap.String("admin", session.Email),
	)
}
