package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/SanathKumar1997/teez/internal/domain/product"
)

const productColumns = `id, title, description, image, category, rating, reviews, colors, sizes,
	stock_quantity, price, original_price, discount_percentage, created_at, updated_at`

const (
	listProductsSQL = `SELECT ` + productColumns + `
		FROM products
		WHERE ($1 = '' OR category = $1)
		  AND ($2 = '' OR title ILIKE '%' || $2 || '%' ESCAPE '\')
		ORDER BY id`

	getProductByIDSQL = `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	lockProductSQL = `SELECT ` + productColumns + ` FROM products WHERE id = $1 FOR UPDATE`

	insertProductSQL = `INSERT INTO products
		(title, description, image, category, rating, reviews, colors, sizes, stock_quantity, price)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + productColumns

	updateProductSQL = `UPDATE products SET
		title = $2, description = $3, image = $4, category = $5, rating = $6, reviews = $7,
		colors = $8, sizes = $9, stock_quantity = $10, price = $11,
		original_price = NULL, discount_percentage = 0, updated_at = now()
		WHERE id = $1
		RETURNING ` + productColumns

	updatePricingSQL = `UPDATE products SET
		price = $2, original_price = $3, discount_percentage = $4, updated_at = now()
		WHERE id = $1
		RETURNING ` + productColumns

	deleteProductSQL = `DELETE FROM products WHERE id = $1`
)

var _ product.Store = (*ProductRepository)(nil)

// ProductRepository implements product.Store backed by PostgreSQL.
type ProductRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository returns a ProductRepository that uses the given pool.
func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// List returns the products matching f ordered by ID.
func (r *ProductRepository) List(ctx context.Context, f product.Filter) ([]product.Product, error) {
	f = f.Normalize()
	rows, err := r.pool.Query(ctx, listProductsSQL, f.Category, escapeLike(f.Search))
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	products, err := pgx.CollectRows(rows, scanProduct)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	return products, nil
}

// GetByID returns a single product by its identifier.
func (r *ProductRepository) GetByID(ctx context.Context, id int64) (*product.Product, error) {
	return queryOne(ctx, r.pool, getProductByIDSQL, id)
}

// Create inserts a product and returns it with its assigned ID.
func (r *ProductRepository) Create(ctx context.Context, f product.Fields) (*product.Product, error) {
	return queryOne(ctx, r.pool, insertProductSQL,
		f.Title, f.Description, f.Image, f.Category, f.Rating, f.Reviews,
		nonNil(f.Colors), nonNil(f.Sizes), f.Stock(), f.Price,
	)
}

// Update overwrites every catalog field of the product and clears its
// discount.
func (r *ProductRepository) Update(ctx context.Context, id int64, f product.Fields) (*product.Product, error) {
	return queryOne(ctx, r.pool, updateProductSQL, id,
		f.Title, f.Description, f.Image, f.Category, f.Rating, f.Reviews,
		nonNil(f.Colors), nonNil(f.Sizes), f.Stock(), f.Price,
	)
}

// Delete removes the product.
func (r *ProductRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, deleteProductSQL, id)
	if err != nil {
		return fmt.Errorf("deleting product %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return product.ErrNotFound
	}
	return nil
}

// UpdatePricing locks the product row, computes the new pricing with fn and
// writes it in the same transaction.
func (r *ProductRepository) UpdatePricing(ctx context.Context, id int64, fn product.PricingFunc) (*product.Product, error) {
	var updated *product.Product
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		current, err := queryOne(ctx, tx, lockProductSQL, id)
		if err != nil {
			return err
		}

		pricing, err := fn(*current)
		if err != nil {
			return err
		}

		updated, err = queryOne(ctx, tx, updatePricingSQL, id,
			pricing.Price, pricing.OriginalPrice, pricing.DiscountPercentage,
		)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func queryOne(ctx context.Context, q querier, sql string, args ...any) (*product.Product, error) {
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("querying product: %w", err)
	}

	p, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, product.ErrNotFound
		}
		return nil, fmt.Errorf("querying product: %w", err)
	}
	return &p, nil
}

func scanProduct(row pgx.CollectableRow) (product.Product, error) {
	var (
		p        product.Product
		original decimal.NullDecimal
	)
	err := row.Scan(
		&p.ID, &p.Title, &p.Description, &p.Image, &p.Category, &p.Rating, &p.Reviews,
		&p.Colors, &p.Sizes, &p.StockQuantity,
		&p.Price, &original, &p.DiscountPercentage,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if original.Valid {
		p.OriginalPrice = &original.Decimal
	}
	return p, err
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes s match literally inside a LIKE pattern.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
