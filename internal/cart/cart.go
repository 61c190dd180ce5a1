// Package cart is the client-owned shopping cart.
//
// The cart lives on the shopper's side. Every mutation writes the full
// snapshot to Storage before it becomes visible, so a restarted client
// resumes with the same lines. Two clients sharing one storage overwrite
// each other: the last write wins.
package cart

import (
	"context"
	"slices"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/SanathKumar1997/teez/internal/domain"
	"github.com/SanathKumar1997/teez/internal/domain/order"
	"github.com/SanathKumar1997/teez/internal/domain/product"
)

// Key identifies a cart line. The same product in another size or color is
// a separate line.
type Key struct {
	ProductID int64
	Size      string
	Color     string
}

// Item is one cart line with the product data captured when it was added.
type Item struct {
	ProductID int64
	Title     string
	Price     decimal.Decimal
	Image     string
	Size      string
	Color     string
	Quantity  int
}

// Key returns the identity of the line.
func (it Item) Key() Key {
	return Key{ProductID: it.ProductID, Size: it.Size, Color: it.Color}
}

// Storage persists cart snapshots.
type Storage interface {
	Load(ctx context.Context) ([]Item, error)
	Save(ctx context.Context, items []Item) error
}

// Cart is a shopping cart bound to a Storage. It is not safe for concurrent
// use.
type Cart struct {
	items   []Item
	storage Storage
}

// Open loads the cart snapshot from storage.
func Open(ctx context.Context, storage Storage) (*Cart, error) {
	items, err := storage.Load(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "load cart")
	}
	return &Cart{items: items, storage: storage}, nil
}

// Items returns a copy of the cart lines in insertion order.
func (c *Cart) Items() []Item {
	return slices.Clone(c.items)
}

// Add puts quantity units of p in the cart. A line with the same product,
// size and color gets its quantity increased; otherwise a new line is
// appended.
func (c *Cart) Add(ctx context.Context, p product.Product, quantity int, size, color string) error {
	if quantity < 1 {
		return domain.Invalid("quantity", "must be at least 1")
	}

	next := slices.Clone(c.items)
	key := Key{ProductID: p.ID, Size: size, Color: color}
	if i := indexOf(next, key); i >= 0 {
		next[i].Quantity += quantity
	} else {
		next = append(next, Item{
			ProductID: p.ID,
			Title:     p.Title,
			Price:     p.Price,
			Image:     p.Image,
			Size:      size,
			Color:     color,
			Quantity:  quantity,
		})
	}
	return c.commit(ctx, next)
}

// Remove deletes the line with key. Removing an absent line is a no-op.
func (c *Cart) Remove(ctx context.Context, key Key) error {
	i := indexOf(c.items, key)
	if i < 0 {
		return nil
	}
	return c.commit(ctx, slices.Delete(slices.Clone(c.items), i, i+1))
}

// UpdateQuantity adds delta to the quantity of the line with key. The
// result never drops below 1, so a line is only removed by Remove. An
// absent line is a no-op.
func (c *Cart) UpdateQuantity(ctx context.Context, key Key, delta int) error {
	i := indexOf(c.items, key)
	if i < 0 {
		return nil
	}
	next := slices.Clone(c.items)
	next[i].Quantity = max(1, next[i].Quantity+delta)
	return c.commit(ctx, next)
}

// Clear empties the cart. Call it only once the order is confirmed.
func (c *Cart) Clear(ctx context.Context) error {
	return c.commit(ctx, nil)
}

// Total returns the sum of price x quantity, computed from the lines.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, it := range c.items {
		total = total.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return total
}

// Count returns the number of units in the cart.
func (c *Cart) Count() int {
	n := 0
	for _, it := range c.items {
		n += it.Quantity
	}
	return n
}

// LineItems returns the cart as an order snapshot.
func (c *Cart) LineItems() []order.LineItem {
	out := make([]order.LineItem, len(c.items))
	for i, it := range c.items {
		out[i] = order.LineItem{
			ProductID: it.ProductID,
			Title:     it.Title,
			Price:     it.Price,
			Image:     it.Image,
			Size:      it.Size,
			Color:     it.Color,
			Quantity:  it.Quantity,
		}
	}
	return out
}

func (c *Cart) commit(ctx context.Context, next []Item) error {
	if err := c.storage.Save(ctx, next); err != nil {
		return errors.Wrap(err, "save cart")
	}
	c.items = next
	return nil
}

func indexOf(items []Item, key Key) int {
	return slices.IndexFunc(items, func(it Item) bool { return it.Key() == key })
}
