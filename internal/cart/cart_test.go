package cart

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SanathKumar1997/teez/internal/domain"
	"github.com/SanathKumar1997/teez/internal/domain/product"
)

type failingStorage struct{ MemoryStorage }

func (*failingStorage) Save(context.Context, []Item) error { return errors.New("disk full") }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func tee(id int64, price string) product.Product {
	return product.Product{
		ID:      id,
		Title:   "Tee",
		Pricing: product.Pricing{Price: dec(price)},
	}
}

func openCart(t *testing.T, s Storage) *Cart {
	t.Helper()
	c, err := Open(context.Background(), s)
	require.NoError(t, err)
	return c
}

func TestAdd_MergeAndAppend(t *testing.T) {
	ctx := context.Background()
	c := openCart(t, &MemoryStorage{})

	require.NoError(t, c.Add(ctx, tee(1, "29.99"), 1, "M", "White"))
	require.NoError(t, c.Add(ctx, tee(2, "45.00"), 1, "L", "Black"))
	require.NoError(t, c.Add(ctx, tee(1, "29.99"), 2, "M", "White"))
	require.NoError(t, c.Add(ctx, tee(1, "29.99"), 1, "L", "White"))

	items := c.Items()
	require.Len(t, items, 3)
	assert.Equal(t, Key{ProductID: 1, Size: "M", Color: "White"}, items[0].Key())
	assert.Equal(t, 3, items[0].Quantity)
	assert.Equal(t, 1, items[1].Quantity, "other lines untouched")
	assert.Equal(t, Key{ProductID: 1, Size: "L", Color: "White"}, items[2].Key())
}

func TestAdd_InvalidQuantity(t *testing.T) {
	c := openCart(t, &MemoryStorage{})

	err := c.Add(context.Background(), tee(1, "10"), 0, "M", "")

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Empty(t, c.Items())
}

func TestUpdateQuantity_ClampsAtOne(t *testing.T) {
	ctx := context.Background()
	c := openCart(t, &MemoryStorage{})
	require.NoError(t, c.Add(ctx, tee(1, "10"), 2, "M", "White"))
	key := Key{ProductID: 1, Size: "M", Color: "White"}

	require.NoError(t, c.UpdateQuantity(ctx, key, -5))
	require.Len(t, c.Items(), 1)
	assert.Equal(t, 1, c.Items()[0].Quantity)

	require.NoError(t, c.UpdateQuantity(ctx, key, 3))
	assert.Equal(t, 4, c.Items()[0].Quantity)
}

func TestUpdateQuantity_AbsentIsNoop(t *testing.T) {
	ctx := context.Background()
	s := &MemoryStorage{}
	c := openCart(t, s)

	require.NoError(t, c.UpdateQuantity(ctx, Key{ProductID: 9}, 1))
	assert.Empty(t, c.Items())
	assert.Zero(t, s.Saves())
}

func TestRemove(t *testing.T) {
	ctx := context.Background()
	c := openCart(t, &MemoryStorage{})
	require.NoError(t, c.Add(ctx, tee(1, "10"), 1, "M", "White"))
	require.NoError(t, c.Add(ctx, tee(2, "20"), 1, "M", "White"))

	require.NoError(t, c.Remove(ctx, Key{ProductID: 1, Size: "M", Color: "White"}))
	require.NoError(t, c.Remove(ctx, Key{ProductID: 1, Size: "M", Color: "White"}))

	items := c.Items()
	require.Len(t, items, 1)
	assert.Equal(t, int64(2), items[0].ProductID)
}

func TestTotalAndCount(t *testing.T) {
	ctx := context.Background()
	c := openCart(t, &MemoryStorage{})
	require.NoError(t, c.Add(ctx, tee(1, "29.99"), 1, "M", "White"))
	require.NoError(t, c.Add(ctx, tee(2, "45.00"), 2, "L", "Black"))

	assert.True(t, c.Total().Equal(dec("119.99")), "got %s", c.Total())
	assert.Equal(t, 3, c.Count())

	lines := c.LineItems()
	require.Len(t, lines, 2)
	assert.True(t, lines[1].Price.Equal(dec("45.00")))
	assert.Equal(t, 2, lines[1].Quantity)

	require.NoError(t, c.Clear(ctx))
	assert.True(t, c.Total().IsZero())
	assert.Zero(t, c.Count())
}

func TestMutationsPersist(t *testing.T) {
	ctx := context.Background()
	s := &MemoryStorage{}
	c := openCart(t, s)

	require.NoError(t, c.Add(ctx, tee(1, "10"), 1, "M", ""))
	require.NoError(t, c.UpdateQuantity(ctx, Key{ProductID: 1, Size: "M"}, 1))

	reopened := openCart(t, s)
	assert.Equal(t, c.Items(), reopened.Items())
	assert.Equal(t, 2, s.Saves())
}

func TestFailedSaveLeavesCartUnchanged(t *testing.T) {
	c := openCart(t, &failingStorage{})

	err := c.Add(context.Background(), tee(1, "10"), 1, "M", "")

	require.Error(t, err)
	assert.Empty(t, c.Items())
}

func TestFileStorage_RoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "cart.json")
	s := NewFileStorage(path)

	empty := openCart(t, s)
	assert.Empty(t, empty.Items())

	require.NoError(t, empty.Add(ctx, tee(1, "29.99"), 1, "M", "White"))
	require.NoError(t, empty.Add(ctx, tee(2, "45.00"), 2, "L", "Black"))

	reopened := openCart(t, NewFileStorage(path))
	require.Len(t, reopened.Items(), 2)
	assert.True(t, reopened.Total().Equal(dec("119.99")))
	assert.Equal(t, "Black", reopened.Items()[1].Color)
}
