package cart

import (
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"
)

const snapshotVersion = 1

// Encode writes items as a versioned JSON snapshot. Prices are written as
// strings so no precision is lost.
func Encode(items []Item) []byte {
	var e jx.Encoder
	e.SetIdent(2)
	e.Obj(func(e *jx.Encoder) {
		e.Field("version", func(e *jx.Encoder) { e.Int(snapshotVersion) })
		e.Field("items", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, it := range items {
					encodeItem(e, it)
				}
			})
		})
	})
	return e.Bytes()
}

func encodeItem(e *jx.Encoder, it Item) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Int64(it.ProductID) })
		e.Field("title", func(e *jx.Encoder) { e.Str(it.Title) })
		e.Field("price", func(e *jx.Encoder) { e.Str(it.Price.String()) })
		if it.Image != "" {
			e.Field("image", func(e *jx.Encoder) { e.Str(it.Image) })
		}
		e.Field("size", func(e *jx.Encoder) { e.Str(it.Size) })
		e.Field("color", func(e *jx.Encoder) { e.Str(it.Color) })
		e.Field("quantity", func(e *jx.Encoder) { e.Int(it.Quantity) })
	})
}

// Decode parses a snapshot written by Encode. A bare array of lines is
// accepted as well.
func Decode(data []byte) ([]Item, error) {
	d := jx.DecodeBytes(data)

	var items []Item
	switch d.Next() {
	case jx.Array:
		if err := decodeItems(d, &items); err != nil {
			return nil, err
		}
	case jx.Object:
		if err := d.Obj(func(d *jx.Decoder, key string) error {
			switch key {
			case "version":
				v, err := d.Int()
				if err != nil {
					return errors.Wrap(err, "version")
				}
				if v != snapshotVersion {
					return errors.Errorf("unsupported cart snapshot version %d", v)
				}
				return nil
			case "items":
				return decodeItems(d, &items)
			default:
				return d.Skip()
			}
		}); err != nil {
			return nil, err
		}
	default:
		return nil, errors.New("cart snapshot must be an object or array")
	}
	return items, nil
}

func decodeItems(d *jx.Decoder, items *[]Item) error {
	return d.Arr(func(d *jx.Decoder) error {
		var it Item
		if err := d.Obj(func(d *jx.Decoder, key string) error {
			var err error
			switch key {
			case "id":
				it.ProductID, err = d.Int64()
			case "title":
				it.Title, err = d.Str()
			case "price":
				it.Price, err = decodePrice(d)
			case "image":
				it.Image, err = d.Str()
			case "size":
				it.Size, err = d.Str()
			case "color":
				it.Color, err = d.Str()
			case "quantity":
				it.Quantity, err = d.Int()
			default:
				return d.Skip()
			}
			if err != nil {
				return errors.Wrap(err, key)
			}
			return nil
		}); err != nil {
			return errors.Wrap(err, "item")
		}
		if it.Quantity < 1 {
			return errors.Errorf("item %d: quantity %d", it.ProductID, it.Quantity)
		}
		*items = append(*items, it)
		return nil
	})
}

func decodePrice(d *jx.Decoder) (decimal.Decimal, error) {
	if d.Next() == jx.String {
		s, err := d.Str()
		if err != nil {
			return decimal.Zero, err
		}
		return decimal.NewFromString(s)
	}
	n, err := d.Num()
	if err != nil {
		return decimal.Zero, err
	}
	return decimal.NewFromString(n.String())
}
