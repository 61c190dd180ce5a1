package handler

import (
	"net/url"
	"time"

	"github.com/shopspring/decimal"

	"github.com/SanathKumar1997/teez/internal/domain/auth"
	"github.com/SanathKumar1997/teez/internal/domain/order"
	"github.com/SanathKumar1997/teez/internal/domain/product"
)

type productResponse struct {
	ID                 int64     `json:"id"`
	Title              string    `json:"title"`
	Price              float64   `json:"price"`
	OriginalPrice      *float64  `json:"original_price"`
	DiscountPercentage float64   `json:"discount_percentage"`
	StockQuantity      int       `json:"stock_quantity"`
	Image              string    `json:"image"`
	Category           string    `json:"category"`
	Description        string    `json:"description"`
	Rating             float64   `json:"rating"`
	Reviews            int       `json:"reviews"`
	Colors             []string  `json:"colors"`
	Sizes              []string  `json:"sizes"`
	CreatedAt          time.Time `json:"created_at"`
}

type productRequest struct {
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

func (r productRequest) fields() product.Fields {
	return product.Fields{
		Title:         r.Title,
		Description:   r.Description,
		Image:         r.Image,
		Category:      r.Category,
		Price:         r.Price,
		Rating:        r.Rating,
		Reviews:       r.Reviews,
		Colors:        r.Colors,
		Sizes:         r.Sizes,
		StockQuantity: r.StockQuantity,
	}
}

type discountRequest struct {
	DiscountPercentage decimal.Decimal `json:"discount_percentage"`
}

type discountResponse struct {
	ID                 int64   `json:"id"`
	OriginalPrice      float64 `json:"original_price"`
	NewPrice           float64 `json:"new_price"`
	DiscountPercentage float64 `json:"discount_percentage"`
}

type lineItemDTO struct {
	ProductID int64           `json:"id"`
	Title     string          `json:"title"`
	Price     decimal.Decimal `json:"price"`
	Image     string          `json:"image,omitempty"`
	Size      string          `json:"size,omitempty"`
	Color     string          `json:"color,omitempty"`
	Quantity  int             `json:"quantity"`
}

type orderRequest struct {
	CustomerEmail   string          `json:"customer_email"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	Items           []lineItemDTO   `json:"items"`
	ShippingAddress order.Address   `json:"shipping_address"`

	// Payment confirmation returned by the provider checkout.
	PaymentID string `json:"payment_id"`
	OrderID   string `json:"order_id"`
	Signature string `json:"signature"`
}

type createOrderResponse struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

type paymentDTO struct {
	Provider  string `json:"provider"`
	OrderID   string `json:"order_id"`
	PaymentID string `json:"payment_id"`
}

type orderResponse struct {
	ID              string        `json:"id"`
	CustomerEmail   string        `json:"customer_email"`
	TotalAmount     float64       `json:"total_amount"`
	Items           []lineItemDTO `json:"items"`
	ShippingAddress order.Address `json:"shipping_address"`
	Payment         *paymentDTO   `json:"payment,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userDTO struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"is_admin"`
}

type authResponse struct {
	Message   string    `json:"message"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      userDTO   `json:"user"`
}

type paymentIntentRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

type paymentIntentResponse struct {
	OrderID  string `json:"order_id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	KeyID    string `json:"key_id"`
}

func (h *Handler) toProductResponse(p product.Product) productResponse {
	resp := productResponse{
		ID:                 p.ID,
		Title:              p.Title,
		Price:              p.Price.InexactFloat64(),
		DiscountPercentage: p.DiscountPercentage.InexactFloat64(),
		StockQuantity:      p.StockQuantity,
		Image:              h.imageURL(p.Image),
		Category:           p.Category,
		Description:        p.Description,
		Rating:             p.Rating,
		Reviews:            p.Reviews,
		Colors:             nonNil(p.Colors),
		Sizes:              nonNil(p.Sizes),
		CreatedAt:          p.CreatedAt,
	}
	if p.OriginalPrice != nil {
		v := p.OriginalPrice.InexactFloat64()
		resp.OriginalPrice = &v
	}
	return resp
}

// imageURL prefixes relative image paths with the configured base URL.
func (h *Handler) imageURL(image string) string {
	if h.imageBaseURL == "" || image == "" {
		return image
	}
	if u, err := url.Parse(image); err == nil && u.IsAbs() {
		return image
	}
	if image[0] != '/' {
		image = "/" + image
	}
	return h.imageBaseURL + image
}

func toLineItems(in []lineItemDTO) []order.LineItem {
	out := make([]order.LineItem, len(in))
	for i, it := range in {
		out[i] = order.LineItem(it)
	}
	return out
}

func toOrderResponse(o order.Order) orderResponse {
	items := make([]lineItemDTO, len(o.Items))
	for i, it := range o.Items {
		items[i] = lineItemDTO(it)
	}
	resp := orderResponse{
		ID:              o.ID,
		CustomerEmail:   o.CustomerEmail,
		TotalAmount:     o.TotalAmount.InexactFloat64(),
		Items:           items,
		ShippingAddress: o.ShippingAddress,
		CreatedAt:       o.CreatedAt,
	}
	if o.Payment != nil {
		resp.Payment = &paymentDTO{
			Provider:  o.Payment.Provider,
			OrderID:   o.Payment.OrderID,
			PaymentID: o.Payment.PaymentID,
		}
	}
	return resp
}

func toAuthResponse(message string, res *auth.Result) authResponse {
	return authResponse{
		Message:   message,
		Token:     res.Token,
		ExpiresAt: res.Session.ExpiresAt,
		User: userDTO{
			ID:      res.User.ID,
			Name:    res.User.Name,
			Email:   res.User.Email,
			IsAdmin: res.User.IsAdmin,
		},
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
