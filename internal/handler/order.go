package handler

import (
	"net/http"

	"github.com/SanathKumar1997/teez/internal/domain/order"
	"github.com/SanathKumar1997/teez/internal/domain/payment"
)

// CreateOrder serves POST /api/orders. When the body carries a payment
// confirmation it is verified with the payment gateway first.
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req orderRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	checkout := order.CheckoutRequest{
		Order: order.CreateRequest{
			CustomerEmail:   req.CustomerEmail,
			TotalAmount:     req.TotalAmount,
			Items:           toLineItems(req.Items),
			ShippingAddress: req.ShippingAddress,
		},
	}
	if req.PaymentID != "" || req.OrderID != "" || req.Signature != "" {
		checkout.Confirmation = &payment.Confirmation{
			OrderID:   req.OrderID,
			PaymentID: req.PaymentID,
			Signature: req.Signature,
		}
	}

	o, err := h.orders.Checkout(r.Context(), checkout)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, createOrderResponse{
		ID:      o.ID,
		Message: "Order created successfully",
	})
}

// ListUserOrders serves GET /api/orders/user/{email}.
func (h *Handler) ListUserOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListOrdersForUser(r.Context(), r.PathValue("email"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := make([]orderResponse, len(orders))
	for i, o := range orders {
		resp[i] = toOrderResponse(o)
	}
	writeJSON(w, http.StatusOK, resp)
}

// CreatePaymentIntent serves POST /api/create-payment-intent.
func (h *Handler) CreatePaymentIntent(w http.ResponseWriter, r *http.Request) {
	var req paymentIntentRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	intent, err := h.orders.CreateIntent(r.Context(), req.Amount)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, paymentIntentResponse{
		OrderID:  intent.OrderID,
		Amount:   intent.Amount,
		Currency: intent.Currency,
		KeyID:    intent.KeyID,
	})
}
