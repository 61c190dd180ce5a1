// Package handler exposes the storefront services over HTTP/JSON.
package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/SanathKumar1997/teez/internal/domain"
	"github.com/SanathKumar1997/teez/internal/domain/admin"
	"github.com/SanathKumar1997/teez/internal/domain/auth"
	"github.com/SanathKumar1997/teez/internal/domain/order"
	"github.com/SanathKumar1997/teez/internal/domain/payment"
	"github.com/SanathKumar1997/teez/internal/domain/product"
)

// maxBodyBytes limits request bodies.
const maxBodyBytes = 1 << 20

// HandlerConfig holds non-dependency configuration for the Handler.
type HandlerConfig struct {
	// ImageBaseURL is prepended to relative image paths in product responses.
	// When empty, image paths are returned as stored in the database.
	ImageBaseURL string
}

// Handler serves the /api routes, delegating to the domain services.
type Handler struct {
	products     product.Repository
	orders       *order.Service
	auth         *auth.Service
	admin        *admin.Service
	imageBaseURL string
}

// NewHandler constructs a Handler with the required domain dependencies.
func NewHandler(
	cfg HandlerConfig,
	products product.Repository,
	orders *order.Service,
	authService *auth.Service,
	adminService *admin.Service,
) *Handler {
	return &Handler{
		products:     products,
		orders:       orders,
		auth:         authService,
		admin:        adminService,
		imageBaseURL: strings.TrimRight(cfg.ImageBaseURL, "/"),
	}
}

// Routes adds the API routes to mux.
func (h *Handler) Routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/products", h.ListProducts)
	mux.HandleFunc("GET /api/products/{id}", h.GetProduct)
	mux.HandleFunc("POST /api/products", h.CreateProduct)
	mux.HandleFunc("PUT /api/products/{id}", h.UpdateProduct)
	mux.HandleFunc("DELETE /api/products/{id}", h.DeleteProduct)
	mux.HandleFunc("PATCH /api/products/{id}/discount", h.ApplyDiscount)

	mux.HandleFunc("POST /api/orders", h.CreateOrder)
	mux.HandleFunc("GET /api/orders/user/{email}", h.ListUserOrders)

	mux.HandleFunc("POST /api/auth/register", h.Register)
	mux.HandleFunc("POST /api/auth/login", h.Login)

	mux.HandleFunc("POST /api/create-payment-intent", h.CreatePaymentIntent)
	mux.HandleFunc("POST /api/create-razorpay-order", h.CreatePaymentIntent)
}

// session returns the verified session of the bearer token on r.
func (h *Handler) session(r *http.Request) (*auth.Session, error) {
	token, ok := bearerToken(r.Header.Get("Authorization"))
	if !ok {
		return nil, auth.ErrUnauthenticated
	}
	return h.auth.Verify(token)
}

// adminSession is session restricted to admins, checked before the request
// body or path is looked at.
func (h *Handler) adminSession(r *http.Request) (*auth.Session, error) {
	s, err := h.session(r)
	if err != nil {
		return nil, err
	}
	if err := auth.RequireAdmin(s); err != nil {
		return nil, err
	}
	return s, nil
}

func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.Invalid("id", "must be a positive integer")
	}
	return id, nil
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return domain.Invalid("body", "malformed JSON")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps a domain error to its status code and writes the
// {"code":..,"message":..} body. Unmapped errors are logged and reported
// as 500 without detail.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, message := mapError(err)
	if status == http.StatusInternalServerError {
		zctx.From(r.Context()).Error("Request failed", zap.Error(err))
	}

	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field("code", func(e *jx.Encoder) { e.Int(status) })
		e.Field("message", func(e *jx.Encoder) { e.Str(message) })
	})
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}

func mapError(err error) (int, string) {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		return http.StatusBadRequest, verr.Error()
	}

	var perr *payment.Error
	if errors.As(err, &perr) {
		return http.StatusPaymentRequired, "payment failed: " + perr.Reason
	}

	switch {
	case errors.Is(err, auth.ErrDuplicateEmail):
		return http.StatusBadRequest, "Email already exists"
	case errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid credentials"
	case errors.Is(err, auth.ErrUnauthenticated):
		return http.StatusUnauthorized, "authentication required"
	case errors.Is(err, auth.ErrForbidden):
		return http.StatusForbidden, "Access denied. Admin privileges required."
	case errors.Is(err, product.ErrNotFound):
		return http.StatusNotFound, "Product not found"
	}
	return http.StatusInternalServerError, "internal server error"
}
