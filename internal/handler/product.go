package handler

import (
	"net/http"

	"github.com/SanathKumar1997/teez/internal/domain/product"
)

// ListProducts serves GET /api/products?category=&search=.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	products, err := h.products.List(r.Context(), product.Filter{
		Category: q.Get("category"),
		Search:   q.Get("search"),
	}.Normalize())
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := make([]productResponse, len(products))
	for i, p := range products {
		resp[i] = h.toProductResponse(p)
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetProduct serves GET /api/products/{id}.
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	p, err := h.products.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.toProductResponse(*p))
}

// CreateProduct serves POST /api/products (admin).
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	session, err := h.adminSession(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req productRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	p, err := h.admin.CreateProduct(r.Context(), session, req.fields())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, h.toProductResponse(*p))
}

// UpdateProduct serves PUT /api/products/{id} (admin).
func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	session, err := h.adminSession(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req productRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	p, err := h.admin.UpdateProduct(r.Context(), session, id, req.fields())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.toProductResponse(*p))
}

// DeleteProduct serves DELETE /api/products/{id} (admin).
func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	session, err := h.adminSession(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.admin.DeleteProduct(r.Context(), session, id); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Product deleted successfully"})
}

// ApplyDiscount serves PATCH /api/products/{id}/discount (admin).
func (h *Handler) ApplyDiscount(w http.ResponseWriter, r *http.Request) {
	session, err := h.adminSession(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req discountRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	res, err := h.admin.ApplyDiscount(r.Context(), session, id, req.DiscountPercentage)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, discountResponse{
		ID:                 res.ProductID,
		OriginalPrice:      res.OriginalPrice.InexactFloat64(),
		NewPrice:           res.NewPrice.InexactFloat64(),
		DiscountPercentage: res.DiscountPercentage.InexactFloat64(),
	})
}
