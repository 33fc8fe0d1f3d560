package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/danishyusrah/Project-Go-Bisnis/internal/cart"
	"github.com/danishyusrah/Project-Go-Bisnis/internal/domain"
	"github.com/danishyusrah/Project-Go-Bisnis/internal/service"
	"github.com/danishyusrah/Project-Go-Bisnis/internal/session"
	"github.com/go-chi/chi/v5"
)

const maxReceiptsLimit = 200

// POSService is what the handlers need from service.POSService.
type POSService interface {
	OpenSession(ctx context.Context, token string) (*session.Session, error)
	CloseSession(ctx context.Context, sessionID, token string) error
	GetCart(ctx context.Context, sessionID, token string) (cart.Snapshot, error)
	AddItem(ctx context.Context, sessionID, token string, productID int64) (cart.Snapshot, error)
	ChangeQuantity(ctx context.Context, sessionID, token string, productID int64, delta int) (cart.Snapshot, error)
	RemoveItem(ctx context.Context, sessionID, token string, productID int64) (cart.Snapshot, error)
	ClearCart(ctx context.Context, sessionID, token string) (cart.Snapshot, error)
	Products(ctx context.Context, sessionID, token, query string) ([]domain.Product, error)
	Customers(ctx context.Context, sessionID, token string) ([]domain.Customer, error)
	Checkout(ctx context.Context, sessionID, token string, in service.CheckoutInput) (*service.CheckoutOutcome, error)
	Receipts(ctx context.Context, token string, limit int) ([]domain.Receipt, error)
}

type POSHandler struct {
	svc     POSService
	timeout time.Duration
}

// NewPOSHandler builds the handlers. timeout bounds backend reads; checkout uses the service's
// own checkout timeout.
func NewPOSHandler(svc POSService, timeout time.Duration) *POSHandler {
	return &POSHandler{
		svc:     svc,
		timeout: timeout,
	}
}

// POST /api/v1/pos/sessions
func (h *POSHandler) OpenSession(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sess, err := h.svc.OpenSession(ctx, getToken(r.Context()))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, SessionResponseDTO{
		SessionID: sess.ID,
		Cart:      toCartDTO(sess.Engine.Snapshot()),
	})
}

// DELETE /api/v1/pos/sessions/{session_id}
func (h *POSHandler) CloseSession(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.CloseSession(r.Context(), chi.URLParam(r, "session_id"), getToken(r.Context())); err != nil {
		handleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GET /api/v1/pos/sessions/{session_id}/cart
func (h *POSHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	snap, err := h.svc.GetCart(r.Context(), chi.URLParam(r, "session_id"), getToken(r.Context()))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toCartDTO(snap))
}

// POST /api/v1/pos/sessions/{session_id}/cart/items
func (h *POSHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.ProductID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be positive")
		return
	}

	snap, err := h.svc.AddItem(r.Context(), chi.URLParam(r, "session_id"), getToken(r.Context()), req.ProductID)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toCartDTO(snap))
}

// PATCH /api/v1/pos/sessions/{session_id}/cart/items/{product_id}
func (h *POSHandler) ChangeQuantity(w http.ResponseWriter, r *http.Request) {
	productID, ok := productIDParam(w, r)
	if !ok {
		return
	}

	var req ChangeQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Delta == 0 {
		respondError(w, http.StatusBadRequest, "invalid_delta", "delta must not be zero")
		return
	}

	snap, err := h.svc.ChangeQuantity(r.Context(), chi.URLParam(r, "session_id"), getToken(r.Context()), productID, req.Delta)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toCartDTO(snap))
}

// DELETE /api/v1/pos/sessions/{session_id}/cart/items/{product_id}
func (h *POSHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	productID, ok := productIDParam(w, r)
	if !ok {
		return
	}

	snap, err := h.svc.RemoveItem(r.Context(), chi.URLParam(r, "session_id"), getToken(r.Context()), productID)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toCartDTO(snap))
}

// DELETE /api/v1/pos/sessions/{session_id}/cart
func (h *POSHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	snap, err := h.svc.ClearCart(r.Context(), chi.URLParam(r, "session_id"), getToken(r.Context()))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toCartDTO(snap))
}

// POST /api/v1/pos/sessions/{session_id}/checkout
func (h *POSHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req CheckoutRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.CustomerID != nil && *req.CustomerID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_customer_id", "customer_id must be positive when present")
		return
	}

	outcome, err := h.svc.Checkout(r.Context(), chi.URLParam(r, "session_id"), getToken(r.Context()), service.CheckoutInput{
		CustomerID:    req.CustomerID,
		PaymentStatus: req.PaymentStatus,
		Notes:         req.Notes,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, toCheckoutDTO(outcome))
}

// GET /api/v1/pos/sessions/{session_id}/products?q=
func (h *POSHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.svc.Products(r.Context(), chi.URLParam(r, "session_id"), getToken(r.Context()), r.URL.Query().Get("q"))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toProductDTOs(products))
}

// GET /api/v1/pos/sessions/{session_id}/customers
func (h *POSHandler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.svc.Customers(r.Context(), chi.URLParam(r, "session_id"), getToken(r.Context()))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toCustomerDTOs(customers))
}

// GET /api/v1/pos/receipts?limit=
func (h *POSHandler) ListReceipts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 {
			respondError(w, http.StatusBadRequest, "invalid_limit", "limit must be a positive integer")
			return
		}
		limit = min(v, maxReceiptsLimit)
	}

	receipts, err := h.svc.Receipts(ctx, getToken(r.Context()), limit)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toReceiptDTOs(receipts))
}

func productIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	productID, err := strconv.ParseInt(chi.URLParam(r, "product_id"), 10, 64)
	if err != nil || productID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be a positive integer")
		return 0, false
	}
	return productID, true
}
