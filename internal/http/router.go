package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// NewRouter mounts the POS API under /api/v1/pos.
func NewRouter(h *POSHandler, l *zap.Logger) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(l))
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1/pos", func(r chi.Router) {
		r.Use(BearerAuthMiddleware)

		r.Get("/receipts", h.ListReceipts)

		r.Post("/sessions", h.OpenSession)
		r.Route("/sessions/{session_id}", func(r chi.Router) {
			r.Delete("/", h.CloseSession)

			r.Get("/cart", h.GetCart)
			r.Delete("/cart", h.ClearCart)
			r.Post("/cart/items", h.AddItem)
			r.Patch("/cart/items/{product_id}", h.ChangeQuantity)
			r.Delete("/cart/items/{product_id}", h.RemoveItem)

			r.Post("/checkout", h.Checkout)
			r.Get("/products", h.ListProducts)
			r.Get("/customers", h.ListCustomers)
		})
	})

	return r
}
