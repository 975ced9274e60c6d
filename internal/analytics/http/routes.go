package analytichttp

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"

	"github.com/odyssey-erp/retail-inventory/internal/platform/httpx"
)

// MountRoutes registers inventory analytics endpoints onto the router.
func (h *Handler) MountRoutes(r chi.Router) {
	if h == nil {
		return
	}
	limiter := httprate.Limit(10, time.Minute,
		httprate.WithKeyFuncs(rateLimitKey),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			httpx.Problem(w, http.StatusTooManyRequests, http.StatusText(http.StatusTooManyRequests), "export rate limit exceeded")
		}),
	)

	r.Route("/analytics", func(r chi.Router) {
		r.Get("/inventory", h.handleInventory)
		r.Get("/inventory/low-stock", h.handleLowStock)
		r.Get("/top-sellers", h.handleTopSellers)
		r.Get("/sales/summary", h.handleSalesSummary)
		r.Get("/purchases/summary", h.handlePurchaseSummary)
		r.Get("/categories", h.handleCategories)
		r.Get("/trends/sales", h.handleSalesTrend)
		r.Get("/trends/purchases", h.handlePurchaseTrend)
		r.Get("/suppliers", h.handleSuppliers)
		r.Get("/margins", h.handleMargins)
		r.Get("/dashboard", h.handleDashboard)
		r.Group(func(gr chi.Router) {
			gr.Use(limiter)
			gr.Get("/export.csv", h.handleCSV)
		})
	})
}

func rateLimitKey(r *http.Request) (string, error) {
	key, err := httprate.KeyByIP(r)
	if err != nil {
		return "", err
	}
	return "ip:" + key, nil
}
