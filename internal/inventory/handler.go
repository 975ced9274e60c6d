package inventory

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/retail-inventory/internal/platform/httpx"
)

// Handler wires JSON endpoints for the catalog and the ledger.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs inventory handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers catalog routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/products", h.listProducts)
	r.Get("/products/{productID}", h.getProduct)
	r.Put("/products/{productID}", h.putProduct)
	r.Get("/transactions", h.listTransactions)
	r.Post("/transactions", h.postTransaction)
	r.Put("/transactions/{txID}", h.putTransaction)
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.ListProducts(r.Context())
	if err != nil {
		h.fail(w, "list products", err)
		return
	}
	httpx.JSON(w, http.StatusOK, products)
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.service.GetProduct(r.Context(), chi.URLParam(r, "productID"))
	if err != nil {
		h.fail(w, "get product", err)
		return
	}
	httpx.JSON(w, http.StatusOK, product)
}

func (h *Handler) putProduct(w http.ResponseWriter, r *http.Request) {
	var product Product
	if err := httpx.DecodeJSON(w, r, &product); err != nil {
		httpx.RespondError(w, err)
		return
	}
	product = product.Normalize()
	id := strings.TrimSpace(chi.URLParam(r, "productID"))
	if product.ProductID == "" {
		product.ProductID = id
	}
	if product.ProductID != id {
		httpx.RespondError(w, fmt.Errorf("%w: product_id %q does not match path %q", httpx.ErrValidation, product.ProductID, id))
		return
	}
	saved, err := h.service.UpsertProduct(r.Context(), product)
	if err != nil {
		h.fail(w, "upsert product", err)
		return
	}
	httpx.JSON(w, http.StatusOK, saved)
}

func (h *Handler) listTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := h.service.ListTransactions(r.Context())
	if err != nil {
		h.fail(w, "list transactions", err)
		return
	}
	httpx.JSON(w, http.StatusOK, txs)
}

func (h *Handler) postTransaction(w http.ResponseWriter, r *http.Request) {
	var tx Transaction
	if err := httpx.DecodeJSON(w, r, &tx); err != nil {
		httpx.RespondError(w, err)
		return
	}
	saved, err := h.service.RecordTransaction(r.Context(), tx)
	if err != nil {
		h.fail(w, "record transaction", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, saved)
}

func (h *Handler) putTransaction(w http.ResponseWriter, r *http.Request) {
	var tx Transaction
	if err := httpx.DecodeJSON(w, r, &tx); err != nil {
		httpx.RespondError(w, err)
		return
	}
	tx = tx.Normalize()
	id := strings.TrimSpace(chi.URLParam(r, "txID"))
	if tx.TxID == "" {
		tx.TxID = id
	}
	if tx.TxID != id {
		httpx.RespondError(w, fmt.Errorf("%w: tx_id %q does not match path %q", httpx.ErrValidation, tx.TxID, id))
		return
	}
	saved, err := h.service.RecordTransaction(r.Context(), tx)
	if err != nil {
		h.fail(w, "record transaction", err)
		return
	}
	httpx.JSON(w, http.StatusOK, saved)
}

func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	if httpx.StatusFor(err) == http.StatusInternalServerError {
		h.logger.Error(op+" failed", slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}
