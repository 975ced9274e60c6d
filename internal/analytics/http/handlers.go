package analytichttp

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/odyssey-erp/retail-inventory/internal/analytics"
	"github.com/odyssey-erp/retail-inventory/internal/analytics/export"
	"github.com/odyssey-erp/retail-inventory/internal/platform/httpx"
)

const requestTimeout = 5 * time.Second

// AnalyticsService defines the report contract used by the handler.
type AnalyticsService interface {
	GetInventoryState(ctx context.Context) ([]analytics.InventoryRow, error)
	GetLowStock(ctx context.Context) ([]analytics.InventoryRow, error)
	GetTopSellers(ctx context.Context, n int) ([]analytics.SellerRow, error)
	GetSalesSummary(ctx context.Context) (analytics.SalesTotals, error)
	GetPurchaseSummary(ctx context.Context) (analytics.PurchaseTotals, error)
	GetCategoryPerformance(ctx context.Context) ([]analytics.CategoryRow, error)
	GetMonthlySalesTrend(ctx context.Context) ([]analytics.SalesTrendPoint, error)
	GetMonthlyPurchaseTrend(ctx context.Context) ([]analytics.PurchaseTrendPoint, error)
	GetSupplierPerformance(ctx context.Context) ([]analytics.SupplierRow, error)
	GetProfitMargin(ctx context.Context) ([]analytics.MarginRow, error)
	Dashboard(ctx context.Context, n int) (analytics.Dashboard, error)
}

// Handler coordinates HTTP requests for the inventory analytics reports.
type Handler struct {
	logger     *slog.Logger
	service    AnalyticsService
	defaultTop int
	csvPool    sync.Pool
	now        func() time.Time
}

// NewHandler constructs the analytics HTTP handler. defaultTop is used when a
// request omits n.
func NewHandler(logger *slog.Logger, service AnalyticsService, defaultTop int) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if defaultTop <= 0 {
		defaultTop = 5
	}
	h := &Handler{
		logger:     logger,
		service:    service,
		defaultTop: defaultTop,
		now:        time.Now,
	}
	h.csvPool.New = func() interface{} { return new(bytes.Buffer) }
	return h
}

// WithNow overrides the handler clock for testing.
func (h *Handler) WithNow(fn func() time.Time) {
	if fn != nil {
		h.now = fn
	}
}

func (h *Handler) handleInventory(w http.ResponseWriter, r *http.Request) {
	serve(h, w, r, "inventory state", h.service.GetInventoryState)
}

func (h *Handler) handleLowStock(w http.ResponseWriter, r *http.Request) {
	serve(h, w, r, "low stock", h.service.GetLowStock)
}

func (h *Handler) handleTopSellers(w http.ResponseWriter, r *http.Request) {
	n, err := h.parseTop(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	serve(h, w, r, "top sellers", func(ctx context.Context) ([]analytics.SellerRow, error) {
		return h.service.GetTopSellers(ctx, n)
	})
}

func (h *Handler) handleSalesSummary(w http.ResponseWriter, r *http.Request) {
	serve(h, w, r, "sales summary", h.service.GetSalesSummary)
}

func (h *Handler) handlePurchaseSummary(w http.ResponseWriter, r *http.Request) {
	serve(h, w, r, "purchase summary", h.service.GetPurchaseSummary)
}

func (h *Handler) handleCategories(w http.ResponseWriter, r *http.Request) {
	serve(h, w, r, "category performance", h.service.GetCategoryPerformance)
}

func (h *Handler) handleSalesTrend(w http.ResponseWriter, r *http.Request) {
	serve(h, w, r, "sales trend", h.service.GetMonthlySalesTrend)
}

func (h *Handler) handlePurchaseTrend(w http.ResponseWriter, r *http.Request) {
	serve(h, w, r, "purchase trend", h.service.GetMonthlyPurchaseTrend)
}

func (h *Handler) handleSuppliers(w http.ResponseWriter, r *http.Request) {
	serve(h, w, r, "supplier performance", h.service.GetSupplierPerformance)
}

func (h *Handler) handleMargins(w http.ResponseWriter, r *http.Request) {
	serve(h, w, r, "profit margin", h.service.GetProfitMargin)
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	n, err := h.parseTop(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	serve(h, w, r, "dashboard", func(ctx context.Context) (analytics.Dashboard, error) {
		return h.service.Dashboard(ctx, n)
	})
}

type exportData struct {
	dashboard analytics.Dashboard
	sales     []analytics.SalesTrendPoint
	purchases []analytics.PurchaseTrendPoint
	suppliers []analytics.SupplierRow
	margins   []analytics.MarginRow
}

func (h *Handler) handleCSV(w http.ResponseWriter, r *http.Request) {
	n, err := h.parseTop(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	data, err := h.loadExportData(ctx, n)
	if err != nil {
		h.handleServerError(w, "load export", err)
		return
	}

	buf := h.csvPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer func() {
		buf.Reset()
		h.csvPool.Put(buf)
	}()

	sections := []struct {
		name  string
		write func(io.Writer) error
	}{
		{"dashboard", func(w io.Writer) error { return export.WriteDashboardCSV(w, data.dashboard) }},
		{"sales trend", func(w io.Writer) error { return export.WriteSalesTrendCSV(w, data.sales) }},
		{"purchase trend", func(w io.Writer) error { return export.WritePurchaseTrendCSV(w, data.purchases) }},
		{"suppliers", func(w io.Writer) error { return export.WriteSupplierCSV(w, data.suppliers) }},
		{"margins", func(w io.Writer) error { return export.WriteMarginCSV(w, data.margins) }},
	}
	for i, section := range sections {
		if i > 0 {
			buf.WriteString("\n")
		}
		if err := section.write(buf); err != nil {
			h.handleServerError(w, "write "+section.name+" csv", err)
			return
		}
	}

	filename := fmt.Sprintf("inventory-analytics-%s.csv", h.now().UTC().Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logError("stream csv", err)
	}
}

func (h *Handler) loadExportData(ctx context.Context, n int) (exportData, error) {
	var data exportData
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		dash, err := h.service.Dashboard(ctx, n)
		if err != nil {
			return err
		}
		data.dashboard = dash
		return nil
	})

	g.Go(func() error {
		points, err := h.service.GetMonthlySalesTrend(ctx)
		if err != nil {
			return err
		}
		data.sales = points
		return nil
	})

	g.Go(func() error {
		points, err := h.service.GetMonthlyPurchaseTrend(ctx)
		if err != nil {
			return err
		}
		data.purchases = points
		return nil
	})

	g.Go(func() error {
		rows, err := h.service.GetSupplierPerformance(ctx)
		if err != nil {
			return err
		}
		data.suppliers = rows
		return nil
	})

	g.Go(func() error {
		rows, err := h.service.GetProfitMargin(ctx)
		if err != nil {
			return err
		}
		data.margins = rows
		return nil
	})

	if err := g.Wait(); err != nil {
		return exportData{}, err
	}
	return data, nil
}

func (h *Handler) parseTop(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("n")
	if raw == "" {
		return h.defaultTop, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: n must be a positive integer", httpx.ErrValidation)
	}
	return n, nil
}

func serve[T any](h *Handler, w http.ResponseWriter, r *http.Request, name string, load func(context.Context) (T, error)) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	value, err := load(ctx)
	if err != nil {
		h.handleServerError(w, "load "+name, err)
		return
	}
	httpx.JSON(w, http.StatusOK, value)
}

func (h *Handler) handleServerError(w http.ResponseWriter, context string, err error) {
	if httpx.StatusFor(err) == http.StatusInternalServerError {
		h.logError(context, err)
	}
	httpx.RespondError(w, err)
}

func (h *Handler) logError(context string, err error) {
	h.logger.Error("analytics handler error", slog.String("context", context), slog.Any("error", err))
}
