package analytics

import (
	"context"
	"fmt"
	"strconv"

	"golang.org/x/sync/singleflight"

	"github.com/odyssey-erp/retail-inventory/internal/platform/httpx"
)

// Service coordinates report derivation with the cache layer.
type Service struct {
	loader Loader
	cache  *Cache
	group  singleflight.Group
}

// NewService wires a Loader with a Cache helper. cache may be nil.
func NewService(loader Loader, cache *Cache) *Service {
	return &Service{loader: loader, cache: cache}
}

// Dashboard bundles the reports rendered together from one snapshot.
type Dashboard struct {
	Inventory  []InventoryRow `json:"inventory"`
	LowStock   []InventoryRow `json:"low_stock"`
	TopSellers []SellerRow    `json:"top_sellers"`
	Sales      SalesTotals    `json:"sales"`
	Purchases  PurchaseTotals `json:"purchases"`
	Categories []CategoryRow  `json:"categories"`
}

// BuildDashboard derives every dashboard section from f.
func BuildDashboard(f Frames, n int) Dashboard {
	inv := InventoryState(f)
	return Dashboard{
		Inventory:  inv,
		LowStock:   LowStock(inv),
		TopSellers: TopSellers(f, n),
		Sales:      SalesSummary(f),
		Purchases:  PurchaseSummary(f),
		Categories: CategoryPerformance(f),
	}
}

// ErrInvalidLimit is returned when a top-N request is not positive.
var ErrInvalidLimit = fmt.Errorf("%w: limit must be positive", httpx.ErrValidation)

// Frames loads a fresh snapshot. Concurrent callers share one in-flight load
// as long as no write lands between their reads of the cache version.
func (s *Service) Frames(ctx context.Context) (Frames, error) {
	ver, err := s.cache.Version(ctx)
	if err != nil {
		return Frames{}, err
	}
	return s.framesAt(ctx, ver)
}

func (s *Service) framesAt(ctx context.Context, ver int64) (Frames, error) {
	v, err, _ := s.group.Do("frames:"+strconv.FormatInt(ver, 10), func() (interface{}, error) {
		return LoadFrames(ctx, s.loader)
	})
	if err != nil {
		return Frames{}, err
	}
	return v.(Frames), nil
}

// GetInventoryState returns the per-product stock position.
func (s *Service) GetInventoryState(ctx context.Context) ([]InventoryRow, error) {
	return cached(ctx, s, newReportKey("inventory"), InventoryState)
}

// GetLowStock returns products at or below their reorder level.
func (s *Service) GetLowStock(ctx context.Context) ([]InventoryRow, error) {
	return cached(ctx, s, newReportKey("low_stock"), func(f Frames) []InventoryRow {
		return LowStock(InventoryState(f))
	})
}

// GetTopSellers returns the n best selling products.
func (s *Service) GetTopSellers(ctx context.Context, n int) ([]SellerRow, error) {
	if n <= 0 {
		return nil, ErrInvalidLimit
	}
	return cached(ctx, s, newReportKey("top_sellers", strconv.Itoa(n)), func(f Frames) []SellerRow {
		return TopSellers(f, n)
	})
}

// GetSalesSummary returns total units sold and revenue.
func (s *Service) GetSalesSummary(ctx context.Context) (SalesTotals, error) {
	return cached(ctx, s, newReportKey("sales_summary"), SalesSummary)
}

// GetPurchaseSummary returns total units bought and expenditure.
func (s *Service) GetPurchaseSummary(ctx context.Context) (PurchaseTotals, error) {
	return cached(ctx, s, newReportKey("purchase_summary"), PurchaseSummary)
}

// GetCategoryPerformance returns sales grouped by category.
func (s *Service) GetCategoryPerformance(ctx context.Context) ([]CategoryRow, error) {
	return cached(ctx, s, newReportKey("categories"), CategoryPerformance)
}

// GetMonthlySalesTrend returns monthly sales points.
func (s *Service) GetMonthlySalesTrend(ctx context.Context) ([]SalesTrendPoint, error) {
	return cached(ctx, s, newReportKey("sales_trend"), MonthlySalesTrend)
}

// GetMonthlyPurchaseTrend returns monthly purchase points.
func (s *Service) GetMonthlyPurchaseTrend(ctx context.Context) ([]PurchaseTrendPoint, error) {
	return cached(ctx, s, newReportKey("purchase_trend"), MonthlyPurchaseTrend)
}

// GetSupplierPerformance returns purchased units grouped by supplier.
func (s *Service) GetSupplierPerformance(ctx context.Context) ([]SupplierRow, error) {
	return cached(ctx, s, newReportKey("suppliers"), SupplierPerformance)
}

// GetProfitMargin returns the per-product margin estimate.
func (s *Service) GetProfitMargin(ctx context.Context) ([]MarginRow, error) {
	return cached(ctx, s, newReportKey("margins"), ProfitMargin)
}

// Dashboard derives the dashboard sections from a single snapshot.
func (s *Service) Dashboard(ctx context.Context, n int) (Dashboard, error) {
	if n <= 0 {
		return Dashboard{}, ErrInvalidLimit
	}
	return cached(ctx, s, newReportKey("dashboard", strconv.Itoa(n)), func(f Frames) Dashboard {
		return BuildDashboard(f, n)
	})
}

// Bump invalidates every cached report.
func (s *Service) Bump(ctx context.Context) error {
	return s.cache.Bump(ctx)
}

func cached[T any](ctx context.Context, s *Service, key reportKey, derive func(Frames) T) (T, error) {
	ver, err := s.cache.Version(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	load := func(ctx context.Context) (T, error) {
		f, err := s.framesAt(ctx, ver)
		if err != nil {
			var zero T
			return zero, err
		}
		return derive(f), nil
	}
	if !s.cache.enabled() {
		return load(ctx)
	}
	return fetchReport(ctx, s.cache, key.at(ver), load)
}
