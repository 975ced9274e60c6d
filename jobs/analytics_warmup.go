package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"github.com/odyssey-erp/retail-inventory/internal/analytics"
	jobmetrics "github.com/odyssey-erp/retail-inventory/internal/jobs"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// WarmupReports is the cache-aware analytics surface refreshed by the warmup.
type WarmupReports interface {
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

// AnalyticsWarmupJob recomputes the cached analytics reports.
type AnalyticsWarmupJob struct {
	Reports    WarmupReports
	Logger     *slog.Logger
	Metrics    *jobmetrics.Metrics
	DefaultTop int
	Timeout    time.Duration
}

// NewAnalyticsWarmupJob wires dependencies for the warmup handler.
func NewAnalyticsWarmupJob(reports WarmupReports, logger *slog.Logger, metrics *jobmetrics.Metrics, defaultTop int) *AnalyticsWarmupJob {
	return &AnalyticsWarmupJob{
		Reports:    reports,
		Logger:     logger,
		Metrics:    metrics,
		DefaultTop: defaultTop,
		Timeout:    30 * time.Second,
	}
}

// Handle processes analytics warmup tasks.
func (j *AnalyticsWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Reports == nil {
		return errors.New("analytics warmup: handler not configured")
	}
	var payload AnalyticsWarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("analytics warmup: decode payload: %w", asynq.SkipRetry)
	}
	if payload.TopN <= 0 {
		payload.TopN = j.DefaultTop
	}
	if payload.TopN <= 0 {
		payload.TopN = 5
	}

	tracker := j.metrics().Track(TaskAnalyticsWarmup)
	start := time.Now()
	logger := j.logger().With(slog.Int("top_n", payload.TopN))
	logger.Info("starting analytics warmup")

	err := j.warm(ctx, payload.TopN)
	if err != nil {
		logger.Error("analytics warmup", slog.Any("error", err))
		return tracker.End(err)
	}
	logger.Info("completed analytics warmup", slog.Duration("duration", time.Since(start)))
	return tracker.End(nil)
}

func (j *AnalyticsWarmupJob) warm(ctx context.Context, topN int) error {
	if j.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.Timeout)
		defer cancel()
	}

	type warmer struct {
		name string
		run  func(context.Context) error
	}
	reports := []warmer{
		{"inventory", func(ctx context.Context) error { _, err := j.Reports.GetInventoryState(ctx); return err }},
		{"low_stock", func(ctx context.Context) error { _, err := j.Reports.GetLowStock(ctx); return err }},
		{"top_sellers", func(ctx context.Context) error { _, err := j.Reports.GetTopSellers(ctx, topN); return err }},
		{"sales_summary", func(ctx context.Context) error { _, err := j.Reports.GetSalesSummary(ctx); return err }},
		{"purchase_summary", func(ctx context.Context) error { _, err := j.Reports.GetPurchaseSummary(ctx); return err }},
		{"categories", func(ctx context.Context) error { _, err := j.Reports.GetCategoryPerformance(ctx); return err }},
		{"sales_trend", func(ctx context.Context) error { _, err := j.Reports.GetMonthlySalesTrend(ctx); return err }},
		{"purchase_trend", func(ctx context.Context) error { _, err := j.Reports.GetMonthlyPurchaseTrend(ctx); return err }},
		{"suppliers", func(ctx context.Context) error { _, err := j.Reports.GetSupplierPerformance(ctx); return err }},
		{"margins", func(ctx context.Context) error { _, err := j.Reports.GetProfitMargin(ctx); return err }},
		{"dashboard", func(ctx context.Context) error { _, err := j.Reports.Dashboard(ctx, topN); return err }},
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, report := range reports {
		g.Go(func() error {
			if err := report.run(gctx); err != nil {
				return fmt.Errorf("warm %s: %w", report.name, err)
			}
			j.metrics().ReportWarmed(report.name)
			return nil
		})
	}
	return g.Wait()
}

func (j *AnalyticsWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskAnalyticsWarmup))
	}
	return slog.Default().With(slog.String("job", TaskAnalyticsWarmup))
}

func (j *AnalyticsWarmupJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}
