package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/odyssey-erp/retail-inventory/internal/analytics"
	jobmetrics "github.com/odyssey-erp/retail-inventory/internal/jobs"
)

// LowStockSource yields the products at or below their reorder level.
type LowStockSource interface {
	GetLowStock(ctx context.Context) ([]analytics.InventoryRow, error)
}

// LowStockScanJob logs low-stock products and publishes their count.
type LowStockScanJob struct {
	Source  LowStockSource
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewLowStockScanJob wires dependencies for the scan handler.
func NewLowStockScanJob(source LowStockSource, logger *slog.Logger, metrics *jobmetrics.Metrics) *LowStockScanJob {
	return &LowStockScanJob{Source: source, Logger: logger, Metrics: metrics}
}

// Handle processes low-stock scan tasks.
func (j *LowStockScanJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Source == nil {
		return errors.New("low stock scan: handler not configured")
	}
	var payload LowStockScanPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("low stock scan: decode payload: %w", asynq.SkipRetry)
	}
	if payload.Trigger == "" {
		payload.Trigger = "cron"
	}

	tracker := j.metrics().Track(TaskLowStockScan)
	start := time.Now()
	logger := j.logger().With(slog.String("trigger", payload.Trigger))

	rows, err := j.Source.GetLowStock(ctx)
	if err != nil {
		logger.Error("load low stock", slog.Any("error", err))
		return tracker.End(err)
	}
	for _, row := range rows {
		logger.Warn("product at or below reorder level",
			slog.String("product_id", row.ProductID),
			slog.String("name", row.Name),
			slog.Int64("qty_on_stock", row.QtyOnStock),
			slog.Int64("reorder_level", row.ReorderLevel),
		)
	}
	j.metrics().SetLowStock(len(rows))

	logger.Info("completed low stock scan", slog.Int("low_stock", len(rows)), slog.Duration("duration", time.Since(start)))
	return tracker.End(nil)
}

func (j *LowStockScanJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskLowStockScan))
	}
	return slog.Default().With(slog.String("job", TaskLowStockScan))
}

func (j *LowStockScanJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}
