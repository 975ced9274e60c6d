package jobs

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskAnalyticsWarmup recomputes every cached analytics report.
	TaskAnalyticsWarmup = "inventory:analytics_warmup"
	// TaskLowStockScan publishes the products at or below their reorder level.
	TaskLowStockScan = "inventory:low_stock_scan"
)

// AnalyticsWarmupPayload carries the top-sellers limit to warm.
type AnalyticsWarmupPayload struct {
	TopN int `json:"top_n"`
}

// LowStockScanPayload records who asked for the scan.
type LowStockScanPayload struct {
	Trigger      string    `json:"trigger"`
	ScheduledFor time.Time `json:"scheduled_for,omitempty"`
}

// NewAnalyticsWarmupTask constructs an Asynq task for the analytics warmup.
func NewAnalyticsWarmupTask(topN int) (*asynq.Task, error) {
	body, err := json.Marshal(AnalyticsWarmupPayload{TopN: topN})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskAnalyticsWarmup, body, asynq.Queue(QueueDefault)), nil
}

// NewLowStockScanTask constructs an Asynq task for the low-stock scan.
func NewLowStockScanTask(trigger string) (*asynq.Task, error) {
	body, err := json.Marshal(LowStockScanPayload{Trigger: trigger})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLowStockScan, body, asynq.Queue(QueueDefault)), nil
}

// NewTaskByName builds a task with default payload for a manual trigger.
func NewTaskByName(name string, topN int) (*asynq.Task, error) {
	switch name {
	case TaskAnalyticsWarmup:
		return NewAnalyticsWarmupTask(topN)
	case TaskLowStockScan:
		return NewLowStockScanTask("manual")
	default:
		return nil, fmt.Errorf("jobs: unsupported job %q", name)
	}
}
