package inventory

import (
	"context"
	"time"
)

// ChangeKind identifies which part of the snapshot a write touched.
type ChangeKind string

const (
	ChangeProduct     ChangeKind = "product"
	ChangeTransaction ChangeKind = "transaction"
)

// ChangedEvent is emitted after a catalog or ledger upsert commits.
type ChangedEvent struct {
	Kind       ChangeKind
	ID         string
	OccurredAt time.Time
}

// ChangeHandler receives write notifications, typically to invalidate derived
// analytics.
type ChangeHandler interface {
	HandleInventoryChanged(ctx context.Context, evt ChangedEvent) error
}
