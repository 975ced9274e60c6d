package inventory

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Store abstracts catalog and ledger persistence for the service.
type Store interface {
	LoadProducts(ctx context.Context) ([]Product, error)
	LoadTransactions(ctx context.Context) ([]Transaction, error)
	GetProduct(ctx context.Context, productID string) (Product, error)
	UpsertProduct(ctx context.Context, p Product) error
	UpsertTransaction(ctx context.Context, t Transaction) error
}

// Service coordinates catalog and ledger writes.
type Service struct {
	store   Store
	changes ChangeHandler
	logger  *slog.Logger
	now     func() time.Time
	newID   func() string
}

// NewService builds Service. changes may be nil.
func NewService(store Store, changes ChangeHandler, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:   store,
		changes: changes,
		logger:  logger,
		now:     time.Now,
		newID:   func() string { return uuid.NewString() },
	}
}

// ListProducts returns the catalog ordered by product id.
func (s *Service) ListProducts(ctx context.Context) ([]Product, error) {
	return s.store.LoadProducts(ctx)
}

// ListTransactions returns the ledger ordered by timestamp.
func (s *Service) ListTransactions(ctx context.Context) ([]Transaction, error) {
	return s.store.LoadTransactions(ctx)
}

// GetProduct fetches a single catalog entry.
func (s *Service) GetProduct(ctx context.Context, productID string) (Product, error) {
	return s.store.GetProduct(ctx, productID)
}

// UpsertProduct validates and stores a product, replacing any previous
// version with the same id.
func (s *Service) UpsertProduct(ctx context.Context, p Product) (Product, error) {
	p = p.Normalize()
	if err := ValidateProduct(p); err != nil {
		return Product{}, err
	}
	if err := s.store.UpsertProduct(ctx, p); err != nil {
		return Product{}, err
	}
	s.notify(ctx, ChangeProduct, p.ProductID)
	return p, nil
}

// RecordTransaction stores a ledger entry. A missing TxID is generated and a
// zero TS defaults to the current time.
func (s *Service) RecordTransaction(ctx context.Context, t Transaction) (Transaction, error) {
	t = t.Normalize()
	if t.TxID == "" {
		t.TxID = s.newID()
	}
	if t.TS.IsZero() {
		t.TS = s.now().UTC()
	}
	if err := ValidateTransaction(t); err != nil {
		return Transaction{}, err
	}
	if err := s.store.UpsertTransaction(ctx, t); err != nil {
		return Transaction{}, err
	}
	s.notify(ctx, ChangeTransaction, t.TxID)
	return t, nil
}

func (s *Service) notify(ctx context.Context, kind ChangeKind, id string) {
	if s.changes == nil {
		return
	}
	evt := ChangedEvent{Kind: kind, ID: id, OccurredAt: s.now().UTC()}
	if err := s.changes.HandleInventoryChanged(ctx, evt); err != nil {
		s.logger.Warn("inventory change hook failed",
			slog.String("kind", string(kind)),
			slog.String("id", id),
			slog.Any("error", err))
	}
}
