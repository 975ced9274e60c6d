package analytics

import (
	"context"
	"errors"
	"fmt"

	"github.com/odyssey-erp/retail-inventory/internal/inventory"
)

// Loader supplies the raw catalog and ledger.
type Loader interface {
	LoadProducts(ctx context.Context) ([]inventory.Product, error)
	LoadTransactions(ctx context.Context) ([]inventory.Transaction, error)
}

// SnapshotLoader is implemented by stores able to read catalog and ledger in a
// single consistent view. LoadFrames prefers it when available.
type SnapshotLoader interface {
	LoadSnapshot(ctx context.Context) ([]inventory.Product, []inventory.Transaction, error)
}

// Frames is an immutable point-in-time view of the catalog and the ledger.
// Both slices are non-nil.
type Frames struct {
	Products     []inventory.Product
	Transactions []inventory.Transaction
}

// LoadFrames materialises the catalog and ledger through loader.
func LoadFrames(ctx context.Context, loader Loader) (Frames, error) {
	if loader == nil {
		return Frames{}, errors.New("analytics: loader required")
	}
	var (
		products []inventory.Product
		txs      []inventory.Transaction
		err      error
	)
	if snap, ok := loader.(SnapshotLoader); ok {
		products, txs, err = snap.LoadSnapshot(ctx)
		if err != nil {
			return Frames{}, fmt.Errorf("analytics: load snapshot: %w", err)
		}
	} else {
		if products, err = loader.LoadProducts(ctx); err != nil {
			return Frames{}, fmt.Errorf("analytics: load products: %w", err)
		}
		if txs, err = loader.LoadTransactions(ctx); err != nil {
			return Frames{}, fmt.Errorf("analytics: load transactions: %w", err)
		}
	}
	return NewFrames(products, txs)
}

// NewFrames checks the shape of products and txs and wraps them as Frames.
// Duplicate or blank product ids fail with inventory.ErrInvalidProduct; an
// unknown kind or a quantity below one fails with inventory.ErrInvalidTransaction.
func NewFrames(products []inventory.Product, txs []inventory.Transaction) (Frames, error) {
	seen := make(map[string]struct{}, len(products))
	for _, p := range products {
		if p.ProductID == "" {
			return Frames{}, fmt.Errorf("%w: blank product_id", inventory.ErrInvalidProduct)
		}
		if _, dup := seen[p.ProductID]; dup {
			return Frames{}, fmt.Errorf("%w: duplicate product_id %q", inventory.ErrInvalidProduct, p.ProductID)
		}
		seen[p.ProductID] = struct{}{}
	}
	for _, tx := range txs {
		if !tx.Kind.Valid() {
			return Frames{}, fmt.Errorf("%w: tx %s has kind %q", inventory.ErrInvalidTransaction, tx.TxID, tx.Kind)
		}
		if tx.Qty < 1 {
			return Frames{}, fmt.Errorf("%w: tx %s has qty %d", inventory.ErrInvalidTransaction, tx.TxID, tx.Qty)
		}
	}
	if products == nil {
		products = []inventory.Product{}
	}
	if txs == nil {
		txs = []inventory.Transaction{}
	}
	return Frames{Products: products, Transactions: txs}, nil
}

func (f Frames) ofKind(kind inventory.Kind) []inventory.Transaction {
	out := make([]inventory.Transaction, 0, len(f.Transactions))
	for _, tx := range f.Transactions {
		if tx.Kind == kind {
			out = append(out, tx)
		}
	}
	return out
}

func (f Frames) catalog() map[string]inventory.Product {
	index := make(map[string]inventory.Product, len(f.Products))
	for _, p := range f.Products {
		index[p.ProductID] = p
	}
	return index
}

// qtyByProduct sums quantities per product id for txs.
func qtyByProduct(txs []inventory.Transaction) map[string]int64 {
	sums := make(map[string]int64)
	for _, tx := range txs {
		sums[tx.ProductID] += tx.Qty
	}
	return sums
}
