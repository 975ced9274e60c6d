package inventory

import (
	"errors"
	"strings"
	"time"
)

// Kind enumerates the ledger movements the tracker records.
type Kind string

const (
	// KindSale removes stock.
	KindSale Kind = "sale"
	// KindPurchase adds stock.
	KindPurchase Kind = "purchase"
)

// Valid reports whether k is a supported movement.
func (k Kind) Valid() bool {
	return k == KindSale || k == KindPurchase
}

// Product is the master record keyed by ProductID. Category and Supplier are
// optional; an empty string means the attribute is absent.
type Product struct {
	ProductID    string  `json:"product_id" db:"product_id" validate:"required,max=64"`
	Name         string  `json:"name" db:"name" validate:"required,max=200"`
	Category     string  `json:"category" db:"category" validate:"max=120"`
	UnitPrice    float64 `json:"unit_price" db:"unit_price" validate:"gte=0"`
	Supplier     string  `json:"supplier" db:"supplier" validate:"max=120"`
	ReorderLevel int64   `json:"reorder_level" db:"reorder_level" validate:"gte=0"`
	QtyInitial   int64   `json:"qty_initial" db:"qty_initial" validate:"gte=0"`
}

// Transaction is a single ledger entry. ProductID is not checked against the
// catalog; orphan references are tolerated by every consumer.
type Transaction struct {
	TxID      string    `json:"tx_id" db:"tx_id" validate:"required,max=64"`
	TS        time.Time `json:"ts" db:"ts" validate:"required"`
	ProductID string    `json:"product_id" db:"product_id" validate:"required,max=64"`
	Kind      Kind      `json:"kind" db:"kind" validate:"required,oneof=sale purchase"`
	Qty       int64     `json:"qty" db:"qty" validate:"gte=1"`
	UnitPrice float64   `json:"unit_price" db:"unit_price" validate:"gte=0"`
	Note      string    `json:"note" db:"note"`
}

// Normalize trims surrounding whitespace from the textual fields.
func (p Product) Normalize() Product {
	p.ProductID = strings.TrimSpace(p.ProductID)
	p.Name = strings.TrimSpace(p.Name)
	p.Category = strings.TrimSpace(p.Category)
	p.Supplier = strings.TrimSpace(p.Supplier)
	return p
}

// Normalize trims identifiers and lower-cases the kind.
func (t Transaction) Normalize() Transaction {
	t.TxID = strings.TrimSpace(t.TxID)
	t.ProductID = strings.TrimSpace(t.ProductID)
	t.Kind = Kind(strings.ToLower(strings.TrimSpace(string(t.Kind))))
	t.Note = strings.TrimSpace(t.Note)
	return t
}

var (
	// ErrInvalidProduct marks a product that failed validation.
	ErrInvalidProduct = errors.New("inventory: invalid product")
	// ErrInvalidTransaction marks a transaction that failed validation.
	ErrInvalidTransaction = errors.New("inventory: invalid transaction")
	// ErrProductNotFound indicates a lookup for an unknown product id.
	ErrProductNotFound = errors.New("inventory: product not found")
)
