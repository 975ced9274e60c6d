package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/retail-inventory/internal/platform/db"
	"github.com/odyssey-erp/retail-inventory/internal/platform/httpx"
)

// Repository persists the catalog and the ledger in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

var errRepositoryNotInitialised = errors.New("inventory repository not initialised")

const productColumns = `product_id, name, COALESCE(category, '') AS category, unit_price::float8 AS unit_price,
COALESCE(supplier, '') AS supplier, reorder_level::int8 AS reorder_level, qty_initial::int8 AS qty_initial`

const transactionColumns = `tx_id, ts, product_id, kind::text AS kind, qty::int8 AS qty,
unit_price::float8 AS unit_price, COALESCE(note, '') AS note`

const upsertProductSQL = `INSERT INTO products (product_id, name, category, unit_price, supplier, reorder_level, qty_initial)
VALUES ($1, $2, NULLIF($3, ''), $4, NULLIF($5, ''), $6, $7)
ON CONFLICT (product_id) DO UPDATE SET
	name = EXCLUDED.name,
	category = EXCLUDED.category,
	unit_price = EXCLUDED.unit_price,
	supplier = EXCLUDED.supplier,
	reorder_level = EXCLUDED.reorder_level,
	qty_initial = EXCLUDED.qty_initial`

const upsertTransactionSQL = `INSERT INTO transactions (tx_id, ts, product_id, kind, qty, unit_price, note)
VALUES ($1, $2, $3, $4::tx_kind, $5, $6, NULLIF($7, ''))
ON CONFLICT (tx_id) DO UPDATE SET
	ts = EXCLUDED.ts,
	product_id = EXCLUDED.product_id,
	kind = EXCLUDED.kind,
	qty = EXCLUDED.qty,
	unit_price = EXCLUDED.unit_price,
	note = EXCLUDED.note`

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// LoadProducts returns the whole catalog ordered by product id.
func (r *Repository) LoadProducts(ctx context.Context) ([]Product, error) {
	if r == nil || r.pool == nil {
		return nil, errRepositoryNotInitialised
	}
	return loadProducts(ctx, r.pool)
}

// LoadTransactions returns the whole ledger ordered by timestamp then id.
func (r *Repository) LoadTransactions(ctx context.Context) ([]Transaction, error) {
	if r == nil || r.pool == nil {
		return nil, errRepositoryNotInitialised
	}
	return loadTransactions(ctx, r.pool)
}

// LoadSnapshot reads catalog and ledger inside one repeatable-read transaction.
func (r *Repository) LoadSnapshot(ctx context.Context) ([]Product, []Transaction, error) {
	if r == nil || r.pool == nil {
		return nil, nil, errRepositoryNotInitialised
	}
	var (
		products []Product
		txs      []Transaction
	)
	err := db.WithSnapshot(ctx, r.pool, func(tx pgx.Tx) error {
		var err error
		if products, err = loadProducts(ctx, tx); err != nil {
			return err
		}
		txs, err = loadTransactions(ctx, tx)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return products, txs, nil
}

// GetProduct fetches a single product.
func (r *Repository) GetProduct(ctx context.Context, productID string) (Product, error) {
	if r == nil || r.pool == nil {
		return Product{}, errRepositoryNotInitialised
	}
	rows, err := r.pool.Query(ctx, `SELECT `+productColumns+` FROM products WHERE product_id = $1`, productID)
	if err != nil {
		return Product{}, fmt.Errorf("inventory: query product: %w", err)
	}
	product, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[Product])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, fmt.Errorf("%w: %w: %s", httpx.ErrNotFound, ErrProductNotFound, productID)
		}
		return Product{}, fmt.Errorf("inventory: scan product: %w", err)
	}
	return product, nil
}

// UpsertProduct inserts or replaces a product keyed on product_id.
func (r *Repository) UpsertProduct(ctx context.Context, p Product) error {
	if r == nil || r.pool == nil {
		return errRepositoryNotInitialised
	}
	_, err := r.pool.Exec(ctx, upsertProductSQL, p.ProductID, p.Name, p.Category, p.UnitPrice, p.Supplier, p.ReorderLevel, p.QtyInitial)
	if err != nil {
		return fmt.Errorf("inventory: upsert product %s: %w", p.ProductID, err)
	}
	return nil
}

// UpsertTransaction inserts or replaces a ledger entry keyed on tx_id.
func (r *Repository) UpsertTransaction(ctx context.Context, t Transaction) error {
	if r == nil || r.pool == nil {
		return errRepositoryNotInitialised
	}
	_, err := r.pool.Exec(ctx, upsertTransactionSQL, t.TxID, t.TS, t.ProductID, string(t.Kind), t.Qty, t.UnitPrice, t.Note)
	if err != nil {
		return fmt.Errorf("inventory: upsert transaction %s: %w", t.TxID, err)
	}
	return nil
}

// Import upserts products and transactions in a single database transaction.
func (r *Repository) Import(ctx context.Context, products []Product, txs []Transaction) error {
	if r == nil || r.pool == nil {
		return errRepositoryNotInitialised
	}
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, p := range products {
			batch.Queue(upsertProductSQL, p.ProductID, p.Name, p.Category, p.UnitPrice, p.Supplier, p.ReorderLevel, p.QtyInitial)
		}
		for _, t := range txs {
			batch.Queue(upsertTransactionSQL, t.TxID, t.TS, t.ProductID, string(t.Kind), t.Qty, t.UnitPrice, t.Note)
		}
		if batch.Len() == 0 {
			return nil
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("inventory: import batch: %w", err)
		}
		return nil
	})
}

// Reset removes every transaction and product.
func (r *Repository) Reset(ctx context.Context) error {
	if r == nil || r.pool == nil {
		return errRepositoryNotInitialised
	}
	if _, err := r.pool.Exec(ctx, `TRUNCATE transactions, products`); err != nil {
		return fmt.Errorf("inventory: reset: %w", err)
	}
	return nil
}

func loadProducts(ctx context.Context, q querier) ([]Product, error) {
	rows, err := q.Query(ctx, `SELECT `+productColumns+` FROM products ORDER BY product_id`)
	if err != nil {
		return nil, fmt.Errorf("inventory: query products: %w", err)
	}
	products, err := pgx.CollectRows(rows, pgx.RowToStructByName[Product])
	if err != nil {
		return nil, fmt.Errorf("inventory: scan products: %w", err)
	}
	if products == nil {
		products = []Product{}
	}
	return products, nil
}

func loadTransactions(ctx context.Context, q querier) ([]Transaction, error) {
	rows, err := q.Query(ctx, `SELECT `+transactionColumns+` FROM transactions ORDER BY ts, tx_id`)
	if err != nil {
		return nil, fmt.Errorf("inventory: query transactions: %w", err)
	}
	txs, err := pgx.CollectRows(rows, pgx.RowToStructByName[Transaction])
	if err != nil {
		return nil, fmt.Errorf("inventory: scan transactions: %w", err)
	}
	if txs == nil {
		txs = []Transaction{}
	}
	return txs, nil
}
