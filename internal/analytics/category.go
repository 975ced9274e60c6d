package analytics

import (
	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/retail-inventory/internal/inventory"
)

// CategoryRow aggregates sales for one product category.
type CategoryRow struct {
	Category     string  `json:"category"`
	TotalSales   int64   `json:"total_sales"`
	TotalRevenue float64 `json:"total_revenue"`
}

// SupplierRow aggregates purchased units for one supplier.
type SupplierRow struct {
	Supplier       string `json:"supplier"`
	TotalPurchased int64  `json:"total_purchased"`
}

type bucket struct {
	qty    int64
	amount decimal.Decimal
}

// CategoryPerformance groups sales by the category of their product. Each sale
// is keyed first, then qty*unit_price is summed inside every group.
func CategoryPerformance(f Frames) []CategoryRow {
	catalog := f.catalog()
	groups := make(map[string]*bucket)
	for _, tx := range f.ofKind(inventory.KindSale) {
		key := bucketOf(catalog[tx.ProductID].Category)
		b, ok := groups[key]
		if !ok {
			b = &bucket{amount: decimal.Zero}
			groups[key] = b
		}
		b.qty += tx.Qty
		b.amount = b.amount.Add(lineAmount(tx.Qty, tx.UnitPrice))
	}
	rows := make([]CategoryRow, 0, len(groups))
	for _, key := range sortedBuckets(groups) {
		b := groups[key]
		rows = append(rows, CategoryRow{Category: key, TotalSales: b.qty, TotalRevenue: toFloat(b.amount)})
	}
	return rows
}

// SupplierPerformance groups purchased units by the supplier of their product.
func SupplierPerformance(f Frames) []SupplierRow {
	catalog := f.catalog()
	groups := make(map[string]int64)
	for _, tx := range f.ofKind(inventory.KindPurchase) {
		groups[bucketOf(catalog[tx.ProductID].Supplier)] += tx.Qty
	}
	rows := make([]SupplierRow, 0, len(groups))
	for _, key := range sortedBuckets(groups) {
		rows = append(rows, SupplierRow{Supplier: key, TotalPurchased: groups[key]})
	}
	return rows
}
