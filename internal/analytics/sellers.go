package analytics

import (
	"sort"

	"github.com/odyssey-erp/retail-inventory/internal/inventory"
)

// SellerRow is the quantity sold for one product.
type SellerRow struct {
	ProductID string `json:"product_id"`
	QtySold   int64  `json:"qty_sold"`
}

// TopSellers ranks products by units sold, highest first, ties broken by
// product id ascending. Orphan product ids are ranked like any other.
func TopSellers(f Frames, n int) []SellerRow {
	if n <= 0 {
		return []SellerRow{}
	}
	sold := qtyByProduct(f.ofKind(inventory.KindSale))
	rows := make([]SellerRow, 0, len(sold))
	for id, qty := range sold {
		rows = append(rows, SellerRow{ProductID: id, QtySold: qty})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].QtySold != rows[j].QtySold {
			return rows[i].QtySold > rows[j].QtySold
		}
		return rows[i].ProductID < rows[j].ProductID
	})
	if len(rows) > n {
		rows = rows[:n]
	}
	return rows
}
