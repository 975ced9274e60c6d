package analytics

import "github.com/odyssey-erp/retail-inventory/internal/inventory"

// InventoryRow is the derived stock position of one catalog product.
type InventoryRow struct {
	ProductID    string  `json:"product_id"`
	Name         string  `json:"name"`
	Category     string  `json:"category"`
	UnitPrice    float64 `json:"unit_price"`
	Supplier     string  `json:"supplier"`
	ReorderLevel int64   `json:"reorder_level"`
	QtyInitial   int64   `json:"qty_initial"`
	InQty        int64   `json:"in_qty"`
	OutQty       int64   `json:"out_qty"`
	QtyOnStock   int64   `json:"qty_on_stock"`
	LowStock     bool    `json:"low_stock"`
}

// InventoryState derives one row per catalog product, in catalog order.
// Products without movements keep their initial quantity; stock may go
// negative when sales exceed supply.
func InventoryState(f Frames) []InventoryRow {
	in := qtyByProduct(f.ofKind(inventory.KindPurchase))
	out := qtyByProduct(f.ofKind(inventory.KindSale))

	rows := make([]InventoryRow, 0, len(f.Products))
	for _, p := range f.Products {
		onStock := p.QtyInitial + in[p.ProductID] - out[p.ProductID]
		rows = append(rows, InventoryRow{
			ProductID:    p.ProductID,
			Name:         p.Name,
			Category:     p.Category,
			UnitPrice:    p.UnitPrice,
			Supplier:     p.Supplier,
			ReorderLevel: p.ReorderLevel,
			QtyInitial:   p.QtyInitial,
			InQty:        in[p.ProductID],
			OutQty:       out[p.ProductID],
			QtyOnStock:   onStock,
			LowStock:     onStock <= p.ReorderLevel,
		})
	}
	return rows
}

// LowStock keeps the rows at or below their reorder level.
func LowStock(rows []InventoryRow) []InventoryRow {
	low := make([]InventoryRow, 0)
	for _, row := range rows {
		if row.LowStock {
			low = append(low, row)
		}
	}
	return low
}
