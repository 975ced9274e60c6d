package analytics

import (
	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/retail-inventory/internal/inventory"
)

// MarginRow estimates the unit margin of one catalog product. ProfitMargin is
// nil when the product has no sale or no purchase on record.
type MarginRow struct {
	ProductID    string   `json:"product_id"`
	Name         string   `json:"name"`
	ProfitMargin *float64 `json:"profit_margin"`
}

// ProfitMargin reports mean sale price minus mean purchase price per product.
// Means are unweighted by quantity.
func ProfitMargin(f Frames) []MarginRow {
	sale := meanPrice(f.ofKind(inventory.KindSale))
	purchase := meanPrice(f.ofKind(inventory.KindPurchase))

	rows := make([]MarginRow, 0, len(f.Products))
	for _, p := range f.Products {
		row := MarginRow{ProductID: p.ProductID, Name: p.Name}
		s, okSale := sale[p.ProductID]
		c, okPurchase := purchase[p.ProductID]
		if okSale && okPurchase {
			margin := toFloat(s.Sub(c))
			row.ProfitMargin = &margin
		}
		rows = append(rows, row)
	}
	return rows
}

func meanPrice(txs []inventory.Transaction) map[string]decimal.Decimal {
	sums := make(map[string]decimal.Decimal)
	counts := make(map[string]int64)
	for _, tx := range txs {
		sum, ok := sums[tx.ProductID]
		if !ok {
			sum = decimal.Zero
		}
		sums[tx.ProductID] = sum.Add(decimal.NewFromFloat(tx.UnitPrice))
		counts[tx.ProductID]++
	}
	means := make(map[string]decimal.Decimal, len(sums))
	for id, sum := range sums {
		means[id] = sum.Div(decimal.NewFromInt(counts[id]))
	}
	return means
}
