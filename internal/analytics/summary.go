package analytics

import (
	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/retail-inventory/internal/inventory"
)

// SalesTotals is the global sales summary. An empty ledger yields zeros.
type SalesTotals struct {
	TotalSales   int64   `json:"total_sales"`
	TotalRevenue float64 `json:"total_revenue"`
}

// PurchaseTotals is the global purchase summary.
type PurchaseTotals struct {
	TotalPurchases   int64   `json:"total_purchases"`
	TotalExpenditure float64 `json:"total_expenditure"`
}

// SalesSummary totals units sold and revenue as the sum of qty*unit_price.
func SalesSummary(f Frames) SalesTotals {
	qty, amount := totals(f.ofKind(inventory.KindSale))
	return SalesTotals{TotalSales: qty, TotalRevenue: toFloat(amount)}
}

// PurchaseSummary totals units bought and expenditure.
func PurchaseSummary(f Frames) PurchaseTotals {
	qty, amount := totals(f.ofKind(inventory.KindPurchase))
	return PurchaseTotals{TotalPurchases: qty, TotalExpenditure: toFloat(amount)}
}

func totals(txs []inventory.Transaction) (int64, decimal.Decimal) {
	var qty int64
	amount := decimal.Zero
	for _, tx := range txs {
		qty += tx.Qty
		amount = amount.Add(lineAmount(tx.Qty, tx.UnitPrice))
	}
	return qty, amount
}
