package analytics

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/retail-inventory/internal/inventory"
)

// SalesTrendPoint conveys sales volume and revenue for one calendar month.
type SalesTrendPoint struct {
	Month        time.Time `json:"month"`
	TotalSales   int64     `json:"total_sales"`
	TotalRevenue float64   `json:"total_revenue"`
}

// PurchaseTrendPoint conveys purchase volume and expenditure for one month.
type PurchaseTrendPoint struct {
	Month            time.Time `json:"month"`
	TotalPurchases   int64     `json:"total_purchases"`
	TotalExpenditure float64   `json:"total_expenditure"`
}

// MonthlySalesTrend buckets sales by calendar month, ascending.
func MonthlySalesTrend(f Frames) []SalesTrendPoint {
	months, groups := monthly(f.ofKind(inventory.KindSale))
	points := make([]SalesTrendPoint, 0, len(months))
	for _, m := range months {
		b := groups[m]
		points = append(points, SalesTrendPoint{Month: m, TotalSales: b.qty, TotalRevenue: toFloat(b.amount)})
	}
	return points
}

// MonthlyPurchaseTrend buckets purchases by calendar month, ascending.
func MonthlyPurchaseTrend(f Frames) []PurchaseTrendPoint {
	months, groups := monthly(f.ofKind(inventory.KindPurchase))
	points := make([]PurchaseTrendPoint, 0, len(months))
	for _, m := range months {
		b := groups[m]
		points = append(points, PurchaseTrendPoint{Month: m, TotalPurchases: b.qty, TotalExpenditure: toFloat(b.amount)})
	}
	return points
}

func monthly(txs []inventory.Transaction) ([]time.Time, map[time.Time]*bucket) {
	groups := make(map[time.Time]*bucket)
	for _, tx := range txs {
		m := monthStart(tx.TS)
		b, ok := groups[m]
		if !ok {
			b = &bucket{amount: decimal.Zero}
			groups[m] = b
		}
		b.qty += tx.Qty
		b.amount = b.amount.Add(lineAmount(tx.Qty, tx.UnitPrice))
	}
	months := make([]time.Time, 0, len(groups))
	for m := range groups {
		months = append(months, m)
	}
	sort.Slice(months, func(i, j int) bool { return months[i].Before(months[j]) })
	return months, groups
}
