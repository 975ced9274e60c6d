package analytics

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/retail-inventory/internal/inventory"
)

func sale(id, product string, qty int64, price float64, ts time.Time) inventory.Transaction {
	return inventory.Transaction{TxID: id, TS: ts, ProductID: product, Kind: inventory.KindSale, Qty: qty, UnitPrice: price}
}

func purchase(id, product string, qty int64, price float64, ts time.Time) inventory.Transaction {
	return inventory.Transaction{TxID: id, TS: ts, ProductID: product, Kind: inventory.KindPurchase, Qty: qty, UnitPrice: price}
}

func mustFrames(t *testing.T, products []inventory.Product, txs []inventory.Transaction) Frames {
	t.Helper()
	f, err := NewFrames(products, txs)
	require.NoError(t, err)
	return f
}

var jan = time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)

func hardwareFrames(t *testing.T) Frames {
	products := []inventory.Product{
		{ProductID: "P1", Name: "Hammer", Category: "Tools", UnitPrice: 250, Supplier: "Ace Hardware", ReorderLevel: 5, QtyInitial: 20},
		{ProductID: "P2", Name: "Screwdriver", Category: "Tools", UnitPrice: 120, Supplier: "Ace Hardware", ReorderLevel: 10, QtyInitial: 8},
		{ProductID: "P3", Name: "Paint", Category: "", UnitPrice: 500, Supplier: "", ReorderLevel: 3, QtyInitial: 2},
		{ProductID: "P4", Name: "Drill", Category: "Power Tools", UnitPrice: 3000, Supplier: "Bosch", ReorderLevel: 2, QtyInitial: 4},
	}
	txs := []inventory.Transaction{
		sale("T1", "P1", 4, 260, jan),
		sale("T2", "P2", 4, 110, jan.AddDate(0, 0, 1)),
		purchase("T3", "P1", 10, 200, jan.AddDate(0, 0, 2)),
		sale("T4", "P3", 1, 520, jan.AddDate(0, 1, 0)),
		purchase("T5", "P4", 2, 2500, jan.AddDate(0, 1, 3)),
		sale("T6", "GHOST", 2, 99, jan.AddDate(0, 2, 0)),
		purchase("T7", "P3", 6, 400, jan.AddDate(0, 2, 1)),
		sale("T8", "P1", 1, 240, jan.AddDate(0, 2, 2)),
	}
	return mustFrames(t, products, txs)
}

func TestWorkedExample(t *testing.T) {
	f := mustFrames(t,
		[]inventory.Product{{ProductID: "P1", Name: "Hammer", QtyInitial: 10, ReorderLevel: 5}},
		[]inventory.Transaction{sale("T1", "P1", 3, 100, jan), purchase("T2", "P1", 5, 80, jan)},
	)
	rows := InventoryState(f)
	require.Len(t, rows, 1)
	require.Equal(t, int64(12), rows[0].QtyOnStock)
	require.False(t, rows[0].LowStock)
	require.Equal(t, SalesTotals{TotalSales: 3, TotalRevenue: 300}, SalesSummary(f))
	require.Equal(t, PurchaseTotals{TotalPurchases: 5, TotalExpenditure: 400}, PurchaseSummary(f))
}

func TestInventoryStateInvariants(t *testing.T) {
	f := hardwareFrames(t)
	rows := InventoryState(f)
	require.Len(t, rows, len(f.Products))

	touched := map[string]bool{}
	for _, tx := range f.Transactions {
		touched[tx.ProductID] = true
	}
	for i, row := range rows {
		p := f.Products[i]
		require.Equal(t, p.ProductID, row.ProductID, "catalog order")
		require.Equal(t, p.QtyInitial+row.InQty-row.OutQty, row.QtyOnStock)
		require.Equal(t, row.QtyOnStock <= p.ReorderLevel, row.LowStock)
		if !touched[p.ProductID] {
			require.Equal(t, p.QtyInitial, row.QtyOnStock)
		}
	}

	require.Equal(t, int64(10), rows[0].InQty)
	require.Equal(t, int64(5), rows[0].OutQty)
	require.Equal(t, int64(25), rows[0].QtyOnStock)
	require.Equal(t, int64(4), rows[1].QtyOnStock)
	require.True(t, rows[1].LowStock)
	require.Equal(t, int64(7), rows[2].QtyOnStock)
}

func TestInventoryStateEmptyLedger(t *testing.T) {
	f := mustFrames(t, []inventory.Product{
		{ProductID: "A", Name: "Nails", QtyInitial: 3, ReorderLevel: 3},
		{ProductID: "B", Name: "Glue", QtyInitial: 9, ReorderLevel: 1},
	}, nil)
	rows := InventoryState(f)
	require.Len(t, rows, 2)
	require.Equal(t, int64(3), rows[0].QtyOnStock)
	require.True(t, rows[0].LowStock)
	require.Equal(t, int64(9), rows[1].QtyOnStock)
	require.False(t, rows[1].LowStock)

	low := LowStock(rows)
	require.Len(t, low, 1)
	require.Equal(t, "A", low[0].ProductID)
}

func TestInventoryStateAllowsNegativeStock(t *testing.T) {
	f := mustFrames(t,
		[]inventory.Product{{ProductID: "P1", Name: "Hammer", QtyInitial: 1}},
		[]inventory.Transaction{sale("T1", "P1", 3, 10, jan)},
	)
	rows := InventoryState(f)
	require.Equal(t, int64(-2), rows[0].QtyOnStock)
	require.True(t, rows[0].LowStock)
}

func TestEmptyLedgerReports(t *testing.T) {
	f := mustFrames(t, []inventory.Product{{ProductID: "P1", Name: "Hammer"}}, nil)

	require.NotNil(t, TopSellers(f, 5))
	require.Empty(t, TopSellers(f, 5))
	require.Equal(t, SalesTotals{}, SalesSummary(f))
	require.Equal(t, PurchaseTotals{}, PurchaseSummary(f))
	require.NotNil(t, CategoryPerformance(f))
	require.Empty(t, CategoryPerformance(f))
	require.NotNil(t, SupplierPerformance(f))
	require.Empty(t, SupplierPerformance(f))
	require.NotNil(t, MonthlySalesTrend(f))
	require.Empty(t, MonthlySalesTrend(f))
	require.NotNil(t, MonthlyPurchaseTrend(f))
	require.Empty(t, MonthlyPurchaseTrend(f))

	margins := ProfitMargin(f)
	require.Len(t, margins, 1)
	require.Nil(t, margins[0].ProfitMargin)

	raw, err := json.Marshal(TopSellers(f, 5))
	require.NoError(t, err)
	require.JSONEq(t, `[]`, string(raw))
}

func TestTopSellers(t *testing.T) {
	f := mustFrames(t, nil, []inventory.Transaction{
		sale("T1", "B", 5, 1, jan),
		sale("T2", "A", 5, 1, jan),
		sale("T3", "C", 2, 1, jan),
		sale("T4", "C", 4, 1, jan),
		sale("T5", "D", 1, 1, jan),
		purchase("T6", "E", 50, 1, jan),
	})

	top := TopSellers(f, 3)
	require.Equal(t, []SellerRow{{"C", 6}, {"A", 5}, {"B", 5}}, top)

	for _, n := range []int{1, 2, 4, 10} {
		rows := TopSellers(f, n)
		require.Len(t, rows, min(n, 4))
		for i := 1; i < len(rows); i++ {
			prev, cur := rows[i-1], rows[i]
			require.True(t, prev.QtySold > cur.QtySold || (prev.QtySold == cur.QtySold && prev.ProductID < cur.ProductID))
		}
	}
	require.Empty(t, TopSellers(f, 0))
	require.Empty(t, TopSellers(f, -1))
}

func TestSalesRevenueIndependentOfOrder(t *testing.T) {
	var txs []inventory.Transaction
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 200; i++ {
		price := float64(rng.Intn(100000)) / 100
		txs = append(txs, sale(fmt.Sprintf("T%03d", i), "P1", int64(1+rng.Intn(9)), price, jan))
	}
	want := SalesSummary(mustFrames(t, nil, txs))

	for round := 0; round < 5; round++ {
		shuffled := append([]inventory.Transaction(nil), txs...)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
		require.Equal(t, want, SalesSummary(mustFrames(t, nil, shuffled)))
	}
}

func TestCategoryPerformance(t *testing.T) {
	f := mustFrames(t,
		[]inventory.Product{
			{ProductID: "H", Name: "Hammer", Category: "Tools"},
			{ProductID: "W", Name: "Wrench", Category: "Tools"},
		},
		[]inventory.Transaction{sale("T1", "H", 3, 50, jan), sale("T2", "W", 7, 50, jan)},
	)
	require.Equal(t, []CategoryRow{{Category: "Tools", TotalSales: 10, TotalRevenue: 500}}, CategoryPerformance(f))
}

func TestLiteralUnknownCategorySharesBucket(t *testing.T) {
	f := mustFrames(t,
		[]inventory.Product{
			{ProductID: "P1", Name: "Mystery Box", Category: UnknownBucket, Supplier: UnknownBucket},
			{ProductID: "P2", Name: "Loose Screws"},
		},
		[]inventory.Transaction{
			sale("T1", "P1", 2, 10, jan),
			sale("T2", "P2", 1, 5, jan),
			purchase("T3", "P1", 4, 3, jan),
			purchase("T4", "P2", 1, 1, jan),
		},
	)
	require.Equal(t, []CategoryRow{{Category: UnknownBucket, TotalSales: 3, TotalRevenue: 25}}, CategoryPerformance(f))
	require.Equal(t, []SupplierRow{{Supplier: UnknownBucket, TotalPurchased: 5}}, SupplierPerformance(f))
}

func TestCategoryRevenueUsesPerTransactionPrice(t *testing.T) {
	f := mustFrames(t,
		[]inventory.Product{{ProductID: "H", Name: "Hammer", Category: "Tools"}},
		[]inventory.Transaction{sale("T1", "H", 1, 100, jan), sale("T2", "H", 9, 10, jan)},
	)
	rows := CategoryPerformance(f)
	require.Len(t, rows, 1)
	require.InDelta(t, 190.0, rows[0].TotalRevenue, 1e-9)
}

func TestUnknownBucket(t *testing.T) {
	f := hardwareFrames(t)

	categories := CategoryPerformance(f)
	require.Equal(t, []CategoryRow{
		{Category: "Tools", TotalSales: 9, TotalRevenue: 1040 + 440 + 240},
		{Category: UnknownBucket, TotalSales: 3, TotalRevenue: 520 + 198},
	}, categories)

	suppliers := SupplierPerformance(f)
	require.Equal(t, []SupplierRow{
		{Supplier: "Ace Hardware", TotalPurchased: 10},
		{Supplier: "Bosch", TotalPurchased: 2},
		{Supplier: UnknownBucket, TotalPurchased: 6},
	}, suppliers)
}

func TestMonthlyTrends(t *testing.T) {
	f := hardwareFrames(t)

	sales := MonthlySalesTrend(f)
	require.Len(t, sales, 3)
	require.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), sales[0].Month)
	require.Equal(t, int64(8), sales[0].TotalSales)
	require.InDelta(t, 1480.0, sales[0].TotalRevenue, 1e-9)
	require.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), sales[1].Month)
	require.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), sales[2].Month)
	require.InDelta(t, 198.0+240.0, sales[2].TotalRevenue, 1e-9)

	purchases := MonthlyPurchaseTrend(f)
	require.Len(t, purchases, 3)
	require.Equal(t, int64(10), purchases[0].TotalPurchases)
	require.InDelta(t, 5000.0, purchases[1].TotalExpenditure, 1e-9)
	require.InDelta(t, 2400.0, purchases[2].TotalExpenditure, 1e-9)
}

func TestMonthBucketsInUTC(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)
	early := time.Date(2024, 3, 1, 0, 30, 0, 0, ist)
	f := mustFrames(t, nil, []inventory.Transaction{
		sale("T1", "P1", 1, 10, early),
		purchase("T2", "P1", 2, 5, time.Date(2024, 3, 1, 0, 30, 0, 0, time.UTC).In(ist)),
	})

	sales := MonthlySalesTrend(f)
	require.Len(t, sales, 1)
	require.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), sales[0].Month)

	purchases := MonthlyPurchaseTrend(f)
	require.Len(t, purchases, 1)
	require.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), purchases[0].Month)
}

func TestProfitMargin(t *testing.T) {
	f := mustFrames(t,
		[]inventory.Product{
			{ProductID: "P1", Name: "Hammer"},
			{ProductID: "P2", Name: "Saw"},
			{ProductID: "P3", Name: "Level"},
		},
		[]inventory.Transaction{
			sale("T1", "P1", 1, 300, jan),
			sale("T2", "P1", 10, 200, jan),
			purchase("T3", "P1", 100, 150, jan),
			sale("T4", "P2", 1, 90, jan),
			purchase("T5", "GHOST", 1, 10, jan),
		},
	)
	rows := ProfitMargin(f)
	require.Len(t, rows, 3)
	require.Equal(t, "P1", rows[0].ProductID)
	require.Equal(t, "Hammer", rows[0].Name)
	require.NotNil(t, rows[0].ProfitMargin)
	require.InDelta(t, 100.0, *rows[0].ProfitMargin, 1e-9)
	require.Nil(t, rows[1].ProfitMargin)
	require.Nil(t, rows[2].ProfitMargin)
}

func TestReportsAreIdempotent(t *testing.T) {
	f := hardwareFrames(t)
	render := func() []byte {
		raw, err := json.Marshal(struct {
			Dashboard Dashboard
			Sales     []SalesTrendPoint
			Purchases []PurchaseTrendPoint
			Suppliers []SupplierRow
			Margins   []MarginRow
		}{
			BuildDashboard(f, 3),
			MonthlySalesTrend(f),
			MonthlyPurchaseTrend(f),
			SupplierPerformance(f),
			ProfitMargin(f),
		})
		require.NoError(t, err)
		return raw
	}
	require.Equal(t, render(), render())
}

func TestNewFramesRejectsMalformedInput(t *testing.T) {
	_, err := NewFrames(nil, []inventory.Transaction{{TxID: "T1", ProductID: "P1", Kind: "return", Qty: 1}})
	require.ErrorIs(t, err, inventory.ErrInvalidTransaction)

	_, err = NewFrames(nil, []inventory.Transaction{{TxID: "T1", ProductID: "P1", Kind: inventory.KindSale, Qty: 0}})
	require.ErrorIs(t, err, inventory.ErrInvalidTransaction)

	_, err = NewFrames([]inventory.Product{{ProductID: "P1"}, {ProductID: "P1"}}, nil)
	require.ErrorIs(t, err, inventory.ErrInvalidProduct)

	f, err := NewFrames(nil, nil)
	require.NoError(t, err)
	require.NotNil(t, f.Products)
	require.NotNil(t, f.Transactions)
}
