package analytics

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/odyssey-erp/retail-inventory/internal/inventory"
	"github.com/odyssey-erp/retail-inventory/internal/platform/httpx"
)

type mockLoader struct {
	mu        sync.Mutex
	products  []inventory.Product
	txs       []inventory.Transaction
	err       error
	loadCalls int
}

func (m *mockLoader) LoadProducts(ctx context.Context) ([]inventory.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loadCalls++
	return m.products, m.err
}

func (m *mockLoader) LoadTransactions(ctx context.Context) ([]inventory.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.txs, nil
}

func (m *mockLoader) addTx(tx inventory.Transaction) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.txs = append(m.txs, tx)
}

func (m *mockLoader) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loadCalls
}

type snapshotLoader struct {
	*mockLoader
	snapshots int
}

func (s *snapshotLoader) LoadSnapshot(ctx context.Context) ([]inventory.Product, []inventory.Transaction, error) {
	s.snapshots++
	return s.products, s.txs, nil
}

// gatedLoader holds its first ledger read open until release is closed. The
// ledger is read before blocking, so that load sees the data as it was when
// it started.
type gatedLoader struct {
	*mockLoader
	once    sync.Once
	started chan struct{}
	release chan struct{}
}

func newGatedLoader(inner *mockLoader) *gatedLoader {
	return &gatedLoader{mockLoader: inner, started: make(chan struct{}), release: make(chan struct{})}
}

func (g *gatedLoader) LoadTransactions(ctx context.Context) ([]inventory.Transaction, error) {
	txs, err := g.mockLoader.LoadTransactions(ctx)
	first := false
	g.once.Do(func() { first = true })
	if first {
		close(g.started)
		<-g.release
	}
	return txs, err
}

func newTestService(t *testing.T, loader Loader) (*Service, func()) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := NewCache(client, time.Minute)
	svc := NewService(loader, cache)
	return svc, func() {
		_ = client.Close()
		mr.Close()
	}
}

func workedExampleLoader() *mockLoader {
	return &mockLoader{
		products: []inventory.Product{{ProductID: "P1", Name: "Hammer", Category: "Tools", QtyInitial: 10, ReorderLevel: 5}},
		txs: []inventory.Transaction{
			{TxID: "T1", TS: time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), ProductID: "P1", Kind: inventory.KindSale, Qty: 3, UnitPrice: 100},
			{TxID: "T2", TS: time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC), ProductID: "P1", Kind: inventory.KindPurchase, Qty: 5, UnitPrice: 80},
		},
	}
}

func TestGetSalesSummaryCaches(t *testing.T) {
	loader := workedExampleLoader()
	svc, cleanup := newTestService(t, loader)
	defer cleanup()

	ctx := context.Background()
	summary, err := svc.GetSalesSummary(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.TotalSales != 3 || summary.TotalRevenue != 300 {
		t.Fatalf("unexpected summary %+v", summary)
	}
	if loader.calls() != 1 {
		t.Fatalf("expected 1 load, got %d", loader.calls())
	}

	// Second call should hit cache.
	if _, err := svc.GetSalesSummary(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loader.calls() != 1 {
		t.Fatalf("expected cached result, loader called %d times", loader.calls())
	}

	// Bumping the cache should trigger reload.
	if err := svc.Bump(ctx); err != nil {
		t.Fatalf("bump failed: %v", err)
	}
	loader.txs = append(loader.txs, inventory.Transaction{TxID: "T3", ProductID: "P1", Kind: inventory.KindSale, Qty: 1, UnitPrice: 50})
	summary, err = svc.GetSalesSummary(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.TotalSales != 4 || summary.TotalRevenue != 350 {
		t.Fatalf("expected refreshed summary got %+v", summary)
	}
	if loader.calls() != 2 {
		t.Fatalf("expected loader to refresh, calls %d", loader.calls())
	}
}

func TestChangeEventInvalidatesCache(t *testing.T) {
	loader := workedExampleLoader()
	svc, cleanup := newTestService(t, loader)
	defer cleanup()

	ctx := context.Background()
	rows, err := svc.GetInventoryState(ctx)
	if err != nil {
		t.Fatalf("inventory error: %v", err)
	}
	if len(rows) != 1 || rows[0].QtyOnStock != 12 {
		t.Fatalf("unexpected rows %#v", rows)
	}

	var hook inventory.ChangeHandler = svc.cache
	if err := hook.HandleInventoryChanged(ctx, inventory.ChangedEvent{Kind: inventory.ChangeTransaction, ID: "T9"}); err != nil {
		t.Fatalf("hook failed: %v", err)
	}
	loader.txs = append(loader.txs, inventory.Transaction{TxID: "T9", ProductID: "P1", Kind: inventory.KindSale, Qty: 8, UnitPrice: 100})
	rows, err = svc.GetInventoryState(ctx)
	if err != nil {
		t.Fatalf("inventory error: %v", err)
	}
	if rows[0].QtyOnStock != 4 || !rows[0].LowStock {
		t.Fatalf("expected stock 4 and low stock, got %#v", rows[0])
	}
}

func TestCachedReportsKeepEmptyShape(t *testing.T) {
	loader := &mockLoader{products: []inventory.Product{{ProductID: "P1", Name: "Hammer"}}}
	svc, cleanup := newTestService(t, loader)
	defer cleanup()

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		top, err := svc.GetTopSellers(ctx, 5)
		if err != nil {
			t.Fatalf("top sellers error: %v", err)
		}
		if top == nil || len(top) != 0 {
			t.Fatalf("expected empty non-nil top sellers, got %#v", top)
		}
		trend, err := svc.GetMonthlySalesTrend(ctx)
		if err != nil {
			t.Fatalf("trend error: %v", err)
		}
		if trend == nil || len(trend) != 0 {
			t.Fatalf("expected empty non-nil trend, got %#v", trend)
		}
		margins, err := svc.GetProfitMargin(ctx)
		if err != nil {
			t.Fatalf("margin error: %v", err)
		}
		if len(margins) != 1 || margins[0].ProfitMargin != nil {
			t.Fatalf("expected one nil margin, got %#v", margins)
		}
	}
}

func TestTrendSurvivesCacheRoundTrip(t *testing.T) {
	loader := workedExampleLoader()
	svc, cleanup := newTestService(t, loader)
	defer cleanup()

	ctx := context.Background()
	first, err := svc.GetMonthlyPurchaseTrend(ctx)
	if err != nil {
		t.Fatalf("trend error: %v", err)
	}
	second, err := svc.GetMonthlyPurchaseTrend(ctx)
	if err != nil {
		t.Fatalf("trend error: %v", err)
	}
	if len(first) != 1 || len(second) != 1 {
		t.Fatalf("expected one month, got %d and %d", len(first), len(second))
	}
	if !first[0].Month.Equal(second[0].Month) || second[0].TotalExpenditure != 400 {
		t.Fatalf("cached point differs: %#v vs %#v", first[0], second[0])
	}
}

func TestServiceWithoutCache(t *testing.T) {
	loader := workedExampleLoader()
	svc := NewService(loader, nil)

	ctx := context.Background()
	dash, err := svc.Dashboard(ctx, 3)
	if err != nil {
		t.Fatalf("dashboard error: %v", err)
	}
	if dash.Sales.TotalRevenue != 300 || dash.Purchases.TotalExpenditure != 400 {
		t.Fatalf("unexpected dashboard %+v", dash)
	}
	if len(dash.TopSellers) != 1 || dash.TopSellers[0].ProductID != "P1" {
		t.Fatalf("unexpected top sellers %#v", dash.TopSellers)
	}
	if len(dash.LowStock) != 0 {
		t.Fatalf("expected no low stock, got %#v", dash.LowStock)
	}
	if _, err := svc.GetSupplierPerformance(ctx); err != nil {
		t.Fatalf("supplier error: %v", err)
	}
	if loader.calls() != 2 {
		t.Fatalf("expected uncached loads, got %d", loader.calls())
	}
	if err := svc.Bump(ctx); err != nil {
		t.Fatalf("bump without cache should be a no-op: %v", err)
	}
}

func TestInvalidLimitRejected(t *testing.T) {
	svc := NewService(workedExampleLoader(), nil)
	if _, err := svc.GetTopSellers(context.Background(), 0); !errors.Is(err, httpx.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := svc.Dashboard(context.Background(), -1); !errors.Is(err, ErrInvalidLimit) {
		t.Fatalf("expected ErrInvalidLimit, got %v", err)
	}
}

func TestLoaderErrorPropagates(t *testing.T) {
	boom := errors.New("db down")
	svc := NewService(&mockLoader{err: boom}, nil)
	if _, err := svc.GetCategoryPerformance(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected loader error, got %v", err)
	}
}

func TestMalformedLedgerPropagates(t *testing.T) {
	loader := &mockLoader{txs: []inventory.Transaction{{TxID: "T1", ProductID: "P1", Kind: "refund", Qty: 1}}}
	svc := NewService(loader, nil)
	if _, err := svc.GetSalesSummary(context.Background()); !errors.Is(err, inventory.ErrInvalidTransaction) {
		t.Fatalf("expected ErrInvalidTransaction, got %v", err)
	}
}

func TestLoadFramesPrefersSnapshot(t *testing.T) {
	loader := &snapshotLoader{mockLoader: workedExampleLoader()}
	f, err := LoadFrames(context.Background(), loader)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if loader.snapshots != 1 || loader.calls() != 0 {
		t.Fatalf("expected snapshot read only, snapshots=%d loads=%d", loader.snapshots, loader.calls())
	}
	if len(f.Products) != 1 || len(f.Transactions) != 2 {
		t.Fatalf("unexpected frames %#v", f)
	}
}

func TestWriteDuringInFlightLoadIsNotCachedAsFresh(t *testing.T) {
	loader := newGatedLoader(workedExampleLoader())
	svc, cleanup := newTestService(t, loader)
	defer cleanup()
	ctx := context.Background()

	type result struct {
		summary SalesTotals
		err     error
	}
	first := make(chan result, 1)
	go func() {
		summary, err := svc.GetSalesSummary(ctx)
		first <- result{summary, err}
	}()
	<-loader.started

	loader.addTx(inventory.Transaction{TxID: "T3", ProductID: "P1", Kind: inventory.KindSale, Qty: 5, UnitPrice: 10})
	if err := svc.Bump(ctx); err != nil {
		t.Fatalf("bump failed: %v", err)
	}

	second := make(chan result, 1)
	go func() {
		summary, err := svc.GetSalesSummary(ctx)
		second <- result{summary, err}
	}()
	select {
	case res := <-second:
		if res.err != nil {
			t.Fatalf("second read: %v", res.err)
		}
		if res.summary.TotalSales != 8 || res.summary.TotalRevenue != 350 {
			t.Fatalf("second read returned pre-write summary %+v", res.summary)
		}
	case <-time.After(5 * time.Second):
		close(loader.release)
		t.Fatal("read after the write waited on a load started before it")
	}

	close(loader.release)
	res := <-first
	if res.err != nil {
		t.Fatalf("first read: %v", res.err)
	}
	if res.summary.TotalSales != 3 {
		t.Fatalf("first read should reflect its own snapshot, got %+v", res.summary)
	}

	summary, err := svc.GetSalesSummary(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.TotalSales != 8 {
		t.Fatalf("stale summary cached after write: %+v", summary)
	}
}
