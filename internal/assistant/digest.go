// Package assistant assembles the structured payloads handed to an external
// summariser: a daily digest and the context for a free-form stock question.
package assistant

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/odyssey-erp/retail-inventory/internal/analytics"
	"github.com/odyssey-erp/retail-inventory/internal/platform/httpx"
)

// MaxSummaryWords bounds the length requested from the summariser.
const MaxSummaryWords = 120

// ErrEmptyQuestion is returned when a query context is requested without a question.
var ErrEmptyQuestion = fmt.Errorf("%w: question is required", httpx.ErrValidation)

var printer = message.NewPrinter(language.MustParse("en-IN"))

// StockLine is the stock view of one product exposed to the summariser.
type StockLine struct {
	ProductID    string `json:"product_id"`
	Name         string `json:"name,omitempty"`
	QtyOnStock   int64  `json:"qty_on_stock"`
	ReorderLevel int64  `json:"reorder_level"`
}

// DayDigest carries the figures of the daily summary.
type DayDigest struct {
	Sales      analytics.SalesTotals    `json:"sales"`
	Purchases  analytics.PurchaseTotals `json:"purchases"`
	TopSellers []analytics.SellerRow    `json:"top_sellers"`
	LowStock   []StockLine              `json:"low_stock"`
}

// BuildDayDigest extracts the digest sections from a dashboard.
func BuildDayDigest(d analytics.Dashboard) DayDigest {
	low := make([]StockLine, 0, len(d.LowStock))
	for _, row := range d.LowStock {
		low = append(low, StockLine{ProductID: row.ProductID, Name: row.Name, QtyOnStock: row.QtyOnStock, ReorderLevel: row.ReorderLevel})
	}
	top := d.TopSellers
	if top == nil {
		top = []analytics.SellerRow{}
	}
	return DayDigest{Sales: d.Sales, Purchases: d.Purchases, TopSellers: top, LowStock: low}
}

// Prompt renders the digest as instructions for the summariser.
func (d DayDigest) Prompt() string {
	var b strings.Builder
	b.WriteString("Summarise the day's inventory performance for a shop owner.\n\n")
	b.WriteString("Sales and purchases:\n")
	printer.Fprintf(&b, "- units sold: %d\n", d.Sales.TotalSales)
	fmt.Fprintf(&b, "- revenue: %s\n", Rupees(d.Sales.TotalRevenue))
	printer.Fprintf(&b, "- units purchased: %d\n", d.Purchases.TotalPurchases)
	fmt.Fprintf(&b, "- expenditure: %s\n", Rupees(d.Purchases.TotalExpenditure))

	b.WriteString("\nTop selling products:\n")
	writeSellers(&b, d.TopSellers)

	b.WriteString("\nLow stock products:\n")
	if len(d.LowStock) == 0 {
		b.WriteString("- none\n")
	}
	for _, line := range d.LowStock {
		label := line.ProductID
		if line.Name != "" {
			label = fmt.Sprintf("%s (%s)", line.Name, line.ProductID)
		}
		printer.Fprintf(&b, "- %s: %d on stock, reorder at %d\n", label, line.QtyOnStock, line.ReorderLevel)
	}

	b.WriteString("\nHighlight notable trends or issues. Use the Indian Rupee symbol (₹) for amounts")
	b.WriteString(" and Hindi terms where they read naturally.")
	fmt.Fprintf(&b, " Keep it professional and under %d words.\n", MaxSummaryWords)
	return b.String()
}

// QueryContext is the grounding passed along with a user question.
type QueryContext struct {
	Question   string                `json:"question"`
	TopSellers []analytics.SellerRow `json:"top_sellers"`
	Stock      []StockLine           `json:"stock"`
}

// BuildQueryContext pairs a question with the current top sellers and stock
// position of every product.
func BuildQueryContext(question string, inventory []analytics.InventoryRow, top []analytics.SellerRow) (QueryContext, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return QueryContext{}, ErrEmptyQuestion
	}
	stock := make([]StockLine, 0, len(inventory))
	for _, row := range inventory {
		stock = append(stock, StockLine{ProductID: row.ProductID, QtyOnStock: row.QtyOnStock, ReorderLevel: row.ReorderLevel})
	}
	if top == nil {
		top = []analytics.SellerRow{}
	}
	return QueryContext{Question: question, TopSellers: top, Stock: stock}, nil
}

// Prompt renders the context followed by the question.
func (q QueryContext) Prompt() string {
	var b strings.Builder
	b.WriteString("Context\nTop sellers:\n")
	writeSellers(&b, q.TopSellers)
	b.WriteString("Stock:\n")
	if len(q.Stock) == 0 {
		b.WriteString("- none\n")
	}
	for _, line := range q.Stock {
		printer.Fprintf(&b, "- %s: %d on stock, reorder at %d\n", line.ProductID, line.QtyOnStock, line.ReorderLevel)
	}
	fmt.Fprintf(&b, "\nAnswer briefly: %s\n", q.Question)
	return b.String()
}

// Rupees formats an amount with the rupee sign and Indian digit grouping.
func Rupees(amount float64) string {
	return printer.Sprintf("₹%.2f", amount)
}

func writeSellers(b *strings.Builder, rows []analytics.SellerRow) {
	if len(rows) == 0 {
		b.WriteString("- none\n")
		return
	}
	for i, row := range rows {
		printer.Fprintf(b, "%d. %s: %d sold\n", i+1, row.ProductID, row.QtySold)
	}
}
