package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/odyssey-erp/retail-inventory/internal/analytics"
)

const monthLayout = "2006-01"

// WriteInventoryCSV serialises the stock position of every product.
func WriteInventoryCSV(w io.Writer, rows []analytics.InventoryRow) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()
	if err := writer.Write([]string{"Product ID", "Name", "Category", "Supplier", "Qty Initial", "In", "Out", "On Stock", "Reorder Level", "Low Stock"}); err != nil {
		return err
	}
	for _, row := range rows {
		if err := writer.Write([]string{
			row.ProductID,
			row.Name,
			row.Category,
			row.Supplier,
			formatInt(row.QtyInitial),
			formatInt(row.InQty),
			formatInt(row.OutQty),
			formatInt(row.QtyOnStock),
			formatInt(row.ReorderLevel),
			strconv.FormatBool(row.LowStock),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteTopSellersCSV emits the best sellers ranking.
func WriteTopSellersCSV(w io.Writer, rows []analytics.SellerRow) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()
	if err := writer.Write([]string{"Product ID", "Qty Sold"}); err != nil {
		return err
	}
	for _, row := range rows {
		if err := writer.Write([]string{row.ProductID, formatInt(row.QtySold)}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteSummaryCSV prints sales and purchase totals as metric/value pairs.
func WriteSummaryCSV(w io.Writer, sales analytics.SalesTotals, purchases analytics.PurchaseTotals) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write([]string{"Metric", "Value"}); err != nil {
		return err
	}
	records := [][]string{
		{"Total Sales", formatInt(sales.TotalSales)},
		{"Total Revenue", formatFloat(sales.TotalRevenue)},
		{"Total Purchases", formatInt(purchases.TotalPurchases)},
		{"Total Expenditure", formatFloat(purchases.TotalExpenditure)},
	}
	for _, record := range records {
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteCategoryCSV emits sales per category.
func WriteCategoryCSV(w io.Writer, rows []analytics.CategoryRow) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()
	if err := writer.Write([]string{"Category", "Total Sales", "Total Revenue"}); err != nil {
		return err
	}
	for _, row := range rows {
		if err := writer.Write([]string{row.Category, formatInt(row.TotalSales), formatFloat(row.TotalRevenue)}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteSupplierCSV emits purchased units per supplier.
func WriteSupplierCSV(w io.Writer, rows []analytics.SupplierRow) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()
	if err := writer.Write([]string{"Supplier", "Total Purchased"}); err != nil {
		return err
	}
	for _, row := range rows {
		if err := writer.Write([]string{row.Supplier, formatInt(row.TotalPurchased)}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteSalesTrendCSV emits monthly sales movement.
func WriteSalesTrendCSV(w io.Writer, points []analytics.SalesTrendPoint) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()
	if err := writer.Write([]string{"Month", "Total Sales", "Total Revenue"}); err != nil {
		return err
	}
	for _, point := range points {
		if err := writer.Write([]string{
			point.Month.Format(monthLayout),
			formatInt(point.TotalSales),
			formatFloat(point.TotalRevenue),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WritePurchaseTrendCSV emits monthly purchase movement.
func WritePurchaseTrendCSV(w io.Writer, points []analytics.PurchaseTrendPoint) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()
	if err := writer.Write([]string{"Month", "Total Purchases", "Total Expenditure"}); err != nil {
		return err
	}
	for _, point := range points {
		if err := writer.Write([]string{
			point.Month.Format(monthLayout),
			formatInt(point.TotalPurchases),
			formatFloat(point.TotalExpenditure),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteMarginCSV emits per-product margins; products without both sides of the
// ledger get an empty margin cell.
func WriteMarginCSV(w io.Writer, rows []analytics.MarginRow) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()
	if err := writer.Write([]string{"Product ID", "Name", "Profit Margin"}); err != nil {
		return err
	}
	for _, row := range rows {
		margin := ""
		if row.ProfitMargin != nil {
			margin = formatFloat(*row.ProfitMargin)
		}
		if err := writer.Write([]string{row.ProductID, row.Name, margin}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteDashboardCSV writes every dashboard section as consecutive CSV blocks
// separated by a blank line.
func WriteDashboardCSV(w io.Writer, dash analytics.Dashboard) error {
	sections := []func(io.Writer) error{
		func(w io.Writer) error { return WriteSummaryCSV(w, dash.Sales, dash.Purchases) },
		func(w io.Writer) error { return WriteInventoryCSV(w, dash.Inventory) },
		func(w io.Writer) error { return WriteTopSellersCSV(w, dash.TopSellers) },
		func(w io.Writer) error { return WriteCategoryCSV(w, dash.Categories) },
	}
	for i, section := range sections {
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		if err := section(w); err != nil {
			return err
		}
	}
	return nil
}

func formatInt(v int64) string {
	return strconv.FormatInt(v, 10)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
