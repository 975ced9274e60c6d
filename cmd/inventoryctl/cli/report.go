package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/go-extras/cobraflags"
	"github.com/spf13/cobra"

	"github.com/odyssey-erp/retail-inventory/internal/analytics"
	"github.com/odyssey-erp/retail-inventory/internal/analytics/export"
)

// report renders one analytics report in JSON or CSV form.
type report struct {
	load func(ctx context.Context, svc *analytics.Service, top int) (any, error)
	csv  func(w io.Writer, v any) error
}

var reports = map[string]report{
	"inventory": {
		load: func(ctx context.Context, svc *analytics.Service, _ int) (any, error) { return svc.GetInventoryState(ctx) },
		csv:  func(w io.Writer, v any) error { return export.WriteInventoryCSV(w, v.([]analytics.InventoryRow)) },
	},
	"low-stock": {
		load: func(ctx context.Context, svc *analytics.Service, _ int) (any, error) { return svc.GetLowStock(ctx) },
		csv:  func(w io.Writer, v any) error { return export.WriteInventoryCSV(w, v.([]analytics.InventoryRow)) },
	},
	"top-sellers": {
		load: func(ctx context.Context, svc *analytics.Service, top int) (any, error) { return svc.GetTopSellers(ctx, top) },
		csv:  func(w io.Writer, v any) error { return export.WriteTopSellersCSV(w, v.([]analytics.SellerRow)) },
	},
	"summary": {
		load: func(ctx context.Context, svc *analytics.Service, top int) (any, error) { return svc.Dashboard(ctx, top) },
		csv: func(w io.Writer, v any) error {
			dash := v.(analytics.Dashboard)
			return export.WriteSummaryCSV(w, dash.Sales, dash.Purchases)
		},
	},
	"categories": {
		load: func(ctx context.Context, svc *analytics.Service, _ int) (any, error) { return svc.GetCategoryPerformance(ctx) },
		csv:  func(w io.Writer, v any) error { return export.WriteCategoryCSV(w, v.([]analytics.CategoryRow)) },
	},
	"suppliers": {
		load: func(ctx context.Context, svc *analytics.Service, _ int) (any, error) { return svc.GetSupplierPerformance(ctx) },
		csv:  func(w io.Writer, v any) error { return export.WriteSupplierCSV(w, v.([]analytics.SupplierRow)) },
	},
	"sales-trend": {
		load: func(ctx context.Context, svc *analytics.Service, _ int) (any, error) { return svc.GetMonthlySalesTrend(ctx) },
		csv:  func(w io.Writer, v any) error { return export.WriteSalesTrendCSV(w, v.([]analytics.SalesTrendPoint)) },
	},
	"purchase-trend": {
		load: func(ctx context.Context, svc *analytics.Service, _ int) (any, error) { return svc.GetMonthlyPurchaseTrend(ctx) },
		csv:  func(w io.Writer, v any) error { return export.WritePurchaseTrendCSV(w, v.([]analytics.PurchaseTrendPoint)) },
	},
	"margins": {
		load: func(ctx context.Context, svc *analytics.Service, _ int) (any, error) { return svc.GetProfitMargin(ctx) },
		csv:  func(w io.Writer, v any) error { return export.WriteMarginCSV(w, v.([]analytics.MarginRow)) },
	},
	"dashboard": {
		load: func(ctx context.Context, svc *analytics.Service, top int) (any, error) { return svc.Dashboard(ctx, top) },
		csv:  func(w io.Writer, v any) error { return export.WriteDashboardCSV(w, v.(analytics.Dashboard)) },
	},
}

func reportNames() []string {
	names := make([]string, 0, len(reports))
	for name := range reports {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

const formatFlag = "format"

func newReportCommand(env Env) *cobra.Command {
	var top int
	flags := map[string]cobraflags.Flag{
		dsnFlag: dsnFlagDef(),
		formatFlag: &cobraflags.StringFlag{
			Name:  formatFlag,
			Value: "json",
			Usage: "Output format (json, csv)",
		},
	}
	cmd := &cobra.Command{
		Use:   "report <name>",
		Short: "Print an analytics report computed from the database",
		Long:  "Print an analytics report computed from the database.\n\nReports: " + strings.Join(reportNames(), ", "),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rep, ok := reports[args[0]]
			if !ok {
				return fmt.Errorf("unknown report %q (available: %s)", args[0], strings.Join(reportNames(), ", "))
			}
			format := flags[formatFlag].GetString()
			if format != "json" && format != "csv" {
				return fmt.Errorf("unsupported format %q", format)
			}

			ctx := cmd.Context()
			loader, closeFn, err := env.OpenLoader(ctx, flags[dsnFlag].GetString())
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			if closeFn != nil {
				defer closeFn()
			}

			value, err := rep.load(ctx, analytics.NewService(loader, nil), top)
			if err != nil {
				return err
			}
			if format == "csv" {
				return rep.csv(env.Stdout, value)
			}
			enc := json.NewEncoder(env.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(value)
		},
	}
	cobraflags.RegisterMap(cmd, flags)
	cmd.Flags().IntVar(&top, "top", 5, "Number of top sellers")
	return cmd
}
