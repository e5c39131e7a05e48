package cli

import (
	"fmt"
	"math"

	"github.com/spf13/cobra"

	"tradejournal/internal/analytics"
)

// addReportCommands adds analytics report commands.
func addReportCommands(rootCmd *cobra.Command, app *App) {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Show the performance report",
		Long: `Show every section of the performance report: summary metrics, the
equity curve, P&L by hour and by market context, and the context x method
win-rate matrix.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			report, err := loadReport(cmd, app)
			if err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(report)
			}

			renderSummary(output, report)
			output.Println()
			renderEquity(output, report, 10)
			output.Println()
			renderHourly(output, report, false)
			output.Println()
			renderContexts(output, report)
			output.Println()
			renderMatrix(output, report)
			return nil
		},
	}

	cmd.AddCommand(newReportSectionCmd(app, "summary", "Show summary metrics",
		func(r *analytics.Report) interface{} { return r.Metrics },
		func(cmd *cobra.Command, o *Output, r *analytics.Report) { renderSummary(o, r) }))

	equityCmd := newReportSectionCmd(app, "equity", "Show the cumulative P&L curve",
		func(r *analytics.Report) interface{} { return r.Equity },
		func(cmd *cobra.Command, o *Output, r *analytics.Report) {
			last, _ := cmd.Flags().GetInt("last")
			renderEquity(o, r, last)
		})
	equityCmd.Flags().IntP("last", "n", 0, "Show only the last n points (0 = all)")
	cmd.AddCommand(equityCmd)

	hourlyCmd := newReportSectionCmd(app, "hourly", "Show P&L by hour of day",
		func(r *analytics.Report) interface{} { return r.Hourly.Slice() },
		func(cmd *cobra.Command, o *Output, r *analytics.Report) {
			all, _ := cmd.Flags().GetBool("all")
			renderHourly(o, r, all)
		})
	hourlyCmd.Flags().Bool("all", false, "Include hours without trades")
	cmd.AddCommand(hourlyCmd)

	cmd.AddCommand(newReportSectionCmd(app, "contexts", "Show P&L by market context",
		func(r *analytics.Report) interface{} { return r.Contexts },
		func(cmd *cobra.Command, o *Output, r *analytics.Report) { renderContexts(o, r) }))

	cmd.AddCommand(newReportSectionCmd(app, "matrix", "Show the context x method win-rate matrix",
		func(r *analytics.Report) interface{} { return r.Matrix },
		func(cmd *cobra.Command, o *Output, r *analytics.Report) { renderMatrix(o, r) }))

	rootCmd.AddCommand(cmd)
}

// newReportSectionCmd builds a command printing one report section.
func newReportSectionCmd(
	app *App,
	use, short string,
	jsonView func(*analytics.Report) interface{},
	render func(*cobra.Command, *Output, *analytics.Report),
) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			report, err := loadReport(cmd, app)
			if err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(jsonView(report))
			}
			render(cmd, output, report)
			return nil
		},
	}
}

func loadReport(cmd *cobra.Command, app *App) (*analytics.Report, error) {
	svc, err := app.Service(cmd.Context())
	if err != nil {
		return nil, err
	}
	return svc.Report(), nil
}

func renderSummary(output *Output, r *analytics.Report) {
	m := r.Metrics
	lines := []string{
		fmt.Sprintf("Trades:         %d  (%s / %s / %s)", m.TotalTrades,
			output.Green(fmt.Sprintf("%dW", m.Wins)),
			output.Red(fmt.Sprintf("%dL", m.Losses)),
			output.DimText(fmt.Sprintf("%dBE", m.Breakevens))),
		fmt.Sprintf("Win Rate:       %d%%", m.WinRate),
		fmt.Sprintf("Total R:        %s", output.FormatR(m.TotalR)),
		fmt.Sprintf("Total P&L:      %s", output.FormatPnL(m.TotalPnL)),
		fmt.Sprintf("Profit Factor:  %s", m.ProfitFactor),
		fmt.Sprintf("Gross Win/Loss: %s / %s", FormatR(m.GrossWin), FormatR(-m.GrossLoss)),
		output.DimText(fmt.Sprintf("1R = %s", FormatCurrency(r.ValuePerR))),
	}
	output.Box("Performance", lines)
}

func renderEquity(output *Output, r *analytics.Report, last int) {
	output.Bold("Equity Curve")
	if len(r.Equity) == 0 {
		output.Dim("  No trades yet.")
		return
	}

	start := 0
	if last > 0 && len(r.Equity) > last {
		start = len(r.Equity) - last
	}

	peak := math.Inf(-1)
	for _, v := range r.Equity {
		peak = math.Max(peak, math.Abs(v))
	}

	amounts := output.FormatPnLColumn(r.Equity[start:])
	table := NewTable(output, "#", "Cumulative P&L", "")
	for i := start; i < len(r.Equity); i++ {
		v := r.Equity[i]
		bar := Bar(math.Abs(v), peak, 30)
		if v < 0 {
			bar = output.Red(bar)
		} else {
			bar = output.Green(bar)
		}
		table.AddRow(fmt.Sprintf("%d", i+1), amounts[i-start], bar)
	}
	table.Render()
	if start > 0 {
		output.Dim("  (%d earlier points hidden)", start)
	}
}

func renderHourly(output *Output, r *analytics.Report, all bool) {
	output.Bold("P&L by Hour")

	peak := 0.0
	for _, v := range r.Hourly {
		peak = math.Max(peak, math.Abs(v))
	}
	if peak == 0 && !all {
		output.Dim("  No timed trades yet.")
		return
	}

	var hours []int
	var values []float64
	for h, v := range r.Hourly {
		if v == 0 && !all {
			continue
		}
		hours = append(hours, h)
		values = append(values, v)
	}

	amounts := output.FormatPnLColumn(values)
	table := NewTable(output, "Hour", "P&L", "")
	for i, v := range values {
		bar := Bar(math.Abs(v), peak, 30)
		if v < 0 {
			bar = output.Red(bar)
		} else {
			bar = output.Green(bar)
		}
		table.AddRow(fmt.Sprintf("%02d:00", hours[i]), amounts[i], bar)
	}
	table.Render()
}

func renderContexts(output *Output, r *analytics.Report) {
	output.Bold("P&L by Context")
	if len(r.Contexts) == 0 {
		output.Dim("  No trades yet.")
		return
	}

	values := make([]float64, len(r.Contexts))
	for i, c := range r.Contexts {
		values[i] = c.PnL
	}
	amounts := output.FormatPnLColumn(values)

	table := NewTable(output, "Context", "Trades", "P&L")
	for i, c := range r.Contexts {
		label := c.Context
		if !c.Known {
			label = output.DimText(label)
		}
		table.AddRow(label, fmt.Sprintf("%d", c.Trades), amounts[i])
	}
	table.Render()
}

func renderMatrix(output *Output, r *analytics.Report) {
	output.Bold("Win Rate Matrix (context x method)")
	if len(r.Matrix.Methods) == 0 {
		output.Dim("  No entry methods registered.")
		return
	}

	headers := []string{"Context"}
	for _, m := range r.Matrix.Methods {
		headers = append(headers, TruncateString(m, 14))
	}

	table := NewTable(output, headers...)
	for _, row := range r.Matrix.Rows {
		cells := []string{row.Label}
		for _, c := range row.Cells {
			cells = append(cells, output.TierText(c.Tier(), cellText(c)))
		}
		table.AddRow(cells...)
	}
	table.Render()

	output.Dim("  %s >= %d%%   %s >= %d%%   %s below   %s no trades",
		output.TierText(analytics.TierHigh, "high"), analytics.HighTierMin,
		output.TierText(analytics.TierMid, "mid"), analytics.MidTierMin,
		output.TierText(analytics.TierLow, "low"),
		output.TierText(analytics.TierNoData, "-"))
	if r.Matrix.Excluded > 0 {
		output.Dim("  %d trade(s) with an unrecognized context or method are not shown", r.Matrix.Excluded)
	}
}

// cellText renders a matrix cell as "67% (2/3)" or "-".
func cellText(c analytics.Cell) string {
	rate, ok := c.Rate()
	if !ok {
		return "-"
	}
	return fmt.Sprintf("%d%% (%d/%d)", rate, c.Wins, c.Total)
}
