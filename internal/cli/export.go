package cli

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	apperrors "tradejournal/internal/errors"
	"tradejournal/internal/export"
)

// addExportCommands adds export commands.
func addExportCommands(rootCmd *cobra.Command, app *App) {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export trades and reports",
	}

	csvCmd := &cobra.Command{
		Use:   "csv",
		Short: "Export all trades to CSV",
		Long: `Export all trades to export_<unix-time>.csv, one row per trade.
The file is UTF-8 with a byte order mark so spreadsheets read it correctly.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			svc, err := app.Service(cmd.Context())
			if err != nil {
				return err
			}

			dir, _ := cmd.Flags().GetString("dir")
			if err := os.MkdirAll(dir, 0755); err != nil {
				return apperrors.Wrap(err, "failed to create export directory")
			}

			path, err := svc.ExportCSV(dir, time.Now())
			if apperrors.Is(err, export.ErrNoData) {
				if output.IsJSON() {
					return output.JSON(map[string]string{"error": err.Error()})
				}
				output.Warning("No trades to export")
				return nil
			}
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{
					"path":   path,
					"trades": len(svc.Trades()),
				})
			}
			output.Success("✓ Exported %d trade(s) to %s", len(svc.Trades()), path)
			return nil
		},
	}
	csvCmd.Flags().StringP("dir", "d", ".", "Directory to write the export file to")
	cmd.AddCommand(csvCmd)

	reportCmd := &cobra.Command{
		Use:   "report",
		Short: "Export the performance report as YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			svc, err := app.Service(cmd.Context())
			if err != nil {
				return err
			}
			report := svc.Report()

			out, _ := cmd.Flags().GetString("out")
			if out == "" || out == "-" {
				return export.WriteReportYAML(output.Writer(), report)
			}

			f, err := os.Create(out)
			if err != nil {
				return apperrors.Wrap(err, "failed to create report file")
			}
			if err := export.WriteReportYAML(f, report); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return apperrors.Wrap(err, "failed to close report file")
			}

			if output.IsJSON() {
				return output.JSON(map[string]string{"path": out})
			}
			output.Success("✓ Report written to %s", out)
			return nil
		},
	}
	reportCmd.Flags().StringP("out", "o", "", "Output file (default: stdout)")
	cmd.AddCommand(reportCmd)

	rootCmd.AddCommand(cmd)
}
