package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"tradejournal/internal/api"
)

// addServeCommands adds the local API server command.
func addServeCommands(rootCmd *cobra.Command, app *App) {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the journal as a local JSON API",
		Long: `Serve the journal over HTTP for a browser front end.

Endpoints:
  GET    /api/report             full performance report
  GET    /api/trades             trades, newest first
  POST   /api/trades             log a trade
  DELETE /api/trades             delete every trade
  GET    /api/trades/:id         one trade
  DELETE /api/trades/:id         delete a trade
  GET    /api/methods            entry methods
  POST   /api/methods            register an entry method
  DELETE /api/methods/:name      remove an entry method
  GET    /api/images/:ref        screenshot (?format=dataurl for a data URL)
  GET    /api/export.csv         all trades as CSV`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			svc, err := app.Service(cmd.Context())
			if err != nil {
				return err
			}

			addr, _ := cmd.Flags().GetString("addr")
			if addr == "" {
				addr = app.Config.Server.Addr
			}

			if debug, _ := cmd.Flags().GetBool("debug"); !debug {
				gin.SetMode(gin.ReleaseMode)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			output.Info("Serving journal on http://%s (Ctrl+C to stop)", addr)
			return api.NewServer(svc, app.Logger).Run(ctx, addr)
		},
	}

	cmd.Flags().String("addr", "", "Listen address (default: server.addr from config)")

	rootCmd.AddCommand(cmd)
}
