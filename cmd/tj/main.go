package main

import (
	"fmt"
	"os"

	"tradejournal/internal/cli"
	"tradejournal/internal/config"
	"tradejournal/internal/logging"
)

func main() {
	cfg, err := config.Load(config.DefaultConfigDir())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewLoggerWithConfig(cfg.LogConfig())
	app := cli.NewApp(cfg, logger)

	err = cli.NewRootCmd(app).Execute()
	if cerr := app.Close(); cerr != nil {
		logger.Warn().Err(cerr).Msg("Failed to close store")
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
