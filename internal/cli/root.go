package cli

import (
	"context"
	"fmt"
	"math"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"tradejournal/internal/config"
	apperrors "tradejournal/internal/errors"
	"tradejournal/internal/images"
	"tradejournal/internal/journal"
	"tradejournal/internal/logging"
	"tradejournal/internal/store"
)

// Version information
const (
	Version   = "0.1.0"
	BuildDate = "2026-10-01"
)

// App holds the application dependencies.
type App struct {
	Config  *config.Config
	Logger  zerolog.Logger
	Store   store.JournalStore
	Images  *images.Store
	Journal *journal.Service
}

// NewApp creates an App. The store is opened on first use.
func NewApp(cfg *config.Config, logger zerolog.Logger) *App {
	return &App{
		Config: cfg,
		Logger: logger,
	}
}

// Service returns the journal service, opening the store and loading the
// journal the first time it is called.
func (a *App) Service(ctx context.Context) (*journal.Service, error) {
	if a.Journal != nil {
		return a.Journal, nil
	}

	st, err := store.Open(a.Config.Journal.Store, a.Config.Journal.DataDir)
	if err != nil {
		return nil, fmt.Errorf("opening %s store: %w", a.Config.Journal.Store, err)
	}
	img, err := images.NewStore(filepath.Join(a.Config.Journal.DataDir, images.DirName))
	if err != nil {
		a.Logger.Warn().Err(err).Msg("Image store unavailable, trades will be saved without images")
		img = nil
	}

	params := a.Config.Params()
	svc := journal.NewService(st, img, journal.Options{
		ValuePerR: params.ValuePerR,
		Location:  params.Location,
		Logger:    logging.WithStore(a.Logger, a.Config.Journal.Store),
	})
	svc.Load(logging.WithLogger(ctx, a.Logger))

	a.Store = st
	a.Images = img
	a.Journal = svc

	a.Logger.Debug().
		Str("store", a.Config.Journal.Store).
		Str("data_dir", a.Config.Journal.DataDir).
		Msg("Journal opened")
	return svc, nil
}

// Close releases the store.
func (a *App) Close() error {
	if a.Store == nil {
		return nil
	}
	err := a.Store.Close()
	a.Store = nil
	a.Journal = nil
	return err
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "tj",
		Short: "Trade journal - log trades and review R-based performance",
		Long: `tj is a personal trading journal.

Log each trade with its market context, entry method and R multiple, then
review win rate, profit factor, the equity curve, P&L by hour and context,
and a context x method win-rate matrix.

Use 'tj <command> --help' for more information about a command.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.applyFlags(cmd)
		},
	}

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/tradejournal)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	rootCmd.PersistentFlags().Bool("no-color", false, "disable colored output")
	rootCmd.PersistentFlags().String("data-dir", "", "journal data directory (overrides config)")
	rootCmd.PersistentFlags().Float64("value-per-r", 0, "currency value of 1R (overrides config)")

	addCoreCommands(rootCmd, app)
	addTradeCommands(rootCmd, app)
	addMethodCommands(rootCmd, app)
	addReportCommands(rootCmd, app)
	addExportCommands(rootCmd, app)
	addImageCommands(rootCmd, app)
	addServeCommands(rootCmd, app)

	return rootCmd
}

// applyFlags folds the global flags into the app before any command runs.
func (a *App) applyFlags(cmd *cobra.Command) error {
	flags := cmd.Flags()

	if flags.Changed("config") {
		dir, _ := flags.GetString("config")
		cfg, err := config.Load(dir)
		if err != nil {
			return err
		}
		a.Config = cfg
		a.Logger = logging.NewLoggerWithConfig(cfg.LogConfig())
	}

	if debug, _ := flags.GetBool("debug"); debug {
		a.Logger = a.Logger.Level(zerolog.DebugLevel)
	}

	if flags.Changed("data-dir") {
		dir, _ := flags.GetString("data-dir")
		a.Config.Journal.DataDir = dir
	}

	if flags.Changed("value-per-r") {
		v, _ := flags.GetFloat64("value-per-r")
		if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
			return apperrors.Wrapf(apperrors.ErrConfigInvalid, "value-per-r must be positive, got %v", v)
		}
		a.Config.Journal.ValuePerR = v
		if a.Journal != nil {
			a.Journal.SetValuePerR(v)
		}
	}

	return nil
}

// addCoreCommands adds core utility commands.
func addCoreCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd(app))
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if output.IsJSON() {
				return output.JSON(map[string]string{
					"version":    Version,
					"build_date": BuildDate,
				})
			}
			output.Printf("Trade Journal v%s\n", Version)
			output.Dim("Build date: %s", BuildDate)
			return nil
		},
	}
}

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  "View and validate application configuration.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if output.IsJSON() {
				return output.JSON(app.Config)
			}
			showConfig(output, app.Config)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if output.IsJSON() {
				return output.JSON(map[string]string{"path": app.Config.Path()})
			}
			output.Println(app.Config.Path())
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := app.Config.Validate(); err != nil {
				output.Error("Configuration validation failed: %v", err)
				return err
			}
			if output.IsJSON() {
				return output.JSON(map[string]bool{"valid": true})
			}
			output.Success("✓ Configuration is valid")
			return nil
		},
	})

	return cmd
}

func showConfig(output *Output, cfg *config.Config) {
	output.Bold("Journal")
	output.Printf("  Value per R:  %s\n", FormatCurrency(cfg.Journal.ValuePerR))
	output.Printf("  Data Dir:     %s\n", cfg.Journal.DataDir)
	output.Printf("  Store:        %s\n", cfg.Journal.Store)
	output.Printf("  Timezone:     %s\n", cfg.Journal.Timezone)
	output.Println()

	output.Bold("Logging")
	output.Printf("  Level:        %s\n", cfg.Logging.Level)
	output.Printf("  Console:      %v\n", cfg.Logging.Console)
	output.Printf("  File:         %v\n", cfg.Logging.File)
	output.Printf("  File Path:    %s\n", cfg.Logging.FilePath)
	output.Println()

	output.Bold("Server")
	output.Printf("  Address:      %s\n", cfg.Server.Addr)
}
