package cli

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	apperrors "tradejournal/internal/errors"
	"tradejournal/internal/journal"
	"tradejournal/internal/models"
)

// tradeTimeLayout is the layout new trades are stamped with.
const tradeTimeLayout = "2006-01-02T15:04"

// addTradeCommands adds trade management commands.
func addTradeCommands(rootCmd *cobra.Command, app *App) {
	cmd := &cobra.Command{
		Use:     "trade",
		Aliases: []string{"t"},
		Short:   "Log and manage trades",
		Long:    "Add, list, show and delete journal trades.",
	}

	cmd.AddCommand(newTradeAddCmd(app))
	cmd.AddCommand(newTradeListCmd(app))
	cmd.AddCommand(newTradeShowCmd(app))
	cmd.AddCommand(newTradeDeleteCmd(app))
	cmd.AddCommand(newTradeClearCmd(app))

	rootCmd.AddCommand(cmd)
}

func newTradeAddCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Log a trade",
		Long: `Log a trade.

The context may be a label such as "Strong Trend" or its number:
  1 Strong Trend   2 Trading Range   3 Broad Channel
  4 Tight Channel  5 Breakout Mode   6 Climax

Without --rvalue the R value defaults to 2 for a win, -1 for a loss and
0 for a breakeven.`,
		Example: `  tj trade add --result win --context "Strong Trend" --method "Wedge Bottom" --rvalue 2.5
  tj trade add --result loss --context 2 --method "Double Top" --image chart.png`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx := cmd.Context()

			svc, err := app.Service(ctx)
			if err != nil {
				return err
			}

			in, err := newTradeFromFlags(cmd, app)
			if err != nil {
				return err
			}

			if c := models.ParseContext(in.Context); !c.Known() && !output.IsJSON() {
				output.Warning("Context %q is not one of the six contexts; it will be left out of the matrix", in.Context)
			}
			if !slices.Contains(svc.Methods(), in.Method) && !output.IsJSON() {
				output.Warning("Method %q is not registered; it will be left out of the matrix", in.Method)
			}

			res, err := svc.AddTrade(ctx, in)
			if res.Trade.ID == 0 {
				return err
			}

			if output.IsJSON() {
				if jerr := output.JSON(res.Trade); jerr != nil {
					return jerr
				}
				return err
			}

			if res.ImageErr != nil {
				output.Warning("Image not saved: %v", res.ImageErr)
			}
			if err != nil {
				output.Error("Trade recorded but not saved: %v", err)
				return err
			}
			output.Success("✓ Trade %d logged: %s %s (%s)", res.Trade.ID,
				res.Trade.Result, FormatR(res.Trade.RValue), res.Trade.Method)
			return nil
		},
	}

	cmd.Flags().StringP("result", "r", "", "Trade result: "+resultNames()+" (required)")
	cmd.Flags().StringP("context", "c", "", "Market context label or number 1-6 (required)")
	cmd.Flags().StringP("method", "m", "", "Entry method (required)")
	cmd.Flags().Float64("rvalue", 0, "R multiple (default depends on result)")
	cmd.Flags().String("time", "", "Trade time, e.g. 2024-05-01T09:30 (default: now)")
	cmd.Flags().String("type", "", "Trade type, e.g. scalp or swing")
	cmd.Flags().String("emotion", "", "Emotional state")
	cmd.Flags().String("remark", "", "Free-text remark")
	cmd.Flags().String("image", "", "Path to a chart screenshot")
	_ = cmd.MarkFlagRequired("result")
	_ = cmd.MarkFlagRequired("context")
	_ = cmd.MarkFlagRequired("method")

	return cmd
}

// newTradeFromFlags builds the AddTrade input from the add command flags.
func newTradeFromFlags(cmd *cobra.Command, app *App) (journal.NewTrade, error) {
	flags := cmd.Flags()

	resultLabel, _ := flags.GetString("result")
	result, ok := models.ParseResult(resultLabel)
	if !ok {
		return journal.NewTrade{}, apperrors.NewValidationError("result", resultLabel, "must be one of "+resultNames())
	}

	contextLabel, _ := flags.GetString("context")
	method, _ := flags.GetString("method")
	tradeTime, _ := flags.GetString("time")
	tradeType, _ := flags.GetString("type")
	emotion, _ := flags.GetString("emotion")
	remark, _ := flags.GetString("remark")
	imagePath, _ := flags.GetString("image")

	if tradeTime == "" {
		tradeTime = time.Now().In(app.Config.Params().Location).Format(tradeTimeLayout)
	}

	in := journal.NewTrade{
		Time:      tradeTime,
		Context:   resolveContext(contextLabel),
		Method:    strings.TrimSpace(method),
		TradeType: tradeType,
		Emotion:   emotion,
		Result:    result,
		Remark:    remark,
	}

	if flags.Changed("rvalue") {
		r, _ := flags.GetFloat64("rvalue")
		in.RValue = &r
	}

	if imagePath != "" {
		raw, err := os.ReadFile(imagePath)
		if err != nil {
			return journal.NewTrade{}, apperrors.NewImageError(imagePath, "failed to read image file", err)
		}
		in.Image = raw
	}

	return in, nil
}

// resolveContext maps a context number or any recognized label to the
// canonical label. Anything else is kept as free text.
func resolveContext(s string) string {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		contexts := models.Contexts()
		if n >= 1 && n <= len(contexts) {
			return contexts[n-1].Label()
		}
	}
	if c := models.ParseContext(s); c.Known() {
		return c.Label()
	}
	return s
}

func newTradeListCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List trades, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			svc, err := app.Service(cmd.Context())
			if err != nil {
				return err
			}

			limit, _ := cmd.Flags().GetInt("limit")
			trades := svc.RecentTrades(limit)

			if output.IsJSON() {
				return output.JSON(trades)
			}

			if len(trades) == 0 {
				output.Info("No trades logged yet.")
				output.Dim("Tip: tj trade add --result win --context 1 --method \"Double Bottom\"")
				return nil
			}

			table := NewTable(output, "ID", "Time", "Context", "Method", "Result", "R", "Img", "Remark")
			for _, t := range trades {
				img := ""
				if t.Image != "" {
					img = "✓"
				}
				table.AddRow(
					strconv.FormatInt(t.ID, 10),
					t.ShortTime(),
					TruncateString(contextShort(t.Context), 16),
					output.Cyan(TruncateString(t.Method, 22)),
					resultText(output, t.Result),
					output.FormatR(t.RValue),
					img,
					TruncateString(t.Remark, 30),
				)
			}
			table.Render()
			output.Dim("%d trade(s)", len(trades))
			return nil
		},
	}

	cmd.Flags().IntP("limit", "n", 0, "Show at most n trades (0 = all)")

	return cmd
}

func newTradeShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one trade",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			tradeID, err := parseTradeID(args[0])
			if err != nil {
				return err
			}
			svc, err := app.Service(cmd.Context())
			if err != nil {
				return err
			}

			t, ok := svc.Trade(tradeID)
			if !ok {
				return apperrors.Wrapf(apperrors.ErrTradeNotFound, "id %d", tradeID)
			}

			if output.IsJSON() {
				return output.JSON(t)
			}

			output.Bold("Trade %d", t.ID)
			output.Printf("  Time:     %s\n", t.Time)
			output.Printf("  Context:  %s\n", t.Context)
			output.Printf("  Method:   %s\n", t.Method)
			output.Printf("  Result:   %s\n", resultText(output, t.Result))
			output.Printf("  R:        %s (%s)\n", output.FormatR(t.RValue),
				FormatPnL(t.RValue*svc.Params().ValuePerR))
			if t.TradeType != "" {
				output.Printf("  Type:     %s\n", t.TradeType)
			}
			if t.Emotion != "" {
				output.Printf("  Emotion:  %s\n", t.Emotion)
			}
			if t.Image != "" {
				output.Printf("  Image:    %s\n", t.Image)
			}
			if t.Remark != "" {
				output.Printf("  Remark:   %s\n", t.Remark)
			}
			return nil
		},
	}
}

func newTradeDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a trade",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			tradeID, err := parseTradeID(args[0])
			if err != nil {
				return err
			}
			svc, err := app.Service(cmd.Context())
			if err != nil {
				return err
			}

			if err := svc.DeleteTrade(cmd.Context(), tradeID); err != nil {
				if apperrors.Is(err, apperrors.ErrPersistence) {
					output.Error("Trade deleted but not saved: %v", err)
				}
				return err
			}

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{"deleted": tradeID})
			}
			output.Success("✓ Trade %d deleted", tradeID)
			return nil
		},
	}
}

func newTradeClearCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every trade",
		Long:  "Delete every trade in the journal. Stored images are kept.",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			if yes, _ := cmd.Flags().GetBool("yes"); !yes {
				return fmt.Errorf("refusing to delete all trades without --yes")
			}

			svc, err := app.Service(cmd.Context())
			if err != nil {
				return err
			}

			n, err := svc.ClearTrades(cmd.Context())
			if err != nil {
				output.Error("Trades cleared but not saved: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(map[string]int{"deleted": n})
			}
			output.Success("✓ Deleted %d trade(s)", n)
			return nil
		},
	}

	cmd.Flags().BoolP("yes", "y", false, "Confirm deleting all trades")

	return cmd
}

func parseTradeID(s string) (int64, error) {
	tradeID, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, apperrors.NewValidationError("id", s, "must be a numeric trade id")
	}
	return tradeID, nil
}

// contextShort renders a context without its alias.
func contextShort(label string) string {
	if c := models.ParseContext(label); c.Known() {
		return c.Short()
	}
	return models.ShortLabel(label)
}

// resultNames lists the accepted results, e.g. "win, loss, breakeven".
func resultNames() string {
	names := make([]string, 0, len(models.Results()))
	for _, r := range models.Results() {
		names = append(names, string(r))
	}
	return strings.Join(names, ", ")
}

func resultText(output *Output, r models.Result) string {
	switch r {
	case models.ResultWin:
		return output.Green(string(r))
	case models.ResultLoss:
		return output.Red(string(r))
	}
	return output.DimText(string(r))
}
