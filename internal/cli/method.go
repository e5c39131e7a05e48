package cli

import (
	"github.com/spf13/cobra"

	apperrors "tradejournal/internal/errors"
)

// addMethodCommands adds entry method registry commands.
func addMethodCommands(rootCmd *cobra.Command, app *App) {
	cmd := &cobra.Command{
		Use:   "method",
		Short: "Manage entry methods",
		Long:  "List, add and remove the entry methods shown as matrix columns.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List entry methods",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			svc, err := app.Service(cmd.Context())
			if err != nil {
				return err
			}

			methods := svc.Methods()
			if output.IsJSON() {
				return output.JSON(methods)
			}
			for i, m := range methods {
				output.Printf("  %2d  %s\n", i+1, m)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "add <name>",
		Short: "Register an entry method",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			svc, err := app.Service(cmd.Context())
			if err != nil {
				return err
			}

			if err := svc.AddMethod(cmd.Context(), args[0]); err != nil {
				if apperrors.Is(err, apperrors.ErrPersistence) {
					output.Error("Method added but not saved: %v", err)
				}
				return err
			}

			if output.IsJSON() {
				return output.JSON(svc.Methods())
			}
			output.Success("✓ Method %q added", args[0])
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:     "remove <name>",
		Aliases: []string{"rm"},
		Short:   "Remove an entry method",
		Long:    "Remove an entry method. Trades that used it are kept but leave the matrix.",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			svc, err := app.Service(cmd.Context())
			if err != nil {
				return err
			}

			if err := svc.RemoveMethod(cmd.Context(), args[0]); err != nil {
				if apperrors.Is(err, apperrors.ErrPersistence) {
					output.Error("Method removed but not saved: %v", err)
				}
				return err
			}

			if output.IsJSON() {
				return output.JSON(svc.Methods())
			}
			output.Success("✓ Method %q removed", args[0])
			return nil
		},
	})

	rootCmd.AddCommand(cmd)
}
