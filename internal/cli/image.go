package cli

import (
	"os"

	"github.com/spf13/cobra"

	apperrors "tradejournal/internal/errors"
	"tradejournal/internal/images"
)

// addImageCommands adds trade screenshot commands.
func addImageCommands(rootCmd *cobra.Command, app *App) {
	cmd := &cobra.Command{
		Use:   "image",
		Short: "Read and delete trade screenshots",
	}

	showCmd := &cobra.Command{
		Use:   "show <ref>",
		Short: "Print or save a stored screenshot",
		Long: `Print a stored screenshot as a data URL, or write it to a file with --out.
<ref> is the image reference shown by 'tj trade show'.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ref := args[0]

			svc, err := app.Service(cmd.Context())
			if err != nil {
				return err
			}

			data, ok := svc.Image(cmd.Context(), ref)
			if !ok {
				return apperrors.NewImageError(ref, "not found", apperrors.ErrImageNotFound)
			}

			out, _ := cmd.Flags().GetString("out")
			if out != "" {
				if err := os.WriteFile(out, data, 0644); err != nil {
					return apperrors.NewImageError(ref, "failed to write file", err)
				}
				if output.IsJSON() {
					return output.JSON(map[string]interface{}{
						"ref":          ref,
						"path":         out,
						"content_type": images.ContentType(ref),
						"bytes":        len(data),
					})
				}
				output.Success("✓ Wrote %s (%d bytes) to %s", ref, len(data), out)
				return nil
			}

			dataURL := svc.ImageDataURL(cmd.Context(), ref)
			if output.IsJSON() {
				return output.JSON(map[string]string{"ref": ref, "data_url": dataURL})
			}
			output.Println(dataURL)
			return nil
		},
	}
	showCmd.Flags().StringP("out", "o", "", "Write the image to this file instead of printing a data URL")
	cmd.AddCommand(showCmd)

	cmd.AddCommand(&cobra.Command{
		Use:     "delete <ref>",
		Aliases: []string{"rm"},
		Short:   "Delete a stored screenshot",
		Long:    "Delete a stored screenshot. Trades that reference it are kept.",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			svc, err := app.Service(cmd.Context())
			if err != nil {
				return err
			}
			if err := svc.DeleteImage(cmd.Context(), args[0]); err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(map[string]string{"deleted": args[0]})
			}
			output.Success("✓ Image %s deleted", args[0])
			return nil
		},
	})

	rootCmd.AddCommand(cmd)
}
