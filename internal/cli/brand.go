package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/kingrea/waypoint/internal/brandkit"
	"github.com/kingrea/waypoint/internal/workspace"
)

// NewBrandCommand groups the brand kit commands.
func NewBrandCommand(root *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "brand",
		Short: "Show and edit the brand kit (colors, typography, logo)",
	}
	cmd.AddCommand(
		newBrandShowCommand(root),
		newBrandColorsCommand(root),
		newBrandTypographyCommand(root),
		newBrandLogoCommand(root),
	)
	return cmd
}

func withBrandKit(ctx context.Context, root *rootFlags, fn func(kit *brandkit.Store) error) error {
	return root.withWorkspace(ctx, func(ws *workspace.Workspace) error {
		kit, err := ws.BrandKit(ctx)
		if err != nil {
			return err
		}
		return fn(kit)
	})
}

func printPalette(out io.Writer, p brandkit.Palette) {
	fmt.Fprintf(out, "Primary:    %s\n", orNone(p.Primary))
	fmt.Fprintf(out, "Secondary:  %s\n", orNone(p.Secondary))
	fmt.Fprintf(out, "Accent:     %s\n", orNone(p.Accent))
	fmt.Fprintf(out, "Typography: %s\n", orNone(p.Typography))
	fmt.Fprintf(out, "Logo:       %s\n", orNone(p.Logo))
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}

func newBrandShowCommand(root *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the brand kit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBrandKit(cmd.Context(), root, func(kit *brandkit.Store) error {
				printPalette(cmd.OutOrStdout(), kit.Palette())
				return nil
			})
		},
	}
}

// brandColorsFlags holds the flags for brand colors.
type brandColorsFlags struct {
	primary   string
	secondary string
	accent    string
}

func newBrandColorsCommand(root *rootFlags) *cobra.Command {
	flags := &brandColorsFlags{}

	cmd := &cobra.Command{
		Use:   "colors",
		Short: "Set palette colors; omitted colors are kept",
		Long: `Set palette colors as hex values. Short forms like #abc expand to #AABBCC.

Examples:
  waypoint brand colors --primary "#1E3A8A" --accent f59e0b`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBrandKit(cmd.Context(), root, func(kit *brandkit.Store) error {
				if err := kit.SetColors(cmd.Context(), flags.primary, flags.secondary, flags.accent); err != nil {
					return err
				}
				printPalette(cmd.OutOrStdout(), kit.Palette())
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&flags.primary, "primary", "", "Primary color")
	cmd.Flags().StringVar(&flags.secondary, "secondary", "", "Secondary color")
	cmd.Flags().StringVar(&flags.accent, "accent", "", "Accent color")

	return cmd
}

func newBrandTypographyCommand(root *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "typography <typeface>",
		Short: "Record the brand typeface",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBrandKit(cmd.Context(), root, func(kit *brandkit.Store) error {
				if err := kit.SetTypography(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Typography set to %s\n", kit.Palette().Typography)
				return nil
			})
		},
	}
}

func newBrandLogoCommand(root *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "logo <path>",
		Short: "Record the logo image; an empty path clears it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBrandKit(cmd.Context(), root, func(kit *brandkit.Store) error {
				if err := kit.SetLogo(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Logo set to %s\n", orNone(kit.Palette().Logo))
				return nil
			})
		},
	}
}
