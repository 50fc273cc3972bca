package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var geocodeCmd = &cobra.Command{
	Use:   "geocode <location>",
	Short: "Resolve one location string to coordinates",
	Long: `Geocode runs a single location string through the full resolution
chain (cache, corrections, gazetteer, Nominatim) and prints the result.
Useful for checking why an event did or did not get coordinates.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		resolver := buildResolver()

		location := strings.Join(args, " ")
		result := resolver.Resolve(cmd.Context(), location)
		if result == nil {
			exitWithError("no coordinates found for %q", location)
		}

		fmt.Printf("%s\n", defaultTheme.completedStyle().Render(result.Address))
		fmt.Printf("  lat=%.6f lon=%.6f source=%s\n", result.Latitude, result.Longitude, result.Source)
		return nil
	},
}
