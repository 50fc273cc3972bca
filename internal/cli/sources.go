package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gco-perigord/crieur-go/internal/config"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List the configured mailing-list sources",
	RunE: func(cmd *cobra.Command, args []string) error {
		sources, err := config.LoadSources(cfg.SourcesFile)
		if err != nil {
			return err
		}
		for _, s := range sources {
			fmt.Printf("%-10s filter=%q variant=%s output=%s\n",
				s.Name, s.SubjectFilter, s.Variant, s.Output)
		}
		return nil
	},
}
