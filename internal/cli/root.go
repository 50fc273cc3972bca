// Package cli provides the command-line interface for crieur.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/gco-perigord/crieur-go/internal/config"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	// Global flags
	verbose bool
	cfgFile string

	// Global config and logger, set up in PersistentPreRunE.
	cfg        config.Config
	logger     *slog.Logger
	logCleanup func() error
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "crieur",
	Short: "Extract events from Grand Châtaignier digest emails",
	Long: `Crieur turns the mailing-list digests of the Grand Châtaignier
Occitan ("crieur des sorties", "crieur libre expression") into structured
event records: titles, dates, locations, contacts, with coordinates
resolved through a local gazetteer and Nominatim.`,
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}

		if cfgFile != "" {
			cfg = config.Load(cfgFile)
		} else {
			cfg = config.Load()
		}
		level := cfg.LogLevel
		if verbose {
			level = slog.LevelDebug
		}
		logger, logCleanup = config.SetupLogger(cfg.LogFile, level)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logCleanup != nil {
			if err := logCleanup(); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to close log file: %v\n", err)
			}
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "env file to load (default .env)")

	rootCmd.AddCommand(processCmd)
	rootCmd.AddCommand(geocodeCmd)
	rootCmd.AddCommand(sourcesCmd)
}

// exitWithError prints an error message and exits with code 1.
func exitWithError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
