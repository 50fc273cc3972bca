package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/gco-perigord/crieur-go/internal/config"
	"github.com/gco-perigord/crieur-go/internal/digest"
	"github.com/gco-perigord/crieur-go/internal/geocode"
	"github.com/gco-perigord/crieur-go/internal/mailbox"
	"github.com/gco-perigord/crieur-go/internal/metrics"
	"github.com/gco-perigord/crieur-go/internal/models"
	"github.com/gco-perigord/crieur-go/internal/service"
	"github.com/gco-perigord/crieur-go/internal/sink"
)

var (
	processMailDir string
	processSources string
	processGeocode bool
	noProgress     bool
)

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Extract events from local digest emails and write JSON outputs",
	Long: `Process reads the *.eml digest files from the mail directory, runs the
extractor matching each configured source, applies manual corrections,
optionally geocodes locations and writes one JSON document per source.`,
	RunE: runProcess,
}

func init() {
	processCmd.Flags().StringVar(&processMailDir, "mail-dir", "", "directory of .eml digest files (default from config)")
	processCmd.Flags().StringVar(&processSources, "sources", "", "YAML source definitions file (default from config)")
	processCmd.Flags().BoolVar(&processGeocode, "geocode", true, "resolve event locations to coordinates")
	processCmd.Flags().BoolVar(&noProgress, "no-progress", false, "disable the interactive progress display")
}

func runProcess(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if processMailDir != "" {
		cfg.MailDir = processMailDir
	}
	if processSources != "" {
		cfg.SourcesFile = processSources
	}

	sources, err := config.LoadSources(cfg.SourcesFile)
	if err != nil {
		return err
	}

	src := mailbox.NewDirSource(cfg.MailDir, cfg.DomainFilter, logger)
	digests, err := src.Fetch(ctx)
	if err != nil {
		return fmt.Errorf("read mail directory: %w", err)
	}
	if len(digests) == 0 {
		fmt.Println("No digest emails found.")
		return nil
	}

	collector := metrics.NewCollector()
	var resolver *geocode.Resolver
	if processGeocode {
		resolver = buildResolver()
	}
	corrections := digest.LoadCorrections(cfg.EventCorrectionsFile, logger)
	pipeline := service.NewPipeline(cfg, logger, resolver, corrections, collector)

	var results []service.SourceResult
	for _, spec := range sources {
		events, res := pipeline.Extract(digests, spec)

		if processGeocode && len(events) > 0 {
			res.Located = geocodeEvents(ctx, pipeline, events)
		}

		out := filepath.Join(cfg.OutputDir, spec.Output)
		t0 := time.Now()
		if err := sink.WriteEvents(out, spec.Name, events); err != nil {
			return fmt.Errorf("write %s: %w", out, err)
		}
		collector.RecordTiming(metrics.OpWriteOutput, time.Since(t0))
		logger.Info("output written", "source", spec.Name, "path", out, "events", len(events))
		results = append(results, res)
	}

	printSummary(results)
	if verbose {
		printMetrics(collector.Snapshot())
	}
	return nil
}

func buildResolver() *geocode.Resolver {
	client := geocode.NewClient(cfg.NominatimURL, cfg.UserAgent, cfg.RequestTimeout)
	return geocode.NewResolver(
		geocode.OpenCache(cfg.CacheFile, logger),
		geocode.LoadLocationCorrections(cfg.LocationCorrectionsFile, logger),
		geocode.LoadGazetteer(cfg.GazetteerFile),
		client,
		geocode.Region{Name: cfg.RegionName, PostalPrefix: cfg.RegionPostalPrefix},
		logger,
	)
}

// geocodeEvents runs the geocoding pass, with the interactive progress UI
// unless disabled. The pass runs in its own goroutine feeding the UI over
// channels; cancelling the UI cancels the pass through the context.
func geocodeEvents(ctx context.Context, pipeline *service.Pipeline, events []models.Event) int {
	if noProgress || !isatty.IsTerminal(os.Stdout.Fd()) {
		return pipeline.Geocode(ctx, events, func(done, total int, location string) {
			logger.Debug("geocoding", "done", done, "total", total, "location", location)
		})
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	updates := make(chan geocodeUpdateMsg, 1)
	finished := make(chan struct{})
	var located int
	go func() {
		located = pipeline.Geocode(ctx, events, func(done, total int, location string) {
			// Non-blocking send; the resolver must never wait on the display.
			select {
			case updates <- geocodeUpdateMsg{done: done, total: total, location: location}:
			default:
			}
		})
		close(finished)
	}()

	if err := runGeocodeProgress(updates, finished, cancel); err != nil {
		logger.Warn("progress display failed", "error", err)
	}
	<-finished
	return located
}

func printSummary(results []service.SourceResult) {
	theme := defaultTheme
	fmt.Println()
	fmt.Println(theme.completedStyle().Render("✓ Extraction complete"))
	for _, r := range results {
		line := fmt.Sprintf("  %-10s %d digests, %d events", r.Source, r.Digests, r.Events)
		if r.Patched > 0 {
			line += fmt.Sprintf(", %d corrected", r.Patched)
		}
		if r.Located > 0 {
			line += fmt.Sprintf(", %d located", r.Located)
		}
		fmt.Println(line)
	}
}

func printMetrics(snap metrics.Snapshot) {
	theme := defaultTheme
	fmt.Println()
	fmt.Println(theme.hintStyle().Render(fmt.Sprintf("Run took %.1fs", snap.UptimeSeconds)))
	for _, op := range snap.Operations {
		fmt.Println(theme.hintStyle().Render(fmt.Sprintf(
			"  %-14s n=%d avg=%.0fms min=%dms max=%dms",
			op.Name, op.Count, op.AvgTimeMs, op.MinTimeMs, op.MaxTimeMs)))
	}
}
