// Package service orchestrates a full extraction run: digest selection,
// extraction, manual corrections and geocoding.
package service

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/gco-perigord/crieur-go/internal/config"
	"github.com/gco-perigord/crieur-go/internal/digest"
	"github.com/gco-perigord/crieur-go/internal/geocode"
	"github.com/gco-perigord/crieur-go/internal/metrics"
	"github.com/gco-perigord/crieur-go/internal/models"
)

// SourceResult summarizes one feed's run.
type SourceResult struct {
	Source   string
	Digests  int
	Events   int
	Patched  int
	Located  int
	Skipped  int
	Duration time.Duration
}

// Pipeline runs extraction for configured feeds. The resolver is optional:
// a nil resolver disables geocoding.
type Pipeline struct {
	cfg         config.Config
	log         *slog.Logger
	resolver    *geocode.Resolver
	corrections digest.Corrections
	collector   *metrics.Collector
}

func NewPipeline(cfg config.Config, log *slog.Logger, resolver *geocode.Resolver, corrections digest.Corrections, collector *metrics.Collector) *Pipeline {
	return &Pipeline{
		cfg:         cfg,
		log:         log,
		resolver:    resolver,
		corrections: corrections,
		collector:   collector,
	}
}

// Extract selects the feed's digests from the batch, runs the matching
// extractor on each and applies manual corrections. Digests are processed
// newest first; within a digest, events keep ascending sequence order.
func (p *Pipeline) Extract(digests []models.RawDigest, spec config.SourceSpec) ([]models.Event, SourceResult) {
	start := time.Now()
	res := SourceResult{Source: spec.Name}

	var selected []models.RawDigest
	for _, d := range digests {
		if strings.Contains(strings.ToLower(d.Subject), strings.ToLower(spec.SubjectFilter)) {
			selected = append(selected, d)
		}
	}
	sort.SliceStable(selected, func(i, j int) bool {
		return selected[i].Received.After(selected[j].Received)
	})
	res.Digests = len(selected)

	var events []models.Event
	for _, d := range selected {
		t0 := time.Now()
		ex := p.extractorFor(d, spec)
		extracted := ex.Extract(d)
		p.collector.RecordTiming(metrics.OpParseDigest, time.Since(t0))

		sort.SliceStable(extracted, func(i, j int) bool {
			return extracted[i].Sequence < extracted[j].Sequence
		})
		p.log.Info("digest extracted",
			"source", spec.Name,
			"subject", d.Subject,
			"events", len(extracted))
		events = append(events, extracted...)
	}

	res.Patched = p.corrections.Apply(events, p.log)
	res.Events = len(events)
	res.Duration = time.Since(start)
	return events, res
}

// extractorFor picks the extraction path. A compilation subject overrides
// the feed's configured variant because those digests use a different
// layout regardless of which list they arrive on.
func (p *Pipeline) extractorFor(d models.RawDigest, spec config.SourceSpec) digest.Extractor {
	if digest.CompilationSubject(d.Subject) {
		return digest.NewCompilationExtractor(p.log)
	}
	if spec.Variant == "free-text" {
		return digest.NewFreeTextExtractor(p.log)
	}
	return digest.NewStructuredExtractor(p.log)
}

// Progress reports one geocoding step; location is the string just handled.
type Progress func(done, total int, location string)

// Geocode resolves coordinates for every event with a location, in place.
// Resolution is sequential because the remote service is rate limited.
// Returns the number of events that ended up with coordinates.
func (p *Pipeline) Geocode(ctx context.Context, events []models.Event, progress Progress) int {
	if p.resolver == nil {
		return 0
	}

	located := 0
	for i := range events {
		if err := ctx.Err(); err != nil {
			p.log.Warn("geocoding interrupted", "done", i, "total", len(events))
			break
		}
		loc := events[i].Location
		if loc != "" {
			t0 := time.Now()
			if r := p.resolver.Resolve(ctx, loc); r != nil {
				events[i].Latitude = &r.Latitude
				events[i].Longitude = &r.Longitude
				events[i].ResolvedAddress = r.Address
				events[i].GeocodeSource = string(r.Source)
			}
			p.collector.RecordTiming(metrics.OpGeocode, time.Since(t0))
		}
		if events[i].Located() {
			located++
		}
		if progress != nil {
			progress(i+1, len(events), loc)
		}
	}
	return located
}
