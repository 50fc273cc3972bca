package digest

import (
	"log/slog"

	"github.com/gco-perigord/crieur-go/internal/models"
)

// StructuredExtractor handles the standard digest layout: a Sommaire section
// consolidated with Message-ID delimited detail blocks.
type StructuredExtractor struct {
	log *slog.Logger
}

func NewStructuredExtractor(log *slog.Logger) StructuredExtractor {
	return StructuredExtractor{log: log}
}

func (x StructuredExtractor) Extract(d models.RawDigest) []models.Event {
	section := SummarySection(d.Body)
	if section == "" {
		x.log.Debug("digest has no summary section", "subject", d.Subject)
		return nil
	}

	entries := ParseSummary(section)
	frags := SplitMessages(d.Body)
	blocks := make([]models.DetailBlock, 0, len(frags))
	for _, f := range frags {
		blocks = append(blocks, ExtractDetail(f.Sequence, f.Body))
	}
	return Consolidate(d, entries, blocks, x.log)
}
