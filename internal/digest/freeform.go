package digest

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/gco-perigord/crieur-go/internal/models"
	"github.com/gco-perigord/crieur-go/internal/normalize"
)

var (
	// Free text sits between a 10-dash opening rule and a 25-dash closing
	// rule inside each message fragment.
	freeTextRe = regexp.MustCompile(`(?s)-{10,}\s*\n+(.*?)\n+-{25,}`)
	// Leading underlined title inside the free text, stripped because the
	// title is taken from the summary entry.
	leadingTitleRe = regexp.MustCompile(`(?s)^[^=]*=+\s*\n+`)
)

// FreeTextExtractor handles libre-expression digests: unstructured text
// between dash runs, with no Quand/Où/Descriptif labels and no date or
// location. Title and organizer email come from the summary entry with the
// same sequence.
type FreeTextExtractor struct {
	log *slog.Logger
}

func NewFreeTextExtractor(log *slog.Logger) FreeTextExtractor {
	return FreeTextExtractor{log: log}
}

func (x FreeTextExtractor) Extract(d models.RawDigest) []models.Event {
	section := SummarySection(d.Body)
	if section == "" {
		x.log.Debug("digest has no summary section", "subject", d.Subject)
		return nil
	}

	entries := make(map[int]models.SummaryEntry)
	for _, e := range ParseSummary(section) {
		entries[e.Sequence] = e
	}

	var events []models.Event
	for _, frag := range SplitMessages(d.Body) {
		m := freeTextRe.FindStringSubmatch(frag.Body)
		if m == nil {
			continue
		}
		raw := leadingTitleRe.ReplaceAllString(strings.TrimSpace(m[1]), "")

		entry := entries[frag.Sequence]
		events = append(events, models.Event{
			ID:             uuid.NewString(),
			Sequence:       frag.Sequence,
			Variant:        models.VariantFreeText,
			Title:          entry.Title,
			OrganizerEmail: entry.OrganizerEmail,
			Description:    normalize.Clean(raw),
			Phone:          ExtractPhone(raw),
			WhatsApp:       ExtractWhatsApp(raw),
			ContactEmail:   ExtractContactEmail(raw),
			Received:       d.Received,
			EmailDate:      models.FormatFrenchDate(d.Received),
		})
	}
	return events
}
