package digest

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/gco-perigord/crieur-go/internal/models"
)

// Consolidate joins summary entries with detail blocks by sequence number.
// An entry whose sequence has no detail block is dropped, not emitted with
// empty required fields.
func Consolidate(d models.RawDigest, entries []models.SummaryEntry, blocks []models.DetailBlock, log *slog.Logger) []models.Event {
	bySeq := make(map[int]models.DetailBlock, len(blocks))
	for _, b := range blocks {
		bySeq[b.Sequence] = b
	}

	events := make([]models.Event, 0, len(entries))
	for _, e := range entries {
		b, ok := bySeq[e.Sequence]
		if !ok {
			log.Debug("summary entry has no detail block, dropping",
				"sequence", e.Sequence, "title", e.Title)
			continue
		}
		events = append(events, mergeEvent(d, e, b))
	}
	return events
}

func mergeEvent(d models.RawDigest, e models.SummaryEntry, b models.DetailBlock) models.Event {
	ev := models.Event{
		ID:             uuid.NewString(),
		Sequence:       e.Sequence,
		Variant:        models.VariantStructured,
		Tags:           e.Tags,
		Title:          e.Title,
		DateTime:       e.RawDateTime,
		OrganizerName:  e.OrganizerName,
		OrganizerEmail: e.OrganizerEmail,
		When:           b.When,
		Location:       b.Location,
		Description:    b.Description,
		Phone:          b.Phone,
		WhatsApp:       b.WhatsApp,
		ContactEmail:   b.ContactEmail,
		Website:        b.Website,
		CalendarLink:   b.CalendarLink,
		Attachments:    b.Attachments,
		Received:       d.Received,
	}
	ev.EmailDate = models.FormatFrenchDate(d.Received)
	return ev
}
