package digest

import (
	"encoding/json"
	"log/slog"
	"os"

	"github.com/gco-perigord/crieur-go/internal/models"
)

// Corrections is a manually curated patch table keyed by exact event title.
// It is applied once, after consolidation, last writer wins; it never runs
// during extraction.
type Corrections map[string]map[string]string

type correctionsFile struct {
	Corrections Corrections `json:"corrections"`
}

// LoadCorrections reads the correction table. A missing or unreadable file
// means no corrections, not an error.
func LoadCorrections(path string, log *slog.Logger) Corrections {
	data, err := os.ReadFile(path)
	if err != nil {
		return Corrections{}
	}
	var f correctionsFile
	if err := json.Unmarshal(data, &f); err != nil {
		log.Warn("cannot parse corrections file", "path", path, "error", err)
		return Corrections{}
	}
	if f.Corrections == nil {
		return Corrections{}
	}
	return f.Corrections
}

// Apply overwrites the named fields of every event whose title exactly
// matches a table key. The "date" key patches the date/time field; other
// keys map 1:1 onto Event fields. Returns the number of patched events.
func (c Corrections) Apply(events []models.Event, log *slog.Logger) int {
	if len(c) == 0 {
		return 0
	}
	patched := 0
	for i := range events {
		fields, ok := c[events[i].Title]
		if !ok {
			continue
		}
		for key, val := range fields {
			applyField(&events[i], key, val, log)
		}
		patched++
		log.Debug("applied correction", "title", events[i].Title)
	}
	return patched
}

func applyField(e *models.Event, key, val string, log *slog.Logger) {
	switch key {
	case "date":
		e.DateTime = val
	case "title":
		e.Title = val
	case "when":
		e.When = val
	case "location", "location_detail":
		e.Location = val
	case "description":
		e.Description = val
	case "organizer_name":
		e.OrganizerName = val
	case "organizer_email":
		e.OrganizerEmail = val
	case "phone":
		e.Phone = val
	case "whatsapp":
		e.WhatsApp = val
	case "contact_email":
		e.ContactEmail = val
	case "website":
		e.Website = val
	case "calendar_link":
		e.CalendarLink = val
	default:
		log.Warn("unknown correction field", "field", key, "title", e.Title)
	}
}
