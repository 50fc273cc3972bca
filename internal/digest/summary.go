package digest

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/gco-perigord/crieur-go/internal/models"
	"github.com/gco-perigord/crieur-go/internal/normalize"
)

var (
	entryMarkerRe = regexp.MustCompile(`^\*\s+(\d+)\s*-?\s*`)
	tagPrefixRe   = regexp.MustCompile(`^\s*(?:\[[^\]]+\]\s*)+`)
	tagRe         = regexp.MustCompile(`\[([^\]]+)\]`)
	angleEmailRe  = regexp.MustCompile(`<([^>]+)>`)
)

// ParseSummary parses the Sommaire section into entries. A physical line
// starting with the numbered marker ("* 3 - ...") opens an entry; following
// lines without the marker are continuation lines, space-joined onto the
// current entry before field splitting.
func ParseSummary(section string) []models.SummaryEntry {
	var raw []struct {
		seq  int
		text string
	}

	for _, line := range strings.Split(section, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if m := entryMarkerRe.FindStringSubmatch(line); m != nil {
			seq, _ := strconv.Atoi(m[1])
			raw = append(raw, struct {
				seq  int
				text string
			}{seq, entryMarkerRe.ReplaceAllString(line, "")})
			continue
		}
		if len(raw) > 0 {
			raw[len(raw)-1].text += " " + line
		}
	}

	entries := make([]models.SummaryEntry, 0, len(raw))
	for _, r := range raw {
		entries = append(entries, parseEntryFields(r.seq, r.text))
	}
	return entries
}

// parseEntryFields splits one joined summary line into its fields: leading
// bracket tags, an optional <email> token, then title / date-time /
// organizer separated by " - " (excess parts fold into the organizer).
func parseEntryFields(seq int, text string) models.SummaryEntry {
	e := models.SummaryEntry{Sequence: seq}

	if prefix := tagPrefixRe.FindString(text); prefix != "" {
		for _, m := range tagRe.FindAllStringSubmatch(prefix, -1) {
			e.Tags = append(e.Tags, strings.TrimSpace(m[1]))
		}
		text = text[len(prefix):]
	}
	text = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(text), "- "))

	if m := angleEmailRe.FindStringSubmatch(text); m != nil {
		e.OrganizerEmail = strings.TrimSpace(m[1])
		text = strings.TrimSpace(angleEmailRe.ReplaceAllString(text, ""))
	}

	parts := strings.Split(text, " - ")
	for i := range parts {
		parts[i] = strings.Trim(parts[i], " -")
	}
	if len(parts) >= 1 {
		e.Title = normalize.Clean(parts[0])
	}
	if len(parts) >= 2 {
		e.RawDateTime = normalize.Clean(parts[1])
	}
	if len(parts) >= 3 {
		e.OrganizerName = normalize.Clean(strings.Join(parts[2:], " - "))
	}
	return e
}
