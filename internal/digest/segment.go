// Package digest recovers structured Event records from loosely formatted
// mailing-list digest emails. Extraction is best-effort and heuristic: a
// pattern that does not match yields an empty field, never an error, and a
// digest with no recognizable summary section yields zero events.
//
// Three extraction paths share the same field rules but segment differently:
// StructuredExtractor (Sommaire + Message-ID detail blocks),
// CompilationExtractor (bracket-tagged inline entries) and
// FreeTextExtractor (libre-expression text between dash runs).
package digest

import (
	"regexp"
	"strings"

	"github.com/gco-perigord/crieur-go/internal/models"
)

const messageMarker = "Message-ID: "

// summarySectionRe captures everything between the "Sommaire :" header and
// the first long dash run or message boundary.
var summarySectionRe = regexp.MustCompile(`(?s)Sommaire\s*:\s*\n(.*?)(?:\n-{10,}|\nMessage-ID:)`)

// Fragment is one message-delimited section of a digest body. Sequence is
// the 1-based position among fragments, which the Sommaire numbering refers
// to.
type Fragment struct {
	Sequence  int
	MessageID string
	Body      string
}

// Extractor turns one raw digest into events. Implementations are the
// segmentation strategies; field extraction rules are shared.
type Extractor interface {
	Extract(d models.RawDigest) []models.Event
}

// SummarySection returns the Sommaire text of a digest body, or "" when the
// digest has no recognizable summary.
func SummarySection(body string) string {
	m := summarySectionRe.FindStringSubmatch(body)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// SplitMessages splits a digest body on the message boundary marker. Each
// fragment keeps its first line as the message identifier; the rest is the
// detail block body.
func SplitMessages(body string) []Fragment {
	parts := strings.Split(body, messageMarker)
	if len(parts) < 2 {
		return nil
	}

	frags := make([]Fragment, 0, len(parts)-1)
	for i, part := range parts[1:] {
		id, rest, _ := strings.Cut(part, "\n")
		frags = append(frags, Fragment{
			Sequence:  i + 1,
			MessageID: strings.TrimSpace(id),
			Body:      rest,
		})
	}
	return frags
}
