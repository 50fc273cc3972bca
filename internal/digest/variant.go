package digest

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/gco-perigord/crieur-go/internal/models"
	"github.com/gco-perigord/crieur-go/internal/normalize"
)

const (
	weekdayAlt = `lundi|mardi|mercredi|jeudi|vendredi|samedi|dimanche`
	monthAlt   = `janvier|février|mars|avril|mai|juin|juillet|août|septembre|octobre|novembre|décembre`

	descriptionLimit = 800
	contextLimit     = 50
)

// CompilationSubject reports whether a digest subject selects the
// compilation layout instead of the Sommaire/detail-block layout.
func CompilationSubject(subject string) bool {
	return strings.Contains(subject, "Compilation") &&
		strings.Contains(strings.ToLower(subject), "crieur")
}

var (
	unitMarkerRe   = regexp.MustCompile(`^\*\s*\d+\s*-\s*\[`)
	nextMarkerRe   = regexp.MustCompile(`^\*\s*\d+\s*-`)
	bracketRe      = regexp.MustCompile(`\[([^\]]+)\]`)
	summaryEndRe   = regexp.MustCompile(`^-{6,}`)
	underlineRe    = regexp.MustCompile(`^[-=]+$`)
	hardRuleRe     = regexp.MustCompile(`^-{6,}$`)
	equalsRuleRe   = regexp.MustCompile(`^=+$`)
	postalRe       = regexp.MustCompile(`\d{5}`)
	streetNumberRe = regexp.MustCompile(`^\d+\s+`)
	streetTokenRe  = regexp.MustCompile(`(?i)^\d+\s+(?:rue|avenue|boulevard|chemin|place|square|allée|quai|cour|voie)`)

	// Title runs from the second bracket up to a full calendar date
	// (weekday + day + month), so titles containing a bare weekday word are
	// not truncated.
	titleRe = regexp.MustCompile(fmt.Sprintf(
		`(?is)\]\s*-\s*(.+?)\s(?:%s)\s+\d{1,2}\s+(?:%s)`, weekdayAlt, monthAlt))

	// Address candidate after the time-of-day marker in the summary line.
	summaryAddrRe = regexp.MustCompile(fmt.Sprintf(
		`(?is)(?:%s).*?à\s+\d{1,2}:\d{2}\s*-\s*([^<\r\n]+)`, weekdayAlt))

	organizerEmailRe = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,4}`)

	// Ordered date rules, most specific first. First match wins.
	datePatterns = []*regexp.Regexp{
		regexp.MustCompile(fmt.Sprintf(`(?i)(?:%s)\s+(\d{1,2}\s+\p{L}+\s+\d{4})(?:\s|$)`, weekdayAlt)),
		regexp.MustCompile(fmt.Sprintf(`(?i)Quand\s*[:=]\s*du\s+(?:\p{L}+\s+)?(\d{1,2}\s+(?:%s)\s+\d{4})`, monthAlt)),
		regexp.MustCompile(`(?i)(?:date|le)\s*:\s*(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})`),
		regexp.MustCompile(fmt.Sprintf(`(?i)(\d{1,2}\s+(?:%s)\s+\d{4})(?:\s|$)`, monthAlt)),
		regexp.MustCompile(fmt.Sprintf(`(?i)(\d{1,2}\s+(?:%s)\s+\d{2})(?:\s|$)`, monthAlt)),
		regexp.MustCompile(fmt.Sprintf(`(?i)(?:%s)[,]?\s+(\d{1,2}\s+\p{L}+\s+\d{2,4})`, weekdayAlt)),
	}

	// Label rules for the context-block location search, strict first.
	locationLabelRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)Où\s*[:=]\s*([^\n=]+)`),
		regexp.MustCompile(`(?i)adresse\s*:\s*([^\n]+)`),
		regexp.MustCompile(`(?i)lieu\s*:\s*([^\n]+)`),
	}

	rejectedLocations = map[string]struct{}{
		"lundi": {}, "mardi": {}, "mercredi": {}, "jeudi": {}, "vendredi": {},
		"samedi": {}, "dimanche": {}, "janvier": {}, "février": {}, "mars": {},
		"avril": {}, "mai": {}, "juin": {}, "juillet": {}, "août": {},
		"septembre": {}, "octobre": {}, "novembre": {}, "décembre": {},
		"non spécifié": {}, "voir ci-après": {}, "voir ci dessous": {},
	}
)

// CompilationExtractor handles the alternate digest layout: bracket-tagged
// entries with no separate detail-block section. Fields are recovered by
// inline context search around each entry.
type CompilationExtractor struct {
	log *slog.Logger
}

func NewCompilationExtractor(log *slog.Logger) CompilationExtractor {
	return CompilationExtractor{log: log}
}

func (x CompilationExtractor) Extract(d models.RawDigest) []models.Event {
	lines := strings.Split(d.Body, "\n")
	seen := make(map[string]struct{})
	var events []models.Event

	seq := 0
	for i, line := range lines {
		if !unitMarkerRe.MatchString(strings.TrimSpace(line)) {
			continue
		}
		entry := joinUnit(lines, i)
		brackets := bracketGroups(entry)

		title := unitTitle(entry, brackets)
		if len(title) < 2 {
			continue
		}
		if _, dup := seen[title]; dup {
			continue
		}
		seen[title] = struct{}{}

		date := extractDate(entry)
		if date == "" {
			x.log.Debug("compilation entry has no date, dropping", "title", title)
			continue
		}

		location := x.resolveLocation(d.Body, entry, title, brackets)
		description := descriptionForTitle(d.Body, title)
		context := findEventContext(d.Body, title)

		seq++
		ev := models.Event{
			ID:             uuid.NewString(),
			Sequence:       seq,
			Variant:        models.VariantCompilation,
			Tags:           brackets,
			Title:          normalize.Clean(title),
			DateTime:       normalize.Clean(date),
			Location:       normalize.Clean(location),
			Description:    description,
			OrganizerEmail: organizerEmail(entry),
			Phone:          ExtractPhone(context),
			WhatsApp:       ExtractWhatsApp(context),
			Attachments:    dedupe(attachURL.FindAllString(context, -1)),
			Received:       d.Received,
			EmailDate:      models.FormatFrenchDate(d.Received),
		}
		events = append(events, ev)
	}
	return events
}

// joinUnit collects an entry line plus its continuation lines until a blank
// line, a dash-led line, the next numbered marker or a message boundary,
// then collapses the run to one line.
func joinUnit(lines []string, start int) string {
	entry := lines[start]
	for j := start + 1; j < len(lines); j++ {
		next := strings.TrimSpace(lines[j])
		if next == "" || strings.HasPrefix(next, "-") {
			break
		}
		if nextMarkerRe.MatchString(next) || strings.Contains(lines[j], "Message-ID:") {
			break
		}
		entry += " " + next
	}
	return normalize.CollapseWhitespace(strings.NewReplacer("\r", " ", "\n", " ").Replace(entry))
}

func bracketGroups(entry string) []string {
	var tags []string
	for _, m := range bracketRe.FindAllStringSubmatch(entry, -1) {
		tags = append(tags, strings.TrimSpace(m[1]))
	}
	return tags
}

func unitTitle(entry string, brackets []string) string {
	if len(brackets) < 2 {
		return ""
	}
	m := titleRe.FindStringSubmatch(entry)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(strings.TrimRight(strings.TrimSpace(m[1]), "- /"))
}

// extractDate runs the ordered date rules and returns the first capture, or
// "" when no rule matches.
func extractDate(text string) string {
	for _, re := range datePatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			return normalize.DecodeQuotedPrintable(strings.TrimSpace(m[1]))
		}
	}
	return ""
}

// resolveLocation applies the three-step location policy: summary-line
// address, context-block label search, bracket hint. A candidate counts as
// precise only if it carries a 5-digit code or starts with a numbered
// street-type token; imprecise candidates are superseded by the hint.
func (x CompilationExtractor) resolveLocation(body, entry, title string, brackets []string) string {
	var location string

	if m := summaryAddrRe.FindStringSubmatch(entry); m != nil {
		cand := strings.TrimSpace(m[1])
		if postalRe.MatchString(cand) || streetNumberRe.MatchString(cand) {
			location = cand
		}
	}

	if location == "" {
		if context := findEventContext(body, title); context != "" {
			location = locationFromLabels(context)
		}
	}

	precise := postalRe.MatchString(location) || streetTokenRe.MatchString(location)
	if (location == "" || !precise) && len(brackets) >= 2 && brackets[1] != "" {
		location = brackets[1]
	}
	return location
}

// locationFromLabels runs the strict label rules over a context block. A
// precise address returns immediately; otherwise the first surviving
// candidate wins.
func locationFromLabels(context string) string {
	var fallback string
	for _, re := range locationLabelRes {
		for _, m := range re.FindAllStringSubmatch(context, -1) {
			cand := normalize.Clean(m[1])
			cand = stripTrailingDate(cand)
			if cand == "" || strings.Contains(cand, "<") || strings.Contains(strings.ToLower(cand), "html") {
				continue
			}
			if _, rejected := rejectedLocations[strings.ToLower(cand)]; rejected {
				continue
			}
			if postalRe.MatchString(cand) || streetTokenRe.MatchString(cand) {
				return cand
			}
			if fallback == "" {
				fallback = cand
			}
		}
	}
	return fallback
}

var trailingDateRe = regexp.MustCompile(fmt.Sprintf(`(?i)^(?:%s|\d{1,2})`, weekdayAlt))

// stripTrailingDate drops a " - <date...>" tail glued onto a location line.
func stripTrailingDate(location string) string {
	parts := strings.Split(location, " - ")
	if len(parts) > 1 && trailingDateRe.MatchString(strings.TrimSpace(parts[1])) {
		return strings.TrimSpace(parts[0])
	}
	return location
}

// findEventContext locates the title after the end of the summary section
// and returns the lines that follow it, up to the next message boundary,
// hard rule or numbered entry.
func findEventContext(body, title string) string {
	title = strings.TrimSpace(strings.TrimRight(strings.TrimSpace(title), "-"))
	if len(title) < 3 {
		return ""
	}
	needle := strings.ToLower(title)

	lines := strings.Split(body, "\n")
	pastSummary := false
	for i, line := range lines {
		if summaryEndRe.MatchString(line) || strings.Contains(line, "Message-ID:") {
			pastSummary = true
		}
		if !pastSummary || !strings.Contains(strings.ToLower(line), needle) {
			continue
		}

		context := []string{line}
		for j := i + 1; j < len(lines) && len(context) < contextLimit; j++ {
			next := lines[j]
			if strings.Contains(next, "Message-ID:") || summaryEndRe.MatchString(next) ||
				unitMarkerRe.MatchString(strings.TrimSpace(next)) {
				break
			}
			context = append(context, next)
		}
		return strings.Join(context, "\n")
	}
	return ""
}

func organizerEmail(text string) string {
	matches := organizerEmailRe.FindAllString(text, -1)
	var last string
	for _, m := range matches {
		lower := strings.ToLower(m)
		if strings.Contains(lower, "noreply") || strings.Contains(lower, "no-reply") {
			continue
		}
		last = m
	}
	if last == "" && len(matches) > 0 {
		last = matches[len(matches)-1]
	}
	return last
}
