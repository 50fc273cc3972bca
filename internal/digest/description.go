package digest

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/gco-perigord/crieur-go/internal/normalize"
)

var descLabelRe = regexp.MustCompile(`(?i)^Descriptif|^Description`)

// descriptionForTitle locates the description of a compilation entry.
// Ordered strategies, first hit wins:
//  1. the title inside a "Subject:" line,
//  2. the title inside a bracket header line,
//  3. the title as a standalone line directly followed by an underline.
//
// From the anchor, the next "Descriptif" block (label followed by an
// underline) is collected.
func descriptionForTitle(body, title string) string {
	title = strings.TrimSpace(strings.TrimRight(strings.TrimSpace(title), "-"))
	if len(title) < 3 {
		return ""
	}
	needle := strings.ToLower(title)
	lines := strings.Split(body, "\n")

	for i, line := range lines {
		if strings.Contains(line, "Subject:") && strings.Contains(strings.ToLower(line), needle) {
			if d := descriptionBlockAfter(lines, i, 80); d != "" {
				return d
			}
		}
	}
	for i, line := range lines {
		if strings.HasPrefix(line, "[") && strings.Contains(strings.ToLower(line), needle) {
			if d := descriptionBlockAfter(lines, i, 80); d != "" {
				return d
			}
		}
	}
	for i, line := range lines {
		if strings.EqualFold(strings.TrimSpace(line), title) &&
			i+1 < len(lines) && underlineRe.MatchString(strings.TrimSpace(lines[i+1])) {
			if d := descriptionBlockAfter(lines, i+2, 100); d != "" {
				return d
			}
		}
	}
	return ""
}

// descriptionBlockAfter searches the window below an anchor line for a
// Descriptif label with its underline and collects the block that follows.
func descriptionBlockAfter(lines []string, anchor, window int) string {
	end := min(anchor+window, len(lines))
	for j := anchor; j < end; j++ {
		if !descLabelRe.MatchString(lines[j]) {
			continue
		}
		if j+1 >= len(lines) || !underlineRe.MatchString(strings.TrimSpace(lines[j+1])) {
			continue
		}
		if d := collectDescription(lines, j+2); d != "" {
			return d
		}
	}
	return ""
}

// collectDescription gathers description lines from start until a
// terminator: a long dash rule, an equals rule, a message boundary, an
// all-uppercase header once content exists, or two consecutive blank lines.
func collectDescription(lines []string, start int) string {
	for start < len(lines) && strings.TrimSpace(lines[start]) == "" {
		start++
	}

	var collected []string
	blanks := 0
	for i := start; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])

		if hardRuleRe.MatchString(line) && len(collected) > 0 {
			break
		}
		if equalsRuleRe.MatchString(line) {
			break
		}
		if strings.HasPrefix(line, "Message-ID:") {
			break
		}
		if isUpperHeader(line) && len(collected) > 0 {
			break
		}

		if line == "" {
			blanks++
			if blanks >= 2 && len(collected) > 0 {
				break
			}
			continue
		}
		blanks = 0
		collected = append(collected, line)
	}
	if len(collected) == 0 {
		return ""
	}

	desc := normalize.Clean(strings.Join(collected, " "))
	desc = stripAgendaSentence(desc)
	return truncateWords(desc, descriptionLimit)
}

var agendaSentenceRe = regexp.MustCompile(`(?i)\s*Cet événement a été ajouté à l'agenda[^:]*:\s*https://gco\.ouvaton\.org/\S+\s*`)

func stripAgendaSentence(desc string) string {
	return strings.TrimSpace(agendaSentenceRe.ReplaceAllString(desc, " "))
}

// isUpperHeader reports whether a line is an all-uppercase section header.
func isUpperHeader(line string) bool {
	if len(line) <= 3 {
		return false
	}
	hasLetter := false
	for _, r := range line {
		if unicode.IsLetter(r) {
			hasLetter = true
			if !unicode.IsUpper(r) {
				return false
			}
		}
	}
	return hasLetter
}

// truncateWords caps text at limit runes, cutting at the last word boundary.
func truncateWords(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	cut := string(runes[:limit])
	if idx := strings.LastIndex(cut, " "); idx > 0 {
		cut = cut[:idx]
	}
	return cut + "..."
}
