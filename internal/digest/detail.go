package digest

import (
	"regexp"
	"strings"

	"github.com/gco-perigord/crieur-go/internal/models"
	"github.com/gco-perigord/crieur-go/internal/normalize"
)

// Ordered extraction rules for one detail block. Each rule tolerates
// absence: no match means an empty field. The description is captured before
// normalization because the phone / chat-link / email patterns depend on
// literal digit and URL grouping.
var (
	whenRe  = regexp.MustCompile(`(?s)Quand\s*:\s*(.*?)Où\s*:`)
	whereRe = regexp.MustCompile(`(?s)Où\s*:\s*(.*?)Descriptif`)
	descRe  = regexp.MustCompile(`(?sm)Descriptif\s*\n\s*-+\s*\n+(.*?)(?:-->\s*Visitez|-->\s*Une pièce jointe|📅?\s*Cet événement a été ajouté|^-{10,})`)

	phoneRe    = regexp.MustCompile(`0[1-9](?:[\s.\-]?\d{2}){4}`)
	phoneSepRe = regexp.MustCompile(`[\s.\-]`)
	whatsappRe = regexp.MustCompile(`https://chat\.whatsapp\.com/[^\s<>]+`)
	// Loose on purpose: digest bodies often carry emails broken by inserted
	// spaces; the spaces are removed from the stored value.
	contactEmailRe = regexp.MustCompile(`[a-zA-Z0-9._%+-]+\s*@\s*[a-zA-Z0-9.\s-]+\.[a-zA-Z]{2,4}`)

	websiteRe  = regexp.MustCompile(`-->\s*Visitez le site internet de l'événement\s*:\s*(\S+)`)
	calendarRe = regexp.MustCompile(`Cet événement a été ajouté à l'agenda des sorties des crieurs\s*:\s*(\S+)`)
	attachRe   = regexp.MustCompile(`(?sm)-->\s*Une pièce jointe est disponible\s*:\s*(.*?)(?:^-{10,}|Contactez|Ne répondez)`)
	attachURL  = regexp.MustCompile(`https://gco\.ouvaton\.org/wp-content/[^\s<>]*`)
)

// ExtractDetail scans one message fragment into a DetailBlock.
func ExtractDetail(seq int, body string) models.DetailBlock {
	b := models.DetailBlock{Sequence: seq}

	if m := whenRe.FindStringSubmatch(body); m != nil {
		b.When = normalize.Clean(m[1])
	}
	if m := whereRe.FindStringSubmatch(body); m != nil {
		b.Location = normalize.Clean(m[1])
	}
	if m := descRe.FindStringSubmatch(body); m != nil {
		raw := strings.TrimSpace(m[1])
		b.Phone = ExtractPhone(raw)
		b.WhatsApp = ExtractWhatsApp(raw)
		b.ContactEmail = ExtractContactEmail(raw)
		b.Description = normalize.Clean(raw)
	}
	if m := websiteRe.FindStringSubmatch(body); m != nil {
		b.Website = strings.TrimSpace(m[1])
	}
	if m := calendarRe.FindStringSubmatch(body); m != nil {
		b.CalendarLink = strings.TrimSpace(m[1])
	}
	if m := attachRe.FindStringSubmatch(body); m != nil {
		b.Attachments = dedupe(attachURL.FindAllString(m[1], -1))
	}
	return b
}

// ExtractPhone finds a French 10-digit number (leading 0, non-zero second
// digit, optional pair separators) and returns it with separators stripped.
func ExtractPhone(text string) string {
	m := phoneRe.FindString(text)
	if m == "" {
		return ""
	}
	return phoneSepRe.ReplaceAllString(m, "")
}

// ExtractWhatsApp finds a WhatsApp chat-invite URL.
func ExtractWhatsApp(text string) string {
	return strings.TrimSpace(whatsappRe.FindString(text))
}

// ExtractContactEmail finds a contact address, tolerating inserted spaces,
// which are removed from the stored value.
func ExtractContactEmail(text string) string {
	m := contactEmailRe.FindString(text)
	if m == "" {
		return ""
	}
	return strings.NewReplacer(" ", "", "\t", "", "\n", "", "\r", "").Replace(m)
}

func dedupe(links []string) []string {
	seen := make(map[string]struct{}, len(links))
	var out []string
	for _, l := range links {
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	return out
}
