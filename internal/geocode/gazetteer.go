package geocode

import (
	"encoding/json"
	"os"
	"regexp"
	"sort"
	"strings"
)

// Gazetteer is the static local table of known commune names and their
// coordinates.
type Gazetteer struct {
	names  []string // sorted, for deterministic first-match-wins
	coords map[string][2]float64
}

// LoadGazetteer reads a {"Commune": [lat, lon]} JSON file. Missing or
// unreadable means an empty gazetteer.
func LoadGazetteer(path string) Gazetteer {
	g := Gazetteer{coords: make(map[string][2]float64)}
	data, err := os.ReadFile(path)
	if err != nil {
		return g
	}
	if err := json.Unmarshal(data, &g.coords); err != nil {
		g.coords = make(map[string][2]float64)
		return g
	}
	for name := range g.coords {
		g.names = append(g.names, name)
	}
	sort.Strings(g.names)
	return g
}

// Lookup substring-matches a query against the commune table. Containment
// in either direction counts; the first match in name order wins.
func (g Gazetteer) Lookup(query string) (name string, lat, lon float64, ok bool) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return "", 0, 0, false
	}
	for _, n := range g.names {
		ln := strings.ToLower(n)
		if strings.Contains(q, ln) || strings.Contains(ln, q) {
			c := g.coords[n]
			return n, c[0], c[1], true
		}
	}
	return "", 0, 0, false
}

var (
	postalCommuneRe = regexp.MustCompile(`(\d{5})\s+([\p{L}\s\-]+?)(?:\s|$)`)
	communeTrimRe   = regexp.MustCompile(`[,.()]`)
)

// ExtractCommune pulls a candidate commune name out of a complex address:
// the word immediately following a 5-digit code, extended with a following
// capitalized word for compound names, else the last non-numeric word.
// Returns "" when no plausible candidate exists.
func ExtractCommune(location string) string {
	if m := postalCommuneRe.FindStringSubmatch(location); m != nil {
		rest := strings.TrimSpace(location[strings.Index(location, m[1])+len(m[1]):])
		words := strings.Fields(rest)
		if len(words) > 0 {
			candidate := words[0]
			if len(words) > 1 && startsUpper(words[1]) {
				candidate += "-" + words[1]
			}
			candidate = communeTrimRe.ReplaceAllString(candidate, "")
			if len([]rune(candidate)) > 2 {
				return candidate
			}
		}
	}

	var last string
	for _, w := range strings.Fields(location) {
		if isNumeric(w) {
			continue
		}
		last = w
	}
	last = communeTrimRe.ReplaceAllString(last, "")
	if len([]rune(last)) > 2 {
		return last
	}
	return ""
}

func startsUpper(s string) bool {
	for _, r := range s {
		return r >= 'A' && r <= 'Z' || r >= 'À' && r <= 'Þ'
	}
	return false
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
