package models

import (
	"fmt"
	"time"
)

var frenchMonths = [...]string{
	"", "janvier", "février", "mars", "avril", "mai", "juin",
	"juillet", "août", "septembre", "octobre", "novembre", "décembre",
}

// FormatFrenchDate renders a timestamp the way the digests and the rendering
// stage expect it: "10 décembre 2025 à 14:40". The zero time renders as
// "Non spécifiée".
func FormatFrenchDate(t time.Time) string {
	if t.IsZero() {
		return "Non spécifiée"
	}
	t = t.Local()
	return fmt.Sprintf("%d %s %d à %02d:%02d", t.Day(), frenchMonths[t.Month()], t.Year(), t.Hour(), t.Minute())
}
