// Package sink writes extraction results to their output documents.
package sink

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gco-perigord/crieur-go/internal/models"
)

// Document is the on-disk shape of one feed's extraction run.
type Document struct {
	GeneratedAt time.Time      `json:"generated_at"`
	Source      string         `json:"source"`
	Count       int            `json:"count"`
	Events      []models.Event `json:"events"`
}

// WriteEvents writes the feed's events as a pretty-printed JSON document.
// The write is atomic: a temp file in the target directory renamed over
// the destination, so a crash never leaves a truncated document.
func WriteEvents(path, source string, events []models.Event) error {
	doc := Document{
		GeneratedAt: time.Now(),
		Source:      source,
		Count:       len(events),
		Events:      events,
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("sink: marshal %s: %w", source, err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".events-*.json")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}
