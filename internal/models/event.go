// Package models defines the data structures shared across the extraction
// pipeline: raw digests, summary entries, detail blocks and the consolidated
// Event record handed to the rendering stage.
package models

import "time"

// DigestVariant identifies which extraction path produced an Event.
type DigestVariant string

const (
	// VariantStructured marks events built from a Sommaire section joined
	// with its Message-ID delimited detail blocks.
	VariantStructured DigestVariant = "structured"
	// VariantCompilation marks events recovered from a "Compilation" digest,
	// where fields are found by inline context search.
	VariantCompilation DigestVariant = "compilation"
	// VariantFreeText marks libre-expression entries: free text between dash
	// runs, with no structured date or location.
	VariantFreeText DigestVariant = "free-text"
)

// RawDigest is one digest email, already decoded from its transport envelope.
// Immutable once read.
type RawDigest struct {
	Subject   string
	From      string
	MessageID string
	Body      string
	Received  time.Time
}

// SummaryEntry is one logical line of the Sommaire section. Sequence is the
// 1-based number declared inline ("* 3 - ..."), not the positional index;
// gaps and reordering are possible.
type SummaryEntry struct {
	Sequence       int
	Tags           []string
	Title          string
	RawDateTime    string
	OrganizerName  string
	OrganizerEmail string
}

// DetailBlock holds the fields scanned out of one Message-ID delimited
// fragment. Missing fields are empty strings, never errors.
type DetailBlock struct {
	Sequence     int
	When         string
	Location     string
	Description  string
	Phone        string
	WhatsApp     string
	ContactEmail string
	Website      string
	CalendarLink string
	Attachments  []string
}

// Event is the consolidated, externally visible unit: a SummaryEntry merged
// with its matching DetailBlock, plus digest metadata. Location coordinates
// are filled in by the resolver when geocoding is enabled; a nil Latitude
// means the event could not be geocoded.
type Event struct {
	ID             string        `json:"id"`
	Sequence       int           `json:"sequence"`
	Variant        DigestVariant `json:"variant"`
	Tags           []string      `json:"tags,omitempty"`
	Title          string        `json:"title"`
	DateTime       string        `json:"date"`
	When           string        `json:"when,omitempty"`
	Location       string        `json:"location"`
	Description    string        `json:"description"`
	OrganizerName  string        `json:"organizer_name,omitempty"`
	OrganizerEmail string        `json:"organizer_email,omitempty"`
	Phone          string        `json:"phone,omitempty"`
	WhatsApp       string        `json:"whatsapp,omitempty"`
	ContactEmail   string        `json:"contact_email,omitempty"`
	Website        string        `json:"website,omitempty"`
	CalendarLink   string        `json:"calendar_link,omitempty"`
	Attachments    []string      `json:"attachments,omitempty"`

	EmailDate string    `json:"email_date"`
	Received  time.Time `json:"received"`

	Latitude        *float64 `json:"latitude,omitempty"`
	Longitude       *float64 `json:"longitude,omitempty"`
	ResolvedAddress string   `json:"resolved_address,omitempty"`
	GeocodeSource   string   `json:"geocode_source,omitempty"`
}

// Located reports whether the event carries coordinates.
func (e *Event) Located() bool {
	return e.Latitude != nil && e.Longitude != nil
}
