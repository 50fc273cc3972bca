package digest

import (
	"testing"
	"time"

	"github.com/gco-perigord/crieur-go/internal/models"
)

const freeTextBody = `Bonjour,

Sommaire :

* 1 - Appel à bénévoles - L'équipe <benevoles@example.org>

----------------------------------------------------------------------

Message-ID: <f1@list.example.org>

----------
Appel à bénévoles
====

Nous cherchons des bénévoles pour le marché de Noël.
Contact : 06 12 34 56 78

-------------------------
`

func TestFreeTextExtractor(t *testing.T) {
	d := models.RawDigest{
		Subject:  "Sommaire crieur-libre-expression",
		Body:     freeTextBody,
		Received: time.Date(2025, time.December, 8, 9, 0, 0, 0, time.Local),
	}

	events := NewFreeTextExtractor(discardLogger()).Extract(d)
	if len(events) != 1 {
		t.Fatalf("Extract() got %d events, want 1", len(events))
	}

	e := events[0]
	if e.Variant != models.VariantFreeText {
		t.Errorf("variant = %q", e.Variant)
	}
	if e.Title != "Appel à bénévoles" {
		t.Errorf("title = %q", e.Title)
	}
	if e.OrganizerEmail != "benevoles@example.org" {
		t.Errorf("organizer email = %q", e.OrganizerEmail)
	}
	want := "Nous cherchons des bénévoles pour le marché de Noël. Contact : 06 12 34 56 78"
	if e.Description != want {
		t.Errorf("description = %q, want %q", e.Description, want)
	}
	if e.Phone != "0612345678" {
		t.Errorf("phone = %q", e.Phone)
	}
	if e.DateTime != "" || e.Location != "" {
		t.Errorf("free-text event should carry no date or location, got %q / %q", e.DateTime, e.Location)
	}
}

func TestFreeTextExtractorNoDelimitedText(t *testing.T) {
	body := `Sommaire :

* 1 - Annonce - Qqn <q@example.org>

Message-ID: <x@list.example.org>

Rien entre les règles de tirets.
`
	d := models.RawDigest{Subject: "Sommaire crieur-libre-expression", Body: body}
	if events := NewFreeTextExtractor(discardLogger()).Extract(d); len(events) != 0 {
		t.Errorf("Extract() got %d events, want 0", len(events))
	}
}
