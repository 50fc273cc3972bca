package digest

import (
	"io"
	"log/slog"
	"testing"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const structuredBody = `Bonjour,

Sommaire :

* 1 - [Atelier] [Périgueux] Chant occitan - mercredi 10 décembre 2025 - Los Amics <los@example.org>
* 2 - [Concert] [Bergerac] Bal trad - samedi 13 décembre 2025 - Les Amis du Folk <amis.folk@example.org> -

----------------------------------------------------------------------

Message-ID: <a1@list.example.org>

Quand : mercredi 10 décembre 2025 à 18:30
Où : Maison des associations, 24000 Périgueux
Descriptif
----------
Atelier de chant traditionnel occitan, ouvert aux débutants.
Renseignements au 05 53 11 22 33.

----------------------------------------------------------------------

Message-ID: <b2@list.example.org>

Quand : samedi 13 décembre 2025 à 20:30
Où : Salle des fêtes, 24100 Bergerac
Descriptif
----------
Bal traditionnel ouvert à tous.

--> Visitez le site internet de l'événement : https://example.org/bal

Cet événement a été ajouté à l'agenda des sorties des crieurs : https://gco.ouvaton.org/agenda/bal
`

func TestSummarySection(t *testing.T) {
	section := SummarySection(structuredBody)
	if section == "" {
		t.Fatal("SummarySection() returned empty for a digest with a Sommaire")
	}
	want := "* 1 - [Atelier] [Périgueux] Chant occitan"
	if got := section[:len(want)]; got != want {
		t.Errorf("section starts with %q, want %q", got, want)
	}
	if len(section) > 0 && section[len(section)-1] == '\n' {
		t.Error("section not trimmed")
	}

	if got := SummarySection("pas de sommaire ici"); got != "" {
		t.Errorf("SummarySection() = %q for a digest without Sommaire, want empty", got)
	}
}

func TestSplitMessages(t *testing.T) {
	frags := SplitMessages(structuredBody)
	if len(frags) != 2 {
		t.Fatalf("SplitMessages() got %d fragments, want 2", len(frags))
	}

	if frags[0].Sequence != 1 || frags[1].Sequence != 2 {
		t.Errorf("fragment sequences = %d, %d, want 1, 2", frags[0].Sequence, frags[1].Sequence)
	}
	if frags[0].MessageID != "<a1@list.example.org>" {
		t.Errorf("fragment 1 message id = %q", frags[0].MessageID)
	}
	if frags[1].MessageID != "<b2@list.example.org>" {
		t.Errorf("fragment 2 message id = %q", frags[1].MessageID)
	}

	if got := SplitMessages("aucune frontière de message"); got != nil {
		t.Errorf("SplitMessages() = %v for a body without markers, want nil", got)
	}
}
