package mailbox

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeMail(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

const plainDigest = `From: Crieur <crieur@framalistes.org>
To: liste@framalistes.org
Subject: =?UTF-8?Q?Sommaire_crieur-des-sorties?=
Date: Mon, 08 Dec 2025 09:00:00 +0100
Message-ID: <digest1@framalistes.org>
Content-Type: text/plain; charset=utf-8
Content-Transfer-Encoding: quoted-printable

Bonjour =C3=A0 tous,

Sommaire :
`

const multipartDigest = `From: Crieur <crieur@framalistes.org>
Subject: Sommaire crieur-libre-expression
Date: Tue, 09 Dec 2025 09:00:00 +0100
Message-ID: <digest2@framalistes.org>
Content-Type: multipart/alternative; boundary="BOUND"

--BOUND
Content-Type: text/html; charset=utf-8

<p>version html</p>
--BOUND
Content-Type: text/plain; charset=utf-8

Texte brut du sommaire
--BOUND--
`

const foreignDigest = `From: Autre <autre@example.com>
Subject: Publicité
Date: Mon, 08 Dec 2025 10:00:00 +0100

Contenu sans rapport.
`

func TestDirSourceFetch(t *testing.T) {
	dir := t.TempDir()
	writeMail(t, dir, "01.eml", plainDigest)
	writeMail(t, dir, "02.eml", multipartDigest)
	writeMail(t, dir, "03.eml", foreignDigest)
	writeMail(t, dir, "notes.txt", "pas un mail")
	writeMail(t, dir, "99.eml", "contenu invalide sans en-têtes\x00")

	src := NewDirSource(dir, "framalistes.org", discardLogger())
	digests, err := src.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(digests) != 2 {
		t.Fatalf("Fetch() got %d digests, want 2 (foreign sender and non-mail files skipped)", len(digests))
	}

	first := digests[0]
	if first.Subject != "Sommaire crieur-des-sorties" {
		t.Errorf("subject = %q (encoded word not decoded?)", first.Subject)
	}
	if !strings.Contains(first.Body, "Bonjour à tous,") {
		t.Errorf("body = %q (quoted-printable not decoded?)", first.Body)
	}
	if first.MessageID != "<digest1@framalistes.org>" {
		t.Errorf("message id = %q", first.MessageID)
	}
	want := time.Date(2025, time.December, 8, 9, 0, 0, 0, time.FixedZone("", 3600))
	if !first.Received.Equal(want) {
		t.Errorf("received = %v, want %v", first.Received, want)
	}

	second := digests[1]
	if !strings.Contains(second.Body, "Texte brut du sommaire") {
		t.Errorf("multipart body = %q, want the text/plain part", second.Body)
	}
	if strings.Contains(second.Body, "html") {
		t.Errorf("multipart body picked the html part: %q", second.Body)
	}
}

func TestDirSourceFetchMissingDir(t *testing.T) {
	src := NewDirSource(filepath.Join(t.TempDir(), "absent"), "", discardLogger())
	if _, err := src.Fetch(context.Background()); err == nil {
		t.Fatal("want error for unreadable directory")
	}
}

func TestSenderMatches(t *testing.T) {
	tests := []struct {
		from   string
		filter string
		want   bool
	}{
		{"Crieur <crieur@framalistes.org>", "framalistes.org", true},
		{"autre@example.com", "framalistes.org", false},
		{"liste non analysable framalistes.org", "framalistes.org", true},
	}
	for _, tt := range tests {
		if got := senderMatches(tt.from, tt.filter); got != tt.want {
			t.Errorf("senderMatches(%q, %q) = %v, want %v", tt.from, tt.filter, got, tt.want)
		}
	}
}
