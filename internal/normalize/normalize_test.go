package normalize

import "testing"

func TestDecodeQuotedPrintable(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"accented letters", "march=C3=A9 du caf=C3=A9", "marché du café"},
		{"unknown escape untouched", "No=C3=ABl", "No=C3=ABl"},
		{"soft line break", "une tr=\nès longue ligne", "une très longue ligne"},
		{"soft line break crlf", "mot=\r\ncoupé", "motcoupé"},
		{"apostrophe", "l=E2=80=99atelier", "l'atelier"},
		{"equals decoded last", "a =3D b", "a = b"},
		{"clean text untouched", "Fête de la châtaigne", "Fête de la châtaigne"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DecodeQuotedPrintable(tt.in); got != tt.want {
				t.Errorf("DecodeQuotedPrintable(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestDecodeEncodedWords(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"underscores become spaces", "=?UTF-8?Q?F=C3=AAte_votive?=", "F=C3=AAte votive"},
		{"lowercase charset", "=?utf-8?q?Atelier_chant?=", "Atelier chant"},
		{"surrounding text kept", "Re: =?UTF-8?Q?Concert?= ce soir", "Re: Concert ce soir"},
		{"no encoded word", "Sommaire : rien à décoder", "Sommaire : rien à décoder"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DecodeEncodedWords(tt.in); got != tt.want {
				t.Errorf("DecodeEncodedWords(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestStripNonPrintable(t *testing.T) {
	got := StripNonPrintable("Fête au village​ !")
	want := "Fête au village !"
	if got != want {
		t.Errorf("StripNonPrintable() = %q, want %q", got, want)
	}
}

func TestClean(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"full chain", "=?UTF-8?Q?F=C3=AAte_votive?=  \r\n  à Mareuil", "Fête votive à Mareuil"},
		{"whitespace collapse", "Salle   des\n\nfêtes", "Salle des fêtes"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Clean(tt.in)
			if got != tt.want {
				t.Errorf("Clean(%q) = %q, want %q", tt.in, got, tt.want)
			}
			if again := Clean(got); again != got {
				t.Errorf("Clean is not idempotent: %q -> %q", got, again)
			}
		})
	}
}
