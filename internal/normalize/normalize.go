// Package normalize repairs transport-encoding damage in extracted digest
// text: residual quoted-printable escapes, MIME encoded words, control
// characters and whitespace runs. All functions are pure; Clean is
// idempotent.
package normalize

import (
	"regexp"
	"strings"
	"unicode"
)

// Residual quoted-printable escapes seen in the digests. "=3D" must come
// last so a decoded "=" is never re-interpreted as the start of an escape.
var qpReplacer = strings.NewReplacer(
	"=C3=A9", "é",
	"=C3=A8", "è",
	"=C3=AA", "ê",
	"=C3=A7", "ç",
	"=C3=A0", "à",
	"=C3=A1", "á",
	"=C3=A4", "ä",
	"=C3=AE", "î",
	"=C3=B4", "ô",
	"=C3=B6", "ö",
	"=C3=B9", "ù",
	"=C3=BB", "û",
	"=C3=BC", "ü",
	"=C3=B1", "ñ",
	"=E2=80=99", "'",
	"=2E", ".",
	"=3D", "=",
)

var (
	softBreakRe   = regexp.MustCompile(`=\r?\n`)
	encodedWordRe = regexp.MustCompile(`=\?[Uu][Tt][Ff]-?8\?[Qq]\?(.+?)\?=`)
	spaceRunRe    = regexp.MustCompile(`\s+`)
)

// DecodeQuotedPrintable decodes the known two-hex-digit escapes and removes
// soft line breaks ("=" immediately before a line end).
func DecodeQuotedPrintable(s string) string {
	s = softBreakRe.ReplaceAllString(s, "")
	return qpReplacer.Replace(s)
}

// DecodeEncodedWords unwraps =?UTF-8?Q?...?= header fragments, rendering
// underscores as spaces. Escapes inside the fragment are left for
// DecodeQuotedPrintable.
func DecodeEncodedWords(s string) string {
	return encodedWordRe.ReplaceAllStringFunc(s, func(m string) string {
		inner := encodedWordRe.FindStringSubmatch(m)[1]
		return strings.ReplaceAll(inner, "_", " ")
	})
}

// StripNonPrintable removes Unicode control characters and symbol-other
// characters (emoji and pictographs), keeping letters, digits, punctuation
// and separators.
func StripNonPrintable(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsControl(r) || unicode.Is(unicode.Cf, r) || unicode.Is(unicode.So, r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// CollapseWhitespace folds line breaks and internal whitespace runs into
// single spaces and trims the result.
func CollapseWhitespace(s string) string {
	return strings.TrimSpace(spaceRunRe.ReplaceAllString(s, " "))
}

// Clean applies the full normalization chain: encoded-word unwrap, residual
// quoted-printable decode, control/emoji strip, whitespace collapse, trim.
// Cleaning already-clean text is a no-op.
func Clean(s string) string {
	if s == "" {
		return s
	}
	s = DecodeEncodedWords(s)
	s = DecodeQuotedPrintable(s)
	s = strings.NewReplacer("\r", " ", "\n", " ").Replace(s)
	s = StripNonPrintable(s)
	return CollapseWhitespace(s)
}
