// Package mailbox is the input boundary of the pipeline: it supplies
// decoded RawDigests to the extraction stages. Retrieval over IMAP lives
// behind the same interface and is out of scope here; DirSource reads
// digests exported as .eml files from a local directory.
package mailbox

import (
	"context"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gco-perigord/crieur-go/internal/models"
)

// Source supplies digest emails, already decoded from their transport
// envelope to text.
type Source interface {
	Fetch(ctx context.Context) ([]models.RawDigest, error)
}

var _ Source = (*DirSource)(nil)

// DirSource reads *.eml files from a directory, in name order. An optional
// sender-domain filter drops digests from other senders.
type DirSource struct {
	dir          string
	domainFilter string
	log          *slog.Logger
}

func NewDirSource(dir, domainFilter string, log *slog.Logger) *DirSource {
	return &DirSource{dir: dir, domainFilter: domainFilter, log: log}
}

// Fetch parses every .eml file in the directory. A file that cannot be
// parsed is skipped with a warning; an unreadable directory is a batch-level
// error.
func (s *DirSource) Fetch(ctx context.Context) ([]models.RawDigest, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(strings.ToLower(e.Name()), ".eml") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	var digests []models.RawDigest
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		d, err := s.readOne(filepath.Join(s.dir, name))
		if err != nil {
			s.log.Warn("skipping unparseable digest file", "file", name, "error", err)
			continue
		}
		if s.domainFilter != "" && !senderMatches(d.From, s.domainFilter) {
			continue
		}
		digests = append(digests, d)
	}
	s.log.Info("digests loaded", "dir", s.dir, "count", len(digests))
	return digests, nil
}

func (s *DirSource) readOne(path string) (models.RawDigest, error) {
	f, err := os.Open(path)
	if err != nil {
		return models.RawDigest{}, err
	}
	defer f.Close()

	msg, err := mail.ReadMessage(f)
	if err != nil {
		return models.RawDigest{}, err
	}

	dec := new(mime.WordDecoder)
	subject := msg.Header.Get("Subject")
	if decoded, err := dec.DecodeHeader(subject); err == nil {
		subject = decoded
	}

	d := models.RawDigest{
		Subject:   subject,
		From:      msg.Header.Get("From"),
		MessageID: msg.Header.Get("Message-ID"),
	}
	if t, err := msg.Header.Date(); err == nil {
		d.Received = t
	}

	body, err := readBody(msg.Header, msg.Body)
	if err != nil {
		return models.RawDigest{}, err
	}
	d.Body = body
	return d, nil
}

// readBody extracts the textual body: for multipart messages the first
// text/plain part wins, falling back to text/html; single-part bodies are
// decoded per their transfer encoding.
func readBody(header mail.Header, r io.Reader) (string, error) {
	mediaType, params, err := mime.ParseMediaType(header.Get("Content-Type"))
	if err != nil {
		mediaType = "text/plain"
	}

	if strings.HasPrefix(mediaType, "multipart/") {
		return readMultipart(multipart.NewReader(r, params["boundary"]))
	}

	data, err := io.ReadAll(decodeTransfer(r, header.Get("Content-Transfer-Encoding")))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func readMultipart(mr *multipart.Reader) (string, error) {
	var html string
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		if strings.Contains(part.Header.Get("Content-Disposition"), "attachment") {
			continue
		}
		ctype := part.Header.Get("Content-Type")
		data, err := io.ReadAll(decodeTransfer(part, part.Header.Get("Content-Transfer-Encoding")))
		if err != nil {
			continue
		}
		switch {
		case strings.HasPrefix(ctype, "text/plain"), ctype == "":
			return string(data), nil
		case strings.HasPrefix(ctype, "text/html"):
			html = string(data)
		}
	}
	return html, nil
}

func decodeTransfer(r io.Reader, encoding string) io.Reader {
	if strings.EqualFold(strings.TrimSpace(encoding), "quoted-printable") {
		return quotedprintable.NewReader(r)
	}
	return r
}

func senderMatches(from, domainFilter string) bool {
	addr, err := mail.ParseAddress(from)
	if err != nil {
		return strings.Contains(from, domainFilter)
	}
	_, domain, ok := strings.Cut(addr.Address, "@")
	return ok && strings.Contains(domain, domainFilter)
}
