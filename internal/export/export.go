// Package export turns a journey snapshot into a downloadable artifact:
// a paged PDF, a landscape slide deck, an XLSX workbook or Markdown.
package export

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/spf13/afero"

	"github.com/kingrea/waypoint/internal/storage"
)

// Format selects the artifact type.
type Format string

const (
	FormatPDF      Format = "pdf"
	FormatDeck     Format = "deck"
	FormatXLSX     Format = "xlsx"
	FormatMarkdown Format = "md"
)

// Formats lists every supported format.
func Formats() []Format {
	return []Format{FormatPDF, FormatDeck, FormatXLSX, FormatMarkdown}
}

// ParseFormat maps user input to a Format.
func ParseFormat(value string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "pdf":
		return FormatPDF, nil
	case "deck", "slides":
		return FormatDeck, nil
	case "xlsx", "excel":
		return FormatXLSX, nil
	case "md", "markdown":
		return FormatMarkdown, nil
	}
	return "", fmt.Errorf("export: unknown format %q", value)
}

// Extension returns the file extension for f.
func (f Format) Extension() string {
	switch f {
	case FormatXLSX:
		return ".xlsx"
	case FormatMarkdown:
		return ".md"
	default:
		return ".pdf"
	}
}

// Section is one page or slide worth of content.
type Section struct {
	Heading string
	Lines   []string
}

// Document is the renderable snapshot handed to the sink.
type Document struct {
	Title    string
	Subtitle string
	Sections []Section
}

// Error is the single user-facing failure an export returns.
type Error struct {
	Op      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("export %s: %s: %v", e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("export %s: %s", e.Op, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Logger receives notices about skipped sections.
type Logger interface {
	Warn(format string, args ...any)
}

// Sink writes artifacts into a directory.
type Sink struct {
	fs       afero.Fs
	dir      string
	pageSize string
	log      Logger
	now      func() time.Time
}

// Option configures a Sink.
type Option func(*Sink)

// WithPageSize sets the PDF page size (A4, Letter, ...).
func WithPageSize(size string) Option {
	return func(s *Sink) {
		if strings.TrimSpace(size) != "" {
			s.pageSize = size
		}
	}
}

// WithLogger routes skipped-section notices to log.
func WithLogger(log Logger) Option {
	return func(s *Sink) {
		s.log = log
	}
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Sink) {
		if now != nil {
			s.now = now
		}
	}
}

// NewSink creates a sink writing into dir.
func NewSink(fsys afero.Fs, dir string, opts ...Option) *Sink {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	s := &Sink{fs: fsys, dir: dir, pageSize: "A4", now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Export renders doc in format and writes it as fileName (extension is
// added or corrected). It returns the written path.
func (s *Sink) Export(doc Document, format Format, fileName string) (string, error) {
	doc = s.prune(doc)
	if len(doc.Sections) == 0 {
		return "", &Error{Op: string(format), Message: "nothing to export yet: every section is empty"}
	}
	var (
		buf bytes.Buffer
		err error
	)
	switch format {
	case FormatPDF:
		err = s.renderPDF(&buf, doc)
	case FormatDeck:
		err = s.renderDeck(&buf, doc)
	case FormatXLSX:
		err = s.renderXLSX(&buf, doc)
	case FormatMarkdown:
		_, err = buf.WriteString(RenderMarkdown(doc))
	default:
		return "", &Error{Op: string(format), Message: "unsupported format"}
	}
	if err != nil {
		return "", &Error{Op: string(format), Message: "could not render document", Err: err}
	}
	path := filepath.Join(s.dir, s.fileName(doc, format, fileName))
	if err := storage.WriteFileAtomic(s.fs, path, buf.Bytes()); err != nil {
		return "", &Error{Op: string(format), Message: "could not write file", Err: err}
	}
	return path, nil
}

func (s *Sink) prune(doc Document) Document {
	out := Document{Title: doc.Title, Subtitle: doc.Subtitle}
	for _, section := range doc.Sections {
		var lines []string
		for _, line := range section.Lines {
			if strings.TrimSpace(line) != "" {
				lines = append(lines, line)
			}
		}
		if len(lines) == 0 {
			if s.log != nil {
				s.log.Warn("export: skipped empty section %q of %q", section.Heading, doc.Title)
			}
			continue
		}
		out.Sections = append(out.Sections, Section{Heading: section.Heading, Lines: lines})
	}
	return out
}

func (s *Sink) fileName(doc Document, format Format, requested string) string {
	base := strings.TrimSpace(filepath.Base(requested))
	if base == "" || base == "." || base == string(filepath.Separator) {
		base = Slug(doc.Title)
		if base == "" {
			base = "waypoint"
		}
		base += "-" + s.now().Format("20060102-150405")
	}
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if format == FormatDeck && !strings.HasSuffix(base, "-deck") {
		base += "-deck"
	}
	return base + format.Extension()
}

// Slug lowercases s and keeps letters, digits and single dashes.
func Slug(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
