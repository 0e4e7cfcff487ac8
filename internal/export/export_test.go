package export

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type recordingLogger struct {
	warnings []string
}

func (r *recordingLogger) Warn(format string, args ...any) {
	r.warnings = append(r.warnings, fmt.Sprintf(format, args...))
}

func sampleDocument() Document {
	return Document{
		Title:    "Acme Brand Strategy",
		Subtitle: "Trustworthy tools for makers",
		Sections: []Section{
			{Heading: "Core", Lines: []string{"Name: Acme", "Associations: Trustworthy"}},
			{Heading: "Origin", Lines: []string{"", "  "}},
			{Heading: "Values: what / we * keep", Lines: []string{"Honesty", "Craft", "Café culture"}},
		},
	}
}

func newTestSink(log Logger) (*Sink, afero.Fs) {
	fs := afero.NewMemMapFs()
	clock := func() time.Time { return time.Date(2026, 5, 1, 9, 30, 0, 0, time.UTC) }
	return NewSink(fs, "/exports", WithLogger(log), WithClock(clock)), fs
}

func TestExportPDFWritesDocument(t *testing.T) {
	log := &recordingLogger{}
	sink, fs := newTestSink(log)
	path, err := sink.Export(sampleDocument(), FormatPDF, "brand.pdf")
	require.NoError(t, err)
	assert.Equal(t, "/exports/brand.pdf", path)

	data, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
	require.Len(t, log.warnings, 1)
	assert.Contains(t, log.warnings[0], "Origin")
}

func TestExportDeckUsesDeckSuffix(t *testing.T) {
	sink, fs := newTestSink(nil)
	path, err := sink.Export(sampleDocument(), FormatDeck, "brand")
	require.NoError(t, err)
	assert.Equal(t, "/exports/brand-deck.pdf", path)
	exists, err := afero.Exists(fs, path)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestExportXLSXHasSheetPerSection(t *testing.T) {
	sink, fs := newTestSink(nil)
	path, err := sink.Export(sampleDocument(), FormatXLSX, "")
	require.NoError(t, err)
	assert.Equal(t, "/exports/acme-brand-strategy-20260501-093000.xlsx", path)

	data, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	book, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer book.Close()

	assert.Equal(t, []string{"Overview", "Core", "Values what we keep"}, book.GetSheetList())
	value, err := book.GetCellValue("Core", "A2")
	require.NoError(t, err)
	assert.Equal(t, "Name: Acme", value)
}

func TestExportMarkdown(t *testing.T) {
	sink, fs := newTestSink(nil)
	path, err := sink.Export(sampleDocument(), FormatMarkdown, "notes.txt")
	require.NoError(t, err)
	assert.Equal(t, "/exports/notes.md", path)
	data, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	text := string(data)
	assert.True(t, strings.HasPrefix(text, "# Acme Brand Strategy\n"))
	assert.Contains(t, text, "## Core\n\n- Name: Acme\n")
	assert.NotContains(t, text, "## Origin")
}

func TestExportEmptyDocumentIsUserFacingError(t *testing.T) {
	sink, _ := newTestSink(nil)
	_, err := sink.Export(Document{Title: "Empty", Sections: []Section{{Heading: "A"}}}, FormatPDF, "x")
	var exportErr *Error
	require.True(t, errors.As(err, &exportErr))
	assert.Equal(t, "pdf", exportErr.Op)
	assert.NotEmpty(t, exportErr.Message)
}

func TestExportWriteFailureIsWrapped(t *testing.T) {
	sink := NewSink(afero.NewReadOnlyFs(afero.NewMemMapFs()), "/exports")
	_, err := sink.Export(sampleDocument(), FormatMarkdown, "x")
	var exportErr *Error
	require.True(t, errors.As(err, &exportErr))
	assert.Error(t, exportErr.Unwrap())
}

func TestRenderMarkdownMarksEmptySections(t *testing.T) {
	out := RenderMarkdown(Document{Title: "Plan", Sections: []Section{{Heading: "Risks"}}})
	assert.Contains(t, out, "## Risks\n\n_Not started._\n")
}

func TestParseFormat(t *testing.T) {
	for input, want := range map[string]Format{"PDF": FormatPDF, "slides": FormatDeck, "excel": FormatXLSX, "markdown": FormatMarkdown} {
		got, err := ParseFormat(input)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseFormat("png")
	assert.Error(t, err)
}

func TestSheetNameIsUniqueAndShort(t *testing.T) {
	used := map[string]bool{}
	long := strings.Repeat("x", 40)
	first := sheetName(long, used)
	second := sheetName(long, used)
	assert.Len(t, first, 31)
	assert.NotEqual(t, first, second)
	assert.LessOrEqual(t, len(second), 31)
	assert.Equal(t, "Section", sheetName("[]", used))
}

func TestSlug(t *testing.T) {
	assert.Equal(t, "acme-co-brand", Slug("  Acme Co. / Brand!! "))
	assert.Equal(t, "", Slug("***"))
}
