package services

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/ledongthuc/pdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deepanshu089/suprathon/internal/models"
)

const testDocumentRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"></Relationships>`

func buildDocx(t *testing.T, body string) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	files := map[string]string{
		"word/document.xml": `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
			`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
			body + `</w:body></w:document>`,
		"word/_rels/document.xml.rels": testDocumentRels,
	}
	for name, content := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

// buildPDF writes a minimal PDF with one Helvetica page per content stream.
func buildPDF(t *testing.T, pageStreams ...string) []byte {
	t.Helper()

	kids := make([]string, len(pageStreams))
	for i := range pageStreams {
		kids[i] = fmt.Sprintf("%d 0 R", 4+2*i)
	}
	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(pageStreams)),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>",
	}
	for i, stream := range pageStreams {
		objects = append(objects,
			fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>", 5+2*i),
			fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(stream), stream),
		)
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xrefOffset := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xrefOffset)
	return buf.Bytes()
}

func newTestExtractor(t *testing.T) (DocumentExtractor, string) {
	t.Helper()
	dir := t.TempDir()
	return NewDocumentExtractor(NewStorageService(dir)), dir
}

func assertNoStagedFiles(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "staged files must be removed")
}

func TestExtractUnsupportedType(t *testing.T) {
	extractor, dir := newTestExtractor(t)

	_, err := extractor.Extract(context.Background(), models.SourceFile{
		Name:      "notes.txt",
		MediaType: "text/plain",
		Data:      []byte("plain text resume"),
	})

	require.Error(t, err)
	assert.Equal(t, KindUnsupportedType, KindOf(err))
	assertNoStagedFiles(t, dir)
}

func TestExtractDocx(t *testing.T) {
	extractor, dir := newTestExtractor(t)
	body := `<w:p><w:r><w:t>Jane Doe</w:t></w:r></w:p>` +
		`<w:p><w:r><w:t>Go</w:t></w:r><w:r><w:tab/><w:t>Postgres</w:t></w:r></w:p>`

	text, err := extractor.Extract(context.Background(), models.SourceFile{
		Name:      "jane.docx",
		MediaType: models.MediaTypeDOCX,
		Data:      buildDocx(t, body),
	})

	require.NoError(t, err)
	assert.Equal(t, "Jane Doe\nGo\tPostgres\n", text)
	assertNoStagedFiles(t, dir)
}

func TestExtractPDFSeparatesPositionedRuns(t *testing.T) {
	extractor, dir := newTestExtractor(t)
	data := buildPDF(t,
		"BT /F1 12 Tf 72 720 Td (Senior) Tj 45 0 Td (Go) Tj 20 0 Td (Engineer) Tj -65 -16 Td (Remote) Tj ET",
		"BT /F1 12 Tf 72 720 Td (Page two) Tj ET",
	)

	text, err := extractor.Extract(context.Background(), models.SourceFile{
		Name:      "senior.pdf",
		MediaType: models.MediaTypePDF,
		Data:      data,
	})

	require.NoError(t, err)
	assert.Equal(t, "Senior Go Engineer Remote\nPage two\n", text)
	assertNoStagedFiles(t, dir)
}

func TestExtractPDFWithoutTextIsEmpty(t *testing.T) {
	extractor, _ := newTestExtractor(t)

	_, err := extractor.Extract(context.Background(), models.SourceFile{
		Name:      "scan.pdf",
		MediaType: models.MediaTypePDF,
		Data:      buildPDF(t, "0 0 m 100 100 l S"),
	})

	require.Error(t, err)
	assert.Equal(t, KindEmptyDocument, KindOf(err))
}

func TestPageRuns(t *testing.T) {
	glyph := func(s string, x, y, w float64) pdf.Text {
		return pdf.Text{FontSize: 10, X: x, Y: y, W: w, S: s}
	}

	tests := []struct {
		name   string
		glyphs []pdf.Text
		want   []string
	}{
		{
			name:   "adjacent glyphs form one run",
			glyphs: []pdf.Text{glyph("G", 0, 0, 7), glyph("o", 7, 0, 5)},
			want:   []string{"Go"},
		},
		{
			name:   "horizontal gap starts a run",
			glyphs: []pdf.Text{glyph("A", 0, 0, 6), glyph("B", 16, 0, 6)},
			want:   []string{"A", "B"},
		},
		{
			name:   "baseline change starts a run",
			glyphs: []pdf.Text{glyph("A", 0, 100, 6), glyph("B", 6, 80, 6)},
			want:   []string{"A", "B"},
		},
		{
			name:   "whitespace glyph separates runs",
			glyphs: []pdf.Text{glyph("A", 0, 0, 6), glyph(" ", 6, 0, 3), glyph("B", 9, 0, 6)},
			want:   []string{"A", "B"},
		},
		{
			name:   "no glyphs",
			glyphs: nil,
			want:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, pageRuns(tt.glyphs))
		})
	}
}

func TestExtractEmptyDocx(t *testing.T) {
	extractor, dir := newTestExtractor(t)

	_, err := extractor.Extract(context.Background(), models.SourceFile{
		Name:      "blank.docx",
		MediaType: models.MediaTypeDOCX,
		Data:      buildDocx(t, `<w:p><w:r><w:t>   </w:t></w:r></w:p>`),
	})

	require.Error(t, err)
	assert.Equal(t, KindEmptyDocument, KindOf(err))
	assertNoStagedFiles(t, dir)
}

func TestExtractCorruptFiles(t *testing.T) {
	extractor, dir := newTestExtractor(t)

	for _, mediaType := range []string{models.MediaTypePDF, models.MediaTypeDOC, models.MediaTypeDOCX} {
		_, err := extractor.Extract(context.Background(), models.SourceFile{
			Name:      "broken",
			MediaType: mediaType,
			Data:      []byte("definitely not a document"),
		})

		require.Error(t, err, mediaType)
		assert.Equal(t, KindParseFailure, KindOf(err), mediaType)
	}
	assertNoStagedFiles(t, dir)
}

func TestJoinPageRuns(t *testing.T) {
	text := joinPageRuns([][]string{
		{"Jane Doe", "Senior Engineer"},
		nil,
		{"Skills:", "Go"},
	})

	assert.Equal(t, "Jane Doe Senior Engineer\n\nSkills: Go\n", text)
}

func TestWordXMLToText(t *testing.T) {
	text, err := wordXMLToText(`<w:document xmlns:w="x"><w:body>` +
		`<w:p><w:r><w:t xml:space="preserve">Line one</w:t><w:br/><w:t>Line two</w:t></w:r></w:p>` +
		`<w:p><w:pPr><w:pStyle w:val="Heading"/></w:pPr><w:r><w:t>Tail &amp; end</w:t></w:r></w:p>` +
		`</w:body></w:document>`)

	require.NoError(t, err)
	assert.Equal(t, "Line one\nLine two\nTail & end\n", text)
}

func TestStoragePurgeStaged(t *testing.T) {
	dir := t.TempDir()
	storage := NewStorageService(dir)

	_, _, err := storage.Stage(models.SourceFile{Name: "a.pdf", MediaType: models.MediaTypePDF, Data: []byte("x")})
	require.NoError(t, err)
	_, _, err = storage.Stage(models.SourceFile{Name: "b.docx", MediaType: models.MediaTypeDOCX, Data: []byte("y")})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(dir+"/keep.txt", []byte("z"), 0600))

	n, err := storage.PurgeStaged()
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "keep.txt", entries[0].Name())
}
