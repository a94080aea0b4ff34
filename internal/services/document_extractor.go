package services

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"

	"github.com/deepanshu089/suprathon/internal/models"
)

// DocumentExtractor turns an uploaded resume into plain text.
type DocumentExtractor interface {
	Extract(ctx context.Context, file models.SourceFile) (string, error)
}

type documentExtractor struct {
	storage StorageService
}

func NewDocumentExtractor(storage StorageService) DocumentExtractor {
	return &documentExtractor{storage: storage}
}

// SupportedMediaType reports whether Extract accepts the media type.
func SupportedMediaType(mediaType string) bool {
	switch mediaType {
	case models.MediaTypePDF, models.MediaTypeDOC, models.MediaTypeDOCX:
		return true
	}
	return false
}

// Extract implements DocumentExtractor.
func (d *documentExtractor) Extract(ctx context.Context, file models.SourceFile) (string, error) {
	if !SupportedMediaType(file.MediaType) {
		return "", &ExtractionError{Kind: KindUnsupportedType, FileName: file.Name, MediaType: file.MediaType}
	}
	if err := ctx.Err(); err != nil {
		return "", &ExtractionError{Kind: KindParseFailure, FileName: file.Name, MediaType: file.MediaType, Cause: err}
	}

	path, cleanup, err := d.storage.Stage(file)
	if err != nil {
		return "", &ExtractionError{Kind: KindParseFailure, FileName: file.Name, MediaType: file.MediaType, Cause: err}
	}
	defer cleanup()

	var text string
	if file.MediaType == models.MediaTypePDF {
		text, err = extractPDFText(path)
	} else {
		text, err = extractWordText(path)
	}
	if err != nil {
		return "", &ExtractionError{Kind: KindParseFailure, FileName: file.Name, MediaType: file.MediaType, Cause: err}
	}

	if strings.TrimSpace(text) == "" {
		return "", &ExtractionError{Kind: KindEmptyDocument, FileName: file.Name, MediaType: file.MediaType}
	}

	return text, nil
}

// runGapRatio is the horizontal gap, as a fraction of the font size, that
// separates two runs on the same baseline.
const runGapRatio = 0.2

// extractPDFText reads pages 1..N in order. The pdf package panics on some
// malformed inputs, so panics are turned into errors.
func extractPDFText(path string) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed PDF: %v", r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	totalPage := r.NumPage()
	pages := make([][]string, 0, totalPage)

	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		page := r.Page(pageIndex)
		if page.V.IsNull() {
			pages = append(pages, nil)
			continue
		}

		pages = append(pages, pageRuns(page.Content().Text))
	}

	return joinPageRuns(pages), nil
}

// pageRuns groups positioned glyphs into text runs. A run ends at whitespace,
// at a change of baseline, or where the next glyph starts noticeably to the
// right of where the previous one ended.
func pageRuns(glyphs []pdf.Text) []string {
	var runs []string
	var current strings.Builder
	flush := func() {
		if current.Len() > 0 {
			runs = append(runs, current.String())
			current.Reset()
		}
	}

	var prev *pdf.Text
	for i := range glyphs {
		g := &glyphs[i]
		if strings.TrimSpace(g.S) == "" {
			flush()
			prev = nil
			continue
		}
		if prev != nil && startsNewRun(*prev, *g) {
			flush()
		}
		current.WriteString(g.S)
		prev = g
	}
	flush()

	return runs
}

func startsNewRun(prev, next pdf.Text) bool {
	size := prev.FontSize
	if size <= 0 {
		size = 1
	}
	if math.Abs(next.Y-prev.Y) > size/2 {
		return true
	}
	gap := next.X - (prev.X + prev.W)
	return gap > size*runGapRatio || gap < -size
}

// joinPageRuns joins the runs of each page with single spaces and terminates
// every page with a newline.
func joinPageRuns(pages [][]string) string {
	var textBuilder strings.Builder
	for _, runs := range pages {
		textBuilder.WriteString(strings.Join(runs, " "))
		textBuilder.WriteString("\n")
	}
	return textBuilder.String()
}

// extractWordText opens the document with the docx reader and converts its
// body XML to text. Legacy binary .doc files fail to open as a zip and come
// back as a parse error.
func extractWordText(path string) (string, error) {
	doc, err := docx.ReadDocxFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to parse word document: %w", err)
	}
	defer doc.Close()

	return wordXMLToText(doc.Editable().GetContent())
}

// wordXMLToText keeps the text runs of a WordprocessingML body. Paragraph and
// line breaks become newlines, tabs become tab characters.
func wordXMLToText(content string) (string, error) {
	decoder := xml.NewDecoder(strings.NewReader(content))
	decoder.Strict = false

	var out bytes.Buffer
	inText := false
	for {
		tok, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("failed to decode document body: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				out.WriteByte('\t')
			case "br", "cr":
				out.WriteByte('\n')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				out.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				out.Write(t)
			}
		}
	}

	return out.String(), nil
}
