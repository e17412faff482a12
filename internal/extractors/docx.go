package extractors

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/custodia-labs/sercha-estimator/internal/core/ports/driven"
)

// Verify interface compliance
var (
	_ driven.TextExtractor = (*DOCXExtractor)(nil)
	_ driven.TextExtractor = (*LegacyDOCExtractor)(nil)
)

// ErrNoDocumentBody is returned when a DOCX archive has no word/document.xml
var ErrNoDocumentBody = errors.New("docx: word/document.xml not found")

// DOCXExtractor reads paragraph text from an Office Open XML document.
type DOCXExtractor struct{}

// NewDOCXExtractor creates a DOCX extractor.
func NewDOCXExtractor() *DOCXExtractor {
	return &DOCXExtractor{}
}

// Extract returns one line per non-empty paragraph.
func (e *DOCXExtractor) Extract(ctx context.Context, data []byte) (string, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open docx: %w", err)
	}

	for _, file := range reader.File {
		if file.Name != "word/document.xml" {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return "", fmt.Errorf("open document.xml: %w", err)
		}
		defer rc.Close()
		return paragraphsText(rc)
	}
	return "", ErrNoDocumentBody
}

// paragraphsText walks the XML token stream so text inside tables and
// hyperlinks is kept along with plain paragraphs.
func paragraphsText(r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)
	var (
		out    strings.Builder
		line   strings.Builder
		inText bool
	)
	flush := func() {
		if s := strings.TrimSpace(line.String()); s != "" {
			if out.Len() > 0 {
				out.WriteByte('\n')
			}
			out.WriteString(s)
		}
		line.Reset()
	}

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("parse document.xml: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				line.WriteByte('\t')
			case "br", "cr":
				line.WriteByte(' ')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				flush()
			}
		case xml.CharData:
			if inText {
				line.Write(t)
			}
		}
	}
	flush()
	return out.String(), nil
}

// SupportedExtensions returns the extensions this extractor handles.
// Many .doc uploads are renamed DOCX archives, so .doc is tried here first.
func (e *DOCXExtractor) SupportedExtensions() []string {
	return []string{"docx", "doc"}
}

// Priority returns the selection priority.
func (e *DOCXExtractor) Priority() int {
	return 50
}

// LegacyDOCExtractor recovers readable text from binary Word 97-2003 files by
// collecting runs of printable ASCII.
type LegacyDOCExtractor struct {
	minRun int
}

// NewLegacyDOCExtractor creates a legacy DOC extractor.
func NewLegacyDOCExtractor() *LegacyDOCExtractor {
	return &LegacyDOCExtractor{minRun: 4}
}

// Extract returns printable runs of at least minRun characters, one per line.
func (e *LegacyDOCExtractor) Extract(ctx context.Context, data []byte) (string, error) {
	var (
		out strings.Builder
		run strings.Builder
	)
	flush := func() {
		if s := strings.TrimSpace(run.String()); len(s) >= e.minRun {
			if out.Len() > 0 {
				out.WriteByte('\n')
			}
			out.WriteString(s)
		}
		run.Reset()
	}
	for _, b := range data {
		if b < unicode.MaxASCII && (unicode.IsPrint(rune(b)) || b == '\t') {
			run.WriteByte(b)
			continue
		}
		flush()
	}
	flush()

	if out.Len() == 0 {
		return "", errors.New("doc: no readable text")
	}
	return out.String(), nil
}

// SupportedExtensions returns the extensions this extractor handles.
func (e *LegacyDOCExtractor) SupportedExtensions() []string {
	return []string{"doc"}
}

// Priority returns the selection priority.
func (e *LegacyDOCExtractor) Priority() int {
	return 5
}
