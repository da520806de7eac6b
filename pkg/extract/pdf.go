// Package extract turns uploaded PDF bytes into plain text.
package extract

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"

	"docchat/pkg/domain"
)

// MaxFileBytes is the per-file upload cap. Distinct from the cumulative
// corpus quota enforced by the corpus manager.
const MaxFileBytes = 20 << 20

// Result is the outcome of a successful extraction. Text may be empty when
// the PDF carries no extractable text layer (for example a pure scan).
type Result struct {
	Text      string
	CharCount int
}

// Extractor validates upload constraints and extracts text from PDF bytes.
// Extraction is a pure function of the input: no side effects, identical
// bytes always yield identical text.
type Extractor struct{}

func New() *Extractor {
	return &Extractor{}
}

// Extract validates the upload and parses its text content. Validation
// failures are reported before the parser ever runs. An unreadable or
// encrypted PDF fails with domain.ErrExtraction and must not be retried.
func (e *Extractor) Extract(data []byte, filename string) (res Result, err error) {
	if len(data) == 0 {
		return Result{}, fmt.Errorf("%w: empty file", domain.ErrValidation)
	}
	if len(data) > MaxFileBytes {
		return Result{}, fmt.Errorf("%w: file too large", domain.ErrValidation)
	}
	if strings.ToLower(filepath.Ext(filename)) != ".pdf" {
		return Result{}, fmt.Errorf("%w: unsupported file type", domain.ErrValidation)
	}

	// The pdf library panics on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			res = Result{}
			err = fmt.Errorf("%w: %v", domain.ErrExtraction, r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", domain.ErrExtraction, err)
	}

	var sb strings.Builder
	totalPages := reader.NumPage()
	for i := 1; i <= totalPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// Skip problematic pages instead of failing entirely.
			continue
		}
		text = normalizeText(text)
		if text == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(text)
	}

	text := sb.String()
	return Result{Text: text, CharCount: utf8.RuneCountInString(text)}, nil
}

// normalizeText strips NUL bytes and invalid UTF-8 and collapses runs of
// whitespace, keeping word boundaries intact.
func normalizeText(text string) string {
	text = strings.ReplaceAll(text, "\x00", " ")
	text = strings.ToValidUTF8(text, "")
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	return strings.Join(strings.Fields(text), " ")
}
