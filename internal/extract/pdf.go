package extract

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"

	"curebird/internal/util"
)

// PDFText returns the concatenated page text of a PDF, cut to budget runes.
func PDFText(data []byte, budget int) (text string, err error) {
	defer func() {
		// the parser panics on some malformed xref tables
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("parse pdf: %v", r)
		}
	}()
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	reader, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extract pdf text: %w", err)
	}
	buf := new(strings.Builder)
	if _, err := io.Copy(buf, reader); err != nil {
		return "", fmt.Errorf("read extracted text: %w", err)
	}
	text = util.NormalizeWhitespace(util.SanitizeText(buf.String()))
	if text == "" {
		return "", util.ErrNoExtractableText
	}
	return util.Truncate(text, budget, ""), nil
}
