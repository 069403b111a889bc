// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ai

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// TextBackend extracts the embedded text layer of a PDF without a network
// call. Scanned documents yield no text and tables are not reconstructed,
// so TableRows is always empty.
type TextBackend struct{}

// ExtractPDF joins the plain text of every non-empty page with blank lines.
func (TextBackend) ExtractPDF(_ context.Context, req PDFRequest) (PDFResult, error) {
	_, data, err := DecodeDataURI(req.DataURI)
	if err != nil {
		return PDFResult{}, err
	}

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return PDFResult{}, fmt.Errorf("opening PDF: %w", err)
	}

	fonts := make(map[string]*pdf.Font)
	var pages []string
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		for _, name := range p.Fonts() {
			if _, ok := fonts[name]; !ok {
				f := p.Font(name)
				fonts[name] = &f
			}
		}
		text, err := p.GetPlainText(fonts)
		if err != nil {
			return PDFResult{}, fmt.Errorf("reading PDF page %d: %w", i, err)
		}
		if trimmed := strings.TrimSpace(text); trimmed != "" {
			pages = append(pages, trimmed)
		}
	}

	return PDFResult{Text: strings.Join(pages, "\n\n"), TableRows: []any{}}, nil
}
