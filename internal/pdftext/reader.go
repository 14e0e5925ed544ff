package pdftext

import (
	"bytes"
	"fmt"
	"os"

	pdf "github.com/ledongthuc/pdf"
)

// PageTexts returns one newline-delimited text blob per page, in physical
// page order. Pages whose text cannot be decoded yield an empty blob so page
// numbering stays aligned with the document.
func PageTexts(content []byte) ([]string, error) {
	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, err
	}

	pages := make([]string, 0, r.NumPage())
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			pages = append(pages, "")
			continue
		}
		pages = append(pages, text)
	}
	return pages, nil
}

func PageTextsFromFile(path string) ([]string, error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pdf: %w", err)
	}
	return PageTexts(blob)
}
