package pdfcheck

import (
	"bytes"
	"fmt"
	"io"

	"github.com/ledongthuc/pdf"
)

// PageCount parses the PDF in r and returns its page count. Corrupt or
// non-PDF content returns an error, which lets uploads declared as PDF
// be rejected before they enter the pipeline.
func PageCount(r io.Reader) (int, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return 0, fmt.Errorf("read pdf failed: %w", err)
	}
	if len(b) == 0 {
		return 0, fmt.Errorf("empty pdf")
	}
	pdfReader, err := pdf.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		return 0, fmt.Errorf("parse pdf failed: %w", err)
	}
	pages := pdfReader.NumPage()
	if pages < 1 {
		return 0, fmt.Errorf("pdf has no pages")
	}
	return pages, nil
}
