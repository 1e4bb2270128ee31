package extract

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/docsift/docsift/internal/model"
)

// CSVExtractor handles CSV files, rendering rows as labeled lines.
type CSVExtractor struct{}

func (p *CSVExtractor) Extract(r io.Reader, filename string) ([]model.Page, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	// First row is headers.
	headers := records[0]

	var text strings.Builder
	text.WriteString(strings.Join(headers, ", ") + "\n\n")
	for _, row := range records[1:] {
		for j, cell := range row {
			if j < len(headers) {
				text.WriteString(headers[j] + ": " + cell)
			} else {
				text.WriteString(cell)
			}
			if j < len(row)-1 {
				text.WriteString(", ")
			}
		}
		text.WriteString("\n")
	}

	return pagesFromText(text.String()), nil
}
