package extract

import (
	"bufio"
	"io"
	"strings"

	"github.com/docsift/docsift/internal/model"
)

// TextExtractor handles plain text files. Form feeds mark page boundaries;
// without them the whole file is one page.
type TextExtractor struct{}

func (p *TextExtractor) Extract(r io.Reader, filename string) ([]model.Page, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var buf strings.Builder
	for scanner.Scan() {
		buf.WriteString(scanner.Text())
		buf.WriteString("\n")
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return pagesFromText(buf.String()), nil
}
