// Package extract converts raw document files into ordered page text.
// Binary format internals stay behind the narrow Extractor contract; the
// pipeline only ever sees pages.
package extract

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/docsift/docsift/internal/model"
)

// Extractor converts raw document bytes into an ordered page sequence.
type Extractor interface {
	Extract(r io.Reader, filename string) ([]model.Page, error)
}

// ReadError reports a per-document extraction failure. It is recoverable:
// the orchestrator logs it and skips the document.
type ReadError struct {
	Filename string
	Err      error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("read document %s: %v", e.Filename, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// SupportedExtensions lists file extensions this package can handle.
var SupportedExtensions = map[string]bool{
	".pdf":  true,
	".txt":  true,
	".md":   true,
	".csv":  true,
	".html": true,
	".htm":  true,
	".docx": true,
}

// Reader reads documents from a directory with configured extraction
// options. The zero value reads from the current directory with PDF
// fallback disabled.
type Reader struct {
	Dir                  string
	PDFFallbackPdftotext bool
}

// ForFile returns the appropriate extractor for a filename, with PDF
// fallback enabled.
func ForFile(filename string) (Extractor, error) {
	return Reader{PDFFallbackPdftotext: true}.forFile(filename)
}

func (r Reader) forFile(filename string) (Extractor, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".pdf":
		return &PDFExtractor{FallbackPdftotext: r.PDFFallbackPdftotext}, nil
	case ".txt":
		return &TextExtractor{}, nil
	case ".md", ".markdown":
		return &MarkdownExtractor{}, nil
	case ".csv":
		return &CSVExtractor{}, nil
	case ".html", ".htm":
		return &HTMLExtractor{}, nil
	case ".docx":
		return &DOCXExtractor{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// ReadDocument resolves ref against dir with default options. See
// Reader.ReadDocument.
func ReadDocument(dir string, ref model.DocumentRef) (model.Document, error) {
	return Reader{Dir: dir, PDFFallbackPdftotext: true}.ReadDocument(ref)
}

// ReadDocument resolves ref against the reader's directory, extracts its
// pages, and returns an immutable Document. All failures come back as
// *ReadError.
func (r Reader) ReadDocument(ref model.DocumentRef) (model.Document, error) {
	ex, err := r.forFile(ref.Filename)
	if err != nil {
		return model.Document{}, &ReadError{Filename: ref.Filename, Err: err}
	}

	path := filepath.Join(r.Dir, ref.Filename)
	f, err := os.Open(path)
	if err != nil {
		return model.Document{}, &ReadError{Filename: ref.Filename, Err: err}
	}
	defer f.Close()

	pages, err := ex.Extract(f, ref.Filename)
	if err != nil {
		return model.Document{}, &ReadError{Filename: ref.Filename, Err: err}
	}
	if len(pages) == 0 {
		return model.Document{}, &ReadError{Filename: ref.Filename, Err: fmt.Errorf("no extractable text")}
	}

	title := ref.Title
	if title == "" {
		title = strings.TrimSuffix(ref.Filename, filepath.Ext(ref.Filename))
	}

	return model.Document{
		Filename: ref.Filename,
		Title:    title,
		Pages:    pages,
	}, nil
}

// pagesFromText splits flat text into pages on form feeds, the separator
// pdftotext and our own extractors emit. Text without form feeds becomes a
// single page. Blank pages are skipped but keep their numbers.
func pagesFromText(text string) []model.Page {
	var pages []model.Page
	for i, chunk := range strings.Split(text, "\f") {
		chunk = strings.TrimSpace(chunk)
		if chunk == "" {
			continue
		}
		pages = append(pages, model.Page{Number: i + 1, Text: chunk})
	}
	return pages
}
