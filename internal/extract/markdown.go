package extract

import (
	"bytes"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/docsift/docsift/internal/model"
)

// MarkdownExtractor handles Markdown files using goldmark. Headings are
// emitted as standalone lines so the segmenter's header pass can see them.
type MarkdownExtractor struct{}

func (p *MarkdownExtractor) Extract(r io.Reader, filename string) ([]model.Page, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	md := goldmark.New()
	reader := text.NewReader(src)
	doc := md.Parser().Parse(reader)

	var buf strings.Builder
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *ast.Heading:
			title := string(node.Text(src))
			if title != "" {
				buf.WriteString("\n")
				buf.WriteString(title)
				buf.WriteString("\n")
			}
		default:
			t := blockText(n, src)
			if t != "" {
				buf.WriteString(t)
				buf.WriteString("\n\n")
			}
		}
	}

	return pagesFromText(buf.String()), nil
}

// blockText gets the text content of a goldmark AST node. Nodes that carry
// raw source lines use those; container nodes recurse into their children.
func blockText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	if n.Type() == ast.TypeBlock && n.Lines().Len() > 0 {
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			buf.Write(seg.Value(src))
		}
		return strings.TrimSpace(buf.String())
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			buf.Write(t.Value(src))
			if t.HardLineBreak() || t.SoftLineBreak() {
				buf.WriteByte('\n')
			}
			continue
		}
		if s := blockText(c, src); s != "" {
			buf.WriteString(s)
			buf.WriteByte('\n')
		}
	}
	return strings.TrimSpace(buf.String())
}
