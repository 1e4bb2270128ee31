// Package segment splits extracted page text into titled candidate sections.
package segment

import (
	"errors"
	"regexp"
	"strings"
	"unicode"

	"github.com/docsift/docsift/internal/lexicon"
	"github.com/docsift/docsift/internal/model"
)

// ErrEmptyDocument is returned for documents with no non-whitespace text.
// It is recoverable: the orchestrator logs it and skips the document.
var ErrEmptyDocument = errors.New("segment: document has no extractable text")

// Config controls segmentation behavior.
type Config struct {
	MaxHeaderTokens   int     // longest line still considered a header candidate
	MaxTitleTokens    int     // titles are capped at this many tokens
	MinSectionTokens  int     // shorter sections are merged into the next one
	MinHeaderDensity  float64 // headers per page below which the topic pass runs
	WindowWords       int     // topic pass window size
	BoundaryThreshold float64 // topic pass similarity cut-off
	MaxSections       int     // per-document section cap
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		MaxHeaderTokens:   12,
		MaxTitleTokens:    12,
		MinSectionTokens:  25,
		MinHeaderDensity:  0.5,
		WindowWords:       200,
		BoundaryThreshold: 0.15,
		MaxSections:       10,
	}
}

func (cfg Config) withDefaults() Config {
	def := DefaultConfig()
	if cfg.MaxHeaderTokens <= 0 {
		cfg.MaxHeaderTokens = def.MaxHeaderTokens
	}
	if cfg.MaxTitleTokens <= 0 {
		cfg.MaxTitleTokens = def.MaxTitleTokens
	}
	if cfg.MinSectionTokens <= 0 {
		cfg.MinSectionTokens = def.MinSectionTokens
	}
	if cfg.MinHeaderDensity <= 0 {
		cfg.MinHeaderDensity = def.MinHeaderDensity
	}
	if cfg.WindowWords <= 0 {
		cfg.WindowWords = def.WindowWords
	}
	if cfg.BoundaryThreshold <= 0 {
		cfg.BoundaryThreshold = def.BoundaryThreshold
	}
	if cfg.MaxSections <= 0 {
		cfg.MaxSections = def.MaxSections
	}
	return cfg
}

// Segment splits a document into an ordered sequence of candidate sections.
// It never returns zero sections for a document containing text: the header
// pass is tried first, the topic pass when the document looks unstructured,
// and whole-page sections as a last resort.
func Segment(doc model.Document, cfg Config) ([]model.Section, error) {
	cfg = cfg.withDefaults()

	if !hasText(doc) {
		return nil, ErrEmptyDocument
	}

	sections := headerPass(doc, cfg)

	// Too few headers means the header heuristics are just picking up
	// noise; re-segment by topic shift instead.
	headers := 0
	for _, s := range sections {
		if !s.Synthesized {
			headers++
		}
	}
	if float64(headers) < cfg.MinHeaderDensity*float64(len(doc.Pages)) {
		if topical := topicPass(doc, cfg); len(topical) > 0 {
			sections = topical
		}
	}

	if len(sections) == 0 {
		sections = pageFallback(doc)
	}

	for i := range sections {
		normalizeTitle(&sections[i], cfg)
	}
	sections = mergeSmall(sections, cfg)

	if len(sections) > cfg.MaxSections {
		sections = sections[:cfg.MaxSections]
	}
	for i := range sections {
		sections[i].Seq = i
	}
	return sections, nil
}

func hasText(doc model.Document) bool {
	for _, p := range doc.Pages {
		if strings.TrimSpace(p.Text) != "" {
			return true
		}
	}
	return false
}

// headerPass scans lines across pages. A header candidate closes the open
// section and starts a new one; body text before any header becomes an
// untitled section anchored to its page.
func headerPass(doc model.Document, cfg Config) []model.Section {
	var sections []model.Section
	var cur *model.Section
	var body strings.Builder
	offset := 0

	flush := func(end int) {
		if cur == nil {
			return
		}
		cur.Body = strings.TrimSpace(body.String())
		cur.End = end
		if cur.Body != "" {
			sections = append(sections, *cur)
		}
		cur = nil
		body.Reset()
	}

	for _, page := range doc.Pages {
		for _, line := range strings.Split(page.Text, "\n") {
			trimmed := strings.TrimSpace(line)
			lineStart := offset
			offset += len(line) + 1
			if trimmed == "" {
				continue
			}

			if isHeaderCandidate(trimmed, cfg) {
				flush(lineStart)
				cur = &model.Section{
					Document:   doc.Filename,
					Title:      trimmed,
					PageNumber: page.Number,
					Start:      lineStart,
				}
				continue
			}

			if cur == nil {
				// Page with no header and no open section.
				cur = &model.Section{
					Document:    doc.Filename,
					PageNumber:  page.Number,
					Start:       lineStart,
					Synthesized: true,
				}
			}
			if body.Len() > 0 {
				body.WriteString("\n")
			}
			body.WriteString(trimmed)
		}
	}
	flush(offset)
	return sections
}

var numberedPrefix = regexp.MustCompile(`^\d+(\.\d+)*\.?\s+`)

// Connector words that may stay lowercase inside a title-case header.
var titleConnectors = map[string]bool{
	"a": true, "an": true, "and": true, "at": true, "by": true, "for": true,
	"in": true, "of": true, "on": true, "or": true, "per": true, "the": true,
	"to": true, "with": true,
}

func isHeaderCandidate(line string, cfg Config) bool {
	tokens := strings.Fields(line)
	if len(tokens) == 0 || len(tokens) > cfg.MaxHeaderTokens {
		return false
	}
	if strings.HasSuffix(line, ".") || strings.HasSuffix(line, "!") ||
		strings.HasSuffix(line, "?") || strings.HasSuffix(line, ",") {
		return false
	}

	if numberedPrefix.MatchString(line) {
		return true
	}
	if strings.HasSuffix(line, ":") {
		return true
	}
	if isAllUpper(line) {
		return true
	}
	return isTitleCase(tokens)
}

func isAllUpper(line string) bool {
	hasLetter := false
	for _, r := range line {
		if unicode.IsLetter(r) {
			hasLetter = true
			if unicode.IsLower(r) {
				return false
			}
		}
	}
	return hasLetter
}

// isTitleCase accepts headers like "Budget per Guest": the first word is
// capitalized and at most one non-connector word leads lowercase.
func isTitleCase(tokens []string) bool {
	first := []rune(tokens[0])
	if len(first) == 0 || !unicode.IsUpper(first[0]) {
		return false
	}
	lowerLed := 0
	for _, tok := range tokens[1:] {
		r := []rune(tok)
		if len(r) == 0 || unicode.IsUpper(r[0]) || unicode.IsDigit(r[0]) {
			continue
		}
		if titleConnectors[strings.ToLower(tok)] {
			continue
		}
		lowerLed++
	}
	return lowerLed <= 1
}

// topicPass partitions the document into fixed-size word windows and cuts a
// section boundary wherever the term overlap between consecutive windows
// drops below the threshold.
func topicPass(doc model.Document, cfg Config) []model.Section {
	windows := buildWindows(doc, cfg.WindowWords)
	if len(windows) == 0 {
		return nil
	}

	var sections []model.Section
	start := 0
	prevTerms := termSet(windows[0].text)
	for i := 1; i < len(windows); i++ {
		terms := termSet(windows[i].text)
		if jaccard(prevTerms, terms) < cfg.BoundaryThreshold {
			sections = append(sections, windowSection(doc, windows[start:i]))
			start = i
		}
		prevTerms = terms
	}
	sections = append(sections, windowSection(doc, windows[start:]))
	return sections
}

type window struct {
	text  string
	page  int
	start int
	end   int
}

func buildWindows(doc model.Document, size int) []window {
	var windows []window
	var words []string
	cur := window{page: 0, start: 0}
	offset := 0

	flush := func(end int) {
		if len(words) == 0 {
			return
		}
		cur.text = strings.Join(words, " ")
		cur.end = end
		windows = append(windows, cur)
		words = nil
	}

	for _, page := range doc.Pages {
		wordStart := offset
		for _, w := range strings.Fields(page.Text) {
			if len(words) == 0 {
				cur = window{page: page.Number, start: wordStart}
			}
			words = append(words, w)
			wordStart += len(w) + 1
			if len(words) >= size {
				flush(wordStart)
			}
		}
		offset += len(page.Text) + 1
	}
	flush(offset)
	return windows
}

func windowSection(doc model.Document, ws []window) model.Section {
	var parts []string
	for _, w := range ws {
		parts = append(parts, w.text)
	}
	body := strings.Join(parts, " ")
	return model.Section{
		Document:    doc.Filename,
		Body:        body,
		PageNumber:  ws[0].page,
		Start:       ws[0].start,
		End:         ws[len(ws)-1].end,
		Synthesized: true,
	}
}

func termSet(text string) map[string]bool {
	set := make(map[string]bool)
	for _, term := range lexicon.Terms(text, 0) {
		set[term] = true
	}
	return set
}

func jaccard(a, b map[string]bool) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	inter := 0
	for term := range a {
		if b[term] {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	return float64(inter) / float64(union)
}

// pageFallback turns every non-blank page into one untitled section.
func pageFallback(doc model.Document) []model.Section {
	var sections []model.Section
	offset := 0
	for _, page := range doc.Pages {
		text := strings.TrimSpace(page.Text)
		if text != "" {
			sections = append(sections, model.Section{
				Document:    doc.Filename,
				Body:        text,
				PageNumber:  page.Number,
				Start:       offset,
				End:         offset + len(page.Text),
				Synthesized: true,
			})
		}
		offset += len(page.Text) + 1
	}
	return sections
}

var markupNoise = regexp.MustCompile(`^[#*\-=\s]+|[#*=\s]+$`)

// normalizeTitle strips numbering and markup noise, caps the token count,
// and synthesizes a title from the body when extraction yielded none.
func normalizeTitle(s *model.Section, cfg Config) {
	title := s.Title
	title = numberedPrefix.ReplaceAllString(title, "")
	title = markupNoise.ReplaceAllString(title, "")
	title = strings.TrimSuffix(title, ":")
	title = strings.Join(strings.Fields(title), " ")

	if title == "" {
		title = leadingClause(s.Body, cfg.MaxTitleTokens)
		s.Synthesized = true
	}

	tokens := strings.Fields(title)
	if len(tokens) > cfg.MaxTitleTokens {
		tokens = tokens[:cfg.MaxTitleTokens]
		title = strings.Join(tokens, " ")
	}
	s.Title = title
}

// leadingClause takes the first sentence of text, capped at maxTokens.
func leadingClause(text string, maxTokens int) string {
	text = strings.TrimSpace(text)
	for i, r := range text {
		if r == '.' || r == '!' || r == '?' || r == '\n' {
			text = text[:i]
			break
		}
	}
	tokens := strings.Fields(text)
	if len(tokens) > maxTokens {
		tokens = tokens[:maxTokens]
	}
	if len(tokens) == 0 {
		return "Untitled Section"
	}
	return strings.Join(tokens, " ")
}

// mergeSmall folds sections below the minimum token count into the
// following section so trivial fragments don't skew ranking.
func mergeSmall(sections []model.Section, cfg Config) []model.Section {
	if len(sections) <= 1 {
		return sections
	}
	var out []model.Section
	for i := 0; i < len(sections); i++ {
		s := sections[i]
		if len(strings.Fields(s.Body)) >= cfg.MinSectionTokens {
			out = append(out, s)
			continue
		}
		if i+1 < len(sections) {
			next := &sections[i+1]
			next.Body = s.Body + "\n" + next.Body
			next.Start = s.Start
			if s.PageNumber < next.PageNumber {
				next.PageNumber = s.PageNumber
			}
		} else if len(out) > 0 {
			prev := &out[len(out)-1]
			prev.Body = prev.Body + "\n" + s.Body
			prev.End = s.End
		} else {
			out = append(out, s)
		}
	}
	return out
}
