// Package refine compresses ranked sections into short excerpts that stay
// verbatim-grounded in the source text.
package refine

import (
	"fmt"
	"regexp"
	"strings"

	prose "github.com/jdkato/prose/v2"

	"github.com/docsift/docsift/internal/model"
)

// Config bounds the size of a refined excerpt, in words.
type Config struct {
	MinWords int
	MaxWords int
}

// DefaultConfig returns the standard excerpt band.
func DefaultConfig() Config {
	return Config{MinWords: 40, MaxWords: 120}
}

func (cfg Config) withDefaults() Config {
	def := DefaultConfig()
	if cfg.MinWords <= 0 {
		cfg.MinWords = def.MinWords
	}
	if cfg.MaxWords <= cfg.MinWords {
		cfg.MaxWords = cfg.MinWords + def.MaxWords - def.MinWords
	}
	return cfg
}

// Refine extracts the most persona-relevant contiguous sentence span from a
// section body. The result is always non-empty for a non-empty body, always
// within the word band, and always passes Verify against the body; when the
// scored span somehow fails verification the raw leading excerpt is used
// instead, at half quality.
func Refine(sec model.Section, keywords []string, cfg Config) model.Subsection {
	cfg = cfg.withDefaults()

	sub := model.Subsection{
		Document:   sec.Document,
		PageNumber: sec.PageNumber,
	}

	body := cleanup(sec.Body)
	if body == "" {
		return sub
	}

	var refined string
	var quality float64
	if wordCount(body) <= cfg.MaxWords {
		refined = body
		quality = scoreText(body, keywords)
	} else {
		sentences := splitSentences(body)
		refined, quality = bestSpan(sentences, keywords, cfg)
		refined = truncateWords(refined, cfg.MaxWords)
	}

	if err := Verify(refined, sec.Body); err != nil {
		refined = truncateWords(body, cfg.MaxWords)
		quality /= 2
	}

	sub.RefinedText = refined
	sub.Quality = clamp01(quality)
	return sub
}

// AccuracyError reports refined text containing words absent from its
// source section.
type AccuracyError struct {
	Extra []string
}

func (e *AccuracyError) Error() string {
	return fmt.Sprintf("refine: excerpt contains words not in source: %s", strings.Join(e.Extra, ", "))
}

// connectives may appear in refined text without support from the source,
// so sentence joins and light normalization stay legal.
var connectives = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true, "at": true,
	"be": true, "been": true, "but": true, "by": true, "for": true,
	"from": true, "in": true, "is": true, "it": true, "its": true,
	"of": true, "on": true, "or": true, "so": true, "than": true,
	"that": true, "the": true, "then": true, "this": true, "to": true,
	"was": true, "were": true, "with": true,
}

// Verify checks that every content word of refined occurs in source.
// A nil return means the excerpt is fully grounded.
func Verify(refined, source string) error {
	available := make(map[string]bool)
	for _, tok := range contentTokens(source) {
		available[tok] = true
	}

	var extra []string
	seen := make(map[string]bool)
	for _, tok := range contentTokens(refined) {
		if available[tok] || connectives[tok] || seen[tok] {
			continue
		}
		seen[tok] = true
		extra = append(extra, tok)
	}
	if len(extra) > 0 {
		return &AccuracyError{Extra: extra}
	}
	return nil
}

func contentTokens(text string) []string {
	var tokens []string
	for _, word := range strings.Fields(text) {
		tok := strings.ToLower(strings.Trim(word, ".,;:!?()[]{}\"'"))
		if tok != "" {
			tokens = append(tokens, tok)
		}
	}
	return tokens
}

// bestSpan returns the contiguous sentence run with the highest
// length-weighted average score that fits the word band. Earlier spans win
// ties so output is stable.
func bestSpan(sentences []string, keywords []string, cfg Config) (string, float64) {
	if len(sentences) == 0 {
		return "", 0
	}

	counts := make([]int, len(sentences))
	scores := make([]float64, len(sentences))
	for i, s := range sentences {
		counts[i] = wordCount(s)
		scores[i] = scoreText(s, keywords)
	}

	bestStart, bestEnd := 0, 1
	bestAvg := -1.0
	for i := range sentences {
		words := 0
		var weighted float64
		for j := i; j < len(sentences); j++ {
			if words > 0 && words+counts[j] > cfg.MaxWords {
				break
			}
			words += counts[j]
			weighted += scores[j] * float64(counts[j])

			if words < cfg.MinWords && j < len(sentences)-1 {
				continue
			}
			avg := weighted / float64(words)
			if avg > bestAvg+1e-9 {
				bestStart, bestEnd, bestAvg = i, j+1, avg
			}
		}
	}

	span := strings.Join(sentences[bestStart:bestEnd], " ")
	return span, bestAvg
}

// imperatives are instruction verbs that make a sentence actionable for
// the reader, worth a small boost.
var imperatives = map[string]bool{
	"add": true, "avoid": true, "book": true, "bring": true, "check": true,
	"confirm": true, "contact": true, "ensure": true, "include": true,
	"keep": true, "pack": true, "plan": true, "prepare": true,
	"reserve": true, "submit": true, "use": true, "verify": true,
}

// scoreText rates a sentence by keyword density with small boosts for
// concrete figures and actionable phrasing.
func scoreText(text string, keywords []string) float64 {
	tokens := contentTokens(text)
	if len(tokens) == 0 {
		return 0
	}

	hits := 0
	for _, tok := range tokens {
		for _, key := range keywords {
			if strings.Contains(tok, key) {
				hits++
				break
			}
		}
	}
	density := float64(hits) / float64(len(tokens))
	score := 0.7 * minf(1, 4*density)

	if strings.ContainsAny(text, "0123456789") {
		score += 0.15
	}
	if imperatives[tokens[0]] {
		score += 0.15
	}
	return clamp01(score)
}

var sentenceEnd = regexp.MustCompile(`([.!?])\s+`)

// splitSentences prefers the trained segmenter and falls back to a
// punctuation split when it fails.
func splitSentences(text string) []string {
	doc, err := prose.NewDocument(text, prose.WithTagging(false), prose.WithExtraction(false))
	if err == nil {
		var out []string
		for _, s := range doc.Sentences() {
			if t := strings.TrimSpace(s.Text); t != "" {
				out = append(out, t)
			}
		}
		if len(out) > 0 {
			return out
		}
	}

	var out []string
	for _, s := range sentenceEnd.Split(text, -1) {
		if t := strings.TrimSpace(s); t != "" {
			out = append(out, t)
		}
	}
	return out
}

var (
	bulletPrefix = regexp.MustCompile(`(?m)^[\s]*[-*•►]+\s*`)
	multiSpace   = regexp.MustCompile(`\s+`)
)

// cleanup strips bullet markers and collapses whitespace so excerpts read
// as continuous prose.
func cleanup(text string) string {
	text = bulletPrefix.ReplaceAllString(text, "")
	text = multiSpace.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

func truncateWords(text string, max int) string {
	fields := strings.Fields(text)
	if len(fields) <= max {
		return text
	}
	return strings.Join(fields[:max], " ")
}

func wordCount(text string) int { return len(strings.Fields(text)) }

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
