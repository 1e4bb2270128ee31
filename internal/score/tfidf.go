package score

import (
	"math"
	"strings"
	"unicode"

	prose "github.com/jdkato/prose/v2"
)

// Vector is a sparse TF-IDF term vector.
type Vector map[string]float64

// Embedder turns free text into sparse TF-IDF vectors for cosine comparison.
// It is the in-process semantic resource: deterministic, no external model,
// good enough to separate topical sections when keyword overlap is thin.
// Fit it on the section pool of a run before embedding; an unfitted embedder
// degrades to plain term frequency. Fit before Embed, never concurrently.
type Embedder struct {
	df   map[string]int
	docs int
}

// NewEmbedder returns an unfitted embedder.
func NewEmbedder() *Embedder { return &Embedder{df: make(map[string]int)} }

// Fit accumulates document frequencies over a corpus. Terms that appear in
// most documents carry less weight when embedding.
func (e *Embedder) Fit(texts []string) {
	for _, text := range texts {
		seen := make(map[string]bool)
		for _, tok := range tokenize(text) {
			if !seen[tok] {
				seen[tok] = true
				e.df[tok]++
			}
		}
		e.docs++
	}
}

// Embed tokenizes text and returns its TF-IDF vector.
func (e *Embedder) Embed(text string) Vector {
	tokens := tokenize(text)
	if len(tokens) == 0 {
		return nil
	}
	vec := make(Vector, len(tokens))
	for _, tok := range tokens {
		vec[tok]++
	}
	for tok := range vec {
		vec[tok] = vec[tok] / float64(len(tokens)) * e.idf(tok)
	}
	return vec
}

// idf uses smoothed inverse document frequency so unseen terms stay finite
// and an unfitted embedder weighs every term equally.
func (e *Embedder) idf(term string) float64 {
	if e.docs == 0 {
		return 1
	}
	return math.Log(float64(1+e.docs)/float64(1+e.df[term])) + 1
}

// Cosine returns the cosine similarity of two vectors, clamped to [0,1].
func Cosine(a, b Vector) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for term, w := range a {
		normA += w * w
		if bw, ok := b[term]; ok {
			dot += w * bw
		}
	}
	for _, w := range b {
		normB += w * w
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	if sim < 0 {
		return 0
	}
	if sim > 1 {
		return 1
	}
	return sim
}

func tokenize(text string) []string {
	doc, err := prose.NewDocument(text,
		prose.WithSegmentation(false),
		prose.WithTagging(false),
		prose.WithExtraction(false))
	if err != nil {
		return fallbackTokens(text)
	}
	var tokens []string
	for _, tok := range doc.Tokens() {
		t := strings.ToLower(tok.Text)
		if len(t) < 3 || !hasLetter(t) {
			continue
		}
		tokens = append(tokens, t)
	}
	if len(tokens) == 0 {
		return fallbackTokens(text)
	}
	return tokens
}

func fallbackTokens(text string) []string {
	var tokens []string
	for _, word := range strings.Fields(text) {
		t := strings.ToLower(strings.Trim(word, ".,:;!?()\"'"))
		if len(t) < 3 || !hasLetter(t) {
			continue
		}
		tokens = append(tokens, t)
	}
	return tokens
}

func hasLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}
