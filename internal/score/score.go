package score

import (
	"strings"

	"github.com/docsift/docsift/internal/model"
)

// Weights controls how the relevance signals blend.
type Weights struct {
	Keyword    float64 // share of the keyword overlap signal
	Semantic   float64 // share of the semantic similarity signal
	TitleBoost float64 // multiplier for keyword hits in the section title
}

// DefaultWeights returns the standard blend.
func DefaultWeights() Weights {
	return Weights{Keyword: 0.6, Semantic: 0.4, TitleBoost: 2.0}
}

const (
	// leadBodyChars is how much of the body feeds the semantic signal.
	// Section openings carry most of the topical content.
	leadBodyChars = 600

	// structuralBase is the score credit for carrying a real extracted
	// header. It keeps zero-overlap sections alive so documents with no
	// keyword matches still rank, without ever outranking a section that
	// matched something.
	structuralBase = 0.05
)

// Score computes the persona/job relevance of one section in [0,1]. It is a
// pure function of its inputs: the same call always returns the same result.
func Score(sec model.Section, persona model.Persona, job model.Job, ctx Context, w Weights) model.ScoredSection {
	if w.Keyword <= 0 && w.Semantic <= 0 {
		w = DefaultWeights()
	}
	if w.TitleBoost <= 0 {
		w.TitleBoost = DefaultWeights().TitleBoost
	}

	keys := dedupe(append(append([]string{}, persona.Keywords...), job.Keywords...))
	title := strings.ToLower(sec.Title)
	body := strings.ToLower(sec.Body)

	var breakdown model.Breakdown
	var hits float64
	for _, key := range keys {
		switch {
		case containsTerm(title, key):
			breakdown.TitleHits++
			breakdown.Matched = append(breakdown.Matched, key)
			hits += w.TitleBoost
		case containsTerm(body, key):
			breakdown.BodyHits++
			breakdown.Matched = append(breakdown.Matched, key)
			hits++
		}
	}
	if len(keys) > 0 {
		breakdown.Keyword = hits / (w.TitleBoost * float64(len(keys)))
	}

	relevance := breakdown.Keyword
	if ctx.HasSemanticScoring {
		query := persona.Role + " " + job.Task
		breakdown.Semantic = Cosine(ctx.Embedder.Embed(query), ctx.Embedder.Embed(SemanticText(sec)))
		relevance = (w.Keyword*breakdown.Keyword + w.Semantic*breakdown.Semantic) / (w.Keyword + w.Semantic)
	}
	if !sec.Synthesized {
		relevance = structuralBase + (1-structuralBase)*relevance
	}

	return model.ScoredSection{
		Section:   sec,
		Relevance: clamp01(relevance),
		Overlap:   breakdown,
	}
}

// SemanticText returns the part of a section that feeds the semantic
// signal: the title plus the opening of the body. Embedder corpora are
// built from the same text the scoring call embeds.
func SemanticText(sec model.Section) string {
	lead := sec.Body
	if len(lead) > leadBodyChars {
		lead = lead[:leadBodyChars]
	}
	return sec.Title + " " + lead
}

// containsTerm reports whether text contains term, tolerating simple
// inflection differences on the term side.
func containsTerm(text, term string) bool {
	if term == "" {
		return false
	}
	if strings.Contains(text, term) {
		return true
	}
	if stem := stemTerm(term); stem != term {
		return strings.Contains(text, stem)
	}
	return false
}

func stemTerm(term string) string {
	for _, suffix := range []string{"ing", "ed", "es", "s"} {
		if strings.HasSuffix(term, suffix) && len(term)-len(suffix) >= 4 {
			return strings.TrimSuffix(term, suffix)
		}
	}
	return term
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
