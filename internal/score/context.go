// Package score computes persona/job relevance for candidate sections.
package score

import (
	"github.com/docsift/docsift/internal/lexicon"
)

// Context carries the read-only resources a scoring call may use. It is
// passed into each component explicitly so components stay testable in
// isolation. The embedder, when present, is fitted on the run's sections
// before scoring starts.
type Context struct {
	Registry *lexicon.Registry
	Embedder *Embedder

	// HasSemanticScoring is the capability flag for the semantic signal.
	// When false, scoring degrades to pure keyword overlap.
	HasSemanticScoring bool
}

// NewContext builds an analysis context. A nil embedder disables semantic
// scoring; a nil registry falls back to the built-in domains.
func NewContext(reg *lexicon.Registry, emb *Embedder) Context {
	if reg == nil {
		reg = lexicon.Builtin()
	}
	return Context{
		Registry:           reg,
		Embedder:           emb,
		HasSemanticScoring: emb != nil,
	}
}
