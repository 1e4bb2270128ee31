package score

import (
	"strings"

	"github.com/docsift/docsift/internal/lexicon"
	"github.com/docsift/docsift/internal/model"
)

// maxDerivedTerms caps the generic keywords pulled from free text so a
// wordy role or task description doesn't drown the domain terms.
const maxDerivedTerms = 10

// DerivePersona builds the persona keyword set: terms from every matched
// domain lexicon, plus significant words from the role and expertise areas.
// When no domain matches, the generic words are all that's left, which keeps
// scoring functional for personas outside the built-in domains.
func DerivePersona(in model.PersonaInput, reg *lexicon.Registry) model.Persona {
	text := in.Role
	if len(in.ExpertiseAreas) > 0 {
		text += " " + strings.Join(in.ExpertiseAreas, " ")
	}

	var keywords []string
	for _, lex := range reg.Match(text) {
		keywords = append(keywords, lex.AllTerms()...)
	}
	keywords = append(keywords, lexicon.Terms(text, maxDerivedTerms)...)

	return model.Persona{
		Role:           in.Role,
		ExpertiseAreas: in.ExpertiseAreas,
		Keywords:       dedupe(keywords),
	}
}

// DeriveJob builds the job keyword set: significant task words, matched
// domain terms, and the verbs of any action families the task implies.
func DeriveJob(in model.JobInput, reg *lexicon.Registry) model.Job {
	var keywords []string
	keywords = append(keywords, lexicon.Terms(in.Task, maxDerivedTerms)...)
	for _, lex := range reg.Match(in.Task) {
		keywords = append(keywords, lex.AllTerms()...)
	}
	keywords = append(keywords, lexicon.ActionTerms(lexicon.Requirements(in.Task))...)

	return model.Job{Task: in.Task, Keywords: dedupe(keywords)}
}

// dedupe lowercases and removes duplicates, preserving first-seen order.
func dedupe(terms []string) []string {
	seen := make(map[string]bool, len(terms))
	var out []string
	for _, t := range terms {
		t = strings.ToLower(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
