// Package lexicon provides the pluggable domain keyword registry used to
// derive persona and job keyword sets. New domains are added by registering
// a Lexicon; scoring logic never branches on domain names.
package lexicon

import (
	"strings"

	"github.com/bbalet/stopwords"
)

// Lexicon is a hand-maintained keyword set for one subject domain. Terms
// are tiered by how strongly they signal the domain.
type Lexicon struct {
	Domain   string
	Triggers []string // terms in a persona/job text that activate this domain
	High     []string
	Medium   []string
	Low      []string
}

// AllTerms returns every term in the lexicon, high tier first.
func (l Lexicon) AllTerms() []string {
	terms := make([]string, 0, len(l.High)+len(l.Medium)+len(l.Low))
	terms = append(terms, l.High...)
	terms = append(terms, l.Medium...)
	terms = append(terms, l.Low...)
	return terms
}

// Registry maps domain tags to keyword sets.
type Registry struct {
	lexicons []Lexicon
}

// NewRegistry builds a registry from the given lexicons.
func NewRegistry(lexicons ...Lexicon) *Registry {
	return &Registry{lexicons: lexicons}
}

// Register appends a lexicon to the registry.
func (r *Registry) Register(l Lexicon) {
	r.lexicons = append(r.lexicons, l)
}

// Match returns the lexicons whose triggers occur in text, in registration
// order. Matching is case-insensitive substring containment, the same test
// the persona/job texts are short enough to afford.
func (r *Registry) Match(text string) []Lexicon {
	lower := strings.ToLower(text)
	var matched []Lexicon
	for _, l := range r.lexicons {
		for _, trigger := range l.Triggers {
			if strings.Contains(lower, trigger) {
				matched = append(matched, l)
				break
			}
		}
	}
	return matched
}

// Builtin returns the registry of built-in domains.
func Builtin() *Registry {
	return NewRegistry(
		Lexicon{
			Domain:   "travel",
			Triggers: []string{"travel", "trip", "vacation", "tour"},
			High:     []string{"destination", "hotel", "restaurant", "activity", "beach", "city", "tour", "accommodation"},
			Medium:   []string{"travel", "trip", "vacation", "visit", "location", "transportation", "guide", "itinerary"},
			Low:      []string{"place", "area", "time", "day", "experience", "local"},
		},
		Lexicon{
			Domain:   "hr",
			Triggers: []string{"hr", "human resources", "employee", "form"},
			High:     []string{"form", "employee", "document", "workflow", "signature", "field", "fillable"},
			Medium:   []string{"policy", "procedure", "management", "corporate", "onboarding", "compliance"},
			Low:      []string{"staff", "personnel", "organization", "company", "business"},
		},
		Lexicon{
			Domain:   "culinary",
			Triggers: []string{"chef", "cook", "culinary", "kitchen", "food", "caterer", "catering"},
			High:     []string{"recipe", "ingredient", "cooking", "chef", "menu", "food", "kitchen", "dietary", "vegetarian", "buffet"},
			Medium:   []string{"preparation", "cuisine", "dish", "meal", "catering", "restaurant"},
			Low:      []string{"taste", "flavor", "eating", "dining", "service"},
		},
	)
}

// actionFamilies groups the requirement verbs a job task may imply.
var actionFamilies = map[string][]string{
	"planning":   {"plan", "organize", "schedule", "coordinate", "arrange"},
	"management": {"manage", "oversee", "supervise", "control", "handle"},
	"creation":   {"create", "develop", "design", "build", "generate"},
	"analysis":   {"analyze", "evaluate", "assess", "review", "examine"},
}

// familyOrder keeps requirement derivation deterministic.
var familyOrder = []string{"planning", "management", "creation", "analysis"}

// Requirements returns the action families implied by a task description.
func Requirements(task string) []string {
	lower := strings.ToLower(task)
	var families []string
	for _, family := range familyOrder {
		for _, verb := range actionFamilies[family] {
			if strings.Contains(lower, verb) {
				families = append(families, family)
				break
			}
		}
	}
	return families
}

// ActionTerms expands requirement families into their verb sets.
func ActionTerms(families []string) []string {
	var terms []string
	for _, family := range families {
		terms = append(terms, actionFamilies[family]...)
	}
	return terms
}

// Terms extracts up to limit significant keywords from free text: stopwords
// removed, short tokens dropped, first-seen order preserved.
func Terms(text string, limit int) []string {
	cleaned := stopwords.CleanString(text, "en", false)
	seen := make(map[string]bool)
	var terms []string
	for _, word := range strings.Fields(cleaned) {
		word = strings.ToLower(strings.Trim(word, ".,:;!?()\"'"))
		if len(word) < 4 || seen[word] {
			continue
		}
		seen[word] = true
		terms = append(terms, word)
		if limit > 0 && len(terms) >= limit {
			break
		}
	}
	return terms
}
