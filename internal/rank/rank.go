// Package rank selects and orders scored sections by marginal value:
// relevance balanced against completeness and redundancy with sections
// already picked. Selection is greedy and fully deterministic.
package rank

import (
	"strings"

	"github.com/docsift/docsift/internal/lexicon"
	"github.com/docsift/docsift/internal/model"
)

// Config controls selection behavior.
type Config struct {
	MaxSections         int     // global cap on selected sections
	Lambda              float64 // relevance weight
	Mu                  float64 // completeness weight
	Nu                  float64 // redundancy penalty weight
	RedundancyThreshold float64 // candidates at or above this similarity to a pick are dropped
}

// DefaultConfig returns the standard selection parameters.
func DefaultConfig() Config {
	return Config{
		MaxSections:         15,
		Lambda:              0.6,
		Mu:                  0.2,
		Nu:                  0.2,
		RedundancyThreshold: 0.9,
	}
}

func (cfg Config) withDefaults() Config {
	def := DefaultConfig()
	if cfg.MaxSections <= 0 {
		cfg.MaxSections = def.MaxSections
	}
	if cfg.Lambda <= 0 && cfg.Mu <= 0 && cfg.Nu <= 0 {
		cfg.Lambda, cfg.Mu, cfg.Nu = def.Lambda, def.Mu, def.Nu
	}
	if cfg.RedundancyThreshold <= 0 {
		cfg.RedundancyThreshold = def.RedundancyThreshold
	}
	return cfg
}

// Body-length band considered complete enough to stand on its own.
const (
	minBodyTokens = 40
	maxBodyTokens = 400
)

const epsilon = 1e-9

// Select greedily picks up to cfg.MaxSections sections. At each step the
// candidate with the highest marginal gain wins:
//
//	gain = lambda*relevance + mu*completeness - nu*maxSimilarityToPicked
//
// Ties fall back to input document order, then page number, then extraction
// order. Ranks are dense, 1-based, and unique across the result.
func Select(candidates []model.ScoredSection, docOrder []string, cfg Config) []model.RankedSection {
	cfg = cfg.withDefaults()
	if len(candidates) == 0 {
		return nil
	}

	docIdx := make(map[string]int, len(docOrder))
	for i, d := range docOrder {
		docIdx[d] = i
	}

	terms := make([]map[string]bool, len(candidates))
	comp := make([]float64, len(candidates))
	for i, c := range candidates {
		terms[i] = termSet(c.Section)
		comp[i] = completeness(c.Section)
	}

	limit := cfg.MaxSections
	if limit > len(candidates) {
		limit = len(candidates)
	}

	picked := make([]bool, len(candidates))
	var chosen []int
	var out []model.RankedSection
	for len(out) < limit {
		best := -1
		var bestGain float64
		for i, c := range candidates {
			if picked[i] {
				continue
			}
			sim := maxSimilarity(terms[i], chosen, terms)
			if sim >= cfg.RedundancyThreshold {
				continue
			}
			gain := cfg.Lambda*c.Relevance + cfg.Mu*comp[i] - cfg.Nu*sim
			if best == -1 || gain > bestGain+epsilon {
				best, bestGain = i, gain
				continue
			}
			if gain > bestGain-epsilon && precedes(candidates[i], candidates[best], docIdx) {
				best, bestGain = i, gain
			}
		}
		if best == -1 {
			break
		}
		picked[best] = true
		chosen = append(chosen, best)
		out = append(out, model.RankedSection{
			ScoredSection: candidates[best],
			Rank:          len(out) + 1,
			MarginalGain:  bestGain,
		})
	}
	return out
}

// completeness scores how self-contained a section looks: half for a real
// extracted title, half for a body inside the useful length band with
// partial credit on either side.
func completeness(s model.Section) float64 {
	var score float64
	if !s.Synthesized {
		score += 0.5
	}
	n := len(strings.Fields(s.Body))
	switch {
	case n >= minBodyTokens && n <= maxBodyTokens:
		score += 0.5
	case n < minBodyTokens:
		score += 0.5 * float64(n) / minBodyTokens
	default:
		score += 0.5 * maxBodyTokens / float64(n)
	}
	return score
}

// precedes reports whether a should win a marginal-gain tie against b.
func precedes(a, b model.ScoredSection, docIdx map[string]int) bool {
	ai, aok := docIdx[a.Document]
	bi, bok := docIdx[b.Document]
	if !aok {
		ai = len(docIdx)
	}
	if !bok {
		bi = len(docIdx)
	}
	if ai != bi {
		return ai < bi
	}
	if a.PageNumber != b.PageNumber {
		return a.PageNumber < b.PageNumber
	}
	return a.Seq < b.Seq
}

// lead of the body used for similarity, so huge sections compare on their
// topical opening rather than sheer volume.
const similarityLeadChars = 600

func termSet(s model.Section) map[string]bool {
	lead := s.Body
	if len(lead) > similarityLeadChars {
		lead = lead[:similarityLeadChars]
	}
	set := make(map[string]bool)
	for _, term := range lexicon.Terms(s.Title+" "+lead, 0) {
		set[term] = true
	}
	return set
}

func maxSimilarity(set map[string]bool, chosen []int, terms []map[string]bool) float64 {
	var max float64
	for _, idx := range chosen {
		if sim := jaccard(set, terms[idx]); sim > max {
			max = sim
		}
	}
	return max
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
	return float64(inter) / float64(len(a)+len(b)-inter)
}
