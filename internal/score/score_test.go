package score

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docsift/docsift/internal/lexicon"
	"github.com/docsift/docsift/internal/model"
)

func TestDerivePersona_DomainMatch(t *testing.T) {
	persona := DerivePersona(model.PersonaInput{
		Role:           "Executive Chef",
		ExpertiseAreas: []string{"vegetarian catering"},
	}, lexicon.Builtin())

	assert.Contains(t, persona.Keywords, "menu")
	assert.Contains(t, persona.Keywords, "recipe")
	assert.Contains(t, persona.Keywords, "chef")
	assert.Contains(t, persona.Keywords, "executive")
}

func TestDerivePersona_GenericFallback(t *testing.T) {
	persona := DerivePersona(model.PersonaInput{Role: "Marine Biologist"}, lexicon.Builtin())

	assert.Contains(t, persona.Keywords, "marine")
	assert.Contains(t, persona.Keywords, "biologist")
	assert.NotContains(t, persona.Keywords, "menu")
}

func TestDeriveJob_ActionFamilies(t *testing.T) {
	job := DeriveJob(model.JobInput{
		Task: "Plan a vegetarian dinner menu for a corporate gala",
	}, lexicon.Builtin())

	assert.Contains(t, job.Keywords, "vegetarian")
	// "plan" implies the whole planning family.
	assert.Contains(t, job.Keywords, "organize")
	assert.Contains(t, job.Keywords, "coordinate")
}

func TestDeriveKeywords_NoDuplicates(t *testing.T) {
	job := DeriveJob(model.JobInput{Task: "Plan and plan again the menu plan"}, lexicon.Builtin())

	seen := map[string]int{}
	for _, k := range job.Keywords {
		seen[k]++
	}
	for k, n := range seen {
		assert.Equal(t, 1, n, "keyword %q appears %d times", k, n)
	}
}

func TestScore_TitleHitOutweighsBodyHit(t *testing.T) {
	persona := model.Persona{Keywords: []string{"vegetarian"}}
	ctx := NewContext(nil, nil)

	inTitle := Score(model.Section{Title: "Vegetarian Mains", Body: "Hearty options."},
		persona, model.Job{}, ctx, DefaultWeights())
	inBody := Score(model.Section{Title: "Mains", Body: "Vegetarian options and hearty sides."},
		persona, model.Job{}, ctx, DefaultWeights())

	assert.Greater(t, inTitle.Relevance, inBody.Relevance)
	assert.Equal(t, 1, inTitle.Overlap.TitleHits)
	assert.Equal(t, 1, inBody.Overlap.BodyHits)
	assert.Contains(t, inTitle.Overlap.Matched, "vegetarian")
}

func TestScore_RelevantSectionBeatsUnrelated(t *testing.T) {
	reg := lexicon.Builtin()
	persona := DerivePersona(model.PersonaInput{Role: "Executive Chef"}, reg)
	job := DeriveJob(model.JobInput{Task: "Prepare a vegetarian buffet dinner for corporate guests"}, reg)
	ctx := NewContext(reg, nil)

	mains := Score(model.Section{
		Title: "Vegetarian Mains",
		Body:  "Lentil loaf and stuffed peppers hold well on a buffet line for large dinners.",
	}, persona, job, ctx, DefaultWeights())
	layout := Score(model.Section{
		Title: "Room Layout",
		Body:  "Round groupings of eight give the crowd space to move and keep the aisles clear.",
	}, persona, job, ctx, DefaultWeights())

	assert.Greater(t, mains.Relevance, layout.Relevance)
}

func TestScore_StructuralBase(t *testing.T) {
	persona := model.Persona{Keywords: []string{"payroll"}}
	ctx := NewContext(nil, nil)

	titled := Score(model.Section{Title: "Harbor Overview", Body: "The marina faces west."},
		persona, model.Job{}, ctx, DefaultWeights())
	synthesized := Score(model.Section{Title: "The marina faces", Body: "The marina faces west.", Synthesized: true},
		persona, model.Job{}, ctx, DefaultWeights())
	matched := Score(model.Section{Title: "Payroll Calendar", Body: "Submission dates by month."},
		persona, model.Job{}, ctx, DefaultWeights())

	assert.InDelta(t, 0.05, titled.Relevance, 1e-9)
	assert.Zero(t, synthesized.Relevance)
	// Any keyword match beats a header-only score.
	assert.Greater(t, matched.Relevance, titled.Relevance)
}

func TestScore_SemanticBlend(t *testing.T) {
	ctx := NewContext(nil, NewEmbedder())
	require.True(t, ctx.HasSemanticScoring)

	persona := model.Persona{Role: "Travel blogger"}
	job := model.Job{Task: "find coastal hotels with beach access"}

	coastal := Score(model.Section{
		Title: "Where to Stay",
		Body:  "The coastal hotels near the beach offer direct access to the waterfront promenade.",
	}, persona, job, ctx, DefaultWeights())
	payroll := Score(model.Section{
		Title: "Quarterly Filings",
		Body:  "Payroll adjustments must be submitted before the compliance deadline each quarter.",
	}, persona, job, ctx, DefaultWeights())

	assert.Greater(t, coastal.Overlap.Semantic, payroll.Overlap.Semantic)
	assert.Greater(t, coastal.Relevance, payroll.Relevance)
}

func TestScore_RelevanceStaysInRange(t *testing.T) {
	reg := lexicon.Builtin()
	persona := DerivePersona(model.PersonaInput{Role: "Executive Chef"}, reg)
	job := DeriveJob(model.JobInput{Task: "Plan a vegetarian buffet menu"}, reg)
	ctx := NewContext(reg, NewEmbedder())

	sections := []model.Section{
		{Title: "Vegetarian Buffet Menu", Body: "Menu recipe ingredient chef kitchen food dietary vegetarian buffet catering cuisine dish meal."},
		{Title: "", Body: "x", Synthesized: true},
	}
	for _, sec := range sections {
		got := Score(sec, persona, job, ctx, DefaultWeights())
		assert.GreaterOrEqual(t, got.Relevance, 0.0)
		assert.LessOrEqual(t, got.Relevance, 1.0)
	}
}

func TestEmbedder_FitDownweightsUbiquitousTerms(t *testing.T) {
	e := NewEmbedder()
	e.Fit([]string{
		"buffet menu with vegetarian mains",
		"buffet seating and room layout",
		"buffet parking and garage access",
	})

	// "buffet" appears in every document, "vegetarian" in one; equal raw
	// frequency in the embedded text must not mean equal weight.
	vec := e.Embed("buffet vegetarian")
	assert.Greater(t, vec["vegetarian"], vec["buffet"])
}

func TestCosine(t *testing.T) {
	e := NewEmbedder()

	a := e.Embed("coastal hotel near the beach")
	b := e.Embed("coastal hotel near the beach")
	c := e.Embed("payroll compliance deadline")

	assert.InDelta(t, 1.0, Cosine(a, b), 1e-9)
	assert.Zero(t, Cosine(a, c))
	assert.Zero(t, Cosine(a, nil))
}
