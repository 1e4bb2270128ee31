package rank

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docsift/docsift/internal/model"
)

func scored(doc, title, body string, page, seq int, rel float64) model.ScoredSection {
	return model.ScoredSection{
		Section: model.Section{
			Document:   doc,
			Title:      title,
			Body:       body,
			PageNumber: page,
			Seq:        seq,
		},
		Relevance: rel,
	}
}

// bodyAbout builds an in-band body (50 tokens) from a 5-word phrase so
// candidates differ only where the test says they do.
func bodyAbout(phrase string) string {
	return strings.TrimSpace(strings.Repeat(phrase+" ", 10))
}

func TestSelect_OrdersByRelevance(t *testing.T) {
	candidates := []model.ScoredSection{
		scored("a.pdf", "Quarterly Filings", bodyAbout("payroll compliance deadline quarterly filings."), 1, 0, 0.2),
		scored("a.pdf", "Beach Hotels", bodyAbout("coastal hotels offer beach access."), 2, 1, 0.9),
		scored("a.pdf", "Menu Planning", bodyAbout("vegetarian menus need seasonal produce."), 3, 2, 0.5),
	}

	got := Select(candidates, []string{"a.pdf"}, Config{})
	require.Len(t, got, 3)

	assert.Equal(t, "Beach Hotels", got[0].Title)
	assert.Equal(t, "Menu Planning", got[1].Title)
	assert.Equal(t, "Quarterly Filings", got[2].Title)
	for i, r := range got {
		assert.Equal(t, i+1, r.Rank)
	}
}

func TestSelect_DropsNearDuplicates(t *testing.T) {
	dup := bodyAbout("coastal hotels offer beach access.")
	candidates := []model.ScoredSection{
		scored("a.pdf", "Beach Hotels", dup, 1, 0, 0.9),
		scored("a.pdf", "Hotels on the Beach", dup, 2, 1, 0.85),
		scored("b.pdf", "Quarterly Filings", bodyAbout("payroll compliance deadline quarterly filings."), 1, 2, 0.4),
	}

	got := Select(candidates, []string{"a.pdf", "b.pdf"}, Config{MaxSections: 2})
	require.Len(t, got, 2)

	assert.Equal(t, "Beach Hotels", got[0].Title)
	// The near-duplicate loses to a less relevant but novel section.
	assert.Equal(t, "Quarterly Filings", got[1].Title)
}

func TestSelect_RedundancyPenaltyPrefersNovelty(t *testing.T) {
	candidates := []model.ScoredSection{
		scored("a.pdf", "Beach Hotels", bodyAbout("coastal hotels offer beach access."), 1, 0, 0.9),
		scored("a.pdf", "Waterfront Stays", bodyAbout("coastal hotels offer beach views."), 2, 1, 0.62),
		scored("b.pdf", "Menu Planning", bodyAbout("vegetarian menus need seasonal produce."), 1, 2, 0.6),
	}

	got := Select(candidates, []string{"a.pdf", "b.pdf"}, Config{MaxSections: 2})
	require.Len(t, got, 2)

	assert.Equal(t, "Beach Hotels", got[0].Title)
	// Overlap with the first pick outweighs the small relevance edge.
	assert.Equal(t, "Menu Planning", got[1].Title)
}

func TestSelect_TieBreaksByDocumentOrder(t *testing.T) {
	candidates := []model.ScoredSection{
		scored("b.pdf", "Quarterly Filings", bodyAbout("payroll compliance deadline quarterly filings."), 1, 0, 0.7),
		scored("a.pdf", "Beach Hotels", bodyAbout("coastal hotels offer beach access."), 1, 1, 0.7),
	}

	got := Select(candidates, []string{"a.pdf", "b.pdf"}, Config{})
	require.Len(t, got, 2)

	assert.Equal(t, "a.pdf", got[0].Document)
	assert.Equal(t, "b.pdf", got[1].Document)
}

func TestSelect_TieBreaksByPageWithinDocument(t *testing.T) {
	candidates := []model.ScoredSection{
		scored("a.pdf", "Menu Planning", bodyAbout("vegetarian menus need seasonal produce."), 5, 0, 0.7),
		scored("a.pdf", "Beach Hotels", bodyAbout("coastal hotels offer beach access."), 2, 1, 0.7),
	}

	got := Select(candidates, []string{"a.pdf"}, Config{})
	require.Len(t, got, 2)
	assert.Equal(t, 2, got[0].PageNumber)
}

func TestSelect_CompletenessFavorsTitledSections(t *testing.T) {
	untitled := scored("a.pdf", "fragment of text", "short fragment", 1, 0, 0.7)
	untitled.Synthesized = true
	titled := scored("a.pdf", "Beach Hotels", bodyAbout("coastal hotels offer beach access."), 2, 1, 0.7)

	got := Select([]model.ScoredSection{untitled, titled}, []string{"a.pdf"}, Config{})
	require.Len(t, got, 2)
	assert.Equal(t, "Beach Hotels", got[0].Title)
}

func TestSelect_SectionCapAndDenseRanks(t *testing.T) {
	phrases := []string{
		"coastal hotels offer beach access.",
		"vegetarian menus need seasonal produce.",
		"payroll compliance deadline quarterly filings.",
		"museum tickets booked several weeks ahead.",
		"conference rooms hold forty participants comfortably.",
		"harbor ferries depart every thirty minutes.",
	}
	var candidates []model.ScoredSection
	for i, p := range phrases {
		title := fmt.Sprintf("Topic %c", 'A'+i)
		candidates = append(candidates,
			scored("a.pdf", title, bodyAbout(p), i+1, i, 0.9-0.1*float64(i)))
	}

	got := Select(candidates, []string{"a.pdf"}, Config{MaxSections: 4})
	require.Len(t, got, 4)

	seen := map[int]bool{}
	for i, r := range got {
		assert.Equal(t, i+1, r.Rank)
		assert.False(t, seen[r.Rank], "duplicate rank %d", r.Rank)
		seen[r.Rank] = true
	}
}

func TestSelect_Deterministic(t *testing.T) {
	candidates := []model.ScoredSection{
		scored("a.pdf", "Beach Hotels", bodyAbout("coastal hotels offer beach access."), 1, 0, 0.8),
		scored("b.pdf", "Menu Planning", bodyAbout("vegetarian menus need seasonal produce."), 1, 1, 0.8),
		scored("c.pdf", "Quarterly Filings", bodyAbout("payroll compliance deadline quarterly filings."), 1, 2, 0.8),
	}
	docs := []string{"a.pdf", "b.pdf", "c.pdf"}

	first := Select(candidates, docs, Config{})
	for i := 0; i < 10; i++ {
		again := Select(candidates, docs, Config{})
		require.Len(t, again, len(first))
		for j := range first {
			assert.Equal(t, first[j].Document, again[j].Document, "run %d position %d", i, j)
			assert.Equal(t, first[j].Rank, again[j].Rank)
		}
	}
}

func TestSelect_Empty(t *testing.T) {
	assert.Nil(t, Select(nil, nil, Config{}))
}
