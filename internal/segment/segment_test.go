package segment

import (
	"strings"
	"testing"

	"github.com/docsift/docsift/internal/model"
)

func doc(filename string, pages ...string) model.Document {
	d := model.Document{Filename: filename, Title: filename}
	for i, text := range pages {
		d.Pages = append(d.Pages, model.Page{Number: i + 1, Text: text})
	}
	return d
}

func TestSegment_HeaderPass(t *testing.T) {
	d := doc("menu.pdf",
		"Vegetarian Mains\n"+
			"Lentil loaf with roasted squash is a crowd pleaser that holds well on a buffet line. "+
			"Stuffed peppers and mushroom wellington round out the hot table for larger events.\n"+
			"Budget per Guest\n"+
			"Expect thirty dollars per head for a full vegetarian spread including dessert. "+
			"Bulk grains and seasonal produce keep the per guest cost predictable across seasons.",
		"Room Layout\n"+
			"Round tables of eight leave staff enough aisle room for service and refills. "+
			"Keep the buffet stations near the kitchen doors to shorten the replenishment path.")

	sections, err := Segment(d, Config{MinSectionTokens: 5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sections) != 3 {
		t.Fatalf("expected 3 sections, got %d: %+v", len(sections), titles(sections))
	}

	want := []string{"Vegetarian Mains", "Budget per Guest", "Room Layout"}
	for i, w := range want {
		if sections[i].Title != w {
			t.Errorf("section[%d]: expected title %q, got %q", i, w, sections[i].Title)
		}
		if sections[i].Synthesized {
			t.Errorf("section[%d]: header-derived title marked synthesized", i)
		}
	}
	if sections[2].PageNumber != 2 {
		t.Errorf("expected Room Layout on page 2, got %d", sections[2].PageNumber)
	}
}

func TestSegment_NeverEmptyForNonEmptyDocument(t *testing.T) {
	inputs := []model.Document{
		doc("one-liner.txt", "just a single short line of text here"),
		doc("no-headers.txt", strings.Repeat("plain lowercase words without any structure at all. ", 40)),
		doc("numbers.txt", "42 17 93 8 55 21 60 74 31 99 12 6 88 47 3 70 29 84"),
	}
	for _, d := range inputs {
		sections, err := Segment(d, Config{})
		if err != nil {
			t.Errorf("%s: unexpected error: %v", d.Filename, err)
			continue
		}
		if len(sections) == 0 {
			t.Errorf("%s: expected at least one section", d.Filename)
		}
	}
}

func TestSegment_EmptyDocument(t *testing.T) {
	d := doc("blank.pdf", "   \n\t  ", "")
	if _, err := Segment(d, Config{}); err != ErrEmptyDocument {
		t.Fatalf("expected ErrEmptyDocument, got %v", err)
	}
}

func TestSegment_TopicPassForUnstructuredText(t *testing.T) {
	// Two clearly distinct topics, no headers, spread over several pages so
	// the header density check fails.
	travel := strings.Repeat("the coastal hotel offers beach access and the restaurant serves local seafood near the marina. ", 30)
	payroll := strings.Repeat("payroll processing requires employee forms with manager signature before the compliance deadline. ", 30)

	d := doc("mixed.txt", travel, travel, payroll, payroll)
	sections, err := Segment(d, Config{WindowWords: 60, BoundaryThreshold: 0.2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sections) < 2 {
		t.Fatalf("expected a topic boundary, got %d section(s)", len(sections))
	}
	for _, s := range sections {
		if !s.Synthesized {
			t.Errorf("topic sections should carry synthesized titles, got %q", s.Title)
		}
		if s.Title == "" {
			t.Error("synthesized title is empty")
		}
	}
}

func TestSegment_TitleNormalization(t *testing.T) {
	d := doc("guide.pdf",
		"1.2 Packing Checklist:\n"+
			"Bring sturdy shoes and a light rain jacket for the coastal trail. "+
			"A reusable water bottle saves money at the frequent refill stations along the route.")

	sections, err := Segment(d, Config{MinSectionTokens: 5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sections) != 1 {
		t.Fatalf("expected 1 section, got %d", len(sections))
	}
	if sections[0].Title != "Packing Checklist" {
		t.Errorf("expected normalized title, got %q", sections[0].Title)
	}
}

func TestSegment_TitleTokenCap(t *testing.T) {
	long := "This Particularly Verbose Header Keeps Going Well Past Any Reasonable Length For Output Display"
	d := doc("verbose.pdf", long+"\n"+strings.Repeat("body content follows the lengthy header here. ", 10))

	sections, err := Segment(d, Config{MaxTitleTokens: 6, MinSectionTokens: 5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := len(strings.Fields(sections[0].Title)); got > 6 {
		t.Errorf("title exceeds token cap: %d tokens in %q", got, sections[0].Title)
	}
}

func TestSegment_MergesSmallSections(t *testing.T) {
	d := doc("menu.pdf",
		"Starters\n"+
			"Soup.\n"+
			"Vegetarian Mains\n"+
			"Lentil loaf with roasted squash and stuffed peppers keep a buffet line moving. "+
			"Mushroom wellington works for plated service when the headcount is known in advance.")

	sections, err := Segment(d, Config{MinSectionTokens: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sections) != 1 {
		t.Fatalf("expected small section merged away, got %d: %v", len(sections), titles(sections))
	}
	if !strings.Contains(sections[0].Body, "Soup.") {
		t.Errorf("merged body lost small-section text: %q", sections[0].Body)
	}
}

func TestSegment_PageTextCoverage(t *testing.T) {
	d := doc("notes.pdf",
		"Morning Session\nOpening remarks ran long but covered the agenda for both days of the workshop in detail.",
		"Afternoon breakouts split into four rooms with rotating facilitators and shared note taking.",
		"   ",
		"EVENING PLAN\nDinner reservations are confirmed for the full group at the harborside restaurant at seven.")

	sections, err := Segment(d, Config{MinSectionTokens: 5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var all strings.Builder
	for _, s := range sections {
		all.WriteString(s.Title)
		all.WriteString("\n")
		all.WriteString(s.Body)
		all.WriteString("\n")
	}
	combined := all.String()

	for _, page := range d.Pages {
		for _, line := range strings.Split(page.Text, "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			if !strings.Contains(combined, line) {
				t.Errorf("page %d line not covered by any section: %q", page.Number, line)
			}
		}
	}

	for _, s := range sections {
		if s.PageNumber < 1 || s.PageNumber > len(d.Pages) {
			t.Errorf("section page %d outside document range", s.PageNumber)
		}
	}
}

func TestSegment_SectionCap(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 20; i++ {
		b.WriteString("SECTION HEADER " + strings.Repeat("X", i%3+1) + "\n")
		b.WriteString(strings.Repeat("body words for this section go right here today. ", 8))
		b.WriteString("\n")
	}

	sections, err := Segment(doc("big.pdf", b.String()), Config{MaxSections: 5, MinSectionTokens: 5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sections) > 5 {
		t.Errorf("expected at most 5 sections, got %d", len(sections))
	}
}

func TestSegment_Deterministic(t *testing.T) {
	d := doc("menu.pdf",
		"Vegetarian Mains\n"+strings.Repeat("lentil loaf roasted squash stuffed peppers buffet line. ", 10)+
			"\nBudget per Guest\n"+strings.Repeat("thirty dollars per head including dessert and staff. ", 10))

	a, err := Segment(d, Config{MinSectionTokens: 5})
	if err != nil {
		t.Fatal(err)
	}
	b, err := Segment(d, Config{MinSectionTokens: 5})
	if err != nil {
		t.Fatal(err)
	}
	if len(a) != len(b) {
		t.Fatalf("non-deterministic section count: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].Title != b[i].Title || a[i].Body != b[i].Body || a[i].Start != b[i].Start {
			t.Fatalf("section %d differs between runs", i)
		}
	}
}

func titles(sections []model.Section) []string {
	var out []string
	for _, s := range sections {
		out = append(out, s.Title)
	}
	return out
}
