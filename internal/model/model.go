// Package model defines the data types shared by the analysis pipeline.
package model

import "time"

// Page holds the raw extracted text of a single document page.
type Page struct {
	Number int    // 1-based page number
	Text   string // raw extracted text
}

// Document is an immutable, fully extracted input document.
type Document struct {
	Filename string // identifier, as given in the input
	Title    string // display title
	Pages    []Page // ordered by page number
}

// NumPages returns the number of extracted pages.
func (d Document) NumPages() int { return len(d.Pages) }

// Persona describes the professional profile the analysis is tailored for.
// Keywords are derived from the role and expertise areas, never supplied.
type Persona struct {
	Role           string
	ExpertiseAreas []string
	Keywords       []string
}

// Job describes the concrete task the persona is trying to accomplish.
type Job struct {
	Task     string
	Keywords []string
}

// Section is a contiguous, titled span of document text produced by
// segmentation. Read-only after creation except for score annotations.
type Section struct {
	Document    string // owning document filename
	Title       string
	Body        string
	PageNumber  int  // 1-based page the section starts on
	Start, End  int  // character span within the document's page sequence
	Synthesized bool // true when the title was generated, not extracted
	Seq         int  // extraction order within the run, for tie-breaks
}

// Breakdown records how a section's relevance score was composed.
type Breakdown struct {
	Matched   []string `json:"matched_keywords,omitempty"`
	TitleHits int      `json:"title_hits"`
	BodyHits  int      `json:"body_hits"`
	Keyword   float64  `json:"keyword_score"`
	Semantic  float64  `json:"semantic_score"`
}

// ScoredSection is a Section annotated with its persona/job relevance.
type ScoredSection struct {
	Section
	Relevance float64 // in [0,1]
	Overlap   Breakdown
}

// RankedSection is a ScoredSection selected into the final output.
// Rank is 1-based, dense, and unique across the whole result.
type RankedSection struct {
	ScoredSection
	Rank         int
	MarginalGain float64 // marginal score recorded at selection time
}

// Subsection is a refined excerpt drawn from a ranked section. RefinedText
// is always a compression of the source body, never empty.
type Subsection struct {
	Document    string
	PageNumber  int
	RefinedText string
	Quality     float64 // in [0,1]
}

// RunMeta carries processing metadata for a completed run.
type RunMeta struct {
	Elapsed            time.Duration
	Truncated          bool // true when the wall-clock budget cut the run short
	DocumentsProcessed int
	DocumentsSkipped   int
}

// AnalysisResult is the assembled output of one pipeline run.
type AnalysisResult struct {
	Sections    []RankedSection
	Subsections []Subsection
	Meta        RunMeta
}
