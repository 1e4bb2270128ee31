// Package output assembles and serializes the final analysis report.
// Field names and ordering are part of the contract with downstream
// consumers and must not change.
package output

import (
	"encoding/json"
	"errors"
	"io"
	"time"

	"github.com/docsift/docsift/internal/model"
)

const timestampLayout = "2006-01-02T15:04:05.000000"

// InputDocument echoes one document reference from the request.
type InputDocument struct {
	Filename string `json:"filename"`
	Title    string `json:"title"`
}

// Metadata echoes the request inputs as they arrived, objects and all, and
// records when processing ran.
type Metadata struct {
	InputDocuments      []InputDocument    `json:"input_documents"`
	Persona             model.PersonaInput `json:"persona"`
	JobToBeDone         model.JobInput     `json:"job_to_be_done"`
	ProcessingTimestamp string             `json:"processing_timestamp"`
}

func buildMetadata(req model.AnalysisRequest, now time.Time) Metadata {
	docs := make([]InputDocument, 0, len(req.Documents))
	for _, d := range req.Documents {
		docs = append(docs, InputDocument{Filename: d.Filename, Title: d.Title})
	}
	return Metadata{
		InputDocuments:      docs,
		Persona:             req.Persona,
		JobToBeDone:         req.JobToBeDone,
		ProcessingTimestamp: now.Format(timestampLayout),
	}
}

// ExtractedSection is one ranked section in the report.
type ExtractedSection struct {
	Document       string `json:"document"`
	SectionTitle   string `json:"section_title"`
	ImportanceRank int    `json:"importance_rank"`
	PageNumber     int    `json:"page_number"`
}

// SubsectionAnalysis is one refined excerpt in the report.
type SubsectionAnalysis struct {
	Document    string `json:"document"`
	RefinedText string `json:"refined_text"`
	PageNumber  int    `json:"page_number"`
}

// Report is the full analysis output document.
type Report struct {
	ChallengeInfo      json.RawMessage      `json:"challenge_info,omitempty"`
	Metadata           Metadata             `json:"metadata"`
	ExtractedSections  []ExtractedSection   `json:"extracted_sections"`
	SubsectionAnalysis []SubsectionAnalysis `json:"subsection_analysis"`
}

// Build assembles the report from the request and the pipeline result.
// Section and subsection lists are always present, never null.
func Build(req model.AnalysisRequest, res *model.AnalysisResult, now time.Time) Report {
	sections := make([]ExtractedSection, 0, len(res.Sections))
	for _, s := range res.Sections {
		sections = append(sections, ExtractedSection{
			Document:       s.Document,
			SectionTitle:   s.Title,
			ImportanceRank: s.Rank,
			PageNumber:     s.PageNumber,
		})
	}

	subsections := make([]SubsectionAnalysis, 0, len(res.Subsections))
	for _, s := range res.Subsections {
		subsections = append(subsections, SubsectionAnalysis{
			Document:    s.Document,
			RefinedText: s.RefinedText,
			PageNumber:  s.PageNumber,
		})
	}

	return Report{
		ChallengeInfo:      req.ChallengeInfo,
		Metadata:           buildMetadata(req, now),
		ExtractedSections:  sections,
		SubsectionAnalysis: subsections,
	}
}

// ErrorReport is emitted on the fatal path instead of a Report. It keeps
// the report shape so consumers can parse both with one schema.
type ErrorReport struct {
	Error              string               `json:"error"`
	Field              string               `json:"field,omitempty"`
	Metadata           Metadata             `json:"metadata"`
	ExtractedSections  []ExtractedSection   `json:"extracted_sections"`
	SubsectionAnalysis []SubsectionAnalysis `json:"subsection_analysis"`
}

// BuildError wraps a fatal error, surfacing the offending field for
// validation failures. The request may be partially decoded or zero.
func BuildError(req model.AnalysisRequest, err error, now time.Time) ErrorReport {
	rep := ErrorReport{
		Error:              err.Error(),
		Metadata:           buildMetadata(req, now),
		ExtractedSections:  make([]ExtractedSection, 0),
		SubsectionAnalysis: make([]SubsectionAnalysis, 0),
	}
	var verr *model.ValidationError
	if errors.As(err, &verr) {
		rep.Error = verr.Message
		rep.Field = verr.Field
	}
	return rep
}

// Write serializes v as indented JSON.
func Write(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
