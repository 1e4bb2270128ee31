package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// AnalysisRequest is the external input contract: a document collection,
// a persona, and a job-to-be-done. ChallengeInfo is opaque passthrough
// metadata echoed into the output.
type AnalysisRequest struct {
	ChallengeInfo json.RawMessage `json:"challenge_info,omitempty"`
	Documents     []DocumentRef   `json:"documents" validate:"required,min=1,dive"`
	Persona       PersonaInput    `json:"persona"`
	JobToBeDone   JobInput        `json:"job_to_be_done"`
}

// DocumentRef names one input document. The file itself is resolved
// against the document-source path at extraction time.
type DocumentRef struct {
	Filename string `json:"filename" validate:"required"`
	Title    string `json:"title"`
}

type PersonaInput struct {
	Role           string   `json:"role" validate:"required"`
	ExpertiseAreas []string `json:"expertise_areas,omitempty"`
}

type JobInput struct {
	Task string `json:"task" validate:"required"`
}

// ValidationError is the only fatal error class: malformed or incomplete
// input, reported with a field-specific message before any processing.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid input: %s: %s", e.Field, e.Message)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their JSON names so messages match the wire format.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks the request against the input contract. It returns a
// *ValidationError naming the first offending field, or nil.
func (r *AnalysisRequest) Validate() error {
	err := validate.Struct(r)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return &ValidationError{
			Field:   fieldPath(fe),
			Message: validationMessage(fe),
		}
	}
	return &ValidationError{Field: "input", Message: err.Error()}
}

// fieldPath strips the root struct name from the validator namespace,
// e.g. "AnalysisRequest.job_to_be_done.task" -> "job_to_be_done.task".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "missing required field"
	case "min":
		return fmt.Sprintf("must contain at least %s entries", fe.Param())
	default:
		return fmt.Sprintf("failed %q constraint", fe.Tag())
	}
}
