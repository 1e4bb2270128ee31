package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRequest() AnalysisRequest {
	return AnalysisRequest{
		Documents: []DocumentRef{
			{Filename: "menu.pdf", Title: "Catering Menu"},
		},
		Persona:     PersonaInput{Role: "Corporate event caterer"},
		JobToBeDone: JobInput{Task: "plan a vegetarian buffet for 40 guests"},
	}
}

func TestValidate_ValidRequest(t *testing.T) {
	req := validRequest()
	assert.NoError(t, req.Validate())
}

func TestValidate_MissingTask(t *testing.T) {
	req := validRequest()
	req.JobToBeDone.Task = ""

	err := req.Validate()
	require.Error(t, err)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "job_to_be_done.task", verr.Field)
	assert.Contains(t, verr.Message, "missing")
}

func TestValidate_MissingPersonaRole(t *testing.T) {
	req := validRequest()
	req.Persona.Role = ""

	var verr *ValidationError
	require.ErrorAs(t, req.Validate(), &verr)
	assert.Equal(t, "persona.role", verr.Field)
}

func TestValidate_NoDocuments(t *testing.T) {
	req := validRequest()
	req.Documents = nil

	var verr *ValidationError
	require.ErrorAs(t, req.Validate(), &verr)
	assert.Equal(t, "documents", verr.Field)
}

func TestValidate_DocumentMissingFilename(t *testing.T) {
	req := validRequest()
	req.Documents = append(req.Documents, DocumentRef{Title: "untitled"})

	var verr *ValidationError
	require.ErrorAs(t, req.Validate(), &verr)
	assert.Contains(t, verr.Field, "filename")
}

func TestAnalysisRequest_ChallengeInfoPassthrough(t *testing.T) {
	raw := `{
		"challenge_info": {"challenge_id": "round_1b_002", "test_case_name": "travel_planner"},
		"documents": [{"filename": "guide.pdf", "title": "Travel Guide"}],
		"persona": {"role": "Travel Planner"},
		"job_to_be_done": {"task": "Plan a trip of 4 days for a group of 10 college friends"}
	}`

	var req AnalysisRequest
	require.NoError(t, json.Unmarshal([]byte(raw), &req))
	require.NoError(t, req.Validate())

	// The opaque blob survives a decode/encode round trip untouched.
	var echo map[string]any
	require.NoError(t, json.Unmarshal(req.ChallengeInfo, &echo))
	assert.Equal(t, "round_1b_002", echo["challenge_id"])
}
