package pipeline

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/docsift/docsift/internal/model"
)

// Stage is the lifecycle position of an analysis run.
type Stage string

const (
	StageQueued     Stage = "queued"
	StageExtracting Stage = "extracting"
	StageSegmenting Stage = "segmenting"
	StageScoring    Stage = "scoring"
	StageRanking    Stage = "ranking"
	StageRefining   Stage = "refining"
	StageAssembling Stage = "assembling"
	StageDone       Stage = "done"
	StagePartial    Stage = "partial"
	StageFailed     Stage = "failed"
)

// Run tracks the state of one submitted analysis.
type Run struct {
	mu sync.Mutex

	ID      string
	Stage   Stage
	Request model.AnalysisRequest

	Result *model.AnalysisResult
	Err    string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewRun creates a queued run for a validated request.
func NewRun(req model.AnalysisRequest) *Run {
	now := time.Now()
	return &Run{
		ID:        uuid.NewString(),
		Stage:     StageQueued,
		Request:   req,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// SetStage updates the run stage atomically.
func (r *Run) SetStage(stage Stage) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Stage = stage
	r.UpdatedAt = time.Now()
}

// Complete stores the result and the terminal stage.
func (r *Run) Complete(res *model.AnalysisResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Result = res
	r.Stage = StageDone
	if res.Meta.Truncated {
		r.Stage = StagePartial
	}
	r.UpdatedAt = time.Now()
}

// Fail marks the run failed with the error message.
func (r *Run) Fail(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Stage = StageFailed
	r.Err = err.Error()
	r.UpdatedAt = time.Now()
}

// RunSnapshot is a read-only, JSON-safe copy of run state.
type RunSnapshot struct {
	ID        string    `json:"run_id"`
	Stage     Stage     `json:"stage"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Snapshot returns a JSON-safe copy of the run state.
func (r *Run) Snapshot() RunSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return RunSnapshot{
		ID:        r.ID,
		Stage:     r.Stage,
		Error:     r.Err,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

// Terminal reports whether the run has finished, in any way.
func (r *Run) Terminal() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.Stage == StageDone || r.Stage == StagePartial || r.Stage == StageFailed
}

// TakeResult returns the result if the run reached a terminal success stage.
func (r *Run) TakeResult() (*model.AnalysisResult, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Result == nil {
		return nil, false
	}
	return r.Result, true
}

// RunStore is a thread-safe in-memory run registry with TTL eviction.
type RunStore struct {
	mu   sync.Mutex
	runs map[string]*Run
	ttl  time.Duration
}

func NewRunStore(ttl time.Duration) *RunStore {
	return &RunStore{
		runs: make(map[string]*Run),
		ttl:  ttl,
	}
}

func (s *RunStore) Put(run *Run) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[run.ID] = run
}

func (s *RunStore) Get(id string) *Run {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runs[id]
}

// Cleanup removes expired runs.
func (s *RunStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, run := range s.runs {
		run.mu.Lock()
		updated := run.UpdatedAt
		run.mu.Unlock()
		if now.Sub(updated) > s.ttl {
			delete(s.runs, id)
		}
	}
}
