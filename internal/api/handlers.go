package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/docsift/docsift/internal/model"
	"github.com/docsift/docsift/internal/output"
	"github.com/docsift/docsift/internal/pipeline"
)

// maxRequestBytes bounds the analyze request body. The documents travel by
// reference, so requests are small.
const maxRequestBytes = 10 << 20

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBytes)

	var req model.AnalysisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}

	if err := req.Validate(); err != nil {
		var verr *model.ValidationError
		if errors.As(err, &verr) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnprocessableEntity)
			json.NewEncoder(w).Encode(map[string]string{
				"error": verr.Message,
				"field": verr.Field,
			})
			return
		}
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	run, err := s.svc.Submit(req)
	if err != nil {
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]any{
		"run_id":   run.ID,
		"stage":    pipeline.StageQueued,
		"poll_url": fmt.Sprintf("/api/runs/%s", run.ID),
	})
}

func (s *Server) handleRunStatus(w http.ResponseWriter, r *http.Request) {
	run := s.svc.Get(chi.URLParam(r, "runID"))
	if run == nil {
		jsonError(w, "run not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(run.Snapshot())
}

func (s *Server) handleRunResult(w http.ResponseWriter, r *http.Request) {
	run := s.svc.Get(chi.URLParam(r, "runID"))
	if run == nil {
		jsonError(w, "run not found", http.StatusNotFound)
		return
	}

	snap := run.Snapshot()
	if snap.Stage == pipeline.StageFailed {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(output.BuildError(run.Request, errors.New(snap.Error), time.Now()))
		return
	}

	res, ok := run.TakeResult()
	if !ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		json.NewEncoder(w).Encode(map[string]any{"stage": snap.Stage})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := output.Write(w, output.Build(run.Request, res, time.Now())); err != nil {
		s.log.Error("write result", "run_id", snap.ID, "error", err)
	}
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
