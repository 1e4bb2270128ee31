package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/docsift/docsift/internal/config"
	"github.com/docsift/docsift/internal/model"
)

// Service runs submitted analyses on a worker pool and tracks them in a
// TTL-evicted store. It backs serve mode; the CLI calls the orchestrator
// directly.
type Service struct {
	cfg   config.Config
	orch  *Orchestrator
	runs  *RunStore
	queue chan *Run
	log   *slog.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewService creates the service without starting workers.
func NewService(cfg config.Config, log *slog.Logger) *Service {
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	return &Service{
		cfg:   cfg,
		orch:  NewOrchestrator(cfg, log),
		runs:  NewRunStore(cfg.RunTTL),
		queue: make(chan *Run, cfg.MaxQueueSize),
		log:   log,
	}
}

// Start launches worker goroutines and the store cleanup loop.
func (s *Service) Start(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	workers := s.cfg.WorkerCount
	if workers <= 0 {
		workers = 4
	}
	for i := 0; i < workers; i++ {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			for {
				select {
				case <-workerCtx.Done():
					return
				case run, ok := <-s.queue:
					if !ok {
						return
					}
					s.process(workerCtx, run)
				}
			}
		}()
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				s.runs.Cleanup()
			}
		}
	}()
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	close(s.queue)
	s.wg.Wait()
}

// Submit queues a new analysis run.
func (s *Service) Submit(req model.AnalysisRequest) (*Run, error) {
	run := NewRun(req)
	s.runs.Put(run)
	select {
	case s.queue <- run:
		return run, nil
	default:
		err := fmt.Errorf("run queue is full (%d)", cap(s.queue))
		run.Fail(err)
		return nil, err
	}
}

// Get returns a run by ID, or nil.
func (s *Service) Get(id string) *Run {
	return s.runs.Get(id)
}

// QueueDepth returns the current queue depth.
func (s *Service) QueueDepth() int {
	return len(s.queue)
}

func (s *Service) process(ctx context.Context, run *Run) {
	s.log.Info("run started", "run_id", run.ID, "documents", len(run.Request.Documents))
	res, err := s.orch.Analyze(ctx, run.Request, run.SetStage)
	if err != nil {
		s.log.Error("run failed", "run_id", run.ID, "error", err)
		run.Fail(err)
		return
	}
	run.Complete(res)
	s.log.Info("run finished", "run_id", run.ID, "stage", run.Snapshot().Stage)
}
