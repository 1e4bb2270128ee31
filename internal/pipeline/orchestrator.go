// Package pipeline orchestrates the analysis stages under a wall-clock
// budget: extraction, segmentation, scoring, ranking, refinement, assembly.
// When the budget runs out mid-flight, later stages are skipped and the
// result is assembled from whatever the earlier stages produced.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/docsift/docsift/internal/config"
	"github.com/docsift/docsift/internal/extract"
	"github.com/docsift/docsift/internal/lexicon"
	"github.com/docsift/docsift/internal/model"
	"github.com/docsift/docsift/internal/rank"
	"github.com/docsift/docsift/internal/refine"
	"github.com/docsift/docsift/internal/score"
	"github.com/docsift/docsift/internal/segment"
)

// ErrNoDocuments means not a single input document could be read.
var ErrNoDocuments = errors.New("pipeline: no readable documents")

// Orchestrator runs analyses. It is stateless across runs and safe for
// concurrent use.
type Orchestrator struct {
	cfg    config.Config
	scx    score.Context
	reader extract.Reader
	log    *slog.Logger
}

// NewOrchestrator builds an orchestrator from config.
func NewOrchestrator(cfg config.Config, log *slog.Logger) *Orchestrator {
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.Budget <= 0 {
		cfg.Budget = 60 * time.Second
	}
	return &Orchestrator{
		cfg: cfg,
		scx: score.NewContext(lexicon.Builtin(), nil),
		reader: extract.Reader{
			Dir:                  cfg.DocumentDir,
			PDFFallbackPdftotext: cfg.PDFFallbackPdftotext,
		},
		log: log,
	}
}

// Analyze processes a validated request and always returns a well-formed
// result when any document was readable, even if the budget truncated the
// run. The progress callback may be nil.
func (o *Orchestrator) Analyze(parent context.Context, req model.AnalysisRequest, progress func(Stage)) (*model.AnalysisResult, error) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(parent, o.cfg.Budget)
	defer cancel()

	report := func(s Stage) {
		if progress != nil {
			progress(s)
		}
	}

	persona := score.DerivePersona(req.Persona, o.scx.Registry)
	job := score.DeriveJob(req.JobToBeDone, o.scx.Registry)

	report(StageExtracting)
	docs, skipped := o.readAll(ctx, req.Documents)

	report(StageSegmenting)
	perDoc, emptied := o.segmentAll(ctx, docs)
	skipped += emptied

	processed := 0
	docOrder := make([]string, 0, len(req.Documents))
	var sections []model.Section
	for i, secs := range perDoc {
		docOrder = append(docOrder, req.Documents[i].Filename)
		if len(secs) > 0 {
			processed++
			sections = append(sections, secs...)
		}
	}
	truncated := ctx.Err() != nil
	if !truncated && processed == 0 {
		return nil, ErrNoDocuments
	}
	o.log.Info("documents collected",
		"processed", processed,
		"skipped", skipped,
		"sections", len(sections))

	report(StageScoring)
	scx := o.scx
	if o.cfg.SemanticScoring {
		emb := score.NewEmbedder()
		corpus := make([]string, len(sections))
		for i, sec := range sections {
			corpus[i] = score.SemanticText(sec)
		}
		emb.Fit(corpus)
		scx = score.NewContext(o.scx.Registry, emb)
	}
	scored := o.scoreAll(ctx, scx, sections, persona, job)
	truncated = truncated || ctx.Err() != nil

	report(StageRanking)
	ranked := rank.Select(scored, docOrder, rank.Config{
		MaxSections:         o.cfg.MaxSections,
		Lambda:              o.cfg.Lambda,
		Mu:                  o.cfg.Mu,
		Nu:                  o.cfg.Nu,
		RedundancyThreshold: o.cfg.RedundancyThreshold,
	})

	report(StageRefining)
	subsections := o.refineTop(ctx, ranked, persona, job)
	truncated = truncated || ctx.Err() != nil

	report(StageAssembling)
	res := &model.AnalysisResult{
		Sections:    ranked,
		Subsections: subsections,
		Meta: model.RunMeta{
			Elapsed:            time.Since(start),
			Truncated:          truncated,
			DocumentsProcessed: processed,
			DocumentsSkipped:   skipped,
		},
	}
	o.log.Info("analysis complete",
		"elapsed", res.Meta.Elapsed,
		"truncated", truncated,
		"sections", len(ranked),
		"subsections", len(subsections))
	return res, nil
}

// readAll extracts every document concurrently. Unreadable documents are
// logged and skipped, never fatal. Results keep input order regardless of
// completion order, with nil entries for failures.
func (o *Orchestrator) readAll(ctx context.Context, refs []model.DocumentRef) ([]*model.Document, int) {
	docs := make([]*model.Document, len(refs))

	g := new(errgroup.Group)
	g.SetLimit(o.cfg.WorkerCount)
	for i, ref := range refs {
		i, ref := i, ref
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			doc, err := o.reader.ReadDocument(ref)
			if err != nil {
				o.log.Warn("skipping unreadable document", "file", ref.Filename, "error", err)
				return nil
			}
			docs[i] = &doc
			return nil
		})
	}
	g.Wait()

	skipped := 0
	for _, d := range docs {
		if d == nil {
			skipped++
		}
	}
	return docs, skipped
}

// segmentAll segments every extracted document concurrently. Documents that
// yield no text are logged and skipped.
func (o *Orchestrator) segmentAll(ctx context.Context, docs []*model.Document) ([][]model.Section, int) {
	results := make([][]model.Section, len(docs))
	emptied := make([]bool, len(docs))

	segCfg := segment.Config{MaxSections: o.cfg.MaxSectionsPerDoc}

	g := new(errgroup.Group)
	g.SetLimit(o.cfg.WorkerCount)
	for i, doc := range docs {
		if doc == nil {
			continue
		}
		i, doc := i, doc
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			secs, err := segment.Segment(*doc, segCfg)
			if err != nil {
				o.log.Warn("skipping document without text", "file", doc.Filename, "error", err)
				emptied[i] = true
				return nil
			}
			results[i] = secs
			return nil
		})
	}
	g.Wait()

	skipped := 0
	for _, e := range emptied {
		if e {
			skipped++
		}
	}
	return results, skipped
}

// scoreAll scores sections concurrently. Sections left unscored by budget
// expiry are dropped.
func (o *Orchestrator) scoreAll(ctx context.Context, scx score.Context, sections []model.Section, persona model.Persona, job model.Job) []model.ScoredSection {
	out := make([]model.ScoredSection, len(sections))
	done := make([]bool, len(sections))
	weights := score.Weights{Keyword: o.cfg.KeywordWeight, Semantic: o.cfg.SemanticWeight}

	g := new(errgroup.Group)
	g.SetLimit(o.cfg.WorkerCount)
	for i, sec := range sections {
		i, sec := i, sec
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			out[i] = score.Score(sec, persona, job, scx, weights)
			done[i] = true
			return nil
		})
	}
	g.Wait()

	var scored []model.ScoredSection
	for i := range out {
		if done[i] {
			scored = append(scored, out[i])
		}
	}
	return scored
}

// refineTop refines the highest-ranked sections concurrently and caps the
// subsection count.
func (o *Orchestrator) refineTop(ctx context.Context, ranked []model.RankedSection, persona model.Persona, job model.Job) []model.Subsection {
	limit := o.cfg.RefineSectionLimit
	if limit <= 0 || limit > len(ranked) {
		limit = len(ranked)
	}
	keywords := append(append([]string{}, persona.Keywords...), job.Keywords...)
	rcfg := refine.Config{MinWords: o.cfg.RefineMinWords, MaxWords: o.cfg.RefineMaxWords}

	out := make([]model.Subsection, limit)
	done := make([]bool, limit)

	g := new(errgroup.Group)
	g.SetLimit(o.cfg.WorkerCount)
	for i := 0; i < limit; i++ {
		i := i
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			sub := refine.Refine(ranked[i].Section, keywords, rcfg)
			if sub.RefinedText != "" {
				out[i] = sub
				done[i] = true
			}
			return nil
		})
	}
	g.Wait()

	var subs []model.Subsection
	for i := range out {
		if done[i] {
			subs = append(subs, out[i])
		}
	}
	if o.cfg.MaxSubsections > 0 && len(subs) > o.cfg.MaxSubsections {
		subs = subs[:o.cfg.MaxSubsections]
	}
	return subs
}
