// Package job orchestrates one collection run: read sources, extract,
// classify, optionally confirm semantically, deduplicate, persist, deliver,
// and record the run outcome.
package job

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"vacradar/internal/classify"
	"vacradar/internal/dedup"
	"vacradar/internal/extract"
	"vacradar/internal/feed"
	"vacradar/internal/notify"
	"vacradar/internal/storage"
	"vacradar/internal/vacancy"
	"vacradar/pkg/logx"
)

// SemanticFilter is the optional second-pass stage. Nil disables it.
type SemanticFilter interface {
	Filter(ctx context.Context, cands []vacancy.Candidate) []vacancy.Candidate
}

type Config struct {
	SinceHours    int
	MessageLimit  int
	RetentionDays int
}

// Runner drives the pipeline. One run at a time: an overlapping trigger
// logs and returns without starting a second run.
type Runner struct {
	cfg        Config
	store      storage.Store
	reader     *feed.Reader
	extractor  *extract.Extractor
	classifier *classify.Classifier
	semantic   SemanticFilter
	dedup      *dedup.Deduplicator
	notifier   *notify.Notifier
	log        logx.Logger

	running atomic.Bool
}

type Deps struct {
	Store      storage.Store
	Reader     *feed.Reader
	Extractor  *extract.Extractor
	Classifier *classify.Classifier
	Semantic   SemanticFilter // nil when disabled
	Dedup      *dedup.Deduplicator
	Notifier   *notify.Notifier
}

func NewRunner(cfg Config, deps Deps, log logx.Logger) *Runner {
	if cfg.SinceHours <= 0 {
		cfg.SinceHours = 24
	}
	if cfg.MessageLimit <= 0 {
		cfg.MessageLimit = 100
	}
	if cfg.RetentionDays <= 0 {
		cfg.RetentionDays = dedup.DefaultRetentionDays
	}
	return &Runner{
		cfg:        cfg,
		store:      deps.Store,
		reader:     deps.Reader,
		extractor:  deps.Extractor,
		classifier: deps.Classifier,
		semantic:   deps.Semantic,
		dedup:      deps.Dedup,
		notifier:   deps.Notifier,
		log:        log,
	}
}

// Run executes one collection job. Per-item and per-source failures are
// contained inside their stages; only persistence failures (and panics)
// fail the run. The JobRun row always ends in completed or failed.
func (r *Runner) Run(ctx context.Context) {
	if !r.running.CompareAndSwap(false, true) {
		r.log.Warn("collection already running, trigger skipped")
		return
	}
	defer r.running.Store(false)

	started := time.Now()
	runID, err := r.store.CreateJobRun(ctx, started)
	if err != nil {
		r.log.Error("cannot create job run", logx.Err(err))
		return
	}
	log := r.log.With(logx.Int64("run", runID))
	log.Info("collection started")

	var found, sent int
	runErr := func() (err error) {
		defer func() {
			if p := recover(); p != nil {
				err = fmt.Errorf("panic: %v", p)
			}
		}()
		found, sent, err = r.collect(ctx, log)
		return err
	}()

	run := storage.JobRun{
		ID:          runID,
		CompletedAt: time.Now(),
		Status:      storage.RunStatusCompleted,
		FoundCount:  found,
		SentCount:   sent,
	}
	if runErr != nil {
		run.Status = storage.RunStatusFailed
		run.Error = runErr.Error()
		log.Error("collection failed", logx.Err(runErr))
	}
	if err := r.store.FinishJobRun(ctx, run); err != nil {
		log.Error("cannot finalize job run", logx.Err(err))
		return
	}
	if runErr == nil {
		log.Info("collection completed",
			logx.Int("found", found),
			logx.Int("sent", sent),
			logx.Duration("took", time.Since(started)))
	}
}

func (r *Runner) collect(ctx context.Context, log logx.Logger) (found, sent int, err error) {
	sources, err := r.store.EnabledSources(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("load sources: %w", err)
	}
	log.Info("sources loaded", logx.Int("sources", len(sources)))
	if len(sources) == 0 {
		log.Warn("no enabled sources")
		return 0, 0, nil
	}

	byHandle := make(map[string]storage.Source, len(sources))
	handles := make([]string, 0, len(sources))
	for _, src := range sources {
		byHandle[src.Handle] = src
		handles = append(handles, src.Handle)
	}

	messages := r.reader.ReadSources(ctx, handles, r.cfg.SinceHours, r.cfg.MessageLimit)

	var candidates []vacancy.Candidate
	now := time.Now()
	for handle, msgs := range messages {
		src := byHandle[handle]
		if len(msgs) > 0 {
			if err := r.store.TouchSource(ctx, src.ID, now); err != nil {
				return 0, 0, fmt.Errorf("touch source %s: %w", handle, err)
			}
		}
		for _, cand := range r.extractor.BatchExtract(msgs) {
			cand.SourceID = src.ID
			candidates = append(candidates, cand)
		}
	}
	log.Info("candidates extracted", logx.Int("candidates", len(candidates)))
	found = len(candidates)

	matched := r.classifier.Filter(candidates)

	if r.semantic != nil {
		matched = r.semantic.Filter(ctx, matched)
	}

	unique, err := r.dedup.FilterDuplicates(ctx, matched)
	if err != nil {
		return found, 0, fmt.Errorf("deduplicate: %w", err)
	}

	stored, err := r.persist(ctx, log, unique)
	if err != nil {
		return found, 0, err
	}

	ok, err := r.notifier.SendRecords(ctx, stored)
	if err != nil {
		return found, 0, fmt.Errorf("deliver: %w", err)
	}
	if ok {
		sent = len(stored)
	}

	if _, err := r.dedup.CleanupOld(ctx, r.cfg.RetentionDays); err != nil {
		log.Warn("retention cleanup failed", logx.Err(err))
	}
	return found, sent, nil
}

// persist stores accepted candidates. The fingerprint is computed here,
// after the semantic stage, so normalized titles are what dedup sees on
// later runs. A fingerprint conflict means another run won the race; the
// record is treated as a duplicate and skipped.
func (r *Runner) persist(ctx context.Context, log logx.Logger, cands []vacancy.Candidate) ([]storage.Record, error) {
	var stored []storage.Record
	for _, cand := range cands {
		rec := storage.Record{
			SourceID:    cand.SourceID,
			MessageID:   cand.MessageID,
			Title:       cand.Title,
			Company:     cand.Company,
			Link:        cand.Link,
			Category:    string(cand.Category),
			FullText:    cand.FullText,
			Fingerprint: dedup.Fingerprint(cand.Title, cand.Company, cand.Link),
			FoundAt:     cand.PostedAt,
		}
		if rec.FoundAt.IsZero() {
			rec.FoundAt = time.Now()
		}
		err := r.store.InsertRecord(ctx, &rec)
		if errors.Is(err, storage.ErrDuplicateFingerprint) {
			log.Debug("record lost insert race, skipped", logx.String("title", cand.Title))
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("persist record: %w", err)
		}
		stored = append(stored, rec)
	}
	log.Info("records persisted", logx.Int("records", len(stored)))
	return stored, nil
}
