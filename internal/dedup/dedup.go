// Package dedup rejects candidates that match an already-accepted record
// within a trailing time window, exactly (fingerprint, link) or
// approximately (fuzzy title similarity).
package dedup

import (
	"context"
	"strings"
	"time"

	"vacradar/internal/similarity"
	"vacradar/internal/storage"
	"vacradar/internal/vacancy"
	"vacradar/pkg/logx"
)

const (
	DefaultWindowDays     = 7
	DefaultTitleThreshold = 90
	DefaultRetentionDays  = 30

	// Titles this short carry too little signal for fuzzy comparison.
	minFuzzyTitleLen = 11
)

type Config struct {
	WindowDays     int
	TitleThreshold int
}

type Deduplicator struct {
	cfg    Config
	store  storage.Store
	scorer similarity.Scorer
	log    logx.Logger
}

func New(cfg Config, store storage.Store, scorer similarity.Scorer, log logx.Logger) *Deduplicator {
	if cfg.WindowDays <= 0 {
		cfg.WindowDays = DefaultWindowDays
	}
	if cfg.TitleThreshold <= 0 {
		cfg.TitleThreshold = DefaultTitleThreshold
	}
	return &Deduplicator{cfg: cfg, store: store, scorer: scorer, log: log}
}

func (d *Deduplicator) windowStart(now time.Time) time.Time {
	return now.Add(-time.Duration(d.cfg.WindowDays) * 24 * time.Hour)
}

// IsDuplicate checks cand against stored records inside the window,
// cheapest first: exact fingerprint, exact link, then fuzzy title within
// the same category. The first matching rule short-circuits.
func (d *Deduplicator) IsDuplicate(ctx context.Context, cand vacancy.Candidate) (bool, error) {
	since := d.windowStart(time.Now())

	fp := Fingerprint(cand.Title, cand.Company, cand.Link)
	if rec, err := d.store.RecordByFingerprint(ctx, fp, since); err != nil {
		return false, err
	} else if rec != nil {
		return true, nil
	}

	if cand.Link != "" {
		if rec, err := d.store.RecordByLink(ctx, cand.Link, since); err != nil {
			return false, err
		} else if rec != nil {
			return true, nil
		}
	}

	if len([]rune(cand.Title)) >= minFuzzyTitleLen {
		recent, err := d.store.RecordsSince(ctx, since, string(cand.Category))
		if err != nil {
			return false, err
		}
		if d.fuzzyTitleMatch(cand.Title, recent) {
			return true, nil
		}
	}

	return false, nil
}

// FilterDuplicates returns the non-duplicate subset of cands in original
// order. All checks run against one snapshot of in-window records loaded up
// front, so every candidate in the batch sees the same stored state.
func (d *Deduplicator) FilterDuplicates(ctx context.Context, cands []vacancy.Candidate) ([]vacancy.Candidate, error) {
	if len(cands) == 0 {
		return nil, nil
	}
	since := d.windowStart(time.Now())
	snapshot, err := d.store.RecordsSince(ctx, since, "")
	if err != nil {
		return nil, err
	}

	byFingerprint := make(map[string]struct{}, len(snapshot))
	byLink := make(map[string]struct{}, len(snapshot))
	byCategory := make(map[string][]storage.Record)
	for _, rec := range snapshot {
		byFingerprint[rec.Fingerprint] = struct{}{}
		if rec.Link != "" {
			byLink[rec.Link] = struct{}{}
		}
		byCategory[rec.Category] = append(byCategory[rec.Category], rec)
	}

	var unique []vacancy.Candidate
	dropped := 0
	for _, cand := range cands {
		fp := Fingerprint(cand.Title, cand.Company, cand.Link)
		dup := false
		switch {
		case contains(byFingerprint, fp):
			dup = true
		case cand.Link != "" && contains(byLink, cand.Link):
			dup = true
		case len([]rune(cand.Title)) >= minFuzzyTitleLen:
			dup = d.fuzzyTitleMatch(cand.Title, byCategory[string(cand.Category)])
		}
		if dup {
			dropped++
			continue
		}
		unique = append(unique, cand)
	}

	d.log.Info("deduplication complete",
		logx.Int("unique", len(unique)),
		logx.Int("duplicates", dropped))
	return unique, nil
}

func (d *Deduplicator) fuzzyTitleMatch(title string, recent []storage.Record) bool {
	lower := strings.ToLower(title)
	for _, rec := range recent {
		if d.scorer.Ratio(lower, strings.ToLower(rec.Title)) >= d.cfg.TitleThreshold {
			return true
		}
	}
	return false
}

func contains(set map[string]struct{}, key string) bool {
	_, ok := set[key]
	return ok
}

// CleanupOld removes records older than days. Maintenance, not part of the
// per-run duplicate checks.
func (d *Deduplicator) CleanupOld(ctx context.Context, days int) (int64, error) {
	if days <= 0 {
		days = DefaultRetentionDays
	}
	cutoff := time.Now().Add(-time.Duration(days) * 24 * time.Hour)
	n, err := d.store.DeleteRecordsBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		d.log.Info("old records cleaned up", logx.Int64("deleted", n), logx.Int("days", days))
	}
	return n, nil
}
