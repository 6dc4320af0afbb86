package feed

import (
	"context"
	"sync"
	"time"

	"vacradar/internal/ratelimit"
	"vacradar/pkg/logx"
)

const (
	DefaultBatchSize  = 10
	DefaultBatchDelay = 30 * time.Second
)

// Config controls reader batching.
type Config struct {
	BatchSize  int           // sources fetched concurrently per wave
	BatchDelay time.Duration // pause between waves
}

// Reader reads recent history from many sources in bounded concurrent
// waves. Per-source failures are logged and yield empty results; they never
// abort sibling fetches or the batch.
type Reader struct {
	cfg     Config
	client  Client
	limiter *ratelimit.Limiter
	log     logx.Logger

	// sleep is swappable for tests; defaults to a ctx-aware time sleep.
	sleep func(ctx context.Context, d time.Duration)
}

func NewReader(cfg Config, client Client, limiter *ratelimit.Limiter, log logx.Logger) *Reader {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.BatchDelay <= 0 {
		cfg.BatchDelay = DefaultBatchDelay
	}
	return &Reader{cfg: cfg, client: client, limiter: limiter, log: log, sleep: sleepCtx}
}

func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// ReadSource returns messages from one source newer than now-sinceHours,
// newest-first, at most limit. The provider is assumed to return history in
// reverse chronological order, so the scan stops at the first old message.
//
// A slow-down signal sleeps the mandated duration and retries; repeated
// signals each re-sleep for their own duration. Unavailable sources and
// unexpected failures are logged and return an empty slice. ReadSource
// never returns an error to the caller.
func (r *Reader) ReadSource(ctx context.Context, source string, sinceHours, limit int) []Message {
	cutoff := time.Now().Add(-time.Duration(sinceHours) * time.Hour)

	for {
		if err := r.limiter.Wait(ctx, source); err != nil {
			return nil
		}

		history, err := r.client.History(source, limit)
		if err == nil {
			msgs := trimOlder(history, cutoff)
			r.log.Info("source read",
				logx.String("source", source),
				logx.Int("messages", len(msgs)))
			return msgs
		}

		if sd, ok := AsSlowDown(err); ok {
			r.log.Warn("provider slow-down, sleeping",
				logx.String("source", source),
				logx.Duration("retry_after", sd.RetryAfter))
			r.sleep(ctx, sd.RetryAfter)
			if ctx.Err() != nil {
				return nil
			}
			continue
		}
		if IsUnavailable(err) {
			r.log.Error("source unavailable, skipping", logx.String("source", source), logx.Err(err))
			return nil
		}
		r.log.Error("source read failed, skipping", logx.String("source", source), logx.Err(err))
		return nil
	}
}

func trimOlder(history []Message, cutoff time.Time) []Message {
	var msgs []Message
	for _, m := range history {
		if m.Date.Before(cutoff) {
			break
		}
		msgs = append(msgs, m)
	}
	return msgs
}

// ReadSources fetches all sources in waves of BatchSize: reads within a
// wave run concurrently, the reader waits for the whole wave, then sleeps
// BatchDelay before the next one. The result has an entry (possibly empty)
// for every requested source.
func (r *Reader) ReadSources(ctx context.Context, sources []string, sinceHours, limit int) map[string][]Message {
	out := make(map[string][]Message, len(sources))
	var mu sync.Mutex

	batches := (len(sources) + r.cfg.BatchSize - 1) / r.cfg.BatchSize
	for i := 0; i < len(sources); i += r.cfg.BatchSize {
		end := min(i+r.cfg.BatchSize, len(sources))
		wave := sources[i:end]
		r.log.Info("reading wave",
			logx.Int("wave", i/r.cfg.BatchSize+1),
			logx.Int("waves", batches),
			logx.Int("sources", len(wave)))

		var wg sync.WaitGroup
		for _, source := range wave {
			wg.Add(1)
			go func(source string) {
				defer wg.Done()
				msgs := r.ReadSource(ctx, source, sinceHours, limit)
				mu.Lock()
				out[source] = msgs
				mu.Unlock()
			}(source)
		}
		wg.Wait()

		if end < len(sources) {
			r.log.Debug("waiting before next wave", logx.Duration("delay", r.cfg.BatchDelay))
			r.sleep(ctx, r.cfg.BatchDelay)
			if ctx.Err() != nil {
				// Remaining sources still get (empty) entries.
				mu.Lock()
				for _, s := range sources[end:] {
					if _, ok := out[s]; !ok {
						out[s] = nil
					}
				}
				mu.Unlock()
				return out
			}
		}
	}

	total := 0
	for _, msgs := range out {
		total += len(msgs)
	}
	r.log.Info("all sources read", logx.Int("sources", len(sources)), logx.Int("messages", total))
	return out
}
