package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"vacradar/internal/classify"
	"vacradar/internal/config"
	"vacradar/internal/dedup"
	"vacradar/internal/extract"
	"vacradar/internal/feed"
	"vacradar/internal/feed/tgweb"
	"vacradar/internal/job"
	"vacradar/internal/notify"
	"vacradar/internal/ratelimit"
	"vacradar/internal/scheduler"
	"vacradar/internal/semantic"
	"vacradar/internal/similarity"
	"vacradar/internal/storage"
	"vacradar/pkg/logx"
)

func main() {
	var (
		cfgPath string
		runNow  bool
	)
	flag.StringVar(&cfgPath, "config", "./config.yaml", "path to config file (yaml or json)")
	flag.BoolVar(&runNow, "run-now", false, "run one collection immediately and exit")
	flag.Parse()

	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfgPath, runNow); err != nil {
		fmt.Fprintln(os.Stderr, "fatal:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfgPath string, runNow bool) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logSvc, log := logx.New(logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Console,
		File: logx.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
	})
	defer logSvc.Close()

	busyTimeout, err := config.Duration("storage.busy_timeout", cfg.Storage.BusyTimeout, 0)
	if err != nil {
		return err
	}
	store, err := storage.Open(storage.Config{Path: cfg.Storage.Path, BusyTimeout: busyTimeout}, log)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer store.Close()

	runner, client, err := buildRunner(cfg, store, log)
	if err != nil {
		return err
	}
	defer client.Close()

	if runNow {
		log.Info("running one collection immediately")
		runner.Run(ctx)
		return nil
	}

	sched, err := scheduler.New(scheduler.Config{
		Time:     cfg.Schedule.Time,
		Timezone: cfg.Schedule.Timezone,
	}, log)
	if err != nil {
		return err
	}
	if err := sched.Start(func() { runner.Run(ctx) }); err != nil {
		return err
	}
	defer sched.Stop()

	// Hot-reload is limited to the logging level: pipeline components are
	// constructed once per process.
	go func() {
		err := config.Watch(ctx, cfgPath, log, func(next *config.Config) {
			logSvc.Apply(logx.Config{
				Level:   next.Logging.Level,
				Console: next.Logging.Console,
				File: logx.FileConfig{
					Enabled: next.Logging.File.Enabled,
					Path:    next.Logging.File.Path,
				},
			})
		})
		if err != nil {
			log.Warn("config watcher stopped", logx.Err(err))
		}
	}()

	log.Info("vacradar started",
		logx.String("schedule", cfg.Schedule.Time),
		logx.String("timezone", cfg.Schedule.Timezone))
	<-ctx.Done()
	return nil
}

func buildRunner(cfg *config.Config, store storage.Store, log logx.Logger) (*job.Runner, feed.Client, error) {
	globalDelay, err := config.Duration("reader.global_delay", cfg.Reader.GlobalDelay, ratelimit.DefaultGlobalDelay)
	if err != nil {
		return nil, nil, err
	}
	sourceDelay, err := config.Duration("reader.source_delay", cfg.Reader.SourceDelay, ratelimit.DefaultSourceDelay)
	if err != nil {
		return nil, nil, err
	}
	batchDelay, err := config.Duration("reader.batch_delay", cfg.Reader.BatchDelay, feed.DefaultBatchDelay)
	if err != nil {
		return nil, nil, err
	}
	partDelay, err := config.Duration("telegram.part_delay", cfg.Telegram.PartDelay, 0)
	if err != nil {
		return nil, nil, err
	}
	batchPause, err := config.Duration("semantic.batch_pause", cfg.Semantic.BatchPause, 0)
	if err != nil {
		return nil, nil, err
	}

	client := tgweb.New(nil)
	limiter := ratelimit.New(globalDelay, sourceDelay)
	reader := feed.NewReader(feed.Config{
		BatchSize:  cfg.Reader.BatchSize,
		BatchDelay: batchDelay,
	}, client, limiter, log)

	scorer := similarity.Levenshtein{}
	analyzer := classify.NewContextAnalyzer(cfg.Classifier.ContextMinMatches, cfg.Classifier.FuzzyThreshold, scorer)
	classifier := classify.New(classify.DefaultRules(), analyzer, log)

	var semanticFilter job.SemanticFilter
	if cfg.Semantic.Enabled {
		f, err := semantic.New(semantic.Config{
			APIKey:     os.Getenv("OPENAI_API_KEY"),
			Model:      cfg.Semantic.Model,
			BatchSize:  cfg.Semantic.BatchSize,
			BatchPause: batchPause,
		}, log)
		if err != nil {
			return nil, nil, fmt.Errorf("semantic filter: %w", err)
		}
		semanticFilter = f
	}

	deduper := dedup.New(dedup.Config{
		WindowDays:     cfg.Dedup.WindowDays,
		TitleThreshold: cfg.Dedup.TitleThreshold,
	}, store, scorer, log)

	sender, err := notify.NewTelebotSender(cfg.Telegram.Token)
	if err != nil {
		return nil, nil, fmt.Errorf("telegram bot: %w", err)
	}
	notifier := notify.New(notify.Config{
		Targets:   cfg.Telegram.Targets,
		PartDelay: partDelay,
	}, sender, store, log)

	runner := job.NewRunner(job.Config{
		SinceHours:    cfg.Reader.SinceHours,
		MessageLimit:  cfg.Reader.MessageLimit,
		RetentionDays: cfg.Dedup.RetentionDays,
	}, job.Deps{
		Store:      store,
		Reader:     reader,
		Extractor:  extract.New(log),
		Classifier: classifier,
		Semantic:   semanticFilter,
		Dedup:      deduper,
		Notifier:   notifier,
	}, log)

	return runner, client, nil
}
