// Package scheduler fires the daily collection trigger at a configured
// local time in a configured timezone.
package scheduler

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"vacradar/pkg/logx"
)

type Config struct {
	Time     string // "HH:MM" local time
	Timezone string // IANA zone, e.g. "Europe/Moscow"
}

type Service struct {
	cfg Config
	log logx.Logger
	c   *cron.Cron
	loc *time.Location
}

func New(cfg Config, log logx.Logger) (*Service, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("scheduler: load timezone %q: %w", cfg.Timezone, err)
	}
	return &Service{cfg: cfg, log: log, loc: loc}, nil
}

// Start registers job to run daily at the configured time and starts the
// cron loop. job runs on the scheduler goroutine, one firing at a time.
func (s *Service) Start(job func()) error {
	spec, err := cronSpec(s.cfg.Time)
	if err != nil {
		return err
	}

	s.c = cron.New(cron.WithLocation(s.loc))
	if _, err := s.c.AddFunc(spec, job); err != nil {
		return err
	}
	s.c.Start()
	s.log.Info("scheduler started",
		logx.String("time", s.cfg.Time),
		logx.String("timezone", s.cfg.Timezone))
	return nil
}

func (s *Service) Stop() {
	if s.c != nil {
		<-s.c.Stop().Done()
		s.log.Info("scheduler stopped")
	}
}

// cronSpec converts "HH:MM" to a five-field daily cron spec.
func cronSpec(hhmm string) (string, error) {
	h, m, err := parseHHMM(hhmm)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d %d * * *", m, h), nil
}

func parseHHMM(raw string) (hour, minute int, err error) {
	hs, ms, ok := strings.Cut(strings.TrimSpace(raw), ":")
	if !ok {
		return 0, 0, fmt.Errorf("scheduler: invalid time %q, want HH:MM", raw)
	}
	hour, err = strconv.Atoi(hs)
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("scheduler: invalid hour in %q", raw)
	}
	minute, err = strconv.Atoi(ms)
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("scheduler: invalid minute in %q", raw)
	}
	return hour, minute, nil
}
