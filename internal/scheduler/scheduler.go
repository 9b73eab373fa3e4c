package scheduler

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/YesAndBack/TakeWaterBot/internal/domain"
)

// Scheduler fires jobs at fixed wall-clock times in a single configured zone.
// Every job is identified by a label; registering the same label again replaces
// the previous trigger. A slow job never overlaps itself: a fire that comes due
// while the previous run is still going is skipped.
type Scheduler struct {
	cron    *cron.Cron
	log     *zap.Logger
	mu      sync.Mutex
	entries map[string]cron.EntryID
}

// New creates a stopped Scheduler bound to loc.
func New(loc *time.Location, log *zap.Logger) *Scheduler {
	cl := cronLogger{log: log}
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		log:     log,
		entries: make(map[string]cron.EntryID),
	}
}

// Register binds job to fire once per day at the given time. An existing job
// with the same label is replaced, not duplicated.
func (s *Scheduler) Register(label string, at domain.Clock, job func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.entries[label]; ok {
		s.cron.Remove(id)
	}
	id, err := s.cron.AddFunc(at.CronSpec(), job)
	if err != nil {
		return err
	}
	s.entries[label] = id
	s.log.Info("job registered", zap.String("label", label), zap.String("at", at.String()))
	return nil
}

// Labels returns the registered job labels, sorted.
func (s *Scheduler) Labels() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	labels := make([]string, 0, len(s.entries))
	for l := range s.entries {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	return labels
}

// Start begins firing jobs. Missed fires from before Start are not backfilled.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("scheduler started", zap.Strings("jobs", s.Labels()))
}

// Stop halts trigger detection. The returned context is done once in-flight
// jobs have finished.
func (s *Scheduler) Stop() context.Context {
	s.log.Info("scheduler stopping")
	return s.cron.Stop()
}

// cronLogger adapts zap to the cron.Logger interface used by the job wrappers.
type cronLogger struct {
	log *zap.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.log.Sugar().Infow(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.log.Sugar().Errorw(msg, append(keysAndValues, "error", err)...)
}
