package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/stwalsh4118/procur/internal/logger"
	"github.com/stwalsh4118/procur/internal/services"
)

// CaptureTimeout bounds one scheduled snapshot run.
const CaptureTimeout = 2 * time.Minute

// Scheduler captures report snapshots on a cron schedule.
type Scheduler struct {
	cron      *cron.Cron
	schedule  string
	snapshots services.SnapshotService
	log       *logger.Logger
}

// NewScheduler creates a scheduler for the given standard five-field cron
// expression (descriptors such as "@daily" are accepted too).
func NewScheduler(schedule string, snapshots services.SnapshotService, log *logger.Logger) (*Scheduler, error) {
	if log == nil {
		log = logger.Nop()
	}
	log = log.WithComponent("scheduler")

	s := &Scheduler{
		schedule:  schedule,
		snapshots: snapshots,
		log:       log,
	}

	// Overlapping runs would archive the same summaries twice.
	s.cron = cron.New(cron.WithChain(cron.SkipIfStillRunning(cronLogger{log})))
	if _, err := s.cron.AddFunc(schedule, s.capture); err != nil {
		return nil, fmt.Errorf("invalid report schedule %q: %w", schedule, err)
	}
	return s, nil
}

// Start runs the schedule in the background.
func (s *Scheduler) Start() {
	s.log.Info("Starting report scheduler", map[string]interface{}{
		"schedule": s.schedule,
	})
	s.cron.Start()
}

// Stop halts the schedule and waits for a running capture to finish, or
// for ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) {
	s.log.Info("Stopping report scheduler", nil)
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		s.log.Warn("Report capture still running at shutdown", nil)
	}
}

func (s *Scheduler) capture() {
	ctx, cancel := context.WithTimeout(context.Background(), CaptureTimeout)
	defer cancel()

	start := time.Now()
	snaps, err := s.snapshots.Capture(ctx)
	if err != nil {
		s.log.Error("Scheduled snapshot capture failed", err, nil)
		return
	}
	s.log.Info("Scheduled snapshot capture complete", map[string]interface{}{
		"snapshots":   len(snaps),
		"duration_ms": time.Since(start).Milliseconds(),
	})
}

// cronLogger adapts Logger to cron.Logger.
type cronLogger struct {
	log *logger.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug(msg, pairs(keysAndValues))
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error(msg, err, pairs(keysAndValues))
}

func pairs(kv []interface{}) map[string]interface{} {
	fields := make(map[string]interface{}, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		fields[fmt.Sprint(kv[i])] = kv[i+1]
	}
	return fields
}
