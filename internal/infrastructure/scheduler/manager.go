// Package scheduler runs deferred one-shot tasks and periodic jobs on gocron v2.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"

	"github.com/chamberirc/chamberbnc/internal/shared/biztime"
	"github.com/chamberirc/chamberbnc/internal/shared/goroutine"
	"github.com/chamberirc/chamberbnc/internal/shared/logger"
)

const (
	// DeferredTaskTimeout bounds a single deferred task run.
	DeferredTaskTimeout = 2 * time.Minute
	reminderTimeout     = 5 * time.Minute
)

// ReminderProcessor is run on every reminder tick.
type ReminderProcessor interface {
	ProcessReminders(ctx context.Context) error
}

// SchedulerManager owns the single gocron scheduler of the process.
type SchedulerManager struct {
	scheduler gocron.Scheduler
	logger    logger.Interface

	pending atomic.Int64
	failed  atomic.Int64

	// lifecycle serialises Start and Stop; running is read without it.
	lifecycle sync.Mutex
	running   atomic.Bool
}

// NewSchedulerManager creates a scheduler in the business timezone.
func NewSchedulerManager(log logger.Interface) (*SchedulerManager, error) {
	s, err := gocron.NewScheduler(gocron.WithLocation(biztime.Location()))
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}
	return &SchedulerManager{scheduler: s, logger: log.Named("scheduler")}, nil
}

// Defer runs task once after delay. Tasks scheduled before Start run once
// the scheduler starts. A failing or panicking task is logged and counted.
func (m *SchedulerManager) Defer(name string, delay time.Duration, task func(ctx context.Context) error) error {
	start := gocron.OneTimeJobStartImmediately()
	if delay > 0 {
		start = gocron.OneTimeJobStartDateTime(time.Now().Add(delay))
	}

	id := uuid.New()
	m.pending.Add(1)
	_, err := m.scheduler.NewJob(
		gocron.OneTimeJob(start),
		gocron.NewTask(func() {
			defer m.pending.Add(-1)
			m.runDeferred(id, name, task)
		}),
		gocron.WithIdentifier(id),
		gocron.WithName(name),
		gocron.WithTags("deferred"),
	)
	if err != nil {
		m.pending.Add(-1)
		return fmt.Errorf("failed to schedule %s: %w", name, err)
	}

	m.logger.Debugw("deferred task scheduled", "task", name, "job_id", id, "delay", delay)
	return nil
}

func (m *SchedulerManager) runDeferred(id uuid.UUID, name string, task func(ctx context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), DeferredTaskTimeout)
	defer cancel()

	began := time.Now()
	log := m.logger.With("task", name, "job_id", id)
	if err := goroutine.SafeCall(m.logger, name, func() error { return task(ctx) }); err != nil {
		m.failed.Add(1)
		log.Errorw("deferred task failed", "error", err, "took", time.Since(began))
		return
	}
	log.Infow("deferred task completed", "took", time.Since(began))
}

// PendingDeferred is the number of deferred tasks that have not finished.
func (m *SchedulerManager) PendingDeferred() int {
	return int(m.pending.Load())
}

// FailedDeferred is the number of deferred tasks that returned an error.
func (m *SchedulerManager) FailedDeferred() int {
	return int(m.failed.Load())
}

// RegisterReminderJob runs processor every interval. A non-positive
// interval disables the job.
func (m *SchedulerManager) RegisterReminderJob(interval time.Duration, processor ReminderProcessor) error {
	if interval <= 0 {
		m.logger.Infow("reminder job disabled")
		return nil
	}

	_, err := m.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() { m.processReminders(processor) }),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithTags("reminder"),
		gocron.WithName("pending-reminder"),
	)
	if err != nil {
		return fmt.Errorf("register reminder job: %w", err)
	}

	m.logger.Infow("reminder job registered", "interval", interval)
	return nil
}

func (m *SchedulerManager) processReminders(processor ReminderProcessor) {
	ctx, cancel := context.WithTimeout(context.Background(), reminderTimeout)
	defer cancel()

	err := goroutine.SafeCall(m.logger, "pending-reminder", func() error {
		return processor.ProcessReminders(ctx)
	})
	if err != nil && ctx.Err() == nil {
		m.logger.Errorw("reminder run failed", "error", err)
	}
}

// Start begins running registered and deferred jobs. Repeated calls are no-ops.
func (m *SchedulerManager) Start() {
	m.lifecycle.Lock()
	defer m.lifecycle.Unlock()
	if m.running.Load() {
		return
	}
	m.scheduler.Start()
	m.running.Store(true)
	m.logger.Infow("scheduler started", "jobs", len(m.scheduler.Jobs()))
}

// Stop waits for running jobs to complete. Deferred tasks that have not
// started yet are dropped and logged.
func (m *SchedulerManager) Stop() error {
	m.lifecycle.Lock()
	defer m.lifecycle.Unlock()
	if !m.running.Swap(false) {
		return nil
	}

	if err := m.scheduler.Shutdown(); err != nil {
		return fmt.Errorf("shutdown scheduler: %w", err)
	}
	if n := m.PendingDeferred(); n > 0 {
		m.logger.Warnw("deferred tasks dropped at shutdown", "count", n)
	}
	m.logger.Infow("scheduler stopped")
	return nil
}

func (m *SchedulerManager) IsStarted() bool {
	return m.running.Load()
}

func (m *SchedulerManager) Jobs() []gocron.Job {
	return m.scheduler.Jobs()
}
