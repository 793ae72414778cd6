// Package scheduler runs the periodic maintenance jobs using gocron v2.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/Mordecai-Wambua/User-Auth/internal/shared/logger"
)

const (
	DefaultPurgeInterval = time.Hour
	purgeTimeout         = 5 * time.Minute
)

// BatchJob processes one batch per call and reports how many items it touched.
type BatchJob interface {
	Execute(ctx context.Context) (int, error)
}

// SchedulerManager owns the single gocron scheduler of the process.
type SchedulerManager struct {
	scheduler gocron.Scheduler
	logger    logger.Interface

	started   bool
	startedMu sync.RWMutex
}

func NewSchedulerManager(log logger.Interface) (*SchedulerManager, error) {
	scheduler, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		return nil, err
	}

	return &SchedulerManager{
		scheduler: scheduler,
		logger:    log,
	}, nil
}

// RegisterPurgeJob removes expired verification tokens and blacklist rows
// every interval, starting immediately.
func (m *SchedulerManager) RegisterPurgeJob(job BatchJob, interval time.Duration) error {
	if interval <= 0 {
		interval = DefaultPurgeInterval
	}

	_, err := m.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), purgeTimeout)
			defer cancel()
			m.runPurge(ctx, job)
		}),
		gocron.WithStartAt(gocron.WithStartImmediately()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithTags("maintenance", "purge"),
		gocron.WithName("expired-token-purge"),
	)
	if err != nil {
		return err
	}

	m.logger.Infow("purge job registered", "interval", interval)
	return nil
}

func (m *SchedulerManager) runPurge(ctx context.Context, job BatchJob) {
	count, err := job.Execute(ctx)
	if err != nil {
		m.logger.Errorw("failed to purge expired tokens", "error", err)
		return
	}
	if count > 0 {
		m.logger.Debugw("purge job finished", "removed", count)
	}
}

// Start begins running registered jobs. Calling it twice is a no-op.
func (m *SchedulerManager) Start() {
	m.startedMu.Lock()
	defer m.startedMu.Unlock()

	if m.started {
		return
	}

	m.scheduler.Start()
	m.started = true
	m.logger.Infow("scheduler manager started", "job_count", len(m.scheduler.Jobs()))
}

// Stop waits for running jobs to complete.
func (m *SchedulerManager) Stop() error {
	m.startedMu.Lock()
	defer m.startedMu.Unlock()

	if !m.started {
		return nil
	}

	m.logger.Infow("stopping scheduler manager")

	err := m.scheduler.Shutdown()
	m.started = false

	if err != nil {
		m.logger.Errorw("scheduler manager shutdown with error", "error", err)
		return err
	}

	m.logger.Infow("scheduler manager stopped")
	return nil
}

func (m *SchedulerManager) IsStarted() bool {
	m.startedMu.RLock()
	defer m.startedMu.RUnlock()
	return m.started
}

// Jobs returns all registered jobs for inspection.
func (m *SchedulerManager) Jobs() []gocron.Job {
	return m.scheduler.Jobs()
}
