package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/sirupsen/logrus"

	"github.com/i474232898/weather-favorites/internal/metrics"
)

// Maintainer is the store housekeeping hook the job runs.
type Maintainer interface {
	Maintain(ctx context.Context) error
}

// Scheduler periodically runs store maintenance.
type Scheduler struct {
	scheduler *gocron.Scheduler
	store     Maintainer
	interval  time.Duration
	timeout   time.Duration
	log       logrus.FieldLogger
}

// New creates a new Scheduler.
func New(store Maintainer, interval time.Duration, log logrus.FieldLogger) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		store:     store,
		interval:  interval,
		timeout:   time.Minute,
		log:       log.WithField("component", "scheduler"),
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
// A non-positive interval disables maintenance.
func (s *Scheduler) Start() error {
	minutes := int(s.interval.Minutes())
	if minutes <= 0 {
		s.log.Info("store maintenance disabled")
		return nil
	}

	_, err := s.scheduler.Every(minutes).Minutes().WaitForSchedule().Do(s.RunOnce)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	s.log.WithField("interval", s.interval.String()).Info("store maintenance scheduled")
	return nil
}

// RunOnce performs one maintenance pass. Failures are logged, never fatal.
func (s *Scheduler) RunOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	start := time.Now()
	if err := s.store.Maintain(ctx); err != nil {
		metrics.MaintenanceRunsTotal.WithLabelValues("error").Inc()
		s.log.WithError(err).Error("store maintenance failed")
		return
	}
	metrics.MaintenanceRunsTotal.WithLabelValues("ok").Inc()
	s.log.WithField("elapsed", time.Since(start).String()).Debug("store maintenance completed")
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
