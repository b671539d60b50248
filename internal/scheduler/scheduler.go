package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"minecraft-codegen/internal/logger"
)

// Job is a unit of scheduled work
type Job func(ctx context.Context) error

// Scheduler управляет запланированными задачами
type Scheduler struct {
	cron   *cron.Cron
	ctx    context.Context
	cancel context.CancelFunc
	jobs   map[string]Job
}

// New создает новый планировщик
func New() *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		cron:   cron.New(cron.WithLocation(time.UTC)),
		ctx:    ctx,
		cancel: cancel,
		jobs:   make(map[string]Job),
	}
}

// Add registers job under name with a standard five-field cron spec.
func (s *Scheduler) Add(name, spec string, job Job) error {
	if job == nil {
		return fmt.Errorf("job %q: nil function", name)
	}
	if _, exists := s.jobs[name]; exists {
		return fmt.Errorf("job %q already registered", name)
	}
	log := logger.WithComponent("scheduler").WithField("job", name)
	_, err := s.cron.AddFunc(spec, func() {
		log.Info("🕘 Triggered scheduled job")
		if err := job(s.ctx); err != nil {
			log.WithError(err).Error("❌ Scheduled job failed")
		}
	})
	if err != nil {
		return fmt.Errorf("job %q: invalid schedule %q: %w", name, spec, err)
	}
	s.jobs[name] = job
	log.WithField("schedule", spec).Debug("job registered")
	return nil
}

// RunNow executes a registered job synchronously, outside its schedule.
func (s *Scheduler) RunNow(name string) error {
	job, ok := s.jobs[name]
	if !ok {
		return fmt.Errorf("job %q not registered", name)
	}
	return job(s.ctx)
}

// Start запускает планировщик
func (s *Scheduler) Start() {
	if len(s.jobs) == 0 {
		logger.WithComponent("scheduler").Warn("⚠️ No jobs registered, scheduler will stay idle")
		return
	}
	s.cron.Start()
	logger.WithComponent("scheduler").WithField("jobs", len(s.jobs)).Info("📅 Scheduler started")
}

// Stop останавливает планировщик и ждёт завершения запущенных задач
func (s *Scheduler) Stop() {
	if s.cron != nil {
		ctx := s.cron.Stop()
		<-ctx.Done()
	}
	if s.cancel != nil {
		s.cancel()
	}
	logger.WithComponent("scheduler").Info("📅 Scheduler stopped")
}

// IsRunning проверяет, есть ли запланированные задачи
func (s *Scheduler) IsRunning() bool {
	return s.cron != nil && len(s.cron.Entries()) > 0
}
