package background

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"restopos/internal/caching"
	"restopos/internal/services"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"
)

const (
	JobDashboardRefresh = "dashboard-refresh"
	JobCacheHealth      = "cache-health"
)

// JobScheduler runs the periodic maintenance jobs
type JobScheduler struct {
	scheduler    gocron.Scheduler
	dashboardSvc services.DashboardService
	cacheSvc     caching.CacheService
	logger       *zap.Logger
	jobs         map[string]gocron.Job
	mu           sync.RWMutex
}

// NewJobScheduler registers the dashboard refresh job at refreshInterval.
// cacheSvc may be nil, in which case no cache health job is registered.
func NewJobScheduler(dashboardSvc services.DashboardService, cacheSvc caching.CacheService, refreshInterval time.Duration, logger *zap.Logger) (*JobScheduler, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	js := &JobScheduler{
		scheduler:    scheduler,
		dashboardSvc: dashboardSvc,
		cacheSvc:     cacheSvc,
		logger:       logger,
		jobs:         make(map[string]gocron.Job),
	}

	if err := js.registerJobs(refreshInterval); err != nil {
		_ = scheduler.Shutdown()
		return nil, err
	}
	return js, nil
}

func (js *JobScheduler) Start() {
	js.logger.Info("starting background job scheduler", zap.Int("jobs", len(js.jobs)))
	js.scheduler.Start()
}

func (js *JobScheduler) Stop() error {
	js.logger.Info("stopping background job scheduler")
	return js.scheduler.Shutdown()
}

func (js *JobScheduler) registerJobs(refreshInterval time.Duration) error {
	if err := js.AddJob(JobDashboardRefresh, refreshInterval, js.refreshDashboards); err != nil {
		return err
	}
	if js.cacheSvc != nil {
		if err := js.AddJob(JobCacheHealth, time.Minute, js.checkCache); err != nil {
			return err
		}
	}
	return nil
}

// refreshDashboards recomputes cached stats so the dashboard stays warm
func (js *JobScheduler) refreshDashboards() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	start := time.Now()
	refreshed := js.dashboardSvc.RefreshAll(ctx)
	js.logger.Info("dashboard refresh completed",
		zap.Int("tenants", refreshed),
		zap.Duration("took", time.Since(start)))
}

func (js *JobScheduler) checkCache() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := js.cacheSvc.Ping(ctx); err != nil {
		js.logger.Warn("cache unreachable, reads fall back to the database", zap.Error(err))
	}
}

// AddJob schedules fn every interval. Runs of the same job never overlap.
func (js *JobScheduler) AddJob(name string, interval time.Duration, fn func()) error {
	if interval <= 0 {
		return fmt.Errorf("job %s: interval must be positive, got %s", name, interval)
	}

	js.mu.Lock()
	defer js.mu.Unlock()

	if _, exists := js.jobs[name]; exists {
		return fmt.Errorf("job %s already registered", name)
	}

	job, err := js.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(fn),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("failed to create job %s: %w", name, err)
	}

	js.jobs[name] = job
	js.logger.Debug("registered job", zap.String("job", name), zap.Duration("interval", interval))
	return nil
}

// RemoveJob removes a job from the scheduler
func (js *JobScheduler) RemoveJob(name string) error {
	js.mu.Lock()
	defer js.mu.Unlock()

	if job, exists := js.jobs[name]; exists {
		err := js.scheduler.RemoveJob(job.ID())
		delete(js.jobs, name)
		return err
	}

	return nil
}

// RunNow triggers an immediate run of the named job
func (js *JobScheduler) RunNow(name string) error {
	js.mu.RLock()
	job, exists := js.jobs[name]
	js.mu.RUnlock()

	if !exists {
		return fmt.Errorf("job %s not found", name)
	}
	return job.RunNow()
}

// JobStatus describes one scheduled job
type JobStatus struct {
	Name    string     `json:"name"`
	LastRun *time.Time `json:"last_run,omitempty"`
	NextRun *time.Time `json:"next_run,omitempty"`
}

// GetJobStatus returns information about scheduled jobs, sorted by name
func (js *JobScheduler) GetJobStatus() []JobStatus {
	js.mu.RLock()
	defer js.mu.RUnlock()

	statuses := make([]JobStatus, 0, len(js.jobs))
	for name, job := range js.jobs {
		status := JobStatus{Name: name}
		if last, err := job.LastRun(); err == nil && !last.IsZero() {
			status.LastRun = &last
		}
		if next, err := job.NextRun(); err == nil && !next.IsZero() {
			status.NextRun = &next
		}
		statuses = append(statuses, status)
	}
	sort.Slice(statuses, func(i, j int) bool { return statuses[i].Name < statuses[j].Name })
	return statuses
}
