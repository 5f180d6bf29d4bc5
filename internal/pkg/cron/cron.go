// Package cron runs fixed-interval maintenance jobs in the background.
package cron

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

// JobStatus represents the last known state of a job.
type JobStatus string

const (
	StatusIdle    JobStatus = "idle"
	StatusRunning JobStatus = "running"
	StatusFulfill JobStatus = "fulfill"
	StatusReject  JobStatus = "reject"
)

// Job defines a scheduled background task.
type Job struct {
	Name     string
	Interval time.Duration
	Fn       func(ctx context.Context) error
}

type jobState struct {
	Job
	mu        sync.Mutex
	status    JobStatus
	message   string
	lastRunAt *time.Time
}

// ListItem is the serializable state of a job, reported by the health endpoint.
type ListItem struct {
	Name      string     `json:"name"`
	Status    JobStatus  `json:"status"`
	Message   string     `json:"message,omitempty"`
	LastRunAt *time.Time `json:"lastRunAt,omitempty"`
}

// Scheduler manages a collection of named jobs.
type Scheduler struct {
	mu     sync.RWMutex
	jobs   map[string]*jobState
	logger *zap.Logger
	wg     sync.WaitGroup
}

func New(logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{jobs: make(map[string]*jobState), logger: logger.Named("cron")}
}

// Register adds a job. Must be called before Start.
func (s *Scheduler) Register(job Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.Name] = &jobState{Job: job, status: StatusIdle}
}

// Start launches every registered job. Loops stop when ctx is cancelled;
// Wait blocks until they have.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, js := range s.jobs {
		s.wg.Add(1)
		go s.runLoop(ctx, js)
	}
}

func (s *Scheduler) Wait() { s.wg.Wait() }

func (s *Scheduler) runLoop(ctx context.Context, js *jobState) {
	defer s.wg.Done()
	ticker := time.NewTicker(js.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.execute(ctx, js)
		}
	}
}

func (s *Scheduler) execute(ctx context.Context, js *jobState) {
	js.mu.Lock()
	if js.status == StatusRunning {
		js.mu.Unlock()
		return
	}
	js.status = StatusRunning
	js.mu.Unlock()

	now := time.Now()
	err := js.Fn(ctx)

	js.mu.Lock()
	defer js.mu.Unlock()
	js.lastRunAt = &now
	if err != nil {
		js.status = StatusReject
		js.message = err.Error()
		s.logger.Warn("job failed", zap.String("job", js.Name), zap.Error(err))
		return
	}
	js.status = StatusFulfill
	js.message = ""
}

// List returns the state of all registered jobs ordered by name.
func (s *Scheduler) List() []ListItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]ListItem, 0, len(s.jobs))
	for _, js := range s.jobs {
		js.mu.Lock()
		items = append(items, ListItem{
			Name:      js.Name,
			Status:    js.status,
			Message:   js.message,
			LastRunAt: js.lastRunAt,
		})
		js.mu.Unlock()
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	return items
}
