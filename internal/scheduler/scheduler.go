// Package scheduler runs tabcanvas background work on cron schedules:
// wallpaper rotation and remote image cache pruning.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// ErrUnknownJob is returned by RunNow for a name that was never added.
var ErrUnknownJob = errors.New("unknown job")

// JobFunc is the work a scheduled job performs.
type JobFunc func(ctx context.Context) error

// JobStatus describes a registered job and its last run.
type JobStatus struct {
	Name         string        `json:"name"`
	Schedule     string        `json:"schedule"`
	Next         time.Time     `json:"next"`
	LastRun      time.Time     `json:"last_run,omitzero"`
	LastDuration time.Duration `json:"last_duration,omitempty"`
	LastError    string        `json:"last_error,omitempty"`
	Runs         int           `json:"runs"`
}

type job struct {
	name     string
	schedule string
	fn       JobFunc
	entryID  cron.EntryID

	// guarded by Scheduler.mu
	lastRun      time.Time
	lastDuration time.Duration
	lastErr      error
	runs         int
}

// Scheduler runs named jobs on cron expressions. A job that is still running
// when its next tick fires is skipped, and a panicking job is recovered.
type Scheduler struct {
	mu sync.RWMutex

	cron   *cron.Cron
	parser cron.Parser
	jobs   []*job
	logger *slog.Logger

	// jobTimeout bounds a single run. Zero leaves runs unbounded.
	jobTimeout time.Duration

	// Running state
	ctx    context.Context
	cancel context.CancelFunc
}

// NewScheduler creates a scheduler for standard five-field cron expressions
// and the @every/@daily style descriptors.
func NewScheduler() *Scheduler {
	s := &Scheduler{
		parser: cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor),
		logger: slog.Default(),
	}
	s.cron = s.newCron()
	return s
}

// WithLogger sets a custom logger.
func (s *Scheduler) WithLogger(logger *slog.Logger) *Scheduler {
	s.logger = logger
	s.cron = s.newCron()
	return s
}

// WithJobTimeout bounds how long a single run may take.
func (s *Scheduler) WithJobTimeout(d time.Duration) *Scheduler {
	s.jobTimeout = d
	return s
}

func (s *Scheduler) newCron() *cron.Cron {
	log := cronLogger{logger: s.logger}
	return cron.New(
		cron.WithParser(s.parser),
		cron.WithChain(cron.Recover(log), cron.SkipIfStillRunning(log)),
		cron.WithLogger(log),
	)
}

// Add registers a job. It must be called before Start.
func (s *Scheduler) Add(name, schedule string, fn JobFunc) error {
	if _, err := s.parser.Parse(schedule); err != nil {
		return fmt.Errorf("invalid cron expression for %s: %w", name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ctx != nil {
		return fmt.Errorf("scheduler already started")
	}
	if slices.ContainsFunc(s.jobs, func(j *job) bool { return j.name == name }) {
		return fmt.Errorf("job %s already registered", name)
	}

	j := &job{name: name, schedule: schedule, fn: fn}
	id, err := s.cron.AddFunc(schedule, func() { s.run(s.runContext(), j) })
	if err != nil {
		return fmt.Errorf("adding job %s: %w", name, err)
	}
	j.entryID = id
	s.jobs = append(s.jobs, j)
	return nil
}

// Start begins running jobs on their schedules.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ctx != nil {
		return fmt.Errorf("scheduler already started")
	}

	s.ctx, s.cancel = context.WithCancel(ctx)
	s.cron.Start()

	s.logger.Info("scheduler started", slog.Int("jobs", len(s.jobs)))
	return nil
}

// Stop cancels running jobs and waits for them to return.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.mu.Unlock()

	<-s.cron.Stop().Done()

	s.mu.Lock()
	s.ctx = nil
	s.cancel = nil
	s.mu.Unlock()

	s.logger.Info("scheduler stopped")
}

// RunNow runs a registered job synchronously, outside its schedule.
func (s *Scheduler) RunNow(ctx context.Context, name string) error {
	s.mu.RLock()
	idx := slices.IndexFunc(s.jobs, func(j *job) bool { return j.name == name })
	var j *job
	if idx >= 0 {
		j = s.jobs[idx]
	}
	s.mu.RUnlock()

	if j == nil {
		return fmt.Errorf("%w: %s", ErrUnknownJob, name)
	}
	return s.run(ctx, j)
}

// Jobs returns the status of every registered job in registration order.
func (s *Scheduler) Jobs() []JobStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]JobStatus, 0, len(s.jobs))
	for _, j := range s.jobs {
		st := JobStatus{
			Name:         j.name,
			Schedule:     j.schedule,
			Next:         s.cron.Entry(j.entryID).Next,
			LastRun:      j.lastRun,
			LastDuration: j.lastDuration,
			Runs:         j.runs,
		}
		if st.Next.IsZero() {
			st.Next, _ = s.nextRun(j.schedule)
		}
		if j.lastErr != nil {
			st.LastError = j.lastErr.Error()
		}
		out = append(out, st)
	}
	return out
}

// ParseCron validates a cron expression and returns the next run time.
func (s *Scheduler) ParseCron(expr string) (time.Time, error) {
	next, err := s.nextRun(expr)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid cron expression: %w", err)
	}
	return next, nil
}

// ValidateCron validates a cron expression.
func (s *Scheduler) ValidateCron(expr string) error {
	_, err := s.parser.Parse(expr)
	return err
}

func (s *Scheduler) nextRun(expr string) (time.Time, error) {
	schedule, err := s.parser.Parse(expr)
	if err != nil {
		return time.Time{}, err
	}
	return schedule.Next(time.Now()), nil
}

func (s *Scheduler) runContext() context.Context {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.ctx == nil {
		return context.Background()
	}
	return s.ctx
}

func (s *Scheduler) run(ctx context.Context, j *job) error {
	if s.jobTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.jobTimeout)
		defer cancel()
	}

	start := time.Now()
	err := j.fn(ctx)
	elapsed := time.Since(start)

	s.mu.Lock()
	j.lastRun = start
	j.lastDuration = elapsed
	j.lastErr = err
	j.runs++
	s.mu.Unlock()

	if err != nil {
		s.logger.ErrorContext(ctx, "scheduled job failed",
			slog.String("job", j.name),
			slog.Duration("duration", elapsed),
			slog.String("error", err.Error()),
		)
		return err
	}
	s.logger.InfoContext(ctx, "scheduled job completed",
		slog.String("job", j.name),
		slog.Duration("duration", elapsed),
	)
	return nil
}

// cronLogger adapts slog to the logger interface robfig/cron expects.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("cron: "+msg, append(keysAndValues, slog.String("error", err.Error()))...)
}
