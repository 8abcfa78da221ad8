package services

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/custodia-labs/starsync/internal/core/domain"
	"github.com/custodia-labs/starsync/internal/core/ports/driven"
	"github.com/custodia-labs/starsync/internal/core/ports/driving"
)

// Ensure Scheduler implements the interface.
var _ driving.Scheduler = (*Scheduler)(nil)

// historyRetention is how many results are kept per task.
const historyRetention = 100

// builtinTasks lists the tasks the scheduler knows how to run, in run order.
var builtinTasks = []struct {
	id, name string
}{
	{domain.TaskIDWordExtract, "Word Extraction"},
	{domain.TaskIDSheetSync, "Spreadsheet Sync"},
	{domain.TaskIDOAuthRefresh, "OAuth Token Refresh"},
}

// Scheduler manages background task execution.
// It is a pure core service with no external control API.
type Scheduler struct {
	config     domain.SchedulerConfig
	store      driven.SchedulerStore
	extraction driving.ExtractionService
	syncOrch   driving.SyncOrchestrator
	auth       driving.AuthService

	// tick is how often due tasks are checked.
	tick time.Duration

	mu       sync.Mutex
	running  bool
	inFlight map[string]bool
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

// NewScheduler creates a scheduler with configuration.
// Any service may be nil; its task then completes without doing anything.
func NewScheduler(
	config domain.SchedulerConfig,
	store driven.SchedulerStore,
	extraction driving.ExtractionService,
	syncOrch driving.SyncOrchestrator,
	auth driving.AuthService,
) *Scheduler {
	return &Scheduler{
		config:     config,
		store:      store,
		extraction: extraction,
		syncOrch:   syncOrch,
		auth:       auth,
		tick:       time.Minute,
		inFlight:   make(map[string]bool),
	}
}

// Start begins the scheduler loop. This method blocks until Stop is called.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil // Already running
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.mu.Unlock()

	if !s.config.Enabled {
		log.Printf("scheduler: disabled")
	}

	// Initialise tasks in store
	if err := s.initialiseTasks(ctx); err != nil {
		log.Printf("scheduler: failed to initialise tasks: %v", err)
	}

	// Run the main scheduler loop
	return s.run(ctx)
}

// Stop gracefully shuts down the scheduler.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	close(s.stopCh)
	s.mu.Unlock()

	// Wait for running tasks to complete
	s.wg.Wait()

	return nil
}

// initialiseTasks makes the stored tasks match the configuration.
// Tasks disabled in the configuration are stored disabled rather than left as they were.
func (s *Scheduler) initialiseTasks(ctx context.Context) error {
	var errs []error
	for _, t := range builtinTasks {
		cfg := s.config.GetTaskConfig(t.id)
		if !s.config.Enabled {
			cfg.Enabled = false
		}
		if err := s.ensureTask(ctx, t.id, t.name, cfg); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ensureTask creates or updates a task in the store.
func (s *Scheduler) ensureTask(ctx context.Context, id, name string, cfg domain.TaskConfig) error {
	task, err := s.store.GetTask(ctx, id)
	if err != nil {
		return err
	}

	if task == nil {
		// New tasks run straight away so the daemon has data after its first tick.
		task = &domain.ScheduledTask{
			ID:       id,
			Name:     name,
			Interval: cfg.Interval,
			Enabled:  cfg.Enabled,
			NextRun:  time.Now(),
		}
	} else {
		// Update interval if changed
		if task.Interval != cfg.Interval {
			task.Interval = cfg.Interval
			// Recalculate next run from now
			task.NextRun = time.Now().Add(cfg.Interval)
		}
		task.Enabled = cfg.Enabled
	}

	return s.store.SaveTask(ctx, task)
}

// run is the main scheduler loop.
func (s *Scheduler) run(ctx context.Context) error {
	// Check for due tasks immediately on startup
	s.checkAndRunDueTasks(ctx)

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.stopCh:
			return nil
		case <-ticker.C:
			s.checkAndRunDueTasks(ctx)
		}
	}
}

// checkAndRunDueTasks finds and executes tasks that are due.
func (s *Scheduler) checkAndRunDueTasks(ctx context.Context) {
	tasks, err := s.store.ListTasks(ctx)
	if err != nil {
		log.Printf("scheduler: failed to list tasks: %v", err)
		return
	}

	now := time.Now()
	for i := range tasks {
		task := &tasks[i]
		if task.IsDue(now) {
			s.runTask(ctx, task)
		}
	}
}

// runTask executes a single task in the background.
// A task that is still running from an earlier tick is skipped.
func (s *Scheduler) runTask(ctx context.Context, task *domain.ScheduledTask) {
	s.mu.Lock()
	if s.inFlight[task.ID] {
		s.mu.Unlock()
		return
	}
	s.inFlight[task.ID] = true
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			s.mu.Lock()
			delete(s.inFlight, task.ID)
			s.mu.Unlock()
		}()

		result := &domain.TaskResult{
			TaskID:    task.ID,
			StartedAt: time.Now(),
		}

		var err error
		switch task.ID {
		case domain.TaskIDWordExtract:
			result.ItemsProcessed, err = s.runWordExtract(ctx)
		case domain.TaskIDSheetSync:
			result.ItemsProcessed, err = s.runSheetSync(ctx)
		case domain.TaskIDOAuthRefresh:
			err = s.runOAuthRefresh(ctx)
		default:
			log.Printf("scheduler: unknown task ID: %s", task.ID)
			return
		}

		result.EndedAt = time.Now()
		if err != nil {
			log.Printf("scheduler: task %s failed: %v", task.ID, err)
			result.Success = false
			result.Error = err.Error()
			task.LastError = err.Error()
		} else {
			result.Success = true
			task.LastError = ""
			task.LastSuccess = result.EndedAt
		}

		// Update task state
		task.LastRun = result.StartedAt
		task.NextRun = result.EndedAt.Add(task.Interval)

		if saveErr := s.store.SaveTask(ctx, task); saveErr != nil {
			log.Printf("scheduler: failed to save task %s: %v", task.ID, saveErr)
		}

		// Record result for history
		if recordErr := s.store.RecordResult(ctx, result); recordErr != nil {
			log.Printf("scheduler: failed to record result for %s: %v", task.ID, recordErr)
		}

		if pruneErr := s.store.PruneHistory(ctx, historyRetention); pruneErr != nil {
			log.Printf("scheduler: failed to prune history: %v", pruneErr)
		}
	}()
}

// runWordExtract scrapes the page and reports how many new words were stored.
func (s *Scheduler) runWordExtract(ctx context.Context) (int, error) {
	if s.extraction == nil {
		return 0, nil
	}
	report, err := s.extraction.Run(ctx)
	if err != nil {
		return 0, err
	}
	return report.Added, nil
}

// runSheetSync exports unsynced words. Missing configuration or credentials
// are not failures for a background task.
func (s *Scheduler) runSheetSync(ctx context.Context) (int, error) {
	if s.syncOrch == nil {
		return 0, nil
	}
	report, err := s.syncOrch.Sync(ctx)
	switch {
	case errors.Is(err, domain.ErrSyncDisabled), errors.Is(err, domain.ErrAuthRequired), errors.Is(err, domain.ErrSyncInProgress):
		log.Printf("scheduler: skipping sheet sync: %v", err)
		return 0, nil
	case err != nil:
		return 0, err
	}
	return report.RowsWritten, nil
}

// runOAuthRefresh keeps the refresh token alive while the user is signed in.
func (s *Scheduler) runOAuthRefresh(ctx context.Context) error {
	if s.auth == nil {
		return nil
	}
	err := s.auth.Refresh(ctx)
	if errors.Is(err, domain.ErrAuthRequired) || errors.Is(err, domain.ErrOAuthNotConfigured) {
		return nil
	}
	return err
}
