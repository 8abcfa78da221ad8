package domain

import "time"

// ScheduledTask represents a recurring background task.
type ScheduledTask struct {
	// ID is the unique identifier for the task.
	ID string

	// Name is a human-readable name for the task.
	Name string

	// Interval defines how often the task should run.
	Interval time.Duration

	// LastRun is when the task last ran.
	LastRun time.Time

	// NextRun is when the task should run next.
	NextRun time.Time

	// LastError contains the last error message, if any.
	LastError string

	// LastSuccess is when the task last completed successfully.
	LastSuccess time.Time

	// Enabled indicates whether the task is active.
	Enabled bool
}

// IsDue returns true if the task is enabled and its next run is not in the future.
func (t *ScheduledTask) IsDue(now time.Time) bool {
	if !t.Enabled {
		return false
	}
	return t.NextRun.IsZero() || !t.NextRun.After(now)
}

// TaskResult represents the outcome of a task execution.
type TaskResult struct {
	// TaskID identifies which task was run.
	TaskID string

	// StartedAt is when the task started.
	StartedAt time.Time

	// EndedAt is when the task completed.
	EndedAt time.Time

	// Success indicates whether the task completed without error.
	Success bool

	// Error contains the error message if Success is false.
	Error string

	// ItemsProcessed is a count of items handled (words added or rows written).
	ItemsProcessed int
}

// SchedulerConfig holds scheduler configuration.
type SchedulerConfig struct {
	// Enabled is the master switch for the scheduler.
	Enabled bool

	// TaskConfigs holds per-task configuration.
	TaskConfigs map[string]TaskConfig
}

// TaskConfig holds configuration for a single task.
type TaskConfig struct {
	// Enabled indicates whether this task should run.
	Enabled bool

	// Interval defines how often the task should run.
	Interval time.Duration
}

// GetTaskConfig returns the configuration for a specific task.
// Returns a zero TaskConfig if the task is not configured.
func (c *SchedulerConfig) GetTaskConfig(taskID string) TaskConfig {
	if c.TaskConfigs == nil {
		return TaskConfig{}
	}
	return c.TaskConfigs[taskID]
}

// DefaultSchedulerConfig returns sensible defaults for the scheduler.
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		Enabled: true,
		TaskConfigs: map[string]TaskConfig{
			TaskIDWordExtract: {
				Enabled:  true,
				Interval: 30 * time.Minute,
			},
			TaskIDSheetSync: {
				Enabled:  false,
				Interval: 1 * time.Hour,
			},
			TaskIDOAuthRefresh: {
				Enabled:  true,
				Interval: 45 * time.Minute,
			},
		},
	}
}

// SchedulerConfigFromSettings derives the scheduler configuration from app settings.
// Sheet sync is only scheduled when auto-sync is on and a destination is set.
func SchedulerConfigFromSettings(s AppSettings) SchedulerConfig {
	cfg := DefaultSchedulerConfig()
	if s.Extraction.Interval > 0 {
		cfg.TaskConfigs[TaskIDWordExtract] = TaskConfig{Enabled: true, Interval: s.Extraction.Interval}
	}
	syncCfg := cfg.TaskConfigs[TaskIDSheetSync]
	syncCfg.Enabled = s.Sheets.AutoSync && s.Sheets.IsConfigured()
	if s.Extraction.Interval > 0 {
		syncCfg.Interval = s.Extraction.Interval
	}
	cfg.TaskConfigs[TaskIDSheetSync] = syncCfg
	return cfg
}

// Task IDs for built-in tasks.
const (
	TaskIDWordExtract  = "word-extract"
	TaskIDSheetSync    = "sheet-sync"
	TaskIDOAuthRefresh = "oauth-refresh"
)
