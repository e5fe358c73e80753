package refresh

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"officedesk/internal/deadline"
	"officedesk/internal/models"
	"officedesk/internal/session"
	"officedesk/internal/storage/sqlite"
)

// TaskSource lists tasks for a session.
type TaskSource interface {
	ListTasks(ctx context.Context, sess session.Session) ([]models.Task, error)
}

// Snapshot stores synced tasks and sync history.
type Snapshot interface {
	ReplaceTasks(ctx context.Context, tasks []models.Task) error
	RecordSync(ctx context.Context, run sqlite.SyncRun) (sqlite.SyncRun, error)
}

// Syncer mirrors the office task list into the local snapshot using a
// service session.
type Syncer struct {
	source     TaskSource
	snapshot   Snapshot
	session    session.Session
	classifier deadline.Classifier
	now        func() time.Time
	logger     *slog.Logger
}

// NewSyncer constructs a Syncer. A nil clock defaults to time.Now.
func NewSyncer(source TaskSource, snapshot Snapshot, sess session.Session, c deadline.Classifier, now func() time.Time, logger *slog.Logger) *Syncer {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Syncer{source: source, snapshot: snapshot, session: sess, classifier: c, now: now, logger: logger}
}

// Sync fetches every task, replaces the snapshot and records the run. Failed
// runs are recorded too, with the snapshot left untouched.
func (s *Syncer) Sync(ctx context.Context) error {
	run := sqlite.SyncRun{StartedAt: s.now()}

	tasks, err := s.source.ListTasks(ctx, s.session)
	if err == nil {
		err = s.snapshot.ReplaceTasks(ctx, tasks)
	}
	run.FinishedAt = s.now()
	if err != nil {
		run.Error = err.Error()
	} else {
		run.TaskCount = len(tasks)
	}

	if _, recErr := s.snapshot.RecordSync(ctx, run); recErr != nil {
		s.logger.Warn("unable to record sync run", "error", recErr)
	}
	if err != nil {
		return fmt.Errorf("sync tasks: %w", err)
	}

	overdue, critical := s.pressure(tasks, run.FinishedAt)
	s.logger.Info("task snapshot synced",
		slog.Int("tasks", len(tasks)),
		slog.Int("overdue", overdue),
		slog.Int("critical", critical),
		slog.Duration("took", run.FinishedAt.Sub(run.StartedAt)),
	)
	return nil
}

// pressure counts overdue tasks and tasks in the critical bucket that are not yet overdue.
func (s *Syncer) pressure(tasks []models.Task, now time.Time) (overdue, critical int) {
	for _, t := range tasks {
		if !t.HasDeadline() {
			continue
		}
		info, err := s.classifier.ClassifyString(t.Deadline, t.Status, now)
		if err != nil {
			s.logger.Warn("task has invalid deadline", "task_id", t.ID, "error", err)
			continue
		}
		switch {
		case info.IsOverdue:
			overdue++
		case info.Urgency == deadline.UrgencyCritical:
			critical++
		}
	}
	return overdue, critical
}
