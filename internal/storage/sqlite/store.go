package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"officedesk/internal/models"
)

var (
	// ErrTaskNotFound is returned when a task is absent from the snapshot.
	ErrTaskNotFound = errors.New("task not found")
	// ErrNoSync is returned by LastSync before the first recorded run.
	ErrNoSync = errors.New("no sync recorded")
)

// Store keeps a local snapshot of the task records served by the office backend.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open initializes a new SQLite store and runs the required migrations.
func Open(dbPath string, logger *slog.Logger) (*Store, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("empty database path")
	}

	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	if err := ensureDir(dbPath); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?_busy_timeout=5000&_foreign_keys=ON", dbPath))
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	conn.SetMaxOpenConns(1)
	conn.SetConnMaxLifetime(0)

	s := &Store{db: conn, logger: logger}
	if err := s.migrate(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return s, nil
}

// Close releases the database resources.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func ensureDir(dbPath string) error {
	dir := filepath.Dir(dbPath)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS tasks (
            id TEXT PRIMARY KEY,
            title TEXT NOT NULL,
            document_number TEXT NOT NULL DEFAULT '',
            description TEXT NOT NULL DEFAULT '',
            status TEXT NOT NULL DEFAULT 'received',
            deadline TEXT NOT NULL DEFAULT '',
            assignee_id TEXT NOT NULL DEFAULT '',
            creator_id TEXT NOT NULL DEFAULT '',
            created_at DATETIME NOT NULL,
            updated_at DATETIME NOT NULL,
            assigned_at DATETIME,
            completed_at DATETIME,
            synced_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
        );`,
		`CREATE TABLE IF NOT EXISTS sync_runs (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            started_at DATETIME NOT NULL,
            finished_at DATETIME NOT NULL,
            task_count INTEGER NOT NULL DEFAULT 0,
            error TEXT NOT NULL DEFAULT ''
        );`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_assignee ON tasks(assignee_id);`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_creator ON tasks(creator_id);`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_status ON tasks(status);`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

const taskColumns = `id, title, document_number, description, status, deadline, assignee_id, creator_id,
        created_at, updated_at, assigned_at, completed_at`

const upsertTask = `INSERT INTO tasks(` + taskColumns + `, synced_at)
        VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
        ON CONFLICT(id) DO UPDATE SET
            title = excluded.title,
            document_number = excluded.document_number,
            description = excluded.description,
            status = excluded.status,
            deadline = excluded.deadline,
            assignee_id = excluded.assignee_id,
            creator_id = excluded.creator_id,
            created_at = excluded.created_at,
            updated_at = excluded.updated_at,
            assigned_at = excluded.assigned_at,
            completed_at = excluded.completed_at,
            synced_at = CURRENT_TIMESTAMP`

// UpsertTasks inserts or refreshes the given tasks without touching others.
func (s *Store) UpsertTasks(ctx context.Context, tasks []models.Task) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		return upsertAll(ctx, tx, tasks)
	})
}

// ReplaceTasks makes the snapshot contain exactly the given tasks.
func (s *Store) ReplaceTasks(ctx context.Context, tasks []models.Task) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM tasks`); err != nil {
			return fmt.Errorf("clear tasks: %w", err)
		}
		return upsertAll(ctx, tx, tasks)
	})
}

func upsertAll(ctx context.Context, tx *sql.Tx, tasks []models.Task) error {
	stmt, err := tx.PrepareContext(ctx, upsertTask)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, t := range tasks {
		if strings.TrimSpace(t.ID) == "" {
			return fmt.Errorf("task id must not be empty")
		}
		_, err := stmt.ExecContext(ctx, t.ID, t.Title, t.DocumentNumber, t.Description, string(t.Status), t.Deadline,
			t.AssigneeID, t.CreatorID, t.CreatedAt.UTC(), t.UpdatedAt.UTC(), nullTime(t.AssignedAt), nullTime(t.CompletedAt))
		if err != nil {
			return fmt.Errorf("upsert task %s: %w", t.ID, err)
		}
	}
	return nil
}

func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// TaskFilter narrows ListTasks. Empty fields match everything; when both
// AssigneeID and CreatorID are set a task matching either is returned.
type TaskFilter struct {
	AssigneeID string
	CreatorID  string
	Status     models.Status
}

// ListTasks returns snapshot tasks ordered by deadline, then id.
func (s *Store) ListTasks(ctx context.Context, filter TaskFilter) ([]models.Task, error) {
	var (
		where []string
		args  []any
	)
	switch {
	case filter.AssigneeID != "" && filter.CreatorID != "":
		where = append(where, `(assignee_id = ? OR creator_id = ?)`)
		args = append(args, filter.AssigneeID, filter.CreatorID)
	case filter.AssigneeID != "":
		where = append(where, `assignee_id = ?`)
		args = append(args, filter.AssigneeID)
	case filter.CreatorID != "":
		where = append(where, `creator_id = ?`)
		args = append(args, filter.CreatorID)
	}
	if filter.Status != "" {
		where = append(where, `status = ?`)
		args = append(args, string(filter.Status))
	}

	query := `SELECT ` + taskColumns + ` FROM tasks`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, ` AND `)
	}
	query += ` ORDER BY deadline = '', deadline, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []models.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// GetTask retrieves a snapshot task by id.
func (s *Store) GetTask(ctx context.Context, id string) (models.Task, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Task{}, ErrTaskNotFound
	}
	if err != nil {
		return models.Task{}, err
	}
	return t, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(row scanner) (models.Task, error) {
	var (
		t                     models.Task
		status                string
		assignedAt, completed sql.NullTime
	)
	err := row.Scan(&t.ID, &t.Title, &t.DocumentNumber, &t.Description, &status, &t.Deadline,
		&t.AssigneeID, &t.CreatorID, &t.CreatedAt, &t.UpdatedAt, &assignedAt, &completed)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Task{}, err
	}
	if err != nil {
		return models.Task{}, fmt.Errorf("scan task: %w", err)
	}
	t.Status = models.Status(status)
	t.AssignedAt = timePtr(assignedAt)
	t.CompletedAt = timePtr(completed)
	return t, nil
}

// SyncRun records one snapshot refresh.
type SyncRun struct {
	ID         int64     `json:"id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	TaskCount  int       `json:"task_count"`
	Error      string    `json:"error,omitempty"`
}

// RecordSync appends a sync run to the history.
func (s *Store) RecordSync(ctx context.Context, run SyncRun) (SyncRun, error) {
	res, err := s.db.ExecContext(ctx, `INSERT INTO sync_runs(started_at, finished_at, task_count, error) VALUES(?, ?, ?, ?)`,
		run.StartedAt.UTC(), run.FinishedAt.UTC(), run.TaskCount, run.Error)
	if err != nil {
		return SyncRun{}, fmt.Errorf("insert sync run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return SyncRun{}, fmt.Errorf("sync run id: %w", err)
	}
	run.ID = id
	return run, nil
}

// LastSync returns the most recent sync run.
func (s *Store) LastSync(ctx context.Context) (SyncRun, error) {
	var run SyncRun
	err := s.db.QueryRowContext(ctx, `SELECT id, started_at, finished_at, task_count, error FROM sync_runs ORDER BY id DESC LIMIT 1`).
		Scan(&run.ID, &run.StartedAt, &run.FinishedAt, &run.TaskCount, &run.Error)
	if errors.Is(err, sql.ErrNoRows) {
		return SyncRun{}, ErrNoSync
	}
	if err != nil {
		return SyncRun{}, fmt.Errorf("last sync: %w", err)
	}
	return run, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
