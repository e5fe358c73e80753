// Package notify derives the notification center contents from task lists.
// Notifications are recomputed on every read and never stored.
package notify

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"time"

	"officedesk/internal/deadline"
	"officedesk/internal/models"
)

// User identifies who the notifications are derived for.
type User struct {
	ID   string
	Role models.Role
}

// Options tune the derivation windows and the text classifier.
type Options struct {
	AssignmentWindow time.Duration
	CompletionWindow time.Duration
	Classifier       deadline.Classifier
}

// DefaultOptions returns the windows used by the office frontend.
func DefaultOptions() Options {
	return Options{
		AssignmentWindow: 24 * time.Hour,
		CompletionWindow: 24 * time.Hour,
		Classifier:       deadline.Default,
	}
}

// PriorityFor maps an urgency onto a notification priority.
func PriorityFor(u deadline.Urgency) models.Priority {
	switch u {
	case deadline.UrgencyCritical:
		return models.PriorityCritical
	case deadline.UrgencyUrgent:
		return models.PriorityHigh
	case deadline.UrgencyHigh:
		return models.PriorityMedium
	default:
		return models.PriorityLow
	}
}

// Derive builds the notifications relevant to user at now, sorted by
// priority and then recency, both descending. Tasks whose deadline cannot be
// parsed produce no deadline notifications; their errors are joined into the
// returned error while the remaining notifications are still returned.
func Derive(tasks []models.Task, user User, now time.Time, opts Options) ([]models.Notification, error) {
	var (
		out  []models.Notification
		errs []error
	)

	for _, task := range tasks {
		assigned := task.AssigneeID != "" && task.AssigneeID == user.ID
		created := task.CreatorID != "" && task.CreatorID == user.ID

		if (assigned || user.Role.SeesOffice()) && task.HasDeadline() && !task.Status.Terminal() {
			n, ok, err := deadlineNotification(task, assigned, now, opts.Classifier)
			if err != nil {
				errs = append(errs, fmt.Errorf("task %s: %w", task.ID, err))
			} else if ok {
				out = append(out, n)
			}
		}

		if assigned {
			at := task.CreatedAt
			if task.AssignedAt != nil {
				at = *task.AssignedAt
			}
			if within(at, now, opts.AssignmentWindow) {
				out = append(out, models.Notification{
					ID:       id(models.KindAssignment, task),
					Kind:     models.KindAssignment,
					Priority: models.PriorityMedium,
					TaskID:   task.ID,
					Title:    task.Title,
					Message:  "New task assigned: " + task.Title,
					At:       at,
				})
			}
		}

		if created && !assigned && task.Status.Terminal() && task.CompletedAt != nil &&
			within(*task.CompletedAt, now, opts.CompletionWindow) {
			out = append(out, models.Notification{
				ID:       id(models.KindCompletion, task),
				Kind:     models.KindCompletion,
				Priority: models.PriorityLow,
				TaskID:   task.ID,
				Title:    task.Title,
				Message:  "Task completed: " + task.Title,
				At:       *task.CompletedAt,
			})
		}
	}

	Sort(out)
	return out, errors.Join(errs...)
}

// deadlineNotification returns an overdue or approaching notification.
// Office-wide viewers only receive the overdue kind for tasks not assigned to them.
func deadlineNotification(task models.Task, assigned bool, now time.Time, c deadline.Classifier) (models.Notification, bool, error) {
	due, err := deadline.Parse(task.Deadline, c.Location)
	if err != nil {
		return models.Notification{}, false, err
	}
	info := c.Classify(due, task.Status, now)

	switch {
	case info.IsOverdue:
		return models.Notification{
			ID:       id(models.KindOverdue, task),
			Kind:     models.KindOverdue,
			Priority: models.PriorityCritical,
			TaskID:   task.ID,
			Title:    task.Title,
			Message:  task.Title + ": " + info.Text,
			At:       due,
		}, true, nil
	case assigned && info.Urgency >= deadline.UrgencyHigh:
		return models.Notification{
			ID:       id(models.KindApproaching, task),
			Kind:     models.KindApproaching,
			Priority: PriorityFor(info.Urgency),
			TaskID:   task.ID,
			Title:    task.Title,
			Message:  task.Title + ": " + info.Text,
			At:       task.UpdatedAt,
		}, true, nil
	}
	return models.Notification{}, false, nil
}

// Sort orders notifications by priority, then recency, both descending.
// Ties keep their input order.
func Sort(list []models.Notification) {
	slices.SortStableFunc(list, func(a, b models.Notification) int {
		if c := cmp.Compare(b.Priority, a.Priority); c != 0 {
			return c
		}
		return b.At.Compare(a.At)
	})
}

func within(at, now time.Time, window time.Duration) bool {
	if window <= 0 || at.IsZero() {
		return false
	}
	return !at.After(now) && now.Sub(at) <= window
}

func id(kind models.NotificationKind, task models.Task) string {
	return string(kind) + ":" + task.ID
}
