package notify_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"officedesk/internal/deadline"
	"officedesk/internal/models"
	"officedesk/internal/notify"
)

var now = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func ptr(t time.Time) *time.Time { return &t }

func task(id, assignee string, status models.Status, due time.Duration) models.Task {
	return models.Task{
		ID:         id,
		Title:      "Task " + id,
		Status:     status,
		Deadline:   now.Add(due).Format(time.RFC3339),
		AssigneeID: assignee,
		CreatorID:  "leader-1",
		CreatedAt:  now.Add(-72 * time.Hour),
		UpdatedAt:  now.Add(-time.Hour),
	}
}

func kinds(list []models.Notification) []string {
	out := make([]string, 0, len(list))
	for _, n := range list {
		out = append(out, n.ID)
	}
	return out
}

func TestPriorityFor(t *testing.T) {
	assert.Equal(t, models.PriorityCritical, notify.PriorityFor(deadline.UrgencyCritical))
	assert.Equal(t, models.PriorityHigh, notify.PriorityFor(deadline.UrgencyUrgent))
	assert.Equal(t, models.PriorityMedium, notify.PriorityFor(deadline.UrgencyHigh))
	assert.Equal(t, models.PriorityLow, notify.PriorityFor(deadline.UrgencyMedium))
	assert.Equal(t, models.PriorityLow, notify.PriorityFor(deadline.UrgencyNormal))
}

func TestDerive_StaffDeadlineKinds(t *testing.T) {
	tasks := []models.Task{
		task("far", "u1", models.StatusInProgress, 10*24*time.Hour),
		task("medium", "u1", models.StatusInProgress, 5*24*time.Hour),
		task("high", "u1", models.StatusInProgress, 50*time.Hour),
		task("urgent", "u1", models.StatusReceived, 5*time.Hour),
		task("minutes", "u1", models.StatusUnderReview, 20*time.Minute),
		task("late", "u1", models.StatusInProgress, -3*time.Hour),
		task("done", "u1", models.StatusCompleted, -48*time.Hour),
		task("other", "u2", models.StatusInProgress, -3*time.Hour),
	}

	got, err := notify.Derive(tasks, notify.User{ID: "u1", Role: models.RoleStaff}, now, notify.DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, []string{
		"deadline_approaching:minutes",
		"overdue:late",
		"deadline_approaching:urgent",
		"deadline_approaching:high",
	}, kinds(got))
	assert.Equal(t, models.PriorityCritical, got[0].Priority)
	assert.Equal(t, models.PriorityCritical, got[1].Priority)
	assert.Equal(t, models.PriorityHigh, got[2].Priority)
	assert.Equal(t, models.PriorityMedium, got[3].Priority)
	assert.Equal(t, "Task late: Overdue by 3 hours", got[1].Message)
}

func TestDerive_LeaderSeesOfficeOverdueOnly(t *testing.T) {
	tasks := []models.Task{
		task("late-a", "u1", models.StatusInProgress, -30*time.Hour),
		task("late-b", "u2", models.StatusReceived, -2*time.Hour),
		task("soon", "u2", models.StatusReceived, 2*time.Hour),
		task("done", "u2", models.StatusCompleted, -2*time.Hour),
	}

	got, err := notify.Derive(tasks, notify.User{ID: "leader-1", Role: models.RoleLeader}, now, notify.DefaultOptions())
	require.NoError(t, err)

	// Overdue entries are ordered by recency: late-b's deadline is the most recent.
	assert.Equal(t, []string{"overdue:late-b", "overdue:late-a"}, kinds(got))
}

func TestDerive_AssignmentAndCompletion(t *testing.T) {
	fresh := task("fresh", "u1", models.StatusReceived, 20*24*time.Hour)
	fresh.AssignedAt = ptr(now.Add(-2 * time.Hour))

	stale := task("stale", "u1", models.StatusReceived, 20*24*time.Hour)
	stale.AssignedAt = ptr(now.Add(-48 * time.Hour))

	finished := task("finished", "u2", models.StatusCompleted, -time.Hour)
	finished.CreatorID = "u1"
	finished.CompletedAt = ptr(now.Add(-30 * time.Minute))

	oldFinished := task("old", "u2", models.StatusCompleted, -time.Hour)
	oldFinished.CreatorID = "u1"
	oldFinished.CompletedAt = ptr(now.Add(-72 * time.Hour))

	got, err := notify.Derive([]models.Task{fresh, stale, finished, oldFinished}, notify.User{ID: "u1", Role: models.RoleStaff}, now, notify.DefaultOptions())
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, models.KindAssignment, got[0].Kind)
	assert.Equal(t, models.PriorityMedium, got[0].Priority)
	assert.Equal(t, "fresh", got[0].TaskID)
	assert.Equal(t, models.KindCompletion, got[1].Kind)
	assert.Equal(t, models.PriorityLow, got[1].Priority)
	assert.Equal(t, "finished", got[1].TaskID)
}

func TestDerive_AssignmentFallsBackToCreatedAt(t *testing.T) {
	tsk := task("new", "u1", models.StatusReceived, 30*24*time.Hour)
	tsk.CreatedAt = now.Add(-time.Hour)

	got, err := notify.Derive([]models.Task{tsk}, notify.User{ID: "u1", Role: models.RoleStaff}, now, notify.DefaultOptions())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, tsk.CreatedAt, got[0].At)
}

func TestDerive_InvalidDeadlineIsReported(t *testing.T) {
	broken := task("broken", "u1", models.StatusInProgress, 0)
	broken.Deadline = "tomorrow-ish"
	late := task("late", "u1", models.StatusInProgress, -5*time.Hour)
	none := task("none", "u1", models.StatusInProgress, 0)
	none.Deadline = ""

	got, err := notify.Derive([]models.Task{broken, late, none}, notify.User{ID: "u1", Role: models.RoleStaff}, now, notify.DefaultOptions())

	require.Error(t, err)
	assert.ErrorIs(t, err, deadline.ErrInvalidDeadline)
	assert.Contains(t, err.Error(), "task broken")
	assert.Equal(t, []string{"overdue:late"}, kinds(got))
}

func TestSort_StableWithinBucket(t *testing.T) {
	at := now.Add(-time.Hour)
	list := []models.Notification{
		{ID: "a", Priority: models.PriorityLow, At: at},
		{ID: "b", Priority: models.PriorityHigh, At: at},
		{ID: "c", Priority: models.PriorityLow, At: at},
		{ID: "d", Priority: models.PriorityHigh, At: at.Add(time.Minute)},
		{ID: "e", Priority: models.PriorityHigh, At: at},
	}

	notify.Sort(list)

	assert.Equal(t, []string{"d", "b", "e", "a", "c"}, kinds(list))
}

func TestDerive_Deterministic(t *testing.T) {
	tasks := []models.Task{
		task("x", "u1", models.StatusInProgress, 3*time.Hour),
		task("y", "u1", models.StatusInProgress, -3*time.Hour),
	}
	user := notify.User{ID: "u1", Role: models.RoleStaff}

	first, err := notify.Derive(tasks, user, now, notify.DefaultOptions())
	require.NoError(t, err)
	second, err := notify.Derive(tasks, user, now, notify.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
