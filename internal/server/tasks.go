package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"officedesk/internal/deadline"
	"officedesk/internal/models"
	"officedesk/internal/session"
	"officedesk/internal/storage/sqlite"
	"officedesk/internal/upstream"
)

// taskView is a task with its remaining-time view at response time.
type taskView struct {
	models.Task
	StatusLabel   string         `json:"status_label"`
	Remaining     *deadline.Info `json:"remaining,omitempty"`
	DeadlineError string         `json:"deadline_error,omitempty"`
}

// annotate classifies a task. Completed tasks and tasks without a deadline
// carry no remaining-time view.
func (s *Server) annotate(t models.Task, now time.Time) taskView {
	view := taskView{Task: t, StatusLabel: t.Status.Label()}
	if !t.HasDeadline() {
		return view
	}
	info, err := s.classifier.ClassifyString(t.Deadline, t.Status, now)
	if err != nil {
		s.logger.Warn("task has invalid deadline", slog.String("task_id", t.ID), slog.String("error", err.Error()))
		view.DeadlineError = deadline.ErrInvalidDeadline.Error()
		return view
	}
	if info.Applicable {
		view.Remaining = &info
	}
	return view
}

// loadTasks fetches the caller's tasks from the backend and refreshes the
// snapshot. When the backend is unavailable the snapshot is served instead
// to verified sessions and stale is true.
func (s *Server) loadTasks(ctx context.Context, sess session.Session) (tasks []models.Task, stale bool, err error) {
	tasks, err = s.upstream.ListTasks(ctx, sess)
	if err == nil {
		if err := s.store.UpsertTasks(ctx, tasks); err != nil {
			s.logger.Warn("unable to refresh task snapshot", slog.String("error", err.Error()))
		}
		return visible(tasks, sess), false, nil
	}
	// The snapshot holds the whole office, so it is only served to callers
	// whose token signature was checked here.
	if !upstream.IsUnavailable(err) || !sess.Verified {
		return nil, false, err
	}

	s.logger.Warn("serving tasks from snapshot", slog.String("user_id", sess.UserID), slog.String("error", err.Error()))
	filter := sqlite.TaskFilter{}
	if !sess.Role.SeesOffice() {
		filter.AssigneeID = sess.UserID
		filter.CreatorID = sess.UserID
	}
	tasks, err = s.store.ListTasks(ctx, filter)
	if err != nil {
		return nil, true, fmt.Errorf("read snapshot: %w", err)
	}
	return tasks, true, nil
}

func visible(tasks []models.Task, sess session.Session) []models.Task {
	out := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.VisibleTo(sess.UserID, sess.Role) {
			out = append(out, t)
		}
	}
	return out
}

// handleListTasks returns the caller's tasks annotated with remaining time.
// Query filters: status, urgency and scope=mine.
func (s *Server) handleListTasks(c *gin.Context) {
	sess := currentSession(c)

	var (
		wantStatus  models.Status
		wantUrgency deadline.Urgency
	)
	if raw := c.Query("status"); raw != "" {
		wantStatus = models.ParseStatus(raw)
	}
	if raw := c.Query("urgency"); raw != "" {
		u, err := deadline.ParseUrgency(raw)
		if err != nil {
			s.respondError(c, http.StatusBadRequest, err)
			return
		}
		wantUrgency = u
	}
	onlyMine := strings.EqualFold(c.Query("scope"), "mine")

	tasks, stale, err := s.loadTasks(c.Request.Context(), sess)
	if err != nil {
		s.respondUpstreamError(c, err)
		return
	}

	now := s.now()
	views := make([]taskView, 0, len(tasks))
	for _, t := range tasks {
		if wantStatus != "" && t.Status != wantStatus {
			continue
		}
		if onlyMine && t.AssigneeID != sess.UserID {
			continue
		}
		view := s.annotate(t, now)
		if wantUrgency != deadline.UrgencyNone && (view.Remaining == nil || view.Remaining.Urgency != wantUrgency) {
			continue
		}
		views = append(views, view)
	}

	respondSuccess(c, http.StatusOK, gin.H{"tasks": views, "stale": stale, "generated_at": now})
}

// handleGetTask returns a single annotated task.
func (s *Server) handleGetTask(c *gin.Context) {
	sess := currentSession(c)
	id := c.Param("id")
	ctx := c.Request.Context()

	stale := false
	task, err := s.upstream.GetTask(ctx, sess, id)
	switch {
	case err == nil:
		if err := s.store.UpsertTasks(ctx, []models.Task{task}); err != nil {
			s.logger.Warn("unable to refresh task snapshot", slog.String("error", err.Error()))
		}
	case upstream.IsUnavailable(err) && sess.Verified:
		stale = true
		task, err = s.store.GetTask(ctx, id)
		if err != nil {
			s.respondUpstreamError(c, err)
			return
		}
	default:
		s.respondUpstreamError(c, err)
		return
	}

	if !task.VisibleTo(sess.UserID, sess.Role) {
		s.respondError(c, http.StatusNotFound, sqlite.ErrTaskNotFound)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"task": s.annotate(task, s.now()), "stale": stale})
}

type classifyRequest struct {
	Deadline string     `json:"deadline" binding:"required"`
	Status   string     `json:"status"`
	Now      *time.Time `json:"now"`
}

// handleClassify computes the remaining-time view for an arbitrary deadline.
// An explicit now in the request makes the answer reproducible.
func (s *Server) handleClassify(c *gin.Context) {
	var req classifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}

	now := s.now()
	if req.Now != nil {
		now = *req.Now
	}
	status := models.ParseStatus(req.Status)
	info, err := s.classifier.ClassifyString(req.Deadline, status, now)
	if err != nil {
		if errors.Is(err, deadline.ErrInvalidDeadline) {
			err = deadline.ErrInvalidDeadline
		}
		s.respondError(c, http.StatusBadRequest, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"remaining": info, "status": status, "now": now})
}
