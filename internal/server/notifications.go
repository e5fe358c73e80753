package server

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"officedesk/internal/models"
	"officedesk/internal/notify"
	"officedesk/internal/stats"
)

// handleNotifications derives the caller's notifications from their tasks.
func (s *Server) handleNotifications(c *gin.Context) {
	sess := currentSession(c)

	tasks, stale, err := s.loadTasks(c.Request.Context(), sess)
	if err != nil {
		s.respondUpstreamError(c, err)
		return
	}

	opts := notify.DefaultOptions()
	opts.Classifier = s.classifier
	list, err := notify.Derive(tasks, notify.User{ID: sess.UserID, Role: sess.Role}, s.now(), opts)
	if err != nil {
		s.logger.Warn("notifications skipped tasks", slog.String("user_id", sess.UserID), slog.String("error", err.Error()))
	}
	if list == nil {
		list = []models.Notification{}
	}

	respondSuccess(c, http.StatusOK, gin.H{"notifications": list, "count": len(list), "stale": stale})
}

// handleDashboard summarizes the tasks visible to the caller's role.
func (s *Server) handleDashboard(c *gin.Context) {
	sess := currentSession(c)

	tasks, stale, err := s.loadTasks(c.Request.Context(), sess)
	if err != nil {
		s.respondUpstreamError(c, err)
		return
	}

	if !sess.Role.SeesOffice() {
		own := tasks[:0:0]
		for _, t := range tasks {
			if t.AssigneeID == sess.UserID {
				own = append(own, t)
			}
		}
		tasks = own
	}

	summary := stats.Summarize(tasks, s.now(), s.classifier)
	respondSuccess(c, http.StatusOK, gin.H{"role": sess.Role, "summary": summary, "stale": stale})
}
