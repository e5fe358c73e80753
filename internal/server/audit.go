package server

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"officedesk/internal/deadline"
	"officedesk/internal/models"
	"officedesk/internal/upstream"
)

const (
	exportPageSize = 200
	exportMaxPages = 50
)

// auditQuery reads the audit filters from the query string.
func (s *Server) auditQuery(c *gin.Context) (upstream.AuditQuery, error) {
	var (
		q   upstream.AuditQuery
		err error
	)
	if raw := c.Query("page"); raw != "" {
		if q.Page, err = strconv.Atoi(raw); err != nil || q.Page < 1 {
			return q, fmt.Errorf("invalid page %q", raw)
		}
	}
	if raw := c.Query("page_size"); raw != "" {
		if q.PageSize, err = strconv.Atoi(raw); err != nil || q.PageSize < 1 || q.PageSize > exportPageSize {
			return q, fmt.Errorf("invalid page_size %q", raw)
		}
	}
	q.UserID = c.Query("user_id")
	q.Action = c.Query("action")
	if q.From, err = s.queryTime(c, "from"); err != nil {
		return q, err
	}
	if q.To, err = s.queryTime(c, "to"); err != nil {
		return q, err
	}
	if !q.From.IsZero() && !q.To.IsZero() && q.To.Before(q.From) {
		return q, fmt.Errorf("to must not be before from")
	}
	return q, nil
}

func (s *Server) queryTime(c *gin.Context, name string) (time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := deadline.Parse(raw, s.classifier.Location)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s %q", name, raw)
	}
	return t, nil
}

// handleListAuditLogs returns one page of the audit trail.
func (s *Server) handleListAuditLogs(c *gin.Context) {
	q, err := s.auditQuery(c)
	if err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}

	page, err := s.upstream.ListAuditLogs(c.Request.Context(), currentSession(c), q)
	if err != nil {
		s.respondUpstreamError(c, err)
		return
	}
	if page.Items == nil {
		page.Items = []models.AuditEntry{}
	}
	respondSuccess(c, http.StatusOK, gin.H{"audit_logs": page})
}

// handleExportAuditLogs streams every matching audit entry as CSV.
func (s *Server) handleExportAuditLogs(c *gin.Context) {
	q, err := s.auditQuery(c)
	if err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}
	q.PageSize = exportPageSize

	sess := currentSession(c)
	ctx := c.Request.Context()

	var rows [][]string
	for q.Page = 1; q.Page <= exportMaxPages; q.Page++ {
		page, err := s.upstream.ListAuditLogs(ctx, sess, q)
		if err != nil {
			s.respondUpstreamError(c, err)
			return
		}
		for _, e := range page.Items {
			rows = append(rows, []string{
				e.ID,
				e.CreatedAt.In(s.location()).Format(time.RFC3339),
				e.UserID,
				e.UserName,
				e.Action,
				e.Resource,
				e.ResourceID,
				e.Detail,
				e.IP,
			})
		}
		if len(page.Items) < q.PageSize || (page.Total > 0 && int64(len(rows)) >= page.Total) {
			break
		}
	}

	filename := fmt.Sprintf("audit-logs-%s.csv", s.now().In(s.location()).Format("20060102-150405"))
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Status(http.StatusOK)

	// BOM so spreadsheet tools read Vietnamese text as UTF-8.
	_, _ = c.Writer.WriteString("\ufeff")
	w := csv.NewWriter(c.Writer)
	_ = w.Write([]string{"id", "created_at", "user_id", "user_name", "action", "resource", "resource_id", "detail", "ip"})
	_ = w.WriteAll(rows)
	if err := w.Error(); err != nil {
		s.logger.Error("audit export write failed", "error", err)
	}
}

// handleCleanupAuditLogs deletes audit entries older than the before parameter.
func (s *Server) handleCleanupAuditLogs(c *gin.Context) {
	before, err := s.queryTime(c, "before")
	if err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}
	if before.IsZero() {
		s.respondError(c, http.StatusBadRequest, fmt.Errorf("before is required"))
		return
	}
	if before.After(s.now()) {
		s.respondError(c, http.StatusBadRequest, fmt.Errorf("before must not be in the future"))
		return
	}

	deleted, err := s.upstream.DeleteAuditLogsBefore(c.Request.Context(), currentSession(c), before)
	if err != nil {
		s.respondUpstreamError(c, err)
		return
	}
	s.logger.Info("audit logs cleaned up", "before", before, "deleted", deleted, "user_id", currentSession(c).UserID)
	respondSuccess(c, http.StatusOK, gin.H{"deleted": deleted, "before": before})
}

func (s *Server) location() *time.Location {
	if s.classifier.Location == nil {
		return time.UTC
	}
	return s.classifier.Location
}
