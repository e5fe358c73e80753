package upstream

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"officedesk/internal/models"
	"officedesk/internal/session"
)

// AuditQuery filters the audit log listing.
type AuditQuery struct {
	Page     int
	PageSize int
	UserID   string
	Action   string
	From     time.Time
	To       time.Time
}

func (q AuditQuery) values() url.Values {
	v := url.Values{}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.PageSize > 0 {
		v.Set("page_size", strconv.Itoa(q.PageSize))
	}
	if q.UserID != "" {
		v.Set("user_id", q.UserID)
	}
	if q.Action != "" {
		v.Set("action", q.Action)
	}
	if !q.From.IsZero() {
		v.Set("from", q.From.UTC().Format(time.RFC3339))
	}
	if !q.To.IsZero() {
		v.Set("to", q.To.UTC().Format(time.RFC3339))
	}
	return v
}

// AuditPage is one page of audit entries.
type AuditPage struct {
	Items    []models.AuditEntry `json:"items"`
	Total    int64               `json:"total"`
	Page     int                 `json:"page"`
	PageSize int                 `json:"page_size"`
}

// ListAuditLogs returns audit entries matching q.
func (c *Client) ListAuditLogs(ctx context.Context, sess session.Session, q AuditQuery) (AuditPage, error) {
	var page AuditPage
	if err := c.do(ctx, sess, http.MethodGet, "audit-logs", q.values(), nil, &page); err != nil {
		return AuditPage{}, err
	}
	return page, nil
}

// DeleteAuditLogsBefore removes audit entries older than before and returns
// how many were deleted.
func (c *Client) DeleteAuditLogsBefore(ctx context.Context, sess session.Session, before time.Time) (int64, error) {
	var result struct {
		Deleted int64 `json:"deleted"`
	}
	query := url.Values{"before": []string{before.UTC().Format(time.RFC3339)}}
	if err := c.do(ctx, sess, http.MethodDelete, "audit-logs", query, nil, &result); err != nil {
		return 0, err
	}
	return result.Deleted, nil
}
