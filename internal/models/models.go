package models

import (
	"strings"
	"time"
)

// Status is the stable code of a task lifecycle state.
type Status string

const (
	StatusReceived    Status = "received"
	StatusInProgress  Status = "in_progress"
	StatusUnderReview Status = "under_review"
	StatusCompleted   Status = "completed"
)

// statusLabels holds the display labels shown by the office frontend.
var statusLabels = map[Status]string{
	StatusReceived:    "Đã tiếp nhận",
	StatusInProgress:  "Đang xử lý",
	StatusUnderReview: "Chờ duyệt",
	StatusCompleted:   "Hoàn thành",
}

// Statuses lists the known statuses in lifecycle order.
var Statuses = []Status{StatusReceived, StatusInProgress, StatusUnderReview, StatusCompleted}

// ParseStatus maps a status code or display label onto its stable code.
// Unknown values are returned trimmed but otherwise verbatim.
func ParseStatus(raw string) Status {
	value := strings.TrimSpace(raw)
	for code, label := range statusLabels {
		if strings.EqualFold(value, string(code)) || value == label {
			return code
		}
	}
	return Status(value)
}

// Known reports whether s is one of the closed set of statuses.
func (s Status) Known() bool {
	_, ok := statusLabels[s]
	return ok
}

// Terminal reports whether remaining-time semantics no longer apply.
func (s Status) Terminal() bool {
	return s == StatusCompleted
}

// Label returns the display label, or the raw value for unknown statuses.
func (s Status) Label() string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return string(s)
}

// Role controls which tasks and pages a user can see.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleLeader Role = "leader"
	RoleStaff  Role = "staff"
)

// ParseRole normalizes a role claim; unknown roles fall back to staff.
func ParseRole(raw string) Role {
	switch Role(strings.ToLower(strings.TrimSpace(raw))) {
	case RoleAdmin:
		return RoleAdmin
	case RoleLeader:
		return RoleLeader
	default:
		return RoleStaff
	}
}

// SeesOffice reports whether the role works with every task in the office.
func (r Role) SeesOffice() bool {
	return r == RoleAdmin || r == RoleLeader
}

// Task is a unit of document processing assigned to an officer.
type Task struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	DocumentNumber string     `json:"document_number,omitempty"`
	Description    string     `json:"description,omitempty"`
	Status         Status     `json:"status"`
	Deadline       string     `json:"deadline,omitempty"`
	AssigneeID     string     `json:"assignee_id,omitempty"`
	CreatorID      string     `json:"creator_id,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	AssignedAt     *time.Time `json:"assigned_at,omitempty"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
}

// HasDeadline reports whether the task carries a deadline value at all.
func (t Task) HasDeadline() bool {
	return strings.TrimSpace(t.Deadline) != ""
}

// VisibleTo reports whether a user with the given id and role may see the task.
func (t Task) VisibleTo(userID string, role Role) bool {
	if role.SeesOffice() {
		return true
	}
	return t.AssigneeID == userID || t.CreatorID == userID
}

// AuditEntry is one record of the office audit trail.
type AuditEntry struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	UserName   string    `json:"user_name,omitempty"`
	Action     string    `json:"action"`
	Resource   string    `json:"resource"`
	ResourceID string    `json:"resource_id,omitempty"`
	Detail     string    `json:"detail,omitempty"`
	IP         string    `json:"ip,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// NotificationKind names why a notification was raised.
type NotificationKind string

const (
	KindOverdue     NotificationKind = "overdue"
	KindApproaching NotificationKind = "deadline_approaching"
	KindAssignment  NotificationKind = "new_assignment"
	KindCompletion  NotificationKind = "completion"
)

// Notification is derived on read and never stored.
type Notification struct {
	ID       string           `json:"id"`
	Kind     NotificationKind `json:"kind"`
	Priority Priority         `json:"priority"`
	TaskID   string           `json:"task_id"`
	Title    string           `json:"title"`
	Message  string           `json:"message"`
	At       time.Time        `json:"at"`
}
