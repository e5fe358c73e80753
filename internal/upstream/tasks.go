package upstream

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"officedesk/internal/models"
	"officedesk/internal/session"
)

// taskDTO mirrors the backend's task payload. Status may arrive as a code or
// as a display label.
type taskDTO struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	DocumentNumber string     `json:"document_number"`
	Description    string     `json:"description"`
	Status         string     `json:"status"`
	Deadline       string     `json:"deadline"`
	AssigneeID     string     `json:"assignee_id"`
	CreatorID      string     `json:"creator_id"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	AssignedAt     *time.Time `json:"assigned_at"`
	CompletedAt    *time.Time `json:"completed_at"`
}

func (d taskDTO) model() models.Task {
	return models.Task{
		ID:             d.ID,
		Title:          d.Title,
		DocumentNumber: d.DocumentNumber,
		Description:    d.Description,
		Status:         models.ParseStatus(d.Status),
		Deadline:       d.Deadline,
		AssigneeID:     d.AssigneeID,
		CreatorID:      d.CreatorID,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
		AssignedAt:     d.AssignedAt,
		CompletedAt:    d.CompletedAt,
	}
}

// ListTasks returns every task the session may see.
func (c *Client) ListTasks(ctx context.Context, sess session.Session) ([]models.Task, error) {
	var dtos []taskDTO
	if err := c.do(ctx, sess, http.MethodGet, "tasks", nil, nil, &dtos); err != nil {
		return nil, err
	}
	tasks := make([]models.Task, 0, len(dtos))
	for _, d := range dtos {
		tasks = append(tasks, d.model())
	}
	return tasks, nil
}

// GetTask fetches one task by id.
func (c *Client) GetTask(ctx context.Context, sess session.Session, id string) (models.Task, error) {
	var dto taskDTO
	if err := c.do(ctx, sess, http.MethodGet, "tasks/"+url.PathEscape(id), nil, nil, &dto); err != nil {
		return models.Task{}, err
	}
	if dto.ID == "" {
		return models.Task{}, ErrNotFound
	}
	return dto.model(), nil
}
