// Package stats summarizes task lists for the role dashboards.
package stats

import (
	"math"
	"time"

	"officedesk/internal/deadline"
	"officedesk/internal/models"
)

const week = 7 * 24 * time.Hour

// Trend compares tasks created in the last seven days with the seven days before.
type Trend struct {
	ThisWeek      int     `json:"this_week"`
	PreviousWeek  int     `json:"previous_week"`
	ChangePercent float64 `json:"change_percent"`
}

// Summary is the dashboard view of a task list.
type Summary struct {
	Total           int                      `json:"total"`
	ByStatus        map[models.Status]int    `json:"by_status"`
	ByUrgency       map[deadline.Urgency]int `json:"by_urgency"`
	Overdue         int                      `json:"overdue"`
	DueSoon         int                      `json:"due_soon"`
	NoDeadline      int                      `json:"no_deadline"`
	InvalidDeadline int                      `json:"invalid_deadline"`
	Completed       int                      `json:"completed"`
	CompletionRate  float64                  `json:"completion_rate"`
	Created         Trend                    `json:"created"`
}

// Summarize computes the dashboard summary of tasks at now.
func Summarize(tasks []models.Task, now time.Time, c deadline.Classifier) Summary {
	s := Summary{
		Total:     len(tasks),
		ByStatus:  map[models.Status]int{},
		ByUrgency: map[deadline.Urgency]int{},
	}

	for _, t := range tasks {
		s.ByStatus[t.Status]++

		switch age := now.Sub(t.CreatedAt); {
		case t.CreatedAt.IsZero() || age < 0:
		case age < week:
			s.Created.ThisWeek++
		case age < 2*week:
			s.Created.PreviousWeek++
		}

		if t.Status.Terminal() {
			s.Completed++
			continue
		}
		if !t.HasDeadline() {
			s.NoDeadline++
			continue
		}
		info, err := c.ClassifyString(t.Deadline, t.Status, now)
		if err != nil {
			s.InvalidDeadline++
			continue
		}
		s.ByUrgency[info.Urgency]++
		switch {
		case info.IsOverdue:
			s.Overdue++
		case info.Urgency >= deadline.UrgencyUrgent:
			s.DueSoon++
		}
	}

	if s.Total > 0 {
		s.CompletionRate = round(float64(s.Completed) / float64(s.Total) * 100)
	}
	s.Created.ChangePercent = change(s.Created.ThisWeek, s.Created.PreviousWeek)
	return s
}

func change(current, previous int) float64 {
	if previous == 0 {
		if current == 0 {
			return 0
		}
		return 100
	}
	return round(float64(current-previous) / float64(previous) * 100)
}

func round(v float64) float64 {
	return math.Round(v*10) / 10
}
