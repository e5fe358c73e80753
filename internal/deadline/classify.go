// Package deadline turns a task deadline into a remaining-time label and an
// ordered urgency level. Every function here is pure: the current time is
// always passed in by the caller.
package deadline

import (
	"time"

	"officedesk/internal/models"
)

const day = 24 * time.Hour

// Info is the remaining-time view of one task at one instant.
type Info struct {
	// Applicable is false for completed tasks; all other fields are then zero.
	Applicable bool    `json:"applicable"`
	Text       string  `json:"text,omitempty"`
	IsOverdue  bool    `json:"is_overdue"`
	Urgency    Urgency `json:"urgency"`
	Days       int     `json:"days"`
	Hours      int     `json:"hours"`
	Minutes    int     `json:"minutes"`
}

// Classifier renders Info in a given locale and reads zone-less deadlines in
// a given location. The zero value uses English and UTC.
type Classifier struct {
	Locale   Locale
	Location *time.Location
}

// Default is the English/UTC classifier used by the package-level helpers.
var Default = Classifier{Locale: LocaleEnglish, Location: time.UTC}

// Classify is Default.Classify.
func Classify(deadline time.Time, status models.Status, now time.Time) Info {
	return Default.Classify(deadline, status, now)
}

// ClassifyString is Default.ClassifyString.
func ClassifyString(raw string, status models.Status, now time.Time) (Info, error) {
	return Default.ClassifyString(raw, status, now)
}

// Classify computes the remaining-time Info of a deadline at now.
func (c Classifier) Classify(deadline time.Time, status models.Status, now time.Time) Info {
	if status.Terminal() {
		return Info{}
	}

	phrases := phrasesFor(c.Locale)
	delta := deadline.Sub(now)

	if delta < 0 {
		// now.Sub saturates at the maximum duration, where negating a
		// saturated delta would overflow.
		d, h, m := split(now.Sub(deadline))
		info := Info{Applicable: true, IsOverdue: true, Urgency: UrgencyCritical, Days: d, Hours: h, Minutes: m}
		switch {
		case d > 0:
			info.Text = phrases.overdueDays(d)
		case h > 0:
			info.Text = phrases.overdueHours(h)
		default:
			info.Text = phrases.overdue()
		}
		return info
	}

	d, h, m := split(delta)
	info := Info{Applicable: true, Days: d, Hours: h, Minutes: m}
	switch {
	case delta > 7*day:
		info.Urgency = UrgencyNormal
		info.Text = phrases.days(d)
	case d > 3:
		info.Urgency = UrgencyMedium
		info.Text = phrases.days(d)
	case d > 1:
		info.Urgency = UrgencyHigh
		info.Text = phrases.daysHours(d, h)
	case d == 1:
		info.Urgency = UrgencyUrgent
		info.Text = phrases.daysHours(d, h)
	case h > 0:
		info.Urgency = UrgencyUrgent
		info.Text = phrases.hoursMinutes(h, m)
	default:
		info.Urgency = UrgencyCritical
		info.Text = phrases.minutes(m)
	}
	return info
}

// ClassifyString parses raw and classifies it. Completed tasks short-circuit
// before parsing; any other status fails fast on an unparseable deadline.
func (c Classifier) ClassifyString(raw string, status models.Status, now time.Time) (Info, error) {
	if status.Terminal() {
		return Info{}, nil
	}
	deadline, err := Parse(raw, c.Location)
	if err != nil {
		return Info{}, err
	}
	return c.Classify(deadline, status, now), nil
}

// split decomposes a non-negative duration into whole days, hours and minutes.
func split(d time.Duration) (days, hours, minutes int) {
	days = int(d / day)
	d -= time.Duration(days) * day
	hours = int(d / time.Hour)
	d -= time.Duration(hours) * time.Hour
	minutes = int(d / time.Minute)
	return days, hours, minutes
}
