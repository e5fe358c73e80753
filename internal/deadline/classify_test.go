package deadline_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"officedesk/internal/deadline"
	"officedesk/internal/models"
)

var now = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func TestClassify_BucketBoundaries(t *testing.T) {
	tests := []struct {
		name     string
		deadline time.Time
		urgency  deadline.Urgency
		overdue  bool
		text     string
	}{
		{"more than a week", time.Date(2024, 1, 8, 0, 0, 1, 0, time.UTC), deadline.UrgencyNormal, false, "7 days remaining"},
		{"ten days", time.Date(2024, 1, 11, 5, 0, 0, 0, time.UTC), deadline.UrgencyNormal, false, "10 days remaining"},
		{"exactly seven days", time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC), deadline.UrgencyMedium, false, "7 days remaining"},
		{"four days", time.Date(2024, 1, 5, 12, 0, 0, 0, time.UTC), deadline.UrgencyMedium, false, "4 days remaining"},
		{"exactly three days", time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC), deadline.UrgencyHigh, false, "3 days 0 hours remaining"},
		{"two days three hours", time.Date(2024, 1, 3, 3, 0, 0, 0, time.UTC), deadline.UrgencyHigh, false, "2 days 3 hours remaining"},
		{"exactly one day", time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), deadline.UrgencyUrgent, false, "1 day 0 hours remaining"},
		{"one day five hours", time.Date(2024, 1, 2, 5, 0, 0, 0, time.UTC), deadline.UrgencyUrgent, false, "1 day 5 hours remaining"},
		{"exactly one hour", time.Date(2024, 1, 1, 1, 0, 0, 0, time.UTC), deadline.UrgencyUrgent, false, "1 hour 0 minutes remaining"},
		{"hours and minutes", time.Date(2024, 1, 1, 5, 45, 0, 0, time.UTC), deadline.UrgencyUrgent, false, "5 hours 45 minutes remaining"},
		{"thirty minutes", time.Date(2024, 1, 1, 0, 30, 0, 0, time.UTC), deadline.UrgencyCritical, false, "30 minutes remaining"},
		{"deadline is now", now, deadline.UrgencyCritical, false, "0 minutes remaining"},
		{"one second overdue", now.Add(-time.Second), deadline.UrgencyCritical, true, "Overdue"},
		{"one hour overdue", time.Date(2023, 12, 31, 23, 0, 0, 0, time.UTC), deadline.UrgencyCritical, true, "Overdue by 1 hour"},
		{"one day overdue", time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC), deadline.UrgencyCritical, true, "Overdue by 1 day"},
		{"days overdue", time.Date(2023, 12, 28, 20, 0, 0, 0, time.UTC), deadline.UrgencyCritical, true, "Overdue by 3 days"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := deadline.Classify(tt.deadline, models.StatusInProgress, now)

			assert.True(t, info.Applicable)
			assert.Equal(t, tt.urgency, info.Urgency)
			assert.Equal(t, tt.overdue, info.IsOverdue)
			assert.Equal(t, tt.text, info.Text)
		})
	}
}

func TestClassify_Decomposition(t *testing.T) {
	info := deadline.Classify(now.Add(2*24*time.Hour+3*time.Hour+17*time.Minute+40*time.Second), models.StatusReceived, now)

	assert.Equal(t, 2, info.Days)
	assert.Equal(t, 3, info.Hours)
	assert.Equal(t, 17, info.Minutes)

	overdue := deadline.Classify(now.Add(-(26*time.Hour + 5*time.Minute)), models.StatusReceived, now)
	assert.Equal(t, 1, overdue.Days)
	assert.Equal(t, 2, overdue.Hours)
	assert.Equal(t, 5, overdue.Minutes)
}

func TestClassify_ExtremeDeadlines(t *testing.T) {
	for _, raw := range []string{"0001-01-01", "1700-01-01"} {
		info, err := deadline.ClassifyString(raw, models.StatusInProgress, now)
		require.NoError(t, err, raw)

		assert.True(t, info.IsOverdue, raw)
		assert.Equal(t, deadline.UrgencyCritical, info.Urgency, raw)
		assert.Positive(t, info.Days, raw)
		assert.GreaterOrEqual(t, info.Hours, 0, raw)
		assert.GreaterOrEqual(t, info.Minutes, 0, raw)
		assert.Regexp(t, `^Overdue by \d+ days$`, info.Text, raw)
	}

	info, err := deadline.ClassifyString("9999-12-31", models.StatusInProgress, now)
	require.NoError(t, err)
	assert.False(t, info.IsOverdue)
	assert.Equal(t, deadline.UrgencyNormal, info.Urgency)
	assert.Positive(t, info.Days)
	assert.GreaterOrEqual(t, info.Hours, 0)
	assert.GreaterOrEqual(t, info.Minutes, 0)
}

func TestClassify_CompletedIsNotApplicable(t *testing.T) {
	for _, offset := range []time.Duration{-365 * 24 * time.Hour, -time.Second, 0, time.Hour, 90 * 24 * time.Hour} {
		info := deadline.Classify(now.Add(offset), models.StatusCompleted, now)

		assert.False(t, info.Applicable)
		assert.False(t, info.IsOverdue)
		assert.Empty(t, info.Text)
		assert.Equal(t, deadline.UrgencyNone, info.Urgency)
	}
}

func TestClassify_UnknownStatusStillClassified(t *testing.T) {
	info := deadline.Classify(now.Add(-time.Hour), models.Status("archived"), now)

	assert.True(t, info.Applicable)
	assert.True(t, info.IsOverdue)
	assert.Equal(t, deadline.UrgencyCritical, info.Urgency)
}

func TestClassify_MonotonicAsDeadlineApproaches(t *testing.T) {
	prev := deadline.UrgencyNone
	for offset := 10 * 24 * time.Hour; offset >= -2*time.Hour; offset -= 7 * time.Minute {
		info := deadline.Classify(now.Add(offset), models.StatusUnderReview, now)
		require.GreaterOrEqual(t, info.Urgency, prev, "offset %s", offset)
		if offset < 0 {
			require.Equal(t, deadline.UrgencyCritical, info.Urgency)
			require.True(t, info.IsOverdue)
		}
		prev = info.Urgency
	}
}

func TestClassify_Deterministic(t *testing.T) {
	due := now.Add(50 * time.Hour)
	first := deadline.Classify(due, models.StatusInProgress, now)
	second := deadline.Classify(due, models.StatusInProgress, now)
	assert.Equal(t, first, second)
}

func TestClassifyString(t *testing.T) {
	info, err := deadline.ClassifyString("2024-01-02T00:00:00Z", models.StatusInProgress, now)
	require.NoError(t, err)
	assert.Equal(t, deadline.UrgencyUrgent, info.Urgency)
	assert.Contains(t, info.Text, "1 day")

	_, err = deadline.ClassifyString("next tuesday", models.StatusInProgress, now)
	require.Error(t, err)
	assert.ErrorIs(t, err, deadline.ErrInvalidDeadline)

	_, err = deadline.ClassifyString("", models.StatusInProgress, now)
	assert.ErrorIs(t, err, deadline.ErrMissingDeadline)

	info, err = deadline.ClassifyString("garbage", models.StatusCompleted, now)
	require.NoError(t, err)
	assert.False(t, info.Applicable)
}

func TestClassifier_Vietnamese(t *testing.T) {
	c := deadline.Classifier{Locale: deadline.LocaleVietnamese, Location: time.UTC}

	assert.Equal(t, "Còn 2 ngày 3 giờ", c.Classify(now.Add(51*time.Hour), models.StatusInProgress, now).Text)
	assert.Equal(t, "Còn 9 ngày", c.Classify(now.Add(9*24*time.Hour), models.StatusInProgress, now).Text)
	assert.Equal(t, "Còn 4 giờ 10 phút", c.Classify(now.Add(4*time.Hour+10*time.Minute), models.StatusInProgress, now).Text)
	assert.Equal(t, "Còn 12 phút", c.Classify(now.Add(12*time.Minute), models.StatusInProgress, now).Text)
	assert.Equal(t, "Quá hạn 1 ngày", c.Classify(now.Add(-25*time.Hour), models.StatusInProgress, now).Text)
	assert.Equal(t, "Quá hạn 3 giờ", c.Classify(now.Add(-3*time.Hour), models.StatusInProgress, now).Text)
	assert.Equal(t, "Quá hạn", c.Classify(now.Add(-time.Minute), models.StatusInProgress, now).Text)
}

func TestClassifier_LocationForZonelessDeadline(t *testing.T) {
	hcm := time.FixedZone("ICT", 7*60*60)
	c := deadline.Classifier{Location: hcm}

	// 2024-01-01 07:30 ICT is 00:30 UTC.
	info, err := c.ClassifyString("2024-01-01 07:30:00", models.StatusReceived, now)
	require.NoError(t, err)
	assert.Equal(t, "30 minutes remaining", info.Text)
	assert.Equal(t, deadline.UrgencyCritical, info.Urgency)
}
