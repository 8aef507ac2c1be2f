package timeutil

import (
	"testing"
	"time"
)

var now = time.Date(2026, 5, 10, 15, 30, 0, 0, time.UTC)

func TestTimeAgo(t *testing.T) {
	tests := []struct {
		name string
		at   time.Time
		want string
	}{
		{"under two minutes", now.Add(-90 * time.Second), "just now"},
		{"minutes", now.Add(-5 * time.Minute), "5m"},
		{"hours", now.Add(-3 * time.Hour), "3h"},
		{"days", now.Add(-2 * 24 * time.Hour), "2d"},
		{"older than a week", now.Add(-10 * 24 * time.Hour), "04-30-2026"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := timeAgoAt(tc.at, now); got != tc.want {
				t.Errorf("timeAgoAt mismatch: got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestMessageTime(t *testing.T) {
	tests := []struct {
		name string
		at   time.Time
		want string
	}{
		{"just now", now.Add(-30 * time.Second), "Just now"},
		{"one minute", now.Add(-1 * time.Minute), "1 minute ago"},
		{"minutes", now.Add(-45 * time.Minute), "45 minutes ago"},
		{"same day", now.Add(-5 * time.Hour), "10:30 AM"},
		{"yesterday", now.Add(-30 * time.Hour), "Yesterday at 9:30 AM"},
		{"this week", now.Add(-4 * 24 * time.Hour), "Wed at 3:30 PM"},
		{"this year", now.Add(-60 * 24 * time.Hour), "Mar 11 at 3:30 PM"},
		{"previous year", time.Date(2024, 12, 25, 8, 0, 0, 0, time.UTC), "Dec 25, 2024 at 8:00 AM"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := messageTimeAt(tc.at, now); got != tc.want {
				t.Errorf("messageTimeAt mismatch: got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestISO(t *testing.T) {
	at := time.Date(2026, 5, 10, 15, 30, 45, 0, time.UTC)
	if got := ISO(at); got != "2026-05-10 15:30:45" {
		t.Errorf("ISO mismatch: got %q", got)
	}
}
