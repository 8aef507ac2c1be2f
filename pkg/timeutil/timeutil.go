// Package timeutil formats timestamps the way the web client displays them:
// compact "time ago" strings for feed items and notifications, and a fuller
// conversational format for messages.
package timeutil

import (
	"fmt"
	"time"
)

// TimeAgo renders a compact relative timestamp: "just now", "5m", "3h",
// "2d", falling back to a date for anything older than a week.
func TimeAgo(t time.Time) string {
	return timeAgoAt(t, time.Now().UTC())
}

func timeAgoAt(t, now time.Time) string {
	diff := now.Sub(t.UTC())

	switch {
	case diff < time.Minute*2:
		return "just now"
	case diff < time.Hour:
		return fmt.Sprintf("%dm", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh", int(diff.Hours()))
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("%dd", int(diff.Hours()/24))
	default:
		return t.UTC().Format("01-02-2006")
	}
}

// MessageTime renders the timestamp shown next to a chat message: relative
// within the hour, clock time within the day, then weekday/date forms.
func MessageTime(t time.Time) string {
	return messageTimeAt(t, time.Now().UTC())
}

func messageTimeAt(t, now time.Time) string {
	t = t.UTC()
	diff := now.Sub(t)

	switch {
	case diff < time.Minute:
		return "Just now"
	case diff < time.Hour:
		minutes := int(diff.Minutes())
		if minutes == 1 {
			return "1 minute ago"
		}
		return fmt.Sprintf("%d minutes ago", minutes)
	case diff < 24*time.Hour:
		return t.Format("3:04 PM")
	case diff < 48*time.Hour:
		return "Yesterday at " + t.Format("3:04 PM")
	case diff < 7*24*time.Hour:
		return t.Format("Mon") + " at " + t.Format("3:04 PM")
	case t.Year() == now.Year():
		return t.Format("Jan 2") + " at " + t.Format("3:04 PM")
	default:
		return t.Format("Jan 2, 2006") + " at " + t.Format("3:04 PM")
	}
}

// ISO renders the wire timestamp used alongside the relative forms.
func ISO(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04:05")
}
