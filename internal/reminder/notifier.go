package reminder

import (
	"fmt"
	"log/slog"
	"strings"
)

// Notifier delivers reminders. Implementations must be cheap and
// non-blocking; the scheduler calls them from its tick.
type Notifier interface {
	// MeetingReminder announces one upcoming meeting.
	MeetingReminder(title, personName string, hoursUntil int)
	// ActionSummary announces pending action-item counts as a single
	// aggregated notification.
	ActionSummary(overdue, dueToday, dueTomorrow int)
	// Test sends a connectivity check.
	Test()
}

// LogNotifier writes notifications to the log. It is the delivery used
// when no platform notification channel is attached.
type LogNotifier struct {
	Logger *slog.Logger
}

func (n *LogNotifier) MeetingReminder(title, personName string, hoursUntil int) {
	timeText := fmt.Sprintf("%d hours", hoursUntil)
	if hoursUntil == 1 {
		timeText = "1 hour"
	}
	n.Logger.Info("meeting reminder",
		"body", fmt.Sprintf("Your meeting %q with %s starts in %s.", title, personName, timeText))
}

func (n *LogNotifier) ActionSummary(overdue, dueToday, dueTomorrow int) {
	var parts []string
	if overdue > 0 {
		parts = append(parts, fmt.Sprintf("%d overdue", overdue))
	}
	if dueToday > 0 {
		parts = append(parts, fmt.Sprintf("%d due today", dueToday))
	}
	if dueTomorrow > 0 {
		parts = append(parts, fmt.Sprintf("%d due tomorrow", dueTomorrow))
	}
	if len(parts) == 0 {
		return
	}
	n.Logger.Info("action reminder", "body", strings.Join(parts, ", ")+" action items")
}

func (n *LogNotifier) Test() {
	n.Logger.Info("test notification", "body", "Notifications are working.")
}
