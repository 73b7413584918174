package reminder

import (
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/oikio/oikio-mcp/internal/store"
)

// DefaultInterval is the tick spacing for reminder checks. The scheduler
// re-derives everything from the repositories each tick, so a restart
// loses nothing and state is at most one interval stale.
const DefaultInterval = 30 * time.Minute

// upcomingWindowDays bounds the meeting scan to the near future; the lead
// time is at most 24h plus clock skew, so two days is enough.
const upcomingWindowDays = 2

// Source is the repository view the scheduler reads through. Both calls
// must be safe to invoke concurrently with foreground mutations; the app
// layer serializes them on its mutex.
type Source interface {
	UpcomingMeetings(days int) []store.Meeting
	PendingActions() []store.ActionItem
}

// Scheduler polls the source on a fixed interval and emits notifications
// for upcoming meetings and due action items. It has two states, stopped
// and running; Start and Stop are idempotent.
type Scheduler struct {
	src      Source
	notifier Notifier
	logger   *slog.Logger
	interval time.Duration
	now      func() time.Time

	mu       sync.Mutex
	settings Settings
	stop     chan struct{}
	done     chan struct{}
}

// New creates a stopped scheduler with default settings. A zero interval
// falls back to DefaultInterval.
func New(src Source, notifier Notifier, logger *slog.Logger, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Scheduler{
		src:      src,
		notifier: notifier,
		logger:   logger,
		interval: interval,
		now:      time.Now,
		settings: DefaultSettings(),
	}
}

// Start begins the recurring tick and fires one immediate check. No-op if
// already running.
func (s *Scheduler) Start() {
	s.mu.Lock()
	if s.stop != nil {
		s.mu.Unlock()
		return
	}
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	stop, done := s.stop, s.done
	s.mu.Unlock()

	s.CheckNow()
	go s.run(stop, done)
}

func (s *Scheduler) run(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.CheckNow()
		}
	}
}

// Stop cancels the recurring tick and waits for any in-flight check to
// complete. Idempotent.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	stop, done := s.stop, s.done
	s.stop, s.done = nil, nil
	s.mu.Unlock()
	if stop == nil {
		return
	}
	close(stop)
	<-done
}

// Running reports the scheduler state.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stop != nil
}

// Settings returns the current notification settings.
func (s *Scheduler) Settings() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// UpdateSettings applies a partial update and returns the result.
func (s *Scheduler) UpdateSettings(p SettingsPatch) Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = s.settings.apply(p)
	return s.settings
}

// SendTest emits a test notification regardless of settings.
func (s *Scheduler) SendTest() {
	s.notifier.Test()
}

// CheckNow runs one reminder pass. Failures are logged and swallowed so
// the recurring timer keeps ticking; there is no interactive caller to
// report to.
func (s *Scheduler) CheckNow() {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("reminder check failed", "panic", r)
		}
	}()

	settings := s.Settings()
	if !settings.Enabled {
		return
	}
	now := s.now()
	if settings.MeetingReminders {
		s.checkMeetings(now, settings.ReminderHoursBefore)
	}
	if settings.ActionReminders {
		s.checkActions(now)
	}
}

// checkMeetings emits one reminder per meeting whose start is within the
// lead window and lands on a reminder tier: exactly the configured lead
// time out, or the one-hour final warning. The exact-hour match is also
// what keeps a meeting from being announced on every tick.
func (s *Scheduler) checkMeetings(now time.Time, leadHours int) {
	threshold := now.Add(time.Duration(leadHours) * time.Hour)
	for _, m := range s.src.UpcomingMeetings(upcomingWindowDays) {
		if !m.Date.After(now) || m.Date.After(threshold) {
			continue
		}
		hoursUntil := int(math.Round(m.Date.Sub(now).Hours()))
		if hoursUntil == leadHours || hoursUntil == 1 {
			s.notifier.MeetingReminder(m.Title, m.PersonName, hoursUntil)
		}
	}
}

// checkActions buckets pending items by due date and emits a single
// aggregated summary when anything is overdue or due today.
func (s *Scheduler) checkActions(now time.Time) {
	today := startOfDay(now)
	tomorrow := today.Add(24 * time.Hour)

	var overdue, dueToday, dueTomorrow int
	for _, a := range s.src.PendingActions() {
		if a.DueDate == nil {
			continue
		}
		due := startOfDay(*a.DueDate)
		switch {
		case due.Before(today):
			overdue++
		case due.Equal(today):
			dueToday++
		case due.Equal(tomorrow):
			dueTomorrow++
		}
	}
	if overdue > 0 || dueToday > 0 {
		s.notifier.ActionSummary(overdue, dueToday, dueTomorrow)
	}
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
