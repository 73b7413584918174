package reminder

// Settings controls what the scheduler sends.
type Settings struct {
	Enabled             bool `json:"enabled"`
	MeetingReminders    bool `json:"meetingReminders"`
	ActionReminders     bool `json:"actionReminders"`
	ReminderHoursBefore int  `json:"reminderHoursBefore"`
}

// DefaultSettings returns the out-of-the-box settings: everything on,
// 24-hour meeting lead time.
func DefaultSettings() Settings {
	return Settings{
		Enabled:             true,
		MeetingReminders:    true,
		ActionReminders:     true,
		ReminderHoursBefore: 24,
	}
}

// SettingsPatch is a partial settings update; nil fields are left
// unchanged.
type SettingsPatch struct {
	Enabled             *bool `json:"enabled,omitempty"`
	MeetingReminders    *bool `json:"meetingReminders,omitempty"`
	ActionReminders     *bool `json:"actionReminders,omitempty"`
	ReminderHoursBefore *int  `json:"reminderHoursBefore,omitempty"`
}

func (s Settings) apply(p SettingsPatch) Settings {
	if p.Enabled != nil {
		s.Enabled = *p.Enabled
	}
	if p.MeetingReminders != nil {
		s.MeetingReminders = *p.MeetingReminders
	}
	if p.ActionReminders != nil {
		s.ActionReminders = *p.ActionReminders
	}
	if p.ReminderHoursBefore != nil {
		s.ReminderHoursBefore = *p.ReminderHoursBefore
	}
	return s
}
