package store

import "time"

// Role classifies a person relative to the user.
type Role string

const (
	RoleManager  Role = "manager"
	RoleTeammate Role = "teammate"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	return r == RoleManager || r == RoleTeammate
}

// Frequency is a meeting-cadence goal.
type Frequency string

const (
	FrequencyWeekly    Frequency = "weekly"
	FrequencyBiweekly  Frequency = "biweekly"
	FrequencyMonthly   Frequency = "monthly"
	FrequencyQuarterly Frequency = "quarterly"
)

// Valid reports whether the frequency is one of the known values.
func (f Frequency) Valid() bool {
	switch f {
	case FrequencyWeekly, FrequencyBiweekly, FrequencyMonthly, FrequencyQuarterly:
		return true
	}
	return false
}

// Days returns the expected interval in days for a cadence goal.
// Unknown or missing goals fall back to 30 days.
func (f Frequency) Days() int {
	switch f {
	case FrequencyWeekly:
		return 7
	case FrequencyBiweekly:
		return 14
	case FrequencyMonthly:
		return 30
	case FrequencyQuarterly:
		return 90
	default:
		return 30
	}
}

// Assignee marks who owns an action item.
type Assignee string

const (
	AssigneeMe    Assignee = "me"
	AssigneeOther Assignee = "other"
)

// Person is a tracked relationship. LastMeetingDate is derived from the
// person's meetings and is maintained by the meeting repository, never set
// directly by callers.
type Person struct {
	ID                   int        `json:"id"`
	Name                 string     `json:"name"`
	Role                 Role       `json:"role"`
	Email                string     `json:"email,omitempty"`
	Notes                string     `json:"notes,omitempty"`
	MeetingFrequencyGoal Frequency  `json:"meetingFrequencyGoal,omitempty"`
	LastMeetingDate      *time.Time `json:"lastMeetingDate,omitempty"`
	CreatedAt            time.Time  `json:"createdAt"`
}

// ActionStats summarizes action-item completion for a meeting.
type ActionStats struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
}

// Meeting is a 1:1 with a person. PersonName and Stats are filled at read
// time on returned copies; they are never persisted.
type Meeting struct {
	ID            int       `json:"id"`
	PersonID      int       `json:"personId"`
	TemplateID    *int      `json:"templateId,omitempty"`
	Date          time.Time `json:"date"`
	Title         string    `json:"title"`
	Notes         string    `json:"notes,omitempty"`
	TalkingPoints string    `json:"talkingPoints,omitempty"`
	NextTopics    string    `json:"nextTopics,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`

	PersonName string       `json:"personName,omitempty"`
	Stats      *ActionStats `json:"actionStats,omitempty"`
}

// ActionItem is a follow-up captured in a meeting. MeetingTitle and
// PersonName are read-time enrichment, never persisted.
type ActionItem struct {
	ID          int        `json:"id"`
	MeetingID   int        `json:"meetingId"`
	Description string     `json:"description"`
	Assignee    Assignee   `json:"assignee,omitempty"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	Tags        []string   `json:"tags,omitempty"`
	Completed   bool       `json:"completed"`
	CreatedAt   time.Time  `json:"createdAt"`

	MeetingTitle string `json:"meetingTitle,omitempty"`
	PersonName   string `json:"personName,omitempty"`
}

// Template is a reusable note scaffold. Default templates are seeded by the
// system and survive import/reset.
type Template struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Content     string `json:"content"`
	IsDefault   bool   `json:"isDefault"`
}

// EntityType names one of the four id sequences.
type EntityType string

const (
	EntityPersons     EntityType = "persons"
	EntityMeetings    EntityType = "meetings"
	EntityActionItems EntityType = "actionItems"
	EntityTemplates   EntityType = "templates"
)

// Counters holds the last allocated id per entity type.
type Counters struct {
	Persons     int `json:"persons"`
	Meetings    int `json:"meetings"`
	ActionItems int `json:"actionItems"`
	Templates   int `json:"templates"`
}

// Meta is the non-entity portion of the persisted document.
type Meta struct {
	LastID Counters `json:"lastId"`
}

// Document is the entire persisted state: four entity collections plus the
// id-sequence counters. Its JSON layout is the on-disk contract.
type Document struct {
	Persons     []Person     `json:"persons"`
	Meetings    []Meeting    `json:"meetings"`
	ActionItems []ActionItem `json:"actionItems"`
	Templates   []Template   `json:"templates"`
	Meta        Meta         `json:"meta"`
}

// NewDocument returns the empty default document: all collections empty,
// all counters zero.
func NewDocument() *Document {
	return &Document{
		Persons:     []Person{},
		Meetings:    []Meeting{},
		ActionItems: []ActionItem{},
		Templates:   []Template{},
	}
}
