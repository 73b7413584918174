// Package mcp exposes the application's operation families as MCP tools.
package mcp

import (
	"log/slog"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/oikio/oikio-mcp/internal/app"
	"github.com/oikio/oikio-mcp/internal/health"
	"github.com/oikio/oikio-mcp/internal/reminder"
	"github.com/oikio/oikio-mcp/internal/repo"
	"github.com/oikio/oikio-mcp/internal/store"
)

const serverInstructions = `Personal relationship-management tools: track people, 1:1
meetings, action items and note templates. People carry a meeting-cadence goal
(weekly, biweekly, monthly or quarterly); the server derives each person's last
meeting date and a 0-100 relationship-health score from their meeting history.
Deleting a person removes their meetings and those meetings' action items.`

// PersonService defines person operations needed by MCP.
type PersonService interface {
	Persons() []store.Person
	Person(id int) (store.Person, error)
	CreatePerson(req repo.CreatePersonRequest) (store.Person, error)
	UpdatePerson(id int, req repo.UpdatePersonRequest) (store.Person, error)
	DeletePerson(id int) error
	PersonsNeedingAttention() []app.AttentionPerson
	PersonHealth(id int) (health.Report, error)
}

// MeetingService defines meeting operations needed by MCP.
type MeetingService interface {
	Meetings() []store.Meeting
	MeetingsByPerson(personID int) []store.Meeting
	Meeting(id int) (store.Meeting, error)
	CreateMeeting(req repo.CreateMeetingRequest) (store.Meeting, error)
	UpdateMeeting(id int, req repo.UpdateMeetingRequest) (store.Meeting, error)
	DeleteMeeting(id int) error
	UpcomingMeetings(days int) []store.Meeting
	RecentMeetings(limit int) []store.Meeting
}

// ActionService defines action-item operations needed by MCP.
type ActionService interface {
	ActionItems() []store.ActionItem
	ActionItemsByMeeting(meetingID int) []store.ActionItem
	PendingActions() []store.ActionItem
	CreateAction(req repo.CreateActionRequest) (store.ActionItem, error)
	UpdateAction(id int, req repo.UpdateActionRequest) (store.ActionItem, error)
	DeleteAction(id int) error
	ToggleActionComplete(id int) (store.ActionItem, error)
	ActionTags() []string
}

// TemplateService defines template operations needed by MCP.
type TemplateService interface {
	Templates() []store.Template
	Template(id int) (store.Template, error)
	CreateTemplate(req repo.CreateTemplateRequest) (store.Template, error)
	UpdateTemplate(id int, req repo.UpdateTemplateRequest) (store.Template, error)
	DeleteTemplate(id int) error
}

// DataService defines data-management operations needed by MCP.
type DataService interface {
	Export() (string, error)
	Import(data string) error
	Reset() error
	Search(query string) app.SearchResults
	Stats() app.DashboardStats
}

// ReminderService defines notification operations needed by MCP.
type ReminderService interface {
	Settings() reminder.Settings
	UpdateSettings(p reminder.SettingsPatch) reminder.Settings
	SendTest()
}

// Services contains all services needed by MCP.
type Services struct {
	Persons   PersonService
	Meetings  MeetingService
	Actions   ActionService
	Templates TemplateService
	Data      DataService
	Reminders ReminderService
}

// Config contains server configuration.
type Config struct {
	Services Services
	Logger   *slog.Logger
}

// NewServer creates and configures an MCP server with all tools.
func NewServer(cfg Config) *sdkmcp.Server {
	server := sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    "oikio",
		Version: "0.1.0",
	}, &sdkmcp.ServerOptions{
		Instructions: serverInstructions,
		Logger:       cfg.Logger,
	})

	registerTools(server, cfg.Services)
	return server
}
