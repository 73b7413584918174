package mcp

import (
	"context"
	"fmt"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/oikio/oikio-mcp/internal/app"
	"github.com/oikio/oikio-mcp/internal/health"
	"github.com/oikio/oikio-mcp/internal/reminder"
	"github.com/oikio/oikio-mcp/internal/repo"
	"github.com/oikio/oikio-mcp/internal/store"
)

// Tool input/output payloads. Dates travel as strings (RFC 3339 or
// YYYY-MM-DD) so clients never need to produce Go time encodings.

type idParams struct {
	ID int `json:"id" jsonschema:"entity id"`
}

type okResult struct {
	OK bool `json:"ok"`
}

type createPersonParams struct {
	Name  string `json:"name" jsonschema:"person's display name"`
	Role  string `json:"role" jsonschema:"manager or teammate"`
	Email string `json:"email,omitempty" jsonschema:"contact email"`
	Notes string `json:"notes,omitempty" jsonschema:"free-form notes"`
	Goal  string `json:"meetingFrequencyGoal,omitempty" jsonschema:"cadence goal: weekly, biweekly, monthly or quarterly"`
}

type updatePersonParams struct {
	ID    int     `json:"id" jsonschema:"person id"`
	Name  *string `json:"name,omitempty"`
	Role  *string `json:"role,omitempty" jsonschema:"manager or teammate"`
	Email *string `json:"email,omitempty"`
	Notes *string `json:"notes,omitempty"`
	Goal  *string `json:"meetingFrequencyGoal,omitempty" jsonschema:"cadence goal; empty string clears it"`
}

type personList struct {
	Persons []store.Person `json:"persons"`
}

type attentionList struct {
	Persons []app.AttentionPerson `json:"persons"`
}

type createMeetingParams struct {
	PersonID      int    `json:"personId" jsonschema:"owning person id"`
	TemplateID    *int   `json:"templateId,omitempty" jsonschema:"note template id"`
	Date          string `json:"date" jsonschema:"meeting date, RFC 3339 or YYYY-MM-DD"`
	Title         string `json:"title,omitempty"`
	Notes         string `json:"notes,omitempty"`
	TalkingPoints string `json:"talkingPoints,omitempty"`
	NextTopics    string `json:"nextTopics,omitempty"`
}

type updateMeetingParams struct {
	ID            int     `json:"id" jsonschema:"meeting id"`
	TemplateID    *int    `json:"templateId,omitempty"`
	Date          *string `json:"date,omitempty" jsonschema:"meeting date, RFC 3339 or YYYY-MM-DD"`
	Title         *string `json:"title,omitempty"`
	Notes         *string `json:"notes,omitempty"`
	TalkingPoints *string `json:"talkingPoints,omitempty"`
	NextTopics    *string `json:"nextTopics,omitempty"`
}

type meetingList struct {
	Meetings []store.Meeting `json:"meetings"`
}

type byPersonParams struct {
	PersonID int `json:"personId" jsonschema:"person id"`
}

type upcomingParams struct {
	Days int `json:"days" jsonschema:"window size in days, today inclusive"`
}

type recentParams struct {
	Limit int `json:"limit" jsonschema:"maximum number of meetings"`
}

type createActionParams struct {
	MeetingID   int      `json:"meetingId" jsonschema:"owning meeting id"`
	Description string   `json:"description"`
	Assignee    string   `json:"assignee,omitempty" jsonschema:"me or other"`
	DueDate     *string  `json:"dueDate,omitempty" jsonschema:"due date, RFC 3339 or YYYY-MM-DD"`
	Tags        []string `json:"tags,omitempty"`
}

type updateActionParams struct {
	ID          int      `json:"id" jsonschema:"action item id"`
	Description *string  `json:"description,omitempty"`
	Assignee    *string  `json:"assignee,omitempty" jsonschema:"me or other"`
	DueDate     *string  `json:"dueDate,omitempty" jsonschema:"due date, RFC 3339 or YYYY-MM-DD"`
	Tags        []string `json:"tags,omitempty"`
	Completed   *bool    `json:"completed,omitempty"`
}

type actionList struct {
	Actions []store.ActionItem `json:"actions"`
}

type byMeetingParams struct {
	MeetingID int `json:"meetingId" jsonschema:"meeting id"`
}

type tagList struct {
	Tags []string `json:"tags"`
}

type createTemplateParams struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Content     string `json:"content" jsonschema:"template body"`
}

type updateTemplateParams struct {
	ID          int     `json:"id" jsonschema:"template id"`
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Content     *string `json:"content,omitempty"`
}

type templateList struct {
	Templates []store.Template `json:"templates"`
}

type exportResult struct {
	Data string `json:"data" jsonschema:"snapshot document as a JSON string"`
}

type importParams struct {
	Data string `json:"data" jsonschema:"snapshot document as produced by export_data"`
}

type searchParams struct {
	Query string `json:"query" jsonschema:"case-insensitive substring"`
}

type empty struct{}

func registerTools(server *sdkmcp.Server, svcs Services) {
	registerPersonTools(server, svcs.Persons)
	registerMeetingTools(server, svcs.Meetings)
	registerActionTools(server, svcs.Actions)
	registerTemplateTools(server, svcs.Templates)
	registerDataTools(server, svcs.Data)
	registerReminderTools(server, svcs.Reminders)
}

func registerPersonTools(server *sdkmcp.Server, svc PersonService) {
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "list_persons",
		Description: "List all tracked persons sorted by name",
	}, func(ctx context.Context, req *sdkmcp.CallToolRequest, in empty) (*sdkmcp.CallToolResult, personList, error) {
		return nil, personList{Persons: svc.Persons()}, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_person",
		Description: "Get one person by id",
	}, func(ctx context.Context, req *sdkmcp.CallToolRequest, in idParams) (*sdkmcp.CallToolResult, store.Person, error) {
		p, err := svc.Person(in.ID)
		return nil, p, mapError(err)
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "create_person",
		Description: "Create a person to track",
	}, func(ctx context.Context, req *sdkmcp.CallToolRequest, in createPersonParams) (*sdkmcp.CallToolResult, store.Person, error) {
		p, err := svc.CreatePerson(repo.CreatePersonRequest{
			Name:                 in.Name,
			Role:                 store.Role(in.Role),
			Email:                in.Email,
			Notes:                in.Notes,
			MeetingFrequencyGoal: store.Frequency(in.Goal),
		})
		return nil, p, mapError(err)
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "update_person",
		Description: "Update a person; omitted fields are unchanged",
	}, func(ctx context.Context, req *sdkmcp.CallToolRequest, in updatePersonParams) (*sdkmcp.CallToolResult, store.Person, error) {
		upd := repo.UpdatePersonRequest{
			Name:  in.Name,
			Email: in.Email,
			Notes: in.Notes,
		}
		if in.Role != nil {
			role := store.Role(*in.Role)
			upd.Role = &role
		}
		if in.Goal != nil {
			goal := store.Frequency(*in.Goal)
			upd.MeetingFrequencyGoal = &goal
		}
		p, err := svc.UpdatePerson(in.ID, upd)
		return nil, p, mapError(err)
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "delete_person",
		Description: "Delete a person, their meetings, and those meetings' action items",
	}, func(ctx context.Context, req *sdkmcp.CallToolRequest, in idParams) (*sdkmcp.CallToolResult, okResult, error) {
		if err := svc.DeletePerson(in.ID); err != nil {
			return nil, okResult{}, mapError(err)
		}
		return nil, okResult{OK: true}, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_persons_needing_attention",
		Description: "List persons past their meeting-cadence goal, most overdue first, with health scores",
	}, func(ctx context.Context, req *sdkmcp.CallToolRequest, in empty) (*sdkmcp.CallToolResult, attentionList, error) {
		return nil, attentionList{Persons: svc.PersonsNeedingAttention()}, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_person_health",
		Description: "Relationship-health score (0-100) and status tier for one person",
	}, func(ctx context.Context, req *sdkmcp.CallToolRequest, in idParams) (*sdkmcp.CallToolResult, health.Report, error) {
		rep, err := svc.PersonHealth(in.ID)
		return nil, rep, mapError(err)
	})
}

func registerMeetingTools(server *sdkmcp.Server, svc MeetingService) {
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "list_meetings",
		Description: "List all meetings, newest first",
	}, func(ctx context.Context, req *sdkmcp.CallToolRequest, in empty) (*sdkmcp.CallToolResult, meetingList, error) {
		return nil, meetingList{Meetings: svc.Meetings()}, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_meetings_by_person",
		Description: "List a person's meetings, newest first",
	}, func(ctx context.Context, req *sdkmcp.CallToolRequest, in byPersonParams) (*sdkmcp.CallToolResult, meetingList, error) {
		return nil, meetingList{Meetings: svc.MeetingsByPerson(in.PersonID)}, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_meeting",
		Description: "Get one meeting by id",
	}, func(ctx context.Context, req *sdkmcp.CallToolRequest, in idParams) (*sdkmcp.CallToolResult, store.Meeting, error) {
		m, err := svc.Meeting(in.ID)
		return nil, m, mapError(err)
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "create_meeting",
		Description: "Create a meeting for a person; a past-dated meeting updates their last-meeting date",
	}, func(ctx context.Context, req *sdkmcp.CallToolRequest, in createMeetingParams) (*sdkmcp.CallToolResult, store.Meeting, error) {
		date, err := parseDate(in.Date)
		if err != nil {
			return nil, store.Meeting{}, mapError(err)
		}
		m, err := svc.CreateMeeting(repo.CreateMeetingRequest{
			PersonID:      in.PersonID,
			TemplateID:    in.TemplateID,
			Date:          date,
			Title:         in.Title,
			Notes:         in.Notes,
			TalkingPoints: in.TalkingPoints,
			NextTopics:    in.NextTopics,
		})
		return nil, m, mapError(err)
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "update_meeting",
		Description: "Update a meeting; omitted fields are unchanged. Changing the date recomputes the person's last-meeting date",
	}, func(ctx context.Context, req *sdkmcp.CallToolRequest, in updateMeetingParams) (*sdkmcp.CallToolResult, store.Meeting, error) {
		upd := repo.UpdateMeetingRequest{
			TemplateID:    in.TemplateID,
			Title:         in.Title,
			Notes:         in.Notes,
			TalkingPoints: in.TalkingPoints,
			NextTopics:    in.NextTopics,
		}
		if in.Date != nil {
			date, err := parseDate(*in.Date)
			if err != nil {
				return nil, store.Meeting{}, mapError(err)
			}
			upd.Date = &date
		}
		m, err := svc.UpdateMeeting(in.ID, upd)
		return nil, m, mapError(err)
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "delete_meeting",
		Description: "Delete a meeting and its action items",
	}, func(ctx context.Context, req *sdkmcp.CallToolRequest, in idParams) (*sdkmcp.CallToolResult, okResult, error) {
		if err := svc.DeleteMeeting(in.ID); err != nil {
			return nil, okResult{}, mapError(err)
		}
		return nil, okResult{OK: true}, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_upcoming_meetings",
		Description: "Meetings dated within the next N days, soonest first",
	}, func(ctx context.Context, req *sdkmcp.CallToolRequest, in upcomingParams) (*sdkmcp.CallToolResult, meetingList, error) {
		return nil, meetingList{Meetings: svc.UpcomingMeetings(in.Days)}, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_recent_meetings",
		Description: "Most recently created meetings, capped at limit",
	}, func(ctx context.Context, req *sdkmcp.CallToolRequest, in recentParams) (*sdkmcp.CallToolResult, meetingList, error) {
		return nil, meetingList{Meetings: svc.RecentMeetings(in.Limit)}, nil
	})
}

func registerActionTools(server *sdkmcp.Server, svc ActionService) {
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "list_actions",
		Description: "List all action items",
	}, func(ctx context.Context, req *sdkmcp.CallToolRequest, in empty) (*sdkmcp.CallToolResult, actionList, error) {
		return nil, actionList{Actions: svc.ActionItems()}, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_actions_by_meeting",
		Description: "List a meeting's action items, oldest first",
	}, func(ctx context.Context, req *sdkmcp.CallToolRequest, in byMeetingParams) (*sdkmcp.CallToolResult, actionList, error) {
		return nil, actionList{Actions: svc.ActionItemsByMeeting(in.MeetingID)}, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_pending_actions",
		Description: "Incomplete action items, due date ascending, undated last",
	}, func(ctx context.Context, req *sdkmcp.CallToolRequest, in empty) (*sdkmcp.CallToolResult, actionList, error) {
		return nil, actionList{Actions: svc.PendingActions()}, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "create_action",
		Description: "Create an action item under a meeting",
	}, func(ctx context.Context, req *sdkmcp.CallToolRequest, in createActionParams) (*sdkmcp.CallToolResult, store.ActionItem, error) {
		due, err := parseOptionalDate(in.DueDate)
		if err != nil {
			return nil, store.ActionItem{}, mapError(err)
		}
		a, err := svc.CreateAction(repo.CreateActionRequest{
			MeetingID:   in.MeetingID,
			Description: in.Description,
			Assignee:    store.Assignee(in.Assignee),
			DueDate:     due,
			Tags:        in.Tags,
		})
		return nil, a, mapError(err)
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "update_action",
		Description: "Update an action item; omitted fields are unchanged",
	}, func(ctx context.Context, req *sdkmcp.CallToolRequest, in updateActionParams) (*sdkmcp.CallToolResult, store.ActionItem, error) {
		upd := repo.UpdateActionRequest{
			Description: in.Description,
			Tags:        in.Tags,
			Completed:   in.Completed,
		}
		if in.Assignee != nil {
			assignee := store.Assignee(*in.Assignee)
			upd.Assignee = &assignee
		}
		if in.DueDate != nil {
			due, err := parseDate(*in.DueDate)
			if err != nil {
				return nil, store.ActionItem{}, mapError(err)
			}
			upd.DueDate = &due
		}
		a, err := svc.UpdateAction(in.ID, upd)
		return nil, a, mapError(err)
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "delete_action",
		Description: "Delete an action item",
	}, func(ctx context.Context, req *sdkmcp.CallToolRequest, in idParams) (*sdkmcp.CallToolResult, okResult, error) {
		if err := svc.DeleteAction(in.ID); err != nil {
			return nil, okResult{}, mapError(err)
		}
		return nil, okResult{OK: true}, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "toggle_action_complete",
		Description: "Flip an action item's completed flag",
	}, func(ctx context.Context, req *sdkmcp.CallToolRequest, in idParams) (*sdkmcp.CallToolResult, store.ActionItem, error) {
		a, err := svc.ToggleActionComplete(in.ID)
		return nil, a, mapError(err)
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "list_action_tags",
		Description: "All distinct tags across action items, sorted",
	}, func(ctx context.Context, req *sdkmcp.CallToolRequest, in empty) (*sdkmcp.CallToolResult, tagList, error) {
		return nil, tagList{Tags: svc.ActionTags()}, nil
	})
}

func registerTemplateTools(server *sdkmcp.Server, svc TemplateService) {
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "list_templates",
		Description: "List note templates, defaults first",
	}, func(ctx context.Context, req *sdkmcp.CallToolRequest, in empty) (*sdkmcp.CallToolResult, templateList, error) {
		return nil, templateList{Templates: svc.Templates()}, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_template",
		Description: "Get one template by id",
	}, func(ctx context.Context, req *sdkmcp.CallToolRequest, in idParams) (*sdkmcp.CallToolResult, store.Template, error) {
		t, err := svc.Template(in.ID)
		return nil, t, mapError(err)
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "create_template",
		Description: "Create a note template",
	}, func(ctx context.Context, req *sdkmcp.CallToolRequest, in createTemplateParams) (*sdkmcp.CallToolResult, store.Template, error) {
		t, err := svc.CreateTemplate(repo.CreateTemplateRequest{
			Name:        in.Name,
			Description: in.Description,
			Content:     in.Content,
		})
		return nil, t, mapError(err)
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "update_template",
		Description: "Update a template; omitted fields are unchanged",
	}, func(ctx context.Context, req *sdkmcp.CallToolRequest, in updateTemplateParams) (*sdkmcp.CallToolResult, store.Template, error) {
		t, err := svc.UpdateTemplate(in.ID, repo.UpdateTemplateRequest{
			Name:        in.Name,
			Description: in.Description,
			Content:     in.Content,
		})
		return nil, t, mapError(err)
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "delete_template",
		Description: "Delete a template; deleted defaults reappear on next startup",
	}, func(ctx context.Context, req *sdkmcp.CallToolRequest, in idParams) (*sdkmcp.CallToolResult, okResult, error) {
		if err := svc.DeleteTemplate(in.ID); err != nil {
			return nil, okResult{}, mapError(err)
		}
		return nil, okResult{OK: true}, nil
	})
}

func registerDataTools(server *sdkmcp.Server, svc DataService) {
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "export_data",
		Description: "Export all entities except default templates as a snapshot document",
	}, func(ctx context.Context, req *sdkmcp.CallToolRequest, in empty) (*sdkmcp.CallToolResult, exportResult, error) {
		data, err := svc.Export()
		return nil, exportResult{Data: data}, mapError(err)
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "import_data",
		Description: "Replace all data with a snapshot document; default templates are preserved",
	}, func(ctx context.Context, req *sdkmcp.CallToolRequest, in importParams) (*sdkmcp.CallToolResult, okResult, error) {
		if err := svc.Import(in.Data); err != nil {
			return nil, okResult{}, mapError(err)
		}
		return nil, okResult{OK: true}, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "reset_data",
		Description: "Delete everything and re-seed default templates",
	}, func(ctx context.Context, req *sdkmcp.CallToolRequest, in empty) (*sdkmcp.CallToolResult, okResult, error) {
		if err := svc.Reset(); err != nil {
			return nil, okResult{}, mapError(err)
		}
		return nil, okResult{OK: true}, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "search",
		Description: "Case-insensitive substring search across persons, meetings and action items",
	}, func(ctx context.Context, req *sdkmcp.CallToolRequest, in searchParams) (*sdkmcp.CallToolResult, app.SearchResults, error) {
		return nil, svc.Search(in.Query), nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_dashboard_stats",
		Description: "Headline counts: persons, meetings this month, pending actions",
	}, func(ctx context.Context, req *sdkmcp.CallToolRequest, in empty) (*sdkmcp.CallToolResult, app.DashboardStats, error) {
		return nil, svc.Stats(), nil
	})
}

func registerReminderTools(server *sdkmcp.Server, svc ReminderService) {
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_notification_settings",
		Description: "Current reminder settings",
	}, func(ctx context.Context, req *sdkmcp.CallToolRequest, in empty) (*sdkmcp.CallToolResult, reminder.Settings, error) {
		return nil, svc.Settings(), nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "update_notification_settings",
		Description: "Partially update reminder settings; omitted fields are unchanged",
	}, func(ctx context.Context, req *sdkmcp.CallToolRequest, in reminder.SettingsPatch) (*sdkmcp.CallToolResult, reminder.Settings, error) {
		return nil, svc.UpdateSettings(in), nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "send_test_notification",
		Description: "Emit a test notification through the configured channel",
	}, func(ctx context.Context, req *sdkmcp.CallToolRequest, in empty) (*sdkmcp.CallToolResult, okResult, error) {
		svc.SendTest()
		return nil, okResult{OK: true}, nil
	})
}

// parseDate accepts RFC 3339 timestamps, the datetime-local form used by
// calendar inputs, and bare dates.
func parseDate(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: unparseable date %q", repo.ErrInvalidInput, s)
}

func parseOptionalDate(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := parseDate(*s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
