package mcp

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"

	"github.com/oikio/oikio-mcp/internal/app"
	"github.com/oikio/oikio-mcp/internal/reminder"
	"github.com/oikio/oikio-mcp/internal/store"
)

// testSession connects a client to the server over in-memory transports.
type testSession struct {
	session *sdkmcp.ClientSession
}

type noopNotifier struct{}

func (noopNotifier) MeetingReminder(title, personName string, hoursUntil int) {}
func (noopNotifier) ActionSummary(overdue, dueToday, dueTomorrow int)         {}
func (noopNotifier) Test()                                                    {}

func newTestSession(t *testing.T) *testSession {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	st, err := store.Open(filepath.Join(t.TempDir(), "oikio-data.json"), store.Options{Logger: logger})
	require.NoError(t, err)
	svc, err := app.New(st, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.Close() })

	sched := reminder.New(svc, noopNotifier{}, logger, time.Hour)

	server := NewServer(Config{
		Services: Services{
			Persons:   svc,
			Meetings:  svc,
			Actions:   svc,
			Templates: svc,
			Data:      svc,
			Reminders: sched,
		},
		Logger: logger,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)

	st1, st2 := sdkmcp.NewInMemoryTransports()
	serverSession, err := server.Connect(ctx, st1, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = serverSession.Close() })

	client := sdkmcp.NewClient(&sdkmcp.Implementation{
		Name:    "test-client",
		Version: "1.0.0",
	}, nil)
	session, err := client.Connect(ctx, st2, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = session.Close() })

	return &testSession{session: session}
}

func (s *testSession) callTool(t *testing.T, name string, args map[string]any) json.RawMessage {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := s.session.CallTool(ctx, &sdkmcp.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	require.NoError(t, err, "CallTool %s failed", name)
	require.False(t, result.IsError, "Tool %s returned error", name)
	require.NotEmpty(t, result.Content, "Tool %s returned no content", name)

	for _, content := range result.Content {
		if textContent, ok := content.(*sdkmcp.TextContent); ok {
			return json.RawMessage(textContent.Text)
		}
	}
	t.Fatalf("Tool %s returned no text content", name)
	return nil
}

func (s *testSession) callToolExpectError(t *testing.T, name string, args map[string]any) string {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := s.session.CallTool(ctx, &sdkmcp.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	require.NoError(t, err, "CallTool %s failed at the protocol level", name)
	require.True(t, result.IsError, "Tool %s unexpectedly succeeded", name)
	for _, content := range result.Content {
		if textContent, ok := content.(*sdkmcp.TextContent); ok {
			return textContent.Text
		}
	}
	return ""
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v))
	return v
}

func (s *testSession) createPerson(t *testing.T, name string, extra map[string]any) store.Person {
	t.Helper()
	args := map[string]any{"name": name, "role": "teammate"}
	for k, v := range extra {
		args[k] = v
	}
	return decode[store.Person](t, s.callTool(t, "create_person", args))
}

func (s *testSession) createMeeting(t *testing.T, personID int, date, title string) store.Meeting {
	t.Helper()
	return decode[store.Meeting](t, s.callTool(t, "create_meeting", map[string]any{
		"personId": personID, "date": date, "title": title,
	}))
}

func TestTools_PersonLifecycle(t *testing.T) {
	s := newTestSession(t)

	p := s.createPerson(t, "Ada", map[string]any{"meetingFrequencyGoal": "weekly"})
	require.Equal(t, 1, p.ID)
	require.Equal(t, store.FrequencyWeekly, p.MeetingFrequencyGoal)

	updated := decode[store.Person](t, s.callTool(t, "update_person", map[string]any{
		"id": p.ID, "email": "ada@example.com",
	}))
	require.Equal(t, "ada@example.com", updated.Email)
	require.Equal(t, "Ada", updated.Name)

	list := decode[personList](t, s.callTool(t, "list_persons", nil))
	require.Len(t, list.Persons, 1)

	got := decode[store.Person](t, s.callTool(t, "get_person", map[string]any{"id": p.ID}))
	require.Equal(t, "Ada", got.Name)

	ok := decode[okResult](t, s.callTool(t, "delete_person", map[string]any{"id": p.ID}))
	require.True(t, ok.OK)

	msg := s.callToolExpectError(t, "get_person", map[string]any{"id": p.ID})
	require.Contains(t, msg, "NOT_FOUND")
}

func TestTools_CreatePersonInvalidRole(t *testing.T) {
	s := newTestSession(t)
	msg := s.callToolExpectError(t, "create_person", map[string]any{
		"name": "Ada", "role": "stranger",
	})
	require.Contains(t, msg, "INVALID_INPUT")
}

func TestTools_MeetingLifecycleAndDerivedDate(t *testing.T) {
	s := newTestSession(t)
	p := s.createPerson(t, "Ada", nil)

	yesterday := time.Now().AddDate(0, 0, -1).Format("2006-01-02")
	m := s.createMeeting(t, p.ID, yesterday, "Kickoff")
	require.Equal(t, "Ada", m.PersonName)

	got := decode[store.Person](t, s.callTool(t, "get_person", map[string]any{"id": p.ID}))
	require.NotNil(t, got.LastMeetingDate)

	byPerson := decode[meetingList](t, s.callTool(t, "get_meetings_by_person", map[string]any{
		"personId": p.ID,
	}))
	require.Len(t, byPerson.Meetings, 1)

	ok := decode[okResult](t, s.callTool(t, "delete_meeting", map[string]any{"id": m.ID}))
	require.True(t, ok.OK)

	got = decode[store.Person](t, s.callTool(t, "get_person", map[string]any{"id": p.ID}))
	require.Nil(t, got.LastMeetingDate)
}

func TestTools_CreateMeetingBadDate(t *testing.T) {
	s := newTestSession(t)
	p := s.createPerson(t, "Ada", nil)
	msg := s.callToolExpectError(t, "create_meeting", map[string]any{
		"personId": p.ID, "date": "next tuesday",
	})
	require.Contains(t, msg, "INVALID_INPUT")
}

func TestTools_ActionLifecycle(t *testing.T) {
	s := newTestSession(t)
	p := s.createPerson(t, "Ada", nil)
	m := s.createMeeting(t, p.ID, time.Now().Format("2006-01-02"), "Planning")

	a := decode[store.ActionItem](t, s.callTool(t, "create_action", map[string]any{
		"meetingId":   m.ID,
		"description": "send the doc",
		"dueDate":     time.Now().AddDate(0, 0, 3).Format("2006-01-02"),
		"tags":        []string{"docs"},
	}))
	require.False(t, a.Completed)

	toggled := decode[store.ActionItem](t, s.callTool(t, "toggle_action_complete", map[string]any{"id": a.ID}))
	require.True(t, toggled.Completed)

	pending := decode[actionList](t, s.callTool(t, "get_pending_actions", nil))
	require.Empty(t, pending.Actions)

	tags := decode[tagList](t, s.callTool(t, "list_action_tags", nil))
	require.Equal(t, []string{"docs"}, tags.Tags)
}

func TestTools_TemplatesListDefaultsFirst(t *testing.T) {
	s := newTestSession(t)

	created := decode[store.Template](t, s.callTool(t, "create_template", map[string]any{
		"name": "Skip Level", "content": "## Topics\n- ",
	}))
	require.False(t, created.IsDefault)

	list := decode[templateList](t, s.callTool(t, "list_templates", nil))
	require.Len(t, list.Templates, 4)
	require.True(t, list.Templates[0].IsDefault)
	require.Equal(t, "Skip Level", list.Templates[3].Name)
}

func TestTools_HealthAndAttention(t *testing.T) {
	s := newTestSession(t)
	p := s.createPerson(t, "Ada", map[string]any{"meetingFrequencyGoal": "weekly"})
	tenDaysAgo := time.Now().AddDate(0, 0, -10).Format("2006-01-02")
	s.createMeeting(t, p.ID, tenDaysAgo, "1:1")

	var rep struct {
		Score       int    `json:"score"`
		Status      string `json:"status"`
		DaysOverdue int    `json:"daysOverdue"`
	}
	require.NoError(t, json.Unmarshal(s.callTool(t, "get_person_health", map[string]any{"id": p.ID}), &rep))
	require.Equal(t, "critical", rep.Status)
	require.Equal(t, 3, rep.DaysOverdue)

	attention := decode[attentionList](t, s.callTool(t, "get_persons_needing_attention", nil))
	require.Len(t, attention.Persons, 1)
	require.Equal(t, "Ada", attention.Persons[0].Name)
}

func TestTools_ExportImportReset(t *testing.T) {
	s := newTestSession(t)
	p := s.createPerson(t, "Ada", nil)
	s.createMeeting(t, p.ID, time.Now().Format("2006-01-02"), "1:1")

	exported := decode[exportResult](t, s.callTool(t, "export_data", nil))
	require.NotEmpty(t, exported.Data)

	ok := decode[okResult](t, s.callTool(t, "reset_data", nil))
	require.True(t, ok.OK)
	list := decode[personList](t, s.callTool(t, "list_persons", nil))
	require.Empty(t, list.Persons)

	ok = decode[okResult](t, s.callTool(t, "import_data", map[string]any{"data": exported.Data}))
	require.True(t, ok.OK)
	list = decode[personList](t, s.callTool(t, "list_persons", nil))
	require.Len(t, list.Persons, 1)
	require.Equal(t, "Ada", list.Persons[0].Name)

	msg := s.callToolExpectError(t, "import_data", map[string]any{"data": "{broken"})
	require.Contains(t, msg, "MALFORMED_IMPORT")
}

func TestTools_SearchAndStats(t *testing.T) {
	s := newTestSession(t)
	p := s.createPerson(t, "Ada Lovelace", nil)
	m := s.createMeeting(t, p.ID, time.Now().Format("2006-01-02"), "Roadmap review")
	s.callTool(t, "create_action", map[string]any{
		"meetingId": m.ID, "description": "draft roadmap doc",
	})

	results := decode[app.SearchResults](t, s.callTool(t, "search", map[string]any{"query": "roadmap"}))
	require.Len(t, results.Meetings, 1)
	require.Len(t, results.Actions, 1)
	require.Empty(t, results.Persons)

	stats := decode[app.DashboardStats](t, s.callTool(t, "get_dashboard_stats", nil))
	require.Equal(t, 1, stats.TotalPersons)
	require.Equal(t, 1, stats.MeetingsThisMonth)
	require.Equal(t, 1, stats.PendingActions)
}

func TestTools_NotificationSettings(t *testing.T) {
	s := newTestSession(t)

	settings := decode[reminder.Settings](t, s.callTool(t, "get_notification_settings", nil))
	require.True(t, settings.Enabled)
	require.Equal(t, 24, settings.ReminderHoursBefore)

	settings = decode[reminder.Settings](t, s.callTool(t, "update_notification_settings", map[string]any{
		"reminderHoursBefore": 4, "meetingReminders": false,
	}))
	require.Equal(t, 4, settings.ReminderHoursBefore)
	require.False(t, settings.MeetingReminders)
	require.True(t, settings.Enabled)

	ok := decode[okResult](t, s.callTool(t, "send_test_notification", nil))
	require.True(t, ok.OK)
}
