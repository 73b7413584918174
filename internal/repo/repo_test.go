package repo

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oikio/oikio-mcp/internal/store"
)

type testRepos struct {
	store     *store.Store
	persons   *Persons
	meetings  *Meetings
	actions   *Actions
	templates *Templates
}

func newTestRepos(t *testing.T) *testRepos {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	st, err := store.Open(filepath.Join(t.TempDir(), "oikio-data.json"), store.Options{Logger: logger})
	require.NoError(t, err)
	return &testRepos{
		store:     st,
		persons:   NewPersons(st, logger),
		meetings:  NewMeetings(st, logger),
		actions:   NewActions(st, logger),
		templates: NewTemplates(st, logger),
	}
}

func (r *testRepos) addPerson(t *testing.T, name string, goal store.Frequency) store.Person {
	t.Helper()
	p, err := r.persons.Create(CreatePersonRequest{
		Name: name, Role: store.RoleTeammate, MeetingFrequencyGoal: goal,
	})
	require.NoError(t, err)
	return p
}

func (r *testRepos) addMeeting(t *testing.T, personID int, date time.Time) store.Meeting {
	t.Helper()
	m, err := r.meetings.Create(CreateMeetingRequest{
		PersonID: personID, Date: date, Title: "1:1",
	}, r.persons)
	require.NoError(t, err)
	return m
}

func (r *testRepos) addAction(t *testing.T, meetingID int, desc string, due *time.Time) store.ActionItem {
	t.Helper()
	a, err := r.actions.Create(CreateActionRequest{
		MeetingID: meetingID, Description: desc, DueDate: due,
	})
	require.NoError(t, err)
	return a
}

func daysAgo(n int) time.Time {
	return time.Now().Add(-time.Duration(n) * 24 * time.Hour)
}

func ptr[T any](v T) *T {
	return &v
}
