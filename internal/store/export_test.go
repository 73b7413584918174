package store

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func seedEntities(t *testing.T, s *Store) {
	t.Helper()
	now := time.Now()
	doc := s.Doc()
	doc.Templates = append(doc.Templates,
		Template{ID: s.NextID(EntityTemplates), Name: "Weekly Sync", Content: "...", IsDefault: true},
		Template{ID: s.NextID(EntityTemplates), Name: "Mine", Content: "custom"},
	)
	doc.Persons = append(doc.Persons,
		Person{ID: s.NextID(EntityPersons), Name: "Ada", Role: RoleTeammate, CreatedAt: now},
		Person{ID: s.NextID(EntityPersons), Name: "Grace", Role: RoleManager, CreatedAt: now},
	)
	doc.Meetings = append(doc.Meetings,
		Meeting{ID: s.NextID(EntityMeetings), PersonID: 1, Date: now, Title: "Sync", CreatedAt: now},
	)
	doc.ActionItems = append(doc.ActionItems,
		ActionItem{ID: s.NextID(EntityActionItems), MeetingID: 1, Description: "Follow up", CreatedAt: now},
	)
}

func TestExport_OmitsDefaultTemplates(t *testing.T) {
	s := newTestStore(t, 0)
	seedEntities(t, s)

	data, err := s.Export()
	require.NoError(t, err)

	var snap Snapshot
	require.NoError(t, json.Unmarshal([]byte(data), &snap))
	require.NotEmpty(t, snap.SnapshotID)
	require.False(t, snap.ExportedAt.IsZero())
	require.Len(t, snap.Templates, 1)
	require.Equal(t, "Mine", snap.Templates[0].Name)
	require.Len(t, snap.Persons, 2)
}

func TestImport_RoundTripPreservesEntities(t *testing.T) {
	s := newTestStore(t, 0)
	seedEntities(t, s)

	data, err := s.Export()
	require.NoError(t, err)

	defaults := []Template{}
	for _, tpl := range s.Doc().Templates {
		if tpl.IsDefault {
			defaults = append(defaults, tpl)
		}
	}
	require.NoError(t, s.Import(data, defaults))

	doc := s.Doc()
	require.Len(t, doc.Persons, 2)
	require.Equal(t, "Ada", doc.Persons[0].Name)
	require.Len(t, doc.Meetings, 1)
	require.Len(t, doc.ActionItems, 1)

	// Defaults re-attached ahead of imported user templates.
	require.Len(t, doc.Templates, 2)
	require.True(t, doc.Templates[0].IsDefault)
	require.Equal(t, "Mine", doc.Templates[1].Name)
}

func TestImport_RecomputesCounters(t *testing.T) {
	s := newTestStore(t, 0)
	seedEntities(t, s)

	data, err := s.Export()
	require.NoError(t, err)
	require.NoError(t, s.Import(data, nil))

	require.Equal(t, Counters{
		Persons:     2,
		Meetings:    1,
		ActionItems: 1,
		Templates:   2,
	}, s.Doc().Meta.LastID)

	// New ids never collide with imported ones.
	require.Equal(t, 3, s.NextID(EntityPersons))
}

func TestImport_MalformedRejectedWholesale(t *testing.T) {
	s := newTestStore(t, 0)
	seedEntities(t, s)

	err := s.Import("{broken", nil)
	require.ErrorIs(t, err, ErrMalformedImport)

	// Nothing changed.
	require.Len(t, s.Doc().Persons, 2)
	require.Len(t, s.Doc().Templates, 2)
}

func TestImport_MissingCollectionsBecomeEmpty(t *testing.T) {
	s := newTestStore(t, 0)
	seedEntities(t, s)

	require.NoError(t, s.Import(`{"persons":[{"id":7,"name":"Solo","role":"teammate"}]}`, nil))

	doc := s.Doc()
	require.Len(t, doc.Persons, 1)
	require.NotNil(t, doc.Meetings)
	require.Empty(t, doc.Meetings)
	require.Equal(t, 7, doc.Meta.LastID.Persons)
}

func TestReset_ClearsEverythingAndPersists(t *testing.T) {
	s := newTestStore(t, 0)
	seedEntities(t, s)

	require.NoError(t, s.Reset())

	doc := s.Doc()
	require.Empty(t, doc.Persons)
	require.Empty(t, doc.Meetings)
	require.Empty(t, doc.ActionItems)
	require.Empty(t, doc.Templates)
	require.Equal(t, Counters{}, doc.Meta.LastID)

	reopened := openTestStore(t, s.Path(), 0)
	require.Empty(t, reopened.Doc().Persons)
}
