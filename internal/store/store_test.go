package store

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, debounce time.Duration) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "oikio-data.json")
	return openTestStore(t, path, debounce)
}

func openTestStore(t *testing.T, path string, debounce time.Duration) *Store {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s, err := Open(path, Options{Debounce: debounce, Logger: logger})
	require.NoError(t, err)
	return s
}

func TestOpen_MissingFileStartsEmpty(t *testing.T) {
	s := newTestStore(t, 0)

	doc := s.Doc()
	require.Empty(t, doc.Persons)
	require.Empty(t, doc.Meetings)
	require.Empty(t, doc.ActionItems)
	require.Empty(t, doc.Templates)
	require.Equal(t, Counters{}, doc.Meta.LastID)
}

func TestOpen_CorruptFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "oikio-data.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	s := openTestStore(t, path, 0)
	require.Empty(t, s.Doc().Persons)

	// A save after recovery replaces the corrupt file with valid state.
	require.NoError(t, s.Save())
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, json.Valid(data))
}

func TestOpen_CreatesDataDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "oikio-data.json")
	s := openTestStore(t, path, 0)
	require.NoError(t, s.Save())

	_, err := os.Stat(path)
	require.NoError(t, err)
}

func TestNextID_MonotonicAndIndependent(t *testing.T) {
	s := newTestStore(t, 0)

	require.Equal(t, 1, s.NextID(EntityPersons))
	require.Equal(t, 2, s.NextID(EntityPersons))
	require.Equal(t, 1, s.NextID(EntityMeetings))
	require.Equal(t, 1, s.NextID(EntityActionItems))
	require.Equal(t, 1, s.NextID(EntityTemplates))
	require.Equal(t, 3, s.NextID(EntityPersons))
}

func TestSave_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "oikio-data.json")
	s := openTestStore(t, path, 0)

	s.Doc().Persons = append(s.Doc().Persons, Person{
		ID:        s.NextID(EntityPersons),
		Name:      "Ada",
		Role:      RoleTeammate,
		CreatedAt: time.Now(),
	})
	require.NoError(t, s.Save())

	reopened := openTestStore(t, path, 0)
	require.Len(t, reopened.Doc().Persons, 1)
	require.Equal(t, "Ada", reopened.Doc().Persons[0].Name)
	require.Equal(t, 1, reopened.Doc().Meta.LastID.Persons)
}

func TestSave_DebounceCollapsesWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "oikio-data.json")
	s := openTestStore(t, path, 40*time.Millisecond)

	for i := 0; i < 3; i++ {
		s.Doc().Persons = append(s.Doc().Persons, Person{
			ID:        s.NextID(EntityPersons),
			Name:      "P",
			Role:      RoleTeammate,
			CreatedAt: time.Now(),
		})
		require.NoError(t, s.Save())
	}

	// Trailing edge: nothing on disk inside the quiet window.
	_, err := os.Stat(path)
	require.True(t, os.IsNotExist(err))

	require.Eventually(t, func() bool {
		_, err := os.Stat(path)
		return err == nil
	}, time.Second, 10*time.Millisecond)

	reopened := openTestStore(t, path, 0)
	require.Len(t, reopened.Doc().Persons, 3)
}

func TestSaveImmediate_CancelsPendingAndWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "oikio-data.json")
	s := openTestStore(t, path, time.Hour)

	s.Doc().Persons = append(s.Doc().Persons, Person{ID: s.NextID(EntityPersons), Name: "Ada", Role: RoleManager})
	require.NoError(t, s.Save())
	require.NoError(t, s.SaveImmediate())

	reopened := openTestStore(t, path, 0)
	require.Len(t, reopened.Doc().Persons, 1)
}

func TestClose_FlushesPendingWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "oikio-data.json")
	s := openTestStore(t, path, time.Hour)

	s.Doc().Templates = append(s.Doc().Templates, Template{ID: s.NextID(EntityTemplates), Name: "T", Content: "c"})
	require.NoError(t, s.Save())
	require.NoError(t, s.Close())

	reopened := openTestStore(t, path, 0)
	require.Len(t, reopened.Doc().Templates, 1)
}

func TestClose_SurfacesPersistentWriteFailure(t *testing.T) {
	// The data path is a directory, so every disk write fails. A debounced
	// save only logs its deferred failure, but Close retries the full
	// document and returns the error.
	path := filepath.Join(t.TempDir(), "oikio-data.json")
	require.NoError(t, os.Mkdir(path, 0o755))

	s := openTestStore(t, path, 20*time.Millisecond)
	s.Doc().Persons = append(s.Doc().Persons, Person{ID: s.NextID(EntityPersons), Name: "Ada", Role: RoleTeammate})
	require.NoError(t, s.Save())

	require.Error(t, s.Close())
}

func TestOpen_NormalizesNilCollections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "oikio-data.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"persons":null,"meta":{"lastId":{"persons":4}}}`), 0o644))

	s := openTestStore(t, path, 0)
	require.NotNil(t, s.Doc().Persons)
	require.NotNil(t, s.Doc().Meetings)
	require.Equal(t, 5, s.NextID(EntityPersons))
}
