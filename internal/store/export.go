package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Snapshot is the transportable export document. Default templates and the
// id counters are omitted; both are re-derived on import.
type Snapshot struct {
	SnapshotID  string       `json:"snapshotId"`
	Persons     []Person     `json:"persons"`
	Meetings    []Meeting    `json:"meetings"`
	ActionItems []ActionItem `json:"actionItems"`
	Templates   []Template   `json:"templates"`
	ExportedAt  time.Time    `json:"exportedAt"`
}

// Export serializes all entities except default templates.
func (s *Store) Export() (string, error) {
	userTemplates := []Template{}
	for _, t := range s.doc.Templates {
		if !t.IsDefault {
			userTemplates = append(userTemplates, t)
		}
	}
	snap := Snapshot{
		SnapshotID:  uuid.NewString(),
		Persons:     s.doc.Persons,
		Meetings:    s.doc.Meetings,
		ActionItems: s.doc.ActionItems,
		Templates:   userTemplates,
		ExportedAt:  time.Now(),
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding snapshot: %w", err)
	}
	return string(data), nil
}

// Import replaces every non-default collection wholesale, re-attaches the
// given default templates ahead of imported ones, recomputes all four id
// counters from the surviving ids, and persists immediately. A document
// that fails to parse is rejected with ErrMalformedImport and nothing
// changes.
func (s *Store) Import(data string, defaults []Template) error {
	var snap Snapshot
	if err := json.Unmarshal([]byte(data), &snap); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedImport, err)
	}

	doc := NewDocument()
	if snap.Persons != nil {
		doc.Persons = snap.Persons
	}
	if snap.Meetings != nil {
		doc.Meetings = snap.Meetings
	}
	if snap.ActionItems != nil {
		doc.ActionItems = snap.ActionItems
	}
	doc.Templates = append(doc.Templates, defaults...)
	doc.Templates = append(doc.Templates, snap.Templates...)

	for _, p := range doc.Persons {
		doc.Meta.LastID.Persons = max(doc.Meta.LastID.Persons, p.ID)
	}
	for _, m := range doc.Meetings {
		doc.Meta.LastID.Meetings = max(doc.Meta.LastID.Meetings, m.ID)
	}
	for _, a := range doc.ActionItems {
		doc.Meta.LastID.ActionItems = max(doc.Meta.LastID.ActionItems, a.ID)
	}
	for _, t := range doc.Templates {
		doc.Meta.LastID.Templates = max(doc.Meta.LastID.Templates, t.ID)
	}

	s.doc = doc
	if err := s.SaveImmediate(); err != nil {
		return fmt.Errorf("persisting import: %w", err)
	}
	s.logger.Info("imported snapshot",
		"snapshot_id", snap.SnapshotID,
		"persons", len(doc.Persons),
		"meetings", len(doc.Meetings),
		"actions", len(doc.ActionItems),
		"templates", len(doc.Templates))
	return nil
}

// Reset clears all collections to the empty default and persists
// immediately. Re-seeding default templates is the caller's job.
func (s *Store) Reset() error {
	s.doc = NewDocument()
	if err := s.SaveImmediate(); err != nil {
		return fmt.Errorf("persisting reset: %w", err)
	}
	return nil
}
