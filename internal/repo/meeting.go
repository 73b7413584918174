package repo

import (
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/oikio/oikio-mcp/internal/store"
)

// Meetings is the meeting repository. Every mutation that can invalidate a
// person's derived lastMeetingDate goes through recalculation here rather
// than incremental patching, except the create fast path where advancing
// the maximum is provably safe.
type Meetings struct {
	store  *store.Store
	logger *slog.Logger
	now    func() time.Time
}

// NewMeetings creates a meeting repository over the shared store.
func NewMeetings(st *store.Store, logger *slog.Logger) *Meetings {
	return &Meetings{store: st, logger: logger, now: time.Now}
}

// CreateMeetingRequest defines meeting creation inputs.
type CreateMeetingRequest struct {
	PersonID      int
	TemplateID    *int
	Date          time.Time
	Title         string
	Notes         string
	TalkingPoints string
	NextTopics    string
}

// UpdateMeetingRequest defines meeting update inputs; nil fields are left
// unchanged.
type UpdateMeetingRequest struct {
	TemplateID    *int
	Date          *time.Time
	Title         *string
	Notes         *string
	TalkingPoints *string
	NextTopics    *string
}

func (r *Meetings) actionStats(meetingID int) *store.ActionStats {
	stats := &store.ActionStats{}
	for _, a := range r.store.Doc().ActionItems {
		if a.MeetingID != meetingID {
			continue
		}
		stats.Total++
		if a.Completed {
			stats.Completed++
		}
	}
	return stats
}

// enrich fills read-time fields on a copy.
func (r *Meetings) enrich(m store.Meeting) store.Meeting {
	for _, p := range r.store.Doc().Persons {
		if p.ID == m.PersonID {
			m.PersonName = p.Name
			break
		}
	}
	m.Stats = r.actionStats(m.ID)
	return m
}

// GetAll returns all meetings enriched, newest date first.
func (r *Meetings) GetAll() []store.Meeting {
	out := make([]store.Meeting, 0, len(r.store.Doc().Meetings))
	for _, m := range r.store.Doc().Meetings {
		out = append(out, r.enrich(m))
	}
	slices.SortFunc(out, func(a, b store.Meeting) int {
		return b.Date.Compare(a.Date)
	})
	return out
}

// GetByPerson returns one person's meetings enriched, newest date first.
func (r *Meetings) GetByPerson(personID int) []store.Meeting {
	out := []store.Meeting{}
	for _, m := range r.store.Doc().Meetings {
		if m.PersonID == personID {
			out = append(out, r.enrich(m))
		}
	}
	slices.SortFunc(out, func(a, b store.Meeting) int {
		return b.Date.Compare(a.Date)
	})
	return out
}

// GetByID returns a single meeting enriched.
func (r *Meetings) GetByID(id int) (store.Meeting, error) {
	for _, m := range r.store.Doc().Meetings {
		if m.ID == id {
			return r.enrich(m), nil
		}
	}
	return store.Meeting{}, fmt.Errorf("meeting %d: %w", id, ErrNotFound)
}

// Create validates and stores a new meeting. A meeting dated on or before
// today (end-of-day precision) advances the person's lastMeetingDate when
// it is their most recent such meeting; a future-dated meeting never does.
func (r *Meetings) Create(req CreateMeetingRequest, persons *Persons) (store.Meeting, error) {
	if req.Date.IsZero() {
		return store.Meeting{}, fmt.Errorf("%w: date is required", ErrInvalidInput)
	}
	person, err := persons.GetByID(req.PersonID)
	if err != nil {
		return store.Meeting{}, fmt.Errorf("%w: person %d does not exist", ErrInvalidInput, req.PersonID)
	}

	m := store.Meeting{
		ID:            r.store.NextID(store.EntityMeetings),
		PersonID:      req.PersonID,
		TemplateID:    req.TemplateID,
		Date:          req.Date,
		Title:         req.Title,
		Notes:         req.Notes,
		TalkingPoints: req.TalkingPoints,
		NextTopics:    req.NextTopics,
		CreatedAt:     r.now(),
	}
	doc := r.store.Doc()
	doc.Meetings = append(doc.Meetings, m)

	if !m.Date.After(endOfDay(r.now())) {
		if person.LastMeetingDate == nil || m.Date.After(*person.LastMeetingDate) {
			date := m.Date
			persons.updateLastMeetingDate(m.PersonID, &date)
		}
	}

	if err := r.store.Save(); err != nil {
		return store.Meeting{}, err
	}
	return r.enrich(m), nil
}

// Update applies the non-nil fields of req. A date change triggers a full
// recalculation of the owning person's lastMeetingDate, so editing a date
// backward never leaves the derived field stale.
func (r *Meetings) Update(id int, req UpdateMeetingRequest, persons *Persons) (store.Meeting, error) {
	doc := r.store.Doc()
	idx := slices.IndexFunc(doc.Meetings, func(m store.Meeting) bool { return m.ID == id })
	if idx < 0 {
		return store.Meeting{}, fmt.Errorf("meeting %d: %w", id, ErrNotFound)
	}

	m := &doc.Meetings[idx]
	if req.TemplateID != nil {
		m.TemplateID = req.TemplateID
	}
	if req.Title != nil {
		m.Title = *req.Title
	}
	if req.Notes != nil {
		m.Notes = *req.Notes
	}
	if req.TalkingPoints != nil {
		m.TalkingPoints = *req.TalkingPoints
	}
	if req.NextTopics != nil {
		m.NextTopics = *req.NextTopics
	}
	if req.Date != nil {
		m.Date = *req.Date
		r.RecalculateLastMeetingDate(m.PersonID, persons)
	}

	if err := r.store.Save(); err != nil {
		return store.Meeting{}, err
	}
	return r.enrich(*m), nil
}

// Delete cascades away the meeting's action items, removes the meeting,
// then recalculates the owning person's lastMeetingDate.
func (r *Meetings) Delete(id int, actions *Actions, persons *Persons) error {
	doc := r.store.Doc()
	idx := slices.IndexFunc(doc.Meetings, func(m store.Meeting) bool { return m.ID == id })
	if idx < 0 {
		return fmt.Errorf("meeting %d: %w", id, ErrNotFound)
	}
	personID := doc.Meetings[idx].PersonID

	actions.deleteByMeeting(id)
	doc.Meetings = slices.DeleteFunc(doc.Meetings, func(m store.Meeting) bool { return m.ID == id })
	r.RecalculateLastMeetingDate(personID, persons)
	r.logger.Info("deleted meeting", "meeting_id", id, "person_id", personID)
	return r.store.Save()
}

// deleteByPerson removes all of a person's meetings and their action
// items. Used only by the person-delete cascade; the caller persists.
func (r *Meetings) deleteByPerson(personID int) {
	doc := r.store.Doc()
	owned := map[int]bool{}
	for _, m := range doc.Meetings {
		if m.PersonID == personID {
			owned[m.ID] = true
		}
	}
	doc.ActionItems = slices.DeleteFunc(doc.ActionItems, func(a store.ActionItem) bool {
		return owned[a.MeetingID]
	})
	doc.Meetings = slices.DeleteFunc(doc.Meetings, func(m store.Meeting) bool {
		return m.PersonID == personID
	})
}

// RecalculateLastMeetingDate recomputes the derived field from scratch:
// the maximum meeting date on or before now, or nil if none.
func (r *Meetings) RecalculateLastMeetingDate(personID int, persons *Persons) {
	cutoff := endOfDay(r.now())
	var latest *time.Time
	for _, m := range r.store.Doc().Meetings {
		if m.PersonID != personID || m.Date.After(cutoff) {
			continue
		}
		if latest == nil || m.Date.After(*latest) {
			date := m.Date
			latest = &date
		}
	}
	persons.updateLastMeetingDate(personID, latest)
}

// GetUpcoming returns meetings dated within [today, today+days] inclusive,
// soonest first.
func (r *Meetings) GetUpcoming(days int) []store.Meeting {
	from := startOfDay(r.now())
	to := from.Add(time.Duration(days) * 24 * time.Hour)
	out := []store.Meeting{}
	for _, m := range r.store.Doc().Meetings {
		if !m.Date.Before(from) && !m.Date.After(to) {
			out = append(out, r.enrich(m))
		}
	}
	slices.SortFunc(out, func(a, b store.Meeting) int {
		return a.Date.Compare(b.Date)
	})
	return out
}

// GetRecent returns the most recently created meetings, capped at limit.
func (r *Meetings) GetRecent(limit int) []store.Meeting {
	out := make([]store.Meeting, 0, len(r.store.Doc().Meetings))
	for _, m := range r.store.Doc().Meetings {
		out = append(out, r.enrich(m))
	}
	slices.SortFunc(out, func(a, b store.Meeting) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// BackfillLastMeetingDates recomputes lastMeetingDate for persons with
// meeting history. One-time migration pass at startup for legacy records;
// persons with no past meetings are left as loaded.
func (r *Meetings) BackfillLastMeetingDates(persons *Persons) int {
	cutoff := endOfDay(r.now())
	updated := 0
	for _, p := range r.store.Doc().Persons {
		var latest *time.Time
		for _, m := range r.store.Doc().Meetings {
			if m.PersonID != p.ID || m.Date.After(cutoff) {
				continue
			}
			if latest == nil || m.Date.After(*latest) {
				date := m.Date
				latest = &date
			}
		}
		if latest != nil {
			persons.updateLastMeetingDate(p.ID, latest)
			updated++
		}
	}
	return updated
}
