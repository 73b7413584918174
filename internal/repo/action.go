package repo

import (
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/oikio/oikio-mcp/internal/store"
)

// Actions is the action-item repository.
type Actions struct {
	store  *store.Store
	logger *slog.Logger
	now    func() time.Time
}

// NewActions creates an action-item repository over the shared store.
func NewActions(st *store.Store, logger *slog.Logger) *Actions {
	return &Actions{store: st, logger: logger, now: time.Now}
}

// CreateActionRequest defines action-item creation inputs.
type CreateActionRequest struct {
	MeetingID   int
	Description string
	Assignee    store.Assignee
	DueDate     *time.Time
	Tags        []string
}

// UpdateActionRequest defines action-item update inputs; nil fields are
// left unchanged.
type UpdateActionRequest struct {
	Description *string
	Assignee    *store.Assignee
	DueDate     *time.Time
	Tags        []string
	Completed   *bool
}

// enrich fills the owning meeting title and person name on a copy.
func (r *Actions) enrich(a store.ActionItem) store.ActionItem {
	doc := r.store.Doc()
	for _, m := range doc.Meetings {
		if m.ID != a.MeetingID {
			continue
		}
		a.MeetingTitle = m.Title
		for _, p := range doc.Persons {
			if p.ID == m.PersonID {
				a.PersonName = p.Name
				break
			}
		}
		break
	}
	return a
}

// GetAll returns every action item enriched.
func (r *Actions) GetAll() []store.ActionItem {
	out := make([]store.ActionItem, 0, len(r.store.Doc().ActionItems))
	for _, a := range r.store.Doc().ActionItems {
		out = append(out, r.enrich(a))
	}
	return out
}

// GetByMeeting returns a meeting's action items, oldest first.
func (r *Actions) GetByMeeting(meetingID int) []store.ActionItem {
	out := []store.ActionItem{}
	for _, a := range r.store.Doc().ActionItems {
		if a.MeetingID == meetingID {
			out = append(out, a)
		}
	}
	slices.SortFunc(out, func(a, b store.ActionItem) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return out
}

// GetPending returns incomplete items sorted by due date ascending. Items
// without a due date sort after every dated item.
func (r *Actions) GetPending() []store.ActionItem {
	out := []store.ActionItem{}
	for _, a := range r.store.Doc().ActionItems {
		if !a.Completed {
			out = append(out, r.enrich(a))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		switch {
		case a.DueDate == nil:
			return false
		case b.DueDate == nil:
			return true
		default:
			return a.DueDate.Before(*b.DueDate)
		}
	})
	return out
}

// Create validates and stores a new action item.
func (r *Actions) Create(req CreateActionRequest) (store.ActionItem, error) {
	if strings.TrimSpace(req.Description) == "" {
		return store.ActionItem{}, fmt.Errorf("%w: description is required", ErrInvalidInput)
	}
	doc := r.store.Doc()
	if !slices.ContainsFunc(doc.Meetings, func(m store.Meeting) bool { return m.ID == req.MeetingID }) {
		return store.ActionItem{}, fmt.Errorf("%w: meeting %d does not exist", ErrInvalidInput, req.MeetingID)
	}

	a := store.ActionItem{
		ID:          r.store.NextID(store.EntityActionItems),
		MeetingID:   req.MeetingID,
		Description: req.Description,
		Assignee:    req.Assignee,
		DueDate:     req.DueDate,
		Tags:        req.Tags,
		CreatedAt:   r.now(),
	}
	doc.ActionItems = append(doc.ActionItems, a)
	if err := r.store.Save(); err != nil {
		return store.ActionItem{}, err
	}
	return a, nil
}

// Update applies the non-nil fields of req.
func (r *Actions) Update(id int, req UpdateActionRequest) (store.ActionItem, error) {
	doc := r.store.Doc()
	idx := slices.IndexFunc(doc.ActionItems, func(a store.ActionItem) bool { return a.ID == id })
	if idx < 0 {
		return store.ActionItem{}, fmt.Errorf("action item %d: %w", id, ErrNotFound)
	}

	a := &doc.ActionItems[idx]
	if req.Description != nil {
		if strings.TrimSpace(*req.Description) == "" {
			return store.ActionItem{}, fmt.Errorf("%w: description is required", ErrInvalidInput)
		}
		a.Description = *req.Description
	}
	if req.Assignee != nil {
		a.Assignee = *req.Assignee
	}
	if req.DueDate != nil {
		a.DueDate = req.DueDate
	}
	if req.Tags != nil {
		a.Tags = req.Tags
	}
	if req.Completed != nil {
		a.Completed = *req.Completed
	}
	if err := r.store.Save(); err != nil {
		return store.ActionItem{}, err
	}
	return *a, nil
}

// Delete removes a single action item.
func (r *Actions) Delete(id int) error {
	doc := r.store.Doc()
	before := len(doc.ActionItems)
	doc.ActionItems = slices.DeleteFunc(doc.ActionItems, func(a store.ActionItem) bool { return a.ID == id })
	if len(doc.ActionItems) == before {
		return fmt.Errorf("action item %d: %w", id, ErrNotFound)
	}
	return r.store.Save()
}

// deleteByMeeting bulk-removes a meeting's action items. Used only by
// cascade paths; the caller persists once after the full cascade.
func (r *Actions) deleteByMeeting(meetingID int) {
	doc := r.store.Doc()
	doc.ActionItems = slices.DeleteFunc(doc.ActionItems, func(a store.ActionItem) bool {
		return a.MeetingID == meetingID
	})
}

// ToggleComplete flips the completed flag and nothing else.
func (r *Actions) ToggleComplete(id int) (store.ActionItem, error) {
	doc := r.store.Doc()
	idx := slices.IndexFunc(doc.ActionItems, func(a store.ActionItem) bool { return a.ID == id })
	if idx < 0 {
		return store.ActionItem{}, fmt.Errorf("action item %d: %w", id, ErrNotFound)
	}
	doc.ActionItems[idx].Completed = !doc.ActionItems[idx].Completed
	if err := r.store.Save(); err != nil {
		return store.ActionItem{}, err
	}
	return doc.ActionItems[idx], nil
}

// GetAllTags returns every distinct non-blank tag across all action
// items, sorted.
func (r *Actions) GetAllTags() []string {
	seen := map[string]bool{}
	for _, a := range r.store.Doc().ActionItems {
		for _, tag := range a.Tags {
			if strings.TrimSpace(tag) == "" {
				continue
			}
			seen[tag] = true
		}
	}
	out := make([]string, 0, len(seen))
	for tag := range seen {
		out = append(out, tag)
	}
	slices.Sort(out)
	return out
}
