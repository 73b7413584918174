package repo

import (
	"cmp"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/oikio/oikio-mcp/internal/store"
)

// Persons is the person repository.
type Persons struct {
	store  *store.Store
	logger *slog.Logger
	now    func() time.Time
}

// NewPersons creates a person repository over the shared store.
func NewPersons(st *store.Store, logger *slog.Logger) *Persons {
	return &Persons{store: st, logger: logger, now: time.Now}
}

// CreatePersonRequest defines person creation inputs.
type CreatePersonRequest struct {
	Name                 string
	Role                 store.Role
	Email                string
	Notes                string
	MeetingFrequencyGoal store.Frequency
}

// UpdatePersonRequest defines person update inputs; nil fields are left
// unchanged. LastMeetingDate is deliberately absent: it is derived.
type UpdatePersonRequest struct {
	Name                 *string
	Role                 *store.Role
	Email                *string
	Notes                *string
	MeetingFrequencyGoal *store.Frequency
}

// GetAll returns all persons sorted by name.
func (r *Persons) GetAll() []store.Person {
	out := slices.Clone(r.store.Doc().Persons)
	slices.SortFunc(out, func(a, b store.Person) int {
		return strings.Compare(a.Name, b.Name)
	})
	return out
}

// GetByID returns a single person.
func (r *Persons) GetByID(id int) (store.Person, error) {
	for _, p := range r.store.Doc().Persons {
		if p.ID == id {
			return p, nil
		}
	}
	return store.Person{}, fmt.Errorf("person %d: %w", id, ErrNotFound)
}

// Create validates and stores a new person.
func (r *Persons) Create(req CreatePersonRequest) (store.Person, error) {
	if strings.TrimSpace(req.Name) == "" {
		return store.Person{}, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if !req.Role.Valid() {
		return store.Person{}, fmt.Errorf("%w: unknown role %q", ErrInvalidInput, req.Role)
	}
	if req.MeetingFrequencyGoal != "" && !req.MeetingFrequencyGoal.Valid() {
		return store.Person{}, fmt.Errorf("%w: unknown cadence goal %q", ErrInvalidInput, req.MeetingFrequencyGoal)
	}

	p := store.Person{
		ID:                   r.store.NextID(store.EntityPersons),
		Name:                 req.Name,
		Role:                 req.Role,
		Email:                req.Email,
		Notes:                req.Notes,
		MeetingFrequencyGoal: req.MeetingFrequencyGoal,
		CreatedAt:            r.now(),
	}
	doc := r.store.Doc()
	doc.Persons = append(doc.Persons, p)
	if err := r.store.Save(); err != nil {
		return store.Person{}, err
	}
	return p, nil
}

// Update applies the non-nil fields of req.
func (r *Persons) Update(id int, req UpdatePersonRequest) (store.Person, error) {
	doc := r.store.Doc()
	idx := slices.IndexFunc(doc.Persons, func(p store.Person) bool { return p.ID == id })
	if idx < 0 {
		return store.Person{}, fmt.Errorf("person %d: %w", id, ErrNotFound)
	}

	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		return store.Person{}, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if req.Role != nil && !req.Role.Valid() {
		return store.Person{}, fmt.Errorf("%w: unknown role %q", ErrInvalidInput, *req.Role)
	}
	if req.MeetingFrequencyGoal != nil && *req.MeetingFrequencyGoal != "" && !req.MeetingFrequencyGoal.Valid() {
		return store.Person{}, fmt.Errorf("%w: unknown cadence goal %q", ErrInvalidInput, *req.MeetingFrequencyGoal)
	}

	p := &doc.Persons[idx]
	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.Role != nil {
		p.Role = *req.Role
	}
	if req.Email != nil {
		p.Email = *req.Email
	}
	if req.Notes != nil {
		p.Notes = *req.Notes
	}
	if req.MeetingFrequencyGoal != nil {
		p.MeetingFrequencyGoal = *req.MeetingFrequencyGoal
	}
	if err := r.store.Save(); err != nil {
		return store.Person{}, err
	}
	return *p, nil
}

// Delete removes a person after cascading away their meetings (which in
// turn cascades to those meetings' action items).
func (r *Persons) Delete(id int, meetings *Meetings) error {
	doc := r.store.Doc()
	if !slices.ContainsFunc(doc.Persons, func(p store.Person) bool { return p.ID == id }) {
		return fmt.Errorf("person %d: %w", id, ErrNotFound)
	}
	meetings.deleteByPerson(id)
	doc.Persons = slices.DeleteFunc(doc.Persons, func(p store.Person) bool { return p.ID == id })
	r.logger.Info("deleted person", "person_id", id)
	return r.store.Save()
}

// updateLastMeetingDate sets the derived field. Only the meeting
// repository calls this.
func (r *Persons) updateLastMeetingDate(personID int, date *time.Time) {
	doc := r.store.Doc()
	idx := slices.IndexFunc(doc.Persons, func(p store.Person) bool { return p.ID == personID })
	if idx >= 0 {
		doc.Persons[idx].LastMeetingDate = date
	}
}

// GetNeedingAttention returns persons with a cadence goal whose
// days-since-last-meeting meet or exceed the goal's threshold. A person
// with a goal who has never met is always included. Most overdue first;
// never-met sorts ahead of everyone.
func (r *Persons) GetNeedingAttention() []store.Person {
	today := startOfDay(r.now())
	var out []store.Person
	for _, p := range r.store.Doc().Persons {
		if p.MeetingFrequencyGoal == "" {
			continue
		}
		if p.LastMeetingDate == nil {
			out = append(out, p)
			continue
		}
		if daysBetween(*p.LastMeetingDate, today) >= p.MeetingFrequencyGoal.Days() {
			out = append(out, p)
		}
	}
	slices.SortFunc(out, func(a, b store.Person) int {
		return cmp.Compare(lastMeetingUnix(a), lastMeetingUnix(b))
	})
	return out
}

// lastMeetingUnix treats never-met as epoch zero so it sorts first.
func lastMeetingUnix(p store.Person) int64 {
	if p.LastMeetingDate == nil {
		return 0
	}
	return p.LastMeetingDate.Unix()
}
