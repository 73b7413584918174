// Package app assembles the store, repositories, health engine and
// reminder scheduler behind one serialized surface. Foreground calls and
// scheduler reads share the in-memory document, so every operation takes
// the service mutex.
package app

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/oikio/oikio-mcp/internal/health"
	"github.com/oikio/oikio-mcp/internal/repo"
	"github.com/oikio/oikio-mcp/internal/store"
)

// Service is the single entry point for collaborators.
type Service struct {
	mu        sync.Mutex
	store     *store.Store
	persons   *repo.Persons
	meetings  *repo.Meetings
	actions   *repo.Actions
	templates *repo.Templates
	logger    *slog.Logger
	now       func() time.Time
}

// New builds a service over an opened store, seeds default templates if
// none exist, and backfills lastMeetingDate for legacy records.
func New(st *store.Store, logger *slog.Logger) (*Service, error) {
	s := &Service{
		store:     st,
		persons:   repo.NewPersons(st, logger),
		meetings:  repo.NewMeetings(st, logger),
		actions:   repo.NewActions(st, logger),
		templates: repo.NewTemplates(st, logger),
		logger:    logger,
		now:       time.Now,
	}
	if err := s.templates.SeedDefaults(); err != nil {
		return nil, fmt.Errorf("seeding templates: %w", err)
	}
	if n := s.meetings.BackfillLastMeetingDates(s.persons); n > 0 {
		logger.Info("backfilled last-meeting dates", "persons", n)
	}
	if err := st.Save(); err != nil {
		return nil, fmt.Errorf("persisting startup state: %w", err)
	}
	return s, nil
}

// Close flushes any pending write.
func (s *Service) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Close()
}

// Persons

func (s *Service) Persons() []store.Person {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persons.GetAll()
}

func (s *Service) Person(id int) (store.Person, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persons.GetByID(id)
}

func (s *Service) CreatePerson(req repo.CreatePersonRequest) (store.Person, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persons.Create(req)
}

func (s *Service) UpdatePerson(id int, req repo.UpdatePersonRequest) (store.Person, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persons.Update(id, req)
}

func (s *Service) DeletePerson(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persons.Delete(id, s.meetings)
}

// AttentionPerson pairs an overdue person with their health report.
type AttentionPerson struct {
	store.Person
	Health health.Report `json:"health"`
}

// PersonsNeedingAttention returns persons past their cadence goal, most
// overdue first, each with a health report attached.
func (s *Service) PersonsNeedingAttention() []AttentionPerson {
	s.mu.Lock()
	defer s.mu.Unlock()
	today := s.now()
	overdue := s.persons.GetNeedingAttention()
	out := make([]AttentionPerson, 0, len(overdue))
	for _, p := range overdue {
		out = append(out, AttentionPerson{Person: p, Health: health.Evaluate(p, today)})
	}
	return out
}

// PersonHealth evaluates one person's relationship health as of now.
func (s *Service) PersonHealth(id int) (health.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := s.persons.GetByID(id)
	if err != nil {
		return health.Report{}, err
	}
	return health.Evaluate(p, s.now()), nil
}

// Meetings

func (s *Service) Meetings() []store.Meeting {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.meetings.GetAll()
}

func (s *Service) MeetingsByPerson(personID int) []store.Meeting {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.meetings.GetByPerson(personID)
}

func (s *Service) Meeting(id int) (store.Meeting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.meetings.GetByID(id)
}

func (s *Service) CreateMeeting(req repo.CreateMeetingRequest) (store.Meeting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.meetings.Create(req, s.persons)
}

func (s *Service) UpdateMeeting(id int, req repo.UpdateMeetingRequest) (store.Meeting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.meetings.Update(id, req, s.persons)
}

func (s *Service) DeleteMeeting(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.meetings.Delete(id, s.actions, s.persons)
}

func (s *Service) UpcomingMeetings(days int) []store.Meeting {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.meetings.GetUpcoming(days)
}

func (s *Service) RecentMeetings(limit int) []store.Meeting {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.meetings.GetRecent(limit)
}

// Actions

func (s *Service) ActionItems() []store.ActionItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.actions.GetAll()
}

func (s *Service) ActionItemsByMeeting(meetingID int) []store.ActionItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.actions.GetByMeeting(meetingID)
}

func (s *Service) PendingActions() []store.ActionItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.actions.GetPending()
}

func (s *Service) CreateAction(req repo.CreateActionRequest) (store.ActionItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.actions.Create(req)
}

func (s *Service) UpdateAction(id int, req repo.UpdateActionRequest) (store.ActionItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.actions.Update(id, req)
}

func (s *Service) DeleteAction(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.actions.Delete(id)
}

func (s *Service) ToggleActionComplete(id int) (store.ActionItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.actions.ToggleComplete(id)
}

func (s *Service) ActionTags() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.actions.GetAllTags()
}

// Templates

func (s *Service) Templates() []store.Template {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.templates.GetAll()
}

func (s *Service) Template(id int) (store.Template, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.templates.GetByID(id)
}

func (s *Service) CreateTemplate(req repo.CreateTemplateRequest) (store.Template, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.templates.Create(req)
}

func (s *Service) UpdateTemplate(id int, req repo.UpdateTemplateRequest) (store.Template, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.templates.Update(id, req)
}

func (s *Service) DeleteTemplate(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.templates.Delete(id)
}

// Data

// Export serializes everything except default templates.
func (s *Service) Export() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Export()
}

// Import replaces all non-default collections wholesale, keeping the
// current default templates, and persists immediately.
func (s *Service) Import(data string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Import(data, s.templates.GetDefaults())
}

// Reset clears everything, persists, then re-seeds default templates.
func (s *Service) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.Reset(); err != nil {
		return err
	}
	if err := s.templates.SeedDefaults(); err != nil {
		return err
	}
	return s.store.SaveImmediate()
}

// Stats

// DashboardStats is the headline summary.
type DashboardStats struct {
	TotalPersons      int `json:"totalPersons"`
	MeetingsThisMonth int `json:"meetingsThisMonth"`
	PendingActions    int `json:"pendingActions"`
}

func (s *Service) Stats() DashboardStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc := s.store.Doc()
	now := s.now()
	stats := DashboardStats{TotalPersons: len(doc.Persons)}
	for _, m := range doc.Meetings {
		if m.Date.Year() == now.Year() && m.Date.Month() == now.Month() {
			stats.MeetingsThisMonth++
		}
	}
	for _, a := range doc.ActionItems {
		if !a.Completed {
			stats.PendingActions++
		}
	}
	return stats
}

// Search

// SearchResults groups matches by entity type.
type SearchResults struct {
	Persons  []store.Person     `json:"persons"`
	Meetings []store.Meeting    `json:"meetings"`
	Actions  []store.ActionItem `json:"actions"`
}

// Search performs a case-insensitive substring match across person names,
// meeting titles/notes/talking points, and action descriptions/tags.
func (s *Service) Search(query string) SearchResults {
	s.mu.Lock()
	defer s.mu.Unlock()
	q := strings.ToLower(query)
	doc := s.store.Doc()
	results := SearchResults{
		Persons:  []store.Person{},
		Meetings: []store.Meeting{},
		Actions:  []store.ActionItem{},
	}
	if strings.TrimSpace(q) == "" {
		return results
	}

	for _, p := range doc.Persons {
		if strings.Contains(strings.ToLower(p.Name), q) {
			results.Persons = append(results.Persons, p)
		}
	}
	for _, m := range doc.Meetings {
		if strings.Contains(strings.ToLower(m.Title), q) ||
			strings.Contains(strings.ToLower(m.Notes), q) ||
			strings.Contains(strings.ToLower(m.TalkingPoints), q) {
			enriched, err := s.meetings.GetByID(m.ID)
			if err == nil {
				results.Meetings = append(results.Meetings, enriched)
			}
		}
	}
	for _, a := range doc.ActionItems {
		if matchesAction(a, q) {
			results.Actions = append(results.Actions, s.enrichedAction(a.ID))
		}
	}
	return results
}

func matchesAction(a store.ActionItem, q string) bool {
	if strings.Contains(strings.ToLower(a.Description), q) {
		return true
	}
	for _, tag := range a.Tags {
		if strings.Contains(strings.ToLower(tag), q) {
			return true
		}
	}
	return false
}

func (s *Service) enrichedAction(id int) store.ActionItem {
	for _, a := range s.actions.GetAll() {
		if a.ID == id {
			return a
		}
	}
	return store.ActionItem{}
}
