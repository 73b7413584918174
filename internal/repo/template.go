package repo

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/oikio/oikio-mcp/internal/store"
)

// defaultTemplates is the fixed system-seeded set.
var defaultTemplates = []store.Template{
	{
		Name:        "Weekly Sync",
		Description: "For regular weekly 1:1 meetings",
		Content:     "## This Week\n- \n\n## Blockers\n- \n\n## Next Week\n- ",
	},
	{
		Name:        "Performance Review",
		Description: "For performance review conversations",
		Content:     "## Wins\n- \n\n## Growth Areas\n- \n\n## Goals\n- \n\n## Feedback\n- ",
	},
	{
		Name:        "Career Conversation",
		Description: "For career development and goals",
		Content:     "## Short-Term Goals\n- \n\n## Long-Term Goals\n- \n\n## Development Plan\n- \n\n## Support Needed\n- ",
	},
}

// Templates is the note-template repository.
type Templates struct {
	store  *store.Store
	logger *slog.Logger
}

// NewTemplates creates a template repository over the shared store.
func NewTemplates(st *store.Store, logger *slog.Logger) *Templates {
	return &Templates{store: st, logger: logger}
}

// CreateTemplateRequest defines template creation inputs.
type CreateTemplateRequest struct {
	Name        string
	Description string
	Content     string
}

// UpdateTemplateRequest defines template update inputs; nil fields are
// left unchanged.
type UpdateTemplateRequest struct {
	Name        *string
	Description *string
	Content     *string
}

// SeedDefaults inserts the default template set unless any default
// template already exists. Runs once at startup, after store load and
// before any consumer reads templates.
func (r *Templates) SeedDefaults() error {
	doc := r.store.Doc()
	if slices.ContainsFunc(doc.Templates, func(t store.Template) bool { return t.IsDefault }) {
		return nil
	}
	for _, t := range defaultTemplates {
		t.ID = r.store.NextID(store.EntityTemplates)
		t.IsDefault = true
		doc.Templates = append(doc.Templates, t)
	}
	r.logger.Info("seeded default templates", "count", len(defaultTemplates))
	return r.store.Save()
}

// GetAll returns all templates, defaults first, then by name.
func (r *Templates) GetAll() []store.Template {
	out := slices.Clone(r.store.Doc().Templates)
	slices.SortFunc(out, func(a, b store.Template) int {
		if a.IsDefault != b.IsDefault {
			if a.IsDefault {
				return -1
			}
			return 1
		}
		return strings.Compare(a.Name, b.Name)
	})
	return out
}

// GetByID returns a single template.
func (r *Templates) GetByID(id int) (store.Template, error) {
	for _, t := range r.store.Doc().Templates {
		if t.ID == id {
			return t, nil
		}
	}
	return store.Template{}, fmt.Errorf("template %d: %w", id, ErrNotFound)
}

// Create validates and stores a new user template.
func (r *Templates) Create(req CreateTemplateRequest) (store.Template, error) {
	if strings.TrimSpace(req.Name) == "" {
		return store.Template{}, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	t := store.Template{
		ID:          r.store.NextID(store.EntityTemplates),
		Name:        req.Name,
		Description: req.Description,
		Content:     req.Content,
	}
	doc := r.store.Doc()
	doc.Templates = append(doc.Templates, t)
	if err := r.store.Save(); err != nil {
		return store.Template{}, err
	}
	return t, nil
}

// Update applies the non-nil fields of req.
func (r *Templates) Update(id int, req UpdateTemplateRequest) (store.Template, error) {
	doc := r.store.Doc()
	idx := slices.IndexFunc(doc.Templates, func(t store.Template) bool { return t.ID == id })
	if idx < 0 {
		return store.Template{}, fmt.Errorf("template %d: %w", id, ErrNotFound)
	}
	t := &doc.Templates[idx]
	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return store.Template{}, fmt.Errorf("%w: name is required", ErrInvalidInput)
		}
		t.Name = *req.Name
	}
	if req.Description != nil {
		t.Description = *req.Description
	}
	if req.Content != nil {
		t.Content = *req.Content
	}
	if err := r.store.Save(); err != nil {
		return store.Template{}, err
	}
	return *t, nil
}

// Delete removes a template. Meetings keep their templateId reference;
// it is nullable and may dangle. Deleted defaults come back on the next
// startup seed pass.
func (r *Templates) Delete(id int) error {
	doc := r.store.Doc()
	before := len(doc.Templates)
	doc.Templates = slices.DeleteFunc(doc.Templates, func(t store.Template) bool { return t.ID == id })
	if len(doc.Templates) == before {
		return fmt.Errorf("template %d: %w", id, ErrNotFound)
	}
	return r.store.Save()
}

// GetDefaults returns the current default templates.
func (r *Templates) GetDefaults() []store.Template {
	out := []store.Template{}
	for _, t := range r.store.Doc().Templates {
		if t.IsDefault {
			out = append(out, t)
		}
	}
	return out
}
