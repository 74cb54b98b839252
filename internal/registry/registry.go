package registry

import (
	"errors"
	"fmt"
	"strings"

	"github.com/matiin1402/InternalLinkBot/internal/domain"
)

// Registry is the static, ordered table of projects offered in the menu.
type Registry struct {
	projects []domain.Project
	byID     map[string]int
}

// New builds a Registry preserving the given order. IDs must be unique and
// every field non-empty.
func New(projects ...domain.Project) (*Registry, error) {
	if len(projects) == 0 {
		return nil, errors.New("registry: at least one project is required")
	}
	r := &Registry{
		projects: make([]domain.Project, 0, len(projects)),
		byID:     make(map[string]int, len(projects)),
	}
	for i, p := range projects {
		p.ID = strings.TrimSpace(p.ID)
		p.Name = strings.TrimSpace(p.Name)
		p.SitemapURL = strings.TrimSpace(p.SitemapURL)
		if p.ID == "" || p.Name == "" || p.SitemapURL == "" {
			return nil, fmt.Errorf("registry: project %d: id, name and sitemap_url are required", i)
		}
		if _, dup := r.byID[p.ID]; dup {
			return nil, fmt.Errorf("registry: duplicate project id %q", p.ID)
		}
		r.byID[p.ID] = len(r.projects)
		r.projects = append(r.projects, p)
	}
	return r, nil
}

// Default returns the built-in project table.
func Default() *Registry {
	r, err := New(DefaultProjects()...)
	if err != nil {
		panic(err)
	}
	return r
}

func DefaultProjects() []domain.Project {
	return []domain.Project{
		{ID: "caspian", Name: "کاسپین ترخیص", SitemapURL: "https://caspiantarkhis.com/post-sitemap.xml"},
		{ID: "pooyanwood", Name: "پویان وود", SitemapURL: "https://pooyanwood.com/post-sitemap.xml"},
		{ID: "bardiyawood", Name: "بردیاچوب", SitemapURL: "https://bardiyawood.com/post-sitemap.xml"},
		{ID: "electrorasa", Name: "الکترورسا", SitemapURL: "https://electrorasa.com/post-sitemap.xml"},
		{ID: "plgkala", Name: "پی ال جی کالا", SitemapURL: "https://plgkala.com/post-sitemap.xml"},
	}
}

// List returns the projects in registration order.
func (r *Registry) List() []domain.Project {
	out := make([]domain.Project, len(r.projects))
	copy(out, r.projects)
	return out
}

// Get returns the project with the given id or domain.ErrProjectNotFound.
func (r *Registry) Get(id string) (domain.Project, error) {
	idx, ok := r.byID[strings.TrimSpace(id)]
	if !ok {
		return domain.Project{}, fmt.Errorf("registry: %q: %w", id, domain.ErrProjectNotFound)
	}
	return r.projects[idx], nil
}
