package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/matiin1402/InternalLinkBot/internal/domain"
)

const defaultTTL = 30 * time.Minute

// Backend stores the selected project id per session key.
type Backend interface {
	Put(ctx context.Context, key string, projectID string, ttl time.Duration) error
	// Get reports ok=false when no unexpired selection exists.
	Get(ctx context.Context, key string) (projectID string, ok bool, err error)
	Delete(ctx context.Context, key string) error
}

// ProjectLookup resolves stored project ids.
type ProjectLookup interface {
	Get(id string) (domain.Project, error)
}

// Manager owns the select -> submit -> clear lifecycle of a session.
type Manager struct {
	backend  Backend
	projects ProjectLookup
	ttl      time.Duration
}

func NewManager(b Backend, projects ProjectLookup, ttl time.Duration) (*Manager, error) {
	if b == nil {
		return nil, errors.New("session: backend must not be nil")
	}
	if projects == nil {
		return nil, errors.New("session: project lookup must not be nil")
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Manager{backend: b, projects: projects, ttl: ttl}, nil
}

// SelectProject overwrites any earlier selection for key.
func (m *Manager) SelectProject(ctx context.Context, key domain.SessionKey, p domain.Project) error {
	if err := m.backend.Put(ctx, key.String(), p.ID, m.ttl); err != nil {
		return fmt.Errorf("session: select project: %w", err)
	}
	return nil
}

// SelectedProject returns the active selection or domain.ErrNoSelection.
func (m *Manager) SelectedProject(ctx context.Context, key domain.SessionKey) (domain.Project, error) {
	id, ok, err := m.backend.Get(ctx, key.String())
	if err != nil {
		return domain.Project{}, fmt.Errorf("session: load selection: %w", err)
	}
	if !ok {
		return domain.Project{}, domain.ErrNoSelection
	}
	p, err := m.projects.Get(id)
	if err != nil {
		return domain.Project{}, fmt.Errorf("session: resolve selection: %w", err)
	}
	return p, nil
}

// State returns the tagged conversation state for key.
func (m *Manager) State(ctx context.Context, key domain.SessionKey) (domain.State, error) {
	p, err := m.SelectedProject(ctx, key)
	if errors.Is(err, domain.ErrNoSelection) {
		return domain.Idle(), nil
	}
	if err != nil {
		return domain.State{}, err
	}
	return domain.ProjectSelected(p), nil
}

// Clear removes the selection. Clearing an idle session is not an error.
func (m *Manager) Clear(ctx context.Context, key domain.SessionKey) error {
	if err := m.backend.Delete(ctx, key.String()); err != nil {
		return fmt.Errorf("session: clear: %w", err)
	}
	return nil
}
