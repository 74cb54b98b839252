package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/matiin1402/InternalLinkBot/internal/domain"
	"github.com/matiin1402/InternalLinkBot/internal/registry"
	"github.com/matiin1402/InternalLinkBot/internal/repository"
)

type failingBackend struct{ err error }

func (f failingBackend) Put(context.Context, string, string, time.Duration) error { return f.err }
func (f failingBackend) Get(context.Context, string) (string, bool, error)       { return "", false, f.err }
func (f failingBackend) Delete(context.Context, string) error                    { return f.err }

func newTestManager(t *testing.T) (*Manager, *registry.Registry) {
	t.Helper()
	reg := registry.Default()
	m, err := NewManager(repository.NewMemoryStore(), reg, time.Minute)
	require.NoError(t, err)
	return m, reg
}

func mustProject(t *testing.T, reg *registry.Registry, id string) domain.Project {
	t.Helper()
	p, err := reg.Get(id)
	require.NoError(t, err)
	return p
}

func TestNewManager_ValidatesDependencies(t *testing.T) {
	_, err := NewManager(nil, registry.Default(), time.Minute)
	require.Error(t, err)

	_, err = NewManager(repository.NewMemoryStore(), nil, time.Minute)
	require.Error(t, err)

	m, err := NewManager(repository.NewMemoryStore(), registry.Default(), 0)
	require.NoError(t, err)
	require.Equal(t, defaultTTL, m.ttl)
}

func TestSelectedProject_NoSelection(t *testing.T) {
	m, _ := newTestManager(t)
	_, err := m.SelectedProject(context.Background(), domain.SessionKey{ChatID: 1, UserID: 1})
	require.ErrorIs(t, err, domain.ErrNoSelection)
}

func TestSelectProject_LastWriteWins(t *testing.T) {
	m, reg := newTestManager(t)
	ctx := context.Background()
	key := domain.SessionKey{ChatID: 1, UserID: 1}

	require.NoError(t, m.SelectProject(ctx, key, mustProject(t, reg, "caspian")))
	require.NoError(t, m.SelectProject(ctx, key, mustProject(t, reg, "plgkala")))

	p, err := m.SelectedProject(ctx, key)
	require.NoError(t, err)
	require.Equal(t, "plgkala", p.ID)
}

func TestState_Transitions(t *testing.T) {
	m, reg := newTestManager(t)
	ctx := context.Background()
	key := domain.SessionKey{ChatID: 7, UserID: 8}

	st, err := m.State(ctx, key)
	require.NoError(t, err)
	require.Equal(t, domain.StateIdle, st.Kind)

	require.NoError(t, m.SelectProject(ctx, key, mustProject(t, reg, "pooyanwood")))
	st, err = m.State(ctx, key)
	require.NoError(t, err)
	require.Equal(t, domain.StateProjectSelected, st.Kind)
	require.Equal(t, "pooyanwood", st.Project.ID)

	require.NoError(t, m.Clear(ctx, key))
	st, err = m.State(ctx, key)
	require.NoError(t, err)
	require.Equal(t, domain.StateIdle, st.Kind)
}

func TestSessions_NoCrossUserLeakage(t *testing.T) {
	m, reg := newTestManager(t)
	ctx := context.Background()
	alice := domain.SessionKey{ChatID: 1, UserID: 1}
	bob := domain.SessionKey{ChatID: 1, UserID: 2}

	require.NoError(t, m.SelectProject(ctx, alice, mustProject(t, reg, "caspian")))
	_, err := m.SelectedProject(ctx, bob)
	require.ErrorIs(t, err, domain.ErrNoSelection)

	require.NoError(t, m.Clear(ctx, bob))
	p, err := m.SelectedProject(ctx, alice)
	require.NoError(t, err)
	require.Equal(t, "caspian", p.ID)
}

func TestSelectedProject_RemovedFromRegistry(t *testing.T) {
	store := repository.NewMemoryStore()
	require.NoError(t, store.Put(context.Background(), "1:1", "gone", time.Minute))
	m, err := NewManager(store, registry.Default(), time.Minute)
	require.NoError(t, err)

	_, err = m.SelectedProject(context.Background(), domain.SessionKey{ChatID: 1, UserID: 1})
	require.ErrorIs(t, err, domain.ErrProjectNotFound)
}

func TestBackendErrors_AreWrapped(t *testing.T) {
	m, err := NewManager(failingBackend{err: errors.New("backend down")}, registry.Default(), time.Minute)
	require.NoError(t, err)
	ctx := context.Background()
	key := domain.SessionKey{ChatID: 1, UserID: 1}

	require.ErrorContains(t, m.SelectProject(ctx, key, domain.Project{ID: "caspian"}), "backend down")
	_, err = m.State(ctx, key)
	require.ErrorContains(t, err, "backend down")
	require.ErrorContains(t, m.Clear(ctx, key), "backend down")
}
