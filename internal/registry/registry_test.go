package registry

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/matiin1402/InternalLinkBot/internal/domain"
)

func TestDefault_GetKnownProjects(t *testing.T) {
	r := Default()
	for _, want := range DefaultProjects() {
		got, err := r.Get(want.ID)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
}

func TestGet_UnknownProject(t *testing.T) {
	r := Default()
	_, err := r.Get("nope")
	require.ErrorIs(t, err, domain.ErrProjectNotFound)
}

func TestList_PreservesOrder(t *testing.T) {
	r, err := New(
		domain.Project{ID: "b", Name: "B", SitemapURL: "https://b.example/sitemap.xml"},
		domain.Project{ID: "a", Name: "A", SitemapURL: "https://a.example/sitemap.xml"},
	)
	require.NoError(t, err)

	list := r.List()
	require.Len(t, list, 2)
	require.Equal(t, "b", list[0].ID)
	require.Equal(t, "a", list[1].ID)

	// callers must not be able to mutate the registry through the slice
	list[0].Name = "changed"
	got, err := r.Get("b")
	require.NoError(t, err)
	require.Equal(t, "B", got.Name)
}

func TestNew_RejectsDuplicateIDs(t *testing.T) {
	_, err := New(
		domain.Project{ID: "a", Name: "A", SitemapURL: "https://a.example/sitemap.xml"},
		domain.Project{ID: "a", Name: "A2", SitemapURL: "https://a2.example/sitemap.xml"},
	)
	require.Error(t, err)
	require.Contains(t, err.Error(), "duplicate")
}

func TestNew_RejectsIncompleteProject(t *testing.T) {
	_, err := New(domain.Project{ID: "a", Name: " "})
	require.Error(t, err)
	require.Contains(t, err.Error(), "required")

	_, err = New()
	require.Error(t, err)
}
