package resume

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func newCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := NewCatalog(filepath.Join(t.TempDir(), "nested", "resumes.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestCatalogCreateGetList(t *testing.T) {
	t.Parallel()

	c := newCatalog(t)
	ctx := context.Background()

	first, err := c.Create(ctx, "  Platform CV ", map[string]string{"focus": "go", " ": "dropped"})
	require.NoError(t, err)
	require.NotEmpty(t, first.ID)
	require.Equal(t, "Platform CV", first.Title)
	require.Equal(t, map[string]string{"focus": "go"}, first.Tags)

	second, err := c.Create(ctx, "Frontend CV", nil)
	require.NoError(t, err)
	require.Nil(t, second.Tags)

	got, err := c.Get(ctx, first.ID)
	require.NoError(t, err)
	require.Equal(t, "Platform CV", got.Title)
	require.Equal(t, "go", got.Tags["focus"])

	all, err := c.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, first.ID, all[0].ID)

	_, err = c.Create(ctx, "   ", nil)
	require.ErrorIs(t, err, ErrTitleRequired)
}

func TestCatalogResolveAndDelete(t *testing.T) {
	t.Parallel()

	c := newCatalog(t)
	ctx := context.Background()

	r, err := c.Create(ctx, "SRE resume", nil)
	require.NoError(t, err)

	title, ok := c.ResolveTitle(ctx, r.ID)
	require.True(t, ok)
	require.Equal(t, "SRE resume", title)

	require.NoError(t, c.DeleteResume(ctx, r.ID))
	require.NoError(t, c.DeleteResume(ctx, r.ID))

	_, ok = c.ResolveTitle(ctx, r.ID)
	require.False(t, ok)
	_, err = c.Get(ctx, r.ID)
	require.True(t, errors.Is(err, ErrNotFound))
}
