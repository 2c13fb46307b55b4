package settings

import (
	"context"
	"testing"

	"go-keyword-radar/internal/filter"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T, dir string, defaults []string) *Store {
	t.Helper()
	s, err := Open(dir, defaults)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestDefaults(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, t.TempDir(), nil)

	enabled, err := s.Enabled(ctx)
	require.NoError(t, err)
	assert.True(t, enabled)

	keywords, err := s.Keywords(ctx)
	require.NoError(t, err)
	assert.Equal(t, filter.DefaultKeywords, keywords)

	stored, err := s.StoredKeywords(ctx)
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestKeywordsRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, t.TempDir(), []string{"Rust"})

	got, _ := s.Keywords(ctx)
	assert.Equal(t, []string{"Rust"}, got)

	require.NoError(t, s.SetKeywords(ctx, []string{"Go", "Kafka"}))
	got, err := s.Keywords(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Go", "Kafka"}, got)

	// an empty saved list falls back to the defaults
	require.NoError(t, s.SetKeywords(ctx, nil))
	got, _ = s.Keywords(ctx)
	assert.Equal(t, []string{"Rust"}, got)

	s.SetDefaults([]string{"Elixir"})
	got, _ = s.Keywords(ctx)
	assert.Equal(t, []string{"Elixir"}, got)
}

func TestToggleSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s, err := Open(dir, nil)
	require.NoError(t, err)
	enabled, err := s.Toggle(ctx)
	require.NoError(t, err)
	assert.False(t, enabled)
	require.NoError(t, s.SetKeywords(ctx, []string{"Go"}))
	require.NoError(t, s.Close())

	reopened := openStore(t, dir, nil)
	enabled, err = reopened.Enabled(ctx)
	require.NoError(t, err)
	assert.False(t, enabled, "reopening must not re-enable the radar")

	keywords, _ := reopened.Keywords(ctx)
	assert.Equal(t, []string{"Go"}, keywords)

	enabled, err = reopened.Toggle(ctx)
	require.NoError(t, err)
	assert.True(t, enabled)
}
