package matcher

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/halfmoss/reelmatch/internal/catalog"
	"github.com/halfmoss/reelmatch/internal/scanner"
)

func TestMatchAllMatchesEveryItem(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "the matrix.mkv"))
	writeFile(t, filepath.Join(dir, "inception.mkv"))

	items := []*catalog.Item{
		{ID: 1, Title: "The Matrix"},
		{ID: 2, Title: "Inception"},
		{ID: 3, Title: "No Such Movie Anywhere"},
	}

	m := newTestMatcher(WithConcurrency(2))
	batch, err := m.MatchAll(context.Background(), items, catalog.FolderSet{Default: []string{dir}}, 90)
	require.NoError(t, err)
	require.Zero(t, batch.FailureCount())
	require.Len(t, batch.Results, 3)

	counts := map[int64]int{}
	for _, res := range batch.Results {
		counts[res.Item.ID] = len(res.Candidates)
	}
	require.Equal(t, 1, counts[1])
	require.Equal(t, 1, counts[2])
	require.Equal(t, 0, counts[3])
}

func TestMatchAllFiltersAssociatedPaths(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "the matrix.mkv")
	writeFile(t, path)

	items := []*catalog.Item{{
		ID:        1,
		Title:     "The Matrix",
		Materials: []catalog.Material{{ID: "m1", Path: path}},
	}}

	m := newTestMatcher()
	batch, err := m.MatchAll(context.Background(), items, catalog.FolderSet{Default: []string{dir}}, 80)
	require.NoError(t, err)
	require.Len(t, batch.Results, 1)
	require.Empty(t, batch.Results[0].Candidates)
}

func TestMatchAllUsesItemMatchedFolders(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "the matrix.mkv"))

	items := []*catalog.Item{{ID: 1, Title: "The Matrix", MatchedFolders: []string{dir}}}

	// No shared folders at all; the item's own folders carry the scan.
	m := newTestMatcher()
	batch, err := m.MatchAll(context.Background(), items, catalog.FolderSet{}, 80)
	require.NoError(t, err)
	require.Len(t, batch.Results, 1)
	require.Len(t, batch.Results[0].Candidates, 1)
}

func TestMatchAllDeduplicatesItems(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "the matrix.mkv"))

	item := &catalog.Item{ID: 1, Title: "The Matrix"}
	m := newTestMatcher()
	batch, err := m.MatchAll(context.Background(), []*catalog.Item{item, item, nil},
		catalog.FolderSet{Default: []string{dir}}, 80)
	require.NoError(t, err)
	require.Len(t, batch.Results, 1)
}

func TestMatchAllRecordsPerItemFailure(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "the matrix.mkv"))

	items := []*catalog.Item{
		{ID: 1, Title: "The Matrix", MatchedFolders: []string{dir}},
		{ID: 2}, // no titles, and nothing to scan once the shared set is empty
	}

	m := newTestMatcher()
	batch, err := m.MatchAll(context.Background(), items, catalog.FolderSet{}, 80)
	require.NoError(t, err)
	require.Len(t, batch.Results, 1)
	require.Equal(t, 1, batch.FailureCount())
	require.Equal(t, int64(2), batch.Failures[0].ItemID)
	require.ErrorIs(t, batch.Failures[0].Err, ErrInvalidInput)
}

func TestMatchAllScanErrorSurfacesAsWarning(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "the matrix.mkv"))

	// A broken subtree degrades that item's scan, not the batch.
	m := newTestMatcher()
	m.walk = func(ctx context.Context, roots []string) (*scanner.WalkResult, error) {
		for _, root := range roots {
			if root == "/broken" {
				return nil, fmt.Errorf("read %s: disk error", root)
			}
		}
		return scanner.Walk(ctx, roots)
	}

	items := []*catalog.Item{
		{ID: 1, Title: "The Matrix"},
		{ID: 2, Title: "The Matrix", MatchedFolders: []string{"/broken"}},
	}

	batch, err := m.MatchAll(context.Background(), items, catalog.FolderSet{Source: []string{dir}}, 80)
	require.NoError(t, err)
	require.Zero(t, batch.FailureCount())
	require.Len(t, batch.Results, 2)

	warnings := map[int64][]string{}
	found := map[int64]int{}
	for _, res := range batch.Results {
		warnings[res.Item.ID] = res.Warnings
		found[res.Item.ID] = len(res.Candidates)
	}
	require.Empty(t, warnings[1])
	require.NotEmpty(t, warnings[2])
	// The healthy source category still produced candidates for both.
	require.Equal(t, 1, found[1])
	require.Equal(t, 1, found[2])
}

func TestMatchAllCancelled(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "the matrix.mkv"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	items := []*catalog.Item{{ID: 1, Title: "The Matrix"}}
	m := newTestMatcher()
	batch, err := m.MatchAll(ctx, items, catalog.FolderSet{Default: []string{dir}}, 80)
	require.True(t, errors.Is(err, context.Canceled))
	require.NotNil(t, batch)
	require.Zero(t, batch.FailureCount())
	require.Empty(t, batch.Results)
}
