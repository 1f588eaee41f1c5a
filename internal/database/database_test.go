package database

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/halfmoss/reelmatch/internal/catalog"
	"github.com/halfmoss/reelmatch/internal/scanner"
)

// setupTestDB creates a temporary database for testing
func setupTestDB(t *testing.T) *CatalogDB {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	db, err := OpenPath(dbPath)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return db
}

func TestDatabaseOpenClose(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	db, err := OpenPath(dbPath)
	require.NoError(t, err)
	require.Equal(t, dbPath, db.Path())
	require.NoError(t, db.Close())

	// Reopening an existing database replays no migrations.
	db, err = OpenPath(dbPath)
	require.NoError(t, err)
	require.NoError(t, db.Close())
}

func TestCreateAndGetItem(t *testing.T) {
	db := setupTestDB(t)

	tmdbID := int64(616037)
	item := &catalog.Item{
		Title:         "The Wandering Earth",
		OriginalTitle: "流浪地球",
		Year:          "2019",
		TmdbID:        &tmdbID,
		Aliases:       []string{"Wandering Earth", "流浪地球1"},
	}
	require.NoError(t, db.CreateItem(item))
	require.NotZero(t, item.ID)

	loaded, err := db.GetItem(item.ID)
	require.NoError(t, err)
	require.Equal(t, "The Wandering Earth", loaded.Title)
	require.Equal(t, "流浪地球", loaded.OriginalTitle)
	require.Equal(t, "2019", loaded.Year)
	require.NotNil(t, loaded.TmdbID)
	require.Equal(t, tmdbID, *loaded.TmdbID)
	require.Equal(t, []string{"Wandering Earth", "流浪地球1"}, loaded.Aliases)
	require.Empty(t, loaded.Materials)
}

func TestGetItemNotFound(t *testing.T) {
	db := setupTestDB(t)

	_, err := db.GetItem(42)
	require.ErrorIs(t, err, catalog.ErrItemNotFound)
}

func TestGetAllItemsNewestFirst(t *testing.T) {
	db := setupTestDB(t)

	first := &catalog.Item{Title: "First"}
	second := &catalog.Item{Title: "Second"}
	require.NoError(t, db.CreateItem(first))
	require.NoError(t, db.CreateItem(second))

	items, err := db.GetAllItems()
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, "Second", items[0].Title)
	require.Equal(t, "First", items[1].Title)
}

func TestUpdateItem(t *testing.T) {
	db := setupTestDB(t)

	item := &catalog.Item{Title: "Old Title", Aliases: []string{"a"}}
	require.NoError(t, db.CreateItem(item))

	item.Title = "New Title"
	item.Aliases = []string{"b", "c"}
	require.NoError(t, db.UpdateItem(item))

	loaded, err := db.GetItem(item.ID)
	require.NoError(t, err)
	require.Equal(t, "New Title", loaded.Title)
	require.Equal(t, []string{"b", "c"}, loaded.Aliases)

	missing := &catalog.Item{ID: 9999, Title: "Nobody"}
	require.ErrorIs(t, db.UpdateItem(missing), catalog.ErrItemNotFound)
}

func TestDeleteItemCascades(t *testing.T) {
	db := setupTestDB(t)

	item := &catalog.Item{Title: "Doomed", Aliases: []string{"d"}}
	require.NoError(t, db.CreateItem(item))
	require.NoError(t, db.AddMaterial(item.ID, catalog.Material{
		ID: "m1", Name: "a.mkv", Path: "/a.mkv", Size: "1",
		FileType: scanner.FileTypeVideo, Category: catalog.CategoryDefault,
		AddedAt: time.Now(),
	}))
	require.NoError(t, db.AppendMatchedFolders(item.ID, []string{"/folder"}))

	require.NoError(t, db.DeleteItem(item.ID))

	_, err := db.GetItem(item.ID)
	require.ErrorIs(t, err, catalog.ErrItemNotFound)
}

func TestAddMaterial(t *testing.T) {
	db := setupTestDB(t)

	item := &catalog.Item{Title: "The Matrix"}
	require.NoError(t, db.CreateItem(item))

	modified := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, db.AddMaterial(item.ID, catalog.Material{
		ID:           "m1",
		Name:         "the matrix.mkv",
		Path:         "/library/the matrix.mkv",
		Size:         "734003200",
		FileType:     scanner.FileTypeVideo,
		Category:     catalog.CategorySource,
		AddedAt:      time.Now(),
		ModifiedTime: modified,
	}))

	loaded, err := db.GetItem(item.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Materials, 1)

	m := loaded.Materials[0]
	require.Equal(t, "m1", m.ID)
	require.Equal(t, "734003200", m.Size)
	require.Equal(t, scanner.FileTypeVideo, m.FileType)
	require.Equal(t, catalog.CategorySource, m.Category)
	require.True(t, m.ModifiedTime.Equal(modified))
}

func TestAddMaterialDuplicatePath(t *testing.T) {
	db := setupTestDB(t)

	item := &catalog.Item{Title: "The Matrix"}
	require.NoError(t, db.CreateItem(item))

	material := catalog.Material{ID: "m1", Name: "a.mkv", Path: "/a.mkv", AddedAt: time.Now()}
	require.NoError(t, db.AddMaterial(item.ID, material))

	material.ID = "m2"
	err := db.AddMaterial(item.ID, material)
	require.ErrorIs(t, err, catalog.ErrDuplicateMaterial)

	loaded, err := db.GetItem(item.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Materials, 1)
	require.Equal(t, "m1", loaded.Materials[0].ID)
}

func TestAddMaterialMissingItem(t *testing.T) {
	db := setupTestDB(t)

	err := db.AddMaterial(123, catalog.Material{ID: "m1", Path: "/a.mkv", AddedAt: time.Now()})
	require.ErrorIs(t, err, catalog.ErrItemNotFound)
}

func TestRemoveMaterialIdempotent(t *testing.T) {
	db := setupTestDB(t)

	item := &catalog.Item{Title: "The Matrix"}
	require.NoError(t, db.CreateItem(item))
	require.NoError(t, db.AddMaterial(item.ID, catalog.Material{
		ID: "m1", Path: "/a.mkv", AddedAt: time.Now(),
	}))

	require.NoError(t, db.RemoveMaterial(item.ID, "m1"))
	require.NoError(t, db.RemoveMaterial(item.ID, "m1"))

	loaded, err := db.GetItem(item.ID)
	require.NoError(t, err)
	require.Empty(t, loaded.Materials)
}

func TestUpdateMaterialPath(t *testing.T) {
	db := setupTestDB(t)

	item := &catalog.Item{Title: "The Matrix"}
	require.NoError(t, db.CreateItem(item))
	require.NoError(t, db.AddMaterial(item.ID, catalog.Material{
		ID: "m1", Name: "old.mkv", Path: "/old.mkv", AddedAt: time.Now(),
	}))

	require.NoError(t, db.UpdateMaterialPath(item.ID, "/old.mkv", "new.mkv", "/new.mkv"))

	loaded, err := db.GetItem(item.ID)
	require.NoError(t, err)
	require.Equal(t, "new.mkv", loaded.Materials[0].Name)
	require.Equal(t, "/new.mkv", loaded.Materials[0].Path)

	// Updating a path nobody has is a no-op.
	require.NoError(t, db.UpdateMaterialPath(item.ID, "/gone.mkv", "x", "/x"))
}

func TestAppendMatchedFolders(t *testing.T) {
	db := setupTestDB(t)

	item := &catalog.Item{Title: "The Matrix"}
	require.NoError(t, db.CreateItem(item))

	require.NoError(t, db.AppendMatchedFolders(item.ID, []string{"/a", "/b"}))
	require.NoError(t, db.AppendMatchedFolders(item.ID, []string{"/b", "/c"}))

	loaded, err := db.GetItem(item.ID)
	require.NoError(t, err)
	require.Equal(t, []string{"/a", "/b", "/c"}, loaded.MatchedFolders)

	require.ErrorIs(t, db.AppendMatchedFolders(999, []string{"/x"}), catalog.ErrItemNotFound)
}

func TestOpenInMemory(t *testing.T) {
	db, err := OpenInMemory()
	require.NoError(t, err)
	defer db.Close()

	item := &catalog.Item{Title: "The Matrix"}
	require.NoError(t, db.CreateItem(item))

	loaded, err := db.GetItem(item.ID)
	require.NoError(t, err)
	require.Equal(t, "The Matrix", loaded.Title)
}
