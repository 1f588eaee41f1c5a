package catalog

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	items      map[int64]*Item
	updateErr  error
	appendLog  [][]string
	updateCall struct {
		oldPath, newName, newPath string
	}
}

func newFakeStore(items ...*Item) *fakeStore {
	s := &fakeStore{items: map[int64]*Item{}}
	for _, item := range items {
		s.items[item.ID] = item
	}
	return s
}

func (s *fakeStore) GetItem(id int64) (*Item, error) {
	item, ok := s.items[id]
	if !ok {
		return nil, ErrItemNotFound
	}
	return item, nil
}

func (s *fakeStore) AddMaterial(itemID int64, m Material) error {
	item, ok := s.items[itemID]
	if !ok {
		return ErrItemNotFound
	}
	if item.HasMaterialPath(m.Path) {
		return ErrDuplicateMaterial
	}
	item.Materials = append(item.Materials, m)
	return nil
}

func (s *fakeStore) RemoveMaterial(itemID int64, materialID string) error {
	item, ok := s.items[itemID]
	if !ok {
		return nil
	}
	kept := item.Materials[:0]
	for _, m := range item.Materials {
		if m.ID != materialID {
			kept = append(kept, m)
		}
	}
	item.Materials = kept
	return nil
}

func (s *fakeStore) UpdateMaterialPath(itemID int64, oldPath, newName, newPath string) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	s.updateCall.oldPath = oldPath
	s.updateCall.newName = newName
	s.updateCall.newPath = newPath
	item, ok := s.items[itemID]
	if !ok {
		return nil
	}
	for i := range item.Materials {
		if item.Materials[i].Path == oldPath {
			item.Materials[i].Name = newName
			item.Materials[i].Path = newPath
		}
	}
	return nil
}

func (s *fakeStore) AppendMatchedFolders(itemID int64, folders []string) error {
	s.appendLog = append(s.appendLog, folders)
	item, ok := s.items[itemID]
	if !ok {
		return ErrItemNotFound
	}
	existing := map[string]bool{}
	for _, f := range item.MatchedFolders {
		existing[f] = true
	}
	for _, f := range folders {
		if !existing[f] {
			item.MatchedFolders = append(item.MatchedFolders, f)
			existing[f] = true
		}
	}
	return nil
}

type fakeFS struct {
	renames map[string]string
	err     error
}

func (f *fakeFS) Rename(oldPath, newPath string) error {
	if f.err != nil {
		return f.err
	}
	if f.renames == nil {
		f.renames = map[string]string{}
	}
	f.renames[oldPath] = newPath
	return nil
}

func TestAssociate(t *testing.T) {
	store := newFakeStore(&Item{ID: 1, Title: "The Matrix"})
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	manager := NewManager(store, WithClock(func() time.Time { return fixed }))

	material, err := manager.Associate(1, Candidate{
		Key:  "/library/the matrix.mkv",
		Name: "the matrix.mkv",
		Path: "/library/the matrix.mkv",
		Size: "1024",
	})
	require.NoError(t, err)
	require.Equal(t, "/library/the matrix.mkv", material.ID)
	require.Equal(t, fixed, material.AddedAt)
	require.True(t, store.items[1].HasMaterialPath("/library/the matrix.mkv"))
}

func TestAssociateGeneratesIDWhenKeyEmpty(t *testing.T) {
	store := newFakeStore(&Item{ID: 1})
	manager := NewManager(store)

	material, err := manager.Associate(1, Candidate{Name: "a.mkv", Path: "/a.mkv"})
	require.NoError(t, err)
	require.NotEmpty(t, material.ID)
}

func TestAssociateDuplicatePath(t *testing.T) {
	store := newFakeStore(&Item{ID: 1})
	manager := NewManager(store)

	_, err := manager.Associate(1, Candidate{Name: "a.mkv", Path: "/a.mkv"})
	require.NoError(t, err)

	_, err = manager.Associate(1, Candidate{Name: "a.mkv", Path: "/a.mkv"})
	require.ErrorIs(t, err, ErrDuplicateMaterial)
	require.Len(t, store.items[1].Materials, 1)
}

func TestRemoveMaterialIdempotent(t *testing.T) {
	store := newFakeStore(&Item{ID: 1, Materials: []Material{{ID: "m1", Path: "/a.mkv"}}})
	manager := NewManager(store)

	require.NoError(t, manager.RemoveMaterial(1, "m1"))
	require.Empty(t, store.items[1].Materials)

	// Second removal of the same id is a no-op.
	require.NoError(t, manager.RemoveMaterial(1, "m1"))
}

func TestRenamePropagate(t *testing.T) {
	store := newFakeStore(&Item{ID: 1, Materials: []Material{
		{ID: "m1", Name: "old.mkv", Path: "/library/old.mkv"},
	}})
	fs := &fakeFS{}
	manager := NewManager(store, WithFS(fs))

	newPath, err := manager.RenamePropagate(1, "/library/old.mkv", "The Matrix (1999)")
	require.NoError(t, err)
	require.Equal(t, "/library/The Matrix (1999).mkv", newPath)
	require.Equal(t, newPath, fs.renames["/library/old.mkv"])
	require.Equal(t, "The Matrix (1999).mkv", store.updateCall.newName)
	require.True(t, store.items[1].HasMaterialPath(newPath))
	require.False(t, store.items[1].HasMaterialPath("/library/old.mkv"))
}

func TestRenamePropagateKeepsExplicitExtension(t *testing.T) {
	store := newFakeStore(&Item{ID: 1})
	fs := &fakeFS{}
	manager := NewManager(store, WithFS(fs))

	newPath, err := manager.RenamePropagate(1, "/library/old.mkv", "new.mkv")
	require.NoError(t, err)
	require.Equal(t, "/library/new.mkv", newPath)
}

func TestRenamePropagateEmptyName(t *testing.T) {
	manager := NewManager(newFakeStore(&Item{ID: 1}), WithFS(&fakeFS{}))

	_, err := manager.RenamePropagate(1, "/library/old.mkv", "   ")
	require.ErrorIs(t, err, ErrRenameFailed)
}

func TestRenamePropagateSameName(t *testing.T) {
	fs := &fakeFS{}
	manager := NewManager(newFakeStore(&Item{ID: 1}), WithFS(fs))

	newPath, err := manager.RenamePropagate(1, "/library/old.mkv", "old")
	require.NoError(t, err)
	require.Equal(t, "/library/old.mkv", newPath)
	require.Empty(t, fs.renames)
}

func TestRenamePropagateFilesystemFailure(t *testing.T) {
	store := newFakeStore(&Item{ID: 1, Materials: []Material{
		{ID: "m1", Name: "old.mkv", Path: "/library/old.mkv"},
	}})
	fs := &fakeFS{err: fmt.Errorf("read-only filesystem")}
	manager := NewManager(store, WithFS(fs))

	_, err := manager.RenamePropagate(1, "/library/old.mkv", "new")
	require.ErrorIs(t, err, ErrRenameFailed)
	// Nothing changed in the catalog.
	require.True(t, store.items[1].HasMaterialPath("/library/old.mkv"))
}

func TestRenamePropagatePartialSync(t *testing.T) {
	store := newFakeStore(&Item{ID: 1, Materials: []Material{
		{ID: "m1", Name: "old.mkv", Path: "/library/old.mkv"},
	}})
	store.updateErr = errors.New("database is locked")
	fs := &fakeFS{}
	manager := NewManager(store, WithFS(fs))

	newPath, err := manager.RenamePropagate(1, "/library/old.mkv", "new")
	require.ErrorIs(t, err, ErrPartialSync)
	// The rename went through on disk; the caller gets the new path so it
	// can repair the association.
	require.Equal(t, "/library/new.mkv", newPath)
	require.Equal(t, newPath, fs.renames["/library/old.mkv"])
}

func TestMergeMatchedFoldersIdempotent(t *testing.T) {
	store := newFakeStore(&Item{ID: 1, MatchedFolders: []string{"/a"}})
	manager := NewManager(store)

	require.NoError(t, manager.MergeMatchedFolders(1, []string{"/a", "/b"}))
	require.NoError(t, manager.MergeMatchedFolders(1, []string{"/a", "/b"}))
	require.Equal(t, []string{"/a", "/b"}, store.items[1].MatchedFolders)

	// Empty input never touches the store.
	calls := len(store.appendLog)
	require.NoError(t, manager.MergeMatchedFolders(1, nil))
	require.Equal(t, calls, len(store.appendLog))
}
