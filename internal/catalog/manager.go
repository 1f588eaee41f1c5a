package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Store is the persistence contract the manager needs. Each call is assumed
// atomic; the implementation in internal/database satisfies it.
type Store interface {
	GetItem(id int64) (*Item, error)
	AddMaterial(itemID int64, m Material) error
	RemoveMaterial(itemID int64, materialID string) error
	UpdateMaterialPath(itemID int64, oldPath, newName, newPath string) error
	AppendMatchedFolders(itemID int64, folders []string) error
}

// FS is the filesystem capability the manager needs for renames.
type FS interface {
	Rename(oldPath, newPath string) error
}

type osFS struct{}

func (osFS) Rename(oldPath, newPath string) error {
	return os.Rename(oldPath, newPath)
}

// Manager converts confirmed match candidates into persisted materials and
// keeps them valid across file renames.
type Manager struct {
	store Store
	fs    FS
	now   func() time.Time
}

// Option configures a Manager.
type Option func(*Manager)

// WithFS overrides the filesystem used for renames.
func WithFS(fs FS) Option {
	return func(m *Manager) { m.fs = fs }
}

// WithClock overrides the clock used for material timestamps.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// NewManager creates a Manager backed by the given store.
func NewManager(store Store, opts ...Option) *Manager {
	m := &Manager{
		store: store,
		fs:    osFS{},
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Associate converts a candidate into a persisted material. The candidate
// key is reused as the material id when present; otherwise a fresh token is
// generated. Returns ErrDuplicateMaterial when the path is already linked.
func (m *Manager) Associate(itemID int64, c Candidate) (*Material, error) {
	id := c.Key
	if strings.TrimSpace(id) == "" {
		id = uuid.NewString()
	}

	mat := Material{
		ID:           id,
		Name:         c.Name,
		Path:         c.Path,
		Size:         c.Size,
		FileType:     c.FileType,
		Category:     c.Category,
		AddedAt:      m.now(),
		ModifiedTime: c.ModifiedTime,
	}

	if err := m.store.AddMaterial(itemID, mat); err != nil {
		return nil, err
	}
	return &mat, nil
}

// RemoveMaterial removes a material by id. Removing an id that does not
// exist is a no-op, not an error.
func (m *Manager) RemoveMaterial(itemID int64, materialID string) error {
	return m.store.RemoveMaterial(itemID, materialID)
}

// RenamePropagate renames the file at oldPath to newName within its
// directory, then updates any material with that path so the association
// stays valid. The extension is preserved when newName omits it. The
// filesystem rename happens before the catalog update; if the rename
// succeeds but persistence then fails, ErrPartialSync is returned so the
// caller knows disk and catalog are divergent.
func (m *Manager) RenamePropagate(itemID int64, oldPath, newName string) (string, error) {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return "", fmt.Errorf("%w: empty new name", ErrRenameFailed)
	}

	ext := filepath.Ext(oldPath)
	if ext != "" && !strings.EqualFold(filepath.Ext(newName), ext) {
		newName += ext
	}

	newPath := filepath.Join(filepath.Dir(oldPath), newName)
	if newPath == oldPath {
		return newPath, nil
	}

	if err := m.fs.Rename(oldPath, newPath); err != nil {
		return "", fmt.Errorf("%w: %v", ErrRenameFailed, err)
	}

	if err := m.store.UpdateMaterialPath(itemID, oldPath, newName, newPath); err != nil {
		return newPath, fmt.Errorf("%w: %v", ErrPartialSync, err)
	}

	return newPath, nil
}

// MergeMatchedFolders appends folders not already in the item's
// matched_folders, preserving insertion order. Calling it twice with the
// same list is equivalent to calling it once.
func (m *Manager) MergeMatchedFolders(itemID int64, folders []string) error {
	if len(folders) == 0 {
		return nil
	}
	return m.store.AppendMatchedFolders(itemID, folders)
}
