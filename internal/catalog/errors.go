package catalog

import "errors"

var (
	// ErrItemNotFound means the catalog has no item with the given id.
	ErrItemNotFound = errors.New("catalog: item not found")

	// ErrDuplicateMaterial means the path is already associated with the
	// item. The existing material is left untouched.
	ErrDuplicateMaterial = errors.New("catalog: path already associated")

	// ErrRenameFailed wraps a filesystem rename rejection. Nothing was
	// changed; renames are not retried automatically.
	ErrRenameFailed = errors.New("catalog: rename failed")

	// ErrPartialSync means the filesystem rename succeeded but the catalog
	// update did not: disk and catalog are now divergent and the caller
	// must re-sync.
	ErrPartialSync = errors.New("catalog: file renamed but catalog update failed")
)
