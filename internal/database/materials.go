package database

import (
	"database/sql"

	"github.com/halfmoss/reelmatch/internal/catalog"
)

// AddMaterial links a material to an item. At most one material may exist
// per distinct path within an item; duplicates are rejected with
// catalog.ErrDuplicateMaterial and the existing row is left unchanged.
func (c *CatalogDB) AddMaterial(itemID int64, m catalog.Material) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var exists int
	err := c.db.QueryRow(`SELECT 1 FROM items WHERE id = ?`, itemID).Scan(&exists)
	if err == sql.ErrNoRows {
		return catalog.ErrItemNotFound
	}
	if err != nil {
		return err
	}

	err = c.db.QueryRow(
		`SELECT 1 FROM materials WHERE item_id = ? AND path = ?`, itemID, m.Path,
	).Scan(&exists)
	if err == nil {
		return catalog.ErrDuplicateMaterial
	}
	if err != sql.ErrNoRows {
		return err
	}

	var modified interface{}
	if !m.ModifiedTime.IsZero() {
		modified = m.ModifiedTime
	}

	_, err = c.db.Exec(
		`INSERT INTO materials (id, item_id, name, path, size, file_type, category, added_at, modified_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, itemID, m.Name, m.Path, m.Size, string(m.FileType), string(m.Category),
		m.AddedAt, modified,
	)
	return err
}

// RemoveMaterial removes a material by id. Removing an absent id is a
// no-op so the operation is idempotent.
func (c *CatalogDB) RemoveMaterial(itemID int64, materialID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, err := c.db.Exec(
		`DELETE FROM materials WHERE item_id = ? AND id = ?`, itemID, materialID)
	return err
}

// UpdateMaterialPath updates name and path together for the material
// currently at oldPath. No material at oldPath is a no-op: rename
// propagation only applies when an association exists.
func (c *CatalogDB) UpdateMaterialPath(itemID int64, oldPath, newName, newPath string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, err := c.db.Exec(
		`UPDATE materials SET name = ?, path = ? WHERE item_id = ? AND path = ?`,
		newName, newPath, itemID, oldPath)
	return err
}

// AppendMatchedFolders appends folders not already recorded for the item,
// preserving insertion order across calls.
func (c *CatalogDB) AppendMatchedFolders(itemID int64, folders []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var exists int
	err := c.db.QueryRow(`SELECT 1 FROM items WHERE id = ?`, itemID).Scan(&exists)
	if err == sql.ErrNoRows {
		return catalog.ErrItemNotFound
	}
	if err != nil {
		return err
	}

	var next int
	err = c.db.QueryRow(
		`SELECT COALESCE(MAX(position), -1) + 1 FROM matched_folders WHERE item_id = ?`,
		itemID,
	).Scan(&next)
	if err != nil {
		return err
	}

	for _, folder := range folders {
		result, err := c.db.Exec(
			`INSERT OR IGNORE INTO matched_folders (item_id, path, position) VALUES (?, ?, ?)`,
			itemID, folder, next,
		)
		if err != nil {
			return err
		}
		if affected, err := result.RowsAffected(); err == nil && affected > 0 {
			next++
		}
	}
	return nil
}
