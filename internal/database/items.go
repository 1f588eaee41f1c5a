package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/halfmoss/reelmatch/internal/catalog"
	"github.com/halfmoss/reelmatch/internal/scanner"
)

// CreateItem inserts a new catalog item, assigns its id, and stores any
// aliases. The id is immutable after creation.
func (c *CatalogDB) CreateItem(item *catalog.Item) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	if item.CreatedAt.IsZero() {
		item.CreatedAt = now
	}
	item.UpdatedAt = now

	result, err := c.db.Exec(
		`INSERT INTO items (title, original_title, year, tmdb_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		item.Title, item.OriginalTitle, item.Year, item.TmdbID, item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		return err
	}

	item.ID, err = result.LastInsertId()
	if err != nil {
		return err
	}

	return c.replaceAliasesLocked(item.ID, item.Aliases)
}

// GetItem loads an item with its aliases, matched folders, and materials.
// Returns catalog.ErrItemNotFound when the id does not exist.
func (c *CatalogDB) GetItem(id int64) (*catalog.Item, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.getItemLocked(id)
}

func (c *CatalogDB) getItemLocked(id int64) (*catalog.Item, error) {
	var item catalog.Item
	err := c.db.QueryRow(
		`SELECT id, title, original_title, year, tmdb_id, created_at, updated_at
		 FROM items WHERE id = ?`, id,
	).Scan(&item.ID, &item.Title, &item.OriginalTitle, &item.Year, &item.TmdbID,
		&item.CreatedAt, &item.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, catalog.ErrItemNotFound
	}
	if err != nil {
		return nil, err
	}

	if item.Aliases, err = c.itemAliasesLocked(id); err != nil {
		return nil, err
	}
	if item.MatchedFolders, err = c.matchedFoldersLocked(id); err != nil {
		return nil, err
	}
	if item.Materials, err = c.itemMaterialsLocked(id); err != nil {
		return nil, err
	}

	return &item, nil
}

// GetAllItems returns the full catalog snapshot, newest first, for batch
// matching and listing.
func (c *CatalogDB) GetAllItems() ([]*catalog.Item, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	rows, err := c.db.Query(`SELECT id FROM items ORDER BY id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	items := make([]*catalog.Item, 0, len(ids))
	for _, id := range ids {
		item, err := c.getItemLocked(id)
		if err != nil {
			return nil, fmt.Errorf("loading item %d: %w", id, err)
		}
		items = append(items, item)
	}

	return items, nil
}

// UpdateItem persists title fields and aliases for an existing item.
// Materials and matched folders are managed through their own operations.
func (c *CatalogDB) UpdateItem(item *catalog.Item) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	item.UpdatedAt = time.Now()

	result, err := c.db.Exec(
		`UPDATE items SET title = ?, original_title = ?, year = ?, tmdb_id = ?, updated_at = ?
		 WHERE id = ?`,
		item.Title, item.OriginalTitle, item.Year, item.TmdbID, item.UpdatedAt, item.ID,
	)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return catalog.ErrItemNotFound
	}

	return c.replaceAliasesLocked(item.ID, item.Aliases)
}

// DeleteItem removes an item and everything hanging off it.
func (c *CatalogDB) DeleteItem(id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, stmt := range []string{
		`DELETE FROM materials WHERE item_id = ?`,
		`DELETE FROM matched_folders WHERE item_id = ?`,
		`DELETE FROM item_aliases WHERE item_id = ?`,
		`DELETE FROM items WHERE id = ?`,
	} {
		if _, err := c.db.Exec(stmt, id); err != nil {
			return err
		}
	}
	return nil
}

func (c *CatalogDB) replaceAliasesLocked(itemID int64, aliases []string) error {
	if _, err := c.db.Exec(`DELETE FROM item_aliases WHERE item_id = ?`, itemID); err != nil {
		return err
	}
	for i, alias := range aliases {
		if _, err := c.db.Exec(
			`INSERT OR IGNORE INTO item_aliases (item_id, alias, position) VALUES (?, ?, ?)`,
			itemID, alias, i,
		); err != nil {
			return err
		}
	}
	return nil
}

func (c *CatalogDB) itemAliasesLocked(itemID int64) ([]string, error) {
	rows, err := c.db.Query(
		`SELECT alias FROM item_aliases WHERE item_id = ? ORDER BY position`, itemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var aliases []string
	for rows.Next() {
		var a string
		if err := rows.Scan(&a); err != nil {
			return nil, err
		}
		aliases = append(aliases, a)
	}
	return aliases, rows.Err()
}

func (c *CatalogDB) matchedFoldersLocked(itemID int64) ([]string, error) {
	rows, err := c.db.Query(
		`SELECT path FROM matched_folders WHERE item_id = ? ORDER BY position`, itemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var folders []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		folders = append(folders, p)
	}
	return folders, rows.Err()
}

func (c *CatalogDB) itemMaterialsLocked(itemID int64) ([]catalog.Material, error) {
	rows, err := c.db.Query(
		`SELECT id, name, path, size, file_type, category, added_at, modified_at
		 FROM materials WHERE item_id = ? ORDER BY added_at, id`, itemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var materials []catalog.Material
	for rows.Next() {
		var m catalog.Material
		var fileType, category string
		var modified sql.NullTime
		if err := rows.Scan(&m.ID, &m.Name, &m.Path, &m.Size, &fileType, &category,
			&m.AddedAt, &modified); err != nil {
			return nil, err
		}
		m.FileType = scanner.FileType(fileType)
		m.Category = catalog.Category(category)
		if modified.Valid {
			m.ModifiedTime = modified.Time
		}
		materials = append(materials, m)
	}
	return materials, rows.Err()
}
