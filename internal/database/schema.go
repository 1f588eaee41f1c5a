package database

import "database/sql"

type migration struct {
	version int
	up      []string
}

var migrations = []migration{
	{
		version: 1,
		up: []string{
			`CREATE TABLE schema_version (
				version INTEGER PRIMARY KEY,
				applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
			)`,

			`CREATE TABLE items (
				id INTEGER PRIMARY KEY AUTOINCREMENT,

				-- Identification
				title TEXT NOT NULL,
				original_title TEXT NOT NULL DEFAULT '',
				year TEXT NOT NULL DEFAULT '',
				tmdb_id INTEGER,

				-- Timestamps
				created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
				updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
			)`,

			`CREATE TABLE item_aliases (
				item_id INTEGER NOT NULL REFERENCES items(id) ON DELETE CASCADE,
				alias TEXT NOT NULL,
				position INTEGER NOT NULL,
				UNIQUE(item_id, alias)
			)`,

			`CREATE TABLE matched_folders (
				item_id INTEGER NOT NULL REFERENCES items(id) ON DELETE CASCADE,
				path TEXT NOT NULL,
				position INTEGER NOT NULL,
				UNIQUE(item_id, path)
			)`,

			`CREATE TABLE materials (
				id TEXT NOT NULL,
				item_id INTEGER NOT NULL REFERENCES items(id) ON DELETE CASCADE,

				name TEXT NOT NULL,
				path TEXT NOT NULL,
				size TEXT NOT NULL DEFAULT '0',
				file_type TEXT NOT NULL,
				category TEXT NOT NULL DEFAULT 'default',

				added_at DATETIME NOT NULL,
				modified_at DATETIME,

				PRIMARY KEY(item_id, id),
				UNIQUE(item_id, path)
			)`,

			`CREATE INDEX idx_materials_item ON materials(item_id)`,
			`CREATE INDEX idx_materials_path ON materials(path)`,
			`CREATE INDEX idx_items_title ON items(title)`,

			`INSERT INTO schema_version (version) VALUES (1)`,
		},
	},
}

func applyMigrations(db *sql.DB) error {
	var currentVersion int
	err := db.QueryRow("SELECT version FROM schema_version ORDER BY version DESC LIMIT 1").Scan(&currentVersion)
	if err != nil {
		// schema_version doesn't exist yet - fresh database
		currentVersion = 0
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}

		tx, err := db.Begin()
		if err != nil {
			return err
		}

		for _, stmt := range m.up {
			if _, err := tx.Exec(stmt); err != nil {
				tx.Rollback()
				return err
			}
		}

		if err := tx.Commit(); err != nil {
			return err
		}
	}

	return nil
}
