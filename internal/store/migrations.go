package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Samples table - landmark snapshots with the label a person says they show
		`CREATE TABLE IF NOT EXISTS samples (
			id TEXT PRIMARY KEY,
			label TEXT NOT NULL,
			handedness TEXT NOT NULL CHECK(handedness IN ('Left', 'Right')),
			points TEXT NOT NULL,
			source TEXT NOT NULL DEFAULT '',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Detections table - recognition history, one row per label change
		`CREATE TABLE IF NOT EXISTS detections (
			id TEXT PRIMARY KEY,
			label TEXT NOT NULL,
			handedness TEXT NOT NULL,
			curls TEXT NOT NULL,
			anchor_x REAL NOT NULL,
			anchor_y REAL NOT NULL,
			angle REAL NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Bindings table - hooks to run when a label is newly recognized
		`CREATE TABLE IF NOT EXISTS bindings (
			id TEXT PRIMARY KEY,
			label TEXT NOT NULL,
			plugin_name TEXT NOT NULL,
			action_name TEXT NOT NULL,
			config TEXT NOT NULL DEFAULT '{}',
			enabled INTEGER NOT NULL DEFAULT 1,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Settings table - stores application settings as key-value pairs
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_samples_label ON samples(label)`,
		`CREATE INDEX IF NOT EXISTS idx_detections_label ON detections(label)`,
		`CREATE INDEX IF NOT EXISTS idx_detections_created_at ON detections(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_bindings_label ON bindings(label)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
