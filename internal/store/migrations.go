package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Signs table - the vocabulary the classifier can produce
		`CREATE TABLE IF NOT EXISTS signs (
			id TEXT PRIMARY KEY,
			label TEXT NOT NULL,
			mode TEXT NOT NULL CHECK(mode IN ('sign', 'lip')),
			tolerance REAL NOT NULL DEFAULT 0,
			samples INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(label, mode)
		)`,

		// Sign samples table - raw recorded feature sequences for training
		`CREATE TABLE IF NOT EXISTS sign_samples (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			sign_id TEXT NOT NULL REFERENCES signs(id) ON DELETE CASCADE,
			sample_index INTEGER NOT NULL,
			data TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Sign templates table - averaged sequence produced by training
		`CREATE TABLE IF NOT EXISTS sign_templates (
			sign_id TEXT PRIMARY KEY REFERENCES signs(id) ON DELETE CASCADE,
			frames TEXT NOT NULL,
			tolerance REAL NOT NULL,
			trained_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Sessions table - one row per client connection
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			client TEXT NOT NULL DEFAULT '',
			platform TEXT NOT NULL DEFAULT '',
			remote_addr TEXT NOT NULL DEFAULT '',
			frames INTEGER NOT NULL DEFAULT 0,
			started_at DATETIME NOT NULL,
			ended_at DATETIME
		)`,

		// Translations table - flushed sentences
		`CREATE TABLE IF NOT EXISTS translations (
			id TEXT PRIMARY KEY,
			session_id TEXT REFERENCES sessions(id) ON DELETE SET NULL,
			text TEXT NOT NULL,
			confidence REAL NOT NULL,
			kind TEXT NOT NULL,
			mode TEXT NOT NULL,
			created_at DATETIME NOT NULL
		)`,

		// Indexes for better query performance
		`CREATE INDEX IF NOT EXISTS idx_sign_samples_sign_id ON sign_samples(sign_id)`,
		`CREATE INDEX IF NOT EXISTS idx_translations_session_id ON translations(session_id)`,
		`CREATE INDEX IF NOT EXISTS idx_translations_created_at ON translations(created_at)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
