package dataset

// SchemaVersion is the current categorization database schema version.
const SchemaVersion = 1

// sqliteSchema creates the categorization tables.
const sqliteSchema = `
CREATE TABLE IF NOT EXISTS categorizations (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id TEXT NOT NULL,
    line INTEGER NOT NULL,
    field TEXT NOT NULL,
    url TEXT NOT NULL,
    segment TEXT,
    category TEXT,
    error TEXT,
    created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_categorizations_run ON categorizations(run_id, line);
CREATE INDEX IF NOT EXISTS idx_categorizations_segment ON categorizations(segment, category);

CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
`

const insertSchemaVersion = `INSERT OR IGNORE INTO schema_version (version) VALUES (?)`

const getSchemaVersion = `SELECT MAX(version) FROM schema_version`

const insertCategorization = `
INSERT INTO categorizations (run_id, line, field, url, segment, category, error, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`
