package store

import "database/sql"

// Schema is the complete review schema.
const Schema = `
-- Analysis runs: one row per analyzed repository clone
CREATE TABLE IF NOT EXISTS runs (
    id           TEXT PRIMARY KEY,
    user_id      TEXT NOT NULL DEFAULT '',
    repo_url     TEXT NOT NULL,
    repo_path    TEXT NOT NULL,
    status       TEXT NOT NULL DEFAULT 'completed',
    total_issues INTEGER NOT NULL DEFAULT 0,
    created_at   INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_user ON runs(user_id, created_at DESC);

-- Findings reported by the linter for a run
CREATE TABLE IF NOT EXISTS issues (
    id            TEXT PRIMARY KEY,
    run_id        TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
    file_path     TEXT NOT NULL,
    display_path  TEXT NOT NULL,
    line_number   INTEGER NOT NULL DEFAULT 1,
    column_number INTEGER NOT NULL DEFAULT 1,
    code          TEXT NOT NULL,
    message       TEXT NOT NULL DEFAULT '',
    symbol        TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_issues_run ON issues(run_id);

-- Generated fixes (previewed or applied)
CREATE TABLE IF NOT EXISTS fixes (
    id          TEXT PRIMARY KEY,
    run_id      TEXT NOT NULL DEFAULT '',
    file_path   TEXT NOT NULL,
    smell_code  TEXT NOT NULL,
    line_number INTEGER NOT NULL DEFAULT 1,
    applied     INTEGER NOT NULL DEFAULT 0,
    created_at  INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_fixes_run ON fixes(run_id);
`

// Init applies the review schema.
func Init(db *sql.DB) error {
	_, err := db.Exec(Schema)
	return err
}
