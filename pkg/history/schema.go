package history

// Schema is the journal layout. Times are stored as unix nanoseconds.
const Schema = `
CREATE TABLE IF NOT EXISTS allocations (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,
    request_id      TEXT NOT NULL UNIQUE,
    directory       TEXT NOT NULL,
    filename        TEXT NOT NULL,
    size            INTEGER NOT NULL,
    unit            TEXT NOT NULL,
    use_sparse      INTEGER NOT NULL,
    outcome         TEXT NOT NULL,
    method          TEXT NOT NULL DEFAULT '',
    bytes_written   INTEGER NOT NULL DEFAULT 0,
    elapsed_ns      INTEGER NOT NULL DEFAULT 0,
    reason          TEXT NOT NULL DEFAULT '',
    message         TEXT NOT NULL DEFAULT '',
    target_path     TEXT,
    target_filename TEXT,
    started_at      INTEGER NOT NULL,
    finished_at     INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_allocations_outcome ON allocations(outcome);
`
