package journal

// SchemaSQL creates the call journal table.
const SchemaSQL = `
CREATE TABLE IF NOT EXISTS api_calls (
    id           TEXT PRIMARY KEY,
    client_id    TEXT,
    method       TEXT NOT NULL,
    path         TEXT NOT NULL,
    status_code  INTEGER NOT NULL DEFAULT 0,
    attempts     INTEGER NOT NULL DEFAULT 0,
    error_kind   TEXT,
    duration_ms  INTEGER NOT NULL DEFAULT 0,
    created_at   TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_api_calls_created_at ON api_calls (created_at);
`
