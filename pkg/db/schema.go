package db

const schema = `
-- Performance and reliability settings
PRAGMA journal_mode = WAL;
PRAGMA synchronous = NORMAL;
PRAGMA foreign_keys = ON;
PRAGMA temp_store = MEMORY;

-- Items: one row per fetched article. Times are unix milliseconds.
CREATE TABLE IF NOT EXISTS items (
    id TEXT PRIMARY KEY,
    url TEXT NOT NULL,
    title TEXT NOT NULL,
    excerpt TEXT NOT NULL DEFAULT '',
    body TEXT NOT NULL DEFAULT '',
    category TEXT NOT NULL DEFAULT '',
    language TEXT NOT NULL DEFAULT '',

    -- Location tags; empty string means untagged
    region TEXT NOT NULL DEFAULT '',
    subregion TEXT NOT NULL DEFAULT '',
    locality TEXT NOT NULL DEFAULT '',

    published_at INTEGER NOT NULL,
    fetched_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_items_published ON items(published_at DESC);
CREATE INDEX IF NOT EXISTS idx_items_region ON items(region COLLATE NOCASE);
CREATE INDEX IF NOT EXISTS idx_items_category ON items(category);

-- Preferences: local cache of each user's local/topical split
CREATE TABLE IF NOT EXISTS preferences (
    user_id TEXT PRIMARY KEY,
    local INTEGER NOT NULL CHECK (local BETWEEN 0 AND 100),
    topical INTEGER NOT NULL CHECK (topical BETWEEN 0 AND 100),
    topic TEXT NOT NULL DEFAULT 'sport',
    updated_at INTEGER NOT NULL,
    CHECK (local + topical = 100)
);

-- Ingest runs: one row per ingest command
CREATE TABLE IF NOT EXISTS ingest_runs (
    run_id TEXT PRIMARY KEY,
    started_at INTEGER NOT NULL,
    url_count INTEGER NOT NULL,
    success_count INTEGER DEFAULT 0,
    failed_count INTEGER DEFAULT 0,
    top_keywords TEXT
);

CREATE INDEX IF NOT EXISTS idx_ingest_runs_started ON ingest_runs(started_at DESC);
`
