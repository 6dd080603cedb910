package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// Raw, signal, and mart layers plus structured news/jobs storage and the
// append-only scan history.
const schema = `
CREATE TABLE IF NOT EXISTS raw_company_data (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    company_name TEXT NOT NULL,
    source TEXT,
    funding_stage TEXT,
    funding_round TEXT,
    funding_date TEXT,
    amount TEXT,
    investors TEXT,
    industry TEXT,
    keywords TEXT,
    required_roles TEXT,
    job_roles TEXT,
    news_title TEXT,
    founded_date TEXT,
    employee_count TEXT,
    collected_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    last_enrich_date TIMESTAMP
);

CREATE TABLE IF NOT EXISTS signal_scores (
    company_id INTEGER PRIMARY KEY,
    funding_score INTEGER DEFAULT 0,
    hiring_score INTEGER DEFAULT 0,
    recency_score INTEGER DEFAULT 0,
    total_score INTEGER DEFAULT 0,
    FOREIGN KEY(company_id) REFERENCES raw_company_data(id)
);

CREATE TABLE IF NOT EXISTS sales_mart (
    company_id INTEGER PRIMARY KEY,
    priority TEXT DEFAULT 'Low',
    sales_hook TEXT,
    is_sent BOOLEAN DEFAULT 0,
    FOREIGN KEY(company_id) REFERENCES raw_company_data(id)
);

CREATE TABLE IF NOT EXISTS news (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    company_id INTEGER,
    title TEXT,
    content TEXT,
    url TEXT,
    published_at TEXT,
    source_name TEXT,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY(company_id) REFERENCES raw_company_data(id)
);

CREATE TABLE IF NOT EXISTS jobs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    company_id INTEGER,
    title TEXT,
    team TEXT,
    link TEXT,
    source TEXT,
    collected_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY(company_id) REFERENCES raw_company_data(id)
);

CREATE TABLE IF NOT EXISTS processed_periods (
    period TEXT PRIMARY KEY,
    processed_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
`

const dropSchema = `
DROP TABLE IF EXISTS processed_periods;
DROP TABLE IF EXISTS jobs;
DROP TABLE IF EXISTS news;
DROP TABLE IF EXISTS sales_mart;
DROP TABLE IF EXISTS signal_scores;
DROP TABLE IF EXISTS raw_company_data;
`

// Open connects to the SQLite database at path and verifies the
// connection.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// The lookup-then-insert uniqueness check is not safe for concurrent
	// writers; keep a single connection.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

// InitSchema creates all tables when absent.
func InitSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	return nil
}

// ResetSchema drops every table and recreates them empty.
func ResetSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, dropSchema); err != nil {
		return fmt.Errorf("drop schema: %w", err)
	}
	return InitSchema(ctx, db)
}
