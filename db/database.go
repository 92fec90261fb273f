// Package db provides the local SQLite database shared with the frontend.
package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// DefaultCategories are seeded into an empty database.
var DefaultCategories = []string{"実装", "設計", "会議", "レビュー", "ドキュメント", "その他"}

// Database is the app's SQLite store.
type Database struct {
	db   *sql.DB
	path string
}

// Open opens or creates the database named name inside dataDir.
func Open(dataDir, name string) (*Database, error) {
	return OpenPath(filepath.Join(dataDir, name))
}

// OpenPath opens a database at the specified path.
func OpenPath(path string) (*Database, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	database := &Database{db: db, path: path}
	if err := database.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	if err := database.seed(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to seed database: %w", err)
	}

	return database, nil
}

// Close closes the database.
func (d *Database) Close() error {
	return d.db.Close()
}

// Path returns the database file path.
func (d *Database) Path() string {
	return d.path
}

// migrate creates or updates the database schema.
func (d *Database) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS categories (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS work_logs (
		id TEXT PRIMARY KEY,
		category_id INTEGER,
		task TEXT NOT NULL,
		mode TEXT NOT NULL,
		duration INTEGER NOT NULL,
		completed BOOLEAN NOT NULL,
		timestamp DATETIME NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (category_id) REFERENCES categories(id)
	);

	CREATE INDEX IF NOT EXISTS idx_work_logs_timestamp ON work_logs(timestamp);

	CREATE TABLE IF NOT EXISTS pomodoro_plans (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		steps TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`

	_, err := d.db.Exec(schema)
	return err
}

// seed inserts the default categories; existing rows are left alone.
func (d *Database) seed() error {
	tx, err := d.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT OR IGNORE INTO categories (name) VALUES (?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, name := range DefaultCategories {
		if _, err := stmt.Exec(name); err != nil {
			return fmt.Errorf("insert category %q: %w", name, err)
		}
	}

	return tx.Commit()
}

// Categories returns category names in insertion order.
func (d *Database) Categories() ([]string, error) {
	rows, err := d.db.Query(`SELECT name FROM categories ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}
