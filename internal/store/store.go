// Package store keeps named value snapshots in a local SQLite database so
// REPL sessions can save and restore graphs across runs.
package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS snapshots (
	name       TEXT PRIMARY KEY,
	data       BLOB NOT NULL,
	created_at INTEGER NOT NULL
);`

type Store struct {
	db *sql.DB
}

type Entry struct {
	Name      string
	Size      int
	CreatedAt time.Time
}

func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %v", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: init schema: %v", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Save inserts or replaces the snapshot under name.
func (s *Store) Save(name string, data []byte) error {
	_, err := s.db.Exec(
		`INSERT INTO snapshots (name, data, created_at) VALUES (?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET data = excluded.data, created_at = excluded.created_at`,
		name, data, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("store: save %q: %v", name, err)
	}
	return nil
}

func (s *Store) Load(name string) ([]byte, error) {
	var data []byte
	err := s.db.QueryRow(`SELECT data FROM snapshots WHERE name = ?`, name).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("store: no snapshot named %q", name)
	}
	if err != nil {
		return nil, fmt.Errorf("store: load %q: %v", name, err)
	}
	return data, nil
}

func (s *Store) List() ([]Entry, error) {
	rows, err := s.db.Query(`SELECT name, length(data), created_at FROM snapshots ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("store: list: %v", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var created int64
		if err := rows.Scan(&e.Name, &e.Size, &created); err != nil {
			return nil, fmt.Errorf("store: list: %v", err)
		}
		e.CreatedAt = time.Unix(created, 0)
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) Delete(name string) error {
	res, err := s.db.Exec(`DELETE FROM snapshots WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("store: delete %q: %v", name, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("store: no snapshot named %q", name)
	}
	return nil
}
