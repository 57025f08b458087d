package store

import (
	"database/sql"
	"fmt"
	"strings"
)

// SetNote stores the note for a date. Saving an empty (or whitespace-only)
// note deletes the row so the day no longer counts as noted.
func (s *Store) SetNote(date, content string) error {
	if strings.TrimSpace(content) == "" {
		_, err := s.db.Exec(`DELETE FROM notes WHERE date = ?`, date)
		return err
	}
	_, err := s.db.Exec(
		`INSERT INTO notes (date, content) VALUES (?, ?) ON CONFLICT(date) DO UPDATE SET content = excluded.content`,
		date, content,
	)
	return err
}

func (s *Store) GetNote(date string) (string, error) {
	var content string
	err := s.db.QueryRow(`SELECT content FROM notes WHERE date = ?`, date).Scan(&content)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get note %s: %w", date, err)
	}
	return content, nil
}

func (s *Store) HasNote(date string) bool {
	var one int
	err := s.db.QueryRow(
		`SELECT 1 FROM notes WHERE date = ? AND TRIM(content) != ''`, date,
	).Scan(&one)
	return err == nil
}
