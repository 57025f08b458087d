package store

import (
	"database/sql"
	"fmt"
)

// AddPomodoro records one completed focus interval against the given date.
func (s *Store) AddPomodoro(date string) error {
	_, err := s.db.Exec(
		`INSERT INTO day_activity (date, pomodoros) VALUES (?, 1)
		 ON CONFLICT(date) DO UPDATE SET pomodoros = pomodoros + 1`,
		date,
	)
	if err != nil {
		return fmt.Errorf("record pomodoro: %w", err)
	}
	return nil
}

// GetDayActivity returns the record for a date, zeroed when absent. HasNote
// is derived from the notes table on the way out.
func (s *Store) GetDayActivity(date string) (DayActivity, error) {
	a := DayActivity{Date: date}
	err := s.db.QueryRow(
		`SELECT pomodoros, completed_tasks FROM day_activity WHERE date = ?`, date,
	).Scan(&a.Pomodoros, &a.CompletedTasks)
	if err != nil && err != sql.ErrNoRows {
		return a, fmt.Errorf("get day activity %s: %w", date, err)
	}
	a.HasNote = s.HasNote(date)
	return a, nil
}

// ActivityLog returns the full date-keyed activity log with HasNote filled
// in, the snapshot the stats functions reduce over. Days that only have a
// note still get an entry.
func (s *Store) ActivityLog() (map[string]DayActivity, error) {
	rows, err := s.db.Query(`
		SELECT a.date, a.pomodoros, a.completed_tasks,
		       EXISTS (SELECT 1 FROM notes n WHERE n.date = a.date AND TRIM(n.content) != '')
		FROM day_activity a`)
	if err != nil {
		return nil, fmt.Errorf("activity log: %w", err)
	}
	defer rows.Close()

	log := make(map[string]DayActivity)
	for rows.Next() {
		var a DayActivity
		var hasNote int
		if err := rows.Scan(&a.Date, &a.Pomodoros, &a.CompletedTasks, &hasNote); err != nil {
			return nil, err
		}
		a.HasNote = hasNote == 1
		log[a.Date] = a
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Note-only days have no day_activity row but are still active.
	noteRows, err := s.db.Query(`SELECT date FROM notes WHERE TRIM(content) != ''`)
	if err != nil {
		return nil, fmt.Errorf("note dates: %w", err)
	}
	defer noteRows.Close()

	for noteRows.Next() {
		var date string
		if err := noteRows.Scan(&date); err != nil {
			return nil, err
		}
		if _, ok := log[date]; !ok {
			log[date] = DayActivity{Date: date, HasNote: true}
		}
	}
	return log, noteRows.Err()
}
