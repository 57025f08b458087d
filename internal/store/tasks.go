package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const focusedTaskKey = "focused_task"

func (s *Store) CreateTask(title string) (*Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("create task: empty title")
	}

	id := uuid.NewString()
	_, err := s.db.Exec(
		`INSERT INTO tasks (id, title, created_at, position)
		 VALUES (?, ?, ?, (SELECT COALESCE(MAX(position), 0) + 1 FROM tasks))`,
		id, title, DateKey(time.Now()),
	)
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	return s.GetTask(id)
}

func (s *Store) GetTask(id string) (*Task, error) {
	t := &Task{}
	var completed int
	var completedAt sql.NullString
	err := s.db.QueryRow(
		`SELECT id, title, completed, created_at, completed_at, spent_pomodoros
		 FROM tasks WHERE id = ?`, id,
	).Scan(&t.ID, &t.Title, &completed, &t.CreatedAt, &completedAt, &t.SpentPomodoros)
	if err != nil {
		return nil, fmt.Errorf("get task %s: %w", id, err)
	}
	t.Completed = completed == 1
	if completedAt.Valid {
		t.CompletedAt = completedAt.String
	}

	subs, err := s.listSubtasks(id)
	if err != nil {
		return nil, err
	}
	t.Subtasks = subs
	return t, nil
}

// ListTasks returns tasks in their stable creation order, subtasks included.
func (s *Store) ListTasks(includeCompleted bool) ([]Task, error) {
	query := `SELECT id, title, completed, created_at, completed_at, spent_pomodoros FROM tasks`
	if !includeCompleted {
		query += ` WHERE completed = 0`
	}
	query += ` ORDER BY position`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []Task
	for rows.Next() {
		var t Task
		var completed int
		var completedAt sql.NullString
		if err := rows.Scan(&t.ID, &t.Title, &completed, &t.CreatedAt, &completedAt, &t.SpentPomodoros); err != nil {
			return nil, err
		}
		t.Completed = completed == 1
		if completedAt.Valid {
			t.CompletedAt = completedAt.String
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range tasks {
		subs, err := s.listSubtasks(tasks[i].ID)
		if err != nil {
			return nil, err
		}
		tasks[i].Subtasks = subs
	}
	return tasks, nil
}

// FirstIncompleteTask returns the first incomplete task in stable order, or
// nil when every task is done. Used by the timer's auto-assign policy.
func (s *Store) FirstIncompleteTask() (*Task, error) {
	var id string
	err := s.db.QueryRow(
		`SELECT id FROM tasks WHERE completed = 0 ORDER BY position LIMIT 1`,
	).Scan(&id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("first incomplete task: %w", err)
	}
	return s.GetTask(id)
}

// CompleteTask marks the task done, stamps today's date and bumps today's
// completed-task counter. Completing an already-completed task is a no-op so
// the activity log is never double-counted.
func (s *Store) CompleteTask(id string) error {
	date := DateKey(time.Now())

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("complete task: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(
		`UPDATE tasks SET completed = 1, completed_at = ? WHERE id = ? AND completed = 0`,
		date, id,
	)
	if err != nil {
		return fmt.Errorf("complete task %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil
	}

	_, err = tx.Exec(
		`INSERT INTO day_activity (date, completed_tasks) VALUES (?, 1)
		 ON CONFLICT(date) DO UPDATE SET completed_tasks = completed_tasks + 1`,
		date,
	)
	if err != nil {
		return fmt.Errorf("record completed task: %w", err)
	}
	return tx.Commit()
}

// AddPomodoroToTask credits one spent pomodoro to the task.
func (s *Store) AddPomodoroToTask(id string) error {
	_, err := s.db.Exec(
		`UPDATE tasks SET spent_pomodoros = spent_pomodoros + 1 WHERE id = ?`, id,
	)
	return err
}

// DeleteTask removes the task and its subtasks. A dangling focused-task
// reference is cleared in the same call.
func (s *Store) DeleteTask(id string) error {
	if _, err := s.db.Exec(`DELETE FROM tasks WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete task %s: %w", id, err)
	}
	focused, err := s.FocusedTaskID()
	if err != nil {
		return err
	}
	if focused == id {
		return s.ClearFocusedTask()
	}
	return nil
}

// --- Subtasks ---

func (s *Store) AddSubtask(taskID, title string) (*Subtask, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("add subtask: empty title")
	}

	id := uuid.NewString()
	_, err := s.db.Exec(
		`INSERT INTO subtasks (id, task_id, title, position)
		 VALUES (?, ?, ?, (SELECT COALESCE(MAX(position), 0) + 1 FROM subtasks WHERE task_id = ?))`,
		id, taskID, title, taskID,
	)
	if err != nil {
		return nil, fmt.Errorf("insert subtask: %w", err)
	}
	return &Subtask{ID: id, TaskID: taskID, Title: title}, nil
}

// ToggleSubtask flips a subtask's completed flag. Subtasks under a completed
// parent are frozen; toggling them is a no-op.
func (s *Store) ToggleSubtask(id string) error {
	_, err := s.db.Exec(
		`UPDATE subtasks SET completed = 1 - completed
		 WHERE id = ?
		   AND (SELECT completed FROM tasks WHERE tasks.id = subtasks.task_id) = 0`,
		id,
	)
	return err
}

func (s *Store) listSubtasks(taskID string) ([]Subtask, error) {
	rows, err := s.db.Query(
		`SELECT id, task_id, title, completed FROM subtasks WHERE task_id = ? ORDER BY position`,
		taskID,
	)
	if err != nil {
		return nil, fmt.Errorf("list subtasks: %w", err)
	}
	defer rows.Close()

	var subs []Subtask
	for rows.Next() {
		var st Subtask
		var completed int
		if err := rows.Scan(&st.ID, &st.TaskID, &st.Title, &completed); err != nil {
			return nil, err
		}
		st.Completed = completed == 1
		subs = append(subs, st)
	}
	return subs, rows.Err()
}

// --- Focused task reference ---

func (s *Store) FocusedTaskID() (string, error) {
	var id string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, focusedTaskKey).Scan(&id)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get focused task: %w", err)
	}
	return id, nil
}

func (s *Store) SetFocusedTask(id string) error {
	_, err := s.db.Exec(
		`INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		focusedTaskKey, id,
	)
	return err
}

func (s *Store) ClearFocusedTask() error {
	_, err := s.db.Exec(`DELETE FROM settings WHERE key = ?`, focusedTaskKey)
	return err
}
