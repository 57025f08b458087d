package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/focal-app/focal/internal/stats"
	"github.com/focal-app/focal/internal/store"
)

type jsonExport struct {
	ExportedAt string     `json:"exported_at"`
	Tasks      []jsonTask `json:"tasks"`
	Days       []jsonDay  `json:"days"`
}

type jsonTask struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	Completed      bool     `json:"completed"`
	CreatedAt      string   `json:"created_at"`
	CompletedAt    string   `json:"completed_at,omitempty"`
	SpentPomodoros int      `json:"spent_pomodoros"`
	Subtasks       []string `json:"subtasks,omitempty"`
}

type jsonDay struct {
	Date           string   `json:"date"`
	Pomodoros      int      `json:"pomodoros"`
	FocusMinutes   int      `json:"focus_minutes"`
	CompletedTasks []string `json:"completed_tasks,omitempty"`
	HasNote        bool     `json:"has_note"`
}

func ToJSON(tasks []store.Task, days []stats.DaySummary, path string) error {
	out := jsonExport{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
	}

	for _, t := range tasks {
		jt := jsonTask{
			ID:             t.ID,
			Title:          t.Title,
			Completed:      t.Completed,
			CreatedAt:      t.CreatedAt,
			CompletedAt:    t.CompletedAt,
			SpentPomodoros: t.SpentPomodoros,
		}
		for _, st := range t.Subtasks {
			jt.Subtasks = append(jt.Subtasks, st.Title)
		}
		out.Tasks = append(out.Tasks, jt)
	}

	for _, d := range days {
		if !d.Activity().Active() {
			continue
		}
		out.Days = append(out.Days, jsonDay{
			Date:           d.Date,
			Pomodoros:      d.Pomodoros,
			FocusMinutes:   d.FocusMinutes,
			CompletedTasks: d.CompletedTasks,
			HasNote:        d.HasNote,
		})
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}
