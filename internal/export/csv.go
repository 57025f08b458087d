package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/focal-app/focal/internal/stats"
)

// ToCSV writes one row per day of activity. Days with nothing recorded are
// skipped so the file stays readable.
func ToCSV(days []stats.DaySummary, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{"date", "pomodoros", "focus_minutes", "completed_tasks", "has_note"}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, d := range days {
		if !d.Activity().Active() {
			continue
		}
		row := []string{
			d.Date,
			strconv.Itoa(d.Pomodoros),
			strconv.Itoa(d.FocusMinutes),
			strings.Join(d.CompletedTasks, "; "),
			strconv.FormatBool(d.HasNote),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	return w.Error()
}
