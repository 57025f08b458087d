// Package stats reduces the date-keyed activity log into streaks, rolling
// summaries and calendar heat-map data. Every function is a pure read over
// a snapshot: no caching, no mutation, identical output for identical input.
package stats

import (
	"math"
	"time"

	"github.com/focal-app/focal/internal/store"
)

// Filter selects which slice of a day's activity the calendar scores.
type Filter int

const (
	FilterAll Filter = iota
	FilterFocus
	FilterTasks
	FilterNotes
)

func (f Filter) String() string {
	switch f {
	case FilterFocus:
		return "focus"
	case FilterTasks:
		return "tasks"
	case FilterNotes:
		return "notes"
	default:
		return "all"
	}
}

// DaySummary is one calendar cell's worth of data.
type DaySummary struct {
	Date           string
	Pomodoros      int
	FocusMinutes   int
	CompletedTasks []string // titles of tasks completed that day
	HasNote        bool
}

// TodayStats is the dashboard rollup for a single day.
type TodayStats struct {
	Pomodoros      int
	Minutes        int
	CompletedTasks int
}

// WeekStats covers the trailing 7 calendar days ending today.
type WeekStats struct {
	Pomodoros  int
	Minutes    int
	ActiveDays int
}

// Insights summarizes an arbitrary range of day summaries.
type Insights struct {
	Pomodoros      int
	Minutes        int
	CompletedTasks int
	NoteDays       int
	ActiveDays     int
	BestDay        string // empty when nothing scored
	BestScore      int
	AvgPerActive   float64 // pomodoros per active day, one decimal
}

// Streak counts consecutive active days ending today. An inactive or
// missing day stops the walk immediately, so an inactive today means 0.
func Streak(log map[string]store.DayActivity, today time.Time) int {
	streak := 0
	for d := today; ; d = d.AddDate(0, 0, -1) {
		a, ok := log[store.DateKey(d)]
		if !ok || !a.Active() {
			return streak
		}
		streak++
	}
}

// Today returns the rollup for today's entry, zeroed when absent.
func Today(log map[string]store.DayActivity, today time.Time, pomodoroMinutes int) TodayStats {
	a := log[store.DateKey(today)]
	return TodayStats{
		Pomodoros:      a.Pomodoros,
		Minutes:        a.Pomodoros * pomodoroMinutes,
		CompletedTasks: a.CompletedTasks,
	}
}

// Week sums the trailing 7-day window ending today. The window is exactly
// seven calendar days with today as day zero, not an aligned week.
func Week(log map[string]store.DayActivity, today time.Time, pomodoroMinutes int) WeekStats {
	var w WeekStats
	for i := 0; i < 7; i++ {
		a, ok := log[store.DateKey(today.AddDate(0, 0, -i))]
		if !ok {
			continue
		}
		w.Pomodoros += a.Pomodoros
		if a.Active() {
			w.ActiveDays++
		}
	}
	w.Minutes = w.Pomodoros * pomodoroMinutes
	return w
}

// MonthSummaries builds one DaySummary per calendar day of the given month,
// always exactly the month's length regardless of log sparsity.
func MonthSummaries(year int, month time.Month, log map[string]store.DayActivity, tasks []store.Task, hasNote func(string) bool, pomodoroMinutes int) []DaySummary {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.Local)
	last := first.AddDate(0, 1, -1)
	return RangeSummaries(first, last, log, tasks, hasNote, pomodoroMinutes)
}

// RangeSummaries builds one DaySummary per day from 'from' through 'to'
// inclusive, in date order.
func RangeSummaries(from, to time.Time, log map[string]store.DayActivity, tasks []store.Task, hasNote func(string) bool, pomodoroMinutes int) []DaySummary {
	titles := completedTitlesByDate(tasks)

	var days []DaySummary
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		key := store.DateKey(d)
		a := log[key] // zero value for missing or partial entries
		days = append(days, DaySummary{
			Date:           key,
			Pomodoros:      a.Pomodoros,
			FocusMinutes:   a.Pomodoros * pomodoroMinutes,
			CompletedTasks: titles[key],
			HasNote:        hasNote(key),
		})
	}
	return days
}

// completedTitlesByDate indexes completed task titles by completion date.
// The completed flag is ground truth; a stray completion date on an open
// task is ignored rather than treated as fatal.
func completedTitlesByDate(tasks []store.Task) map[string][]string {
	titles := make(map[string][]string)
	for _, t := range tasks {
		if !t.Completed || t.CompletedAt == "" {
			continue
		}
		titles[t.CompletedAt] = append(titles[t.CompletedAt], t.Title)
	}
	return titles
}

// Score computes the filtered activity score for one day. The all filter
// weighs completed tasks double and a note as one.
func Score(a store.DayActivity, f Filter) int {
	switch f {
	case FilterFocus:
		return a.Pomodoros
	case FilterTasks:
		return a.CompletedTasks
	case FilterNotes:
		if a.HasNote {
			return 1
		}
		return 0
	default:
		score := a.Pomodoros + 2*a.CompletedTasks
		if a.HasNote {
			score++
		}
		return score
	}
}

// Intensity buckets a filtered score into the 0-4 heat-map tier. Notes are
// binary (0 or 3); the counting filters use ascending thresholds.
func Intensity(score int, f Filter) int {
	if score <= 0 {
		return 0
	}
	switch f {
	case FilterNotes:
		return 3
	case FilterFocus:
		return tier(score, 1, 3, 5, 8)
	case FilterTasks:
		return tier(score, 1, 2, 4, 6)
	default:
		return tier(score, 1, 3, 6, 10)
	}
}

func tier(score, t1, t2, t3, t4 int) int {
	switch {
	case score >= t4:
		return 4
	case score >= t3:
		return 3
	case score >= t2:
		return 2
	case score >= t1:
		return 1
	default:
		return 0
	}
}

func (d DaySummary) Activity() store.DayActivity {
	return store.DayActivity{
		Date:           d.Date,
		Pomodoros:      d.Pomodoros,
		CompletedTasks: len(d.CompletedTasks),
		HasNote:        d.HasNote,
	}
}

// RangeInsights folds a range of day summaries into totals, the best day by
// the all-filter score (ties go to the first occurrence) and the average
// pomodoro count per active day rounded to one decimal.
func RangeInsights(days []DaySummary) Insights {
	var in Insights
	for _, d := range days {
		a := d.Activity()
		in.Pomodoros += d.Pomodoros
		in.Minutes += d.FocusMinutes
		in.CompletedTasks += len(d.CompletedTasks)
		if d.HasNote {
			in.NoteDays++
		}
		if a.Active() {
			in.ActiveDays++
		}
		if score := Score(a, FilterAll); score > in.BestScore {
			in.BestScore = score
			in.BestDay = d.Date
		}
	}
	if in.ActiveDays > 0 {
		in.AvgPerActive = math.Round(float64(in.Pomodoros)/float64(in.ActiveDays)*10) / 10
	}
	return in
}
