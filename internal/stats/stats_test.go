package stats

import (
	"reflect"
	"testing"
	"time"

	"github.com/focal-app/focal/internal/store"
)

var today = time.Date(2026, 3, 14, 12, 0, 0, 0, time.Local)

func day(offset int) string {
	return store.DateKey(today.AddDate(0, 0, offset))
}

func activeDay(pomodoros int) store.DayActivity {
	return store.DayActivity{Pomodoros: pomodoros}
}

// ============================================================
// Streak
// ============================================================

func TestStreakCountsBackFromToday(t *testing.T) {
	log := map[string]store.DayActivity{
		day(0):  activeDay(2),
		day(-1): activeDay(1),
		day(-2): activeDay(3),
		day(-4): activeDay(5), // gap at -3 ends the streak
	}
	if got := Streak(log, today); got != 3 {
		t.Fatalf("streak = %d, want 3", got)
	}
}

func TestStreakZeroWhenTodayInactive(t *testing.T) {
	log := map[string]store.DayActivity{
		day(-1): activeDay(4),
		day(-2): activeDay(4),
	}
	if got := Streak(log, today); got != 0 {
		t.Fatalf("streak = %d, want 0", got)
	}
}

func TestStreakIgnoresInactiveEntries(t *testing.T) {
	// A row that exists but records nothing does not extend the streak.
	log := map[string]store.DayActivity{
		day(0):  activeDay(1),
		day(-1): {}, // present but empty
		day(-2): activeDay(1),
	}
	if got := Streak(log, today); got != 1 {
		t.Fatalf("streak = %d, want 1", got)
	}
}

func TestStreakCountsNoteOnlyDays(t *testing.T) {
	log := map[string]store.DayActivity{
		day(0):  activeDay(1),
		day(-1): {HasNote: true},
	}
	if got := Streak(log, today); got != 2 {
		t.Fatalf("streak = %d, want 2", got)
	}
}

func TestStreakEmptyLog(t *testing.T) {
	if got := Streak(nil, today); got != 0 {
		t.Fatalf("streak = %d, want 0", got)
	}
}

// ============================================================
// Today / week rollups
// ============================================================

func TestTodayZeroWhenAbsent(t *testing.T) {
	got := Today(nil, today, 25)
	if got != (TodayStats{}) {
		t.Fatalf("today = %+v, want zero", got)
	}
}

func TestTodayRollup(t *testing.T) {
	log := map[string]store.DayActivity{
		day(0): {Pomodoros: 3, CompletedTasks: 2},
	}
	got := Today(log, today, 25)
	want := TodayStats{Pomodoros: 3, Minutes: 75, CompletedTasks: 2}
	if got != want {
		t.Fatalf("today = %+v, want %+v", got, want)
	}
}

func TestWeekWindowIsTrailingSevenDays(t *testing.T) {
	log := map[string]store.DayActivity{
		day(0):  activeDay(1),
		day(-6): activeDay(2), // inside the window
		day(-7): activeDay(9), // one day too old
	}
	got := Week(log, today, 25)
	want := WeekStats{Pomodoros: 3, Minutes: 75, ActiveDays: 2}
	if got != want {
		t.Fatalf("week = %+v, want %+v", got, want)
	}
}

// ============================================================
// Month and range summaries
// ============================================================

func noNotes(string) bool { return false }

func TestMonthSummariesLength(t *testing.T) {
	cases := []struct {
		year  int
		month time.Month
		want  int
	}{
		{2025, time.January, 31},
		{2025, time.February, 28},
		{2024, time.February, 29},
		{2025, time.April, 30},
	}
	for _, tc := range cases {
		days := MonthSummaries(tc.year, tc.month, nil, nil, noNotes, 25)
		if len(days) != tc.want {
			t.Errorf("%v %d: %d days, want %d", tc.month, tc.year, len(days), tc.want)
		}
	}
}

func TestMonthSummariesZeroFillsMissingDays(t *testing.T) {
	log := map[string]store.DayActivity{
		"2025-02-10": activeDay(4),
	}
	days := MonthSummaries(2025, time.February, log, nil, noNotes, 25)

	if days[0].Date != "2025-02-01" || days[27].Date != "2025-02-28" {
		t.Fatalf("unexpected bounds: %s .. %s", days[0].Date, days[27].Date)
	}
	if days[9].Pomodoros != 4 || days[9].FocusMinutes != 100 {
		t.Fatalf("feb 10 = %+v", days[9])
	}
	if days[10].Pomodoros != 0 {
		t.Fatal("missing days must be zero valued")
	}
}

func TestRangeSummariesCompletedTitles(t *testing.T) {
	tasks := []store.Task{
		{ID: "a", Title: "Ship release", Completed: true, CompletedAt: "2025-02-10"},
		{ID: "b", Title: "Write docs", Completed: true, CompletedAt: "2025-02-10"},
		{ID: "c", Title: "Still open", Completed: false, CompletedAt: "2025-02-10"}, // inconsistent row
		{ID: "d", Title: "Other day", Completed: true, CompletedAt: "2025-02-11"},
	}
	from := time.Date(2025, 2, 10, 0, 0, 0, 0, time.Local)
	days := RangeSummaries(from, from, nil, tasks, noNotes, 25)

	want := []string{"Ship release", "Write docs"}
	if !reflect.DeepEqual(days[0].CompletedTasks, want) {
		t.Fatalf("completed = %v, want %v", days[0].CompletedTasks, want)
	}
}

func TestSummariesAreDeterministic(t *testing.T) {
	log := map[string]store.DayActivity{
		"2025-02-03": {Pomodoros: 2, CompletedTasks: 1, HasNote: true},
		"2025-02-17": activeDay(6),
	}
	notes := func(date string) bool { return date == "2025-02-03" }

	a := MonthSummaries(2025, time.February, log, nil, notes, 25)
	b := MonthSummaries(2025, time.February, log, nil, notes, 25)
	if !reflect.DeepEqual(a, b) {
		t.Fatal("identical input must produce identical summaries")
	}
}

// ============================================================
// Scores and heat-map intensity
// ============================================================

func TestScoreWeights(t *testing.T) {
	a := store.DayActivity{Pomodoros: 3, CompletedTasks: 2, HasNote: true}

	cases := []struct {
		filter Filter
		want   int
	}{
		{FilterAll, 8}, // 3 + 2*2 + 1
		{FilterFocus, 3},
		{FilterTasks, 2},
		{FilterNotes, 1},
	}
	for _, tc := range cases {
		if got := Score(a, tc.filter); got != tc.want {
			t.Errorf("score(%v) = %d, want %d", tc.filter, got, tc.want)
		}
	}
}

func TestIntensityTiers(t *testing.T) {
	cases := []struct {
		filter Filter
		score  int
		want   int
	}{
		{FilterAll, 0, 0},
		{FilterAll, 1, 1},
		{FilterAll, 2, 1},
		{FilterAll, 3, 2},
		{FilterAll, 7, 3},
		{FilterAll, 10, 4},
		{FilterFocus, 1, 1},
		{FilterFocus, 3, 2},
		{FilterFocus, 5, 3},
		{FilterFocus, 8, 4},
		{FilterTasks, 2, 2},
		{FilterTasks, 4, 3},
		{FilterTasks, 6, 4},
		{FilterNotes, 0, 0},
		{FilterNotes, 1, 3},
	}
	for _, tc := range cases {
		if got := Intensity(tc.score, tc.filter); got != tc.want {
			t.Errorf("intensity(%d, %v) = %d, want %d", tc.score, tc.filter, got, tc.want)
		}
	}
}

func TestIntensityMonotonic(t *testing.T) {
	for _, f := range []Filter{FilterAll, FilterFocus, FilterTasks} {
		prev := 0
		for score := 0; score <= 20; score++ {
			got := Intensity(score, f)
			if got < prev {
				t.Fatalf("intensity(%d, %v) = %d dropped below %d", score, f, got, prev)
			}
			prev = got
		}
	}
}

// ============================================================
// Range insights
// ============================================================

func TestRangeInsights(t *testing.T) {
	days := []DaySummary{
		{Date: "2025-02-01", Pomodoros: 2, FocusMinutes: 50},
		{Date: "2025-02-02"},
		{Date: "2025-02-03", Pomodoros: 4, FocusMinutes: 100, CompletedTasks: []string{"a", "b"}, HasNote: true},
		{Date: "2025-02-04", Pomodoros: 1, FocusMinutes: 25},
	}
	in := RangeInsights(days)

	if in.Pomodoros != 7 || in.Minutes != 175 {
		t.Fatalf("totals = %d pomodoros / %d minutes", in.Pomodoros, in.Minutes)
	}
	if in.CompletedTasks != 2 || in.NoteDays != 1 {
		t.Fatalf("tasks = %d, note days = %d", in.CompletedTasks, in.NoteDays)
	}
	if in.ActiveDays != 3 {
		t.Fatalf("active days = %d, want 3", in.ActiveDays)
	}
	if in.BestDay != "2025-02-03" || in.BestScore != 9 {
		t.Fatalf("best = %s (%d)", in.BestDay, in.BestScore)
	}
	// 7 pomodoros over 3 active days.
	if in.AvgPerActive != 2.3 {
		t.Fatalf("avg = %v, want 2.3", in.AvgPerActive)
	}
}

func TestRangeInsightsBestDayTieGoesToFirst(t *testing.T) {
	days := []DaySummary{
		{Date: "2025-02-01", Pomodoros: 3},
		{Date: "2025-02-02", Pomodoros: 3},
	}
	in := RangeInsights(days)
	if in.BestDay != "2025-02-01" {
		t.Fatalf("best day = %s, want the earlier one", in.BestDay)
	}
}

func TestRangeInsightsEmpty(t *testing.T) {
	in := RangeInsights(nil)
	if in.BestDay != "" || in.AvgPerActive != 0 {
		t.Fatalf("empty range insights = %+v", in)
	}
}
