package analytics

import (
	"sort"
	"time"

	"tradelens/internal/models"
)

// weekKey identifies an ISO 8601 week. Late-December and early-January
// dates can belong to a week of the neighboring year, so the ISO year is
// part of the key rather than the calendar year.
type weekKey struct {
	year int
	week int
}

// mondayOf returns Monday 00:00:00 UTC of the week containing t.
func mondayOf(t time.Time) time.Time {
	t = t.UTC()
	offset := (int(t.Weekday()) + 6) % 7
	monday := t.AddDate(0, 0, -offset)
	return time.Date(monday.Year(), monday.Month(), monday.Day(), 0, 0, 0, 0, time.UTC)
}

// weeklySummaries folds daily summaries into ISO-week buckets. Each week
// spans Monday 00:00:00 through Sunday 23:59:59 UTC regardless of which
// days inside it saw trading. The result is sorted by week start.
func weeklySummaries(dailies []models.DailySummary) []models.WeeklySummary {
	byWeek := make(map[weekKey][]models.DailySummary)
	for _, d := range dailies {
		year, week := d.Date.ISOWeek()
		k := weekKey{year: year, week: week}
		byWeek[k] = append(byWeek[k], d)
	}

	weeks := make([]models.WeeklySummary, 0, len(byWeek))
	for k, days := range byWeek {
		sort.Slice(days, func(i, j int) bool { return days[i].Date.Before(days[j].Date) })

		start := mondayOf(days[0].Date)
		w := models.WeeklySummary{
			WeekNumber: k.week,
			Year:       k.year,
			StartDate:  start,
			EndDate:    start.AddDate(0, 0, 6).Add(23*time.Hour + 59*time.Minute + 59*time.Second),
		}
		w.RecomputeFromDailies(days)
		weeks = append(weeks, w)
	}

	sort.Slice(weeks, func(i, j int) bool { return weeks[i].StartDate.Before(weeks[j].StartDate) })
	return weeks
}
