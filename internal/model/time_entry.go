package model

import (
	"math"
	"time"
)

// DateLayout is the calendar-day key used for daily lookups.
const DateLayout = "2006-01-02"

// TimeEntry represents a completed work interval (tracked or manual)
type TimeEntry struct {
	ID           string    `json:"id"`
	ProjectID    string    `json:"projectId"`
	ProjectName  string    `json:"projectName"`
	ProjectColor string    `json:"projectColor,omitempty"`
	StartTime    time.Time `json:"startTime"`
	EndTime      time.Time `json:"endTime"`
	Duration     float64   `json:"duration"` // Minutes, 2 decimal places
	Note         string    `json:"note,omitempty"`
	Date         string    `json:"date"` // Calendar day of EndTime, local time
}

// ActiveSession is the in-progress tracking interval. At most one exists.
type ActiveSession struct {
	ProjectID string    `json:"projectId"`
	StartTime time.Time `json:"startTime"`
	Note      string    `json:"note,omitempty"`
}

// CalculateDuration returns the minutes between start and end,
// rounded to 2 decimal places. Zero if either bound is missing.
func CalculateDuration(start, end time.Time) float64 {
	if start.IsZero() || end.IsZero() {
		return 0
	}
	minutes := end.Sub(start).Minutes()
	return math.Round(minutes*100) / 100
}

// DateKey returns the calendar-day string for t in local time.
func DateKey(t time.Time) string {
	return t.Local().Format(DateLayout)
}
