package model

import (
	"time"
)

// DefaultProjectColor is used when a project has no color set.
const DefaultProjectColor = "#4F46E5"

// Goals holds time targets in minutes.
type Goals struct {
	Daily   float64 `json:"daily"`
	Weekly  float64 `json:"weekly"`
	Monthly float64 `json:"monthly"`
}

// ProjectRates holds per-project billing parameters.
type ProjectRates struct {
	ContributionPercentage float64  `json:"contributionPercentage"`
	Currency               Currency `json:"currency"`
}

// Project represents a billable project
type Project struct {
	ID         string       `json:"id"`
	Name       string       `json:"name"`
	Color      string       `json:"color,omitempty"`
	HourlyRate float64      `json:"hourlyRate"`
	Goals      Goals        `json:"goals"`
	Rates      ProjectRates `json:"rates"`
	CreatedAt  time.Time    `json:"createdAt"`
}

// DisplayColor returns the project color, falling back to the default
func (p *Project) DisplayColor() string {
	if p.Color == "" {
		return DefaultProjectColor
	}
	return p.Color
}
