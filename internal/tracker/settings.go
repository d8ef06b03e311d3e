package tracker

import (
	"fmt"

	"github.com/htdinh/tictac/internal/model"
	"github.com/htdinh/tictac/internal/store"
)

// Income is the billing breakdown for a stretch of tracked minutes.
type Income struct {
	Total        float64
	Contribution float64
	Net          float64
	Currency     model.Currency
}

// GoalsPatch updates individual goal targets, in minutes.
type GoalsPatch struct {
	Daily   *float64
	Weekly  *float64
	Monthly *float64
}

// RatesPatch updates individual billing parameters.
type RatesPatch struct {
	HourlyRate             *float64
	ContributionPercentage *float64
	Currency               *model.Currency
}

// DisplayPatch updates individual display preferences.
type DisplayPatch struct {
	Language       *string
	StartDayOfWeek *int
}

// SettingsRegistry owns the settings singleton. Defaults are written to
// the store the first time no settings exist.
type SettingsRegistry struct {
	store    *store.Store
	settings model.Settings
}

// NewSettingsRegistry loads settings, creating defaults if absent
func NewSettingsRegistry(st *store.Store) (*SettingsRegistry, error) {
	r := &SettingsRegistry{store: st}

	found, err := st.Get(store.KeySettings, &r.settings)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	if !found {
		r.settings = model.DefaultSettings()
		if err := st.Put(store.KeySettings, r.settings); err != nil {
			return nil, fmt.Errorf("failed to save default settings: %w", err)
		}
	}

	return r, nil
}

// Get returns the current settings
func (r *SettingsRegistry) Get() model.Settings {
	return r.settings
}

// UpdateGoals merges the patch into the goals section and persists
func (r *SettingsRegistry) UpdateGoals(patch GoalsPatch) error {
	if patch.Daily != nil {
		r.settings.Goals.Daily = *patch.Daily
	}
	if patch.Weekly != nil {
		r.settings.Goals.Weekly = *patch.Weekly
	}
	if patch.Monthly != nil {
		r.settings.Goals.Monthly = *patch.Monthly
	}
	return r.store.Put(store.KeySettings, r.settings)
}

// UpdateRates merges the patch into the rates section and persists
func (r *SettingsRegistry) UpdateRates(patch RatesPatch) error {
	if patch.HourlyRate != nil {
		r.settings.Rates.HourlyRate = *patch.HourlyRate
	}
	if patch.ContributionPercentage != nil {
		r.settings.Rates.ContributionPercentage = *patch.ContributionPercentage
	}
	if patch.Currency != nil {
		r.settings.Rates.Currency = *patch.Currency
	}
	return r.store.Put(store.KeySettings, r.settings)
}

// UpdateDisplay merges the patch into the display section and persists
func (r *SettingsRegistry) UpdateDisplay(patch DisplayPatch) error {
	if patch.Language != nil {
		r.settings.Display.Language = *patch.Language
	}
	if patch.StartDayOfWeek != nil {
		r.settings.Display.StartDayOfWeek = *patch.StartDayOfWeek
	}
	return r.store.Put(store.KeySettings, r.settings)
}

// Reset restores default settings without touching other collections
func (r *SettingsRegistry) Reset() error {
	r.settings = model.DefaultSettings()
	return r.store.Put(store.KeySettings, r.settings)
}

// CalculateIncome computes the billing breakdown for tracked minutes at
// the global hourly rate.
func (r *SettingsRegistry) CalculateIncome(minutes float64) Income {
	return r.CalculateIncomeAtRate(minutes, r.settings.Rates.HourlyRate)
}

// CalculateIncomeAtRate computes the breakdown at a specific hourly rate.
// Contribution percentage and currency always come from global settings.
func (r *SettingsRegistry) CalculateIncomeAtRate(minutes, hourlyRate float64) Income {
	hours := minutes / 60
	total := hours * hourlyRate
	contribution := total * r.settings.Rates.ContributionPercentage / 100

	return Income{
		Total:        total,
		Contribution: contribution,
		Net:          total - contribution,
		Currency:     r.settings.Rates.Currency,
	}
}
