package views

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/htdinh/tictac/internal/model"
	"github.com/htdinh/tictac/internal/tracker"
	"github.com/htdinh/tictac/internal/ui/theme"
)

type settingsField int

const (
	fieldDailyGoal settingsField = iota
	fieldWeeklyGoal
	fieldMonthlyGoal
	fieldHourlyRate
	fieldContribution
	fieldCurrency
	fieldLanguage
	fieldStartDay
	settingsFieldCount
)

func (f settingsField) label() string {
	switch f {
	case fieldDailyGoal:
		return "Daily goal (minutes)"
	case fieldWeeklyGoal:
		return "Weekly goal (minutes)"
	case fieldMonthlyGoal:
		return "Monthly goal (minutes)"
	case fieldHourlyRate:
		return "Hourly rate"
	case fieldContribution:
		return "Contribution (%)"
	case fieldCurrency:
		return "Currency"
	case fieldLanguage:
		return "Language"
	case fieldStartDay:
		return "Week starts on"
	default:
		return ""
	}
}

// SettingsView edits goals, rates and display preferences.
type SettingsView struct {
	settings *tracker.SettingsRegistry
	width    int
	height   int

	cursor     settingsField
	editing    bool
	input      textinput.Model
	confirming bool // reset confirmation

	statusMsg string
}

// NewSettingsView creates a new settings view
func NewSettingsView(settings *tracker.SettingsRegistry) SettingsView {
	ti := textinput.New()
	ti.CharLimit = 16
	return SettingsView{
		settings: settings,
		input:    ti,
	}
}

// Init initializes the settings view
func (v SettingsView) Init() tea.Cmd {
	return nil
}

// SetSize sets the view dimensions
func (v SettingsView) SetSize(width, height int) SettingsView {
	v.width = width
	v.height = height
	return v
}

// IsInputMode reports whether the value input has focus
func (v SettingsView) IsInputMode() bool {
	return v.editing
}

// Update handles messages
func (v SettingsView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return v, nil
	}

	if v.confirming {
		switch keyMsg.String() {
		case "y", "enter":
			if err := v.settings.Reset(); err != nil {
				v.statusMsg = fmt.Sprintf("Error: %v", err)
			} else {
				v.statusMsg = "Settings reset to defaults"
			}
			v.confirming = false
		case "n", "esc":
			v.confirming = false
		}
		return v, nil
	}

	if v.editing {
		switch keyMsg.String() {
		case "enter":
			v.submitValue()
			return v, nil
		case "esc":
			v.editing = false
			v.input.Blur()
			return v, nil
		}
		var cmd tea.Cmd
		v.input, cmd = v.input.Update(keyMsg)
		return v, cmd
	}

	switch keyMsg.String() {
	case "j", "down":
		if v.cursor < settingsFieldCount-1 {
			v.cursor++
		}
	case "k", "up":
		if v.cursor > 0 {
			v.cursor--
		}
	case "enter":
		v.startEditing()
		return v, textinput.Blink
	case "R":
		v.confirming = true
	}
	return v, nil
}

// startEditing opens the input for the selected field. Enumerated
// fields cycle in place instead.
func (v *SettingsView) startEditing() {
	s := v.settings.Get()

	switch v.cursor {
	case fieldCurrency:
		v.cycleCurrency(s)
		return
	case fieldLanguage:
		v.toggleLanguage(s)
		return
	case fieldStartDay:
		v.toggleStartDay(s)
		return
	}

	var value string
	switch v.cursor {
	case fieldDailyGoal:
		value = strconv.FormatFloat(s.Goals.Daily, 'f', -1, 64)
	case fieldWeeklyGoal:
		value = strconv.FormatFloat(s.Goals.Weekly, 'f', -1, 64)
	case fieldMonthlyGoal:
		value = strconv.FormatFloat(s.Goals.Monthly, 'f', -1, 64)
	case fieldHourlyRate:
		value = strconv.FormatFloat(s.Rates.HourlyRate, 'f', -1, 64)
	case fieldContribution:
		value = strconv.FormatFloat(s.Rates.ContributionPercentage, 'f', -1, 64)
	}

	v.input.SetValue(value)
	v.input.Focus()
	v.editing = true
}

func (v *SettingsView) submitValue() {
	raw := strings.TrimSpace(v.input.Value())
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil || value < 0 {
		v.statusMsg = "Invalid value"
		return
	}

	switch v.cursor {
	case fieldDailyGoal:
		err = v.settings.UpdateGoals(tracker.GoalsPatch{Daily: &value})
	case fieldWeeklyGoal:
		err = v.settings.UpdateGoals(tracker.GoalsPatch{Weekly: &value})
	case fieldMonthlyGoal:
		err = v.settings.UpdateGoals(tracker.GoalsPatch{Monthly: &value})
	case fieldHourlyRate:
		err = v.settings.UpdateRates(tracker.RatesPatch{HourlyRate: &value})
	case fieldContribution:
		err = v.settings.UpdateRates(tracker.RatesPatch{ContributionPercentage: &value})
	}
	if err != nil {
		v.statusMsg = fmt.Sprintf("Error: %v", err)
		return
	}

	v.editing = false
	v.input.Blur()
	v.statusMsg = "Saved"
}

func (v *SettingsView) cycleCurrency(s model.Settings) {
	currencies := model.Currencies()
	for i, c := range currencies {
		if c == s.Rates.Currency {
			next := currencies[(i+1)%len(currencies)]
			if err := v.settings.UpdateRates(tracker.RatesPatch{Currency: &next}); err != nil {
				v.statusMsg = fmt.Sprintf("Error: %v", err)
			} else {
				v.statusMsg = fmt.Sprintf("Currency: %s", next)
			}
			return
		}
	}
}

func (v *SettingsView) toggleLanguage(s model.Settings) {
	next := "vi"
	if s.Display.Language == "vi" {
		next = "en"
	}
	if err := v.settings.UpdateDisplay(tracker.DisplayPatch{Language: &next}); err != nil {
		v.statusMsg = fmt.Sprintf("Error: %v", err)
	} else {
		v.statusMsg = fmt.Sprintf("Language: %s", next)
	}
}

func (v *SettingsView) toggleStartDay(s model.Settings) {
	next := 1
	if s.Display.StartDayOfWeek == 1 {
		next = 0
	}
	if err := v.settings.UpdateDisplay(tracker.DisplayPatch{StartDayOfWeek: &next}); err != nil {
		v.statusMsg = fmt.Sprintf("Error: %v", err)
	} else {
		v.statusMsg = fmt.Sprintf("Week starts on %s", weekdayName(next))
	}
}

func weekdayName(startDay int) string {
	if startDay == 1 {
		return "Monday"
	}
	return "Sunday"
}

// View renders the settings view
func (v SettingsView) View() string {
	styles := theme.Current.Styles
	t := theme.Current.Theme
	s := v.settings.Get()

	values := map[settingsField]string{
		fieldDailyGoal:    strconv.FormatFloat(s.Goals.Daily, 'f', -1, 64),
		fieldWeeklyGoal:   strconv.FormatFloat(s.Goals.Weekly, 'f', -1, 64),
		fieldMonthlyGoal:  strconv.FormatFloat(s.Goals.Monthly, 'f', -1, 64),
		fieldHourlyRate:   strconv.FormatFloat(s.Rates.HourlyRate, 'f', -1, 64),
		fieldContribution: strconv.FormatFloat(s.Rates.ContributionPercentage, 'f', -1, 64),
		fieldCurrency:     string(s.Rates.Currency),
		fieldLanguage:     s.Display.Language,
		fieldStartDay:     weekdayName(s.Display.StartDayOfWeek),
	}

	var b strings.Builder
	b.WriteString(styles.Title.Render("Settings"))
	b.WriteString("\n")

	for f := settingsField(0); f < settingsFieldCount; f++ {
		line := fmt.Sprintf("%-24s %s", f.label(), values[f])
		if f == v.cursor && v.editing {
			line = fmt.Sprintf("%-24s %s", f.label(), v.input.View())
		}
		if f == v.cursor {
			b.WriteString(styles.RowSelected.Render(line))
		} else {
			b.WriteString(styles.RowNormal.Render(line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(styles.Label.Render("enter edit/cycle, R reset all"))

	if v.confirming {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Foreground(t.Error).Render("Reset all settings to defaults? (y/n)"))
	}

	if v.statusMsg != "" {
		b.WriteString("\n")
		b.WriteString(styles.Subtitle.Render(v.statusMsg))
	}

	return b.String()
}
