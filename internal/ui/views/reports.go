package views

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/htdinh/tictac/internal/model"
	"github.com/htdinh/tictac/internal/notify"
	"github.com/htdinh/tictac/internal/tracker"
	"github.com/htdinh/tictac/internal/ui/theme"
)

// ReportsView shows tracked time against goals plus a month-by-month
// per-project breakdown with income.
type ReportsView struct {
	engine   *tracker.Engine
	projects *tracker.ProjectRegistry
	settings *tracker.SettingsRegistry
	width    int
	height   int

	months  []string
	summary map[string]*tracker.MonthTotal
	cursor  int

	statusMsg string
}

// NewReportsView creates a new reports view
func NewReportsView(engine *tracker.Engine, projects *tracker.ProjectRegistry, settings *tracker.SettingsRegistry) ReportsView {
	return ReportsView{
		engine:   engine,
		projects: projects,
		settings: settings,
	}
}

// Init loads the summary
func (v ReportsView) Init() tea.Cmd {
	return func() tea.Msg {
		return reportsReloadMsg{}
	}
}

// SetSize sets the view dimensions
func (v ReportsView) SetSize(width, height int) ReportsView {
	v.width = width
	v.height = height
	return v
}

// IsInputMode is always false, reports are read only
func (v ReportsView) IsInputMode() bool {
	return false
}

type reportsReloadMsg struct{}

// Update handles messages
func (v ReportsView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case reportsReloadMsg:
		v.reload()
		return v, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "j", "down":
			if v.cursor < len(v.months)-1 {
				v.cursor++
			}
		case "k", "up":
			if v.cursor > 0 {
				v.cursor--
			}
		case "r":
			v.reload()
			v.statusMsg = "Reloaded"
		}
	}

	return v, nil
}

// reload recomputes the summary, newest month first
func (v *ReportsView) reload() {
	v.summary = v.engine.MonthSummary()

	months := make([]string, 0, len(v.summary))
	for key := range v.summary {
		months = append(months, key)
	}
	sort.Slice(months, func(i, j int) bool {
		mi, yi := parseMonthKey(months[i])
		mj, yj := parseMonthKey(months[j])
		if yi != yj {
			return yi > yj
		}
		return mi > mj
	})
	v.months = months
	if v.cursor >= len(months) {
		v.cursor = 0
	}
}

// parseMonthKey splits an "M/YYYY" key
func parseMonthKey(key string) (month, year int) {
	parts := strings.SplitN(key, "/", 2)
	if len(parts) != 2 {
		return 0, 0
	}
	month, _ = strconv.Atoi(parts[0])
	year, _ = strconv.Atoi(parts[1])
	return month, year
}

// View renders the reports view
func (v ReportsView) View() string {
	styles := theme.Current.Styles
	t := theme.Current.Theme
	settings := v.settings.Get()

	var b strings.Builder
	b.WriteString(styles.Title.Render("Reports"))
	b.WriteString("\n")

	today := v.engine.TodayTracked()
	week := v.engine.WeekTracked(settings.Display.StartDayOfWeek)
	month := monthTracked(v.engine.CurrentMonthEntries())

	b.WriteString(styles.Label.Render("today  "))
	b.WriteString(renderProgress(today, settings.Goals.Daily, t))
	b.WriteString("\n")
	b.WriteString(styles.Label.Render("week   "))
	b.WriteString(renderProgress(week, settings.Goals.Weekly, t))
	b.WriteString("\n")
	b.WriteString(styles.Label.Render("month  "))
	b.WriteString(renderProgress(month, settings.Goals.Monthly, t))
	b.WriteString("\n\n")

	income := v.settings.CalculateIncome(month)
	b.WriteString(styles.Subtitle.Render(fmt.Sprintf(
		"this month: %.0f total, %.0f contribution, %.0f net (%s)",
		income.Total, income.Contribution, income.Net, income.Currency,
	)))
	b.WriteString("\n\n")

	b.WriteString(styles.Title.Render("By month"))
	b.WriteString("\n")
	if len(v.months) == 0 {
		b.WriteString(styles.Label.Render("No entries yet."))
		return b.String()
	}

	for i, key := range v.months {
		total := v.summary[key]
		header := fmt.Sprintf("%-8s %s", key, notify.FormatMinutes(total.TotalMinutes))
		if i == v.cursor {
			b.WriteString(styles.RowSelected.Render(header))
		} else {
			b.WriteString(styles.RowNormal.Render(header))
		}
		b.WriteString("\n")

		// Expand the selected month per project
		if i != v.cursor {
			continue
		}
		for _, pt := range sortedProjectTotals(total) {
			share := pt.TotalMinutes / total.TotalMinutes * 100
			line := fmt.Sprintf("    %-24s %-8s %4.1f%%", pt.Name, notify.FormatMinutes(pt.TotalMinutes), share)
			b.WriteString(styles.RowSubtle.Render(line))
			b.WriteString("\n")
		}
	}

	if v.statusMsg != "" {
		b.WriteString("\n")
		b.WriteString(styles.Subtitle.Render(v.statusMsg))
	}

	return b.String()
}

func monthTracked(entries []model.TimeEntry) float64 {
	var total float64
	for _, entry := range entries {
		total += entry.Duration
	}
	return total
}

func sortedProjectTotals(total *tracker.MonthTotal) []*tracker.ProjectTotal {
	result := make([]*tracker.ProjectTotal, 0, len(total.Projects))
	for _, pt := range total.Projects {
		result = append(result, pt)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].TotalMinutes > result[j].TotalMinutes
	})
	return result
}
