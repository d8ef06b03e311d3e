package views

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/htdinh/tictac/internal/notify"
	"github.com/htdinh/tictac/internal/tracker"
	"github.com/htdinh/tictac/internal/ui/theme"
)

// TimerView is the main tracking view: pick a project, start the
// clock, stop it to cut a time entry.
type TimerView struct {
	engine   *tracker.Engine
	projects *tracker.ProjectRegistry
	settings *tracker.SettingsRegistry
	notifier *notify.Notifier
	width    int
	height   int

	cursor      int
	noteInput   textinput.Model
	editingNote bool
	elapsed     time.Duration

	statusMsg string
}

// NewTimerView creates a new timer view
func NewTimerView(engine *tracker.Engine, projects *tracker.ProjectRegistry, settings *tracker.SettingsRegistry, notifier *notify.Notifier) TimerView {
	ti := textinput.New()
	ti.Placeholder = "What are you working on?"
	ti.CharLimit = 200

	return TimerView{
		engine:    engine,
		projects:  projects,
		settings:  settings,
		notifier:  notifier,
		noteInput: ti,
	}
}

// Init initializes the timer view
func (v TimerView) Init() tea.Cmd {
	if v.engine.Tracking() {
		return timerTickCmd()
	}
	return nil
}

// SetSize sets the view dimensions
func (v TimerView) SetSize(width, height int) TimerView {
	v.width = width
	v.height = height
	return v
}

// IsInputMode reports whether the note input has focus
func (v TimerView) IsInputMode() bool {
	return v.editingNote
}

type timerTickMsg struct{}

func timerTickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return timerTickMsg{}
	})
}

// Update handles messages
func (v TimerView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case timerTickMsg:
		if session := v.engine.Session(); session != nil {
			v.elapsed = time.Since(session.StartTime)
			return v, timerTickCmd()
		}
		return v, nil

	case tea.KeyMsg:
		if v.editingNote {
			switch msg.String() {
			case "enter":
				v.editingNote = false
				v.noteInput.Blur()
				if v.engine.Tracking() {
					if err := v.engine.UpdateNote(v.noteInput.Value()); err != nil {
						v.statusMsg = fmt.Sprintf("Error: %v", err)
					} else {
						v.statusMsg = "Note saved"
					}
				}
				return v, nil
			case "esc":
				v.editingNote = false
				v.noteInput.Blur()
				return v, nil
			default:
				var cmd tea.Cmd
				v.noteInput, cmd = v.noteInput.Update(msg)
				return v, cmd
			}
		}

		switch msg.String() {
		case "j", "down":
			if v.cursor < len(v.projects.All())-1 {
				v.cursor++
			}
			return v, nil

		case "k", "up":
			if v.cursor > 0 {
				v.cursor--
			}
			return v, nil

		case "enter":
			all := v.projects.All()
			if v.cursor < len(all) {
				if err := v.projects.Select(all[v.cursor].ID); err != nil {
					v.statusMsg = fmt.Sprintf("Error: %v", err)
				} else {
					v.statusMsg = fmt.Sprintf("Project: %s", all[v.cursor].Name)
				}
			}
			return v, nil

		case " ", "s":
			var cmd tea.Cmd
			if v.engine.Tracking() {
				cmd = v.stopTracking()
			} else {
				cmd = v.startTracking()
			}
			return v, cmd

		case "n":
			v.editingNote = true
			if session := v.engine.Session(); session != nil {
				v.noteInput.SetValue(session.Note)
			}
			v.noteInput.Focus()
			return v, textinput.Blink
		}
	}

	return v, nil
}

func (v *TimerView) startTracking() tea.Cmd {
	if err := v.engine.StartTracking(); err != nil {
		v.statusMsg = fmt.Sprintf("Error: %v", err)
		return nil
	}
	v.elapsed = 0
	v.noteInput.SetValue("")
	v.statusMsg = "Tracking started"
	return timerTickCmd()
}

func (v *TimerView) stopTracking() tea.Cmd {
	before := v.engine.TodayTracked()

	entry, err := v.engine.StopTracking()
	if err != nil {
		v.statusMsg = fmt.Sprintf("Error: %v", err)
		return nil
	}
	v.elapsed = 0
	v.statusMsg = fmt.Sprintf("Saved %s on %s", notify.FormatMinutes(entry.Duration), entry.ProjectName)

	go v.notifier.SendSessionStopped(entry.ProjectName, entry.Duration)

	goal := v.settings.Get().Goals.Daily
	after := v.engine.TodayTracked()
	if goal > 0 && before < goal && after >= goal {
		go v.notifier.SendDailyGoalReached(after, goal)
	}
	return nil
}

// View renders the timer view
func (v TimerView) View() string {
	styles := theme.Current.Styles
	t := theme.Current.Theme

	var b strings.Builder

	// Clock panel
	var clock string
	if session := v.engine.Session(); session != nil {
		project := v.projects.Get(session.ProjectID)
		name := "(deleted project)"
		if project != nil {
			name = project.Name
		}
		elapsed := v.elapsed
		if elapsed == 0 {
			elapsed = time.Since(session.StartTime)
		}
		clock = styles.Clock.Render(formatElapsed(elapsed)) + "  " +
			lipgloss.NewStyle().Foreground(t.Foreground).Render(name)
		if session.Note != "" {
			clock += "\n" + styles.Note.Render(session.Note)
		}
	} else {
		idle := lipgloss.NewStyle().Foreground(t.TimerIdle)
		clock = idle.Render("00:00:00") + "  " + styles.Label.Render("not tracking")
	}
	b.WriteString(styles.Panel.Render(clock))
	b.WriteString("\n\n")

	// Daily and weekly progress
	settings := v.settings.Get()
	today := v.engine.TodayTracked()
	week := v.engine.WeekTracked(settings.Display.StartDayOfWeek)
	income := v.settings.CalculateIncome(today)

	b.WriteString(styles.Label.Render("today  "))
	b.WriteString(renderProgress(today, settings.Goals.Daily, t))
	b.WriteString("\n")
	b.WriteString(styles.Label.Render("week   "))
	b.WriteString(renderProgress(week, settings.Goals.Weekly, t))
	b.WriteString("\n")
	b.WriteString(styles.Label.Render("income "))
	b.WriteString(styles.Duration.Render(fmt.Sprintf("%.0f %s net today", income.Net, income.Currency)))
	b.WriteString("\n\n")

	// Project picker
	b.WriteString(styles.Title.Render("Projects"))
	b.WriteString("\n")
	all := v.projects.All()
	if len(all) == 0 {
		b.WriteString(styles.Label.Render("No projects yet. Press 3 to manage projects."))
		b.WriteString("\n")
	}
	currentID := v.projects.CurrentID()
	for i, p := range all {
		marker := "  "
		if p.ID == currentID {
			marker = "● "
		}
		dot := lipgloss.NewStyle().Foreground(lipgloss.Color(p.DisplayColor())).Render("▌")
		line := dot + marker + p.Name
		if i == v.cursor {
			b.WriteString(styles.RowSelected.Render(line))
		} else {
			b.WriteString(styles.RowNormal.Render(line))
		}
		b.WriteString("\n")
	}

	if v.editingNote {
		b.WriteString("\n")
		b.WriteString(styles.InputFocused.Render(v.noteInput.View()))
	}

	if v.statusMsg != "" {
		b.WriteString("\n")
		b.WriteString(styles.Subtitle.Render(v.statusMsg))
	}

	return b.String()
}

// formatElapsed renders a duration as HH:MM:SS
func formatElapsed(d time.Duration) string {
	total := int(d.Seconds())
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}

// renderProgress draws a small bar with tracked minutes against a goal
func renderProgress(minutes, goal float64, t theme.Theme) string {
	const width = 20

	if goal <= 0 {
		return notify.FormatMinutes(minutes)
	}

	ratio := minutes / goal
	if ratio > 1 {
		ratio = 1
	}
	filled := int(ratio * width)

	color := t.GoalBehind
	if minutes >= goal {
		color = t.GoalMet
	}
	bar := lipgloss.NewStyle().Foreground(color).Render(strings.Repeat("█", filled)) +
		lipgloss.NewStyle().Foreground(t.Subtle).Render(strings.Repeat("░", width-filled))

	return fmt.Sprintf("%s %s / %s", bar, notify.FormatMinutes(minutes), notify.FormatMinutes(goal))
}
