package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/htdinh/tictac/internal/app"
	"github.com/htdinh/tictac/internal/ui/theme"
	"github.com/htdinh/tictac/internal/ui/views"
)

// RootModel is the main application model that manages views
type RootModel struct {
	app    *app.App
	keys   KeyMap
	help   help.Model
	width  int
	height int

	currentView  View
	timerView    views.TimerView
	historyView  views.HistoryView
	projectsView views.ProjectsView
	reportsView  views.ReportsView
	settingsView views.SettingsView
	helpVisible  bool

	statusMsg string
	errorMsg  string
}

// NewRootModel creates a new root model
func NewRootModel(application *app.App) RootModel {
	h := help.New()
	h.ShowAll = false

	return RootModel{
		app:          application,
		keys:         DefaultKeyMap(),
		help:         h,
		currentView:  ViewTimer,
		timerView:    views.NewTimerView(application.Engine, application.Projects, application.Settings, application.Notifier),
		historyView:  views.NewHistoryView(application.Engine, application.Projects),
		projectsView: views.NewProjectsView(application.Projects),
		reportsView:  views.NewReportsView(application.Engine, application.Projects, application.Settings),
		settingsView: views.NewSettingsView(application.Settings),
	}
}

// Init initializes the model
func (m RootModel) Init() tea.Cmd {
	return m.timerView.Init()
}

// SetStartView switches the initial view
func (m RootModel) SetStartView(v View) RootModel {
	m.currentView = v
	return m
}

// Update handles messages
func (m RootModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width

		// Reserve space for header and footer
		contentHeight := m.height - 4
		m.timerView = m.timerView.SetSize(m.width, contentHeight)
		m.historyView = m.historyView.SetSize(m.width, contentHeight)
		m.projectsView = m.projectsView.SetSize(m.width, contentHeight)
		m.reportsView = m.reportsView.SetSize(m.width, contentHeight)
		m.settingsView = m.settingsView.SetSize(m.width, contentHeight)

	case tea.KeyMsg:
		// Clear status/error on any keypress
		m.statusMsg = ""
		m.errorMsg = ""

		isInputMode := false
		switch m.currentView {
		case ViewTimer:
			isInputMode = m.timerView.IsInputMode()
		case ViewHistory:
			isInputMode = m.historyView.IsInputMode()
		case ViewProjects:
			isInputMode = m.projectsView.IsInputMode()
		case ViewSettings:
			isInputMode = m.settingsView.IsInputMode()
		}

		// Global keybindings
		switch {
		case key.Matches(msg, m.keys.Quit):
			// ctrl+c always quits, but 'q' only quits when not in input mode
			if msg.String() == "ctrl+c" || !isInputMode {
				return m, tea.Quit
			}

		case key.Matches(msg, m.keys.ThemeCycle):
			m.cycleTheme()
			return m, nil
		}

		if isInputMode {
			break // Fall through to view delegation
		}

		switch {
		case key.Matches(msg, m.keys.Help):
			m.helpVisible = !m.helpVisible
			m.help.ShowAll = m.helpVisible
			return m, nil

		// View switching (1-5 keys)
		case key.Matches(msg, m.keys.TimerView):
			m.currentView = ViewTimer
			return m, m.timerView.Init()
		case key.Matches(msg, m.keys.HistoryView):
			m.currentView = ViewHistory
			return m, m.historyView.Init()
		case key.Matches(msg, m.keys.ProjectsView):
			m.currentView = ViewProjects
			return m, m.projectsView.Init()
		case key.Matches(msg, m.keys.ReportsView):
			m.currentView = ViewReports
			return m, m.reportsView.Init()
		case key.Matches(msg, m.keys.SettingsView):
			m.currentView = ViewSettings
			return m, m.settingsView.Init()
		}

	case ErrorMsg:
		m.errorMsg = msg.Err.Error()
		return m, nil

	case StatusMsg:
		m.statusMsg = msg.Message
		return m, nil

	case ThemeChangedMsg:
		m.statusMsg = fmt.Sprintf("Theme: %s", msg.ThemeName)
		return m, nil
	}

	// Delegate to current view
	switch m.currentView {
	case ViewTimer:
		newView, cmd := m.timerView.Update(msg)
		m.timerView = newView.(views.TimerView)
		cmds = append(cmds, cmd)
	case ViewHistory:
		newView, cmd := m.historyView.Update(msg)
		m.historyView = newView.(views.HistoryView)
		cmds = append(cmds, cmd)
	case ViewProjects:
		newView, cmd := m.projectsView.Update(msg)
		m.projectsView = newView.(views.ProjectsView)
		cmds = append(cmds, cmd)
	case ViewReports:
		newView, cmd := m.reportsView.Update(msg)
		m.reportsView = newView.(views.ReportsView)
		cmds = append(cmds, cmd)
	case ViewSettings:
		newView, cmd := m.settingsView.Update(msg)
		m.settingsView = newView.(views.SettingsView)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// View renders the UI
func (m RootModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	styles := theme.Current.Styles
	var sections []string

	sections = append(sections, m.renderHeader())

	contentHeight := m.height - 4
	if m.errorMsg != "" || m.statusMsg != "" {
		contentHeight--
	}
	var content string

	if m.helpVisible {
		content = m.renderHelp()
	} else {
		switch m.currentView {
		case ViewTimer:
			content = m.timerView.View()
		case ViewHistory:
			content = m.historyView.View()
		case ViewProjects:
			content = m.projectsView.View()
		case ViewReports:
			content = m.reportsView.View()
		case ViewSettings:
			content = m.settingsView.View()
		default:
			content = styles.Panel.Render("View not implemented")
		}
	}

	// Ensure content fills available space
	contentLines := strings.Count(content, "\n") + 1
	if contentLines < contentHeight {
		content += strings.Repeat("\n", contentHeight-contentLines)
	}
	sections = append(sections, content)

	sections = append(sections, m.renderFooter())

	return strings.Join(sections, "\n")
}

// renderHeader renders the header bar
func (m RootModel) renderHeader() string {
	styles := theme.Current.Styles
	t := theme.Current.Theme

	title := styles.Header.Render("tictac")

	viewStyle := lipgloss.NewStyle().
		Foreground(t.Subtle).
		Padding(0, 1)
	viewIndicator := viewStyle.Render(fmt.Sprintf("[%s]", m.currentView.String()))

	themeIndicator := viewStyle.Render(fmt.Sprintf("theme: %s", t.Name))

	leftSide := lipgloss.JoinHorizontal(lipgloss.Center, title, viewIndicator)
	rightSide := themeIndicator

	gap := m.width - lipgloss.Width(leftSide) - lipgloss.Width(rightSide)
	if gap < 0 {
		gap = 0
	}

	return leftSide + strings.Repeat(" ", gap) + rightSide
}

// renderFooter renders the footer/status bar
func (m RootModel) renderFooter() string {
	styles := theme.Current.Styles
	t := theme.Current.Theme

	key := func(k, desc string) string {
		return styles.HelpKey.Render(k) + styles.HelpDesc.Render(" "+desc)
	}
	sep := styles.HelpSeparator.Render(" │ ")

	var statusLine string
	if m.errorMsg != "" {
		statusLine = lipgloss.NewStyle().Foreground(t.Error).Render(m.errorMsg)
	} else if m.statusMsg != "" {
		statusLine = lipgloss.NewStyle().Foreground(t.Info).Render(m.statusMsg)
	}

	var line1, line2 string

	switch m.currentView {
	case ViewTimer:
		if m.timerView.IsInputMode() {
			line1 = key("enter", "save note") + sep + key("esc", "cancel")
		} else {
			line1 = key("space", "start/stop") + sep +
				key("n", "note") + sep +
				key("j/k", "pick project") + sep +
				key("enter", "select")
			line2 = key("1-5", "views") + sep +
				key("ctrl+t", "theme") + sep +
				key("?", "help")
		}

	case ViewHistory:
		if m.historyView.IsInputMode() {
			line1 = key("enter", "confirm") + sep + key("tab", "field") + sep + key("esc", "cancel")
		} else {
			line1 = key("j/k", "navigate") + sep +
				key("enter", "edit") + sep +
				key("d", "delete") + sep +
				key("/", "search") + sep +
				key("esc", "clear filter")
			line2 = key("1-5", "views") + sep +
				key("ctrl+t", "theme") + sep +
				key("?", "help")
		}

	case ViewProjects:
		if m.projectsView.IsInputMode() {
			line1 = key("enter", "save") + sep + key("tab", "field") + sep + key("esc", "cancel")
		} else {
			line1 = key("a", "add") + sep +
				key("enter", "edit") + sep +
				key("space", "make current") + sep +
				key("d", "delete")
			line2 = key("1-5", "views") + sep +
				key("ctrl+t", "theme") + sep +
				key("?", "help")
		}

	case ViewReports:
		line1 = key("j/k", "months") + sep + key("r", "refresh")
		line2 = key("1-5", "views") + sep +
			key("ctrl+t", "theme") + sep +
			key("?", "help")

	case ViewSettings:
		line1 = key("j/k", "navigate") + sep +
			key("enter", "edit/cycle") + sep +
			key("R", "reset all")
		line2 = key("1-5", "views") + sep +
			key("ctrl+t", "theme") + sep +
			key("?", "help")

	default:
		line1 = key("1-5", "views") + sep + key("?", "help")
	}

	var lines []string
	if statusLine != "" {
		lines = append(lines, statusLine)
	}
	if line1 != "" {
		lines = append(lines, line1)
	}
	if line2 != "" {
		lines = append(lines, line2)
	}

	return strings.Join(lines, "\n")
}

// renderHelp renders the help overlay
func (m RootModel) renderHelp() string {
	t := theme.Current.Theme

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(t.Primary).
		MarginBottom(1)

	sectionStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(t.Secondary).
		MarginTop(1)

	keyStyle := lipgloss.NewStyle().
		Foreground(t.Foreground).
		Bold(true).
		Width(12)

	descStyle := lipgloss.NewStyle().
		Foreground(t.Subtle)

	var b strings.Builder

	b.WriteString(titleStyle.Render("Tictac Help"))
	b.WriteString("\n\n")

	section := func(name string, entries [][]string) {
		b.WriteString(sectionStyle.Render(name))
		b.WriteString("\n")
		for _, kv := range entries {
			b.WriteString(keyStyle.Render(kv[0]))
			b.WriteString(descStyle.Render(kv[1]))
			b.WriteString("\n")
		}
	}

	section("Views", [][]string{
		{"1", "Timer (track time live)"},
		{"2", "History (browse and edit entries)"},
		{"3", "Projects (manage projects)"},
		{"4", "Reports (totals, goals, income)"},
		{"5", "Settings (goals, rates, display)"},
	})

	section("Timer", [][]string{
		{"space", "Start or stop tracking"},
		{"n", "Edit the session note"},
		{"j/k enter", "Pick the current project"},
	})

	section("History", [][]string{
		{"/", "Search project names and notes"},
		{"enter", "Edit start, end and note"},
		{"d", "Delete entry (confirmed)"},
	})

	section("System", [][]string{
		{"ctrl+t", "Cycle theme"},
		{"q / ctrl+c", "Quit"},
	})

	b.WriteString("\n")
	b.WriteString(descStyle.Render("Press ? to close"))

	return b.String()
}

// cycleTheme cycles through available themes
func (m *RootModel) cycleTheme() {
	themes := theme.Available()
	current := theme.Current.Theme.Name

	for i, t := range themes {
		if t.Name == current {
			next := themes[(i+1)%len(themes)]
			theme.SetTheme(next)
			m.statusMsg = fmt.Sprintf("Theme: %s", next.Name)
			return
		}
	}
}
