package views

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/htdinh/tictac/internal/model"
	"github.com/htdinh/tictac/internal/notify"
	"github.com/htdinh/tictac/internal/tracker"
	"github.com/htdinh/tictac/internal/ui/theme"
)

const entryTimeLayout = "2006-01-02 15:04"

type historyMode int

const (
	historyBrowse historyMode = iota
	historySearch
	historyEdit
	historyConfirmDelete
)

// HistoryView lists past time entries with search, edit and delete.
type HistoryView struct {
	engine   *tracker.Engine
	projects *tracker.ProjectRegistry
	width    int
	height   int

	mode    historyMode
	entries []model.TimeEntry
	cursor  int
	offset  int

	searchInput textinput.Model
	query       string

	// Edit form state
	editID     string
	editInputs []textinput.Model
	editFocus  int

	statusMsg string
}

// NewHistoryView creates a new history view
func NewHistoryView(engine *tracker.Engine, projects *tracker.ProjectRegistry) HistoryView {
	si := textinput.New()
	si.Placeholder = "Search project or note..."
	si.CharLimit = 100

	return HistoryView{
		engine:      engine,
		projects:    projects,
		searchInput: si,
	}
}

// Init loads entries
func (v HistoryView) Init() tea.Cmd {
	return func() tea.Msg {
		return historyReloadMsg{}
	}
}

// SetSize sets the view dimensions
func (v HistoryView) SetSize(width, height int) HistoryView {
	v.width = width
	v.height = height
	return v
}

// IsInputMode reports whether a text input has focus
func (v HistoryView) IsInputMode() bool {
	return v.mode == historySearch || v.mode == historyEdit
}

type historyReloadMsg struct{}

// Update handles messages
func (v HistoryView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case historyReloadMsg:
		v.reload()
		return v, nil

	case tea.KeyMsg:
		switch v.mode {
		case historySearch:
			return v.updateSearch(msg)
		case historyEdit:
			return v.updateEdit(msg)
		case historyConfirmDelete:
			return v.updateConfirmDelete(msg)
		}
		return v.updateBrowse(msg)
	}

	return v, nil
}

func (v HistoryView) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "j", "down":
		if v.cursor < len(v.entries)-1 {
			v.cursor++
		}
	case "k", "up":
		if v.cursor > 0 {
			v.cursor--
		}
	case "g":
		v.cursor = 0
	case "G":
		if len(v.entries) > 0 {
			v.cursor = len(v.entries) - 1
		}
	case "/":
		v.mode = historySearch
		v.searchInput.SetValue(v.query)
		v.searchInput.Focus()
		return v, textinput.Blink
	case "d":
		if v.cursor < len(v.entries) {
			v.mode = historyConfirmDelete
		}
	case "enter":
		if v.cursor < len(v.entries) {
			v.openEditForm(v.entries[v.cursor])
			return v, textinput.Blink
		}
	case "r":
		v.reload()
		v.statusMsg = "Reloaded"
	case "esc":
		if v.query != "" {
			v.query = ""
			v.reload()
		}
	}
	return v, nil
}

func (v HistoryView) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		v.query = v.searchInput.Value()
		v.mode = historyBrowse
		v.searchInput.Blur()
		v.reload()
		return v, nil
	case "esc":
		v.mode = historyBrowse
		v.searchInput.Blur()
		return v, nil
	}

	var cmd tea.Cmd
	v.searchInput, cmd = v.searchInput.Update(msg)
	return v, cmd
}

func (v HistoryView) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "enter":
		if v.cursor < len(v.entries) {
			if err := v.engine.DeleteEntry(v.entries[v.cursor].ID); err != nil {
				v.statusMsg = fmt.Sprintf("Error: %v", err)
			} else {
				v.statusMsg = "Entry deleted"
			}
			v.reload()
		}
		v.mode = historyBrowse
	case "n", "esc":
		v.mode = historyBrowse
	}
	return v, nil
}

func (v *HistoryView) openEditForm(entry model.TimeEntry) {
	start := textinput.New()
	start.SetValue(entry.StartTime.Local().Format(entryTimeLayout))
	start.CharLimit = len(entryTimeLayout)
	start.Focus()

	end := textinput.New()
	end.SetValue(entry.EndTime.Local().Format(entryTimeLayout))
	end.CharLimit = len(entryTimeLayout)

	note := textinput.New()
	note.SetValue(entry.Note)
	note.CharLimit = 200

	v.editID = entry.ID
	v.editInputs = []textinput.Model{start, end, note}
	v.editFocus = 0
	v.mode = historyEdit
}

func (v HistoryView) updateEdit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "tab", "shift+tab":
		v.editInputs[v.editFocus].Blur()
		if msg.String() == "tab" {
			v.editFocus = (v.editFocus + 1) % len(v.editInputs)
		} else {
			v.editFocus = (v.editFocus + len(v.editInputs) - 1) % len(v.editInputs)
		}
		v.editInputs[v.editFocus].Focus()
		return v, textinput.Blink

	case "enter":
		v.submitEdit()
		return v, nil

	case "esc":
		v.mode = historyBrowse
		return v, nil
	}

	var cmd tea.Cmd
	v.editInputs[v.editFocus], cmd = v.editInputs[v.editFocus].Update(msg)
	return v, cmd
}

func (v *HistoryView) submitEdit() {
	start, err := time.ParseInLocation(entryTimeLayout, strings.TrimSpace(v.editInputs[0].Value()), time.Local)
	if err != nil {
		v.statusMsg = "Invalid start time, expected YYYY-MM-DD HH:MM"
		return
	}
	end, err := time.ParseInLocation(entryTimeLayout, strings.TrimSpace(v.editInputs[1].Value()), time.Local)
	if err != nil {
		v.statusMsg = "Invalid end time, expected YYYY-MM-DD HH:MM"
		return
	}
	note := v.editInputs[2].Value()

	_, err = v.engine.EditEntry(v.editID, tracker.EntryPatch{
		StartTime: &start,
		EndTime:   &end,
		Note:      &note,
	})
	if err != nil {
		v.statusMsg = fmt.Sprintf("Error: %v", err)
		return
	}

	v.statusMsg = "Entry updated"
	v.mode = historyBrowse
	v.reload()
}

// reload refreshes the entry list, newest first
func (v *HistoryView) reload() {
	entries := v.engine.Search(v.query)
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].StartTime.After(entries[j].StartTime)
	})
	v.entries = entries
	if v.cursor >= len(entries) {
		v.cursor = len(entries) - 1
	}
	if v.cursor < 0 {
		v.cursor = 0
	}
}

// View renders the history view
func (v HistoryView) View() string {
	styles := theme.Current.Styles
	t := theme.Current.Theme

	var b strings.Builder

	title := "History"
	if v.query != "" {
		title = fmt.Sprintf("History (filter: %q)", v.query)
	}
	b.WriteString(styles.Title.Render(title))
	b.WriteString("\n")

	if v.mode == historySearch {
		b.WriteString(styles.InputFocused.Render(v.searchInput.View()))
		b.WriteString("\n")
	}

	if v.mode == historyEdit {
		labels := []string{"start", "end  ", "note "}
		for i, input := range v.editInputs {
			b.WriteString(styles.Label.Render(labels[i] + " "))
			if i == v.editFocus {
				b.WriteString(styles.InputFocused.Render(input.View()))
			} else {
				b.WriteString(styles.Input.Render(input.View()))
			}
			b.WriteString("\n")
		}
		b.WriteString(styles.Label.Render("enter save, tab next field, esc cancel"))
		return b.String()
	}

	if len(v.entries) == 0 {
		b.WriteString(styles.Label.Render("No entries."))
		return b.String()
	}

	// Visible window
	visible := v.height - 4
	if visible < 1 {
		visible = len(v.entries)
	}
	start := 0
	if v.cursor >= visible {
		start = v.cursor - visible + 1
	}
	end := start + visible
	if end > len(v.entries) {
		end = len(v.entries)
	}

	var lastDate string
	for i := start; i < end; i++ {
		entry := v.entries[i]

		if entry.Date != lastDate {
			b.WriteString(styles.Subtitle.Render(entry.Date))
			b.WriteString("\n")
			lastDate = entry.Date
		}

		dot := lipgloss.NewStyle().Foreground(lipgloss.Color(displayEntryColor(entry))).Render("▌")
		line := fmt.Sprintf("%s %s-%s  %-7s %s",
			dot,
			entry.StartTime.Local().Format("15:04"),
			entry.EndTime.Local().Format("15:04"),
			notify.FormatMinutes(entry.Duration),
			entryLabel(entry),
		)
		if i == v.cursor {
			b.WriteString(styles.RowSelected.Render(line))
		} else {
			b.WriteString(styles.RowNormal.Render(line))
		}
		b.WriteString("\n")
	}

	if v.mode == historyConfirmDelete {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Foreground(t.Error).Render("Delete this entry? (y/n)"))
	}

	if v.statusMsg != "" {
		b.WriteString("\n")
		b.WriteString(styles.Subtitle.Render(v.statusMsg))
	}

	return b.String()
}

func entryLabel(entry model.TimeEntry) string {
	label := entry.ProjectName
	if label == "" {
		label = "(no project)"
	}
	if entry.Note != "" {
		label += "  " + entry.Note
	}
	return label
}

func displayEntryColor(entry model.TimeEntry) string {
	if entry.ProjectColor != "" {
		return entry.ProjectColor
	}
	return model.DefaultProjectColor
}
