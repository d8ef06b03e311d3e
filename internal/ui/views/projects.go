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

type projectsMode int

const (
	projectsBrowse projectsMode = iota
	projectsAdd
	projectsEdit
	projectsConfirmDelete
)

// ProjectsView manages the project list: create, rename, set color
// and hourly rate, pick the current project.
type ProjectsView struct {
	projects *tracker.ProjectRegistry
	width    int
	height   int

	mode   projectsMode
	cursor int

	// Form state, shared by add and edit
	editID     string
	editInputs []textinput.Model
	editFocus  int

	statusMsg string
}

// NewProjectsView creates a new projects view
func NewProjectsView(projects *tracker.ProjectRegistry) ProjectsView {
	return ProjectsView{projects: projects}
}

// Init initializes the projects view
func (v ProjectsView) Init() tea.Cmd {
	return nil
}

// SetSize sets the view dimensions
func (v ProjectsView) SetSize(width, height int) ProjectsView {
	v.width = width
	v.height = height
	return v
}

// IsInputMode reports whether the form has focus
func (v ProjectsView) IsInputMode() bool {
	return v.mode == projectsAdd || v.mode == projectsEdit
}

// Update handles messages
func (v ProjectsView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return v, nil
	}

	switch v.mode {
	case projectsAdd, projectsEdit:
		return v.updateForm(keyMsg)
	case projectsConfirmDelete:
		return v.updateConfirmDelete(keyMsg)
	}
	return v.updateBrowse(keyMsg)
}

func (v ProjectsView) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	all := v.projects.All()

	switch msg.String() {
	case "j", "down":
		if v.cursor < len(all)-1 {
			v.cursor++
		}
	case "k", "up":
		if v.cursor > 0 {
			v.cursor--
		}
	case "a":
		v.openForm(nil)
		return v, textinput.Blink
	case "enter":
		if v.cursor < len(all) {
			v.openForm(&all[v.cursor])
			return v, textinput.Blink
		}
	case " ", "s":
		if v.cursor < len(all) {
			if err := v.projects.Select(all[v.cursor].ID); err != nil {
				v.statusMsg = fmt.Sprintf("Error: %v", err)
			} else {
				v.statusMsg = fmt.Sprintf("Current project: %s", all[v.cursor].Name)
			}
		}
	case "d":
		if v.cursor < len(all) {
			v.mode = projectsConfirmDelete
		}
	}
	return v, nil
}

func (v ProjectsView) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "enter":
		all := v.projects.All()
		if v.cursor < len(all) {
			if err := v.projects.Delete(all[v.cursor].ID); err != nil {
				v.statusMsg = fmt.Sprintf("Error: %v", err)
			} else {
				v.statusMsg = "Project deleted (its time entries remain)"
			}
			if v.cursor >= len(v.projects.All()) && v.cursor > 0 {
				v.cursor--
			}
		}
		v.mode = projectsBrowse
	case "n", "esc":
		v.mode = projectsBrowse
	}
	return v, nil
}

// openForm prepares the add/edit form. A nil project means add.
func (v *ProjectsView) openForm(project *model.Project) {
	name := textinput.New()
	name.Placeholder = "Project name"
	name.CharLimit = 100
	name.Focus()

	color := textinput.New()
	color.Placeholder = model.DefaultProjectColor
	color.CharLimit = 7

	rate := textinput.New()
	rate.Placeholder = "0"
	rate.CharLimit = 12

	if project != nil {
		name.SetValue(project.Name)
		color.SetValue(project.Color)
		rate.SetValue(strconv.FormatFloat(project.HourlyRate, 'f', -1, 64))
		v.editID = project.ID
		v.mode = projectsEdit
	} else {
		v.editID = ""
		v.mode = projectsAdd
	}

	v.editInputs = []textinput.Model{name, color, rate}
	v.editFocus = 0
}

func (v ProjectsView) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
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
		v.submitForm()
		return v, nil

	case "esc":
		v.mode = projectsBrowse
		return v, nil
	}

	var cmd tea.Cmd
	v.editInputs[v.editFocus], cmd = v.editInputs[v.editFocus].Update(msg)
	return v, cmd
}

func (v *ProjectsView) submitForm() {
	name := strings.TrimSpace(v.editInputs[0].Value())
	color := strings.TrimSpace(v.editInputs[1].Value())

	var rate float64
	if raw := strings.TrimSpace(v.editInputs[2].Value()); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil || parsed < 0 {
			v.statusMsg = "Invalid hourly rate"
			return
		}
		rate = parsed
	}

	if v.mode == projectsAdd {
		project, err := v.projects.Create(name)
		if err != nil {
			v.statusMsg = fmt.Sprintf("Error: %v", err)
			return
		}
		v.editID = project.ID
	}

	patch := tracker.ProjectPatch{HourlyRate: &rate}
	if v.mode == projectsEdit {
		patch.Name = &name
	}
	if color != "" {
		patch.Color = &color
	}
	if _, err := v.projects.Update(v.editID, patch); err != nil {
		v.statusMsg = fmt.Sprintf("Error: %v", err)
		return
	}

	if v.mode == projectsAdd {
		v.statusMsg = fmt.Sprintf("Created %s", name)
	} else {
		v.statusMsg = fmt.Sprintf("Updated %s", name)
	}
	v.mode = projectsBrowse
}

// View renders the projects view
func (v ProjectsView) View() string {
	styles := theme.Current.Styles
	t := theme.Current.Theme

	var b strings.Builder
	b.WriteString(styles.Title.Render("Projects"))
	b.WriteString("\n")

	if v.IsInputMode() {
		header := "New project"
		if v.mode == projectsEdit {
			header = "Edit project"
		}
		b.WriteString(styles.PanelTitle.Render(header))
		b.WriteString("\n")
		labels := []string{"name ", "color", "rate "}
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

	all := v.projects.All()
	if len(all) == 0 {
		b.WriteString(styles.Label.Render("No projects. Press a to add one."))
		return b.String()
	}

	currentID := v.projects.CurrentID()
	for i, p := range all {
		marker := "  "
		if p.ID == currentID {
			marker = "● "
		}
		dot := lipgloss.NewStyle().Foreground(lipgloss.Color(p.DisplayColor())).Render("▌")
		line := fmt.Sprintf("%s%s%-24s %10.0f/h", dot, marker, p.Name, p.HourlyRate)
		if i == v.cursor {
			b.WriteString(styles.RowSelected.Render(line))
		} else {
			b.WriteString(styles.RowNormal.Render(line))
		}
		b.WriteString("\n")
	}

	if v.mode == projectsConfirmDelete {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Foreground(t.Error).Render("Delete this project? Its time entries are kept. (y/n)"))
	}

	if v.statusMsg != "" {
		b.WriteString("\n")
		b.WriteString(styles.Subtitle.Render(v.statusMsg))
	}

	return b.String()
}
