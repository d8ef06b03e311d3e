package ui

// View represents the current active view
type View int

const (
	ViewTimer View = iota
	ViewHistory
	ViewProjects
	ViewReports
	ViewSettings
)

// String returns the display name for a view
func (v View) String() string {
	switch v {
	case ViewTimer:
		return "Timer"
	case ViewHistory:
		return "History"
	case ViewProjects:
		return "Projects"
	case ViewReports:
		return "Reports"
	case ViewSettings:
		return "Settings"
	default:
		return "Unknown"
	}
}

// Messages for inter-component communication

// ErrorMsg contains an error to display
type ErrorMsg struct {
	Err error
}

// StatusMsg contains a status message to display
type StatusMsg struct {
	Message string
}

// ThemeChangedMsg indicates the theme was changed
type ThemeChangedMsg struct {
	ThemeName string
}
