package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/htdinh/tictac/internal/app"
	"github.com/htdinh/tictac/internal/log"
	"github.com/htdinh/tictac/internal/model"
	"github.com/htdinh/tictac/internal/notify"
	"github.com/htdinh/tictac/internal/server"
	"github.com/htdinh/tictac/internal/tracker"
	"github.com/htdinh/tictac/internal/ui"
	"github.com/htdinh/tictac/internal/ui/theme"
)

var (
	version = "0.1.0"
)

func main() {
	// Subcommand handling
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "start":
			handleStart(os.Args[2:])
			return
		case "stop":
			handleStop()
			return
		case "status":
			handleStatus()
			return
		case "add":
			handleAdd(os.Args[2:])
			return
		case "report":
			handleReport()
			return
		case "export":
			handleExport(os.Args[2:])
			return
		case "import":
			handleImport(os.Args[2:])
			return
		case "serve":
			handleServe()
			return
		case "version":
			fmt.Printf("tictac v%s\n", version)
			return
		case "help", "-h", "--help":
			printHelp()
			return
		}
	}

	// Parse flags for TUI mode
	viewFlag := flag.String("view", "timer", "Starting view (timer, history, projects, reports, settings)")
	themeFlag := flag.String("theme", "", "Theme name (nord, gruvbox)")
	flag.Parse()

	// Run TUI
	if err := runTUI(*viewFlag, *themeFlag); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printHelp() {
	help := `tictac - personal time tracking

Usage:
  tictac                         Start the TUI
  tictac start [note]            Start tracking on the current project
  tictac stop                    Stop tracking and save the entry
  tictac status                  Show the active session and today's total
  tictac add <start> <end> [note]  Add a manual entry, times as "YYYY-MM-DD HH:MM"
  tictac report                  Print tracked time and income summary
  tictac export [file]           Write all data as JSON (stdout by default)
  tictac import <file>           Replace all data from a JSON export
  tictac serve                   Run the REST API server
  tictac version                 Show version
  tictac help                    Show this help

Manual entries:
  tictac add "2024-03-05 09:00" "2024-03-05 10:30" fixing the login flow
  An optional @ProjectName word in the note picks the project,
  otherwise the current project is used.

TUI Options:
  --view <name>     Starting view (timer, history, projects, reports, settings)
  --theme <name>    Theme (nord, gruvbox)

Server configuration (environment, .env supported):
  TICTAC_ADDR        Listen address (default :8080)
  TICTAC_DB_PATH     Database path
  TICTAC_JWT_SECRET  Token signing secret
  TICTAC_TOKEN_TTL   Token lifetime in hours (default 72)`

	fmt.Println(help)
}

func openApp() *app.App {
	a, err := app.New(nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return a
}

func handleStart(args []string) {
	a := openApp()
	defer a.Close()

	if err := a.Engine.StartTracking(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if len(args) > 0 {
		if err := a.Engine.UpdateNote(strings.Join(args, " ")); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	project := a.Projects.Current()
	fmt.Printf("Tracking on %s\n", project.Name)
}

func handleStop() {
	a := openApp()
	defer a.Close()

	entry, err := a.Engine.StopTracking()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Saved %s on %s\n", notify.FormatMinutes(entry.Duration), entry.ProjectName)
	if entry.Note != "" {
		fmt.Printf("Note: %s\n", entry.Note)
	}
}

func handleStatus() {
	a := openApp()
	defer a.Close()

	if session := a.Engine.Session(); session != nil {
		project := a.Projects.Get(session.ProjectID)
		name := "(deleted project)"
		if project != nil {
			name = project.Name
		}
		elapsed := time.Since(session.StartTime)
		fmt.Printf("Tracking %s for %s\n", name, notify.FormatMinutes(elapsed.Minutes()))
		if session.Note != "" {
			fmt.Printf("Note: %s\n", session.Note)
		}
	} else {
		fmt.Println("Not tracking")
	}

	settings := a.Settings.Get()
	fmt.Printf("Today: %s\n", notify.FormatMinutes(a.Engine.TodayTracked()))
	fmt.Printf("Week:  %s\n", notify.FormatMinutes(a.Engine.WeekTracked(settings.Display.StartDayOfWeek)))
}

const cliTimeLayout = "2006-01-02 15:04"

func handleAdd(args []string) {
	if len(args) < 2 {
		fmt.Fprintln(os.Stderr, "Usage: tictac add <start> <end> [note]")
		fmt.Fprintln(os.Stderr, `Example: tictac add "2024-03-05 09:00" "2024-03-05 10:30" fixing login @Website`)
		os.Exit(1)
	}

	start, err := time.ParseInLocation(cliTimeLayout, args[0], time.Local)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid start time %q, expected \"YYYY-MM-DD HH:MM\"\n", args[0])
		os.Exit(1)
	}
	end, err := time.ParseInLocation(cliTimeLayout, args[1], time.Local)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid end time %q, expected \"YYYY-MM-DD HH:MM\"\n", args[1])
		os.Exit(1)
	}

	a := openApp()
	defer a.Close()

	// An @ProjectName word picks the project, the rest is the note
	var projectID string
	var noteParts []string
	for _, word := range args[2:] {
		if strings.HasPrefix(word, "@") {
			name := strings.TrimPrefix(word, "@")
			for _, p := range a.Projects.All() {
				if strings.EqualFold(p.Name, name) {
					projectID = p.ID
					break
				}
			}
			if projectID == "" {
				fmt.Fprintf(os.Stderr, "Unknown project %q\n", name)
				os.Exit(1)
			}
			continue
		}
		noteParts = append(noteParts, word)
	}
	if projectID == "" {
		projectID = a.Projects.CurrentID()
	}
	if projectID == "" {
		fmt.Fprintln(os.Stderr, "No project selected. Pick one in the TUI or pass @ProjectName.")
		os.Exit(1)
	}

	entry, err := a.Engine.AddManualEntry(model.TimeEntry{
		ProjectID: projectID,
		StartTime: start,
		EndTime:   end,
		Note:      strings.Join(noteParts, " "),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Added %s on %s (%s)\n", notify.FormatMinutes(entry.Duration), entry.ProjectName, entry.Date)
}

func handleReport() {
	a := openApp()
	defer a.Close()

	settings := a.Settings.Get()
	today := a.Engine.TodayTracked()
	week := a.Engine.WeekTracked(settings.Display.StartDayOfWeek)

	var month float64
	for _, entry := range a.Engine.CurrentMonthEntries() {
		month += entry.Duration
	}

	fmt.Printf("Today: %s / %s\n", notify.FormatMinutes(today), notify.FormatMinutes(settings.Goals.Daily))
	fmt.Printf("Week:  %s / %s\n", notify.FormatMinutes(week), notify.FormatMinutes(settings.Goals.Weekly))
	fmt.Printf("Month: %s / %s\n", notify.FormatMinutes(month), notify.FormatMinutes(settings.Goals.Monthly))

	income := a.Settings.CalculateIncome(month)
	fmt.Printf("Income this month: %.0f total, %.0f contribution, %.0f net (%s)\n",
		income.Total, income.Contribution, income.Net, income.Currency)

	summary := a.Engine.MonthSummary()
	key := tracker.MonthKey(time.Now())
	if total, ok := summary[key]; ok {
		fmt.Printf("\nBy project (%s):\n", key)
		for _, pt := range total.Projects {
			fmt.Printf("  %-24s %s\n", pt.Name, notify.FormatMinutes(pt.TotalMinutes))
		}
	}
}

func handleExport(args []string) {
	a := openApp()
	defer a.Close()

	data, err := tracker.Export(a.Projects, a.Engine)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if len(args) == 0 {
		fmt.Println(string(data))
		return
	}
	if err := os.WriteFile(args[0], data, 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", args[0], err)
		os.Exit(1)
	}
	fmt.Printf("Exported to %s\n", args[0])
}

func handleImport(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "Usage: tictac import <file>")
		os.Exit(1)
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading %s: %v\n", args[0], err)
		os.Exit(1)
	}

	a := openApp()
	defer a.Close()

	if err := tracker.Import(data, a.Projects, a.Engine); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Imported %d projects and %d time entries\n",
		len(a.Projects.All()), len(a.Engine.Entries()))
}

func handleServe() {
	logger := log.New(log.Config{Component: log.ComponentServer})
	cfg := server.LoadConfig()

	if err := server.Run(cfg, logger); err != nil {
		logger.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func runTUI(viewName, themeName string) error {
	if themeName != "" {
		t, ok := theme.ByName(themeName)
		if !ok {
			return fmt.Errorf("unknown theme %q", themeName)
		}
		theme.SetTheme(t)
	}

	a, err := app.New(nil)
	if err != nil {
		return err
	}
	defer a.Close()

	root := ui.NewRootModel(a)
	switch strings.ToLower(viewName) {
	case "timer", "":
	case "history":
		root = root.SetStartView(ui.ViewHistory)
	case "projects":
		root = root.SetStartView(ui.ViewProjects)
	case "reports":
		root = root.SetStartView(ui.ViewReports)
	case "settings":
		root = root.SetStartView(ui.ViewSettings)
	default:
		return fmt.Errorf("unknown view %q", viewName)
	}

	program := tea.NewProgram(root, tea.WithAltScreen())
	_, err = program.Run()
	return err
}
