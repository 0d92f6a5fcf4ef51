package main

import (
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/mowbraylabs/retailpulse/cmd/tui/internal/view"
	"github.com/mowbraylabs/retailpulse/internal/budget"
	budgetStore "github.com/mowbraylabs/retailpulse/internal/budget/store"
	"github.com/mowbraylabs/retailpulse/internal/config"
	"github.com/mowbraylabs/retailpulse/internal/coverage"
	coverageStore "github.com/mowbraylabs/retailpulse/internal/coverage/store"
	"github.com/mowbraylabs/retailpulse/internal/database"
	"github.com/mowbraylabs/retailpulse/internal/location"
	locationStore "github.com/mowbraylabs/retailpulse/internal/location/store"
)

type model struct {
	budgetService *budget.Service
	catalog       location.Catalog
	activity      coverage.ActivitySource

	currentView View

	uploadView   view.UploadModel
	calendarView view.CalendarModel
	coverageView view.CoverageModel
}

type View int

const (
	ViewMenu     View = 0
	ViewUpload   View = 1
	ViewCalendar View = 2
	ViewCoverage View = 3
)

func initialModel() model {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	budgetSvc := budget.NewService(budgetStore.New(db))
	catalog := locationStore.New(db)
	activity := coverageStore.New(db)

	return model{
		budgetService: budgetSvc,
		catalog:       catalog,
		activity:      activity,
		currentView:   ViewMenu,
		uploadView:    view.NewUploadModel(budgetSvc, catalog),
		calendarView:  view.NewCalendarModel(budgetSvc, catalog),
		coverageView:  view.NewCoverageModel(budgetSvc, catalog, activity),
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.currentView == ViewMenu {
			switch msg.String() {
			case "ctrl+c", "q":
				return m, tea.Quit
			case "1":
				m.currentView = ViewUpload
				m.uploadView = view.NewUploadModel(m.budgetService, m.catalog)

				return m, m.uploadView.Init()
			case "2":
				m.currentView = ViewCalendar
				m.calendarView = view.NewCalendarModel(m.budgetService, m.catalog)

				return m, m.calendarView.Init()
			case "3":
				m.currentView = ViewCoverage
				m.coverageView = view.NewCoverageModel(m.budgetService, m.catalog, m.activity)

				return m, m.coverageView.Init()
			}
		}
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	}

	switch m.currentView {
	case ViewUpload:
		var newModel tea.Model
		newModel, cmd = m.uploadView.Update(msg)
		m.uploadView = newModel.(view.UploadModel)
	case ViewCalendar:
		var newModel tea.Model
		newModel, cmd = m.calendarView.Update(msg)
		m.calendarView = newModel.(view.CalendarModel)
	case ViewCoverage:
		var newModel tea.Model
		newModel, cmd = m.coverageView.Update(msg)
		m.coverageView = newModel.(view.CoverageModel)
	}

	return m, cmd
}

func (m model) View() string {
	switch m.currentView {
	case ViewMenu:
		return lipgloss.NewStyle().Padding(2).Render(
			"RetailPulse Budgets\n\n" +
				"1. Upload Budgets\n" +
				"2. Budget Calendar\n" +
				"3. Coverage Report\n\n" +
				"q. Quit",
		)
	case ViewUpload:
		return m.uploadView.View()
	case ViewCalendar:
		return m.calendarView.View()
	case ViewCoverage:
		return m.coverageView.View()
	}

	return "Unknown View"
}

func main() {
	p := tea.NewProgram(initialModel())
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
