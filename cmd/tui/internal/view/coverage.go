package view

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/mowbraylabs/retailpulse/internal/budget"
	"github.com/mowbraylabs/retailpulse/internal/coverage"
	"github.com/mowbraylabs/retailpulse/internal/location"
	"github.com/mowbraylabs/retailpulse/internal/pivot"
)

// CoverageModel lists, per location, the recent trading days that have no
// budget entry yet.
type CoverageModel struct {
	CommonModel
	budgetService *budget.Service
	catalog       location.Catalog
	activity      coverage.ActivitySource

	table table.Model

	// Window cycling
	windowIdx int

	records []coverage.Record
	window  coverage.Window

	loading bool
	err     error
}

func NewCoverageModel(budgetSvc *budget.Service, catalog location.Catalog, activity coverage.ActivitySource) CoverageModel {
	columns := []table.Column{
		{Title: "Location", Width: 24},
		{Title: "Sales Days", Width: 11},
		{Title: "Budget Days", Width: 12},
		{Title: "Missing", Width: 8},
		{Title: "First Missing Dates", Width: 36},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return CoverageModel{
		budgetService: budgetSvc,
		catalog:       catalog,
		activity:      activity,
		table:         t,
	}
}

func (m CoverageModel) Title() string { return "Budget Coverage" }

func (m CoverageModel) ShortHelp() string {
	return "Esc: back | w: window | r: refresh"
}

func (m CoverageModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m CoverageModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case coverageLoadMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.err = nil
		m.records = msg.records
		m.window = msg.window
		m.refreshTable()

		return m, nil

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		case "w":
			m.windowIdx = (m.windowIdx + 1) % 3
			m.loading = true

			return m, m.loadCmd()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m CoverageModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Checking coverage...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Error: %v", m.err))
	}

	windowLabels := []string{"Last 30 Days", "This Month", "Last Month"}

	header := fmt.Sprintf(
		"[w] Window: %s  (%s to %s)",
		activeStyle(windowLabels[m.windowIdx]),
		FormatDate(m.window.Start),
		FormatDate(m.window.End),
	)

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		tableView,
	)

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m *CoverageModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.records))

	for _, record := range m.records {
		preview := make([]string, 0, 3)
		for _, day := range record.MissingDays {
			if len(preview) == 3 {
				preview = append(preview, "...")
				break
			}

			preview = append(preview, FormatDate(day))
		}

		rows = append(rows, table.Row{
			record.LocationName,
			fmt.Sprintf("%d", record.SalesDays),
			fmt.Sprintf("%d", record.BudgetDays),
			fmt.Sprintf("%d", len(record.MissingDays)),
			strings.Join(preview, ", "),
		})
	}

	m.table.SetRows(rows)
}

func (m CoverageModel) currentWindow() coverage.Window {
	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	switch m.windowIdx {
	case 1:
		return coverage.Window{
			Start: time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC),
			End:   today,
		}
	case 2:
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -1, 0)
		return coverage.Window{Start: start, End: start.AddDate(0, 1, -1)}
	default:
		end := today.AddDate(0, 0, -1)
		return coverage.Window{Start: end.AddDate(0, 0, -29), End: end}
	}
}

// Messages

type coverageLoadMsg struct {
	records []coverage.Record
	window  coverage.Window
	err     error
}

func (m CoverageModel) loadCmd() tea.Cmd {
	window := m.currentWindow()

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		activity, err := m.activity.SalesDays(ctx, window, nil)
		if err != nil {
			return coverageLoadMsg{err: err}
		}

		entries, _, err := m.budgetService.List(ctx, budget.ListFilter{
			StartDate: &window.Start,
			EndDate:   &window.End,
		})
		if err != nil {
			return coverageLoadMsg{err: err}
		}

		locs, err := m.catalog.ListLocations(ctx)
		if err != nil {
			return coverageLoadMsg{err: err}
		}

		byID := make(map[uuid.UUID]string, len(locs))
		for _, loc := range locs {
			byID[loc.ID] = loc.Name
		}

		names := pivot.NameFunc(func(id uuid.UUID) string {
			if name, ok := byID[id]; ok {
				return name
			}

			return id.String()
		})

		return coverageLoadMsg{records: coverage.Analyze(activity, entries, names), window: window}
	}
}
