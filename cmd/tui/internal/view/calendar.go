package view

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/mowbraylabs/retailpulse/internal/budget"
	"github.com/mowbraylabs/retailpulse/internal/location"
	"github.com/mowbraylabs/retailpulse/internal/pivot"
)

type calendarState int

const (
	calendarStateBrowse calendarState = iota
	calendarStateConfirmClear
)

// CalendarModel shows one month of budgets as a date x location grid with a
// per-location rollup underneath.
type CalendarModel struct {
	CommonModel
	budgetService *budget.Service
	catalog       location.Catalog

	state calendarState
	table table.Model
	form  *huh.Form

	month   time.Time // first day of the displayed month
	view    *pivot.View
	entries []*budget.Entry

	confirmClear bool

	loading bool
	err     error
	status  string
}

func NewCalendarModel(budgetSvc *budget.Service, catalog location.Catalog) CalendarModel {
	now := time.Now().UTC()

	t := table.New(
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

	return CalendarModel{
		budgetService: budgetSvc,
		catalog:       catalog,
		table:         t,
		month:         time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC),
	}
}

func (m CalendarModel) Title() string { return "Budget Calendar" }

func (m CalendarModel) ShortHelp() string {
	if m.state == calendarStateConfirmClear {
		return "Navigate form | Esc: cancel"
	}

	return "Esc: back | [: prev month | ]: next month | x: clear month | r: refresh"
}

func (m CalendarModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m CalendarModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case calendarLoadMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.err = nil
		m.entries = msg.entries
		m.view = msg.view
		m.refreshTable()

		return m, nil

	case calendarClearMsg:
		m.state = calendarStateBrowse
		m.form = nil
		m.table.Focus()
		m.status = fmt.Sprintf("Deleted %d entries, %d failed.", msg.deleted, msg.failed)

		return m, m.loadCmd()

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 12)
		return m, nil
	}

	switch m.state {
	case calendarStateBrowse:
		return m.updateBrowse(msg)
	case calendarStateConfirmClear:
		return m.updateConfirmClear(msg)
	}

	return m, nil
}

func (m CalendarModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		case "[":
			m.month = m.month.AddDate(0, -1, 0)
			m.loading = true
			m.status = ""

			return m, m.loadCmd()
		case "]":
			m.month = m.month.AddDate(0, 1, 0)
			m.loading = true
			m.status = ""

			return m, m.loadCmd()
		case "x":
			if len(m.entries) == 0 {
				m.status = "Nothing to clear."
				return m, nil
			}

			return m.enterConfirmClear()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m CalendarModel) enterConfirmClear() (tea.Model, tea.Cmd) {
	m.confirmClear = false
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Key("confirm").
				Title(fmt.Sprintf("Delete all %d budget entries for %s?", len(m.entries), m.month.Format("January 2006"))).
				Affirmative("Delete").
				Negative("Keep").
				Value(&m.confirmClear),
		),
	).WithWidth(60).WithShowHelp(false)

	m.state = calendarStateConfirmClear
	m.table.Blur()

	return m, m.form.Init()
}

func (m CalendarModel) updateConfirmClear(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc {
			m.state = calendarStateBrowse
			m.form = nil
			m.table.Focus()

			return m, nil
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	if !m.confirmClear {
		m.state = calendarStateBrowse
		m.form = nil
		m.table.Focus()

		return m, nil
	}

	return m, m.clearCmd()
}

func (m CalendarModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading budgets...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Error: %v", m.err))
	}

	header := fmt.Sprintf("Budgets for %s", activeStyle(m.month.Format("January 2006")))

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		tableView,
		m.viewRollup(),
	)

	if m.state == calendarStateConfirmClear && m.form != nil {
		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(64).
			Render(m.form.View())

		content = lipgloss.JoinVertical(lipgloss.Left, content, panel)
	}

	if m.status != "" {
		content = lipgloss.NewStyle().Faint(true).Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m CalendarModel) viewRollup() string {
	if m.view == nil || len(m.view.Rollup) == 0 {
		return lipgloss.NewStyle().Faint(true).Render("No budgets this month.")
	}

	s := "\nTotals:\n"
	for _, row := range m.view.Rollup {
		s += fmt.Sprintf("  %-24s %10s over %d day(s)  (%.1f%%)\n",
			row.Name, FormatAmount(row.Total), row.DayCount, row.Share)
	}

	s += fmt.Sprintf("  %-24s %10s\n", "Grand total", FormatAmount(m.view.GrandTotal))

	return s
}

func activeStyle(s string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Render(s)
}

func (m *CalendarModel) refreshTable() {
	if m.view == nil {
		m.table.SetColumns([]table.Column{{Title: "Date", Width: 12}})
		m.table.SetRows(nil)

		return
	}

	columns := make([]table.Column, 0, len(m.view.Columns)+2)
	columns = append(columns, table.Column{Title: "Date", Width: 12})

	for _, col := range m.view.Columns {
		columns = append(columns, table.Column{Title: col.Name, Width: 14})
	}

	columns = append(columns, table.Column{Title: "Total", Width: 12})

	rows := make([]table.Row, 0, len(m.view.Rows))

	for _, gridRow := range m.view.Rows {
		row := make(table.Row, 0, len(columns))
		row = append(row, FormatDate(gridRow.Date))

		for _, amount := range gridRow.Amounts {
			if amount == pivot.NoAmount {
				row = append(row, "-")
				continue
			}

			row = append(row, FormatAmount(amount))
		}

		row = append(row, FormatAmount(gridRow.Total))
		rows = append(rows, row)
	}

	m.table.SetColumns(columns)
	m.table.SetRows(rows)
}

// Messages

type calendarLoadMsg struct {
	entries []*budget.Entry
	view    *pivot.View
	err     error
}

func (m CalendarModel) loadCmd() tea.Cmd {
	month := m.month

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		start := month
		end := month.AddDate(0, 1, -1)

		entries, _, err := m.budgetService.List(ctx, budget.ListFilter{
			StartDate: &start,
			EndDate:   &end,
		})
		if err != nil {
			return calendarLoadMsg{err: err}
		}

		locs, err := m.catalog.ListLocations(ctx)
		if err != nil {
			return calendarLoadMsg{err: err}
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

		return calendarLoadMsg{entries: entries, view: pivot.Build(entries, names)}
	}
}

type calendarClearMsg struct {
	deleted int
	failed  int
}

func (m CalendarModel) clearCmd() tea.Cmd {
	ids := make([]uuid.UUID, len(m.entries))
	for i, entry := range m.entries {
		ids[i] = entry.ID
	}

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), uploadTimeout)
		defer cancel()

		result := m.budgetService.BulkDelete(ctx, ids)

		return calendarClearMsg{deleted: len(result.Deleted), failed: len(result.Failed)}
	}
}
