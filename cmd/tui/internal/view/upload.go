package view

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mowbraylabs/retailpulse/internal/budget"
	"github.com/mowbraylabs/retailpulse/internal/importer"
	"github.com/mowbraylabs/retailpulse/internal/location"
)

const uploadTimeout = 2 * time.Minute

type uploadState int

const (
	uploadStateFilePick uploadState = iota
	uploadStateValidating
	uploadStateDiagnostics
	uploadStateUploading
	uploadStateResult
)

type UploadModel struct {
	CommonModel
	budgetService *budget.Service
	catalog       location.Catalog

	state      uploadState
	filePicker filepicker.Model

	path   string
	report *importer.Report
	table  *importer.ParsedTable
	index  *location.Index

	status string
	err    error
}

func NewUploadModel(budgetSvc *budget.Service, catalog location.Catalog) UploadModel {
	fp := filepicker.New()
	fp.CurrentDirectory, _ = os.Getwd()
	fp.ShowHidden = false
	fp.DirAllowed = false
	fp.FileAllowed = true
	fp.AllowedTypes = []string{".csv"}
	fp.Height = 15

	return UploadModel{
		budgetService: budgetSvc,
		catalog:       catalog,
		filePicker:    fp,
	}
}

func (m UploadModel) Title() string { return "Upload Budgets" }

func (m UploadModel) ShortHelp() string {
	if m.state == uploadStateDiagnostics && m.report != nil && m.report.Startable() {
		return "Enter: start upload | Esc: cancel"
	}

	return "Esc: back | Enter: select"
}

func (m UploadModel) Init() tea.Cmd {
	return m.filePicker.Init()
}

func (m UploadModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m.handleEsc()
		}

		if m.state == uploadStateDiagnostics && msg.Type == tea.KeyEnter {
			if m.report != nil && m.report.Startable() {
				m.state = uploadStateUploading
				m.status = "Uploading budgets..."

				return m, m.uploadCmd()
			}

			return m, nil
		}

	case validateResultMsg:
		if msg.err != nil {
			m.state = uploadStateResult
			m.err = msg.err
			m.status = fmt.Sprintf("Error: %v", msg.err)

			return m, nil
		}

		m.report = msg.report
		m.table = msg.table
		m.index = msg.index
		m.state = uploadStateDiagnostics

		return m, nil

	case uploadResultMsg:
		m.state = uploadStateResult
		if msg.err != nil {
			m.err = msg.err
			m.status = fmt.Sprintf("Error: %v", msg.err)

			return m, nil
		}

		m.status = fmt.Sprintf("Processed %d rows: %d created, %d updated.",
			m.report.DataRows, msg.result.Created, msg.result.Updated)

		if len(msg.skipped) > 0 {
			m.status += fmt.Sprintf(" Skipped columns: %s.", strings.Join(msg.skipped, ", "))
		}

		return m, nil
	}

	if m.state != uploadStateFilePick {
		return m, nil
	}

	var cmd tea.Cmd
	m.filePicker, cmd = m.filePicker.Update(msg)

	if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
		m.path = path
		m.state = uploadStateValidating
		m.status = fmt.Sprintf("Validating %s...", path)

		return m, m.validateCmd(path)
	}

	return m, cmd
}

func (m UploadModel) handleEsc() (tea.Model, tea.Cmd) {
	switch m.state {
	case uploadStateDiagnostics, uploadStateResult:
		m.state = uploadStateFilePick
		m.report = nil
		m.table = nil
		m.index = nil
		m.err = nil
		m.status = ""

		return m, nil
	}

	return m, Back
}

func (m UploadModel) View() string {
	switch m.state {
	case uploadStateFilePick:
		return lipgloss.NewStyle().Padding(1).Render(
			"Select a budget file to upload:\n\n" + m.filePicker.View(),
		)
	case uploadStateValidating, uploadStateUploading:
		return lipgloss.NewStyle().Padding(2).Render(m.status)
	case uploadStateDiagnostics:
		return m.viewDiagnostics()
	case uploadStateResult:
		return m.viewResult()
	}

	return ""
}

func (m UploadModel) viewDiagnostics() string {
	if m.report == nil {
		return ""
	}

	r := m.report

	var b strings.Builder

	fmt.Fprintf(&b, "Validation for %s\n\n", m.path)
	fmt.Fprintf(&b, "Data rows:      %d\n", r.DataRows)
	fmt.Fprintf(&b, "Valid entries:  %d\n", r.ValidEntries)
	fmt.Fprintf(&b, "Matched:        %s\n", joinOrDash(r.MatchedLocations))
	fmt.Fprintf(&b, "Unmatched:      %s\n", joinOrDash(r.UnmatchedLocations))

	if len(r.AmbiguousLocations) > 0 {
		fmt.Fprintf(&b, "Ambiguous:      %s\n", strings.Join(r.AmbiguousLocations, ", "))
	}

	if len(r.InvalidDateRows) > 0 {
		fmt.Fprintf(&b, "Invalid dates:  %d row(s)\n", len(r.InvalidDateRows))
	}

	if len(r.InvalidAmountCells) > 0 {
		fmt.Fprintf(&b, "Invalid amounts: %d cell(s)\n", len(r.InvalidAmountCells))
	}

	if len(r.DuplicateDates) > 0 {
		fmt.Fprintf(&b, "Duplicate dates: %s (last row wins)\n", strings.Join(r.DuplicateDates, ", "))
	}

	b.WriteString("\n")

	switch {
	case r.Blocking():
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("196")).
			Render("Upload blocked. Fix the file and select it again."))
	case !r.Startable():
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("196")).
			Render("Nothing to upload: no matched locations with valid entries."))
	default:
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("46")).
			Render("Ready. Press Enter to upload."))
	}

	b.WriteString("\n\n(Esc to go back)")

	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}

func (m UploadModel) viewResult() string {
	style := lipgloss.NewStyle().Padding(2)
	if m.err != nil {
		return style.Render(
			lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render(m.status) +
				"\n\n(Esc to go back)",
		)
	}

	return style.Render(
		lipgloss.NewStyle().Foreground(lipgloss.Color("46")).Render(m.status) +
			"\n\n(Esc to go back)",
	)
}

func joinOrDash(s []string) string {
	if len(s) == 0 {
		return "-"
	}

	return strings.Join(s, ", ")
}

// Messages

type validateResultMsg struct {
	report *importer.Report
	table  *importer.ParsedTable
	index  *location.Index
	err    error
}

type uploadResultMsg struct {
	result  *budget.ReconcileResult
	skipped []string
	err     error
}

func (m UploadModel) validateCmd(path string) tea.Cmd {
	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return validateResultMsg{err: err}
		}
		defer f.Close()

		table, err := importer.Ingest(f)
		if err != nil {
			return validateResultMsg{err: err}
		}

		ctx, cancel := DbCtx()
		defer cancel()

		locs, err := m.catalog.ListLocations(ctx)
		if err != nil {
			return validateResultMsg{err: err}
		}

		index := location.NewIndex(locs)

		return validateResultMsg{
			report: importer.Validate(table, index),
			table:  table,
			index:  index,
		}
	}
}

func (m UploadModel) uploadCmd() tea.Cmd {
	table := m.table
	index := m.index

	return func() tea.Msg {
		params, skipped := importer.BuildUpserts(table, index)

		ctx, cancel := context.WithTimeout(context.Background(), uploadTimeout)
		defer cancel()

		result, err := m.budgetService.Reconcile(ctx, params)
		if err != nil {
			return uploadResultMsg{err: err}
		}

		return uploadResultMsg{result: result, skipped: skipped}
	}
}
