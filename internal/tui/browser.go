package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	ltable "github.com/charmbracelet/lipgloss/table"

	"github.com/dm/kbackup/internal/format"
	"github.com/dm/kbackup/internal/model"
)

// Browser is the root Bubble Tea model of the inspect command.
type Browser struct {
	tableModel

	root        string
	allRows     []Row
	displayRows []Row
	typeFilter  model.ObjectType

	loading    bool
	lastError  error
	loadedAt   time.Time
	showDetail bool
	showHelp   bool

	width, height int
}

// NewBrowser returns a browser over the backup directory root. Init issues
// the first scan.
func NewBrowser(root string) *Browser {
	return &Browser{
		tableModel: newTableModel(objectColumns),
		root:       root,
		loading:    true,
	}
}

// Run starts the interactive browser and blocks until it exits.
func Run(root string) error {
	_, err := tea.NewProgram(NewBrowser(root), tea.WithAltScreen()).Run()
	return err
}

// Init implements tea.Model.
func (b *Browser) Init() tea.Cmd {
	return loadCmd(b.root)
}

// Update implements tea.Model.
func (b *Browser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		b.width = msg.Width
		b.height = msg.Height
		if rows := msg.Height - 8; rows > 3 {
			b.pageSize = rows
		}
		b.refilter()
		return b, nil

	case RowsMsg:
		b.loading = false
		b.lastError = nil
		b.loadedAt = msg.LoadedAt
		b.allRows = msg.Rows
		b.refilter()
		return b, nil

	case LoadErrorMsg:
		b.loading = false
		b.lastError = msg.Err
		return b, nil

	case tea.KeyMsg:
		if !b.searching {
			switch {
			case key.Matches(msg, keys.Quit):
				return b, tea.Quit
			case key.Matches(msg, keys.Help):
				b.showHelp = !b.showHelp
				return b, nil
			case key.Matches(msg, keys.Enter):
				b.showDetail = !b.showDetail
				return b, nil
			case key.Matches(msg, keys.Type):
				b.typeFilter = nextType(b.typeFilter)
				b.page, b.cursor = 0, 0
				b.refilter()
				return b, nil
			case key.Matches(msg, keys.Refresh):
				if b.loading {
					return b, nil
				}
				b.loading = true
				return b, loadCmd(b.root)
			}
		}

		prevSearch := b.search
		base, cmd := b.tableModel.Update(msg)
		b.tableModel = base
		if b.search != prevSearch {
			b.refilter()
		}
		b.clamp(len(b.displayRows))
		return b, cmd
	}
	return b, nil
}

// refilter applies the search and type filters to allRows.
func (b *Browser) refilter() {
	b.displayRows = filterRows(b.allRows, b.search, b.typeFilter)
	b.clamp(len(b.displayRows))
}

// Selected returns the row under the cursor.
func (b *Browser) Selected() (Row, bool) {
	i := b.selected(len(b.displayRows))
	if i < 0 {
		return Row{}, false
	}
	return b.displayRows[i], true
}

// View implements tea.Model.
func (b *Browser) View() string {
	parts := []string{b.renderHeader()}

	switch {
	case b.lastError != nil:
		parts = append(parts, StyleError.Render("  "+b.lastError.Error()))
	case b.loading && b.allRows == nil:
		parts = append(parts, StyleDim.Render("  loading..."))
	default:
		parts = append(parts, b.renderTable())
		if b.showDetail {
			if r, ok := b.Selected(); ok {
				parts = append(parts, renderDetail(r))
			}
		}
	}

	if b.showHelp {
		parts = append(parts, StyleDim.Render(helpText))
	} else {
		parts = append(parts, StyleDim.Render("?: help  q: quit"))
	}
	return strings.Join(parts, "\n")
}

func (b *Browser) renderHeader() string {
	counts := countByType(b.allRows)
	left := fmt.Sprintf("kbackup inspect  %s", b.root)
	stats := fmt.Sprintf("%s  %s  %s",
		format.FormatCount(counts[model.TypeDashboard], "dashboard", "dashboards"),
		format.FormatCount(counts[model.TypeVisualization], "visualization", "visualizations"),
		format.FormatCount(counts[model.TypeSearch], "search", "searches"),
	)
	line := left + "  " + stats
	if !b.loadedAt.IsZero() {
		line += "  loaded " + b.loadedAt.Format("15:04:05")
	}
	style := StyleHeader
	if b.width > 0 {
		style = style.Width(b.width)
	}
	return style.Render(line)
}

func (b *Browser) renderTable() string {
	pc := pageCount(len(b.displayRows), b.pageSize)
	pageInfo := fmt.Sprintf("Page %d/%d", b.page+1, pc)

	typeName := "all"
	if b.typeFilter != "" {
		typeName = string(b.typeFilter)
	}
	var hint string
	switch {
	case b.searching:
		hint = "Search: " + b.input.View()
	case b.search != "":
		hint = fmt.Sprintf("type=%s  filter=%q  %s", typeName, b.search, pageInfo)
	default:
		hint = fmt.Sprintf("type=%s  [/: filter]  [t: type]  [←→: page]  %s", typeName, pageInfo)
	}
	hdr := StyleDim.Render("Objects  " + hint)

	start, end := pageBounds(len(b.displayRows), b.page, b.pageSize)
	if start == end {
		return lipgloss.JoinVertical(lipgloss.Left, hdr, StyleDim.Render("  (no objects)"))
	}

	cursor := b.cursor
	t := newObjectTable(b.displayRows[start:end], func(row int) bool { return row == cursor })
	if b.width > 0 {
		t = t.Width(b.width)
	}
	return lipgloss.JoinVertical(lipgloss.Left, hdr, t.String())
}

// newObjectTable builds the lipgloss table for rows. highlight reports
// whether a body row is selected; it may be nil.
func newObjectTable(rows []Row, highlight func(row int) bool) *ltable.Table {
	headers := make([]string, len(objectColumns))
	for i, c := range objectColumns {
		headers[i] = c.Title
	}

	t := ltable.New().
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == ltable.HeaderRow {
				return lipgloss.NewStyle().Bold(true).Foreground(colorGray)
			}
			if highlight != nil && highlight(row) {
				return StyleSelected
			}
			base := lipgloss.NewStyle()
			if row%2 == 0 {
				base = base.Background(colorAlt)
			}
			switch col {
			case 0:
				if row >= 0 && row < len(rows) {
					return TypeStyle(rows[row].Type).Inherit(base)
				}
			case 4:
				if row >= 0 && row < len(rows) && rows[row].Err != "" {
					return base.Foreground(colorRed)
				}
				return base.Foreground(colorGreen)
			}
			return base.Foreground(colorWhite)
		}).
		BorderStyle(lipgloss.NewStyle().Foreground(colorGray)).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderHeader(true).
		BorderColumn(false)

	for _, r := range rows {
		t = t.Row(objectCells(r)...)
	}
	return t
}

func objectCells(r Row) []string {
	cells := make([]string, len(objectColumns))
	for col, c := range objectColumns {
		var v string
		switch col {
		case 0:
			v = string(r.Type)
		case 1:
			v = r.ID
		case 2:
			v = r.Title
		case 3:
			v = fmt.Sprintf("%d", len(r.Refs))
		case 4:
			v = "ok"
			if r.Err != "" {
				v = "invalid"
			}
		}
		cells[col] = truncateName(v, c.Width)
	}
	return cells
}

// renderDetail shows the path, references and any error of r.
func renderDetail(r Row) string {
	lines := []string{
		fmt.Sprintf("%s %s", TypeStyle(r.Type).Render(string(r.Type)), r.ID),
		"path:  " + r.Path,
	}
	if r.Title != "" {
		lines = append(lines, "title: "+r.Title)
	}
	switch r.Type {
	case model.TypeDashboard:
		lines = append(lines, "visualizations: "+joinOrNone(r.Refs))
	case model.TypeVisualization:
		lines = append(lines, "saved search: "+joinOrNone(r.Refs))
	}
	if r.Err != "" {
		lines = append(lines, StyleError.Render("error: "+r.Err))
	}
	return StyleDetail.Render(strings.Join(lines, "\n"))
}

func joinOrNone(ids []string) string {
	if len(ids) == 0 {
		return "(none)"
	}
	return strings.Join(ids, ", ")
}

// loadCmd scans root off the UI goroutine.
func loadCmd(root string) tea.Cmd {
	return func() tea.Msg {
		rows, err := LoadRows(root)
		if err != nil {
			return LoadErrorMsg{Err: err}
		}
		return RowsMsg{Rows: rows, LoadedAt: time.Now()}
	}
}
