package tui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"
)

// columnDef describes a single column in a table.
type columnDef struct {
	Title string
	Width int
}

// objectColumns is the column layout shared by the browser and plain output.
var objectColumns = []columnDef{
	{Title: "Type", Width: 13},
	{Title: "ID", Width: 38},
	{Title: "Title", Width: 40},
	{Title: "Refs", Width: 6},
	{Title: "Status", Width: 10},
}

// tableModel is the paginated, searchable base of the browser.
type tableModel struct {
	columns   []columnDef
	page      int // 0-indexed
	pageSize  int
	cursor    int // index within the current page
	search    string
	searching bool
	input     textinput.Model
}

func newTableModel(cols []columnDef) tableModel {
	ti := textinput.New()
	ti.Placeholder = "filter..."
	ti.CharLimit = 80
	return tableModel{
		columns:  cols,
		pageSize: 15,
		input:    ti,
	}
}

// Update handles keyboard input for pagination, cursor movement and search.
func (t tableModel) Update(msg tea.Msg) (tableModel, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return t, nil
	}

	if t.searching {
		switch {
		case key.Matches(km, keys.Escape):
			t.searching = false
			t.input.Blur()
			if t.input.Value() == "" {
				t.search = ""
			}
			return t, nil
		case km.Type == tea.KeyEnter:
			t.search = t.input.Value()
			t.searching = false
			t.input.Blur()
			t.page, t.cursor = 0, 0
			return t, nil
		default:
			var cmd tea.Cmd
			t.input, cmd = t.input.Update(km)
			return t, cmd
		}
	}

	switch {
	case key.Matches(km, keys.Search):
		t.searching = true
		t.input.SetValue(t.search)
		t.input.Focus()
		return t, textinput.Blink
	case key.Matches(km, keys.Escape):
		t.search = ""
		t.input.SetValue("")
		t.page, t.cursor = 0, 0
	case key.Matches(km, keys.PrevPage):
		if t.page > 0 {
			t.page--
			t.cursor = 0
		}
	case key.Matches(km, keys.NextPage):
		t.page++
		t.cursor = 0
	case key.Matches(km, keys.Up):
		if t.cursor > 0 {
			t.cursor--
		}
	case key.Matches(km, keys.Down):
		t.cursor++
	}
	return t, nil
}

// pageCount returns the number of pages for totalRows rows. Always at least 1.
func pageCount(totalRows, pageSize int) int {
	if totalRows == 0 || pageSize <= 0 {
		return 1
	}
	c := totalRows / pageSize
	if totalRows%pageSize != 0 {
		c++
	}
	return c
}

// pageBounds returns the [start, end) row range of page.
func pageBounds(totalRows, page, pageSize int) (int, int) {
	if pageSize <= 0 {
		return 0, totalRows
	}
	start := page * pageSize
	if start >= totalRows {
		return 0, 0
	}
	end := start + pageSize
	if end > totalRows {
		end = totalRows
	}
	return start, end
}

// clamp keeps page and cursor inside the rows currently displayed.
func (t *tableModel) clamp(totalRows int) {
	pc := pageCount(totalRows, t.pageSize)
	if t.page >= pc {
		t.page = pc - 1
	}
	if t.page < 0 {
		t.page = 0
	}
	start, end := pageBounds(totalRows, t.page, t.pageSize)
	if n := end - start; t.cursor >= n {
		t.cursor = n - 1
	}
	if t.cursor < 0 {
		t.cursor = 0
	}
}

// selected returns the absolute index of the cursor row, or -1 when the
// table is empty.
func (t tableModel) selected(totalRows int) int {
	start, end := pageBounds(totalRows, t.page, t.pageSize)
	if start+t.cursor >= end {
		return -1
	}
	return start + t.cursor
}

// truncateName shortens s to maxWidth terminal cells, ending in "..." when
// there is room for it.
func truncateName(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}
	if maxWidth <= 3 {
		return runewidth.Truncate(s, maxWidth, "")
	}
	return runewidth.Truncate(s, maxWidth, "...")
}
