package tui

import (
	"fmt"
	"io"

	"github.com/dm/kbackup/internal/format"
)

// RenderPlain returns every row as a single table followed by a total line.
// width of zero leaves the table at its natural width.
func RenderPlain(rows []Row, width int) string {
	if len(rows) == 0 {
		return "(no objects)\n"
	}
	t := newObjectTable(rows, nil)
	if width > 0 {
		t = t.Width(width)
	}

	invalid := 0
	for _, r := range rows {
		if r.Err != "" {
			invalid++
		}
	}
	total := format.FormatCount(len(rows), "object", "objects")
	if invalid > 0 {
		total += fmt.Sprintf(", %d invalid", invalid)
	}
	return t.String() + "\n" + total + "\n"
}

// WritePlain loads root and writes the plain listing to w.
func WritePlain(w io.Writer, root string, width int) error {
	rows, err := LoadRows(root)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, RenderPlain(rows, width))
	return err
}
