package tui

import "time"

// RowsMsg delivers a completed directory scan to the browser.
type RowsMsg struct {
	Rows     []Row
	LoadedAt time.Time
}

// LoadErrorMsg signals that the directory could not be scanned.
type LoadErrorMsg struct{ Err error }
