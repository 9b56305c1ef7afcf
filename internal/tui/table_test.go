package tui

import (
	"fmt"
	"testing"

	"github.com/mattn/go-runewidth"
	"github.com/stretchr/testify/assert"
)

func TestTruncateName(t *testing.T) {
	tests := []struct {
		name     string
		s        string
		maxWidth int
		want     string
	}{
		{"empty string", "", 10, ""},
		{"fits exactly", "hello", 5, "hello"},
		{"fits shorter", "hi", 10, "hi"},
		{"one over", "hello!", 5, "he..."},
		{"long id", "5b2a9f10-46c1-11ee-be56-0242ac120002", 20, "5b2a9f10-46c1-11e..."},
		{"width 0", "abc", 0, ""},
		{"width 2", "abc", 2, "ab"},
		{"width 3", "abcd", 3, "abc"},
		{"unicode truncated", "héllo world", 8, "héllo..."},
		{"wide chars fit", "中文", 4, "中文"},
		{"wide chars truncated", "中文测试", 7, "中文..."},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := truncateName(tc.s, tc.maxWidth)
			assert.Equal(t, tc.want, got)
			if tc.maxWidth > 0 {
				assert.LessOrEqual(t, runewidth.StringWidth(got), tc.maxWidth)
			}
		})
	}
}

func TestPageCount(t *testing.T) {
	tests := []struct {
		total, size, want int
	}{
		{0, 10, 1},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{25, 10, 3},
		{5, 0, 1},
	}
	for _, tc := range tests {
		t.Run(fmt.Sprintf("%d/%d", tc.total, tc.size), func(t *testing.T) {
			assert.Equal(t, tc.want, pageCount(tc.total, tc.size))
		})
	}
}

func TestPageBounds(t *testing.T) {
	start, end := pageBounds(25, 0, 10)
	assert.Equal(t, []int{0, 10}, []int{start, end})

	start, end = pageBounds(25, 2, 10)
	assert.Equal(t, []int{20, 25}, []int{start, end})

	start, end = pageBounds(25, 5, 10)
	assert.Equal(t, []int{0, 0}, []int{start, end}, "page past the end is empty")

	start, end = pageBounds(0, 0, 10)
	assert.Equal(t, start, end)
}

func TestClampKeepsPageAndCursorInRange(t *testing.T) {
	m := newTableModel(objectColumns)
	m.pageSize = 10
	m.page = 7
	m.cursor = 9

	m.clamp(23)
	assert.Equal(t, 2, m.page)
	assert.Equal(t, 2, m.cursor, "last page holds 3 rows")
	assert.Equal(t, 22, m.selected(23))

	m.clamp(0)
	assert.Equal(t, 0, m.page)
	assert.Equal(t, 0, m.cursor)
	assert.Equal(t, -1, m.selected(0))
}
