package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorFormat(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "op and kind only",
			err:  &Error{Kind: KindDirectoryNotFound, Op: "import"},
			want: "import: DirectoryNotFound",
		},
		{
			name: "with object",
			err:  New(KindMissingField, "adapt", errors.New(`"title" absent`)).WithObject("dashboard", "d1"),
			want: `adapt type=dashboard name=d1: MissingField: "title" absent`,
		},
		{
			name: "with path",
			err:  New(KindLocalIO, "write", errors.New("disk full")).WithPath("/tmp/x.json"),
			want: "write path=/tmp/x.json: LocalIOError: disk full",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestKindOfWalksChain(t *testing.T) {
	base := Newf(KindMalformedResponse, "search", "bad json")
	wrapped := fmt.Errorf("export: %w", base)

	assert.Equal(t, KindMalformedResponse, KindOf(wrapped))
	assert.True(t, Is(wrapped, KindMalformedResponse))
	assert.False(t, Is(wrapped, KindLocalIO))
	assert.Equal(t, KindUnknown, KindOf(errors.New("plain")))
	assert.Equal(t, Kind(""), KindOf(nil))
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, 0},
		{errors.New("plain"), 1},
		{New(KindInvalidConfig, "config", nil), 2},
		{New(KindRemoteUnavailable, "search", nil), 3},
		{New(KindMalformedResponse, "search", nil), 4},
		{New(KindLocalIO, "write", nil), 5},
		{fmt.Errorf("wrapped: %w", New(KindDirectoryNotFound, "scan", nil)), 6},
		{New(KindMissingField, "adapt", nil), 7},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ExitCode(tt.err), "err=%v", tt.err)
	}
}

func TestWithObjectDoesNotMutate(t *testing.T) {
	orig := New(KindMissingField, "adapt", nil)
	_ = orig.WithObject("search", "s1")
	assert.Empty(t, orig.Type)
	assert.Empty(t, orig.Name)
}
