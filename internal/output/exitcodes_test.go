package output

import (
	"errors"
	"fmt"
	"testing"
)

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil error", err: nil, want: ExitSuccess},
		{name: "user error", err: NewUserError("bad flag"), want: ExitUserError},
		{name: "system error", err: NewSystemError("disk full"), want: ExitSystemError},
		{name: "partial error", err: NewPartialError("1 alias failed"), want: ExitPartial},
		{name: "untyped error", err: errors.New("something"), want: ExitUserError},
		{
			name: "wrapped exit error",
			err:  fmt.Errorf("context: %w", NewSystemError("fetch failed")),
			want: ExitSystemError,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := GetExitCode(tc.err); got != tc.want {
				t.Errorf("GetExitCode() = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestExitErrorUnwrap(t *testing.T) {
	cause := errors.New("underlying")
	err := NewSystemErrorWithCause("wrapper", cause)

	if !errors.Is(err, cause) {
		t.Error("expected errors.Is to find the cause")
	}
	if err.Error() != "wrapper" {
		t.Errorf("Error() = %q, want %q", err.Error(), "wrapper")
	}
}
