package apperror

import (
	"errors"
	"fmt"
	"testing"
)

// TABLE-DRIVEN TESTS:
// Each case checks that the constructor wraps the right sentinel and that
// errors.Is keeps working through an extra layer of fmt.Errorf wrapping.
func TestErrorsIs(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		target    error
		wantMatch bool
	}{
		{
			name:      "NotFound wraps ErrNotFound",
			err:       NotFound("project", "abc123"),
			target:    ErrNotFound,
			wantMatch: true,
		},
		{
			name:      "InvalidArgument wraps ErrInvalidArgument",
			err:       InvalidArgument("timeSpent", "timeSpent must not be negative"),
			target:    ErrInvalidArgument,
			wantMatch: true,
		},
		{
			name:      "OracleUnavailable wraps ErrOracleUnavailable",
			err:       OracleUnavailable("fetch profile", errors.New("dial tcp: refused")),
			target:    ErrOracleUnavailable,
			wantMatch: true,
		},
		{
			name:      "OracleUnavailable without cause",
			err:       OracleUnavailable("search", nil),
			target:    ErrOracleUnavailable,
			wantMatch: true,
		},
		{
			name:      "wrapped Unauthorized still matches",
			err:       fmt.Errorf("creating project: %w", Unauthorized()),
			target:    ErrUnauthorized,
			wantMatch: true,
		},
		{
			name:      "NotFound does NOT match ErrInvalidArgument",
			err:       NotFound("project", "abc123"),
			target:    ErrInvalidArgument,
			wantMatch: false,
		},
		{
			name:      "HandleNotRegistered does NOT match ErrOracleUnavailable",
			err:       HandleNotRegistered(),
			target:    ErrOracleUnavailable,
			wantMatch: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := errors.Is(tt.err, tt.target)
			if got != tt.wantMatch {
				t.Errorf("errors.Is(%v, %v) = %v, want %v", tt.err, tt.target, got, tt.wantMatch)
			}
		})
	}
}

func TestKind(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{Unauthorized(), KindUnauthorized},
		{InvalidDomain("a@gmail.com"), KindInvalidDomain},
		{InvalidArgument("id", "bad id"), KindInvalidArgument},
		{NotFound("project", "x"), KindNotFound},
		{OracleUnavailable("search", errors.New("timeout")), KindOracleUnavailable},
		{HandleNotRegistered(), KindHandleNotRegistered},
		{errors.New("disk full"), KindInternal},
		{fmt.Errorf("listing sessions: %w", NotFound("project", "x")), KindNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := Kind(tt.err); got != tt.want {
				t.Errorf("Kind(%v) = %q, want %q", tt.err, got, tt.want)
			}
		})
	}
}

func TestMessage_HidesInternalErrors(t *testing.T) {
	err := fmt.Errorf("sqlite: inserting session: %w", errors.New("SQL logic error near \"VALUES\""))

	if got := Message(err); got != "An internal error occurred" {
		t.Errorf("Message() = %q, want generic message", got)
	}
}

func TestMessage_OracleCauseNotExposed(t *testing.T) {
	err := OracleUnavailable("fetch profile", errors.New("GET https://internal.example: 503"))

	if got := Message(err); got != "ranking service is unavailable" {
		t.Errorf("Message() = %q", got)
	}
}

func TestNotFoundMessage(t *testing.T) {
	err := NotFound("project", "abc123")
	if got, want := err.Error(), "project not found with id abc123"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestInvalidArgumentField(t *testing.T) {
	err := InvalidArgument("timeSpent", "timeSpent must not be negative")

	if err.Field != "timeSpent" {
		t.Errorf("Field = %q, want %q", err.Field, "timeSpent")
	}
}
