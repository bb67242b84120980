package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/sakif/practice-tracker/internal/apperror"
)

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer
}

// CLIResponse is the JSON envelope for every command.
type CLIResponse struct {
	Status string    `json:"status"` // "ok" or "error"
	Data   any       `json:"data,omitempty"`
	Error  *CLIError `json:"error,omitempty"`
}

// CLIError mirrors the HTTP error body.
type CLIError struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// reportedError marks an error the formatter has already printed.
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

// Success writes data. In text mode text renders it.
func (f *OutputFormatter) Success(data any, text func(io.Writer) error) error {
	if f.Format == "json" {
		return f.writeJSON(CLIResponse{Status: "ok", Data: data})
	}
	return text(f.Writer)
}

// Failure reports err as "kind: message" (or the JSON envelope) and returns
// it wrapped so Execute does not print it twice.
func (f *OutputFormatter) Failure(err error) error {
	kind, msg := apperror.Kind(err), apperror.Message(err)

	if f.Format == "json" {
		if werr := f.writeJSON(CLIResponse{Status: "error", Error: &CLIError{Kind: kind, Message: msg}}); werr != nil {
			return werr
		}
	} else {
		fmt.Fprintf(f.ErrWriter, "%s: %s\n", kind, msg)
	}
	return &reportedError{err: err}
}

func (f *OutputFormatter) writeJSON(v any) error {
	enc := json.NewEncoder(f.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
