package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents stable error codes for all failure modes
type ErrorCode string

const (
	// NoActiveContext indicates there is no open document or cursor
	NoActiveContext ErrorCode = "NO_ACTIVE_CONTEXT"
	// NoSymbols indicates the symbol provider returned nothing
	NoSymbols ErrorCode = "NO_SYMBOLS"
	// NoEnclosingFunction indicates the cursor is not inside a function-like symbol
	NoEnclosingFunction ErrorCode = "NO_ENCLOSING_FUNCTION"
	// ProviderFailure indicates the symbol provider or edit application failed
	ProviderFailure ErrorCode = "PROVIDER_FAILURE"
	// InvalidPosition indicates a cursor outside the document
	InvalidPosition ErrorCode = "INVALID_POSITION"
	// OverlappingEdits indicates an edit set that cannot be applied atomically
	OverlappingEdits ErrorCode = "OVERLAPPING_EDITS"
	// ConfigError indicates invalid configuration
	ConfigError ErrorCode = "CONFIG_ERROR"
	// UnsupportedLanguage indicates no provider can handle the document
	UnsupportedLanguage ErrorCode = "UNSUPPORTED_LANGUAGE"
	// HistoryConflict indicates the document changed since the recorded edit
	HistoryConflict ErrorCode = "HISTORY_CONFLICT"
	// InvalidArgument indicates a missing or malformed request argument
	InvalidArgument ErrorCode = "INVALID_ARGUMENT"
	// InternalError indicates unexpected error
	InternalError ErrorCode = "INTERNAL_ERROR"
)

// FixAction represents a suggested fix for an error
type FixAction struct {
	Command     string `json:"command,omitempty"`
	Description string `json:"description"`
}

// Error is a coded error with an optional underlying cause.
type Error struct {
	Code           ErrorCode   `json:"code"`
	Message        string      `json:"message"`
	Details        interface{} `json:"details,omitempty"`
	SuggestedFixes []FixAction `json:"suggestedFixes,omitempty"`
	cause          error
}

// New creates a new Error with the default suggested fixes for code.
func New(code ErrorCode, message string, cause error) *Error {
	return &Error{
		Code:           code,
		Message:        message,
		cause:          cause,
		SuggestedFixes: GetSuggestedFixes(code),
	}
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.cause
}

// WithDetails adds details to the error
func (e *Error) WithDetails(details interface{}) *Error {
	e.Details = details
	return e
}

// CodeOf returns the code of the first *Error in err's chain, or "" if none.
func CodeOf(err error) ErrorCode {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Code
	}
	return ""
}

// Is reports whether err carries the given code.
func Is(err error, code ErrorCode) bool {
	return err != nil && CodeOf(err) == code
}

// IsNonFatal reports whether err is one of the conditions that are reported
// to the user without being treated as a failure of the command.
func IsNonFatal(err error) bool {
	switch CodeOf(err) {
	case NoActiveContext, NoSymbols, NoEnclosingFunction, ProviderFailure:
		return true
	}
	return false
}

// ErrorActions maps error codes to suggested fix actions
var ErrorActions = map[ErrorCode][]FixAction{
	NoSymbols: {
		{
			Command:     "codeaxe symbols <file> --provider treesitter",
			Description: "Check which symbols the provider reports for this file",
		},
	},
	NoEnclosingFunction: {
		{
			Description: "Place the cursor inside a function or method body",
		},
	},
	ProviderFailure: {
		{
			Command:     "codeaxe config init",
			Description: "Review provider.default and provider.lsp.servers in .codeaxe/config.json",
		},
	},
	UnsupportedLanguage: {
		{
			Command:     "codeaxe sort <file> --symbols symbols.yaml",
			Description: "Supply the symbol tree from a file",
		},
	},
	HistoryConflict: {
		{
			Command:     "codeaxe history list <file>",
			Description: "Inspect the recorded edits; the file was modified after the last one",
		},
	},
}

// GetSuggestedFixes returns suggested fixes for an error code
func GetSuggestedFixes(code ErrorCode) []FixAction {
	if actions, ok := ErrorActions[code]; ok {
		return actions
	}
	return nil
}
