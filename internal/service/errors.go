package service

import "fmt"

type ValidationKind string

const (
	MissingFile    ValidationKind = "missing_file"
	MalformedInput ValidationKind = "malformed_input"
)

// ValidationError rejects an upload before anything is written.
type ValidationError struct {
	Kind ValidationKind
	Err  error
}

func (e *ValidationError) Error() string {
	switch e.Kind {
	case MissingFile:
		return "No file uploaded"
	case MalformedInput:
		if e.Err != nil {
			return fmt.Sprintf("Invalid CSV file: %v", e.Err)
		}
		return "Invalid CSV file"
	default:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
}

func (e *ValidationError) Unwrap() error { return e.Err }

func malformed(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Kind: MalformedInput, Err: fmt.Errorf(format, args...)}
}
