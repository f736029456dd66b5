package errors

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
)

// Category represents the type of error.
type Category string

const (
	CategoryManifest Category = "manifest"
	CategoryConfig   Category = "config"
	CategoryCLI      Category = "cli"
	CategoryDev      Category = "dev"
	CategoryDeploy   Category = "deploy"
)

// Location represents a position in a source file, usually a route
// page or zenith.json.
type Location struct {
	File   string `json:"file"`
	Line   int    `json:"line"`
	Column int    `json:"column,omitempty"`
}

// String returns the location as a formatted string.
func (l *Location) String() string {
	if l == nil {
		return ""
	}
	if l.Column > 0 {
		return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
	}
	return fmt.Sprintf("%s:%d", l.File, l.Line)
}

// ZenithError is a structured error with source location, suggestions,
// and documentation.
type ZenithError struct {
	// Code is a unique error identifier (e.g., "Z020").
	Code string

	// Category is the error type (manifest, config, etc.).
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// Location is where in a source file the error occurred.
	Location *Location

	// Context contains surrounding source lines.
	Context []string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// Example is code showing the correct approach.
	Example string

	// DocURL is a link to documentation about this error.
	DocURL string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *ZenithError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return e.Message
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *ZenithError) Unwrap() error {
	return e.Wrapped
}

// WithLocation adds a source location to the error.
func (e *ZenithError) WithLocation(file string, line, column int) *ZenithError {
	e.Location = &Location{File: file, Line: line, Column: column}
	e.Context = readContextLines(file, line, 5)
	return e
}

// WithLocationFromOffset converts a byte offset into data, the way
// encoding/json reports syntax errors, into a line and column
// location.
func (e *ZenithError) WithLocationFromOffset(file string, data []byte, offset int64) *ZenithError {
	if offset < 0 || offset > int64(len(data)) {
		return e
	}
	head := data[:offset]
	line := bytes.Count(head, []byte{'\n'}) + 1
	column := int(offset) - bytes.LastIndexByte(head, '\n')
	e.Location = &Location{File: file, Line: line, Column: column}
	e.Context = contextFromBytes(data, line, 5)
	return e
}

// WithSuggestion adds a fix suggestion to the error.
func (e *ZenithError) WithSuggestion(s string) *ZenithError {
	e.Suggestion = s
	return e
}

// WithExample adds a code example to the error.
func (e *ZenithError) WithExample(ex string) *ZenithError {
	e.Example = ex
	return e
}

// WithDetail adds a detailed explanation to the error.
func (e *ZenithError) WithDetail(d string) *ZenithError {
	e.Detail = d
	return e
}

// WithContext adds custom context lines to the error.
func (e *ZenithError) WithContext(lines []string) *ZenithError {
	e.Context = lines
	return e
}

// Wrap wraps another error.
func (e *ZenithError) Wrap(err error) *ZenithError {
	e.Wrapped = err
	return e
}

// readContextLines reads lines around the target line from a file.
func readContextLines(filename string, targetLine, contextSize int) []string {
	file, err := os.Open(filename)
	if err != nil {
		return nil
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	lineNum := 0
	startLine := targetLine - contextSize/2
	endLine := targetLine + contextSize/2

	for scanner.Scan() {
		lineNum++
		if lineNum >= startLine && lineNum <= endLine {
			lines = append(lines, scanner.Text())
		}
		if lineNum > endLine {
			break
		}
	}

	return lines
}

// contextFromBytes extracts lines around the target line from an
// in-memory buffer.
func contextFromBytes(data []byte, targetLine, contextSize int) []string {
	startLine := targetLine - contextSize/2
	endLine := targetLine + contextSize/2

	var lines []string
	lineNum := 0
	for _, raw := range bytes.Split(data, []byte{'\n'}) {
		lineNum++
		if lineNum >= startLine && lineNum <= endLine {
			lines = append(lines, string(raw))
		}
		if lineNum > endLine {
			break
		}
	}
	return lines
}

// New creates a ZenithError from a registered error code.
func New(code string) *ZenithError {
	template, ok := registry[code]
	if !ok {
		return &ZenithError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &ZenithError{
		Code:     code,
		Category: template.Category,
		Message:  template.Message,
		Detail:   template.Detail,
		DocURL:   template.DocURL,
	}
}

// Newf creates a new ZenithError with a formatted message (no code).
func Newf(category Category, format string, args ...any) *ZenithError {
	return &ZenithError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps a standard error in a ZenithError.
func FromError(err error, code string) *ZenithError {
	if err == nil {
		return nil
	}
	if ze, ok := err.(*ZenithError); ok {
		return ze
	}
	return New(code).Wrap(err)
}
