package manifest

import (
	"fmt"
	"strings"
)

// ValidationError reports one problem found in a route collection.
type ValidationError struct {
	// Type is the error category.
	Type ValidationErrorType

	// Message is the human-readable error message.
	Message string

	// Files are the source files involved, when known.
	Files []string

	// Path is the route path pattern involved.
	Path string

	// Details contains additional error-specific information.
	Details string
}

func (e ValidationError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Type, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// ValidationErrorType categorizes validation errors.
type ValidationErrorType string

const (
	// ErrorDuplicateRoute indicates multiple defs resolve to the same
	// route path. Example: pages/users/index.zen and pages/users.zen
	// both resolve to /users.
	ErrorDuplicateRoute ValidationErrorType = "DUPLICATE_ROUTE"

	// ErrorUnmatchableRoute indicates a route that can never match any
	// pathname: duplicate parameter names, a malformed parameter name,
	// or a catch-all before the final segment.
	ErrorUnmatchableRoute ValidationErrorType = "UNMATCHABLE_ROUTE"
)

// MultiValidationError wraps multiple validation errors.
type MultiValidationError struct {
	Errors []ValidationError
}

func (e *MultiValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "no validation errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d route validation errors:\n", len(e.Errors))
	for i, err := range e.Errors {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, err.Error())
	}
	return sb.String()
}

// ValidateDefs checks a def collection for duplicate route paths.
// Returns nil when all defs are distinct, or a MultiValidationError
// listing every duplicate. Hand-declared manifests may legitimately
// rely on first-match-wins ordering, so Build does not call this;
// the scanner and CLI do, where a duplicate always means two page
// files collided.
func ValidateDefs(defs []Def) error {
	byPath := make(map[string][]Def)
	order := make([]string, 0, len(defs))
	for _, d := range defs {
		if _, seen := byPath[d.Path]; !seen {
			order = append(order, d.Path)
		}
		byPath[d.Path] = append(byPath[d.Path], d)
	}

	var errs []ValidationError
	for _, path := range order {
		group := byPath[path]
		if len(group) <= 1 {
			continue
		}
		files := make([]string, 0, len(group))
		for _, d := range group {
			if d.FilePath != "" {
				files = append(files, d.FilePath)
			}
		}
		errs = append(errs, ValidationError{
			Type:    ErrorDuplicateRoute,
			Message: fmt.Sprintf("duplicate route detected at %s", path),
			Path:    path,
			Files:   files,
			Details: fmt.Sprintf("declared %d times", len(group)),
		})
	}

	if len(errs) > 0 {
		return &MultiValidationError{Errors: errs}
	}
	return nil
}

// Unmatchable returns a diagnostic for every route in the manifest
// whose matcher rejects all input. Such routes are kept in the manifest
// (the behavior is deliberate, not an error) but tools should surface
// them, since a page that can never be reached is almost always an
// authoring mistake.
func Unmatchable(m *Manifest) []ValidationError {
	var warns []ValidationError
	for _, r := range m.Routes {
		if r.Matcher.Valid() {
			continue
		}
		var files []string
		if r.FilePath != "" {
			files = []string{r.FilePath}
		}
		warns = append(warns, ValidationError{
			Type:    ErrorUnmatchableRoute,
			Message: fmt.Sprintf("route %s can never match", r.Path),
			Path:    r.Path,
			Files:   files,
			Details: "duplicate or malformed parameter names, or a catch-all before the final segment",
		})
	}
	return warns
}

// FormatValidationError formats a validation error for CLI display:
//
//	ERROR: duplicate route detected at /users
//	  pages/users/index.zen → /users
//	  pages/users.zen → /users
func FormatValidationError(err ValidationError) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "ERROR: %s\n", err.Message)
	for _, file := range err.Files {
		fmt.Fprintf(&sb, "  %s → %s\n", file, err.Path)
	}
	if err.Details != "" {
		fmt.Fprintf(&sb, "  Details: %s\n", err.Details)
	}

	return sb.String()
}
