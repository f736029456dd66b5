// Package errors provides structured, actionable error messages for
// the zenith toolchain.
//
// The errors package implements an error system that:
//   - Shows exact source locations (file, line, column)
//   - Explains what went wrong in plain language
//   - Suggests how to fix issues with code examples
//   - Links to documentation for deeper understanding
//
// # Error Categories
//
// Errors are organized into categories:
//   - manifest: Route scanning and manifest errors (duplicates, unmatchable patterns)
//   - config: zenith.json errors (malformed JSON, invalid values)
//   - cli: Command errors (not a project, bad arguments)
//   - dev: Development server errors (port in use, watch failures)
//   - deploy: Deployment errors (missing bucket, upload failures)
//
// # Error Codes
//
// Each error has a unique code (e.g., "Z020") that maps to:
//   - A short message describing the error
//   - A detailed explanation
//   - A documentation URL
//
// # Usage
//
//	err := errors.New("Z020").
//	    WithLocationFromOffset("zenith.json", data, syntaxErr.Offset).
//	    WithSuggestion("Check for a trailing comma near the marked line")
//
//	fmt.Println(err.Format())
//	// Output:
//	// ERROR Z020: Invalid zenith.json
//	//
//	//   zenith.json:4:18
//	//
//	//      2 │   "routesDir": "app/routes",
//	//      3 │   "port": 8080,
//	//   → 4 │   "matchMode": "rank",,
//	//       │                  ^
//	//      5 │ }
//	//
//	//   Hint: Check for a trailing comma near the marked line
//	//
//	//   Learn more: https://zenith.dev/docs/errors/Z020
package errors
