package manifest

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateDefsDuplicates(t *testing.T) {
	err := ValidateDefs([]Def{
		{Path: "/users", FilePath: "users/index.zen"},
		{Path: "/about", FilePath: "about.zen"},
		{Path: "/users", FilePath: "users.zen"},
	})
	if err == nil {
		t.Fatal("ValidateDefs() with duplicates returned nil error")
	}

	var multi *MultiValidationError
	if !errors.As(err, &multi) {
		t.Fatalf("ValidateDefs() error type = %T, want *MultiValidationError", err)
	}
	if len(multi.Errors) != 1 {
		t.Fatalf("got %d validation errors, want 1: %v", len(multi.Errors), multi)
	}

	ve := multi.Errors[0]
	if ve.Type != ErrorDuplicateRoute {
		t.Errorf("Type = %s, want %s", ve.Type, ErrorDuplicateRoute)
	}
	if ve.Path != "/users" {
		t.Errorf("Path = %s, want /users", ve.Path)
	}
	if len(ve.Files) != 2 {
		t.Errorf("Files = %v, want both colliding files", ve.Files)
	}
}

func TestValidateDefsClean(t *testing.T) {
	err := ValidateDefs([]Def{
		{Path: "/"},
		{Path: "/users"},
		{Path: "/users/:id"},
	})
	if err != nil {
		t.Errorf("ValidateDefs() unexpected error = %v", err)
	}
}

func TestUnmatchable(t *testing.T) {
	m, err := Build([]Def{
		{Path: "/ok/:id"},
		{Path: "/bad/:a/:a", FilePath: "bad/[a]/[a].zen"},
		{Path: "/worse/:user-id"},
	})
	if err != nil {
		t.Fatalf("Build() unexpected error = %v", err)
	}

	warns := Unmatchable(m)
	if len(warns) != 2 {
		t.Fatalf("Unmatchable() returned %d warnings, want 2: %v", len(warns), warns)
	}
	for _, w := range warns {
		if w.Type != ErrorUnmatchableRoute {
			t.Errorf("warning type = %s, want %s", w.Type, ErrorUnmatchableRoute)
		}
	}
	if warns[0].Path != "/bad/:a/:a" || warns[1].Path != "/worse/:user-id" {
		t.Errorf("warning paths = [%s, %s], want the two broken routes", warns[0].Path, warns[1].Path)
	}
}

func TestFormatValidationError(t *testing.T) {
	out := FormatValidationError(ValidationError{
		Type:    ErrorDuplicateRoute,
		Message: "duplicate route detected at /users",
		Path:    "/users",
		Files:   []string{"users/index.zen", "users.zen"},
	})

	if !strings.Contains(out, "ERROR: duplicate route detected at /users") {
		t.Errorf("formatted output missing header:\n%s", out)
	}
	if !strings.Contains(out, "users/index.zen → /users") {
		t.Errorf("formatted output missing file mapping:\n%s", out)
	}
}
