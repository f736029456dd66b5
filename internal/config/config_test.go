package config

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/zenith-dev/zenith/internal/errors"
)

func TestNew(t *testing.T) {
	cfg := New()

	if cfg.RoutesDir != DefaultRoutesDir {
		t.Errorf("RoutesDir = %q, want %q", cfg.RoutesDir, DefaultRoutesDir)
	}
	if cfg.MatchMode != MatchOrder {
		t.Errorf("MatchMode = %q, want %q", cfg.MatchMode, MatchOrder)
	}
	if cfg.Dev.Port != DefaultPort {
		t.Errorf("Dev.Port = %d, want %d", cfg.Dev.Port, DefaultPort)
	}
	if cfg.Dev.Host != DefaultHost {
		t.Errorf("Dev.Host = %q, want %q", cfg.Dev.Host, DefaultHost)
	}
	if cfg.Dev.PollInterval != DefaultPollInterval.String() {
		t.Errorf("Dev.PollInterval = %q, want %q", cfg.Dev.PollInterval, DefaultPollInterval.String())
	}
	if cfg.Build.Output != DefaultOutput {
		t.Errorf("Build.Output = %q, want %q", cfg.Build.Output, DefaultOutput)
	}
	if cfg.Build.Manifest != filepath.Join(DefaultOutput, "manifest.json") {
		t.Errorf("Build.Manifest = %q", cfg.Build.Manifest)
	}
	if cfg.Metrics.Namespace != "zenith" {
		t.Errorf("Metrics.Namespace = %q, want %q", cfg.Metrics.Namespace, "zenith")
	}
}

func TestLoad(t *testing.T) {
	tmpDir := t.TempDir()

	// Loading a directory without zenith.json is a Z041.
	_, err := Load(tmpDir)
	if err == nil {
		t.Error("Expected error for missing config")
	}
	if !strings.Contains(err.Error(), "Z041") {
		t.Errorf("Expected Z041 error, got: %v", err)
	}

	configJSON := `{
  "name": "demo",
  "routesDir": "src/pages",
  "matchMode": "rank",
  "port": 8080,
  "dev": {
    "host": "0.0.0.0",
    "watch": ["src"],
    "hotReload": true
  },
  "build": {
    "output": "build"
  },
  "deploy": {
    "bucket": "demo-site",
    "region": "eu-west-1"
  }
}
`
	configPath := filepath.Join(tmpDir, ConfigFileName)
	if err := os.WriteFile(configPath, []byte(configJSON), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if cfg.Name != "demo" {
		t.Errorf("Name = %q, want %q", cfg.Name, "demo")
	}
	if cfg.RoutesDir != "src/pages" {
		t.Errorf("RoutesDir = %q, want %q", cfg.RoutesDir, "src/pages")
	}
	if !cfg.Ranked() {
		t.Error("Ranked() should be true for matchMode rank")
	}
	// Dev.Port inherits the root port when unset.
	if cfg.Dev.Port != 8080 {
		t.Errorf("Dev.Port = %d, want %d", cfg.Dev.Port, 8080)
	}
	if cfg.Dev.Host != "0.0.0.0" {
		t.Errorf("Dev.Host = %q, want %q", cfg.Dev.Host, "0.0.0.0")
	}
	if len(cfg.Dev.Watch) != 1 || cfg.Dev.Watch[0] != "src" {
		t.Errorf("Dev.Watch = %v, want [src]", cfg.Dev.Watch)
	}
	if cfg.Build.Output != "build" {
		t.Errorf("Build.Output = %q, want %q", cfg.Build.Output, "build")
	}
	// Manifest defaults under the configured output directory.
	if cfg.Build.Manifest != filepath.Join("build", "manifest.json") {
		t.Errorf("Build.Manifest = %q", cfg.Build.Manifest)
	}
	if cfg.Deploy.Bucket != "demo-site" || cfg.Deploy.Region != "eu-west-1" {
		t.Errorf("Deploy = %+v", cfg.Deploy)
	}
	if cfg.Path() != configPath {
		t.Errorf("Path() = %q, want %q", cfg.Path(), configPath)
	}
}

func TestLoadFile_InvalidJSON(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, ConfigFileName)

	configJSON := "{\n  \"port\": 8080,,\n}\n"
	if err := os.WriteFile(configPath, []byte(configJSON), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadFile(configPath)
	if err == nil {
		t.Fatal("Expected error for invalid JSON")
	}
	var ze *errors.ZenithError
	if !stderrors.As(err, &ze) {
		t.Fatalf("error type = %T, want *errors.ZenithError", err)
	}
	if ze.Code != "Z020" {
		t.Errorf("Code = %q, want Z020", ze.Code)
	}
	// Syntax errors carry the offending line.
	if ze.Location == nil {
		t.Fatal("expected a location from the JSON offset")
	}
	if ze.Location.Line != 2 {
		t.Errorf("Location.Line = %d, want 2", ze.Location.Line)
	}
}

func TestLoadFile_TypeError(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, ConfigFileName)

	if err := os.WriteFile(configPath, []byte(`{"port": "eighty"}`), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadFile(configPath)
	if err == nil {
		t.Fatal("Expected error for mistyped field")
	}
	var ze *errors.ZenithError
	if !stderrors.As(err, &ze) {
		t.Fatalf("error type = %T, want *errors.ZenithError", err)
	}
	if ze.Code != "Z020" {
		t.Errorf("Code = %q, want Z020", ze.Code)
	}
	if !strings.Contains(ze.Detail, "port") {
		t.Errorf("Detail = %q, want mention of the field", ze.Detail)
	}
}

func TestSaveAndReload(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, ConfigFileName)

	cfg := New()
	cfg.Name = "saved"
	cfg.Dev.Port = 9000

	// Save should fail without a path set.
	if err := cfg.Save(); err == nil {
		t.Error("Expected error when saving without path")
	}

	if err := cfg.SaveTo(configPath); err != nil {
		t.Fatalf("SaveTo error: %v", err)
	}
	if cfg.Path() != configPath {
		t.Errorf("Path() = %q after SaveTo", cfg.Path())
	}
	if cfg.Dir() != tmpDir {
		t.Errorf("Dir() = %q, want %q", cfg.Dir(), tmpDir)
	}

	// Save now works against the recorded path.
	cfg.Dev.Port = 9001
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	loaded, err := LoadFile(configPath)
	if err != nil {
		t.Fatalf("LoadFile error: %v", err)
	}
	if loaded.Name != "saved" || loaded.Dev.Port != 9001 {
		t.Errorf("reloaded = %q port %d", loaded.Name, loaded.Dev.Port)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*Config)
		wantCode string
	}{
		{
			name:   "defaults are valid",
			mutate: func(*Config) {},
		},
		{
			name:     "zero port",
			mutate:   func(c *Config) { c.Dev.Port = 0 },
			wantCode: "Z022",
		},
		{
			name:     "port too large",
			mutate:   func(c *Config) { c.Dev.Port = 70000 },
			wantCode: "Z022",
		},
		{
			name:     "unknown match mode",
			mutate:   func(c *Config) { c.MatchMode = "fuzzy" },
			wantCode: "Z024",
		},
		{
			name:   "bad poll interval",
			mutate: func(c *Config) { c.Dev.PollInterval = "fast" },
			// Uncoded config error.
			wantCode: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := New()
			tt.mutate(cfg)
			err := cfg.Validate()

			if tt.name == "defaults are valid" {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatal("Validate() = nil, want error")
			}
			if tt.wantCode != "" && !strings.Contains(err.Error(), tt.wantCode) {
				t.Errorf("Validate() = %v, want code %s", err, tt.wantCode)
			}
		})
	}
}

func TestPollIntervalDuration(t *testing.T) {
	cfg := New()
	cfg.Dev.PollInterval = "2s"
	if got := cfg.PollIntervalDuration(); got != 2*time.Second {
		t.Errorf("PollIntervalDuration() = %v, want 2s", got)
	}

	cfg.Dev.PollInterval = "garbage"
	if got := cfg.PollIntervalDuration(); got != DefaultPollInterval {
		t.Errorf("PollIntervalDuration() = %v, want default", got)
	}

	cfg.Dev.PollInterval = "-1s"
	if got := cfg.PollIntervalDuration(); got != DefaultPollInterval {
		t.Errorf("PollIntervalDuration() = %v, want default for non-positive", got)
	}
}

func TestDevAddressAndURL(t *testing.T) {
	cfg := New()
	cfg.Dev.Host = "127.0.0.1"
	cfg.Dev.Port = 4000

	if got := cfg.DevAddress(); got != "127.0.0.1:4000" {
		t.Errorf("DevAddress() = %q", got)
	}
	if got := cfg.DevURL(); got != "http://127.0.0.1:4000" {
		t.Errorf("DevURL() = %q", got)
	}
}

func TestPathAccessors(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, ConfigFileName)
	if err := os.WriteFile(configPath, []byte(`{"routesDir": "pages"}`), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(configPath)
	if err != nil {
		t.Fatal(err)
	}

	if got := cfg.RoutesPath(); got != filepath.Join(tmpDir, "pages") {
		t.Errorf("RoutesPath() = %q", got)
	}
	if got := cfg.OutputPath(); got != filepath.Join(tmpDir, DefaultOutput) {
		t.Errorf("OutputPath() = %q", got)
	}
	if got := cfg.ManifestPath(); got != filepath.Join(tmpDir, DefaultOutput, "manifest.json") {
		t.Errorf("ManifestPath() = %q", got)
	}
	if got := cfg.PublicPath(); got != filepath.Join(tmpDir, "public") {
		t.Errorf("PublicPath() = %q", got)
	}

	// Absolute paths are kept as-is.
	cfg.RoutesDir = "/abs/routes"
	if got := cfg.RoutesPath(); got != "/abs/routes" {
		t.Errorf("RoutesPath() = %q, want absolute unchanged", got)
	}
}

func TestFindProjectRoot(t *testing.T) {
	tmpDir := t.TempDir()
	nested := filepath.Join(tmpDir, "a", "b", "c")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}
	configPath := filepath.Join(tmpDir, ConfigFileName)
	if err := os.WriteFile(configPath, []byte("{}"), 0644); err != nil {
		t.Fatal(err)
	}

	root, err := FindProjectRoot(nested)
	if err != nil {
		t.Fatalf("FindProjectRoot error: %v", err)
	}
	if root != tmpDir {
		t.Errorf("FindProjectRoot = %q, want %q", root, tmpDir)
	}

	if !Exists(tmpDir) {
		t.Error("Exists should be true at the root")
	}
	if Exists(nested) {
		t.Error("Exists should be false in a nested dir")
	}
}

func TestFindProjectRoot_NotFound(t *testing.T) {
	// A fresh temp dir has no zenith.json anywhere up to /tmp; walking
	// to the filesystem root must fail with Z041 rather than loop.
	tmpDir := t.TempDir()

	_, err := FindProjectRoot(tmpDir)
	if err == nil {
		t.Skip("a zenith.json exists in a parent of TempDir")
	}
	if !strings.Contains(err.Error(), "Z041") {
		t.Errorf("error = %v, want Z041", err)
	}
}
