package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/zenith-dev/zenith/internal/errors"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "zenith.json"

	// DefaultPort is the default development server port.
	DefaultPort = 3000

	// DefaultHost is the default development server host.
	DefaultHost = "localhost"

	// DefaultRoutesDir is the default routes directory.
	DefaultRoutesDir = "app/routes"

	// DefaultOutput is the default build output directory.
	DefaultOutput = "dist"

	// DefaultPollInterval is the default file watch poll interval.
	DefaultPollInterval = 500 * time.Millisecond
)

// Match modes accepted in zenith.json.
const (
	// MatchOrder matches routes in declaration order.
	MatchOrder = "order"

	// MatchRank matches routes ranked by specificity.
	MatchRank = "rank"
)

// Config represents the complete zenith.json configuration.
type Config struct {
	// Name is the project name.
	Name string `json:"name,omitempty"`

	// Version is the project version.
	Version string `json:"version,omitempty"`

	// RoutesDir is the directory scanned for page files.
	RoutesDir string `json:"routesDir,omitempty"`

	// MatchMode selects how overlapping routes are resolved:
	// "order" (declaration order) or "rank" (specificity).
	MatchMode string `json:"matchMode,omitempty"`

	// Port is the default server port (convenience field, also in Dev).
	Port int `json:"port,omitempty"`

	// Static contains static file serving configuration.
	Static StaticConfig `json:"static,omitempty"`

	// Dev contains development server configuration.
	Dev DevConfig `json:"dev,omitempty"`

	// Build contains production build configuration.
	Build BuildConfig `json:"build,omitempty"`

	// Deploy contains deployment configuration.
	Deploy DeployConfig `json:"deploy,omitempty"`

	// Metrics contains dev server metrics configuration.
	Metrics MetricsConfig `json:"metrics,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// StaticConfig contains static file serving configuration.
type StaticConfig struct {
	// Dir is the directory containing static files.
	Dir string `json:"dir,omitempty"`

	// Prefix is the URL prefix for static files (default: "/static/").
	Prefix string `json:"prefix,omitempty"`
}

// DevConfig contains development server settings.
type DevConfig struct {
	// Port is the port to run the dev server on.
	Port int `json:"port,omitempty"`

	// Host is the host to bind to.
	Host string `json:"host,omitempty"`

	// OpenBrowser opens the browser automatically on start.
	OpenBrowser bool `json:"openBrowser,omitempty"`

	// Watch contains paths to watch for changes, relative to the
	// project root.
	Watch []string `json:"watch,omitempty"`

	// HotReload enables live reload in development.
	HotReload bool `json:"hotReload,omitempty"`

	// PollInterval is how often watched paths are polled for changes
	// (e.g., "500ms").
	PollInterval string `json:"pollInterval,omitempty"`
}

// BuildConfig contains production build settings.
type BuildConfig struct {
	// Output is the output directory for builds.
	Output string `json:"output,omitempty"`

	// Manifest is where the generated route manifest is written,
	// relative to the project root.
	Manifest string `json:"manifest,omitempty"`
}

// DeployConfig contains S3 deployment settings.
type DeployConfig struct {
	// Bucket is the S3 bucket to deploy to.
	Bucket string `json:"bucket,omitempty"`

	// Region is the AWS region of the bucket.
	Region string `json:"region,omitempty"`

	// Prefix is the key prefix under which files are uploaded.
	Prefix string `json:"prefix,omitempty"`

	// CacheControl is the Cache-Control header set on uploaded files.
	CacheControl string `json:"cacheControl,omitempty"`
}

// MetricsConfig controls the dev server's Prometheus endpoint.
type MetricsConfig struct {
	// Enabled exposes /metrics on the dev server.
	Enabled bool `json:"enabled,omitempty"`

	// Namespace is the metrics namespace (default: "zenith").
	Namespace string `json:"namespace,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Version:   "0.1.0",
		RoutesDir: DefaultRoutesDir,
		MatchMode: MatchOrder,
		Port:      DefaultPort,
		Static: StaticConfig{
			Dir:    "public",
			Prefix: "/static/",
		},
		Dev: DevConfig{
			Port:         DefaultPort,
			Host:         DefaultHost,
			HotReload:    true,
			Watch:        []string{"app", "public"},
			PollInterval: DefaultPollInterval.String(),
		},
		Build: BuildConfig{
			Output:   DefaultOutput,
			Manifest: filepath.Join(DefaultOutput, "manifest.json"),
		},
		Metrics: MetricsConfig{
			Namespace: "zenith",
		},
	}
}

// Load reads configuration from the specified directory.
// It looks for zenith.json in the directory.
func Load(dir string) (*Config, error) {
	configPath := filepath.Join(dir, ConfigFileName)
	return LoadFile(configPath)
}

// LoadFile reads configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("Z041").
				WithDetail("No zenith.json found in " + filepath.Dir(path)).
				WithSuggestion("Run 'zenith init' to create a new project or create zenith.json manually")
		}
		return nil, errors.New("Z020").Wrap(err)
	}

	cfg := New()
	// dev.port and build.manifest derive from other fields, so their
	// defaults are computed after decode rather than preset.
	cfg.Dev.Port = 0
	cfg.Build.Manifest = ""
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, parseError(path, data, err)
	}

	cfg.configPath = path
	cfg.applyDefaults()

	return cfg, nil
}

// parseError converts a json decode error into a located Z020, using
// the byte offset json reports.
func parseError(path string, data []byte, err error) *errors.ZenithError {
	switch e := err.(type) {
	case *json.SyntaxError:
		return errors.New("Z020").
			WithDetail("Invalid JSON syntax: " + e.Error()).
			WithLocationFromOffset(path, data, e.Offset).
			WithSuggestion("Check for missing commas, quotes, or braces near the marked line")
	case *json.UnmarshalTypeError:
		return errors.New("Z020").
			WithDetail(fmt.Sprintf("Field %q expects a %s, got %s", e.Field, e.Type, e.Value)).
			WithLocationFromOffset(path, data, e.Offset)
	default:
		return errors.New("Z020").
			WithDetail("Failed to parse zenith.json: " + err.Error()).
			WithSuggestion("Check that zenith.json is valid JSON")
	}
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.New("Z020").Wrap(err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("Z020").Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.RoutesDir == "" {
		c.RoutesDir = DefaultRoutesDir
	}
	if c.MatchMode == "" {
		c.MatchMode = MatchOrder
	}

	if c.Port == 0 {
		c.Port = DefaultPort
	}
	if c.Dev.Port == 0 {
		c.Dev.Port = c.Port
	}
	if c.Dev.Host == "" {
		c.Dev.Host = DefaultHost
	}
	if c.Dev.Watch == nil {
		c.Dev.Watch = []string{"app", "public"}
	}
	if c.Dev.PollInterval == "" {
		c.Dev.PollInterval = DefaultPollInterval.String()
	}

	if c.Build.Output == "" {
		c.Build.Output = DefaultOutput
	}
	if c.Build.Manifest == "" {
		c.Build.Manifest = filepath.Join(c.Build.Output, "manifest.json")
	}

	if c.Static.Dir == "" {
		c.Static.Dir = "public"
	}
	if c.Static.Prefix == "" {
		c.Static.Prefix = "/static/"
	}

	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = "zenith"
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Dev.Port < 1 || c.Dev.Port > 65535 {
		return errors.New("Z022").
			WithDetail(fmt.Sprintf("Port %d must be between 1 and 65535", c.Dev.Port))
	}
	if c.MatchMode != MatchOrder && c.MatchMode != MatchRank {
		return errors.New("Z024").
			WithDetail(fmt.Sprintf("Match mode %q is not recognized", c.MatchMode)).
			WithSuggestion(`Use "order" or "rank"`)
	}
	if _, err := time.ParseDuration(c.Dev.PollInterval); err != nil {
		return errors.Newf(errors.CategoryConfig, "invalid dev.pollInterval %q", c.Dev.PollInterval).
			WithSuggestion(`Use a Go duration such as "500ms" or "2s"`)
	}
	return nil
}

// Ranked reports whether routes should be matched by specificity
// instead of declaration order.
func (c *Config) Ranked() bool {
	return c.MatchMode == MatchRank
}

// PollIntervalDuration returns the parsed watch poll interval, falling
// back to the default when unset or invalid.
func (c *Config) PollIntervalDuration() time.Duration {
	d, err := time.ParseDuration(c.Dev.PollInterval)
	if err != nil || d <= 0 {
		return DefaultPollInterval
	}
	return d
}

// DevAddress returns the address string for the dev server.
func (c *Config) DevAddress() string {
	return c.Dev.Host + ":" + strconv.Itoa(c.Dev.Port)
}

// DevURL returns the full URL for the dev server.
func (c *Config) DevURL() string {
	return "http://" + c.DevAddress()
}

// RoutesPath returns the absolute path to the routes directory.
func (c *Config) RoutesPath() string {
	return c.abs(c.RoutesDir)
}

// OutputPath returns the absolute path to the build output directory.
func (c *Config) OutputPath() string {
	return c.abs(c.Build.Output)
}

// ManifestPath returns the absolute path of the generated manifest.
func (c *Config) ManifestPath() string {
	return c.abs(c.Build.Manifest)
}

// PublicPath returns the absolute path to the static files directory.
func (c *Config) PublicPath() string {
	return c.abs(c.Static.Dir)
}

// StaticPrefix returns the URL prefix for static files.
func (c *Config) StaticPrefix() string {
	if c.Static.Prefix == "" {
		return "/static/"
	}
	return c.Static.Prefix
}

func (c *Config) abs(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.Dir(), path)
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	path := filepath.Join(dir, ConfigFileName)
	_, err := os.Stat(path)
	return err == nil
}

// FindProjectRoot walks up directories to find the project root.
// Returns the directory containing zenith.json, or an error if not
// found.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if Exists(dir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("Z041").
				WithDetail("No zenith.json found in " + startDir + " or any parent directory").
				WithSuggestion("Run 'zenith init' to create a new project")
		}
		dir = parent
	}
}

// LoadFromWorkingDir loads configuration from the current working
// directory, walking up to the project root.
func LoadFromWorkingDir() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	root, err := FindProjectRoot(wd)
	if err != nil {
		return nil, err
	}

	return Load(root)
}
