package dev

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/zenith-dev/zenith/internal/config"
	"github.com/zenith-dev/zenith/internal/errors"
	"github.com/zenith-dev/zenith/pkg/manifest"
)

// ServerOptions configures the development server.
type ServerOptions struct {
	// Config is the project configuration.
	Config *config.Config

	// Logger receives server logs. Defaults to slog.Default().
	Logger *slog.Logger

	// Verbose enables HTTP request logging.
	Verbose bool

	// OnScanStart is called when a route rescan starts.
	OnScanStart func()

	// OnScanComplete is called when a route rescan completes.
	OnScanComplete func(result ScanResult)

	// OnReload is called after browsers are told to reload.
	OnReload func(clients int)
}

// ScanResult reports one route rescan.
type ScanResult struct {
	// Routes is the number of routes in the manifest.
	Routes int

	// Changed reports whether the route set differs from the
	// previous scan.
	Changed bool

	// Duration is how long the scan took.
	Duration time.Duration

	// Err is the scan failure, if any. The server keeps serving the
	// last good manifest while Err is set.
	Err *errors.ZenithError
}

// Server is the development server. It serves the app shell for any
// path, the route manifest at /_zenith/manifest.json, static files,
// and pushes live-reload messages when watched files change.
type Server struct {
	config  *config.Config
	options ServerOptions
	watcher *Watcher
	reload  *ReloadServer
	metrics *devMetrics
	logger  *slog.Logger

	changeCh chan Change

	mu          sync.Mutex
	running     bool
	manifest    *manifest.Manifest
	encoded     []byte
	fingerprint string
	scanErr     *errors.ZenithError
	httpServer  *http.Server
}

// NewServer creates a development server for the given project.
func NewServer(options ServerOptions) *Server {
	cfg := options.Config

	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "dev")

	watcher := NewWatcher(WatcherConfig{
		Paths:    CollectWatchPaths(cfg),
		Ignore:   DefaultIgnore,
		Interval: cfg.PollIntervalDuration(),
	})

	var reload *ReloadServer
	if cfg.Dev.HotReload {
		reload = NewReloadServer(logger)
	}

	var metrics *devMetrics
	if cfg.Metrics.Enabled {
		var clientCount func() float64
		if reload != nil {
			clientCount = func() float64 { return float64(reload.ClientCount()) }
		}
		metrics = newDevMetrics(cfg.Metrics.Namespace, clientCount)
	}

	return &Server{
		config:  cfg,
		options: options,
		watcher: watcher,
		reload:  reload,
		metrics: metrics,
		logger:  logger,
	}
}

// Start scans the routes, starts the watcher, and serves HTTP until
// ctx is canceled or the listener fails.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = true
	s.mu.Unlock()

	result := s.rescan()
	if result.Err != nil {
		s.logger.Error("route scan failed", "error", result.Err.Error())
	} else {
		s.logger.Info("routes scanned",
			"routes", result.Routes,
			"duration", result.Duration.Round(time.Millisecond))
	}

	s.changeCh = make(chan Change, 64)
	s.watcher.OnChange(func(change Change) {
		select {
		case s.changeCh <- change:
		default:
		}
	})

	go s.watcher.Start(ctx)
	go s.processChanges(ctx)

	srv := &http.Server{
		Addr:    s.config.DevAddress(),
		Handler: s.Handler(),
	}
	s.mu.Lock()
	s.httpServer = srv
	s.mu.Unlock()

	s.logger.Info("dev server listening", "url", s.config.DevURL())

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- errors.New("Z060").
				WithDetail("Could not listen on " + s.config.DevAddress()).
				Wrap(err)
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		s.Stop()
		return nil
	case err := <-errCh:
		s.Stop()
		return err
	}
}

// Stop shuts the server down. Safe to call more than once.
func (s *Server) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	s.running = false

	s.watcher.Stop()
	if s.reload != nil {
		s.reload.Close()
	}
	if s.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.httpServer.Shutdown(ctx)
	}
}

// Manifest returns the most recent good manifest, or nil before the
// first successful scan.
func (s *Server) Manifest() *manifest.Manifest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.manifest
}

// Handler returns the dev server's HTTP handler. Start uses it
// internally; it is also useful for mounting the dev surface inside
// another server.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	if s.options.Verbose {
		r.Use(middleware.Logger)
	}

	r.Get("/_zenith/manifest.json", s.handleManifest)
	r.Get("/_zenith/error", s.handleScanError)
	if s.reload != nil {
		r.Get("/_zenith/reload", s.reload.HandleWebSocket)
	}
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics.handler())
	}

	prefix := s.config.StaticPrefix()
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	files := http.StripPrefix(prefix, http.FileServer(http.Dir(s.config.PublicPath())))
	r.Handle(prefix+"*", files)

	r.NotFound(s.handleShell)

	return r
}

// handleManifest serves the current manifest as JSON.
func (s *Server) handleManifest(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	encoded := s.encoded
	s.mu.Unlock()

	if encoded == nil {
		http.Error(w, "no route manifest yet; check the dev server log", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(encoded)
}

// handleScanError serves the last scan failure as JSON, or 204 when
// the last scan succeeded. The injected client polls this on connect
// so an overlay survives a browser refresh.
func (s *Server) handleScanError(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	scanErr := s.scanErr
	s.mu.Unlock()

	if scanErr == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	json.NewEncoder(w).Encode(scanErr)
}

// handleShell is the SPA fallback: any path that is not a dev
// endpoint or a static file gets the app shell, so deep links resolve
// client-side.
func (s *Server) handleShell(w http.ResponseWriter, r *http.Request) {
	body := s.shellHTML()
	if s.reload != nil {
		body = injectDevClient(body)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(body)
}

// shellHTML returns the project's shell, or the built-in one when the
// project has none.
func (s *Server) shellHTML() []byte {
	shellPath := filepath.Join(s.config.PublicPath(), "index.html")
	if body, err := os.ReadFile(shellPath); err == nil {
		return body
	}
	return defaultShell(s.config.Name)
}

// rescan runs one scan cycle with callbacks and metrics around it.
func (s *Server) rescan() ScanResult {
	if s.options.OnScanStart != nil {
		s.options.OnScanStart()
	}

	start := time.Now()
	result := s.scanOnce()
	result.Duration = time.Since(start)

	if s.metrics != nil {
		s.metrics.observeScan(result)
	}
	if s.options.OnScanComplete != nil {
		s.options.OnScanComplete(result)
	}
	return result
}

// scanOnce scans the pages directory and swaps in the new manifest.
// On failure the previous manifest stays live and the error is held
// for the error endpoint.
func (s *Server) scanOnce() ScanResult {
	defs, err := manifest.NewScanner(s.config.RoutesPath()).Scan()
	if err != nil {
		return s.failScan(errors.New("Z023").
			WithDetail("Could not scan " + s.config.RoutesDir).
			Wrap(err))
	}
	if len(defs) == 0 {
		return s.failScan(errors.New("Z001").
			WithDetail("No " + manifest.PageExt + " pages under " + s.config.RoutesDir).
			WithSuggestion("Create " + filepath.Join(s.config.RoutesDir, "index"+manifest.PageExt) + " to define the root route"))
	}

	if verr := manifest.ValidateDefs(defs); verr != nil {
		zerr := errors.New("Z002").Wrap(verr)
		if multi, ok := verr.(*manifest.MultiValidationError); ok && len(multi.Errors) > 0 {
			var sb strings.Builder
			for _, ve := range multi.Errors {
				sb.WriteString(manifest.FormatValidationError(ve))
			}
			zerr = zerr.WithDetail(strings.TrimRight(sb.String(), "\n"))
		}
		return s.failScan(zerr)
	}

	var opts []manifest.BuildOption
	if s.config.Ranked() {
		opts = append(opts, manifest.WithRanking())
	}
	m, err := manifest.Build(defs, opts...)
	if err != nil {
		return s.failScan(errors.New("Z043").Wrap(err))
	}

	for _, warn := range manifest.Unmatchable(m) {
		s.logger.Warn("unmatchable route", "path", warn.Path, "details", warn.Details)
	}

	var buf bytes.Buffer
	if err := m.Encode(&buf); err != nil {
		return s.failScan(errors.New("Z043").Wrap(err))
	}

	fp := fingerprint(m)

	s.mu.Lock()
	changed := fp != s.fingerprint
	s.manifest = m
	s.encoded = buf.Bytes()
	s.fingerprint = fp
	s.scanErr = nil
	s.mu.Unlock()

	return ScanResult{Routes: m.Len(), Changed: changed}
}

func (s *Server) failScan(zerr *errors.ZenithError) ScanResult {
	s.mu.Lock()
	s.scanErr = zerr
	s.mu.Unlock()
	return ScanResult{Err: zerr}
}

// fingerprint derives a change-detection key from the route set. The
// encoded manifest carries a generation timestamp, so comparing raw
// bytes would always report a change.
func fingerprint(m *manifest.Manifest) string {
	var sb strings.Builder
	for _, r := range m.Routes {
		sb.WriteString(r.Path)
		sb.WriteByte('\t')
		sb.WriteString(r.FilePath)
		sb.WriteByte('\n')
	}
	return sb.String()
}

// processChanges serializes change handling and coalesces bursts.
func (s *Server) processChanges(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case change := <-s.changeCh:
			batch := []Change{change}
			for draining := true; draining; {
				select {
				case next := <-s.changeCh:
					batch = append(batch, next)
				default:
					draining = false
				}
			}
			s.handleChanges(batch)
		}
	}
}

// handleChanges reacts to a batch of file changes. Page changes win
// over everything else since they end in a reload anyway.
func (s *Server) handleChanges(batch []Change) {
	var hasPage, hasCSS, hasConfig, hasAsset bool
	var cssPath string

	for _, change := range batch {
		s.logger.Debug("file changed", "path", change.Path, "type", change.Type)
		switch change.Type {
		case ChangePage:
			hasPage = true
		case ChangeCSS:
			hasCSS = true
			if cssPath == "" {
				cssPath = change.Path
			}
		case ChangeConfig:
			hasConfig = true
		case ChangeAsset:
			hasAsset = true
		}
	}

	if hasConfig {
		s.logger.Warn("zenith.json changed; restart the dev server to apply it")
	}

	if hasPage {
		s.handlePageChange()
		return
	}
	if hasCSS {
		s.notifyCSS(cssPath)
		return
	}
	if hasAsset {
		s.notifyReload()
	}
}

// handlePageChange rescans the pages directory and pushes the result
// to connected browsers.
func (s *Server) handlePageChange() {
	result := s.rescan()
	if result.Err != nil {
		s.logger.Error("route scan failed", "error", result.Err.Error())
		s.notifyError(result.Err)
		return
	}

	s.logger.Info("routes scanned",
		"routes", result.Routes,
		"changed", result.Changed,
		"duration", result.Duration.Round(time.Millisecond))

	s.clearError()
	if result.Changed {
		s.notifyManifest()
	}
}

func (s *Server) notifyManifest() {
	if s.reload == nil {
		return
	}
	s.reload.NotifyManifest()
	s.observeBroadcast(ReloadTypeManifest)
	if s.options.OnReload != nil {
		s.options.OnReload(s.reload.ClientCount())
	}
	s.logger.Info("manifest pushed", "clients", s.reload.ClientCount())
}

func (s *Server) notifyReload() {
	if s.reload == nil {
		s.logger.Info("asset changed (hot reload disabled)")
		return
	}
	s.reload.NotifyReload()
	s.observeBroadcast(ReloadTypeFull)
	if s.options.OnReload != nil {
		s.options.OnReload(s.reload.ClientCount())
	}
	s.logger.Info("reloaded browsers", "clients", s.reload.ClientCount())
}

func (s *Server) notifyCSS(path string) {
	if s.reload == nil {
		s.logger.Info("css changed (hot reload disabled)")
		return
	}
	s.reload.NotifyCSS(path)
	s.observeBroadcast(ReloadTypeCSS)
	s.logger.Info("css refreshed", "path", path)
}

func (s *Server) notifyError(zerr *errors.ZenithError) {
	if s.reload == nil {
		return
	}
	s.reload.NotifyError(overlayText(zerr))
	s.observeBroadcast(ReloadTypeError)
}

func (s *Server) clearError() {
	if s.reload == nil {
		return
	}
	s.reload.ClearError()
	s.observeBroadcast(ReloadTypeClear)
}

func (s *Server) observeBroadcast(t ReloadMessageType) {
	if s.metrics != nil {
		s.metrics.observeBroadcast(t)
	}
}

// overlayText renders an error for the browser overlay: the compact
// line plus detail and suggestion, without terminal colors.
func overlayText(zerr *errors.ZenithError) string {
	var sb strings.Builder
	sb.WriteString(zerr.FormatCompact())
	if zerr.Detail != "" {
		sb.WriteString("\n\n")
		sb.WriteString(zerr.Detail)
	}
	if zerr.Suggestion != "" {
		sb.WriteString("\n\n")
		sb.WriteString(zerr.Suggestion)
	}
	return sb.String()
}
