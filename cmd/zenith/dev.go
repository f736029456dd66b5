package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/zenith-dev/zenith/internal/config"
	"github.com/zenith-dev/zenith/internal/dev"
)

func devCmd() *cobra.Command {
	var (
		port        int
		host        string
		openBrowser bool
		verbose     bool
	)

	cmd := &cobra.Command{
		Use:   "dev",
		Short: "Start the development server",
		Long: `Start the development server with live reload.

The dev server serves the app shell for every route (deep links
included), regenerates the route manifest when page files change, and
refreshes connected browsers over a WebSocket.

Endpoints:
  /_zenith/manifest.json   current route manifest
  /_zenith/reload          live-reload WebSocket
  /_zenith/error           last scan error as JSON

Examples:
  zenith dev
  zenith dev --port=8080
  zenith dev --host=0.0.0.0`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDev(port, host, openBrowser, verbose)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to run on (default from zenith.json)")
	cmd.Flags().StringVarP(&host, "host", "H", "", "Host to bind to (default from zenith.json)")
	cmd.Flags().BoolVarP(&openBrowser, "open", "o", false, "Open browser on start")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log every HTTP request")

	return cmd
}

func runDev(port int, host string, openBrowser, verbose bool) error {
	cfg, err := config.LoadFromWorkingDir()
	if err != nil {
		return err
	}

	// Apply command-line overrides
	if port > 0 {
		cfg.Dev.Port = port
	}
	if host != "" {
		cfg.Dev.Host = host
	}
	if openBrowser {
		cfg.Dev.OpenBrowser = true
	}

	printBanner()
	fmt.Println("  dev")
	fmt.Println()

	logger := quietLogger()
	if verbose {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
	}

	var (
		server       *dev.Server
		printedTable bool
	)
	server = dev.NewServer(dev.ServerOptions{
		Config:  cfg,
		Logger:  logger,
		Verbose: verbose,
		OnScanComplete: func(result dev.ScanResult) {
			if result.Err != nil {
				errorMsg("Route scan failed")
				fmt.Println(result.Err.Format())
				return
			}
			if !result.Changed {
				return
			}
			success("Scanned %d routes in %s", result.Routes, result.Duration.Round(time.Millisecond))
			if !printedTable {
				printedTable = true
				fmt.Println()
				printRouteTable(server.Manifest(), cfg.Ranked())
				fmt.Println()
				info("Local: %s", cfg.DevURL())
				fmt.Println()
			}
		},
		OnReload: func(clients int) {
			if clients > 0 {
				success("Reloaded %d browsers", clients)
			}
		},
	})

	// Handle signals
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		fmt.Println("\n\n  Shutting down...")
		cancel()
		server.Stop()
	}()

	if cfg.Dev.OpenBrowser {
		go func() {
			time.Sleep(300 * time.Millisecond)
			openURL(cfg.DevURL())
		}()
	}

	return server.Start(ctx)
}

// openURL opens a URL in the default browser.
func openURL(url string) {
	var cmd *exec.Cmd

	switch {
	case commandExists("xdg-open"):
		cmd = exec.Command("xdg-open", url)
	case commandExists("open"):
		cmd = exec.Command("open", url)
	case commandExists("start"):
		cmd = exec.Command("cmd", "/c", "start", url)
	default:
		return
	}

	cmd.Start()
}

// commandExists checks if a command exists in PATH.
func commandExists(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}
