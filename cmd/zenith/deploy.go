package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/zenith-dev/zenith/internal/config"
	"github.com/zenith-dev/zenith/internal/deploy"
)

func deployCmd() *cobra.Command {
	var (
		bucket string
		prefix string
		region string
		dryRun bool
		prune  bool
	)

	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Upload the build output to S3",
		Long: `Upload the build output directory to an S3 bucket.

Credentials come from the default AWS chain (environment, shared
config, instance role). Bucket, region, prefix, and Cache-Control
policy come from the deploy section of zenith.json; flags override
them. HTML pages and manifest.json are uploaded with no-cache so a
new deploy takes effect immediately.

Examples:
  zenith deploy
  zenith deploy --dry-run
  zenith deploy --bucket=my-site --prefix=v2 --prune`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDeploy(bucket, prefix, region, dryRun, prune)
		},
	}

	cmd.Flags().StringVar(&bucket, "bucket", "", "S3 bucket (default from zenith.json)")
	cmd.Flags().StringVar(&prefix, "prefix", "", "Key prefix (default from zenith.json)")
	cmd.Flags().StringVar(&region, "region", "", "AWS region (default from zenith.json)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show what would change without touching the bucket")
	cmd.Flags().BoolVar(&prune, "prune", false, "Delete objects no longer in the build output")

	return cmd
}

func runDeploy(bucket, prefix, region string, dryRun, prune bool) error {
	cfg, err := config.LoadFromWorkingDir()
	if err != nil {
		return err
	}

	// Apply command-line overrides
	if bucket != "" {
		cfg.Deploy.Bucket = bucket
	}
	if prefix != "" {
		cfg.Deploy.Prefix = prefix
	}
	if region != "" {
		cfg.Deploy.Region = region
	}

	if dryRun {
		fmt.Println("  Deploying (dry run)...")
	} else {
		fmt.Println("  Deploying...")
	}
	fmt.Println()

	d := deploy.New(deploy.Options{
		Config: cfg,
		Logger: quietLogger(),
		DryRun: dryRun,
		Prune:  prune,
		OnUpload: func(up deploy.Upload) {
			info("↑ %s (%s)", up.Key, formatBytes(up.Size))
		},
	})

	// Handle signals
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		cancel()
	}()

	result, err := d.Deploy(ctx)
	if err != nil {
		return err
	}

	target := "s3://" + result.Bucket
	if p := strings.Trim(cfg.Deploy.Prefix, "/"); p != "" {
		target += "/" + p
	}

	fmt.Println()
	if dryRun {
		success("Would upload %d files (%s) to %s", result.Uploaded, formatBytes(result.Bytes), target)
		if result.Deleted > 0 {
			info("Would delete %d stale objects", result.Deleted)
		}
		return nil
	}

	success("Deployed %d files (%s) to %s in %s",
		result.Uploaded, formatBytes(result.Bytes), target, result.Duration.Round(time.Millisecond))
	if result.Deleted > 0 {
		info("Deleted %d stale objects", result.Deleted)
	}
	return nil
}

// quietLogger keeps component logs out of the CLI output; warnings and
// errors still surface.
func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
}

// formatBytes formats bytes as a human-readable string.
func formatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(b)/float64(div), "KMGTPE"[exp])
}
