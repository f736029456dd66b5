package main

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/zenith-dev/zenith/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
  ╔═╗┌─┐┌┐┌┬┌┬┐┬ ┬
  ╔═╝├┤ ││││ │ ├─┤
  ╚═╝└─┘┘└┘┴ ┴ ┴ ┴
`

func main() {
	rootCmd := &cobra.Command{
		Use:   "zenith",
		Short: "File-based routing for single-page applications",
		Long: `Zenith turns a directory of page files into a ranked route
manifest and ships it.

  app/routes/index.zen        → /
  app/routes/users/[id].zen   → /users/:id
  app/routes/docs/[...rest].zen → /docs/*rest

Commands cover the whole loop:

  • zenith init      scaffold a project
  • zenith dev       dev server with live reload
  • zenith routes    print the route table
  • zenith gen       generate the manifest or Go glue
  • zenith deploy    upload the build output to S3`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		initCmd(),
		devCmd(),
		routesCmd(),
		genCmd(),
		deployCmd(),
		explainCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		var ze *errors.ZenithError
		if stderrors.As(err, &ze) {
			fmt.Fprintln(os.Stderr, ze.Format())
		} else {
			fmt.Fprintf(os.Stderr, "\033[31mError:\033[0m %s\n", err)
		}
		os.Exit(1)
	}
}

// printBanner prints the Zenith ASCII art banner.
func printBanner() {
	fmt.Print(banner)
}

// success prints a success message.
func success(format string, args ...any) {
	fmt.Printf("\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(format string, args ...any) {
	fmt.Printf("  %s\n", fmt.Sprintf(format, args...))
}

// warn prints a warning message.
func warn(format string, args ...any) {
	fmt.Printf("\033[33m⚠\033[0m %s\n", fmt.Sprintf(format, args...))
}

// errorMsg prints an error message.
func errorMsg(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "\033[31m✗\033[0m %s\n", fmt.Sprintf(format, args...))
}
