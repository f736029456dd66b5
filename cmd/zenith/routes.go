package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/zenith-dev/zenith/internal/config"
	"github.com/zenith-dev/zenith/internal/errors"
	"github.com/zenith-dev/zenith/pkg/manifest"
)

func routesCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "routes",
		Short: "Print the route table",
		Long: `Scan the routes directory and print the resolved route table.

The printed order is the matching order: with matchMode "rank" routes
are sorted by specificity score, with "order" they follow the page
scan order. First match wins either way.

Examples:
  zenith routes
  zenith routes --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRoutes(asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the manifest as JSON")

	return cmd
}

func runRoutes(asJSON bool) error {
	cfg, err := config.LoadFromWorkingDir()
	if err != nil {
		return err
	}

	m, err := projectManifest(cfg)
	if err != nil {
		return err
	}

	if asJSON {
		return m.Encode(os.Stdout)
	}

	printRouteTable(m, cfg.Ranked())
	for _, v := range manifest.Unmatchable(m) {
		fmt.Println()
		warn("%s", strings.TrimRight(manifest.FormatValidationError(v), "\n"))
	}
	return nil
}

// projectDefs scans the project's routes directory and validates the
// discovered defs.
func projectDefs(cfg *config.Config) ([]manifest.Def, error) {
	defs, err := manifest.NewScanner(cfg.RoutesPath()).Scan()
	if err != nil {
		return nil, errors.New("Z023").
			WithDetail("Could not scan " + cfg.RoutesDir).
			Wrap(err)
	}
	if len(defs) == 0 {
		return nil, errors.New("Z001").
			WithDetail("No " + manifest.PageExt + " pages found under " + cfg.RoutesDir).
			WithSuggestion("Create " + cfg.RoutesDir + "/index" + manifest.PageExt + " to define the root route")
	}

	if verr := manifest.ValidateDefs(defs); verr != nil {
		zerr := errors.New("Z002").Wrap(verr)
		if multi, ok := verr.(*manifest.MultiValidationError); ok {
			var b strings.Builder
			for _, v := range multi.Errors {
				b.WriteString(manifest.FormatValidationError(v))
			}
			zerr = zerr.WithDetail(strings.TrimRight(b.String(), "\n"))
		}
		return nil, zerr
	}

	return defs, nil
}

// projectManifest compiles the project's routes according to the
// configured match mode.
func projectManifest(cfg *config.Config) (*manifest.Manifest, error) {
	defs, err := projectDefs(cfg)
	if err != nil {
		return nil, err
	}

	var opts []manifest.BuildOption
	if cfg.Ranked() {
		opts = append(opts, manifest.WithRanking())
	}
	m, err := manifest.Build(defs, opts...)
	if err != nil {
		return nil, errors.New("Z043").Wrap(err)
	}
	return m, nil
}

// printRouteTable prints one line per route in match order.
func printRouteTable(m *manifest.Manifest, ranked bool) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	if ranked {
		fmt.Fprintln(w, "  ROUTE\tSCORE\tPARAMS\tFILE")
	} else {
		fmt.Fprintln(w, "  ROUTE\tPARAMS\tFILE")
	}

	for _, r := range m.Routes {
		params := strings.Join(r.ParamNames, ", ")
		if params == "" {
			params = "-"
		}
		file := r.FilePath
		if file == "" {
			file = "-"
		}
		if ranked {
			fmt.Fprintf(w, "  %s\t%d\t%s\t%s\n", r.Path, r.Score, params, file)
		} else {
			fmt.Fprintf(w, "  %s\t%s\t%s\n", r.Path, params, file)
		}
	}

	w.Flush()
}
