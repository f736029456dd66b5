package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/zenith-dev/zenith/internal/config"
	"github.com/zenith-dev/zenith/internal/errors"
	"github.com/zenith-dev/zenith/pkg/manifest"
)

func genCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gen <type>",
		Short: "Generate the manifest, Go glue, or page files",
		Long: `Generate build artifacts from the routes directory.

Types:
  manifest   Write the portable route manifest JSON
  routes     Write Go registration glue (zenith_routes.go)
  page       Scaffold a new page file

Examples:
  zenith gen manifest                  # dist/manifest.json
  zenith gen manifest -o out.json
  zenith gen routes                    # app/routes/zenith_routes.go
  zenith gen page users/[id]           # app/routes/users/[id].zen`,
	}

	cmd.AddCommand(
		genManifestCmd(),
		genRoutesCmd(),
		genPageCmd(),
	)

	return cmd
}

// =============================================================================
// zenith gen manifest
// =============================================================================

func genManifestCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "manifest",
		Short: "Write the route manifest JSON",
		Long: `Scan the routes directory and write the portable route manifest.

The manifest carries each route's pattern, parameters, specificity
score, and a portable regex, in matching order. Any client with a
regex engine can resolve against it; the dev server serves the same
document at /_zenith/manifest.json.

The output is deterministic apart from the generation timestamp.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenManifest(output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default from zenith.json build.manifest)")

	return cmd
}

func runGenManifest(output string) error {
	cfg, err := config.LoadFromWorkingDir()
	if err != nil {
		return err
	}

	if output == "" {
		output = cfg.ManifestPath()
	}

	info("Scanning %s...", cfg.RoutesDir)
	m, err := projectManifest(cfg)
	if err != nil {
		return err
	}
	for _, v := range manifest.Unmatchable(m) {
		warn("%s", strings.TrimRight(manifest.FormatValidationError(v), "\n"))
	}

	if err := os.MkdirAll(filepath.Dir(output), 0755); err != nil {
		return err
	}
	f, err := os.Create(output)
	if err != nil {
		return err
	}
	if err := m.Encode(f); err != nil {
		f.Close()
		return errors.New("Z043").Wrap(err)
	}
	if err := f.Close(); err != nil {
		return err
	}

	success("Generated %s (%d routes)", output, m.Len())
	return nil
}

// =============================================================================
// zenith gen routes
// =============================================================================

func genRoutesCmd() *cobra.Command {
	var (
		output  string
		pkgName string
	)

	cmd := &cobra.Command{
		Use:   "routes",
		Short: "Generate Go route registration glue",
		Long: `Scan the routes directory and generate zenith_routes.go.

The generated file declares the scanned routes in declaration order
as router.Def values. The host supplies each route's load function
through the loaderFor callback, keyed on the page file:

  defs := routes.Defs(func(file string) router.LoadFunc {
      return loadPage(file)
  })
  r, err := router.New(&router.Config{Routes: defs, ...})

The output is deterministic - running it multiple times produces
identical output unless the routes change.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenRoutes(output, pkgName)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: <routesDir>/zenith_routes.go)")
	cmd.Flags().StringVar(&pkgName, "package", "", "Package name (default from the output directory)")

	return cmd
}

func runGenRoutes(output, pkgName string) error {
	cfg, err := config.LoadFromWorkingDir()
	if err != nil {
		return err
	}

	if output == "" {
		output = filepath.Join(cfg.RoutesPath(), "zenith_routes.go")
	}
	if pkgName == "" {
		pkgName = packageNameFor(filepath.Dir(output))
	}

	info("Scanning %s...", cfg.RoutesDir)
	defs, err := projectDefs(cfg)
	if err != nil {
		return err
	}
	info("Found %d routes", len(defs))

	code := generateRoutesGo(pkgName, defs)
	if err := os.MkdirAll(filepath.Dir(output), 0755); err != nil {
		return err
	}
	if err := os.WriteFile(output, code, 0644); err != nil {
		return err
	}

	success("Generated %s", output)
	return nil
}

// generateRoutesGo renders the registration glue for the given defs.
func generateRoutesGo(pkgName string, defs []manifest.Def) []byte {
	var b strings.Builder

	b.WriteString("// Code generated by \"zenith gen routes\"; DO NOT EDIT.\n\n")
	fmt.Fprintf(&b, "package %s\n\n", pkgName)
	b.WriteString("import \"github.com/zenith-dev/zenith/pkg/router\"\n\n")
	b.WriteString("// Defs returns the scanned routes in declaration order. loaderFor\n")
	b.WriteString("// is called once per route with the page file path and supplies the\n")
	b.WriteString("// route's load function.\n")
	b.WriteString("func Defs(loaderFor func(file string) router.LoadFunc) []router.Def {\n")
	b.WriteString("\treturn []router.Def{\n")
	for _, d := range defs {
		fmt.Fprintf(&b, "\t\t{Path: %q, Load: loaderFor(%q)},\n", d.Path, d.FilePath)
	}
	b.WriteString("\t}\n")
	b.WriteString("}\n")

	return []byte(b.String())
}

// packageNameFor derives a Go package name from a directory path.
func packageNameFor(dir string) string {
	name := filepath.Base(dir)
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r + ('a' - 'A'))
		}
	}
	s := b.String()
	if s == "" || (s[0] >= '0' && s[0] <= '9') {
		return "routes"
	}
	return s
}

// =============================================================================
// zenith gen page
// =============================================================================

func genPageCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "page <path>",
		Short: "Scaffold a new page file",
		Long: `Create a new page file under the routes directory.

The path uses file-based routing conventions:
  index        → /
  about        → /about
  users/[id]   → /users/:id
  docs/[...rest] → /docs/*rest

Examples:
  zenith gen page about              # app/routes/about.zen
  zenith gen page users/[id]         # app/routes/users/[id].zen
  zenith gen page docs/[...rest]     # app/routes/docs/[...rest].zen`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenPage(args[0])
		},
	}

	return cmd
}

func runGenPage(pagePath string) error {
	cfg, err := config.LoadFromWorkingDir()
	if err != nil {
		return err
	}

	rel := strings.TrimPrefix(pagePath, "/")
	rel = strings.TrimSuffix(rel, manifest.PageExt)
	if rel == "" {
		return errors.New("Z004").
			WithDetail("Page path is empty")
	}

	outputPath := filepath.Join(cfg.RoutesPath(), filepath.FromSlash(rel)+manifest.PageExt)
	if _, err := os.Stat(outputPath); err == nil {
		return errors.New("Z044").
			WithDetail("File already exists: " + outputPath).
			WithSuggestion("Choose a different path or remove the existing file")
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return err
	}

	routePath := manifest.FilePathToRoutePath(filepath.ToSlash(rel) + manifest.PageExt)
	content := pageTemplate(routePath)
	if err := os.WriteFile(outputPath, []byte(content), 0644); err != nil {
		return err
	}

	success("Created %s", outputPath)
	info("Route: %s", routePath)
	info("")
	info("Run 'zenith gen manifest' to update the manifest")

	return nil
}

// pageTemplate renders the scaffold content for a new page.
func pageTemplate(routePath string) string {
	return fmt.Sprintf(`<!-- %s -->
<main>
  <h1>%s</h1>
  <p>This page is served at %s.</p>
</main>
`, routePath, routePath, routePath)
}
