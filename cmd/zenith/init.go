package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/zenith-dev/zenith/internal/config"
	"github.com/zenith-dev/zenith/internal/errors"
)

func initCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init [name]",
		Short: "Create a new zenith project",
		Long: `Create a new zenith project.

With a name, a new directory is created; without one, the current
directory is initialized. The scaffold contains zenith.json, a routes
directory with example pages, and a public directory for static
assets.

Examples:
  zenith init my-app
  zenith init`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := ""
			if len(args) == 1 {
				name = args[0]
			}
			return runInit(name)
		},
	}

	return cmd
}

func runInit(name string) error {
	printBanner()
	fmt.Println("  Creating a new Zenith project...")
	fmt.Println()

	var projectDir string
	newDir := name != ""

	if newDir {
		if !isValidProjectName(name) {
			return errors.New("Z042").
				WithDetail("Project name " + name + " is not a valid directory name").
				WithSuggestion("Use lowercase letters, numbers, and hyphens")
		}

		abs, err := filepath.Abs(name)
		if err != nil {
			return err
		}
		if _, err := os.Stat(abs); !os.IsNotExist(err) {
			return errors.New("Z040").
				WithDetail("Directory '" + name + "' already exists").
				WithSuggestion("Choose a different name or remove the existing directory")
		}

		projectDir = abs
		if err := os.MkdirAll(projectDir, 0755); err != nil {
			return err
		}
	} else {
		wd, err := os.Getwd()
		if err != nil {
			return err
		}
		if config.Exists(wd) {
			return errors.New("Z040").
				WithDetail("This directory already contains a " + config.ConfigFileName).
				WithSuggestion("Remove the existing file to re-initialize")
		}
		projectDir = wd
		name = filepath.Base(wd)
	}

	cfg := config.New()
	cfg.Name = name

	info("Writing %s...", config.ConfigFileName)
	if err := cfg.SaveTo(filepath.Join(projectDir, config.ConfigFileName)); err != nil {
		return err
	}

	info("Creating %s...", cfg.RoutesDir)
	pages := map[string]string{
		"index.zen":      indexPage(name),
		"about.zen":      pageTemplate("/about"),
		"users/[id].zen": userPage(),
	}
	routesDir := filepath.Join(projectDir, filepath.FromSlash(cfg.RoutesDir))
	for file, content := range pages {
		path := filepath.Join(routesDir, filepath.FromSlash(file))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return err
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			return err
		}
	}

	info("Creating %s...", cfg.Static.Dir)
	publicDir := filepath.Join(projectDir, filepath.FromSlash(cfg.Static.Dir))
	if err := os.MkdirAll(publicDir, 0755); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(publicDir, "app.css"), []byte(starterCSS), 0644); err != nil {
		return err
	}

	fmt.Println()
	success("Created %s/", name)
	fmt.Println()
	fmt.Println("  To get started:")
	fmt.Println()
	if newDir {
		fmt.Printf("    cd %s\n", name)
	}
	fmt.Println("    zenith dev")
	fmt.Println()
	fmt.Printf("  Your app will be running at http://localhost:%d\n", cfg.Dev.Port)
	fmt.Println()

	return nil
}

func isValidProjectName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	for i, r := range name {
		if r == ' ' || r == '/' || r == '\\' {
			return false
		}
		if i == 0 && r >= '0' && r <= '9' {
			return false
		}
	}
	return true
}

func indexPage(name string) string {
	return fmt.Sprintf(`<!-- / -->
<main>
  <h1>Welcome to %s</h1>
  <p>Edit app/routes/index.zen to change this page.</p>
  <p><a href="/about">About</a> · <a href="/users/42">User 42</a></p>
</main>
`, name)
}

func userPage() string {
	return `<!-- /users/:id -->
<main>
  <h1>User :id</h1>
  <p>The id parameter comes from the [id] file name.</p>
</main>
`
}

const starterCSS = `body {
  margin: 0;
  font-family: system-ui, sans-serif;
  color: #1a1a2e;
}

main {
  max-width: 640px;
  margin: 4rem auto;
  padding: 0 1rem;
}
`
