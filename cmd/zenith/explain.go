package main

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/zenith-dev/zenith/internal/errors"
)

func explainCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "explain [code]",
		Short: "Explain an error code",
		Long: `Explain a zenith error code.

Without a code, all registered codes are listed.

Examples:
  zenith explain Z002
  zenith explain`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return runExplainList()
			}
			return runExplain(args[0])
		},
	}

	return cmd
}

func runExplain(code string) error {
	template, ok := errors.GetTemplate(code)
	if !ok {
		return errors.Newf(errors.CategoryCLI, "unknown error code %q", code).
			WithSuggestion("Run 'zenith explain' to list all codes")
	}

	fmt.Println()
	fmt.Printf("  %s: %s\n", code, template.Message)
	fmt.Println()
	fmt.Printf("  %s\n", template.Detail)
	fmt.Println()
	fmt.Printf("  Category: %s\n", template.Category)
	fmt.Printf("  Docs:     %s\n", template.DocURL)
	fmt.Println()

	return nil
}

func runExplainList() error {
	codes := errors.GetAllCodes()
	sort.Strings(codes)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "  CODE\tCATEGORY\tMESSAGE")
	for _, code := range codes {
		t, _ := errors.GetTemplate(code)
		fmt.Fprintf(w, "  %s\t%s\t%s\n", code, t.Category, t.Message)
	}
	return w.Flush()
}
