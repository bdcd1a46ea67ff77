// cmd/listscrapexter/main.go
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/valpere/ListScrapexter/internal/errors"
)

// Version information (set by build flags)
var (
	version   = "dev"
	buildTime = "unknown"
	gitCommit = "unknown"
)

// errorService classifies errors for the CLI; -v switches on technical details.
var errorService = errors.NewService()

func newRootCmd() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:   "listscrapexter",
		Short: "ListScrapexter exports contact lists from a browser session to CSV, Excel, JSON or SQLite.",
		Long: `ListScrapexter reads the rows of a contact list page, following its "next"
control across pages, and exports them as a single file.

Pages come from a live Chrome session (launched, or attached through its
DevTools endpoint) or from saved HTML files.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			errorService = errorService.WithVerbose(verbose)
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output and debug logging")

	root.AddCommand(
		newRunCmd(&verbose),
		newValidateCmd(&verbose),
		newTemplateCmd(),
		newRegistriesCmd(),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			printVersion(cmd.OutOrStdout())
		},
	}
}

// printVersion displays version information
func printVersion(w io.Writer) {
	fmt.Fprintf(w, "ListScrapexter %s\n", version)
	fmt.Fprintf(w, "Build time: %s\n", buildTime)
	fmt.Fprintf(w, "Git commit: %s\n", gitCommit)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		if errorService.GetExitCode(err) == errors.ExitGeneral {
			fmt.Fprintf(os.Stderr, "Error: %v\n\n", err)
		}
		fmt.Fprint(os.Stderr, errorService.FormatErrorForCLI(err))
		stop()
		os.Exit(errorService.GetExitCode(err))
	}
}
