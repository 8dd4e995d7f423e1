// Package cmd contains the CLI commands for the wsm application.
package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// Global flag state shared by all subcommands.
var (
	verbose    bool
	jsonOutput bool
	dryRun     bool
	workspace  string
	menuKey    string
	lang       string
)

// logLevel is raised to debug by --verbose after flags are parsed.
var logLevel = new(slog.LevelVar)

// GetVerbose returns the current verbose flag state.
func GetVerbose() bool {
	return verbose
}

// GetJSON reports whether --json was given on the root command.
func GetJSON() bool {
	return jsonOutput
}

// GetDryRun reports whether --dry-run was given.
func GetDryRun() bool {
	return dryRun
}

// GetWorkspace returns the --workspace override, or "".
func GetWorkspace() string {
	return workspace
}

// GetMenu returns the --menu override, or "".
func GetMenu() string {
	return menuKey
}

// GetLang returns the --lang override, or "".
func GetLang() string {
	return lang
}

// NewRootCmd creates a new root command instance with the persistent flags.
func NewRootCmd() *cobra.Command {
	verbose, jsonOutput, dryRun = false, false, false
	workspace, menuKey, lang = "", "", ""

	cmd := &cobra.Command{
		Use:           "wsm",
		Short:         "Manage and resolve workspace navigation menus",
		Long:          "wsm edits workspace menu hierarchies, resolves them into localized display menus and serves them over HTTP.",
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				logLevel.Set(slog.LevelDebug)
			}
		},
	}

	pf := cmd.PersistentFlags()
	pf.BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging to stderr")
	pf.BoolVar(&jsonOutput, "json", false, "Output results as JSON")
	pf.BoolVar(&dryRun, "dry-run", false, "Show what would change without writing")
	pf.StringVarP(&workspace, "workspace", "w", "", "Workspace name (default from config)")
	pf.StringVarP(&menuKey, "menu", "m", "", "Menu key (default from config)")
	pf.StringVarP(&lang, "lang", "l", "", "Display language (default from config)")

	return cmd
}

// ExecuteContext wires the project found above the working directory and
// runs the command tree with the process arguments.
func ExecuteContext(ctx context.Context) int {
	return Main(ctx, os.Args[1:], os.Stdout, os.Stderr)
}

// Main wires the project and runs args, returning the process exit code.
func Main(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	app, err := Wire(os.Getwd, stderr)
	if err != nil {
		fmt.Fprint(stderr, FormatError(err))
		return ExitCodeFromError(err)
	}
	defer app.Close()

	return RunCLI(ctx, BuildCommandTree(app.Service(), app), args, stdout, stderr)
}
