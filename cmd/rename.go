package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/onecx/workspace-menu/internal/domain"
)

// RenameResult holds the outcome of a rename operation.
type RenameResult struct {
	ID      string `json:"id"`
	Key     string `json:"key"`
	OldName string `json:"old_name"`
	NewName string `json:"new_name"`
	Planned bool   `json:"planned"`
}

// RenameRunner defines the interface for running the rename operation.
type RenameRunner interface {
	Rename(ctx context.Context, selector string, newName string, apply bool) (*RenameResult, error)
}

// NewRenameCmd creates the rename command with the given runner. The item
// key is kept so existing references stay valid.
func NewRenameCmd(runner RenameRunner) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:          "rename <selector> <new-name>",
		Short:        "Rename a menu item",
		Args:         cobra.ExactArgs(2),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if runner == nil {
				return ErrNotInProject
			}

			selector := args[0]
			if _, err := domain.ParseSelector(selector); err != nil {
				return fmt.Errorf("invalid selector %q: %w", selector, err)
			}
			newName := strings.TrimSpace(args[1])
			if newName == "" {
				return fmt.Errorf("new name must not be empty")
			}

			isDryRun := GetDryRun()
			result, err := runner.Rename(cmd.Context(), selector, newName, !isDryRun)
			if err != nil {
				return err
			}

			if isDryRun {
				result.Planned = true
			}

			if jsonOutput || GetJSON() {
				writeJSON(cmd.OutOrStdout(), result)
			} else if isDryRun {
				fmt.Fprintf(cmd.OutOrStdout(), "Would rename %s: %q -> %q\n", result.Key, result.OldName, result.NewName)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Renamed %s: %q -> %q\n", result.Key, result.OldName, result.NewName)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output results as JSON")

	return cmd
}
