package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/onecx/workspace-menu/internal/domain"
)

// DeleteResult holds the outcome of a delete operation.
type DeleteResult struct {
	Deleted []string                `json:"deleted"`
	Updates []domain.PositionUpdate `json:"updates"`
	Planned bool                    `json:"planned"`
}

// DeleteRunner defines the interface for running the delete operation.
type DeleteRunner interface {
	Delete(ctx context.Context, selector string, mode domain.DeleteMode, apply bool) (*DeleteResult, error)
}

// NewDeleteCmd creates the delete command with the given runner.
func NewDeleteCmd(runner DeleteRunner) *cobra.Command {
	var jsonOutput bool
	var recursive bool
	var promote bool

	cmd := &cobra.Command{
		Use:          "delete <selector>",
		Short:        "Delete an item from the menu",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if runner == nil {
				return ErrNotInProject
			}
			if recursive && promote {
				return fmt.Errorf("--recursive and --promote are mutually exclusive")
			}

			selector := args[0]
			if _, err := domain.ParseSelector(selector); err != nil {
				return fmt.Errorf("invalid selector %q: %w", selector, err)
			}

			mode := domain.DeleteModeDefault
			if recursive {
				mode = domain.DeleteModeRecursive
			} else if promote {
				mode = domain.DeleteModePromote
			}

			isDryRun := GetDryRun()
			result, err := runner.Delete(cmd.Context(), selector, mode, !isDryRun)
			if err != nil {
				return err
			}

			if isDryRun {
				result.Planned = true
			}

			if jsonOutput || GetJSON() {
				writeJSON(cmd.OutOrStdout(), result)
				return nil
			}
			verb := "Deleted"
			if isDryRun {
				verb = "Would delete"
			}
			for _, id := range result.Deleted {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", verb, id)
			}
			for _, u := range result.Updates {
				parent := u.ParentItemID
				if parent == "" {
					parent = "root"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "  %s -> %s at %d\n", u.ID, parent, u.Position)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output results as JSON")
	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "Delete item and entire subtree")
	cmd.Flags().BoolVarP(&promote, "promote", "p", false, "Delete item and promote its children")

	return cmd
}
