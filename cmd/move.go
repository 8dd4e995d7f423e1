package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/onecx/workspace-menu/internal/domain"
)

// MoveResult holds the outcome of a move operation.
type MoveResult struct {
	Item        domain.MenuItemRecord   `json:"item"`
	OldParentID string                  `json:"old_parent_id"`
	NewParentID string                  `json:"new_parent_id"`
	Updates     []domain.PositionUpdate `json:"updates"`
	Planned     bool                    `json:"planned"`
}

// MoveRunner defines the interface for running the move operation.
type MoveRunner interface {
	Move(ctx context.Context, selector, to string, index int, apply bool) (*MoveResult, error)
}

// NewMoveCmd creates the move command with the given runner.
func NewMoveCmd(runner MoveRunner) *cobra.Command {
	var to string
	var index int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:          "move <selector>",
		Short:        "Move a menu item under a new parent",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if runner == nil {
				return ErrNotInProject
			}

			selector := args[0]
			if _, err := domain.ParseSelector(selector); err != nil {
				return fmt.Errorf("invalid selector %q: %w", selector, err)
			}

			if to == "" {
				return fmt.Errorf("required flag \"to\" not set")
			}
			if !domain.IsRootSelector(to) {
				if _, err := domain.ParseSelector(to); err != nil {
					return fmt.Errorf("invalid target selector %q: %w", to, err)
				}
			}

			isDryRun := GetDryRun()
			result, err := runner.Move(cmd.Context(), selector, to, index, !isDryRun)
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

			parent := result.NewParentID
			if parent == "" {
				parent = "root"
			}
			verb := "Moved"
			if isDryRun {
				verb = "Would move"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s under %s at position %d\n", verb, result.Item.Key, parent, result.Item.Position)
			for _, u := range result.Updates {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s -> %d\n", u.ID, u.Position)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&to, "to", "", "New parent selector, or \"root\" for the top level")
	cmd.Flags().IntVar(&index, "index", -1, "Position among the new siblings (default: append)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output results as JSON")

	return cmd
}
