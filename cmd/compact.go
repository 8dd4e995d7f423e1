package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/onecx/workspace-menu/internal/domain"
)

// CompactResult holds the outcome of a compact operation.
type CompactResult struct {
	Updates []domain.PositionUpdate `json:"updates"`
	Applied bool                    `json:"applied"`
}

// CompactRunner executes the compact operation.
type CompactRunner interface {
	Compact(ctx context.Context, apply bool) (*CompactResult, error)
}

// NewCompactCmd creates the compact command with the given runner.
func NewCompactCmd(runner CompactRunner) *cobra.Command {
	var applyFlag bool
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:          "compact",
		Short:        "Renumber sibling positions to 0..n-1",
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if runner == nil {
				return ErrNotInProject
			}

			result, err := runner.Compact(cmd.Context(), applyFlag && !GetDryRun())
			if err != nil {
				return err
			}

			if jsonOutput || GetJSON() {
				writeJSON(cmd.OutOrStdout(), result)
				return nil
			}
			writeCompactHuman(cmd, result)
			return nil
		},
	}

	cmd.Flags().BoolVar(&applyFlag, "apply", false, "Execute the renumbering (default is report only)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output results as JSON")

	return cmd
}

func writeCompactHuman(cmd *cobra.Command, result *CompactResult) {
	w := cmd.OutOrStdout()
	for _, u := range result.Updates {
		fmt.Fprintf(w, "  %s -> %d\n", u.ID, u.Position)
	}
	switch {
	case len(result.Updates) == 0:
		fmt.Fprintln(w, "Positions already compact")
	case result.Applied:
		fmt.Fprintf(w, "%d item(s) renumbered\n", len(result.Updates))
	default:
		fmt.Fprintf(w, "%d item(s) would be renumbered (use --apply)\n", len(result.Updates))
	}
}
