package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/onecx/workspace-menu/internal/domain"
)

// ErrNoMatch is returned when no menu entry matches a path.
var ErrNoMatch = errors.New("no menu entry matches")

// MatchRunner finds the menu entry best matching a route.
type MatchRunner interface {
	Match(ctx context.Context, path string) (*domain.Match, error)
}

// NewMatchCmd creates the match command with the given runner.
func NewMatchCmd(runner MatchRunner) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:          "match <path>",
		Short:        "Find the menu entry that best matches a route",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if runner == nil {
				return ErrNotInProject
			}
			m, err := runner.Match(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if jsonOutput || GetJSON() {
				writeJSON(cmd.OutOrStdout(), m)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", describeEntry(m.Entry), m.Entry.ID)
			fmt.Fprintf(cmd.OutOrStdout(), "breadcrumb: %s\n", breadcrumb(m))
			fmt.Fprintf(cmd.OutOrStdout(), "matched segments: %d\n", m.MatchedSegments)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output results as JSON")

	return cmd
}

// breadcrumb joins the labels from the outermost ancestor to the entry.
func breadcrumb(m *domain.Match) string {
	labels := make([]string, 0, len(m.Ancestors)+1)
	for i := len(m.Ancestors) - 1; i >= 0; i-- {
		labels = append(labels, m.Ancestors[i].Label)
	}
	labels = append(labels, m.Entry.Label)
	return strings.Join(labels, " > ")
}
