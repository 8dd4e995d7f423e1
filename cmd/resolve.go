package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/onecx/workspace-menu/internal/domain"
)

// ResolvedMenu is one resolved menu slot.
type ResolvedMenu struct {
	MenuKey  string             `json:"menuKey"`
	Items    []domain.MenuEntry `json:"items"`
	Degraded bool               `json:"degraded,omitempty"`
}

// ResolveResult holds the resolved menus of one workspace.
type ResolveResult struct {
	Workspace string         `json:"workspace"`
	Lang      string         `json:"lang"`
	Menus     []ResolvedMenu `json:"menus"`
}

// ResolveRunner resolves menu slots into display entries.
type ResolveRunner interface {
	Resolve(ctx context.Context, menuKeys []string) (*ResolveResult, error)
}

// NewResolveCmd creates the resolve command with the given runner.
func NewResolveCmd(runner ResolveRunner) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:          "resolve [menu-key...]",
		Short:        "Resolve menus into localized display entries",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if runner == nil {
				return ErrNotInProject
			}
			result, err := runner.Resolve(cmd.Context(), args)
			if err != nil {
				return err
			}

			if jsonOutput || GetJSON() {
				writeJSON(cmd.OutOrStdout(), result)
				return nil
			}
			for i, m := range result.Menus {
				if i > 0 {
					fmt.Fprintln(cmd.OutOrStdout())
				}
				header := fmt.Sprintf("%s/%s (%s)", result.Workspace, m.MenuKey, result.Lang)
				if m.Degraded {
					header += " [unavailable]"
				}
				renderTreeText(cmd.OutOrStdout(), header, entryLines(m.Items))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output results as JSON")

	return cmd
}

func entryLines(entries []domain.MenuEntry) []textNode {
	lines := make([]textNode, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, textNode{Text: describeEntry(e), Children: entryLines(e.Items)})
	}
	return lines
}

func describeEntry(e domain.MenuEntry) string {
	switch {
	case e.URL != "":
		return fmt.Sprintf("%s -> %s", e.Label, e.URL)
	case e.RouterLink != "":
		return fmt.Sprintf("%s -> %s", e.Label, e.RouterLink)
	default:
		return e.Label
	}
}
