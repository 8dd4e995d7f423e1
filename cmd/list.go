package cmd

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/onecx/workspace-menu/internal/domain"
)

// ListResult holds the outcome of a list operation.
type ListResult struct {
	Ref   domain.MenuRef
	Nodes []*domain.TreeNode
}

// ListRunner defines the interface for running the list operation.
type ListRunner interface {
	List(ctx context.Context) (*ListResult, error)
}

// treeOutput is the top-level JSON structure for list output.
type treeOutput struct {
	Workspace string             `json:"workspace"`
	MenuKey   string             `json:"menuKey"`
	Nodes     []*domain.TreeNode `json:"nodes"`
}

// NewListCmd creates the list command with the given runner.
func NewListCmd(runner ListRunner) *cobra.Command {
	var jsonOutput bool
	var depth int
	var expanded []string

	cmd := &cobra.Command{
		Use:          "list",
		Short:        "Display the menu hierarchy as a tree",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if runner == nil {
				return ErrNotInProject
			}
			result, err := runner.List(cmd.Context())
			if err != nil {
				return err
			}

			nodes := pruneDepth(result.Nodes, depth)
			if nodes == nil {
				nodes = []*domain.TreeNode{}
			}

			if jsonOutput || GetJSON() {
				state := domain.NewExpansionState(expanded...)
				state.Apply(nodes)
				writeJSON(cmd.OutOrStdout(), &treeOutput{
					Workspace: result.Ref.Workspace,
					MenuKey:   result.Ref.MenuKey,
					Nodes:     nodes,
				})
			} else {
				renderTreeText(cmd.OutOrStdout(), result.Ref.String(), treeNodeLines(nodes))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output results as JSON")
	cmd.Flags().IntVar(&depth, "depth", 0, "Maximum display depth (0 = unlimited)")
	cmd.Flags().StringSliceVar(&expanded, "expanded", nil, "Item IDs to mark expanded in JSON output")

	return cmd
}

// pruneDepth drops nodes deeper than maxDepth. Zero keeps everything.
func pruneDepth(nodes []*domain.TreeNode, maxDepth int) []*domain.TreeNode {
	if maxDepth <= 0 {
		return nodes
	}
	var walk func([]*domain.TreeNode, int)
	walk = func(level []*domain.TreeNode, d int) {
		for _, n := range level {
			if d >= maxDepth {
				n.Children = nil
				continue
			}
			walk(n.Children, d+1)
		}
	}
	walk(nodes, 1)
	return nodes
}

func treeNodeLines(nodes []*domain.TreeNode) []textNode {
	lines := make([]textNode, 0, len(nodes))
	for _, n := range nodes {
		lines = append(lines, textNode{Text: describeRecord(n.Data), Children: treeNodeLines(n.Children)})
	}
	return lines
}

// describeRecord formats a record as "Name (KEY) url [flags]".
func describeRecord(r domain.MenuItemRecord) string {
	var b strings.Builder
	b.WriteString(r.Name)
	b.WriteString(" (")
	b.WriteString(r.Key)
	b.WriteString(")")
	if r.URL != "" {
		b.WriteString(" ")
		b.WriteString(r.URL)
	}
	var flags []string
	if r.External {
		flags = append(flags, "external")
	}
	if r.Disabled {
		flags = append(flags, "disabled")
	}
	if len(flags) > 0 {
		b.WriteString(" [")
		b.WriteString(strings.Join(flags, ", "))
		b.WriteString("]")
	}
	return b.String()
}
