package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/onecx/workspace-menu/internal/domain"
)

// AddOptions holds the optional attributes of a new item.
type AddOptions struct {
	Parent   string
	URL      string
	External bool
	Badge    string
	I18n     map[string]string
	Disabled bool
}

// AddResult holds the outcome of an add operation.
type AddResult struct {
	Item    domain.MenuItemRecord `json:"item"`
	Planned bool                  `json:"planned"`
}

// AddRunner defines the interface for running the add operation.
type AddRunner interface {
	Add(ctx context.Context, name string, opts AddOptions, apply bool) (*AddResult, error)
}

// NewAddCmd creates the add command with the given runner.
func NewAddCmd(runner AddRunner) *cobra.Command {
	var jsonOutput bool
	var opts AddOptions

	cmd := &cobra.Command{
		Use:          "add <name>",
		Short:        "Add a new item to the menu",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if runner == nil {
				return ErrNotInProject
			}

			isDryRun := GetDryRun()
			result, err := runner.Add(cmd.Context(), args[0], opts, !isDryRun)
			if err != nil {
				return err
			}

			if isDryRun {
				result.Planned = true
			}

			if jsonOutput || GetJSON() {
				writeJSON(cmd.OutOrStdout(), result)
			} else if isDryRun {
				fmt.Fprintf(cmd.OutOrStdout(), "Would add %s (%s)\n", result.Item.Key, result.Item.ID)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Added %s (%s)\n", result.Item.Key, result.Item.ID)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.BoolVar(&jsonOutput, "json", false, "Output results as JSON")
	f.StringVar(&opts.Parent, "parent", "", "Parent item selector (default: top level)")
	f.StringVar(&opts.URL, "url", "", "Route or external URL")
	f.BoolVar(&opts.External, "external", false, "Treat the URL as an external link")
	f.StringVar(&opts.Badge, "badge", "", "Icon name")
	f.StringToStringVar(&opts.I18n, "i18n", nil, "Translations as lang=label pairs")
	f.BoolVar(&opts.Disabled, "disabled", false, "Hide the item from resolved menus")

	return cmd
}
