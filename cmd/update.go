package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/onecx/workspace-menu/internal/domain"
	"github.com/onecx/workspace-menu/internal/menu"
)

// UpdateResult holds an item before and after an update.
type UpdateResult struct {
	Before  domain.MenuItemRecord `json:"before"`
	After   domain.MenuItemRecord `json:"after"`
	Planned bool                  `json:"planned"`
}

// UpdateRunner defines the interface for running the update operation.
type UpdateRunner interface {
	Update(ctx context.Context, selector string, req menu.UpdateRequest, apply bool) (*UpdateResult, error)
}

// NewUpdateCmd creates the update command with the given runner. Only flags
// given on the command line change the item.
func NewUpdateCmd(runner UpdateRunner) *cobra.Command {
	var jsonOutput bool
	var name, url, badge string
	var external, disabled bool
	var i18n map[string]string

	cmd := &cobra.Command{
		Use:          "update <selector>",
		Short:        "Change the attributes of a menu item",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if runner == nil {
				return ErrNotInProject
			}
			if _, err := domain.ParseSelector(args[0]); err != nil {
				return fmt.Errorf("invalid selector %q: %w", args[0], err)
			}

			var req menu.UpdateRequest
			f := cmd.Flags()
			if f.Changed("name") {
				req.Name = &name
			}
			if f.Changed("url") {
				req.URL = &url
			}
			if f.Changed("badge") {
				req.Badge = &badge
			}
			if f.Changed("external") {
				req.External = &external
			}
			if f.Changed("disabled") {
				req.Disabled = &disabled
			}
			if f.Changed("i18n") {
				req.I18n = i18n
			}
			if req.Name == nil && req.URL == nil && req.Badge == nil &&
				req.External == nil && req.Disabled == nil && len(req.I18n) == 0 {
				return errors.New("nothing to update: give at least one attribute flag")
			}

			isDryRun := GetDryRun()
			result, err := runner.Update(cmd.Context(), args[0], req, !isDryRun)
			if err != nil {
				return err
			}

			if isDryRun {
				result.Planned = true
			}

			if jsonOutput || GetJSON() {
				writeJSON(cmd.OutOrStdout(), result)
			} else if isDryRun {
				fmt.Fprintf(cmd.OutOrStdout(), "Would update %s\n", describeRecord(result.After))
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Updated %s\n", describeRecord(result.After))
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.BoolVar(&jsonOutput, "json", false, "Output results as JSON")
	f.StringVar(&name, "name", "", "New display name")
	f.StringVar(&url, "url", "", "New route or external URL")
	f.StringVar(&badge, "badge", "", "New icon name (empty removes the icon)")
	f.BoolVar(&external, "external", false, "Treat the URL as an external link")
	f.BoolVar(&disabled, "disabled", false, "Hide the item from resolved menus")
	f.StringToStringVar(&i18n, "i18n", nil, "Translations to merge as lang=label pairs; an empty label removes one")

	return cmd
}
