package cmd

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
)

// ItemInfo holds item identification details.
type ItemInfo struct {
	ID   string `json:"id"`
	Key  string `json:"key"`
	Name string `json:"name"`
}

// I18nListResult holds the translations of one item.
type I18nListResult struct {
	Item         ItemInfo          `json:"item"`
	Translations map[string]string `json:"translations"`
}

// I18nModifyResult holds the result of setting or removing a translation.
type I18nModifyResult struct {
	Item         ItemInfo          `json:"item"`
	Lang         string            `json:"lang"`
	Label        string            `json:"label,omitempty"`
	Translations map[string]string `json:"translations"`
	Planned      bool              `json:"planned"`
}

// I18nService defines the interface for managing item translations.
type I18nService interface {
	ListTranslations(ctx context.Context, selector string) (*I18nListResult, error)
	SetTranslation(ctx context.Context, selector, lang, label string, apply bool) (*I18nModifyResult, error)
	RemoveTranslation(ctx context.Context, selector, lang string, apply bool) (*I18nModifyResult, error)
}

// NewI18nCmd creates the i18n command with the given service.
func NewI18nCmd(svc I18nService) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "i18n",
		Short:        "Manage translations of a menu item",
		SilenceUsage: true,
	}

	cmd.AddCommand(newI18nListCmd(svc))
	cmd.AddCommand(newI18nSetCmd(svc))
	cmd.AddCommand(newI18nRemoveCmd(svc))

	return cmd
}

// canonicalLang validates a language tag and returns its canonical form.
func canonicalLang(s string) (string, error) {
	tag, err := language.Parse(s)
	if err != nil {
		return "", fmt.Errorf("invalid language %q: %w", s, err)
	}
	return tag.String(), nil
}

func newI18nListCmd(svc I18nService) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:          "list <selector>",
		Short:        "List translations of an item",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if svc == nil {
				return ErrNotInProject
			}
			result, err := svc.ListTranslations(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if jsonOutput || GetJSON() {
				writeJSON(cmd.OutOrStdout(), result)
			} else {
				for _, l := range slices.Sorted(maps.Keys(result.Translations)) {
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", l, result.Translations[l])
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output results as JSON")

	return cmd
}

func newI18nSetCmd(svc I18nService) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:          "set <selector> <lang> <label>",
		Short:        "Set the translation of an item for a language",
		Args:         cobra.ExactArgs(3),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if svc == nil {
				return ErrNotInProject
			}
			code, err := canonicalLang(args[1])
			if err != nil {
				return err
			}
			if args[2] == "" {
				return fmt.Errorf("label must not be empty; use i18n remove")
			}

			isDryRun := GetDryRun()
			result, err := svc.SetTranslation(cmd.Context(), args[0], code, args[2], !isDryRun)
			if err != nil {
				return err
			}

			if isDryRun {
				result.Planned = true
			}

			if jsonOutput || GetJSON() {
				writeJSON(cmd.OutOrStdout(), result)
			} else if isDryRun {
				fmt.Fprintf(cmd.OutOrStdout(), "Would set %s %s = %q\n", result.Item.Key, code, args[2])
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Set %s %s = %q\n", result.Item.Key, code, args[2])
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output results as JSON")

	return cmd
}

func newI18nRemoveCmd(svc I18nService) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:          "remove <selector> <lang>",
		Short:        "Remove the translation of an item for a language",
		Args:         cobra.ExactArgs(2),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if svc == nil {
				return ErrNotInProject
			}
			code, err := canonicalLang(args[1])
			if err != nil {
				return err
			}

			isDryRun := GetDryRun()
			result, err := svc.RemoveTranslation(cmd.Context(), args[0], code, !isDryRun)
			if err != nil {
				return err
			}

			if isDryRun {
				result.Planned = true
			}

			if jsonOutput || GetJSON() {
				writeJSON(cmd.OutOrStdout(), result)
			} else if isDryRun {
				fmt.Fprintf(cmd.OutOrStdout(), "Would remove %s %s\n", result.Item.Key, code)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %s %s\n", result.Item.Key, code)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output results as JSON")

	return cmd
}
