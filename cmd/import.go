package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/onecx/workspace-menu/internal/domain"
	"github.com/onecx/workspace-menu/internal/store"
)

// ErrImportUnsupported is returned when the configured store cannot replace
// whole menus.
var ErrImportUnsupported = errors.New("import is not supported by this store driver")

// ImportResult holds the outcome of an import.
type ImportResult struct {
	Workspace string `json:"workspace"`
	MenuKey   string `json:"menuKey"`
	Items     int    `json:"items"`
	Planned   bool   `json:"planned"`
}

// ImportRunner replaces a menu with the content of a file.
type ImportRunner interface {
	Import(ctx context.Context, path string, apply bool) (*ImportResult, error)
}

// NewImportCmd creates the import command with the given runner.
func NewImportCmd(runner ImportRunner) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Replace a menu with items from a JSON or YAML file",
		Long: "import reads either a list of items or a menu structure response " +
			"({\"menu\": [{\"key\": ..., \"children\": [...]}]}) and replaces the selected menu with it.",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if runner == nil {
				return ErrNotInProject
			}

			isDryRun := GetDryRun()
			result, err := runner.Import(cmd.Context(), args[0], !isDryRun)
			if err != nil {
				return err
			}

			if isDryRun {
				result.Planned = true
			}

			if jsonOutput || GetJSON() {
				writeJSON(cmd.OutOrStdout(), result)
			} else if isDryRun {
				fmt.Fprintf(cmd.OutOrStdout(), "Would import %d item(s) into %s/%s\n", result.Items, result.Workspace, result.MenuKey)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Imported %d item(s) into %s/%s\n", result.Items, result.Workspace, result.MenuKey)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output results as JSON")

	return cmd
}

// --- importAdapter ---

type importAdapter struct {
	store store.Store
	scope scope
}

func (a *importAdapter) Import(ctx context.Context, path string, apply bool) (*ImportResult, error) {
	initializer, ok := a.store.(store.Initializer)
	if !ok {
		return nil, ErrImportUnsupported
	}

	ref := a.scope.Ref()
	items, err := readMenuFile(path, ref.MenuKey)
	if err != nil {
		return nil, &ContextError{Op: "import", Path: path, Err: err}
	}
	if err := domain.ValidateHierarchy(items); err != nil {
		return nil, &ContextError{Op: "import", Path: path, Err: err}
	}
	items = domain.EnsureNested(items)

	result := &ImportResult{Workspace: ref.Workspace, MenuKey: ref.MenuKey, Items: len(domain.FlattenRecords(items))}
	if !apply {
		return result, nil
	}
	if err := initializer.InitWorkspace(ctx, ref.Workspace); err != nil && !errors.Is(err, store.ErrWorkspaceExists) {
		return nil, err
	}
	if err := initializer.ReplaceMenu(ctx, ref, items); err != nil {
		return nil, err
	}
	return result, nil
}

// readMenuFile decodes a list of items or a menu structure. From a structure
// the group named menuKey is taken, falling back to the first group.
func readMenuFile(path, menuKey string) ([]domain.MenuItemRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	unmarshal := yaml.Unmarshal
	if strings.EqualFold(filepath.Ext(path), ".json") {
		unmarshal = json.Unmarshal
	}

	var items []domain.MenuItemRecord
	if err := unmarshal(data, &items); err == nil {
		return items, nil
	}

	var ms domain.MenuStructure
	if err := unmarshal(data, &ms); err != nil {
		return nil, fmt.Errorf("decoding menu: %w", err)
	}
	if len(ms.Menu) == 0 {
		return nil, errors.New("decoding menu: no items or menu groups found")
	}
	if group, ok := ms.Group(menuKey); ok {
		return group, nil
	}
	return ms.Items(), nil
}
