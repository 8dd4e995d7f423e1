package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/onecx/workspace-menu/internal/config"
	"github.com/onecx/workspace-menu/internal/store"
)

// NewInitCmd creates the init command. The getwd function returns the working
// directory where the project will be initialized. Running it again in an
// existing project only creates the selected workspace.
func NewInitCmd(getwd func() (string, error)) *cobra.Command {
	var driver string

	cmd := &cobra.Command{
		Use:          "init",
		Short:        "Initialize a wsm project and workspace in the current directory",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cwd, err := getwd()
			if err != nil {
				return fmt.Errorf("getting working directory: %w", err)
			}
			out := cmd.OutOrStdout()

			cfg, created, err := ensureConfig(cwd, driver)
			if err != nil {
				return err
			}
			if created {
				fmt.Fprintln(out, "Initialized wsm project")
			} else {
				fmt.Fprintln(out, "wsm project already initialized")
			}

			ws := cfg.Workspace
			if w := GetWorkspace(); w != "" {
				ws = w
			}
			if err := store.ValidateWorkspace(ws); err != nil {
				return err
			}

			st, err := store.Open(store.Options{
				Driver:  cfg.Store.Driver,
				Root:    cwd,
				DSN:     cfg.Store.DSN,
				BaseURL: cfg.API.BaseURL,
				Timeout: cfg.API.Timeout,
			})
			if err != nil {
				return err
			}
			defer st.Close()

			initializer, ok := st.(store.Initializer)
			if !ok {
				fmt.Fprintf(out, "Workspace %s is managed by the %s backend\n", ws, cfg.Store.Driver)
				return nil
			}
			switch err := initializer.InitWorkspace(cmd.Context(), ws); {
			case errors.Is(err, store.ErrWorkspaceExists):
				fmt.Fprintf(out, "Workspace %s already initialized\n", ws)
			case err != nil:
				return err
			default:
				fmt.Fprintf(out, "Created workspace %s\n", ws)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&driver, "driver", "", "Store driver for a new project: yaml or sqlite")

	return cmd
}

// ensureConfig loads the project config at root, writing the defaults first
// when the project does not exist yet.
func ensureConfig(root, driver string) (config.Config, bool, error) {
	_, statErr := os.Stat(config.Path(root))
	if statErr == nil {
		cfg, err := config.Load(root)
		return cfg, false, err
	}
	if !errors.Is(statErr, fs.ErrNotExist) {
		return config.Config{}, false, statErr
	}

	cfg := config.Default()
	if w := GetWorkspace(); w != "" {
		cfg.Workspace = w
	}
	if m := GetMenu(); m != "" {
		cfg.Menu = m
	}
	if driver != "" {
		cfg.Store.Driver = driver
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, false, err
	}
	if err := os.MkdirAll(filepath.Join(root, store.Dir), 0o755); err != nil {
		return config.Config{}, false, fmt.Errorf("creating %s directory: %w", store.Dir, err)
	}
	if err := config.Save(root, cfg); err != nil {
		return config.Config{}, false, err
	}
	return cfg, true, nil
}
