package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/onecx/workspace-menu/internal/cache"
	"github.com/onecx/workspace-menu/internal/server"
	"github.com/onecx/workspace-menu/internal/store"
)

// ServeOptions overrides the configured server settings.
type ServeOptions struct {
	Port      int
	RedisAddr string
}

// ServeRunner runs the HTTP server until ctx is canceled.
type ServeRunner interface {
	Serve(ctx context.Context, opts ServeOptions, out io.Writer) error
}

// NewServeCmd creates the serve command with the given runner.
func NewServeCmd(runner ServeRunner) *cobra.Command {
	var opts ServeOptions

	cmd := &cobra.Command{
		Use:          "serve",
		Short:        "Serve resolved menus over HTTP",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if runner == nil {
				return ErrNotInProject
			}
			return runner.Serve(cmd.Context(), opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().IntVar(&opts.Port, "port", 0, "Listen port (default from config)")
	cmd.Flags().StringVar(&opts.RedisAddr, "redis", "", "Redis address for the menu cache (default: in-memory)")

	return cmd
}

// --- serveAdapter ---

type serveAdapter struct {
	svc MenuService
	app *App
}

func (a *serveAdapter) Serve(ctx context.Context, opts ServeOptions, out io.Writer) error {
	cfg := a.app.Config
	port := cfg.Server.Port
	if opts.Port > 0 {
		port = opts.Port
	}
	redisAddr := cfg.Cache.RedisAddr
	if opts.RedisAddr != "" {
		redisAddr = opts.RedisAddr
	}

	c, err := cache.NewCache(ctx, redisAddr, cfg.Cache.Prefix, cfg.Cache.TTL)
	if err != nil {
		return fmt.Errorf("connecting menu cache: %w", err)
	}
	defer c.Close()
	// Entries from an earlier run may predate edits made while it was down.
	if err := c.Flush(ctx); err != nil {
		return fmt.Errorf("flushing menu cache: %w", err)
	}

	srv := server.New(a.svc,
		server.WithPort(port),
		server.WithCache(c),
		server.WithLanguages(cfg.Language, cfg.SupportedLanguages...),
		server.WithLogger(a.app.Logger),
		server.WithReadiness(storeReadiness(a.app)),
	)

	if cfg.Store.Driver == "" || cfg.Store.Driver == store.DriverYAML {
		watcher := store.NewWatcher(store.NewYAMLStore(a.app.Root).Dir(), func(ws string) {
			if err := srv.InvalidateWorkspace(context.WithoutCancel(ctx), ws); err != nil {
				a.app.Logger.Warn("menu cache invalidation failed", "workspace", ws, "error", err)
			}
		}, store.WithWatchLogger(a.app.Logger))
		if err := watcher.Start(); err != nil {
			return fmt.Errorf("watching workspace files: %w", err)
		}
		defer watcher.Stop()
	}

	fmt.Fprintf(out, "Serving workspace menus on :%d\n", port)
	return srv.Serve(ctx)
}

// storeReadiness reports ready while the menu store answers.
func storeReadiness(app *App) server.ReadinessChecker {
	return server.ReadyFunc(func(ctx context.Context) error {
		return store.Ping(ctx, app.Store, app.Ref())
	})
}
