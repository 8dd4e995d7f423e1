package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/onecx/workspace-menu/internal/config"
	"github.com/onecx/workspace-menu/internal/domain"
	"github.com/onecx/workspace-menu/internal/keygen"
	"github.com/onecx/workspace-menu/internal/lock"
	"github.com/onecx/workspace-menu/internal/logger"
	"github.com/onecx/workspace-menu/internal/menu"
	"github.com/onecx/workspace-menu/internal/store"
)

// Version is stamped at build time.
var Version = "dev"

// App holds the wired dependencies of one CLI invocation. Outside a project
// Root is empty and Store and the service are nil.
type App struct {
	Root   string
	Config config.Config
	Store  store.Store
	Logger *slog.Logger

	svc *menu.Service
}

// Wire locates the project above the working directory and wires its store
// and menu service. Outside a project it returns an App without a service.
func Wire(getwd func() (string, error), logOut io.Writer) (*App, error) {
	cwd, err := getwd()
	if err != nil {
		return nil, fmt.Errorf("getting working directory: %w", err)
	}

	root, err := store.FindRoot(cwd)
	if errors.Is(err, store.ErrNotInProject) {
		cfg, err := config.Load("")
		if err != nil {
			return nil, err
		}
		return &App{Config: cfg, Logger: newLogger(logOut, cfg)}, nil
	}
	if err != nil {
		return nil, err
	}
	return NewApp(root, logOut)
}

// NewApp loads the config of the project at root, opens its store and
// builds the menu service.
func NewApp(root string, logOut io.Writer) (*App, error) {
	cfg, err := config.Load(root)
	if err != nil {
		return nil, &ContextError{Op: "loading config", Path: config.Path(root), Err: err}
	}
	log := newLogger(logOut, cfg)

	st, err := store.Open(store.Options{
		Driver:  cfg.Store.Driver,
		Root:    root,
		DSN:     cfg.Store.DSN,
		BaseURL: cfg.API.BaseURL,
		Timeout: cfg.API.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("opening %s store: %w", cfg.Store.Driver, err)
	}

	svc := menu.NewService(st,
		menu.WithPositionWriter(st),
		menu.WithItemWriter(st),
		menu.WithItemDeleter(st),
		menu.WithLocker(lock.InDir(filepath.Join(root, store.Dir))),
		menu.WithIDGenerator(store.UUIDGenerator{}),
		menu.WithKeyGenerator(keygen.Generator{}),
		menu.WithRetry(cfg.Fetch.Retries, cfg.Fetch.Delay),
		menu.WithLogger(log),
		menu.WithResolveOptions(
			domain.WithBaseHref(cfg.BaseHref),
			domain.WithVariables(cfg.Lookup()),
		),
	)

	log.Debug("project wired", "root", root, "driver", cfg.Store.Driver)
	return &App{Root: root, Config: cfg, Store: st, Logger: log, svc: svc}, nil
}

func newLogger(w io.Writer, cfg config.Config) *slog.Logger {
	logLevel.Set(logger.ParseLogLevel(cfg.LogLevel))
	return logger.NewLeveledLogger(w, "wsm", Version, logLevel)
}

// Service returns the menu service, or nil outside a project.
func (a *App) Service() MenuService {
	if a == nil || a.svc == nil {
		return nil
	}
	return a.svc
}

// Close releases the store.
func (a *App) Close() error {
	if a == nil || a.Store == nil {
		return nil
	}
	return a.Store.Close()
}

// Ref returns the menu slot addressed by --workspace and --menu, falling
// back to the configured defaults.
func (a *App) Ref() domain.MenuRef {
	cfg := a.config()
	ref := domain.MenuRef{Workspace: cfg.Workspace, MenuKey: cfg.Menu}
	if w := GetWorkspace(); w != "" {
		ref.Workspace = w
	}
	if m := GetMenu(); m != "" {
		ref.MenuKey = m
	}
	return ref
}

// Lang returns the --lang override or the configured language.
func (a *App) Lang() string {
	if l := GetLang(); l != "" {
		return l
	}
	return a.config().Language
}

func (a *App) config() config.Config {
	if a == nil {
		return config.Default()
	}
	return a.Config
}
