// Package store provides infrastructure adapters that implement the menu
// service ports: a YAML file store, a SQLite store and a REST API client.
package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/onecx/workspace-menu/internal/domain"
)

// Dir is the project directory holding wsm state.
const Dir = ".wsm"

// Driver names accepted by Open.
const (
	DriverYAML   = "yaml"
	DriverSQLite = "sqlite"
	DriverAPI    = "api"
)

var (
	// ErrWorkspaceNotFound is returned when a workspace has no stored menus.
	ErrWorkspaceNotFound = errors.New("workspace not found")
	// ErrWorkspaceExists is returned when initializing an existing workspace.
	ErrWorkspaceExists = errors.New("workspace already exists")
	// ErrInvalidWorkspace is returned for names that cannot address a workspace.
	ErrInvalidWorkspace = errors.New("invalid workspace name")
	// ErrItemNotFound is returned when a write names an unknown menu item.
	ErrItemNotFound = errors.New("menu item not found")
	// ErrDuplicateItem is returned when creating an item whose id is taken.
	ErrDuplicateItem = errors.New("menu item already exists")
	// ErrUnknownDriver is returned by Open for unsupported drivers.
	ErrUnknownDriver = errors.New("unknown store driver")
	// ErrNotInProject is returned when no .wsm/ directory is found.
	ErrNotInProject = errors.New("no .wsm/ directory found")
)

// Store is the full set of menu persistence operations.
type Store interface {
	FetchMenu(ctx context.Context, ref domain.MenuRef) (*domain.MenuStructure, error)
	WritePositions(ctx context.Context, ref domain.MenuRef, updates []domain.PositionUpdate) error
	CreateItem(ctx context.Context, ref domain.MenuRef, item domain.MenuItemRecord) error
	UpdateItem(ctx context.Context, ref domain.MenuRef, item domain.MenuItemRecord) error
	DeleteItems(ctx context.Context, ref domain.MenuRef, ids []string) error
	Close() error
}

// Initializer is implemented by stores that can create workspaces and seed
// whole menus.
type Initializer interface {
	InitWorkspace(ctx context.Context, workspace string) error
	ReplaceMenu(ctx context.Context, ref domain.MenuRef, items []domain.MenuItemRecord) error
}

// Pinger is implemented by stores that can report whether their backing
// storage is reachable without reading a menu.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Ping reports whether s is ready to serve ref. Stores that are not Pingers
// are checked by fetching the menu.
func Ping(ctx context.Context, s Store, ref domain.MenuRef) error {
	if p, ok := s.(Pinger); ok {
		return p.Ping(ctx)
	}
	if _, err := s.FetchMenu(ctx, ref); err != nil {
		return fmt.Errorf("fetching %s: %w", ref, err)
	}
	return nil
}

// Options selects and configures a store implementation.
type Options struct {
	Driver  string
	Root    string
	DSN     string
	BaseURL string
	Timeout time.Duration
}

// Open returns the store named by opts.Driver. An empty driver means yaml.
func Open(opts Options) (Store, error) {
	switch opts.Driver {
	case "", DriverYAML:
		return NewYAMLStore(opts.Root), nil
	case DriverSQLite:
		dsn := opts.DSN
		if dsn == "" {
			dsn = filepath.Join(opts.Root, Dir, "menus.db")
		}
		return NewSQLiteStore(dsn)
	case DriverAPI:
		if opts.BaseURL == "" {
			return nil, fmt.Errorf("api driver: base url is required")
		}
		var copts []APIClientOption
		if opts.Timeout > 0 {
			copts = append(copts, WithTimeout(opts.Timeout))
		}
		return NewAPIClient(opts.BaseURL, copts...), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, opts.Driver)
	}
}

// ValidateWorkspace rejects names that are empty or could escape the store
// directory.
func ValidateWorkspace(name string) error {
	switch {
	case name == "",
		strings.HasPrefix(name, "."),
		strings.ContainsAny(name, `/\`),
		strings.ContainsRune(name, 0):
		return fmt.Errorf("%w: %q", ErrInvalidWorkspace, name)
	}
	return nil
}

// FindRoot walks up from start looking for a .wsm/ directory and returns the
// directory containing it.
func FindRoot(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", start, err)
	}
	for {
		info, err := os.Stat(filepath.Join(dir, Dir))
		if err == nil && info.IsDir() {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrNotInProject
		}
		dir = parent
	}
}
