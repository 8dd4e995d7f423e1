package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/onecx/workspace-menu/internal/domain"
)

// workspaceFile is the on-disk layout of one workspace.
type workspaceFile struct {
	Workspace string                             `yaml:"workspace"`
	Menus     map[string][]domain.MenuItemRecord `yaml:"menus"`
}

// YAMLStore keeps one YAML file per workspace under <root>/.wsm/workspaces.
// Menus are stored nested and ordered by position.
type YAMLStore struct {
	Root string

	mu sync.Mutex
}

// NewYAMLStore returns a store rooted at the given project directory.
func NewYAMLStore(root string) *YAMLStore {
	return &YAMLStore{Root: root}
}

// Dir returns the directory holding the workspace files.
func (s *YAMLStore) Dir() string {
	return filepath.Join(s.Root, Dir, "workspaces")
}

// Path returns the file backing a workspace.
func (s *YAMLStore) Path(workspace string) string {
	return filepath.Join(s.Dir(), workspace+".yaml")
}

// Workspaces lists the names of all stored workspaces, sorted.
func (s *YAMLStore) Workspaces(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.Dir())
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading directory %s: %w", s.Dir(), err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".yaml" {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), ".yaml"))
	}
	slices.Sort(names)
	return names, nil
}

// InitWorkspace creates an empty workspace file.
func (s *YAMLStore) InitWorkspace(_ context.Context, workspace string) error {
	if err := ValidateWorkspace(workspace); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := os.Stat(s.Path(workspace)); err == nil {
		return fmt.Errorf("%w: %s", ErrWorkspaceExists, workspace)
	}
	return s.write(&workspaceFile{
		Workspace: workspace,
		Menus:     map[string][]domain.MenuItemRecord{},
	})
}

// FetchMenu returns the menu as a single-group structure. An unknown menu key
// yields an empty group.
func (s *YAMLStore) FetchMenu(_ context.Context, ref domain.MenuRef) (*domain.MenuStructure, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	wf, err := s.read(ref.Workspace)
	if err != nil {
		return nil, err
	}
	return &domain.MenuStructure{
		WorkspaceName: wf.Workspace,
		Menu:          []domain.MenuGroup{{Key: ref.MenuKey, Children: wf.Menus[ref.MenuKey]}},
	}, nil
}

// ReplaceMenu overwrites a whole menu.
func (s *YAMLStore) ReplaceMenu(_ context.Context, ref domain.MenuRef, items []domain.MenuItemRecord) error {
	return s.mutate(ref, func([]domain.MenuItemRecord) ([]domain.MenuItemRecord, error) {
		return nest(domain.FlattenRecords(domain.EnsureNested(items)))
	})
}

// WritePositions applies a batch of position and parent changes.
func (s *YAMLStore) WritePositions(_ context.Context, ref domain.MenuRef, updates []domain.PositionUpdate) error {
	return s.mutate(ref, func(items []domain.MenuItemRecord) ([]domain.MenuItemRecord, error) {
		return applyPositions(items, updates)
	})
}

// CreateItem adds an item under the parent named by item.ParentItemID.
func (s *YAMLStore) CreateItem(_ context.Context, ref domain.MenuRef, item domain.MenuItemRecord) error {
	return s.mutate(ref, func(items []domain.MenuItemRecord) ([]domain.MenuItemRecord, error) {
		return createItem(items, item)
	})
}

// UpdateItem replaces the fields of an existing item.
func (s *YAMLStore) UpdateItem(_ context.Context, ref domain.MenuRef, item domain.MenuItemRecord) error {
	return s.mutate(ref, func(items []domain.MenuItemRecord) ([]domain.MenuItemRecord, error) {
		return updateItem(items, item)
	})
}

// DeleteItems removes the listed items.
func (s *YAMLStore) DeleteItems(_ context.Context, ref domain.MenuRef, ids []string) error {
	return s.mutate(ref, func(items []domain.MenuItemRecord) ([]domain.MenuItemRecord, error) {
		return deleteItems(items, ids)
	})
}

// Ping checks that the workspace directory exists.
func (s *YAMLStore) Ping(_ context.Context) error {
	info, err := os.Stat(s.Dir())
	if err != nil {
		return fmt.Errorf("workspace directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("workspace directory %s is not a directory", s.Dir())
	}
	return nil
}

// Close is a no-op.
func (s *YAMLStore) Close() error { return nil }

func (s *YAMLStore) mutate(ref domain.MenuRef, fn func([]domain.MenuItemRecord) ([]domain.MenuItemRecord, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	wf, err := s.read(ref.Workspace)
	if err != nil {
		return err
	}
	items, err := fn(wf.Menus[ref.MenuKey])
	if err != nil {
		return fmt.Errorf("%s: %w", ref, err)
	}
	if wf.Menus == nil {
		wf.Menus = make(map[string][]domain.MenuItemRecord)
	}
	wf.Menus[ref.MenuKey] = items
	return s.write(wf)
}

func (s *YAMLStore) read(workspace string) (*workspaceFile, error) {
	if err := ValidateWorkspace(workspace); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.Path(workspace))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrWorkspaceNotFound, workspace)
	}
	if err != nil {
		return nil, fmt.Errorf("reading workspace %s: %w", workspace, err)
	}
	var wf workspaceFile
	if err := yaml.Unmarshal(data, &wf); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", s.Path(workspace), err)
	}
	if wf.Workspace == "" {
		wf.Workspace = workspace
	}
	return &wf, nil
}

// write replaces the workspace file atomically through a temp file in the
// same directory.
func (s *YAMLStore) write(wf *workspaceFile) error {
	data, err := yaml.Marshal(wf)
	if err != nil {
		return fmt.Errorf("encoding workspace %s: %w", wf.Workspace, err)
	}
	dir := s.Dir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+wf.Workspace+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", tmp.Name(), err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("syncing %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", tmp.Name(), err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("setting mode on %s: %w", tmp.Name(), err)
	}
	return os.Rename(tmp.Name(), s.Path(wf.Workspace))
}
