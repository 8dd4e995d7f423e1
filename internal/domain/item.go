package domain

import (
	"cmp"
	"slices"
)

// MenuItemRecord is one navigation entry as delivered by the workspace menu API.
// Records arrive either nested through Children or flat with ParentItemID set.
type MenuItemRecord struct {
	ID           string            `json:"id" yaml:"id"`
	Key          string            `json:"key" yaml:"key"`
	ParentItemID string            `json:"parentItemId,omitempty" yaml:"parentItemId,omitempty"`
	Name         string            `json:"name" yaml:"name"`
	I18n         map[string]string `json:"i18n,omitempty" yaml:"i18n,omitempty"`
	URL          string            `json:"url,omitempty" yaml:"url,omitempty"`
	External     bool              `json:"external,omitempty" yaml:"external,omitempty"`
	Position     int               `json:"position" yaml:"position"`
	Badge        string            `json:"badge,omitempty" yaml:"badge,omitempty"`
	Disabled     bool              `json:"disabled,omitempty" yaml:"disabled,omitempty"`
	Children     []MenuItemRecord  `json:"children,omitempty" yaml:"children,omitempty"`
}

// HasChildren reports whether the record carries nested children.
func (r MenuItemRecord) HasChildren() bool {
	return len(r.Children) > 0
}

// MenuGroup is one named menu slot in a menu structure response.
type MenuGroup struct {
	Key      string           `json:"key" yaml:"key"`
	Children []MenuItemRecord `json:"children,omitempty" yaml:"children,omitempty"`
}

// MenuStructure is the response of a menu fetch: one group per requested menu key.
type MenuStructure struct {
	WorkspaceName string      `json:"workspaceName,omitempty"`
	Menu          []MenuGroup `json:"menu"`
}

// Items returns the children of the first menu group, or nil when the
// structure is empty.
func (s *MenuStructure) Items() []MenuItemRecord {
	if s == nil || len(s.Menu) == 0 {
		return nil
	}
	return s.Menu[0].Children
}

// Group returns the children of the group with the given key.
func (s *MenuStructure) Group(key string) ([]MenuItemRecord, bool) {
	if s == nil {
		return nil, false
	}
	for _, g := range s.Menu {
		if g.Key == key {
			return g.Children, true
		}
	}
	return nil, false
}

// MenuRef addresses one menu slot of one workspace.
type MenuRef struct {
	Workspace string `json:"workspace"`
	MenuKey   string `json:"menuKey"`
}

// String returns "workspace/menuKey".
func (r MenuRef) String() string {
	return r.Workspace + "/" + r.MenuKey
}

// PositionUpdate is one entry of a position persistence batch.
type PositionUpdate struct {
	ID           string `json:"id" yaml:"id"`
	Position     int    `json:"position" yaml:"position"`
	ParentItemID string `json:"parentItemId,omitempty" yaml:"parentItemId,omitempty"`
}

// SortByPosition returns a copy of items ordered ascending by Position.
// Records with equal positions keep their input order.
func SortByPosition(items []MenuItemRecord) []MenuItemRecord {
	sorted := slices.Clone(items)
	slices.SortStableFunc(sorted, func(a, b MenuItemRecord) int {
		return cmp.Compare(a.Position, b.Position)
	})
	return sorted
}

// NextPosition returns the position that appends a record after all siblings.
func NextPosition(siblings []MenuItemRecord) int {
	if len(siblings) == 0 {
		return 0
	}
	highest := siblings[0].Position
	for _, s := range siblings[1:] {
		highest = max(highest, s.Position)
	}
	return highest + 1
}

// SortTree returns a copy of items with every sibling group ordered by
// Position.
func SortTree(items []MenuItemRecord) []MenuItemRecord {
	if items == nil {
		return nil
	}
	sorted := SortByPosition(items)
	for i := range sorted {
		sorted[i].Children = SortTree(sorted[i].Children)
	}
	return sorted
}
