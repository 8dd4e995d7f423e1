package domain

import (
	"maps"
	"slices"
)

// Style classes applied to tree nodes.
const (
	StyleClassLeaf   = "tree-node-leaf"
	StyleClassParent = "tree-node-parent"
)

// TreeNode is the editable form of a MenuItemRecord used by the menu editor.
// Key is the record ID. Data holds the record without its children; the
// hierarchy lives in Children.
type TreeNode struct {
	Key        string         `json:"key"`
	Label      string         `json:"label"`
	Data       MenuItemRecord `json:"data"`
	Expanded   bool           `json:"expanded"`
	Leaf       bool           `json:"leaf"`
	StyleClass string         `json:"styleClass"`
	Children   []*TreeNode    `json:"children,omitempty"`
}

// MapToTreeNodes builds collapsed tree nodes from records, ordering every
// sibling group by position. Equal positions keep their input order.
func MapToTreeNodes(items []MenuItemRecord) []*TreeNode {
	nodes := mapLevel(items, "")
	if nodes == nil {
		return []*TreeNode{}
	}
	return nodes
}

func mapLevel(items []MenuItemRecord, parentID string) []*TreeNode {
	if len(items) == 0 {
		return nil
	}
	nodes := make([]*TreeNode, 0, len(items))
	for _, it := range SortByPosition(items) {
		data := it
		data.Children = nil
		if parentID != "" {
			data.ParentItemID = parentID
		}
		node := &TreeNode{
			Key:      it.ID,
			Label:    it.Name,
			Data:     data,
			Children: mapLevel(it.Children, it.ID),
		}
		node.refreshStyle()
		nodes = append(nodes, node)
	}
	return nodes
}

func (n *TreeNode) refreshStyle() {
	n.Leaf = len(n.Children) == 0
	if n.Leaf {
		n.StyleClass = StyleClassLeaf
	} else {
		n.StyleClass = StyleClassParent
	}
}

// FindNodeByKey returns the first node with the given key in depth-first
// order, or nil.
func FindNodeByKey(nodes []*TreeNode, key string) *TreeNode {
	for _, n := range nodes {
		if n.Key == key {
			return n
		}
		if found := FindNodeByKey(n.Children, key); found != nil {
			return found
		}
	}
	return nil
}

// FlattenTree walks the tree depth-first and returns one record per node with
// ParentItemID taken from the tree structure.
func FlattenTree(nodes []*TreeNode) []MenuItemRecord {
	var out []MenuItemRecord
	var walk func([]*TreeNode, string)
	walk = func(level []*TreeNode, parentID string) {
		for _, n := range level {
			rec := n.Data
			rec.Children = nil
			rec.ParentItemID = parentID
			out = append(out, rec)
			walk(n.Children, n.Key)
		}
	}
	walk(nodes, "")
	return out
}

// ExpansionState remembers which tree nodes are expanded across reloads.
// The zero value is not usable; call NewExpansionState.
type ExpansionState struct {
	expanded map[string]bool
}

// NewExpansionState returns a state with the given keys expanded.
func NewExpansionState(keys ...string) *ExpansionState {
	s := &ExpansionState{expanded: make(map[string]bool, len(keys))}
	for _, k := range keys {
		s.expanded[k] = true
	}
	return s
}

// Toggle flips the state of key and returns the new state.
func (s *ExpansionState) Toggle(key string) bool {
	if s.expanded[key] {
		delete(s.expanded, key)
		return false
	}
	s.expanded[key] = true
	return true
}

// Expand marks key as expanded.
func (s *ExpansionState) Expand(key string) {
	s.expanded[key] = true
}

// Collapse marks key as collapsed.
func (s *ExpansionState) Collapse(key string) {
	delete(s.expanded, key)
}

// IsExpanded reports whether key is expanded.
func (s *ExpansionState) IsExpanded(key string) bool {
	if s == nil {
		return false
	}
	return s.expanded[key]
}

// ExpandAll marks every node of the tree as expanded.
func (s *ExpansionState) ExpandAll(nodes []*TreeNode) {
	for _, n := range nodes {
		s.expanded[n.Key] = true
		s.ExpandAll(n.Children)
	}
}

// CollapseAll forgets every expanded key.
func (s *ExpansionState) CollapseAll() {
	clear(s.expanded)
}

// Keys returns the expanded keys in sorted order.
func (s *ExpansionState) Keys() []string {
	if s == nil {
		return nil
	}
	return slices.Sorted(maps.Keys(s.expanded))
}

// Apply copies the remembered state onto freshly built nodes.
func (s *ExpansionState) Apply(nodes []*TreeNode) {
	for _, n := range nodes {
		n.Expanded = s.IsExpanded(n.Key)
		s.Apply(n.Children)
	}
}
