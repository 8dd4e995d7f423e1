package domain

import (
	"errors"
	"fmt"
	"slices"
)

// ErrParentNotFound is returned when a parent key does not exist in the tree.
var ErrParentNotFound = errors.New("parent node not found")

// ErrNodeNotFound is returned when a node or record cannot be located.
var ErrNodeNotFound = errors.New("node not found")

// ErrCycleDetected is returned when a node would be moved into its own subtree.
var ErrCycleDetected = errors.New("cycle detected")

// NodePosition is the new position of one node after a drag-and-drop move.
type NodePosition struct {
	ID       string `json:"id"`
	Position int    `json:"position"`
}

// CalculateNewNodesPositions reports the positions of every sibling under the
// old and the new parent of a moved node. An empty parent ID denotes the root
// level. The tree is not modified.
//
// Old-parent positions come first. A parent ID that cannot be found yields
// ErrParentNotFound instead of a partial batch.
func CalculateNewNodesPositions(oldParentID, newParentID string, tree []*TreeNode) ([]NodePosition, error) {
	var positions []NodePosition
	rootDone := false

	emit := func(parentID string) error {
		if parentID == "" {
			if rootDone {
				return nil
			}
			rootDone = true
			positions = appendPositions(positions, tree)
			return nil
		}
		parent := FindNodeByKey(tree, parentID)
		if parent == nil {
			return fmt.Errorf("%w: %s", ErrParentNotFound, parentID)
		}
		positions = appendPositions(positions, parent.Children)
		return nil
	}

	if oldParentID == "" || oldParentID != newParentID {
		if err := emit(oldParentID); err != nil {
			return nil, err
		}
	}
	if err := emit(newParentID); err != nil {
		return nil, err
	}
	return positions, nil
}

func appendPositions(positions []NodePosition, children []*TreeNode) []NodePosition {
	for i, c := range children {
		positions = append(positions, NodePosition{ID: c.Key, Position: i})
	}
	return positions
}

// ApplyPositions writes positions into the Data of the matching nodes.
func ApplyPositions(tree []*TreeNode, positions []NodePosition) {
	for _, p := range positions {
		if n := FindNodeByKey(tree, p.ID); n != nil {
			n.Data.Position = p.Position
		}
	}
}

// PositionUpdates converts node positions into a persistence batch carrying
// each node's current parent.
func PositionUpdates(tree []*TreeNode, positions []NodePosition) []PositionUpdate {
	updates := make([]PositionUpdate, 0, len(positions))
	for _, p := range positions {
		u := PositionUpdate{ID: p.ID, Position: p.Position}
		if n := FindNodeByKey(tree, p.ID); n != nil {
			u.ParentItemID = n.Data.ParentItemID
		}
		updates = append(updates, u)
	}
	return updates
}

// MoveNode detaches the node with the given key and inserts it under
// newParentID (root when empty) at index, clamped to the sibling range. It
// mutates the nodes in place and returns the new root slice together with
// the ID of the node's previous parent.
func MoveNode(tree []*TreeNode, key, newParentID string, index int) ([]*TreeNode, string, error) {
	node, oldParent := findWithParent(tree, key, nil)
	if node == nil {
		return tree, "", fmt.Errorf("%w: %s", ErrNodeNotFound, key)
	}

	var target *TreeNode
	if newParentID != "" {
		if newParentID == key || FindNodeByKey(node.Children, newParentID) != nil {
			return tree, "", fmt.Errorf("cannot move %s under %s: %w", key, newParentID, ErrCycleDetected)
		}
		target = FindNodeByKey(tree, newParentID)
		if target == nil {
			return tree, "", fmt.Errorf("%w: %s", ErrParentNotFound, newParentID)
		}
	}

	oldParentID := ""
	if oldParent != nil {
		oldParentID = oldParent.Key
		oldParent.Children = removeNode(oldParent.Children, node)
		oldParent.refreshStyle()
	} else {
		tree = removeNode(tree, node)
	}

	node.Data.ParentItemID = newParentID
	if target != nil {
		target.Children = insertNode(target.Children, node, index)
		target.refreshStyle()
	} else {
		tree = insertNode(tree, node, index)
	}
	return tree, oldParentID, nil
}

// RemoveNode detaches the node with the given key and returns the new root
// slice, the removed node and the ID of its parent.
func RemoveNode(tree []*TreeNode, key string) ([]*TreeNode, *TreeNode, string, error) {
	node, parent := findWithParent(tree, key, nil)
	if node == nil {
		return tree, nil, "", fmt.Errorf("%w: %s", ErrNodeNotFound, key)
	}
	if parent == nil {
		return removeNode(tree, node), node, "", nil
	}
	parent.Children = removeNode(parent.Children, node)
	parent.refreshStyle()
	return tree, node, parent.Key, nil
}

// ParentKey returns the key of the node's parent, or "" for root-level and
// unknown nodes.
func ParentKey(tree []*TreeNode, key string) string {
	if _, parent := findWithParent(tree, key, nil); parent != nil {
		return parent.Key
	}
	return ""
}

// SiblingIndex returns the index of key among its siblings, or -1.
func SiblingIndex(tree []*TreeNode, key string) int {
	node, parent := findWithParent(tree, key, nil)
	if node == nil {
		return -1
	}
	siblings := tree
	if parent != nil {
		siblings = parent.Children
	}
	return slices.Index(siblings, node)
}

func findWithParent(nodes []*TreeNode, key string, parent *TreeNode) (*TreeNode, *TreeNode) {
	for _, n := range nodes {
		if n.Key == key {
			return n, parent
		}
		if found, p := findWithParent(n.Children, key, n); found != nil {
			return found, p
		}
	}
	return nil, nil
}

func removeNode(nodes []*TreeNode, node *TreeNode) []*TreeNode {
	i := slices.Index(nodes, node)
	if i < 0 {
		return nodes
	}
	return slices.Delete(slices.Clone(nodes), i, i+1)
}

func insertNode(nodes []*TreeNode, node *TreeNode, index int) []*TreeNode {
	index = max(0, min(index, len(nodes)))
	return slices.Insert(slices.Clone(nodes), index, node)
}

// CompactPositions renumbers every sibling group to 0..n-1 in position order
// and returns updates for the records whose position changed.
func CompactPositions(items []MenuItemRecord) []PositionUpdate {
	var updates []PositionUpdate
	var walk func([]MenuItemRecord, string)
	walk = func(level []MenuItemRecord, parentID string) {
		for i, it := range SortByPosition(level) {
			pid := it.ParentItemID
			if parentID != "" {
				pid = parentID
			}
			if it.Position != i {
				updates = append(updates, PositionUpdate{ID: it.ID, Position: i, ParentItemID: pid})
			}
			walk(it.Children, it.ID)
		}
	}
	walk(items, "")
	return updates
}
