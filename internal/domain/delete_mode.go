package domain

import "errors"

// ErrItemHasChildren is returned when deleting an item with children in default mode.
var ErrItemHasChildren = errors.New("item has children; use --recursive or --promote")

// DeleteMode specifies how child items are handled during deletion.
type DeleteMode int

const (
	// DeleteModeDefault deletes only leaf items; errors if the item has children.
	DeleteModeDefault DeleteMode = iota
	// DeleteModeRecursive deletes the item and its entire subtree.
	DeleteModeRecursive
	// DeleteModePromote deletes the item and moves its children into its place.
	DeleteModePromote
)

// String returns the mode name.
func (m DeleteMode) String() string {
	switch m {
	case DeleteModeRecursive:
		return "recursive"
	case DeleteModePromote:
		return "promote"
	}
	return "default"
}
