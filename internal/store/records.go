package store

import (
	"fmt"
	"slices"

	"github.com/onecx/workspace-menu/internal/domain"
)

// The helpers below operate on the flat form of a menu, as produced by
// domain.FlattenRecords, and return the rebuilt nested form.

func indexByID(flat []domain.MenuItemRecord) map[string]int {
	idx := make(map[string]int, len(flat))
	for i, r := range flat {
		idx[r.ID] = i
	}
	return idx
}

func applyPositions(items []domain.MenuItemRecord, updates []domain.PositionUpdate) ([]domain.MenuItemRecord, error) {
	flat := domain.FlattenRecords(items)
	idx := indexByID(flat)
	for _, u := range updates {
		i, ok := idx[u.ID]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrItemNotFound, u.ID)
		}
		flat[i].Position = u.Position
		flat[i].ParentItemID = u.ParentItemID
	}
	return nest(flat)
}

func createItem(items []domain.MenuItemRecord, item domain.MenuItemRecord) ([]domain.MenuItemRecord, error) {
	flat := domain.FlattenRecords(items)
	if _, dup := indexByID(flat)[item.ID]; dup {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateItem, item.ID)
	}
	item.Children = nil
	return nest(append(flat, item))
}

// updateItem replaces the scalar fields of an item. Hierarchy and position
// are owned by WritePositions and stay untouched.
func updateItem(items []domain.MenuItemRecord, item domain.MenuItemRecord) ([]domain.MenuItemRecord, error) {
	flat := domain.FlattenRecords(items)
	i, ok := indexByID(flat)[item.ID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrItemNotFound, item.ID)
	}
	item.Children = nil
	item.ParentItemID = flat[i].ParentItemID
	item.Position = flat[i].Position
	flat[i] = item
	return nest(flat)
}

func deleteItems(items []domain.MenuItemRecord, ids []string) ([]domain.MenuItemRecord, error) {
	flat := domain.FlattenRecords(items)
	idx := indexByID(flat)
	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		if _, ok := idx[id]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrItemNotFound, id)
		}
		drop[id] = true
	}
	flat = slices.DeleteFunc(flat, func(r domain.MenuItemRecord) bool { return drop[r.ID] })
	return nest(flat)
}

// nest rebuilds the hierarchy and refuses results that would be stored with
// error-severity findings.
func nest(flat []domain.MenuItemRecord) ([]domain.MenuItemRecord, error) {
	nested, findings := domain.NestRecords(flat)
	for _, f := range findings {
		if f.Severity == domain.SeverityError {
			return nil, fmt.Errorf("%w: %s", domain.ErrInvalidHierarchy, f.Message)
		}
	}
	if err := domain.ValidateHierarchy(nested); err != nil {
		return nil, err
	}
	return domain.SortTree(nested), nil
}
