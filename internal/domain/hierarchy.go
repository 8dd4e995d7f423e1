package domain

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrInvalidHierarchy is returned when a menu has error-severity findings.
var ErrInvalidHierarchy = errors.New("invalid menu hierarchy")

// FlattenRecords converts nested records into a depth-first flat list. Nested
// children get ParentItemID from their enclosing record; top-level records
// keep their own value.
func FlattenRecords(items []MenuItemRecord) []MenuItemRecord {
	var out []MenuItemRecord
	var walk func([]MenuItemRecord, string)
	walk = func(level []MenuItemRecord, parentID string) {
		for _, it := range level {
			rec := it
			rec.Children = nil
			if parentID != "" {
				rec.ParentItemID = parentID
			}
			out = append(out, rec)
			walk(it.Children, it.ID)
		}
	}
	walk(items, "")
	return out
}

// NestRecords rebuilds the hierarchy of flat records from ParentItemID,
// keeping input order among siblings. Records whose parent is unknown or
// whose ancestor chain loops are reported and attached at the root so that
// no record is lost.
func NestRecords(flat []MenuItemRecord) ([]MenuItemRecord, []Finding) {
	var findings []Finding

	byID := make(map[string]int, len(flat))
	for i, r := range flat {
		if _, dup := byID[r.ID]; dup {
			findings = append(findings, Finding{
				Type:     FindingDuplicateID,
				Severity: SeverityError,
				Message:  fmt.Sprintf("id %s used by more than one item", r.ID),
				ItemID:   r.ID,
			})
			continue
		}
		byID[r.ID] = i
	}

	parent := make([]int, len(flat))
	for i, r := range flat {
		parent[i] = -1
		if r.ParentItemID == "" {
			continue
		}
		p, ok := byID[r.ParentItemID]
		if !ok {
			findings = append(findings, Finding{
				Type:     FindingOrphanedParent,
				Severity: SeverityError,
				Message:  fmt.Sprintf("item %s references unknown parent %s", r.ID, r.ParentItemID),
				ItemID:   r.ID,
			})
			continue
		}
		parent[i] = p
	}

	for i := range flat {
		if walksBackTo(parent, i) {
			findings = append(findings, Finding{
				Type:     FindingParentCycle,
				Severity: SeverityError,
				Message:  fmt.Sprintf("item %s is its own ancestor", flat[i].ID),
				ItemID:   flat[i].ID,
			})
			parent[i] = -1
		}
	}

	children := make([][]int, len(flat))
	var roots []int
	for i, p := range parent {
		if p < 0 {
			roots = append(roots, i)
			continue
		}
		children[p] = append(children[p], i)
	}

	var build func(idx []int) []MenuItemRecord
	build = func(idx []int) []MenuItemRecord {
		if len(idx) == 0 {
			return nil
		}
		out := make([]MenuItemRecord, 0, len(idx))
		for _, i := range idx {
			rec := flat[i]
			if parent[i] < 0 {
				rec.ParentItemID = ""
			}
			rec.Children = build(children[i])
			out = append(out, rec)
		}
		return out
	}
	return build(roots), findings
}

// walksBackTo reports whether following parent links from start returns to it.
func walksBackTo(parent []int, start int) bool {
	seen := make(map[int]bool)
	for p := parent[start]; p >= 0; p = parent[p] {
		if p == start {
			return true
		}
		if seen[p] {
			return false
		}
		seen[p] = true
	}
	return false
}

// CheckHierarchy validates a menu and returns all findings.
func CheckHierarchy(items []MenuItemRecord) []Finding {
	flat := FlattenRecords(items)
	_, findings := NestRecords(flat)

	keys := make(map[string]string, len(flat))
	for _, r := range flat {
		if r.Key != "" {
			if other, dup := keys[r.Key]; dup && other != r.ID {
				findings = append(findings, Finding{
					Type:     FindingDuplicateKey,
					Severity: SeverityError,
					Message:  fmt.Sprintf("key %s used by items %s and %s", r.Key, other, r.ID),
					ItemID:   r.ID,
				})
			} else {
				keys[r.Key] = r.ID
			}
		}
		if r.Name == "" {
			findings = append(findings, Finding{
				Type:     FindingMissingName,
				Severity: SeverityWarning,
				Message:  fmt.Sprintf("item %s has no name", r.ID),
				ItemID:   r.ID,
			})
		}
		if r.External && !strings.Contains(r.URL, "[[") && !isAbsoluteURL(r.URL) {
			findings = append(findings, Finding{
				Type:     FindingInvalidURL,
				Severity: SeverityWarning,
				Message:  fmt.Sprintf("external item %s has non-absolute url %q", r.ID, r.URL),
				ItemID:   r.ID,
			})
		}
	}
	return findings
}

func isAbsoluteURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil && u.IsAbs() && u.Host != ""
}

// ValidateHierarchy returns ErrInvalidHierarchy naming the first error-severity
// finding, or nil. Warnings do not fail validation.
func ValidateHierarchy(items []MenuItemRecord) error {
	for _, f := range CheckHierarchy(items) {
		if f.Severity == SeverityError {
			return fmt.Errorf("%w: %s", ErrInvalidHierarchy, f.Message)
		}
	}
	return nil
}

// EnsureNested returns items in nested form. A list that carries no children
// but references parents inside itself is treated as flat and nested by
// ParentItemID; anything else is returned unchanged.
func EnsureNested(items []MenuItemRecord) []MenuItemRecord {
	ids := make(map[string]bool, len(items))
	for _, it := range items {
		if it.HasChildren() {
			return items
		}
		ids[it.ID] = true
	}
	for _, it := range items {
		if it.ParentItemID != "" && ids[it.ParentItemID] {
			nested, _ := NestRecords(items)
			return nested
		}
	}
	return items
}
