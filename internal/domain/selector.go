package domain

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrInvalidSelector is returned when a selector string cannot be parsed.
var ErrInvalidSelector = errors.New("invalid selector")

// ErrAmbiguousSelector is returned when a bare selector matches one item by
// key and a different item by ID.
var ErrAmbiguousSelector = errors.New("ambiguous selector")

// SelectorKind distinguishes ID, key and bare selectors.
type SelectorKind int

const (
	// SelectorAny matches a key first and then an ID.
	SelectorAny SelectorKind = iota
	// SelectorID matches a record ID.
	SelectorID
	// SelectorKey matches a record key.
	SelectorKey
)

// rootTokens name the implicit root level when used as a move target.
var rootTokens = map[string]bool{"root": true, "-": true}

var valuePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._\-]*$`)

// Selector is a value object representing a parsed menu item reference.
type Selector struct {
	kind  SelectorKind
	value string
}

// ParseSelector parses "id:<id>", "key:<key>" or a bare value.
func ParseSelector(input string) (Selector, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return Selector{}, fmt.Errorf("%w: empty input", ErrInvalidSelector)
	}

	kind := SelectorAny
	value := input
	switch {
	case strings.HasPrefix(input, "id:"):
		kind, value = SelectorID, input[3:]
	case strings.HasPrefix(input, "key:"):
		kind, value = SelectorKey, input[4:]
	case strings.Contains(input, ":"):
		return Selector{}, fmt.Errorf("%w: %q", ErrInvalidSelector, input)
	}

	if !valuePattern.MatchString(value) {
		return Selector{}, fmt.Errorf("%w: %q", ErrInvalidSelector, input)
	}
	return Selector{kind: kind, value: value}, nil
}

// IsRootSelector reports whether input names the root level.
func IsRootSelector(input string) bool {
	return rootTokens[strings.TrimSpace(input)]
}

// Kind returns the selector kind.
func (s Selector) Kind() SelectorKind {
	return s.kind
}

// Explicit reports whether the selector carried an id: or key: prefix.
func (s Selector) Explicit() bool {
	return s.kind != SelectorAny
}

// Value returns the selector value without any prefix.
func (s Selector) Value() string {
	return s.value
}

// String returns the string representation including an explicit prefix.
func (s Selector) String() string {
	switch s.kind {
	case SelectorID:
		return "id:" + s.value
	case SelectorKey:
		return "key:" + s.value
	}
	return s.value
}

// SelectRecord finds the record addressed by sel in a flat record list.
func SelectRecord(flat []MenuItemRecord, sel Selector) (MenuItemRecord, error) {
	var byKey, byID *MenuItemRecord
	for i := range flat {
		r := &flat[i]
		if byKey == nil && r.Key == sel.value {
			byKey = r
		}
		if byID == nil && r.ID == sel.value {
			byID = r
		}
	}

	switch sel.kind {
	case SelectorID:
		byKey = nil
	case SelectorKey:
		byID = nil
	}

	switch {
	case byKey != nil && byID != nil && byKey.ID != byID.ID:
		return MenuItemRecord{}, fmt.Errorf("%w: %q", ErrAmbiguousSelector, sel.value)
	case byKey != nil:
		return *byKey, nil
	case byID != nil:
		return *byID, nil
	}
	return MenuItemRecord{}, fmt.Errorf("%w: %s", ErrNodeNotFound, sel)
}
